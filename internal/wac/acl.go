package wac

import (
	"context"
	"fmt"

	"github.com/itme/solidacl/internal/rdf"
)

// NewACL creates a fresh, empty ACL for a resource. The resource must have
// a known ACL location or the result could never be persisted.
func NewACL(res *Resource) (*RuleSet, error) {
	if res.AclURL == "" {
		return nil, fmt.Errorf("create acl for %s: %w", res.URL, ErrNoACLURL)
	}
	return NewRuleSet(res.URL), nil
}

// NewACLFromFallback derives a resource's own ACL from the fallback ACL it
// currently inherits: every default rule the governing container declares
// becomes a rule scoped directly to the resource, with the same grantees and
// modes. For containers the inherited defaults are kept as defaults too, so
// their own children keep inheriting.
func NewACLFromFallback(res *Resource) (*RuleSet, error) {
	if res.AclURL == "" {
		return nil, fmt.Errorf("create acl for %s: %w", res.URL, ErrNoACLURL)
	}
	if res.FallbackAcl == nil {
		return nil, fmt.Errorf("create acl for %s: %w", res.URL, ErrNoFallbackACL)
	}

	fb := res.FallbackAcl
	rs := NewRuleSet(res.URL)
	defaults := ScopedAsDefaultFor(AuthorizationRules(fb), fb.AccessTo)
	for _, src := range defaults {
		r := newRule(newRuleSubject(rs))
		r.Types.Add(rdf.ACLAuthorization)
		r.Agents = src.Agents.Clone()
		r.Groups = src.Groups.Clone()
		r.Classes = src.Classes.Clone()
		r.Origins = src.Origins.Clone()
		r.Modes = src.Modes.Clone()
		r.ResourceTargets.Add(res.URL)
		if res.IsContainer {
			r.DefaultTargets.Add(res.URL)
		}
		rs.Rules = append(rs.Rules, r)
	}
	return rs, nil
}

// SaveACL persists a rule set as the resource's ACL. A set fetched from the
// resource's own ACL location is sent as an incremental patch of its change
// log; anything else (fresh sets, sets copied from a fallback) replaces the
// ACL content wholesale. The returned set is bound to the resource with an
// empty change log.
//
// Principals without Control access get ErrForbidden from the store here,
// never a silent no-op.
func SaveACL(ctx context.Context, store Store, res *Resource, rs *RuleSet) (*RuleSet, error) {
	if res.AclURL == "" {
		return nil, fmt.Errorf("save acl for %s: %w", res.URL, ErrNoACLURL)
	}

	asPatch := rs.SourceURL == res.AclURL
	if asPatch && rs.ChangeLog().Empty() {
		// nothing changed since fetch
		return rs.settled(res.AclURL, res.URL), nil
	}

	if err := store.Persist(ctx, res.AclURL, rs, asPatch); err != nil {
		return nil, fmt.Errorf("save acl for %s: %w", res.URL, err)
	}
	return rs.settled(res.AclURL, res.URL), nil
}

// DeleteACL removes the resource's own ACL from storage. The returned
// resource no longer carries a resource ACL, so subsequent access
// derivations re-enter the fallback resolver.
func DeleteACL(ctx context.Context, store Store, res *Resource) (*Resource, error) {
	if res.AclURL == "" {
		return nil, fmt.Errorf("delete acl for %s: %w", res.URL, ErrNoACLURL)
	}
	if err := store.Delete(ctx, res.AclURL); err != nil {
		return nil, fmt.Errorf("delete acl for %s: %w", res.URL, err)
	}
	out := *res
	out.ResourceAcl = nil
	return &out, nil
}
