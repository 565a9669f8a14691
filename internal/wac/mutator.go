package wac

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"

	"github.com/itme/solidacl/internal/rdf"
)

// Scope selects which facet of a rule set a mutation addresses: rules that
// apply to the governed resource directly, or rules a container declares as
// defaults for its children.
type Scope uint8

const (
	ScopeResource Scope = iota + 1
	ScopeDefault
)

func (s Scope) String() string {
	switch s {
	case ScopeResource:
		return "resource"
	case ScopeDefault:
		return "default"
	default:
		return "invalid"
	}
}

// SetAccess returns a rule set granting exactly the desired modes to the
// grantee for the set's governed URL in the given scope. Every other
// grantee's and every other scope's effective access is unchanged.
//
// Rules that name the grantee are split in two: one rule identical to the
// original minus the grantee, covering everyone else it already named, and
// one duplicate naming only the grantee with the mutated target carved out
// of the scope's target set, preserving the grantee's grants elsewhere.
// A single fresh rule then carries the desired modes. Rules left granting
// nothing are dropped, unless their subject carries statements outside the
// WAC vocabulary.
//
// Setting empty modes is a revocation: the fresh rule is itself ineffective
// and collected, leaving the grantee with no grant for the target.
//
// The transform is pure and idempotent in effective access.
func SetAccess(rs *RuleSet, g Grantee, scope Scope, desired AccessModes) *RuleSet {
	target := rs.AccessTo

	var out []*Rule
	for _, r := range rs.Rules {
		if !g.matches(r) {
			out = append(out, r)
			continue
		}
		out = append(out, splitRule(rs, r, g, scope, target)...)
	}
	out = append(out, freshRule(rs, g, scope, target, desired))

	kept := make([]*Rule, 0, len(out))
	for _, r := range out {
		if r.Effective() || r.hasForeignStatements() {
			kept = append(kept, r)
		}
	}

	next := rs.shallowCopy()
	next.Rules = kept
	return next
}

// splitRule removes the grantee from a rule while preserving both the
// rule's grants to everyone else and the grantee's grants to other targets.
func splitRule(rs *RuleSet, r *Rule, g Grantee, scope Scope, target string) []*Rule {
	withoutGrantee := r.Clone()
	switch g.Kind() {
	case GranteeAgent:
		withoutGrantee.Agents.Remove(g.IRI())
	case GranteeGroup:
		withoutGrantee.Groups.Remove(g.IRI())
	case GranteeClass:
		withoutGrantee.Classes.Remove(g.IRI())
	}

	// The duplicate keeps the rule's targets and modes but names only the
	// grantee, with the mutated target carved out of the scope being edited.
	// Statements outside the WAC vocabulary stay with the original subject
	// and are not duplicated.
	forGranteeElsewhere := newRule(newRuleSubject(rs))
	forGranteeElsewhere.Types.Add(rdf.ACLAuthorization)
	forGranteeElsewhere.ResourceTargets = r.ResourceTargets.Clone()
	forGranteeElsewhere.DefaultTargets = r.DefaultTargets.Clone()
	forGranteeElsewhere.Origins = r.Origins.Clone()
	forGranteeElsewhere.Modes = r.Modes.Clone()
	switch scope {
	case ScopeResource:
		forGranteeElsewhere.ResourceTargets.Remove(target)
	case ScopeDefault:
		forGranteeElsewhere.DefaultTargets.Remove(target)
	}
	setSoleGrantee(forGranteeElsewhere, g)

	return []*Rule{withoutGrantee, forGranteeElsewhere}
}

// freshRule builds the single rule granting the desired modes to the
// grantee for the target in the given scope.
func freshRule(rs *RuleSet, g Grantee, scope Scope, target string, desired AccessModes) *Rule {
	r := newRule(newRuleSubject(rs))
	r.Types.Add(rdf.ACLAuthorization)
	r.Modes = desired.modeIRIs()
	switch scope {
	case ScopeResource:
		r.ResourceTargets = mapset.NewSet(target)
	case ScopeDefault:
		r.DefaultTargets = mapset.NewSet(target)
	}
	setSoleGrantee(r, g)
	return r
}

func setSoleGrantee(r *Rule, g Grantee) {
	switch g.Kind() {
	case GranteeAgent:
		r.Agents = mapset.NewSet(g.IRI())
	case GranteeGroup:
		r.Groups = mapset.NewSet(g.IRI())
	case GranteeClass:
		r.Classes = mapset.NewSet(g.IRI())
	}
}

// newRuleSubject mints a fresh subject for a rule. Fetched rule sets get
// fragment IRIs relative to their source document; unsaved sets get blank
// nodes.
func newRuleSubject(rs *RuleSet) rdf.Term {
	id := uuid.NewString()
	if rs.SourceURL != "" {
		return rdf.IRI(rs.SourceURL + "#" + id)
	}
	return rdf.Blank(id)
}
