package wac

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ContainerOf returns the URL of the immediate parent container: the
// trailing slash is stripped, everything after the last remaining slash is
// cut, and the trailing slash re-appended. The root container has no parent;
// callers must check IsRoot first.
func ContainerOf(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	path := strings.TrimSuffix(u.Path, "/")
	if path == "" {
		return "", fmt.Errorf("url %q has no parent container", rawURL)
	}
	idx := strings.LastIndex(path, "/")
	u.Path = path[:idx+1]
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// IsRoot reports whether the URL names the root container of its origin.
func IsRoot(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Path == "" || u.Path == "/"
}

// ResolveACL locates the ACL governing a resource. If the resource
// advertises its own ACL and it exists, that wins and no ancestor is
// consulted. Otherwise the resolver walks up the container chain one level
// per round trip until it finds an existing ACL, runs out of ancestors, or
// hits a container whose ACL pointer the acting principal cannot see. In the
// latter two cases the returned Resource carries neither ACL: access is
// indeterminate, which is not the same as "no access".
//
// A 404 on an advertised ACL URL is part of the protocol (servers advertise
// the link before anything exists there) and continues the walk; any other
// transport failure aborts it.
func ResolveACL(ctx context.Context, f Fetcher, resourceURL string) (*Resource, error) {
	meta, err := f.Metadata(ctx, resourceURL)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", resourceURL, err)
	}

	res := &Resource{
		URL:         meta.URL,
		IsContainer: meta.IsContainer,
		AclURL:      meta.AclURL,
	}

	if meta.AclURL != "" {
		rs, err := f.Dataset(ctx, meta.AclURL)
		switch {
		case err == nil:
			res.ResourceAcl = rs.BoundTo(res.URL)
			return res, nil
		case errors.Is(err, ErrNotFound):
			// advertised but not created yet, fall back to ancestors
		default:
			return nil, fmt.Errorf("fetch acl %s: %w", meta.AclURL, err)
		}
	}

	// Walk the ancestor chain. Each step depends on the previous one, so the
	// walk is strictly sequential; it is bounded by path depth.
	current := res.URL
	for !IsRoot(current) {
		parent, err := ContainerOf(current)
		if err != nil {
			return nil, err
		}

		parentMeta, err := f.Metadata(ctx, parent)
		if err != nil {
			return nil, fmt.Errorf("resolve container %s: %w", parent, err)
		}
		if parentMeta.AclURL == "" {
			// The acting principal cannot see this link of the chain, so
			// access cannot be determined.
			return res, nil
		}

		rs, err := f.Dataset(ctx, parentMeta.AclURL)
		switch {
		case err == nil:
			res.FallbackAcl = rs.BoundTo(parent)
			return res, nil
		case errors.Is(err, ErrNotFound):
			current = parent
		default:
			return nil, fmt.Errorf("fetch acl %s: %w", parentMeta.AclURL, err)
		}
	}

	return res, nil
}

// AccessFor computes the effective access a resolved resource grants the
// grantee. The second return value is false when neither a resource ACL nor
// a fallback ACL was resolved and access is indeterminate.
//
// A resource's own ACL governs exclusively: when present, ancestor defaults
// are ignored entirely.
func AccessFor(res *Resource, g Grantee) (AccessModes, bool) {
	switch {
	case res.ResourceAcl != nil:
		rules := ScopedToResource(AuthorizationRules(res.ResourceAcl), res.ResourceAcl.AccessTo)
		return effectiveAccess(rules, g), true
	case res.FallbackAcl != nil:
		// Default rules are keyed on the governing container, not on the
		// resource that inherited them.
		rules := ScopedAsDefaultFor(AuthorizationRules(res.FallbackAcl), res.FallbackAcl.AccessTo)
		return effectiveAccess(rules, g), true
	default:
		return AccessModes{}, false
	}
}

func effectiveAccess(rules []*Rule, g Grantee) AccessModes {
	granted := RulesForGrantee(rules, g)
	sets := make([]AccessModes, 0, len(granted))
	for _, r := range granted {
		sets = append(sets, ModesOf(r))
	}
	return Combine(sets)
}

// ResolveAccess resolves the governing ACL and computes the grantee's
// effective access in one call. The boolean is false when access is
// indeterminate.
func ResolveAccess(ctx context.Context, f Fetcher, resourceURL string, g Grantee) (AccessModes, bool, error) {
	res, err := ResolveACL(ctx, f, resourceURL)
	if err != nil {
		return AccessModes{}, false, err
	}
	modes, ok := AccessFor(res, g)
	return modes, ok, nil
}

// Resolution is the outcome of one access resolution in a batch.
type Resolution struct {
	URL      string
	Modes    AccessModes
	Resolved bool
}

const resolveAllConcurrency = 8

// ResolveAll resolves the grantee's access to several resources. The
// individual walks stay sequential, but resolutions for distinct resources
// share no state and run concurrently. The first transport failure cancels
// the rest.
func ResolveAll(ctx context.Context, f Fetcher, resourceURLs []string, g Grantee) ([]Resolution, error) {
	results := make([]Resolution, len(resourceURLs))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(resolveAllConcurrency)
	for i, u := range resourceURLs {
		i, u := i, u
		eg.Go(func() error {
			modes, ok, err := ResolveAccess(ctx, f, u, g)
			if err != nil {
				return err
			}
			results[i] = Resolution{URL: u, Modes: modes, Resolved: ok}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
