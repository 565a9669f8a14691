// Package wac implements the client-side rule algebra for hierarchical Web
// Access Control: locating the ACL that governs a resource (directly or via
// its nearest ancestor container), computing the effective access a rule set
// grants a principal, and editing rule sets so that one principal's grant
// changes without disturbing any other.
//
// Network transport and statement storage are collaborators behind the
// Fetcher and Store interfaces; the package itself performs no I/O beyond
// calls through them.
package wac

import (
	"context"
	"errors"
)

var (
	// ErrNotFound signals that a probed URL has nothing behind it. During
	// the fallback walk this is an expected protocol outcome, not a failure.
	ErrNotFound = errors.New("wac: not found")

	// ErrForbidden signals the acting principal is not allowed the operation.
	ErrForbidden = errors.New("wac: forbidden")

	// ErrNoACLURL signals a resource whose ACL location is not known to the
	// acting principal, so nothing can be created or persisted for it.
	ErrNoACLURL = errors.New("wac: no acl url known for resource")

	// ErrNoFallbackACL signals an attempt to derive a resource ACL from a
	// fallback that was never resolved.
	ErrNoFallbackACL = errors.New("wac: resource has no fallback acl")
)

// Meta is the slice of resource metadata the resolver needs: whether the
// resource is a container and where its ACL lives, if the acting principal
// is allowed to know.
type Meta struct {
	URL         string
	IsContainer bool
	AclURL      string // empty when the pointer is not visible
}

// Fetcher is the read side of the transport collaborator.
type Fetcher interface {
	// Metadata describes a resource. Fails with ErrNotFound or ErrForbidden
	// distinctly from success with an absent ACL pointer.
	Metadata(ctx context.Context, url string) (*Meta, error)

	// Dataset fetches and parses the statements at an ACL URL. Fails with
	// ErrNotFound when nothing exists there.
	Dataset(ctx context.Context, url string) (*RuleSet, error)
}

// Store extends Fetcher with the write side.
type Store interface {
	Fetcher

	// Persist writes the rule set at the given URL, either as an
	// incremental patch of its change log or as a full replacement.
	Persist(ctx context.Context, url string, rs *RuleSet, asPatch bool) error

	// Delete removes the persisted dataset at the given URL.
	Delete(ctx context.Context, url string) error
}

// Resource is a store resource together with whatever ACL resolution has
// established for it. ResourceAcl is the resource's own ACL; FallbackAcl was
// fetched from an ancestor container and is never from the resource's own
// location. Both nil means access could not be determined.
type Resource struct {
	URL         string
	IsContainer bool
	AclURL      string

	ResourceAcl *RuleSet
	FallbackAcl *RuleSet
}

// HasResourceACL reports whether the resource carries its own ACL.
func (r *Resource) HasResourceACL() bool {
	return r.ResourceAcl != nil
}
