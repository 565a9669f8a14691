package wac

import (
	"fmt"

	"github.com/itme/solidacl/internal/rdf"
)

// GranteeKind discriminates who a rule statement names.
type GranteeKind uint8

const (
	GranteeAgent GranteeKind = iota + 1
	GranteeGroup
	GranteeClass
)

func (k GranteeKind) String() string {
	switch k {
	case GranteeAgent:
		return "agent"
	case GranteeGroup:
		return "group"
	case GranteeClass:
		return "class"
	default:
		return "invalid"
	}
}

// Grantee selects the principal an access query or mutation applies to:
// an individual agent, a group, or an agent class such as "everyone".
type Grantee struct {
	kind GranteeKind
	iri  string
}

// Agent selects an individual principal by WebID.
func Agent(iri string) Grantee {
	return Grantee{kind: GranteeAgent, iri: iri}
}

// Group selects a group of principals by the group's IRI.
func Group(iri string) Grantee {
	return Grantee{kind: GranteeGroup, iri: iri}
}

// Public selects everyone, authenticated or not.
func Public() Grantee {
	return Grantee{kind: GranteeClass, iri: rdf.FOAFAgent}
}

// Authenticated selects any logged-in principal.
func Authenticated() Grantee {
	return Grantee{kind: GranteeClass, iri: rdf.ACLAuthenticatedAgent}
}

func (g Grantee) Kind() GranteeKind { return g.kind }
func (g Grantee) IRI() string       { return g.iri }

func (g Grantee) String() string {
	return fmt.Sprintf("%s(%s)", g.kind, g.iri)
}

// matches reports whether the rule names this grantee in the facet the
// selector addresses. An agent selector never matches class statements and
// vice versa; "everyone" is addressed through the Public class selector.
func (g Grantee) matches(r *Rule) bool {
	switch g.kind {
	case GranteeAgent:
		return r.Agents.Contains(g.iri)
	case GranteeGroup:
		return r.Groups.Contains(g.iri)
	case GranteeClass:
		return r.Classes.Contains(g.iri)
	default:
		return false
	}
}
