package wac

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/itme/solidacl/internal/rdf"
)

// Rule is one authorization subject in an ACL dataset: the targets it
// applies to, the principals it names, and the modes it grants. Statements
// on the same subject that the WAC vocabulary does not own are carried in
// Extra and survive every transform untouched.
type Rule struct {
	Subject rdf.Term

	Types           mapset.Set[string]
	ResourceTargets mapset.Set[string] // acl:accessTo
	DefaultTargets  mapset.Set[string] // acl:default / acl:defaultForNew
	Agents          mapset.Set[string]
	Groups          mapset.Set[string]
	Classes         mapset.Set[string]
	Origins         mapset.Set[string]
	Modes           mapset.Set[string] // acl:mode object IRIs

	Extra []rdf.Triple
}

func newRule(subject rdf.Term) *Rule {
	return &Rule{
		Subject:         subject,
		Types:           mapset.NewSet[string](),
		ResourceTargets: mapset.NewSet[string](),
		DefaultTargets:  mapset.NewSet[string](),
		Agents:          mapset.NewSet[string](),
		Groups:          mapset.NewSet[string](),
		Classes:         mapset.NewSet[string](),
		Origins:         mapset.NewSet[string](),
		Modes:           mapset.NewSet[string](),
	}
}

// parseRule builds a Rule from every statement sharing one subject.
func parseRule(subject rdf.Term, triples []rdf.Triple) *Rule {
	r := newRule(subject)
	for _, t := range triples {
		// Structured parsing only applies to IRI-object statements on the
		// WAC predicates; anything else is preserved verbatim.
		if t.Predicate.Kind() != rdf.KindIRI || t.Object.Kind() != rdf.KindIRI {
			r.Extra = append(r.Extra, t)
			continue
		}
		obj := t.Object.Value()
		switch t.Predicate.Value() {
		case rdf.RDFType:
			r.Types.Add(obj)
		case rdf.ACLAccessTo:
			r.ResourceTargets.Add(obj)
		case rdf.ACLDefault, rdf.ACLDefaultForNew:
			r.DefaultTargets.Add(obj)
		case rdf.ACLAgent:
			r.Agents.Add(obj)
		case rdf.ACLAgentGroup:
			r.Groups.Add(obj)
		case rdf.ACLAgentClass:
			r.Classes.Add(obj)
		case rdf.ACLOrigin:
			r.Origins.Add(obj)
		case rdf.ACLMode:
			r.Modes.Add(obj)
		default:
			r.Extra = append(r.Extra, t)
		}
	}
	return r
}

// IsAuthorization reports whether the subject is typed acl:Authorization.
// Subjects carrying accessTo or mode statements without the type are not
// rules and are never treated as such.
func (r *Rule) IsAuthorization() bool {
	return r.Types.Contains(rdf.ACLAuthorization)
}

// Effective reports whether the rule grants anything at all: it must be an
// authorization with at least one target, one mode, and one agent, group, or
// class grantee. An origin constraint on its own names nobody.
func (r *Rule) Effective() bool {
	if !r.IsAuthorization() {
		return false
	}
	if r.ResourceTargets.Cardinality() == 0 && r.DefaultTargets.Cardinality() == 0 {
		return false
	}
	if r.Modes.Cardinality() == 0 {
		return false
	}
	return r.Agents.Cardinality() > 0 || r.Groups.Cardinality() > 0 || r.Classes.Cardinality() > 0
}

// hasForeignStatements reports whether the subject serves a purpose besides
// access control. Such rules are never garbage collected.
func (r *Rule) hasForeignStatements() bool {
	if len(r.Extra) > 0 {
		return true
	}
	return r.Types.Difference(mapset.NewSet(rdf.ACLAuthorization)).Cardinality() > 0
}

// Clone returns a deep copy of the rule under the same subject.
func (r *Rule) Clone() *Rule {
	out := &Rule{
		Subject:         r.Subject,
		Types:           r.Types.Clone(),
		ResourceTargets: r.ResourceTargets.Clone(),
		DefaultTargets:  r.DefaultTargets.Clone(),
		Agents:          r.Agents.Clone(),
		Groups:          r.Groups.Clone(),
		Classes:         r.Classes.Clone(),
		Origins:         r.Origins.Clone(),
		Modes:           r.Modes.Clone(),
	}
	if len(r.Extra) > 0 {
		out.Extra = append([]rdf.Triple(nil), r.Extra...)
	}
	return out
}

// Triples projects the rule back into statements in deterministic order.
func (r *Rule) Triples() []rdf.Triple {
	var out []rdf.Triple
	emit := func(predicate string, values mapset.Set[string]) {
		for _, v := range sortedValues(values) {
			out = append(out, rdf.Triple{
				Subject:   r.Subject,
				Predicate: rdf.IRI(predicate),
				Object:    rdf.IRI(v),
			})
		}
	}
	emit(rdf.RDFType, r.Types)
	emit(rdf.ACLAccessTo, r.ResourceTargets)
	emit(rdf.ACLDefault, r.DefaultTargets)
	emit(rdf.ACLAgent, r.Agents)
	emit(rdf.ACLAgentGroup, r.Groups)
	emit(rdf.ACLAgentClass, r.Classes)
	emit(rdf.ACLOrigin, r.Origins)
	emit(rdf.ACLMode, r.Modes)
	out = append(out, r.Extra...)
	return out
}

func sortedValues(s mapset.Set[string]) []string {
	values := s.ToSlice()
	sort.Strings(values)
	return values
}

// AuthorizationRules returns every rule in the set typed acl:Authorization,
// in stored order.
func AuthorizationRules(rs *RuleSet) []*Rule {
	out := make([]*Rule, 0, len(rs.Rules))
	for _, r := range rs.Rules {
		if r.IsAuthorization() {
			out = append(out, r)
		}
	}
	return out
}

// ScopedToResource filters rules that apply directly to the given resource.
func ScopedToResource(rules []*Rule, resourceURL string) []*Rule {
	out := make([]*Rule, 0, len(rules))
	for _, r := range rules {
		if r.ResourceTargets.Contains(resourceURL) {
			out = append(out, r)
		}
	}
	return out
}

// ScopedAsDefaultFor filters rules a container declares for its children.
func ScopedAsDefaultFor(rules []*Rule, containerURL string) []*Rule {
	out := make([]*Rule, 0, len(rules))
	for _, r := range rules {
		if r.DefaultTargets.Contains(containerURL) {
			out = append(out, r)
		}
	}
	return out
}

// RulesForGrantee filters rules that name the grantee in the selector's facet.
func RulesForGrantee(rules []*Rule, g Grantee) []*Rule {
	out := make([]*Rule, 0, len(rules))
	for _, r := range rules {
		if g.matches(r) {
			out = append(out, r)
		}
	}
	return out
}
