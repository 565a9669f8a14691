package wac

import (
	"github.com/itme/solidacl/internal/rdf"
)

// RuleSet is one ACL dataset. AccessTo is the resource or container it
// governs; SourceURL is where it was fetched from, empty for a fresh set.
// Every transform returns a new value, the receiver is never modified.
type RuleSet struct {
	SourceURL string
	AccessTo  string
	Rules     []*Rule

	// statements on subjects that are not authorizations; carried through
	// every transform and written back on full replacement
	others []rdf.Triple

	// statement snapshot at fetch (or last persist) time
	baseline []rdf.Triple
}

// ChangeLog is the statement delta of a rule set against its fetched state.
type ChangeLog struct {
	Additions []rdf.Triple
	Deletions []rdf.Triple
}

func (c ChangeLog) Empty() bool {
	return len(c.Additions) == 0 && len(c.Deletions) == 0
}

// NewRuleSet returns a fresh, empty rule set governing the given URL.
func NewRuleSet(accessTo string) *RuleSet {
	return &RuleSet{AccessTo: accessTo}
}

// ParseRuleSet builds a rule set from fetched statements. Subjects typed
// acl:Authorization become rules; every other subject's statements are kept
// aside and round-trip unchanged.
func ParseRuleSet(sourceURL string, triples []rdf.Triple) *RuleSet {
	g := rdf.NewGraph(triples...)
	rs := &RuleSet{SourceURL: sourceURL}
	for _, subject := range g.Subjects() {
		stmts := g.BySubject(subject)
		rule := parseRule(subject, stmts)
		if rule.IsAuthorization() {
			rs.Rules = append(rs.Rules, rule)
			continue
		}
		rs.others = append(rs.others, stmts...)
	}
	rs.baseline = g.Triples()
	return rs
}

// Triples projects the rule set into statements in deterministic order.
func (rs *RuleSet) Triples() []rdf.Triple {
	var out []rdf.Triple
	for _, r := range rs.Rules {
		out = append(out, r.Triples()...)
	}
	out = append(out, rs.others...)
	return out
}

// ChangeLog returns the delta between the current statements and the
// fetched snapshot. Fresh rule sets report every statement as an addition.
func (rs *RuleSet) ChangeLog() ChangeLog {
	added, removed := rdf.Diff(rs.baseline, rs.Triples())
	return ChangeLog{Additions: added, Deletions: removed}
}

// BoundTo returns a copy of the rule set governing the given URL.
func (rs *RuleSet) BoundTo(accessTo string) *RuleSet {
	out := rs.shallowCopy()
	out.AccessTo = accessTo
	return out
}

// settled returns a copy whose snapshot matches its current statements and
// whose source is the given URL. Called after a successful persist.
func (rs *RuleSet) settled(sourceURL, accessTo string) *RuleSet {
	out := rs.shallowCopy()
	out.SourceURL = sourceURL
	out.AccessTo = accessTo
	out.baseline = rs.Triples()
	return out
}

func (rs *RuleSet) shallowCopy() *RuleSet {
	out := *rs
	out.Rules = append([]*Rule(nil), rs.Rules...)
	return &out
}
