package rdf

import "slices"

// Graph is a subject-indexed triple collection. It preserves insertion order
// per subject and subject order of first insertion, so iteration is
// deterministic for a given build sequence. Not safe for concurrent use.
type Graph struct {
	subjects []Term
	bySubj   map[Term][]Triple
}

func NewGraph(triples ...Triple) *Graph {
	g := &Graph{bySubj: make(map[Term][]Triple)}
	for _, t := range triples {
		g.Add(t)
	}
	return g
}

// Add inserts a triple. Duplicate triples are ignored.
func (g *Graph) Add(t Triple) {
	existing, ok := g.bySubj[t.Subject]
	if !ok {
		g.subjects = append(g.subjects, t.Subject)
	}
	if slices.Contains(existing, t) {
		return
	}
	g.bySubj[t.Subject] = append(existing, t)
}

// Remove deletes a triple if present.
func (g *Graph) Remove(t Triple) {
	existing, ok := g.bySubj[t.Subject]
	if !ok {
		return
	}
	idx := slices.Index(existing, t)
	if idx < 0 {
		return
	}
	existing = slices.Delete(existing, idx, idx+1)
	if len(existing) == 0 {
		delete(g.bySubj, t.Subject)
		if si := slices.Index(g.subjects, t.Subject); si >= 0 {
			g.subjects = slices.Delete(g.subjects, si, si+1)
		}
		return
	}
	g.bySubj[t.Subject] = existing
}

// BySubject returns a copy of all triples with the given subject.
func (g *Graph) BySubject(subject Term) []Triple {
	return slices.Clone(g.bySubj[subject])
}

// Subjects returns the distinct subjects in first-insertion order.
func (g *Graph) Subjects() []Term {
	return slices.Clone(g.subjects)
}

// Triples returns every triple in deterministic order.
func (g *Graph) Triples() []Triple {
	out := make([]Triple, 0, g.Len())
	for _, s := range g.subjects {
		out = append(out, g.bySubj[s]...)
	}
	return out
}

func (g *Graph) Len() int {
	n := 0
	for _, ts := range g.bySubj {
		n += len(ts)
	}
	return n
}

// Diff computes the triples added and removed going from old to new.
// Output order follows the input slices, so the result is stable.
func Diff(old, new []Triple) (added, removed []Triple) {
	oldSet := make(map[Triple]struct{}, len(old))
	for _, t := range old {
		oldSet[t] = struct{}{}
	}
	newSet := make(map[Triple]struct{}, len(new))
	for _, t := range new {
		newSet[t] = struct{}{}
	}
	for _, t := range new {
		if _, ok := oldSet[t]; !ok {
			added = append(added, t)
		}
	}
	for _, t := range old {
		if _, ok := newSet[t]; !ok {
			removed = append(removed, t)
		}
	}
	return added, removed
}
