package rdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tr(s, p, o string) Triple {
	return Triple{Subject: IRI(s), Predicate: IRI(p), Object: IRI(o)}
}

func TestGraphAddDeduplicates(t *testing.T) {
	g := NewGraph()
	g.Add(tr("s", "p", "o"))
	g.Add(tr("s", "p", "o"))
	g.Add(tr("s", "p", "o2"))

	assert.Equal(t, 2, g.Len())
	assert.Len(t, g.BySubject(IRI("s")), 2)
}

func TestGraphRemove(t *testing.T) {
	g := NewGraph(
		tr("s1", "p", "o"),
		tr("s2", "p", "o"),
	)

	g.Remove(tr("s1", "p", "o"))
	assert.Equal(t, 1, g.Len())
	assert.Empty(t, g.BySubject(IRI("s1")))
	assert.Equal(t, []Term{IRI("s2")}, g.Subjects())

	// removing a triple that is not there is a no-op
	g.Remove(tr("s1", "p", "o"))
	assert.Equal(t, 1, g.Len())
}

func TestGraphDeterministicOrder(t *testing.T) {
	build := func() *Graph {
		return NewGraph(
			tr("b", "p", "1"),
			tr("a", "p", "1"),
			tr("b", "p", "2"),
		)
	}

	first := build().Triples()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, build().Triples())
	}

	// insertion order per subject, subjects in first-insertion order
	require.Len(t, first, 3)
	assert.Equal(t, IRI("b"), first[0].Subject)
	assert.Equal(t, IRI("b"), first[1].Subject)
	assert.Equal(t, IRI("a"), first[2].Subject)
}

func TestDiff(t *testing.T) {
	old := []Triple{tr("s", "p", "keep"), tr("s", "p", "gone")}
	new_ := []Triple{tr("s", "p", "keep"), tr("s", "p", "fresh")}

	added, removed := Diff(old, new_)
	assert.Equal(t, []Triple{tr("s", "p", "fresh")}, added)
	assert.Equal(t, []Triple{tr("s", "p", "gone")}, removed)
}

func TestDiffIdentical(t *testing.T) {
	ts := []Triple{tr("s", "p", "o")}
	added, removed := Diff(ts, ts)
	assert.Empty(t, added)
	assert.Empty(t, removed)
}

func TestTermKinds(t *testing.T) {
	assert.Equal(t, KindIRI, IRI("x").Kind())
	assert.Equal(t, KindBlank, Blank("x").Kind())
	assert.Equal(t, KindLiteral, Literal("x").Kind())
	assert.True(t, Term{}.IsZero())

	// terms are comparable; same kind+value is the same term
	assert.Equal(t, IRI("x"), IRI("x"))
	assert.NotEqual(t, IRI("x"), Blank("x"))
}

func TestKindFromString(t *testing.T) {
	for _, kind := range []TermKind{KindIRI, KindBlank, KindLiteral} {
		parsed, err := KindFromString(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	_, err := KindFromString("bogus")
	assert.Error(t, err)
}
