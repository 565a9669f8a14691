package wac

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"

	"github.com/itme/solidacl/internal/rdf"
)

func ruleWithModes(modes ...string) *Rule {
	r := newRule(rdf.IRI("https://pod.example/r.acl#rule"))
	r.Types.Add(rdf.ACLAuthorization)
	r.Modes = mapset.NewSet(modes...)
	return r
}

func TestModesOfWriteImpliesAppend(t *testing.T) {
	modes := ModesOf(ruleWithModes(rdf.ModeWrite))
	assert.True(t, modes.Write)
	assert.True(t, modes.Append)
	assert.False(t, modes.Read)
	assert.False(t, modes.Control)
}

func TestModesOf(t *testing.T) {
	tests := []struct {
		name   string
		stored []string
		want   AccessModes
	}{
		{"empty", nil, AccessModes{}},
		{"read", []string{rdf.ModeRead}, AccessModes{Read: true}},
		{"append", []string{rdf.ModeAppend}, AccessModes{Append: true}},
		{"write", []string{rdf.ModeWrite}, AccessModes{Append: true, Write: true}},
		{"control", []string{rdf.ModeControl}, AccessModes{Control: true}},
		{
			"all",
			[]string{rdf.ModeRead, rdf.ModeAppend, rdf.ModeWrite, rdf.ModeControl},
			AccessModes{Read: true, Append: true, Write: true, Control: true},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ModesOf(ruleWithModes(tc.stored...)))
		})
	}
}

func TestCombineEmptyMeansNoAccess(t *testing.T) {
	assert.Equal(t, AccessModes{}, Combine(nil))
	assert.Equal(t, AccessModes{}, Combine([]AccessModes{}))
}

func TestCombineIsFieldwiseOr(t *testing.T) {
	sets := []AccessModes{
		{Read: true},
		{Control: true},
		{Append: true},
	}
	want := AccessModes{Read: true, Append: true, Control: true}
	assert.Equal(t, want, Combine(sets))
}

func TestCombineCommutativeAssociative(t *testing.T) {
	a := AccessModes{Read: true}
	b := AccessModes{Write: true, Append: true}
	c := AccessModes{Control: true}

	assert.Equal(t, a.Union(b), b.Union(a))
	assert.Equal(t, a.Union(b).Union(c), a.Union(b.Union(c)))
	assert.Equal(t, Combine([]AccessModes{a, b, c}), Combine([]AccessModes{c, b, a}))
}

func TestUnionNormalizes(t *testing.T) {
	// a union carrying Write always carries Append too
	got := AccessModes{}.Union(AccessModes{Write: true})
	assert.True(t, got.Append)
}

func TestModeIRIsMinimal(t *testing.T) {
	// Append is implied by Write and not stored separately
	stored := AccessModes{Append: true, Write: true}.modeIRIs()
	assert.True(t, stored.Contains(rdf.ModeWrite))
	assert.False(t, stored.Contains(rdf.ModeAppend))

	stored = AccessModes{Append: true}.modeIRIs()
	assert.True(t, stored.Contains(rdf.ModeAppend))
}

func TestAccessModesString(t *testing.T) {
	assert.Equal(t, "None", AccessModes{}.String())
	assert.Equal(t, "Read+Write", AccessModes{Read: true, Write: true}.String())
}
