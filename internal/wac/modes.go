package wac

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/itme/solidacl/internal/rdf"
)

// AccessModes is the capability set a rule (or combination of rules) grants.
// Write implies Append; every constructor and combinator maintains that, so a
// value with Write set and Append clear never escapes this package.
// The zero value means "no access granted". It is distinct from an
// unresolved lookup, which callers signal separately.
type AccessModes struct {
	Read    bool
	Append  bool
	Write   bool
	Control bool
}

func (m AccessModes) normalized() AccessModes {
	if m.Write {
		m.Append = true
	}
	return m
}

// Union returns the fieldwise OR of both mode sets.
func (m AccessModes) Union(other AccessModes) AccessModes {
	return AccessModes{
		Read:    m.Read || other.Read,
		Append:  m.Append || other.Append,
		Write:   m.Write || other.Write,
		Control: m.Control || other.Control,
	}.normalized()
}

// IsEmpty reports whether no mode is granted.
func (m AccessModes) IsEmpty() bool {
	return m == AccessModes{}
}

func (m AccessModes) String() string {
	if m.IsEmpty() {
		return "None"
	}
	var parts []string
	if m.Read {
		parts = append(parts, "Read")
	}
	if m.Append {
		parts = append(parts, "Append")
	}
	if m.Write {
		parts = append(parts, "Write")
	}
	if m.Control {
		parts = append(parts, "Control")
	}
	return strings.Join(parts, "+")
}

// Combine folds a list of mode sets into one, starting from no access.
// An empty list means "no access", not "unknown".
func Combine(sets []AccessModes) AccessModes {
	var out AccessModes
	for _, s := range sets {
		out = out.Union(s)
	}
	return out
}

// ModesOf extracts the capability set a single rule grants. A stored
// acl:Write mode carries acl:Append with it even when Append is not
// literally present.
func ModesOf(r *Rule) AccessModes {
	return AccessModes{
		Read:    r.Modes.Contains(rdf.ModeRead),
		Append:  r.Modes.Contains(rdf.ModeAppend) || r.Modes.Contains(rdf.ModeWrite),
		Write:   r.Modes.Contains(rdf.ModeWrite),
		Control: r.Modes.Contains(rdf.ModeControl),
	}
}

// modeIRIs projects the mode set back to stored acl:mode objects. Append is
// omitted when Write already implies it, keeping persisted rules minimal.
func (m AccessModes) modeIRIs() mapset.Set[string] {
	out := mapset.NewSet[string]()
	if m.Read {
		out.Add(rdf.ModeRead)
	}
	if m.Append && !m.Write {
		out.Add(rdf.ModeAppend)
	}
	if m.Write {
		out.Add(rdf.ModeWrite)
	}
	if m.Control {
		out.Add(rdf.ModeControl)
	}
	return out
}
