package rdf

import "fmt"

// TermKind discriminates the three kinds of RDF terms this package models.
type TermKind uint8

const (
	KindIRI TermKind = iota + 1
	KindBlank
	KindLiteral
)

func (k TermKind) String() string {
	switch k {
	case KindIRI:
		return "iri"
	case KindBlank:
		return "blank"
	case KindLiteral:
		return "literal"
	default:
		return "invalid"
	}
}

// KindFromString parses the string form produced by TermKind.String.
func KindFromString(s string) (TermKind, error) {
	switch s {
	case "iri":
		return KindIRI, nil
	case "blank":
		return KindBlank, nil
	case "literal":
		return KindLiteral, nil
	default:
		return 0, fmt.Errorf("unknown term kind %q", s)
	}
}

// Term is a single RDF term. The zero value is invalid and reports IsZero.
// Terms are comparable and can be used as map keys.
type Term struct {
	kind  TermKind
	value string
}

// IRI returns a named node term.
func IRI(value string) Term {
	return Term{kind: KindIRI, value: value}
}

// Blank returns a blank node term with the given local label.
func Blank(label string) Term {
	return Term{kind: KindBlank, value: label}
}

// Literal returns a plain literal term.
func Literal(value string) Term {
	return Term{kind: KindLiteral, value: value}
}

func (t Term) Kind() TermKind { return t.kind }
func (t Term) Value() string  { return t.value }
func (t Term) IsZero() bool   { return t.kind == 0 }

func (t Term) String() string {
	switch t.kind {
	case KindIRI:
		return "<" + t.value + ">"
	case KindBlank:
		return "_:" + t.value
	case KindLiteral:
		return fmt.Sprintf("%q", t.value)
	default:
		return "<invalid>"
	}
}

// Triple is a single subject-predicate-object statement.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

func (t Triple) String() string {
	return fmt.Sprintf("%s %s %s .", t.Subject, t.Predicate, t.Object)
}
