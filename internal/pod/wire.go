package pod

import (
	"fmt"

	"github.com/itme/solidacl/internal/rdf"
)

// The wire format is a flat JSON encoding of statements. RDF serialization
// proper (Turtle, JSON-LD) is deliberately not this client's concern; the
// dev pod speaks the same encoding.

const (
	kindIRI     = "iri"
	kindBlank   = "blank"
	kindLiteral = "literal"
)

// TripleRecord is one statement on the wire. Kinds default to "iri".
type TripleRecord struct {
	Subject     string `json:"subject"`
	SubjectKind string `json:"subjectKind,omitempty"`
	Predicate   string `json:"predicate"`
	Object      string `json:"object"`
	ObjectKind  string `json:"objectKind,omitempty"`
}

// DatasetBody is the GET/PUT payload of an ACL document.
type DatasetBody struct {
	Triples []TripleRecord `json:"triples"`
}

// PatchBody is the PATCH payload: the statement delta since fetch.
type PatchBody struct {
	Additions []TripleRecord `json:"additions,omitempty"`
	Deletions []TripleRecord `json:"deletions,omitempty"`
}

func kindOf(t rdf.Term) string {
	switch t.Kind() {
	case rdf.KindBlank:
		return kindBlank
	case rdf.KindLiteral:
		return kindLiteral
	default:
		return kindIRI
	}
}

func termOf(value, kind string) (rdf.Term, error) {
	switch kind {
	case kindIRI, "":
		return rdf.IRI(value), nil
	case kindBlank:
		return rdf.Blank(value), nil
	case kindLiteral:
		return rdf.Literal(value), nil
	default:
		return rdf.Term{}, fmt.Errorf("unknown term kind %q", kind)
	}
}

// ToRecords encodes statements for the wire.
func ToRecords(triples []rdf.Triple) []TripleRecord {
	out := make([]TripleRecord, 0, len(triples))
	for _, t := range triples {
		out = append(out, TripleRecord{
			Subject:     t.Subject.Value(),
			SubjectKind: kindOf(t.Subject),
			Predicate:   t.Predicate.Value(),
			Object:      t.Object.Value(),
			ObjectKind:  kindOf(t.Object),
		})
	}
	return out
}

// FromRecords decodes wire statements. Predicates are always IRIs.
func FromRecords(records []TripleRecord) ([]rdf.Triple, error) {
	out := make([]rdf.Triple, 0, len(records))
	for _, rec := range records {
		subject, err := termOf(rec.Subject, rec.SubjectKind)
		if err != nil {
			return nil, fmt.Errorf("bad subject %q: %w", rec.Subject, err)
		}
		object, err := termOf(rec.Object, rec.ObjectKind)
		if err != nil {
			return nil, fmt.Errorf("bad object %q: %w", rec.Object, err)
		}
		out = append(out, rdf.Triple{
			Subject:   subject,
			Predicate: rdf.IRI(rec.Predicate),
			Object:    object,
		})
	}
	return out, nil
}
