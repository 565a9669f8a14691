// Package store persists resources and their ACL documents for the dev pod:
// a resource table describing what exists, and a statement table holding
// each document's triples.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/itme/solidacl/internal/rdf"
)

var (
	ErrResourceNotFound = errors.New("store: resource not found")
	ErrDocumentNotFound = errors.New("store: document not found")
)

const schema = `
CREATE TABLE IF NOT EXISTS resources (
	path         TEXT PRIMARY KEY,
	is_container INTEGER NOT NULL DEFAULT 0,
	acl_visible  INTEGER NOT NULL DEFAULT 1,
	forbidden    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS documents (
	doc TEXT PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS triples (
	doc          TEXT NOT NULL REFERENCES documents(doc) ON DELETE CASCADE,
	subject      TEXT NOT NULL,
	subject_kind TEXT NOT NULL,
	predicate    TEXT NOT NULL,
	object       TEXT NOT NULL,
	object_kind  TEXT NOT NULL,
	UNIQUE(doc, subject, subject_kind, predicate, object, object_kind)
);

CREATE INDEX IF NOT EXISTS idx_triples_doc ON triples(doc);
`

// Resource is one resource the dev pod serves. ACLVisible simulates a
// principal that may not see the ACL link; Forbidden simulates a 403.
type Resource struct {
	Path        string `db:"path"`
	IsContainer bool   `db:"is_container"`
	ACLVisible  bool   `db:"acl_visible"`
	Forbidden   bool   `db:"forbidden"`
}

type tripleRow struct {
	Doc         string `db:"doc"`
	Subject     string `db:"subject"`
	SubjectKind string `db:"subject_kind"`
	Predicate   string `db:"predicate"`
	Object      string `db:"object"`
	ObjectKind  string `db:"object_kind"`
}

// Store is a sqlite-backed resource and statement store.
type Store struct {
	db *sqlx.DB
}

// New migrates the schema and returns a store over the given database.
func New(db *sqlx.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertResource creates or updates a resource entry.
func (s *Store) UpsertResource(ctx context.Context, res *Resource) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO resources (path, is_container, acl_visible, forbidden)
		VALUES (:path, :is_container, :acl_visible, :forbidden)
		ON CONFLICT(path) DO UPDATE SET
			is_container = excluded.is_container,
			acl_visible  = excluded.acl_visible,
			forbidden    = excluded.forbidden
	`, res)
	if err != nil {
		return fmt.Errorf("upsert resource %s: %w", res.Path, err)
	}
	return nil
}

// GetResource looks up a resource by path.
func (s *Store) GetResource(ctx context.Context, path string) (*Resource, error) {
	var res Resource
	err := s.db.GetContext(ctx, &res, `SELECT * FROM resources WHERE path = ?`, path)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrResourceNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("get resource %s: %w", path, err)
	}
	return &res, nil
}

// DocumentExists reports whether a document was ever written.
func (s *Store) DocumentExists(ctx context.Context, doc string) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM documents WHERE doc = ?`, doc); err != nil {
		return false, fmt.Errorf("check document %s: %w", doc, err)
	}
	return n > 0, nil
}

// DocumentTriples returns every statement of a document.
func (s *Store) DocumentTriples(ctx context.Context, doc string) ([]rdf.Triple, error) {
	exists, err := s.DocumentExists(ctx, doc)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, doc)
	}

	var rows []tripleRow
	err = s.db.SelectContext(ctx, &rows, `
		SELECT * FROM triples WHERE doc = ? ORDER BY rowid
	`, doc)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", doc, err)
	}

	triples := make([]rdf.Triple, 0, len(rows))
	for _, row := range rows {
		t, err := row.triple()
		if err != nil {
			return nil, fmt.Errorf("read document %s: %w", doc, err)
		}
		triples = append(triples, t)
	}
	return triples, nil
}

// PutDocument replaces a document's statements wholesale.
func (s *Store) PutDocument(ctx context.Context, doc string, triples []rdf.Triple) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO documents (doc) VALUES (?) ON CONFLICT DO NOTHING`, doc); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM triples WHERE doc = ?`, doc); err != nil {
			return err
		}
		return insertTriples(ctx, tx, doc, triples)
	})
}

// PatchDocument applies a statement delta to an existing document.
func (s *Store) PatchDocument(ctx context.Context, doc string, additions, deletions []rdf.Triple) error {
	exists, err := s.DocumentExists(ctx, doc)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, doc)
	}

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, t := range deletions {
			row := rowOf(doc, t)
			_, err := tx.ExecContext(ctx, `
				DELETE FROM triples
				WHERE doc = ? AND subject = ? AND subject_kind = ?
				  AND predicate = ? AND object = ? AND object_kind = ?
			`, row.Doc, row.Subject, row.SubjectKind, row.Predicate, row.Object, row.ObjectKind)
			if err != nil {
				return err
			}
		}
		return insertTriples(ctx, tx, doc, additions)
	})
}

// DeleteDocument removes a document and its statements.
func (s *Store) DeleteDocument(ctx context.Context, doc string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE doc = ?`, doc)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", doc, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document %s: %w", doc, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrDocumentNotFound, doc)
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func insertTriples(ctx context.Context, tx *sqlx.Tx, doc string, triples []rdf.Triple) error {
	for _, t := range triples {
		row := rowOf(doc, t)
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO triples (doc, subject, subject_kind, predicate, object, object_kind)
			VALUES (:doc, :subject, :subject_kind, :predicate, :object, :object_kind)
			ON CONFLICT DO NOTHING
		`, row)
		if err != nil {
			return err
		}
	}
	return nil
}

func rowOf(doc string, t rdf.Triple) tripleRow {
	return tripleRow{
		Doc:         doc,
		Subject:     t.Subject.Value(),
		SubjectKind: t.Subject.Kind().String(),
		Predicate:   t.Predicate.Value(),
		Object:      t.Object.Value(),
		ObjectKind:  t.Object.Kind().String(),
	}
}

func (r tripleRow) triple() (rdf.Triple, error) {
	subjectKind, err := rdf.KindFromString(r.SubjectKind)
	if err != nil {
		return rdf.Triple{}, err
	}
	objectKind, err := rdf.KindFromString(r.ObjectKind)
	if err != nil {
		return rdf.Triple{}, err
	}
	return rdf.Triple{
		Subject:   term(subjectKind, r.Subject),
		Predicate: rdf.IRI(r.Predicate),
		Object:    term(objectKind, r.Object),
	}, nil
}

func term(kind rdf.TermKind, value string) rdf.Term {
	switch kind {
	case rdf.KindBlank:
		return rdf.Blank(value)
	case rdf.KindLiteral:
		return rdf.Literal(value)
	default:
		return rdf.IRI(value)
	}
}
