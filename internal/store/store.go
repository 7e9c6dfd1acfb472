// Package store persists documents in SQLite. Document bodies are stored as
// the engine's JSON wire format, so anything that can render the schema can
// read them back.
package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/virtues-os/scribe/internal/engine"
)

// Document is a stored document plus its metadata.
type Document struct {
	ID        string
	Title     string
	Body      *engine.Node
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store handles SQLite operations for documents.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the document database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) initSchema() error {
	schema := `
CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    body TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_updated ON documents(updated_at DESC);
`
	_, err := s.db.Exec(schema)
	return err
}

// generateID creates a new document ID with "doc-" prefix and 8 hex chars.
func generateID() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "doc-" + hex.EncodeToString(b), nil
}

// Create inserts a new document.
func (s *Store) Create(title string, body *engine.Node) (*Document, error) {
	id, err := generateID()
	if err != nil {
		return nil, fmt.Errorf("generate ID: %w", err)
	}
	data, err := body.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}

	now := time.Now().UTC()
	doc := &Document{ID: id, Title: title, Body: body, CreatedAt: now, UpdatedAt: now}
	_, err = s.db.Exec(`
		INSERT INTO documents (id, title, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, doc.ID, doc.Title, string(data),
		doc.CreatedAt.Format(time.RFC3339),
		doc.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	return doc, nil
}

// Get retrieves a document by ID. A missing document returns (nil, nil).
func (s *Store) Get(id string) (*Document, error) {
	var doc Document
	var body, createdAt, updatedAt string

	err := s.db.QueryRow(`
		SELECT id, title, body, created_at, updated_at
		FROM documents WHERE id = ?
	`, id).Scan(&doc.ID, &doc.Title, &body, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query document: %w", err)
	}

	var node engine.Node
	if err := node.UnmarshalJSON([]byte(body)); err != nil {
		return nil, fmt.Errorf("decode body of %s: %w", doc.ID, err)
	}
	doc.Body = &node
	doc.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	doc.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &doc, nil
}

// Save updates a document's title and body.
func (s *Store) Save(id, title string, body *engine.Node) error {
	data, err := body.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	res, err := s.db.Exec(`
		UPDATE documents SET title = ?, body = ?, updated_at = ?
		WHERE id = ?
	`, title, string(data), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("document not found: %s", id)
	}
	return nil
}

// List retrieves document metadata ordered by last update. Bodies are not
// decoded.
func (s *Store) List() ([]Document, error) {
	rows, err := s.db.Query(`
		SELECT id, title, created_at, updated_at
		FROM documents ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		var createdAt, updatedAt string
		if err := rows.Scan(&doc.ID, &doc.Title, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		doc.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Delete removes a document.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("document not found: %s", id)
	}
	return nil
}
