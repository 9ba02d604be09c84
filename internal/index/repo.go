package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DocumentRow represents a row in the documents table with its tags.
type DocumentRow struct {
	Title       string    `json:"title"`
	Path        string    `json:"path"`
	Checksum    string    `json:"checksum"`
	Tags        []string  `json:"tags"`
	ProcessedAt time.Time `json:"processed_at"`
}

// TagCount is a tag with the number of documents linking to it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// UpsertDocument inserts or replaces a document and its tag set within a
// transaction.
func (db *DB) UpsertDocument(d DocumentRow) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if d.ProcessedAt.IsZero() {
		d.ProcessedAt = time.Now().UTC()
	}
	_, err = tx.Exec(`
		INSERT INTO documents (title, path, checksum, processed_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(title) DO UPDATE SET
			path         = CASE WHEN excluded.path = '' THEN documents.path ELSE excluded.path END,
			checksum     = CASE WHEN excluded.checksum = '' THEN documents.checksum ELSE excluded.checksum END,
			processed_at = excluded.processed_at
	`, d.Title, d.Path, d.Checksum, d.ProcessedAt)
	if err != nil {
		return fmt.Errorf("index: upsert document: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM document_tags WHERE title = ?`, d.Title); err != nil {
		return fmt.Errorf("index: clear tags: %w", err)
	}
	if len(d.Tags) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO document_tags (title, tag, position) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare tag insert: %w", err)
		}
		defer stmt.Close()
		for i, tag := range d.Tags {
			if _, err := stmt.Exec(d.Title, tag, i); err != nil {
				return fmt.Errorf("index: insert tag: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteDocument removes a document and its tags.
func (db *DB) DeleteDocument(title string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM document_tags WHERE title = ?`, title); err != nil {
		return fmt.Errorf("index: delete tags: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM documents WHERE title = ?`, title); err != nil {
		return fmt.Errorf("index: delete document: %w", err)
	}
	return tx.Commit()
}

// ChecksumByPath returns the checksum recorded for the document at path, or
// empty string if the path was never processed.
func (db *DB) ChecksumByPath(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM documents WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: checksum: %w", err)
	}
	return cs, nil
}

// GetDocument returns the row for title, or nil if it is not indexed.
func (db *DB) GetDocument(title string) (*DocumentRow, error) {
	var d DocumentRow
	err := db.conn.QueryRow(`SELECT title, path, checksum, processed_at FROM documents WHERE title = ?`, title).
		Scan(&d.Title, &d.Path, &d.Checksum, &d.ProcessedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get document: %w", err)
	}
	tags, err := db.TagsFor(title)
	if err != nil {
		return nil, err
	}
	d.Tags = tags
	return &d, nil
}

// TagsFor returns the tags of a document in extraction order.
func (db *DB) TagsFor(title string) ([]string, error) {
	return db.strings(`SELECT tag FROM document_tags WHERE title = ? ORDER BY position, tag`, title)
}

// DocumentsFor returns the titles tagged with tag, sorted.
func (db *DB) DocumentsFor(tag string) ([]string, error) {
	return db.strings(`SELECT title FROM document_tags WHERE tag = ? ORDER BY title`, tag)
}

// Titles returns every indexed document title, sorted.
func (db *DB) Titles() ([]string, error) {
	return db.strings(`SELECT title FROM documents ORDER BY title`)
}

// TagCounts returns every tag with its document count, most used first.
func (db *DB) TagCounts() ([]TagCount, error) {
	rows, err := db.conn.Query(`
		SELECT tag, COUNT(*) AS n
		FROM document_tags
		GROUP BY tag
		ORDER BY n DESC, tag ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("index: tag counts: %w", err)
	}
	defer rows.Close()

	var out []TagCount
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

func (db *DB) strings(query string, args ...any) ([]string, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("index: query: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
