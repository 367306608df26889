package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"getmytext-cli/internal/model"
)

// Get returns the document for id. A document that was never saved reads as
// empty content with a zero UpdatedAt.
func (s *Store) Get(ctx context.Context, id model.DocID) (model.Document, error) {
	doc := model.Document{ID: id}
	var updated int64
	err := s.db.QueryRowContext(ctx,
		`SELECT content, updated_at_unixms FROM contents WHERE id = ?`, string(id),
	).Scan(&doc.Content, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return doc, nil
	}
	if err != nil {
		return model.Document{}, err
	}
	if updated > 0 {
		doc.UpdatedAt = time.UnixMilli(updated).UTC()
	}
	return doc, nil
}

// Put replaces the content stored under id.
func (s *Store) Put(ctx context.Context, id model.DocID, content string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contents(id, content, updated_at_unixms) VALUES(?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			updated_at_unixms = excluded.updated_at_unixms
	`, string(id), content, s.now().UnixMilli())
	return err
}
