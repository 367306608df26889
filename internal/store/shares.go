package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"getmytext-cli/internal/model"

	"github.com/google/uuid"
)

// CreateShare snapshots the current content of id under a fresh token.
func (s *Store) CreateShare(ctx context.Context, id model.DocID, kind model.ShareKind) (model.Share, error) {
	switch kind {
	case model.ShareKindPersistent, model.ShareKindBurn:
	default:
		return model.Share{}, fmt.Errorf("unknown share kind %q", kind)
	}
	doc, err := s.Get(ctx, id)
	if err != nil {
		return model.Share{}, err
	}
	sh := model.Share{
		Token:     uuid.NewString(),
		Kind:      kind,
		DocID:     id,
		Content:   doc.Content,
		CreatedAt: s.now().UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO shares(token, kind, doc_id, content, created_at_unixms) VALUES(?, ?, ?, ?, ?)`,
		sh.Token, string(sh.Kind), string(sh.DocID), sh.Content, sh.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return model.Share{}, err
	}
	return sh, nil
}

// GetShare reads a persistent share. Burn tokens are not visible here.
func (s *Store) GetShare(ctx context.Context, token string) (model.Share, error) {
	return s.scanShare(s.db.QueryRowContext(ctx,
		`SELECT token, kind, doc_id, content, created_at_unixms FROM shares WHERE token = ? AND kind = ?`,
		token, string(model.ShareKindPersistent),
	))
}

// Burn returns a burn share and deletes it in the same transaction; a second
// call with the same token returns ErrNotFound.
func (s *Store) Burn(ctx context.Context, token string) (model.Share, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Share{}, err
	}
	defer func() { _ = tx.Rollback() }()

	sh, err := s.scanShare(tx.QueryRowContext(ctx,
		`SELECT token, kind, doc_id, content, created_at_unixms FROM shares WHERE token = ? AND kind = ?`,
		token, string(model.ShareKindBurn),
	))
	if err != nil {
		return model.Share{}, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM shares WHERE token = ?`, token); err != nil {
		return model.Share{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Share{}, err
	}
	return sh, nil
}

func (s *Store) scanShare(row *sql.Row) (model.Share, error) {
	var sh model.Share
	var kind, docID string
	var created int64
	if err := row.Scan(&sh.Token, &kind, &docID, &sh.Content, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Share{}, ErrNotFound
		}
		return model.Share{}, err
	}
	sh.Kind = model.ShareKind(kind)
	sh.DocID = model.DocID(docID)
	sh.CreatedAt = time.UnixMilli(created).UTC()
	return sh, nil
}
