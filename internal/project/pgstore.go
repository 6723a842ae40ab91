package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"canvas/internal/infra"
	"canvas/internal/sqlinline"
)

// PGStore persists project documents in the projects table's JSONB content
// column.
type PGStore struct {
	sql infra.SQLExecutor
}

func NewPGStore(sql infra.SQLExecutor) *PGStore {
	return &PGStore{sql: sql}
}

func (s *PGStore) Get(ctx context.Context, projectID string) (*Content, error) {
	var raw []byte
	row := s.sql.QueryRow(ctx, sqlinline.QSelectProjectContent, projectID)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("project: load %s: %w", projectID, err)
	}
	var content Content
	if err := json.Unmarshal(raw, &content); err != nil {
		return nil, fmt.Errorf("project: decode %s: %w", projectID, err)
	}
	return &content, nil
}

func (s *PGStore) Put(ctx context.Context, projectID string, content *Content) error {
	raw, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("project: encode %s: %w", projectID, err)
	}
	tag, err := s.sql.Exec(ctx, sqlinline.QUpdateProjectContent, projectID, raw)
	if err != nil {
		return fmt.Errorf("project: write %s: %w", projectID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ Store = (*PGStore)(nil)
