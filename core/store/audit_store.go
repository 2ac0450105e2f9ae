package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/gofrs/uuid/v5"
)

type AuditRecord struct {
	ID         string `json:"id"`
	UserSub    string `json:"userSub"`
	Action     string `json:"action"`
	EntityType string `json:"entityType"`
	EntityID   string `json:"entityId"`
	At         string `json:"at"`
	MetaJSON   string `json:"meta"`
}

// AuditStore is append-only: records are written once, immediately
// after the mutation they describe, and never updated or deleted.
// Metadata is serialized opaquely and never parsed back at request time.
type AuditStore interface {
	Record(ctx context.Context, userSub, action, entityType, entityID string, meta map[string]any) error
	ListByUser(ctx context.Context, userSub string, limit int) ([]AuditRecord, error)
}

type auditStore struct {
	db *sql.DB
}

func NewAuditStore(db *sql.DB) AuditStore {
	return &auditStore{db: db}
}

func (s *auditStore) Record(ctx context.Context, userSub, action, entityType, entityID string, meta map[string]any) error {
	if meta == nil {
		meta = map[string]any{}
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal audit meta: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_log(id, user_sub, action, entity_type, entity_id, at, meta_json)
		VALUES(?,?,?,?,?,?,?)`,
		uuid.Must(uuid.NewV4()).String(), userSub, action, entityType, entityID, NowISO(), string(raw))
	return err
}

func (s *auditStore) ListByUser(ctx context.Context, userSub string, limit int) ([]AuditRecord, error) {
	query := `
		SELECT id, user_sub, action, entity_type, entity_id, at, meta_json
		FROM audit_log WHERE user_sub=? ORDER BY at DESC, rowid DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := s.db.QueryContext(ctx, query, userSub)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []AuditRecord
	for rows.Next() {
		var rec AuditRecord
		if err := rows.Scan(&rec.ID, &rec.UserSub, &rec.Action, &rec.EntityType, &rec.EntityID, &rec.At, &rec.MetaJSON); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}
