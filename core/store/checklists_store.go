package store

import (
	"context"
	"database/sql"
	"errors"
)

type Checklist struct {
	ID        string `json:"id"`
	OwnerSub  string `json:"-"`
	Title     string `json:"title"`
	CreatedAt string `json:"createdAt"`
	Steps     []Step `json:"steps"`
}

type Step struct {
	ID          string `json:"id"`
	ChecklistID string `json:"-"`
	Label       string `json:"label"`
	Done        bool   `json:"done"`
	UpdatedAt   string `json:"updatedAt"`
	UpdatedBy   string `json:"updatedBy"`
}

// ChecklistsStore scopes every lookup and mutation to the owning user.
// A checklist that exists but belongs to someone else is reported the
// same way as one that does not exist at all.
type ChecklistsStore interface {
	CreateChecklist(ctx context.Context, c *Checklist) error
	GetOwnedChecklist(ctx context.Context, id, ownerSub string) (*Checklist, error)
	ListChecklistsByOwner(ctx context.Context, ownerSub string) ([]Checklist, error)
	CountChecklistsByOwner(ctx context.Context, ownerSub string) (int, error)

	AddStep(ctx context.Context, s *Step) error
	ListSteps(ctx context.Context, checklistID string) ([]Step, error)
	GetStep(ctx context.Context, checklistID, stepID string) (*Step, error)
	SetStepDone(ctx context.Context, checklistID, stepID string, done bool, updatedAt, updatedBy string) error
}

type checklistsStore struct {
	db *sql.DB
}

func NewChecklistsStore(db *sql.DB) ChecklistsStore {
	return &checklistsStore{db: db}
}

func (s *checklistsStore) CreateChecklist(ctx context.Context, c *Checklist) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO checklists(id, user_sub, title, created_at)
		VALUES(?,?,?,?)`,
		c.ID, c.OwnerSub, c.Title, c.CreatedAt)
	return err
}

func (s *checklistsStore) GetOwnedChecklist(ctx context.Context, id, ownerSub string) (*Checklist, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_sub, title, created_at
		FROM checklists WHERE id=? AND user_sub=?`, id, ownerSub)
	var c Checklist
	if err := row.Scan(&c.ID, &c.OwnerSub, &c.Title, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (s *checklistsStore) ListChecklistsByOwner(ctx context.Context, ownerSub string) ([]Checklist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_sub, title, created_at
		FROM checklists WHERE user_sub=? ORDER BY created_at DESC`, ownerSub)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Checklist
	for rows.Next() {
		var c Checklist
		if err := rows.Scan(&c.ID, &c.OwnerSub, &c.Title, &c.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (s *checklistsStore) CountChecklistsByOwner(ctx context.Context, ownerSub string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM checklists WHERE user_sub=?`, ownerSub).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *checklistsStore) AddStep(ctx context.Context, st *Step) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO checklist_steps(id, checklist_id, label, done, updated_at, updated_by)
		VALUES(?,?,?,?,?,?)`,
		st.ID, st.ChecklistID, st.Label, boolToInt(st.Done), st.UpdatedAt, st.UpdatedBy)
	return err
}

// ListSteps returns steps in insertion order.
func (s *checklistsStore) ListSteps(ctx context.Context, checklistID string) ([]Step, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, checklist_id, label, done, updated_at, updated_by
		FROM checklist_steps WHERE checklist_id=? ORDER BY rowid ASC`, checklistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Step
	for rows.Next() {
		var st Step
		var done int
		if err := rows.Scan(&st.ID, &st.ChecklistID, &st.Label, &done, &st.UpdatedAt, &st.UpdatedBy); err != nil {
			return nil, err
		}
		st.Done = done == 1
		res = append(res, st)
	}
	return res, rows.Err()
}

func (s *checklistsStore) GetStep(ctx context.Context, checklistID, stepID string) (*Step, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, checklist_id, label, done, updated_at, updated_by
		FROM checklist_steps WHERE checklist_id=? AND id=?`, checklistID, stepID)
	var st Step
	var done int
	if err := row.Scan(&st.ID, &st.ChecklistID, &st.Label, &done, &st.UpdatedAt, &st.UpdatedBy); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	st.Done = done == 1
	return &st, nil
}

func (s *checklistsStore) SetStepDone(ctx context.Context, checklistID, stepID string, done bool, updatedAt, updatedBy string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE checklist_steps SET done=?, updated_at=?, updated_by=?
		WHERE id=? AND checklist_id=?`,
		boolToInt(done), updatedAt, updatedBy, stepID, checklistID)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
