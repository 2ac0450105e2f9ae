package store

import (
	"context"
	"database/sql"
	"errors"
)

const (
	StatusOpen          = "open"
	StatusInvestigating = "investigating"
	StatusMitigated     = "mitigated"
	StatusResolved      = "resolved"
)

var validIncidentStatus = map[string]struct{}{
	StatusOpen:          {},
	StatusInvestigating: {},
	StatusMitigated:     {},
	StatusResolved:      {},
}

// ValidIncidentStatus reports whether status is one of the four
// enumerated lifecycle values.
func ValidIncidentStatus(status string) bool {
	_, ok := validIncidentStatus[status]
	return ok
}

type Incident struct {
	ID        string           `json:"id"`
	OwnerSub  string           `json:"-"`
	Title     string           `json:"title"`
	Severity  int              `json:"severity"`
	Status    string           `json:"status"`
	CreatedAt string           `json:"createdAt"`
	Updates   []IncidentUpdate `json:"updates"`
}

type IncidentUpdate struct {
	ID         string `json:"id"`
	IncidentID string `json:"-"`
	Note       string `json:"note"`
	By         string `json:"by"`
	At         string `json:"at"`
}

// IncidentsStore scopes incident lookups and mutations to the owning
// user, mirroring ChecklistsStore.
type IncidentsStore interface {
	CreateIncident(ctx context.Context, in *Incident) error
	GetOwnedIncident(ctx context.Context, id, ownerSub string) (*Incident, error)
	ListIncidentsByOwner(ctx context.Context, ownerSub string) ([]Incident, error)
	SetStatus(ctx context.Context, id, ownerSub, status string) error

	AddUpdate(ctx context.Context, u *IncidentUpdate) error
	ListUpdates(ctx context.Context, incidentID string) ([]IncidentUpdate, error)
}

type incidentsStore struct {
	db *sql.DB
}

func NewIncidentsStore(db *sql.DB) IncidentsStore {
	return &incidentsStore{db: db}
}

func (s *incidentsStore) CreateIncident(ctx context.Context, in *Incident) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO incidents(id, user_sub, title, severity, status, created_at)
		VALUES(?,?,?,?,?,?)`,
		in.ID, in.OwnerSub, in.Title, in.Severity, in.Status, in.CreatedAt)
	return err
}

func (s *incidentsStore) GetOwnedIncident(ctx context.Context, id, ownerSub string) (*Incident, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_sub, title, severity, status, created_at
		FROM incidents WHERE id=? AND user_sub=?`, id, ownerSub)
	var in Incident
	if err := row.Scan(&in.ID, &in.OwnerSub, &in.Title, &in.Severity, &in.Status, &in.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &in, nil
}

func (s *incidentsStore) ListIncidentsByOwner(ctx context.Context, ownerSub string) ([]Incident, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_sub, title, severity, status, created_at
		FROM incidents WHERE user_sub=? ORDER BY created_at DESC`, ownerSub)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Incident
	for rows.Next() {
		var in Incident
		if err := rows.Scan(&in.ID, &in.OwnerSub, &in.Title, &in.Severity, &in.Status, &in.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, in)
	}
	return res, rows.Err()
}

func (s *incidentsStore) SetStatus(ctx context.Context, id, ownerSub, status string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE incidents SET status=? WHERE id=? AND user_sub=?`,
		status, id, ownerSub)
	return err
}

func (s *incidentsStore) AddUpdate(ctx context.Context, u *IncidentUpdate) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO incident_updates(id, incident_id, note, author, at)
		VALUES(?,?,?,?,?)`,
		u.ID, u.IncidentID, u.Note, u.By, u.At)
	return err
}

// ListUpdates returns updates newest-first.
func (s *incidentsStore) ListUpdates(ctx context.Context, incidentID string) ([]IncidentUpdate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, incident_id, note, author, at
		FROM incident_updates WHERE incident_id=? ORDER BY at DESC, rowid DESC`, incidentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []IncidentUpdate
	for rows.Next() {
		var u IncidentUpdate
		if err := rows.Scan(&u.ID, &u.IncidentID, &u.Note, &u.By, &u.At); err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}
