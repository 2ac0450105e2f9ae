package seed

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"readyroom/core/store"
)

const seedChecklistTitle = "Buffalo Go-Live – Core UI Validation"

var seedStepLabels = []string{
	"Confirm Auth0 login + role claims",
	"Validate responsive layout on laptop + iPad",
	"Verify WCAG focus states on key flows",
	"Simulate offline / network-loss behavior",
	"Capture screenshots for release notes",
}

const (
	seedIncidentTitle    = "OAuth redirect loop observed on client network"
	seedIncidentSeverity = 2
	seedIncidentStatus   = store.StatusInvestigating
	seedIncidentNote     = "Added router basename + updated Allowed Web Origins; retesting."
)

// Seeder populates a fresh user's workspace with one example checklist
// and one example incident the first time their lists are read.
type Seeder struct {
	checklists store.ChecklistsStore
	incidents  store.IncidentsStore
	audits     store.AuditStore
}

func NewSeeder(checklists store.ChecklistsStore, incidents store.IncidentsStore, audits store.AuditStore) *Seeder {
	return &Seeder{checklists: checklists, incidents: incidents, audits: audits}
}

// EnsureSeeded is idempotent per user. Owning at least one checklist,
// seeded or not, means nothing more is ever inserted, even if the
// user's incident list is empty.
func (s *Seeder) EnsureSeeded(ctx context.Context, userSub, userLabel string) error {
	n, err := s.checklists.CountChecklistsByOwner(ctx, userSub)
	if err != nil {
		return fmt.Errorf("count checklists: %w", err)
	}
	if n > 0 {
		return nil
	}

	checklist := &store.Checklist{
		ID:        newID(),
		OwnerSub:  userSub,
		Title:     seedChecklistTitle,
		CreatedAt: store.NowISO(),
	}
	if err := s.checklists.CreateChecklist(ctx, checklist); err != nil {
		return fmt.Errorf("seed checklist: %w", err)
	}
	for _, label := range seedStepLabels {
		step := &store.Step{
			ID:          newID(),
			ChecklistID: checklist.ID,
			Label:       label,
			Done:        false,
			UpdatedAt:   store.NowISO(),
			UpdatedBy:   userLabel,
		}
		if err := s.checklists.AddStep(ctx, step); err != nil {
			return fmt.Errorf("seed step: %w", err)
		}
	}

	incident := &store.Incident{
		ID:        newID(),
		OwnerSub:  userSub,
		Title:     seedIncidentTitle,
		Severity:  seedIncidentSeverity,
		Status:    seedIncidentStatus,
		CreatedAt: store.NowISO(),
	}
	if err := s.incidents.CreateIncident(ctx, incident); err != nil {
		return fmt.Errorf("seed incident: %w", err)
	}
	update := &store.IncidentUpdate{
		ID:         newID(),
		IncidentID: incident.ID,
		Note:       seedIncidentNote,
		By:         userLabel,
		At:         store.NowISO(),
	}
	if err := s.incidents.AddUpdate(ctx, update); err != nil {
		return fmt.Errorf("seed incident update: %w", err)
	}

	if err := s.audits.Record(ctx, userSub, "seed", "system", "seed", map[string]any{"created": true}); err != nil {
		return fmt.Errorf("seed audit: %w", err)
	}
	return nil
}

func newID() string {
	return uuid.Must(uuid.NewV4()).String()
}
