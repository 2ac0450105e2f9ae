package seed

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"readyroom/config"
	"readyroom/core/store"
)

func setupSeedEnv(t *testing.T) (*Seeder, store.ChecklistsStore, store.IncidentsStore, store.AuditStore, *sql.DB) {
	t.Helper()
	cfg := &config.AppConfig{DBPath: filepath.Join(t.TempDir(), "seed.db")}
	db, err := store.NewDB(cfg, nil)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.ApplyMigrations(context.Background(), db, nil); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	checklists := store.NewChecklistsStore(db)
	incidents := store.NewIncidentsStore(db)
	audits := store.NewAuditStore(db)
	return NewSeeder(checklists, incidents, audits), checklists, incidents, audits, db
}

func TestEnsureSeededCreatesExampleWorkspace(t *testing.T) {
	seeder, checklists, incidents, audits, _ := setupSeedEnv(t)
	ctx := context.Background()

	if err := seeder.EnsureSeeded(ctx, "auth0|fresh", "fresh@example.com"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	lists, err := checklists.ListChecklistsByOwner(ctx, "auth0|fresh")
	if err != nil || len(lists) != 1 {
		t.Fatalf("expected 1 checklist, got %d err %v", len(lists), err)
	}
	steps, err := checklists.ListSteps(ctx, lists[0].ID)
	if err != nil || len(steps) != 5 {
		t.Fatalf("expected 5 seed steps, got %d err %v", len(steps), err)
	}
	for _, st := range steps {
		if st.Done {
			t.Fatalf("seed steps must start undone: %+v", st)
		}
		if st.UpdatedBy != "fresh@example.com" {
			t.Fatalf("seed step attribution wrong: %+v", st)
		}
	}

	incs, err := incidents.ListIncidentsByOwner(ctx, "auth0|fresh")
	if err != nil || len(incs) != 1 {
		t.Fatalf("expected 1 incident, got %d err %v", len(incs), err)
	}
	if incs[0].Severity != 2 || incs[0].Status != store.StatusInvestigating {
		t.Fatalf("seed incident shape wrong: %+v", incs[0])
	}
	updates, err := incidents.ListUpdates(ctx, incs[0].ID)
	if err != nil || len(updates) != 1 {
		t.Fatalf("expected 1 seed update, got %d err %v", len(updates), err)
	}

	records, err := audits.ListByUser(ctx, "auth0|fresh", 0)
	if err != nil || len(records) != 1 {
		t.Fatalf("expected 1 seed audit record, got %d err %v", len(records), err)
	}
	if records[0].Action != "seed" || records[0].EntityType != "system" {
		t.Fatalf("seed audit record wrong: %+v", records[0])
	}
}

func TestEnsureSeededIsIdempotent(t *testing.T) {
	seeder, checklists, incidents, _, _ := setupSeedEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := seeder.EnsureSeeded(ctx, "auth0|fresh", "fresh@example.com"); err != nil {
			t.Fatalf("seed round %d: %v", i, err)
		}
	}

	lists, _ := checklists.ListChecklistsByOwner(ctx, "auth0|fresh")
	incs, _ := incidents.ListIncidentsByOwner(ctx, "auth0|fresh")
	if len(lists) != 1 || len(incs) != 1 {
		t.Fatalf("reseeded: %d checklists, %d incidents", len(lists), len(incs))
	}
}

func TestOwningChecklistSuppressesSeeding(t *testing.T) {
	seeder, checklists, incidents, _, _ := setupSeedEnv(t)
	ctx := context.Background()

	own := &store.Checklist{ID: "c1", OwnerSub: "auth0|veteran", Title: "Already here", CreatedAt: store.NowISO()}
	if err := checklists.CreateChecklist(ctx, own); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := seeder.EnsureSeeded(ctx, "auth0|veteran", "vet@example.com"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// A user with any checklist is never reseeded, even with an empty
	// incident list.
	incs, _ := incidents.ListIncidentsByOwner(ctx, "auth0|veteran")
	if len(incs) != 0 {
		t.Fatalf("seeding ran for user with existing checklist: %+v", incs)
	}
}
