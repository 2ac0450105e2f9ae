package store

import (
	"context"
	"testing"
)

func TestIncidentOwnershipScoping(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	s := NewIncidentsStore(db)

	in := &Incident{ID: "i1", OwnerSub: "auth0|alice", Title: "API latency spike", Severity: 3, Status: StatusOpen, CreatedAt: NowISO()}
	if err := s.CreateIncident(ctx, in); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.GetOwnedIncident(ctx, "i1", "auth0|alice")
	if err != nil || got == nil {
		t.Fatalf("get owned: %+v, err %v", got, err)
	}
	other, err := s.GetOwnedIncident(ctx, "i1", "auth0|bob")
	if err != nil {
		t.Fatalf("get cross-tenant: %v", err)
	}
	if other != nil {
		t.Fatalf("cross-tenant incident lookup must come back empty")
	}
}

func TestSetStatusScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	s := NewIncidentsStore(db)

	if err := s.CreateIncident(ctx, &Incident{ID: "i1", OwnerSub: "auth0|alice", Title: "x", Severity: 1, Status: StatusOpen, CreatedAt: NowISO()}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.SetStatus(ctx, "i1", "auth0|bob", StatusResolved); err != nil {
		t.Fatalf("set status as stranger: %v", err)
	}
	got, _ := s.GetOwnedIncident(ctx, "i1", "auth0|alice")
	if got.Status != StatusOpen {
		t.Fatalf("stranger's update must not apply, status = %s", got.Status)
	}

	if err := s.SetStatus(ctx, "i1", "auth0|alice", StatusResolved); err != nil {
		t.Fatalf("set status as owner: %v", err)
	}
	got, _ = s.GetOwnedIncident(ctx, "i1", "auth0|alice")
	if got.Status != StatusResolved {
		t.Fatalf("owner's update must apply, status = %s", got.Status)
	}
}

func TestUpdatesNewestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	s := NewIncidentsStore(db)

	if err := s.CreateIncident(ctx, &Incident{ID: "i1", OwnerSub: "auth0|alice", Title: "x", Severity: 2, Status: StatusOpen, CreatedAt: NowISO()}); err != nil {
		t.Fatalf("create: %v", err)
	}
	times := []string{
		"2024-03-01T10:00:00.000Z",
		"2024-03-01T11:00:00.000Z",
		"2024-03-01T12:00:00.000Z",
	}
	for i, at := range times {
		u := &IncidentUpdate{ID: string(rune('a' + i)), IncidentID: "i1", Note: "note", By: "alice", At: at}
		if err := s.AddUpdate(ctx, u); err != nil {
			t.Fatalf("add update %d: %v", i, err)
		}
	}

	updates, err := s.ListUpdates(ctx, "i1")
	if err != nil {
		t.Fatalf("list updates: %v", err)
	}
	if len(updates) != 3 {
		t.Fatalf("expected 3 updates, got %d", len(updates))
	}
	if updates[0].At != times[2] || updates[2].At != times[0] {
		t.Fatalf("updates not newest-first: %+v", updates)
	}
}

func TestIncidentDeleteCascadesToUpdates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	s := NewIncidentsStore(db)

	if err := s.CreateIncident(ctx, &Incident{ID: "i1", OwnerSub: "auth0|alice", Title: "x", Severity: 2, Status: StatusOpen, CreatedAt: NowISO()}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.AddUpdate(ctx, &IncidentUpdate{ID: "u1", IncidentID: "i1", Note: "n", By: "a", At: NowISO()}); err != nil {
		t.Fatalf("add update: %v", err)
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM incidents WHERE id='i1'`); err != nil {
		t.Fatalf("delete parent: %v", err)
	}
	updates, err := s.ListUpdates(ctx, "i1")
	if err != nil {
		t.Fatalf("list updates: %v", err)
	}
	if len(updates) != 0 {
		t.Fatalf("updates survived parent delete: %+v", updates)
	}
}

func TestValidIncidentStatus(t *testing.T) {
	for _, status := range []string{StatusOpen, StatusInvestigating, StatusMitigated, StatusResolved} {
		if !ValidIncidentStatus(status) {
			t.Fatalf("%s should be valid", status)
		}
	}
	for _, status := range []string{"archived", "closed", "", "OPEN"} {
		if ValidIncidentStatus(status) {
			t.Fatalf("%s should be invalid", status)
		}
	}
}
