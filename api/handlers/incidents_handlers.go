package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"

	"readyroom/core/seed"
	"readyroom/core/store"
)

type IncidentsHandler struct {
	store  store.IncidentsStore
	audits store.AuditStore
	seeder *seed.Seeder
	logger *slog.Logger
}

func NewIncidentsHandler(is store.IncidentsStore, audits store.AuditStore, seeder *seed.Seeder, logger *slog.Logger) *IncidentsHandler {
	return &IncidentsHandler{store: is, audits: audits, seeder: seeder, logger: logger}
}

// List returns the caller's incidents with updates newest-first. Like
// the checklist listing, first access seeds the example workspace.
func (h *IncidentsHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	if err := h.seeder.EnsureSeeded(r.Context(), id.Subject, id.Label()); err != nil {
		h.fail(w, "seed", err)
		return
	}
	items, err := h.store.ListIncidentsByOwner(r.Context(), id.Subject)
	if err != nil {
		h.fail(w, "list incidents", err)
		return
	}
	result := make([]store.Incident, 0, len(items))
	for _, in := range items {
		updates, err := h.store.ListUpdates(r.Context(), in.ID)
		if err != nil {
			h.fail(w, "list updates", err)
			return
		}
		if updates == nil {
			updates = []store.IncidentUpdate{}
		}
		in.Updates = updates
		result = append(result, in)
	}
	writeJSON(w, http.StatusOK, result)
}

// Create opens a new incident. Status always starts at `open`
// regardless of input.
func (h *IncidentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	var req createIncidentRequest
	details := decodeBody(r, &req)
	req.validate(details)
	if !details.empty() {
		writeValidation(w, details)
		return
	}
	incident := &store.Incident{
		ID:        uuid.Must(uuid.NewV4()).String(),
		OwnerSub:  id.Subject,
		Title:     *req.Title,
		Severity:  int(*req.Severity),
		Status:    store.StatusOpen,
		CreatedAt: store.NowISO(),
		Updates:   []store.IncidentUpdate{},
	}
	if err := h.store.CreateIncident(r.Context(), incident); err != nil {
		h.fail(w, "create incident", err)
		return
	}
	if err := h.audits.Record(r.Context(), id.Subject, "create", "incident", incident.ID, map[string]any{"title": incident.Title, "severity": incident.Severity}); err != nil {
		h.fail(w, "audit create incident", err)
		return
	}
	writeJSON(w, http.StatusCreated, incident)
}

func (h *IncidentsHandler) AddUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	incidentID := chi.URLParam(r, "id")
	parent, err := h.store.GetOwnedIncident(r.Context(), incidentID, id.Subject)
	if err != nil {
		h.fail(w, "get incident", err)
		return
	}
	if parent == nil {
		writeNotFound(w)
		return
	}
	var req addIncidentUpdateRequest
	details := decodeBody(r, &req)
	req.validate(details)
	if !details.empty() {
		writeValidation(w, details)
		return
	}
	update := &store.IncidentUpdate{
		ID:         uuid.Must(uuid.NewV4()).String(),
		IncidentID: incidentID,
		Note:       *req.Note,
		By:         id.Label(),
		At:         store.NowISO(),
	}
	if err := h.store.AddUpdate(r.Context(), update); err != nil {
		h.fail(w, "add update", err)
		return
	}
	if err := h.audits.Record(r.Context(), id.Subject, "add_update", "incident", incidentID, map[string]any{"updateId": update.ID}); err != nil {
		h.fail(w, "audit add update", err)
		return
	}
	writeJSON(w, http.StatusCreated, update)
}

func (h *IncidentsHandler) PatchStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	incidentID := chi.URLParam(r, "id")
	parent, err := h.store.GetOwnedIncident(r.Context(), incidentID, id.Subject)
	if err != nil {
		h.fail(w, "get incident", err)
		return
	}
	if parent == nil {
		writeNotFound(w)
		return
	}
	var req patchIncidentStatusRequest
	details := decodeBody(r, &req)
	req.validate(details)
	if !details.empty() {
		writeValidation(w, details)
		return
	}
	if err := h.store.SetStatus(r.Context(), incidentID, id.Subject, *req.Status); err != nil {
		h.fail(w, "set status", err)
		return
	}
	if err := h.audits.Record(r.Context(), id.Subject, "status", "incident", incidentID, map[string]any{"status": *req.Status}); err != nil {
		h.fail(w, "audit set status", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":     true,
		"id":     incidentID,
		"status": *req.Status,
	})
}

func (h *IncidentsHandler) fail(w http.ResponseWriter, op string, err error) {
	if h.logger != nil {
		h.logger.Error("incidents handler failed", "op", op, "err", err)
	}
	writeServerError(w)
}
