package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"

	"readyroom/core/seed"
	"readyroom/core/store"
)

type ChecklistsHandler struct {
	store  store.ChecklistsStore
	audits store.AuditStore
	seeder *seed.Seeder
	logger *slog.Logger
}

func NewChecklistsHandler(cs store.ChecklistsStore, audits store.AuditStore, seeder *seed.Seeder, logger *slog.Logger) *ChecklistsHandler {
	return &ChecklistsHandler{store: cs, audits: audits, seeder: seeder, logger: logger}
}

// List returns the caller's checklists with their steps in insertion
// order. First access seeds an example workspace.
func (h *ChecklistsHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	if err := h.seeder.EnsureSeeded(r.Context(), id.Subject, id.Label()); err != nil {
		h.fail(w, "seed", err)
		return
	}
	items, err := h.store.ListChecklistsByOwner(r.Context(), id.Subject)
	if err != nil {
		h.fail(w, "list checklists", err)
		return
	}
	result := make([]store.Checklist, 0, len(items))
	for _, c := range items {
		steps, err := h.store.ListSteps(r.Context(), c.ID)
		if err != nil {
			h.fail(w, "list steps", err)
			return
		}
		if steps == nil {
			steps = []store.Step{}
		}
		c.Steps = steps
		result = append(result, c)
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ChecklistsHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	var req createChecklistRequest
	details := decodeBody(r, &req)
	req.validate(details)
	if !details.empty() {
		writeValidation(w, details)
		return
	}
	checklist := &store.Checklist{
		ID:        uuid.Must(uuid.NewV4()).String(),
		OwnerSub:  id.Subject,
		Title:     *req.Title,
		CreatedAt: store.NowISO(),
		Steps:     []store.Step{},
	}
	if err := h.store.CreateChecklist(r.Context(), checklist); err != nil {
		h.fail(w, "create checklist", err)
		return
	}
	if err := h.audits.Record(r.Context(), id.Subject, "create", "checklist", checklist.ID, map[string]any{"title": checklist.Title}); err != nil {
		h.fail(w, "audit create checklist", err)
		return
	}
	writeJSON(w, http.StatusCreated, checklist)
}

func (h *ChecklistsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	checklist, err := h.store.GetOwnedChecklist(r.Context(), chi.URLParam(r, "id"), id.Subject)
	if err != nil {
		h.fail(w, "get checklist", err)
		return
	}
	if checklist == nil {
		writeNotFound(w)
		return
	}
	steps, err := h.store.ListSteps(r.Context(), checklist.ID)
	if err != nil {
		h.fail(w, "list steps", err)
		return
	}
	if steps == nil {
		steps = []store.Step{}
	}
	checklist.Steps = steps
	writeJSON(w, http.StatusOK, checklist)
}

func (h *ChecklistsHandler) AddStep(w http.ResponseWriter, r *http.Request) {
	id, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	checklistID := chi.URLParam(r, "id")
	parent, err := h.store.GetOwnedChecklist(r.Context(), checklistID, id.Subject)
	if err != nil {
		h.fail(w, "get checklist", err)
		return
	}
	if parent == nil {
		writeNotFound(w)
		return
	}
	var req addStepRequest
	details := decodeBody(r, &req)
	req.validate(details)
	if !details.empty() {
		writeValidation(w, details)
		return
	}
	step := &store.Step{
		ID:          uuid.Must(uuid.NewV4()).String(),
		ChecklistID: checklistID,
		Label:       *req.Label,
		Done:        false,
		UpdatedAt:   store.NowISO(),
		UpdatedBy:   id.Label(),
	}
	if err := h.store.AddStep(r.Context(), step); err != nil {
		h.fail(w, "add step", err)
		return
	}
	if err := h.audits.Record(r.Context(), id.Subject, "add_step", "checklist", checklistID, map[string]any{"stepId": step.ID, "label": step.Label}); err != nil {
		h.fail(w, "audit add step", err)
		return
	}
	writeJSON(w, http.StatusCreated, step)
}

// ToggleStep flips the step's done flag. Read-then-write: two
// concurrent toggles can land on the same end state while each still
// records its own audit event.
func (h *ChecklistsHandler) ToggleStep(w http.ResponseWriter, r *http.Request) {
	id, ok := currentIdentity(w, r)
	if !ok {
		return
	}
	checklistID := chi.URLParam(r, "id")
	stepID := chi.URLParam(r, "stepId")
	parent, err := h.store.GetOwnedChecklist(r.Context(), checklistID, id.Subject)
	if err != nil {
		h.fail(w, "get checklist", err)
		return
	}
	if parent == nil {
		writeNotFound(w)
		return
	}
	step, err := h.store.GetStep(r.Context(), checklistID, stepID)
	if err != nil {
		h.fail(w, "get step", err)
		return
	}
	if step == nil {
		writeNotFound(w)
		return
	}
	nextDone := !step.Done
	updatedAt := store.NowISO()
	updatedBy := id.Label()
	if err := h.store.SetStepDone(r.Context(), checklistID, stepID, nextDone, updatedAt, updatedBy); err != nil {
		h.fail(w, "toggle step", err)
		return
	}
	if err := h.audits.Record(r.Context(), id.Subject, "toggle_step", "checklist", checklistID, map[string]any{"stepId": stepID, "done": nextDone}); err != nil {
		h.fail(w, "audit toggle step", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"stepId":    stepID,
		"done":      nextDone,
		"updatedAt": updatedAt,
		"updatedBy": updatedBy,
	})
}

func (h *ChecklistsHandler) fail(w http.ResponseWriter, op string, err error) {
	if h.logger != nil {
		h.logger.Error("checklists handler failed", "op", op, "err", err)
	}
	writeServerError(w)
}
