package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"readyroom/api/handlers"
	"readyroom/config"
	"readyroom/core/auth"
	"readyroom/core/ratelimit"
	"readyroom/core/seed"
	"readyroom/core/store"
)

type ServerDeps struct {
	Verifier   auth.Verifier
	Limiter    ratelimit.Limiter
	Checklists store.ChecklistsStore
	Incidents  store.IncidentsStore
	Audits     store.AuditStore
	Seeder     *seed.Seeder
}

type Server struct {
	cfg        *config.AppConfig
	logger     *slog.Logger
	verifier   auth.Verifier
	limiter    ratelimit.Limiter
	checklists store.ChecklistsStore
	incidents  store.IncidentsStore
	audits     store.AuditStore
	seeder     *seed.Seeder
}

func NewServer(cfg *config.AppConfig, deps ServerDeps, logger *slog.Logger) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		verifier:   deps.Verifier,
		limiter:    deps.Limiter,
		checklists: deps.Checklists,
		incidents:  deps.Incidents,
		audits:     deps.Audits,
		seeder:     deps.Seeder,
	}
}

// Routes builds the full middleware chain and route table. The rate
// cap sits in front of credential verification, both in front of every
// handler.
func (s *Server) Routes() http.Handler {
	meta := handlers.NewMetaHandler()
	checklists := handlers.NewChecklistsHandler(s.checklists, s.audits, s.seeder, s.logger)
	incidents := handlers.NewIncidentsHandler(s.incidents, s.audits, s.seeder, s.logger)

	r := chi.NewRouter()
	r.Use(s.recoverMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.jsonMiddleware)
	r.Use(s.rateLimitMiddleware)

	withIdentity := s.requireIdentity

	r.MethodFunc(http.MethodGet, "/health", meta.Health)
	r.MethodFunc(http.MethodGet, "/me", withIdentity(meta.Me))

	r.MethodFunc(http.MethodGet, "/checklists", withIdentity(checklists.List))
	r.MethodFunc(http.MethodPost, "/checklists", withIdentity(checklists.Create))
	r.MethodFunc(http.MethodGet, "/checklists/{id}", withIdentity(checklists.Get))
	r.MethodFunc(http.MethodPost, "/checklists/{id}/steps", withIdentity(checklists.AddStep))
	r.MethodFunc(http.MethodPost, "/checklists/{id}/steps/{stepId}/toggle", withIdentity(checklists.ToggleStep))

	r.MethodFunc(http.MethodGet, "/incidents", withIdentity(incidents.List))
	r.MethodFunc(http.MethodPost, "/incidents", withIdentity(incidents.Create))
	r.MethodFunc(http.MethodPost, "/incidents/{id}/updates", withIdentity(incidents.AddUpdate))
	r.MethodFunc(http.MethodPatch, "/incidents/{id}/status", withIdentity(incidents.PatchStatus))

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorTag(w http.ResponseWriter, status int, tag string) {
	writeJSON(w, status, map[string]string{"error": tag})
}
