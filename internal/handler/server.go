// Package handler implements the HTTP handlers for the TripFlow API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, plan.go, assistant.go) but all share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jmichels/tripflow/internal/domain"
	"github.com/jmichels/tripflow/spec"
)

// PlanServicer defines the plan operations the handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type PlanServicer interface {
	Create(ctx context.Context, plan domain.Plan) (domain.Plan, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Plan, error)
}

// AssistantServicer defines the propose/confirm/reject/undo protocol the
// assistant handlers depend on.
type AssistantServicer interface {
	ProposeChange(ctx context.Context, planID uuid.UUID, userMessage string) (domain.Proposal, error)
	ConfirmChange(ctx context.Context, changeID string) (domain.AppliedChange, error)
	RejectChange(changeID string)
	Undo(ctx context.Context, planID uuid.UUID) (domain.Plan, error)
}

// Server holds the dependencies for all API endpoints.
type Server struct {
	plans     PlanServicer
	assistant AssistantServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(plans PlanServicer, assistant AssistantServicer) *Server {
	return &Server{plans: plans, assistant: assistant}
}

// Routes returns the chi router for the full API surface.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Post("/plans", s.CreatePlan)
	r.Get("/plans/{planID}", s.GetPlan)
	r.Post("/plans/{planID}/assistant", s.ProposeChange)
	r.Post("/plans/{planID}/undo", s.Undo)

	r.Post("/changes/{changeID}/confirm", s.ConfirmChange)
	r.Post("/changes/{changeID}/reject", s.RejectChange)

	return r
}

// GetOpenAPI serves the embedded API contract, keeping the published spec
// and the running code in sync.
func (s *Server) GetOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(spec.OpenAPI)
}

// writeJSON serializes v with the given status. Encoding failures at this
// point cannot be reported to the client; they surface in the request log.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// planIDParam parses the {planID} URL parameter.
func planIDParam(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "planID"))
	return id, err == nil
}
