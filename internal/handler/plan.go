package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jmichels/tripflow/internal/domain"
)

// CreatePlanRequest is the body for POST /plans.
type CreatePlanRequest struct {
	Name string       `json:"name"`
	Days []domain.Day `json:"days"`
}

// CreatePlan handles POST /plans.
func (s *Server) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req CreatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("request body is required"))
		return
	}

	created, err := s.plans.Create(r.Context(), domain.Plan{Name: req.Name, Days: req.Days})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			writeJSON(w, http.StatusUnprocessableEntity, validationBody(err))
			return
		}
		writeJSON(w, http.StatusInternalServerError, requestBody("internal error"))
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// GetPlan handles GET /plans/{planID}.
func (s *Server) GetPlan(w http.ResponseWriter, r *http.Request) {
	id, ok := planIDParam(r)
	if !ok {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("invalid plan id"))
		return
	}

	plan, err := s.plans.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, notFoundBody("plan not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, requestBody("internal error"))
		return
	}

	writeJSON(w, http.StatusOK, plan)
}
