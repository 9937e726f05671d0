package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jmichels/tripflow/internal/domain"
	"github.com/jmichels/tripflow/internal/llm"
)

// ProposeChangeRequest is the body for POST /plans/{planID}/assistant.
type ProposeChangeRequest struct {
	Message string `json:"message"`
}

// ProposeChangeResponse carries the assistant's prose plus, when at least
// one action survived, the staged change id and its preview.
type ProposeChangeResponse struct {
	Message  string          `json:"message"`
	ChangeID string          `json:"changeId,omitempty"`
	Preview  *domain.Preview `json:"preview,omitempty"`
}

// ConfirmChangeResponse is the body returned by a successful confirm.
type ConfirmChangeResponse struct {
	Plan      domain.Plan `json:"plan"`
	CostDelta float64     `json:"costDelta"`
}

// ProposeChange handles POST /plans/{planID}/assistant.
func (s *Server) ProposeChange(w http.ResponseWriter, r *http.Request) {
	id, ok := planIDParam(r)
	if !ok {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("invalid plan id"))
		return
	}

	var req ProposeChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("message is required"))
		return
	}

	proposal, err := s.assistant.ProposeChange(r.Context(), id, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			writeJSON(w, http.StatusNotFound, notFoundBody("plan not found"))
		case errors.Is(err, llm.ErrGenerate):
			writeJSON(w, http.StatusBadGateway, upstreamBody("assistant request failed"))
		default:
			writeJSON(w, http.StatusInternalServerError, requestBody("internal error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, ProposeChangeResponse{
		Message:  proposal.CleanedMessage,
		ChangeID: proposal.ChangeID,
		Preview:  proposal.Preview,
	})
}

// ConfirmChange handles POST /changes/{changeID}/confirm.
func (s *Server) ConfirmChange(w http.ResponseWriter, r *http.Request) {
	changeID := chi.URLParam(r, "changeID")

	applied, err := s.assistant.ConfirmChange(r.Context(), changeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, notFoundBody("change not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, requestBody("internal error"))
		return
	}

	writeJSON(w, http.StatusOK, ConfirmChangeResponse{Plan: applied.Plan, CostDelta: applied.CostDelta})
}

// RejectChange handles POST /changes/{changeID}/reject.
// Rejecting an unknown id is a no-op, so this always returns 204.
func (s *Server) RejectChange(w http.ResponseWriter, r *http.Request) {
	s.assistant.RejectChange(chi.URLParam(r, "changeID"))
	w.WriteHeader(http.StatusNoContent)
}

// Undo handles POST /plans/{planID}/undo.
func (s *Server) Undo(w http.ResponseWriter, r *http.Request) {
	id, ok := planIDParam(r)
	if !ok {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("invalid plan id"))
		return
	}

	plan, err := s.assistant.Undo(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnavailable):
			writeJSON(w, http.StatusConflict, conflictBody("nothing to undo"))
		case errors.Is(err, domain.ErrNotFound):
			writeJSON(w, http.StatusNotFound, notFoundBody("plan not found"))
		default:
			writeJSON(w, http.StatusInternalServerError, requestBody("internal error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, plan)
}
