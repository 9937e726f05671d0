package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmichels/tripflow/internal/domain"
	"github.com/jmichels/tripflow/internal/handler"
	"github.com/jmichels/tripflow/internal/llm"
)

// mockAssistantServicer is a test double for handler.AssistantServicer.
// Set only the method fields your test needs.
type mockAssistantServicer struct {
	propose func(ctx context.Context, planID uuid.UUID, msg string) (domain.Proposal, error)
	confirm func(ctx context.Context, changeID string) (domain.AppliedChange, error)
	reject  func(changeID string)
	undo    func(ctx context.Context, planID uuid.UUID) (domain.Plan, error)
}

func (m *mockAssistantServicer) ProposeChange(ctx context.Context, planID uuid.UUID, msg string) (domain.Proposal, error) {
	return m.propose(ctx, planID, msg)
}
func (m *mockAssistantServicer) ConfirmChange(ctx context.Context, changeID string) (domain.AppliedChange, error) {
	return m.confirm(ctx, changeID)
}
func (m *mockAssistantServicer) RejectChange(changeID string) {
	if m.reject != nil {
		m.reject(changeID)
	}
}
func (m *mockAssistantServicer) Undo(ctx context.Context, planID uuid.UUID) (domain.Plan, error) {
	return m.undo(ctx, planID)
}

// compile-time check: mockAssistantServicer must satisfy handler.AssistantServicer.
var _ handler.AssistantServicer = (*mockAssistantServicer)(nil)

// newHTTPHandler wires a Server with the given mocks into its chi router,
// mirroring exactly how main.go wires it in production.
func newHTTPHandler(plans handler.PlanServicer, assistant handler.AssistantServicer) http.Handler {
	return handler.NewServer(plans, assistant).Routes()
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// ---- ProposeChange ---------------------------------------------------------

func TestProposeChange_OK(t *testing.T) {
	planID := uuid.New()
	preview := domain.Preview{Description: `Add "Zoo" to Day 1 at TBD`, Items: []string{`Add "Zoo" to Day 1 at TBD`}, EstimatedCostChange: 12}
	mock := &mockAssistantServicer{
		propose: func(_ context.Context, id uuid.UUID, msg string) (domain.Proposal, error) {
			assert.Equal(t, planID, id)
			assert.Equal(t, "add a zoo visit", msg)
			return domain.Proposal{CleanedMessage: "Done!", ChangeID: "chg-1", Preview: &preview}, nil
		},
	}
	h := newHTTPHandler(nil, mock)

	req := httptest.NewRequest(http.MethodPost, "/plans/"+planID.String()+"/assistant",
		jsonBody(t, map[string]string{"message": "add a zoo visit"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp handler.ProposeChangeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Done!", resp.Message)
	assert.Equal(t, "chg-1", resp.ChangeID)
	require.NotNil(t, resp.Preview)
	assert.Equal(t, float64(12), resp.Preview.EstimatedCostChange)
}

func TestProposeChange_NoStagedChangeOmitsFields(t *testing.T) {
	planID := uuid.New()
	mock := &mockAssistantServicer{
		propose: func(_ context.Context, _ uuid.UUID, _ string) (domain.Proposal, error) {
			return domain.Proposal{CleanedMessage: "No changes were made."}, nil
		},
	}
	h := newHTTPHandler(nil, mock)

	req := httptest.NewRequest(http.MethodPost, "/plans/"+planID.String()+"/assistant",
		jsonBody(t, map[string]string{"message": "thoughts?"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "changeId")
	assert.NotContains(t, rec.Body.String(), "preview")
}

func TestProposeChange_MissingMessage(t *testing.T) {
	h := newHTTPHandler(nil, &mockAssistantServicer{})

	req := httptest.NewRequest(http.MethodPost, "/plans/"+uuid.NewString()+"/assistant",
		jsonBody(t, map[string]string{}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestProposeChange_InvalidPlanID(t *testing.T) {
	h := newHTTPHandler(nil, &mockAssistantServicer{})

	req := httptest.NewRequest(http.MethodPost, "/plans/not-a-uuid/assistant",
		jsonBody(t, map[string]string{"message": "hi"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestProposeChange_PlanNotFound(t *testing.T) {
	mock := &mockAssistantServicer{
		propose: func(_ context.Context, _ uuid.UUID, _ string) (domain.Proposal, error) {
			return domain.Proposal{}, domain.ErrNotFound
		},
	}
	h := newHTTPHandler(nil, mock)

	req := httptest.NewRequest(http.MethodPost, "/plans/"+uuid.NewString()+"/assistant",
		jsonBody(t, map[string]string{"message": "hi"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProposeChange_GeneratorFailure(t *testing.T) {
	mock := &mockAssistantServicer{
		propose: func(_ context.Context, _ uuid.UUID, _ string) (domain.Proposal, error) {
			return domain.Proposal{}, llm.ErrGenerate
		},
	}
	h := newHTTPHandler(nil, mock)

	req := httptest.NewRequest(http.MethodPost, "/plans/"+uuid.NewString()+"/assistant",
		jsonBody(t, map[string]string{"message": "hi"}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "upstream_error")
}

// ---- ConfirmChange ---------------------------------------------------------

func TestConfirmChange_OK(t *testing.T) {
	mock := &mockAssistantServicer{
		confirm: func(_ context.Context, changeID string) (domain.AppliedChange, error) {
			assert.Equal(t, "chg-1", changeID)
			return domain.AppliedChange{
				Plan:      domain.Plan{ID: uuid.New(), Name: "Trip", EstimatedCost: 30},
				CostDelta: 30,
			}, nil
		},
	}
	h := newHTTPHandler(nil, mock)

	req := httptest.NewRequest(http.MethodPost, "/changes/chg-1/confirm", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp handler.ConfirmChangeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(30), resp.CostDelta)
	assert.Equal(t, "Trip", resp.Plan.Name)
}

func TestConfirmChange_NotFound(t *testing.T) {
	mock := &mockAssistantServicer{
		confirm: func(_ context.Context, _ string) (domain.AppliedChange, error) {
			return domain.AppliedChange{}, domain.ErrNotFound
		},
	}
	h := newHTTPHandler(nil, mock)

	req := httptest.NewRequest(http.MethodPost, "/changes/gone/confirm", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "change not found")
}

// ---- RejectChange ----------------------------------------------------------

func TestRejectChange_AlwaysNoContent(t *testing.T) {
	var rejected string
	mock := &mockAssistantServicer{
		reject: func(changeID string) { rejected = changeID },
	}
	h := newHTTPHandler(nil, mock)

	req := httptest.NewRequest(http.MethodPost, "/changes/whatever/reject", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "whatever", rejected)
}

// ---- Undo ------------------------------------------------------------------

func TestUndo_OK(t *testing.T) {
	planID := uuid.New()
	mock := &mockAssistantServicer{
		undo: func(_ context.Context, id uuid.UUID) (domain.Plan, error) {
			return domain.Plan{ID: id, Name: "Reverted"}, nil
		},
	}
	h := newHTTPHandler(nil, mock)

	req := httptest.NewRequest(http.MethodPost, "/plans/"+planID.String()+"/undo", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Reverted")
}

func TestUndo_NothingToUndo(t *testing.T) {
	mock := &mockAssistantServicer{
		undo: func(_ context.Context, _ uuid.UUID) (domain.Plan, error) {
			return domain.Plan{}, domain.ErrUnavailable
		},
	}
	h := newHTTPHandler(nil, mock)

	req := httptest.NewRequest(http.MethodPost, "/plans/"+uuid.NewString()+"/undo", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "nothing to undo")
}
