// Package service contains the business logic for the TripFlow API.
// Services validate inputs, orchestrate the extract → dedupe → stage →
// apply pipeline, and coordinate the collaborators (generator, plan repo,
// staging store, session manager). No SQL and no text scanning lives here.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/jmichels/tripflow/internal/dedupe"
	"github.com/jmichels/tripflow/internal/domain"
	"github.com/jmichels/tripflow/internal/extract"
	"github.com/jmichels/tripflow/internal/llm"
	"github.com/jmichels/tripflow/internal/mutate"
	"github.com/jmichels/tripflow/internal/repo"
	"github.com/jmichels/tripflow/internal/session"
	"github.com/jmichels/tripflow/internal/staging"
)

const systemPrompt = "You are TripFlow's itinerary assistant. Answer using the " +
	"plan context provided. When the user asks for a change, emit one action " +
	"block per edit using [ACTION: <KIND>]{...}[/ACTION] markers with a JSON " +
	"payload, and keep the surrounding prose short. Never invent days that are " +
	"not in the plan."

// AssistantService implements the propose/confirm/reject/undo protocol.
// Mutations against the same plan are serialized internally; different plans
// proceed in parallel.
type AssistantService struct {
	plans     repo.PlanRepo
	generator llm.Generator
	staged    staging.Store
	sessions  *session.Manager
	extractor *extract.Extractor
	deduper   *dedupe.Deduper
	log       *slog.Logger

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewAssistantService constructs the service with its collaborators.
// Pass a nil logger to use slog.Default().
func NewAssistantService(
	plans repo.PlanRepo,
	generator llm.Generator,
	staged staging.Store,
	sessions *session.Manager,
	log *slog.Logger,
) *AssistantService {
	if log == nil {
		log = slog.Default()
	}
	return &AssistantService{
		plans:     plans,
		generator: generator,
		staged:    staged,
		sessions:  sessions,
		extractor: extract.NewExtractor(log),
		deduper:   dedupe.NewDeduper(log),
		log:       log,
		locks:     map[uuid.UUID]*sync.Mutex{},
	}
}

// planLock returns the mutex serializing mutations for one plan. The
// mutation engine only degrades gracefully for indices staled by this
// batch's own earlier actions, so two writers on the same plan must never
// interleave.
func (s *AssistantService) planLock(planID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[planID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[planID] = l
	}
	return l
}

// ProposeChange runs one assistant turn: generate a reply for the user's
// message, extract and dedupe the requested actions, and stage them for
// confirmation. Zero surviving actions is a normal outcome — the proposal
// then carries only the cleaned message.
func (s *AssistantService) ProposeChange(ctx context.Context, planID uuid.UUID, userMessage string) (domain.Proposal, error) {
	plan, err := s.plans.GetPlan(ctx, planID)
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("service.AssistantService.ProposeChange: %w", err)
	}

	lock := s.planLock(planID)
	lock.Lock()
	defer lock.Unlock()

	history := s.sessions.History(planID)
	s.sessions.AppendTurn(planID, llm.RoleUser, userMessage)

	raw, err := s.generator.Generate(ctx, conversation(plan, history, userMessage))
	if err != nil {
		return domain.Proposal{}, fmt.Errorf("service.AssistantService.ProposeChange: %w", err)
	}

	cleaned, actions := s.extractor.Extract(raw)
	_, kept := s.deduper.Dedupe(actions, plan)
	s.sessions.AppendTurn(planID, llm.RoleAssistant, cleaned)

	if len(kept) == 0 {
		s.log.Debug("no actions survived extraction", "plan_id", planID, "extracted", len(actions))
		return domain.Proposal{CleanedMessage: cleaned}, nil
	}

	preview := buildPreview(kept)
	changeID := s.staged.Stage(domain.ChangeBatch{
		PlanID:  planID,
		Actions: kept,
		Preview: preview,
	})

	s.log.Info("change staged",
		"plan_id", planID,
		"change_id", changeID,
		"actions", len(kept),
		"dropped", len(actions)-len(kept),
	)

	return domain.Proposal{CleanedMessage: cleaned, ChangeID: changeID, Preview: &preview}, nil
}

// ConfirmChange consumes the staged batch and applies it: a fresh dedupe of
// the batch against the current plan, then each surviving action in order,
// then a single plan write and the undo snapshot.
// Returns domain.ErrNotFound when the id is unknown, expired, or already
// confirmed — a second confirm never re-applies.
func (s *AssistantService) ConfirmChange(ctx context.Context, changeID string) (domain.AppliedChange, error) {
	batch, ok := s.staged.Take(changeID)
	if !ok {
		return domain.AppliedChange{}, fmt.Errorf("service.AssistantService.ConfirmChange: %w", domain.ErrNotFound)
	}

	lock := s.planLock(batch.PlanID)
	lock.Lock()
	defer lock.Unlock()

	plan, err := s.plans.GetPlan(ctx, batch.PlanID)
	if err != nil {
		return domain.AppliedChange{}, fmt.Errorf("service.AssistantService.ConfirmChange: %w", err)
	}

	snapshot := domain.HistoryEntry{
		PlanID:        plan.ID,
		Days:          domain.CloneDays(plan.Days),
		EstimatedCost: plan.EstimatedCost,
		RecordedAt:    time.Now().UTC(),
	}

	// The plan may have moved since the batch was staged (another confirm,
	// an undo), so the batch is deduped again against the state being
	// applied, not the state it was proposed against.
	swept, actions := s.deduper.Dedupe(batch.Actions, plan)
	applied, delta := mutate.ApplyAll(swept, actions)
	applied.EstimatedCost += delta

	if err := s.plans.PutPlan(ctx, applied); err != nil {
		return domain.AppliedChange{}, fmt.Errorf("service.AssistantService.ConfirmChange: %w", err)
	}
	s.sessions.RecordUndo(batch.PlanID, snapshot)

	s.log.Info("change applied",
		"plan_id", batch.PlanID,
		"change_id", changeID,
		"actions", len(actions),
		"cost_delta", delta,
	)

	return domain.AppliedChange{Plan: applied, CostDelta: delta}, nil
}

// RejectChange discards a staged batch. Rejecting an unknown id is a no-op:
// nothing was applied, so there is nothing to report.
func (s *AssistantService) RejectChange(changeID string) {
	s.staged.Delete(changeID)
}

// Undo restores the plan fragment snapshotted before the last applied batch.
// Returns domain.ErrUnavailable when no snapshot remains; a successful undo
// consumes the snapshot, so it cannot be undone twice.
func (s *AssistantService) Undo(ctx context.Context, planID uuid.UUID) (domain.Plan, error) {
	lock := s.planLock(planID)
	lock.Lock()
	defer lock.Unlock()

	entry, ok := s.sessions.TakeUndo(planID)
	if !ok {
		return domain.Plan{}, fmt.Errorf("service.AssistantService.Undo: %w", domain.ErrUnavailable)
	}

	plan, err := s.plans.GetPlan(ctx, planID)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.AssistantService.Undo: %w", err)
	}

	plan.Days = entry.Days
	plan.EstimatedCost = entry.EstimatedCost

	if err := s.plans.PutPlan(ctx, plan); err != nil {
		return domain.Plan{}, fmt.Errorf("service.AssistantService.Undo: %w", err)
	}

	s.log.Info("change undone", "plan_id", planID)
	return plan, nil
}

// conversation assembles the generator input: system prompt, current plan
// context as JSON, the retained history, and the new user message.
func conversation(plan domain.Plan, history []llm.Message, userMessage string) []llm.Message {
	planJSON, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		// A plan is always marshallable; guard anyway so a future field
		// cannot take down the turn.
		planJSON = []byte("{}")
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleSystem, Content: "Current plan:\n" + string(planJSON)},
	}
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: userMessage})
	return messages
}

// buildPreview renders the staged batch for human confirmation: one bullet
// per action, a headline, and the self-declared cost estimate.
func buildPreview(actions []domain.Action) domain.Preview {
	description := fmt.Sprintf("%d changes to your plan", len(actions))
	if len(actions) == 1 {
		description = actions[0].Summary()
	}
	return domain.Preview{
		Description: description,
		Items: lo.Map(actions, func(a domain.Action, _ int) string {
			return a.Summary()
		}),
		EstimatedCostChange: lo.SumBy(actions, func(a domain.Action) float64 {
			return a.ProspectiveCost()
		}),
	}
}
