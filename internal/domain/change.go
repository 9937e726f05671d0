package domain

import (
	"time"

	"github.com/google/uuid"
)

// Preview is the human-readable summary of a staged ChangeBatch shown to the
// user before confirmation.
type Preview struct {
	// Description is the one-line headline: the single action's summary when
	// the batch has exactly one action, otherwise "<n> changes to your plan".
	Description string `json:"description"`

	// Items holds one bullet line per action, in batch order.
	Items []string `json:"items"`

	// EstimatedCostChange is the sum of each action's self-declared
	// prospective cost contribution. The actual delta is computed at apply
	// time and may differ (e.g. a stale reference degrading to a no-op).
	EstimatedCostChange float64 `json:"estimated_cost_change"`
}

// ChangeBatch is a deduplicated, ordered group of actions proposed together
// and held unapplied until a human confirms or rejects it.
type ChangeBatch struct {
	ID        string
	PlanID    uuid.UUID
	Actions   []Action
	Preview   Preview
	CreatedAt time.Time
}

// HistoryEntry snapshots the plan fragment affected by the last applied
// batch, supporting exactly one level of undo. Each newly applied batch
// overwrites the previous entry; this is not a full log.
type HistoryEntry struct {
	PlanID        uuid.UUID
	Days          []Day
	EstimatedCost float64
	RecordedAt    time.Time
}

// Proposal is the caller-visible result of proposing a change: the cleaned
// assistant message, plus a change id and preview when at least one action
// survived extraction and deduplication. ChangeID is empty when no change
// was staged — a normal outcome, not an error.
type Proposal struct {
	CleanedMessage string
	ChangeID       string
	Preview        *Preview
}

// AppliedChange is the result of confirming a staged batch.
type AppliedChange struct {
	Plan      Plan
	CostDelta float64
}
