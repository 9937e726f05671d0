// Package session keeps per-plan conversation memory and the last-applied
// change snapshot used for undo. Sessions for different plans are fully
// independent; a single plan's session is guarded by the manager's mutex,
// and the host additionally serializes mutations per plan.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/jmichels/tripflow/internal/domain"
	"github.com/jmichels/tripflow/internal/llm"
)

// DefaultHistoryLimit is the number of conversation turns retained per plan
// when the host does not configure one. Tunable, not correctness-critical.
const DefaultHistoryLimit = 20

// Manager holds all per-plan sessions.
type Manager struct {
	mu    sync.Mutex
	limit int
	plans map[uuid.UUID]*planSession
}

type planSession struct {
	history []llm.Message
	undo    *domain.HistoryEntry
}

// NewManager constructs a Manager retaining at most historyLimit turns per
// plan. A non-positive limit falls back to DefaultHistoryLimit.
func NewManager(historyLimit int) *Manager {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &Manager{limit: historyLimit, plans: map[uuid.UUID]*planSession{}}
}

func (m *Manager) session(planID uuid.UUID) *planSession {
	s, ok := m.plans[planID]
	if !ok {
		s = &planSession{}
		m.plans[planID] = s
	}
	return s
}

// AppendTurn records one conversation turn, dropping the oldest turns beyond
// the retention limit.
func (m *Manager) AppendTurn(planID uuid.UUID, role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.session(planID)
	s.history = append(s.history, llm.Message{Role: role, Content: content})
	if len(s.history) > m.limit {
		s.history = s.history[len(s.history)-m.limit:]
	}
}

// History returns a copy of the plan's retained conversation turns, oldest
// first. Always non-nil.
func (m *Manager) History(planID uuid.UUID) []llm.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.plans[planID]
	if !ok {
		return []llm.Message{}
	}
	out := make([]llm.Message, len(s.history))
	copy(out, s.history)
	return out
}

// RecordUndo stores the pre-application snapshot for the plan, discarding
// any previous snapshot. Only one level of undo is guaranteed.
func (m *Manager) RecordUndo(planID uuid.UUID, entry domain.HistoryEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session(planID).undo = &entry
}

// TakeUndo removes and returns the plan's undo snapshot. A second TakeUndo
// reports false: an undo cannot be undone twice.
func (m *Manager) TakeUndo(planID uuid.UUID) (domain.HistoryEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.plans[planID]
	if !ok || s.undo == nil {
		return domain.HistoryEntry{}, false
	}
	entry := *s.undo
	s.undo = nil
	return entry, true
}
