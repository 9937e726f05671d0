// Package dedupe removes duplicate actions from a proposed batch and
// duplicate activities from the plan itself. The generator frequently
// repeats itself across turns, and plans accumulate near-identical entries
// ("City Tour" vs "city tour") that would otherwise mask true duplicates of
// a new request.
package dedupe

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/jmichels/tripflow/internal/domain"
)

// Deduper filters action batches against themselves and the current plan.
// Construct with NewDeduper; pass a nil logger to use slog.Default().
type Deduper struct {
	log *slog.Logger
}

// NewDeduper returns a Deduper that logs dropped duplicates at debug level.
func NewDeduper(log *slog.Logger) *Deduper {
	if log == nil {
		log = slog.Default()
	}
	return &Deduper{log: log}
}

// Dedupe returns the plan after the duplicate sweep and the batch with
// intra-batch and plan-existing duplicates removed, preserving input order.
// The sweep runs first so pre-existing noise in the plan cannot mask a true
// duplicate of a new AddActivity. Dedupe is idempotent: running it again on
// its own output changes nothing.
func (d *Deduper) Dedupe(batch []domain.Action, plan domain.Plan) (domain.Plan, []domain.Action) {
	swept := d.Sweep(plan)

	seen := map[string]bool{}
	keptAdds := map[int][]domain.Activity{}
	kept := make([]domain.Action, 0, len(batch))

	for _, action := range batch {
		switch a := action.(type) {
		case domain.AddActivity:
			// The earlier kept adds for the day are checked under the same
			// predicate as the plan itself, so two adds in substring
			// relation with matching times collapse to the first.
			if hasDuplicate(keptAdds[a.DayNumber], a.Activity) {
				d.log.Debug("dropping duplicate add within batch", "day", a.DayNumber, "name", a.Activity.Name)
				continue
			}
			if day := swept.Day(a.DayNumber); day != nil && hasDuplicate(day.Activities, a.Activity) {
				d.log.Debug("dropping add duplicating existing activity", "day", a.DayNumber, "name", a.Activity.Name)
				continue
			}
			keptAdds[a.DayNumber] = append(keptAdds[a.DayNumber], a.Activity)
		case domain.RemoveActivity:
			key := fmt.Sprintf("remove|%d|%d", a.DayNumber, a.ActivityIndex)
			if seen[key] {
				d.log.Debug("dropping duplicate remove within batch", "day", a.DayNumber, "index", a.ActivityIndex)
				continue
			}
			seen[key] = true
		}
		kept = append(kept, action)
	}

	return swept, kept
}

// Sweep removes duplicate activities from every day of the plan, keeping the
// first occurrence of each duplicate pair. EstimatedCost drops by the cost of
// every removed activity so the total stays the sum of what survives. The
// input plan is not modified.
func (d *Deduper) Sweep(plan domain.Plan) domain.Plan {
	out := plan.Clone()
	for i := range out.Days {
		kept, removedCost := d.sweepDay(out.Days[i])
		out.Days[i].Activities = kept
		out.EstimatedCost -= removedCost
	}
	return out
}

func (d *Deduper) sweepDay(day domain.Day) ([]domain.Activity, float64) {
	kept := make([]domain.Activity, 0, len(day.Activities))
	var removedCost float64
	for _, a := range day.Activities {
		if hasDuplicate(kept, a) {
			d.log.Debug("sweeping duplicate activity", "day", day.Number, "name", a.Name)
			removedCost += a.Cost
			continue
		}
		kept = append(kept, a)
	}
	return kept, removedCost
}

// hasDuplicate reports whether candidate duplicates any activity already in
// existing under the rule: normalized names exactly equal, OR one normalized
// name is a substring of the other and the time fields are equal or either
// is blank. Blank names never match anything — a nameless entry must not
// swallow a whole day.
func hasDuplicate(existing []domain.Activity, candidate domain.Activity) bool {
	name := normalize(candidate.Name)
	if name == "" {
		return false
	}
	return lo.SomeBy(existing, func(a domain.Activity) bool {
		other := normalize(a.Name)
		if other == "" {
			return false
		}
		if other == name {
			return true
		}
		if strings.Contains(other, name) || strings.Contains(name, other) {
			return a.Time == candidate.Time || a.Time == "" || candidate.Time == ""
		}
		return false
	})
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
