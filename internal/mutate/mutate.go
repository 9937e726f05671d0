// Package mutate applies a single validated action to an in-memory plan.
// Apply is pure: the input plan is never modified and a new plan value is
// always returned, so callers can discard the result on any downstream
// failure. Stale references (a day or index that no longer exists) degrade
// to no-ops with a zero cost delta — the intended experience is "apply what
// you safely can, never corrupt or crash". Callers needing strict detection
// can compare the plan before and after.
package mutate

import (
	"github.com/google/uuid"

	"github.com/jmichels/tripflow/internal/domain"
)

// Apply executes one action against plan, returning the resulting plan and
// the signed cost delta it produced.
func Apply(plan domain.Plan, action domain.Action) (domain.Plan, float64) {
	out := plan.Clone()

	switch a := action.(type) {
	case domain.AddActivity:
		return addActivity(out, a)
	case domain.RemoveActivity:
		return removeActivity(out, a)
	case domain.UpdateActivity:
		return updateActivity(out, a)
	case domain.ReorderActivities:
		return reorderActivities(out, a)
	case domain.UpdateDayTitle:
		day := out.Day(a.DayNumber)
		if day == nil {
			return out, 0
		}
		day.Title = a.Title
		return out, 0
	}

	return out, 0
}

// ApplyAll runs a batch in order, threading the plan through each action.
// Later actions may depend on indices produced by earlier ones, so order is
// load-bearing. Returns the final plan and the summed cost delta.
func ApplyAll(plan domain.Plan, actions []domain.Action) (domain.Plan, float64) {
	total := 0.0
	for _, a := range actions {
		var delta float64
		plan, delta = Apply(plan, a)
		total += delta
	}
	return plan, total
}

func addActivity(plan domain.Plan, a domain.AddActivity) (domain.Plan, float64) {
	day := plan.Day(a.DayNumber)
	if day == nil {
		// The generator occasionally references a day beyond the plan's
		// current length; a recoverable no-op, not an error.
		return plan, 0
	}
	activity := a.Activity
	activity.ID = uuid.NewString()
	day.Activities = append(day.Activities, activity)
	return plan, activity.Cost
}

func removeActivity(plan domain.Plan, a domain.RemoveActivity) (domain.Plan, float64) {
	day := plan.Day(a.DayNumber)
	if day == nil || a.ActivityIndex < 0 || a.ActivityIndex >= len(day.Activities) {
		return plan, 0
	}
	removed := day.Activities[a.ActivityIndex]
	day.Activities = append(day.Activities[:a.ActivityIndex], day.Activities[a.ActivityIndex+1:]...)
	return plan, -removed.Cost
}

func updateActivity(plan domain.Plan, a domain.UpdateActivity) (domain.Plan, float64) {
	day := plan.Day(a.DayNumber)
	if day == nil {
		return plan, 0
	}

	if a.DayTitle != nil {
		day.Title = *a.DayTitle
	}

	if a.ActivityIndex == nil || a.Patch.Empty() {
		return plan, 0
	}
	idx := *a.ActivityIndex
	if idx < 0 || idx >= len(day.Activities) {
		return plan, 0
	}

	target := &day.Activities[idx]
	delta := 0.0
	if a.Patch.Cost != nil && *a.Patch.Cost != target.Cost {
		delta = *a.Patch.Cost - target.Cost
		target.Cost = *a.Patch.Cost
	}
	if a.Patch.Name != nil {
		target.Name = *a.Patch.Name
	}
	if a.Patch.Time != nil {
		target.Time = *a.Patch.Time
	}
	if a.Patch.Description != nil {
		target.Description = *a.Patch.Description
	}
	if a.Patch.Category != nil {
		target.Category = *a.Patch.Category
	}
	if a.Patch.Location != nil {
		loc := *a.Patch.Location
		target.Location = &loc
	}
	if a.Patch.Tip != nil {
		target.Tip = *a.Patch.Tip
	}

	return plan, delta
}

// reorderActivities replaces the day's sequence with the activities selected
// by the permutation. Indices missing from the permutation are dropped, not
// recovered; out-of-range indices are skipped. Reordering never changes cost.
func reorderActivities(plan domain.Plan, a domain.ReorderActivities) (domain.Plan, float64) {
	day := plan.Day(a.DayNumber)
	if day == nil {
		return plan, 0
	}
	reordered := make([]domain.Activity, 0, len(a.Order))
	for _, idx := range a.Order {
		if idx < 0 || idx >= len(day.Activities) {
			continue
		}
		reordered = append(reordered, day.Activities[idx])
	}
	day.Activities = reordered
	return plan, 0
}
