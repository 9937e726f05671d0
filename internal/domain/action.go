package domain

import "fmt"

// ActionKind tags the five action variants the assistant can request.
type ActionKind string

const (
	KindAddActivity       ActionKind = "add_activity"
	KindRemoveActivity    ActionKind = "remove_activity"
	KindUpdateActivity    ActionKind = "update_activity"
	KindReorderActivities ActionKind = "reorder_activities"
	KindUpdateDayTitle    ActionKind = "update_day_title"
)

// Action is one atomic requested edit to a Plan. Actions are immutable once
// extracted and carry no reference to the plan they target; the mutation
// engine resolves day numbers and indices at apply time.
type Action interface {
	// Kind returns the variant tag.
	Kind() ActionKind

	// Summary returns the single human-readable preview line for this action.
	Summary() string

	// ProspectiveCost is the action's self-declared contribution to the
	// preview's estimated cost change. Only AddActivity can declare one;
	// every other variant reports 0 because its real delta depends on plan
	// state that is not inspected until apply time.
	ProspectiveCost() float64
}

// AddActivity appends a new activity to the given day.
type AddActivity struct {
	DayNumber int
	Activity  Activity
}

func (a AddActivity) Kind() ActionKind { return KindAddActivity }

func (a AddActivity) Summary() string {
	at := a.Activity.Time
	if at == "" {
		at = "TBD"
	}
	return fmt.Sprintf("Add %q to Day %d at %s", a.Activity.Name, a.DayNumber, at)
}

func (a AddActivity) ProspectiveCost() float64 { return a.Activity.Cost }

// RemoveActivity removes the activity at ActivityIndex (0-based) from the
// given day.
type RemoveActivity struct {
	DayNumber     int
	ActivityIndex int
}

func (a RemoveActivity) Kind() ActionKind { return KindRemoveActivity }

func (a RemoveActivity) Summary() string {
	return fmt.Sprintf("Remove activity %d from Day %d", a.ActivityIndex+1, a.DayNumber)
}

func (a RemoveActivity) ProspectiveCost() float64 { return 0 }

// ActivityPatch is a shallow merge payload: nil fields are left untouched,
// non-nil fields overwrite.
type ActivityPatch struct {
	Time        *string
	Name        *string
	Description *string
	Category    *Category
	Cost        *float64
	Location    *Location
	Tip         *string
}

// Empty reports whether the patch would change nothing.
func (p ActivityPatch) Empty() bool {
	return p.Time == nil && p.Name == nil && p.Description == nil &&
		p.Category == nil && p.Cost == nil && p.Location == nil && p.Tip == nil
}

// UpdateActivity carries up to two independent sub-edits: a day title rename
// (DayTitle non-nil) and/or a field merge onto one activity (ActivityIndex
// non-nil). Both may be present in a single action.
type UpdateActivity struct {
	DayNumber     int
	DayTitle      *string
	ActivityIndex *int
	Patch         ActivityPatch
}

func (a UpdateActivity) Kind() ActionKind { return KindUpdateActivity }

func (a UpdateActivity) Summary() string {
	if a.ActivityIndex != nil {
		return fmt.Sprintf("Update activity %d on Day %d", *a.ActivityIndex+1, a.DayNumber)
	}
	if a.DayTitle != nil {
		return fmt.Sprintf("Rename Day %d to %q", a.DayNumber, *a.DayTitle)
	}
	return fmt.Sprintf("Update Day %d", a.DayNumber)
}

func (a UpdateActivity) ProspectiveCost() float64 { return 0 }

// ReorderActivities replaces a day's activity sequence with the activities
// selected by Order, in that order. Indices absent from Order are dropped
// from the day; indices beyond the current length are skipped.
type ReorderActivities struct {
	DayNumber int
	Order     []int
}

func (a ReorderActivities) Kind() ActionKind { return KindReorderActivities }

func (a ReorderActivities) Summary() string {
	return fmt.Sprintf("Reorder activities on Day %d", a.DayNumber)
}

func (a ReorderActivities) ProspectiveCost() float64 { return 0 }

// UpdateDayTitle sets a day's title.
type UpdateDayTitle struct {
	DayNumber int
	Title     string
}

func (a UpdateDayTitle) Kind() ActionKind { return KindUpdateDayTitle }

func (a UpdateDayTitle) Summary() string {
	return fmt.Sprintf("Rename Day %d to %q", a.DayNumber, a.Title)
}

func (a UpdateDayTitle) ProspectiveCost() float64 { return 0 }
