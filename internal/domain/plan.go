// Package domain contains the core data types for the TripFlow assistant.
// This package has zero business logic dependencies and is imported by every
// other internal package (decode, extract, dedupe, mutate, repo, service).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies an activity into one of the four itinerary buckets.
type Category string

// Valid activity categories. The extractor passes unknown category strings
// through unchanged; only these four are produced by the UI.
const (
	CategorySightseeing Category = "sightseeing"
	CategoryMeal        Category = "meal"
	CategoryTransport   Category = "transport"
	CategoryLodging     Category = "lodging"
)

// Plan is the nested travel itinerary being edited. A plan is the top-level
// aggregate; days belong to a plan and activities belong to a day.
// Invariant: day numbers are unique and contiguous from 1, and Days is kept
// in day-number order (insertion order = calendar order).
type Plan struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Days          []Day     `json:"days"`
	EstimatedCost float64   `json:"estimated_cost"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Day is one calendar day of a plan, owned exclusively by its Plan.
type Day struct {
	Number     int        `json:"number"`
	Date       string     `json:"date,omitempty"`
	Title      string     `json:"title,omitempty"`
	Activities []Activity `json:"activities"`
}

// Activity is a single itinerary entry, owned exclusively by its Day.
// ID is a synthetic uuid assigned when the activity is created by an applied
// AddActivity; activities have no identity outside (day number, position)
// before that.
type Activity struct {
	ID          string    `json:"id,omitempty"`
	Time        string    `json:"time,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Category    Category  `json:"category,omitempty"`
	Cost        float64   `json:"cost,omitempty"`
	Location    *Location `json:"location,omitempty"`
	Tip         string    `json:"tip,omitempty"`
}

// Location is either a free-form address, a lat/lng pair, or both.
type Location struct {
	Address string   `json:"address,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

// Day returns a pointer to the day with the given number, or nil when the
// plan has no such day.
func (p *Plan) Day(number int) *Day {
	for i := range p.Days {
		if p.Days[i].Number == number {
			return &p.Days[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the plan. The mutation engine clones before
// every apply so callers can discard the result on any downstream failure
// without the input plan ever having changed.
func (p Plan) Clone() Plan {
	out := p
	if p.Days != nil {
		out.Days = make([]Day, len(p.Days))
		for i, d := range p.Days {
			out.Days[i] = d.clone()
		}
	}
	return out
}

func (d Day) clone() Day {
	out := d
	if d.Activities != nil {
		out.Activities = make([]Activity, len(d.Activities))
		for i, a := range d.Activities {
			out.Activities[i] = a.clone()
		}
	}
	return out
}

func (a Activity) clone() Activity {
	out := a
	if a.Location != nil {
		loc := *a.Location
		if a.Location.Lat != nil {
			lat := *a.Location.Lat
			loc.Lat = &lat
		}
		if a.Location.Lng != nil {
			lng := *a.Location.Lng
			loc.Lng = &lng
		}
		out.Location = &loc
	}
	return out
}

// CloneDays deep-copies just the Days slice. Used for undo snapshots, which
// must not alias the live plan.
func CloneDays(days []Day) []Day {
	out := make([]Day, len(days))
	for i, d := range days {
		out[i] = d.clone()
	}
	return out
}
