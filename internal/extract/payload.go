package extract

import (
	"strings"

	"github.com/jmichels/tripflow/internal/domain"
)

// toAction converts a decoded payload into the typed action for kind.
// Returns false when the payload lacks the fields needed to ever apply the
// action meaningfully; such payloads are dropped, not surfaced as errors.
func toAction(kind domain.ActionKind, payload map[string]any) (domain.Action, bool) {
	day, ok := intField(payload, "dayNumber")
	if !ok || day < 1 {
		return nil, false
	}

	switch kind {
	case domain.KindAddActivity:
		activity, ok := payload["activity"].(map[string]any)
		if !ok {
			return nil, false
		}
		a := toActivity(activity)
		if strings.TrimSpace(a.Name) == "" {
			return nil, false
		}
		return domain.AddActivity{DayNumber: day, Activity: a}, true

	case domain.KindRemoveActivity:
		idx, ok := intField(payload, "activityIndex")
		if !ok || idx < 0 {
			return nil, false
		}
		return domain.RemoveActivity{DayNumber: day, ActivityIndex: idx}, true

	case domain.KindUpdateActivity:
		a := domain.UpdateActivity{DayNumber: day}
		if title, ok := stringField(payload, "dayTitle"); ok {
			a.DayTitle = &title
		}
		if idx, ok := intField(payload, "activityIndex"); ok && idx >= 0 {
			a.ActivityIndex = &idx
			if updates, ok := payload["updates"].(map[string]any); ok {
				a.Patch = toPatch(updates)
			}
		}
		if a.DayTitle == nil && a.ActivityIndex == nil {
			return nil, false
		}
		return a, true

	case domain.KindReorderActivities:
		raw, ok := payload["order"].([]any)
		if !ok || len(raw) == 0 {
			return nil, false
		}
		order := make([]int, 0, len(raw))
		for _, v := range raw {
			n, ok := toInt(v)
			if !ok || n < 0 {
				continue
			}
			order = append(order, n)
		}
		if len(order) == 0 {
			return nil, false
		}
		return domain.ReorderActivities{DayNumber: day, Order: order}, true

	case domain.KindUpdateDayTitle:
		title, ok := stringField(payload, "title")
		if !ok {
			return nil, false
		}
		return domain.UpdateDayTitle{DayNumber: day, Title: title}, true
	}

	return nil, false
}

// toActivity maps a decoded activity object to the domain type. Unknown
// fields are ignored; a negative cost is clamped to 0.
func toActivity(m map[string]any) domain.Activity {
	a := domain.Activity{}
	a.Name, _ = stringField(m, "name")
	a.Time, _ = stringField(m, "time")
	a.Description, _ = stringField(m, "description")
	a.Tip, _ = stringField(m, "tip")
	if c, ok := stringField(m, "category"); ok {
		a.Category = domain.Category(strings.ToLower(c))
	}
	if cost, ok := floatField(m, "cost"); ok && cost > 0 {
		a.Cost = cost
	}
	a.Location = toLocation(m["location"])
	return a
}

// toPatch builds a shallow-merge patch; only keys present in the payload
// produce non-nil fields.
func toPatch(m map[string]any) domain.ActivityPatch {
	p := domain.ActivityPatch{}
	if v, ok := stringField(m, "name"); ok {
		p.Name = &v
	}
	if v, ok := stringField(m, "time"); ok {
		p.Time = &v
	}
	if v, ok := stringField(m, "description"); ok {
		p.Description = &v
	}
	if v, ok := stringField(m, "tip"); ok {
		p.Tip = &v
	}
	if v, ok := stringField(m, "category"); ok {
		c := domain.Category(strings.ToLower(v))
		p.Category = &c
	}
	if v, ok := floatField(m, "cost"); ok {
		if v < 0 {
			v = 0
		}
		p.Cost = &v
	}
	if loc := toLocation(m["location"]); loc != nil {
		p.Location = loc
	}
	return p
}

// toLocation accepts either a bare address string or an object with
// address/lat/lng fields.
func toLocation(v any) *domain.Location {
	switch loc := v.(type) {
	case string:
		if strings.TrimSpace(loc) == "" {
			return nil
		}
		return &domain.Location{Address: loc}
	case map[string]any:
		out := &domain.Location{}
		out.Address, _ = stringField(loc, "address")
		if lat, ok := floatField(loc, "lat"); ok {
			out.Lat = &lat
		}
		if lng, ok := floatField(loc, "lng"); ok {
			out.Lng = &lng
		}
		if out.Address == "" && out.Lat == nil && out.Lng == nil {
			return nil
		}
		return out
	}
	return nil
}

func stringField(m map[string]any, key string) (string, bool) {
	v, ok := m[key].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func floatField(m map[string]any, key string) (float64, bool) {
	return toFloat(m[key])
}

func intField(m map[string]any, key string) (int, bool) {
	return toInt(m[key])
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}
