// Package extract scans raw generated text for action markers, decodes each
// payload through the repairing decoder, and returns the typed actions plus
// the residual prose. The generator sometimes omits the closing marker, so
// two grammars are recognized over the same input: an explicit open/close
// pair, and an open marker followed by a bare payload. Claimed-span tracking
// guarantees no byte is consumed by both grammars, so the same payload can
// never be emitted twice.
package extract

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/jmichels/tripflow/internal/decode"
	"github.com/jmichels/tripflow/internal/domain"
)

// kindLabels is the fixed lookup from marker labels to action variant tags.
// Unrecognized labels yield no action.
var kindLabels = map[string]domain.ActionKind{
	"ADD_ACTIVITY":       domain.KindAddActivity,
	"REMOVE_ACTIVITY":    domain.KindRemoveActivity,
	"UPDATE_ACTIVITY":    domain.KindUpdateActivity,
	"REORDER_ACTIVITIES": domain.KindReorderActivities,
	"UPDATE_DAY_TITLE":   domain.KindUpdateDayTitle,
}

var (
	// Grammar (a): explicit open/close marker pair around a payload.
	pairRe = regexp.MustCompile(`(?s)\[ACTION:\s*([A-Z_]+)\s*\](.*?)\[/ACTION\]`)

	// Grammar (b): open marker only; the payload is the first balanced JSON
	// object after it, found by scanObject.
	openRe = regexp.MustCompile(`\[ACTION:\s*([A-Z_]+)\s*\]`)

	blankRunsRe = regexp.MustCompile(`\n{3,}`)
)

// Extractor locates action markers in generated text. The zero value is not
// usable; construct with NewExtractor.
type Extractor struct {
	log *slog.Logger
}

// NewExtractor returns an Extractor that logs dropped fragments to log.
// Pass nil to use slog.Default().
func NewExtractor(log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{log: log}
}

// span is a half-open byte range [start, end) claimed by a grammar match.
type span struct{ start, end int }

func overlaps(claimed []span, s span) bool {
	for _, c := range claimed {
		if s.start < c.end && c.start < s.end {
			return true
		}
	}
	return false
}

// Extract returns the prose with all consumed marker text removed, and the
// ordered actions recovered from the payloads. Extraction is deterministic:
// the same raw text always yields the same cleaned text and action sequence.
func (e *Extractor) Extract(rawText string) (string, []domain.Action) {
	var claimed []span
	type match struct {
		span
		label   string
		payload string
	}
	var matches []match

	for _, m := range pairRe.FindAllStringSubmatchIndex(rawText, -1) {
		s := span{m[0], m[1]}
		matches = append(matches, match{
			span:    s,
			label:   rawText[m[2]:m[3]],
			payload: rawText[m[4]:m[5]],
		})
		claimed = append(claimed, s)
	}

	for _, m := range openRe.FindAllStringSubmatchIndex(rawText, -1) {
		end := scanObject(rawText, m[1])
		s := span{m[0], end}
		if overlaps(claimed, s) {
			continue
		}
		matches = append(matches, match{
			span:    s,
			label:   rawText[m[2]:m[3]],
			payload: rawText[m[1]:end],
		})
		claimed = append(claimed, s)
	}

	// Regex passes run in document order individually, but grammar (b)
	// matches interleave with grammar (a) matches; restore document order so
	// the action sequence follows the text.
	sort.Slice(matches, func(i, j int) bool { return matches[i].start < matches[j].start })

	var actions []domain.Action
	for _, m := range matches {
		kind, ok := kindLabels[m.label]
		if !ok {
			e.log.Debug("unrecognized action label", "label", m.label)
			continue
		}
		payload, err := decode.Decode(m.payload)
		if err != nil {
			e.log.Debug("dropping undecodable action payload", "label", m.label, "fragment", m.payload)
			continue
		}
		action, ok := toAction(kind, payload)
		if !ok {
			e.log.Debug("dropping action with missing required fields", "label", m.label)
			continue
		}
		actions = append(actions, action)
	}

	return removeSpans(rawText, claimed), actions
}

// scanObject returns the end offset of the first balanced JSON object at or
// after start, using a byte state machine that skips string contents. When
// the object never balances (truncated payload) the rest of the text is
// consumed and left for the repairing decoder to close.
func scanObject(text string, start int) int {
	depth := 0
	var quote byte
	escaped := false
	begun := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		if quote != 0 {
			if c == '\\' {
				escaped = true
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			if begun {
				quote = c
			}
		case '{':
			begun = true
			depth++
		case '}':
			if begun {
				depth--
				if depth == 0 {
					return i + 1
				}
			}
		case '\n':
			// A blank line before any "{" means the marker has no payload.
			if !begun && i+1 < len(text) && text[i+1] == '\n' {
				return i
			}
		}
	}
	return len(text)
}

// removeSpans deletes the claimed byte ranges from text and tidies the
// remaining prose: runs of 3+ newlines collapse to a paragraph break and the
// result is trimmed.
func removeSpans(text string, claimed []span) string {
	if len(claimed) == 0 {
		return strings.TrimSpace(text)
	}
	sorted := make([]span, len(claimed))
	copy(sorted, claimed)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].start < sorted[j].start })

	var b strings.Builder
	prev := 0
	for _, s := range sorted {
		if s.start > prev {
			b.WriteString(text[prev:s.start])
		}
		if s.end > prev {
			prev = s.end
		}
	}
	if prev < len(text) {
		b.WriteString(text[prev:])
	}

	cleaned := blankRunsRe.ReplaceAllString(b.String(), "\n\n")
	return strings.TrimSpace(cleaned)
}
