package decode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmichels/tripflow/internal/decode"
)

func TestDecode_StrictJSON(t *testing.T) {
	v, err := decode.Decode(`{"dayNumber": 2, "title": "Beach day"}`)

	require.NoError(t, err)
	assert.Equal(t, float64(2), v["dayNumber"])
	assert.Equal(t, "Beach day", v["title"])
}

func TestDecode_GeneratorStylePayload(t *testing.T) {
	// Single quotes, unquoted keys, exactly as the generator emits them.
	v, err := decode.Decode(`{dayNumber:1, activity:{name:'Museum', time:'10:00', cost:20}}`)

	require.NoError(t, err)
	assert.Equal(t, float64(1), v["dayNumber"])

	activity, ok := v["activity"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Museum", activity["name"])
	assert.Equal(t, "10:00", activity["time"])
	assert.Equal(t, float64(20), activity["cost"])
}

func TestDecode_TrailingComma(t *testing.T) {
	v, err := decode.Decode(`{"dayNumber": 3, "order": [2, 0, 1,],}`)

	require.NoError(t, err)
	assert.Equal(t, []any{float64(2), float64(0), float64(1)}, v["order"])
}

func TestDecode_MissingClosingBraces(t *testing.T) {
	v, err := decode.Decode(`{"dayNumber": 1, "activity": {"name": "Harbor Walk"`)

	require.NoError(t, err)
	activity, ok := v["activity"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Harbor Walk", activity["name"])
}

func TestDecode_TruncatedTrailingValue(t *testing.T) {
	// The generator stopped mid-string; the unterminated value is closed and
	// the object balanced.
	v, err := decode.Decode(`{"dayNumber": 1, "activity": {"name": "Sunset Crui`)

	require.NoError(t, err)
	activity, ok := v["activity"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Sunset Crui", activity["name"])
}

func TestDecode_DanglingKeyDropped(t *testing.T) {
	v, err := decode.Decode(`{"dayNumber": 4, "title": "Old Town", "tip":`)

	require.NoError(t, err)
	assert.Equal(t, float64(4), v["dayNumber"])
	assert.Equal(t, "Old Town", v["title"])
	assert.NotContains(t, v, "tip")
}

func TestDecode_ApostropheInsideValueSurvives(t *testing.T) {
	v, err := decode.Decode(`{"name": "Sailor's Rest"}`)

	require.NoError(t, err)
	assert.Equal(t, "Sailor's Rest", v["name"])
}

func TestDecode_SalvageAddActivityFields(t *testing.T) {
	// Too broken for the repair pass (interleaved prose), but the critical
	// fields are recoverable by pattern search.
	raw := `the payload is dayNumber: 2 and name: 'Night Market' with cost: 15 ok?`

	v, err := decode.Decode(raw)

	require.NoError(t, err)
	assert.Equal(t, float64(2), v["dayNumber"])

	activity, ok := v["activity"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Night Market", activity["name"])
	assert.Equal(t, "TBD", activity["time"])
	assert.Equal(t, float64(15), activity["cost"])
}

func TestDecode_SalvageDefaults(t *testing.T) {
	v, err := decode.Decode(`dayNumber: 1 ... name: "Museum" garbage {{{`)

	require.NoError(t, err)
	activity := v["activity"].(map[string]any)
	assert.Equal(t, "TBD", activity["time"])
	assert.Equal(t, float64(0), activity["cost"])
}

func TestDecode_Unrecoverable(t *testing.T) {
	_, err := decode.Decode(`complete nonsense with no recognizable fields`)

	assert.ErrorIs(t, err, decode.ErrUndecodable)
}

func TestDecode_FieldPreservation(t *testing.T) {
	// Well-formed payloads keep every field unchanged, even unknown ones.
	v, err := decode.Decode(`{"dayNumber": 1, "activity": {"name": "Zoo", "mood": "excited"}}`)

	require.NoError(t, err)
	activity := v["activity"].(map[string]any)
	assert.Equal(t, "Zoo", activity["name"])
	assert.Equal(t, "excited", activity["mood"])
}
