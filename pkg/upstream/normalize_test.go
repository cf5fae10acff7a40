package upstream

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnwrap(t *testing.T) {
	assert.Equal(t, map[string]any{"x": 1}, Unwrap(map[string]any{"data": map[string]any{"x": 1}}))
	assert.Equal(t, map[string]any{"x": 1}, Unwrap(map[string]any{"x": 1}))
	assert.Equal(t, []any{"a"}, Unwrap([]any{"a"}))
	assert.Nil(t, Unwrap(map[string]any{"data": nil}))
}

func TestUnwrapJSON(t *testing.T) {
	assert.Equal(t, map[string]any{"x": float64(1)}, UnwrapJSON([]byte(`{"data":{"x":1}}`)))
	assert.Equal(t, map[string]any{"x": float64(1)}, UnwrapJSON([]byte(`{"x":1}`)))
	assert.Equal(t, map[string]any{}, UnwrapJSON([]byte(`{"data":[1,2]}`)))
	assert.Equal(t, map[string]any{}, UnwrapJSON([]byte(`oops`)))
}

func TestNormalizeVector2D(t *testing.T) {
	tests := []struct {
		name   string
		input  any
		want   Vector2D
		wantOK bool
	}{
		{"string coordinates", map[string]any{"x": "0.1", "y": "-0.2"}, Vector2D{X: 0.1, Y: -0.2}, true},
		{"upper case keys", map[string]any{"X": 1.5, "Y": 2.0}, Vector2D{X: 1.5, Y: 2}, true},
		{"symbol keys", map[string]any{":x": 3.0, ":y": 4.0}, Vector2D{X: 3, Y: 4}, true},
		{"exact keys win over variants", map[string]any{"x": 1.0, "X": 9.0, ":x": 7.0, "y": 2.0, "Y": 8.0}, Vector2D{X: 1, Y: 2}, true},
		{"variants resolve in key order", map[string]any{"X": 9.0, ":x": 7.0, ":y": 3.0}, Vector2D{X: 7, Y: 3}, true},
		{"array ignores extras", []any{0.1, -0.2, 99.0}, Vector2D{X: 0.1, Y: -0.2}, true},
		{"json numbers", []any{json.Number("1.25"), json.Number("-2")}, Vector2D{X: 1.25, Y: -2}, true},
		{"float slice", []float64{5, 6}, Vector2D{X: 5, Y: 6}, true},
		{"missing y", map[string]any{"x": 0.1}, Vector2D{}, false},
		{"short array", []any{0.1}, Vector2D{}, false},
		{"non numeric", map[string]any{"x": "a", "y": "b"}, Vector2D{}, false},
		{"not a number literal", []any{"NaN", 1.0}, Vector2D{}, false},
		{"garbage string", "garbage", Vector2D{}, false},
		{"nil", nil, Vector2D{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeVector2D(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeVector2DIsStableAcrossIterationOrder(t *testing.T) {
	input := map[string]any{"x": 1.0, "X": 9.0, ":x": 7.0, "Y": 8.0, ":Y": 6.0, ":y": 5.0}
	for i := 0; i < 50; i++ {
		got, ok := NormalizeVector2D(input)
		require.True(t, ok)
		assert.Equal(t, Vector2D{X: 1, Y: 6}, got)
	}
}

func TestExtractJournalNames(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  []string
	}{
		{
			name:  "flat list is sorted and deduplicated",
			input: map[string]any{"journals": []any{"B", "A", "A"}},
			want:  []string{"A", "B"},
		},
		{
			name: "domains are flattened",
			input: map[string]any{"domains": []any{
				map[string]any{"name": "IS", "journals": []any{"C"}},
				map[string]any{"name": "CS", "journals": []any{"A"}},
			}},
			want: []string{"A", "C"},
		},
		{
			name:  "blanks are dropped",
			input: map[string]any{"journals": []any{" ", "Z ", nil, ""}},
			want:  []string{"Z"},
		},
		{
			name:  "empty object falls back",
			input: map[string]any{},
			want:  FallbackJournals,
		},
		{
			name:  "non object falls back",
			input: "nope",
			want:  FallbackJournals,
		},
		{
			name:  "malformed domains fall back",
			input: map[string]any{"domains": []any{"x", 1.0}},
			want:  FallbackJournals,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJournalNames(tt.input))
		})
	}
}

func TestExtractJournalNamesFallbackIsACopy(t *testing.T) {
	got := ExtractJournalNames(nil)
	got[0] = "mutated"
	assert.Equal(t, "MIS Quarterly", FallbackJournals[0])
}

func TestFindVector(t *testing.T) {
	vec, ok := FindVector(map[string]any{"research_interest_2d": []any{1.0, 2.0}})
	assert.True(t, ok)
	assert.Equal(t, Vector2D{X: 1, Y: 2}, vec)
	assert.Equal(t, "x=1, y=2", vec.String())

	_, ok = FindVector(map[string]any{"vector_2d": "bad"})
	assert.False(t, ok)
}
