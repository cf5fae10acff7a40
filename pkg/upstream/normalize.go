package upstream

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// FallbackJournals is offered when the upstream journal list is unavailable or empty.
var FallbackJournals = []string{
	"MIS Quarterly",
	"Management Science",
	"Journal of the ACM",
}

// Vector2D is a point on the 2-D research-interest map.
type Vector2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vector2D) String() string {
	return fmt.Sprintf("x=%s, y=%s",
		strconv.FormatFloat(v.X, 'f', -1, 64),
		strconv.FormatFloat(v.Y, 'f', -1, 64),
	)
}

// Unwrap resolves the {"data": ...} envelope. Bare values pass through unchanged.
func Unwrap(v any) any {
	if m, ok := v.(map[string]any); ok {
		if inner, found := m["data"]; found {
			return inner
		}
	}
	return v
}

// UnwrapJSON parses raw and returns the unwrapped object, or an empty map when the
// body is malformed or the unwrapped value is not an object.
func UnwrapJSON(raw []byte) map[string]any {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return map[string]any{}
	}
	if m, ok := Unwrap(parsed).(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// NormalizeVector2D accepts {x, y} objects (any key case, optional ":" prefix) or
// sequences whose first two elements are numeric.
func NormalizeVector2D(v any) (Vector2D, bool) {
	switch val := v.(type) {
	case Vector2D:
		return val, true
	case *Vector2D:
		if val == nil {
			return Vector2D{}, false
		}
		return *val, true
	case map[string]any:
		xRaw, hasX := vectorCoord(val, "x")
		yRaw, hasY := vectorCoord(val, "y")
		if !hasX || !hasY {
			return Vector2D{}, false
		}
		return pairToVector(xRaw, yRaw)
	case []any:
		if len(val) < 2 {
			return Vector2D{}, false
		}
		return pairToVector(val[0], val[1])
	case []float64:
		if len(val) < 2 {
			return Vector2D{}, false
		}
		return pairToVector(val[0], val[1])
	}
	return Vector2D{}, false
}

// FindVector looks for a 2-D vector under the keys the upstream has used over time.
func FindVector(data map[string]any, keys ...string) (Vector2D, bool) {
	if len(keys) == 0 {
		keys = []string{"vector_2d", "research_interest_2d", "embedding_2d"}
	}
	for _, key := range keys {
		if vec, ok := NormalizeVector2D(data[key]); ok {
			return vec, true
		}
	}
	return Vector2D{}, false
}

// ExtractJournalNames supports {journals: [...]} and {domains: [{journals: [...]}]}.
func ExtractJournalNames(data any) []string {
	m, _ := data.(map[string]any)

	names := StringList(m["journals"])
	if len(names) == 0 {
		for _, domain := range asList(m["domains"]) {
			if dm, ok := domain.(map[string]any); ok {
				names = append(names, StringList(dm["journals"])...)
			}
		}
	}

	seen := make(map[string]bool, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		result = append(result, name)
	}
	sort.Strings(result)

	if len(result) == 0 {
		return append([]string(nil), FallbackJournals...)
	}
	return result
}

// StringList coerces a JSON array into strings; scalars inside it are formatted,
// nils and nested structures are skipped. A single string becomes a one-item list.
func StringList(v any) []string {
	switch val := v.(type) {
	case []string:
		return append([]string(nil), val...)
	case string:
		if strings.TrimSpace(val) == "" {
			return nil
		}
		return []string{val}
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			switch s := item.(type) {
			case string:
				out = append(out, s)
			case float64, bool, json.Number:
				out = append(out, fmt.Sprint(s))
			}
		}
		return out
	}
	return nil
}

// String reads a scalar field as a string; numbers are formatted without exponent.
func String(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	}
	return ""
}

// Float coerces numbers and numeric strings; non-finite values are rejected.
func Float(v any) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func pairToVector(xRaw, yRaw any) (Vector2D, bool) {
	x, ok := Float(xRaw)
	if !ok {
		return Vector2D{}, false
	}
	y, ok := Float(yRaw)
	if !ok {
		return Vector2D{}, false
	}
	return Vector2D{X: x, Y: y}, true
}

// vectorCoord prefers the exact lowercase key, then the other spellings in sorted
// key order so a map carrying both x and X resolves the same way every time.
func vectorCoord(m map[string]any, axis string) (any, bool) {
	if raw, ok := m[axis]; ok {
		return raw, true
	}
	keys := make([]string, 0, len(m))
	for key := range m {
		if vectorKey(key) == axis {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil, false
	}
	sort.Strings(keys)
	return m[keys[0]], true
}

func vectorKey(key string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(key), ":"))
}

func asList(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	return nil
}
