package content

import (
	"strconv"
	"strings"
	"time"
)

// Field coercion for schema-less document bags. Documents written over
// the project's lifetime carry numbers as floats or strings, dates as
// strings or epochs, and arrays that may be absent entirely. Consumers
// get zero values instead of errors.

func fieldString(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func fieldBool(data map[string]any, key string) bool {
	if v, ok := data[key].(bool); ok {
		return v
	}
	return false
}

func fieldNumber(data map[string]any, key string) float64 {
	switch v := data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func fieldInt(data map[string]any, key string) int {
	return int(fieldNumber(data, key))
}

func fieldStrings(data map[string]any, key string) []string {
	raw, ok := data[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func fieldSlice(data map[string]any, key string) []any {
	raw, _ := data[key].([]any)
	return raw
}

// fieldTime accepts the shapes a document date may arrive in: time.Time,
// RFC3339 or plain-date string, epoch seconds or milliseconds. The bool
// reports whether a usable date was found.
func fieldTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return time.Time{}, false
		}
		return t, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04:05"} {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	case float64:
		return epochTime(int64(t))
	case int64:
		return epochTime(t)
	case int:
		return epochTime(int64(t))
	default:
		return time.Time{}, false
	}
}

func epochTime(n int64) (time.Time, bool) {
	if n <= 0 {
		return time.Time{}, false
	}
	// Epochs past the year 9999 in seconds are treated as milliseconds.
	if n > 253402300799 {
		return time.UnixMilli(n).UTC(), true
	}
	return time.Unix(n, 0).UTC(), true
}
