package export

import (
	"strings"
	"time"
)

// BaseURL is the public site root all exported URLs are anchored to.
const BaseURL = "https://forgedefi.com"

// AIBaseURL is the root for AI-agent JSON documents.
const AIBaseURL = "https://forge.finance"

// Entry is the canonical projection of one record shared by every
// renderer. Each renderer picks the fields it needs; none re-derives
// them, so the sitemap, the AI catalog, and the AI detail document
// cannot drift apart on the same record.
type Entry struct {
	Loc        string
	Title      string
	Summary    string
	Updated    string // YYYY-MM-DD, already normalized
	ChangeFreq string
	Priority   string
}

// SafeDate normalizes the first usable candidate to YYYY-MM-DD. A
// candidate may be a time.Time, an RFC3339 or plain-date string, or an
// epoch number; nil, zero, and garbage candidates are skipped. With no
// usable candidate the current date is returned, never an error and
// never an "Invalid Date" artifact.
func SafeDate(candidates ...any) string {
	for _, c := range candidates {
		if s, ok := normalizeDate(c); ok {
			return s
		}
	}
	return time.Now().UTC().Format("2006-01-02")
}

func normalizeDate(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case time.Time:
		if t.IsZero() {
			return "", false
		}
		return t.UTC().Format("2006-01-02"), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return "", false
		}
		for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"} {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC().Format("2006-01-02"), true
			}
		}
		return "", false
	case float64:
		return epochDate(int64(t))
	case int64:
		return epochDate(t)
	case int:
		return epochDate(int64(t))
	default:
		return "", false
	}
}

func epochDate(n int64) (string, bool) {
	if n <= 0 {
		return "", false
	}
	if n > 253402300799 {
		return time.UnixMilli(n).UTC().Format("2006-01-02"), true
	}
	return time.Unix(n, 0).UTC().Format("2006-01-02"), true
}
