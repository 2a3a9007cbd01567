package content

// Older strategy documents store steps and risks as plain strings; newer
// ones use structured objects. Both shapes are normalized here, once,
// and every consumer (detail page, SEO schema, AI exporter) goes through
// these types instead of re-deciding per call site.

// Step is one entry of a strategy's how-it-works sequence.
type Step struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description"`
	Link        string `json:"link,omitempty"`
}

// Text is the uniform display string for a step regardless of the shape
// it was stored in.
func (s Step) Text() string {
	if s.Description != "" {
		return s.Description
	}
	return s.Title
}

// Risk is one entry of a strategy's risk list.
type Risk struct {
	Type        string `json:"type,omitempty"`
	Level       string `json:"level,omitempty"`
	Description string `json:"description"`
}

func (r Risk) Text() string {
	if r.Type != "" {
		return r.Type
	}
	if r.Description != "" {
		return r.Description
	}
	return "Risk"
}

// FAQ is one question/answer pair.
type FAQ struct {
	Q string `json:"q"`
	A string `json:"a"`
}

// ChangeEntry is one changelog line.
type ChangeEntry struct {
	Date   string `json:"date"`
	Change string `json:"change"`
}

// ProtocolFee is one underlying-protocol fee line.
type ProtocolFee struct {
	Protocol string `json:"protocol"`
	Amount   string `json:"amount"`
}

func parseStep(v any) (Step, bool) {
	switch s := v.(type) {
	case string:
		return Step{Description: s}, true
	case map[string]any:
		step := Step{
			Title:       fieldString(s, "title"),
			Description: fieldString(s, "description"),
			Link:        fieldString(s, "link"),
		}
		if step.Title == "" && step.Description == "" {
			return Step{}, false
		}
		return step, true
	default:
		return Step{}, false
	}
}

func parseRisk(v any) (Risk, bool) {
	switch r := v.(type) {
	case string:
		return Risk{Description: r}, true
	case map[string]any:
		risk := Risk{
			Type:        fieldString(r, "type"),
			Level:       fieldString(r, "level"),
			Description: fieldString(r, "description"),
		}
		if risk.Type == "" && risk.Description == "" {
			return Risk{}, false
		}
		return risk, true
	default:
		return Risk{}, false
	}
}

func parseSteps(raw []any) []Step {
	steps := make([]Step, 0, len(raw))
	for _, item := range raw {
		if step, ok := parseStep(item); ok {
			steps = append(steps, step)
		}
	}
	return steps
}

func parseRisks(raw []any) []Risk {
	risks := make([]Risk, 0, len(raw))
	for _, item := range raw {
		if risk, ok := parseRisk(item); ok {
			risks = append(risks, risk)
		}
	}
	return risks
}

func parseFAQ(raw []any) []FAQ {
	faqs := make([]FAQ, 0, len(raw))
	for _, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		faq := FAQ{Q: fieldString(entry, "q"), A: fieldString(entry, "a")}
		if faq.Q == "" && faq.A == "" {
			continue
		}
		faqs = append(faqs, faq)
	}
	return faqs
}

func parseChangelog(raw []any) []ChangeEntry {
	entries := make([]ChangeEntry, 0, len(raw))
	for _, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		change := ChangeEntry{Date: fieldString(entry, "date"), Change: fieldString(entry, "change")}
		if change.Date == "" && change.Change == "" {
			continue
		}
		entries = append(entries, change)
	}
	return entries
}

func parseProtocolFees(raw []any) []ProtocolFee {
	fees := make([]ProtocolFee, 0, len(raw))
	for _, item := range raw {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		fee := ProtocolFee{Protocol: fieldString(entry, "protocol"), Amount: fieldString(entry, "amount")}
		if fee.Protocol == "" && fee.Amount == "" {
			continue
		}
		fees = append(fees, fee)
	}
	return fees
}
