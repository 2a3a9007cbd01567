package export

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"forge/internal/content"
)

// DefaultFeeFraction is used when a strategy's free-text fee field
// cannot be parsed into a percentage (0.25% of gross yield).
const DefaultFeeFraction = 0.0025

// DefaultFeeText is the display form of the default fee.
const DefaultFeeText = "0.25%"

// CatalogEntry is one line of the AI-facing strategy catalog.
type CatalogEntry struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Updated string `json:"updated"`
}

// AICatalog projects every strategy into the JSON catalog consumed by
// AI crawlers. The URL points at the per-strategy JSON document, not
// the HTML page.
func AICatalog(strategies []content.Strategy) []CatalogEntry {
	entries := make([]CatalogEntry, 0, len(strategies))
	for _, s := range strategies {
		entries = append(entries, CatalogEntry{
			Title:   s.Name,
			URL:     fmt.Sprintf("%s/ai/%s.json", AIBaseURL, s.ID),
			Updated: SafeDate(s.LastUpdated, s.UpdatedAt),
		})
	}
	return entries
}

// DetailNumbers is the numeric block of the AI detail document.
type DetailNumbers struct {
	APYTypical       string  `json:"apy_typical"`
	FeeGrossYieldPct float64 `json:"fee_gross_yield_pct"`
}

// Detail is the fixed-shape AI strategy document.
type Detail struct {
	Slug       string                `json:"slug"`
	Title      string                `json:"title"`
	Updated    string                `json:"updated"`
	Summary    string                `json:"summary"`
	Numbers    DetailNumbers         `json:"numbers"`
	Chains     []string              `json:"chains"`
	Protocols  []string              `json:"protocols"`
	HowItWorks []string              `json:"how_it_works"`
	Risks      []string              `json:"risks"`
	Fees       string                `json:"fees"`
	FAQ        []content.FAQ         `json:"faq"`
	Changelog  []content.ChangeEntry `json:"changelog"`
	Source     string                `json:"source"`
}

// AIDetail projects one strategy into the AI detail document. Legacy
// string-or-object steps and risks come out as flat strings; a record
// with nothing but an id and a name still renders.
func AIDetail(s content.Strategy) Detail {
	fee := s.Fee
	if fee == "" {
		fee = DefaultFeeText
	}
	d := Detail{
		Slug:    s.ID,
		Title:   s.Name,
		Updated: SafeDate(s.LastUpdated, s.UpdatedAt),
		Summary: s.Description,
		Numbers: DetailNumbers{
			APYTypical:       fmt.Sprintf("%g%%", s.APY),
			FeeGrossYieldPct: FeeFraction(s.Fee),
		},
		Chains:     emptyIfNil(s.Chains),
		Protocols:  emptyIfNil(s.Protocols),
		HowItWorks: make([]string, 0, len(s.Steps)),
		Risks:      make([]string, 0, len(s.Risks)),
		Fees:       fmt.Sprintf("Forge fee = %s of gross yield, net daily.", fee),
		FAQ:        s.FAQ,
		Changelog:  s.Changelog,
		Source:     fmt.Sprintf("%s/strategies/%s", AIBaseURL, s.ID),
	}
	for _, step := range s.Steps {
		d.HowItWorks = append(d.HowItWorks, step.Text())
	}
	for _, risk := range s.Risks {
		d.Risks = append(d.Risks, risk.Text())
	}
	if d.FAQ == nil {
		d.FAQ = []content.FAQ{}
	}
	if d.Changelog == nil {
		d.Changelog = []content.ChangeEntry{}
	}
	return d
}

// FeeFraction parses a percent literal like "0.25%" into a fraction
// (0.0025). Unparseable input falls back to DefaultFeeFraction rather
// than producing a NaN in the exported document.
func FeeFraction(fee string) float64 {
	fee = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(fee), "%"))
	if fee == "" {
		return DefaultFeeFraction
	}
	pct, err := decimal.NewFromString(fee)
	if err != nil {
		return DefaultFeeFraction
	}
	frac, _ := pct.Div(decimal.NewFromInt(100)).Float64()
	return frac
}

func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
