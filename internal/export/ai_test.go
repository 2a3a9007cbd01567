package export

import (
	"encoding/json"
	"strings"
	"testing"

	"forge/internal/content"
)

func TestFeeFraction(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"0.25%", 0.0025},
		{"1%", 0.01},
		{" 2.5% ", 0.025},
		{"0.25", 0.0025},
		{"", DefaultFeeFraction},
		{"free", DefaultFeeFraction},
	}
	for _, tt := range tests {
		if got := FeeFraction(tt.in); got != tt.want {
			t.Fatalf("FeeFraction(%q)=%v want=%v", tt.in, got, tt.want)
		}
	}
}

func TestAICatalogURLsPointAtJSONDocuments(t *testing.T) {
	entries := AICatalog([]content.Strategy{
		{ID: "lido-staking", Name: "Lido Staking", LastUpdated: "2025-04-02"},
	})
	if len(entries) != 1 {
		t.Fatalf("len=%d want=1", len(entries))
	}
	if entries[0].URL != AIBaseURL+"/ai/lido-staking.json" {
		t.Fatalf("url=%q", entries[0].URL)
	}
	if entries[0].Updated != "2025-04-02" {
		t.Fatalf("updated=%q want=2025-04-02", entries[0].Updated)
	}
}

func TestAIDetailFlattensMixedShapes(t *testing.T) {
	d := AIDetail(content.Strategy{
		ID:   "loop",
		Name: "Aave Loop",
		Fee:  "0.25%",
		Steps: []content.Step{
			{Description: "Deposit USDC"},
			{Title: "Borrow", Description: "Borrow against the deposit"},
		},
		Risks: []content.Risk{
			{Description: "Liquidation risk"},
			{Type: "Oracle", Level: "Medium"},
		},
	})
	if len(d.HowItWorks) != 2 || d.HowItWorks[0] != "Deposit USDC" {
		t.Fatalf("how_it_works=%v", d.HowItWorks)
	}
	if len(d.Risks) != 2 || d.Risks[1] != "Oracle" {
		t.Fatalf("risks=%v", d.Risks)
	}
	if d.Numbers.FeeGrossYieldPct != 0.0025 {
		t.Fatalf("fee fraction=%v want=0.0025", d.Numbers.FeeGrossYieldPct)
	}
	if !strings.Contains(d.Fees, "0.25%") {
		t.Fatalf("fees text=%q", d.Fees)
	}
}

func TestAIDetailMinimalRecordRenders(t *testing.T) {
	d := AIDetail(content.Strategy{ID: "bare", Name: "Bare"})
	body, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(body)
	// Collections must serialize as [], not null.
	for _, key := range []string{`"chains":[]`, `"protocols":[]`, `"how_it_works":[]`, `"risks":[]`, `"faq":[]`, `"changelog":[]`} {
		if !strings.Contains(out, key) {
			t.Fatalf("missing %s in %s", key, out)
		}
	}
	if !dateShape.MatchString(d.Updated) {
		t.Fatalf("updated=%q not a date", d.Updated)
	}
	if d.Numbers.FeeGrossYieldPct != DefaultFeeFraction {
		t.Fatalf("fee=%v want default", d.Numbers.FeeGrossYieldPct)
	}
	if !strings.Contains(d.Fees, DefaultFeeText) {
		t.Fatalf("fees text=%q want default fee", d.Fees)
	}
}
