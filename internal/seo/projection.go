package seo

import (
	"fmt"

	"forge/internal/content"
)

// Display defaults substituted for absent optional fields. The schema
// derivation below reads the already-defaulted view, so the structured
// data can never disagree with the page.
const (
	DefaultRisk        = "Unknown"
	DefaultAuthor      = "Forge Team"
	DefaultTimeToSetup = "N/A"
	DefaultReadTime    = 5

	siteURL  = "https://forgedefi.com"
	siteName = "Forge DeFi Platform"
)

// StrategyView is the strategy detail page's view model.
type StrategyView struct {
	content.Strategy
	CanonicalURL string
}

// ProjectStrategy fills display defaults onto a strategy record.
func ProjectStrategy(s content.Strategy) StrategyView {
	if s.Risk == "" {
		s.Risk = DefaultRisk
	}
	if s.Author == "" {
		s.Author = DefaultAuthor
	}
	if s.TimeToSetup == "" {
		s.TimeToSetup = DefaultTimeToSetup
	}
	if s.Tags == nil {
		s.Tags = []string{}
	}
	if s.Chains == nil {
		s.Chains = []string{}
	}
	if s.Protocols == nil {
		s.Protocols = []string{}
	}
	return StrategyView{
		Strategy:     s,
		CanonicalURL: fmt.Sprintf("%s/strategies/%s", siteURL, s.ID),
	}
}

// StrategySchema derives the schema.org structured data for a strategy
// detail page from the defaulted view.
func StrategySchema(v StrategyView) map[string]any {
	properties := []map[string]any{
		property("APY", fmt.Sprintf("%g%%", v.APY)),
		property("Risk Level", v.Risk),
		property("Chains", join(v.Chains)),
		property("Minimum Investment", fmt.Sprintf("$%g", v.MinInvestment)),
		property("Last Updated", v.LastUpdated),
	}
	schema := map[string]any{
		"@context":           "https://schema.org",
		"@type":              "Product",
		"name":               v.Name,
		"description":        v.Description,
		"url":                v.CanonicalURL,
		"additionalProperty": properties,
		"provider":           organization(),
	}
	if len(v.Steps) > 0 {
		steps := make([]map[string]any, 0, len(v.Steps))
		for i, step := range v.Steps {
			steps = append(steps, map[string]any{
				"@type":    "HowToStep",
				"position": i + 1,
				"text":     step.Text(),
			})
		}
		schema["step"] = steps
	}
	if len(v.FAQ) > 0 {
		questions := make([]map[string]any, 0, len(v.FAQ))
		for _, faq := range v.FAQ {
			questions = append(questions, map[string]any{
				"@type": "Question",
				"name":  faq.Q,
				"acceptedAnswer": map[string]any{
					"@type": "Answer",
					"text":  faq.A,
				},
			})
		}
		schema["mainEntity"] = questions
	}
	return schema
}

// PostView is the blog detail page's view model.
type PostView struct {
	content.Post
	CanonicalURL string
}

// ProjectPost fills display defaults onto a blog post record.
func ProjectPost(p content.Post) PostView {
	if p.Author == "" {
		p.Author = DefaultAuthor
	}
	if p.ReadTime == 0 {
		p.ReadTime = DefaultReadTime
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return PostView{
		Post:         p,
		CanonicalURL: fmt.Sprintf("%s/blog/%s", siteURL, p.Slug),
	}
}

// PostSchema derives the schema.org BlogPosting structured data from
// the defaulted view.
func PostSchema(v PostView) map[string]any {
	return map[string]any{
		"@context":    "https://schema.org",
		"@type":       "BlogPosting",
		"headline":    v.Title,
		"description": v.Excerpt,
		"author": map[string]any{
			"@type": "Person",
			"name":  v.Author,
		},
		"publisher":     organization(),
		"datePublished": v.PublishedAt,
		"dateModified":  v.UpdatedAt,
		"mainEntityOfPage": map[string]any{
			"@type": "WebPage",
			"@id":   v.CanonicalURL,
		},
		"keywords":       join(v.Tags),
		"articleSection": v.Category,
		"wordCount":      len(v.Content),
	}
}

func property(name, value string) map[string]any {
	return map[string]any{
		"@type": "PropertyValue",
		"name":  name,
		"value": value,
	}
}

func organization() map[string]any {
	return map[string]any{
		"@type": "Organization",
		"name":  siteName,
		"logo": map[string]any{
			"@type": "ImageObject",
			"url":   siteURL + "/logo.png",
		},
	}
}

func join(items []string) string {
	out := ""
	for i, item := range items {
		if i > 0 {
			out += ", "
		}
		out += item
	}
	return out
}
