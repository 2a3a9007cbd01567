package catalog

import (
	"sort"
	"strings"

	"forge/internal/content"
)

// Listing filters are pure: Apply never mutates its input slice, so the
// same backing array can feed several views at once.

// All is the sentinel meaning "no filter" for categorical fields.
const All = "all"

var riskOrder = map[string]int{
	"Low":    1,
	"Medium": 2,
	"High":   3,
}

// StrategyQuery is one listing's worth of filter state.
type StrategyQuery struct {
	Search   string
	Category string
	Risk     string
	SortBy   string
}

// Apply returns the strategies matching the query, ordered by SortBy.
func (q StrategyQuery) Apply(strategies []content.Strategy) []content.Strategy {
	out := make([]content.Strategy, 0, len(strategies))
	for _, s := range strategies {
		if !q.matches(s) {
			continue
		}
		out = append(out, s)
	}
	sortStrategies(out, q.SortBy)
	return out
}

func (q StrategyQuery) matches(s content.Strategy) bool {
	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		if !strategyHasTerm(s, term) {
			return false
		}
	}
	if q.Category != "" && q.Category != All && s.Category != q.Category {
		return false
	}
	if q.Risk != "" && q.Risk != All && !strings.EqualFold(s.Risk, q.Risk) {
		return false
	}
	return true
}

func strategyHasTerm(s content.Strategy, term string) bool {
	if strings.Contains(strings.ToLower(s.Name), term) {
		return true
	}
	if strings.Contains(strings.ToLower(s.Description), term) {
		return true
	}
	if strings.Contains(strings.ToLower(s.Author), term) {
		return true
	}
	for _, tag := range s.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func sortStrategies(strategies []content.Strategy, sortBy string) {
	switch sortBy {
	case "apy":
		sort.SliceStable(strategies, func(i, j int) bool {
			return strategies[i].APY > strategies[j].APY
		})
	case "tvl":
		sort.SliceStable(strategies, func(i, j int) bool {
			return strategies[i].TVL > strategies[j].TVL
		})
	case "risk":
		sort.SliceStable(strategies, func(i, j int) bool {
			return riskRank(strategies[i].Risk) < riskRank(strategies[j].Risk)
		})
	case "name":
		sort.SliceStable(strategies, func(i, j int) bool {
			return strategies[i].Name < strategies[j].Name
		})
	}
}

// riskRank puts unknown risk levels after High.
func riskRank(risk string) int {
	if rank, ok := riskOrder[risk]; ok {
		return rank
	}
	return len(riskOrder) + 1
}

// PostQuery is the blog listing's filter state. Posts always sort by
// publish date, newest first.
type PostQuery struct {
	Search   string
	Category string
	Tag      string
}

func (q PostQuery) Apply(posts []content.Post) []content.Post {
	out := make([]content.Post, 0, len(posts))
	for _, p := range posts {
		if !q.matches(p) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishDate().After(out[j].PublishDate())
	})
	return out
}

func (q PostQuery) matches(p content.Post) bool {
	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		if !postHasTerm(p, term) {
			return false
		}
	}
	if q.Category != "" && q.Category != All && p.Category != q.Category {
		return false
	}
	if q.Tag != "" && q.Tag != All && !hasTag(p.Tags, q.Tag) {
		return false
	}
	return true
}

func postHasTerm(p content.Post, term string) bool {
	if strings.Contains(strings.ToLower(p.Title), term) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Excerpt), term) {
		return true
	}
	if strings.Contains(strings.ToLower(p.Author), term) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}

// Categories returns the distinct categories present in a post list, in
// first-seen order, for building filter controls.
func Categories(posts []content.Post) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range posts {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out
}
