package export

import (
	"encoding/xml"

	"forge/internal/content"
)

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	XMLNS   string     `xml:"xmlns,attr"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

var staticPages = []Entry{
	{Loc: BaseURL + "/", ChangeFreq: "weekly", Priority: "1.0"},
	{Loc: BaseURL + "/strategies", ChangeFreq: "daily", Priority: "0.9"},
	{Loc: BaseURL + "/blog", ChangeFreq: "weekly", Priority: "0.8"},
	{Loc: BaseURL + "/about", ChangeFreq: "monthly", Priority: "0.7"},
	{Loc: BaseURL + "/contact", ChangeFreq: "monthly", Priority: "0.6"},
}

// SitemapEntries unions the static pages with every strategy and blog
// post. A record missing all of its date fields gets today's date.
func SitemapEntries(strategies []content.Strategy, posts []content.Post) []Entry {
	today := SafeDate()
	entries := make([]Entry, 0, len(staticPages)+len(strategies)+len(posts))
	for _, page := range staticPages {
		page.Updated = today
		entries = append(entries, page)
	}
	for _, s := range strategies {
		entries = append(entries, Entry{
			Loc:        BaseURL + "/strategies/" + s.ID,
			Title:      s.Name,
			Summary:    s.Description,
			Updated:    SafeDate(s.UpdatedAt, s.CreatedAt),
			ChangeFreq: "weekly",
			Priority:   "0.8",
		})
	}
	for _, p := range posts {
		entries = append(entries, Entry{
			Loc:        BaseURL + "/blog/" + p.Slug,
			Title:      p.Title,
			Summary:    p.Excerpt,
			Updated:    SafeDate(p.UpdatedAt, p.PublishedAt, p.CreatedAt),
			ChangeFreq: "monthly",
			Priority:   "0.7",
		})
	}
	return entries
}

// SitemapXML renders the entries as a sitemaps.org urlset document.
func SitemapXML(entries []Entry) ([]byte, error) {
	set := urlSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]urlEntry, 0, len(entries)),
	}
	for _, entry := range entries {
		set.URLs = append(set.URLs, urlEntry{
			Loc:        entry.Loc,
			LastMod:    entry.Updated,
			ChangeFreq: entry.ChangeFreq,
			Priority:   entry.Priority,
		})
	}
	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}
