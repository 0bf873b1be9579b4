// Package models contains the data structures shared across the downloader.
package models

import "strings"

// LanguagePreference is derived once from the search query and never mutated
// afterwards. It only influences result filtering.
type LanguagePreference int

const (
	LangNone LanguagePreference = iota
	LangDub
	LangSub
)

func (p LanguagePreference) String() string {
	switch p {
	case LangDub:
		return "dub"
	case LangSub:
		return "sub"
	default:
		return "none"
	}
}

// SearchResult is a single anime entry returned by the catalog search.
type SearchResult struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Session string `json:"session"`
}

// IsDub reports whether the catalog tagged this entry as a dubbed release.
// The catalog encodes language in the title, there is no dedicated field.
func (r SearchResult) IsDub() bool {
	return strings.Contains(strings.ToLower(r.Title), "dub")
}

// Episode is one (anime, episode) pair from the paginated release listing.
// Snapshot keeps the raw API entry for anything the typed fields drop.
type Episode struct {
	Number   int
	Session  string
	Snapshot map[string]any
}
