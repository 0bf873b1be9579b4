package api

import (
	"github.com/gopahe/pahedl/internal/models"
)

// FilterByLanguage narrows search results to the preferred language.
// Dub keeps titles containing "dub"; sub excludes them; no preference is the
// identity. When filtering would hide everything the unfiltered input is
// returned instead, because the catalog's title tagging is not consistent
// enough to trust an empty result.
func FilterByLanguage(results []models.SearchResult, pref models.LanguagePreference) []models.SearchResult {
	if pref == models.LangNone {
		return results
	}

	var filtered []models.SearchResult
	for _, r := range results {
		switch pref {
		case models.LangDub:
			if r.IsDub() {
				filtered = append(filtered, r)
			}
		case models.LangSub:
			if !r.IsDub() {
				filtered = append(filtered, r)
			}
		}
	}

	if len(filtered) == 0 {
		return results
	}
	return filtered
}
