// Package query parses the raw search input into a title and an optional
// language preference.
package query

import (
	"regexp"
	"strings"

	"github.com/gopahe/pahedl/internal/models"
)

var (
	dubMarker = regexp.MustCompile(`(?i)\s*\(dub\)\s*$`)
	subMarker = regexp.MustCompile(`(?i)\s*\(sub\)\s*$`)
)

// Parse strips a trailing case-insensitive "(dub)" or "(sub)" marker from the
// query and returns the cleaned title with the derived preference.
//
// The markers are checked in order, dub then sub, so a query ending in both
// (e.g. "Title (Dub) (Sub)") resolves to sub. Known ambiguity, kept as-is.
func Parse(raw string) (string, models.LanguagePreference) {
	q := strings.TrimSpace(raw)
	pref := models.LangNone

	if loc := dubMarker.FindStringIndex(q); loc != nil {
		q = strings.TrimSpace(q[:loc[0]])
		pref = models.LangDub
	}

	if loc := subMarker.FindStringIndex(q); loc != nil {
		q = strings.TrimSpace(q[:loc[0]])
		pref = models.LangSub
	}

	return q, pref
}
