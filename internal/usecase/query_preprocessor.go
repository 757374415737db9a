package usecase

import (
	"regexp"
	"strings"
)

const (
	// maxQueryRunes caps the query sent to the search API
	maxQueryRunes = 100
	// minCutRunes is the shortest prefix we'll keep when cutting at a word boundary
	minCutRunes = 50
)

var multiSpacePattern = regexp.MustCompile(`\s+`)

// NormalizeQuery trims the query, collapses internal whitespace and limits its length.
// Long queries are cut at a word boundary when one exists past minCutRunes.
func NormalizeQuery(query string) string {
	cleaned := multiSpacePattern.ReplaceAllString(query, " ")
	cleaned = strings.TrimSpace(cleaned)

	runes := []rune(cleaned)
	if len(runes) <= maxQueryRunes {
		return cleaned
	}

	cut := string(runes[:maxQueryRunes])
	if lastSpace := strings.LastIndex(cut, " "); lastSpace > 0 && len([]rune(cut[:lastSpace])) > minCutRunes {
		cut = cut[:lastSpace]
	}
	return strings.TrimSpace(cut)
}
