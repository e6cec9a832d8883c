package app

import (
	"regexp"
	"strings"
)

// Query text recorded on db spans is collapsed to one line and capped so a
// large IN list or upsert batch cannot blow up span size.
const maxTracedQueryLength = 512

var queryWhitespaceRegex = regexp.MustCompile(`\s+`)

func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	flattened := queryWhitespaceRegex.ReplaceAllString(query, " ")
	if len(flattened) > maxTracedQueryLength {
		return flattened[:maxTracedQueryLength] + "..."
	}
	return flattened
}
