// Package mediaindex implements the media file catalog: save, duplicate
// detection, keyword search, keyword deletion, and aggregate file
// statistics, grounded on repositories/media.py's MediaRepository.
package mediaindex

import (
	"strings"
)

// normalizeQuery replaces the separator characters buildPattern treats as
// word boundaries with spaces, collapses the resulting whitespace, and
// lowercases, per core/utils/helpers.normalize_query:
//
//	query = re.sub(r"[_\-.+]", " ", query)
//	query = re.sub(r"\s+", " ", query).strip().lower()
//
// Doing the separator replacement before the space-based single/multi-token
// check in buildPattern is what makes "avatar_2009" and "avatar.2009" match
// the same way a space-separated "avatar 2009" does.
func normalizeQuery(q string) string {
	despaced := strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', '.', '+':
			return ' '
		}
		return r
	}, q)
	collapsed := strings.Join(strings.Fields(despaced), " ")
	return strings.ToLower(collapsed)
}

// buildSearchFilter constructs the MongoDB-style filter matching
// MediaRepository._build_search_filter: an empty query matches everything,
// a single token is bounded by word/separator characters, and a multi-token
// query joins each token with a separator-tolerant gap.
func buildSearchFilter(query string, fileType string, useCaption bool) map[string]any {
	pattern := buildPattern(query)
	regex := map[string]any{"$regex": pattern, "$options": "i"}

	filter := map[string]any{}
	if useCaption {
		filter["$or"] = []map[string]any{
			{"file_name": regex},
			{"caption": regex},
		}
	} else {
		filter["file_name"] = regex
	}
	if fileType != "" {
		filter["file_type"] = fileType
	}
	return filter
}

func buildPattern(query string) string {
	if query == "" {
		return "."
	}
	if !strings.Contains(query, " ") {
		return `(\b|[._+-])` + query + `(\b|[._+-])`
	}
	return strings.ReplaceAll(query, " ", `.*[\s._+-]`)
}
