// Package pagination builds and parses the bot's inline pagination
// callback data, grounded on core/utils/pagination.py.
package pagination

import (
	"fmt"
	"strconv"
	"strings"
)

// Callback is a parsed pagination callback payload.
type Callback struct {
	Prefix string
	Action string
	Query  string
	Offset int
	Total  int
	UserID int64
	HasUserID bool
}

// BuildCallback renders the six-field callback format
// "prefix#action#query#offset#total#userID".
func BuildCallback(prefix, action, query string, offset, total int, userID int64) string {
	return fmt.Sprintf("%s#%s#%s#%d#%d#%d", prefix, action, query, offset, total, userID)
}

// ParseCallback parses a callback payload, accepting both the current
// six-field format and the legacy five-field format that predates the
// user-id field.
func ParseCallback(data string) (Callback, bool) {
	parts := strings.Split(data, "#")
	if len(parts) >= 6 {
		offset, err1 := strconv.Atoi(parts[3])
		total, err2 := strconv.Atoi(parts[4])
		userID, err3 := strconv.ParseInt(parts[5], 10, 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return Callback{}, false
		}
		return Callback{
			Prefix: parts[0], Action: parts[1], Query: parts[2],
			Offset: offset, Total: total, UserID: userID, HasUserID: true,
		}, true
	}
	if len(parts) >= 5 {
		offset, err1 := strconv.Atoi(parts[3])
		total, err2 := strconv.Atoi(parts[4])
		if err1 != nil || err2 != nil {
			return Callback{}, false
		}
		return Callback{
			Prefix: parts[0], Action: parts[1], Query: parts[2],
			Offset: offset, Total: total,
		}, true
	}
	return Callback{}, false
}

// NextOffset computes the offset to navigate to for action, given the
// current offset/pageSize/total, per calculate_new_offset.
func NextOffset(action string, currentOffset, pageSize, total int) int {
	lastOffset := 0
	if total > 0 {
		lastOffset = ((total - 1) / pageSize) * pageSize
	}
	switch action {
	case "first":
		return 0
	case "prev":
		return max(0, currentOffset-pageSize)
	case "next":
		return min(currentOffset+pageSize, lastOffset)
	case "last":
		return lastOffset
	default:
		return currentOffset
	}
}
