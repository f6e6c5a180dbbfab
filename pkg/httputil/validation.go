package httputil

import (
	"strconv"
	"strings"
)

// ParseTokenID parses a path segment as a non-negative token id.
func ParseTokenID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}
