package handler

import (
	"strconv"
	"strings"
)

// parseID parses a numeric path segment into an id.
func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// shiftPath splits "123/rest/of/path" into its first segment and the rest.
func shiftPath(p string) (string, string) {
	p = strings.Trim(p, "/")
	if i := strings.Index(p, "/"); i >= 0 {
		return p[:i], p[i+1:]
	}
	return p, ""
}
