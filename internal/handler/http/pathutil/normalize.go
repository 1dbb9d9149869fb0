package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern pairs a route regex with its normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns lists the dynamic routes served by the API, ordered from
// most specific to least specific. Pre-compiled at initialization.
var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/articles/\d+$`), Template: "/articles/:id"},
	{Pattern: regexp.MustCompile(`^/runs/\d+$`), Template: "/runs/:id"},
}

// NormalizePath normalizes dynamic URL paths so per-path metric labels
// stay bounded. Paths containing numeric IDs (e.g. /articles/123) are
// rewritten to their template form (/articles/:id); static paths such as
// /health and /metrics pass through unchanged, as does anything that
// matches no known pattern.
//
// Query parameters and trailing slashes are stripped before matching.
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}
	return path
}
