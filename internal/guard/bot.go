package guard

import "strings"

// Substrings that show up in the user agents of crawlers, generic HTTP
// libraries and scripting-language defaults.
var botAgentMarkers = []string{
	"bot",
	"crawler",
	"spider",
	"scraper",
	"curl",
	"wget",
	"python",
	"java",
	"go-http",
}

func IsBot(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	for _, marker := range botAgentMarkers {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}
