package guard

import (
	"regexp"
	"strings"
)

const specialChars = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

var (
	urlPattern   = regexp.MustCompile(`(?i)(http|https|www\.)`)
	promoPattern = regexp.MustCompile(`(?i)(free|click|buy|now|limited|offer)`)
)

// DetectSpam flags degenerate or promotional text. The caller passes the
// concatenation of the free-text narrative fields; which heuristic fired is
// deliberately not reported.
func DetectSpam(text string) bool {
	words := strings.Fields(strings.ToLower(text))
	if len(words) > 0 {
		counts := make(map[string]int, len(words))
		maxCount := 0
		for _, w := range words {
			counts[w]++
			if counts[w] > maxCount {
				maxCount = counts[w]
			}
		}
		// One token dominating the text is degenerate repetition.
		if float64(maxCount) > float64(len(words))*0.3 {
			return true
		}
	}

	runes := []rune(text)
	special := 0
	for _, r := range runes {
		if strings.ContainsRune(specialChars, r) {
			special++
		}
	}
	var specialRatio float64
	if len(runes) > 0 {
		specialRatio = float64(special) / float64(len(runes))
	}
	if specialRatio > 0.3 {
		return true
	}

	if hasCharRun(runes, 11) {
		return true
	}

	// URLs are common in legitimate submissions, so a URL alone is only
	// suspicious when paired with a high special-character ratio.
	if urlPattern.MatchString(text) && specialRatio >= 0.2 {
		return true
	}

	return promoPattern.MatchString(text)
}

// hasCharRun reports whether text contains n or more identical consecutive
// characters. RE2 has no backreferences, so this is a plain scan.
func hasCharRun(runes []rune, n int) bool {
	run := 0
	var prev rune
	for i, r := range runes {
		if i > 0 && r == prev {
			run++
		} else {
			run = 1
		}
		if run >= n {
			return true
		}
		prev = r
	}
	return false
}
