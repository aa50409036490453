package guard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectSpamTokenRepetition(t *testing.T) {
	// 5 of 6 tokens identical, far above the 30% threshold.
	assert.True(t, DetectSpam("buy buy buy buy buy now"))
}

func TestDetectSpamCleanText(t *testing.T) {
	text := "Nous cherchons une application de gestion de stock pour notre entrepôt. " +
		"La solution actuelle repose sur des tableurs partagés et devient ingérable."
	assert.False(t, DetectSpam(text))
}

func TestDetectSpamSpecialCharRatio(t *testing.T) {
	assert.True(t, DetectSpam("a!!! b@@@ c### d$$$ e%%% f^^^ g&&& h***"))
}

func TestDetectSpamCharacterRun(t *testing.T) {
	assert.True(t, DetectSpam("please help meeeeeeeeeee with my project"))
	// Ten identical characters is below the 11+ threshold.
	assert.False(t, DetectSpam("heyyyyyyyyyy this is a real project description about logistics"))
}

func TestDetectSpamPromotionalKeywords(t *testing.T) {
	assert.True(t, DetectSpam("amazing limited time deal for your business"))
	assert.True(t, DetectSpam("CLICK here to learn more about our services"))
}

func TestDetectSpamBareURLIsExempt(t *testing.T) {
	// A URL with a low special-character ratio is not by itself spam.
	text := "Notre site actuel est disponible sur www.exemple.fr et nous voulons le moderniser " +
		"avec une interface adaptée aux mobiles pour nos clients en région parisienne"
	assert.False(t, DetectSpam(text))
}

func TestDetectSpamURLWithHighSpecialRatio(t *testing.T) {
	assert.True(t, DetectSpam("https://x.io/?a=1&b=2&c={3}&d=[4]&e=(5)!!!"))
}

func TestDetectSpamEmptyText(t *testing.T) {
	assert.False(t, DetectSpam(""))
}

func TestHasCharRun(t *testing.T) {
	assert.True(t, hasCharRun([]rune(strings.Repeat("a", 11)), 11))
	assert.False(t, hasCharRun([]rune(strings.Repeat("a", 10)), 11))
	assert.True(t, hasCharRun([]rune("xx"+strings.Repeat("é", 12)+"yy"), 11))
	assert.False(t, hasCharRun([]rune("abababababababab"), 3))
}
