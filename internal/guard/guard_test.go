package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"intakedesk/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() types.IntakeForm {
	return types.IntakeForm{
		ClientName:         "Marie Lefevre",
		ClientEmail:        "marie@societe.fr",
		ClientPhone:        "+33 6 12 34 56 78",
		ProblemDescription: "Notre gestion des commandes repose sur des échanges de mails et devient source d'erreurs.",
		CurrentSituation:   "Trois personnes saisissent les commandes dans un tableur partagé chaque matin.",
		DesiredSolution:    "Un portail interne où les commerciaux saisissent directement les commandes clients.",
	}
}

func newTestGuard(max int) *Guard {
	l := NewRateLimiter(15*time.Minute, max)
	l.SetClock(func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) })
	return New(l)
}

func TestEvaluateAcceptsValidSubmission(t *testing.T) {
	g := newTestGuard(10)

	d := g.Evaluate(Request{
		SourceKey: "1.2.3.4",
		UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)",
		Form:      validForm(),
	})

	assert.Equal(t, VerdictAccept, d.Verdict)
	assert.Equal(t, 9, d.RateLimit.Remaining)
}

func TestEvaluateRateLimitRejection(t *testing.T) {
	g := newTestGuard(10)

	for i := 0; i < 10; i++ {
		d := g.Evaluate(Request{SourceKey: "1.2.3.4", UserAgent: "Mozilla/5.0", Form: validForm()})
		require.Equal(t, VerdictAccept, d.Verdict)
	}

	d := g.Evaluate(Request{SourceKey: "1.2.3.4", UserAgent: "Mozilla/5.0", Form: validForm()})
	assert.Equal(t, VerdictReject, d.Verdict)
	assert.Equal(t, http.StatusTooManyRequests, d.Status)
	assert.Equal(t, 0, d.RateLimit.Remaining)
	assert.Greater(t, d.RateLimit.ResetAt, int64(0))
}

func TestEvaluateBotUserAgent(t *testing.T) {
	g := newTestGuard(10)

	for _, ua := range []string{
		"curl/8.4.0",
		"python-requests/2.31",
		"Go-http-client/1.1",
		"Googlebot/2.1 (+http://www.google.com/bot.html)",
	} {
		d := g.Evaluate(Request{SourceKey: "1.2.3.4", UserAgent: ua, Form: validForm()})
		assert.Equal(t, VerdictReject, d.Verdict, ua)
		assert.Equal(t, http.StatusForbidden, d.Status, ua)
	}
}

func TestEvaluateHoneypotAlwaysSilent(t *testing.T) {
	g := newTestGuard(10)

	// The rest of the submission is perfectly well-formed; the honeypot
	// still wins and the rejection is silent.
	form := validForm()
	form.Website = "https://spam.example"

	d := g.Evaluate(Request{SourceKey: "1.2.3.4", UserAgent: "Mozilla/5.0", Form: form})
	assert.Equal(t, VerdictRejectSilently, d.Verdict)
	assert.Empty(t, d.Reason)
}

func TestEvaluateHoneypotBeforeValidation(t *testing.T) {
	g := newTestGuard(10)

	// Broken fields plus a tripped honeypot: the sender must not learn
	// about the validation failure.
	form := types.IntakeForm{ClientName: "x", Homepage: "gotcha"}

	d := g.Evaluate(Request{SourceKey: "1.2.3.4", UserAgent: "Mozilla/5.0", Form: form})
	assert.Equal(t, VerdictRejectSilently, d.Verdict)
}

func TestEvaluateFieldValidation(t *testing.T) {
	g := newTestGuard(100)

	form := validForm()
	form.ClientEmail = "test@mailinator.com"
	d := g.Evaluate(Request{SourceKey: "1.2.3.4", UserAgent: "Mozilla/5.0", Form: form})
	assert.Equal(t, VerdictReject, d.Verdict)
	assert.Equal(t, http.StatusBadRequest, d.Status)
	assert.Equal(t, "Domaines email jetables non autorisés", d.Reason)

	d = g.Evaluate(Request{
		SourceKey: "1.2.3.4",
		UserAgent: "Mozilla/5.0",
		Form:      validForm(),
		Files:     []FileMeta{{Name: "setup.exe", Size: 100, MimeType: "application/pdf"}},
	})
	assert.Equal(t, VerdictReject, d.Verdict)
	assert.Equal(t, "Extension de fichier non autorisée", d.Reason)
}

func TestEvaluateSpamNarrative(t *testing.T) {
	g := newTestGuard(100)

	form := validForm()
	form.ProblemDescription = "buy buy buy buy buy now"
	form.CurrentSituation = ""
	form.DesiredSolution = ""

	d := g.Evaluate(Request{SourceKey: "1.2.3.4", UserAgent: "Mozilla/5.0", Form: form})
	assert.Equal(t, VerdictReject, d.Verdict)
	assert.Equal(t, "Le contenu semble suspect", d.Reason)
}

func TestSourceKey(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/needs", nil)
	r.RemoteAddr = "10.0.0.9:52100"
	assert.Equal(t, "10.0.0.9", SourceKey(r))

	r.Header.Set("X-Real-Ip", "203.0.113.7")
	assert.Equal(t, "203.0.113.7", SourceKey(r))

	r.Header.Set("X-Forwarded-For", "198.51.100.23, 10.0.0.1")
	assert.Equal(t, "198.51.100.23", SourceKey(r))
}
