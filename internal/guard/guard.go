// Package guard is the gatekeeper every public submission passes through
// before anything is persisted: throttling, bot and honeypot detection,
// field validation and the content spam heuristic. It is deterministic given
// the same inputs and counter state and performs no I/O.
package guard

import (
	"net/http"
	"strings"

	"intakedesk/pkg/types"
)

type Verdict int

const (
	VerdictAccept Verdict = iota
	// VerdictRejectSilently is reserved for honeypot trips: the caller must
	// answer with the same success shape so the sender gets no signal.
	VerdictRejectSilently
	VerdictReject
)

type Decision struct {
	Verdict Verdict
	Status  int
	Reason  string

	// RateLimit is always set so the caller can emit X-RateLimit headers.
	RateLimit RateLimitResult
}

// Request is everything the guard judges about one submission attempt.
type Request struct {
	SourceKey string // stable per-caller key, usually the client IP
	UserAgent string
	Form      types.IntakeForm
	Files     []FileMeta
}

type Guard struct {
	limiter *RateLimiter
}

func New(limiter *RateLimiter) *Guard {
	return &Guard{limiter: limiter}
}

// Evaluate applies the checks in order, short-circuiting on the first
// rejection. Only the rate-limit counters are mutated.
func (g *Guard) Evaluate(req Request) Decision {
	rl := g.limiter.Allow(req.SourceKey)
	if !rl.Allowed {
		return Decision{
			Verdict:   VerdictReject,
			Status:    http.StatusTooManyRequests,
			Reason:    "Trop de requêtes, réessayez plus tard",
			RateLimit: rl,
		}
	}

	if IsBot(req.UserAgent) {
		return Decision{
			Verdict:   VerdictReject,
			Status:    http.StatusForbidden,
			Reason:    "Accès refusé",
			RateLimit: rl,
		}
	}

	if req.Form.HoneypotTripped() {
		return Decision{Verdict: VerdictRejectSilently, RateLimit: rl}
	}

	if verr := g.validateFields(req); verr != nil {
		return Decision{
			Verdict:   VerdictReject,
			Status:    http.StatusBadRequest,
			Reason:    verr.Reason,
			RateLimit: rl,
		}
	}

	narrative := strings.Join([]string{
		req.Form.ProblemDescription,
		req.Form.CurrentSituation,
		req.Form.DesiredSolution,
	}, " ")
	if DetectSpam(narrative) {
		return Decision{
			Verdict:   VerdictReject,
			Status:    http.StatusBadRequest,
			Reason:    "Le contenu semble suspect",
			RateLimit: rl,
		}
	}

	return Decision{Verdict: VerdictAccept, RateLimit: rl}
}

func (g *Guard) validateFields(req Request) *ValidationError {
	if verr := ValidateClientName(req.Form.ClientName); verr != nil {
		return verr
	}
	if verr := ValidateEmail(req.Form.ClientEmail); verr != nil {
		return verr
	}
	if verr := ValidatePhone(req.Form.ClientPhone); verr != nil {
		return verr
	}
	for _, f := range req.Files {
		if verr := ValidateFile(f); verr != nil {
			return verr
		}
	}
	return nil
}
