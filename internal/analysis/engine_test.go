package analysis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"intakedesk/internal/utils"
	"intakedesk/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNeedSource struct {
	need  *types.Need
	files []types.NeedFile
}

func (s *stubNeedSource) NeedWithFiles(_ context.Context, needID string) (*types.Need, []types.NeedFile, error) {
	if s.need == nil || s.need.ID != needID {
		return nil, nil, types.ErrNeedNotFound
	}
	return s.need, s.files, nil
}

type stubAnalysisSink struct {
	mu      sync.Mutex
	created []*types.NeedAnalysis
	err     error
}

func (s *stubAnalysisSink) CreateAnalysis(_ context.Context, analysis *types.NeedAnalysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, analysis)
	return nil
}

type stubCompleter struct {
	response string
	err      error
	lastUser string
}

func (s *stubCompleter) Complete(_ context.Context, _ string, userContext string) (string, error) {
	s.lastUser = userContext
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&nullWriter{})
	return logger
}

type nullWriter struct{}

func (*nullWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestAnalyzeTrustsWellFormedModelOutput(t *testing.T) {
	source := &stubNeedSource{need: baseNeed()}
	sink := &stubAnalysisSink{}
	completer := &stubCompleter{response: `{
		"summary": "Résumé",
		"objectives": "Objectifs",
		"proposedSolution": "Solution",
		"complexityLevel": "HIGH",
		"estimatedDuration": "2 mois",
		"estimatedBudgetRange": "10000€ - 20000€",
		"risks": "Peu de risques",
		"priorityScore": 64,
		"isUrgent": false,
		"recommendations": "MVP d'abord",
		"technicalSpecs": "Go"
	}`}

	engine := NewEngine(source, sink, completer, testLogger())

	analysis, err := engine.Analyze(context.Background(), "need-1")
	require.NoError(t, err)

	assert.Equal(t, "need-1", analysis.NeedID)
	assert.Equal(t, 64, analysis.PriorityScore)
	assert.False(t, analysis.IsUrgent)
	assert.Equal(t, types.ComplexityHigh, analysis.ComplexityLevel)
	assert.Equal(t, "2 mois", utils.PtrString(analysis.EstimatedDuration))
	require.Len(t, sink.created, 1)
}

func TestAnalyzeRecomputesScoreAndUrgency(t *testing.T) {
	need := baseNeed()
	need.BudgetMin = utils.Float64Ptr(15000)
	need.BudgetMax = utils.Float64Ptr(60000)
	need.DeadlinePreference = utils.StringPtr("ASAP")
	need.Priority = types.PriorityHigh

	source := &stubNeedSource{need: need}
	sink := &stubAnalysisSink{}
	// The model returns neither priorityScore nor isUrgent.
	completer := &stubCompleter{response: `{"summary": "ok", "complexityLevel": "MEDIUM"}`}

	engine := NewEngine(source, sink, completer, testLogger())

	analysis, err := engine.Analyze(context.Background(), "need-1")
	require.NoError(t, err)

	// Urgency derives from the ASAP deadline and the HIGH declared priority;
	// 50+30+10+10+20+15 = 135, clamped to 100.
	assert.True(t, analysis.IsUrgent)
	assert.Equal(t, 100, analysis.PriorityScore)
}

func TestAnalyzeRecomputesOutOfRangeScore(t *testing.T) {
	source := &stubNeedSource{need: baseNeed()}
	sink := &stubAnalysisSink{}
	completer := &stubCompleter{response: `{"priorityScore": 250, "isUrgent": false}`}

	engine := NewEngine(source, sink, completer, testLogger())

	analysis, err := engine.Analyze(context.Background(), "need-1")
	require.NoError(t, err)
	assert.Equal(t, 50, analysis.PriorityScore)
}

func TestAnalyzeNotFound(t *testing.T) {
	engine := NewEngine(&stubNeedSource{}, &stubAnalysisSink{}, &stubCompleter{}, testLogger())

	_, err := engine.Analyze(context.Background(), "missing")
	assert.ErrorIs(t, err, types.ErrNeedNotFound)
}

func TestAnalyzeUpstreamFailure(t *testing.T) {
	source := &stubNeedSource{need: baseNeed()}
	sink := &stubAnalysisSink{}

	engine := NewEngine(source, sink, &stubCompleter{err: errors.New("service unavailable")}, testLogger())
	_, err := engine.Analyze(context.Background(), "need-1")
	assert.ErrorIs(t, err, types.ErrUpstream)
	assert.Empty(t, sink.created, "no partial analysis on completion failure")

	engine = NewEngine(source, sink, &stubCompleter{response: "not json"}, testLogger())
	_, err = engine.Analyze(context.Background(), "need-1")
	assert.ErrorIs(t, err, types.ErrUpstream)
	assert.Empty(t, sink.created, "no partial analysis on unparseable payload")
}

func TestAnalyzeContextBlockPlaceholders(t *testing.T) {
	need := baseNeed()
	need.CompanyName = utils.StringPtr("ACME SARL")

	source := &stubNeedSource{
		need: need,
		files: []types.NeedFile{
			{OriginalName: "maquette.png", Type: types.FileTypeImage},
		},
	}
	completer := &stubCompleter{response: `{"isUrgent": false, "priorityScore": 50}`}
	engine := NewEngine(source, &stubAnalysisSink{}, completer, testLogger())

	_, err := engine.Analyze(context.Background(), "need-1")
	require.NoError(t, err)

	assert.Contains(t, completer.lastUser, "- Entreprise: ACME SARL")
	assert.Contains(t, completer.lastUser, "- Email: Non fourni")
	assert.Contains(t, completer.lastUser, "DÉLAI:\nNon spécifié\n")
	assert.Contains(t, completer.lastUser, "LANGUE:\nNon spécifiée\n")
	assert.Contains(t, completer.lastUser, "RÉFÉRENCES D'APPLICATIONS:\nAucune référence fournie\n")
	assert.Contains(t, completer.lastUser, "- maquette.png (IMAGE)")
	assert.Contains(t, completer.lastUser, "PROBLÈME DÉCRIT:")
}

func TestAnalyzeAsyncFailureIsContained(t *testing.T) {
	sink := &stubAnalysisSink{}
	engine := NewEngine(&stubNeedSource{}, sink, &stubCompleter{}, testLogger())

	// Need does not exist; the goroutine must swallow the error.
	engine.AnalyzeAsync("missing", time.Second)

	assert.Eventually(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.created) == 0
	}, time.Second, 10*time.Millisecond)
}
