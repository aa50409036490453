// Package analysis turns a stored need into a structured assessment: it
// renders a context block, delegates to the completion service and backfills
// the deterministic priority score and urgency flag whenever the model output
// is missing or out of range.
package analysis

import (
	"context"
	"fmt"
	"time"

	"intakedesk/pkg/types"

	"github.com/sirupsen/logrus"
)

// Completer is the external model call. It may fail; a failure aborts the
// whole analysis and no partial assessment is persisted.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userContext string) (string, error)
}

type NeedSource interface {
	NeedWithFiles(ctx context.Context, needID string) (*types.Need, []types.NeedFile, error)
}

type AnalysisSink interface {
	CreateAnalysis(ctx context.Context, analysis *types.NeedAnalysis) error
}

type Engine struct {
	needs     NeedSource
	analyses  AnalysisSink
	completer Completer
	logger    *logrus.Logger
}

func NewEngine(needs NeedSource, analyses AnalysisSink, completer Completer, logger *logrus.Logger) *Engine {
	return &Engine{
		needs:     needs,
		analyses:  analyses,
		completer: completer,
		logger:    logger,
	}
}

// Analyze runs one analysis pass for the need and appends the result. Returns
// types.ErrNeedNotFound if the need does not exist and wraps
// types.ErrUpstream when the completion call or its payload is unusable.
func (e *Engine) Analyze(ctx context.Context, needID string) (*types.NeedAnalysis, error) {
	need, files, err := e.needs.NeedWithFiles(ctx, needID)
	if err != nil {
		return nil, err
	}

	raw, err := e.completer.Complete(ctx, systemPrompt, buildContext(need, files))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrUpstream, err)
	}

	result, err := parseCompletion(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrUpstream, err)
	}

	urgent, ok := result.isUrgentFlag()
	if !ok {
		urgent = DeriveUrgency(need)
	}

	complexity := result.complexity()

	score, ok := result.priorityScore()
	if !ok {
		score = PriorityScore(need, complexity, urgent)
	}

	analysis := &types.NeedAnalysis{
		NeedID:               need.ID,
		Summary:              result.Summary,
		Objectives:           result.Objectives,
		ProposedSolution:     result.ProposedSolution,
		ComplexityLevel:      complexity,
		EstimatedDuration:    result.EstimatedDuration,
		EstimatedBudgetRange: result.EstimatedBudgetRange,
		Risks:                result.Risks,
		PriorityScore:        score,
		IsUrgent:             urgent,
		Recommendations:      result.Recommendations,
		TechnicalSpecs:       result.TechnicalSpecs,
	}

	if err := e.analyses.CreateAnalysis(ctx, analysis); err != nil {
		return nil, fmt.Errorf("persist analysis for need %s: %w", needID, err)
	}

	return analysis, nil
}

// AnalyzeAsync runs Analyze on its own goroutine with a bounded timeout. The
// intake path must never block on analysis and a failure there must never
// reach the submitter, so errors stop here with a log line.
func (e *Engine) AnalyzeAsync(needID string, timeout time.Duration) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if _, err := e.Analyze(ctx, needID); err != nil {
			e.logger.WithError(err).WithField("need_id", needID).Error("background analysis failed")
		}
	}()
}
