// Package engine wires the classification stages into the end-to-end
// decision procedure: feature extraction, candidate assembly, the rule
// filter pipeline, hybrid scoring and confidence calibration. The engine is
// stateless between calls; everything tunable lives in the calibration
// snapshot it reads per classification.
package engine

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/turtacn/HSCode-Intelligence/internal/domain/classification"
	"github.com/turtacn/HSCode-Intelligence/internal/engine/assemble"
	"github.com/turtacn/HSCode-Intelligence/internal/engine/calibrate"
	"github.com/turtacn/HSCode-Intelligence/internal/engine/features"
	"github.com/turtacn/HSCode-Intelligence/internal/engine/rgi"
	"github.com/turtacn/HSCode-Intelligence/internal/engine/scoring"
	"github.com/turtacn/HSCode-Intelligence/internal/engine/tuning"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

// Classifier runs the full decision procedure for one case at a time. It is
// safe for concurrent use; all per-case state lives on the stack.
type Classifier struct {
	assembler *assemble.Assembler
	pipeline  *rgi.Pipeline
	scorer    *scoring.HybridScorer
	tuner     *tuning.Tuner
	logger    logging.Logger
}

// NewClassifier assembles the engine from its stages.
func NewClassifier(assembler *assemble.Assembler, pipeline *rgi.Pipeline,
	scorer *scoring.HybridScorer, tuner *tuning.Tuner, logger logging.Logger) *Classifier {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Classifier{
		assembler: assembler,
		pipeline:  pipeline,
		scorer:    scorer,
		tuner:     tuner,
		logger:    logger,
	}
}

// Classify produces the classification result for an open case. It never
// returns an error: every failure mode is encoded as a result with
// MethodError so the attempt is persisted and auditable like any other.
func (e *Classifier) Classify(ctx context.Context, c *classification.Case) *classification.Result {
	start := time.Now()
	text := c.Text()

	if utf8.RuneCountInString(text) < classification.MinTextRunes {
		return e.errorResult(c, start, ctypes.ReasonTextTooShort,
			"texto insuficiente para clasificar")
	}

	cfg := e.tuner.Current()
	fs := features.Extract(text)

	cands := e.assembler.Assemble(ctx, text, fs)
	if len(cands) == 0 {
		cands = e.assembler.Fallback(text)
	}
	if len(cands) == 0 {
		return e.errorResult(c, start, ctypes.ReasonNoCandidates,
			"sin candidatos para el texto")
	}

	tr := &classification.Trace{}
	survivors := e.pipeline.Run(ctx, text, fs, cands, tr)
	if len(survivors) == 0 {
		// The filters can empty a thin candidate list; the fallback table is
		// the last resort before giving up.
		survivors = e.assembler.Fallback(text)
		if len(survivors) == 0 {
			return e.errorResult(c, start, ctypes.ReasonNoCandidates,
				"los filtros descartaron todos los candidatos")
		}
	}

	e.scorer.Score(ctx, text, fs, survivors, cfg)

	winner := pickWinner(survivors)
	flags := calibrate.BuildFlags(winner, fs, cfg)
	confidence, review := calibrate.Calibrate(winner, flags, cfg)

	method := ctypes.MethodRulePipeline
	if winner.PriorityRule {
		method = ctypes.MethodPriorityRule
	}

	var national ctypes.HSCode
	if winner.Code.IsNational() {
		national = winner.Code
	}

	e.logger.Info("case classified",
		logging.String("case_id", string(c.ID)),
		logging.String("code", string(winner.Code)),
		logging.Float64("confidence", confidence),
		logging.String("method", string(method)),
		logging.Bool("requires_review", review))

	return &classification.Result{
		CaseID:         c.ID,
		HS6:            winner.Code.HS6(),
		NationalCode:   national,
		Title:          winner.Title,
		Confidence:     confidence,
		Method:         method,
		RequiresReview: review,
		Rationale:      tr.Rationale(),
		Features:       fs,
		Validation:     *flags,
		Trace:          tr.Steps(),
		TopCandidates:  survivors,
		Duration:       time.Since(start),
		ClassifiedAt:   time.Now().UTC(),
	}
}

// pickWinner returns the highest-scoring survivor without reordering the
// list. Penalties applied during scoring can demote the pipeline's first
// pick below a cleaner runner-up.
func pickWinner(cands []*classification.Candidate) *classification.Candidate {
	winner := cands[0]
	for _, c := range cands[1:] {
		if c.TotalScore > winner.TotalScore {
			winner = c
		}
	}
	return winner
}

func (e *Classifier) errorResult(c *classification.Case, start time.Time,
	reason ctypes.ReviewReason, rationale string) *classification.Result {

	flags := classification.ValidationFlags{}
	flags.AddReason(reason)

	e.logger.Warn("classification failed",
		logging.String("case_id", string(c.ID)),
		logging.String("reason", string(reason)))

	return &classification.Result{
		CaseID:         c.ID,
		Confidence:     0,
		Method:         ctypes.MethodError,
		RequiresReview: true,
		Rationale:      rationale,
		Features:       classification.DefaultFeatureSet(),
		Validation:     flags,
		Duration:       time.Since(start),
		ClassifiedAt:   time.Now().UTC(),
	}
}

//Personal.AI order the ending
