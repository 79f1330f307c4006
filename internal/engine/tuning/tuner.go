package tuning

import (
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/HSCode-Intelligence/pkg/errors"
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

// Adaptive-refresh thresholds: a summary whose ratios exceed these triggers
// a parameter shift.
const (
	suspiciousRatioTrigger = 0.30
	reviewRatioTrigger     = 0.40

	weightShiftStep    = 0.05
	autoClearStep      = 0.02
	codePenaltyStep    = 0.05
	minSuspectPredicts = 3
)

// Tuner holds the active calibration snapshot and refreshes it from a
// batch-evaluation summary file. Reads are lock-free; Refresh is the single
// writer and serializes itself.
type Tuner struct {
	current atomic.Pointer[CalibrationConfig]

	mu          sync.Mutex
	summaryPath string
	lastMod     time.Time
	logger      logging.Logger
}

// NewTuner creates a Tuner seeded with the default configuration.
// summaryPath may be empty, in which case Refresh is a no-op.
func NewTuner(summaryPath string, logger logging.Logger) *Tuner {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	t := &Tuner{summaryPath: summaryPath, logger: logger}
	t.current.Store(DefaultConfig())
	return t
}

// Current returns the active snapshot. Callers must treat it as read-only.
func (t *Tuner) Current() *CalibrationConfig {
	return t.current.Load()
}

// Override validates and publishes a snapshot directly, bypassing the
// summary file. Used by tests and the CLI.
func (t *Tuner) Override(cfg *CalibrationConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	t.current.Store(cfg)
	return nil
}

// Refresh re-reads the evaluation summary and, when its mtime advanced,
// derives and publishes an adjusted snapshot. A missing or malformed summary
// leaves the active snapshot unchanged.
func (t *Tuner) Refresh() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.summaryPath == "" {
		return nil
	}

	info, err := os.Stat(t.summaryPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, errors.CodeInternal, "stat evaluation summary")
	}
	if !info.ModTime().After(t.lastMod) {
		return nil
	}

	raw, err := os.ReadFile(t.summaryPath)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "read evaluation summary")
	}
	var summary ctypes.EvaluationSummary
	if err := json.Unmarshal(raw, &summary); err != nil {
		t.logger.Warn("evaluation summary malformed, keeping active calibration",
			logging.String("path", t.summaryPath), logging.Err(err))
		return errors.Wrap(err, errors.CodeInvalidParam, "decode evaluation summary")
	}

	next := t.derive(t.current.Load(), summary)
	if err := next.Validate(); err != nil {
		t.logger.Warn("derived calibration invalid, keeping active snapshot", logging.Err(err))
		return err
	}

	t.current.Store(next)
	t.lastMod = info.ModTime()
	t.logger.Info("calibration refreshed from evaluation summary",
		logging.Float64("suspicious_ratio", summary.SuspiciousRatio),
		logging.Float64("review_ratio", summary.ReviewRatio),
		logging.Float64("semantic_weight", next.SemanticWeight),
		logging.Float64("contextual_weight", next.ContextualWeight),
		logging.Float64("auto_clear", next.AutoClearThreshold))
	return nil
}

// derive computes the next snapshot from the active one and a summary. The
// derivation is deterministic: the same (snapshot, summary) pair always
// yields the same result.
func (t *Tuner) derive(base *CalibrationConfig, s ctypes.EvaluationSummary) *CalibrationConfig {
	next := base.Clone()

	// Too many suspect predictions: trust the semantic channel less and the
	// contextual evidence more.
	if s.SuspiciousRatio > suspiciousRatioTrigger {
		shift := weightShiftStep
		if next.SemanticWeight-shift < 0.10 {
			shift = next.SemanticWeight - 0.10
		}
		if shift > 0 {
			next.SemanticWeight -= shift
			next.ContextualWeight += shift
		}
		next.normalizeWeights()
	}

	// Frequently over-predicted codes accumulate a semantic penalty.
	for _, freq := range s.PredictedSuspects {
		if freq.Count < minSuspectPredicts {
			continue
		}
		p := next.CodePenalties[freq.Code] + codePenaltyStep
		if p > maxCodePenalty {
			p = maxCodePenalty
		}
		next.CodePenalties[freq.Code] = p
	}

	// A high review ratio means the auto-clear bar is set too high; lower it
	// within bounds so well-scored results stop queueing for review.
	if s.ReviewRatio > reviewRatioTrigger {
		next.AutoClearThreshold -= autoClearStep
		if next.AutoClearThreshold < minAutoClear {
			next.AutoClearThreshold = minAutoClear
		}
	}

	return next
}

//Personal.AI order the ending
