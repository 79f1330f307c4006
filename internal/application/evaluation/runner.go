// Package evaluation runs labeled sample sets through the classification
// service and produces the aggregate summary the adaptive tuning loop
// consumes. The worker triggers a run on a schedule or on a control message;
// the CLI runs it on demand.
package evaluation

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	appcls "github.com/turtacn/HSCode-Intelligence/internal/application/classification"
	"github.com/turtacn/HSCode-Intelligence/internal/domain/catalog"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/HSCode-Intelligence/pkg/errors"
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
	"github.com/turtacn/HSCode-Intelligence/pkg/types/common"
)

// topCodeLimit caps the ranked code list carried in the summary.
const topCodeLimit = 5

// Sample is one labeled evaluation input. Expected carries the HS6 prefix
// the sample should classify to; it may be empty for unlabeled inputs.
type Sample struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Expected    string `json:"expected,omitempty"`
}

// ReportStore uploads the finished summary to object storage. A nil store
// keeps reports on the local filesystem only.
type ReportStore interface {
	Put(ctx context.Context, name string, data []byte) error
}

// Runner drives one evaluation pass: classify every sample, aggregate, write
// the summary to the tuning report path, and mirror it to object storage.
type Runner struct {
	svc        appcls.Service
	store      ReportStore
	reportPath string
	suspects   catalog.SuspectSet
	logger     logging.Logger
}

// NewRunner builds a Runner. The report path is where the tuning refresh
// reads summaries from; leaving it empty disables the local report file.
func NewRunner(svc appcls.Service, store ReportStore, reportPath string, logger logging.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Runner{
		svc:        svc,
		store:      store,
		reportPath: reportPath,
		suspects:   catalog.DefaultSuspectCodes,
		logger:     logger,
	}
}

// Run classifies every sample sequentially and returns the aggregate
// summary. A sample whose classification fails still counts toward the
// total; only the service-level contract violation (nil result) aborts.
func (r *Runner) Run(ctx context.Context, samples []Sample) (*ctypes.EvaluationSummary, error) {
	if len(samples) == 0 {
		return nil, errors.InvalidParam("evaluation requires at least one sample")
	}

	var (
		confidenceSum float64
		successCount  int
		exactMatches  int
		suspectCount  int
		reviewCount   int
		codeCounts    = map[ctypes.HSCode]int{}
	)

	for i := range samples {
		s := samples[i]
		dto, err := r.svc.Classify(ctx, &ctypes.ClassifyRequest{
			Title:       s.Title,
			Description: s.Description,
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "evaluation classify failed")
		}
		if dto.Method == ctypes.MethodError {
			r.logger.Warn("sample failed to classify",
				logging.String("title", s.Title))
			continue
		}

		successCount++
		confidenceSum += dto.Confidence
		if dto.RequiresReview {
			reviewCount++
		}
		if dto.Validation.SuspectCode {
			suspectCount++
		}
		if dto.NationalCode != "" {
			codeCounts[dto.NationalCode]++
		}
		if s.Expected != "" && matchesExpected(dto, s.Expected) {
			exactMatches++
		}
	}

	total := len(samples)
	summary := &ctypes.EvaluationSummary{
		GeneratedAt:       common.NewTimestamp(),
		Total:             total,
		ExactMatches:      exactMatches,
		SuspiciousRatio:   float64(suspectCount) / float64(total),
		ReviewRatio:       float64(reviewCount) / float64(total),
		TopCodes:          rankCodes(codeCounts, topCodeLimit),
		PredictedSuspects: r.suspectFrequencies(codeCounts),
	}
	if successCount > 0 {
		summary.AvgConfidence = confidenceSum / float64(successCount)
	}

	if err := r.writeReport(ctx, summary); err != nil {
		return nil, err
	}
	r.logger.Info("evaluation run complete",
		logging.Int("total", total),
		logging.Int("exact_matches", exactMatches),
		logging.Float64("avg_confidence", summary.AvgConfidence),
		logging.Float64("review_ratio", summary.ReviewRatio))
	return summary, nil
}

// matchesExpected accepts both HS6 and full national labels.
func matchesExpected(dto *ctypes.ClassificationResultDTO, expected string) bool {
	if len(expected) == 10 {
		return string(dto.NationalCode) == expected
	}
	return dto.HS6 == expected
}

// writeReport persists the summary to the tuning report path and mirrors it
// to object storage. The local write is load-bearing for the tuning refresh
// and fails the run; the upload is best-effort.
func (r *Runner) writeReport(ctx context.Context, summary *ctypes.EvaluationSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "marshal evaluation summary")
	}

	if r.reportPath != "" {
		if err := os.MkdirAll(filepath.Dir(r.reportPath), 0o755); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "create report directory")
		}
		if err := os.WriteFile(r.reportPath, data, 0o644); err != nil {
			return errors.Wrap(err, errors.CodeInternal, "write evaluation report")
		}
	}

	if r.store != nil {
		name := reportObjectName(time.Now().UTC())
		if err := r.store.Put(ctx, name, data); err != nil {
			r.logger.Warn("report upload failed",
				logging.String("object", name), logging.Err(err))
		}
	}
	return nil
}

// reportObjectName timestamps uploads so past runs stay retrievable.
func reportObjectName(t time.Time) string {
	return "evaluation/summary-" + t.Format("20060102T150405Z") + ".json"
}

func (r *Runner) suspectFrequencies(counts map[ctypes.HSCode]int) []ctypes.CodeFrequency {
	filtered := map[ctypes.HSCode]int{}
	for code, n := range counts {
		if r.suspects.Contains(code) {
			filtered[code] = n
		}
	}
	return rankCodes(filtered, len(filtered))
}

// rankCodes orders by count descending, code ascending on ties.
func rankCodes(counts map[ctypes.HSCode]int, limit int) []ctypes.CodeFrequency {
	out := make([]ctypes.CodeFrequency, 0, len(counts))
	for code, n := range counts {
		out = append(out, ctypes.CodeFrequency{Code: code, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Code < out[j].Code
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

//Personal.AI order the ending
