// Package classification provides the application-level service for tariff
// classification operations. This package serves as the interface between
// HTTP/CLI handlers and the decision engine: it owns case persistence, the
// national-code refinement step, the audit trail, and the feedback stream.
package classification

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/turtacn/HSCode-Intelligence/internal/domain/catalog"
	domaincls "github.com/turtacn/HSCode-Intelligence/internal/domain/classification"
	enginecommon "github.com/turtacn/HSCode-Intelligence/internal/engine/common"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/HSCode-Intelligence/pkg/errors"
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
	"github.com/turtacn/HSCode-Intelligence/pkg/types/common"
)

// attrHitThreshold is the minimum number of attribute keyword matches a
// national extension needs before it wins without a semantic tiebreak.
const attrHitThreshold = 2

// Engine runs the full decision pipeline for one open case. It reports
// business failures inside the result, never as a Go error.
type Engine interface {
	Classify(ctx context.Context, c *domaincls.Case) *domaincls.Result
}

// MetricsRecorder mirrors classification outcomes to the operational metrics
// registry. A nil recorder disables metrics.
type MetricsRecorder interface {
	ObserveClassification(method ctypes.Method, confidence float64, d time.Duration)
	ObserveReview(reason ctypes.ReviewReason)
}

// Service defines the interface for classification application operations.
type Service interface {
	Classify(ctx context.Context, req *ctypes.ClassifyRequest) (*ctypes.ClassificationResultDTO, error)
	ClassifyBatch(ctx context.Context, reqs []ctypes.ClassifyRequest) ([]*ctypes.ClassificationResultDTO, error)
	GetCase(ctx context.Context, id string) (*CaseDetail, error)
	ListCases(ctx context.Context, input *ListInput) (*ListResult, error)
}

// ListInput contains input for listing classification cases.
type ListInput struct {
	Page     int
	PageSize int
	Status   string
}

// CaseSummary is the list-view projection of a case.
type CaseSummary struct {
	ID           common.ID     `json:"id"`
	Title        string        `json:"title"`
	Status       string        `json:"status"`
	NationalCode ctypes.HSCode `json:"national_code,omitempty"`
	Confidence   float64       `json:"confidence,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// ListResult represents a paginated list of cases.
type ListResult struct {
	Cases      []*CaseSummary `json:"cases"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// AuditRecord is one audit-trail entry in the detail view.
type AuditRecord struct {
	Event      string          `json:"event"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// CaseDetail is the full case projection served by the lookup endpoint:
// the case, its attached result, and the audit trail.
type CaseDetail struct {
	ID          common.ID                        `json:"id"`
	Title       string                           `json:"title"`
	Description string                           `json:"description"`
	Status      string                           `json:"status"`
	Result      *ctypes.ClassificationResultDTO  `json:"result,omitempty"`
	Audit       []AuditRecord                    `json:"audit,omitempty"`
	CreatedAt   time.Time                        `json:"created_at"`
	UpdatedAt   time.Time                        `json:"updated_at"`
}

// serviceImpl implements the Service interface.
type serviceImpl struct {
	engine    Engine
	cases     domaincls.CaseRepository
	audit     domaincls.AuditRepository
	nationals catalog.NationalCodeRepository
	embedder  enginecommon.EmbeddingProvider
	feedback  enginecommon.FeedbackSink
	metrics   MetricsRecorder
	logger    logging.Logger
}

// NewService creates a new classification application service. The metrics
// recorder and feedback sink may be nil; persistence repositories and the
// engine must not be.
func NewService(
	engine Engine,
	cases domaincls.CaseRepository,
	audit domaincls.AuditRepository,
	nationals catalog.NationalCodeRepository,
	embedder enginecommon.EmbeddingProvider,
	feedback enginecommon.FeedbackSink,
	metrics MetricsRecorder,
	logger logging.Logger,
) Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &serviceImpl{
		engine:    engine,
		cases:     cases,
		audit:     audit,
		nationals: nationals,
		embedder:  embedder,
		feedback:  feedback,
		metrics:   metrics,
		logger:    logger,
	}
}

// Classify runs the full pipeline for one request. Business failures (text
// too short, no candidates) come back as method=error results with a nil Go
// error; persistence and metrics failures are logged and swallowed so that a
// computed classification is never lost to a collaborator outage.
func (s *serviceImpl) Classify(ctx context.Context, req *ctypes.ClassifyRequest) (*ctypes.ClassificationResultDTO, error) {
	if req == nil {
		return nil, errors.InvalidParam("classify request must not be nil")
	}

	c, err := domaincls.NewCase(req.Title, req.Description, req.Attributes)
	if err != nil {
		dto := s.rejectedResult(req)
		s.record(dto.Method, dto.Confidence, 0, dto.Validation.ReviewReasons)
		return dto, nil
	}

	if err := s.cases.Create(ctx, c); err != nil {
		s.logger.Warn("case create failed, continuing without persistence",
			logging.String("case_id", string(c.ID)), logging.Err(err))
	}

	r := s.engine.Classify(ctx, c)
	if r.Method != ctypes.MethodError {
		s.refineNational(ctx, c, r)
	}

	if err := c.AttachResult(r); err != nil {
		s.logger.Error("attach result failed",
			logging.String("case_id", string(c.ID)), logging.Err(err))
	}
	if err := s.cases.SaveResult(ctx, c); err != nil {
		s.logger.Warn("result persistence failed",
			logging.String("case_id", string(c.ID)), logging.Err(err))
	}

	s.appendAudit(ctx, c)
	s.publish(ctx, r)
	s.record(r.Method, r.Confidence, r.Duration, r.Validation.ReviewReasons)

	dto := r.ToDTO()
	return &dto, nil
}

// ClassifyBatch classifies each request in order. One failing item never
// aborts the batch: its slot carries a method=error result like any other
// terminal condition.
func (s *serviceImpl) ClassifyBatch(ctx context.Context, reqs []ctypes.ClassifyRequest) ([]*ctypes.ClassificationResultDTO, error) {
	out := make([]*ctypes.ClassificationResultDTO, 0, len(reqs))
	for i := range reqs {
		dto, err := s.Classify(ctx, &reqs[i])
		if err != nil {
			dto = s.rejectedResult(&reqs[i])
		}
		out = append(out, dto)
	}
	return out, nil
}

func (s *serviceImpl) GetCase(ctx context.Context, id string) (*CaseDetail, error) {
	caseID := common.ID(strings.TrimSpace(id))
	if caseID == "" {
		return nil, errors.InvalidParam("case id is required")
	}

	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	detail := &CaseDetail{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Status:      string(c.Status),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if c.Result != nil {
		dto := c.Result.ToDTO()
		detail.Result = &dto
	}

	entries, err := s.audit.ListByCase(ctx, caseID)
	if err != nil {
		s.logger.Warn("audit lookup failed",
			logging.String("case_id", id), logging.Err(err))
		return detail, nil
	}
	for _, e := range entries {
		detail.Audit = append(detail.Audit, AuditRecord{
			Event:      e.Event,
			Payload:    json.RawMessage(e.Payload),
			RecordedAt: e.RecordedAt,
		})
	}
	return detail, nil
}

func (s *serviceImpl) ListCases(ctx context.Context, input *ListInput) (*ListResult, error) {
	if input == nil {
		input = &ListInput{}
	}
	if input.Page <= 0 {
		input.Page = 1
	}
	if input.PageSize <= 0 {
		input.PageSize = 20
	}
	if input.PageSize > 100 {
		input.PageSize = 100
	}

	filter := domaincls.ListFilter{
		Status: domaincls.CaseStatus(input.Status),
		Pagination: common.Pagination{
			Page:     input.Page,
			PageSize: input.PageSize,
		},
	}
	cases, total, err := s.cases.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	summaries := make([]*CaseSummary, 0, len(cases))
	for _, c := range cases {
		summary := &CaseSummary{
			ID:        c.ID,
			Title:     c.Title,
			Status:    string(c.Status),
			CreatedAt: c.CreatedAt,
		}
		if c.Result != nil {
			summary.NationalCode = c.Result.NationalCode
			summary.Confidence = c.Result.Confidence
		}
		summaries = append(summaries, summary)
	}

	totalPages := int((total + int64(input.PageSize) - 1) / int64(input.PageSize))
	return &ListResult{
		Cases:      summaries,
		Total:      total,
		Page:       input.Page,
		PageSize:   input.PageSize,
		TotalPages: totalPages,
	}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// National code refinement
// ─────────────────────────────────────────────────────────────────────────────

// refineNational resolves the HS6 prefix to a 10-digit national extension.
// Attribute keyword matches decide when decisive; otherwise the embedding
// collaborator breaks the tie. An empty or unavailable repository degrades to
// the HS6 prefix padded with "0000".
func (s *serviceImpl) refineNational(ctx context.Context, c *domaincls.Case, r *domaincls.Result) {
	if r.NationalCode.IsNational() {
		return
	}

	fallback := ctypes.HSCode(r.HS6 + "0000")
	if s.nationals == nil {
		r.NationalCode = fallback
		return
	}
	rows, err := s.nationals.ByHS6(ctx, r.HS6)
	if err != nil {
		s.logger.Warn("national code lookup failed",
			logging.String("hs6", r.HS6), logging.Err(err))
		r.NationalCode = fallback
		r.Rationale = appendRationale(r.Rationale,
			"nacional: "+string(fallback)+" (prefijo por defecto)")
		return
	}
	if len(rows) == 0 {
		r.NationalCode = fallback
		r.Rationale = appendRationale(r.Rationale,
			"nacional: "+string(fallback)+" (prefijo por defecto)")
		return
	}

	text := c.Text()
	best, hits := rows[0], 0
	for _, row := range rows {
		if h := row.AttrHits(text); h > hits {
			best, hits = row, h
		}
	}
	if hits >= attrHitThreshold {
		r.NationalCode = best.Code
		r.Rationale = appendRationale(r.Rationale,
			"nacional: "+string(best.Code)+" (banda 0.95, atributos coincidentes)")
		return
	}

	r.NationalCode = s.semanticTiebreak(ctx, text, rows)
	r.Rationale = appendRationale(r.Rationale,
		"nacional: "+string(r.NationalCode)+" (banda 0.70)")
}

// semanticTiebreak picks the national extension whose title is closest to the
// case text. Any embedding failure falls back to the first row, which keeps
// the refinement deterministic when the collaborator is down.
func (s *serviceImpl) semanticTiebreak(ctx context.Context, text string, rows []catalog.NationalCode) ctypes.HSCode {
	if s.embedder == nil || len(rows) == 1 {
		return rows[0].Code
	}
	caseVec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return rows[0].Code
	}

	best, bestSim := rows[0].Code, -1.0
	for _, row := range rows {
		vec, err := s.embedder.Embed(ctx, row.Title)
		if err != nil {
			continue
		}
		if sim := s.embedder.Similarity(caseVec, vec); sim > bestSim {
			best, bestSim = row.Code, sim
		}
	}
	return best
}

func appendRationale(rationale, step string) string {
	if rationale == "" {
		return step
	}
	return rationale + " | " + step
}

// ─────────────────────────────────────────────────────────────────────────────
// Outcome sinks
// ─────────────────────────────────────────────────────────────────────────────

// appendAudit drains the case's buffered domain events into the write-once
// audit trail. Failures are logged and swallowed.
func (s *serviceImpl) appendAudit(ctx context.Context, c *domaincls.Case) {
	if s.audit == nil {
		return
	}
	for _, ev := range c.Events() {
		payload, err := json.Marshal(ev)
		if err != nil {
			s.logger.Warn("audit payload marshal failed",
				logging.String("case_id", string(c.ID)), logging.Err(err))
			continue
		}
		entry := domaincls.AuditEntry{
			ID:         common.NewID(),
			CaseID:     c.ID,
			Event:      eventName(ev),
			Payload:    payload,
			RecordedAt: ev.OccurredAt(),
		}
		if err := s.audit.Append(ctx, entry); err != nil {
			s.logger.Warn("audit append failed",
				logging.String("case_id", string(c.ID)),
				logging.String("event", entry.Event), logging.Err(err))
		}
	}
}

// publish pushes the attempt onto the feedback stream. Failures are logged
// and swallowed.
func (s *serviceImpl) publish(ctx context.Context, r *domaincls.Result) {
	if s.feedback == nil {
		return
	}
	if err := s.feedback.Notify(ctx, r.ToEvent()); err != nil {
		s.logger.Warn("feedback publish failed",
			logging.String("case_id", string(r.CaseID)), logging.Err(err))
	}
}

func (s *serviceImpl) record(method ctypes.Method, confidence float64, d time.Duration, reasons []ctypes.ReviewReason) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveClassification(method, confidence, d)
	for _, reason := range reasons {
		s.metrics.ObserveReview(reason)
	}
}

// rejectedResult builds the method=error outcome for input that never becomes
// a case, such as text below the minimum length.
func (s *serviceImpl) rejectedResult(req *ctypes.ClassifyRequest) *ctypes.ClassificationResultDTO {
	flags := domaincls.ValidationFlags{}
	flags.AddReason(ctypes.ReasonTextTooShort)
	return &ctypes.ClassificationResultDTO{
		CaseID:         req.CaseID,
		Method:         ctypes.MethodError,
		RequiresReview: true,
		Rationale:      "texto insuficiente para clasificar",
		Features:       domaincls.DefaultFeatureSet().ToDTO(),
		Validation:     flags.ToDTO(),
		ClassifiedAt:   common.NewTimestamp(),
	}
}

// eventName maps a domain event to its stable audit-trail name.
func eventName(ev common.DomainEvent) string {
	type named interface{ Name() string }
	if n, ok := ev.(named); ok {
		return n.Name()
	}
	return "domain_event"
}

//Personal.AI order the ending
