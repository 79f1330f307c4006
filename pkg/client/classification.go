package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// ClassifyRequest describes one goods item to classify.
type ClassifyRequest struct {
	CaseID      string            `json:"case_id,omitempty"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// BatchClassifyRequest carries multiple goods items.
type BatchClassifyRequest struct {
	Items []ClassifyRequest `json:"items"`
}

// ClassificationResult is the outcome of classifying one goods item.
type ClassificationResult struct {
	CaseID         string          `json:"case_id"`
	HS6            string          `json:"hs6"`
	NationalCode   string          `json:"national_code"`
	Title          string          `json:"title,omitempty"`
	Confidence     float64         `json:"confidence"`
	Method         string          `json:"method"`
	RequiresReview bool            `json:"requires_review"`
	Rationale      string          `json:"rationale,omitempty"`
	TopCandidates  []CandidateCode `json:"top_candidates,omitempty"`
	DurationMillis int64           `json:"duration_ms"`
	ClassifiedAt   time.Time       `json:"classified_at"`
}

// CandidateCode is one ranked candidate in a classification result.
type CandidateCode struct {
	Code         string  `json:"code"`
	Title        string  `json:"title"`
	TotalScore   float64 `json:"total_score"`
	PriorityRule bool    `json:"priority_rule"`
}

// BatchClassifyResult aggregates per-item batch results.
type BatchClassifyResult struct {
	Results []*ClassificationResult `json:"results"`
	Total   int                     `json:"total"`
}

// CaseDetail is the stored view of a classification case.
type CaseDetail struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description,omitempty"`
	Status      string                `json:"status"`
	Result      *ClassificationResult `json:"result,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// CaseSummary is one row in a case listing.
type CaseSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	NationalCode string    `json:"national_code,omitempty"`
	Confidence   float64   `json:"confidence,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// CaseList is a paginated case listing.
type CaseList struct {
	Cases      []*CaseSummary `json:"cases"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// ListCasesOptions filters and paginates a case listing.
type ListCasesOptions struct {
	Page     int
	PageSize int
	Status   string
}

// HealthStatus is the detailed health report of the API server.
type HealthStatus struct {
	Status  string                    `json:"status"`
	Version string                    `json:"version"`
	Uptime  string                    `json:"uptime"`
	Checks  map[string]ComponentCheck `json:"checks"`
}

// ComponentCheck reports one backing component's health.
type ComponentCheck struct {
	Status    string `json:"status"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// Classify submits one goods item for classification.
func (c *Client) Classify(ctx context.Context, req *ClassifyRequest) (*ClassificationResult, error) {
	if req == nil {
		return nil, fmt.Errorf("client: request is required")
	}
	var result ClassificationResult
	if err := c.post(ctx, "/api/v1/classify", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ClassifyBatch submits up to 100 goods items in one call.
func (c *Client) ClassifyBatch(ctx context.Context, items []ClassifyRequest) (*BatchClassifyResult, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("client: items must not be empty")
	}
	var result BatchClassifyResult
	if err := c.post(ctx, "/api/v1/classify/batch", BatchClassifyRequest{Items: items}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetCase fetches one classification case by ID.
func (c *Client) GetCase(ctx context.Context, id string) (*CaseDetail, error) {
	if id == "" {
		return nil, fmt.Errorf("client: case id is required")
	}
	var detail CaseDetail
	if err := c.get(ctx, "/api/v1/classifications/"+url.PathEscape(id), &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListCases fetches a page of classification cases.
func (c *Client) ListCases(ctx context.Context, opts *ListCasesOptions) (*CaseList, error) {
	q := url.Values{}
	if opts != nil {
		if opts.Page > 0 {
			q.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.PageSize > 0 {
			q.Set("page_size", strconv.Itoa(opts.PageSize))
		}
		if opts.Status != "" {
			q.Set("status", opts.Status)
		}
	}

	path := "/api/v1/classifications"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var list CaseList
	if err := c.get(ctx, path, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Health fetches the detailed health report.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.get(ctx, "/api/v1/health", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

//Personal.AI order the ending
