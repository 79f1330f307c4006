package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/turtacn/HSCode-Intelligence/internal/domain/catalog"
	enginecommon "github.com/turtacn/HSCode-Intelligence/internal/engine/common"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/HSCode-Intelligence/pkg/errors"
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

// SearcherConfig holds tuning parameters for catalog searches.
type SearcherConfig struct {
	DefaultLimit  int
	MaxLimit      int
	SearchTimeout time.Duration
}

// Searcher runs keyword catalog searches against the entry index. It is the
// lexical half of candidate generation: fuzzy matching over titles and
// keywords, optionally constrained to a chapter set.
type Searcher struct {
	client *Client
	config SearcherConfig
	logger logging.Logger
}

var _ enginecommon.CatalogSearcher = (*Searcher)(nil)

// NewSearcher creates a Searcher with defaults applied.
func NewSearcher(client *Client, cfg SearcherConfig, logger logging.Logger) *Searcher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.DefaultLimit == 0 {
		cfg.DefaultLimit = 20
	}
	if cfg.MaxLimit == 0 {
		cfg.MaxLimit = 100
	}
	if cfg.SearchTimeout == 0 {
		cfg.SearchTimeout = 10 * time.Second
	}

	return &Searcher{
		client: client,
		config: cfg,
		logger: logger,
	}
}

// Search executes the keyword query and maps hits back to catalog entries,
// best-scored first.
func (s *Searcher) Search(ctx context.Context, q catalog.SearchQuery) ([]catalog.Entry, error) {
	if len(q.Words) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "search requires at least one word")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = s.config.DefaultLimit
	}
	if limit > s.config.MaxLimit {
		limit = s.config.MaxLimit
	}

	body, err := json.Marshal(s.buildQueryDSL(q, limit))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal search query")
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.SearchTimeout)
	defer cancel()

	req := opensearchapi.SearchRequest{
		Index: []string{s.client.CatalogIndex()},
		Body:  bytes.NewReader(body),
	}

	start := time.Now()
	resp, err := req.Do(ctx, s.client.GetClient())
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.New(errors.ErrCodeTimeout, "catalog search timed out")
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "catalog search failed")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return nil, s.wrapErrorResponse(resp)
	}

	entries, total, err := parseEntryHits(resp.Body)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("catalog search executed",
		logging.Int("words", len(q.Words)),
		logging.Strings("chapters", q.Chapters),
		logging.Int64("total", total),
		logging.Int("returned", len(entries)),
		logging.Duration("took", time.Since(start)))

	return entries, nil
}

// GetByCode fetches a single indexed entry by its exact code.
func (s *Searcher) GetByCode(ctx context.Context, code string) (*catalog.Entry, error) {
	dsl := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"code": code},
		},
		"size": 1,
	}
	body, err := json.Marshal(dsl)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal lookup query")
	}

	req := opensearchapi.SearchRequest{
		Index: []string{s.client.CatalogIndex()},
		Body:  bytes.NewReader(body),
	}

	resp, err := req.Do(ctx, s.client.GetClient())
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "catalog lookup failed")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return nil, s.wrapErrorResponse(resp)
	}

	entries, _, err := parseEntryHits(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, errors.Newf(errors.ErrCodeNomenclatureNotFound, "catalog entry %s not indexed", code)
	}
	return &entries[0], nil
}

// Count returns the number of indexed catalog entries.
func (s *Searcher) Count(ctx context.Context) (int64, error) {
	req := opensearchapi.CountRequest{
		Index: []string{s.client.CatalogIndex()},
	}

	resp, err := req.Do(ctx, s.client.GetClient())
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeInternal, "catalog count failed")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return 0, s.wrapErrorResponse(resp)
	}

	var countResp struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&countResp); err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode count response")
	}
	return countResp.Count, nil
}

// buildQueryDSL assembles the query: fuzzy multi_match over title and
// keywords (title weighted up), a phrase boost for multi-word queries, and a
// chapter terms filter when the query is chapter-constrained.
func (s *Searcher) buildQueryDSL(q catalog.SearchQuery, limit int) map[string]interface{} {
	text := strings.Join(q.Words, " ")

	should := []map[string]interface{}{
		{
			"multi_match": map[string]interface{}{
				"query":     text,
				"fields":    []string{"title^2", "keywords"},
				"fuzziness": "AUTO",
			},
		},
	}
	if len(q.Words) > 1 {
		should = append(should, map[string]interface{}{
			"match_phrase": map[string]interface{}{
				"title": map[string]interface{}{
					"query": text,
					"boost": 2.0,
					"slop":  2,
				},
			},
		})
	}

	boolQ := map[string]interface{}{
		"should":               should,
		"minimum_should_match": 1,
	}
	if len(q.Chapters) > 0 {
		boolQ["filter"] = []map[string]interface{}{
			{"terms": map[string]interface{}{"chapter": q.Chapters}},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQ},
		"size":  limit,
	}
}

func parseEntryHits(body io.Reader) ([]catalog.Entry, int64, error) {
	var resp struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source entryDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, 0, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode search response")
	}

	entries := make([]catalog.Entry, 0, len(resp.Hits.Hits))
	for _, h := range resp.Hits.Hits {
		entries = append(entries, catalog.Entry{
			ID:       h.Source.ID,
			Code:     ctypes.HSCode(h.Source.Code),
			Title:    h.Source.Title,
			Keywords: h.Source.Keywords,
			Level:    h.Source.Level,
		})
	}
	return entries, resp.Hits.Total.Value, nil
}

func (s *Searcher) wrapErrorResponse(resp *opensearchapi.Response) error {
	bodyBytes, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	if err := json.Unmarshal(bodyBytes, &errResp); err == nil && errResp.Error.Reason != "" {
		return errors.Newf(errors.ErrCodeInternal, "opensearch error: %s - %s", errResp.Error.Type, errResp.Error.Reason)
	}
	return errors.Newf(errors.ErrCodeInternal, "opensearch error status: %d", resp.StatusCode)
}

//Personal.AI order the ending
