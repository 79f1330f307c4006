package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/turtacn/HSCode-Intelligence/internal/domain/catalog"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/HSCode-Intelligence/pkg/errors"
)

var (
	ErrIndexNotFound       = errors.New(errors.ErrCodeNotFound, "index not found")
	ErrIndexCreationFailed = errors.New(errors.ErrCodeInternal, "index creation failed")
)

// entryDocument is the indexed form of a catalog entry. Chapter is
// denormalized from the code so searches can filter on it with a terms
// clause.
type entryDocument struct {
	ID       int64    `json:"id"`
	Code     string   `json:"code"`
	Chapter  string   `json:"chapter"`
	Title    string   `json:"title"`
	Keywords []string `json:"keywords,omitempty"`
	Level    int      `json:"level"`
}

// BulkResult summarizes a bulk indexing run.
type BulkResult struct {
	Succeeded int
	Failed    int
	Errors    []BulkItemError
}

// BulkItemError describes a single failed document.
type BulkItemError struct {
	Code      string
	ErrorType string
	Reason    string
}

// IndexerConfig holds tuning parameters for the catalog indexer.
type IndexerConfig struct {
	BulkBatchSize     int
	BulkFlushInterval time.Duration
	RefreshPolicy     string
}

// Indexer maintains the catalog entry index: schema creation and bulk
// ingestion during nomenclature synchronization.
type Indexer struct {
	client *Client
	config IndexerConfig
	logger logging.Logger
}

// NewIndexer creates an Indexer with defaults applied.
func NewIndexer(client *Client, cfg IndexerConfig, logger logging.Logger) *Indexer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.BulkBatchSize == 0 {
		cfg.BulkBatchSize = 500
	}
	if cfg.BulkFlushInterval == 0 {
		cfg.BulkFlushInterval = 5 * time.Second
	}
	if cfg.RefreshPolicy == "" {
		cfg.RefreshPolicy = "false"
	}

	return &Indexer{
		client: client,
		config: cfg,
		logger: logger,
	}
}

// EnsureIndex creates the catalog index with its mapping when it does not
// exist yet. Safe to call on every startup.
func (i *Indexer) EnsureIndex(ctx context.Context) error {
	exists, err := i.IndexExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	body, err := json.Marshal(catalogIndexMapping())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal index mapping")
	}

	req := opensearchapi.IndicesCreateRequest{
		Index: i.client.CatalogIndex(),
		Body:  bytes.NewReader(body),
	}

	resp, err := req.Do(ctx, i.client.GetClient())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create index request")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return i.wrapErrorResponse(resp, ErrIndexCreationFailed)
	}

	i.logger.Info("catalog index created", logging.String("index", i.client.CatalogIndex()))
	return nil
}

// DeleteIndex drops the catalog index. Used by the full-resync path before a
// rebuild.
func (i *Indexer) DeleteIndex(ctx context.Context) error {
	req := opensearchapi.IndicesDeleteRequest{
		Index: []string{i.client.CatalogIndex()},
	}

	resp, err := req.Do(ctx, i.client.GetClient())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to delete index request")
	}
	defer resp.Body.Close()

	if resp.StatusCode == 404 {
		return ErrIndexNotFound
	}
	if resp.IsError() {
		return i.wrapErrorResponse(resp, errors.New(errors.ErrCodeInternal, "delete index failed"))
	}

	i.logger.Warn("catalog index deleted", logging.String("index", i.client.CatalogIndex()))
	return nil
}

// IndexExists checks whether the catalog index is present.
func (i *Indexer) IndexExists(ctx context.Context) (bool, error) {
	req := opensearchapi.IndicesExistsRequest{
		Index: []string{i.client.CatalogIndex()},
	}

	resp, err := req.Do(ctx, i.client.GetClient())
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeInternal, "failed to check index existence")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case 200:
		return true, nil
	case 404:
		return false, nil
	}
	return false, i.wrapErrorResponse(resp, errors.New(errors.ErrCodeInternal, "check index existence failed"))
}

// BulkIndex ingests catalog entries in batches, keyed by code so repeated
// syncs overwrite rather than duplicate. Invalid entries are reported in the
// result, not fatal.
func (i *Indexer) BulkIndex(ctx context.Context, entries []catalog.Entry) (*BulkResult, error) {
	result := &BulkResult{}
	if len(entries) == 0 {
		return result, nil
	}

	indexName := i.client.CatalogIndex()
	batchSize := i.config.BulkBatchSize

	for start := 0; start < len(entries); start += batchSize {
		end := start + batchSize
		if end > len(entries) {
			end = len(entries)
		}

		var buf bytes.Buffer
		batched := 0
		for _, e := range entries[start:end] {
			if err := e.Validate(); err != nil {
				result.Failed++
				result.Errors = append(result.Errors, BulkItemError{
					Code:      string(e.Code),
					ErrorType: "invalid_entry",
					Reason:    err.Error(),
				})
				continue
			}

			doc := entryDocument{
				ID:       e.ID,
				Code:     string(e.Code),
				Chapter:  e.Chapter(),
				Title:    e.Title,
				Keywords: e.Keywords,
				Level:    e.Level,
			}
			docBytes, err := json.Marshal(doc)
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, BulkItemError{
					Code:      doc.Code,
					ErrorType: "serialization_error",
					Reason:    err.Error(),
				})
				continue
			}

			fmt.Fprintf(&buf, `{"index":{"_index":%q,"_id":%q}}`+"\n", indexName, doc.Code)
			buf.Write(docBytes)
			buf.WriteString("\n")
			batched++
		}

		if buf.Len() == 0 {
			continue
		}

		req := opensearchapi.BulkRequest{
			Body:    bytes.NewReader(buf.Bytes()),
			Refresh: i.config.RefreshPolicy,
		}

		resp, err := req.Do(ctx, i.client.GetClient())
		if err != nil {
			return result, errors.Wrap(err, errors.ErrCodeInternal, "bulk request failed")
		}

		if resp.IsError() {
			wrapErr := i.wrapErrorResponse(resp, errors.New(errors.ErrCodeInternal, "bulk batch failed"))
			resp.Body.Close()
			result.Failed += batched
			result.Errors = append(result.Errors, BulkItemError{
				Code:      "batch",
				ErrorType: "http_error",
				Reason:    wrapErr.Error(),
			})
			continue
		}

		var bulkResp struct {
			Errors bool `json:"errors"`
			Items  []map[string]struct {
				ID     string `json:"_id"`
				Status int    `json:"status"`
				Error  struct {
					Type   string `json:"type"`
					Reason string `json:"reason"`
				} `json:"error,omitempty"`
			} `json:"items"`
		}
		decodeErr := json.NewDecoder(resp.Body).Decode(&bulkResp)
		resp.Body.Close()
		if decodeErr != nil {
			return result, errors.Wrap(decodeErr, errors.ErrCodeSerialization, "failed to decode bulk response")
		}

		if !bulkResp.Errors {
			result.Succeeded += len(bulkResp.Items)
			continue
		}
		for _, item := range bulkResp.Items {
			for _, v := range item {
				if v.Status >= 200 && v.Status < 300 {
					result.Succeeded++
				} else {
					result.Failed++
					result.Errors = append(result.Errors, BulkItemError{
						Code:      v.ID,
						ErrorType: v.Error.Type,
						Reason:    v.Error.Reason,
					})
				}
				break
			}
		}
	}

	i.logger.Info("catalog bulk index completed",
		logging.Int("total", len(entries)),
		logging.Int("succeeded", result.Succeeded),
		logging.Int("failed", result.Failed))

	return result, nil
}

// DeleteEntry removes a single entry by code.
func (i *Indexer) DeleteEntry(ctx context.Context, code string) error {
	req := opensearchapi.DeleteRequest{
		Index:      i.client.CatalogIndex(),
		DocumentID: code,
		Refresh:    i.config.RefreshPolicy,
	}

	resp, err := req.Do(ctx, i.client.GetClient())
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to delete entry request")
	}
	defer resp.Body.Close()

	if resp.StatusCode == 404 {
		return errors.Newf(errors.ErrCodeNotFound, "catalog entry %s not indexed", code)
	}
	if resp.IsError() {
		return i.wrapErrorResponse(resp, errors.New(errors.ErrCodeInternal, "delete entry failed"))
	}

	return nil
}

func (i *Indexer) wrapErrorResponse(resp *opensearchapi.Response, defaultErr error) error {
	bodyBytes, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	if err := json.Unmarshal(bodyBytes, &errResp); err == nil && errResp.Error.Reason != "" {
		return errors.Wrapf(defaultErr, errors.ErrCodeInternal, "opensearch error: %s - %s", errResp.Error.Type, errResp.Error.Reason)
	}
	return errors.Wrapf(defaultErr, errors.ErrCodeInternal, "opensearch error status: %d", resp.StatusCode)
}

// catalogIndexMapping defines the catalog entry schema: exact-match fields as
// keywords, searchable text for title and keywords.
func catalogIndexMapping() map[string]interface{} {
	return map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 1,
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id":      map[string]interface{}{"type": "long"},
				"code":    map[string]interface{}{"type": "keyword"},
				"chapter": map[string]interface{}{"type": "keyword"},
				"title": map[string]interface{}{
					"type":     "text",
					"analyzer": "standard",
				},
				"keywords": map[string]interface{}{
					"type":     "text",
					"analyzer": "standard",
				},
				"level": map[string]interface{}{"type": "integer"},
			},
		},
	}
}

//Personal.AI order the ending
