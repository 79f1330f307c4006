package milvus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/turtacn/HSCode-Intelligence/internal/domain/catalog"
	enginecommon "github.com/turtacn/HSCode-Intelligence/internal/engine/common"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/HSCode-Intelligence/pkg/errors"
)

const (
	defaultTopK      = 10
	maxTopK          = 1024
	defaultSearchEf  = 64
	upsertBatchSize  = 1000
	defaultSearchTTL = 10 * time.Second
)

// ScoredCode is a semantic search hit: a catalog code and its cosine
// similarity to the query.
type ScoredCode struct {
	Code  string
	Score float64
}

// VectorStore keeps catalog entry embeddings in Milvus and answers
// nearest-neighbor queries over them. It is the semantic half of candidate
// generation.
type VectorStore struct {
	client   *Client
	mgr      *CollectionManager
	embedder enginecommon.EmbeddingProvider
	logger   logging.Logger
}

// NewVectorStore creates a store bound to the entry collection.
func NewVectorStore(c *Client, mgr *CollectionManager, embedder enginecommon.EmbeddingProvider, logger logging.Logger) *VectorStore {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &VectorStore{
		client:   c,
		mgr:      mgr,
		embedder: embedder,
		logger:   logger,
	}
}

// UpsertEntries embeds and stores catalog entries, keyed by entry ID so
// repeated syncs overwrite. Entries that fail validation or embedding are
// skipped with a warning; the count of stored entries is returned.
func (s *VectorStore) UpsertEntries(ctx context.Context, entries []catalog.Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	stored := 0
	for start := 0; start < len(entries); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(entries) {
			end = len(entries)
		}

		var (
			ids      []int64
			codes    []string
			chapters []string
			vectors  [][]float32
		)
		for _, e := range entries[start:end] {
			if err := e.Validate(); err != nil {
				s.logger.Warn("skipping invalid catalog entry",
					logging.String("code", string(e.Code)), logging.Err(err))
				continue
			}
			vec, err := s.embedder.Embed(ctx, e.SearchText())
			if err != nil {
				s.logger.Warn("skipping unembeddable catalog entry",
					logging.String("code", string(e.Code)), logging.Err(err))
				continue
			}
			ids = append(ids, e.ID)
			codes = append(codes, string(e.Code))
			chapters = append(chapters, e.Chapter())
			vectors = append(vectors, vec)
		}
		if len(ids) == 0 {
			continue
		}

		cols := []entity.Column{
			entity.NewColumnInt64(idField, ids),
			entity.NewColumnVarChar(codeField, codes),
			entity.NewColumnVarChar(chapterField, chapters),
			entity.NewColumnFloatVector(vectorField, s.mgr.EmbeddingDim(), vectors),
		}
		if _, err := s.client.GetMilvusClient().Upsert(ctx, s.mgr.EntryCollection(), "", cols...); err != nil {
			return stored, errors.Wrap(err, errors.ErrCodeInternal, "failed to upsert entry vectors")
		}
		stored += len(ids)
	}

	s.logger.Info("entry vectors upserted",
		logging.Int("requested", len(entries)),
		logging.Int("stored", stored))
	return stored, nil
}

// SimilarCodes embeds the description and returns the nearest catalog codes,
// optionally constrained to a chapter set. Results are similarity-ordered.
func (s *VectorStore) SimilarCodes(ctx context.Context, text string, topK int, chapters []string) ([]ScoredCode, error) {
	if topK <= 0 {
		topK = defaultTopK
	}
	if topK > maxTopK {
		topK = maxTopK
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	sp, err := entity.NewIndexHNSWSearchParam(defaultSearchEf)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to build search param")
	}

	ctx, cancel := context.WithTimeout(ctx, defaultSearchTTL)
	defer cancel()

	start := time.Now()
	results, err := s.client.GetMilvusClient().Search(ctx,
		s.mgr.EntryCollection(),
		nil,
		chapterExpr(chapters),
		[]string{codeField},
		[]entity.Vector{entity.FloatVector(vec)},
		vectorField,
		entity.COSINE,
		topK,
		sp,
		client.WithSearchQueryConsistencyLevel(entity.ClBounded),
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "vector search failed")
	}

	hits := collectHits(results)

	s.logger.Debug("semantic search executed",
		logging.Int("top_k", topK),
		logging.Strings("chapters", chapters),
		logging.Int("hits", len(hits)),
		logging.Duration("took", time.Since(start)))

	return hits, nil
}

// DeleteEntries removes vectors by entry ID.
func (s *VectorStore) DeleteEntries(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return errors.New(errors.ErrCodeValidation, "ids must not be empty")
	}

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	expr := fmt.Sprintf("%s in [%s]", idField, strings.Join(parts, ","))

	if err := s.client.GetMilvusClient().Delete(ctx, s.mgr.EntryCollection(), "", expr); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to delete entry vectors")
	}
	return nil
}

func chapterExpr(chapters []string) string {
	if len(chapters) == 0 {
		return ""
	}
	quoted := make([]string, len(chapters))
	for i, ch := range chapters {
		quoted[i] = fmt.Sprintf("%q", ch)
	}
	return fmt.Sprintf("%s in [%s]", chapterField, strings.Join(quoted, ","))
}

func collectHits(results []client.SearchResult) []ScoredCode {
	var hits []ScoredCode
	for _, res := range results {
		codeCol, _ := res.Fields.GetColumn(codeField).(*entity.ColumnVarChar)
		for i := 0; i < res.ResultCount; i++ {
			code := ""
			if codeCol != nil {
				code, _ = codeCol.ValueByIdx(i)
			}
			hits = append(hits, ScoredCode{
				Code:  code,
				Score: float64(res.Scores[i]),
			})
		}
	}
	return hits
}

//Personal.AI order the ending
