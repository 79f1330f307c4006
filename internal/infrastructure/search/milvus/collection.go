package milvus

import (
	"context"
	"strconv"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/turtacn/HSCode-Intelligence/internal/config"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/HSCode-Intelligence/pkg/errors"
)

var ErrCollectionNotFound = errors.New(errors.ErrCodeNotFound, "collection not found")

const (
	entryCollectionSuffix = "catalog_entries"

	vectorField  = "embedding"
	codeField    = "code"
	chapterField = "chapter"
	idField      = "id"

	defaultNList = 1024
	defaultHNSWM = 8
	defaultHNSWEfConstruction = 200

	indexTypeHNSW = "HNSW"
)

// CollectionManager maintains the catalog entry vector collection: schema,
// vector index, and memory load state.
type CollectionManager struct {
	client *Client
	cfg    config.MilvusConfig
	logger logging.Logger
}

// NewCollectionManager creates a manager with defaults applied.
func NewCollectionManager(client *Client, cfg config.MilvusConfig, logger logging.Logger) *CollectionManager {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.EmbeddingDim == 0 {
		cfg.EmbeddingDim = defaultEmbeddingDim
	}
	if cfg.HNSWM == 0 {
		cfg.HNSWM = defaultHNSWM
	}
	if cfg.HNSWEfConstruction == 0 {
		cfg.HNSWEfConstruction = defaultHNSWEfConstruction
	}
	if cfg.IndexType == "" {
		cfg.IndexType = indexTypeHNSW
	}

	return &CollectionManager{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// EntryCollection returns the catalog entry collection name.
func (m *CollectionManager) EntryCollection() string {
	return m.cfg.CollectionPrefix + entryCollectionSuffix
}

// EmbeddingDim returns the configured vector dimension.
func (m *CollectionManager) EmbeddingDim() int {
	return m.cfg.EmbeddingDim
}

// EnsureEntryCollection creates the collection, its vector index, and loads
// it into memory when missing. Safe to call on every startup.
func (m *CollectionManager) EnsureEntryCollection(ctx context.Context) error {
	name := m.EntryCollection()

	has, err := m.HasCollection(ctx, name)
	if err != nil {
		return err
	}

	if !has {
		schema := m.entrySchema(name)
		if err := m.client.GetMilvusClient().CreateCollection(ctx, schema, 2); err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "failed to create entry collection")
		}

		idx, err := m.buildVectorIndex()
		if err != nil {
			return err
		}
		if err := m.client.GetMilvusClient().CreateIndex(ctx, name, vectorField, idx, false); err != nil {
			return errors.Wrap(err, errors.ErrCodeInternal, "failed to create vector index")
		}
		m.logger.Info("entry collection created",
			logging.String("collection", name),
			logging.Int("dim", m.cfg.EmbeddingDim),
			logging.String("index", m.cfg.IndexType))
	}

	if err := m.client.GetMilvusClient().LoadCollection(ctx, name, false); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to load entry collection")
	}
	return nil
}

// DropEntryCollection removes the collection. Used by the full-resync path
// before a rebuild.
func (m *CollectionManager) DropEntryCollection(ctx context.Context) error {
	name := m.EntryCollection()

	has, err := m.HasCollection(ctx, name)
	if err != nil {
		return err
	}
	if !has {
		return ErrCollectionNotFound
	}

	if err := m.client.GetMilvusClient().DropCollection(ctx, name); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to drop entry collection")
	}
	m.logger.Warn("entry collection dropped", logging.String("collection", name))
	return nil
}

// HasCollection checks collection existence.
func (m *CollectionManager) HasCollection(ctx context.Context, name string) (bool, error) {
	has, err := m.client.GetMilvusClient().HasCollection(ctx, name)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeInternal, "failed to check collection existence")
	}
	return has, nil
}

// EntityCount returns the stored row count.
func (m *CollectionManager) EntityCount(ctx context.Context) (int64, error) {
	stats, err := m.client.GetMilvusClient().GetCollectionStatistics(ctx, m.EntryCollection())
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeInternal, "failed to get collection statistics")
	}
	raw, ok := stats["row_count"]
	if !ok {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeSerialization, "malformed row_count statistic")
	}
	return n, nil
}

// Flush makes recent writes visible to search.
func (m *CollectionManager) Flush(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()
	if err := m.client.GetMilvusClient().Flush(ctx, m.EntryCollection(), false); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to flush entry collection")
	}
	return nil
}

func (m *CollectionManager) entrySchema(name string) *entity.Schema {
	dim := strconv.Itoa(m.cfg.EmbeddingDim)
	return &entity.Schema{
		CollectionName: name,
		Description:    "catalog entry embeddings",
		Fields: []*entity.Field{
			{Name: idField, DataType: entity.FieldTypeInt64, PrimaryKey: true, AutoID: false},
			{Name: codeField, DataType: entity.FieldTypeVarChar, TypeParams: map[string]string{"max_length": "10"}},
			{Name: chapterField, DataType: entity.FieldTypeVarChar, TypeParams: map[string]string{"max_length": "2"}},
			{Name: vectorField, DataType: entity.FieldTypeFloatVector, TypeParams: map[string]string{"dim": dim}},
		},
	}
}

func (m *CollectionManager) buildVectorIndex() (entity.Index, error) {
	if m.cfg.IndexType == indexTypeHNSW {
		idx, err := entity.NewIndexHNSW(entity.COSINE, m.cfg.HNSWM, m.cfg.HNSWEfConstruction)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid hnsw index parameters")
		}
		return idx, nil
	}
	idx, err := entity.NewIndexIvfFlat(entity.COSINE, defaultNList)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid ivf index parameters")
	}
	return idx, nil
}

//Personal.AI order the ending
