package milvus

import (
	"context"
	"testing"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
)

// mockEntryClient covers the collection and vector surface the package uses.
type mockEntryClient struct {
	client.Client

	hasCollection bool
	stats         map[string]string

	createdSchema *entity.Schema
	createdIndex  entity.Index
	loaded        []string
	dropped       []string
	upserted      [][]entity.Column
	deleteExprs   []string
	searchExpr    string
	searchResults []client.SearchResult
	searchErr     error
}

func (m *mockEntryClient) HasCollection(ctx context.Context, name string) (bool, error) {
	return m.hasCollection, nil
}

func (m *mockEntryClient) CreateCollection(ctx context.Context, schema *entity.Schema, shards int32, opts ...client.CreateCollectionOption) error {
	m.createdSchema = schema
	return nil
}

func (m *mockEntryClient) CreateIndex(ctx context.Context, collName, fieldName string, idx entity.Index, async bool, opts ...client.IndexOption) error {
	m.createdIndex = idx
	return nil
}

func (m *mockEntryClient) LoadCollection(ctx context.Context, collName string, async bool, opts ...client.LoadCollectionOption) error {
	m.loaded = append(m.loaded, collName)
	return nil
}

func (m *mockEntryClient) DropCollection(ctx context.Context, collName string, opts ...client.DropCollectionOption) error {
	m.dropped = append(m.dropped, collName)
	return nil
}

func (m *mockEntryClient) GetCollectionStatistics(ctx context.Context, collName string) (map[string]string, error) {
	return m.stats, nil
}

func (m *mockEntryClient) Upsert(ctx context.Context, collName string, partition string, columns ...entity.Column) (entity.Column, error) {
	m.upserted = append(m.upserted, columns)
	return nil, nil
}

func (m *mockEntryClient) Delete(ctx context.Context, collName string, partition string, expr string) error {
	m.deleteExprs = append(m.deleteExprs, expr)
	return nil
}

func (m *mockEntryClient) Search(ctx context.Context, collName string, partitions []string, expr string, outputFields []string, vectors []entity.Vector, vectorField string, metricType entity.MetricType, topK int, sp entity.SearchParam, opts ...client.SearchQueryOptionFunc) ([]client.SearchResult, error) {
	m.searchExpr = expr
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.searchResults, nil
}

func (m *mockEntryClient) CheckHealth(ctx context.Context) (*entity.MilvusState, error) {
	return &entity.MilvusState{}, nil
}

func (m *mockEntryClient) Close() error { return nil }

func newMockedManager(t *testing.T, mock *mockEntryClient) (*Client, *CollectionManager) {
	t.Helper()
	withMockFactory(t, mock, nil)

	c, err := NewClient(testMilvusConfig(), logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return c, NewCollectionManager(c, testMilvusConfig(), logging.NewNopLogger())
}

func TestEntryCollection_UsesPrefix(t *testing.T) {
	_, mgr := newMockedManager(t, &mockEntryClient{})
	assert.Equal(t, "test_catalog_entries", mgr.EntryCollection())
}

func TestEnsureEntryCollection_CreatesSchemaAndIndex(t *testing.T) {
	mock := &mockEntryClient{}
	_, mgr := newMockedManager(t, mock)

	require.NoError(t, mgr.EnsureEntryCollection(context.Background()))

	require.NotNil(t, mock.createdSchema)
	assert.Equal(t, "test_catalog_entries", mock.createdSchema.CollectionName)

	fieldNames := make([]string, 0, len(mock.createdSchema.Fields))
	var dim string
	for _, f := range mock.createdSchema.Fields {
		fieldNames = append(fieldNames, f.Name)
		if f.Name == vectorField {
			dim = f.TypeParams["dim"]
		}
	}
	assert.ElementsMatch(t, []string{"id", "code", "chapter", "embedding"}, fieldNames)
	assert.Equal(t, "32", dim)

	require.NotNil(t, mock.createdIndex)
	assert.Equal(t, entity.HNSW, mock.createdIndex.IndexType())
	assert.Equal(t, []string{"test_catalog_entries"}, mock.loaded)
}

func TestEnsureEntryCollection_ExistingOnlyLoads(t *testing.T) {
	mock := &mockEntryClient{hasCollection: true}
	_, mgr := newMockedManager(t, mock)

	require.NoError(t, mgr.EnsureEntryCollection(context.Background()))

	assert.Nil(t, mock.createdSchema)
	assert.Nil(t, mock.createdIndex)
	assert.Equal(t, []string{"test_catalog_entries"}, mock.loaded)
}

func TestDropEntryCollection_Missing(t *testing.T) {
	_, mgr := newMockedManager(t, &mockEntryClient{})

	err := mgr.DropEntryCollection(context.Background())
	assert.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestDropEntryCollection_Present(t *testing.T) {
	mock := &mockEntryClient{hasCollection: true}
	_, mgr := newMockedManager(t, mock)

	require.NoError(t, mgr.DropEntryCollection(context.Background()))
	assert.Equal(t, []string{"test_catalog_entries"}, mock.dropped)
}

func TestEntityCount(t *testing.T) {
	mock := &mockEntryClient{stats: map[string]string{"row_count": "5612"}}
	_, mgr := newMockedManager(t, mock)

	n, err := mgr.EntityCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5612), n)
}

func TestEntityCount_MissingStat(t *testing.T) {
	mock := &mockEntryClient{stats: map[string]string{}}
	_, mgr := newMockedManager(t, mock)

	n, err := mgr.EntityCount(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

//Personal.AI order the ending
