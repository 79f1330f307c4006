package opensearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/HSCode-Intelligence/internal/domain/catalog"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/HSCode-Intelligence/pkg/errors"
)

const searchResponse = `{
	"took": 4,
	"hits": {
		"total": {"value": 2},
		"max_score": 3.1,
		"hits": [
			{"_id": "090121", "_score": 3.1, "_source": {"id": 1, "code": "090121", "chapter": "09", "title": "Coffee, roasted, not decaffeinated", "keywords": ["coffee", "roasted"], "level": 3}},
			{"_id": "090122", "_score": 2.4, "_source": {"id": 2, "code": "090122", "chapter": "09", "title": "Coffee, roasted, decaffeinated", "level": 3}}
		]
	}
}`

func newTestSearcher(t *testing.T, handler http.HandlerFunc) *Searcher {
	t.Helper()
	server := newTestServer(handler)
	t.Cleanup(server.Close)
	return NewSearcher(newTestClient(t, server.URL), SearcherConfig{}, logging.NewNopLogger())
}

func searchHandler(t *testing.T, capture *string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "_search") {
			body, _ := io.ReadAll(r.Body)
			*capture = string(body)
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(searchResponse))
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func TestSearch_MapsHitsToEntries(t *testing.T) {
	var captured string
	searcher := newTestSearcher(t, searchHandler(t, &captured))

	entries, err := searcher.Search(context.Background(), catalog.SearchQuery{
		Words: []string{"roasted", "coffee"},
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "090121", string(entries[0].Code))
	assert.Equal(t, "Coffee, roasted, not decaffeinated", entries[0].Title)
	assert.Equal(t, []string{"coffee", "roasted"}, entries[0].Keywords)
	assert.Equal(t, 3, entries[0].Level)
	assert.Equal(t, "090122", string(entries[1].Code))
}

func TestSearch_BuildsFuzzyQueryWithPhraseBoost(t *testing.T) {
	var captured string
	searcher := newTestSearcher(t, searchHandler(t, &captured))

	_, err := searcher.Search(context.Background(), catalog.SearchQuery{
		Words: []string{"camiseta", "algodon"},
	})
	require.NoError(t, err)

	var dsl map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(captured), &dsl))

	assert.Contains(t, captured, `"fuzziness":"AUTO"`)
	assert.Contains(t, captured, `"match_phrase"`)
	assert.Contains(t, captured, "camiseta algodon")
	assert.NotContains(t, captured, `"filter"`)
}

func TestSearch_ChapterFilterApplied(t *testing.T) {
	var captured string
	searcher := newTestSearcher(t, searchHandler(t, &captured))

	_, err := searcher.Search(context.Background(), catalog.SearchQuery{
		Words:    []string{"coffee"},
		Chapters: []string{"09", "21"},
	})
	require.NoError(t, err)

	assert.Contains(t, captured, `"filter"`)
	assert.Contains(t, captured, `"chapter":["09","21"]`)
}

func TestSearch_LimitClamped(t *testing.T) {
	var captured string
	searcher := newTestSearcher(t, searchHandler(t, &captured))

	_, err := searcher.Search(context.Background(), catalog.SearchQuery{
		Words: []string{"coffee"},
		Limit: 5000,
	})
	require.NoError(t, err)
	assert.Contains(t, captured, `"size":100`)

	_, err = searcher.Search(context.Background(), catalog.SearchQuery{
		Words: []string{"coffee"},
	})
	require.NoError(t, err)
	assert.Contains(t, captured, `"size":20`)
}

func TestSearch_RequiresWords(t *testing.T) {
	searcher := newTestSearcher(t, searchHandler(t, new(string)))

	_, err := searcher.Search(context.Background(), catalog.SearchQuery{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestSearch_ErrorResponseSurfaced(t *testing.T) {
	searcher := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "_search") {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": {"type": "parsing_exception", "reason": "unknown field"}}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	_, err := searcher.Search(context.Background(), catalog.SearchQuery{Words: []string{"coffee"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing_exception")
}

func TestGetByCode_Found(t *testing.T) {
	var captured string
	searcher := newTestSearcher(t, searchHandler(t, &captured))

	entry, err := searcher.GetByCode(context.Background(), "090121")
	require.NoError(t, err)
	assert.Equal(t, "090121", string(entry.Code))
	assert.Contains(t, captured, `"term":{"code":"090121"}`)
}

func TestGetByCode_NotIndexed(t *testing.T) {
	searcher := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "_search") {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"hits": {"total": {"value": 0}, "hits": []}}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	_, err := searcher.GetByCode(context.Background(), "999999")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeNomenclatureNotFound))
}

func TestCount(t *testing.T) {
	searcher := newTestSearcher(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "_count") {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"count": 5612}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	n, err := searcher.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5612), n)
}

//Personal.AI order the ending
