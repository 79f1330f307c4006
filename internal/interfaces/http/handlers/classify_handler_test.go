package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appcls "github.com/turtacn/HSCode-Intelligence/internal/application/classification"
	"github.com/turtacn/HSCode-Intelligence/internal/config"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/HSCode-Intelligence/pkg/errors"
	ctypes "github.com/turtacn/HSCode-Intelligence/pkg/types/classification"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockService struct {
	mock.Mock
}

func (m *mockService) Classify(ctx context.Context, req *ctypes.ClassifyRequest) (*ctypes.ClassificationResultDTO, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ctypes.ClassificationResultDTO), args.Error(1)
}

func (m *mockService) ClassifyBatch(ctx context.Context, reqs []ctypes.ClassifyRequest) ([]*ctypes.ClassificationResultDTO, error) {
	args := m.Called(ctx, reqs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ctypes.ClassificationResultDTO), args.Error(1)
}

func (m *mockService) GetCase(ctx context.Context, id string) (*appcls.CaseDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcls.CaseDetail), args.Error(1)
}

func (m *mockService) ListCases(ctx context.Context, input *appcls.ListInput) (*appcls.ListResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcls.ListResult), args.Error(1)
}

func newTestCache(t *testing.T) redis.Cache {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := redis.NewClient(config.RedisConfig{Addr: mr.Addr()}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return redis.NewRedisCache(client, logging.NewNopLogger())
}

func newClassifyRouter(svc appcls.Service, cache redis.Cache) *gin.Engine {
	h := NewClassifyHandler(svc, cache, logging.NewNopLogger())
	r := gin.New()
	r.POST("/api/v1/classify", h.Classify)
	r.POST("/api/v1/classify/batch", h.ClassifyBatch)
	r.GET("/api/v1/classifications", h.ListCases)
	r.GET("/api/v1/classifications/:id", h.GetCase)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestClassify_Success(t *testing.T) {
	svc := new(mockService)
	svc.On("Classify", mock.Anything, mock.MatchedBy(func(req *ctypes.ClassifyRequest) bool {
		return req.Title == "roasted arabica coffee beans"
	})).Return(&ctypes.ClassificationResultDTO{
		CaseID:       "case-1",
		HS6:          "090121",
		NationalCode: "0901210000",
		Confidence:   0.91,
		Method:       ctypes.MethodRulePipeline,
	}, nil)

	r := newClassifyRouter(svc, nil)
	w := doJSON(t, r, http.MethodPost, "/api/v1/classify", ctypes.ClassifyRequest{
		Title: "roasted arabica coffee beans",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var out ctypes.ClassificationResultDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "090121", out.HS6)
	assert.InDelta(t, 0.91, out.Confidence, 1e-9)
	svc.AssertExpectations(t)
}

func TestClassify_EmptyTextRejected(t *testing.T) {
	svc := new(mockService)
	r := newClassifyRouter(svc, nil)

	w := doJSON(t, r, http.MethodPost, "/api/v1/classify", ctypes.ClassifyRequest{
		Attributes: map[string]string{"origin": "BR"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "title or description")
	svc.AssertNotCalled(t, "Classify")
}

func TestClassify_MalformedJSON(t *testing.T) {
	svc := new(mockService)
	r := newClassifyRouter(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/classify", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), string(errors.ErrCodeValidation))
}

func TestClassify_ServiceErrorMapped(t *testing.T) {
	svc := new(mockService)
	svc.On("Classify", mock.Anything, mock.Anything).
		Return(nil, errors.New(errors.ErrCodeServiceUnavailable, "search backend down"))

	r := newClassifyRouter(svc, nil)
	w := doJSON(t, r, http.MethodPost, "/api/v1/classify", ctypes.ClassifyRequest{Title: "coffee"})

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), string(errors.ErrCodeServiceUnavailable))
}

func TestClassifyBatch_Success(t *testing.T) {
	svc := new(mockService)
	svc.On("ClassifyBatch", mock.Anything, mock.MatchedBy(func(reqs []ctypes.ClassifyRequest) bool {
		return len(reqs) == 2
	})).Return([]*ctypes.ClassificationResultDTO{
		{CaseID: "case-1", HS6: "090121"},
		{CaseID: "case-2", HS6: "851712"},
	}, nil)

	r := newClassifyRouter(svc, nil)
	w := doJSON(t, r, http.MethodPost, "/api/v1/classify/batch", BatchClassifyRequest{
		Items: []ctypes.ClassifyRequest{
			{Title: "roasted coffee"},
			{Title: "smartphone"},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var out BatchClassifyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, 2, out.Total)
	assert.Len(t, out.Results, 2)
}

func TestClassifyBatch_EmptyRejected(t *testing.T) {
	svc := new(mockService)
	r := newClassifyRouter(svc, nil)

	w := doJSON(t, r, http.MethodPost, "/api/v1/classify/batch", BatchClassifyRequest{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ClassifyBatch")
}

func TestClassifyBatch_OversizedRejected(t *testing.T) {
	svc := new(mockService)
	r := newClassifyRouter(svc, nil)

	items := make([]ctypes.ClassifyRequest, maxBatchSize+1)
	for i := range items {
		items[i] = ctypes.ClassifyRequest{Title: "item"}
	}
	w := doJSON(t, r, http.MethodPost, "/api/v1/classify/batch", BatchClassifyRequest{Items: items})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "exceeds maximum")
	svc.AssertNotCalled(t, "ClassifyBatch")
}

func TestGetCase_Found(t *testing.T) {
	svc := new(mockService)
	svc.On("GetCase", mock.Anything, "case-7").Return(&appcls.CaseDetail{
		ID:     "case-7",
		Title:  "roasted coffee",
		Status: "classified",
	}, nil)

	r := newClassifyRouter(svc, nil)
	w := doJSON(t, r, http.MethodGet, "/api/v1/classifications/case-7", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var out appcls.CaseDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "classified", out.Status)
}

func TestGetCase_NotFound(t *testing.T) {
	svc := new(mockService)
	svc.On("GetCase", mock.Anything, "missing").
		Return(nil, errors.NotFound("case missing not found"))

	r := newClassifyRouter(svc, nil)
	w := doJSON(t, r, http.MethodGet, "/api/v1/classifications/missing", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), string(errors.ErrCodeNotFound))
}

func TestGetCase_SecondReadServedFromCache(t *testing.T) {
	svc := new(mockService)
	svc.On("GetCase", mock.Anything, "case-9").Return(&appcls.CaseDetail{
		ID:        "case-9",
		Title:     "smartphone",
		Status:    "classified",
		CreatedAt: time.Now().UTC(),
	}, nil).Once()

	r := newClassifyRouter(svc, newTestCache(t))

	w := doJSON(t, r, http.MethodGet, "/api/v1/classifications/case-9", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// The mock only permits one call, so a service hit here would fail.
	w = doJSON(t, r, http.MethodGet, "/api/v1/classifications/case-9", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "case-9")
	svc.AssertExpectations(t)
}

func TestListCases_PaginationDefaults(t *testing.T) {
	svc := new(mockService)
	svc.On("ListCases", mock.Anything, mock.MatchedBy(func(in *appcls.ListInput) bool {
		return in.Page == 1 && in.PageSize == 20 && in.Status == ""
	})).Return(&appcls.ListResult{
		Cases:      []*appcls.CaseSummary{{ID: "case-1", Status: "classified"}},
		Total:      1,
		Page:       1,
		PageSize:   20,
		TotalPages: 1,
	}, nil)

	r := newClassifyRouter(svc, nil)
	w := doJSON(t, r, http.MethodGet, "/api/v1/classifications", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var out ListCasesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, int64(1), out.Total)
	assert.Len(t, out.Cases, 1)
}

func TestListCases_PageSizeClamped(t *testing.T) {
	svc := new(mockService)
	svc.On("ListCases", mock.Anything, mock.MatchedBy(func(in *appcls.ListInput) bool {
		return in.Page == 3 && in.PageSize == maxPageSize && in.Status == "needs_review"
	})).Return(&appcls.ListResult{Page: 3, PageSize: maxPageSize}, nil)

	r := newClassifyRouter(svc, nil)
	w := doJSON(t, r, http.MethodGet, "/api/v1/classifications?page=3&page_size=500&status=needs_review", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

//Personal.AI order the ending
