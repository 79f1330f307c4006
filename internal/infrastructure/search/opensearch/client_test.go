package opensearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/HSCode-Intelligence/internal/config"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/monitoring/logging"
)

func newTestServer(handler http.HandlerFunc) *httptest.Server {
	return httptest.NewServer(handler)
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c, err := NewClient(config.OpenSearchConfig{
		Addresses:    []string{serverURL},
		CatalogIndex: "catalog-test",
	}, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestNewClient_Success(t *testing.T) {
	server := newTestServer(okHandler)
	defer server.Close()

	c := newTestClient(t, server.URL)
	assert.True(t, c.IsHealthy())
	assert.Equal(t, "catalog-test", c.CatalogIndex())
}

func TestNewClient_NoAddresses(t *testing.T) {
	_, err := NewClient(config.OpenSearchConfig{}, logging.NewNopLogger())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewClient_DefaultCatalogIndex(t *testing.T) {
	server := newTestServer(okHandler)
	defer server.Close()

	c, err := NewClient(config.OpenSearchConfig{
		Addresses: []string{server.URL},
	}, logging.NewNopLogger())
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, defaultCatalogIndex, c.CatalogIndex())
}

func TestNewClient_UnreachableCluster(t *testing.T) {
	_, err := NewClient(config.OpenSearchConfig{
		Addresses: []string{"http://localhost:1"},
	}, logging.NewNopLogger())
	assert.ErrorIs(t, err, ErrConnectionFailed)
}

func TestPing_ErrorStatusMarksUnhealthy(t *testing.T) {
	healthy := true
	server := newTestServer(func(w http.ResponseWriter, r *http.Request) {
		if healthy {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	defer server.Close()

	c := newTestClient(t, server.URL)
	require.True(t, c.IsHealthy())

	healthy = false
	err := c.Ping(context.Background())
	assert.Error(t, err)
	assert.False(t, c.IsHealthy())
}

//Personal.AI order the ending
