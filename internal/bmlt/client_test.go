package bmlt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bmlt-enabled/mayo-events-api/pkg/config"
)

func newTestClient(url string) *Client {
	return NewClient(config.BMLTConfig{
		RootServerURL:  url,
		RequestTimeout: 2 * time.Second,
	}, zap.NewNop())
}

func TestGetServiceBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GetServiceBodies", r.URL.Query().Get("switcher"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"12","name":"River Area"},{"id":"","name":"nameless"},{"id":"47","name":"Hill Area"}]`))
	}))
	defer srv.Close()

	records, err := newTestClient(srv.URL).GetServiceBodies(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "River Area", records[0].Name)
	assert.Equal(t, "47", records[1].ID)
}

func TestGetServiceBodiesMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":"nope"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetServiceBodies(context.Background())
	assert.Error(t, err)
}

func TestGetServiceBodiesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetServiceBodies(context.Background())
	assert.Error(t, err)
}

func TestGetServiceBodiesUnconfigured(t *testing.T) {
	client := newTestClient("")
	assert.False(t, client.Configured())

	_, err := client.GetServiceBodies(context.Background())
	assert.Error(t, err)
}
