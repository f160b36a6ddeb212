package federation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bmlt-enabled/mayo-events-api/internal/models"
	"github.com/bmlt-enabled/mayo-events-api/pkg/config"
)

func newTestClient() *Client {
	return NewClient(config.FederationConfig{
		FetchTimeout:   2 * time.Second,
		PerSourceLimit: 50,
	}, zap.NewNop())
}

func TestFetchEventsStampsSourceAndFiltersTags(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/events", r.URL.Path)
		assert.Equal(t, "publish", r.URL.Query().Get("status"))
		assert.Equal(t, "meeting", r.URL.Query().Get("event_type"))
		assert.Equal(t, "50", r.URL.Query().Get("per_page"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{
			"events":[
				{"id":"e1","title":"Open Speaker","status":"pending","tags":[{"slug":"speaker"}]},
				{"id":"e2","title":"Closed Meeting","tags":[{"slug":"closed"}]}
			],
			"service_bodies":[{"id":"9","name":"Remote Area"}]
		}}`))
	}))
	defer srv.Close()

	source := models.ExternalSource{
		ID:        "src-1",
		URL:       srv.URL,
		EventType: "meeting",
		Tags:      "speaker,-closed",
	}

	remote, err := newTestClient().FetchEvents(context.Background(), source)
	require.NoError(t, err)

	require.Len(t, remote.Events, 1)
	assert.Equal(t, "e1", remote.Events[0].ID)
	assert.Equal(t, "src-1", remote.Events[0].SourceID)
	// Remote status claims are never trusted.
	assert.Equal(t, models.EventStatusPublish, remote.Events[0].Status)

	require.Len(t, remote.ServiceBodies, 1)
	assert.Equal(t, "Remote Area", remote.ServiceBodies[0].Name)
}

func TestFetchEventsInvalidURL(t *testing.T) {
	_, err := newTestClient().FetchEvents(context.Background(), models.ExternalSource{ID: "bad", URL: "::not-a-url"})
	assert.Error(t, err)
}

func TestFetchEventsRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient().FetchEvents(context.Background(), models.ExternalSource{ID: "src-1", URL: srv.URL})
	assert.Error(t, err)
}
