package federation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/bmlt-enabled/mayo-events-api/internal/models"
	"github.com/bmlt-enabled/mayo-events-api/internal/taxonomy"
	"github.com/bmlt-enabled/mayo-events-api/pkg/config"
)

const eventsPath = "/api/v1/events"

// RemoteEvents is what a source returns for an event listing.
type RemoteEvents struct {
	Events        []models.Event             `json:"events"`
	ServiceBodies []models.ServiceBodyRecord `json:"service_bodies"`
}

type remoteEnvelope struct {
	Data RemoteEvents `json:"data"`
}

// Client fetches published events from peer instances. Category, event type
// and service body filters are pushed to the remote; tag filters are applied
// client side since remote tag semantics differ across versions.
type Client struct {
	httpClient *http.Client
	limit      int
	logger     *zap.Logger
}

func NewClient(cfg config.FederationConfig, logger *zap.Logger) *Client {
	limit := cfg.PerSourceLimit
	if limit <= 0 {
		limit = 100
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.FetchTimeout},
		limit:      limit,
		logger:     logger,
	}
}

// FetchEvents pulls a source's published events along with the service bodies
// it knows about. Every returned event carries the source's ID and a publish
// status regardless of what the remote claimed.
func (c *Client) FetchEvents(ctx context.Context, source models.ExternalSource) (RemoteEvents, error) {
	endpoint, err := c.buildURL(source)
	if err != nil {
		return RemoteEvents{}, fmt.Errorf("source %s: %w", source.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return RemoteEvents{}, fmt.Errorf("source %s: build request: %w", source.ID, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return RemoteEvents{}, fmt.Errorf("source %s: fetch events: %w", source.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return RemoteEvents{}, fmt.Errorf("source %s: unexpected status %d", source.ID, resp.StatusCode)
	}

	var envelope remoteEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return RemoteEvents{}, fmt.Errorf("source %s: decode events: %w", source.ID, err)
	}

	remote := envelope.Data
	remote.Events = c.filterAndStamp(remote.Events, source)
	return remote, nil
}

func (c *Client) buildURL(source models.ExternalSource) (string, error) {
	base, err := url.Parse(source.URL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("invalid source url %q", source.URL)
	}

	query := url.Values{}
	query.Set("status", string(models.EventStatusPublish))
	query.Set("per_page", strconv.Itoa(c.limit))
	if source.EventType != "" {
		query.Set("event_type", source.EventType)
	}
	if source.ServiceBody != "" {
		query.Set("service_body", source.ServiceBody)
	}
	if source.Categories != "" {
		query.Set("categories", source.Categories)
	}

	base.Path = eventsPath
	base.RawQuery = query.Encode()
	return base.String(), nil
}

func (c *Client) filterAndStamp(events []models.Event, source models.ExternalSource) []models.Event {
	var pred taxonomy.Predicate
	if source.Tags != "" {
		pred = taxonomy.BuildPredicate("", taxonomy.RelationAnd, source.Tags, taxonomy.SlugIndex(events))
	}

	out := make([]models.Event, 0, len(events))
	for _, event := range events {
		if pred != nil && !pred(event) {
			continue
		}
		event.SourceID = source.ID
		event.Status = models.EventStatusPublish
		out = append(out, event)
	}
	return out
}
