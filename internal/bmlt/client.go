package bmlt

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/bmlt-enabled/mayo-events-api/internal/models"
	"github.com/bmlt-enabled/mayo-events-api/pkg/config"
)

const serviceBodiesPath = "/client_interface/json/?switcher=GetServiceBodies"

// Client talks to a BMLT root server.
type Client struct {
	rootURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg config.BMLTConfig, logger *zap.Logger) *Client {
	return &Client{
		rootURL:    cfg.RootServerURL,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		logger:     logger,
	}
}

// Configured reports whether a root server URL is set.
func (c *Client) Configured() bool {
	return c.rootURL != ""
}

// GetServiceBodies fetches the root server's service body list. The request
// is synchronous with a single attempt; the configured timeout bounds it.
func (c *Client) GetServiceBodies(ctx context.Context) ([]models.ServiceBodyRecord, error) {
	if c.rootURL == "" {
		return nil, fmt.Errorf("bmlt root server url not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.rootURL+serviceBodiesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build service bodies request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch service bodies: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch service bodies: unexpected status %d", resp.StatusCode)
	}

	var payload []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode service bodies: %w", err)
	}

	records := make([]models.ServiceBodyRecord, 0, len(payload))
	for _, body := range payload {
		if body.ID == "" {
			continue
		}
		records = append(records, models.ServiceBodyRecord{ID: body.ID, Name: body.Name})
	}
	return records, nil
}
