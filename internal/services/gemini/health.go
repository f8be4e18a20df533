package gemini

import (
	"context"
	"fmt"
	"net/http"

	"dubsync/internal/services"
)

// HealthCheck confirms the key is accepted and the configured model exists.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return services.Wrap(services.ErrConfiguration, "gemini", "health", "api key required", nil)
	}
	if c.cfg.Model == "" {
		return services.Wrap(services.ErrConfiguration, "gemini", "health", "model is required", nil)
	}
	url := c.endpoint(fmt.Sprintf("/v1beta/models/%s", c.cfg.Model))
	_, err := c.doJSON(ctx, "health", http.MethodGet, url, nil, nil)
	return err
}
