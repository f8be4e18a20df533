package tts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"dubsync/internal/services"
)

type voicesResponse struct {
	Voices []struct {
		Name          string   `json:"name"`
		LanguageCodes []string `json:"languageCodes"`
	} `json:"voices"`
}

// HealthCheck lists the voices for localeCode and fails when the key is
// rejected or no voice speaks the locale.
func (c *Client) HealthCheck(ctx context.Context, localeCode string) (int, error) {
	if c.cfg.APIKey == "" {
		return 0, services.Wrap(services.ErrConfiguration, "tts", "health", "api key required", nil)
	}
	localeCode = strings.TrimSpace(localeCode)
	endpoint := c.cfg.BaseURL + "/v1/voices"
	if localeCode != "" {
		endpoint += "?languageCode=" + url.QueryEscape(localeCode)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "tts", "health", "new request", err)
	}
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "tts", "health", "", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "tts", "health", "read body", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return 0, services.Wrap(services.ErrExternalTool, "tts", "health",
			fmt.Sprintf("http %d", resp.StatusCode), errors.New(errorMessage(body)))
	}
	var decoded voicesResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "tts", "health", "decode response", err)
	}
	if len(decoded.Voices) == 0 {
		return 0, services.Wrap(services.ErrNotFound, "tts", "health", "no voices for "+localeCode, nil)
	}
	return len(decoded.Voices), nil
}

func errorMessage(body []byte) string {
	message := strings.TrimSpace(string(body))
	var envelope apiError
	if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
		message = strings.TrimSpace(envelope.Error.Status + ": " + envelope.Error.Message)
	}
	return message
}
