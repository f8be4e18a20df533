package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"dubsync/internal/services"
)

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text     string    `json:"text,omitempty"`
	FileData *fileData `json:"file_data,omitempty"`
}

type fileData struct {
	MimeType string `json:"mime_type"`
	FileURI  string `json:"file_uri"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// GenerateFromFile asks the model to answer prompt about an uploaded file and
// returns the concatenated text parts of the first candidate.
func (c *Client) GenerateFromFile(ctx context.Context, prompt string, file File) (string, error) {
	if c.cfg.Model == "" {
		return "", services.Wrap(services.ErrConfiguration, "gemini", "generate", "model is required", nil)
	}
	body := generateRequest{Contents: []content{{
		Role: "user",
		Parts: []part{
			{Text: prompt},
			{FileData: &fileData{MimeType: file.MimeType, FileURI: file.URI}},
		},
	}}}

	var resp generateResponse
	url := c.endpoint(fmt.Sprintf("/v1beta/models/%s:generateContent", c.cfg.Model))
	if _, err := c.doJSON(ctx, "generate", http.MethodPost, url, body, &resp); err != nil {
		return "", err
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", services.Wrap(services.ErrExternalTool, "gemini", "generate", "prompt blocked: "+resp.PromptFeedback.BlockReason, nil)
	}
	if len(resp.Candidates) == 0 {
		return "", services.Wrap(services.ErrExternalTool, "gemini", "generate", "no candidates returned", nil)
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", services.Wrap(services.ErrExternalTool, "gemini", "generate",
			"empty response (finish_reason="+resp.Candidates[0].FinishReason+")", nil)
	}
	return text, nil
}

func jsonBytes(body any) ([]byte, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	return encoded, nil
}
