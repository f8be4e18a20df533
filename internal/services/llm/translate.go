package llm

import (
	"context"
	"fmt"
	"strings"

	"dubsync/internal/services"
)

// TranslationPrompt instructs the model to return only the translated text.
const TranslationPrompt = `You are a professional translator preparing a script for voice dubbing.
Translate the user's text into the target language named in the request.
Preserve meaning, tone and sentence order. Do not add commentary, notes or transliterations.
Respond with JSON only: {"translation": "<translated text>"}`

type translationPayload struct {
	Translation string `json:"translation"`
}

// Translate renders text in targetLanguage, a human-readable language name.
func (c *Client) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	text = strings.TrimSpace(text)
	targetLanguage = strings.TrimSpace(targetLanguage)
	if text == "" {
		return "", services.Wrap(services.ErrValidation, "llm", "translate", "text is empty", nil)
	}
	if targetLanguage == "" {
		return "", services.Wrap(services.ErrValidation, "llm", "translate", "target language is empty", nil)
	}

	user := fmt.Sprintf("Target language: %s\n\nText:\n%s", targetLanguage, text)
	content, err := c.CompleteJSON(ctx, TranslationPrompt, user)
	if err != nil {
		return "", err
	}
	var parsed translationPayload
	if err := DecodeLLMJSON(content, &parsed); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "llm", "translate", "parse payload", err)
	}
	translated := strings.TrimSpace(parsed.Translation)
	if translated == "" {
		return "", services.Wrap(services.ErrExternalTool, "llm", "translate", "model returned an empty translation", nil)
	}
	return translated, nil
}
