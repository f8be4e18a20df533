package gemini

import (
	"context"
	"strings"
	"time"

	"dubsync/internal/logging"
	"dubsync/internal/services"
)

// DefaultPrompt requests a plain verbatim transcript.
const DefaultPrompt = "Provide a full and accurate transcription of this audio file. Only output the transcribed text."

const cleanupTimeout = 30 * time.Second

// Transcribe uploads audioPath, waits for it to become usable, and returns the
// model's transcript. The uploaded file is deleted afterwards whether or not
// transcription succeeded; deletion failures are only logged.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrConfiguration, "gemini", "transcribe", "api key required", nil)
	}
	if strings.TrimSpace(audioPath) == "" {
		return "", services.Wrap(services.ErrValidation, "gemini", "transcribe", "audio path is empty", nil)
	}

	file, err := c.Upload(ctx, audioPath)
	if err != nil {
		return "", err
	}
	defer c.cleanup(ctx, file.Name)

	file, err = c.WaitForActive(ctx, file)
	if err != nil {
		return "", err
	}

	prompt := strings.TrimSpace(c.cfg.Prompt)
	if prompt == "" {
		prompt = DefaultPrompt
	}
	text, err := c.GenerateFromFile(ctx, prompt, file)
	if err != nil {
		return "", err
	}
	c.logger.Info("transcription complete",
		logging.String(logging.FieldEventType, "transcription_complete"),
		logging.String("model", c.cfg.Model),
		logging.Int("characters", len(text)),
	)
	return text, nil
}

func (c *Client) cleanup(ctx context.Context, name string) {
	if name == "" {
		return
	}
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := c.DeleteFile(cleanupCtx, name); err != nil {
		logging.WarnWithContext(c.logger, "failed to delete uploaded file", "gemini_cleanup_failed",
			logging.String("file_name", name),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove it manually or let Gemini expire it after 48 hours"),
			logging.String(logging.FieldImpact, "uploaded audio remains in Gemini file storage"),
		)
		return
	}
	c.logger.Debug("uploaded file deleted", logging.String("file_name", name))
}
