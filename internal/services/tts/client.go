package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"dubsync/internal/fileutil"
	"dubsync/internal/logging"
	"dubsync/internal/services"
)

const (
	// DefaultBaseURL is the public Cloud Text-to-Speech host.
	DefaultBaseURL = "https://texttospeech.googleapis.com"

	defaultHTTPTimeout = 120 * time.Second
)

// Config captures the synthesis settings.
type Config struct {
	APIKey         string
	BaseURL        string
	VoiceGender    string
	SpeakingRate   float64
	TimeoutSeconds int
	// MaxChunkBytes bounds each request's input text; 0 uses DefaultMaxChunkBytes.
	MaxChunkBytes int
}

// Client calls the text:synthesize endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a synthesis client.
func NewClient(cfg Config, logger *slog.Logger, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.VoiceGender = strings.ToUpper(strings.TrimSpace(cfg.VoiceGender))
	if cfg.VoiceGender == "" {
		cfg.VoiceGender = "NEUTRAL"
	}
	if cfg.SpeakingRate <= 0 {
		cfg.SpeakingRate = 1.0
	}
	if cfg.MaxChunkBytes <= 0 {
		cfg.MaxChunkBytes = DefaultMaxChunkBytes
	}
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger(logger, "tts"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type synthesizeRequest struct {
	Input       synthesisInput `json:"input"`
	Voice       voiceParams    `json:"voice"`
	AudioConfig audioConfig    `json:"audioConfig"`
}

type synthesisInput struct {
	Text string `json:"text"`
}

type voiceParams struct {
	LanguageCode string `json:"languageCode"`
	SSMLGender   string `json:"ssmlGender,omitempty"`
}

type audioConfig struct {
	AudioEncoding string  `json:"audioEncoding"`
	SpeakingRate  float64 `json:"speakingRate,omitempty"`
}

type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Synthesize speaks text in localeCode and writes MP3 audio to outputPath.
func (c *Client) Synthesize(ctx context.Context, text, localeCode, outputPath string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrConfiguration, "tts", "synthesize", "api key required", nil)
	}
	localeCode = strings.TrimSpace(localeCode)
	if localeCode == "" {
		return "", services.Wrap(services.ErrValidation, "tts", "synthesize", "locale code is empty", nil)
	}
	chunks := SplitText(text, c.cfg.MaxChunkBytes)
	if len(chunks) == 0 {
		return "", services.Wrap(services.ErrValidation, "tts", "synthesize", "text is empty", nil)
	}

	var audio bytes.Buffer
	for i, chunk := range chunks {
		data, err := c.synthesizeChunk(ctx, chunk, localeCode)
		if err != nil {
			return "", services.Wrap(services.ErrExternalTool, "tts", "synthesize",
				fmt.Sprintf("chunk %d/%d", i+1, len(chunks)), err)
		}
		audio.Write(data)
	}

	if err := fileutil.WriteAtomic(outputPath, audio.Bytes()); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "tts", "write audio", outputPath, err)
	}
	c.logger.Info("speech synthesized",
		logging.String(logging.FieldEventType, "tts_complete"),
		logging.String("locale", localeCode),
		logging.Int("chunks", len(chunks)),
		logging.Int("audio_bytes", audio.Len()),
		logging.String("audio_path", outputPath),
	)
	return outputPath, nil
}

func (c *Client) synthesizeChunk(ctx context.Context, text, localeCode string) ([]byte, error) {
	payload := synthesizeRequest{
		Input: synthesisInput{Text: text},
		Voice: voiceParams{LanguageCode: localeCode, SSMLGender: c.cfg.VoiceGender},
		AudioConfig: audioConfig{
			AudioEncoding: "MP3",
			SpeakingRate:  c.cfg.SpeakingRate,
		},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/text:synthesize", bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http error (timeout=%s): %w", c.httpClient.Timeout, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, errorMessage(body))
	}

	var decoded synthesizeResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	audio, err := base64.StdEncoding.DecodeString(decoded.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("decode audio content: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty audio content")
	}
	return audio, nil
}
