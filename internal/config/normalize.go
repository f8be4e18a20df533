package config

import (
	"fmt"
	"os"
	"strings"
)

// Credential environment variables, checked in order.
var credentialEnvVars = []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	credential := lookupCredential()
	c.normalizeGemini(credential)
	c.normalizeTranslation(credential)
	c.normalizeTTS(credential)
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func lookupCredential() string {
	for _, key := range credentialEnvVars {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeGemini(credential string) {
	c.Gemini.APIKey = strings.TrimSpace(c.Gemini.APIKey)
	if c.Gemini.APIKey == "" {
		c.Gemini.APIKey = credential
	}
	c.Gemini.BaseURL = strings.TrimRight(strings.TrimSpace(c.Gemini.BaseURL), "/")
	if c.Gemini.BaseURL == "" {
		c.Gemini.BaseURL = defaultGeminiBaseURL
	}
	c.Gemini.TranscriptionModel = strings.TrimSpace(c.Gemini.TranscriptionModel)
	if c.Gemini.TranscriptionModel == "" {
		c.Gemini.TranscriptionModel = defaultTranscriptionModel
	}
	c.Gemini.TranscriptionPrompt = strings.TrimSpace(c.Gemini.TranscriptionPrompt)
	if c.Gemini.TranscriptionPrompt == "" {
		c.Gemini.TranscriptionPrompt = defaultTranscriptionPrompt
	}
	if c.Gemini.PollIntervalSeconds <= 0 {
		c.Gemini.PollIntervalSeconds = defaultPollIntervalSeconds
	}
	if c.Gemini.PollMaxIntervalSeconds <= 0 {
		c.Gemini.PollMaxIntervalSeconds = defaultPollMaxIntervalSeconds
	}
	if c.Gemini.PollTimeoutSeconds <= 0 {
		c.Gemini.PollTimeoutSeconds = defaultPollTimeoutSeconds
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		c.Gemini.TimeoutSeconds = defaultGeminiTimeoutSeconds
	}
}

func (c *Config) normalizeTranslation(credential string) {
	c.Translation.APIKey = strings.TrimSpace(c.Translation.APIKey)
	if c.Translation.APIKey == "" {
		c.Translation.APIKey = credential
	}
	c.Translation.BaseURL = strings.TrimSpace(c.Translation.BaseURL)
	if c.Translation.BaseURL == "" {
		c.Translation.BaseURL = defaultTranslationBaseURL
	}
	c.Translation.Model = strings.TrimSpace(c.Translation.Model)
	if c.Translation.Model == "" {
		c.Translation.Model = defaultTranslationModel
	}
	if c.Translation.TimeoutSeconds <= 0 {
		c.Translation.TimeoutSeconds = defaultTranslationTimeout
	}
	if c.Translation.RetryAttempts <= 0 {
		c.Translation.RetryAttempts = defaultTranslationRetries
	}
}

func (c *Config) normalizeTTS(credential string) {
	c.TTS.APIKey = strings.TrimSpace(c.TTS.APIKey)
	if c.TTS.APIKey == "" {
		c.TTS.APIKey = credential
	}
	c.TTS.BaseURL = strings.TrimRight(strings.TrimSpace(c.TTS.BaseURL), "/")
	if c.TTS.BaseURL == "" {
		c.TTS.BaseURL = defaultTTSBaseURL
	}
	c.TTS.DefaultLocale = strings.TrimSpace(c.TTS.DefaultLocale)
	if c.TTS.DefaultLocale == "" {
		c.TTS.DefaultLocale = defaultTTSLocale
	}
	c.TTS.VoiceGender = strings.ToUpper(strings.TrimSpace(c.TTS.VoiceGender))
	if c.TTS.VoiceGender == "" {
		c.TTS.VoiceGender = defaultTTSVoiceGender
	}
	if c.TTS.SpeakingRate == 0 {
		c.TTS.SpeakingRate = defaultTTSSpeakingRate
	}
	if c.TTS.TimeoutSeconds <= 0 {
		c.TTS.TimeoutSeconds = defaultTTSTimeoutSeconds
	}
}

func (c *Config) normalizeTools() {
	c.Tools.YTDLP = strings.TrimSpace(c.Tools.YTDLP)
	if c.Tools.YTDLP == "" {
		c.Tools.YTDLP = defaultYTDLPBinary
	}
	c.Tools.FFmpeg = strings.TrimSpace(c.Tools.FFmpeg)
	if c.Tools.FFmpeg == "" {
		c.Tools.FFmpeg = defaultFFmpegBinary
	}
	c.Tools.FFprobe = strings.TrimSpace(c.Tools.FFprobe)
	if c.Tools.FFprobe == "" {
		c.Tools.FFprobe = defaultFFprobeBinary
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
