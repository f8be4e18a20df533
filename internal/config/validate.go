package config

import (
	"errors"
	"fmt"
	"strings"

	"dubsync/internal/language"
	"dubsync/internal/services"
)

var validVoiceGenders = map[string]struct{}{
	"NEUTRAL": {},
	"MALE":    {},
	"FEMALE":  {},
}

// Validate ensures the configuration is usable. Credential failures are tagged
// with services.ErrConfiguration so callers can abort before any run starts.
func (c *Config) Validate() error {
	if err := c.validateCredentials(); err != nil {
		return err
	}
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateGemini(); err != nil {
		return err
	}
	if err := c.validateTTS(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateCredentials() error {
	missing := make([]string, 0, 3)
	if c.Gemini.APIKey == "" {
		missing = append(missing, "gemini.api_key")
	}
	if c.Translation.APIKey == "" {
		missing = append(missing, "translation.api_key")
	}
	if c.TTS.APIKey == "" {
		missing = append(missing, "tts.api_key")
	}
	if len(missing) == 0 {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("%w: %s required. Set GOOGLE_API_KEY (environment or .env) or edit %s (create with 'dubsync config init')",
		services.ErrConfiguration, strings.Join(missing, ", "), defaultPath)
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateGemini() error {
	if err := ensurePositiveMap(map[string]int{
		"gemini.poll_interval_seconds":     c.Gemini.PollIntervalSeconds,
		"gemini.poll_max_interval_seconds": c.Gemini.PollMaxIntervalSeconds,
		"gemini.poll_timeout_seconds":      c.Gemini.PollTimeoutSeconds,
		"gemini.timeout_seconds":           c.Gemini.TimeoutSeconds,
		"translation.timeout_seconds":      c.Translation.TimeoutSeconds,
		"translation.retry_attempts":       c.Translation.RetryAttempts,
		"tts.timeout_seconds":              c.TTS.TimeoutSeconds,
	}); err != nil {
		return err
	}
	if c.Gemini.PollMaxIntervalSeconds < c.Gemini.PollIntervalSeconds {
		return errors.New("gemini.poll_max_interval_seconds must be >= gemini.poll_interval_seconds")
	}
	if c.Gemini.PollTimeoutSeconds < c.Gemini.PollIntervalSeconds {
		return errors.New("gemini.poll_timeout_seconds must be >= gemini.poll_interval_seconds")
	}
	return nil
}

func (c *Config) validateTTS() error {
	if !language.ValidLocale(c.TTS.DefaultLocale) {
		return fmt.Errorf("tts.default_locale %q is not a valid BCP 47 tag", c.TTS.DefaultLocale)
	}
	if _, ok := validVoiceGenders[c.TTS.VoiceGender]; !ok {
		return fmt.Errorf("tts.voice_gender %q must be one of NEUTRAL, MALE, FEMALE", c.TTS.VoiceGender)
	}
	if c.TTS.SpeakingRate < 0.25 || c.TTS.SpeakingRate > 4.0 {
		return errors.New("tts.speaking_rate must be between 0.25 and 4.0")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
