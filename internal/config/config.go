package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Gemini contains configuration for the Gemini transcription backend.
type Gemini struct {
	APIKey                 string `toml:"api_key"`
	BaseURL                string `toml:"base_url"`
	TranscriptionModel     string `toml:"transcription_model"`
	TranscriptionPrompt    string `toml:"transcription_prompt"`
	PollIntervalSeconds    int    `toml:"poll_interval_seconds"`
	PollMaxIntervalSeconds int    `toml:"poll_max_interval_seconds"`
	PollTimeoutSeconds     int    `toml:"poll_timeout_seconds"`
	TimeoutSeconds         int    `toml:"timeout_seconds"`
}

// Translation contains the chat completion settings used for translation.
type Translation struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	RetryAttempts  int    `toml:"retry_attempts"`
}

// TTS contains configuration for Google Cloud Text-to-Speech.
type TTS struct {
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	DefaultLocale  string  `toml:"default_locale"`
	VoiceGender    string  `toml:"voice_gender"`
	SpeakingRate   float64 `toml:"speaking_rate"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
}

// Tools contains external binary names or paths.
type Tools struct {
	YTDLP   string `toml:"ytdlp"`
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for dubsync.
//
// Configuration sections by subsystem:
//   - Paths: output and log directories
//   - Gemini: speech-to-text upload, readiness polling and model
//   - Translation: OpenAI-compatible chat completion endpoint
//   - TTS: speech synthesis endpoint and default locale
//   - Tools: yt-dlp, ffmpeg and ffprobe binaries
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Gemini      Gemini      `toml:"gemini"`
	Translation Translation `toml:"translation"`
	TTS         TTS         `toml:"tts"`
	Tools       Tools       `toml:"tools"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and credentials resolved from the environment.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("dubsync.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// PollSettings returns the Gemini readiness polling schedule as durations.
func (c *Config) PollSettings() (interval, maxInterval, timeout time.Duration) {
	return seconds(c.Gemini.PollIntervalSeconds),
		seconds(c.Gemini.PollMaxIntervalSeconds),
		seconds(c.Gemini.PollTimeoutSeconds)
}

func seconds(value int) time.Duration {
	return time.Duration(value) * time.Second
}
