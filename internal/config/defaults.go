package config

const (
	defaultConfigPath             = "~/.config/dubsync/config.toml"
	defaultOutputDir              = "output"
	defaultLogDir                 = "~/.local/share/dubsync/logs"
	defaultGeminiBaseURL          = "https://generativelanguage.googleapis.com"
	defaultTranscriptionModel     = "gemini-1.5-pro-latest"
	defaultTranscriptionPrompt    = "Provide a full and accurate transcription of this audio file. Only output the transcribed text."
	defaultPollIntervalSeconds    = 2
	defaultPollMaxIntervalSeconds = 15
	defaultPollTimeoutSeconds     = 600
	defaultGeminiTimeoutSeconds   = 300
	defaultTranslationBaseURL     = "https://generativelanguage.googleapis.com/v1beta/openai/chat/completions"
	defaultTranslationModel       = "gemini-2.0-flash"
	defaultTranslationTimeout     = 120
	defaultTranslationRetries     = 1
	defaultTTSBaseURL             = "https://texttospeech.googleapis.com"
	defaultTTSLocale              = "tr-TR"
	defaultTTSVoiceGender         = "NEUTRAL"
	defaultTTSSpeakingRate        = 1.0
	defaultTTSTimeoutSeconds      = 120
	defaultYTDLPBinary            = "yt-dlp"
	defaultFFmpegBinary           = "ffmpeg"
	defaultFFprobeBinary          = "ffprobe"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Gemini: Gemini{
			BaseURL:                defaultGeminiBaseURL,
			TranscriptionModel:     defaultTranscriptionModel,
			TranscriptionPrompt:    defaultTranscriptionPrompt,
			PollIntervalSeconds:    defaultPollIntervalSeconds,
			PollMaxIntervalSeconds: defaultPollMaxIntervalSeconds,
			PollTimeoutSeconds:     defaultPollTimeoutSeconds,
			TimeoutSeconds:         defaultGeminiTimeoutSeconds,
		},
		Translation: Translation{
			BaseURL:        defaultTranslationBaseURL,
			Model:          defaultTranslationModel,
			TimeoutSeconds: defaultTranslationTimeout,
			RetryAttempts:  defaultTranslationRetries,
		},
		TTS: TTS{
			BaseURL:        defaultTTSBaseURL,
			DefaultLocale:  defaultTTSLocale,
			VoiceGender:    defaultTTSVoiceGender,
			SpeakingRate:   defaultTTSSpeakingRate,
			TimeoutSeconds: defaultTTSTimeoutSeconds,
		},
		Tools: Tools{
			YTDLP:   defaultYTDLPBinary,
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
