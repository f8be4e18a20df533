package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"dubsync/internal/config"
	"dubsync/internal/media"
	"dubsync/internal/media/ffmpeg"
	"dubsync/internal/media/ffprobe"
	"dubsync/internal/media/ytdlp"
	"dubsync/internal/pipeline"
	"dubsync/internal/runlock"
	"dubsync/internal/services/gemini"
	"dubsync/internal/services/llm"
	"dubsync/internal/services/tts"
	"dubsync/internal/stages"
)

// exitStateError is the status used when the final state carries an error.
const exitStateError = 2

type pipelineRunner interface {
	Run(ctx context.Context, sourceURL, targetLanguage string) (pipeline.State, error)
}

type runnerFactory func(cfg *config.Config, logger *slog.Logger) (pipelineRunner, error)

type runOutputOptions struct {
	format         string
	showTranscript bool
}

func runPipeline(cmd *cobra.Command, ctx *commandContext, url, targetLanguage string, opts runOutputOptions) error {
	format := strings.ToLower(strings.TrimSpace(opts.format))
	if format != "json" && format != "table" {
		return fmt.Errorf("unsupported output format %q (want json or table)", opts.format)
	}

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	runner, err := ctx.newRunner(cfg, logger)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	state, err := runner.Run(signalCtx, url, targetLanguage)
	if err != nil {
		return err
	}

	if format == "table" {
		fmt.Fprintln(cmd.OutOrStdout(), renderState(state))
	} else if err := writeJSON(cmd, state); err != nil {
		return err
	}

	if state.Failed() {
		return &exitError{code: exitStateError}
	}
	if opts.showTranscript && state.Transcription != "" {
		errOut := cmd.ErrOrStderr()
		fmt.Fprintln(errOut, "Transcription:")
		fmt.Fprintln(errOut, state.Transcription)
	}
	return nil
}

// buildRunner wires the production collaborators from cfg.
func buildRunner(cfg *config.Config, logger *slog.Logger) (pipelineRunner, error) {
	prober := ffprobe.NewProber(cfg.Tools.FFprobe)
	tool := ffmpeg.New(cfg.Tools.FFmpeg, prober, logger)
	fetcher := media.NewFetcher(ytdlp.New(cfg.Tools.YTDLP, logger), tool, prober, logger)

	interval, maxInterval, timeout := cfg.PollSettings()
	transcriber := gemini.NewClient(gemini.Config{
		APIKey:          cfg.Gemini.APIKey,
		BaseURL:         cfg.Gemini.BaseURL,
		Model:           cfg.Gemini.TranscriptionModel,
		Prompt:          cfg.Gemini.TranscriptionPrompt,
		PollInterval:    interval,
		PollMaxInterval: maxInterval,
		PollTimeout:     timeout,
		TimeoutSeconds:  cfg.Gemini.TimeoutSeconds,
	}, logger)

	translator := llm.NewClient(llm.Config{
		APIKey:         cfg.Translation.APIKey,
		BaseURL:        cfg.Translation.BaseURL,
		Model:          cfg.Translation.Model,
		TimeoutSeconds: cfg.Translation.TimeoutSeconds,
	}, llm.WithRetryMaxAttempts(cfg.Translation.RetryAttempts))

	synthesizer := tts.NewClient(tts.Config{
		APIKey:         cfg.TTS.APIKey,
		BaseURL:        cfg.TTS.BaseURL,
		VoiceGender:    cfg.TTS.VoiceGender,
		SpeakingRate:   cfg.TTS.SpeakingRate,
		TimeoutSeconds: cfg.TTS.TimeoutSeconds,
	}, logger)

	runner, err := pipeline.NewRunner(pipeline.Options{
		Stages: stages.New(stages.Options{
			OutputDir:     cfg.Paths.OutputDir,
			DefaultLocale: cfg.TTS.DefaultLocale,
			Logger:        logger,
			Fetcher:       fetcher,
			Transcriber:   transcriber,
			Translator:    translator,
			Synthesizer:   synthesizer,
			Muxer:         tool,
		}),
		OutputDir: cfg.Paths.OutputDir,
		Logger:    logger,
		Lock:      runlock.Dir,
	})
	if err != nil {
		return nil, err
	}
	return runner, nil
}
