package stages

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"dubsync/internal/language"
	"dubsync/internal/logging"
	"dubsync/internal/media"
	"dubsync/internal/pipeline"
)

// MediaFetcher downloads a source video and extracts its audio into dir.
type MediaFetcher interface {
	Fetch(ctx context.Context, url, dir string) (media.Fetched, error)
}

// Transcriber converts an audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Translator renders text in the named target language.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// Synthesizer speaks text in the given locale and writes audio to outputPath.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, localeCode, outputPath string) (string, error)
}

// Muxer replaces the audio track of a video.
type Muxer interface {
	Combine(ctx context.Context, videoPath, audioPath, outputPath string) (string, error)
}

// Options carries collaborators and placement settings for New.
type Options struct {
	OutputDir     string
	DefaultLocale string
	Logger        *slog.Logger

	Fetcher     MediaFetcher
	Transcriber Transcriber
	Translator  Translator
	Synthesizer Synthesizer
	Muxer       Muxer
}

// New returns the five stages in execution order.
func New(opts Options) []pipeline.Stage {
	return []pipeline.Stage{
		FetchMedia(opts.Fetcher, opts.OutputDir),
		Transcribe(opts.Transcriber),
		Translate(opts.Translator),
		Synthesize(opts.Synthesizer, opts.OutputDir, opts.DefaultLocale, opts.Logger),
		Mux(opts.Muxer, opts.OutputDir),
	}
}

// FetchMedia downloads the source video and extracts its audio track.
func FetchMedia(fetcher MediaFetcher, dir string) pipeline.Step {
	step := pipeline.Step{
		Name:     pipeline.StageFetchMedia,
		Requires: []pipeline.Field{pipeline.FieldSourceURL},
		Produces: []pipeline.Field{pipeline.FieldOriginalVideoPath, pipeline.FieldOriginalAudioPath},
	}
	if fetcher == nil {
		return step
	}
	step.Do = func(ctx context.Context, state pipeline.State) (pipeline.State, error) {
		fetched, err := fetcher.Fetch(ctx, state.SourceURL, dir)
		if err != nil {
			return state, err
		}
		if err := requireResult(step.Name, "video path", fetched.VideoPath); err != nil {
			return state, err
		}
		if err := requireResult(step.Name, "audio path", fetched.AudioPath); err != nil {
			return state, err
		}
		state.OriginalVideoPath = fetched.VideoPath
		state.OriginalAudioPath = fetched.AudioPath
		return state, nil
	}
	return step
}

// Transcribe turns the extracted audio into source-language text.
func Transcribe(transcriber Transcriber) pipeline.Step {
	step := pipeline.Step{
		Name:     pipeline.StageTranscribe,
		Requires: []pipeline.Field{pipeline.FieldOriginalAudioPath},
		Produces: []pipeline.Field{pipeline.FieldTranscription},
	}
	if transcriber == nil {
		return step
	}
	step.Do = func(ctx context.Context, state pipeline.State) (pipeline.State, error) {
		text, err := transcriber.Transcribe(ctx, state.OriginalAudioPath)
		if err != nil {
			return state, err
		}
		if err := requireResult(step.Name, "transcript", text); err != nil {
			return state, err
		}
		state.Transcription = text
		return state, nil
	}
	return step
}

// Translate renders the transcript in the target language. Table languages
// reach the translator by display name; anything else is passed as typed.
func Translate(translator Translator) pipeline.Step {
	step := pipeline.Step{
		Name:     pipeline.StageTranslate,
		Requires: []pipeline.Field{pipeline.FieldTranscription, pipeline.FieldTargetLanguage},
		Produces: []pipeline.Field{pipeline.FieldTranslatedText},
	}
	if translator == nil {
		return step
	}
	step.Do = func(ctx context.Context, state pipeline.State) (pipeline.State, error) {
		text, err := translator.Translate(ctx, state.Transcription, language.HumanName(state.TargetLanguage))
		if err != nil {
			return state, err
		}
		if err := requireResult(step.Name, "translation", text); err != nil {
			return state, err
		}
		state.TranslatedText = text
		return state, nil
	}
	return step
}

// Synthesize speaks the translated text. Target languages missing from the
// locale table fall back to defaultLocale instead of failing.
func Synthesize(synth Synthesizer, dir, defaultLocale string, logger *slog.Logger) pipeline.Step {
	step := pipeline.Step{
		Name:     pipeline.StageSynthesize,
		Requires: []pipeline.Field{pipeline.FieldTranslatedText, pipeline.FieldTargetLanguage},
		Produces: []pipeline.Field{pipeline.FieldDubbedAudioPath},
	}
	if synth == nil {
		return step
	}
	logger = logging.NewComponentLogger(logger, "stages")
	step.Do = func(ctx context.Context, state pipeline.State) (pipeline.State, error) {
		locale, matched := language.Locale(state.TargetLanguage, defaultLocale)
		if !matched {
			attrs := logging.DecisionAttrs("locale_fallback", locale, "target language not in locale table")
			attrs = append(attrs, logging.String("target_language", state.TargetLanguage))
			logging.WarnWithContext(logging.WithContext(ctx, logger), "using default speech locale", "locale_fallback", attrs...)
		}
		path, err := synth.Synthesize(ctx, state.TranslatedText, locale, filepath.Join(dir, media.DubbedAudioFile))
		if err != nil {
			return state, err
		}
		if err := requireResult(step.Name, "audio path", path); err != nil {
			return state, err
		}
		state.DubbedAudioPath = path
		return state, nil
	}
	return step
}

// Mux replaces the original soundtrack with the dubbed audio.
func Mux(muxer Muxer, dir string) pipeline.Step {
	step := pipeline.Step{
		Name:     pipeline.StageMux,
		Requires: []pipeline.Field{pipeline.FieldOriginalVideoPath, pipeline.FieldDubbedAudioPath},
		Produces: []pipeline.Field{pipeline.FieldFinalVideoPath},
	}
	if muxer == nil {
		return step
	}
	step.Do = func(ctx context.Context, state pipeline.State) (pipeline.State, error) {
		path, err := muxer.Combine(ctx, state.OriginalVideoPath, state.DubbedAudioPath, filepath.Join(dir, media.DubbedVideoFile))
		if err != nil {
			return state, err
		}
		if err := requireResult(step.Name, "video path", path); err != nil {
			return state, err
		}
		state.FinalVideoPath = path
		return state, nil
	}
	return step
}

func requireResult(stage, what, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s: collaborator returned an empty %s", stage, what)
	}
	return nil
}
