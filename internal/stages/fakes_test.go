package stages

import (
	"context"
	"path/filepath"

	"dubsync/internal/media"
)

type fakeFetcher struct {
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string, dir string) (media.Fetched, error) {
	f.calls++
	if f.err != nil {
		return media.Fetched{}, f.err
	}
	return media.Fetched{
		VideoPath: filepath.Join(dir, media.OriginalVideoFile),
		AudioPath: filepath.Join(dir, media.OriginalAudioFile),
	}, nil
}

type fakeTranscriber struct {
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(context.Context, string) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeTranslator struct {
	err      error
	calls    int
	language string
}

func (f *fakeTranslator) Translate(_ context.Context, text, target string) (string, error) {
	f.calls++
	f.language = target
	if f.err != nil {
		return "", f.err
	}
	return "[" + target + "] " + text, nil
}

type fakeSynthesizer struct {
	err    error
	calls  int
	locale string
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, _, locale, outputPath string) (string, error) {
	f.calls++
	f.locale = locale
	if f.err != nil {
		return "", f.err
	}
	return outputPath, nil
}

type fakeMuxer struct {
	err   error
	calls int
}

func (f *fakeMuxer) Combine(_ context.Context, _, _, outputPath string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return outputPath, nil
}
