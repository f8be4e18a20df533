package media

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"dubsync/internal/media/ffprobe"
)

type fakeDownloader struct {
	path string
	err  error
}

func (f fakeDownloader) Download(_ context.Context, _, dir string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if f.path != "" {
		return f.path, nil
	}
	return filepath.Join(dir, OriginalVideoFile), nil
}

type fakeExtractor struct {
	calls    []string
	ordinals []int
	err      error
}

func (f *fakeExtractor) ExtractAudio(_ context.Context, videoPath, outputPath string, audioOrdinal int) (string, error) {
	f.calls = append(f.calls, videoPath+"->"+outputPath)
	f.ordinals = append(f.ordinals, audioOrdinal)
	if f.err != nil {
		return "", f.err
	}
	return outputPath, nil
}

type fakeInspector struct {
	streams []ffprobe.Stream
	err     error
}

func (f fakeInspector) RequireStreams(context.Context, string) (ffprobe.Result, error) {
	streams := f.streams
	if streams == nil {
		streams = []ffprobe.Stream{{CodecType: "video"}, {CodecType: "audio"}}
	}
	return ffprobe.Result{Streams: streams}, f.err
}

func TestFetchReturnsDeterministicPaths(t *testing.T) {
	dir := t.TempDir()
	extractor := &fakeExtractor{}
	fetcher := NewFetcher(fakeDownloader{}, extractor, fakeInspector{}, nil)

	got, err := fetcher.Fetch(context.Background(), "https://example.com/v", dir)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	want := Fetched{
		VideoPath: filepath.Join(dir, OriginalVideoFile),
		AudioPath: filepath.Join(dir, OriginalAudioFile),
	}
	if got != want {
		t.Fatalf("Fetch = %+v, want %+v", got, want)
	}
	if len(extractor.calls) != 1 {
		t.Fatalf("expected one extraction, got %v", extractor.calls)
	}
}

func TestFetchStopsOnFailures(t *testing.T) {
	downloadErr := errors.New("download failed")
	probeErr := errors.New("no audio stream")
	extractErr := errors.New("extract failed")

	tests := []struct {
		name        string
		downloader  fakeDownloader
		inspector   Inspector
		extractErr  error
		wantErr     error
		wantExtract int
	}{
		{"download", fakeDownloader{err: downloadErr}, fakeInspector{}, nil, downloadErr, 0},
		{"inspect", fakeDownloader{}, fakeInspector{err: probeErr}, nil, probeErr, 0},
		{"extract", fakeDownloader{}, nil, extractErr, extractErr, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extractor := &fakeExtractor{err: tt.extractErr}
			fetcher := NewFetcher(tt.downloader, extractor, tt.inspector, nil)
			got, err := fetcher.Fetch(context.Background(), "https://example.com/v", t.TempDir())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if got != (Fetched{}) {
				t.Fatalf("expected empty result on failure, got %+v", got)
			}
			if len(extractor.calls) != tt.wantExtract {
				t.Fatalf("expected %d extractions, got %d", tt.wantExtract, len(extractor.calls))
			}
		})
	}
}

func TestFetchRequiresCollaborators(t *testing.T) {
	fetcher := NewFetcher(nil, nil, nil, nil)
	if _, err := fetcher.Fetch(context.Background(), "https://example.com/v", t.TempDir()); err == nil {
		t.Fatal("expected configuration error")
	}
}

func TestFetchExtractsSelectedSpeechStream(t *testing.T) {
	extractor := &fakeExtractor{}
	inspector := fakeInspector{streams: []ffprobe.Stream{
		{Index: 0, CodecType: "video"},
		{Index: 1, CodecType: "audio", Channels: 2, Tags: map[string]string{"title": "Commentary"}},
		{Index: 2, CodecType: "audio", Channels: 2},
	}}
	fetcher := NewFetcher(fakeDownloader{}, extractor, inspector, nil)

	if _, err := fetcher.Fetch(context.Background(), "https://example.com/v", t.TempDir()); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(extractor.ordinals) != 1 || extractor.ordinals[0] != 1 {
		t.Fatalf("expected second audio stream to be extracted, got %v", extractor.ordinals)
	}
}

func TestFetchWithoutInspectorLetsExtractorChoose(t *testing.T) {
	extractor := &fakeExtractor{}
	fetcher := NewFetcher(fakeDownloader{}, extractor, nil, nil)

	if _, err := fetcher.Fetch(context.Background(), "https://example.com/v", t.TempDir()); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if extractor.ordinals[0] != -1 {
		t.Fatalf("expected -1 without inspection, got %d", extractor.ordinals[0])
	}
}
