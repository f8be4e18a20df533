package media

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"dubsync/internal/logging"
	"dubsync/internal/media/audio"
	"dubsync/internal/media/ffprobe"
	"dubsync/internal/services"
)

// Fixed artifact names inside the output directory.
const (
	OriginalVideoFile = "original_video.mp4"
	OriginalAudioFile = "original_audio.mp3"
	DubbedAudioFile   = "dubbed_audio.mp3"
	DubbedVideoFile   = "dubbed_video.mp4"
)

// Fetched reports the local files produced by a fetch.
type Fetched struct {
	VideoPath string
	AudioPath string
}

// Downloader retrieves a remote video into dir and returns the local path.
type Downloader interface {
	Download(ctx context.Context, url, dir string) (string, error)
}

// AudioExtractor writes one audio stream of videoPath to outputPath. A
// negative audioOrdinal lets the extractor choose.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, videoPath, outputPath string, audioOrdinal int) (string, error)
}

// Inspector verifies a container carries video and audio streams.
type Inspector interface {
	RequireStreams(ctx context.Context, path string) (ffprobe.Result, error)
}

// Fetcher downloads a video, verifies it, and extracts its audio track.
type Fetcher struct {
	downloader Downloader
	extractor  AudioExtractor
	inspector  Inspector
	logger     *slog.Logger
}

// NewFetcher wires the collaborators. inspector may be nil to skip stream checks.
func NewFetcher(downloader Downloader, extractor AudioExtractor, inspector Inspector, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		downloader: downloader,
		extractor:  extractor,
		inspector:  inspector,
		logger:     logging.NewComponentLogger(logger, "fetcher"),
	}
}

// Fetch downloads url into dir and extracts its audio to OriginalAudioFile.
func (f *Fetcher) Fetch(ctx context.Context, url, dir string) (Fetched, error) {
	if f == nil || f.downloader == nil || f.extractor == nil {
		return Fetched{}, services.Wrap(services.ErrConfiguration, "fetcher", "fetch", "downloader and extractor are required", nil)
	}
	if strings.TrimSpace(url) == "" {
		return Fetched{}, services.Wrap(services.ErrValidation, "fetcher", "fetch", "source url is empty", nil)
	}

	videoPath, err := f.downloader.Download(ctx, url, dir)
	if err != nil {
		return Fetched{}, err
	}
	audioOrdinal := -1
	if f.inspector != nil {
		probe, err := f.inspector.RequireStreams(ctx, videoPath)
		if err != nil {
			return Fetched{}, err
		}
		f.logger.Debug("downloaded video inspected",
			logging.String("video_path", videoPath),
			logging.Int("video_streams", probe.VideoStreamCount()),
			logging.Int("audio_streams", probe.AudioStreamCount()),
			logging.Any("duration_seconds", probe.DurationSeconds()),
		)
		selection := audio.SelectSpeech(probe.Streams)
		if selection.Found() {
			audioOrdinal = selection.Ordinal
		}
		if selection.Candidates > 1 {
			f.logger.Info("speech track selected",
				logging.Args(logging.DecisionAttrs("speech_track", selection.Label(), selection.Reason)...)...,
			)
		}
	}

	audioPath, err := f.extractor.ExtractAudio(ctx, videoPath, filepath.Join(dir, OriginalAudioFile), audioOrdinal)
	if err != nil {
		return Fetched{}, err
	}

	f.logger.Info("media fetched",
		logging.String(logging.FieldEventType, "media_fetched"),
		logging.String("video_path", videoPath),
		logging.String("audio_path", audioPath),
	)
	return Fetched{VideoPath: videoPath, AudioPath: audioPath}, nil
}
