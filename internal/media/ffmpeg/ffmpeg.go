// Package ffmpeg extracts audio tracks and replaces the audio of a video using
// the ffmpeg CLI.
package ffmpeg

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"dubsync/internal/fileutil"
	"dubsync/internal/logging"
	"dubsync/internal/media/ffprobe"
	"dubsync/internal/services"
)

// CommandRunner executes a command and returns an error carrying its output.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Inspector verifies a container carries video and audio streams.
type Inspector interface {
	RequireStreams(ctx context.Context, path string) (ffprobe.Result, error)
}

// Tool runs ffmpeg for extraction and muxing.
type Tool struct {
	binary    string
	inspector Inspector
	logger    *slog.Logger
	run       CommandRunner
}

// New constructs a Tool. A blank binary defaults to "ffmpeg"; inspector may be
// nil to skip output verification.
func New(binary string, inspector Inspector, logger *slog.Logger) *Tool {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Tool{
		binary:    binary,
		inspector: inspector,
		logger:    logging.NewComponentLogger(logger, "ffmpeg"),
		run:       defaultCommandRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (t *Tool) WithCommandRunner(r CommandRunner) *Tool {
	if t != nil && r != nil {
		t.run = r
	}
	return t
}

// ExtractArgs builds the audio extraction command: drop video, subtitle and
// data streams and encode VBR MP3. A non-negative audioOrdinal maps that audio
// stream explicitly; otherwise ffmpeg picks one.
func ExtractArgs(videoPath, outputPath string, audioOrdinal int) []string {
	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", videoPath,
	}
	if audioOrdinal >= 0 {
		args = append(args, "-map", fmt.Sprintf("0:a:%d", audioOrdinal))
	}
	return append(args,
		"-vn", "-sn", "-dn",
		"-c:a", "libmp3lame", "-q:a", "2",
		outputPath,
	)
}

// MuxArgs builds the audio replacement command. The video stream is copied and
// the first audio stream of audioPath becomes the only audio track.
func MuxArgs(videoPath, audioPath, outputPath string) []string {
	return []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-f", "mp4",
		outputPath,
	}
}

// ExtractAudio writes one audio stream of videoPath to outputPath as MP3.
// audioOrdinal selects the stream as in ExtractArgs.
func (t *Tool) ExtractAudio(ctx context.Context, videoPath, outputPath string, audioOrdinal int) (string, error) {
	if err := fileutil.RequireFile(videoPath); err != nil {
		return "", services.Wrap(services.ErrValidation, "ffmpeg", "extract audio", "source video", err)
	}
	tmpPath := fileutil.TempSibling(outputPath)
	if err := t.run(ctx, t.binary, ExtractArgs(videoPath, tmpPath, audioOrdinal)...); err != nil {
		_ = os.Remove(tmpPath)
		return "", services.Wrap(services.ErrExternalTool, "ffmpeg", "extract audio", videoPath, err)
	}
	if err := fileutil.Promote(tmpPath, outputPath); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "ffmpeg", "extract audio", "finalize output", err)
	}
	t.logger.Info("audio extracted",
		logging.String(logging.FieldEventType, "audio_extracted"),
		logging.String("video_path", videoPath),
		logging.String("audio_path", outputPath),
		logging.Int("audio_stream", audioOrdinal),
	)
	return outputPath, nil
}

// Combine replaces the audio track of videoPath with audioPath and writes the
// result to outputPath. Timing is left untouched; the output runs as long as
// the longer input.
func (t *Tool) Combine(ctx context.Context, videoPath, audioPath, outputPath string) (string, error) {
	if err := fileutil.RequireFile(videoPath); err != nil {
		return "", services.Wrap(services.ErrValidation, "ffmpeg", "mux", "source video", err)
	}
	if err := fileutil.RequireFile(audioPath); err != nil {
		return "", services.Wrap(services.ErrValidation, "ffmpeg", "mux", "dubbed audio", err)
	}

	tmpPath := fileutil.TempSibling(outputPath)
	t.logger.Debug("executing ffmpeg mux",
		logging.String("video_path", videoPath),
		logging.String("audio_path", audioPath),
		logging.String("output_path", outputPath),
	)
	if err := t.run(ctx, t.binary, MuxArgs(videoPath, audioPath, tmpPath)...); err != nil {
		_ = os.Remove(tmpPath)
		return "", services.Wrap(services.ErrExternalTool, "ffmpeg", "mux", outputPath, err)
	}
	if t.inspector != nil {
		if _, err := t.inspector.RequireStreams(ctx, tmpPath); err != nil {
			_ = os.Remove(tmpPath)
			return "", err
		}
	}
	if err := fileutil.Promote(tmpPath, outputPath); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "ffmpeg", "mux", "finalize output", err)
	}
	t.logger.Info("audio track replaced",
		logging.String(logging.FieldEventType, "mux_complete"),
		logging.String("output_path", outputPath),
	)
	return outputPath, nil
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
