// Package ytdlp downloads source videos with the yt-dlp CLI.
package ytdlp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"dubsync/internal/fileutil"
	"dubsync/internal/logging"
	"dubsync/internal/services"
)

// FormatSelector prefers an mp4/m4a pair, then a progressive mp4, then any
// separate streams that can be merged.
const FormatSelector = "bv*[ext=mp4]+ba[ext=m4a]/b[ext=mp4]/bv*+ba/b"

const outputStem = "original_video"

// CommandRunner executes a command and returns an error carrying its output.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Downloader fetches videos into a fixed file name inside the target directory.
type Downloader struct {
	binary string
	logger *slog.Logger
	run    CommandRunner
}

// New constructs a Downloader. A blank binary defaults to "yt-dlp".
func New(binary string, logger *slog.Logger) *Downloader {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "yt-dlp"
	}
	return &Downloader{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "ytdlp"),
		run:    defaultCommandRunner,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (d *Downloader) WithCommandRunner(r CommandRunner) *Downloader {
	if d != nil && r != nil {
		d.run = r
	}
	return d
}

// OutputPath returns where Download leaves the merged container for dir.
func OutputPath(dir string) string {
	return filepath.Join(dir, outputStem+".mp4")
}

// Args returns the yt-dlp arguments used to fetch url into dir.
func Args(url, dir string) []string {
	return []string{
		"--no-playlist",
		"--force-overwrites",
		"-f", FormatSelector,
		"--merge-output-format", "mp4",
		"-o", filepath.Join(dir, outputStem+".%(ext)s"),
		url,
	}
}

// Download fetches url into dir and returns the merged mp4 path.
func (d *Downloader) Download(ctx context.Context, url, dir string) (string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return "", services.Wrap(services.ErrValidation, "ytdlp", "download", "url is empty", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure download directory: %w", err)
	}

	d.logger.Info("downloading video",
		logging.String(logging.FieldEventType, "download_start"),
		logging.String("url", url),
		logging.String("dir", dir),
	)
	if err := d.run(ctx, d.binary, Args(url, dir)...); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "ytdlp", "download", url, err)
	}

	path := OutputPath(dir)
	size, err := fileutil.NonEmptySize(path)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "ytdlp", "download", "yt-dlp did not produce "+filepath.Base(path), err)
	}
	d.logger.Info("video downloaded",
		logging.String(logging.FieldEventType, "download_complete"),
		logging.String("video_path", path),
		logging.Int64("size_bytes", size),
	)
	return path, nil
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, lastLines(string(output), 5))
	}
	return nil
}

// lastLines keeps the tail of noisy tool output for error messages.
func lastLines(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
