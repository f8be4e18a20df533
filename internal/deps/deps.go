// Package deps checks that the external media tools dubsync shells out to are
// installed.
package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"dubsync/internal/config"
)

// Requirement defines an external dependency dubsync relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	// VersionArgs prints the tool version; empty skips the probe.
	VersionArgs []string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Path        string
	Description string
	Version     string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the binaries configured in tools.
func Requirements(tools config.Tools) []Requirement {
	return []Requirement{
		{Name: "yt-dlp", Command: tools.YTDLP, Description: "Downloads the source video", VersionArgs: []string{"--version"}},
		{Name: "FFmpeg", Command: tools.FFmpeg, Description: "Extracts audio and muxes the dubbed track", VersionArgs: []string{"-version"}},
		{Name: "FFprobe", Command: tools.FFprobe, Description: "Verifies downloaded and muxed streams", VersionArgs: []string{"-version"}},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Path = path
		status.Available = true
		results = append(results, status)
	}
	return results
}

// CheckWithVersions runs CheckBinaries and then asks each available tool for
// its version. Version probe failures are recorded in Detail but do not mark
// the tool unavailable.
func CheckWithVersions(ctx context.Context, requirements []Requirement) []Status {
	results := CheckBinaries(requirements)
	for i := range results {
		if !results[i].Available || len(requirements[i].VersionArgs) == 0 {
			continue
		}
		version, err := probeVersion(ctx, results[i].Path, requirements[i].VersionArgs)
		if err != nil {
			results[i].Detail = "version probe failed: " + err.Error()
			continue
		}
		results[i].Version = version
	}
	return results
}

const versionTimeout = 10 * time.Second

func probeVersion(ctx context.Context, path string, args []string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()
	output, err := exec.CommandContext(ctx, path, args...).Output()
	if err != nil {
		return "", err
	}
	return firstLine(string(output)), nil
}

// firstLine returns the first non-blank line of tool output, trimmed for
// display ("ffmpeg version 6.1 Copyright ..." becomes "ffmpeg version 6.1").
func firstLine(output string) string {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if idx := strings.Index(line, " Copyright"); idx > 0 {
			line = line[:idx]
		}
		return line
	}
	return ""
}
