package preflight

import (
	"context"
	"fmt"

	"dubsync/internal/config"
	"dubsync/internal/deps"
)

// CheckTools reports the availability and version of each configured media
// tool. Both "dubsync check" and the run command's startup warning use it.
func CheckTools(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	statuses := deps.CheckWithVersions(ctx, deps.Requirements(cfg.Tools))
	results := make([]Result, 0, len(statuses))
	for _, status := range statuses {
		results = append(results, toolResult(status))
	}
	return results
}

func toolResult(status deps.Status) Result {
	result := Result{Name: status.Name, Passed: status.Available, Optional: status.Optional}
	switch {
	case !status.Available:
		result.Detail = status.Detail
	case status.Version != "":
		result.Detail = fmt.Sprintf("%s (%s)", status.Path, status.Version)
	case status.Detail != "":
		result.Detail = fmt.Sprintf("%s (%s)", status.Path, status.Detail)
	default:
		result.Detail = status.Path
	}
	return result
}
