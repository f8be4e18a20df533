package preflight

import (
	"context"

	"dubsync/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
	// Optional failures are reported but do not fail the overall check.
	Optional bool `json:"optional,omitempty"`
}

// Options selects which groups of checks RunAll performs.
type Options struct {
	// Offline skips every check that calls a Google API.
	Offline bool
}

// RunAll executes the preflight checks for cfg.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	results = append(results, CheckTools(ctx, cfg)...)

	if opts.Offline {
		return results
	}
	results = append(results, CheckTranscription(ctx, cfg.Gemini))
	results = append(results, CheckLLM(ctx, "Translation LLM", cfg.Translation))
	results = append(results, CheckSpeech(ctx, cfg.TTS))
	return results
}

// AllPassed reports whether every required check passed.
func AllPassed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return false
		}
	}
	return true
}
