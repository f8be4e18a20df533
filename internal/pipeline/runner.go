package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"dubsync/internal/logging"
	"dubsync/internal/services"
)

// LockFunc acquires an exclusive hold on the output directory and returns the
// function that releases it.
type LockFunc func(dir string) (release func() error, err error)

// Options configures a Runner.
type Options struct {
	Stages    []Stage
	OutputDir string
	Logger    *slog.Logger
	Lock      LockFunc
	NewRunID  func() string
}

// outputDeclarer is implemented by stages that declare the fields they write.
type outputDeclarer interface {
	OutputFields() []Field
}

// Runner executes the fixed stage sequence against one state per run.
type Runner struct {
	stages    []Stage
	outputDir string
	logger    *slog.Logger
	lock      LockFunc
	newRunID  func() string
}

// NewRunner validates opts and returns a Runner.
func NewRunner(opts Options) (*Runner, error) {
	if strings.TrimSpace(opts.OutputDir) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init", "output directory is required", nil)
	}
	if len(opts.Stages) != len(StageOrder) {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init",
			fmt.Sprintf("expected %d stages, got %d", len(StageOrder), len(opts.Stages)), nil)
	}
	for i, stage := range opts.Stages {
		if stage == nil {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init",
				fmt.Sprintf("stage %q is not configured", StageOrder[i]), nil)
		}
		if stage.StageName() != StageOrder[i] {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "init",
				fmt.Sprintf("stage %d is %q, want %q", i+1, stage.StageName(), StageOrder[i]), nil)
		}
	}
	newRunID := opts.NewRunID
	if newRunID == nil {
		newRunID = func() string { return uuid.NewString() }
	}
	return &Runner{
		stages:    append([]Stage(nil), opts.Stages...),
		outputDir: opts.OutputDir,
		logger:    logging.NewComponentLogger(opts.Logger, "pipeline"),
		lock:      opts.Lock,
		newRunID:  newRunID,
	}, nil
}

// Run executes every stage in order and returns the final state. The error
// return is non-nil only when no stage ran: blank inputs, an output directory
// that cannot be created, or a lock held by another process.
func (r *Runner) Run(ctx context.Context, sourceURL, targetLanguage string) (State, error) {
	state := NewState(sourceURL, targetLanguage)
	if missing := state.Missing(FieldSourceURL, FieldTargetLanguage); len(missing) > 0 {
		return state, services.Wrap(services.ErrValidation, "pipeline", "run",
			strings.Join(missing, ", ")+" required", nil)
	}
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return state, services.Wrap(services.ErrConfiguration, "pipeline", "run", "create output directory", err)
	}
	if r.lock != nil {
		release, err := r.lock(r.outputDir)
		if err != nil {
			return state, err
		}
		defer func() {
			if err := release(); err != nil {
				r.logger.Warn("release output lock failed", logging.Error(err))
			}
		}()
	}

	state.RunID = r.newRunID()
	runCtx := logging.WithRunID(ctx, state.RunID)
	logger := logging.WithContext(runCtx, r.logger)
	logger.Info("pipeline started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("source_url", state.SourceURL),
		logging.String("target_language", state.TargetLanguage),
		logging.String("output_dir", r.outputDir),
	)

	started := time.Now()
	for _, stage := range r.stages {
		state = r.step(runCtx, stage, state)
	}

	if state.Failed() {
		logger.Warn("pipeline finished with error",
			logging.String(logging.FieldEventType, "run_failed"),
			logging.String("error_message", state.Error),
			logging.Duration("duration", time.Since(started)),
		)
	} else {
		logger.Info("pipeline finished",
			logging.String(logging.FieldEventType, "run_complete"),
			logging.String("final_video_path", state.FinalVideoPath),
			logging.Duration("duration", time.Since(started)),
		)
	}
	return state, nil
}

func (r *Runner) step(ctx context.Context, stage Stage, state State) State {
	name := stage.StageName()
	stageCtx := logging.WithStage(ctx, name)
	logger := logging.WithContext(stageCtx, r.logger)

	if state.Failed() {
		logger.Debug("stage skipped", logging.String(logging.FieldEventType, "stage_skipped"))
		return state
	}

	logger.Info("stage started", logging.String(logging.FieldEventType, "stage_start"))
	started := time.Now()
	next := stage.Apply(stageCtx, state)

	if fields := rewritten(state, next); len(fields) > 0 {
		next = state.WithError(fmt.Sprintf("%s: rewrote %s set by an earlier stage", name, strings.Join(fields, ", ")))
	} else if next.Failed() {
		// A failing stage contributes only its error.
		next = state.WithError(next.Error)
	} else if declared, ok := stage.(outputDeclarer); ok {
		if extra := writtenOutside(state, next, declared.OutputFields()); len(extra) > 0 {
			next = state.WithError(outsideOutputsMessage(name, extra))
		}
	}

	if next.Failed() {
		logger.Error("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.String("error_message", next.Error),
			logging.Duration("duration", time.Since(started)),
		)
		return next
	}
	logger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("duration", time.Since(started)),
	)
	return next
}
