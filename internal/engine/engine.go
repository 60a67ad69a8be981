// Package engine drives the multi-pass trial classification and submission
// state machine.
//
// A run makes five ordered passes over a shrinking working set of candidate
// directories: validation, finish detection, the mode-dependent policy pass,
// submission, and finalization. A trial leaves the working set the moment it
// receives an outcome and is never revisited. Splitting the passes across
// components looked tempting but made the ordering guarantees much harder to
// see, so each pass is a method here and Run composes them explicitly.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/me/trialq/internal/marker"
	"github.com/me/trialq/internal/submit"
	"github.com/me/trialq/internal/trial"
	"github.com/me/trialq/pkg/model"
)

// Engine orchestrates the classifier, marker store, and submitter over a
// whole directory set. One Engine is safe to reuse across runs; a single run
// is strictly sequential.
type Engine struct {
	classifier *trial.Classifier
	markers    *marker.Store
	submitter  submit.Submitter
	logger     *slog.Logger
}

// New creates an Engine.
func New(classifier *trial.Classifier, markers *marker.Store, submitter submit.Submitter, logger *slog.Logger) *Engine {
	return &Engine{
		classifier: classifier,
		markers:    markers,
		submitter:  submitter,
		logger:     logger.With("component", "engine"),
	}
}

// run carries the mutable state of one invocation: the accumulating stats
// and the per-trial outcome records.
type run struct {
	engine *Engine
	stats  model.Stats
	trials []model.TrialResult
}

// drop assigns an outcome to d, removes it from further consideration, and
// logs the outcome line. statKey may be empty for outcomes that have no
// summary counter (check-mode reporting).
func (r *run) drop(d string, outcome model.Outcome, statKey, msg string) {
	if statKey != "" {
		r.stats.Inc(statKey)
	}
	r.trials = append(r.trials, model.TrialResult{Path: d, Outcome: outcome, Message: msg})
	r.engine.logger.Info(msg, "dir", d, "outcome", outcome)
}

// Run executes one full pass sequence over dirs in the given mode.
//
// The returned Run record is always non-nil and reflects whatever was
// classified before the error, if any. A *model.UnsafeTrialsError means safe
// mode refused to proceed and nothing was submitted.
func (e *Engine) Run(ctx context.Context, dirs []string, mode model.Mode) (*model.Run, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("invalid mode %q", mode)
	}

	r := &run{engine: e, stats: model.NewStats()}
	rec := &model.Run{Mode: mode, Stats: r.stats, StartedAt: time.Now().UTC()}
	defer func() {
		rec.Trials = r.trials
		rec.CompletedAt = time.Now().UTC()
	}()

	remaining := dedupeSorted(dirs)
	r.stats["all"] = len(remaining)

	// Pass 1: filter out candidates that are not trials at all.
	remaining = r.validate(remaining)
	r.stats.Rollup("invalid")
	r.stats["valid"] = len(remaining)

	// Pass 2: detect finished trials and reconcile their markers.
	remaining = r.detectFinished(remaining)
	r.stats.Rollup("finished")

	// Pass 3: apply the mode policy to unfinished-but-submitted trials.
	remaining, stop, err := r.applyMode(remaining, mode)
	if err != nil {
		return rec, err
	}
	if stop {
		return rec, nil
	}

	// Pass 4: submit everything still in the working set, halting on the
	// first scheduler failure.
	remaining, err = r.submitAll(ctx, remaining)
	r.stats.Rollup("submitted")
	if err != nil {
		return rec, err
	}

	// Pass 5: whatever survived an aborted submission pass is unprocessed.
	r.stats["unprocessed"] = len(remaining)
	for _, d := range remaining {
		r.trials = append(r.trials, model.TrialResult{Path: d, Outcome: model.OutcomeUnprocessed})
	}

	return rec, nil
}

// validate drops candidates that are not prepared trial directories.
// Probe failures are per-trial, never run-fatal: an unreadable directory is
// classified invalid.ioerror and the run continues.
func (r *run) validate(remaining []string) []string {
	next := remaining[:0]
	for _, d := range remaining {
		ok, err := r.engine.classifier.LooksLikeTrial(d)
		switch {
		case err != nil:
			pe := trial.AsProbeError(err)
			if pe != nil && pe.Kind == trial.ProbeNotFound {
				// A missing directory is not an I/O failure, just not a trial.
				r.drop(d, model.OutcomeInvalidNotTrial, "invalid.nottrial", "invalid trial")
				continue
			}
			r.drop(d, model.OutcomeInvalidIOError, "invalid.ioerror",
				fmt.Sprintf("error reading (%v)", err))
		case !ok:
			r.drop(d, model.OutcomeInvalidNotTrial, "invalid.nottrial", "invalid trial")
		default:
			next = append(next, d)
		}
	}
	return next
}

// detectFinished reconciles completion evidence with the finished marker.
// A trial that is finished by any reckoning also loses its submitted marker
// so it can never look unfinished-but-submitted in a later run.
func (r *run) detectFinished(remaining []string) []string {
	e := r.engine
	next := remaining[:0]
	for _, d := range remaining {
		finished, err := e.classifier.LooksFinished(d)
		if err != nil {
			// Output artifact exists but cannot be read. Treat the trial as
			// unfinished for this run and let the operator look at it.
			e.logger.Warn("cannot inspect output artifact; treating as unfinished", "dir", d, "error", err)
			finished = false
		}

		if finished {
			if e.markers.IsFinished(d) {
				r.drop(d, model.OutcomeFinishedOld, "finished.old", "finished")
			} else {
				if err := e.markers.MarkFinished(d); err != nil {
					e.logger.Error("cannot add finished marker", "dir", d, "error", err)
				}
				r.drop(d, model.OutcomeFinishedNew, "finished.new", "finished (marker added)")
			}
			// Make sure d is never detected as unfinished-but-submitted.
			if err := e.markers.UnmarkSubmitted(d); err != nil {
				e.logger.Error("cannot remove submitted marker", "dir", d, "error", err)
			}
			continue
		}

		if e.markers.IsFinished(d) {
			// Marker might have been added by something or somebody else.
			// Point it out and leave it alone.
			r.drop(d, model.OutcomeFinishedWrong, "finished.wrong",
				"looks incomplete, but is marked as finished! (!!!) skipping")
			continue
		}

		next = append(next, d)
	}
	return next
}

// applyMode handles unfinished-but-submitted trials according to the mode.
// stop is true when the run ends here (check mode).
func (r *run) applyMode(remaining []string, mode model.Mode) ([]string, bool, error) {
	e := r.engine

	switch mode {
	case model.ModeSafe:
		unsafe := 0
		for _, d := range remaining {
			if e.markers.IsSubmitted(d) && !e.markers.IsFinished(d) {
				unsafe++
				e.logger.Info("unfinished, but already submitted!", "dir", d)
			}
		}
		if unsafe > 0 {
			e.logger.Error("found incomplete trials; cannot continue in safe mode",
				"count", unsafe,
				"hint", "if jobs are RUNNING in these directories use -s to skip them; if not, -r resumes them via new jobs")
			return remaining, false, &model.UnsafeTrialsError{Count: unsafe}
		}
		return remaining, false, nil

	case model.ModeSkip:
		next := remaining[:0]
		for _, d := range remaining {
			if e.markers.IsSubmitted(d) {
				r.drop(d, model.OutcomeSkipped, "skipped", "unfinished, but already submitted! skipping (-s)")
				continue
			}
			next = append(next, d)
		}
		return next, false, nil

	case model.ModeResume:
		// Resubmission is handled by the submission pass.
		return remaining, false, nil

	case model.ModeCheck:
		for _, d := range remaining {
			r.drop(d, model.OutcomeUnfinished, "", "not finished (!!!)")
		}
		return nil, true, nil
	}

	return remaining, false, fmt.Errorf("invalid mode %q", mode)
}

// submitAll queues a job for every remaining trial, in order. One scheduler
// failure halts the pass: the state of the scheduler is unknown at that
// point and pushing ahead would only compound it. Trials not reached stay in
// the returned slice.
func (r *run) submitAll(ctx context.Context, remaining []string) ([]string, error) {
	e := r.engine
	for i, d := range remaining {
		ok, message := e.submitter.Submit(ctx, d)
		if !ok {
			e.logger.Warn("failed to submit (!!!)", "dir", d, "message", message)
			return remaining[i:], nil
		}

		if e.markers.IsSubmitted(d) {
			// Only reachable in resume mode: safe mode aborts on these and
			// skip mode already removed them.
			r.drop(d, model.OutcomeSubmittedResumed, "submitted.resumed",
				fmt.Sprintf("unfinished, resuming (-r) (%s)", message))
		} else {
			r.drop(d, model.OutcomeSubmittedNew, "submitted.new",
				fmt.Sprintf("submitted! (%s)", message))
		}
		if err := e.markers.MarkSubmitted(d); err != nil {
			return remaining[i+1:], fmt.Errorf("mark submitted %s: %w", d, err)
		}
	}
	return nil, nil
}

// dedupeSorted returns the unique dirs in lexicographic order.
func dedupeSorted(dirs []string) []string {
	seen := make(map[string]bool, len(dirs))
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Strings(out)
	return out
}
