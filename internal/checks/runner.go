// ABOUTME: Sequential runner for check groups with per-spec BeforeEach and timeouts
// ABOUTME: Collects an ordered report; a failing spec never stops the ones after it

package checks

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Result is the outcome of one spec.
type Result struct {
	Group    string
	Spec     string
	Err      error
	Duration time.Duration
}

// Passed reports whether the check passed.
func (r Result) Passed() bool {
	return r.Err == nil
}

// Name returns "Group spec".
func (r Result) Name() string {
	return r.Group + " " + r.Spec
}

// Report is the ordered outcome of a run.
type Report struct {
	Results  []Result
	Duration time.Duration
}

// Passed reports whether every spec passed.
func (r *Report) Passed() bool {
	return len(r.Failures()) == 0
}

// Failures returns the failed results in run order.
func (r *Report) Failures() []Result {
	var failed []Result
	for _, res := range r.Results {
		if !res.Passed() {
			failed = append(failed, res)
		}
	}
	return failed
}

// Summary returns a one-line count of specs and failures.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d specs, %d failures", len(r.Results), len(r.Failures()))
}

// Runner runs check groups against an App.
type Runner struct {
	// Groups defaults to Suite().
	Groups []Group
	// Timeout bounds each spec including its BeforeEach; zero means no limit.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Run executes every spec in order and returns the report.
func (r *Runner) Run(ctx context.Context, app App) *Report {
	groups := r.Groups
	if groups == nil {
		groups = Suite()
	}
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}

	start := time.Now()
	report := &Report{}
	for _, g := range groups {
		for _, s := range g.Specs {
			res := r.runSpec(ctx, app, g, s)
			report.Results = append(report.Results, res)

			if res.Passed() {
				log.Info("spec passed",
					slog.String("component", "checks"),
					slog.String("spec", res.Name()),
					slog.Duration("duration", res.Duration),
				)
			} else {
				log.Error("spec failed",
					slog.String("component", "checks"),
					slog.String("spec", res.Name()),
					slog.Any("error", res.Err),
				)
			}
		}
	}
	report.Duration = time.Since(start)
	return report
}

func (r *Runner) runSpec(ctx context.Context, app App, g Group, s Spec) Result {
	res := Result{Group: g.Name, Spec: s.Name}
	start := time.Now()

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	st := &State{}
	if g.BeforeEach != nil {
		if err := g.BeforeEach(ctx, app, st); err != nil {
			res.Err = fmt.Errorf("beforeEach: %w", err)
			res.Duration = time.Since(start)
			return res
		}
	}

	res.Err = s.Run(ctx, app, st)
	res.Duration = time.Since(start)
	return res
}
