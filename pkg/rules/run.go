package rules

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
)

// ProcessRunner executes one materialized invocation in the given working
// directory. A non-nil error means the process could not be run at all;
// compiler failures are reported through ProcessResult.ExitCode.
type ProcessRunner interface {
	Run(ctx context.Context, dir string, argv []string) (ProcessResult, error)
}

// RunOptions control one build run over an already computed plan.
type RunOptions struct {
	Template CommandTemplate
	Runner   ProcessRunner
	// Dir is the working directory the compiler processes are started in.
	Dir string
	// DryRun only prints the materialized commands.
	DryRun bool
	// KeepGoing collects failures instead of halting on the first one.
	KeepGoing bool
	// Jobs > 1 builds that many pairs concurrently. The pairs are
	// independent, so the overall result is the same as a sequential run.
	Jobs int
	// Progress, if set, is called after each pair finishes. With Jobs > 1 the
	// call order is unspecified.
	Progress func(pair BuildPair)
}

// Run regenerates every pair in the plan. By default it stops at the first
// failing pair and returns its *ProcessError; with KeepGoing it runs the
// whole plan and returns a *BuildError listing everything that failed.
func Run(ctx context.Context, plan []BuildPair, opts RunOptions) error {
	if len(plan) == 0 {
		log(ctx).Info().Msg("nothing to do")
		return nil
	}

	if !opts.DryRun && opts.Runner == nil {
		return eris.New("no process runner configured")
	}

	if opts.Jobs > 1 && !opts.DryRun {
		return runParallel(ctx, plan, opts)
	}

	var failures []*ProcessError
	for _, pair := range plan {
		if err := ctx.Err(); err != nil {
			return err
		}

		argv := MaterializeCommand(pair, opts.Template)
		log(ctx).Info().
			Str("output", pair.Output).
			Bool("command", true).
			Msg(strings.Join(argv, " "))

		if opts.DryRun {
			continue
		}

		if perr := runPair(ctx, pair, argv, opts); perr != nil {
			if !opts.KeepGoing {
				return perr
			}

			failures = append(failures, perr)
		}

		if opts.Progress != nil {
			opts.Progress(pair)
		}
	}

	if len(failures) > 0 {
		return &BuildError{Failures: failures}
	}

	return nil
}

func runParallel(ctx context.Context, plan []BuildPair, opts RunOptions) error {
	var (
		lock     sync.Mutex
		failures []*ProcessError
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(opts.Jobs)

	for _, pair := range plan {
		pair := pair
		if groupCtx.Err() != nil {
			// the first failure already cancelled the run, don't launch more
			break
		}

		group.Go(func() error {
			argv := MaterializeCommand(pair, opts.Template)
			log(ctx).Info().
				Str("output", pair.Output).
				Bool("command", true).
				Msg(strings.Join(argv, " "))

			perr := runPair(groupCtx, pair, argv, opts)
			if perr != nil {
				if !opts.KeepGoing {
					return perr
				}

				lock.Lock()
				failures = append(failures, perr)
				lock.Unlock()
			}

			if opts.Progress != nil {
				opts.Progress(pair)
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	if len(failures) > 0 {
		return &BuildError{Failures: failures}
	}

	return nil
}

func runPair(ctx context.Context, pair BuildPair, argv []string, opts RunOptions) *ProcessError {
	result, err := opts.Runner.Run(ctx, opts.Dir, argv)
	if err != nil {
		return &ProcessError{Pair: pair, ExitCode: -1, Err: err}
	}

	if result.ExitCode != 0 {
		log(ctx).Error().
			Str("output", pair.Output).
			Int("exit_code", result.ExitCode).
			Msg("compiler failed")

		return &ProcessError{Pair: pair, ExitCode: result.ExitCode, Stderr: result.Stderr}
	}

	return nil
}

// Clean removes every derived output of the given pairs. Outputs that are
// already absent are skipped silently; anything else that fails to go away
// is collected into a *CleanError without aborting the remaining deletions.
func Clean(ctx context.Context, pairs []BuildPair) error {
	var failures []*DeleteError

	for _, path := range PlanClean(pairs) {
		err := os.Remove(path)
		switch {
		case err == nil:
			log(ctx).Info().Str("path", path).Msg("deleted")
		case eris.Is(err, os.ErrNotExist):
			log(ctx).Debug().Str("path", path).Msg("already absent")
		default:
			log(ctx).Error().Err(err).Str("path", path).Msg("failed to delete")
			failures = append(failures, &DeleteError{Path: path, Err: err})
		}
	}

	if len(failures) > 0 {
		return &CleanError{Failures: failures}
	}

	return nil
}
