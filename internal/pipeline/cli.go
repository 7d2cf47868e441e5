package pipeline

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/rhyrak/term-scheduler/pkg/config"
	"github.com/rhyrak/term-scheduler/pkg/errors"
	"github.com/rhyrak/term-scheduler/pkg/logger"
	"github.com/rhyrak/term-scheduler/pkg/metrics"
)

// StageAll names the full run.
const StageAll = "pipeline"

// Main runs one stage (or StageAll) from the environment configuration and
// returns the process exit code.
func Main(stage string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		return errors.ErrDataValidation.ExitCode
	}
	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		return errors.ErrInternal.ExitCode
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := New(cfg, log, metrics.New())
	if stage == StageAssign {
		r.Print = os.Stdout
	}
	if err := r.exec(ctx, stage); err != nil {
		e := errors.FromError(err)
		log.Error("run failed", zap.String("stage", stage), zap.String("code", e.Code), zap.Error(err))
		fmt.Fprintln(os.Stderr, e.Error())
		return e.ExitCode
	}
	return 0
}

func (r *Runner) exec(ctx context.Context, stage string) error {
	if stage == StageAll {
		return r.Run(ctx)
	}
	stages := map[string]func(context.Context) error{
		StageNormalize: r.Normalize,
		StageCalendar:  r.Calendar,
		StageSection:   r.Section,
		StageAssign:    r.Assign,
		StageOverflow:  r.Overflow,
	}
	fn, ok := stages[stage]
	if !ok {
		return errors.Clonef(errors.ErrInternal, "unknown stage %q", stage)
	}
	defer r.FlushMetrics()
	if err := fn(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return cancelled(ctxErr)
		}
		return err
	}
	return nil
}
