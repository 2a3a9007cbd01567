package cronrunner

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner schedules named background jobs against a base context so a
// shutdown cancels every job's work in flight.
type Runner struct {
	cron    *cron.Cron
	logger  *zap.Logger
	baseCtx context.Context
}

func New(logger *zap.Logger, baseCtx context.Context) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Runner{
		cron:    cron.New(),
		logger:  logger,
		baseCtx: baseCtx,
	}
}

// Add registers a job under spec. The job receives the runner's base
// context; its runtime is logged at debug level.
func (r *Runner) Add(name, spec string, job func(context.Context)) (cron.EntryID, error) {
	return r.cron.AddFunc(spec, func() {
		ctx := r.baseCtx
		if ctx == nil {
			ctx = context.Background()
		}
		started := time.Now()
		job(ctx)
		if r.logger != nil {
			r.logger.Debug("cron job finished",
				zap.String("job", name),
				zap.Duration("took", time.Since(started)),
			)
		}
	})
}

func (r *Runner) Start() {
	if r.logger != nil {
		r.logger.Info("cron started")
	}
	r.cron.Start()
}

func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	if r.logger != nil {
		r.logger.Info("cron stopped")
	}
}
