package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	automationdomain "github.com/RonanBeelen/InvoiceStudio/internal/automation/domain"
	"github.com/RonanBeelen/InvoiceStudio/internal/clock"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	Service automationdomain.Service
	Config  Config `optional:"true"`
}

// Worker polls for due automation rules and fires them. Multiple workers
// may poll concurrently; the run-slot claim inside Trigger keeps each
// slot firing once.
type Worker struct {
	log     *zap.Logger
	clock   clock.Clock
	service automationdomain.Service
	cfg     Config
}

func NewWorker(p Params) *Worker {
	return &Worker{
		log:     p.Log.Named("automation.worker"),
		clock:   p.Clock,
		service: p.Service,
		cfg:     p.Config.withDefaults(),
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := w.RunOnce(ctx); err != nil {
			w.log.Warn("automation poll failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce fires one batch of due rules and reports how many runs completed.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	if w.service == nil {
		return 0, errors.New("automation_worker_unavailable")
	}

	now := w.clock.Now()
	rules, err := w.service.ListDue(ctx, now, w.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, rule := range rules {
		run, err := w.service.Trigger(ctx, rule.ID)
		if err != nil {
			w.log.Warn("rule trigger failed",
				zap.String("rule_id", rule.ID.String()),
				zap.String("rule_name", rule.Name),
				zap.Error(err),
			)
			continue
		}
		if run.Status == automationdomain.RunStatusCompleted {
			completed++
		}
	}
	return completed, nil
}

// Start wires the worker into the application lifecycle.
func Start(lc fx.Lifecycle, w *Worker) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				w.RunForever(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}
