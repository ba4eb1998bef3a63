package automation

import (
	"go.uber.org/fx"

	"github.com/RonanBeelen/InvoiceStudio/internal/automation/service"
	"github.com/RonanBeelen/InvoiceStudio/internal/automation/worker"
	"github.com/RonanBeelen/InvoiceStudio/internal/config"
)

var Module = fx.Module("automation.service",
	fx.Provide(service.NewService),
	fx.Provide(newWorkerConfig),
	fx.Provide(worker.NewWorker),
	fx.Invoke(worker.Start),
)

func newWorkerConfig(cfg config.Config) worker.Config {
	return worker.Config{
		BatchSize:    cfg.SchedulerBatchSize,
		PollInterval: cfg.SchedulerPollInterval,
	}
}
