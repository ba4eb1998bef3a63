package send

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/RonanBeelen/InvoiceStudio/internal/config"
	senddomain "github.com/RonanBeelen/InvoiceStudio/internal/send/domain"
	"github.com/RonanBeelen/InvoiceStudio/internal/send/provider"
	"github.com/RonanBeelen/InvoiceStudio/internal/send/service"
)

var Module = fx.Module("send.service",
	fx.Provide(newProvider),
	fx.Provide(service.NewService),
)

func newProvider(cfg config.Config, log *zap.Logger) senddomain.Provider {
	if cfg.ResendAPIKey != "" {
		return provider.NewResend(cfg, log)
	}
	return provider.NewManual(log)
}
