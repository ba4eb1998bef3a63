package observability

import (
	"go.uber.org/fx"

	"github.com/RonanBeelen/InvoiceStudio/internal/observability/logger"
	"github.com/RonanBeelen/InvoiceStudio/internal/observability/tracing"
)

var Module = fx.Module("observability",
	fx.Provide(logger.New),
	fx.Invoke(tracing.NewProvider),
)
