package template

import (
	"go.uber.org/fx"

	"github.com/RonanBeelen/InvoiceStudio/internal/template/service"
)

var Module = fx.Module("template.service",
	fx.Provide(service.NewService),
)
