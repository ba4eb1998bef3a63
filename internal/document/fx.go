package document

import (
	"go.uber.org/fx"

	"github.com/RonanBeelen/InvoiceStudio/internal/document/service"
)

var Module = fx.Module("document.service",
	fx.Provide(service.NewService),
)
