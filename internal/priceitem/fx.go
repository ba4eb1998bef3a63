package priceitem

import (
	"go.uber.org/fx"

	"github.com/RonanBeelen/InvoiceStudio/internal/priceitem/service"
)

var Module = fx.Module("priceitem.service",
	fx.Provide(service.NewService),
)
