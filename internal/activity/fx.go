package activity

import (
	"go.uber.org/fx"

	"github.com/RonanBeelen/InvoiceStudio/internal/activity/service"
)

var Module = fx.Module("activity.service",
	fx.Provide(service.NewService),
)
