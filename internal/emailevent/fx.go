package emailevent

import (
	"go.uber.org/fx"

	"github.com/RonanBeelen/InvoiceStudio/internal/emailevent/service"
)

var Module = fx.Module("emailevent.service",
	fx.Provide(service.NewService),
)
