package provider

import (
	"context"

	"go.uber.org/zap"

	senddomain "github.com/RonanBeelen/InvoiceStudio/internal/send/domain"
)

// Manual is the no-email fallback used when no provider API key is
// configured. Messages are logged and reported as sent so the document
// flow keeps working in installs that deliver by hand.
type Manual struct {
	log *zap.Logger
}

func NewManual(log *zap.Logger) *Manual {
	return &Manual{log: log.Named("send.manual")}
}

func (m *Manual) Send(ctx context.Context, msg senddomain.Message) (senddomain.Result, error) {
	m.log.Info("manual delivery, email not sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return senddomain.Result{}, nil
}
