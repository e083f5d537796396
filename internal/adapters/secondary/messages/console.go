// Package messages holds the pluggable MessageDelivery sinks §4.6 leaves
// external; the default is a log line, matching the teacher's habit of
// logging at the point a side effect would otherwise be invisible.
package messages

import (
	"context"
	"log/slog"

	"github.com/antimatter-studios/cognito-local/internal/core/ports"
)

// ConsoleDelivery logs the rendered message instead of dispatching to a
// real SMS/email provider.
type ConsoleDelivery struct {
	Logger *slog.Logger
}

func NewConsoleDelivery(logger *slog.Logger) *ConsoleDelivery {
	return &ConsoleDelivery{Logger: logger}
}

func (d *ConsoleDelivery) Deliver(ctx context.Context, details ports.DeliveryDetails, message string) error {
	d.Logger.InfoContext(ctx, "message delivered",
		"medium", details.DeliveryMedium,
		"destination", details.Destination,
		"attribute", details.AttributeName,
		"message", message,
	)
	return nil
}
