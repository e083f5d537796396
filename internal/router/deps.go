package router

import "github.com/antimatter-studios/cognito-local/internal/core/ports"

// Deps is the collaborator graph every Target is built against (§2).
// Constructed once at startup and shared read-only across requests.
type Deps struct {
	Cognito  ports.CognitoService
	Tokens   ports.TokenGenerator
	Clock    ports.Clock
	OTP      ports.OTPGenerator
	Triggers ports.Triggers
	Messages ports.Messages
	Events   ports.DomainEventPublisher
}

// publish is a best-effort helper: domain event failures are logged by
// the caller-supplied logger and never surface to the client, matching
// the teacher's "don't block the caller on broker health" stance.
func (d *Deps) publish(ctx *RequestContext, eventType string, payload map[string]any) {
	if d.Events == nil {
		return
	}
	if err := d.Events.Publish(ctx, eventType, payload); err != nil {
		ctx.Logger.Warn("domain event publish failed", "event", eventType, "error", err)
	}
}
