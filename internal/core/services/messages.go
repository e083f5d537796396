package services

import (
	"context"
	"strings"

	"github.com/antimatter-studios/cognito-local/internal/core/domain"
	"github.com/antimatter-studios/cognito-local/internal/core/ports"
)

// MessageRenderer implements ports.Messages per §4.6: prefer the
// CustomMessage trigger's rendered text, falling back to a built-in
// template, then interpolate the well-known placeholders and hand off to
// whatever MessageDelivery sink was configured.
type MessageRenderer struct {
	Triggers ports.Triggers
	Delivery ports.MessageDelivery
}

func NewMessageRenderer(triggers ports.Triggers, delivery ports.MessageDelivery) *MessageRenderer {
	return &MessageRenderer{Triggers: triggers, Delivery: delivery}
}

func (m *MessageRenderer) Deliver(
	ctx context.Context,
	source string,
	clientId string,
	userPoolId string,
	user *domain.User,
	code string,
	clientMetadata map[string]string,
	details ports.DeliveryDetails,
) error {
	message := defaultTemplate(details.DeliveryMedium)

	if m.Triggers != nil && m.Triggers.Enabled(ports.TriggerCustomMessage) {
		out, err := m.Triggers.CustomMessage(ctx, ports.CustomMessageInput{
			ClientId:       clientId,
			Source:         "CustomMessage_" + source,
			Username:       user.Username,
			UserPoolId:     userPoolId,
			UserAttributes: user.AttributesAsMap(),
			ClientMetadata: clientMetadata,
			CodeParameter:  code,
		})
		if err != nil {
			return err
		}
		if details.DeliveryMedium == "SMS" && out.SMSMessage != "" {
			message = out.SMSMessage
		} else if details.DeliveryMedium == "EMAIL" && out.EmailMessage != "" {
			message = out.EmailMessage
		}
	}

	message = strings.ReplaceAll(message, "{####}", code)
	message = strings.ReplaceAll(message, "{username}", user.Username)

	return m.Delivery.Deliver(ctx, details, message)
}

func defaultTemplate(medium string) string {
	if medium == "SMS" {
		return "Your confirmation code is {####}"
	}
	return "Your verification code is {####}"
}
