package services

import (
	"context"

	"github.com/antimatter-studios/cognito-local/internal/core/domain"
	"github.com/antimatter-studios/cognito-local/internal/core/ports"
)

// LambdaTriggers implements ports.Triggers: it adapts the ergonomic,
// caller-shaped Input/Output types into the structured ports.LambdaEvent
// envelope and back, per §4.4 and §9's "sum type over trigger-source
// strings with a total constructor function".
type LambdaTriggers struct {
	Lambda    ports.Lambda
	Functions map[ports.TriggerName]string
	Clock     ports.Clock
}

func NewLambdaTriggers(lambda ports.Lambda, functions map[ports.TriggerName]string, clock ports.Clock) *LambdaTriggers {
	return &LambdaTriggers{Lambda: lambda, Functions: functions, Clock: clock}
}

func (t *LambdaTriggers) Enabled(name ports.TriggerName) bool {
	_, ok := t.Functions[name]
	return ok
}

func (t *LambdaTriggers) PreSignUp(ctx context.Context, in ports.PreSignUpInput) (ports.PreSignUpOutput, error) {
	resp, err := t.Lambda.Invoke(ctx, ports.TriggerPreSignUp, ports.LambdaEvent{
		Source:         in.Source,
		ClientId:       in.ClientId,
		UserPoolId:     in.UserPoolId,
		Username:       in.Username,
		UserAttributes: in.UserAttributes,
		ClientMetadata: in.ClientMetadata,
		ValidationData: in.ValidationData,
	})
	if err != nil {
		return ports.PreSignUpOutput{}, err
	}
	out := ports.PreSignUpOutput{}
	if v, ok := resp["autoConfirmUser"].(bool); ok {
		out.AutoConfirmUser = v
	}
	if v, ok := resp["autoVerifyEmail"].(bool); ok {
		out.AutoVerifyEmail = v
	}
	if v, ok := resp["autoVerifyPhone"].(bool); ok {
		out.AutoVerifyPhone = v
	}
	return out, nil
}

func (t *LambdaTriggers) PostConfirmation(ctx context.Context, in ports.PostConfirmationInput) error {
	_, err := t.Lambda.Invoke(ctx, ports.TriggerPostConfirmation, ports.LambdaEvent{
		Source:         in.Source,
		ClientId:       in.ClientId,
		UserPoolId:     in.UserPoolId,
		Username:       in.Username,
		UserAttributes: in.UserAttributes,
		ClientMetadata: in.ClientMetadata,
	})
	return err
}

func (t *LambdaTriggers) PostAuthentication(ctx context.Context, in ports.PostAuthenticationInput) error {
	_, err := t.Lambda.Invoke(ctx, ports.TriggerPostAuthentication, ports.LambdaEvent{
		Source:         "PostAuthentication_Authentication",
		ClientId:       in.ClientId,
		UserPoolId:     in.UserPoolId,
		Username:       in.Username,
		UserAttributes: in.UserAttributes,
		ClientMetadata: in.ClientMetadata,
	})
	return err
}

// UserMigration maps the documented argument swap (§4.3.2 step 2): the
// caller's ClientMetadata rides in as ValidationData, ClientMetadata is
// left unset on the envelope.
func (t *LambdaTriggers) UserMigration(ctx context.Context, in ports.UserMigrationInput) (*domain.User, error) {
	resp, err := t.Lambda.Invoke(ctx, ports.TriggerUserMigration, ports.LambdaEvent{
		Source:         "UserMigration_Authentication",
		ClientId:       in.ClientId,
		UserPoolId:     in.UserPoolId,
		Username:       in.Username,
		Password:       in.Password,
		UserAttributes: map[string]string{},
		ValidationData: in.ValidationData,
	})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}

	var attrs []domain.Attribute
	if m, ok := resp["userAttributes"].(map[string]any); ok {
		for k, v := range m {
			if s, ok := v.(string); ok {
				attrs = append(attrs, domain.Attribute{Name: k, Value: s})
			}
		}
	}

	user := domain.NewUser(in.Username, in.Password, attrs, t.Clock.Now())
	if status, ok := resp["finalUserStatus"].(string); ok && status != "" {
		user.UserStatus = status
	}
	return user, nil
}

func (t *LambdaTriggers) CustomMessage(ctx context.Context, in ports.CustomMessageInput) (ports.CustomMessageOutput, error) {
	resp, err := t.Lambda.Invoke(ctx, ports.TriggerCustomMessage, ports.LambdaEvent{
		Source:         in.Source,
		ClientId:       in.ClientId,
		UserPoolId:     in.UserPoolId,
		Username:       in.Username,
		UserAttributes: in.UserAttributes,
		ClientMetadata: in.ClientMetadata,
		CodeParameter:  in.CodeParameter,
	})
	if err != nil {
		return ports.CustomMessageOutput{}, err
	}
	out := ports.CustomMessageOutput{}
	if v, ok := resp["smsMessage"].(string); ok {
		out.SMSMessage = v
	}
	if v, ok := resp["emailMessage"].(string); ok {
		out.EmailMessage = v
	}
	if v, ok := resp["emailSubject"].(string); ok {
		out.EmailSubject = v
	}
	return out, nil
}

func (t *LambdaTriggers) PreTokenGeneration(ctx context.Context, in ports.PreTokenGenerationInput) (ports.PreTokenGenerationOutput, error) {
	resp, err := t.Lambda.Invoke(ctx, ports.TriggerPreTokenGeneration, ports.LambdaEvent{
		ClientId:       in.ClientId,
		UserPoolId:     in.UserPoolId,
		Username:       in.Username,
		UserAttributes: in.UserAttributes,
		ClientMetadata: in.ClientMetadata,
	})
	if err != nil {
		return ports.PreTokenGenerationOutput{}, err
	}
	out := ports.PreTokenGenerationOutput{}
	details, ok := resp["claimsOverrideDetails"].(map[string]any)
	if !ok {
		return out, nil
	}
	if add, ok := details["claimsToAddOrOverride"].(map[string]any); ok {
		out.ClaimsToAddOrOverride = add
	}
	if sup, ok := details["claimsToSuppress"].([]any); ok {
		for _, s := range sup {
			if str, ok := s.(string); ok {
				out.ClaimsToSuppress = append(out.ClaimsToSuppress, str)
			}
		}
	}
	return out, nil
}
