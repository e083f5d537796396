package router

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/antimatter-studios/cognito-local/internal/core/domain"
	"github.com/antimatter-studios/cognito-local/internal/core/ports"
)

func (r *Router) registerAuthTargets(deps *Deps) {
	r.targets[ports.OpInitiateAuth] = bind(r.validate, func(ctx *RequestContext, req ports.InitiateAuthRequest) (ports.InitiateAuthResponse, error) {
		pool, err := deps.Cognito.GetUserPoolForClientId(ctx, req.ClientId)
		if err != nil {
			return ports.AuthResult{}, err
		}
		return initiateAuthCore(ctx, deps, pool, req.ClientId, req.AuthFlow, req.AuthParameters, req.ClientMetadata)
	})
	r.targets[ports.OpAdminInitiateAuth] = bind(r.validate, func(ctx *RequestContext, req ports.AdminInitiateAuthRequest) (ports.AdminInitiateAuthResponse, error) {
		pool, err := deps.Cognito.GetUserPool(ctx, req.UserPoolId)
		if err != nil {
			return ports.AuthResult{}, err
		}
		return initiateAuthCore(ctx, deps, pool, req.ClientId, req.AuthFlow, req.AuthParameters, req.ClientMetadata)
	})
	r.targets[ports.OpRespondToAuthChallenge] = bind(r.validate, func(ctx *RequestContext, req ports.RespondToAuthChallengeRequest) (ports.RespondToAuthChallengeResponse, error) {
		return respondToAuthChallenge(ctx, deps, req)
	})
	r.targets[ports.OpChangePassword] = bind(r.validate, func(ctx *RequestContext, req ports.ChangePasswordRequest) (ports.ChangePasswordResponse, error) {
		return changePassword(ctx, deps, req)
	})
	r.targets[ports.OpRevokeToken] = bind(r.validate, func(ctx *RequestContext, req ports.RevokeTokenRequest) (ports.RevokeTokenResponse, error) {
		return revokeToken(ctx, deps, req)
	})
}

// initiateAuthCore implements §4.3.2 for both InitiateAuth (resolved via
// ClientId) and AdminInitiateAuth (resolved via UserPoolId), which share
// everything past pool resolution.
func initiateAuthCore(ctx *RequestContext, deps *Deps, pool ports.UserPoolService, clientId, authFlow string, authParams, clientMetadata map[string]string) (ports.AuthResult, error) {
	switch authFlow {
	case "USER_PASSWORD_AUTH":
		return userPasswordAuth(ctx, deps, pool, clientId, authParams, clientMetadata)
	case "REFRESH_TOKEN", "REFRESH_TOKEN_AUTH":
		return refreshTokenAuth(ctx, deps, pool, clientId, authParams, clientMetadata)
	default:
		return ports.AuthResult{}, domain.ErrUnsupported
	}
}

func userPasswordAuth(ctx *RequestContext, deps *Deps, pool ports.UserPoolService, clientId string, authParams, clientMetadata map[string]string) (ports.AuthResult, error) {
	username := authParams["USERNAME"]
	password := authParams["PASSWORD"]

	user, _ := pool.GetUserByUsername(ctx, username)
	if user == nil && deps.Triggers.Enabled(ports.TriggerUserMigration) {
		migrated, err := deps.Triggers.UserMigration(ctx, ports.UserMigrationInput{
			ClientId:       clientId,
			Username:       username,
			Password:       password,
			UserPoolId:     pool.Pool().Id,
			ClientMetadata: nil,
			ValidationData: clientMetadata,
		})
		if err != nil {
			return ports.AuthResult{}, WithMessage(domain.ErrUserLambdaValidation, err.Error())
		}
		if migrated != nil {
			if err := pool.SaveUser(ctx, migrated); err != nil {
				return ports.AuthResult{}, err
			}
			user = migrated
		}
	}
	if user == nil {
		return ports.AuthResult{}, domain.ErrNotAuthorized
	}
	if user.UserStatus == domain.UserStatusResetRequired {
		return ports.AuthResult{}, domain.ErrPasswordResetRequired
	}
	if user.UserStatus == domain.UserStatusForceChangePassword {
		return newPasswordRequiredChallenge(user), nil
	}
	if user.Password != password {
		return ports.AuthResult{}, domain.ErrInvalidPassword
	}

	return issueSuccessOrMFA(ctx, deps, pool, clientId, user, clientMetadata)
}

func refreshTokenAuth(ctx *RequestContext, deps *Deps, pool ports.UserPoolService, clientId string, authParams, clientMetadata map[string]string) (ports.AuthResult, error) {
	token := authParams["REFRESH_TOKEN"]
	if token == "" {
		return ports.AuthResult{}, WithMessage(domain.ErrInvalidParameter, "REFRESH_TOKEN is required")
	}
	user, err := pool.GetUserByRefreshToken(ctx, token)
	if err != nil || user == nil {
		return ports.AuthResult{}, domain.ErrNotAuthorized
	}
	tokens, err := deps.Tokens.Issue(ctx, ports.TokenParams{
		ClientId:            clientId,
		UserPoolId:           pool.Pool().Id,
		User:                 user,
		Source:               "RefreshTokens",
		ClientMetadata:       clientMetadata,
		IncludeRefreshToken:  false,
	})
	if err != nil {
		return ports.AuthResult{}, err
	}
	return ports.AuthResult{
		AuthenticationResult: &ports.AuthenticationResult{AccessToken: tokens.AccessToken, IdToken: tokens.IdToken},
	}, nil
}

func newPasswordRequiredChallenge(user *domain.User) ports.AuthResult {
	attrsJSON, _ := json.Marshal(user.AttributesAsMap())
	return ports.AuthResult{
		ChallengeName: "NEW_PASSWORD_REQUIRED",
		Session:       uuid.NewString(),
		ChallengeParameters: map[string]string{
			"USER_ID_FOR_SRP":    user.Username,
			"requiredAttributes": "[]",
			"userAttributes":     string(attrsJSON),
		},
	}
}

// issueSuccessOrMFA is the MFA decision point of InitiateAuth's password
// path. RespondToAuthChallenge does not pass through it: once a challenge
// is consumed it calls issueTokensSuccess directly.
func issueSuccessOrMFA(ctx *RequestContext, deps *Deps, pool ports.UserPoolService, clientId string, user *domain.User, clientMetadata map[string]string) (ports.AuthResult, error) {
	mfa := pool.Pool().MfaConfiguration
	needsMFA := mfa == domain.MfaOn || (mfa == domain.MfaOptional && len(user.MFAOptions) > 0)
	if needsMFA {
		if !user.HasSMSMFAOption() {
			return ports.AuthResult{}, domain.ErrNotAuthorized
		}
		phone, _ := user.Attribute("phone_number")
		code := deps.OTP.Generate()
		user.MFACode = code
		details := ports.DeliveryDetails{AttributeName: "phone_number", DeliveryMedium: "SMS", Destination: phone}
		if err := deps.Messages.Deliver(ctx, "Authentication", clientId, pool.Pool().Id, user, code, clientMetadata, details); err != nil {
			return ports.AuthResult{}, err
		}
		if err := pool.SaveUser(ctx, user); err != nil {
			return ports.AuthResult{}, err
		}
		return ports.AuthResult{
			ChallengeName: "SMS_MFA",
			Session:       uuid.NewString(),
			ChallengeParameters: map[string]string{
				"CODE_DELIVERY_DELIVERY_MEDIUM": "SMS",
				"CODE_DELIVERY_DESTINATION":     phone,
			},
		}, nil
	}
	return issueTokensSuccess(ctx, deps, pool, clientId, user, clientMetadata)
}

func issueTokensSuccess(ctx *RequestContext, deps *Deps, pool ports.UserPoolService, clientId string, user *domain.User, clientMetadata map[string]string) (ports.AuthResult, error) {
	tokens, err := deps.Tokens.Issue(ctx, ports.TokenParams{
		ClientId:            clientId,
		UserPoolId:           pool.Pool().Id,
		User:                 user,
		Source:               "Authentication",
		ClientMetadata:       nil,
		IncludeRefreshToken:  true,
	})
	if err != nil {
		return ports.AuthResult{}, err
	}
	if err := pool.StoreRefreshToken(ctx, tokens.RefreshToken, user); err != nil {
		return ports.AuthResult{}, err
	}
	if deps.Triggers.Enabled(ports.TriggerPostAuthentication) {
		if err := deps.Triggers.PostAuthentication(ctx, ports.PostAuthenticationInput{
			ClientId:       clientId,
			Username:       user.Username,
			UserPoolId:     pool.Pool().Id,
			UserAttributes: user.AttributesAsMap(),
			ClientMetadata: nil,
		}); err != nil {
			return ports.AuthResult{}, WithMessage(domain.ErrUserLambdaValidation, err.Error())
		}
	}
	deps.publish(ctx, "identity.user.authenticated", map[string]any{"userPoolId": pool.Pool().Id, "username": user.Username})
	return ports.AuthResult{
		ChallengeName: "PASSWORD_VERIFIER",
		AuthenticationResult: &ports.AuthenticationResult{
			AccessToken:  tokens.AccessToken,
			IdToken:      tokens.IdToken,
			RefreshToken: tokens.RefreshToken,
		},
	}, nil
}

func respondToAuthChallenge(ctx *RequestContext, deps *Deps, req ports.RespondToAuthChallengeRequest) (ports.RespondToAuthChallengeResponse, error) {
	pool, err := deps.Cognito.GetUserPoolForClientId(ctx, req.ClientId)
	if err != nil {
		return ports.AuthResult{}, err
	}
	username := req.ChallengeResponses["USERNAME"]
	user, err := pool.GetUserByUsername(ctx, username)
	if err != nil || user == nil {
		return ports.AuthResult{}, domain.ErrNotAuthorized
	}

	now := deps.Clock.Now()
	switch req.ChallengeName {
	case "SMS_MFA":
		code := req.ChallengeResponses["SMS_MFA_CODE"]
		if user.MFACode == "" || user.MFACode != code {
			return ports.AuthResult{}, domain.ErrCodeMismatch
		}
		user.MFACode = ""
		user.Touch(now)
		if err := pool.SaveUser(ctx, user); err != nil {
			return ports.AuthResult{}, err
		}
		return issueTokensSuccess(ctx, deps, pool, req.ClientId, user, req.ClientMetadata)
	case "NEW_PASSWORD_REQUIRED":
		newPassword := req.ChallengeResponses["NEW_PASSWORD"]
		if newPassword == "" {
			return ports.AuthResult{}, WithMessage(domain.ErrInvalidParameter, "NEW_PASSWORD is required")
		}
		user.Password = newPassword
		user.UserStatus = domain.UserStatusConfirmed
		user.Touch(now)
		if err := pool.SaveUser(ctx, user); err != nil {
			return ports.AuthResult{}, err
		}
		return issueTokensSuccess(ctx, deps, pool, req.ClientId, user, req.ClientMetadata)
	default:
		return ports.AuthResult{}, domain.ErrUnsupported
	}
}

func changePassword(ctx *RequestContext, deps *Deps, req ports.ChangePasswordRequest) (ports.ChangePasswordResponse, error) {
	pool, user, err := userFromAccessToken(ctx, deps, req.AccessToken)
	if err != nil {
		return ports.ChangePasswordResponse{}, err
	}
	if user.Password != req.PreviousPassword {
		return ports.ChangePasswordResponse{}, domain.ErrInvalidPassword
	}
	user.Password = req.ProposedPassword
	user.Touch(deps.Clock.Now())
	if err := pool.SaveUser(ctx, user); err != nil {
		return ports.ChangePasswordResponse{}, err
	}
	return ports.ChangePasswordResponse{}, nil
}

func revokeToken(ctx *RequestContext, deps *Deps, req ports.RevokeTokenRequest) (ports.RevokeTokenResponse, error) {
	pool, err := deps.Cognito.GetUserPoolForClientId(ctx, req.ClientId)
	if err != nil {
		return ports.RevokeTokenResponse{}, err
	}
	user, err := pool.GetUserByRefreshToken(ctx, req.Token)
	if err == nil && user != nil {
		if err := pool.RevokeRefreshToken(ctx, req.Token, user); err != nil {
			return ports.RevokeTokenResponse{}, err
		}
	}
	return ports.RevokeTokenResponse{}, nil
}
