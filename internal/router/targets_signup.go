package router

import (
	"github.com/antimatter-studios/cognito-local/internal/core/domain"
	"github.com/antimatter-studios/cognito-local/internal/core/ports"
)

func (r *Router) registerSignUpTargets(deps *Deps) {
	r.targets[ports.OpSignUp] = bind(r.validate, func(ctx *RequestContext, req ports.SignUpRequest) (ports.SignUpResponse, error) {
		return signUp(ctx, deps, req)
	})
	r.targets[ports.OpConfirmSignUp] = bind(r.validate, func(ctx *RequestContext, req ports.ConfirmSignUpRequest) (ports.ConfirmSignUpResponse, error) {
		return confirmSignUp(ctx, deps, req)
	})
	r.targets[ports.OpAdminConfirmSignUp] = bind(r.validate, func(ctx *RequestContext, req ports.AdminConfirmSignUpRequest) (ports.AdminConfirmSignUpResponse, error) {
		return adminConfirmSignUp(ctx, deps, req)
	})
	r.targets[ports.OpForgotPassword] = bind(r.validate, func(ctx *RequestContext, req ports.ForgotPasswordRequest) (ports.ForgotPasswordResponse, error) {
		return forgotPassword(ctx, deps, req)
	})
	r.targets[ports.OpConfirmForgotPassword] = bind(r.validate, func(ctx *RequestContext, req ports.ConfirmForgotPasswordRequest) (ports.ConfirmForgotPasswordResponse, error) {
		return confirmForgotPassword(ctx, deps, req)
	})
	r.targets[ports.OpVerifyUserAttribute] = bind(r.validate, func(ctx *RequestContext, req ports.VerifyUserAttributeRequest) (ports.VerifyUserAttributeResponse, error) {
		return verifyUserAttribute(ctx, deps, req)
	})
	r.targets[ports.OpGetUserAttributeVerificationCode] = bind(r.validate, func(ctx *RequestContext, req ports.GetUserAttributeVerificationCodeRequest) (ports.GetUserAttributeVerificationCodeResponse, error) {
		return getUserAttributeVerificationCode(ctx, deps, req)
	})
}

// signUp implements §4.3.1.
func signUp(ctx *RequestContext, deps *Deps, req ports.SignUpRequest) (ports.SignUpResponse, error) {
	pool, err := deps.Cognito.GetUserPoolForClientId(ctx, req.ClientId)
	if err != nil {
		return ports.SignUpResponse{}, err
	}

	if existing, _ := pool.GetUserByUsername(ctx, req.Username); existing != nil {
		return ports.SignUpResponse{}, domain.ErrUsernameExists
	}

	now := deps.Clock.Now()
	user := domain.NewUser(req.Username, req.Password, req.UserAttributes, now)

	if deps.Triggers.Enabled(ports.TriggerPreSignUp) {
		out, err := deps.Triggers.PreSignUp(ctx, ports.PreSignUpInput{
			ClientId:       req.ClientId,
			Source:         "PreSignUp_SignUp",
			Username:       user.Username,
			UserPoolId:     pool.Pool().Id,
			UserAttributes: user.AttributesAsMap(),
			ClientMetadata: req.ClientMetadata,
			ValidationData: attrsToMap(req.ValidationData),
		})
		if err != nil {
			return ports.SignUpResponse{}, WithMessage(domain.ErrUserLambdaValidation, err.Error())
		}
		if out.AutoConfirmUser {
			user.UserStatus = domain.UserStatusConfirmed
		}
		if email, ok := user.Attribute("email"); out.AutoVerifyEmail && ok && email != "" {
			user.SetAttribute("email_verified", "true")
		}
		if phone, ok := user.Attribute("phone_number"); out.AutoVerifyPhone && ok && phone != "" {
			user.SetAttribute("phone_number_verified", "true")
		}
	}

	var delivery *ports.CodeDeliveryDetails
	channel := autoVerifyChannel(pool.Pool(), user)
	if channel != "" {
		email, hasEmail := user.Attribute("email")
		phone, hasPhone := user.Attribute("phone_number")
		var destination, attrName string
		switch channel {
		case "phone_number":
			if !hasPhone {
				return ports.SignUpResponse{}, WithMessage(domain.ErrInvalidParameter, "User has no attribute matching desired auto verified attributes")
			}
			destination, attrName = phone, "phone_number"
		case "email":
			if !hasEmail {
				return ports.SignUpResponse{}, WithMessage(domain.ErrInvalidParameter, "User has no attribute matching desired auto verified attributes")
			}
			destination, attrName = email, "email"
		}

		code := deps.OTP.Generate()
		user.ConfirmationCode = code
		details := ports.DeliveryDetails{AttributeName: attrName, DeliveryMedium: channelMedium(channel), Destination: destination}
		if err := deps.Messages.Deliver(ctx, "SignUp", req.ClientId, pool.Pool().Id, user, code, req.ClientMetadata, details); err != nil {
			return ports.SignUpResponse{}, err
		}
		delivery = &ports.CodeDeliveryDetails{AttributeName: attrName, DeliveryMedium: details.DeliveryMedium, Destination: destination}
	}

	if err := pool.SaveUser(ctx, user); err != nil {
		return ports.SignUpResponse{}, err
	}

	if user.UserStatus == domain.UserStatusConfirmed && deps.Triggers.Enabled(ports.TriggerPostConfirmation) {
		attrs := user.AttributesAsMap()
		attrs["cognito:user_status"] = domain.UserStatusConfirmed
		if err := deps.Triggers.PostConfirmation(ctx, ports.PostConfirmationInput{
			ClientId:       req.ClientId,
			Source:         "PostConfirmation_ConfirmSignUp",
			Username:       user.Username,
			UserPoolId:     pool.Pool().Id,
			UserAttributes: attrs,
			ClientMetadata: req.ClientMetadata,
		}); err != nil {
			return ports.SignUpResponse{}, WithMessage(domain.ErrUserLambdaValidation, err.Error())
		}
	}

	deps.publish(ctx, "identity.user.signed_up", map[string]any{"userPoolId": pool.Pool().Id, "username": user.Username, "sub": user.Sub()})

	return ports.SignUpResponse{
		UserConfirmed:       user.UserStatus == domain.UserStatusConfirmed,
		UserSub:             user.Sub(),
		CodeDeliveryDetails: delivery,
	}, nil
}

// autoVerifyChannel picks the single channel SignUp should dispatch a
// confirmation code to, per §4.3.1 step 4. Empty string means skip.
func autoVerifyChannel(pool *domain.UserPool, user *domain.User) string {
	if len(pool.AutoVerifiedAttributes) == 0 {
		return ""
	}
	_, hasPhone := user.Attribute("phone_number")
	_, hasEmail := user.Attribute("email")
	if pool.HasAutoVerifiedAttribute("phone_number") && pool.HasAutoVerifiedAttribute("email") && hasPhone && hasEmail {
		return "phone_number"
	}
	if pool.HasAutoVerifiedAttribute("phone_number") {
		return "phone_number"
	}
	if pool.HasAutoVerifiedAttribute("email") {
		return "email"
	}
	return ""
}

func channelMedium(attr string) string {
	if attr == "phone_number" {
		return "SMS"
	}
	return "EMAIL"
}

func confirmSignUp(ctx *RequestContext, deps *Deps, req ports.ConfirmSignUpRequest) (ports.ConfirmSignUpResponse, error) {
	pool, err := deps.Cognito.GetUserPoolForClientId(ctx, req.ClientId)
	if err != nil {
		return ports.ConfirmSignUpResponse{}, err
	}
	user, err := pool.GetUserByUsername(ctx, req.Username)
	if err != nil || user == nil {
		return ports.ConfirmSignUpResponse{}, domain.ErrUserNotFound
	}
	if user.ConfirmationCode == "" || user.ConfirmationCode != req.ConfirmationCode {
		return ports.ConfirmSignUpResponse{}, domain.ErrCodeMismatch
	}

	user.UserStatus = domain.UserStatusConfirmed
	user.ConfirmationCode = ""
	if _, ok := user.Attribute("email"); ok && pool.Pool().HasAutoVerifiedAttribute("email") {
		user.SetAttribute("email_verified", "true")
	}
	if _, ok := user.Attribute("phone_number"); ok && pool.Pool().HasAutoVerifiedAttribute("phone_number") {
		user.SetAttribute("phone_number_verified", "true")
	}
	user.Touch(deps.Clock.Now())
	if err := pool.SaveUser(ctx, user); err != nil {
		return ports.ConfirmSignUpResponse{}, err
	}

	if deps.Triggers.Enabled(ports.TriggerPostConfirmation) {
		attrs := user.AttributesAsMap()
		attrs["cognito:user_status"] = domain.UserStatusConfirmed
		if err := deps.Triggers.PostConfirmation(ctx, ports.PostConfirmationInput{
			ClientId:       req.ClientId,
			Source:         "PostConfirmation_ConfirmSignUp",
			Username:       user.Username,
			UserPoolId:     pool.Pool().Id,
			UserAttributes: attrs,
			ClientMetadata: req.ClientMetadata,
		}); err != nil {
			return ports.ConfirmSignUpResponse{}, WithMessage(domain.ErrUserLambdaValidation, err.Error())
		}
	}

	deps.publish(ctx, "identity.user.confirmed", map[string]any{"userPoolId": pool.Pool().Id, "username": user.Username})
	return ports.ConfirmSignUpResponse{}, nil
}

func adminConfirmSignUp(ctx *RequestContext, deps *Deps, req ports.AdminConfirmSignUpRequest) (ports.AdminConfirmSignUpResponse, error) {
	pool, err := deps.Cognito.GetUserPool(ctx, req.UserPoolId)
	if err != nil {
		return ports.AdminConfirmSignUpResponse{}, err
	}
	user, err := pool.GetUserByUsername(ctx, req.Username)
	if err != nil || user == nil {
		return ports.AdminConfirmSignUpResponse{}, domain.ErrUserNotFound
	}
	user.UserStatus = domain.UserStatusConfirmed
	user.ConfirmationCode = ""
	user.Touch(deps.Clock.Now())
	if err := pool.SaveUser(ctx, user); err != nil {
		return ports.AdminConfirmSignUpResponse{}, err
	}
	return ports.AdminConfirmSignUpResponse{}, nil
}

func forgotPassword(ctx *RequestContext, deps *Deps, req ports.ForgotPasswordRequest) (ports.ForgotPasswordResponse, error) {
	pool, err := deps.Cognito.GetUserPoolForClientId(ctx, req.ClientId)
	if err != nil {
		return ports.ForgotPasswordResponse{}, err
	}
	user, err := pool.GetUserByUsername(ctx, req.Username)
	if err != nil || user == nil {
		return ports.ForgotPasswordResponse{}, domain.ErrUserNotFound
	}

	code := deps.OTP.Generate()
	user.ConfirmationCode = code
	user.UserStatus = domain.UserStatusResetRequired
	user.Touch(deps.Clock.Now())

	destination, attrName, medium := "", "email", "EMAIL"
	if v, ok := user.Attribute("phone_number"); ok && pool.Pool().HasAutoVerifiedAttribute("phone_number") {
		destination, attrName, medium = v, "phone_number", "SMS"
	} else if v, ok := user.Attribute("email"); ok {
		destination, attrName, medium = v, "email", "EMAIL"
	}
	details := ports.DeliveryDetails{AttributeName: attrName, DeliveryMedium: medium, Destination: destination}
	if err := deps.Messages.Deliver(ctx, "ForgotPassword", req.ClientId, pool.Pool().Id, user, code, req.ClientMetadata, details); err != nil {
		return ports.ForgotPasswordResponse{}, err
	}
	if err := pool.SaveUser(ctx, user); err != nil {
		return ports.ForgotPasswordResponse{}, err
	}

	return ports.ForgotPasswordResponse{
		CodeDeliveryDetails: &ports.CodeDeliveryDetails{AttributeName: attrName, DeliveryMedium: medium, Destination: destination},
	}, nil
}

func confirmForgotPassword(ctx *RequestContext, deps *Deps, req ports.ConfirmForgotPasswordRequest) (ports.ConfirmForgotPasswordResponse, error) {
	pool, err := deps.Cognito.GetUserPoolForClientId(ctx, req.ClientId)
	if err != nil {
		return ports.ConfirmForgotPasswordResponse{}, err
	}
	user, err := pool.GetUserByUsername(ctx, req.Username)
	if err != nil || user == nil {
		return ports.ConfirmForgotPasswordResponse{}, domain.ErrUserNotFound
	}
	if user.ConfirmationCode == "" || user.ConfirmationCode != req.ConfirmationCode {
		return ports.ConfirmForgotPasswordResponse{}, domain.ErrCodeMismatch
	}
	user.Password = req.Password
	user.ConfirmationCode = ""
	user.UserStatus = domain.UserStatusConfirmed
	user.Touch(deps.Clock.Now())
	if err := pool.SaveUser(ctx, user); err != nil {
		return ports.ConfirmForgotPasswordResponse{}, err
	}
	return ports.ConfirmForgotPasswordResponse{}, nil
}

func verifyUserAttribute(ctx *RequestContext, deps *Deps, req ports.VerifyUserAttributeRequest) (ports.VerifyUserAttributeResponse, error) {
	pool, user, err := userFromAccessToken(ctx, deps, req.AccessToken)
	if err != nil {
		return ports.VerifyUserAttributeResponse{}, err
	}
	if user.AttributeVerificationCode == "" || user.AttributeVerificationCode != req.Code {
		return ports.VerifyUserAttributeResponse{}, domain.ErrCodeMismatch
	}
	user.SetAttribute(req.AttributeName+"_verified", "true")
	user.AttributeVerificationCode = ""
	user.Touch(deps.Clock.Now())
	if err := pool.SaveUser(ctx, user); err != nil {
		return ports.VerifyUserAttributeResponse{}, err
	}
	return ports.VerifyUserAttributeResponse{}, nil
}

func getUserAttributeVerificationCode(ctx *RequestContext, deps *Deps, req ports.GetUserAttributeVerificationCodeRequest) (ports.GetUserAttributeVerificationCodeResponse, error) {
	pool, user, err := userFromAccessToken(ctx, deps, req.AccessToken)
	if err != nil {
		return ports.GetUserAttributeVerificationCodeResponse{}, err
	}
	value, ok := user.Attribute(req.AttributeName)
	if !ok || value == "" {
		return ports.GetUserAttributeVerificationCodeResponse{}, WithMessage(domain.ErrInvalidParameter, "user has no value for "+req.AttributeName)
	}

	code := deps.OTP.Generate()
	user.AttributeVerificationCode = code
	user.Touch(deps.Clock.Now())

	medium := "EMAIL"
	if req.AttributeName == "phone_number" {
		medium = "SMS"
	}
	details := ports.DeliveryDetails{AttributeName: req.AttributeName, DeliveryMedium: medium, Destination: value}
	if err := deps.Messages.Deliver(ctx, "VerifyUserAttribute", "", pool.Pool().Id, user, code, req.ClientMetadata, details); err != nil {
		return ports.GetUserAttributeVerificationCodeResponse{}, err
	}
	if err := pool.SaveUser(ctx, user); err != nil {
		return ports.GetUserAttributeVerificationCodeResponse{}, err
	}

	return ports.GetUserAttributeVerificationCodeResponse{
		CodeDeliveryDetails: &ports.CodeDeliveryDetails{AttributeName: req.AttributeName, DeliveryMedium: medium, Destination: value},
	}, nil
}
