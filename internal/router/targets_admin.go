package router

import (
	"github.com/google/uuid"

	"github.com/antimatter-studios/cognito-local/internal/core/domain"
	"github.com/antimatter-studios/cognito-local/internal/core/ports"
)

func (r *Router) registerAdminTargets(deps *Deps) {
	r.targets[ports.OpAdminCreateUser] = bind(r.validate, func(ctx *RequestContext, req ports.AdminCreateUserRequest) (ports.AdminCreateUserResponse, error) {
		return adminCreateUser(ctx, deps, req)
	})
	r.targets[ports.OpAdminDeleteUser] = bind(r.validate, func(ctx *RequestContext, req ports.AdminDeleteUserRequest) (ports.AdminDeleteUserResponse, error) {
		return adminDeleteUser(ctx, deps, req)
	})
	r.targets[ports.OpAdminGetUser] = bind(r.validate, func(ctx *RequestContext, req ports.AdminGetUserRequest) (ports.AdminGetUserResponse, error) {
		return adminGetUser(ctx, deps, req)
	})
	r.targets[ports.OpAdminSetUserPassword] = bind(r.validate, func(ctx *RequestContext, req ports.AdminSetUserPasswordRequest) (ports.AdminSetUserPasswordResponse, error) {
		return adminSetUserPassword(ctx, deps, req)
	})
	r.targets[ports.OpAdminUpdateUserAttributes] = bind(r.validate, func(ctx *RequestContext, req ports.AdminUpdateUserAttributesRequest) (ports.AdminUpdateUserAttributesResponse, error) {
		return adminUpdateUserAttributes(ctx, deps, req)
	})
	r.targets[ports.OpAdminDeleteUserAttributes] = bind(r.validate, func(ctx *RequestContext, req ports.AdminDeleteUserAttributesRequest) (ports.AdminDeleteUserAttributesResponse, error) {
		return adminDeleteUserAttributes(ctx, deps, req)
	})
}

// adminCreateUser implements §4.3.3's admin-provisioning path: the operator
// supplies attributes and an optional temporary password, the user lands in
// FORCE_CHANGE_PASSWORD unless PreSignUp auto-confirms it, and a welcome
// message goes out unless MessageAction suppresses it.
func adminCreateUser(ctx *RequestContext, deps *Deps, req ports.AdminCreateUserRequest) (ports.AdminCreateUserResponse, error) {
	pool, err := deps.Cognito.GetUserPool(ctx, req.UserPoolId)
	if err != nil {
		return ports.AdminCreateUserResponse{}, err
	}
	if existing, _ := pool.GetUserByUsername(ctx, req.Username); existing != nil {
		return ports.AdminCreateUserResponse{}, domain.ErrUsernameExists
	}

	password := req.TemporaryPassword
	if password == "" {
		password = uuid.NewString()
	}

	now := deps.Clock.Now()
	user := domain.NewUser(req.Username, password, req.UserAttributes, now)
	user.UserStatus = domain.UserStatusForceChangePassword

	if deps.Triggers.Enabled(ports.TriggerPreSignUp) {
		out, err := deps.Triggers.PreSignUp(ctx, ports.PreSignUpInput{
			Source:         "PreSignUp_AdminCreateUser",
			Username:       user.Username,
			UserPoolId:     pool.Pool().Id,
			UserAttributes: user.AttributesAsMap(),
			ClientMetadata: req.ClientMetadata,
		})
		if err != nil {
			return ports.AdminCreateUserResponse{}, WithMessage(domain.ErrUserLambdaValidation, err.Error())
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

	if req.MessageAction != "SUPPRESS" {
		destination, attrName, medium := "", "email", "EMAIL"
		if v, ok := user.Attribute("phone_number"); ok {
			destination, attrName, medium = v, "phone_number", "SMS"
		} else if v, ok := user.Attribute("email"); ok {
			destination, attrName, medium = v, "email", "EMAIL"
		}
		if destination != "" {
			details := ports.DeliveryDetails{AttributeName: attrName, DeliveryMedium: medium, Destination: destination}
			if err := deps.Messages.Deliver(ctx, "AdminCreateUser", "", pool.Pool().Id, user, password, req.ClientMetadata, details); err != nil {
				return ports.AdminCreateUserResponse{}, err
			}
		}
	}

	if err := pool.SaveUser(ctx, user); err != nil {
		return ports.AdminCreateUserResponse{}, err
	}
	deps.publish(ctx, "identity.user.admin_created", map[string]any{"userPoolId": pool.Pool().Id, "username": user.Username})
	return ports.AdminCreateUserResponse{User: ports.UserToWire(user)}, nil
}

func adminDeleteUser(ctx *RequestContext, deps *Deps, req ports.AdminDeleteUserRequest) (ports.AdminDeleteUserResponse, error) {
	pool, err := deps.Cognito.GetUserPool(ctx, req.UserPoolId)
	if err != nil {
		return ports.AdminDeleteUserResponse{}, err
	}
	user, err := pool.GetUserByUsername(ctx, req.Username)
	if err != nil || user == nil {
		return ports.AdminDeleteUserResponse{}, domain.ErrUserNotFound
	}
	if err := pool.DeleteUser(ctx, user); err != nil {
		return ports.AdminDeleteUserResponse{}, err
	}
	return ports.AdminDeleteUserResponse{}, nil
}

func adminGetUser(ctx *RequestContext, deps *Deps, req ports.AdminGetUserRequest) (ports.AdminGetUserResponse, error) {
	pool, err := deps.Cognito.GetUserPool(ctx, req.UserPoolId)
	if err != nil {
		return ports.AdminGetUserResponse{}, err
	}
	user, err := pool.GetUserByUsername(ctx, req.Username)
	if err != nil || user == nil {
		return ports.AdminGetUserResponse{}, domain.ErrUserNotFound
	}
	return ports.AdminGetUserResponse{
		Username:             user.Username,
		UserAttributes:       user.Attributes,
		UserStatus:           user.UserStatus,
		Enabled:              user.Enabled,
		MFAOptions:           user.MFAOptions,
		UserCreateDate:       user.UserCreateDate.Unix(),
		UserLastModifiedDate: user.UserLastModifiedDate.Unix(),
	}, nil
}

func adminSetUserPassword(ctx *RequestContext, deps *Deps, req ports.AdminSetUserPasswordRequest) (ports.AdminSetUserPasswordResponse, error) {
	pool, err := deps.Cognito.GetUserPool(ctx, req.UserPoolId)
	if err != nil {
		return ports.AdminSetUserPasswordResponse{}, err
	}
	user, err := pool.GetUserByUsername(ctx, req.Username)
	if err != nil || user == nil {
		return ports.AdminSetUserPasswordResponse{}, domain.ErrUserNotFound
	}
	user.Password = req.Password
	if req.Permanent {
		user.UserStatus = domain.UserStatusConfirmed
	} else {
		user.UserStatus = domain.UserStatusForceChangePassword
	}
	user.Touch(deps.Clock.Now())
	if err := pool.SaveUser(ctx, user); err != nil {
		return ports.AdminSetUserPasswordResponse{}, err
	}
	return ports.AdminSetUserPasswordResponse{}, nil
}

func adminUpdateUserAttributes(ctx *RequestContext, deps *Deps, req ports.AdminUpdateUserAttributesRequest) (ports.AdminUpdateUserAttributesResponse, error) {
	pool, err := deps.Cognito.GetUserPool(ctx, req.UserPoolId)
	if err != nil {
		return ports.AdminUpdateUserAttributesResponse{}, err
	}
	user, err := pool.GetUserByUsername(ctx, req.Username)
	if err != nil || user == nil {
		return ports.AdminUpdateUserAttributesResponse{}, domain.ErrUserNotFound
	}
	changes, err := validatePermittedAttributeChanges(pool.Pool(), user, req.UserAttributes)
	if err != nil {
		return ports.AdminUpdateUserAttributesResponse{}, err
	}
	for _, a := range changes {
		user.SetAttribute(a.Name, a.Value)
	}
	user.Touch(deps.Clock.Now())
	if err := pool.SaveUser(ctx, user); err != nil {
		return ports.AdminUpdateUserAttributesResponse{}, err
	}
	return ports.AdminUpdateUserAttributesResponse{}, nil
}

func adminDeleteUserAttributes(ctx *RequestContext, deps *Deps, req ports.AdminDeleteUserAttributesRequest) (ports.AdminDeleteUserAttributesResponse, error) {
	pool, err := deps.Cognito.GetUserPool(ctx, req.UserPoolId)
	if err != nil {
		return ports.AdminDeleteUserAttributesResponse{}, err
	}
	user, err := pool.GetUserByUsername(ctx, req.Username)
	if err != nil || user == nil {
		return ports.AdminDeleteUserAttributesResponse{}, domain.ErrUserNotFound
	}
	for _, name := range req.UserAttributeNames {
		user.DeleteAttribute(name)
	}
	user.Touch(deps.Clock.Now())
	if err := pool.SaveUser(ctx, user); err != nil {
		return ports.AdminDeleteUserAttributesResponse{}, err
	}
	return ports.AdminDeleteUserAttributesResponse{}, nil
}
