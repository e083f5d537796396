package router

import (
	"github.com/antimatter-studios/cognito-local/internal/core/ports"
)

func (r *Router) registerUserTargets(deps *Deps) {
	r.targets[ports.OpGetUser] = bind(r.validate, func(ctx *RequestContext, req ports.GetUserRequest) (ports.GetUserResponse, error) {
		_, user, err := userFromAccessToken(ctx, deps, req.AccessToken)
		if err != nil {
			return ports.GetUserResponse{}, err
		}
		return ports.GetUserResponse{
			Username:       user.Username,
			UserAttributes: user.Attributes,
			MFAOptions:     user.MFAOptions,
		}, nil
	})
	r.targets[ports.OpListUsers] = bind(r.validate, func(ctx *RequestContext, req ports.ListUsersRequest) (ports.ListUsersResponse, error) {
		pool, err := deps.Cognito.GetUserPool(ctx, req.UserPoolId)
		if err != nil {
			return ports.ListUsersResponse{}, err
		}
		users, err := pool.ListUsers(ctx)
		if err != nil {
			return ports.ListUsersResponse{}, err
		}
		if req.Limit > 0 && len(users) > req.Limit {
			users = users[:req.Limit]
		}
		out := make([]ports.UserType, 0, len(users))
		for _, u := range users {
			out = append(out, ports.UserToWire(u))
		}
		return ports.ListUsersResponse{Users: out}, nil
	})
	r.targets[ports.OpDeleteUser] = bind(r.validate, func(ctx *RequestContext, req ports.DeleteUserRequest) (ports.DeleteUserResponse, error) {
		pool, user, err := userFromAccessToken(ctx, deps, req.AccessToken)
		if err != nil {
			return ports.DeleteUserResponse{}, err
		}
		if err := pool.DeleteUser(ctx, user); err != nil {
			return ports.DeleteUserResponse{}, err
		}
		return ports.DeleteUserResponse{}, nil
	})
	r.targets[ports.OpUpdateUserAttributes] = bind(r.validate, func(ctx *RequestContext, req ports.UpdateUserAttributesRequest) (ports.UpdateUserAttributesResponse, error) {
		return updateUserAttributes(ctx, deps, req)
	})
	r.targets[ports.OpDeleteUserAttributes] = bind(r.validate, func(ctx *RequestContext, req ports.DeleteUserAttributesRequest) (ports.DeleteUserAttributesResponse, error) {
		pool, user, err := userFromAccessToken(ctx, deps, req.AccessToken)
		if err != nil {
			return ports.DeleteUserAttributesResponse{}, err
		}
		for _, name := range req.UserAttributeNames {
			user.DeleteAttribute(name)
		}
		user.Touch(deps.Clock.Now())
		if err := pool.SaveUser(ctx, user); err != nil {
			return ports.DeleteUserAttributesResponse{}, err
		}
		return ports.DeleteUserAttributesResponse{}, nil
	})
}

// updateUserAttributes implements §4.3.3's self-service attribute update:
// every changed attribute must name a mutable schema entry (invariant 4,
// §8), and email/phone_number changes reset their *_verified companion
// unless the caller supplied it explicitly.
func updateUserAttributes(ctx *RequestContext, deps *Deps, req ports.UpdateUserAttributesRequest) (ports.UpdateUserAttributesResponse, error) {
	pool, user, err := userFromAccessToken(ctx, deps, req.AccessToken)
	if err != nil {
		return ports.UpdateUserAttributesResponse{}, err
	}
	changes, err := validatePermittedAttributeChanges(pool.Pool(), user, req.UserAttributes)
	if err != nil {
		return ports.UpdateUserAttributesResponse{}, err
	}
	for _, a := range changes {
		user.SetAttribute(a.Name, a.Value)
	}
	user.Touch(deps.Clock.Now())
	if err := pool.SaveUser(ctx, user); err != nil {
		return ports.UpdateUserAttributesResponse{}, err
	}
	return ports.UpdateUserAttributesResponse{}, nil
}
