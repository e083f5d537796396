package router

import (
	"github.com/antimatter-studios/cognito-local/internal/core/domain"
	"github.com/antimatter-studios/cognito-local/internal/core/ports"
)

func (r *Router) registerPoolTargets(deps *Deps) {
	r.targets[ports.OpCreateUserPool] = bind(r.validate, func(ctx *RequestContext, req ports.CreateUserPoolRequest) (ports.CreateUserPoolResponse, error) {
		return createUserPool(ctx, deps, req)
	})
	r.targets[ports.OpDescribeUserPool] = bind(r.validate, func(ctx *RequestContext, req ports.DescribeUserPoolRequest) (ports.DescribeUserPoolResponse, error) {
		pool, err := deps.Cognito.GetUserPool(ctx, req.UserPoolId)
		if err != nil {
			return ports.DescribeUserPoolResponse{}, err
		}
		return ports.DescribeUserPoolResponse{UserPool: ports.PoolToWire(pool.Pool())}, nil
	})
	r.targets[ports.OpDeleteUserPool] = bind(r.validate, func(ctx *RequestContext, req ports.DeleteUserPoolRequest) (ports.DeleteUserPoolResponse, error) {
		pool, err := deps.Cognito.GetUserPool(ctx, req.UserPoolId)
		if err != nil {
			return ports.DeleteUserPoolResponse{}, err
		}
		if err := deps.Cognito.DeleteUserPool(ctx, pool.Pool()); err != nil {
			return ports.DeleteUserPoolResponse{}, err
		}
		return ports.DeleteUserPoolResponse{}, nil
	})
	r.targets[ports.OpListUserPools] = bind(r.validate, func(ctx *RequestContext, req ports.ListUserPoolsRequest) (ports.ListUserPoolsResponse, error) {
		pools, err := deps.Cognito.ListUserPools(ctx)
		if err != nil {
			return ports.ListUserPoolsResponse{}, err
		}
		out := make([]ports.UserPoolType, 0, len(pools))
		for _, p := range pools {
			out = append(out, ports.PoolToWire(p))
		}
		return ports.ListUserPoolsResponse{UserPools: out}, nil
	})
	r.targets[ports.OpGetUserPoolMfaConfig] = bind(r.validate, func(ctx *RequestContext, req ports.GetUserPoolMfaConfigRequest) (ports.GetUserPoolMfaConfigResponse, error) {
		pool, err := deps.Cognito.GetUserPool(ctx, req.UserPoolId)
		if err != nil {
			return ports.GetUserPoolMfaConfigResponse{}, err
		}
		return ports.GetUserPoolMfaConfigResponse{MfaConfiguration: pool.Pool().MfaConfiguration}, nil
	})

	r.targets[ports.OpCreateUserPoolClient] = bind(r.validate, func(ctx *RequestContext, req ports.CreateUserPoolClientRequest) (ports.CreateUserPoolClientResponse, error) {
		pool, err := deps.Cognito.GetUserPool(ctx, req.UserPoolId)
		if err != nil {
			return ports.CreateUserPoolClientResponse{}, err
		}
		client, err := pool.CreateAppClient(ctx, req.ClientName)
		if err != nil {
			return ports.CreateUserPoolClientResponse{}, err
		}
		return ports.CreateUserPoolClientResponse{UserPoolClient: ports.ClientToWire(client)}, nil
	})
	r.targets[ports.OpDescribeUserPoolClient] = bind(r.validate, func(ctx *RequestContext, req ports.DescribeUserPoolClientRequest) (ports.DescribeUserPoolClientResponse, error) {
		client, err := deps.Cognito.GetAppClient(ctx, req.ClientId)
		if err != nil {
			return ports.DescribeUserPoolClientResponse{}, err
		}
		if client.UserPoolId != req.UserPoolId {
			return ports.DescribeUserPoolClientResponse{}, domain.ErrResourceNotFound
		}
		return ports.DescribeUserPoolClientResponse{UserPoolClient: ports.ClientToWire(client)}, nil
	})
	r.targets[ports.OpDeleteUserPoolClient] = bind(r.validate, func(ctx *RequestContext, req ports.DeleteUserPoolClientRequest) (ports.DeleteUserPoolClientResponse, error) {
		client, err := deps.Cognito.GetAppClient(ctx, req.ClientId)
		if err != nil {
			return ports.DeleteUserPoolClientResponse{}, err
		}
		if client.UserPoolId != req.UserPoolId {
			return ports.DeleteUserPoolClientResponse{}, domain.ErrResourceNotFound
		}
		if err := deps.Cognito.DeleteAppClient(ctx, client); err != nil {
			return ports.DeleteUserPoolClientResponse{}, err
		}
		return ports.DeleteUserPoolClientResponse{}, nil
	})
}

func createUserPool(ctx *RequestContext, deps *Deps, req ports.CreateUserPoolRequest) (ports.CreateUserPoolResponse, error) {
	now := deps.Clock.Now()
	pool := domain.NewUserPool("", req.PoolName, now)
	pool.UsernameAttributes = req.UsernameAttributes
	pool.AutoVerifiedAttributes = req.AutoVerifiedAttributes
	if req.MfaConfiguration != "" {
		pool.MfaConfiguration = req.MfaConfiguration
	}
	if len(req.SchemaAttributes) > 0 {
		pool.SchemaAttributes = req.SchemaAttributes
	}

	svc, err := deps.Cognito.CreateUserPool(ctx, pool)
	if err != nil {
		return ports.CreateUserPoolResponse{}, err
	}
	return ports.CreateUserPoolResponse{UserPool: ports.PoolToWire(svc.Pool())}, nil
}
