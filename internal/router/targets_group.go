package router

import (
	"github.com/antimatter-studios/cognito-local/internal/core/domain"
	"github.com/antimatter-studios/cognito-local/internal/core/ports"
)

func (r *Router) registerGroupTargets(deps *Deps) {
	r.targets[ports.OpCreateGroup] = bind(r.validate, func(ctx *RequestContext, req ports.CreateGroupRequest) (ports.CreateGroupResponse, error) {
		pool, err := deps.Cognito.GetUserPool(ctx, req.UserPoolId)
		if err != nil {
			return ports.CreateGroupResponse{}, err
		}
		now := deps.Clock.Now()
		group := &domain.Group{
			GroupName:        req.GroupName,
			UserPoolId:       req.UserPoolId,
			Description:      req.Description,
			Precedence:       req.Precedence,
			RoleArn:          req.RoleArn,
			CreationDate:     now,
			LastModifiedDate: now,
		}
		if err := pool.SaveGroup(ctx, group); err != nil {
			return ports.CreateGroupResponse{}, err
		}
		return ports.CreateGroupResponse{Group: ports.GroupToWire(group)}, nil
	})
	r.targets[ports.OpListGroups] = bind(r.validate, func(ctx *RequestContext, req ports.ListGroupsRequest) (ports.ListGroupsResponse, error) {
		pool, err := deps.Cognito.GetUserPool(ctx, req.UserPoolId)
		if err != nil {
			return ports.ListGroupsResponse{}, err
		}
		groups, err := pool.ListGroups(ctx)
		if err != nil {
			return ports.ListGroupsResponse{}, err
		}
		out := make([]ports.GroupType, 0, len(groups))
		for _, g := range groups {
			out = append(out, ports.GroupToWire(g))
		}
		return ports.ListGroupsResponse{Groups: out}, nil
	})
}
