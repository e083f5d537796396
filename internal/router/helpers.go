package router

import (
	"github.com/antimatter-studios/cognito-local/internal/core/domain"
	"github.com/antimatter-studios/cognito-local/internal/core/ports"
)

// userFromAccessToken validates an access token and resolves the pool +
// user it names. Shared by every Target that authenticates via bearer
// token rather than a ClientId/Username pair.
func userFromAccessToken(ctx *RequestContext, deps *Deps, accessToken string) (ports.UserPoolService, *domain.User, error) {
	claims, err := deps.Tokens.Validate(ctx, accessToken)
	if err != nil {
		return nil, nil, domain.ErrNotAuthorized
	}
	pool, err := deps.Cognito.GetUserPool(ctx, claims.UserPoolId)
	if err != nil {
		return nil, nil, err
	}
	user, err := pool.GetUserByUsername(ctx, claims.Username)
	if err != nil || user == nil {
		return nil, nil, domain.ErrUserNotFound
	}
	return pool, user, nil
}
