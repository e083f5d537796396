// Package router implements §4.7: a closed map from wire operation name to
// Target, assembled once at startup, plus the error-taxonomy translation
// that every Target's error return goes through on the way out.
package router

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/antimatter-studios/cognito-local/internal/core/domain"
	"github.com/antimatter-studios/cognito-local/internal/core/ports"
)

// TargetFunc is one operation's handler. It receives the raw JSON body;
// bind decodes and validates it into the typed request before the
// operation's own logic runs. Returning domain errors (or
// router.WireError) lets Translate do its job uniformly.
type TargetFunc func(ctx *RequestContext, body []byte) (any, error)

// Router holds the closed operation -> Target map.
type Router struct {
	targets  map[ports.OperationName]TargetFunc
	validate *validator.Validate
}

// New builds the Router and registers every Target against deps. This is
// the one place the full ~33-operation set is wired together.
func New(deps *Deps) *Router {
	r := &Router{
		targets:  make(map[ports.OperationName]TargetFunc),
		validate: validator.New(),
	}
	r.registerSignUpTargets(deps)
	r.registerAuthTargets(deps)
	r.registerAdminTargets(deps)
	r.registerPoolTargets(deps)
	r.registerUserTargets(deps)
	r.registerGroupTargets(deps)
	return r
}

// Route dispatches one request. Unknown operations yield UnsupportedError
// (§4.7); a Target's own error is translated at the boundary.
func (r *Router) Route(ctx *RequestContext, op ports.OperationName, body []byte) (any, error) {
	target, ok := r.targets[op]
	if !ok {
		return nil, domain.ErrUnsupported
	}
	resp, err := target(ctx, body)
	if err != nil {
		return nil, Translate(err)
	}
	return resp, nil
}

// bind is shared decode+validate+dispatch plumbing used by every
// registerXTargets file, so each Target body only states its own logic.
func bind[Req any, Res any](v *validator.Validate, fn func(ctx *RequestContext, req Req) (Res, error)) TargetFunc {
	return func(ctx *RequestContext, body []byte) (any, error) {
		var req Req
		if len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				return nil, WithMessage(domain.ErrInvalidParameter, fmt.Sprintf("malformed request body: %v", err))
			}
		}
		if err := v.Struct(req); err != nil {
			return nil, WithMessage(domain.ErrInvalidParameter, err.Error())
		}
		return fn(ctx, req)
	}
}
