// Package lambda is the synchronous, in-process stand-in for invoking a
// user's trigger code, grounded on the goja VM-per-call pattern used to
// sandbox workflow scripts in the retrieved pack (no real Lambda runtime
// or network hop is available locally).
package lambda

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dop251/goja"

	"github.com/antimatter-studios/cognito-local/internal/core/domain"
	"github.com/antimatter-studios/cognito-local/internal/core/ports"
)

const defaultTimeout = 15 * time.Second

// GojaLambda implements ports.Lambda. Each trigger name configured in
// Functions resolves to "<Dir>/<functionName>.js", evaluated in a fresh VM
// per invocation so no state leaks between requests.
type GojaLambda struct {
	Dir       string
	Functions map[ports.TriggerName]string
	Timeout   time.Duration
	Logger    *slog.Logger
}

func NewGojaLambda(dir string, functions map[ports.TriggerName]string, timeout time.Duration, logger *slog.Logger) *GojaLambda {
	return &GojaLambda{Dir: dir, Functions: functions, Timeout: timeout, Logger: logger}
}

type invokeResult struct {
	value map[string]any
	err   error
	fatal bool // true when the failure is in VM setup, not the handler body
}

func (l *GojaLambda) Invoke(ctx context.Context, trigger ports.TriggerName, event ports.LambdaEvent) (map[string]any, error) {
	fnName, ok := l.Functions[trigger]
	if !ok {
		return nil, fmt.Errorf("%w: trigger %s is not configured", domain.ErrUnexpectedLambdaException, trigger)
	}

	path := filepath.Join(l.Dir, fnName+".js")
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnexpectedLambdaException, err)
	}

	envelope := buildEnvelope(trigger, event)
	resultCh := make(chan invokeResult, 1)

	go func() {
		vm := goja.New()
		if _, err := vm.RunScript(fnName+".js", string(src)); err != nil {
			resultCh <- invokeResult{err: err, fatal: true}
			return
		}
		handlerVal := vm.Get("handler")
		if handlerVal == nil || goja.IsUndefined(handlerVal) {
			resultCh <- invokeResult{err: fmt.Errorf("%s.js does not define a handler function", fnName), fatal: true}
			return
		}
		handler, ok := goja.AssertFunction(handlerVal)
		if !ok {
			resultCh <- invokeResult{err: fmt.Errorf("%s.js handler is not callable", fnName), fatal: true}
			return
		}

		result, err := handler(goja.Undefined(), vm.ToValue(envelope))
		if err != nil {
			resultCh <- invokeResult{err: err}
			return
		}

		var out map[string]any
		if err := vm.ExportTo(result, &out); err != nil {
			resultCh <- invokeResult{err: err}
			return
		}
		resultCh <- invokeResult{value: out}
	}()

	timeout := l.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", domain.ErrUnexpectedLambdaException, ctx.Err())
	case <-time.After(timeout):
		return nil, fmt.Errorf("%w: %s timed out after %s", domain.ErrUnexpectedLambdaException, fnName, timeout)
	case res := <-resultCh:
		if res.err != nil {
			if res.fatal {
				return nil, fmt.Errorf("%w: %v", domain.ErrUnexpectedLambdaException, res.err)
			}
			return nil, fmt.Errorf("%w: %v", domain.ErrUserLambdaValidation, res.err)
		}
		resp, ok := res.value["response"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s did not return a response object", domain.ErrInvalidLambdaResponse, fnName)
		}
		return resp, nil
	}
}

// buildEnvelope synthesizes the published event shape for triggerSource,
// per §4.4 step 2: version and region are hard-coded (documented fidelity
// risk, see DESIGN.md's Open Questions), callerContext carries a
// synthetic SDK version and the caller's ClientId.
func buildEnvelope(trigger ports.TriggerName, event ports.LambdaEvent) map[string]any {
	request := map[string]any{
		"userAttributes": event.UserAttributes,
	}
	if event.ValidationData != nil {
		request["validationData"] = event.ValidationData
	}
	if event.ClientMetadata != nil {
		request["clientMetadata"] = event.ClientMetadata
	}
	if event.Password != "" {
		request["password"] = event.Password
	}
	if event.CodeParameter != "" {
		request["codeParameter"] = event.CodeParameter
	}

	return map[string]any{
		"version":       "0",
		"region":        "local",
		"userPoolId":    event.UserPoolId,
		"userName":      event.Username,
		"triggerSource": event.Source,
		"callerContext": map[string]any{
			"awsSdkVersion": "aws-sdk-unknown",
			"clientId":      event.ClientId,
		},
		"request":  request,
		"response": map[string]any{},
	}
}
