package lambda_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antimatter-studios/cognito-local/internal/adapters/secondary/lambda"
	"github.com/antimatter-studios/cognito-local/internal/core/domain"
	"github.com/antimatter-studios/cognito-local/internal/core/ports"
)

func writeScript(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".js"), []byte(body), 0o644))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGojaLambdaInvoke(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "pre-signup", `
		function handler(event) {
			event.response.autoConfirmUser = true;
			event.response.autoVerifyEmail = true;
			return event;
		}
	`)
	functions := map[ports.TriggerName]string{ports.TriggerPreSignUp: "pre-signup"}
	runner := lambda.NewGojaLambda(dir, functions, time.Second, discardLogger())

	resp, err := runner.Invoke(context.Background(), ports.TriggerPreSignUp, ports.LambdaEvent{
		Source: "PreSignUp_SignUp", Username: "alice", UserPoolId: "pool-1",
	})
	require.NoError(t, err)
	assert.Equal(t, true, resp["autoConfirmUser"])
	assert.Equal(t, true, resp["autoVerifyEmail"])
}

func TestGojaLambdaUnconfiguredTrigger(t *testing.T) {
	runner := lambda.NewGojaLambda(t.TempDir(), map[ports.TriggerName]string{}, time.Second, discardLogger())
	_, err := runner.Invoke(context.Background(), ports.TriggerPreSignUp, ports.LambdaEvent{})
	assert.ErrorIs(t, err, domain.ErrUnexpectedLambdaException)
}

func TestGojaLambdaMissingHandler(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "no-handler", `var x = 1;`)
	functions := map[ports.TriggerName]string{ports.TriggerPreSignUp: "no-handler"}
	runner := lambda.NewGojaLambda(dir, functions, time.Second, discardLogger())

	_, err := runner.Invoke(context.Background(), ports.TriggerPreSignUp, ports.LambdaEvent{})
	assert.ErrorIs(t, err, domain.ErrUnexpectedLambdaException)
}

func TestGojaLambdaHandlerThrows(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "throws", `
		function handler(event) {
			throw new Error("validation failed");
		}
	`)
	functions := map[ports.TriggerName]string{ports.TriggerPreSignUp: "throws"}
	runner := lambda.NewGojaLambda(dir, functions, time.Second, discardLogger())

	_, err := runner.Invoke(context.Background(), ports.TriggerPreSignUp, ports.LambdaEvent{})
	assert.ErrorIs(t, err, domain.ErrUserLambdaValidation)
}

func TestGojaLambdaMissingResponseField(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "bad-shape", `
		function handler(event) {
			return {notResponse: true};
		}
	`)
	functions := map[ports.TriggerName]string{ports.TriggerPreSignUp: "bad-shape"}
	runner := lambda.NewGojaLambda(dir, functions, time.Second, discardLogger())

	_, err := runner.Invoke(context.Background(), ports.TriggerPreSignUp, ports.LambdaEvent{})
	assert.ErrorIs(t, err, domain.ErrInvalidLambdaResponse)
}

func TestGojaLambdaCancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeScript(t, dir, "pre-signup", `
		function handler(event) { return event; }
	`)
	functions := map[ports.TriggerName]string{ports.TriggerPreSignUp: "pre-signup"}
	runner := lambda.NewGojaLambda(dir, functions, time.Second, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Invoke(ctx, ports.TriggerPreSignUp, ports.LambdaEvent{})
	assert.ErrorIs(t, err, domain.ErrUnexpectedLambdaException)
}
