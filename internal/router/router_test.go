package router_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antimatter-studios/cognito-local/internal/adapters/secondary/datastore"
	"github.com/antimatter-studios/cognito-local/internal/adapters/secondary/messages"
	"github.com/antimatter-studios/cognito-local/internal/adapters/secondary/security"
	"github.com/antimatter-studios/cognito-local/internal/core/domain"
	"github.com/antimatter-studios/cognito-local/internal/core/ports"
	"github.com/antimatter-studios/cognito-local/internal/core/services"
	"github.com/antimatter-studios/cognito-local/internal/router"
	"github.com/antimatter-studios/cognito-local/internal/testsupport"
)

// fakeTriggers is a directly-configurable ports.Triggers double, used in
// place of the goja runner so tests can assert exactly what a trigger was
// called with and control what it returns, without a .js file on disk.
type fakeTriggers struct {
	enabled map[ports.TriggerName]bool

	preSignUpOutput ports.PreSignUpOutput
	preSignUpIn     *ports.PreSignUpInput

	postConfirmationIn *ports.PostConfirmationInput
}

func (f *fakeTriggers) Enabled(name ports.TriggerName) bool { return f.enabled[name] }

func (f *fakeTriggers) PreSignUp(ctx context.Context, in ports.PreSignUpInput) (ports.PreSignUpOutput, error) {
	f.preSignUpIn = &in
	return f.preSignUpOutput, nil
}

func (f *fakeTriggers) PostConfirmation(ctx context.Context, in ports.PostConfirmationInput) error {
	f.postConfirmationIn = &in
	return nil
}

func (f *fakeTriggers) PostAuthentication(context.Context, ports.PostAuthenticationInput) error {
	return nil
}

func (f *fakeTriggers) UserMigration(context.Context, ports.UserMigrationInput) (*domain.User, error) {
	return nil, nil
}

func (f *fakeTriggers) CustomMessage(context.Context, ports.CustomMessageInput) (ports.CustomMessageOutput, error) {
	return ports.CustomMessageOutput{}, nil
}

func (f *fakeTriggers) PreTokenGeneration(context.Context, ports.PreTokenGenerationInput) (ports.PreTokenGenerationOutput, error) {
	return ports.PreTokenGenerationOutput{}, nil
}

type testHarness struct {
	router   *router.Router
	deps     *router.Deps
	clock    *testsupport.FakeClock
	triggers *fakeTriggers
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	factory, err := datastore.NewFileFactory(t.TempDir())
	require.NoError(t, err)
	clock := testsupport.NewFakeClock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	cognito := services.NewCognito(factory, clock)
	keys, err := security.NewKeyMaterial()
	require.NoError(t, err)

	triggers := &fakeTriggers{enabled: map[ports.TriggerName]bool{}}
	tokens := security.NewJWTProvider(keys, triggers, clock, "http://localhost:9229")
	delivery := messages.NewConsoleDelivery(discardLogger())
	renderer := services.NewMessageRenderer(triggers, delivery)

	deps := &router.Deps{
		Cognito:  cognito,
		Tokens:   tokens,
		Clock:    clock,
		OTP:      services.FixedOTP{Code: "1234"},
		Triggers: triggers,
		Messages: renderer,
	}
	return &testHarness{router: router.New(deps), deps: deps, clock: clock, triggers: triggers}
}

func (h *testHarness) ctx() *router.RequestContext {
	return router.NewRequestContext(context.Background(), discardLogger(), "test-request")
}

// route marshals req, dispatches op, and unmarshals the response into out.
func route[Req any](t *testing.T, h *testHarness, op ports.OperationName, req Req, out any) error {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	resp, werr := h.router.Route(h.ctx(), op, body)
	if werr != nil {
		return werr
	}
	respBody, err := json.Marshal(resp)
	require.NoError(t, err)
	return json.Unmarshal(respBody, out)
}

func createPoolAndClient(t *testing.T, h *testHarness, configure func(*domain.UserPool)) (string, string) {
	t.Helper()
	pool := domain.NewUserPool("", "test-pool", h.clock.Now())
	if configure != nil {
		configure(pool)
	}
	svc, err := h.deps.Cognito.CreateUserPool(h.ctx(), pool)
	require.NoError(t, err)
	client, err := svc.CreateAppClient(h.ctx(), "test-client")
	require.NoError(t, err)
	return pool.Id, client.ClientId
}

// Scenario 1: duplicate sign-up.
func TestScenario_DuplicateSignUp(t *testing.T) {
	h := newHarness(t)
	_, clientId := createPoolAndClient(t, h, nil)

	req := ports.SignUpRequest{
		ClientId: clientId, Username: "alice", Password: "p",
		UserAttributes: []domain.Attribute{{Name: "email", Value: "a@x.com"}},
	}
	var resp ports.SignUpResponse
	require.NoError(t, route(t, h, ports.OpSignUp, req, &resp))
	assert.NotEmpty(t, resp.UserSub)

	err := route(t, h, ports.OpSignUp, req, &resp)
	require.Error(t, err)
	var wireErr *router.WireError
	require.ErrorAs(t, err, &wireErr)
	assert.Equal(t, "UsernameExistsException", wireErr.Type)
}

// Scenario 2: sign-up -> confirm -> sign-in.
func TestScenario_SignUpConfirmSignIn(t *testing.T) {
	h := newHarness(t)
	_, clientId := createPoolAndClient(t, h, func(p *domain.UserPool) {
		p.AutoVerifiedAttributes = []string{"email"}
	})

	signUpReq := ports.SignUpRequest{
		ClientId: clientId, Username: "alice", Password: "p",
		UserAttributes: []domain.Attribute{{Name: "email", Value: "a@x.com"}},
	}
	var signUpResp ports.SignUpResponse
	require.NoError(t, route(t, h, ports.OpSignUp, signUpReq, &signUpResp))
	assert.False(t, signUpResp.UserConfirmed)
	require.NotNil(t, signUpResp.CodeDeliveryDetails)
	assert.Equal(t, "EMAIL", signUpResp.CodeDeliveryDetails.DeliveryMedium)

	confirmReq := ports.ConfirmSignUpRequest{ClientId: clientId, Username: "alice", ConfirmationCode: "1234"}
	var confirmResp ports.ConfirmSignUpResponse
	require.NoError(t, route(t, h, ports.OpConfirmSignUp, confirmReq, &confirmResp))

	authReq := ports.InitiateAuthRequest{
		ClientId: clientId, AuthFlow: "USER_PASSWORD_AUTH",
		AuthParameters: map[string]string{"USERNAME": "alice", "PASSWORD": "p"},
	}
	var authResp ports.AuthResult
	require.NoError(t, route(t, h, ports.OpInitiateAuth, authReq, &authResp))
	assert.Equal(t, "PASSWORD_VERIFIER", authResp.ChallengeName)
	require.NotNil(t, authResp.AuthenticationResult)
	assert.NotEmpty(t, authResp.AuthenticationResult.AccessToken)
	assert.NotEmpty(t, authResp.AuthenticationResult.IdToken)
	assert.NotEmpty(t, authResp.AuthenticationResult.RefreshToken)
}

// Scenario 3: wrong confirmation code.
func TestScenario_WrongConfirmationCode(t *testing.T) {
	h := newHarness(t)
	_, clientId := createPoolAndClient(t, h, func(p *domain.UserPool) {
		p.AutoVerifiedAttributes = []string{"email"}
	})

	signUpReq := ports.SignUpRequest{
		ClientId: clientId, Username: "alice", Password: "p",
		UserAttributes: []domain.Attribute{{Name: "email", Value: "a@x.com"}},
	}
	var signUpResp ports.SignUpResponse
	require.NoError(t, route(t, h, ports.OpSignUp, signUpReq, &signUpResp))

	confirmReq := ports.ConfirmSignUpRequest{ClientId: clientId, Username: "alice", ConfirmationCode: "9999"}
	var confirmResp ports.ConfirmSignUpResponse
	err := route(t, h, ports.OpConfirmSignUp, confirmReq, &confirmResp)
	require.Error(t, err)
	var wireErr *router.WireError
	require.ErrorAs(t, err, &wireErr)
	assert.Equal(t, "CodeMismatchException", wireErr.Type)

	pool, err := h.deps.Cognito.GetUserPoolForClientId(h.ctx(), clientId)
	require.NoError(t, err)
	user, err := pool.GetUserByUsername(h.ctx(), "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusUnconfirmed, user.UserStatus)
}

// Scenario 4: refresh.
func TestScenario_Refresh(t *testing.T) {
	h := newHarness(t)
	_, clientId := createPoolAndClient(t, h, func(p *domain.UserPool) {
		p.AutoVerifiedAttributes = []string{"email"}
	})

	signUpReq := ports.SignUpRequest{
		ClientId: clientId, Username: "alice", Password: "p",
		UserAttributes: []domain.Attribute{{Name: "email", Value: "a@x.com"}},
	}
	var signUpResp ports.SignUpResponse
	require.NoError(t, route(t, h, ports.OpSignUp, signUpReq, &signUpResp))
	require.NoError(t, route(t, h, ports.OpConfirmSignUp,
		ports.ConfirmSignUpRequest{ClientId: clientId, Username: "alice", ConfirmationCode: "1234"},
		&ports.ConfirmSignUpResponse{}))

	var authResp ports.AuthResult
	require.NoError(t, route(t, h, ports.OpInitiateAuth, ports.InitiateAuthRequest{
		ClientId: clientId, AuthFlow: "USER_PASSWORD_AUTH",
		AuthParameters: map[string]string{"USERNAME": "alice", "PASSWORD": "p"},
	}, &authResp))
	refreshToken := authResp.AuthenticationResult.RefreshToken
	require.NotEmpty(t, refreshToken)

	var refreshResp ports.AuthResult
	require.NoError(t, route(t, h, ports.OpInitiateAuth, ports.InitiateAuthRequest{
		ClientId: clientId, AuthFlow: "REFRESH_TOKEN",
		AuthParameters: map[string]string{"REFRESH_TOKEN": refreshToken},
	}, &refreshResp))
	require.NotNil(t, refreshResp.AuthenticationResult)
	assert.NotEmpty(t, refreshResp.AuthenticationResult.AccessToken)
	assert.NotEmpty(t, refreshResp.AuthenticationResult.IdToken)
	assert.Empty(t, refreshResp.AuthenticationResult.RefreshToken)

	t.Run("the same refresh token may be replayed", func(t *testing.T) {
		var again ports.AuthResult
		require.NoError(t, route(t, h, ports.OpInitiateAuth, ports.InitiateAuthRequest{
			ClientId: clientId, AuthFlow: "REFRESH_TOKEN",
			AuthParameters: map[string]string{"REFRESH_TOKEN": refreshToken},
		}, &again))
		assert.NotEmpty(t, again.AuthenticationResult.AccessToken)
	})
}

// Scenario 5: forgotten pool.
func TestScenario_ForgottenPool(t *testing.T) {
	h := newHarness(t)

	var resp ports.DescribeUserPoolResponse
	err := route(t, h, ports.OpDescribeUserPool, ports.DescribeUserPoolRequest{UserPoolId: "missing"}, &resp)
	require.Error(t, err)
	var wireErr *router.WireError
	require.ErrorAs(t, err, &wireErr)
	assert.Equal(t, "ResourceNotFoundException", wireErr.Type)
	assert.Equal(t, "User pool missing does not exist.", wireErr.Message)
}

// Scenario 6: PreSignUp autoConfirm + autoVerifyEmail.
func TestScenario_PreSignUpAutoConfirm(t *testing.T) {
	h := newHarness(t)
	h.triggers.enabled[ports.TriggerPreSignUp] = true
	h.triggers.enabled[ports.TriggerPostConfirmation] = true
	h.triggers.preSignUpOutput = ports.PreSignUpOutput{
		AutoConfirmUser: true, AutoVerifyEmail: true, AutoVerifyPhone: false,
	}

	_, clientId := createPoolAndClient(t, h, nil)

	signUpReq := ports.SignUpRequest{
		ClientId: clientId, Username: "alice", Password: "p",
		UserAttributes: []domain.Attribute{{Name: "email", Value: "a@x.com"}},
	}
	var signUpResp ports.SignUpResponse
	require.NoError(t, route(t, h, ports.OpSignUp, signUpReq, &signUpResp))
	assert.True(t, signUpResp.UserConfirmed)

	pool, err := h.deps.Cognito.GetUserPoolForClientId(h.ctx(), clientId)
	require.NoError(t, err)
	user, err := pool.GetUserByUsername(h.ctx(), "alice")
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusConfirmed, user.UserStatus)
	verified, ok := user.Attribute("email_verified")
	assert.True(t, ok)
	assert.Equal(t, "true", verified)

	require.NotNil(t, h.triggers.postConfirmationIn)
	assert.Equal(t, "PostConfirmation_ConfirmSignUp", h.triggers.postConfirmationIn.Source)
	assert.Equal(t, domain.UserStatusConfirmed, h.triggers.postConfirmationIn.UserAttributes["cognito:user_status"])
}

// Invariant 6 (§8): SignUp then InitiateAuth(USER_PASSWORD_AUTH) with
// matching password and AutoVerifiedAttributes=[] yields PASSWORD_VERIFIER
// and a parseable id token.
func TestInvariant_SignUpThenPasswordAuthWithNoAutoVerify(t *testing.T) {
	h := newHarness(t)
	_, clientId := createPoolAndClient(t, h, nil)

	var signUpResp ports.SignUpResponse
	require.NoError(t, route(t, h, ports.OpSignUp, ports.SignUpRequest{
		ClientId: clientId, Username: "alice", Password: "p",
	}, &signUpResp))
	assert.Nil(t, signUpResp.CodeDeliveryDetails)

	var authResp ports.AuthResult
	require.NoError(t, route(t, h, ports.OpInitiateAuth, ports.InitiateAuthRequest{
		ClientId: clientId, AuthFlow: "USER_PASSWORD_AUTH",
		AuthParameters: map[string]string{"USERNAME": "alice", "PASSWORD": "p"},
	}, &authResp))
	assert.Equal(t, "PASSWORD_VERIFIER", authResp.ChallengeName)
	require.NotEmpty(t, authResp.AuthenticationResult.IdToken)

	claims, err := h.deps.Tokens.Validate(h.ctx(), authResp.AuthenticationResult.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
}

func TestWrongPassword(t *testing.T) {
	h := newHarness(t)
	_, clientId := createPoolAndClient(t, h, nil)

	require.NoError(t, route(t, h, ports.OpSignUp, ports.SignUpRequest{
		ClientId: clientId, Username: "alice", Password: "p",
	}, &ports.SignUpResponse{}))

	var authResp ports.AuthResult
	err := route(t, h, ports.OpInitiateAuth, ports.InitiateAuthRequest{
		ClientId: clientId, AuthFlow: "USER_PASSWORD_AUTH",
		AuthParameters: map[string]string{"USERNAME": "alice", "PASSWORD": "wrong"},
	}, &authResp)
	require.Error(t, err)
	var wireErr *router.WireError
	require.ErrorAs(t, err, &wireErr)
	assert.Equal(t, "InvalidPasswordException", wireErr.Type)
}

// TestUnsupportedOperation exercises the one Route path that does not
// already run through Translate (the HTTP adapter calls Translate on
// whatever Route returns, so the raw sentinel reaching here is expected).
func TestUnsupportedOperation(t *testing.T) {
	h := newHarness(t)
	_, err := h.router.Route(h.ctx(), "NotARealOperation", []byte("{}"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupported)

	wireErr := router.Translate(err)
	assert.Equal(t, "UnsupportedException", wireErr.Type)
}
