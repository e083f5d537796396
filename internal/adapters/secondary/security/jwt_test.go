package security_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antimatter-studios/cognito-local/internal/adapters/secondary/security"
	"github.com/antimatter-studios/cognito-local/internal/core/domain"
	"github.com/antimatter-studios/cognito-local/internal/core/ports"
	"github.com/antimatter-studios/cognito-local/internal/testsupport"
)

type noopTriggers struct{}

func (noopTriggers) Enabled(ports.TriggerName) bool { return false }
func (noopTriggers) PreSignUp(context.Context, ports.PreSignUpInput) (ports.PreSignUpOutput, error) {
	return ports.PreSignUpOutput{}, nil
}
func (noopTriggers) PostConfirmation(context.Context, ports.PostConfirmationInput) error { return nil }
func (noopTriggers) PostAuthentication(context.Context, ports.PostAuthenticationInput) error {
	return nil
}
func (noopTriggers) UserMigration(context.Context, ports.UserMigrationInput) (*domain.User, error) {
	return nil, nil
}
func (noopTriggers) CustomMessage(context.Context, ports.CustomMessageInput) (ports.CustomMessageOutput, error) {
	return ports.CustomMessageOutput{}, nil
}
func (noopTriggers) PreTokenGeneration(context.Context, ports.PreTokenGenerationInput) (ports.PreTokenGenerationOutput, error) {
	return ports.PreTokenGenerationOutput{}, nil
}

func newTestProvider(t *testing.T) (*security.JWTProvider, *testsupport.FakeClock) {
	t.Helper()
	keys, err := security.NewKeyMaterial()
	require.NoError(t, err)
	clock := testsupport.NewFakeClock(time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	return security.NewJWTProvider(keys, noopTriggers{}, clock, "http://localhost:9229"), clock
}

func TestJWTProviderIssueAndValidate(t *testing.T) {
	ctx := context.Background()
	provider, clock := newTestProvider(t)

	user := domain.NewUser("alice", "p", []domain.Attribute{{Name: "email", Value: "a@x.com"}}, clock.Now())

	t.Run("issues a triple including a refresh token when requested", func(t *testing.T) {
		tokens, err := provider.Issue(ctx, ports.TokenParams{
			ClientId: "client-1", UserPoolId: "pool-1", User: user,
			Source: "Authentication", IncludeRefreshToken: true,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEmpty(t, tokens.IdToken)
		assert.NotEmpty(t, tokens.RefreshToken)
	})

	t.Run("omits the refresh token for a refresh-flow issuance", func(t *testing.T) {
		tokens, err := provider.Issue(ctx, ports.TokenParams{
			ClientId: "client-1", UserPoolId: "pool-1", User: user,
			Source: "RefreshTokens", IncludeRefreshToken: false,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEmpty(t, tokens.IdToken)
		assert.Empty(t, tokens.RefreshToken)
	})

	t.Run("Validate resolves claims from a freshly issued access token", func(t *testing.T) {
		tokens, err := provider.Issue(ctx, ports.TokenParams{
			ClientId: "client-1", UserPoolId: "pool-1", User: user, Source: "Authentication",
		})
		require.NoError(t, err)

		claims, err := provider.Validate(ctx, tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.Sub(), claims.Sub)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, "client-1", claims.ClientId)
		assert.Equal(t, "pool-1", claims.UserPoolId)
	})

	t.Run("Validate rejects an id token presented as an access token", func(t *testing.T) {
		tokens, err := provider.Issue(ctx, ports.TokenParams{
			ClientId: "client-1", UserPoolId: "pool-1", User: user, Source: "Authentication",
		})
		require.NoError(t, err)

		_, err = provider.Validate(ctx, tokens.IdToken)
		assert.Error(t, err)
	})

	t.Run("Validate rejects a malformed token", func(t *testing.T) {
		_, err := provider.Validate(ctx, "not-a-jwt")
		assert.Error(t, err)
	})

	t.Run("Validate rejects a token signed by a different key", func(t *testing.T) {
		otherKeys, err := security.NewKeyMaterial()
		require.NoError(t, err)
		other := security.NewJWTProvider(otherKeys, noopTriggers{}, clock, "http://localhost:9229")
		tokens, err := other.Issue(ctx, ports.TokenParams{
			ClientId: "client-1", UserPoolId: "pool-1", User: user, Source: "Authentication",
		})
		require.NoError(t, err)

		_, err = provider.Validate(ctx, tokens.AccessToken)
		assert.Error(t, err)
	})
}

func TestKeyMaterialJWKS(t *testing.T) {
	keys, err := security.NewKeyMaterial()
	require.NoError(t, err)

	doc := keys.JWKS()
	require.Len(t, doc.Keys, 1)
	assert.Equal(t, "RSA", doc.Keys[0].Kty)
	assert.Equal(t, keys.Kid, doc.Keys[0].Kid)
	assert.Equal(t, "RS256", doc.Keys[0].Alg)
}
