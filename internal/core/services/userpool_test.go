package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antimatter-studios/cognito-local/internal/core/domain"
)

func TestUserPoolServiceSaveAndGetUser(t *testing.T) {
	ctx := context.Background()
	cognito, clock := newCognito(t)
	pool := domain.NewUserPool("", "my-pool", clock.Now())
	svc, err := cognito.CreateUserPool(ctx, pool)
	require.NoError(t, err)

	user := domain.NewUser("alice", "p", []domain.Attribute{{Name: "email", Value: "a@x.com"}}, clock.Now())
	require.NoError(t, svc.SaveUser(ctx, user))

	t.Run("GetUserByUsername resolves by direct key", func(t *testing.T) {
		got, err := svc.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, user.Sub(), got.Sub())
	})

	t.Run("GetUserByUsername resolves by sub", func(t *testing.T) {
		got, err := svc.GetUserByUsername(ctx, user.Sub())
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
	})

	t.Run("GetUserByUsername fails for an unknown username", func(t *testing.T) {
		_, err := svc.GetUserByUsername(ctx, "bob")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestUserPoolServiceEmailAlias(t *testing.T) {
	ctx := context.Background()
	cognito, clock := newCognito(t)
	pool := domain.NewUserPool("", "my-pool", clock.Now())
	pool.UsernameAttributes = []string{"email"}
	svc, err := cognito.CreateUserPool(ctx, pool)
	require.NoError(t, err)

	user := domain.NewUser("alice", "p", []domain.Attribute{{Name: "email", Value: "a@x.com"}}, clock.Now())
	require.NoError(t, svc.SaveUser(ctx, user))

	t.Run("GetUserByUsername resolves by the email alias when enabled", func(t *testing.T) {
		got, err := svc.GetUserByUsername(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
	})
}

func TestUserPoolServiceDeleteUser(t *testing.T) {
	ctx := context.Background()
	cognito, clock := newCognito(t)
	pool := domain.NewUserPool("", "my-pool", clock.Now())
	svc, err := cognito.CreateUserPool(ctx, pool)
	require.NoError(t, err)

	user := domain.NewUser("alice", "p", nil, clock.Now())
	require.NoError(t, svc.SaveUser(ctx, user))
	require.NoError(t, svc.DeleteUser(ctx, user))

	_, err = svc.GetUserByUsername(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

// TestUserPoolServiceListUsersPreservesInsertionOrder exercises the
// "UserOrder" index: map[string]any decode order is not guaranteed, but
// ListUsers must return users in the order they were first saved.
func TestUserPoolServiceListUsersPreservesInsertionOrder(t *testing.T) {
	ctx := context.Background()
	cognito, clock := newCognito(t)
	pool := domain.NewUserPool("", "my-pool", clock.Now())
	svc, err := cognito.CreateUserPool(ctx, pool)
	require.NoError(t, err)

	names := []string{"zack", "amy", "mike", "beth"}
	for _, n := range names {
		require.NoError(t, svc.SaveUser(ctx, domain.NewUser(n, "p", nil, clock.Now())))
	}

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, len(names))
	for i, n := range names {
		assert.Equal(t, n, users[i].Username)
	}

	t.Run("re-saving an existing user does not duplicate the order entry", func(t *testing.T) {
		existing, err := svc.GetUserByUsername(ctx, "amy")
		require.NoError(t, err)
		existing.Touch(clock.Now())
		require.NoError(t, svc.SaveUser(ctx, existing))

		users, err := svc.ListUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, users, len(names))
	})
}

func TestUserPoolServiceGroups(t *testing.T) {
	ctx := context.Background()
	cognito, clock := newCognito(t)
	pool := domain.NewUserPool("", "my-pool", clock.Now())
	svc, err := cognito.CreateUserPool(ctx, pool)
	require.NoError(t, err)

	order := []string{"admins", "editors", "viewers"}
	for _, name := range order {
		now := clock.Now()
		require.NoError(t, svc.SaveGroup(ctx, &domain.Group{GroupName: name, UserPoolId: pool.Id, CreationDate: now, LastModifiedDate: now}))
	}

	groups, err := svc.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, len(order))
	for i, name := range order {
		assert.Equal(t, name, groups[i].GroupName)
	}
}

func TestUserPoolServiceRefreshTokens(t *testing.T) {
	ctx := context.Background()
	cognito, clock := newCognito(t)
	pool := domain.NewUserPool("", "my-pool", clock.Now())
	svc, err := cognito.CreateUserPool(ctx, pool)
	require.NoError(t, err)

	user := domain.NewUser("alice", "p", nil, clock.Now())
	require.NoError(t, svc.SaveUser(ctx, user))
	require.NoError(t, svc.StoreRefreshToken(ctx, "refresh-token-1", user))

	t.Run("GetUserByRefreshToken resolves the owning user", func(t *testing.T) {
		got, err := svc.GetUserByRefreshToken(ctx, "refresh-token-1")
		require.NoError(t, err)
		assert.Equal(t, "alice", got.Username)
	})

	t.Run("RevokeRefreshToken removes it", func(t *testing.T) {
		require.NoError(t, svc.RevokeRefreshToken(ctx, "refresh-token-1", user))
		_, err := svc.GetUserByRefreshToken(ctx, "refresh-token-1")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestUserPoolServiceSavePool(t *testing.T) {
	ctx := context.Background()
	cognito, clock := newCognito(t)
	pool := domain.NewUserPool("", "my-pool", clock.Now())
	svc, err := cognito.CreateUserPool(ctx, pool)
	require.NoError(t, err)

	svc.Pool().MfaConfiguration = domain.MfaOn
	require.NoError(t, svc.SavePool(ctx))

	reread, err := cognito.GetUserPool(ctx, pool.Id)
	require.NoError(t, err)
	assert.Equal(t, domain.MfaOn, reread.Pool().MfaConfiguration)
}
