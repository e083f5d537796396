package services

import (
	"context"
	"sync"

	"github.com/antimatter-studios/cognito-local/internal/core/domain"
	"github.com/antimatter-studios/cognito-local/internal/core/ports"
)

// userPoolService implements ports.UserPoolService over one pool's
// DataStore, per §4.2. It owns that store but only borrows the shared
// Clients store passed in from CognitoService (§9's ownership note).
type userPoolService struct {
	mu           sync.Mutex
	ds           ports.DataStore
	pool         *domain.UserPool
	clock        ports.Clock
	clientsStore func(ctx context.Context) (ports.DataStore, error)
}

func newUserPoolService(ds ports.DataStore, pool *domain.UserPool, clock ports.Clock, clientsStore func(ctx context.Context) (ports.DataStore, error)) *userPoolService {
	return &userPoolService{ds: ds, pool: pool, clock: clock, clientsStore: clientsStore}
}

func (s *userPoolService) Pool() *domain.UserPool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool
}

func (s *userPoolService) SavePool(ctx context.Context) error {
	s.mu.Lock()
	pool := s.pool
	s.mu.Unlock()
	m, err := toMap(pool)
	if err != nil {
		return err
	}
	return s.ds.Set(ctx, []string{"Options"}, m)
}

func (s *userPoolService) CreateAppClient(ctx context.Context, name string) (*domain.AppClient, error) {
	client := domain.NewAppClient(name, s.Pool().Id, s.clock.Now())
	clients, err := s.clientsStore(ctx)
	if err != nil {
		return nil, err
	}
	m, err := toMap(client)
	if err != nil {
		return nil, err
	}
	if err := clients.Set(ctx, []string{client.ClientId}, m); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *userPoolService) SaveUser(ctx context.Context, user *domain.User) error {
	if err := s.appendOrder(ctx, "UserOrder", user.Username); err != nil {
		return err
	}
	m, err := toMap(user)
	if err != nil {
		return err
	}
	return s.ds.Set(ctx, []string{"Users", user.Username}, m)
}

func (s *userPoolService) DeleteUser(ctx context.Context, user *domain.User) error {
	if err := s.removeOrder(ctx, "UserOrder", user.Username); err != nil {
		return err
	}
	return s.ds.Delete(ctx, []string{"Users", user.Username})
}

// GetUserByUsername resolves by direct key first, then scans for a
// matching sub, then (if the pool enables the alias) email/phone_number,
// returning the first match in insertion order (§4.2).
func (s *userPoolService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	raw, err := s.ds.Get(ctx, []string{"Users", username}, nil)
	if err != nil {
		return nil, err
	}
	if raw != nil {
		var user domain.User
		if err := fromMap(raw, &user); err != nil {
			return nil, err
		}
		return &user, nil
	}

	users, err := s.allUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Sub() == username {
			return u, nil
		}
	}
	pool := s.Pool()
	if pool.HasUsernameAttribute("email") {
		for _, u := range users {
			if v, ok := u.Attribute("email"); ok && v == username {
				return u, nil
			}
		}
	}
	if pool.HasUsernameAttribute("phone_number") {
		for _, u := range users {
			if v, ok := u.Attribute("phone_number"); ok && v == username {
				return u, nil
			}
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *userPoolService) GetUserByRefreshToken(ctx context.Context, token string) (*domain.User, error) {
	users, err := s.allUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		for _, t := range u.RefreshTokens {
			if t == token {
				return u, nil
			}
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *userPoolService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.allUsers(ctx)
}

func (s *userPoolService) SaveGroup(ctx context.Context, group *domain.Group) error {
	if err := s.appendOrder(ctx, "GroupOrder", group.GroupName); err != nil {
		return err
	}
	m, err := toMap(group)
	if err != nil {
		return err
	}
	return s.ds.Set(ctx, []string{"Groups", group.GroupName}, m)
}

func (s *userPoolService) ListGroups(ctx context.Context) ([]*domain.Group, error) {
	order, err := s.order(ctx, "GroupOrder")
	if err != nil {
		return nil, err
	}
	raw, err := s.ds.Get(ctx, []string{"Groups"}, map[string]any{})
	if err != nil {
		return nil, err
	}
	all, _ := raw.(map[string]any)

	groups := make([]*domain.Group, 0, len(order))
	for _, name := range order {
		entry, ok := all[name]
		if !ok {
			continue
		}
		var g domain.Group
		if err := fromMap(entry, &g); err != nil {
			return nil, err
		}
		groups = append(groups, &g)
	}
	return groups, nil
}

func (s *userPoolService) StoreRefreshToken(ctx context.Context, token string, user *domain.User) error {
	user.RefreshTokens = append(user.RefreshTokens, token)
	return s.SaveUser(ctx, user)
}

func (s *userPoolService) RevokeRefreshToken(ctx context.Context, token string, user *domain.User) error {
	out := user.RefreshTokens[:0]
	for _, t := range user.RefreshTokens {
		if t != token {
			out = append(out, t)
		}
	}
	user.RefreshTokens = out
	return s.SaveUser(ctx, user)
}

// allUsers returns every user in insertion order, tracked separately from
// the "Users" object because JSON-object key order isn't preserved across
// a decode into map[string]any.
func (s *userPoolService) allUsers(ctx context.Context) ([]*domain.User, error) {
	order, err := s.order(ctx, "UserOrder")
	if err != nil {
		return nil, err
	}
	raw, err := s.ds.Get(ctx, []string{"Users"}, map[string]any{})
	if err != nil {
		return nil, err
	}
	all, _ := raw.(map[string]any)

	users := make([]*domain.User, 0, len(order))
	for _, name := range order {
		entry, ok := all[name]
		if !ok {
			continue
		}
		var u domain.User
		if err := fromMap(entry, &u); err != nil {
			return nil, err
		}
		users = append(users, &u)
	}
	return users, nil
}

func (s *userPoolService) order(ctx context.Context, key string) ([]string, error) {
	raw, err := s.ds.Get(ctx, []string{key}, []any{})
	if err != nil {
		return nil, err
	}
	// appendOrder/removeOrder store a []string in memory; a document
	// reloaded from disk holds the same list as []any.
	if names, ok := raw.([]string); ok {
		return append([]string(nil), names...), nil
	}
	items, _ := raw.([]any)
	out := make([]string, 0, len(items))
	for _, it := range items {
		if str, ok := it.(string); ok {
			out = append(out, str)
		}
	}
	return out, nil
}

func (s *userPoolService) appendOrder(ctx context.Context, key, name string) error {
	order, err := s.order(ctx, key)
	if err != nil {
		return err
	}
	for _, n := range order {
		if n == name {
			return nil
		}
	}
	order = append(order, name)
	return s.ds.Set(ctx, []string{key}, order)
}

func (s *userPoolService) removeOrder(ctx context.Context, key, name string) error {
	order, err := s.order(ctx, key)
	if err != nil {
		return err
	}
	out := order[:0]
	for _, n := range order {
		if n != name {
			out = append(out, n)
		}
	}
	return s.ds.Set(ctx, []string{key}, out)
}
