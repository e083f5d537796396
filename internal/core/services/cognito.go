package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/antimatter-studios/cognito-local/internal/core/domain"
	"github.com/antimatter-studios/cognito-local/internal/core/ports"
)

const (
	clientsStoreId = "Clients"
	poolsIndexId   = "Pools"
)

// Cognito implements ports.CognitoService on top of a DataStoreFactory.
// Each pool gets its own DataStore (named by pool id); a "Clients" store
// and a "Pools" order index are shared across every pool (§9: app clients
// are addressable without knowing their owning pool up front, and the
// factory has no native listing operation).
type Cognito struct {
	Factory ports.DataStoreFactory
	Clock   ports.Clock

	mu    sync.Mutex
	pools map[string]ports.UserPoolService
}

func NewCognito(factory ports.DataStoreFactory, clock ports.Clock) *Cognito {
	return &Cognito{
		Factory: factory,
		Clock:   clock,
		pools:   make(map[string]ports.UserPoolService),
	}
}

func (c *Cognito) clientsStore(ctx context.Context) (ports.DataStore, error) {
	return c.Factory.Create(ctx, clientsStoreId, map[string]any{})
}

func (c *Cognito) poolsIndex(ctx context.Context) (ports.DataStore, error) {
	return c.Factory.Create(ctx, poolsIndexId, map[string]any{"Ids": []any{}})
}

func (c *Cognito) GetUserPool(ctx context.Context, poolId string) (ports.UserPoolService, error) {
	c.mu.Lock()
	if svc, ok := c.pools[poolId]; ok {
		c.mu.Unlock()
		return svc, nil
	}
	c.mu.Unlock()

	ds, err := c.Factory.Get(ctx, poolId)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, domain.WithMessage(domain.ErrResourceNotFound, fmt.Sprintf("User pool %s does not exist.", poolId))
	}
	return c.wrap(ctx, poolId, ds)
}

// wrap loads the pool's "Options" document out of ds and caches the
// constructed UserPoolService, so repeated lookups share one instance.
func (c *Cognito) wrap(ctx context.Context, poolId string, ds ports.DataStore) (ports.UserPoolService, error) {
	raw, err := ds.Get(ctx, []string{"Options"}, nil)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, domain.WithMessage(domain.ErrResourceNotFound, fmt.Sprintf("User pool %s does not exist.", poolId))
	}
	var pool domain.UserPool
	if err := fromMap(raw, &pool); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if svc, ok := c.pools[pool.Id]; ok {
		return svc, nil
	}
	svc := newUserPoolService(ds, &pool, c.Clock, c.clientsStore)
	c.pools[pool.Id] = svc
	return svc, nil
}

func (c *Cognito) GetUserPoolForClientId(ctx context.Context, clientId string) (ports.UserPoolService, error) {
	client, err := c.GetAppClient(ctx, clientId)
	if err != nil {
		return nil, err
	}
	return c.GetUserPool(ctx, client.UserPoolId)
}

func (c *Cognito) CreateUserPool(ctx context.Context, pool *domain.UserPool) (ports.UserPoolService, error) {
	ds, err := c.Factory.Create(ctx, pool.Id, map[string]any{})
	if err != nil {
		return nil, err
	}
	m, err := toMap(pool)
	if err != nil {
		return nil, err
	}
	if err := ds.Set(ctx, []string{"Options"}, m); err != nil {
		return nil, err
	}
	if err := c.addToPoolsIndex(ctx, pool.Id); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	svc := newUserPoolService(ds, pool, c.Clock, c.clientsStore)
	c.pools[pool.Id] = svc
	return svc, nil
}

func (c *Cognito) DeleteUserPool(ctx context.Context, pool *domain.UserPool) error {
	c.mu.Lock()
	delete(c.pools, pool.Id)
	c.mu.Unlock()

	if err := c.removeFromPoolsIndex(ctx, pool.Id); err != nil {
		return err
	}
	return c.Factory.Delete(ctx, pool.Id)
}

func (c *Cognito) ListUserPools(ctx context.Context) ([]*domain.UserPool, error) {
	index, err := c.poolsIndex(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := index.Get(ctx, []string{"Ids"}, []any{})
	if err != nil {
		return nil, err
	}
	ids, _ := raw.([]any)

	pools := make([]*domain.UserPool, 0, len(ids))
	for _, idVal := range ids {
		id, ok := idVal.(string)
		if !ok {
			continue
		}
		svc, err := c.GetUserPool(ctx, id)
		if err != nil {
			continue
		}
		pools = append(pools, svc.Pool())
	}
	return pools, nil
}

func (c *Cognito) addToPoolsIndex(ctx context.Context, poolId string) error {
	index, err := c.poolsIndex(ctx)
	if err != nil {
		return err
	}
	raw, err := index.Get(ctx, []string{"Ids"}, []any{})
	if err != nil {
		return err
	}
	ids, _ := raw.([]any)
	for _, idVal := range ids {
		if idVal == poolId {
			return nil
		}
	}
	ids = append(ids, poolId)
	return index.Set(ctx, []string{"Ids"}, ids)
}

func (c *Cognito) removeFromPoolsIndex(ctx context.Context, poolId string) error {
	index, err := c.poolsIndex(ctx)
	if err != nil {
		return err
	}
	raw, err := index.Get(ctx, []string{"Ids"}, []any{})
	if err != nil {
		return err
	}
	ids, _ := raw.([]any)
	out := ids[:0]
	for _, idVal := range ids {
		if idVal != poolId {
			out = append(out, idVal)
		}
	}
	return index.Set(ctx, []string{"Ids"}, out)
}

func (c *Cognito) GetAppClient(ctx context.Context, clientId string) (*domain.AppClient, error) {
	clients, err := c.clientsStore(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := clients.Get(ctx, []string{clientId}, nil)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, domain.WithMessage(domain.ErrResourceNotFound, fmt.Sprintf("App client %s does not exist.", clientId))
	}
	var client domain.AppClient
	if err := fromMap(raw, &client); err != nil {
		return nil, err
	}
	return &client, nil
}

func (c *Cognito) DeleteAppClient(ctx context.Context, client *domain.AppClient) error {
	clients, err := c.clientsStore(ctx)
	if err != nil {
		return err
	}
	return clients.Delete(ctx, []string{client.ClientId})
}
