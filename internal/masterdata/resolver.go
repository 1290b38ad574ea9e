package masterdata

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const cacheKeyPrefix = "masterdata:names:"

// NameSource provides the id-to-name pairs the resolver materialises.
// *Repository satisfies it; tests substitute fakes.
type NameSource interface {
	CenterNames(ctx context.Context) (map[string]string, error)
	LocationNames(ctx context.Context) (map[string]string, error)
	DepartmentNames(ctx context.Context) (map[string]string, error)
	EmployeeNames(ctx context.Context) (map[string]string, error)
}

// Resolver materialises reference name tables, caching each table in Redis
// with a TTL. A nil Redis client degrades to direct store reads.
type Resolver struct {
	source NameSource
	client *redis.Client
	ttl    time.Duration
}

// NewResolver constructs a resolver.
func NewResolver(source NameSource, client *redis.Client, ttl time.Duration) *Resolver {
	return &Resolver{source: source, client: client, ttl: ttl}
}

// Names loads all four name tables concurrently. A failed table is left nil
// while the others still load, so the returned table is usable alongside the
// error and callers keep whichever names did resolve.
func (r *Resolver) Names(ctx context.Context) (NameTable, error) {
	var table NameTable

	var g errgroup.Group
	g.Go(func() error {
		m, err := r.fetch(ctx, "centers", r.source.CenterNames)
		table.Centers = m
		return err
	})
	g.Go(func() error {
		m, err := r.fetch(ctx, "locations", r.source.LocationNames)
		table.Locations = m
		return err
	})
	g.Go(func() error {
		m, err := r.fetch(ctx, "departments", r.source.DepartmentNames)
		table.Departments = m
		return err
	})
	g.Go(func() error {
		m, err := r.fetch(ctx, "employees", r.source.EmployeeNames)
		table.Employees = m
		return err
	})

	err := g.Wait()
	return table, err
}

// Invalidate drops the cached tables, forcing the next Names call to reload.
func (r *Resolver) Invalidate(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	keys := []string{
		cacheKeyPrefix + "centers",
		cacheKeyPrefix + "locations",
		cacheKeyPrefix + "departments",
		cacheKeyPrefix + "employees",
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *Resolver) fetch(ctx context.Context, kind string, loader func(context.Context) (map[string]string, error)) (map[string]string, error) {
	if r.client == nil {
		return loader(ctx)
	}
	key := cacheKeyPrefix + kind
	payload, err := r.client.Get(ctx, key).Bytes()
	if err == nil {
		var cached map[string]string
		if err := json.Unmarshal(payload, &cached); err == nil {
			return cached, nil
		}
		// Corrupt cache entry falls through to a reload.
	} else if err != redis.Nil {
		return nil, err
	}

	loaded, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(loaded)
	if err != nil {
		return nil, err
	}
	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		return nil, err
	}
	return loaded, nil
}
