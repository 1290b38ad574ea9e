package masterdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	calls      int
	centersErr error
}

func (f *fakeSource) CenterNames(ctx context.Context) (map[string]string, error) {
	f.calls++
	if f.centersErr != nil {
		return nil, f.centersErr
	}
	return map[string]string{"C01": "Head Office"}, nil
}

func (f *fakeSource) LocationNames(ctx context.Context) (map[string]string, error) {
	f.calls++
	return map[string]string{"L01": "Floor 3"}, nil
}

func (f *fakeSource) DepartmentNames(ctx context.Context) (map[string]string, error) {
	f.calls++
	return map[string]string{"D01": "Finance"}, nil
}

func (f *fakeSource) EmployeeNames(ctx context.Context) (map[string]string, error) {
	f.calls++
	return map[string]string{"E01": "K. Perera"}, nil
}

func newCacheClient(t *testing.T) *redis.Client {
	t.Helper()
	srv := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: srv.Addr()})
}

func TestResolverCachesTables(t *testing.T) {
	source := &fakeSource{}
	resolver := NewResolver(source, newCacheClient(t), time.Minute)

	table, err := resolver.Names(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, source.calls)

	name := table.Center("C01")
	require.NotNil(t, name)
	require.Equal(t, "Head Office", *name)
	require.Nil(t, table.Center("C99"))
	require.Nil(t, table.Center(""))

	// Second load is served from the cache.
	table, err = resolver.Names(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, source.calls)
	require.NotNil(t, table.Employee("E01"))
}

func TestResolverInvalidateForcesReload(t *testing.T) {
	source := &fakeSource{}
	resolver := NewResolver(source, newCacheClient(t), time.Minute)

	_, err := resolver.Names(context.Background())
	require.NoError(t, err)
	require.NoError(t, resolver.Invalidate(context.Background()))

	_, err = resolver.Names(context.Background())
	require.NoError(t, err)
	require.Equal(t, 8, source.calls)
}

func TestResolverKeepsLoadedTablesOnPartialFailure(t *testing.T) {
	source := &fakeSource{centersErr: errors.New("centers table missing")}
	resolver := NewResolver(source, nil, time.Minute)

	table, err := resolver.Names(context.Background())
	require.Error(t, err)
	require.Nil(t, table.Center("C01"))
	require.NotNil(t, table.Location("L01"))
	require.NotNil(t, table.Department("D01"))
	require.NotNil(t, table.Employee("E01"))
}

func TestResolverWithoutCacheReadsThrough(t *testing.T) {
	source := &fakeSource{}
	resolver := NewResolver(source, nil, time.Minute)

	for i := 0; i < 2; i++ {
		table, err := resolver.Names(context.Background())
		require.NoError(t, err)
		require.NotNil(t, table.Department("D01"))
	}
	require.Equal(t, 8, source.calls)
}
