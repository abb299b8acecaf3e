package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type iconRequest struct {
	PackageName string
}

// fakeManager records Set calls and serves canned Get results.
type fakeManager struct {
	values   map[string]string
	setCalls int
}

func newFakeManager() *fakeManager {
	return &fakeManager{values: map[string]string{}}
}

func (f *fakeManager) Get(ctx context.Context, key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

func (f *fakeManager) GetWithRefresh(ctx context.Context, key string, ttl time.Duration) (string, bool) {
	return f.Get(ctx, key)
}

func (f *fakeManager) Set(ctx context.Context, key string, value string, ttl time.Duration) {
	f.setCalls++
	f.values[key] = value
}

func (f *fakeManager) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeManager) Flush(ctx context.Context) error {
	f.values = map[string]string{}
	return nil
}

func TestReadThroughCache_Get_WithCacheDisabled(t *testing.T) {
	manager := newFakeManager()

	loads := 0
	rtc := NewReadThroughCache[string, string, iconRequest](
		manager,
		func(ctx context.Context, input iconRequest) (string, error) {
			loads++
			return "icon:" + input.PackageName, nil
		},
		true,
	)

	value, err := rtc.Get(context.Background(), "vim", iconRequest{PackageName: "vim"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, "icon:vim", value)
	require.Equal(t, 1, loads)
	require.Zero(t, manager.setCalls, "disabled cache must never be written")
}

func TestReadThroughCache_Get_WithValueInCache(t *testing.T) {
	manager := newFakeManager()
	manager.values["vim"] = "cached-icon"

	rtc := NewReadThroughCache[string, string, iconRequest](
		manager,
		func(ctx context.Context, input iconRequest) (string, error) {
			t.Fatal("loader must not run on cache hit")
			return "", nil
		},
		false,
	)

	value, err := rtc.Get(context.Background(), "vim", iconRequest{PackageName: "vim"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, "cached-icon", value)
}

func TestReadThroughCache_Get_EmptyCache(t *testing.T) {
	manager := newFakeManager()

	rtc := NewReadThroughCache[string, string, iconRequest](
		manager,
		func(ctx context.Context, input iconRequest) (string, error) {
			return "icon:" + input.PackageName, nil
		},
		false,
	)

	value, err := rtc.Get(context.Background(), "vim", iconRequest{PackageName: "vim"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, "icon:vim", value)
	require.Equal(t, 1, manager.setCalls, "miss must populate the cache")
	require.Equal(t, "icon:vim", manager.values["vim"])
}

func TestReadThroughCache_Get_LoaderError(t *testing.T) {
	manager := newFakeManager()

	rtc := NewReadThroughCache[string, string, iconRequest](
		manager,
		func(ctx context.Context, input iconRequest) (string, error) {
			return "", errors.New("failed to get data")
		},
		false,
	)

	_, err := rtc.Get(context.Background(), "vim", iconRequest{PackageName: "vim"}, time.Minute)
	require.Error(t, err)
	require.Zero(t, manager.setCalls, "loader errors must not be cached")
}

func TestReadThroughCache_GetWithRefresh_EmptyCache(t *testing.T) {
	manager := newFakeManager()

	rtc := NewReadThroughCache[string, string, iconRequest](
		manager,
		func(ctx context.Context, input iconRequest) (string, error) {
			return "icon:" + input.PackageName, nil
		},
		false,
	)

	value, err := rtc.GetWithRefresh(context.Background(), "vim", iconRequest{PackageName: "vim"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, "icon:vim", value)
	require.Equal(t, 1, manager.setCalls)
}

func TestReadThroughCache_GetWithRefresh_WithValueInCache(t *testing.T) {
	manager := newFakeManager()
	manager.values["vim"] = "cached-icon"

	rtc := NewReadThroughCache[string, string, iconRequest](
		manager,
		func(ctx context.Context, input iconRequest) (string, error) {
			t.Fatal("loader must not run on cache hit")
			return "", nil
		},
		false,
	)

	value, err := rtc.GetWithRefresh(context.Background(), "vim", iconRequest{PackageName: "vim"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, "cached-icon", value)
}
