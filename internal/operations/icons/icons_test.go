package icons

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingSource struct {
	icon  string
	calls int
}

func (s *countingSource) Icon() string {
	s.calls++
	return s.icon
}

func TestResolver_CachesPerOperation(t *testing.T) {
	r := NewResolver(time.Minute, false)
	src := &countingSource{icon: "terminal"}

	ctx := context.Background()
	require.Equal(t, "terminal", r.Resolve(ctx, "op-1", src))
	require.Equal(t, "terminal", r.Resolve(ctx, "op-1", src))
	require.Equal(t, 1, src.calls, "second resolve must hit the cache")
}

func TestResolver_DistinctOperationsResolveSeparately(t *testing.T) {
	r := NewResolver(time.Minute, false)
	a := &countingSource{icon: "terminal"}
	b := &countingSource{icon: "globe"}

	ctx := context.Background()
	require.Equal(t, "terminal", r.Resolve(ctx, "op-a", a))
	require.Equal(t, "globe", r.Resolve(ctx, "op-b", b))
	require.Equal(t, 1, a.calls)
	require.Equal(t, 1, b.calls)
}

func TestResolver_EmptyIconFallsBack(t *testing.T) {
	r := NewResolver(time.Minute, false)
	src := &countingSource{icon: ""}

	ctx := context.Background()
	require.Equal(t, Fallback, r.Resolve(ctx, "op-1", src))

	// The empty result is cached; the source is not asked again.
	require.Equal(t, Fallback, r.Resolve(ctx, "op-1", src))
	require.Equal(t, 1, src.calls)
}

func TestResolver_SkipCache(t *testing.T) {
	r := NewResolver(time.Minute, true)
	src := &countingSource{icon: "terminal"}

	ctx := context.Background()
	require.Equal(t, "terminal", r.Resolve(ctx, "op-1", src))
	require.Equal(t, "terminal", r.Resolve(ctx, "op-1", src))
	require.Equal(t, 2, src.calls)
}

func TestResolver_Invalidate(t *testing.T) {
	r := NewResolver(time.Minute, false)
	src := &countingSource{icon: "terminal"}

	ctx := context.Background()
	require.Equal(t, "terminal", r.Resolve(ctx, "op-1", src))

	r.Invalidate(ctx, "op-1")

	src.icon = "globe"
	require.Equal(t, "globe", r.Resolve(ctx, "op-1", src))
	require.Equal(t, 2, src.calls)
}

func TestResolver_Flush(t *testing.T) {
	r := NewResolver(time.Minute, false)
	a := &countingSource{icon: "terminal"}
	b := &countingSource{icon: "globe"}

	ctx := context.Background()
	r.Resolve(ctx, "op-a", a)
	r.Resolve(ctx, "op-b", b)

	r.Flush(ctx)

	r.Resolve(ctx, "op-a", a)
	r.Resolve(ctx, "op-b", b)
	require.Equal(t, 2, a.calls)
	require.Equal(t, 2, b.calls)
}
