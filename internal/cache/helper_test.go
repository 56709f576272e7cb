package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"studentconnect/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedCommunity struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func setupMiniredis(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	SetClient(rdb)
	t.Cleanup(func() {
		SetClient(nil)
		_ = rdb.Close()
	})
}

func TestAside_MissThenHit(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	fetchCalls := 0
	fetch := func(dest *cachedCommunity) func() error {
		return func() error {
			fetchCalls++
			dest.ID = 7
			dest.Name = "Go Study Group"
			return nil
		}
	}

	var first cachedCommunity
	require.NoError(t, Aside(ctx, CommunityKey(7), &first, CommunityTTL, fetch(&first)))
	assert.Equal(t, 1, fetchCalls)
	assert.Equal(t, "Go Study Group", first.Name)

	var second cachedCommunity
	require.NoError(t, Aside(ctx, CommunityKey(7), &second, CommunityTTL, fetch(&second)))
	assert.Equal(t, 1, fetchCalls, "second read should be served from cache")
	assert.Equal(t, first, second)
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	var dest cachedCommunity
	err := Aside(ctx, CommunityKey(1), &dest, time.Minute, func() error {
		return errors.New("db down")
	})
	assert.Error(t, err)

	found, err := GetJSON(ctx, CommunityKey(1), &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAside_NoClientFallsThrough(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	fetchCalls := 0
	var dest cachedCommunity
	for i := 0; i < 2; i++ {
		require.NoError(t, Aside(ctx, UserKey(1), &dest, UserTTL, func() error {
			fetchCalls++
			dest.ID = 1
			return nil
		}))
	}
	assert.Equal(t, 2, fetchCalls, "without Redis every read goes to the source")
}

func TestInvalidate(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, TutorialKey(3), cachedCommunity{ID: 3}, TutorialTTL))
	InvalidateTutorial(ctx, 3)

	var dest cachedCommunity
	found, err := GetJSON(ctx, TutorialKey(3), &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAside_CountsHitsAndMisses(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	resource := keyResource(PostKey(1))
	hitsBefore := testutil.ToFloat64(middleware.CacheHits.WithLabelValues(resource))
	missesBefore := testutil.ToFloat64(middleware.CacheMisses.WithLabelValues(resource))

	fetch := func(dest *cachedCommunity) func() error {
		return func() error {
			dest.ID = 1
			return nil
		}
	}

	var first cachedCommunity
	require.NoError(t, Aside(ctx, PostKey(1), &first, PostTTL, fetch(&first)))
	var second cachedCommunity
	require.NoError(t, Aside(ctx, PostKey(1), &second, PostTTL, fetch(&second)))

	assert.Equal(t, missesBefore+1, testutil.ToFloat64(middleware.CacheMisses.WithLabelValues(resource)))
	assert.Equal(t, hitsBefore+1, testutil.ToFloat64(middleware.CacheHits.WithLabelValues(resource)))
}

func TestKeyResource(t *testing.T) {
	assert.Equal(t, "post", keyResource(PostKey(42)))
	assert.Equal(t, "plain", keyResource("plain"))
}
