package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/compozy/autoflow/engine/deploy"
	"github.com/compozy/autoflow/engine/plan"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := NewRedisFromClient(t.Context(), client, &Config{KeyPrefix: "test:"})
	t.Cleanup(func() { _ = r.Close() })
	return r, mr
}

func TestDeploymentStore(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Should save and load a record", func(t *testing.T) {
		r, mr := newTestRedis(t)
		store := NewDeploymentStore(r)
		rec := &deploy.Record{
			WorkflowID: "wf-1",
			UserID:     "u1",
			Name:       "forward",
			Trigger:    plan.TriggerWebhook,
			Active:     true,
			Apps:       []string{"email"},
			CreatedAt:  base,
		}
		require.NoError(t, store.Save(t.Context(), rec))
		assert.True(t, mr.Exists("test:deployment:wf-1"))

		got, err := store.Get(t.Context(), "wf-1")
		require.NoError(t, err)
		assert.Equal(t, rec, got)
	})

	t.Run("Should report missing records", func(t *testing.T) {
		r, _ := newTestRedis(t)
		_, err := NewDeploymentStore(r).Get(t.Context(), "nope")
		assert.ErrorIs(t, err, deploy.ErrDeploymentNotFound)
	})

	t.Run("Should list a user's records newest first", func(t *testing.T) {
		r, _ := newTestRedis(t)
		store := NewDeploymentStore(r)
		ctx := t.Context()
		require.NoError(t, store.Save(ctx, &deploy.Record{WorkflowID: "old", UserID: "u1", CreatedAt: base}))
		require.NoError(t, store.Save(ctx, &deploy.Record{WorkflowID: "new", UserID: "u1", CreatedAt: base.Add(time.Hour)}))
		require.NoError(t, store.Save(ctx, &deploy.Record{WorkflowID: "other", UserID: "u2", CreatedAt: base}))

		list, err := store.ListByUser(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "new", list[0].WorkflowID)
		assert.Equal(t, "old", list[1].WorkflowID)

		empty, err := store.ListByUser(ctx, "u3")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})
}

func TestNewRedis(t *testing.T) {
	t.Run("Should connect through a URL", func(t *testing.T) {
		mr := miniredis.RunT(t)
		r, err := NewRedis(t.Context(), &Config{URL: "redis://" + mr.Addr()})
		require.NoError(t, err)
		assert.NoError(t, r.Close())
		assert.NoError(t, r.Close())
	})

	t.Run("Should require a URL", func(t *testing.T) {
		_, err := NewRedis(t.Context(), &Config{})
		assert.Error(t, err)
	})
}
