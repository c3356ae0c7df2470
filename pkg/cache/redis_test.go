package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a test client backed by miniredis
func setupTestRedis(t *testing.T) *Client {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := &Client{
		Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
	}
	t.Cleanup(func() { client.Close() })

	return client
}

func TestClient_SetGet(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	err := client.Set(ctx, "crm:pipeline", `{"stages":[]}`, 5*time.Minute)
	require.NoError(t, err)

	val, err := client.Get(ctx, "crm:pipeline")
	require.NoError(t, err)
	assert.Equal(t, `{"stages":[]}`, val)
}

func TestClient_GetMissingKey(t *testing.T) {
	client := setupTestRedis(t)

	_, err := client.Get(context.Background(), "crm:nonexistent")
	assert.ErrorIs(t, err, redis.Nil)
}

func TestClient_Delete(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	_ = client.Set(ctx, "crm:pipeline", "data1", 5*time.Minute)
	_ = client.Set(ctx, "crm:analytics:dashboard", "data2", 5*time.Minute)

	err := client.Delete(ctx, "crm:pipeline")
	require.NoError(t, err)

	_, err = client.Get(ctx, "crm:pipeline")
	assert.Error(t, err)

	val, err := client.Get(ctx, "crm:analytics:dashboard")
	require.NoError(t, err)
	assert.Equal(t, "data2", val)
}

func TestClient_DeletePattern(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	_ = client.Set(ctx, "crm:analytics:dashboard", "data1", 5*time.Minute)
	_ = client.Set(ctx, "crm:analytics:funding-stats", "data2", 10*time.Minute)
	_ = client.Set(ctx, "crm:pipeline", "data3", 5*time.Minute)

	err := client.DeletePattern(ctx, "crm:analytics*")
	require.NoError(t, err)

	_, err = client.Get(ctx, "crm:analytics:dashboard")
	assert.Error(t, err)
	_, err = client.Get(ctx, "crm:analytics:funding-stats")
	assert.Error(t, err)

	val, err := client.Get(ctx, "crm:pipeline")
	require.NoError(t, err)
	assert.Equal(t, "data3", val)
}

func TestClient_DeletePattern_NoMatches(t *testing.T) {
	client := setupTestRedis(t)

	err := client.DeletePattern(context.Background(), "crm:missing*")
	require.NoError(t, err)
}

func TestClient_Exists(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	exists, err := client.Exists(ctx, "crm:pipeline")
	require.NoError(t, err)
	assert.False(t, exists)

	_ = client.Set(ctx, "crm:pipeline", "data", 5*time.Minute)

	exists, err = client.Exists(ctx, "crm:pipeline")
	require.NoError(t, err)
	assert.True(t, exists)
}
