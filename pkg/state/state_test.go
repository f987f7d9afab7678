package state

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mail2slack/pkg/logger"
)

func TestFileStore(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "nested", "tokens.json")
	log := logger.NewNop()
	ctx := context.Background()

	store, err := NewFileStore(log, statePath)
	require.NoError(t, err)
	defer store.Close()

	_, ok, err := store.Get(ctx, "token:alice")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "token:alice", `{"access_token":"xoxp-1"}`))
	require.NoError(t, store.Set(ctx, "token:bob", `{"access_token":"xoxp-2"}`))
	require.NoError(t, store.Set(ctx, "other", "x"))

	value, ok, err := store.Get(ctx, "token:alice")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"access_token":"xoxp-1"}`, value)

	keys, err := store.Keys(ctx, "token:")
	require.NoError(t, err)
	assert.Equal(t, []string{"token:alice", "token:bob"}, keys)

	require.NoError(t, store.Delete(ctx, "token:bob"))
	require.NoError(t, store.Delete(ctx, "token:missing"))

	info, err := os.Stat(statePath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reopened, err := NewFileStore(log, statePath)
	require.NoError(t, err)

	value, ok, err = reopened.Get(ctx, "token:alice")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"access_token":"xoxp-1"}`, value)

	_, ok, err = reopened.Get(ctx, "token:bob")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoreSharedBetweenInstances(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "tokens.json")
	log := logger.NewNop()
	ctx := context.Background()

	server, err := NewFileStore(log, statePath)
	require.NoError(t, err)
	cli, err := NewFileStore(log, statePath)
	require.NoError(t, err)

	require.NoError(t, server.Set(ctx, "token:alice", "a"))

	value, ok, err := cli.Get(ctx, "token:alice")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", value)

	require.NoError(t, cli.Delete(ctx, "token:alice"))

	_, ok, err = server.Get(ctx, "token:alice")
	require.NoError(t, err)
	assert.False(t, ok, "delete from another instance must be visible")

	require.NoError(t, server.Set(ctx, "token:bob", "b"))

	fresh, err := NewFileStore(log, statePath)
	require.NoError(t, err)
	keys, err := fresh.Keys(ctx, "token:")
	require.NoError(t, err)
	assert.Equal(t, []string{"token:bob"}, keys, "unrelated write must not resurrect a deleted key")

	require.NoError(t, cli.Set(ctx, "token:carol", "c"))
	keys, err = server.Keys(ctx, "token:")
	require.NoError(t, err)
	assert.Equal(t, []string{"token:bob", "token:carol"}, keys)
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(statePath, []byte("{not json"), 0600))

	_, err := NewFileStore(logger.NewNop(), statePath)
	assert.Error(t, err)
}

func TestNewKV(t *testing.T) {
	ctx := context.Background()
	log := logger.NewNop()

	kv, err := NewKV(ctx, log, &Config{FilePath: filepath.Join(t.TempDir(), "s.json")})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, kv)

	_, err = NewKV(ctx, log, &Config{Backend: BackendRedis})
	assert.ErrorContains(t, err, "redis address is required")

	_, err = NewKV(ctx, log, &Config{Backend: "etcd"})
	assert.ErrorContains(t, err, "unknown backend type")
}

func TestRedisStoreKeyPrefixing(t *testing.T) {
	s := newRedisStore(logger.NewNop(), nil, "m2s:")
	assert.Equal(t, "m2s:token:alice", s.prefixKey("token:alice"))
	assert.Equal(t, "token:alice", s.unprefixKey("m2s:token:alice"))
}
