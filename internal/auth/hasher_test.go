package auth

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashIsDeterministic(t *testing.T) {
	hasher := NewHasher(2)
	ctx := context.Background()

	first, err := hasher.Hash(ctx, "hunter2")
	require.NoError(t, err)
	second, err := hasher.Hash(ctx, "hunter2")
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestHashDiffersPerPassword(t *testing.T) {
	hasher := NewHasher(2)
	ctx := context.Background()

	first, err := hasher.Hash(ctx, "hunter2")
	require.NoError(t, err)
	second, err := hasher.Hash(ctx, "hunter3")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}

func TestHashUsesPHCEncoding(t *testing.T) {
	hasher := NewHasher(1)

	hash, err := hasher.Hash(context.Background(), "hunter2")
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(hash, "$argon2i$v=19$m=4096,t=3,p=1$"), "unexpected encoding: %s", hash)
	require.Len(t, strings.Split(hash, "$"), 6)
}
