package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExistenceCache_ChecksEachKeyOnce(t *testing.T) {
	calls := map[TableKey]int{}
	existing := TableKey{Schema: "ct", Table: "ct_andar_1"}
	missing := TableKey{Schema: "ct", Table: "ct_andar_9"}

	cache := NewExistenceCache(func(ctx context.Context, key TableKey) (bool, error) {
		calls[key]++
		return key == existing, nil
	})

	for i := 0; i < 3; i++ {
		ok, err := cache.Exists(context.Background(), existing)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = cache.Exists(context.Background(), missing)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	assert.Equal(t, 1, calls[existing])
	assert.Equal(t, 1, calls[missing])
	assert.Equal(t, 2, cache.Lookups())
}

func TestExistenceCache_DoesNotCacheErrors(t *testing.T) {
	key := TableKey{Schema: "ct", Table: "ct_andar_1"}
	fail := true

	cache := NewExistenceCache(func(ctx context.Context, k TableKey) (bool, error) {
		if fail {
			return false, errors.New("catalog unavailable")
		}
		return true, nil
	})

	_, err := cache.Exists(context.Background(), key)
	require.Error(t, err)

	fail = false
	ok, err := cache.Exists(context.Background(), key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, cache.Lookups())
}
