package snapshot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	t.Run("LoadUnwrittenSlot", func(t *testing.T) {
		data, err := repo.Load(ctx, SlotIdentity)
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("SaveAndLoad", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, SlotBookings, []byte(`{"version":1}`)))

		data, err := repo.Load(ctx, SlotBookings)
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"version":1}`), data)
	})

	t.Run("SlotsAreIndependent", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, SlotSearch, []byte("a")))
		require.NoError(t, repo.Save(ctx, SlotBookings, []byte("b")))

		data, err := repo.Load(ctx, SlotSearch)
		require.NoError(t, err)
		assert.Equal(t, []byte("a"), data)
	})

	t.Run("LoadReturnsACopy", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, SlotIdentity, []byte("abc")))

		data, err := repo.Load(ctx, SlotIdentity)
		require.NoError(t, err)
		data[0] = 'x'

		again, err := repo.Load(ctx, SlotIdentity)
		require.NoError(t, err)
		assert.Equal(t, []byte("abc"), again)
	})
}
