package trending

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCountsAndOrders(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Increment(ctx, "pay in goats", "Can I pay in goats?"))
	require.NoError(t, store.Increment(ctx, "pay in goats", "can i PAY in goats??"))
	require.NoError(t, store.Increment(ctx, "crypto loans", "Do you offer crypto loans?"))

	top, err := store.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	require.Equal(t, "Can I pay in goats?", top[0].Query, "first display form wins")
	require.EqualValues(t, 2, top[0].Count)
	require.EqualValues(t, 1, top[1].Count)
}

func TestMemoryStoreIgnoresEmptyCanonical(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Increment(ctx, "", "   "))

	top, err := store.Top(ctx, 5)
	require.NoError(t, err)
	require.Empty(t, top)
}

func TestMemoryStoreHonorsLimit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Increment(ctx, "a", "a"))
	require.NoError(t, store.Increment(ctx, "b", "b"))
	require.NoError(t, store.Increment(ctx, "c", "c"))

	top, err := store.Top(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
}
