package reconciler_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/myspares/catalog-platform/internal/reconciler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApportion(t *testing.T) {
	cartA := uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	cartB := uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	cartC := uuid.MustParse("00000000-0000-0000-0000-00000000000c")

	t.Run("Enough Stock - Everyone Fully Satisfied", func(t *testing.T) {
		// Arrange
		requests := []reconciler.StockRequest{
			{CartID: cartA, Quantity: 5},
			{CartID: cartB, Quantity: 3},
		}

		// Act
		allocations := reconciler.Apportion(requests, 8)

		// Assert
		require.Len(t, allocations, 2)
		assert.Equal(t, 5, allocations[0].Allocated)
		assert.Equal(t, 3, allocations[1].Allocated)
	})

	t.Run("Contention - Largest Remainder Split", func(t *testing.T) {
		// Arrange: 5+3+2 = 10 requested, 7 available. Exact shares are
		// 3.5, 2.1, 1.4; floors grant 3+2+1 = 6 and the leftover unit
		// goes to the largest remainder (0.5).
		requests := []reconciler.StockRequest{
			{CartID: cartA, Quantity: 5},
			{CartID: cartB, Quantity: 3},
			{CartID: cartC, Quantity: 2},
		}

		// Act
		allocations := reconciler.Apportion(requests, 7)

		// Assert
		require.Len(t, allocations, 3)
		assert.Equal(t, 4, allocations[0].Allocated)
		assert.Equal(t, 2, allocations[1].Allocated)
		assert.Equal(t, 1, allocations[2].Allocated)
	})

	t.Run("Contention - Sum Equals New Stock", func(t *testing.T) {
		// Arrange
		requests := []reconciler.StockRequest{
			{CartID: cartA, Quantity: 7},
			{CartID: cartB, Quantity: 5},
			{CartID: cartC, Quantity: 11},
		}

		for newStock := 1; newStock < 23; newStock++ {
			// Act
			allocations := reconciler.Apportion(requests, newStock)

			// Assert
			total := 0
			for i, allocation := range allocations {
				total += allocation.Allocated
				assert.LessOrEqual(t, allocation.Allocated, requests[i].Quantity)
			}

			assert.Equal(t, newStock, total)
		}
	})

	t.Run("Remainder Tie - Breaks On Cart ID Ascending", func(t *testing.T) {
		// Arrange: both carts request 1 of 1 available, so the exact
		// shares and remainders are identical and the lower cart id wins
		// the single unit.
		requests := []reconciler.StockRequest{
			{CartID: cartB, Quantity: 1},
			{CartID: cartA, Quantity: 1},
		}

		// Act
		allocations := reconciler.Apportion(requests, 1)

		// Assert
		byCart := map[uuid.UUID]int{}
		for _, allocation := range allocations {
			byCart[allocation.CartID] = allocation.Allocated
		}

		assert.Equal(t, 1, byCart[cartA])
		assert.Equal(t, 0, byCart[cartB])
	})

	t.Run("Deterministic - Same Input Same Output", func(t *testing.T) {
		// Arrange
		requests := []reconciler.StockRequest{
			{CartID: cartA, Quantity: 4},
			{CartID: cartB, Quantity: 4},
			{CartID: cartC, Quantity: 4},
		}

		// Act
		first := reconciler.Apportion(requests, 7)
		second := reconciler.Apportion(requests, 7)

		// Assert
		assert.Equal(t, first, second)
	})

	t.Run("No Requests", func(t *testing.T) {
		// Act
		allocations := reconciler.Apportion(nil, 5)

		// Assert
		assert.Empty(t, allocations)
	})
}
