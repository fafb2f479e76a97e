package reconciler

import (
	"bytes"
	"math"
	"sort"

	"github.com/google/uuid"
)

// StockRequest is one cart's claim on a product during redistribution.
type StockRequest struct {
	CartID   uuid.UUID
	Quantity int
}

// StockAllocation is the transient per-cart outcome of one redistribution.
type StockAllocation struct {
	CartID    uuid.UUID
	Requested int
	Allocated int
	remainder float64
}

// Apportion splits newStock across the requesting carts with the
// largest-remainder method: every cart gets the floor of its exact
// proportional share, then leftover units go one apiece to the carts
// with the largest fractional remainders. Remainder ties break on cart
// id ascending, so redelivering the same notification reproduces the
// same allocation.
//
// Post-conditions, for total requested > newStock > 0:
//
//	sum(Allocated) == newStock
//	Allocated ∈ {floor(exact share), floor(exact share) + 1}
//	Allocated <= Requested for every cart
func Apportion(requests []StockRequest, newStock int) []StockAllocation {
	allocations := make([]StockAllocation, len(requests))

	var totalRequested int
	for _, request := range requests {
		totalRequested += request.Quantity
	}

	if totalRequested <= newStock {
		for i, request := range requests {
			allocations[i] = StockAllocation{CartID: request.CartID, Requested: request.Quantity, Allocated: request.Quantity}
		}

		return allocations
	}

	granted := 0

	for i, request := range requests {
		exactShare := float64(request.Quantity) / float64(totalRequested) * float64(newStock)
		allocated := int(math.Floor(exactShare))

		allocations[i] = StockAllocation{
			CartID:    request.CartID,
			Requested: request.Quantity,
			Allocated: allocated,
			remainder: exactShare - float64(allocated),
		}
		granted += allocated
	}

	leftover := newStock - granted

	order := make([]int, len(allocations))
	for i := range order {
		order[i] = i
	}

	sort.Slice(order, func(a, b int) bool {
		left, right := allocations[order[a]], allocations[order[b]]
		if left.remainder != right.remainder {
			return left.remainder > right.remainder
		}

		return bytes.Compare(left.CartID[:], right.CartID[:]) < 0
	})

	for i := 0; i < leftover && i < len(order); i++ {
		allocations[order[i]].Allocated++
	}

	return allocations
}
