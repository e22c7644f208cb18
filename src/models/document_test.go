package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionOrder(t *testing.T) {
	t.Run("SC1: Forward path processing to shipping to completed", func(t *testing.T) {
		assert.True(t, CanTransitionOrder(OrderStatusProcessing, OrderStatusShipping))
		assert.True(t, CanTransitionOrder(OrderStatusShipping, OrderStatusCompleted))
	})

	t.Run("SC2: No skipping or moving backwards", func(t *testing.T) {
		assert.False(t, CanTransitionOrder(OrderStatusShipping, OrderStatusProcessing))
		assert.False(t, CanTransitionOrder(OrderStatusCompleted, OrderStatusShipping))
	})

	t.Run("SC3: Cancel allowed from any non-terminal state", func(t *testing.T) {
		assert.True(t, CanTransitionOrder(OrderStatusProcessing, OrderStatusCancelled))
		assert.True(t, CanTransitionOrder(OrderStatusShipping, OrderStatusCancelled))
	})

	t.Run("SC4: Terminal states stay terminal", func(t *testing.T) {
		assert.False(t, CanTransitionOrder(OrderStatusCompleted, OrderStatusCancelled))
		assert.False(t, CanTransitionOrder(OrderStatusCancelled, OrderStatusProcessing))
		assert.False(t, CanTransitionOrder(OrderStatusCancelled, OrderStatusCancelled))
	})

	t.Run("SC5: Same-state transition is a no-op rejection", func(t *testing.T) {
		assert.False(t, CanTransitionOrder(OrderStatusProcessing, OrderStatusProcessing))
	})
}
