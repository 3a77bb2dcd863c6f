package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from    string
		to      string
		allowed bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusShipped, false},
		{StatusPending, StatusDelivered, false},
		{StatusConfirmed, StatusShipped, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCancelled, true},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusDelivered, StatusShipped, false},
	}

	for _, tt := range tests {
		t.Run(tt.from+" to "+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestTransition(t *testing.T) {
	t.Run("applies allowed transition", func(t *testing.T) {
		order := &Order{Status: StatusPending}
		err := order.Transition(StatusConfirmed)
		assert.NoError(t, err)
		assert.Equal(t, StatusConfirmed, order.Status)
	})

	t.Run("leaves order untouched on invalid transition", func(t *testing.T) {
		order := &Order{Status: StatusDelivered}
		err := order.Transition(StatusCancelled)
		assert.ErrorIs(t, err, ErrInvalidOrderState)
		assert.Equal(t, StatusDelivered, order.Status)
	})
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(StatusCancelled))
	assert.True(t, IsTerminal(StatusDelivered))
	assert.False(t, IsTerminal(StatusPending))
	assert.False(t, IsTerminal(StatusConfirmed))
	assert.False(t, IsTerminal(StatusShipped))
}
