package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_DeliversToSubscribersOfType(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []Event
	d.Subscribe(EventLoginFailed, func(_ context.Context, e Event) error {
		got = append(got, e)
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), NewEvent(EventLoginSucceeded)))
	assert.Empty(t, got)

	failed := NewEvent(EventLoginFailed)
	failed.Reason = "INVALID_CREDENTIALS"
	require.NoError(t, d.Publish(context.Background(), failed))
	require.Len(t, got, 1)
	assert.Equal(t, failed.ID, got[0].ID)
	assert.Equal(t, "INVALID_CREDENTIALS", got[0].Reason)
}

func TestDispatcher_RunsAllHandlersAndJoinsErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")

	calls := 0
	d.Subscribe(EventTokenRejected, func(context.Context, Event) error {
		calls++
		return boom
	})
	d.Subscribe(EventTokenRejected, func(context.Context, Event) error {
		calls++
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventTokenRejected))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestNewEvent_AssignsIdentity(t *testing.T) {
	a := NewEvent(EventLoginSucceeded)
	b := NewEvent(EventLoginSucceeded)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Timestamp.IsZero())
}
