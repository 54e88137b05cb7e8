package event_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/core/event"
)

func TestNew(t *testing.T) {
	t.Parallel()

	e := event.New(event.SessionCreated{SessionID: "s1", UserID: uuid.New()})

	assert.Equal(t, event.NameSessionCreated, e.Name)
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.CreatedAt.IsZero())
}

func TestSyncTransport(t *testing.T) {
	t.Parallel()

	t.Run("handlers invoked in order", func(t *testing.T) {
		t.Parallel()

		var order []int
		transport := event.NewSyncTransport(
			func(ctx context.Context, e event.Event) error { order = append(order, 1); return nil },
			func(ctx context.Context, e event.Event) error { order = append(order, 2); return nil },
		)
		publisher := event.NewPublisher(transport)

		err := publisher.Publish(context.Background(), event.SessionRevoked{SessionID: "s1"})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, order)
	})

	t.Run("handler error aborts delivery", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		secondCalled := false
		transport := event.NewSyncTransport(
			func(ctx context.Context, e event.Event) error { return boom },
			func(ctx context.Context, e event.Event) error { secondCalled = true; return nil },
		)
		publisher := event.NewPublisher(transport)

		err := publisher.Publish(context.Background(), event.SessionRevoked{SessionID: "s1"})
		assert.ErrorIs(t, err, boom)
		assert.False(t, secondCalled)
	})
}

func TestChannelTransport(t *testing.T) {
	t.Parallel()

	t.Run("delivers events", func(t *testing.T) {
		t.Parallel()

		transport := event.NewChannelTransport(4)
		publisher := event.NewPublisher(transport)

		require.NoError(t, publisher.Publish(context.Background(), event.SessionCreated{SessionID: "s1"}))

		e := <-transport.Subscribe()
		assert.Equal(t, event.NameSessionCreated, e.Name)
	})

	t.Run("full buffer returns error", func(t *testing.T) {
		t.Parallel()

		transport := event.NewChannelTransport(1)

		require.NoError(t, transport.Dispatch(context.Background(), event.New(event.SessionCreated{})))
		err := transport.Dispatch(context.Background(), event.New(event.SessionCreated{}))
		assert.ErrorIs(t, err, event.ErrBufferFull)
	})

	t.Run("closed transport rejects dispatch", func(t *testing.T) {
		t.Parallel()

		transport := event.NewChannelTransport(1)
		require.NoError(t, transport.Close())
		require.NoError(t, transport.Close(), "close is idempotent")

		err := transport.Dispatch(context.Background(), event.New(event.SessionCreated{}))
		assert.ErrorIs(t, err, event.ErrTransportClosed)
	})
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	assert.NoError(t, event.Discard.Publish(context.Background(), event.SessionCreated{}))
}
