package events

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_DeliversToEverySubscriber(t *testing.T) {
	h := NewHub()
	a, cancelA, err := h.Subscribe()
	require.NoError(t, err)
	defer cancelA()
	b, cancelB, err := h.Subscribe()
	require.NoError(t, err)
	defer cancelB()

	require.NoError(t, h.Publish(context.Background(), New(PostShared, "2", "1", nil)))

	assert.Equal(t, PostShared, (<-a).Subject)
	assert.Equal(t, PostShared, (<-b).Subject)
	assert.Equal(t, 2, h.Subscribers())
}

func TestHub_CancelIsIdempotent(t *testing.T) {
	h := NewHub()
	ch, cancel, err := h.Subscribe()
	require.NoError(t, err)

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
	assert.Zero(t, h.Subscribers())

	require.NoError(t, h.Close())
	assert.NotPanics(t, cancel)
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub()
	ch, cancel, err := h.Subscribe()
	require.NoError(t, err)
	defer cancel()

	for i := 0; i < subscriberBuffer+10; i++ {
		require.NoError(t, h.Publish(context.Background(), New(PostLiked, "1", "2", nil)))
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestHub_CloseDisconnectsSubscribers(t *testing.T) {
	h := NewHub()
	ch, _, err := h.Subscribe()
	require.NoError(t, err)

	require.NoError(t, h.Close())
	_, open := <-ch
	assert.False(t, open)

	_, _, err = h.Subscribe()
	assert.ErrorIs(t, err, ErrHubClosed)
	assert.NoError(t, h.Publish(context.Background(), New(PostLiked, "1", "2", nil)))
}

func TestHub_ConcurrentPublishAndCancel(t *testing.T) {
	h := NewHub()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		_, cancel, err := h.Subscribe()
		require.NoError(t, err)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = h.Publish(context.Background(), New(PostShared, "1", "1", nil))
			}
		}()
		go func() {
			defer wg.Done()
			cancel()
		}()
	}
	wg.Wait()
	assert.Zero(t, h.Subscribers())
}

func TestFanout_PublishesToAllAndJoinsErrors(t *testing.T) {
	r := &Recorder{}
	f := Fanout{r, nil, failingPublisher{}}

	err := f.Publish(context.Background(), New(PostCreated, "2", "9", nil))
	assert.ErrorContains(t, err, "broker down")
	assert.Equal(t, []Subject{PostCreated}, r.Subjects())
	assert.NoError(t, f.Close())
}
