package cache

import (
	"context"
	"errors"

	"communityhub/internal/observability"

	"github.com/redis/go-redis/v9"
)

// SlotBackend stores profile slots as plain Redis string keys.
type SlotBackend struct {
	client *redis.Client
	owned  bool
}

// NewSlotBackend wraps client. When owned is true, Close closes the client.
func NewSlotBackend(client *redis.Client, owned bool) *SlotBackend {
	return &SlotBackend{client: client, owned: owned}
}

func (b *SlotBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	span, ctx := observability.StartSlotSpan(ctx, b.Name(), "get", key)
	defer span.End()
	done := observability.TrackSlot("get", b.Name())

	data, err := b.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		done(nil)
		return nil, false, nil
	}
	done(err)
	if err != nil {
		span.SetError(err)
		return nil, false, err
	}
	return data, true, nil
}

func (b *SlotBackend) Set(ctx context.Context, key string, value []byte) error {
	span, ctx := observability.StartSlotSpan(ctx, b.Name(), "set", key)
	defer span.End()
	done := observability.TrackSlot("set", b.Name())

	err := b.client.Set(ctx, key, value, 0).Err()
	done(err)
	span.SetError(err)
	return err
}

func (b *SlotBackend) Delete(ctx context.Context, key string) error {
	span, ctx := observability.StartSlotSpan(ctx, b.Name(), "delete", key)
	defer span.End()
	done := observability.TrackSlot("delete", b.Name())

	err := b.client.Del(ctx, key).Err()
	done(err)
	span.SetError(err)
	return err
}

func (b *SlotBackend) Name() string { return "redis" }

func (b *SlotBackend) Close() error {
	if b.owned {
		return b.client.Close()
	}
	return nil
}
