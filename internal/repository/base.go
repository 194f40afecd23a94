// Package repository provides the user, post, and category repositories over
// the profile's entity store.
package repository

import (
	"context"

	"communityhub/internal/observability"
	"communityhub/internal/storage"
)

// base carries the store handle and the tracing/logging shared by every repository.
type base struct {
	store      *storage.Store
	collection storage.Collection
	log        *observability.RepoLogger
}

func newBase(store *storage.Store, c storage.Collection) base {
	return base{store: store, collection: c, log: observability.NewRepoLogger(string(c))}
}

func (b base) view(ctx context.Context, op string, fn func(tx *storage.Tx) error) error {
	span, ctx := observability.StartRepositorySpan(ctx, string(b.collection), op)
	defer span.End()

	if err := b.store.View(ctx, fn); err != nil {
		span.SetError(err)
		b.log.LogError(ctx, err, op)
		return err
	}
	return nil
}

func (b base) update(ctx context.Context, op string, fn func(tx *storage.Tx) error) error {
	span, ctx := observability.StartRepositorySpan(ctx, string(b.collection), op)
	defer span.End()

	if err := b.store.Update(ctx, fn); err != nil {
		span.SetError(err)
		b.log.LogError(ctx, err, op)
		return err
	}
	return nil
}

func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
