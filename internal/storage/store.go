package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"communityhub/internal/models"
	"communityhub/internal/observability"
)

// Collection names a persisted collection slot.
type Collection string

const (
	Users      Collection = "users"
	Posts      Collection = "posts"
	Categories Collection = "categories"
)

var collections = []Collection{Users, Posts, Categories}

// CurrentUserSlot is the slot name of the session pointer.
const CurrentUserSlot = "currentUser"

// DefaultPrefix matches the slot names used by existing profiles.
const DefaultPrefix = "communityApp_"

// FlushMode controls when mutated collections are written back to the backend.
type FlushMode string

const (
	// FlushWriteThrough writes each touched collection before the mutation returns.
	FlushWriteThrough FlushMode = "write-through"
	// FlushManual defers writes to Flush or Close.
	FlushManual FlushMode = "manual"
)

// Options configures a Store.
type Options struct {
	Prefix    string
	FlushMode FlushMode
	// Now is the clock used for seed timestamps. Defaults to time.Now in UTC.
	Now func() time.Time
}

// Store is the single owner of one profile's collections. All access goes
// through View or Update, which hold the store lock for the whole callback.
type Store struct {
	mu      sync.Mutex
	backend Backend
	opts    Options

	seeded     bool
	users      *Table[models.User]
	posts      *Table[models.Post]
	categories *Table[models.Category]
	dirty      map[Collection]bool
	// synced holds the slot bytes each table was last loaded from or flushed as.
	synced map[Collection][]byte
}

// New creates a store over backend. Nothing is read until first access.
func New(backend Backend, opts Options) *Store {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.FlushMode == "" {
		opts.FlushMode = FlushWriteThrough
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Store{
		backend: backend,
		opts:    opts,
		dirty:   make(map[Collection]bool),
		synced:  make(map[Collection][]byte),
	}
}

// Key returns the backend slot name for name.
func (s *Store) Key(name string) string {
	return s.opts.Prefix + name
}

// Backend returns the slot backend the store writes to.
func (s *Store) Backend() Backend {
	return s.backend
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.opts.Now()
}

// Tx gives a View or Update callback access to the loaded tables.
type Tx struct {
	s *Store
}

func (tx *Tx) Users() *Table[models.User]          { return tx.s.users }
func (tx *Tx) Posts() *Table[models.Post]          { return tx.s.posts }
func (tx *Tx) Categories() *Table[models.Category] { return tx.s.categories }

// Touch marks c as modified so it is written back.
func (tx *Tx) Touch(c Collection) {
	tx.s.dirty[c] = true
}

// Now returns the store clock.
func (tx *Tx) Now() time.Time {
	return tx.s.opts.Now()
}

// View runs fn with the store locked. fn must not mutate the tables.
func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(ctx); err != nil {
		return err
	}
	return fn(&Tx{s: s})
}

// Update runs fn with the store locked and, in write-through mode, persists
// every collection fn touched before returning.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(ctx); err != nil {
		return err
	}
	if err := fn(&Tx{s: s}); err != nil {
		if s.opts.FlushMode == FlushWriteThrough {
			s.discardLocked()
		}
		return err
	}
	if s.opts.FlushMode == FlushWriteThrough {
		return s.flushLocked(ctx)
	}
	return nil
}

// EnsureSeeded writes the fixed seed records into every absent collection slot.
// A slot that exists is never reseeded, even when it holds an empty collection.
func (s *Store) EnsureSeeded(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureSeededLocked(ctx)
}

func (s *Store) ensureSeededLocked(ctx context.Context) error {
	if s.seeded {
		return nil
	}
	now := s.opts.Now()
	seeds := []struct {
		c    Collection
		rows any
	}{
		{Users, SeedUsers(now)},
		{Posts, SeedPosts(now)},
		{Categories, SeedCategories(now)},
	}
	for _, seed := range seeds {
		key := s.Key(string(seed.c))
		_, ok, err := s.backend.Get(ctx, key)
		if err != nil {
			return models.NewInternalError(fmt.Errorf("read slot %s: %w", key, err))
		}
		if ok {
			continue
		}
		data, err := json.Marshal(seed.rows)
		if err != nil {
			return models.NewInternalError(err)
		}
		if err := s.backend.Set(ctx, key, data); err != nil {
			return models.NewInternalError(fmt.Errorf("write slot %s: %w", key, err))
		}
		observability.GlobalLogger.InfoContext(ctx, "seeded collection",
			slog.String("slot", key),
			slog.String("backend", s.backend.Name()),
		)
	}
	s.seeded = true
	return nil
}

// loadLocked brings every clean table in line with its backend slot. Other
// processes (the admin and seed commands) write the same slots, so a slot is
// re-read at the start of each transaction and its table rebuilt when the
// bytes differ from what this store last saw. A table with unflushed changes
// is kept as is and overwrites the slot on the next flush.
func (s *Store) loadLocked(ctx context.Context) error {
	if err := s.ensureSeededLocked(ctx); err != nil {
		return err
	}
	for _, c := range collections {
		if s.dirty[c] && s.loaded(c) {
			continue
		}
		key := s.Key(string(c))
		data, _, err := s.backend.Get(ctx, key)
		if err != nil {
			return models.NewInternalError(fmt.Errorf("read slot %s: %w", key, err))
		}
		if s.loaded(c) && bytes.Equal(s.synced[c], data) {
			continue
		}
		if err := s.decodeLocked(c, data); err != nil {
			return models.NewInternalError(fmt.Errorf("decode slot %s: %w", key, err))
		}
		s.synced[c] = data
	}
	return nil
}

// discardLocked drops touched tables so the next transaction reloads them
// from their slots.
func (s *Store) discardLocked() {
	for c := range s.dirty {
		switch c {
		case Users:
			s.users = nil
		case Posts:
			s.posts = nil
		case Categories:
			s.categories = nil
		}
		delete(s.dirty, c)
	}
}

func (s *Store) loaded(c Collection) bool {
	switch c {
	case Users:
		return s.users != nil
	case Posts:
		return s.posts != nil
	default:
		return s.categories != nil
	}
}

func (s *Store) decodeLocked(c Collection, data []byte) error {
	switch c {
	case Users:
		rows, err := Decode[models.User](data)
		if err != nil {
			return err
		}
		s.users = NewTable(rows, func(u *models.User) string { return u.ID })
	case Posts:
		rows, err := Decode[models.Post](data)
		if err != nil {
			return err
		}
		s.posts = NewTable(rows, func(p *models.Post) string { return p.ID })
	case Categories:
		rows, err := Decode[models.Category](data)
		if err != nil {
			return err
		}
		s.categories = NewTable(rows, func(c *models.Category) string { return c.ID })
	}
	return nil
}

// Decode parses a serialized collection. Empty input and JSON null decode to
// an empty collection.
func Decode[T any](data []byte) ([]T, error) {
	var rows []T
	if len(data) == 0 {
		return []T{}, nil
	}
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

// Encode serializes a collection. A nil collection encodes as [].
func Encode[T any](rows []T) ([]byte, error) {
	if rows == nil {
		rows = []T{}
	}
	return json.Marshal(rows)
}

// Flush writes every modified collection to the backend.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked(ctx)
}

func (s *Store) flushLocked(ctx context.Context) error {
	for _, c := range collections {
		if !s.dirty[c] {
			continue
		}
		var (
			data []byte
			err  error
		)
		switch c {
		case Users:
			data, err = Encode(s.users.Rows())
		case Posts:
			data, err = Encode(s.posts.Rows())
		case Categories:
			data, err = Encode(s.categories.Rows())
		}
		if err != nil {
			return models.NewInternalError(err)
		}
		key := s.Key(string(c))
		if err := s.backend.Set(ctx, key, data); err != nil {
			return models.NewInternalError(fmt.Errorf("write slot %s: %w", key, err))
		}
		s.synced[c] = data
		delete(s.dirty, c)
	}
	return nil
}

// Close flushes pending writes and closes the backend.
func (s *Store) Close() error {
	if err := s.Flush(context.Background()); err != nil {
		return err
	}
	return s.backend.Close()
}

// LoadUsers returns a copy of the users collection.
func (s *Store) LoadUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	err := s.View(ctx, func(tx *Tx) error {
		out = CloneUsers(tx.Users().Rows())
		return nil
	})
	return out, err
}

// SaveUsers replaces the users collection.
func (s *Store) SaveUsers(ctx context.Context, users []models.User) error {
	return s.Update(ctx, func(tx *Tx) error {
		tx.Users().Replace(CloneUsers(users))
		tx.Touch(Users)
		return nil
	})
}

// LoadPosts returns a copy of the posts collection.
func (s *Store) LoadPosts(ctx context.Context) ([]models.Post, error) {
	var out []models.Post
	err := s.View(ctx, func(tx *Tx) error {
		out = ClonePosts(tx.Posts().Rows())
		return nil
	})
	return out, err
}

// SavePosts replaces the posts collection.
func (s *Store) SavePosts(ctx context.Context, posts []models.Post) error {
	return s.Update(ctx, func(tx *Tx) error {
		tx.Posts().Replace(ClonePosts(posts))
		tx.Touch(Posts)
		return nil
	})
}

// LoadCategories returns a copy of the categories collection.
func (s *Store) LoadCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := s.View(ctx, func(tx *Tx) error {
		out = append([]models.Category{}, tx.Categories().Rows()...)
		return nil
	})
	return out, err
}

// SaveCategories replaces the categories collection.
func (s *Store) SaveCategories(ctx context.Context, categories []models.Category) error {
	return s.Update(ctx, func(tx *Tx) error {
		tx.Categories().Replace(append([]models.Category{}, categories...))
		tx.Touch(Categories)
		return nil
	})
}

// CloneUsers deep-copies users.
func CloneUsers(in []models.User) []models.User {
	out := make([]models.User, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// ClonePosts deep-copies posts.
func ClonePosts(in []models.Post) []models.Post {
	out := make([]models.Post, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
