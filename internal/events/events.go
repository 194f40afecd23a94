// Package events publishes domain events to Redis pub/sub or NATS.
// Publishing is best effort: a failed publish is logged and counted but never
// fails the operation that produced the event.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"communityhub/internal/middleware"
	"communityhub/internal/observability"

	"github.com/google/uuid"
)

// Subject names an event type.
type Subject string

const (
	PostCreated     Subject = "post.created"
	PostModerated   Subject = "post.moderated"
	PostDeleted     Subject = "post.deleted"
	PostLiked       Subject = "post.liked"
	PostCommented   Subject = "post.commented"
	PostShared      Subject = "post.shared"
	UserRegistered  Subject = "user.registered"
	UserFollowed    Subject = "user.followed"
	UserUnfollowed  Subject = "user.unfollowed"
	UserSuspended   Subject = "user.suspended"
	UserDeleted     Subject = "user.deleted"
	CategoryCreated Subject = "category.created"
	CategoryDeleted Subject = "category.deleted"
)

// Event is the payload published for every subject.
type Event struct {
	ID        string         `json:"id"`
	Subject   Subject        `json:"subject"`
	ActorID   string         `json:"actorId,omitempty"`
	EntityID  string         `json:"entityId"`
	Data      map[string]any `json:"data,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// New builds an event stamped with a fresh id and the current time.
func New(subject Subject, actorID, entityID string, data map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		Subject:   subject,
		ActorID:   actorID,
		EntityID:  entityID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// Publisher delivers events to a broker.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Emit publishes event and swallows the error after logging it.
func Emit(ctx context.Context, p Publisher, event Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		observability.EventsPublished.WithLabelValues(string(event.Subject), "error").Inc()
		middleware.Logger.WarnContext(ctx, "event publish failed",
			slog.String("subject", string(event.Subject)),
			slog.String("entity_id", event.EntityID),
			slog.String("error", err.Error()),
		)
		return
	}
	observability.EventsPublished.WithLabelValues(string(event.Subject), "ok").Inc()
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of the recorded events in publish order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Subjects returns the recorded subjects in publish order.
func (r *Recorder) Subjects() []Subject {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Subject, len(r.events))
	for i, e := range r.events {
		out[i] = e.Subject
	}
	return out
}
