package ports

import (
	"context"
	"errors"
	"time"

	"marketplace/domain/core/entities"
)

var (
	// ErrNotFound is returned by a Store when the record is missing or
	// soft-deleted.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyExists is returned by Store.Create for a duplicate key.
	ErrAlreadyExists = errors.New("record already exists")

	// ErrPreconditionFailed is returned when a guarded update is refused.
	ErrPreconditionFailed = errors.New("update precondition failed")
)

// Entity is implemented by every persisted record. MarkDeleted returns a
// copy carrying the soft-delete timestamp.
type Entity[T any] interface {
	EntityID() string
	IsDeleted() bool
	MarkDeleted(at time.Time) T
}

// Store is the durable, authoritative repository of one entity kind.
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type Store[T Entity[T]] interface {
	// Get returns a live record, or ErrNotFound.
	Get(ctx context.Context, id string) (T, error)

	// List returns every live record.
	List(ctx context.Context) ([]T, error)

	// ListIDs returns the ids of every live record.
	ListIDs(ctx context.Context) ([]string, error)

	// ListIDsBy returns the ids of live records whose string attribute
	// field equals value.
	ListIDsBy(ctx context.Context, field, value string) ([]string, error)

	// Count returns the number of live records.
	Count(ctx context.Context) (int, error)

	// Create inserts a record, failing with ErrAlreadyExists on a duplicate key.
	Create(ctx context.Context, record T) error

	// Put overwrites a record unconditionally.
	Put(ctx context.Context, record T) error

	// SoftDelete stamps deleted_at on a live record and returns it. A missing
	// or already deleted record yields ErrNotFound.
	SoftDelete(ctx context.Context, id string, at time.Time) (T, error)
}

// ShopStore adds the review aggregate update to the shop store.
type ShopStore interface {
	Store[entities.Shop]

	// ApplyReviewDelta atomically adds scoreDelta to total_score and
	// countDelta to review_number. It fails with ErrPreconditionFailed if the
	// count would drop below zero.
	ApplyReviewDelta(ctx context.Context, shopID string, scoreDelta float64, countDelta int) (entities.Shop, error)
}

// ReviewStore adds the derived has_reply flag to the review store.
type ReviewStore interface {
	Store[entities.ShopReview]

	SetHasReply(ctx context.Context, reviewID string, hasReply bool) (entities.ShopReview, error)
}

// ReplyStore is the reply store.
type ReplyStore interface {
	Store[entities.Reply]
}

// Locker guards work that only one process should do at a time.
type Locker interface {
	// TryLock acquires resource for ttl without waiting. acquired is false
	// when another owner holds it.
	TryLock(ctx context.Context, resource string, ttl time.Duration) (release func(context.Context) error, acquired bool, err error)
}
