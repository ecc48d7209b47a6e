// Package memory holds process-local implementations of the persistence ports,
// used by tests and by local runs without AWS.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"marketplace/application/ports"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Table is an in-memory ports.Store with the same soft-delete semantics as
// the DynamoDB table.
type Table[T ports.Entity[T]] struct {
	mu      sync.RWMutex
	records map[string]T
}

// NewTable creates an empty table.
func NewTable[T ports.Entity[T]]() *Table[T] {
	return &Table[T]{records: make(map[string]T)}
}

func (t *Table[T]) Get(ctx context.Context, id string) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	record, ok := t.records[id]
	if !ok || record.IsDeleted() {
		var zero T
		return zero, ports.ErrNotFound
	}
	return record, nil
}

func (t *Table[T]) List(ctx context.Context) ([]T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	records := make([]T, 0, len(t.records))
	for _, id := range t.liveIDs() {
		records = append(records, t.records[id])
	}
	return records, nil
}

func (t *Table[T]) ListIDs(ctx context.Context) ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.liveIDs(), nil
}

// ListIDsBy matches field against the record's DynamoDB attribute of the
// same name, so filters behave exactly as they do against the real table.
func (t *Table[T]) ListIDsBy(ctx context.Context, field, value string) ([]string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]string, 0)
	for _, id := range t.liveIDs() {
		item, err := attributevalue.MarshalMap(t.records[id])
		if err != nil {
			return nil, err
		}
		if s, ok := item[field].(*types.AttributeValueMemberS); ok && s.Value == value {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (t *Table[T]) Count(ctx context.Context) (int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.liveIDs()), nil
}

// Create refuses any existing key, including soft-deleted ones.
func (t *Table[T]) Create(ctx context.Context, record T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.records[record.EntityID()]; exists {
		return ports.ErrAlreadyExists
	}
	t.records[record.EntityID()] = record
	return nil
}

func (t *Table[T]) Put(ctx context.Context, record T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.records[record.EntityID()] = record
	return nil
}

func (t *Table[T]) SoftDelete(ctx context.Context, id string, at time.Time) (T, error) {
	return t.Update(ctx, id, func(record *T) error {
		*record = (*record).MarkDeleted(at)
		return nil
	})
}

// Update applies fn to a live record under the table lock and stores the
// result unless fn fails.
func (t *Table[T]) Update(ctx context.Context, id string, fn func(record *T) error) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	record, ok := t.records[id]
	if !ok || record.IsDeleted() {
		return zero, ports.ErrNotFound
	}
	if err := fn(&record); err != nil {
		return zero, err
	}
	t.records[id] = record
	return record, nil
}

// Raw returns a record regardless of its deletion state.
func (t *Table[T]) Raw(id string) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	record, ok := t.records[id]
	return record, ok
}

func (t *Table[T]) liveIDs() []string {
	ids := make([]string, 0, len(t.records))
	for id, record := range t.records {
		if !record.IsDeleted() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
