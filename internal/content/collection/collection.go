// Package collection is the generic document store behind site content and
// contact messages. Every read only matches active documents.
package collection

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("document not found")

// Base carries the identity and lifecycle stamps shared by every document.
type Base struct {
	ID        string     `json:"id" bson:"_id"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt" bson:"deletedAt"`
}

// Meta gives generic code access to the embedded Base.
func (b *Base) Meta() *Base { return b }

func (b *Base) Active() bool { return b.DeletedAt == nil }

// Document is implemented by pointers to types embedding Base.
type Document[T any] interface {
	Meta() *Base
	Clone() T
}

// SortField orders results by a bson attribute.
type SortField struct {
	Field string
	Desc  bool
}

// Newest is the default ordering.
var Newest = []SortField{{Field: "createdAt", Desc: true}}

// Query selects active documents whose named bson attributes equal the given
// values. Limit <= 0 means no limit.
type Query struct {
	Equals map[string]any
	Sort   []SortField
	Offset int
	Limit  int
}

// Where returns a copy of q with one more equality filter.
func (q Query) Where(field string, v any) Query {
	eq := make(map[string]any, len(q.Equals)+1)
	for k, val := range q.Equals {
		eq[k] = val
	}
	eq[field] = v
	q.Equals = eq
	return q
}

type Collection[T Document[T]] interface {
	Get(ctx context.Context, id string) (T, error)
	// Find returns matching documents; Count ignores Offset and Limit.
	Find(ctx context.Context, q Query) ([]T, error)
	Count(ctx context.Context, q Query) (int64, error)
	Insert(ctx context.Context, doc T) error
	// Replace overwrites the active document with doc's id.
	Replace(ctx context.Context, doc T) error
	// SoftDelete stamps deletedAt on the active document. Reports whether one matched.
	SoftDelete(ctx context.Context, id string, now time.Time) (bool, error)
}
