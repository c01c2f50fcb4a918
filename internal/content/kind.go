package content

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/medbill/medbill-site/backend/api/internal/apierr"
	"github.com/medbill/medbill-site/backend/api/internal/content/collection"
	"github.com/medbill/medbill-site/backend/api/pkg/logger"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// slugged documents are addressable by a unique slug within their kind.
type slugged interface {
	SlugValue() *string
}

// ListResult is one page of documents plus the unpaged total.
type ListResult[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}

// Kind exposes one content collection with its admin write rules and its
// public visibility filter.
type Kind[T collection.Document[T]] struct {
	name     string
	label    string
	col      collection.Collection[T]
	cache    *Cache
	sort     []collection.SortField
	visible  map[string]any
	validate func(T) error
	now      func() time.Time
}

// KindOptions describe a kind's ordering, public filter and validation.
type KindOptions[T any] struct {
	Sort     []collection.SortField
	Visible  map[string]any
	Validate func(T) error
}

func NewKind[T collection.Document[T]](name, label string, col collection.Collection[T], cache *Cache, opts KindOptions[T]) *Kind[T] {
	return &Kind[T]{
		name:     name,
		label:    label,
		col:      col,
		cache:    cache,
		sort:     opts.Sort,
		visible:  opts.Visible,
		validate: opts.Validate,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (k *Kind[T]) Name() string { return k.name }

// Filter narrows a list to documents whose attributes equal the given values.
type Filter map[string]any

func (k *Kind[T]) query(eq Filter, public bool) collection.Query {
	q := collection.Query{Sort: k.sort}
	for f, v := range eq {
		q = q.Where(f, v)
	}
	if public {
		for f, v := range k.visible {
			q = q.Where(f, v)
		}
	}
	return q
}

func variant(op string, eq Filter, offset, limit int) string {
	v := url.Values{}
	for f, val := range eq {
		v.Set(f, fmt.Sprint(val))
	}
	v.Set("_offset", fmt.Sprint(offset))
	v.Set("_limit", fmt.Sprint(limit))
	return op + "?" + v.Encode()
}

// List returns a page of documents. public restricts the result to visible
// documents and goes through the cache.
func (k *Kind[T]) List(ctx context.Context, eq Filter, offset, limit int, public bool) (*ListResult[T], error) {
	key := variant("list", eq, offset, limit)
	if public {
		var hit ListResult[T]
		if k.cache.Load(ctx, k.name, key, &hit) {
			return &hit, nil
		}
	}

	q := k.query(eq, public)
	total, err := k.col.Count(ctx, q)
	if err != nil {
		return nil, apierr.Persistence("count "+k.name, err)
	}
	q.Offset, q.Limit = offset, limit
	items, err := k.col.Find(ctx, q)
	if err != nil {
		return nil, apierr.Persistence("list "+k.name, err)
	}
	res := &ListResult[T]{Items: items, Total: total}
	if public {
		k.cache.Store(ctx, k.name, key, res)
	}
	return res, nil
}

// BySlug returns the visible document with slug.
func (k *Kind[T]) BySlug(ctx context.Context, slug string) (T, error) {
	var zero T
	slug = strings.ToLower(strings.TrimSpace(slug))
	key := variant("slug", Filter{"slug": slug}, 0, 1)
	var hit T
	if k.cache.Load(ctx, k.name, key, &hit) {
		return hit, nil
	}
	q := k.query(Filter{"slug": slug}, true)
	q.Limit = 1
	items, err := k.col.Find(ctx, q)
	if err != nil {
		return zero, apierr.Persistence("find "+k.name, err)
	}
	if len(items) == 0 {
		return zero, apierr.NotFound(k.label)
	}
	k.cache.Store(ctx, k.name, key, items[0])
	return items[0], nil
}

// Get returns the active document with id, visible or not.
func (k *Kind[T]) Get(ctx context.Context, id string) (T, error) {
	doc, err := k.col.Get(ctx, id)
	if err != nil {
		var zero T
		if errors.Is(err, collection.ErrNotFound) {
			return zero, apierr.NotFound(k.label)
		}
		return zero, apierr.Persistence("get "+k.name, err)
	}
	return doc, nil
}

// checkSlug normalizes doc's slug and rejects malformed or taken ones.
func (k *Kind[T]) checkSlug(ctx context.Context, doc T) error {
	s, ok := any(doc).(slugged)
	if !ok {
		return nil
	}
	slug := s.SlugValue()
	*slug = strings.ToLower(strings.TrimSpace(*slug))
	if *slug == "" {
		return apierr.Validation("slug is required")
	}
	if !slugPattern.MatchString(*slug) {
		return apierr.Validation("slug may only contain lowercase letters, digits and single hyphens")
	}
	taken, err := k.col.Find(ctx, collection.Query{Limit: 2}.Where("slug", *slug))
	if err != nil {
		return apierr.Persistence("check slug", err)
	}
	for _, other := range taken {
		if other.Meta().ID != doc.Meta().ID {
			return apierr.Validation("slug %q is already in use", *slug)
		}
	}
	return nil
}

func (k *Kind[T]) prepare(ctx context.Context, doc T) error {
	if k.validate != nil {
		if err := k.validate(doc); err != nil {
			return err
		}
	}
	return k.checkSlug(ctx, doc)
}

// Create stores doc under a fresh id.
func (k *Kind[T]) Create(ctx context.Context, doc T) (T, error) {
	var zero T
	now := k.now()
	m := doc.Meta()
	m.ID = uuid.NewString()
	m.CreatedAt, m.UpdatedAt, m.DeletedAt = now, now, nil
	if err := k.prepare(ctx, doc); err != nil {
		return zero, err
	}
	if err := k.col.Insert(ctx, doc); err != nil {
		return zero, apierr.Persistence("create "+k.name, err)
	}
	k.cache.Invalidate(ctx, k.name)
	logger.Infow("content created", "kind", k.name, "id", m.ID)
	return doc, nil
}

// Replace overwrites the document with id, keeping its id and creation time.
func (k *Kind[T]) Replace(ctx context.Context, id string, doc T) (T, error) {
	var zero T
	cur, err := k.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	m := doc.Meta()
	m.ID = id
	m.CreatedAt = cur.Meta().CreatedAt
	m.UpdatedAt = k.now()
	m.DeletedAt = nil
	if err := k.prepare(ctx, doc); err != nil {
		return zero, err
	}
	if err := k.col.Replace(ctx, doc); err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			return zero, apierr.NotFound(k.label)
		}
		return zero, apierr.Persistence("replace "+k.name, err)
	}
	k.cache.Invalidate(ctx, k.name)
	return doc, nil
}

// Delete soft-deletes id. Deleting a missing or already deleted document
// succeeds without changes.
func (k *Kind[T]) Delete(ctx context.Context, id string) error {
	ok, err := k.col.SoftDelete(ctx, id, k.now())
	if err != nil {
		return apierr.Persistence("delete "+k.name, err)
	}
	if ok {
		k.cache.Invalidate(ctx, k.name)
		logger.Infow("content deleted", "kind", k.name, "id", id)
	}
	return nil
}
