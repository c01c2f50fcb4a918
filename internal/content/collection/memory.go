package collection

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Collection. Filters and sort keys are evaluated on
// the bson rendering of each document so field names match the Mongo store.
type Memory[T Document[T]] struct {
	mu   sync.RWMutex
	docs map[string]T
}

func NewMemory[T Document[T]]() *Memory[T] {
	return &Memory[T]{docs: make(map[string]T)}
}

func (m *Memory[T]) Get(ctx context.Context, id string) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.docs[id]; ok && d.Meta().Active() {
		return d.Clone(), nil
	}
	var zero T
	return zero, ErrNotFound
}

type row[T any] struct {
	doc T
	raw bson.M
}

func (m *Memory[T]) match(q Query) ([]row[T], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]row[T], 0, len(m.docs))
	for _, d := range m.docs {
		if !d.Meta().Active() {
			continue
		}
		raw, err := toM(d)
		if err != nil {
			return nil, err
		}
		ok := true
		for k, v := range q.Equals {
			if normalize(raw[k]) != normalize(v) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, row[T]{doc: d.Clone(), raw: raw})
		}
	}
	return out, nil
}

func (m *Memory[T]) Find(ctx context.Context, q Query) ([]T, error) {
	rows, err := m.match(q)
	if err != nil {
		return nil, err
	}
	order := q.Sort
	if len(order) == 0 {
		order = Newest
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, s := range order {
			c := compare(normalize(rows[i].raw[s.Field]), normalize(rows[j].raw[s.Field]))
			if c == 0 {
				continue
			}
			if s.Desc {
				return c > 0
			}
			return c < 0
		}
		return rows[i].doc.Meta().ID < rows[j].doc.Meta().ID
	})

	offset := max(q.Offset, 0)
	out := make([]T, 0, len(rows))
	for i, r := range rows {
		if i < offset {
			continue
		}
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
		out = append(out, r.doc)
	}
	return out, nil
}

func (m *Memory[T]) Count(ctx context.Context, q Query) (int64, error) {
	rows, err := m.match(q)
	return int64(len(rows)), err
}

func (m *Memory[T]) Insert(ctx context.Context, doc T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := doc.Meta().ID
	if _, ok := m.docs[id]; ok {
		return fmt.Errorf("insert %s: duplicate id", id)
	}
	m.docs[id] = doc.Clone()
	return nil
}

func (m *Memory[T]) Replace(ctx context.Context, doc T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.docs[doc.Meta().ID]
	if !ok || !cur.Meta().Active() {
		return ErrNotFound
	}
	m.docs[doc.Meta().ID] = doc.Clone()
	return nil
}

func (m *Memory[T]) SoftDelete(ctx context.Context, id string, now time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok || !d.Meta().Active() {
		return false, nil
	}
	t := now
	d.Meta().DeletedAt = &t
	d.Meta().UpdatedAt = now
	return true, nil
}

// Raw returns the stored document including soft-deleted ones.
func (m *Memory[T]) Raw(id string) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.docs[id]
	if !ok {
		var zero T
		return zero, false
	}
	return d.Clone(), true
}

func toM(v any) (bson.M, error) {
	b, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out bson.M
	if err := bson.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// normalize maps bson and Go values onto comparable scalars.
func normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case bool, string, int64, float64:
		return x
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	case primitive.DateTime:
		return x.Time().UnixNano()
	case time.Time:
		return x.UnixNano()
	default:
		return fmt.Sprint(x)
	}
}

func compare(a, b any) int {
	switch {
	case a == b:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch x := a.(type) {
	case int64:
		if y, ok := b.(int64); ok {
			return cmpOrdered(x, y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			return cmpOrdered(x, y)
		}
	case string:
		if y, ok := b.(string); ok {
			return cmpOrdered(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			if !x && y {
				return -1
			}
			if x && !y {
				return 1
			}
			return 0
		}
	}
	return cmpOrdered(fmt.Sprint(a), fmt.Sprint(b))
}

func cmpOrdered[V int64 | float64 | string](a, b V) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
