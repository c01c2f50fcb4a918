package content

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/medbill/medbill-site/backend/api/internal/apierr"
	"github.com/medbill/medbill-site/backend/api/internal/content/collection"
)

const settingsKind = "settings"

var settingKey = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

type Settings struct {
	col   collection.Collection[*Setting]
	cache *Cache
	now   func() time.Time
}

func newSettings(col collection.Collection[*Setting], cache *Cache) *Settings {
	return &Settings{col: col, cache: cache, now: func() time.Time { return time.Now().UTC() }}
}

// Map returns every setting as key -> value.
func (s *Settings) Map(ctx context.Context) (map[string]string, error) {
	out := map[string]string{}
	if s.cache.Load(ctx, settingsKind, "map", &out) {
		return out, nil
	}
	all, err := s.col.Find(ctx, collection.Query{Sort: []collection.SortField{{Field: "key"}}})
	if err != nil {
		return nil, apierr.Persistence("list settings", err)
	}
	for _, st := range all {
		out[st.Key] = st.Value
	}
	s.cache.Store(ctx, settingsKind, "map", out)
	return out, nil
}

// List returns full setting records, optionally for one group.
func (s *Settings) List(ctx context.Context, group string) ([]*Setting, error) {
	q := collection.Query{Sort: []collection.SortField{{Field: "group"}, {Field: "key"}}}
	if group = strings.TrimSpace(group); group != "" {
		q = q.Where("group", group)
	}
	all, err := s.col.Find(ctx, q)
	if err != nil {
		return nil, apierr.Persistence("list settings", err)
	}
	return all, nil
}

func (s *Settings) Get(ctx context.Context, key string) (*Setting, error) {
	st, err := s.col.Get(ctx, strings.TrimSpace(key))
	if err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			return nil, apierr.NotFound("Setting")
		}
		return nil, apierr.Persistence("get setting", err)
	}
	return st, nil
}

// SettingInput is the body of a settings upsert.
type SettingInput struct {
	Value string `json:"value"`
	Group string `json:"group"`
}

// Put creates or overwrites the setting with key.
func (s *Settings) Put(ctx context.Context, key string, in SettingInput) (*Setting, error) {
	key = strings.TrimSpace(key)
	if !settingKey.MatchString(key) {
		return nil, apierr.Validation("setting key may only contain letters, digits, dots, dashes and underscores")
	}
	now := s.now()
	cur, err := s.col.Get(ctx, key)
	switch {
	case err == nil:
		cur.Value = in.Value
		cur.Group = strings.TrimSpace(in.Group)
		cur.UpdatedAt = now
		if err := s.col.Replace(ctx, cur); err != nil {
			return nil, apierr.Persistence("update setting", err)
		}
	case errors.Is(err, collection.ErrNotFound):
		cur = &Setting{
			Base:  collection.Base{ID: key, CreatedAt: now, UpdatedAt: now},
			Key:   key,
			Value: in.Value,
			Group: strings.TrimSpace(in.Group),
		}
		if err := s.col.Insert(ctx, cur); err != nil {
			return nil, apierr.Persistence("create setting", err)
		}
	default:
		return nil, apierr.Persistence("get setting", err)
	}
	s.cache.Invalidate(ctx, settingsKind)
	return cur, nil
}
