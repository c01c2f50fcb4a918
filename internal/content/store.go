package content

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/medbill/medbill-site/backend/api/internal/apierr"
	"github.com/medbill/medbill-site/backend/api/internal/content/collection"
	"github.com/medbill/medbill-site/backend/api/internal/storage"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Collections is the persistence behind a Store.
type Collections struct {
	Pages      collection.Collection[*Page]
	Blogs      collection.Collection[*BlogPost]
	Categories collection.Collection[*BlogCategory]
	Services   collection.Collection[*Service]
	Careers    collection.Collection[*Career]
	Sliders    collection.Collection[*Slider]
	Settings   collection.Collection[*Setting]
	Media      collection.Collection[*MediaAsset]
}

func NewMemoryCollections() Collections {
	return Collections{
		Pages:      collection.NewMemory[*Page](),
		Blogs:      collection.NewMemory[*BlogPost](),
		Categories: collection.NewMemory[*BlogCategory](),
		Services:   collection.NewMemory[*Service](),
		Careers:    collection.NewMemory[*Career](),
		Sliders:    collection.NewMemory[*Slider](),
		Settings:   collection.NewMemory[*Setting](),
		Media:      collection.NewMemory[*MediaAsset](),
	}
}

func slugIndex() mongo.IndexModel {
	return mongo.IndexModel{Keys: bson.D{{Key: "slug", Value: 1}}}
}

func NewMongoCollections(ctx context.Context, db *mongo.Database) Collections {
	order := mongo.IndexModel{Keys: bson.D{{Key: "order", Value: 1}}}
	return Collections{
		Pages:      collection.NewMongo[*Page](ctx, db.Collection("pages"), slugIndex(), mongo.IndexModel{Keys: bson.D{{Key: "template", Value: 1}}}),
		Blogs:      collection.NewMongo[*BlogPost](ctx, db.Collection("blog_posts"), slugIndex(), mongo.IndexModel{Keys: bson.D{{Key: "categorySlug", Value: 1}, {Key: "createdAt", Value: -1}}}),
		Categories: collection.NewMongo[*BlogCategory](ctx, db.Collection("blog_categories"), slugIndex()),
		Services:   collection.NewMongo[*Service](ctx, db.Collection("services"), slugIndex(), order),
		Careers:    collection.NewMongo[*Career](ctx, db.Collection("careers"), slugIndex()),
		Sliders:    collection.NewMongo[*Slider](ctx, db.Collection("sliders"), order),
		Settings:   collection.NewMongo[*Setting](ctx, db.Collection("settings"), mongo.IndexModel{Keys: bson.D{{Key: "group", Value: 1}}}),
		Media:      collection.NewMongo[*MediaAsset](ctx, db.Collection("media")),
	}
}

// Store is the content API surface shared by the public and admin handlers.
type Store struct {
	Pages      *Kind[*Page]
	Blogs      *Kind[*BlogPost]
	Categories *Kind[*BlogCategory]
	Services   *Kind[*Service]
	Careers    *Kind[*Career]
	Sliders    *Kind[*Slider]
	Settings   *Settings
	Media      *Media
}

func required(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return apierr.Validation("%s is required", field)
	}
	return nil
}

var byOrder = []collection.SortField{{Field: "order"}, {Field: "createdAt", Desc: true}}

func NewStore(cols Collections, files storage.ObjectStore, cache *Cache, mediaMaxBytes int64) *Store {
	return &Store{
		Pages: NewKind("pages", "Page", cols.Pages, cache, KindOptions[*Page]{
			Visible:  map[string]any{"published": true},
			Validate: func(p *Page) error { return required("title", p.Title) },
		}),
		Blogs: NewKind("blogs", "Blog post", cols.Blogs, cache, KindOptions[*BlogPost]{
			Sort:    []collection.SortField{{Field: "publishedAt", Desc: true}, {Field: "createdAt", Desc: true}},
			Visible: map[string]any{"published": true},
			Validate: func(b *BlogPost) error {
				if err := required("title", b.Title); err != nil {
					return err
				}
				b.CategorySlug = strings.ToLower(strings.TrimSpace(b.CategorySlug))
				if b.Published && b.PublishedAt == nil {
					now := time.Now().UTC()
					b.PublishedAt = &now
				}
				return nil
			},
		}),
		Categories: NewKind("blog-categories", "Blog category", cols.Categories, cache, KindOptions[*BlogCategory]{
			Sort:     []collection.SortField{{Field: "name"}},
			Validate: func(c *BlogCategory) error { return required("name", c.Name) },
		}),
		Services: NewKind("services", "Service", cols.Services, cache, KindOptions[*Service]{
			Sort:     byOrder,
			Validate: func(s *Service) error { return required("title", s.Title) },
		}),
		Careers: NewKind("careers", "Career", cols.Careers, cache, KindOptions[*Career]{
			Visible:  map[string]any{"open": true},
			Validate: func(c *Career) error { return required("title", c.Title) },
		}),
		Sliders: NewKind("sliders", "Slider", cols.Sliders, cache, KindOptions[*Slider]{
			Sort:    byOrder,
			Visible: map[string]any{"active": true},
			Validate: func(s *Slider) error {
				if err := required("title", s.Title); err != nil {
					return err
				}
				return required("image", s.Image)
			},
		}),
		Settings: newSettings(cols.Settings, cache),
		Media:    newMedia(cols.Media, files, cache, mediaMaxBytes),
	}
}

// CareerExists reports whether id names an active career posting, open or not.
func (s *Store) CareerExists(ctx context.Context, id string) (bool, error) {
	_, err := s.Careers.Get(ctx, id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, apierr.ErrNotFound) {
		return false, nil
	}
	return false, err
}
