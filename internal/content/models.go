// Package content owns the site's CMS records: pages, blog posts, services,
// careers, settings, media and sliders.
package content

import (
	"time"

	"github.com/medbill/medbill-site/backend/api/internal/content/collection"
)

type Section struct {
	Type    string `json:"type" bson:"type"`
	Heading string `json:"heading" bson:"heading"`
	Body    string `json:"body" bson:"body"`
	Image   string `json:"image" bson:"image"`
}

type Page struct {
	collection.Base `bson:",inline"`
	Title           string    `json:"title" bson:"title"`
	Slug            string    `json:"slug" bson:"slug"`
	Template        string    `json:"template" bson:"template"`
	Summary         string    `json:"summary" bson:"summary"`
	Sections        []Section `json:"sections" bson:"sections"`
	MetaTitle       string    `json:"metaTitle" bson:"metaTitle"`
	MetaDescription string    `json:"metaDescription" bson:"metaDescription"`
	Published       bool      `json:"published" bson:"published"`
}

func (p *Page) Clone() *Page {
	c := *p
	c.Sections = append([]Section(nil), p.Sections...)
	return &c
}

func (p *Page) SlugValue() *string { return &p.Slug }

type BlogPost struct {
	collection.Base `bson:",inline"`
	Title           string     `json:"title" bson:"title"`
	Slug            string     `json:"slug" bson:"slug"`
	CategorySlug    string     `json:"categorySlug" bson:"categorySlug"`
	Excerpt         string     `json:"excerpt" bson:"excerpt"`
	Body            string     `json:"body" bson:"body"`
	CoverImage      string     `json:"coverImage" bson:"coverImage"`
	Author          string     `json:"author" bson:"author"`
	PublishedAt     *time.Time `json:"publishedAt" bson:"publishedAt"`
	Published       bool       `json:"published" bson:"published"`
}

func (b *BlogPost) Clone() *BlogPost {
	c := *b
	return &c
}

func (b *BlogPost) SlugValue() *string { return &b.Slug }

type BlogCategory struct {
	collection.Base `bson:",inline"`
	Name            string `json:"name" bson:"name"`
	Slug            string `json:"slug" bson:"slug"`
}

func (b *BlogCategory) Clone() *BlogCategory {
	c := *b
	return &c
}

func (b *BlogCategory) SlugValue() *string { return &b.Slug }

// Service is an offering of the company, shown on the services page and
// referenced by bookings.
type Service struct {
	collection.Base `bson:",inline"`
	Title           string `json:"title" bson:"title"`
	Slug            string `json:"slug" bson:"slug"`
	Summary         string `json:"summary" bson:"summary"`
	Description     string `json:"description" bson:"description"`
	Icon            string `json:"icon" bson:"icon"`
	Image           string `json:"image" bson:"image"`
	Order           int    `json:"order" bson:"order"`
}

func (s *Service) Clone() *Service {
	c := *s
	return &c
}

func (s *Service) SlugValue() *string { return &s.Slug }

// Career is a job posting that applications reference.
type Career struct {
	collection.Base `bson:",inline"`
	Title           string   `json:"title" bson:"title"`
	Slug            string   `json:"slug" bson:"slug"`
	Department      string   `json:"department" bson:"department"`
	Location        string   `json:"location" bson:"location"`
	Type            string   `json:"type" bson:"type"`
	Description     string   `json:"description" bson:"description"`
	Requirements    []string `json:"requirements" bson:"requirements"`
	Open            bool     `json:"open" bson:"open"`
}

func (c *Career) Clone() *Career {
	out := *c
	out.Requirements = append([]string(nil), c.Requirements...)
	return &out
}

func (c *Career) SlugValue() *string { return &c.Slug }

type Slider struct {
	collection.Base `bson:",inline"`
	Title           string `json:"title" bson:"title"`
	Subtitle        string `json:"subtitle" bson:"subtitle"`
	Image           string `json:"image" bson:"image"`
	LinkURL         string `json:"linkUrl" bson:"linkUrl"`
	LinkText        string `json:"linkText" bson:"linkText"`
	Order           int    `json:"order" bson:"order"`
	Active          bool   `json:"active" bson:"active"`
}

func (s *Slider) Clone() *Slider {
	c := *s
	return &c
}

// Setting is a site-wide key/value pair. The key doubles as the id.
type Setting struct {
	collection.Base `bson:",inline"`
	Key             string `json:"key" bson:"key"`
	Value           string `json:"value" bson:"value"`
	Group           string `json:"group" bson:"group"`
}

func (s *Setting) Clone() *Setting {
	c := *s
	return &c
}

// MediaAsset is an uploaded image in the media library.
type MediaAsset struct {
	collection.Base `bson:",inline"`
	FileName        string `json:"fileName" bson:"fileName"`
	URL             string `json:"url" bson:"url"`
	Key             string `json:"key" bson:"key"`
	ContentType     string `json:"contentType" bson:"contentType"`
	Size            int64  `json:"size" bson:"size"`
	Alt             string `json:"alt" bson:"alt"`
}

func (m *MediaAsset) Clone() *MediaAsset {
	c := *m
	return &c
}
