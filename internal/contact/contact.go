// Package contact handles messages sent through the site's contact form.
package contact

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/medbill/medbill-site/backend/api/internal/apierr"
	"github.com/medbill/medbill-site/backend/api/internal/content/collection"
	"github.com/medbill/medbill-site/backend/api/internal/events"
	"github.com/medbill/medbill-site/backend/api/internal/paging"
	"github.com/medbill/medbill-site/backend/api/pkg/logger"
)

type Message struct {
	collection.Base `bson:",inline"`
	Name            string  `json:"name" bson:"name"`
	Email           string  `json:"email" bson:"email"`
	Phone           *string `json:"phone" bson:"phone"`
	Subject         *string `json:"subject" bson:"subject"`
	Message         string  `json:"message" bson:"message"`
}

func (m *Message) Clone() *Message {
	c := *m
	if m.Phone != nil {
		v := *m.Phone
		c.Phone = &v
	}
	if m.Subject != nil {
		v := *m.Subject
		c.Subject = &v
	}
	return &c
}

type SubmitInput struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   *string `json:"phone"`
	Subject *string `json:"subject"`
	Message string  `json:"message"`
}

type Service struct {
	col    collection.Collection[*Message]
	events events.Publisher
	now    func() time.Time
}

func NewService(col collection.Collection[*Message], pub events.Publisher) *Service {
	if pub == nil {
		pub = events.Noop{}
	}
	return &Service{col: col, events: pub, now: func() time.Time { return time.Now().UTC() }}
}

func optional(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	return &v
}

func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Message, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	body := strings.TrimSpace(in.Message)

	var missing []string
	for _, f := range []struct{ field, value string }{{"name", name}, {"email", email}, {"message", body}} {
		if f.value == "" {
			missing = append(missing, f.field)
		}
	}
	if len(missing) > 0 {
		return nil, apierr.Validation("Please fill in all required fields: %s", strings.Join(missing, ", "))
	}
	if at := strings.Index(email, "@"); at <= 0 || at == len(email)-1 {
		return nil, apierr.Validation("Please provide a valid email address")
	}

	now := s.now()
	m := &Message{
		Base:    collection.Base{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		Name:    name,
		Email:   email,
		Phone:   optional(in.Phone),
		Subject: optional(in.Subject),
		Message: body,
	}
	if err := s.col.Insert(ctx, m); err != nil {
		return nil, apierr.Persistence("create contact message", err)
	}
	logger.Infow("contact message received", "id", m.ID)
	if err := s.events.Publish(ctx, events.ContactReceived, m); err != nil {
		logger.Warnw("contact event not published", "id", m.ID, "err", err)
	}
	return m, nil
}

func (s *Service) List(ctx context.Context, offset, limit int) ([]*Message, int64, error) {
	total, err := s.col.Count(ctx, collection.Query{})
	if err != nil {
		return nil, 0, apierr.Persistence("count contact messages", err)
	}
	items, err := s.col.Find(ctx, collection.Query{Offset: offset, Limit: limit})
	if err != nil {
		return nil, 0, apierr.Persistence("list contact messages", err)
	}
	return items, total, nil
}

// Delete soft-deletes id; unknown or already deleted ids succeed unchanged.
func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.col.SoftDelete(ctx, id, s.now()); err != nil {
		return apierr.Persistence("delete contact message", err)
	}
	return nil
}

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup, mw ...gin.HandlerFunc) {
	rg.POST("/contacts", append(mw, h.submit)...)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/contacts", h.list)
	rg.DELETE("/contacts/:id", h.delete)
}

func (h *Handler) submit(c *gin.Context) {
	var in SubmitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		apierr.Respond(c, apierr.Validation("Invalid request body"))
		return
	}
	if _, err := h.svc.Submit(c.Request.Context(), in); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Thank you for reaching out! We will get back to you soon."})
}

func (h *Handler) list(c *gin.Context) {
	p := paging.FromQuery(c, 20, 100)
	items, total, err := h.svc.List(c.Request.Context(), p.Offset(), p.Limit)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "contacts": items, "pagination": paging.Meta(p.Page, p.Limit, total)})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message deleted successfully"})
}
