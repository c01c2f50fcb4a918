package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medbill/medbill-site/backend/api/internal/apierr"
	"github.com/medbill/medbill-site/backend/api/internal/booking/service"
	"github.com/medbill/medbill-site/backend/api/internal/paging"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler { return &Handler{svc: svc} }

// RegisterPublicRoutes mounts the booking form endpoint. mw runs before the
// handler (rate limiting).
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup, mw ...gin.HandlerFunc) {
	rg.POST("/bookings", append(mw, h.create)...)
}

// RegisterAdminRoutes expects rg to be behind the admin auth middleware.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/bookings", h.list)
	rg.GET("/bookings/:id", h.get)
	rg.PUT("/bookings/:id", h.update)
	rg.DELETE("/bookings/:id", h.delete)
}

func (h *Handler) create(c *gin.Context) {
	var in service.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		apierr.Respond(c, apierr.Validation("Invalid request body"))
		return
	}
	b, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Thank you! Your appointment request has been received. We will contact you shortly to confirm.",
		"booking": b,
	})
}

func (h *Handler) list(c *gin.Context) {
	p := paging.FromQuery(c, service.DefaultPageSize, service.MaxPageSize)
	res, err := h.svc.List(c.Request.Context(), service.ListInput{Status: c.Query("status"), Page: p.Page, Limit: p.Limit})
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"bookings":   res.Bookings,
		"pagination": paging.Meta(res.Page, res.Limit, res.Total),
	})
}

func (h *Handler) get(c *gin.Context) {
	b, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "booking": b})
}

func (h *Handler) update(c *gin.Context) {
	var in service.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		apierr.Respond(c, apierr.Validation("Invalid request body"))
		return
	}
	b, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Booking updated successfully", "booking": b})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Booking deleted successfully"})
}
