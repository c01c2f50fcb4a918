package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/medbill/medbill-site/backend/api/internal/apierr"
	"github.com/medbill/medbill-site/backend/api/internal/resume/service"
)

// multipartSlack is allowed on top of the file limit for form boundaries and
// headers so an oversize file is reported as such instead of a broken body.
const multipartSlack = 1 << 20

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup, mw ...gin.HandlerFunc) {
	rg.POST("/resumes/upload", append(mw, h.upload)...)
	rg.POST("/resumes", append(mw, h.submit)...)
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/resumes", h.list)
}

func bodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.svc.MaxBytes()+multipartSlack)
	fh, err := c.FormFile("file")
	if err != nil {
		switch {
		case bodyTooLarge(err):
			apierr.Respond(c, apierr.FileTooLarge("File size must be at most %s", humanize.IBytes(uint64(h.svc.MaxBytes()))))
		default:
			apierr.Respond(c, apierr.Validation("Please choose a file to upload"))
		}
		return
	}
	f, err := fh.Open()
	if err != nil {
		apierr.Respond(c, apierr.Validation("Uploaded file could not be read"))
		return
	}
	defer f.Close()

	up, err := h.svc.Upload(c.Request.Context(), service.UploadInput{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "url": up.URL, "file": up})
}

func (h *Handler) submit(c *gin.Context) {
	var in service.SubmitInput
	if err := c.ShouldBindJSON(&in); err != nil {
		apierr.Respond(c, apierr.Validation("Invalid request body"))
		return
	}
	a, err := h.svc.Submit(c.Request.Context(), in)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Thank you for applying! We will review your application and get back to you.",
		"application": a,
	})
}

func (h *Handler) list(c *gin.Context) {
	apps, err := h.svc.List(c.Request.Context(), c.Query("careerId"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "applications": apps, "count": len(apps)})
}
