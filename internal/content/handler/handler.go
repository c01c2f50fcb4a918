package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/medbill/medbill-site/backend/api/internal/apierr"
	"github.com/medbill/medbill-site/backend/api/internal/content"
	"github.com/medbill/medbill-site/backend/api/internal/content/collection"
	"github.com/medbill/medbill-site/backend/api/internal/paging"
)

const (
	publicPageSize = 10
	adminPageSize  = 20
	maxPageSize    = 100

	multipartSlack = 1 << 20
)

type Handler struct {
	store *content.Store
}

func New(store *content.Store) *Handler { return &Handler{store: store} }

// filters maps query parameters onto document attributes.
type filters map[string]string

func (f filters) from(c *gin.Context) content.Filter {
	out := content.Filter{}
	for param, field := range f {
		v := strings.TrimSpace(c.Query(param))
		if v == "" {
			continue
		}
		if strings.HasSuffix(field, "Slug") {
			v = strings.ToLower(v)
		}
		out[field] = v
	}
	return out
}

func listed[T any](c *gin.Context, res *content.ListResult[T], p paging.Params) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": res.Items, "pagination": paging.Meta(p.Page, p.Limit, res.Total)})
}

func publicList[T collection.Document[T]](k *content.Kind[T], f filters) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := paging.FromQuery(c, publicPageSize, maxPageSize)
		res, err := k.List(c.Request.Context(), f.from(c), p.Offset(), p.Limit, true)
		if err != nil {
			apierr.Respond(c, err)
			return
		}
		listed(c, res, p)
	}
}

func publicGet[T collection.Document[T]](k *content.Kind[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := k.BySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			apierr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": doc})
	}
}

// RegisterPublicRoutes mounts the unauthenticated read API.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	s := h.store
	rg.GET("/pages", publicList(s.Pages, filters{"template": "template"}))
	rg.GET("/pages/:slug", publicGet(s.Pages))
	rg.GET("/blogs", publicList(s.Blogs, filters{"category": "categorySlug"}))
	rg.GET("/blogs/:slug", publicGet(s.Blogs))
	rg.GET("/blog-categories", publicList(s.Categories, nil))
	rg.GET("/services", publicList(s.Services, nil))
	rg.GET("/services/:slug", publicGet(s.Services))
	rg.GET("/careers", publicList(s.Careers, filters{"department": "department", "type": "type"}))
	rg.GET("/careers/:slug", publicGet(s.Careers))
	rg.GET("/sliders", publicList(s.Sliders, nil))
	rg.GET("/settings", h.settingsMap)
	rg.GET("/settings/:key", h.setting)
	rg.GET("/media", h.mediaList(true))
}

func adminList[T collection.Document[T]](k *content.Kind[T], f filters) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := paging.FromQuery(c, adminPageSize, maxPageSize)
		res, err := k.List(c.Request.Context(), f.from(c), p.Offset(), p.Limit, false)
		if err != nil {
			apierr.Respond(c, err)
			return
		}
		listed(c, res, p)
	}
}

func adminGet[T collection.Document[T]](k *content.Kind[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := k.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			apierr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": doc})
	}
}

// bind decodes a JSON document body. A null body is rejected.
func bind[T any](c *gin.Context) (T, bool) {
	var doc T
	if err := json.NewDecoder(c.Request.Body).Decode(&doc); err != nil {
		return doc, false
	}
	v := reflect.ValueOf(doc)
	if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return doc, false
	}
	return doc, true
}

func adminCreate[T collection.Document[T]](k *content.Kind[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, ok := bind[T](c)
		if !ok {
			apierr.Respond(c, apierr.Validation("Invalid request body"))
			return
		}
		out, err := k.Create(c.Request.Context(), doc)
		if err != nil {
			apierr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Created successfully", "data": out})
	}
}

func adminReplace[T collection.Document[T]](k *content.Kind[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, ok := bind[T](c)
		if !ok {
			apierr.Respond(c, apierr.Validation("Invalid request body"))
			return
		}
		out, err := k.Replace(c.Request.Context(), c.Param("id"), doc)
		if err != nil {
			apierr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Updated successfully", "data": out})
	}
}

func adminDelete[T collection.Document[T]](k *content.Kind[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := k.Delete(c.Request.Context(), c.Param("id")); err != nil {
			apierr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Deleted successfully"})
	}
}

func mountKind[T collection.Document[T]](rg *gin.RouterGroup, k *content.Kind[T], f filters) {
	base := "/" + k.Name()
	rg.GET(base, adminList(k, f))
	rg.GET(base+"/:id", adminGet(k))
	rg.POST(base, adminCreate(k))
	rg.PUT(base+"/:id", adminReplace(k))
	rg.DELETE(base+"/:id", adminDelete(k))
}

// RegisterAdminRoutes expects rg to be behind the admin auth middleware.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	s := h.store
	mountKind(rg, s.Pages, filters{"template": "template"})
	mountKind(rg, s.Blogs, filters{"category": "categorySlug"})
	mountKind(rg, s.Categories, nil)
	mountKind(rg, s.Services, nil)
	mountKind(rg, s.Careers, filters{"department": "department"})
	mountKind(rg, s.Sliders, nil)

	rg.GET("/settings", h.settingsList)
	rg.PUT("/settings/:key", h.putSetting)

	rg.GET("/media", h.mediaList(false))
	rg.POST("/media", h.uploadMedia)
	rg.DELETE("/media/:id", h.deleteMedia)
}

func (h *Handler) settingsMap(c *gin.Context) {
	m, err := h.store.Settings.Map(c.Request.Context())
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": m})
}

func (h *Handler) setting(c *gin.Context) {
	st, err := h.store.Settings.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"key": st.Key, "value": st.Value}})
}

func (h *Handler) settingsList(c *gin.Context) {
	all, err := h.store.Settings.List(c.Request.Context(), c.Query("group"))
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": all})
}

func (h *Handler) putSetting(c *gin.Context) {
	var in content.SettingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		apierr.Respond(c, apierr.Validation("Invalid request body"))
		return
	}
	st, err := h.store.Settings.Put(c.Request.Context(), c.Param("key"), in)
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Setting saved", "data": st})
}

func (h *Handler) mediaList(public bool) gin.HandlerFunc {
	def := adminPageSize
	if public {
		def = publicPageSize
	}
	return func(c *gin.Context) {
		p := paging.FromQuery(c, def, maxPageSize)
		res, err := h.store.Media.List(c.Request.Context(), p.Offset(), p.Limit, public)
		if err != nil {
			apierr.Respond(c, err)
			return
		}
		listed(c, res, p)
	}
}

func (h *Handler) uploadMedia(c *gin.Context) {
	max := h.store.Media.MaxBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max+multipartSlack)
	fh, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large") {
			apierr.Respond(c, apierr.FileTooLarge("Image size must be at most %s", humanize.IBytes(uint64(max))))
			return
		}
		apierr.Respond(c, apierr.Validation("Please choose a file to upload"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		apierr.Respond(c, apierr.Validation("Uploaded file could not be read"))
		return
	}
	defer f.Close()

	asset, err := h.store.Media.Upload(c.Request.Context(), content.MediaUpload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
		Alt:         c.PostForm("alt"),
	})
	if err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "File uploaded", "data": asset})
}

func (h *Handler) deleteMedia(c *gin.Context) {
	if err := h.store.Media.Delete(c.Request.Context(), c.Param("id")); err != nil {
		apierr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Deleted successfully"})
}
