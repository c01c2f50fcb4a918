package content

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/medbill/medbill-site/backend/api/internal/apierr"
	"github.com/medbill/medbill-site/backend/api/internal/content/collection"
	"github.com/medbill/medbill-site/backend/api/internal/storage"
	"github.com/medbill/medbill-site/backend/api/pkg/logger"
	"github.com/medbill/medbill-site/backend/api/pkg/metrics"
)

const mediaKind = "media"

// DefaultMediaMaxBytes caps a media library upload at 10 MiB.
const DefaultMediaMaxBytes int64 = 10 * 1024 * 1024

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
}

// Media is the image library backing page, blog and slider artwork.
type Media struct {
	col      collection.Collection[*MediaAsset]
	files    storage.ObjectStore
	cache    *Cache
	maxBytes int64
	now      func() time.Time
}

func newMedia(col collection.Collection[*MediaAsset], files storage.ObjectStore, cache *Cache, maxBytes int64) *Media {
	if maxBytes <= 0 {
		maxBytes = DefaultMediaMaxBytes
	}
	return &Media{col: col, files: files, cache: cache, maxBytes: maxBytes, now: func() time.Time { return time.Now().UTC() }}
}

func (m *Media) MaxBytes() int64 { return m.maxBytes }

// MediaUpload is one image from the admin upload form.
type MediaUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
	Alt         string
}

func imageType(name, declared string) (string, string, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	ct, ok := imageTypes[ext]
	if !ok {
		return "", "", false
	}
	declared = strings.ToLower(strings.TrimSpace(declared))
	if i := strings.Index(declared, ";"); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if declared != "" && declared != "application/octet-stream" && !strings.HasPrefix(declared, "image/") {
		return "", "", false
	}
	return ext, ct, true
}

func (m *Media) Upload(ctx context.Context, in MediaUpload) (*MediaAsset, error) {
	ext, ct, ok := imageType(in.FileName, in.ContentType)
	if !ok {
		metrics.Uploads.WithLabelValues("media", "rejected").Inc()
		return nil, apierr.UnsupportedFileType("Only JPG, PNG, GIF, WEBP and SVG images are allowed")
	}
	if in.Size > m.maxBytes {
		metrics.Uploads.WithLabelValues("media", "rejected").Inc()
		return nil, apierr.FileTooLarge("Image size must be at most %s", humanize.IBytes(uint64(m.maxBytes)))
	}
	if in.Size == 0 || in.Body == nil {
		metrics.Uploads.WithLabelValues("media", "rejected").Inc()
		return nil, apierr.Validation("Please choose a file to upload")
	}

	key := "media/" + uuid.NewString() + ext
	url, err := m.files.Put(ctx, key, in.Body, in.Size, ct)
	if err != nil {
		metrics.Uploads.WithLabelValues("media", "failed").Inc()
		return nil, apierr.Persistence("store media", err)
	}
	now := m.now()
	asset := &MediaAsset{
		Base:        collection.Base{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		FileName:    filepath.Base(in.FileName),
		URL:         url,
		Key:         key,
		ContentType: ct,
		Size:        in.Size,
		Alt:         strings.TrimSpace(in.Alt),
	}
	if err := m.col.Insert(ctx, asset); err != nil {
		metrics.Uploads.WithLabelValues("media", "failed").Inc()
		if derr := m.files.Delete(ctx, key); derr != nil {
			logger.Warnw("orphaned media object", "key", key, "err", derr)
		}
		return nil, apierr.Persistence("create media", err)
	}
	metrics.Uploads.WithLabelValues("media", "accepted").Inc()
	m.cache.Invalidate(ctx, mediaKind)
	logger.Infow("media uploaded", "id", asset.ID, "key", key, "size", humanize.IBytes(uint64(in.Size)))
	return asset, nil
}

func (m *Media) List(ctx context.Context, offset, limit int, public bool) (*ListResult[*MediaAsset], error) {
	key := variant("list", nil, offset, limit)
	if public {
		var hit ListResult[*MediaAsset]
		if m.cache.Load(ctx, mediaKind, key, &hit) {
			return &hit, nil
		}
	}
	total, err := m.col.Count(ctx, collection.Query{})
	if err != nil {
		return nil, apierr.Persistence("count media", err)
	}
	items, err := m.col.Find(ctx, collection.Query{Offset: offset, Limit: limit})
	if err != nil {
		return nil, apierr.Persistence("list media", err)
	}
	res := &ListResult[*MediaAsset]{Items: items, Total: total}
	if public {
		m.cache.Store(ctx, mediaKind, key, res)
	}
	return res, nil
}

// Delete soft-deletes the asset and removes its object. A missing asset is a
// no-op; a failed object removal is logged and leaves the record deleted.
func (m *Media) Delete(ctx context.Context, id string) error {
	asset, err := m.col.Get(ctx, id)
	if err != nil {
		if errors.Is(err, collection.ErrNotFound) {
			return nil
		}
		return apierr.Persistence("get media", err)
	}
	ok, err := m.col.SoftDelete(ctx, id, m.now())
	if err != nil {
		return apierr.Persistence("delete media", err)
	}
	if !ok {
		return nil
	}
	if err := m.files.Delete(ctx, asset.Key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		logger.Warnw("media object not removed", "id", id, "key", asset.Key, "err", err)
	}
	m.cache.Invalidate(ctx, mediaKind)
	return nil
}
