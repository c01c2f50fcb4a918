package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryStorage_PutDelete(t *testing.T) {
	s := NewMemoryStorage("https://files.test")
	ctx := context.Background()

	url, err := s.Put(ctx, "resumes/a.pdf", strings.NewReader("%PDF-1.4"), 8, "application/pdf")
	require.NoError(t, err)
	require.Equal(t, "https://files.test/resumes/a.pdf", url)

	obj, ok := s.Get("resumes/a.pdf")
	require.True(t, ok)
	require.Equal(t, "application/pdf", obj.ContentType)
	require.Equal(t, 1, s.Len())

	require.NoError(t, s.Delete(ctx, "resumes/a.pdf"))
	require.ErrorIs(t, s.Delete(ctx, "resumes/a.pdf"), ErrObjectNotFound)
}

func TestMemoryStorage_SizeMismatch(t *testing.T) {
	s := NewMemoryStorage("")
	_, err := s.Put(context.Background(), "k", strings.NewReader("abc"), 10, "text/plain")
	require.Error(t, err)
	require.Equal(t, 0, s.Len())
}

func TestMinIOStorage_URLEscapesSegments(t *testing.T) {
	s := &MinIOStorage{bucket: "site", baseURL: "https://cdn.test"}
	require.Equal(t, "https://cdn.test/site/media/my%20photo.png", s.URL("media/my photo.png"))
}

var _ ObjectStore = (*MemoryStorage)(nil)
var _ ObjectStore = (*MinIOStorage)(nil)

func TestMemoryStorage_URLEscapesSegments(t *testing.T) {
	s := NewMemoryStorage("https://files.test")
	require.Equal(t, "https://files.test/media/a%20b%3F.png", s.URL("media/a b?.png"))

	url, err := s.Put(context.Background(), "media/x y.png", strings.NewReader("png"), 3, "image/png")
	require.NoError(t, err)
	require.Equal(t, "https://files.test/media/x%20y.png", url)
	_, ok := s.Get("media/x y.png")
	require.True(t, ok)
}
