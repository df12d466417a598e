package filestorage

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bookshare_backend/internal/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

var (
	gifHeader  = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00")
	webpHeader = append([]byte("RIFF\x24\x00\x00\x00WEBPVP8 "), make([]byte, 24)...)
)

func setupCoverStore(t *testing.T, maxMB int64) *CoverStore {
	t.Helper()
	store, err := NewCoverStore(&config.Config{CoverStoragePath: t.TempDir(), MaxCoverSizeMB: maxMB}, zap.NewNop())
	require.NoError(t, err)
	return store
}

func newTestFileHeader(t *testing.T, filename string, content []byte, contentType string) *multipart.FileHeader {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	partHeader := make(textproto.MIMEHeader)
	partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="cover"; filename="%s"`, filename))
	partHeader.Set("Content-Type", contentType)
	part, err := writer.CreatePart(partHeader)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(body, writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	return form.File["cover"][0]
}

func TestSaveCover_SniffsType(t *testing.T) {
	store := setupCoverStore(t, 1)
	bookID := uuid.New()

	// The client claims JPEG, the content is PNG.
	url, err := store.SaveCover(newTestFileHeader(t, "cover.jpg", pngHeader, "image/jpeg"), bookID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, PublicPrefix+"/"+bookID.String()+"/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	rel := strings.TrimPrefix(url, PublicPrefix+"/")
	saved, err := os.ReadFile(filepath.Join(store.BasePath(), filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, saved)
}

func TestSaveCover_DetectsGIFAndWebP(t *testing.T) {
	store := setupCoverStore(t, 1)
	cases := map[string][]byte{".gif": gifHeader, ".webp": webpHeader}
	for ext, content := range cases {
		url, err := store.SaveCover(newTestFileHeader(t, "upload.bin", content, "application/octet-stream"), uuid.New())
		require.NoError(t, err, ext)
		assert.True(t, strings.HasSuffix(url, ext), url)
	}
}

func TestSaveCover_RejectsNonImages(t *testing.T) {
	store := setupCoverStore(t, 1)
	_, err := store.SaveCover(newTestFileHeader(t, "notes.png", []byte("plain text, not an image"), "image/png"), uuid.New())
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestSaveCover_RejectsOversize(t *testing.T) {
	store := setupCoverStore(t, 1)
	big := append(append([]byte{}, pngHeader...), make([]byte, 1<<20)...)
	_, err := store.SaveCover(newTestFileHeader(t, "big.png", big, "image/png"), uuid.New())
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestSaveCover_NilHeader(t *testing.T) {
	store := setupCoverStore(t, 1)
	_, err := store.SaveCover(nil, uuid.New())
	assert.EqualError(t, err, "fileHeader cannot be nil")
}

func TestDeleteCover(t *testing.T) {
	store := setupCoverStore(t, 1)
	url, err := store.SaveCover(newTestFileHeader(t, "c.png", pngHeader, "image/png"), uuid.New())
	require.NoError(t, err)

	require.NoError(t, store.DeleteCover(url))
	_, statErr := os.Stat(filepath.Join(store.BasePath(), filepath.FromSlash(strings.TrimPrefix(url, PublicPrefix+"/"))))
	assert.True(t, os.IsNotExist(statErr))

	assert.NoError(t, store.DeleteCover(url), "deleting twice is a no-op")
	assert.NoError(t, store.DeleteCover("https://cdn.example.com/x.png"))
	assert.Error(t, store.DeleteCover(PublicPrefix+"/../../etc/passwd"))
}
