package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallest valid PNG header is enough for content sniffing
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestLocalSaveImage(t *testing.T) {
	dir := t.TempDir()
	s, err := New(Config{UploadDir: dir, PublicBaseURL: "http://localhost:8080/"})
	require.NoError(t, err)

	url, err := s.SaveImage(context.Background(), "services", bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/services/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	key := strings.TrimPrefix(url, "http://localhost:8080/uploads/")
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
}

func TestSaveImageRejects(t *testing.T) {
	s, err := New(Config{UploadDir: t.TempDir()})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.SaveImage(ctx, "../etc", bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, ErrInvalidFolder)

	_, err = s.SaveImage(ctx, "blog", strings.NewReader("plain text, not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	big := append(append([]byte{}, pngHeader...), make([]byte, MaxUploadSize)...)
	_, err = s.SaveImage(ctx, "blog", bytes.NewReader(big))
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestS3ConfiguredRequiresAllFields(t *testing.T) {
	assert.False(t, Config{Region: "eu-central-1", AccessKeyID: "a", SecretAccessKey: "b"}.s3Configured())
	assert.True(t, Config{Region: "eu-central-1", AccessKeyID: "a", SecretAccessKey: "b", Bucket: "img"}.s3Configured())
}
