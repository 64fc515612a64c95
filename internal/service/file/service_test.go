package file_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/storage"
	"github.com/cmlabs-hris/hris-leave-go/internal/service/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T, maxSize int64) (file.FileService, *storage.LocalStorage) {
	t.Helper()
	local, err := storage.NewLocalStorage(t.TempDir(), "http://localhost/uploads")
	require.NoError(t, err)
	return file.NewFileService(local, maxSize), local
}

func TestUploadLeaveAttachment_PDF(t *testing.T) {
	ctx := context.Background()
	svc, local := newService(t, 1024)

	key, err := svc.UploadLeaveAttachment(ctx, "emp-1", strings.NewReader("%PDF-1.4"), "Note.PDF", 8)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "leave/emp-1/"))
	assert.True(t, strings.HasSuffix(key, ".pdf"))

	rc, err := local.Download(ctx, key)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(body))
}

func TestUploadLeaveAttachment_Rejects(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, 4)

	_, err := svc.UploadLeaveAttachment(ctx, "emp-1", strings.NewReader("x"), "run.exe", 1)
	assert.ErrorIs(t, err, leave.ErrFileTypeNotAllowed)

	_, err = svc.UploadLeaveAttachment(ctx, "emp-1", strings.NewReader("too large"), "note.pdf", 9)
	assert.ErrorIs(t, err, leave.ErrFileSizeExceeds)

	// Declared size understates the body.
	_, err = svc.UploadLeaveAttachment(ctx, "emp-1", strings.NewReader("too large"), "note.pdf", 1)
	assert.ErrorIs(t, err, leave.ErrFileSizeExceeds)

	_, err = svc.UploadLeaveAttachment(ctx, "emp-1", strings.NewReader("abc"), "photo.png", 3)
	assert.ErrorIs(t, err, leave.ErrFileTypeNotAllowed)
}

func TestUploadLeaveAttachment_DownscalesPhoto(t *testing.T) {
	ctx := context.Background()
	svc, local := newService(t, 0)

	img := image.NewRGBA(image.Rect(0, 0, 2000, 1000))
	for x := 0; x < 2000; x += 10 {
		img.Set(x, x/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	key, err := svc.UploadLeaveAttachment(ctx, "emp-1", bytes.NewReader(buf.Bytes()), "scan.png", int64(buf.Len()))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(key, ".jpg"))

	rc, err := local.Download(ctx, key)
	require.NoError(t, err)
	defer rc.Close()
	cfg, format, err := image.DecodeConfig(rc)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 1600, cfg.Width)
	assert.Equal(t, 800, cfg.Height)

	url, err := svc.GetFileURL(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/uploads/"+key, url)
	require.NoError(t, svc.DeleteFile(ctx, key))
}

func TestOpenFile(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, 1024)

	key, err := svc.UploadLeaveAttachment(ctx, "emp-1", strings.NewReader("%PDF-1.4"), "note.pdf", 8)
	require.NoError(t, err)

	rc, contentType, err := svc.OpenFile(ctx, key)
	require.NoError(t, err)
	defer rc.Close()
	assert.Equal(t, "application/pdf", contentType)

	require.NoError(t, svc.DeleteFile(ctx, key))
	_, _, err = svc.OpenFile(ctx, key)
	assert.Error(t, err)
}
