package file

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // Import for PNG decoding support
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/storage"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

const (
	// DefaultMaxAttachmentSize applies when the configured limit is not positive.
	DefaultMaxAttachmentSize int64 = 5 << 20

	// Photos wider or taller than this are downscaled before storage.
	maxPhotoDimension = 1600
	photoQuality      = 80
)

var attachmentContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

type FileService interface {
	// UploadLeaveAttachment stores a supporting document and returns its key.
	UploadLeaveAttachment(ctx context.Context, employeeID string, file io.Reader, filename string, size int64) (string, error)

	// OpenFile streams a stored file together with its content type.
	OpenFile(ctx context.Context, path string) (io.ReadCloser, string, error)
	DeleteFile(ctx context.Context, path string) error
	GetFileURL(ctx context.Context, path string) (string, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
	maxSize int64
}

func NewFileService(storage storage.FileStorage, maxSize int64) FileService {
	if maxSize <= 0 {
		maxSize = DefaultMaxAttachmentSize
	}
	return &fileServiceImpl{
		storage: storage,
		maxSize: maxSize,
	}
}

// UploadLeaveAttachment uploads a leave request attachment. JPEG and PNG
// photos are re-encoded as JPEG and downscaled when oversized.
func (s *fileServiceImpl) UploadLeaveAttachment(ctx context.Context, employeeID string, file io.Reader, filename string, size int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := attachmentContentTypes[ext]
	if !ok {
		return "", leave.ErrFileTypeNotAllowed
	}
	if size > s.maxSize {
		return "", leave.ErrFileSizeExceeds
	}

	// Read at most one byte past the limit to catch understated sizes.
	buffer, err := io.ReadAll(io.LimitReader(file, s.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read leave attachment: %w", err)
	}
	if int64(len(buffer)) > s.maxSize {
		return "", leave.ErrFileSizeExceeds
	}

	if contentType == "image/jpeg" || contentType == "image/png" {
		shrunk, err := shrinkPhoto(buffer)
		if err != nil {
			return "", fmt.Errorf("%w: %v", leave.ErrFileTypeNotAllowed, err)
		}
		buffer, ext, contentType = shrunk, ".jpg", "image/jpeg"
	}

	newFilename := fmt.Sprintf("%s-%d%s", uuid.New().String(), time.Now().Unix(), ext)
	key := path.Join("leave", employeeID, newFilename)

	uploadedPath, err := s.storage.Upload(ctx, bytes.NewReader(buffer), key, contentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload leave attachment: %w", err)
	}

	return uploadedPath, nil
}

func (s *fileServiceImpl) OpenFile(ctx context.Context, path string) (io.ReadCloser, string, error) {
	contentType, ok := attachmentContentTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		contentType = "application/octet-stream"
	}
	rc, err := s.storage.Download(ctx, path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	return rc, contentType, nil
}

// DeleteFile deletes a file
func (s *fileServiceImpl) DeleteFile(ctx context.Context, path string) error {
	return s.storage.Delete(ctx, path)
}

// GetFileURL generates URL to access file
func (s *fileServiceImpl) GetFileURL(ctx context.Context, path string) (string, error) {
	return s.storage.GetURL(ctx, path)
}

// shrinkPhoto decodes a photo and re-encodes it as JPEG, scaling it down so
// neither side exceeds maxPhotoDimension.
func shrinkPhoto(buffer []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(buffer))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width > maxPhotoDimension || height > maxPhotoDimension {
		if width >= height {
			height = height * maxPhotoDimension / width
			width = maxPhotoDimension
		} else {
			width = width * maxPhotoDimension / height
			height = maxPhotoDimension
		}
		img = resizeImage(img, max(width, 1), max(height, 1))
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: photoQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// resizeImage resizes an image to the specified dimensions using high-quality interpolation
func resizeImage(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	// Use CatmullRom for high-quality downscaling
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}
