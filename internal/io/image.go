package ioutils

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"  // GIF decoder registration
	_ "image/jpeg" // JPEG decoder registration
	_ "image/png"  // PNG decoder registration
	"log/slog"

	"github.com/handiism/imagegrid/internal/model"
	_ "golang.org/x/image/bmp"  // BMP decoder registration
	_ "golang.org/x/image/tiff" // TIFF decoder registration
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// DefaultEndpoint is the image provider queried by FetchOne. Every request
// returns a different random 200x200 image.
const DefaultEndpoint = "https://loremflickr.com/200/200"

// Fetcher retrieves the raw bytes behind a URL.
//
// *http.Client from internal/http implements Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ImageService fetches single images from a fixed endpoint and decodes them.
//
// ImageService is used to:
//   - Fetch one image's bytes through a Fetcher
//   - Decode the bytes into an image.Image
//   - Wrap the result in a model.ImageRecord with its load status
//
// ImageService is stateless apart from its endpoint and is safe for
// concurrent use.
//
// Example usage:
//
//	svc := NewImageService(http.NewClient(), DefaultEndpoint, logger)
//
//	rec, err := svc.FetchOne(ctx, batchID)
//	if err != nil {
//	    // rec.Status == model.StatusFailed
//	}
type ImageService struct {
	fetcher  Fetcher
	endpoint string
	logger   *slog.Logger
}

// NewImageService creates a new ImageService. An empty endpoint selects
// DefaultEndpoint; a nil logger selects slog.Default().
func NewImageService(fetcher Fetcher, endpoint string, logger *slog.Logger) *ImageService {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageService{
		fetcher:  fetcher,
		endpoint: endpoint,
		logger:   logger,
	}
}

// Endpoint returns the URL images are fetched from.
func (s *ImageService) Endpoint() string {
	return s.endpoint
}

// FetchOne fetches and decodes one image.
//
// The returned record is always settled:
//   - On fetch failure it is StatusFailed and the error is also returned.
//   - On success it is StatusDownloaded. If the bytes could not be decoded
//     the record carries no image and no error is returned.
//
// Parameters:
//   - ctx: Context for the request
//   - batchID: Batch the record belongs to
func (s *ImageService) FetchOne(ctx context.Context, batchID string) (model.ImageRecord, error) {
	rec := model.NewImageRecord(batchID)

	data, err := s.fetcher.Fetch(ctx, s.endpoint)
	if err != nil {
		rec.Fail(err)
		return rec, err
	}

	img, format, err := s.Decode(data)
	if err != nil {
		s.logger.Warn("image decode failed", "record", rec.ID, "bytes", len(data), "error", err)
	}
	rec.Settle(img, format, len(data))

	return rec, nil
}

// Decode decodes image data in any registered format.
//
// Supported formats: JPEG, PNG, GIF, BMP, TIFF and WebP.
//
// Returns the image and the format name reported by the decoder.
func (s *ImageService) Decode(data []byte) (image.Image, string, error) {
	return image.Decode(bytes.NewReader(data))
}
