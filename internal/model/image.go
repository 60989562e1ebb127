package model

import (
	"image"
	"time"

	"github.com/google/uuid"
)

// ImageRecord is one entry of the image collection.
//
// ImageRecord carries:
//   - A unique ID and the ID of the batch that produced it
//   - The load status (loading, downloaded or failed)
//   - The decoded image, when there is one
//   - The fetch error, when the fetch failed
//
// A record is created in StatusLoading when its fetch task starts and is
// settled exactly once via Settle or Fail. Records are plain values: the
// image store keeps its own copies, so a record handed out by a snapshot
// can be read freely without locking.
//
// Example:
//
//	rec := model.NewImageRecord(batchID)
//	data, err := client.Fetch(ctx, url)
//	if err != nil {
//	    rec.Fail(err)
//	} else {
//	    img, format, _ := decode(data)
//	    rec.Settle(img, format, len(data))
//	}
type ImageRecord struct {
	// ID uniquely identifies the record.
	ID string

	// BatchID identifies the batch the record was fetched in.
	BatchID string

	// Status is the lifecycle state of the fetch.
	Status LoadStatus

	// Image is the decoded payload. Nil unless Status is StatusDownloaded
	// and decoding succeeded.
	Image image.Image

	// Format is the name of the decoder that produced Image ("jpeg", "png", ...).
	Format string

	// Size is the number of raw bytes received.
	Size int

	// Err is the fetch error. Nil unless Status is StatusFailed.
	Err error

	// StartedAt is when the fetch task started.
	StartedAt time.Time

	// SettledAt is when the fetch settled. Zero while loading.
	SettledAt time.Time
}

// NewImageRecord creates a record in StatusLoading for the given batch.
func NewImageRecord(batchID string) ImageRecord {
	return ImageRecord{
		ID:        uuid.NewString(),
		BatchID:   batchID,
		Status:    StatusLoading,
		StartedAt: time.Now(),
	}
}

// Settle marks the record as downloaded. img may be nil when the bytes
// could not be decoded. Settle does nothing if the record already settled.
func (r *ImageRecord) Settle(img image.Image, format string, size int) {
	if r.Status.IsSettled() {
		return
	}
	r.Status = StatusDownloaded
	r.Image = img
	r.Format = format
	r.Size = size
	r.SettledAt = time.Now()
}

// Fail marks the record as failed with err. Fail does nothing if the
// record already settled.
func (r *ImageRecord) Fail(err error) {
	if r.Status.IsSettled() {
		return
	}
	r.Status = StatusFailed
	r.Err = err
	r.SettledAt = time.Now()
}

// HasPayload reports whether the record carries a decoded image.
func (r ImageRecord) HasPayload() bool {
	return r.Status == StatusDownloaded && r.Image != nil
}

// Elapsed returns how long the fetch took, or zero while loading.
func (r ImageRecord) Elapsed() time.Duration {
	if r.SettledAt.IsZero() {
		return 0
	}
	return r.SettledAt.Sub(r.StartedAt)
}
