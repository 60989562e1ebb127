// Package ioutils provides image retrieval and decoding for imagegrid.
//
// # Image Service
//
// The ImageService fetches one image at a time from a fixed endpoint and
// wraps it in a model.ImageRecord:
//
//	svc := ioutils.NewImageService(client, ioutils.DefaultEndpoint, logger)
//
//	rec, err := svc.FetchOne(ctx, batchID)
//	fmt.Println(rec.Status) // "downloaded" or "failed"
//
// # Decoding
//
// Decoders for JPEG, PNG and GIF come from the standard library; BMP, TIFF
// and WebP come from golang.org/x/image. Bytes that no decoder accepts still
// produce a downloaded record, just without an image.
//
// # Export
//
// ExportPNG writes the decoded images of a snapshot to a directory, one
// PNG per record, with names passed through SanitizeFileName.
package ioutils
