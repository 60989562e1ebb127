// Package download provides the download coordination logic that fills
// the shared image store.
//
// # Manager
//
// The Manager coordinates batches of image fetches:
//
//  1. Start count fetches on a bounded worker pool
//  2. Append each settled record to the store
//  3. Publish SignalItemAdded, then SignalContentChanged
//  4. Keep the first error of the batch
//  5. Call the batch callback once every fetch has settled
//
// # Basic Usage
//
//	manager := download.NewManager(images, imageService, notifier,
//	    download.WithMaxConcurrent(settings.MaxConcurrentDownloads),
//	    download.WithLogger(logger),
//	)
//
//	_, err := manager.DownloadImages(ctx, 140, func(err error) {
//	    if err != nil {
//	        showAlert(err)
//	    }
//	})
//
// DownloadImages returns immediately; the callback runs on a background
// goroutine.
//
// # Failures
//
// A failed fetch is stored as a failed record and never cancels the rest of
// its batch. If several fetches fail, only the first error reaches the
// callback. Nothing is retried.
//
// # Clearing
//
// ClearImages empties the store right away. Batches still in flight keep
// running and their records land in the emptied store.
package download
