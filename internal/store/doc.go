// Package store provides the shared, thread-safe image collection.
//
// # ImageStore
//
// One ImageStore is created per application and injected into the download
// manager:
//
//	images := store.New()
//	manager := download.NewManager(images, svc, notifier)
//
// Writers take an exclusive lock, readers a shared one:
//
//	images.Append(rec)        // exclusive
//	snap := images.Snapshot() // shared, returns a copy
//	images.Clear()            // exclusive
package store
