// Package model defines the core data structures shared across imagegrid.
//
// # ImageRecord
//
// ImageRecord represents one image of the collection and its load status:
//
//	rec := model.NewImageRecord(batchID) // StatusLoading
//	rec.Settle(img, "jpeg", len(data))   // StatusDownloaded
//	fmt.Println(rec.Status)              // "downloaded"
//
// A record settles exactly once; later calls to Settle or Fail are ignored.
//
// # LoadStatus
//
// LoadStatus follows a fixed lifecycle:
//
//	StatusLoading -> StatusDownloaded
//	StatusLoading -> StatusFailed
package model
