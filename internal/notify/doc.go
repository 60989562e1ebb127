// Package notify provides the change signals the presentation layer
// listens to.
//
// # Signals
//
// Two payload-free signals are published by the download manager:
//
//	SignalItemAdded      // a record was appended to the store
//	SignalContentChanged // a fetch settled or the store was cleared
//
// # Delivery
//
// A Notifier delivers every signal from a single goroutine, so subscribers
// need no locking of their own:
//
//	n := notify.NewNotifier(logger)
//	defer n.Close()
//
//	unsubscribe := n.Subscribe(func(sig notify.Signal) {
//	    refresh(store.Snapshot())
//	}, notify.SignalContentChanged)
//
// For channel-driven loops use ChannelObserver:
//
//	ch := make(chan notify.Signal, 16)
//	n.Subscribe(notify.NewChannelObserver(ch).OnSignal)
package notify
