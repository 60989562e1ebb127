package notify

// ChannelObserver adapts a Notifier subscription to a channel, for event
// loops such as Bubble Tea that consume messages rather than callbacks.
type ChannelObserver struct {
	ch chan<- Signal
}

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver(ch chan<- Signal) *ChannelObserver {
	return &ChannelObserver{ch: ch}
}

// OnSignal sends sig to the channel (non-blocking if full).
func (o *ChannelObserver) OnSignal(sig Signal) {
	select {
	case o.ch <- sig:
	default: // consumer is behind; it will re-read the store anyway
	}
}
