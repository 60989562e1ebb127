package notify

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const waitTimeout = 2 * time.Second

func receive(t *testing.T, ch <-chan Signal) Signal {
	t.Helper()
	select {
	case sig := <-ch:
		return sig
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for signal")
		return 0
	}
}

func expectNone(t *testing.T, ch <-chan Signal) {
	t.Helper()
	select {
	case sig := <-ch:
		t.Fatalf("unexpected signal %v", sig)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSignal_String(t *testing.T) {
	tests := []struct {
		sig  Signal
		want string
	}{
		{SignalItemAdded, "item-added"},
		{SignalContentChanged, "content-changed"},
		{Signal(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.sig.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestNotifier_PublishSubscribe(t *testing.T) {
	n := NewNotifier(nil)
	defer n.Close()

	ch := make(chan Signal, 4)
	n.Subscribe(NewChannelObserver(ch).OnSignal)

	n.Publish(SignalItemAdded)
	if got := receive(t, ch); got != SignalItemAdded {
		t.Errorf("got %v, want %v", got, SignalItemAdded)
	}

	n.Publish(SignalContentChanged)
	if got := receive(t, ch); got != SignalContentChanged {
		t.Errorf("got %v, want %v", got, SignalContentChanged)
	}
}

func TestNotifier_FilteredSubscription(t *testing.T) {
	n := NewNotifier(nil)
	defer n.Close()

	ch := make(chan Signal, 4)
	n.Subscribe(NewChannelObserver(ch).OnSignal, SignalContentChanged)

	n.Publish(SignalItemAdded)
	expectNone(t, ch)

	n.Publish(SignalContentChanged)
	if got := receive(t, ch); got != SignalContentChanged {
		t.Errorf("got %v, want %v", got, SignalContentChanged)
	}
}

func TestNotifier_MultipleSubscribers(t *testing.T) {
	n := NewNotifier(nil)
	defer n.Close()

	a := make(chan Signal, 1)
	b := make(chan Signal, 1)
	n.Subscribe(NewChannelObserver(a).OnSignal)
	n.Subscribe(NewChannelObserver(b).OnSignal)

	n.Publish(SignalItemAdded)
	receive(t, a)
	receive(t, b)
}

func TestNotifier_NoReplayForLateSubscribers(t *testing.T) {
	n := NewNotifier(nil)
	defer n.Close()

	early := make(chan Signal, 1)
	n.Subscribe(NewChannelObserver(early).OnSignal)
	n.Publish(SignalItemAdded)
	receive(t, early)

	late := make(chan Signal, 1)
	n.Subscribe(NewChannelObserver(late).OnSignal)
	expectNone(t, late)
}

func TestNotifier_NoReplayWhileDispatcherBusy(t *testing.T) {
	n := NewNotifier(nil)
	defer n.Close()

	entered := make(chan struct{})
	release := make(chan struct{})
	var first sync.Once
	n.Subscribe(func(Signal) {
		first.Do(func() {
			close(entered)
			<-release
		})
	})

	n.Publish(SignalItemAdded)
	<-entered

	// Published while the dispatcher is stuck in the first delivery.
	n.Publish(SignalContentChanged)

	late := make(chan Signal, 2)
	n.Subscribe(NewChannelObserver(late).OnSignal)
	close(release)

	expectNone(t, late)

	n.Publish(SignalItemAdded)
	if got := receive(t, late); got != SignalItemAdded {
		t.Errorf("late subscriber got %v, want %v", got, SignalItemAdded)
	}
}

func TestNotifier_Unsubscribe(t *testing.T) {
	n := NewNotifier(nil)
	defer n.Close()

	ch := make(chan Signal, 1)
	unsubscribe := n.Subscribe(NewChannelObserver(ch).OnSignal)
	unsubscribe()
	unsubscribe() // idempotent

	n.Publish(SignalItemAdded)
	expectNone(t, ch)
}

func TestNotifier_SerialDelivery(t *testing.T) {
	n := NewNotifier(nil)
	defer n.Close()

	var inFlight, maxInFlight int32
	var delivered sync.WaitGroup
	delivered.Add(1)
	var once sync.Once

	for i := 0; i < 3; i++ {
		n.Subscribe(func(Signal) {
			cur := atomic.AddInt32(&inFlight, 1)
			for {
				prev := atomic.LoadInt32(&maxInFlight)
				if cur <= prev || atomic.CompareAndSwapInt32(&maxInFlight, prev, cur) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			once.Do(delivered.Done)
		})
	}

	var publishers sync.WaitGroup
	for i := 0; i < 20; i++ {
		publishers.Add(1)
		go func(i int) {
			defer publishers.Done()
			n.Publish(Signal(i % 2))
		}(i)
	}
	publishers.Wait()
	delivered.Wait()

	// Let the dispatcher drain.
	time.Sleep(50 * time.Millisecond)

	if got := atomic.LoadInt32(&maxInFlight); got != 1 {
		t.Errorf("max concurrent deliveries = %d, want 1", got)
	}
}

func TestNotifier_PublishNeverBlocks(t *testing.T) {
	n := NewNotifier(nil)
	defer n.Close()

	block := make(chan struct{})
	n.Subscribe(func(Signal) { <-block })
	defer close(block)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			n.Publish(SignalItemAdded)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(waitTimeout):
		t.Fatal("Publish blocked behind a slow subscriber")
	}
}

func TestNotifier_Close(t *testing.T) {
	n := NewNotifier(nil)

	ch := make(chan Signal, 1)
	n.Subscribe(NewChannelObserver(ch).OnSignal)

	n.Close()
	n.Close() // idempotent

	n.Publish(SignalItemAdded)
	expectNone(t, ch)
}

func TestChannelObserver_DropsWhenFull(t *testing.T) {
	ch := make(chan Signal, 1)
	obs := NewChannelObserver(ch)

	obs.OnSignal(SignalItemAdded)
	obs.OnSignal(SignalContentChanged) // dropped, must not block

	if got := <-ch; got != SignalItemAdded {
		t.Errorf("got %v, want %v", got, SignalItemAdded)
	}
	select {
	case sig := <-ch:
		t.Errorf("unexpected second signal %v", sig)
	default:
	}
}
