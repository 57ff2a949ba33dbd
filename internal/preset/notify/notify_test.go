package notify

import (
	"testing"
	"time"
)

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	a, cancelA := hub.Subscribe()
	defer cancelA()
	b, cancelB := hub.Subscribe()
	defer cancelB()

	hub.Broadcast()

	for name, ch := range map[string]<-chan struct{}{"a": a, "b": b} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("subscriber %s never received the signal", name)
		}
	}
}

func TestBroadcastCoalescesWhenSubscriberIsSlow(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.Broadcast()
	hub.Broadcast()
	hub.Broadcast()

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("subscriber never received a signal")
	}
	select {
	case <-ch:
		t.Fatal("signals did not coalesce into one pending delivery")
	default:
	}
}

func TestCancelRemovesSubscriber(t *testing.T) {
	t.Parallel()

	hub := NewHub()
	ch, cancel := hub.Subscribe()
	cancel()

	if got := hub.Len(); got != 0 {
		t.Fatalf("Len() = %d after cancel, want 0", got)
	}

	hub.Broadcast()
	select {
	case <-ch:
		t.Fatal("cancelled subscriber received a signal")
	default:
	}
}

func TestBroadcastWithNoSubscribersDoesNotBlock(t *testing.T) {
	t.Parallel()

	done := make(chan struct{})
	go func() {
		NewHub().Broadcast()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked with no subscribers")
	}
}
