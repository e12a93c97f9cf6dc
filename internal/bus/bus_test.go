package bus

import (
	"testing"
	"time"
)

func TestEmitSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("message.", 10)
	defer unsub()

	b.Emit(KindMessageSent, "m1")

	select {
	case evt := <-ch:
		if evt.Kind != KindMessageSent {
			t.Errorf("got kind %q, want %s", evt.Kind, KindMessageSent)
		}
		if evt.Timestamp.IsZero() {
			t.Error("Emit should stamp the event")
		}
		if evt.Payload != "m1" {
			t.Errorf("payload = %v, want m1", evt.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("typing.", 10)
	defer unsub()

	b.Emit(KindStateChanged, nil)
	b.Emit(KindTypingStarted, "c1")

	evt := <-ch
	if evt.Kind != KindTypingStarted {
		t.Errorf("got kind %q, want %s", evt.Kind, KindTypingStarted)
	}
	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	default:
	}
}

func TestEmptyNamespaceReceivesEverything(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("", 10)
	defer unsub()

	b.Emit(KindCallEnded, nil)
	b.Emit(KindNotice, nil)
	if len(ch) != 2 {
		t.Fatalf("buffered = %d, want 2", len(ch))
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("state.", 10)
	unsub()
	unsub() // second call is a no-op

	b.Emit(KindStateChanged, nil)

	if _, ok := <-ch; ok {
		t.Error("received event after unsubscribe")
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("notice.", 1)
	defer unsub()

	b.Publish(Event{Kind: "notice.one"})
	b.Publish(Event{Kind: "notice.two"})

	evt := <-ch
	if evt.Kind != "notice.one" {
		t.Errorf("got %q, want notice.one", evt.Kind)
	}
	if b.Dropped() != 1 {
		t.Errorf("Dropped = %d, want 1", b.Dropped())
	}
}

func TestCloseEndsSubscribers(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("", 1)
	b.Close()
	unsub()

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after Close")
	}
	late, _ := b.Subscribe("", 1)
	if _, ok := <-late; ok {
		t.Error("subscribing after Close should yield a closed channel")
	}
	b.Emit(KindNotice, nil) // must not panic
}
