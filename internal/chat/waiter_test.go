package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func waitUntilPending(t *testing.T, w *Waiter, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for w.Pending() < n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d pending waits, got %d", n, w.Pending())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestWaitReceivesMatchingMessage(t *testing.T) {
	w := NewWaiter()

	var (
		got Message
		err error
		wg  sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		got, err = w.Wait(context.Background(), time.Second, FromAuthorIn("u1", "c1"))
	}()

	waitUntilPending(t, w, 1)

	if n := w.Dispatch(Message{Author: User{ID: "u2"}, ChannelID: "c1", Content: "other"}); n != 0 {
		t.Fatalf("non-matching message delivered to %d waits", n)
	}
	if n := w.Dispatch(Message{Author: User{ID: "u1"}, ChannelID: "c1", Content: "job"}); n != 1 {
		t.Fatalf("expected delivery to 1 wait, got %d", n)
	}
	wg.Wait()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Content != "job" {
		t.Fatalf("unexpected message: %+v", got)
	}
	if w.Pending() != 0 {
		t.Fatalf("wait not cleaned up")
	}
}

func TestWaitTimeout(t *testing.T) {
	w := NewWaiter()

	_, err := w.Wait(context.Background(), 10*time.Millisecond, HumanIn("c1"))
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if w.Pending() != 0 {
		t.Fatalf("wait not cleaned up after timeout")
	}
}

func TestWaitContextCancelled(t *testing.T) {
	w := NewWaiter()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.Wait(ctx, time.Second, HumanIn("c1"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDispatchFansOutToAllMatchingWaits(t *testing.T) {
	w := NewWaiter()

	results := make(chan Message, 2)
	for i := 0; i < 2; i++ {
		go func() {
			msg, err := w.Wait(context.Background(), time.Second, HumanIn("volunteers"))
			if err == nil {
				results <- msg
			}
		}()
	}
	waitUntilPending(t, w, 2)

	if n := w.Dispatch(Message{Author: User{ID: "bot", Bot: true}, ChannelID: "volunteers"}); n != 0 {
		t.Fatalf("bot message must not be delivered, got %d", n)
	}
	if n := w.Dispatch(Message{Author: User{ID: "alum"}, ChannelID: "volunteers", Content: "I can help"}); n != 2 {
		t.Fatalf("expected delivery to 2 waits, got %d", n)
	}

	for i := 0; i < 2; i++ {
		select {
		case msg := <-results:
			if msg.Content != "I can help" {
				t.Fatalf("unexpected message: %+v", msg)
			}
		case <-time.After(time.Second):
			t.Fatal("wait did not return")
		}
	}
}

func TestMemberNames(t *testing.T) {
	m := Member{User: User{ID: "1", Name: "ajay99"}, DisplayName: "Ajay K"}
	names := m.Names()
	if len(names) != 2 || names[0] != "ajay99" || names[1] != "Ajay K" {
		t.Fatalf("unexpected names: %v", names)
	}

	m.DisplayName = "ajay99"
	if len(m.Names()) != 1 {
		t.Fatalf("duplicate display name must be dropped")
	}

	if got := (User{ID: "42"}).Mention(); got != "<@42>" {
		t.Fatalf("unexpected mention: %q", got)
	}
}
