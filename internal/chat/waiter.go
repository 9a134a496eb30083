package chat

import (
	"context"
	"sync"
	"time"
)

// Waiter parks goroutines until an inbound message satisfies their predicate.
// Every dispatched message is offered to every pending wait, so two waits
// with overlapping predicates can both receive the same message.
type Waiter struct {
	mu      sync.Mutex
	next    uint64
	pending map[uint64]*wait
}

type wait struct {
	match func(Message) bool
	ch    chan Message
}

func NewWaiter() *Waiter {
	return &Waiter{pending: make(map[uint64]*wait)}
}

// Wait blocks until a matching message arrives, the timeout expires
// (ErrTimeout) or ctx is done.
func (w *Waiter) Wait(ctx context.Context, timeout time.Duration, match func(Message) bool) (Message, error) {
	entry := &wait{match: match, ch: make(chan Message, 1)}

	w.mu.Lock()
	id := w.next
	w.next++
	w.pending[id] = entry
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		delete(w.pending, id)
		w.mu.Unlock()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-entry.ch:
		return msg, nil
	case <-timer.C:
		return Message{}, ErrTimeout
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

// Dispatch offers msg to pending waits and reports how many took it. A
// wait that already holds a message is skipped.
func (w *Waiter) Dispatch(msg Message) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	delivered := 0
	for id, entry := range w.pending {
		if !entry.match(msg) {
			continue
		}
		select {
		case entry.ch <- msg:
			delivered++
			delete(w.pending, id)
		default:
		}
	}
	return delivered
}

// Pending returns the number of goroutines currently waiting.
func (w *Waiter) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// FromAuthorIn matches messages by a given author in a given channel.
func FromAuthorIn(authorID, channelID string) func(Message) bool {
	return func(m Message) bool {
		return m.Author.ID == authorID && m.ChannelID == channelID
	}
}

// HumanIn matches any non-bot message in channelID.
func HumanIn(channelID string) func(Message) bool {
	return func(m Message) bool {
		return !m.Author.Bot && m.ChannelID == channelID
	}
}
