package flow

import (
	"context"
	"sync"
	"time"
)

type Status int

const (
	Matched Status = iota
	TimedOut
	Rejected
)

func (s Status) String() string {
	switch s {
	case Matched:
		return "matched"
	case TimedOut:
		return "timed_out"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Reply is the outcome of waiting for a user's next message.
type Reply struct {
	Status  Status
	Message Message
}

func (r Reply) OK() bool {
	return r.Status == Matched
}

type waitKey struct {
	channelID string
	userID    string
}

type subscription struct {
	router *Router
	key    waitKey
	ch     chan Message
}

// Router hands each incoming message to whoever is waiting on that user in
// that channel. Waits are one-shot: a delivered subscription is removed.
type Router struct {
	mu      sync.Mutex
	waiters map[waitKey][]*subscription
}

func NewRouter() *Router {
	return &Router{waiters: make(map[waitKey][]*subscription)}
}

func (r *Router) subscribe(channelID, userID string) *subscription {
	sub := &subscription{
		router: r,
		key:    waitKey{channelID: channelID, userID: userID},
		ch:     make(chan Message, 1),
	}
	r.mu.Lock()
	r.waiters[sub.key] = append(r.waiters[sub.key], sub)
	r.mu.Unlock()
	return sub
}

func (r *Router) cancel(sub *subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	subs := r.waiters[sub.key]
	for i, s := range subs {
		if s == sub {
			subs = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(subs) == 0 {
		delete(r.waiters, sub.key)
	} else {
		r.waiters[sub.key] = subs
	}
}

// Publish delivers msg to every pending wait for its author and channel and
// reports whether anyone was waiting.
func (r *Router) Publish(msg Message) bool {
	key := waitKey{channelID: msg.ChannelID, userID: msg.AuthorID}

	r.mu.Lock()
	subs := r.waiters[key]
	delete(r.waiters, key)
	r.mu.Unlock()

	for _, sub := range subs {
		sub.ch <- msg
	}
	return len(subs) > 0
}

// Pending reports how many waits are registered. Used by tests and logging.
func (r *Router) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, subs := range r.waiters {
		n += len(subs)
	}
	return n
}

// wait blocks until the subscription receives a message, the timeout fires
// or ctx ends. The first message decides the outcome: it is either accepted
// or rejected, never skipped.
func (s *subscription) wait(ctx context.Context, timeout time.Duration, accept Predicate) Reply {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-s.ch:
		if accept(msg) {
			return Reply{Status: Matched, Message: msg}
		}
		return Reply{Status: Rejected, Message: msg}
	case <-timer.C:
	case <-ctx.Done():
	}

	s.router.cancel(s)
	// a message may have landed between the timer firing and cancel
	select {
	case msg := <-s.ch:
		if accept(msg) {
			return Reply{Status: Matched, Message: msg}
		}
		return Reply{Status: Rejected, Message: msg}
	default:
		return Reply{Status: TimedOut}
	}
}
