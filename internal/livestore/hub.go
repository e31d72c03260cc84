// Package livestore delivers full-state snapshots of stored documents and queries to
// live subscribers. A subscription loads the current state once on creation and again
// every time its topic is notified.
package livestore

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Unsubscribe cancels a subscription. It blocks until an in-flight callback returns, so
// no callback runs after it returns. It must not be called from inside a callback of the
// same subscription. Calling it more than once is a no-op.
type Unsubscribe func()

// Loader reads the full current state behind a topic.
type Loader[T any] func(ctx context.Context) (T, error)

const defaultLoadTimeout = 5 * time.Second

// Hub fans change notifications out to subscriptions. Safe for concurrent use.
type Hub struct {
	logger      *slog.Logger
	loadTimeout time.Duration

	mu     sync.Mutex
	nextID uint64
	subs   map[string]map[uint64]*subscription
	closed bool
}

type subscription struct {
	topic    string
	wake     chan struct{}
	done     chan struct{}
	cancel   context.CancelFunc
	canceled atomic.Bool
	deliver  sync.Mutex
	once     sync.Once
}

// NewHub returns an empty Hub. loadTimeout bounds each snapshot load; zero uses 5s.
func NewHub(logger *slog.Logger, loadTimeout time.Duration) *Hub {
	if loadTimeout <= 0 {
		loadTimeout = defaultLoadTimeout
	}
	return &Hub{
		logger:      logger,
		loadTimeout: loadTimeout,
		subs:        make(map[string]map[uint64]*subscription),
	}
}

// Subscribe registers a subscription on topic. onSnapshot receives the state returned by
// load; onError receives load failures, after which the subscription stays active and
// retries on the next notification. Callbacks of one subscription never run concurrently
// and arrive in load order.
func Subscribe[T any](h *Hub, topic string, load Loader[T], onSnapshot func(T), onError func(error)) Unsubscribe {
	ctx, cancel := context.WithCancel(context.Background())
	sub := &subscription{
		topic:  topic,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		cancel: cancel,
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		cancel()
		return func() {}
	}
	h.nextID++
	id := h.nextID
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[uint64]*subscription)
	}
	h.subs[topic][id] = sub
	h.mu.Unlock()

	go func() {
		for {
			loadCtx, loadCancel := context.WithTimeout(ctx, h.loadTimeout)
			state, err := load(loadCtx)
			loadCancel()

			sub.deliver.Lock()
			if !sub.canceled.Load() {
				if err != nil {
					h.logger.Warn("live snapshot load failed", "topic", topic, "err", err)
					if onError != nil {
						onError(err)
					}
				} else {
					onSnapshot(state)
				}
			}
			sub.deliver.Unlock()

			select {
			case <-sub.done:
				return
			case <-sub.wake:
			}
		}
	}()

	return func() {
		sub.once.Do(func() {
			sub.canceled.Store(true)
			sub.cancel()
			// Wait for an in-flight callback to finish.
			sub.deliver.Lock()
			close(sub.done)
			sub.deliver.Unlock()

			h.mu.Lock()
			if m := h.subs[topic]; m != nil {
				delete(m, id)
				if len(m) == 0 {
					delete(h.subs, topic)
				}
			}
			h.mu.Unlock()
		})
	}
}

// Notify wakes every subscription of the given topics. Notifications that arrive while a
// subscription is still loading coalesce into a single reload.
func (h *Hub) Notify(_ context.Context, topics ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, topic := range topics {
		for _, sub := range h.subs[topic] {
			select {
			case sub.wake <- struct{}{}:
			default:
			}
		}
	}
}

// NotifyAll wakes every subscription, e.g. after the change feed reconnected and
// notifications may have been missed.
func (h *Hub) NotifyAll() {
	h.mu.Lock()
	topics := make([]string, 0, len(h.subs))
	for topic := range h.subs {
		topics = append(topics, topic)
	}
	h.mu.Unlock()
	h.Notify(context.Background(), topics...)
}

// Subscribers returns the number of active subscriptions on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[topic])
}

// Close cancels all subscriptions and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	var all []*subscription
	for _, m := range h.subs {
		for _, sub := range m {
			all = append(all, sub)
		}
	}
	h.subs = make(map[string]map[uint64]*subscription)
	h.mu.Unlock()

	for _, sub := range all {
		sub.once.Do(func() {
			sub.canceled.Store(true)
			sub.cancel()
			sub.deliver.Lock()
			close(sub.done)
			sub.deliver.Unlock()
		})
	}
}
