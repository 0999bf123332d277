package events

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Taucher2003-Bot/devmarkt-backend/internal/domain"
	"github.com/Taucher2003-Bot/devmarkt-backend/internal/port"
)

type Metrics interface {
	SubscriberAdded()
	SubscriberRemoved()
	EventDropped()
}

type noopMetrics struct{}

func (noopMetrics) SubscriberAdded()   {}
func (noopMetrics) SubscriberRemoved() {}
func (noopMetrics) EventDropped()      {}

// Broadcaster fans every published event out to the subscribers registered
// at publish time. Each subscriber has a bounded buffer; when it is full the
// oldest buffered event is discarded so Publish never blocks.
type Broadcaster struct {
	mu      sync.RWMutex
	subs    map[*subscription]struct{}
	buffer  int
	closed  bool
	metrics Metrics
	logger  *zap.Logger
}

func NewBroadcaster(buffer int, metrics Metrics, logger *zap.Logger) *Broadcaster {
	if buffer <= 0 {
		buffer = 1
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Broadcaster{
		subs:    make(map[*subscription]struct{}),
		buffer:  buffer,
		metrics: metrics,
		logger:  logger,
	}
}

func (b *Broadcaster) Subscribe() port.Subscription {
	sub := &subscription{
		ch:     make(chan domain.TemplateEvent, b.buffer),
		parent: b,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(sub.ch)
		return sub
	}
	b.subs[sub] = struct{}{}
	b.metrics.SubscriberAdded()
	return sub
}

func (b *Broadcaster) Publish(_ context.Context, event domain.TemplateEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs {
		if dropped := sub.offer(event); dropped {
			b.metrics.EventDropped()
			b.logger.Warn("subscriber buffer full, dropped oldest event",
				zap.String("event_id", event.ID.String()),
			)
		}
	}
	return nil
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close ends every subscription. Later subscriptions are closed immediately.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subs {
		delete(b.subs, sub)
		sub.closeChannel()
		b.metrics.SubscriberRemoved()
	}
}

func (b *Broadcaster) remove(sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub]; !ok {
		return
	}
	delete(b.subs, sub)
	sub.closeChannel()
	b.metrics.SubscriberRemoved()
}

type subscription struct {
	ch     chan domain.TemplateEvent
	mu     sync.Mutex
	done   bool
	parent *Broadcaster
}

func (s *subscription) Events() <-chan domain.TemplateEvent {
	return s.ch
}

func (s *subscription) Close() {
	s.parent.remove(s)
}

// offer enqueues event and reports whether an older event had to be dropped.
func (s *subscription) offer(event domain.TemplateEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return false
	}

	dropped := false
	for {
		select {
		case s.ch <- event:
			return dropped
		default:
		}
		select {
		case <-s.ch:
			dropped = true
		default:
		}
	}
}

func (s *subscription) closeChannel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.done {
		s.done = true
		close(s.ch)
	}
}
