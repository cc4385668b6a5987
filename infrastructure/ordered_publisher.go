package infrastructure

import (
	"errors"
	"sync"

	"casino/domain/interfaces"
	"casino/events"

	log "github.com/sirupsen/logrus"
)

// ErrPublisherClosed is returned when publishing after Close
var ErrPublisherClosed = errors.New("publisher is closed")

// OrderedPublisher hands events to a slow sink such as NATS from a single
// goroutine, so the sink sees them in exactly the order Publish was called.
type OrderedPublisher struct {
	sink   interfaces.EventPublisher
	queue  chan events.Event
	done   chan struct{}
	mu     sync.RWMutex
	closed bool
}

// NewOrderedPublisher starts the dispatch goroutine. Publish blocks once
// buffer events are waiting.
func NewOrderedPublisher(sink interfaces.EventPublisher, buffer int) *OrderedPublisher {
	p := &OrderedPublisher{
		sink:  sink,
		queue: make(chan events.Event, buffer),
		done:  make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish queues event behind everything published before it
func (p *OrderedPublisher) Publish(event events.Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	p.queue <- event
	return nil
}

// Close stops accepting events and waits until the queue is drained
func (p *OrderedPublisher) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()
	<-p.done
}

func (p *OrderedPublisher) run() {
	defer close(p.done)
	for event := range p.queue {
		if err := p.sink.Publish(event); err != nil {
			log.WithFields(log.Fields{
				"eventType": event.Type(),
				"error":     err,
			}).Error("Failed to forward event")
		}
	}
}

// FanoutPublisher publishes each event to every publisher in turn
type FanoutPublisher struct {
	publishers []interfaces.EventPublisher
}

// NewFanoutPublisher creates a publisher over publishers, called in the given order
func NewFanoutPublisher(publishers ...interfaces.EventPublisher) *FanoutPublisher {
	return &FanoutPublisher{publishers: publishers}
}

// Publish delivers event to every publisher, joining their errors
func (f *FanoutPublisher) Publish(event events.Event) error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.Publish(event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
