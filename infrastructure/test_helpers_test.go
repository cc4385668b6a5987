package infrastructure

import (
	"context"
	"errors"

	"casino/events"
)

// recordingPublisher collects published events
type recordingPublisher struct {
	published    []events.Event
	publishError error
}

func (m *recordingPublisher) Publish(event events.Event) error {
	if m.publishError != nil {
		return m.publishError
	}
	m.published = append(m.published, event)
	return nil
}

type sentMessage struct {
	subject string
	data    []byte
}

// fakeBroker stands in for the NATS client
type fakeBroker struct {
	sent     []sentMessage
	handlers map[string]func([]byte) error
	err      error
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{handlers: map[string]func([]byte) error{}}
}

func (b *fakeBroker) Publish(ctx context.Context, subject string, data []byte) error {
	if b.err != nil {
		return b.err
	}
	b.sent = append(b.sent, sentMessage{subject: subject, data: data})
	return nil
}

func (b *fakeBroker) Subscribe(subject string, handler func([]byte) error) error {
	b.handlers[subject] = handler
	return nil
}

// deliver replays every sent message to the handler on its subject
func (b *fakeBroker) deliver() error {
	var errs []error
	for _, m := range b.sent {
		if h, ok := b.handlers[m.subject]; ok {
			errs = append(errs, h(m.data))
		}
	}
	return errors.Join(errs...)
}
