package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"

	"casino/events"

	log "github.com/sirupsen/logrus"
)

// MessageSubscriber is the part of the NATS client the event subscriber needs
type MessageSubscriber interface {
	Subscribe(subject string, handler func([]byte) error) error
}

// EventHandler processes one decoded event. An error requests redelivery.
type EventHandler func(ctx context.Context, envelope *EventEnvelope, event events.Event) error

// NATSEventSubscriber subscribes to NATS subjects and decodes envelopes for handlers
type NATSEventSubscriber struct {
	client        MessageSubscriber
	subjectMapper *EventSubjectMapper
}

// NewNATSEventSubscriber creates a new NATS event subscriber
func NewNATSEventSubscriber(client MessageSubscriber, subjectMapper *EventSubjectMapper) *NATSEventSubscriber {
	return &NATSEventSubscriber{
		client:        client,
		subjectMapper: subjectMapper,
	}
}

// Subscribe registers handler for one event type
func (s *NATSEventSubscriber) Subscribe(eventType events.EventType, handler EventHandler) error {
	subject := s.subjectMapper.MapEventTypeToSubject(eventType)

	log.WithFields(log.Fields{
		"eventType": eventType,
		"subject":   subject,
	}).Info("Registering event handler for subject")

	return s.client.Subscribe(subject, func(data []byte) error {
		return s.handleMessage(subject, data, handler)
	})
}

// SubscribeAll registers handler for every event type
func (s *NATSEventSubscriber) SubscribeAll(handler EventHandler) error {
	for _, t := range events.AllEventTypes {
		if err := s.Subscribe(t, handler); err != nil {
			return err
		}
	}
	return nil
}

func (s *NATSEventSubscriber) handleMessage(subject string, data []byte, handler EventHandler) error {
	var envelope EventEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("failed to unmarshal event envelope on %s: %w", subject, err)
	}

	event, err := envelope.DecodeEvent()
	if err != nil {
		log.WithFields(log.Fields{
			"subject":     subject,
			"eventId":     envelope.EventID,
			"payloadSize": len(envelope.Payload),
			"error":       err,
		}).Error("Failed to deserialize event payload")
		return err
	}

	if err := handler(context.Background(), &envelope, event); err != nil {
		log.WithFields(log.Fields{
			"subject":   subject,
			"eventType": envelope.EventType,
			"eventId":   envelope.EventID,
			"error":     err,
		}).Error("Event handler failed")
		return err
	}
	return nil
}
