package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const (
	natsReconnectWait = 2 * time.Second
	natsMaxReconnects = 10

	// Consumers get three attempts at a message before it is dropped
	consumerMaxDeliver = 3
	consumerAckWait    = 30 * time.Second

	streamMaxAge = 7 * 24 * time.Hour
)

var errNotConnected = errors.New("not connected to NATS JetStream")

// NATSClient is the casino's JetStream connection. It publishes event
// envelopes and runs durable consumers for the events tail command.
type NATSClient struct {
	servers string
	name    string

	mu sync.RWMutex
	nc *nats.Conn
	js nats.JetStreamContext
}

// NewNATSClient creates an unconnected client. name identifies the connection and
// prefixes durable consumer names.
func NewNATSClient(servers, name string) *NATSClient {
	return &NATSClient{servers: servers, name: name}
}

// Connect dials the servers and opens a JetStream context. A deadline on ctx
// bounds the dial.
func (c *NATSClient) Connect(ctx context.Context) error {
	opts := []nats.Option{
		nats.Name(c.name),
		nats.MaxReconnects(natsMaxReconnects),
		nats.ReconnectWait(natsReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.WithField("error", err).Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.WithField("server", nc.ConnectedUrl()).Info("NATS reconnected")
		}),
	}
	if deadline, ok := ctx.Deadline(); ok {
		opts = append(opts, nats.Timeout(time.Until(deadline)))
	}

	nc, err := nats.Connect(c.servers, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	c.mu.Lock()
	c.nc, c.js = nc, js
	c.mu.Unlock()

	log.WithField("servers", c.servers).Info("Connected to NATS with JetStream")
	return nil
}

func (c *NATSClient) jetStream() (nats.JetStreamContext, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.js == nil {
		return nil, errNotConnected
	}
	return c.js, nil
}

// consumerName derives a durable name from the client name and subject
func (c *NATSClient) consumerName(subject string) string {
	return c.name + "-" + strings.NewReplacer(".", "_", "*", "wildcard", ">", "all").Replace(subject)
}

// Subscribe starts a durable consumer on subject. Messages are acked when
// handler succeeds and naked for redelivery when it fails.
func (c *NATSClient) Subscribe(subject string, handler func([]byte) error) error {
	js, err := c.jetStream()
	if err != nil {
		return err
	}

	_, err = js.Subscribe(subject, func(msg *nats.Msg) {
		ack := msg.Ack
		if err := handler(msg.Data); err != nil {
			log.WithFields(log.Fields{
				"subject": msg.Subject,
				"error":   err,
			}).Error("Event handler failed, requesting redelivery")
			ack = msg.Nak
		}
		if err := ack(); err != nil {
			log.WithField("subject", msg.Subject).WithError(err).Error("Failed to acknowledge message")
		}
	},
		nats.Durable(c.consumerName(subject)),
		nats.ManualAck(),
		nats.MaxDeliver(consumerMaxDeliver),
		nats.AckWait(consumerAckWait),
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	return nil
}

// Close drains subscriptions and closes the connection
func (c *NATSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.nc == nil {
		return nil
	}

	err := c.nc.Drain()
	c.nc, c.js = nil, nil
	if err != nil {
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}
	log.Info("NATS connection closed")
	return nil
}

// EnsureStream creates the stream unless it already exists
func (c *NATSClient) EnsureStream(streamName string, subjects []string) error {
	js, err := c.jetStream()
	if err != nil {
		return err
	}

	if _, err := js.StreamInfo(streamName); err == nil {
		return nil
	} else if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("failed to look up stream %s: %w", streamName, err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:        streamName,
		Description: "Casino wager and account events",
		Subjects:    subjects,
		Storage:     nats.FileStorage,
		MaxAge:      streamMaxAge,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream %s: %w", streamName, err)
	}

	log.WithFields(log.Fields{
		"stream":   streamName,
		"subjects": subjects,
	}).Info("Created JetStream stream")
	return nil
}

// Publish sends data to subject and waits for the stream's ack
func (c *NATSClient) Publish(ctx context.Context, subject string, data []byte) error {
	js, err := c.jetStream()
	if err != nil {
		return err
	}
	if _, err := js.Publish(subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("failed to publish message to subject %s: %w", subject, err)
	}
	return nil
}
