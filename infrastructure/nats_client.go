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
	maxDeliveries  = 3
	ackWait        = 30 * time.Second
	redeliverDelay = 5 * time.Second
)

// StreamSpec describes a JetStream stream owned by the pot
type StreamSpec struct {
	Name        string
	Subjects    []string
	Description string
	MaxAge      time.Duration
}

// NATSClient holds the JetStream connection used for pot events and reward reports
type NATSClient struct {
	servers       string
	nc            *nats.Conn
	js            nats.JetStreamContext
	subscriptions map[string]*nats.Subscription
	mu            sync.RWMutex
}

// NewNATSClient creates an unconnected client for a comma-separated server list
func NewNATSClient(servers string) *NATSClient {
	return &NATSClient{
		servers:       servers,
		subscriptions: make(map[string]*nats.Subscription),
	}
}

// Connect dials NATS and opens a JetStream context. The dial gives up when ctx ends.
func (c *NATSClient) Connect(ctx context.Context) error {
	opts := []nats.Option{
		nats.Name("stackpot"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.WithError(err).Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.WithField("server", nc.ConnectedUrl()).Info("NATS reconnected")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			entry := log.WithError(err)
			if sub != nil {
				entry = entry.WithField("subject", sub.Subject)
			}
			entry.Error("NATS async error")
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
		return nil, fmt.Errorf("not connected to NATS JetStream")
	}
	return c.js, nil
}

// DurableName is the consumer name used for a subject
func DurableName(subject string) string {
	r := strings.NewReplacer(".", "_", "*", "wildcard", ">", "all")
	return "stackpot-" + r.Replace(subject)
}

// Subscribe attaches a durable consumer to the subject. A failed message is
// redelivered after a delay until its last attempt, then terminated.
func (c *NATSClient) Subscribe(subject string, handler func([]byte) error) error {
	js, err := c.jetStream()
	if err != nil {
		return err
	}

	sub, err := js.Subscribe(subject, func(msg *nats.Msg) {
		settle(msg, subject, handler(msg.Data))
	},
		nats.Durable(DurableName(subject)),
		nats.ManualAck(),
		nats.AckExplicit(),
		nats.MaxDeliver(maxDeliveries),
		nats.AckWait(ackWait),
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	c.mu.Lock()
	c.subscriptions[subject] = sub
	c.mu.Unlock()

	log.WithFields(log.Fields{
		"subject": subject,
		"durable": DurableName(subject),
	}).Info("Subscribed to NATS subject")
	return nil
}

func settle(msg *nats.Msg, subject string, handlerErr error) {
	if handlerErr == nil {
		if err := msg.Ack(); err != nil {
			log.WithError(err).Error("Failed to ACK message")
		}
		return
	}

	delivered := uint64(1)
	if meta, err := msg.Metadata(); err == nil {
		delivered = meta.NumDelivered
	}
	entry := log.WithFields(log.Fields{
		"subject":   subject,
		"delivered": delivered,
		"error":     handlerErr,
	})

	if delivered >= maxDeliveries {
		entry.Error("Giving up on message after final delivery")
		if err := msg.Term(); err != nil {
			log.WithError(err).Error("Failed to terminate message")
		}
		return
	}

	entry.Warn("Failed to process message, scheduling redelivery")
	if err := msg.NakWithDelay(redeliverDelay); err != nil {
		log.WithError(err).Error("Failed to NAK message")
	}
}

// Close drains subscriptions and closes the connection
func (c *NATSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for subject, sub := range c.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			log.WithError(err).WithField("subject", subject).Error("Failed to unsubscribe")
		}
	}
	c.subscriptions = make(map[string]*nats.Subscription)

	if c.nc != nil {
		c.nc.Close()
		c.nc, c.js = nil, nil
		log.Info("NATS connection closed")
	}
	return nil
}

// IsConnected reports whether the underlying connection is up
func (c *NATSClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nc != nil && c.nc.IsConnected()
}

// EnsureStream creates the stream, or widens an existing one to cover every requested subject
func (c *NATSClient) EnsureStream(spec StreamSpec) error {
	js, err := c.jetStream()
	if err != nil {
		return err
	}

	cfg := &nats.StreamConfig{
		Name:        spec.Name,
		Subjects:    spec.Subjects,
		Description: spec.Description,
		Retention:   nats.LimitsPolicy,
		MaxAge:      spec.MaxAge,
		Storage:     nats.FileStorage,
		Replicas:    1,
	}

	info, err := js.StreamInfo(spec.Name)
	switch {
	case err == nil:
		if containsAll(info.Config.Subjects, spec.Subjects) {
			log.WithField("stream", spec.Name).Debug("JetStream stream already exists")
			return nil
		}
		cfg.Subjects = mergeSubjects(info.Config.Subjects, spec.Subjects)
		if _, err := js.UpdateStream(cfg); err != nil {
			return fmt.Errorf("failed to update stream %s: %w", spec.Name, err)
		}
		log.WithFields(log.Fields{"stream": spec.Name, "subjects": cfg.Subjects}).Info("Updated JetStream stream subjects")
	case errors.Is(err, nats.ErrStreamNotFound):
		if _, err := js.AddStream(cfg); err != nil {
			return fmt.Errorf("failed to create stream %s: %w", spec.Name, err)
		}
		log.WithFields(log.Fields{"stream": spec.Name, "subjects": cfg.Subjects}).Info("Created JetStream stream")
	default:
		return fmt.Errorf("failed to look up stream %s: %w", spec.Name, err)
	}
	return nil
}

// EnsureRewardsStream ensures the stream carrying staking reward reports exists
func (c *NATSClient) EnsureRewardsStream(subject string) error {
	return c.EnsureStream(StreamSpec{
		Name:        "staking_rewards",
		Subjects:    []string{subject},
		Description: "Stacking reward and slash reports",
		MaxAge:      30 * 24 * time.Hour,
	})
}

// EnsureCommandsStream ensures the stream carrying depositor commands exists
func (c *NATSClient) EnsureCommandsStream(subject string) error {
	return c.EnsureStream(StreamSpec{
		Name:        "pot_commands",
		Subjects:    []string{subject},
		Description: "Deposit, withdrawal and claim commands",
		MaxAge:      7 * 24 * time.Hour,
	})
}

// Publish sends data on subject and waits for the JetStream ack
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

func containsAll(have, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, s := range have {
		set[s] = struct{}{}
	}
	for _, s := range want {
		if _, ok := set[s]; !ok {
			return false
		}
	}
	return true
}

func mergeSubjects(have, want []string) []string {
	merged := append([]string(nil), have...)
	for _, s := range want {
		if !containsAll(merged, []string{s}) {
			merged = append(merged, s)
		}
	}
	return merged
}
