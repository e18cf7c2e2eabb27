// Package backplane relays realtime events between API instances over NATS so
// that a client connected to any instance receives events emitted on any other.
package backplane

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nats-io/nats.go"

	"github.com/lorrc/studyspace-backend/internal/core/domain"
	"github.com/lorrc/studyspace-backend/internal/core/ports"
)

// Config holds the relay settings.
type Config struct {
	URL           string
	Subject       string
	InstanceID    string
	MaxReconnects int
	ReconnectWait time.Duration
	DialTimeout   time.Duration
}

// Envelope is the message published on the backplane subject.
type Envelope struct {
	Origin  string           `json:"origin" validate:"required"`
	Room    string           `json:"room" validate:"required"`
	Event   domain.EventType `json:"event" validate:"required"`
	Payload json.RawMessage  `json:"payload"`
}

// Bus is the pub/sub transport the relay runs on.
type Bus interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte)) (unsubscribe func() error, err error)
}

// Connect dials NATS with reconnect handling.
func Connect(cfg Config, logger *slog.Logger) (*nats.Conn, error) {
	logger = logger.With("component", "backplane", "url", cfg.URL)

	conn, err := nats.Connect(
		cfg.URL,
		nats.Name("studyspace-"+cfg.InstanceID),
		nats.Timeout(cfg.DialTimeout),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("backplane disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("backplane reconnected", "server", c.ConnectedUrl())
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info("backplane connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to backplane: %w", err)
	}
	return conn, nil
}

// natsBus adapts a NATS connection to Bus.
type natsBus struct {
	conn *nats.Conn
}

// NewNATSBus wraps conn as a Bus.
func NewNATSBus(conn *nats.Conn) Bus {
	return &natsBus{conn: conn}
}

func (b *natsBus) Publish(subject string, data []byte) error {
	return b.conn.Publish(subject, data)
}

func (b *natsBus) Subscribe(subject string, handler func(data []byte)) (func() error, error) {
	sub, err := b.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, err
	}
	return sub.Unsubscribe, nil
}

// Relay decorates the local realtime server. Emits are delivered locally and
// published for the other instances; envelopes from other instances are
// delivered locally only.
type Relay struct {
	local    ports.RealtimeServer
	bus      Bus
	subject  string
	origin   string
	validate *validator.Validate
	logger   *slog.Logger

	mu          sync.Mutex
	unsubscribe func() error
}

var _ ports.RealtimeServer = (*Relay)(nil)

// NewRelay creates a relay in front of local.
func NewRelay(local ports.RealtimeServer, bus Bus, cfg Config, logger *slog.Logger) *Relay {
	return &Relay{
		local:    local,
		bus:      bus,
		subject:  cfg.Subject,
		origin:   cfg.InstanceID,
		validate: validator.New(),
		logger:   logger.With("component", "backplane_relay", "instance_id", cfg.InstanceID),
	}
}

// Start subscribes to the backplane subject until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.unsubscribe != nil {
		return fmt.Errorf("relay already subscribed to %s", r.subject)
	}

	unsubscribe, err := r.bus.Subscribe(r.subject, r.deliver)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", r.subject, err)
	}
	r.unsubscribe = unsubscribe

	go func() {
		<-ctx.Done()
		if err := unsubscribe(); err != nil {
			r.logger.Warn("failed to unsubscribe from backplane", "error", err)
			return
		}
		r.logger.Info("unsubscribed from backplane", "subject", r.subject)
	}()

	r.logger.Info("subscribed to backplane", "subject", r.subject)
	return nil
}

// Emit delivers to the local server, then publishes for the other instances.
func (r *Relay) Emit(room string, event domain.EventType, payload any) error {
	localErr := r.local.Emit(room, event, payload)

	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Join(localErr, fmt.Errorf("encode payload: %w", err))
	}

	msg, err := json.Marshal(Envelope{
		Origin:  r.origin,
		Room:    room,
		Event:   event,
		Payload: data,
	})
	if err != nil {
		return errors.Join(localErr, fmt.Errorf("encode envelope: %w", err))
	}

	if err := r.bus.Publish(r.subject, msg); err != nil {
		return errors.Join(localErr, fmt.Errorf("publish to backplane: %w", err))
	}
	return localErr
}

// FetchConnectedSockets reports the sockets of this instance only.
func (r *Relay) FetchConnectedSockets(ctx context.Context) ([]domain.SocketSnapshot, error) {
	return r.local.FetchConnectedSockets(ctx)
}

// deliver hands an envelope from another instance to the local server.
func (r *Relay) deliver(data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		r.logger.Warn("failed to decode backplane envelope", "error", err)
		return
	}
	if err := r.validate.Struct(&env); err != nil {
		r.logger.Warn("invalid backplane envelope", "error", err)
		return
	}
	if env.Origin == r.origin {
		return
	}

	if err := r.local.Emit(env.Room, env.Event, env.Payload); err != nil {
		r.logger.Debug("local delivery of relayed event failed",
			"event", env.Event,
			"room", env.Room,
			"origin", env.Origin,
			"error", err,
		)
	}
}
