package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"gitlab.com/renewalhq/api/call-provider-service/internal/actor"
	"gitlab.com/renewalhq/api/call-provider-service/internal/config"
	"gitlab.com/renewalhq/api/call-provider-service/pkg/logger"
	"gitlab.com/renewalhq/api/call-provider-service/pkg/utils"
)

// Event kinds published on the provider stream.
const (
	EventHealthChanged  = "health_changed"
	EventCallDispatched = "call_dispatched"
	EventUsageRecorded  = "usage_recorded"
	EventTestCompleted  = "test_completed"
)

// Event is the JSON payload published to JetStream.
type Event struct {
	Kind           string                 `json:"kind"`
	ProviderFamily string                 `json:"provider_family"`
	ProviderID     int64                  `json:"provider_id"`
	ProviderType   string                 `json:"provider_type"`
	Payload        map[string]interface{} `json:"payload,omitempty"`
	OccurredAt     time.Time              `json:"occurred_at"`
}

// Publisher emits provider lifecycle events. Implementations must never
// block request handling; callers treat publish failures as advisory.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
	Close()
}

// JetStreamPublisher publishes events to a NATS JetStream stream.
type JetStreamPublisher struct {
	nc            *nats.Conn
	js            nats.JetStreamContext
	stream        string
	subjectPrefix string
}

// NewJetStreamPublisher connects to NATS and ensures the provider event
// stream exists.
func NewJetStreamPublisher(cfg config.NATSConfig) (*JetStreamPublisher, error) {
	nc, err := nats.Connect(cfg.URL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Log.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ErrorHandler(func(nc *nats.Conn, s *nats.Subscription, err error) {
			logger.Log.Error("NATS error", zap.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	p := &JetStreamPublisher{
		nc:            nc,
		js:            js,
		stream:        cfg.Stream,
		subjectPrefix: cfg.SubjectPrefix,
	}

	if err := p.setupStream(cfg); err != nil {
		nc.Close()
		return nil, err
	}

	return p, nil
}

func (p *JetStreamPublisher) setupStream(cfg config.NATSConfig) error {
	streamConfig := &nats.StreamConfig{
		Name:      cfg.Stream,
		Subjects:  []string{cfg.SubjectPrefix + ".>"},
		Storage:   nats.FileStorage,
		Retention: nats.LimitsPolicy,
		MaxAge:    time.Duration(cfg.MaxAge) * 24 * time.Hour,
	}

	stream, err := p.js.StreamInfo(streamConfig.Name)
	if err != nil && !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("failed to get stream info for '%s': %w", streamConfig.Name, err)
	}

	if stream == nil {
		if _, err := p.js.AddStream(streamConfig); err != nil {
			return fmt.Errorf("failed to add stream '%s': %w", streamConfig.Name, err)
		}
		logger.Log.Info("Created stream",
			zap.String("name", streamConfig.Name),
			zap.Any("subjects", streamConfig.Subjects))
	}

	return nil
}

// Publish emits one event. Failures are logged and swallowed; provider
// operations must not fail because the event bus is down.
func (p *JetStreamPublisher) Publish(ctx context.Context, ev Event) {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = utils.Now()
	}

	subject := fmt.Sprintf("%s.%s.%s", p.subjectPrefix, ev.ProviderFamily, ev.Kind)
	msg := nats.NewMsg(subject)
	msg.Data = utils.MustMarshalJSON(ev)
	if requestID, err := actor.FromRequestIDContext(ctx); err == nil {
		msg.Header.Add("X-Request-ID", requestID)
	}

	if _, err := p.js.PublishMsg(msg); err != nil {
		logger.FromContext(ctx).Warn("Failed to publish provider event",
			zap.String("subject", subject),
			zap.String("kind", ev.Kind),
			zap.Int64("provider_id", ev.ProviderID),
			zap.Error(err))
		return
	}

	logger.FromContext(ctx).Debug("Published provider event",
		zap.String("subject", subject),
		zap.String("kind", ev.Kind),
		zap.Int64("provider_id", ev.ProviderID))
}

// Close closes the NATS connection.
func (p *JetStreamPublisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

// NoopPublisher drops all events. Used when NATS is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, ev Event) {}
func (NoopPublisher) Close()                                {}
