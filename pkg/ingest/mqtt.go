package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/levenlabs/go-lflag"
	"github.com/vitorcape/homeclima/pkg/log"
	"github.com/vitorcape/homeclima/pkg/metrics"
	"github.com/vitorcape/homeclima/pkg/types"
)

// Handler receives each validated reading from the MQTT feed.
type Handler func(ctx context.Context, r types.Reading) error

// Subscriber consumes device payloads from an MQTT topic and runs them
// through the same validation as HTTP ingest. Malformed messages are logged
// and dropped; the broker is never asked to redeliver them.
type Subscriber struct {
	broker   string
	topic    string
	clientID string
	client   mqtt.Client
	handler  Handler
}

// ConfiguredSubscriber sets up the MQTT ingest path.
// It registers flags for configuration; with no broker configured the
// subscriber is disabled.
func ConfiguredSubscriber() *Subscriber {
	s := &Subscriber{}

	broker := lflag.String("mqtt-broker", "", "MQTT broker address (host:port); empty disables MQTT ingest")
	topic := lflag.String("mqtt-topic", "homeclima/readings", "MQTT topic devices publish readings to")
	clientID := lflag.String("mqtt-client-id", "homeclima-server", "MQTT client id")

	lflag.Do(func() {
		s.broker = *broker
		s.topic = *topic
		s.clientID = *clientID
	})

	return s
}

// Enabled reports whether a broker was configured.
func (s *Subscriber) Enabled() bool {
	return s.broker != ""
}

// SetHandler sets the callback invoked for each validated reading.
func (s *Subscriber) SetHandler(h Handler) {
	s.handler = h
}

// Run connects to the broker, subscribes, and blocks until the context is
// canceled. A disabled subscriber returns immediately.
func (s *Subscriber) Run(ctx context.Context) error {
	if !s.Enabled() {
		log.Ctx(ctx).InfoContext(ctx, "mqtt ingest disabled, no broker configured")
		return nil
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker("tcp://" + s.broker)
	opts.SetClientID(s.clientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(time.Minute)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Ctx(ctx).InfoContext(ctx, "mqtt connected", slog.String("broker", s.broker))
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Ctx(ctx).WarnContext(ctx, "mqtt connection lost", slog.Any("error", err))
	})

	s.client = mqtt.NewClient(opts)
	token := s.client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect (%s): %w", s.broker, err)
	}

	// QoS 1: devices expect at-least-once delivery over flaky links
	sub := s.client.Subscribe(s.topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		s.handleMessage(ctx, msg.Topic(), msg.Payload())
	})
	if !sub.WaitTimeout(5 * time.Second) {
		s.client.Disconnect(0)
		return fmt.Errorf("subscribe timeout for topic %s", s.topic)
	}
	if err := sub.Error(); err != nil {
		s.client.Disconnect(0)
		return fmt.Errorf("subscribe to %s: %w", s.topic, err)
	}
	log.Ctx(ctx).InfoContext(ctx, "subscribed to mqtt topic", slog.String("topic", s.topic))

	<-ctx.Done()
	s.client.Disconnect(250)
	log.Ctx(ctx).InfoContext(ctx, "mqtt subscriber disconnected")
	return nil
}

func (s *Subscriber) handleMessage(ctx context.Context, topic string, payload []byte) {
	var p Payload
	if err := json.Unmarshal(payload, &p); err != nil {
		metrics.ReadingsRejected.WithLabelValues("mqtt").Inc()
		log.Ctx(ctx).WarnContext(ctx, "failed to parse mqtt payload",
			slog.String("topic", topic),
			slog.Any("error", err),
		)
		return
	}

	reading, err := Validate(p, time.Now())
	if err != nil {
		metrics.ReadingsRejected.WithLabelValues("mqtt").Inc()
		log.Ctx(ctx).WarnContext(ctx, "invalid mqtt reading",
			slog.String("topic", topic),
			slog.String("deviceId", p.DeviceID),
			slog.Any("error", err),
		)
		return
	}

	if s.handler == nil {
		return
	}
	if err := s.handler(ctx, reading); err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "failed to store mqtt reading",
			slog.String("deviceId", reading.DeviceID),
			slog.Any("error", err),
		)
		return
	}
	metrics.ReadingsIngested.WithLabelValues("mqtt").Inc()
}
