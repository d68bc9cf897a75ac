// Package mqtt mirrors theme and settings changes onto an MQTT broker. The
// active theme is published retained, so storefront nodes that connect later
// still learn which theme to render.
package mqtt

import (
	"context"
	"encoding/json"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/event"
)

// queueSize bounds the messages waiting for the broker. Further messages are
// dropped with a warning.
const queueSize = 64

// Subscriber is the read side of the event bus.
type Subscriber interface {
	Subscribe(topic string, handler event.Handler) (unsubscribe func())
}

// client is the part of pahomqtt.Client the publisher uses.
type client interface {
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	Disconnect(quiesce uint)
}

// ActiveTheme is the retained message on <prefix>/theme/active.
type ActiveTheme struct {
	ThemeID         string `json:"themeId"`
	PreviousThemeID string `json:"previousThemeId,omitempty"`
}

type outbound struct {
	topic    string
	retained bool
	payload  any
}

// Publisher forwards bus events to the broker. Messages are sent by a single
// worker in the order they were queued, so the retained theme always ends on
// the latest change.
type Publisher struct {
	logger *zap.Logger
	cfg    Config

	mu          sync.RWMutex
	client      client
	active      ActiveTheme
	queue       chan outbound
	done        chan struct{}
	unsubscribe []func()
}

// New creates a Publisher. Nothing connects until Start.
func New(cfg Config, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{logger: logger, cfg: cfg}
}

// Start connects to the broker. A failed or slow first connection is logged
// and retried in the background; Start itself never fails. Every successful
// (re)connect re-publishes the active theme.
func (p *Publisher) Start(_ context.Context) error {
	if p.cfg.BrokerURL == "" {
		p.logger.Info("mqtt publisher disabled (no broker configured)")
		return nil
	}

	opts := pahomqtt.NewClientOptions().
		AddBroker(p.cfg.BrokerURL).
		SetClientID(p.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectTimeout(p.cfg.Timeout).
		SetOnConnectHandler(func(pahomqtt.Client) { p.onConnect() })

	if p.cfg.Username != "" {
		opts.SetUsername(p.cfg.Username)
		opts.SetPassword(p.cfg.Password) //nolint:gosec // G101: config field
	}

	c := pahomqtt.NewClient(opts)
	p.attach(c)
	token := c.Connect()

	switch {
	case !token.WaitTimeout(p.cfg.Timeout):
		p.logger.Warn("mqtt connection timed out; will reconnect in background")
	case token.Error() != nil:
		p.logger.Warn("mqtt connection failed; will reconnect in background",
			zap.Error(token.Error()),
		)
	default:
		p.logger.Info("mqtt connected to broker",
			zap.String("broker_url", p.cfg.BrokerURL),
			zap.String("client_id", p.cfg.ClientID),
			zap.String("topic_prefix", p.cfg.TopicPrefix),
		)
	}
	return nil
}

// attach sets the client and starts the send worker. The client is in place
// before Connect so the connect handler can already publish through it.
func (p *Publisher) attach(c client) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.client = c
	p.queue = make(chan outbound, queueSize)
	p.done = make(chan struct{})
	go p.run(p.queue, p.done)
}

// Subscribe registers the publisher for every topic it mirrors. Without a
// broker there is nothing to mirror to.
func (p *Publisher) Subscribe(bus Subscriber) {
	if p.cfg.BrokerURL == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unsubscribe = append(p.unsubscribe,
		bus.Subscribe(event.TopicThemeChanged, p.publishEvent),
		bus.Subscribe(event.TopicSettingsUpdated, p.publishEvent),
	)
}

// PublishActiveTheme sets the retained active-theme message, used at startup
// before any change event has been seen.
func (p *Publisher) PublishActiveTheme(themeID string) {
	p.setActive(ActiveTheme{ThemeID: themeID})
}

// Close unsubscribes, sends what is still queued and disconnects.
func (p *Publisher) Close() {
	p.mu.Lock()
	unsubscribe := p.unsubscribe
	p.unsubscribe = nil
	queue, done := p.queue, p.done
	p.queue = nil
	p.mu.Unlock()

	for _, u := range unsubscribe {
		u()
	}
	if queue != nil {
		close(queue)
		<-done
	}

	p.mu.RLock()
	c := p.client
	p.mu.RUnlock()
	if c != nil && c.IsConnected() {
		c.Disconnect(250)
		p.logger.Info("mqtt disconnected")
	}
}

// TopicFor maps a bus topic to its MQTT topic.
func (p *Publisher) TopicFor(eventTopic string) string {
	switch eventTopic {
	case event.TopicThemeChanged:
		return p.cfg.TopicPrefix + "/theme/active"
	case event.TopicSettingsUpdated:
		return p.cfg.TopicPrefix + "/settings/updated"
	default:
		return p.cfg.TopicPrefix + "/unknown"
	}
}

func (p *Publisher) publishEvent(_ context.Context, e event.Event) {
	switch payload := e.Payload.(type) {
	case event.ThemeChanged:
		p.setActive(ActiveTheme{
			ThemeID:         payload.ThemeID,
			PreviousThemeID: payload.PreviousThemeID,
		})
	case event.SettingsUpdated:
		// The full settings document stays on the HTTP API.
		p.enqueue(outbound{topic: p.TopicFor(e.Topic), payload: struct {
			ActorID       string   `json:"actorId"`
			ChangedFields []string `json:"changedFields"`
		}{payload.ActorID, payload.ChangedFields}})
	default:
		p.logger.Debug("mqtt ignoring event with unexpected payload",
			zap.String("event_topic", e.Topic),
		)
	}
}

// setActive records the theme for later reconnects and queues it.
func (p *Publisher) setActive(at ActiveTheme) {
	p.mu.Lock()
	p.active = at
	p.mu.Unlock()
	p.enqueue(outbound{topic: p.TopicFor(event.TopicThemeChanged), retained: true, payload: at})
}

// onConnect re-sends the active theme. A broker that lost its retained
// message, or a first connect that only succeeded on retry, would otherwise
// leave late subscribers without it.
func (p *Publisher) onConnect() {
	p.mu.RLock()
	at := p.active
	p.mu.RUnlock()
	if at.ThemeID == "" {
		return
	}
	p.logger.Debug("mqtt connected; re-publishing active theme", zap.String("theme_id", at.ThemeID))
	p.enqueue(outbound{topic: p.TopicFor(event.TopicThemeChanged), retained: true, payload: at})
}

// enqueue never blocks the caller, which is usually a settings write.
func (p *Publisher) enqueue(m outbound) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.queue == nil {
		return
	}
	select {
	case p.queue <- m:
	default:
		p.logger.Warn("mqtt queue full; dropping message", zap.String("mqtt_topic", m.topic))
	}
}

func (p *Publisher) run(queue <-chan outbound, done chan<- struct{}) {
	defer close(done)
	for m := range queue {
		p.publish(m)
	}
}

func (p *Publisher) publish(m outbound) {
	p.mu.RLock()
	c := p.client
	p.mu.RUnlock()

	if c == nil || !c.IsConnected() {
		return
	}

	payload, err := json.Marshal(m.payload)
	if err != nil {
		p.logger.Warn("failed to marshal MQTT payload",
			zap.String("mqtt_topic", m.topic),
			zap.Error(err),
		)
		return
	}

	token := c.Publish(m.topic, p.cfg.QoS, m.retained, payload)
	if !token.WaitTimeout(p.cfg.Timeout) {
		p.logger.Warn("mqtt publish timed out", zap.String("mqtt_topic", m.topic))
		return
	}
	if token.Error() != nil {
		p.logger.Warn("mqtt publish failed",
			zap.String("mqtt_topic", m.topic),
			zap.Error(token.Error()),
		)
		return
	}

	p.logger.Debug("mqtt message published",
		zap.String("mqtt_topic", m.topic),
		zap.Bool("retained", m.retained),
	)
}
