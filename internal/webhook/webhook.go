// Package webhook posts settings and theme changes to an external URL, for
// storefront cache purges and rebuild hooks.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/config"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/event"
	"github.com/Go-Digital-Alchemy-Repos/Power-Plunge-20-sub001/internal/version"
)

// SignatureHeader carries "sha256=<hex hmac of the body>" when a secret is set.
const SignatureHeader = "X-Plunge-Signature"

const defaultTimeout = 10 * time.Second

var deliveriesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "plunge_webhook_deliveries_total",
		Help: "Webhook deliveries by topic and result.",
	},
	[]string{"topic", "result"},
)

func init() {
	prometheus.MustRegister(deliveriesTotal)
}

// Config holds the webhook configuration.
type Config struct {
	URL     string
	Timeout time.Duration
	Enabled bool
	Secret  string
}

// ConfigFrom reads the webhook section. Delivery is enabled unless
// webhook.enabled is false, and only happens when webhook.url is set.
func ConfigFrom(cfg config.Config) Config {
	c := Config{
		URL:     cfg.GetString("webhook.url"),
		Timeout: defaultTimeout,
		Enabled: true,
		Secret:  cfg.GetString("webhook.secret"),
	}
	if d := cfg.GetDuration("webhook.timeout"); d > 0 {
		c.Timeout = d
	}
	if cfg.IsSet("webhook.enabled") {
		c.Enabled = cfg.GetBool("webhook.enabled")
	}
	return c
}

// Subscriber is the read side of the event bus.
type Subscriber interface {
	Subscribe(topic string, handler event.Handler) (unsubscribe func())
}

// Payload is the JSON body sent to the webhook URL.
type Payload struct {
	Event     string `json:"event"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data"`
}

// Notifier delivers bus events to the configured URL. Deliveries run off the
// publishing goroutine so a slow endpoint never holds up a settings write.
type Notifier struct {
	cfg    Config
	client *http.Client
	logger *zap.Logger

	mu          sync.Mutex
	unsubscribe []func()
	inflight    sync.WaitGroup
}

// New creates a Notifier.
func New(cfg Config, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Topics lists the topics Subscribe registers for.
func Topics() []string {
	return []string{event.TopicSettingsUpdated, event.TopicThemeChanged}
}

// Subscribe registers the notifier on bus. It is a no-op when delivery is
// disabled or no URL is configured.
func (n *Notifier) Subscribe(bus Subscriber) {
	if !n.cfg.Enabled || n.cfg.URL == "" {
		n.logger.Info("webhook delivery disabled", zap.Bool("enabled", n.cfg.Enabled))
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	for _, topic := range Topics() {
		n.unsubscribe = append(n.unsubscribe, bus.Subscribe(topic, n.handleEvent))
	}
	n.logger.Info("webhook delivery enabled",
		zap.String("url", n.cfg.URL),
		zap.Duration("timeout", n.cfg.Timeout),
		zap.Bool("signed", n.cfg.Secret != ""),
	)
}

// Close unsubscribes and waits for in-flight deliveries.
func (n *Notifier) Close() {
	n.mu.Lock()
	unsubscribe := n.unsubscribe
	n.unsubscribe = nil
	n.mu.Unlock()

	for _, u := range unsubscribe {
		u()
	}
	n.inflight.Wait()
}

func (n *Notifier) handleEvent(ctx context.Context, e event.Event) {
	payload := Payload{
		Event:     e.Topic,
		Source:    e.Source,
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339),
		Data:      e.Payload,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.Error("failed to marshal webhook payload",
			zap.String("topic", e.Topic),
			zap.Error(err),
		)
		return
	}

	// The request that triggered the event may finish before delivery does.
	ctx = context.WithoutCancel(ctx)
	n.inflight.Add(1)
	go func() {
		defer n.inflight.Done()
		n.send(ctx, body, e.Topic)
	}()
}

func (n *Notifier) send(ctx context.Context, body []byte, topic string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.URL, bytes.NewReader(body))
	if err != nil {
		n.logger.Error("failed to create webhook request", zap.Error(err))
		deliveriesTotal.WithLabelValues(topic, "error").Inc()
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Plunge-Webhook/"+version.Short())
	if n.cfg.Secret != "" {
		req.Header.Set(SignatureHeader, Sign([]byte(n.cfg.Secret), body))
	}

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Warn("webhook delivery failed",
			zap.String("topic", topic),
			zap.Error(err),
		)
		deliveriesTotal.WithLabelValues(topic, "error").Inc()
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		n.logger.Warn("webhook endpoint returned error",
			zap.String("topic", topic),
			zap.Int("status_code", resp.StatusCode),
		)
		deliveriesTotal.WithLabelValues(topic, "rejected").Inc()
		return
	}

	deliveriesTotal.WithLabelValues(topic, "ok").Inc()
	n.logger.Debug("webhook delivered",
		zap.String("topic", topic),
		zap.Int("status_code", resp.StatusCode),
	)
}

// Sign returns the signature header value for body.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
