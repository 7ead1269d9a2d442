// Package webhook notifies external systems when a new pricing snapshot is
// published. Supports Slack, Microsoft Teams and custom JSON targets.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"cleanquote/core/pricing"
	"cleanquote/internal/logging"
)

// Provider is a webhook provider type
type Provider string

const (
	ProviderSlack  Provider = "slack"
	ProviderTeams  Provider = "teams"
	ProviderCustom Provider = "custom"
)

// EventPublished is sent for every published pricing snapshot
const EventPublished = "pricing.published"

// SignatureHeader carries the hex HMAC-SHA256 of the body for custom targets
const SignatureHeader = "X-Signature"

// Config configures webhook behavior
type Config struct {
	// Provider type
	Provider Provider `json:"provider"`

	// Endpoint URL
	Endpoint string `json:"endpoint"`

	// Secret for signing custom payloads
	Secret string `json:"secret"`

	// Headers to include
	Headers map[string]string `json:"headers"`

	// Timeout for requests
	Timeout time.Duration `json:"timeout"`

	// RetryCount for failed requests
	RetryCount int `json:"retry_count"`

	// RetryDelay between retries
	RetryDelay time.Duration `json:"retry_delay"`

	// QueueSize bounds pending notifications; further publishes are dropped
	QueueSize int `json:"queue_size"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig(provider Provider) *Config {
	return &Config{
		Provider:   provider,
		Timeout:    10 * time.Second,
		RetryCount: 3,
		RetryDelay: 1 * time.Second,
		Headers:    make(map[string]string),
		QueueSize:  32,
	}
}

// ParseProvider resolves a provider name; empty means custom
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return ProviderCustom, nil
	case ProviderSlack, ProviderTeams, ProviderCustom:
		return p, nil
	default:
		return "", fmt.Errorf("unknown webhook provider %q (want slack, teams or custom)", s)
	}
}

// Payload is the webhook payload
type Payload struct {
	Event       string    `json:"event"`
	Version     uint64    `json:"version"`
	ContentHash string    `json:"content_hash"`
	Source      string    `json:"source"`
	Sections    []string  `json:"sections"`
	Cities      int       `json:"cities"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewPayload describes a published snapshot
func NewPayload(snap *pricing.Snapshot, sections []pricing.Section) *Payload {
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = string(s)
	}
	return &Payload{
		Event:       EventPublished,
		Version:     snap.Version(),
		ContentHash: snap.ContentHash().Hex(),
		Source:      snap.Source().String(),
		Sections:    names,
		Cities:      len(snap.Cities()),
		Timestamp:   snap.CreatedAt(),
	}
}

// Adapter is the webhook adapter
type Adapter struct {
	config     *Config
	httpClient *http.Client
	queue      chan *Payload
	logger     *zap.Logger
}

// New creates a new webhook adapter
func New(config *Config) *Adapter {
	size := config.QueueSize
	if size <= 0 {
		size = 1
	}
	return &Adapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		queue:  make(chan *Payload, size),
		logger: logging.Named("webhook"),
	}
}

// ObservePublish is a pricing.PublishHook. It never blocks the publishing
// writer: the payload is queued for Run, or dropped when the queue is full.
func (a *Adapter) ObservePublish(snap *pricing.Snapshot, sections []pricing.Section) {
	payload := NewPayload(snap, sections)
	select {
	case a.queue <- payload:
	default:
		a.logger.Warn("webhook queue full, dropping notification", zap.Uint64("version", payload.Version))
	}
}

// Run delivers queued notifications until ctx is done
func (a *Adapter) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-a.queue:
			if err := a.Send(ctx, payload); err != nil {
				a.logger.Error("webhook delivery failed",
					zap.Uint64("version", payload.Version),
					zap.Error(err))
				continue
			}
			a.logger.Debug("webhook delivered", zap.Uint64("version", payload.Version))
		}
	}
}

// Send sends the webhook
func (a *Adapter) Send(ctx context.Context, payload *Payload) error {
	var lastErr error

	for attempt := 0; attempt <= a.config.RetryCount; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(a.config.RetryDelay):
			}
		}

		if err := a.sendOnce(ctx, payload); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	return fmt.Errorf("webhook failed after %d attempts: %w", a.config.RetryCount+1, lastErr)
}

func (a *Adapter) sendOnce(ctx context.Context, payload *Payload) error {
	// Format payload for provider
	body, err := a.formatPayload(payload)
	if err != nil {
		return fmt.Errorf("failed to format payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range a.config.Headers {
		req.Header.Set(k, v)
	}
	if a.config.Secret != "" && a.config.Provider == ProviderCustom {
		req.Header.Set(SignatureHeader, Sign(body, a.config.Secret))
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

func (a *Adapter) formatPayload(payload *Payload) ([]byte, error) {
	switch a.config.Provider {
	case ProviderSlack:
		return a.formatSlack(payload)
	case ProviderTeams:
		return a.formatTeams(payload)
	default:
		return json.Marshal(payload)
	}
}

func summary(payload *Payload) string {
	return fmt.Sprintf("Pricing version %d published (%s)", payload.Version, strings.Join(payload.Sections, ", "))
}

func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

func (a *Adapter) formatSlack(payload *Payload) ([]byte, error) {
	slack := map[string]interface{}{
		"attachments": []map[string]interface{}{
			{
				"color": "good",
				"title": summary(payload),
				"fields": []map[string]interface{}{
					{"title": "Source", "value": payload.Source, "short": true},
					{"title": "Cities", "value": fmt.Sprintf("%d", payload.Cities), "short": true},
				},
				"footer": "Content hash: " + shortHash(payload.ContentHash),
				"ts":     payload.Timestamp.Unix(),
			},
		},
	}
	return json.Marshal(slack)
}

func (a *Adapter) formatTeams(payload *Payload) ([]byte, error) {
	teams := map[string]interface{}{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"themeColor": "2E7D32",
		"summary":    summary(payload),
		"sections": []map[string]interface{}{
			{
				"activityTitle": summary(payload),
				"facts": []map[string]interface{}{
					{"name": "Source", "value": payload.Source},
					{"name": "Cities", "value": fmt.Sprintf("%d", payload.Cities)},
					{"name": "Content hash", "value": shortHash(payload.ContentHash)},
				},
			},
		},
	}
	return json.Marshal(teams)
}

// Sign returns the hex HMAC-SHA256 of payload under secret
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature verifies an incoming webhook signature
func VerifySignature(payload []byte, signature, secret string) bool {
	return hmac.Equal([]byte(signature), []byte(Sign(payload, secret)))
}
