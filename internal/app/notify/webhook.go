package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/taskforge/taskforge/internal/app/core"
	"github.com/taskforge/taskforge/internal/app/metrics"
	"github.com/taskforge/taskforge/pkg/logger"
)

// WebhookPoster posts best-effort JSON summaries of lifecycle events to an
// external endpoint. Every failure is logged and swallowed; webhook delivery
// never fails the caller. A nil poster is valid and does nothing.
type WebhookPoster struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
	log     *logger.Logger
}

// NewWebhookPoster creates a poster for the given URL. Returns nil when no
// URL is configured, which callers may use directly.
func NewWebhookPoster(url string, log *logger.Logger) *WebhookPoster {
	if url == "" {
		return nil
	}
	if log == nil {
		log = logger.NewDefault("webhook")
	}
	return &WebhookPoster{
		url:     url,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(5), 10),
		log:     log,
	}
}

// Post sends one event summary. Rate-limited; excess events are dropped with
// a log line rather than queued.
func (p *WebhookPoster) Post(ctx context.Context, event string, payload map[string]any) {
	if p == nil {
		return
	}
	if !p.limiter.Allow() {
		p.log.WithField("event", event).Warn("webhook rate limit exceeded, dropping event")
		return
	}

	body, err := json.Marshal(map[string]any{
		"event":   event,
		"payload": payload,
		"sent_at": time.Now().UTC(),
	})
	if err != nil {
		p.fail(event, err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		p.fail(event, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		p.fail(event, err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	if resp.StatusCode >= 400 {
		p.fail(event, fmt.Errorf("status %d", resp.StatusCode))
		return
	}
	metrics.RecordWebhookPost(true)
}

func (p *WebhookPoster) fail(event string, err error) {
	metrics.RecordWebhookPost(false)
	p.log.WithError(core.NewWebhookError(p.url, err)).
		WithField("event", event).
		Warn("webhook post failed")
}
