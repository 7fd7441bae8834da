package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cadence/internal/config"
)

const userAgent = "Cadence-Go/0.1.0"

// Sender delivers a single notification payload to the user's device.
type Sender interface {
	Send(ctx context.Context, content Content) error
	SendError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewSender builds a sender backed by ntfy when configured. When no ntfy
// topic is configured, a noop implementation is returned.
func NewSender(cfg *config.Config) Sender {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopSender{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfySender{
		endpoint:   topic,
		client:     &http.Client{Timeout: timeout},
		sendErrors: cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfySender struct {
	endpoint   string
	client     *http.Client
	sendErrors bool
}

func (n *ntfySender) Send(ctx context.Context, content Content) error {
	data := payload{
		title:   strings.TrimSpace(content.Title),
		message: strings.TrimSpace(content.Body),
		tags:    []string{"cadence", "reminder"},
	}
	if data.title == "" {
		data.title = "Cadence - Reminder"
	}
	return n.send(ctx, data)
}

func (n *ntfySender) SendError(ctx context.Context, err error, contextLabel string) error {
	if !n.sendErrors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Cadence - Error",
		message:  builder.String(),
		tags:     []string{"cadence", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfySender) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Cadence - Test",
		message:  "Notification system test",
		tags:     []string{"cadence", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfySender) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopSender struct{}

func (noopSender) Send(context.Context, Content) error            { return nil }
func (noopSender) SendError(context.Context, error, string) error { return nil }
func (noopSender) TestNotification(context.Context) error         { return nil }
