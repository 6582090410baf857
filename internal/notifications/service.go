package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"filmloc/internal/config"
)

const userAgent = "filmloc/1.0"

// RunSummary describes one finished scheduler run.
type RunSummary struct {
	Sources       int
	FailedSources int
	Processed     int
	Failed        int
	Submitted     int
	Duration      time.Duration
}

// Service defines the notification surface used by the CLI.
type Service interface {
	NotifyRunCompleted(ctx context.Context, summary RunSummary) error
	NotifySourceFailed(ctx context.Context, source string, err error) error
	NotifyReviewBacklog(ctx context.Context, pending int) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg config.Notifications) Service {
	topic := strings.TrimSpace(cfg.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, summary RunSummary) error {
	duration := summary.Duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	data := payload{
		title: "filmloc - Run Complete",
		message: fmt.Sprintf("%d sources: %d records reconciled, %d sent for review in %s",
			summary.Sources, summary.Processed, summary.Submitted, duration),
		tags: []string{"filmloc", "run", "completed"},
	}
	if summary.FailedSources > 0 || summary.Failed > 0 {
		data.title = "filmloc - Run Complete (with errors)"
		data.message = fmt.Sprintf("%d of %d sources failed; %d records reconciled, %d failed, %d sent for review in %s",
			summary.FailedSources, summary.Sources, summary.Processed, summary.Failed, summary.Submitted, duration)
		data.tags = []string{"filmloc", "run", "warning"}
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySourceFailed(ctx context.Context, source string, err error) error {
	message := fmt.Sprintf("Source %s failed", strings.TrimSpace(source))
	if err != nil {
		message += ": " + strings.TrimSpace(err.Error())
	}
	return n.send(ctx, payload{
		title:    "filmloc - Source Failed",
		message:  message,
		tags:     []string{"filmloc", "source", "error"},
		priority: "high",
	})
}

func (n *ntfyService) NotifyReviewBacklog(ctx context.Context, pending int) error {
	if pending <= 0 {
		return nil
	}
	return n.send(ctx, payload{
		title:   "filmloc - Review Needed",
		message: fmt.Sprintf("%d filming location submissions awaiting review", pending),
		tags:    []string{"filmloc", "review"},
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "filmloc - Test",
		message:  "Notification system test",
		tags:     []string{"filmloc", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
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

type noopService struct{}

func (noopService) NotifyRunCompleted(context.Context, RunSummary) error    { return nil }
func (noopService) NotifySourceFailed(context.Context, string, error) error { return nil }
func (noopService) NotifyReviewBacklog(context.Context, int) error          { return nil }
func (noopService) TestNotification(context.Context) error                  { return nil }
