// Package monitor runs the poll → parse → push → cleanup pipeline: it asks
// the mail store for new Jules emails, turns each one into a structured
// notification, publishes it, and disposes of the processed email.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amclean/jules-notify/config"
	"github.com/amclean/jules-notify/gmail"
	"github.com/amclean/jules-notify/parser"
)

// MailStore is the mailbox capability the monitor depends on, satisfied by
// *gmail.Client.
type MailStore interface {
	Search(ctx context.Context, query string) ([]gmail.MessageRef, error)
	Fetch(ctx context.Context, id string) (*gmail.Email, error)
	Cleanup(ctx context.Context, id, action string) error
}

// Pusher is the push-delivery capability, satisfied by *notify.Notifier.
type Pusher interface {
	Send(ctx context.Context, title, message string, status parser.Status, link string) error
}

// Monitor ties the mail store, parser, and pusher into one polling loop.
type Monitor struct {
	cfg       *config.Config
	filters   *config.Manager
	store     MailStore
	pusher    Pusher
	processed int
}

func New(cfg *config.Config, filters *config.Manager, store MailStore, pusher Pusher) *Monitor {
	return &Monitor{cfg: cfg, filters: filters, store: store, pusher: pusher}
}

// Processed returns the number of emails handled this session.
func (m *Monitor) Processed() int {
	return m.processed
}

// CheckOnce polls the mail store a single time and pipelines every match.
// An email is cleaned up only after its notification is delivered; a failed
// push leaves it in place for the next cycle.
func (m *Monitor) CheckOnce(ctx context.Context) (int, error) {
	refs, err := m.store.Search(ctx, m.cfg.GmailQuery)
	if err != nil {
		return 0, fmt.Errorf("searching for emails: %w", err)
	}
	if len(refs) == 0 {
		slog.Debug("no new emails")
		return 0, nil
	}
	slog.Info("found emails to process", "count", len(refs))

	processed := 0
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return processed, err
		}
		if m.processOne(ctx, ref.ID) {
			processed++
			m.processed++
		}
	}
	slog.Info("poll cycle complete", "processed", processed, "found", len(refs))
	return processed, nil
}

func (m *Monitor) processOne(ctx context.Context, id string) bool {
	email, err := m.store.Fetch(ctx, id)
	if err != nil {
		slog.Warn("could not fetch email, skipping", "id", id, "error", err)
		return false
	}

	if m.filters != nil && m.filters.ShouldIgnore(email.From, email.Subject) {
		slog.Info("email matches ignore filter, skipping", "id", id, "from", email.From)
		return false
	}

	n := parser.Parse(parser.Email{
		Subject:  email.Subject,
		Snippet:  email.Snippet,
		BodyHTML: email.BodyHTML,
		BodyText: email.BodyText,
	})
	slog.Info("parsed email", "id", id, "status", n.Status, "title", n.Title)

	if err := m.pusher.Send(ctx, n.Title, buildMessage(n), n.Status, n.Link); err != nil {
		slog.Warn("push failed, email left for next cycle", "id", id, "error", err)
		return false
	}

	if err := m.store.Cleanup(ctx, id, m.cfg.EmailAction); err != nil {
		slog.Warn("cleanup failed", "id", id, "action", m.cfg.EmailAction, "error", err)
	}
	return true
}

// buildMessage renders the notification body from a parsed email.
func buildMessage(n parser.Notification) string {
	var parts []string
	if n.Repo != "" {
		parts = append(parts, "📦 Repo: "+n.Repo)
	}
	if n.Summary != "" {
		parts = append(parts, n.Summary)
	}
	if n.Link != "" {
		parts = append(parts, "\n🔗 "+n.Link)
	}
	if len(parts) == 0 {
		return "New update from Jules"
	}
	return strings.Join(parts, "\n")
}

// Run polls immediately, then on every tick of the configured interval,
// until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	slog.Info("monitor started",
		"query", m.cfg.GmailQuery,
		"interval", m.cfg.PollInterval,
		"action", m.cfg.EmailAction,
		"topic", m.cfg.NtfyTopic)

	ticker := time.NewTicker(m.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := m.CheckOnce(ctx); err != nil && ctx.Err() == nil {
			slog.Error("check failed, will retry next cycle", "error", err)
		}
		select {
		case <-ctx.Done():
			slog.Info("monitor stopping", "processed", m.processed)
			return
		case <-ticker.C:
		}
	}
}
