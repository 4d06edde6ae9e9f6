// Package notify publishes push notifications to an ntfy topic. Each task
// status maps to a fixed priority, tag set, and emoji so the phone-side
// rendering reflects the outcome at a glance.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/amclean/jules-notify/parser"
)

const requestTimeout = 10 * time.Second

// presentation holds the ntfy metadata attached to one status.
type presentation struct {
	priority string
	tags     string
	emoji    string
}

// statusPresentation is immutable process-wide configuration; entries are
// read, never written, after init.
var statusPresentation = map[parser.Status]presentation{
	parser.StatusCompleted:   {priority: "default", tags: "white_check_mark,jules", emoji: "✅"},
	parser.StatusFailed:      {priority: "high", tags: "x,jules,warning", emoji: "❌"},
	parser.StatusNeedsReview: {priority: "high", tags: "eyes,jules", emoji: "👀"},
	parser.StatusInProgress:  {priority: "low", tags: "hourglass,jules", emoji: "⏳"},
	parser.StatusCancelled:   {priority: "default", tags: "no_entry_sign,jules", emoji: "🚫"},
	parser.StatusUnknown:     {priority: "default", tags: "bell,jules", emoji: "🔔"},
}

// Notifier publishes to a single ntfy topic.
type Notifier struct {
	url    string
	client *http.Client
}

// New returns a Notifier for the given topic on the given ntfy server.
func New(topic, server string) *Notifier {
	return &Notifier{
		url:    strings.TrimRight(server, "/") + "/" + topic,
		client: &http.Client{Timeout: requestTimeout},
	}
}

// Send publishes one notification. The status selects priority and tags;
// link, when non-empty, becomes the click target and a view action.
func (n *Notifier) Send(ctx context.Context, title, message string, status parser.Status, link string) error {
	p, ok := statusPresentation[status]
	if !ok {
		p = statusPresentation[parser.StatusUnknown]
	}

	// The emoji goes in the UTF-8 body; headers must stay header-safe.
	body := p.emoji + " " + message

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, strings.NewReader(body))
	if err != nil {
		return fmt.Errorf("building ntfy request: %w", err)
	}
	req.Header.Set("Title", headerSafe("Jules: "+title))
	req.Header.Set("Priority", p.priority)
	req.Header.Set("Tags", p.tags)
	if link != "" {
		req.Header.Set("Click", link)
		req.Header.Set("Actions", "view, Open in Browser, "+link)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to ntfy: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("posting to ntfy: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// SendTest publishes a canned notification to verify topic and server setup.
func (n *Notifier) SendTest(ctx context.Context) error {
	return n.Send(ctx,
		"Connection Test",
		"Jules Notifier is connected and working!\nYou will receive notifications here when Jules updates arrive.",
		parser.StatusCompleted,
		"")
}

// headerSafe strips characters that cannot travel in an HTTP header value.
// Emoji and other non-ASCII text belong in the notification body.
func headerSafe(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r <= unicode.MaxASCII && !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
