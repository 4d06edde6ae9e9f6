// Package gmail wraps the Gmail API for the notification monitor: OAuth
// setup, searching for Jules emails, fetching their content, and cleaning
// them up once a push notification has gone out.
package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const (
	tokenFile        = "token.json"
	credentialsFile  = "credentials.json"
	user             = "me"
	maxSearchResults = 20
)

// Cleanup actions applied to an email after its notification is delivered.
const (
	ActionTrash   = "trash"
	ActionArchive = "archive"
	ActionRead    = "read"
)

type Client struct {
	srv *gmailapi.Service
}

// NewClient authenticates against the Gmail API and returns a client.
// Trash and label mutation require the full mail scope, not readonly.
func NewClient(ctx context.Context) (*Client, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}
	oauthConfig, err := google.ConfigFromJSON(b, gmailapi.MailGoogleComScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	httpClient, err := getOAuthClient(ctx, oauthConfig)
	if err != nil {
		return nil, err
	}
	srv, err := gmailapi.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}
	return &Client{srv: srv}, nil
}

func getOAuthClient(ctx context.Context, config *oauth2.Config) (*http.Client, error) {
	tok, err := tokenFromFile(tokenFile)
	if err != nil {
		tok, err = getTokenFromWeb(ctx, config)
		if err != nil {
			return nil, err
		}
		if err := saveToken(tokenFile, tok); err != nil {
			return nil, err
		}
	}
	return config.Client(ctx, tok), nil
}

func getTokenFromWeb(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Go to the following link in your browser then type the "+
		"authorization code: \n%v\n", authURL)
	var authCode string
	if _, err := fmt.Scan(&authCode); err != nil {
		return nil, fmt.Errorf("unable to read authorization code: %w", err)
	}
	tok, err := config.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token from web: %w", err)
	}
	return tok, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func saveToken(path string, token *oauth2.Token) error {
	slog.Info("saving oauth token", "path", path)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to save oauth token: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// Search returns refs for messages matching the Gmail query, newest first.
func (c *Client) Search(ctx context.Context, query string) ([]MessageRef, error) {
	list, err := c.srv.Users.Messages.List(user).
		Q(query).
		MaxResults(maxSearchResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("searching messages: %w", err)
	}
	refs := make([]MessageRef, 0, len(list.Messages))
	for _, m := range list.Messages {
		refs = append(refs, MessageRef{ID: m.Id, ThreadID: m.ThreadId})
	}
	return refs, nil
}

// Fetch retrieves the full content of a message.
func (c *Client) Fetch(ctx context.Context, id string) (*Email, error) {
	msg, err := c.srv.Users.Messages.Get(user, id).
		Format("full").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("fetching message %s: %w", id, err)
	}

	email := &Email{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Subject:  "(no subject)",
		Snippet:  msg.Snippet,
	}
	if msg.Payload != nil {
		for _, header := range msg.Payload.Headers {
			switch header.Name {
			case "Subject":
				email.Subject = header.Value
			case "From":
				email.From = header.Value
			case "Date":
				email.Date = parseDate(header.Value)
			}
		}
		email.BodyHTML, email.BodyText = extractBody(msg.Payload)
	}
	return email, nil
}

var dateLayouts = []string{
	time.RFC1123Z,
	"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 -0700",
	time.RFC1123,
}

func parseDate(value string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	slog.Warn("could not parse date header", "value", value)
	return time.Time{}
}

// extractBody walks the MIME tree collecting the HTML and plain-text bodies.
// When a part repeats, the last one of each type wins.
func extractBody(payload *gmailapi.MessagePart) (html, text string) {
	if payload.Body != nil && payload.Body.Data != "" {
		if decoded, err := decodeBody(payload.Body.Data); err == nil {
			mime := strings.ToLower(payload.MimeType)
			switch {
			case strings.Contains(mime, "html"):
				html = decoded
			case strings.Contains(mime, "plain"):
				text = decoded
			}
		} else {
			slog.Warn("could not decode message part", "mimeType", payload.MimeType, "error", err)
		}
	}
	for _, part := range payload.Parts {
		partHTML, partText := extractBody(part)
		if partHTML != "" {
			html = partHTML
		}
		if partText != "" {
			text = partText
		}
	}
	return html, text
}

func decodeBody(data string) (string, error) {
	// Gmail emits base64url, sometimes without padding.
	b, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		b, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return "", err
		}
	}
	return string(b), nil
}

// Cleanup applies the configured post-notification action to a message.
// Unknown actions fall back to trashing, matching the monitor's default.
func (c *Client) Cleanup(ctx context.Context, id, action string) error {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case ActionTrash:
		return c.trash(ctx, id)
	case ActionArchive:
		return c.removeLabel(ctx, id, "INBOX")
	case ActionRead:
		return c.removeLabel(ctx, id, "UNREAD")
	default:
		slog.Warn("unknown cleanup action, defaulting to trash", "action", action)
		return c.trash(ctx, id)
	}
}

func (c *Client) trash(ctx context.Context, id string) error {
	if _, err := c.srv.Users.Messages.Trash(user, id).Context(ctx).Do(); err != nil {
		return fmt.Errorf("trashing message %s: %w", id, err)
	}
	return nil
}

func (c *Client) removeLabel(ctx context.Context, id, label string) error {
	req := &gmailapi.ModifyMessageRequest{RemoveLabelIds: []string{label}}
	if _, err := c.srv.Users.Messages.Modify(user, id, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("removing label %s from message %s: %w", label, id, err)
	}
	return nil
}
