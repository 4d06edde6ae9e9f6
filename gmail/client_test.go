package gmail

import (
	"encoding/base64"
	"testing"

	gmailapi "google.golang.org/api/gmail/v1"
)

func b64(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestExtractBody_Multipart(t *testing.T) {
	payload := &gmailapi.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmailapi.MessagePart{
			{
				MimeType: "text/plain",
				Body:     &gmailapi.MessagePartBody{Data: b64("plain version")},
			},
			{
				MimeType: "text/html",
				Body:     &gmailapi.MessagePartBody{Data: b64("<p>html version</p>")},
			},
		},
	}

	html, text := extractBody(payload)
	if html != "<p>html version</p>" {
		t.Errorf("html = %q", html)
	}
	if text != "plain version" {
		t.Errorf("text = %q", text)
	}
}

func TestExtractBody_Nested(t *testing.T) {
	payload := &gmailapi.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmailapi.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*gmailapi.MessagePart{
					{
						MimeType: "text/plain",
						Body:     &gmailapi.MessagePartBody{Data: b64("inner text")},
					},
				},
			},
		},
	}

	html, text := extractBody(payload)
	if html != "" {
		t.Errorf("html = %q, want empty", html)
	}
	if text != "inner text" {
		t.Errorf("text = %q", text)
	}
}

func TestExtractBody_UnpaddedBase64(t *testing.T) {
	raw := base64.RawURLEncoding.EncodeToString([]byte("no padding here!"))
	payload := &gmailapi.MessagePart{
		MimeType: "text/plain",
		Body:     &gmailapi.MessagePartBody{Data: raw},
	}
	_, text := extractBody(payload)
	if text != "no padding here!" {
		t.Errorf("text = %q", text)
	}
}

func TestExtractBody_BadData(t *testing.T) {
	payload := &gmailapi.MessagePart{
		MimeType: "text/plain",
		Body:     &gmailapi.MessagePartBody{Data: "!!! not base64 !!!"},
	}
	html, text := extractBody(payload)
	if html != "" || text != "" {
		t.Errorf("got %q/%q, want empty on decode failure", html, text)
	}
}

func TestParseDate(t *testing.T) {
	tests := []string{
		"Mon, 02 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",
		"2 Jan 2006 15:04:05 -0700",
	}
	for _, value := range tests {
		if got := parseDate(value); got.IsZero() {
			t.Errorf("parseDate(%q) returned zero time", value)
		}
	}
	if got := parseDate("not a date"); !got.IsZero() {
		t.Errorf("parseDate garbage = %v, want zero", got)
	}
}
