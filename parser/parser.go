// Package parser turns free-form Jules notification emails into structured
// records. Everything here is a pure function over the email's text: no I/O,
// no shared state, and no error returns — malformed input degrades to
// defaults instead of failing.
package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const (
	fallbackTitle   = "Jules Notification"
	fallbackSummary = "New notification from Jules"
	summaryLimit    = 300
)

// Email is the raw material extracted from a single Gmail message.
// All fields may be empty.
type Email struct {
	Subject  string
	Snippet  string
	BodyHTML string
	BodyText string
}

// Notification is the structured result of parsing one email.
type Notification struct {
	Status     Status
	Title      string
	Repo       string
	Summary    string // capped at 300 characters
	Link       string
	RawSubject string // verbatim subject, even when Title is cleaned
}

// Parse extracts a Notification from an email. It is total: any input,
// including one with every field empty, produces a fully populated result.
func Parse(e Email) Notification {
	body := e.BodyText
	if e.BodyHTML != "" {
		body = htmlToText(e.BodyHTML)
	}

	// Combined lowercased text used for classification and extraction.
	text := strings.ToLower(e.Subject + " " + e.Snippet + " " + body)

	return Notification{
		Status:     detectStatus(text),
		Title:      cleanSubject(e.Subject),
		Repo:       extractRepo(text, e.Subject),
		Summary:    buildSummary(e.Snippet, body),
		Link:       extractLink(e.BodyHTML, text),
		RawSubject: e.Subject,
	}
}

var blankLines = regexp.MustCompile(`\n{3,}`)

// nonVisibleTags are removed wholesale before text extraction; they never
// contribute visible content.
const nonVisibleTags = "script, style, head"

// htmlToText renders an HTML email body as plain text, one line per text
// segment, with runs of blank lines collapsed. If the markup cannot be
// parsed the raw HTML string is returned unmodified rather than failing.
func htmlToText(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}
	doc.Find(nonVisibleTags).Remove()

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				if b.Len() > 0 {
					b.WriteByte('\n')
				}
				b.WriteString(t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range doc.Selection.Nodes {
		walk(n)
	}

	text := blankLines.ReplaceAllString(b.String(), "\n\n")
	return strings.TrimSpace(text)
}

// subjectPrefixes are the product labels Jules prepends to subject lines.
// At most one is stripped, first match wins.
var subjectPrefixes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*\[Jules\]\s*`),
	regexp.MustCompile(`(?i)^\s*Jules:\s*`),
	regexp.MustCompile(`(?i)^\s*Google Jules\s*[-–—:]\s*`),
}

func cleanSubject(subject string) string {
	for _, re := range subjectPrefixes {
		if loc := re.FindStringIndex(subject); loc != nil {
			subject = subject[loc[1]:]
			break
		}
	}
	if s := strings.TrimSpace(subject); s != "" {
		return s
	}
	return fallbackTitle
}

// repoPatterns locate an owner/name reference in the scanning text, in
// priority order: explicit label, GitHub URL, "x/y repository" phrasing.
var repoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:repository|repo)[:\s]+([a-zA-Z0-9_.-]+/[a-zA-Z0-9_.-]+)`),
	regexp.MustCompile(`(?i)github\.com/([a-zA-Z0-9_.-]+/[a-zA-Z0-9_.-]+)`),
	regexp.MustCompile(`(?i)([a-zA-Z0-9_.-]+/[a-zA-Z0-9_.-]+)\s+repository`),
}

var bareRepo = regexp.MustCompile(`([a-zA-Z0-9_.-]+/[a-zA-Z0-9_.-]+)`)

func extractRepo(text, subject string) string {
	for _, re := range repoPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			// The token charset admits dots, so a sentence-ending period
			// rides along with the capture; drop it.
			return strings.TrimRight(m[1], ".")
		}
	}

	// Last resort: a bare owner/name token in the raw subject.
	if m := bareRepo.FindStringSubmatch(subject); m != nil {
		candidate := strings.TrimRight(m[1], ".")
		if strings.Contains(candidate, "/") && !strings.HasPrefix(candidate, "http") {
			return candidate
		}
	}
	return ""
}

var htmlEntity = regexp.MustCompile(`&\w+;`)

// buildSummary prefers the Gmail snippet, falling back to the first three
// non-empty body lines, then to a canned message. Always ≤ 300 characters.
func buildSummary(snippet, body string) string {
	if snippet != "" {
		s := strings.ReplaceAll(snippet, "&#39;", "'")
		s = strings.ReplaceAll(s, "&quot;", `"`)
		s = htmlEntity.ReplaceAllString(s, "")
		return truncate(s, summaryLimit)
	}

	if body != "" {
		var lines []string
		for _, line := range strings.Split(body, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
			if len(lines) == 3 {
				break
			}
		}
		return truncate(strings.Join(lines, " "), summaryLimit)
	}

	return fallbackSummary
}

// truncate hard-cuts s to at most max runes. No word-boundary awareness;
// a cut mid-word is accepted for notification previews.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

var urlPattern = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

// extractLink finds a link worth attaching to the push notification: the
// first anchor (document order) pointing at Jules or GitHub, or failing
// that the first such URL in the scanning text.
func extractLink(rawHTML, text string) string {
	if rawHTML != "" {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML)); err == nil {
			var found string
			doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
				href, _ := s.Attr("href")
				if isTaskLink(href) {
					found = href
					return false
				}
				return true
			})
			if found != "" {
				return found
			}
		}
	}

	for _, u := range urlPattern.FindAllString(text, -1) {
		if isTaskLink(u) {
			return u
		}
	}
	return ""
}

func isTaskLink(u string) bool {
	l := strings.ToLower(u)
	return strings.Contains(l, "jules") || strings.Contains(l, "github.com")
}
