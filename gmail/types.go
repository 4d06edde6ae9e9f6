package gmail

import "time"

// MessageRef identifies a message returned by a search, before fetching.
type MessageRef struct {
	ID       string
	ThreadID string
}

// Email holds the content of a fetched Gmail message.
type Email struct {
	ID       string
	ThreadID string
	From     string
	Date     time.Time
	Subject  string
	Snippet  string
	BodyHTML string
	BodyText string
}
