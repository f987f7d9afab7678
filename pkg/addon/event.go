package addon

import (
	"mail2slack/pkg/cards"
	"mail2slack/pkg/mailbody"
)

// Event is one UI event posted by the add-on host.
type Event struct {
	Action    string          `json:"action"`
	User      string          `json:"user"`
	FormInput cards.FormInput `json:"form_input"`
	Message   Message         `json:"message"`
}

// Message is the email the add-on is opened on.
type Message struct {
	ID      string `json:"id,omitempty"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body,omitempty"`
	// Raw is the RFC 5322 source, used when Body is empty.
	Raw string `json:"raw,omitempty"`
}

// Text returns the email body to post.
func (m Message) Text() string {
	if m.Body != "" {
		return m.Body
	}
	if m.Raw != "" {
		return mailbody.Body(m.Raw)
	}
	return ""
}
