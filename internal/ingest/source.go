package ingest

import (
	"context"
	"time"
)

// Message is one mail item fetched from a provider, normalized to what
// tracking needs.
type Message struct {
	ExternalID     string
	ConversationID string
	From           string
	Recipients     []string
	Subject        string
	BodyPreview    string
	HasAttachments bool
	ReceivedAt     time.Time
	// Outgoing is true for messages found in the mailbox's sent folder.
	Outgoing bool
}

// MailSource fetches messages for one mailbox received at or after since.
// Implementations cover Microsoft Graph and IMAP.
type MailSource interface {
	Fetch(ctx context.Context, mailbox string, since time.Time) ([]Message, error)
}
