package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"slatrack-backend/pkg/graph"
)

// GraphSource reads mailboxes through the Microsoft Graph API. The
// application credentials grant access to every company mailbox.
type GraphSource struct {
	client *graph.Client
}

func NewGraphSource(client *graph.Client) *GraphSource {
	return &GraphSource{client: client}
}

func (s *GraphSource) Fetch(ctx context.Context, mailbox string, since time.Time) ([]Message, error) {
	var messages []Message

	inbox, err := s.client.ListMessages(ctx, mailbox, "inbox", since)
	if err != nil {
		return nil, fmt.Errorf("listing inbox of %s: %w", mailbox, err)
	}
	for _, m := range inbox {
		messages = append(messages, fromGraphMessage(m, false))
	}

	sent, err := s.client.ListMessages(ctx, mailbox, "sentitems", since)
	if err != nil {
		return nil, fmt.Errorf("listing sent items of %s: %w", mailbox, err)
	}
	for _, m := range sent {
		messages = append(messages, fromGraphMessage(m, true))
	}

	return messages, nil
}

func fromGraphMessage(m graph.Message, outgoing bool) Message {
	from := ""
	if m.From != nil {
		from = strings.ToLower(m.From.EmailAddress.Address)
	}

	recipients := make([]string, 0, len(m.ToRecipients))
	for _, r := range m.ToRecipients {
		recipients = append(recipients, strings.ToLower(r.EmailAddress.Address))
	}

	return Message{
		ExternalID:     m.ID,
		ConversationID: m.ConversationID,
		From:           from,
		Recipients:     recipients,
		Subject:        m.Subject,
		BodyPreview:    m.BodyPreview,
		HasAttachments: m.HasAttachments,
		ReceivedAt:     m.ReceivedDateTime,
		Outgoing:       outgoing,
	}
}
