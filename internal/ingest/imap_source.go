package ingest

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
	"go.uber.org/zap"
)

const previewLimit = 512

// IMAPSource reads one account over IMAP. Unlike Graph application
// credentials, an IMAP login only reaches its own mailbox, so fetches for
// any other mailbox return nothing.
type IMAPSource struct {
	server     string
	port       int
	email      string
	password   string
	sentFolder string
	logger     *zap.Logger
}

func NewIMAPSource(server string, port int, email, password string, logger *zap.Logger) *IMAPSource {
	return &IMAPSource{
		server:     server,
		port:       port,
		email:      email,
		password:   password,
		sentFolder: "Sent",
		logger:     logger,
	}
}

func (s *IMAPSource) Fetch(ctx context.Context, mailbox string, since time.Time) ([]Message, error) {
	if !strings.EqualFold(mailbox, s.email) {
		s.logger.Debug("skipping mailbox outside IMAP account", zap.String("mailbox", mailbox))
		return nil, nil
	}

	c, err := client.DialTLS(fmt.Sprintf("%s:%d", s.server, s.port), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}
	defer c.Logout()

	if err := c.Login(s.email, s.password); err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}

	var messages []Message

	inbox, err := s.fetchFolder(c, "INBOX", since, false)
	if err != nil {
		return nil, err
	}
	messages = append(messages, inbox...)

	sent, err := s.fetchFolder(c, s.sentFolder, since, true)
	if err != nil {
		// Sent folder names vary between providers. Inbound data alone is
		// still useful, so a missing sent folder is not fatal.
		s.logger.Warn("failed to fetch sent folder",
			zap.String("folder", s.sentFolder),
			zap.Error(err))
	} else {
		messages = append(messages, sent...)
	}

	return messages, nil
}

func (s *IMAPSource) fetchFolder(c *client.Client, folder string, since time.Time, outgoing bool) ([]Message, error) {
	if _, err := c.Select(folder, true); err != nil {
		return nil, fmt.Errorf("failed to select %s: %w", folder, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Since = since
	ids, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("search in %s failed: %w", folder, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{
		imap.FetchEnvelope,
		imap.FetchInternalDate,
		imap.FetchBodyStructure,
		section.FetchItem(),
	}

	fetched := make(chan *imap.Message, 16)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, items, fetched)
	}()

	var messages []Message
	for msg := range fetched {
		parsed, ok := s.parseMessage(msg, section, outgoing)
		if ok {
			messages = append(messages, parsed)
		}
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetch in %s failed: %w", folder, err)
	}
	return messages, nil
}

func (s *IMAPSource) parseMessage(msg *imap.Message, section *imap.BodySectionName, outgoing bool) (Message, bool) {
	env := msg.Envelope
	if env == nil || env.MessageId == "" {
		return Message{}, false
	}

	from := ""
	if len(env.From) > 0 {
		from = strings.ToLower(env.From[0].Address())
	}

	recipients := make([]string, 0, len(env.To))
	for _, to := range env.To {
		recipients = append(recipients, strings.ToLower(to.Address()))
	}

	receivedAt := env.Date
	if receivedAt.IsZero() {
		receivedAt = msg.InternalDate
	}

	// Replies carry the thread in In-Reply-To; thread roots start their
	// own conversation under their message id.
	conversationID := env.InReplyTo
	if conversationID == "" {
		conversationID = env.MessageId
	}

	preview, attachments := s.readBody(msg.GetBody(section))
	if !attachments && msg.BodyStructure != nil {
		attachments = hasAttachmentParts(msg.BodyStructure)
	}

	return Message{
		ExternalID:     env.MessageId,
		ConversationID: conversationID,
		From:           from,
		Recipients:     recipients,
		Subject:        env.Subject,
		BodyPreview:    preview,
		HasAttachments: attachments,
		ReceivedAt:     receivedAt,
		Outgoing:       outgoing,
	}, true
}

// readBody extracts a plain-text preview and notes attachment parts.
func (s *IMAPSource) readBody(r io.Reader) (string, bool) {
	if r == nil {
		return "", false
	}

	mr, err := mail.CreateReader(r)
	if err != nil {
		return "", false
	}

	preview := ""
	attachments := false
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		switch header := part.Header.(type) {
		case *mail.InlineHeader:
			if preview != "" {
				continue
			}
			contentType, _, _ := header.ContentType()
			if contentType == "text/plain" {
				body, err := io.ReadAll(io.LimitReader(part.Body, previewLimit))
				if err == nil {
					preview = strings.TrimSpace(string(body))
				}
			}
		case *mail.AttachmentHeader:
			attachments = true
		}
	}
	return preview, attachments
}

func hasAttachmentParts(bs *imap.BodyStructure) bool {
	if strings.EqualFold(bs.Disposition, "attachment") {
		return true
	}
	for _, part := range bs.Parts {
		if hasAttachmentParts(part) {
			return true
		}
	}
	return false
}
