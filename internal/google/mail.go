package google

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/hartono/hr-screener/internal/screening"

	"google.golang.org/api/gmail/v1"

	"go.uber.org/zap"
)

const (
	mailUser    = "me"
	unreadLabel = "UNREAD"
)

// Mail wraps the Gmail client behind the mailbox operations of the workflow.
type Mail struct {
	srv    *gmail.Service
	logger *zap.Logger
}

// MessageInfo is one mailbox entry of the application thread listing.
type MessageInfo struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	From    string `json:"from"`
	Unread  bool   `json:"unread"`
}

// ListUnread returns the IDs of all messages matching the query.
func (m *Mail) ListUnread(ctx context.Context, query string) ([]string, error) {
	resp, err := m.srv.Users.Messages.List(mailUser).Q(query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, msg := range resp.Messages {
		ids = append(ids, msg.Id)
	}

	return ids, nil
}

// Attachments returns every attachment part of the message, nested multipart
// parts included.
func (m *Mail) Attachments(ctx context.Context, messageID string) ([]screening.Attachment, error) {
	msg, err := m.srv.Users.Messages.Get(mailUser, messageID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetching message %s: %w", messageID, err)
	}

	if msg.Payload == nil {
		return nil, nil
	}

	return collectAttachments(msg.Payload, nil), nil
}

func collectAttachments(part *gmail.MessagePart, acc []screening.Attachment) []screening.Attachment {
	if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" {
		acc = append(acc, screening.Attachment{
			ID:       part.Body.AttachmentId,
			Filename: part.Filename,
			MimeType: part.MimeType,
		})
	}

	for _, child := range part.Parts {
		acc = collectAttachments(child, acc)
	}

	return acc
}

// AttachmentData downloads and decodes one attachment body.
func (m *Mail) AttachmentData(ctx context.Context, messageID, attachmentID string) ([]byte, error) {
	att, err := m.srv.Users.Messages.Attachments.Get(mailUser, messageID, attachmentID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("fetching attachment: %w", err)
	}

	data, err := base64.URLEncoding.DecodeString(att.Data)
	if err != nil {
		return nil, fmt.Errorf("decoding attachment: %w", err)
	}

	return data, nil
}

// MarkRead removes the unread label. Removing it twice is a no-op, so the
// call is safe to repeat.
func (m *Mail) MarkRead(ctx context.Context, messageID string) error {
	req := &gmail.ModifyMessageRequest{RemoveLabelIds: []string{unreadLabel}}
	if _, err := m.srv.Users.Messages.Modify(mailUser, messageID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("removing unread label from %s: %w", messageID, err)
	}

	return nil
}

// Send delivers a plain-text reply from the authenticated mailbox.
func (m *Mail) Send(ctx context.Context, to, subject, body string) error {
	var raw strings.Builder
	fmt.Fprintf(&raw, "To: %s\r\n", to)
	fmt.Fprintf(&raw, "Subject: %s\r\n", subject)
	raw.WriteString("MIME-Version: 1.0\r\n")
	raw.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	raw.WriteString(body)

	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString([]byte(raw.String()))}
	if _, err := m.srv.Users.Messages.Send(mailUser, msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}

	m.logger.Debug("reply sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// ListAll returns every message matching the query with its read status, for
// the mailbox inspection endpoint.
func (m *Mail) ListAll(ctx context.Context, query string) ([]MessageInfo, error) {
	resp, err := m.srv.Users.Messages.List(mailUser).Q(query).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}

	infos := make([]MessageInfo, 0, len(resp.Messages))
	for _, stub := range resp.Messages {
		msg, err := m.srv.Users.Messages.Get(mailUser, stub.Id).
			Format("metadata").
			MetadataHeaders("Subject", "From").
			Context(ctx).Do()
		if err != nil {
			m.logger.Warn("fetching message metadata", zap.String("message_id", stub.Id), zap.Error(err))
			continue
		}

		info := MessageInfo{ID: msg.Id}
		for _, label := range msg.LabelIds {
			if label == unreadLabel {
				info.Unread = true
				break
			}
		}

		if msg.Payload != nil {
			for _, header := range msg.Payload.Headers {
				switch header.Name {
				case "Subject":
					info.Subject = header.Value
				case "From":
					info.From = header.Value
				}
			}
		}

		infos = append(infos, info)
	}

	return infos, nil
}
