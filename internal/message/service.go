package message

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"chatdesk/internal/common"
	"chatdesk/internal/config"
	"chatdesk/internal/conversation"
	"chatdesk/internal/dbmysql"
)

// AttachmentInput is either a freshly uploaded file (carrying a
// storage ref) or a reference to a previously stored one.
type AttachmentInput struct {
	Type       common.AttachmentType
	Name       string
	Size       int64
	MimeType   string
	URL        string
	Preview    string
	StorageRef string
}

// ReplyInput names the message a new one replies to.
type ReplyInput struct {
	MessageID string
}

type CreatePayload struct {
	ConversationID string
	AuthorType     common.Role
	AuthorID       string
	Content        string
	Attachments    []AttachmentInput
	ReplyTo        *ReplyInput
	QuickReplies   []common.QuickReply
}

// AttachmentEdit replaces a message's attachment set: keep is a list of
// URLs intersected with the existing set, uploads are appended.
type AttachmentEdit struct {
	Keep    []string
	Uploads []AttachmentInput
}

type EditPayload struct {
	MessageID   string
	Content     *string
	Attachments *AttachmentEdit
}

type Service interface {
	Create(ctx context.Context, payload CreatePayload) (*dbmysql.Message, error)
	Edit(ctx context.Context, payload EditPayload) (*dbmysql.Message, error)
	ToggleReaction(ctx context.Context, messageID, emoji string, actor common.Role) (*dbmysql.Message, error)
	Delete(ctx context.Context, messageID string) (*dbmysql.Message, error)
	History(ctx context.Context, conversationID string, limit, skip int) ([]*dbmysql.Message, error)
}

type service struct {
	repo     Repository
	convRepo conversation.Repository
	storage  common.AttachmentStorage
	limits   config.MessageConfig
}

func NewService(repo Repository, convRepo conversation.Repository, storage common.AttachmentStorage, limits config.MessageConfig) Service {
	return &service{repo: repo, convRepo: convRepo, storage: storage, limits: limits}
}

func (s *service) Create(ctx context.Context, payload CreatePayload) (*dbmysql.Message, error) {
	if err := common.ValidateID(payload.ConversationID, "conversation"); err != nil {
		s.rollbackUploads(ctx, payload.Attachments)
		return nil, err
	}

	attachments := normalizeAttachments(payload.Attachments)

	if len(payload.Content) > s.limits.MaxTextLength {
		s.rollbackUploads(ctx, payload.Attachments)
		return nil, common.LimitExceeded("message exceeds maximum length of %d characters", s.limits.MaxTextLength)
	}
	if len(attachments) > s.limits.MaxAttachments {
		s.rollbackUploads(ctx, payload.Attachments)
		return nil, common.LimitExceeded("a maximum of %d attachments is allowed per message", s.limits.MaxAttachments)
	}
	if strings.TrimSpace(payload.Content) == "" && len(attachments) == 0 && payload.AuthorType != common.RoleSystem {
		return nil, common.InvalidArgument("message needs content or attachments")
	}

	conv, err := s.convRepo.FindByID(ctx, payload.ConversationID)
	if err != nil {
		s.rollbackUploads(ctx, payload.Attachments)
		return nil, err
	}

	now := time.Now().UTC()
	msg := &dbmysql.Message{
		ID:             common.NewID(),
		ConversationID: conv.ID,
		AuthorType:     payload.AuthorType,
		AuthorID:       payload.AuthorID,
		Content:        payload.Content,
		Attachments:    attachments,
		QuickReplies:   payload.QuickReplies,
		CreatedAt:      now,
	}
	s.initDeliveryState(msg, now)

	if snapshot, err := s.buildReplySnapshot(ctx, payload.ReplyTo); err == nil && snapshot != nil {
		msg.ReplyTo = dbmysql.ReplyJSON(snapshot)
	}

	if err := s.repo.Save(ctx, msg); err != nil {
		s.rollbackUploads(ctx, payload.Attachments)
		return nil, err
	}

	// The author just read their own message; the other side gains an
	// unread message. The increment is an atomic field update.
	if payload.AuthorType.IsParticipant() {
		if err := s.convRepo.IncrementUnread(ctx, conv.ID, payload.AuthorType.Other()); err != nil {
			return nil, err
		}
	}
	if err := s.convRepo.UpdateLastMessage(ctx, conv.ID, deriveSnippet(msg), now); err != nil {
		return nil, err
	}
	return msg, nil
}

// initDeliveryState stamps the author's own side read at creation; the
// other side starts at sent.
func (s *service) initDeliveryState(msg *dbmysql.Message, now time.Time) {
	msg.ManagerStatus = common.StatusSent
	msg.CustomerStatus = common.StatusSent
	switch msg.AuthorType {
	case common.RoleManager:
		msg.SetStatusFor(common.RoleManager, common.StatusRead, now)
	case common.RoleCustomer:
		msg.SetStatusFor(common.RoleCustomer, common.StatusRead, now)
	case common.RoleSystem:
		msg.SetStatusFor(common.RoleManager, common.StatusRead, now)
		msg.SetStatusFor(common.RoleCustomer, common.StatusRead, now)
	}
}

func (s *service) buildReplySnapshot(ctx context.Context, reply *ReplyInput) (*dbmysql.ReplySnapshot, error) {
	if reply == nil || reply.MessageID == "" {
		return nil, nil
	}
	target, err := s.repo.FindByID(ctx, reply.MessageID)
	if err != nil {
		// A dangling reply target degrades to a plain message.
		return nil, err
	}
	return &dbmysql.ReplySnapshot{
		MessageID:  target.ID,
		AuthorType: target.AuthorType,
		Content:    truncate(target.Content, snippetLimit),
		HasMedia:   target.HasMedia(),
	}, nil
}

func (s *service) Edit(ctx context.Context, payload EditPayload) (*dbmysql.Message, error) {
	if err := common.ValidateID(payload.MessageID, "message"); err != nil {
		return nil, err
	}
	msg, err := s.repo.FindByID(ctx, payload.MessageID)
	if err != nil {
		return nil, err
	}

	if payload.Content != nil {
		if len(*payload.Content) > s.limits.MaxTextLength {
			return nil, common.LimitExceeded("message exceeds maximum length of %d characters", s.limits.MaxTextLength)
		}
		msg.Content = *payload.Content
	}

	if payload.Attachments != nil {
		retained := retainAttachments(msg.Attachments, payload.Attachments.Keep)
		uploads := normalizeAttachments(payload.Attachments.Uploads)
		combined := append(retained, uploads...)
		if len(combined) > s.limits.MaxAttachments {
			s.rollbackUploads(ctx, payload.Attachments.Uploads)
			return nil, common.LimitExceeded("a maximum of %d attachments is allowed per message", s.limits.MaxAttachments)
		}

		removed := removedAttachments(msg.Attachments, combined)
		s.deleteStored(ctx, removed)
		msg.Attachments = combined
	}

	now := time.Now().UTC()
	msg.EditedAt = &now
	if err := s.repo.Update(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *service) ToggleReaction(ctx context.Context, messageID, emoji string, actor common.Role) (*dbmysql.Message, error) {
	if err := common.ValidateID(messageID, "message"); err != nil {
		return nil, err
	}
	if err := common.ValidateParticipantRole(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(emoji) == "" {
		return nil, common.InvalidArgument("emoji is required")
	}

	msg, err := s.repo.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	msg.Reactions = toggleReaction(msg.Reactions, emoji, actor)
	if err := s.repo.Update(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// toggleReaction flips the actor's flag on the emoji entry, dropping
// the entry entirely when nobody is left on it.
func toggleReaction(reactions []dbmysql.Reaction, emoji string, actor common.Role) []dbmysql.Reaction {
	now := time.Now().UTC()
	for i := range reactions {
		if reactions[i].Emoji != emoji {
			continue
		}
		if actor == common.RoleManager {
			reactions[i].ManagerReacted = !reactions[i].ManagerReacted
		} else {
			reactions[i].CustomerReacted = !reactions[i].CustomerReacted
		}
		reactions[i].UpdatedAt = now
		if !reactions[i].ManagerReacted && !reactions[i].CustomerReacted {
			return append(reactions[:i], reactions[i+1:]...)
		}
		return reactions
	}
	return append(reactions, dbmysql.Reaction{
		Emoji:           emoji,
		ManagerReacted:  actor == common.RoleManager,
		CustomerReacted: actor == common.RoleCustomer,
		UpdatedAt:       now,
	})
}

func (s *service) Delete(ctx context.Context, messageID string) (*dbmysql.Message, error) {
	if err := common.ValidateID(messageID, "message"); err != nil {
		return nil, err
	}
	msg, err := s.repo.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	s.deleteStored(ctx, msg.Attachments)
	if err := s.repo.Delete(ctx, messageID); err != nil {
		return nil, err
	}
	return msg, nil
}

// History returns one page of messages in chronological order. Paging
// walks backwards from the newest message.
func (s *service) History(ctx context.Context, conversationID string, limit, skip int) ([]*dbmysql.Message, error) {
	if err := common.ValidateID(conversationID, "conversation"); err != nil {
		return nil, err
	}
	msgs, err := s.repo.ListByConversation(ctx, conversationID, limit, skip)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// normalizeAttachments drops anything without a servable URL and fills
// the type tag from the MIME type when absent. An external URL with no
// MIME type at all is a shared link, not a stored file.
func normalizeAttachments(inputs []AttachmentInput) []dbmysql.Attachment {
	out := make([]dbmysql.Attachment, 0, len(inputs))
	for _, in := range inputs {
		if in.URL == "" {
			continue
		}
		attType := in.Type
		if !attType.IsValid() {
			if in.MimeType == "" && strings.HasPrefix(in.URL, "http") {
				attType = common.AttachmentLink
			} else {
				attType = common.DetectAttachmentType(in.MimeType)
			}
		}
		out = append(out, dbmysql.Attachment{
			Type:       attType,
			Name:       in.Name,
			Size:       in.Size,
			MimeType:   in.MimeType,
			URL:        in.URL,
			Preview:    in.Preview,
			StorageRef: in.StorageRef,
		})
	}
	return out
}

func retainAttachments(existing []dbmysql.Attachment, keep []string) []dbmysql.Attachment {
	keepSet := make(map[string]bool, len(keep))
	for _, url := range keep {
		keepSet[url] = true
	}
	var out []dbmysql.Attachment
	for _, att := range existing {
		if keepSet[att.URL] {
			out = append(out, att)
		}
	}
	return out
}

func removedAttachments(existing, combined []dbmysql.Attachment) []dbmysql.Attachment {
	kept := make(map[string]bool, len(combined))
	for _, att := range combined {
		kept[att.URL] = true
	}
	var out []dbmysql.Attachment
	for _, att := range existing {
		if !kept[att.URL] {
			out = append(out, att)
		}
	}
	return out
}

// rollbackUploads removes freshly stored files after a rejected write
// so limit violations never leak storage.
func (s *service) rollbackUploads(ctx context.Context, inputs []AttachmentInput) {
	for _, in := range inputs {
		if in.StorageRef == "" {
			continue
		}
		if err := s.storage.Delete(ctx, in.StorageRef); err != nil {
			log.Printf("failed to roll back attachment %s: %v", in.StorageRef, err)
		}
	}
}

func (s *service) deleteStored(ctx context.Context, attachments []dbmysql.Attachment) {
	for _, att := range attachments {
		if att.StorageRef == "" {
			continue
		}
		if err := s.storage.Delete(ctx, att.StorageRef); err != nil {
			log.Printf("failed to delete attachment %s: %v", att.StorageRef, err)
		}
	}
}

// snippetLimit caps list previews and reply excerpts, in bytes.
const snippetLimit = 160

// truncate clips s to at most max bytes without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// deriveSnippet builds the conversation list preview: a content
// excerpt, or an attachment-derived label when content is empty.
func deriveSnippet(msg *dbmysql.Message) string {
	content := strings.TrimSpace(msg.Content)
	if content != "" {
		return truncate(content, snippetLimit)
	}
	return attachmentSnippet(msg.Attachments)
}

func attachmentSnippet(attachments []dbmysql.Attachment) string {
	switch len(attachments) {
	case 0:
		return ""
	case 1:
		att := attachments[0]
		switch att.Type {
		case common.AttachmentImage:
			return labelOr(att.Name, "Image")
		case common.AttachmentAudio:
			return labelOr(att.Name, "Audio")
		case common.AttachmentVideo:
			return labelOr(att.Name, "Video")
		default:
			if att.Name != "" {
				return "File: " + att.Name
			}
			return "Attachment"
		}
	default:
		return fmt.Sprintf("%d attachments", len(attachments))
	}
}

func labelOr(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}
