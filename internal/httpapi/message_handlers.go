package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"chatdesk/internal/common"
	"chatdesk/internal/message"
	"chatdesk/internal/realtime"
)

// maxUploadMemory bounds the in-memory part of multipart parsing;
// larger files spill to disk.
const maxUploadMemory = 32 << 20

type sendMessageRequest struct {
	ConversationID string                    `json:"conversationId"`
	AuthorType     common.Role               `json:"authorType"`
	AuthorID       string                    `json:"authorId"`
	Content        string                    `json:"content"`
	Attachments    []message.AttachmentInput `json:"attachments"`
	ReplyTo        *message.ReplyInput       `json:"replyTo"`
	Action         string                    `json:"action"`
}

type messageResponse struct {
	Message MessageDTO `json:"message"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	req, uploads, err := s.parseSendRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	msg, err := s.messages.Create(r.Context(), message.CreatePayload{
		ConversationID: req.ConversationID,
		AuthorType:     req.AuthorType,
		AuthorID:       req.AuthorID,
		Content:        req.Content,
		Attachments:    append(uploads, req.Attachments...),
		ReplyTo:        req.ReplyTo,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	conv, err := s.conversations.Get(r.Context(), msg.ConversationID)
	if err != nil {
		writeError(w, err)
		return
	}

	s.invalidator.InvalidateConversation(r.Context(), conv.ID, conv.ManagerID, conv.CustomerID)
	serialized := serializeMessage(msg)
	s.hub.Publish(realtime.ConversationRoom(conv.ID), realtime.Event{
		Name:    realtime.EventMessageNew,
		Payload: serialized,
	})

	// Customer turns feed the bot in the background; the sender's
	// request never waits on (or fails because of) the auto-reply.
	if req.AuthorType == common.RoleCustomer {
		s.triggerAutoChat(conv.ID, conv.ManagerID, conv.CustomerID, req.Content, req.Action)
	}

	writeJSON(w, http.StatusCreated, messageResponse{Message: serialized})
}

func (s *Server) triggerAutoChat(conversationID, managerID, customerID, content, action string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		replies, err := s.engine.Process(ctx, conversationID, content, action)
		if err != nil {
			log.Printf("auto-chat failed for conversation %s: %v", conversationID, err)
			return
		}
		if len(replies) == 0 {
			return
		}

		s.invalidator.InvalidateConversation(ctx, conversationID, managerID, customerID)
		for _, reply := range replies {
			s.hub.Publish(realtime.ConversationRoom(conversationID), realtime.Event{
				Name:    realtime.EventMessageNew,
				Payload: serializeMessage(reply),
			})
		}
		s.publishConversationUpdate(ctx, conversationID)
	}()
}

// parseSendRequest accepts either a JSON body or a multipart form with
// file parts named "attachments". Uploaded files are stored before the
// service call; the service rolls them back if the write is rejected.
func (s *Server) parseSendRequest(r *http.Request) (*sendMessageRequest, []message.AttachmentInput, error) {
	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if contentType != "multipart/form-data" {
		var req sendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, nil, common.InvalidArgument("invalid request body")
		}
		return &req, nil, nil
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, nil, common.InvalidArgument("invalid multipart form")
	}

	req := &sendMessageRequest{
		ConversationID: r.FormValue("conversationId"),
		AuthorType:     common.Role(r.FormValue("authorType")),
		AuthorID:       r.FormValue("authorId"),
		Content:        r.FormValue("content"),
		Action:         r.FormValue("action"),
	}
	if raw := r.FormValue("replyTo"); raw != "" {
		var reply message.ReplyInput
		if err := json.Unmarshal([]byte(raw), &reply); err == nil {
			req.ReplyTo = &reply
		}
	}
	if raw := r.FormValue("attachments"); raw != "" {
		// Referenced (already stored) attachments ride along as JSON.
		var refs []message.AttachmentInput
		if err := json.Unmarshal([]byte(raw), &refs); err == nil {
			req.Attachments = refs
		}
	}

	uploads, err := s.storeUploads(r)
	if err != nil {
		return nil, nil, err
	}
	return req, uploads, nil
}

func (s *Server) storeUploads(r *http.Request) ([]message.AttachmentInput, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	files := r.MultipartForm.File["attachments"]
	if len(files) == 0 {
		return nil, nil
	}

	uploads := make([]message.AttachmentInput, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			s.rollbackStored(r.Context(), uploads)
			return nil, common.InvalidArgument("unreadable attachment %q", header.Filename)
		}

		mimeType := header.Header.Get("Content-Type")
		stored, err := s.storage.Store(r.Context(), header.Filename, mimeType, file)
		file.Close()
		if err != nil {
			s.rollbackStored(r.Context(), uploads)
			return nil, err
		}

		uploads = append(uploads, message.AttachmentInput{
			Type:       common.DetectAttachmentType(mimeType),
			Name:       header.Filename,
			Size:       stored.SizeBytes,
			MimeType:   stored.MimeType,
			URL:        stored.URL,
			StorageRef: stored.StorageRef,
		})
	}
	return uploads, nil
}

func (s *Server) rollbackStored(ctx context.Context, uploads []message.AttachmentInput) {
	for _, up := range uploads {
		if up.StorageRef == "" {
			continue
		}
		if err := s.storage.Delete(ctx, up.StorageRef); err != nil {
			log.Printf("failed to roll back upload %s: %v", up.StorageRef, err)
		}
	}
}

type editMessageRequest struct {
	Content         *string                   `json:"content"`
	KeepAttachments []string                  `json:"keepAttachments"`
	Attachments     []message.AttachmentInput `json:"attachments"`
}

func (s *Server) handleEditMessage(w http.ResponseWriter, r *http.Request) {
	messageID := mux.Vars(r)["messageId"]

	var req editMessageRequest
	uploads := []message.AttachmentInput(nil)

	contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if contentType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			writeError(w, common.InvalidArgument("invalid multipart form"))
			return
		}
		if form := r.MultipartForm.Value; form != nil {
			if values, ok := form["content"]; ok && len(values) > 0 {
				req.Content = &values[0]
			}
		}
		if raw := r.FormValue("keepAttachments"); raw != "" {
			json.Unmarshal([]byte(raw), &req.KeepAttachments)
		}
		var err error
		uploads, err = s.storeUploads(r)
		if err != nil {
			writeError(w, err)
			return
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, common.InvalidArgument("invalid request body"))
			return
		}
	}

	payload := message.EditPayload{MessageID: messageID, Content: req.Content}
	if len(uploads) > 0 || len(req.Attachments) > 0 || req.KeepAttachments != nil {
		payload.Attachments = &message.AttachmentEdit{
			Keep:    req.KeepAttachments,
			Uploads: append(uploads, req.Attachments...),
		}
	}

	msg, err := s.messages.Edit(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	conv, err := s.conversations.Get(r.Context(), msg.ConversationID)
	if err != nil {
		writeError(w, err)
		return
	}

	s.invalidator.InvalidateConversation(r.Context(), conv.ID, conv.ManagerID, conv.CustomerID)
	serialized := serializeMessage(msg)
	s.hub.Publish(realtime.ConversationRoom(conv.ID), realtime.Event{
		Name:    realtime.EventMessageUpdated,
		Payload: serialized,
	})

	writeJSON(w, http.StatusOK, messageResponse{Message: serialized})
}

func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	messageID := mux.Vars(r)["messageId"]

	msg, err := s.messages.Delete(r.Context(), messageID)
	if err != nil {
		writeError(w, err)
		return
	}

	conv, err := s.conversations.Get(r.Context(), msg.ConversationID)
	if err != nil {
		writeError(w, err)
		return
	}

	s.invalidator.InvalidateConversation(r.Context(), conv.ID, conv.ManagerID, conv.CustomerID)
	payload := map[string]string{
		"messageId":      messageID,
		"conversationId": msg.ConversationID,
	}
	s.hub.Publish(realtime.ConversationRoom(conv.ID), realtime.Event{
		Name:    realtime.EventMessageDeleted,
		Payload: payload,
	})

	writeJSON(w, http.StatusOK, payload)
}

type reactionRequest struct {
	Emoji     string      `json:"emoji"`
	ActorType common.Role `json:"actorType"`
}

func (s *Server) handleToggleReaction(w http.ResponseWriter, r *http.Request) {
	messageID := mux.Vars(r)["messageId"]

	var req reactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, common.InvalidArgument("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Emoji) == "" {
		writeError(w, common.InvalidArgument("emoji is required"))
		return
	}

	msg, err := s.messages.ToggleReaction(r.Context(), messageID, req.Emoji, req.ActorType)
	if err != nil {
		writeError(w, err)
		return
	}

	conv, err := s.conversations.Get(r.Context(), msg.ConversationID)
	if err != nil {
		writeError(w, err)
		return
	}

	s.invalidator.InvalidateConversation(r.Context(), conv.ID, conv.ManagerID, conv.CustomerID)
	serialized := serializeMessage(msg)
	s.hub.Publish(realtime.ConversationRoom(conv.ID), realtime.Event{
		Name:    realtime.EventMessageReaction,
		Payload: serialized,
	})

	writeJSON(w, http.StatusOK, messageResponse{Message: serialized})
}
