package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"chatdesk/internal/cache"
	"chatdesk/internal/common"
	"chatdesk/internal/dbmysql"
	"chatdesk/internal/realtime"
)

const (
	defaultMessagePage = 100
	maxMessagePage     = 200
)

type ensureConversationRequest struct {
	ManagerID  string                        `json:"managerId"`
	CustomerID string                        `json:"customerId"`
	Metadata   *dbmysql.ConversationMetadata `json:"metadata"`
}

type viewerRequest struct {
	ViewerType common.Role `json:"viewerType"`
}

type muteRequest struct {
	ActorType common.Role `json:"actorType"`
	Muted     bool        `json:"muted"`
}

type conversationResponse struct {
	Conversation ConversationDTO `json:"conversation"`
	Pagination   *PaginationDTO  `json:"pagination,omitempty"`
}

func (s *Server) handleEnsureConversation(w http.ResponseWriter, r *http.Request) {
	var req ensureConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, common.InvalidArgument("invalid request body"))
		return
	}

	hints := dbmysql.ConversationMetadata{}
	if req.Metadata != nil {
		hints = *req.Metadata
	}

	conv, created, err := s.conversations.Ensure(r.Context(), req.ManagerID, req.CustomerID, hints)
	if err != nil {
		writeError(w, err)
		return
	}

	limit, _ := pageParams(r, defaultMessagePage, maxMessagePage)
	msgs, err := s.messages.History(r.Context(), conv.ID, limit, 0)
	if err != nil {
		writeError(w, err)
		return
	}

	s.invalidator.InvalidateConversation(r.Context(), conv.ID, conv.ManagerID, conv.CustomerID)

	if created {
		s.afterConversationCreated(conv)
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, conversationResponse{Conversation: serializeConversation(conv, msgs)})
}

// afterConversationCreated greets the new conversation in the
// background; the ensure response never waits on the bot.
func (s *Server) afterConversationCreated(conv *dbmysql.Conversation) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		msg, err := s.engine.SendWelcome(ctx, conv.ID)
		if err != nil {
			log.Printf("welcome message failed for conversation %s: %v", conv.ID, err)
			return
		}
		if msg == nil {
			return
		}
		s.invalidator.InvalidateConversation(ctx, conv.ID, conv.ManagerID, conv.CustomerID)
		s.hub.Publish(realtime.ConversationRoom(conv.ID), realtime.Event{
			Name:    realtime.EventMessageNew,
			Payload: serializeMessage(msg),
		})
		s.publishConversationUpdate(ctx, conv.ID)
	}()
}

func (s *Server) handleManagerConversations(w http.ResponseWriter, r *http.Request) {
	managerID := mux.Vars(r)["managerId"]
	key := cache.ManagerListKey(managerID)

	if raw, ok := s.cache.Get(r.Context(), key); ok {
		w.Header().Set("X-Cache", "HIT")
		w.Header().Set("Content-Type", "application/json")
		w.Write(raw)
		return
	}

	convs, err := s.conversations.ListForManager(r.Context(), managerID, defaultMessagePage, 0)
	if err != nil {
		writeError(w, err)
		return
	}

	payload := make([]ConversationDTO, 0, len(convs))
	for _, conv := range convs {
		msgs, err := s.messages.History(r.Context(), conv.ID, 50, 0)
		if err != nil {
			writeError(w, err)
			return
		}
		payload = append(payload, serializeConversation(conv, msgs))
	}

	body := map[string]interface{}{"conversations": payload}
	raw, err := json.Marshal(body)
	if err != nil {
		writeError(w, err)
		return
	}
	s.cache.SetWithTTL(r.Context(), key, raw, s.cfg.Cache.ConversationTTL)

	w.Header().Set("X-Cache", "MISS")
	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}

func (s *Server) handleGetConversation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	limit, skip := pageParams(r, defaultMessagePage, maxMessagePage)
	key := cache.ConversationPageKey(id, limit, skip)

	if raw, ok := s.cache.Get(r.Context(), key); ok {
		w.Header().Set("X-Cache", "HIT")
		w.Header().Set("Content-Type", "application/json")
		w.Write(raw)
		return
	}

	conv, err := s.conversations.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	msgs, err := s.messages.History(r.Context(), id, limit, skip)
	if err != nil {
		writeError(w, err)
		return
	}

	response := conversationResponse{
		Conversation: serializeConversation(conv, msgs),
		Pagination: &PaginationDTO{
			Limit:   limit,
			Skip:    skip,
			HasMore: len(msgs) == limit,
		},
	}
	raw, err := json.Marshal(response)
	if err != nil {
		writeError(w, err)
		return
	}
	s.cache.SetWithTTL(r.Context(), key, raw, s.cfg.Cache.ConversationTTL)

	w.Header().Set("X-Cache", "MISS")
	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}

func (s *Server) handleCustomerConversation(w http.ResponseWriter, r *http.Request) {
	customerID := mux.Vars(r)["customerId"]
	limit, skip := pageParams(r, defaultMessagePage, maxMessagePage)
	key := cache.CustomerPageKey(customerID, limit, skip)

	if raw, ok := s.cache.Get(r.Context(), key); ok {
		w.Header().Set("X-Cache", "HIT")
		w.Header().Set("Content-Type", "application/json")
		w.Write(raw)
		return
	}

	conv, err := s.conversations.ForCustomer(r.Context(), customerID)
	if err != nil {
		writeError(w, err)
		return
	}
	msgs, err := s.messages.History(r.Context(), conv.ID, limit, skip)
	if err != nil {
		writeError(w, err)
		return
	}

	response := conversationResponse{
		Conversation: serializeConversation(conv, msgs),
		Pagination: &PaginationDTO{
			Limit:   limit,
			Skip:    skip,
			HasMore: len(msgs) == limit,
		},
	}
	raw, err := json.Marshal(response)
	if err != nil {
		writeError(w, err)
		return
	}
	s.cache.SetWithTTL(r.Context(), key, raw, s.cfg.Cache.ConversationTTL)

	w.Header().Set("X-Cache", "MISS")
	w.Header().Set("Content-Type", "application/json")
	w.Write(raw)
}

func (s *Server) handleMarkDelivered(w http.ResponseWriter, r *http.Request) {
	conversationID := mux.Vars(r)["conversationId"]
	var req viewerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, common.InvalidArgument("invalid request body"))
		return
	}

	conv, err := s.conversations.MarkDelivered(r.Context(), conversationID, req.ViewerType)
	if err != nil {
		writeError(w, err)
		return
	}

	s.invalidator.InvalidateConversation(r.Context(), conv.ID, conv.ManagerID, conv.CustomerID)
	s.publishToConversationRooms(conv, realtime.Event{
		Name: realtime.EventConversationDelivered,
		Payload: map[string]interface{}{
			"conversationId": conv.ID,
			"viewerType":     req.ViewerType,
			"timestamp":      realtime.NowStamp(),
		},
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"conversationId": conv.ID,
		"viewerType":     req.ViewerType,
	})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	conversationID := mux.Vars(r)["conversationId"]
	var req viewerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, common.InvalidArgument("invalid request body"))
		return
	}

	conv, err := s.conversations.MarkRead(r.Context(), conversationID, req.ViewerType)
	if err != nil {
		writeError(w, err)
		return
	}

	s.invalidator.InvalidateConversation(r.Context(), conv.ID, conv.ManagerID, conv.CustomerID)
	s.publishToConversationRooms(conv, realtime.Event{
		Name: realtime.EventConversationRead,
		Payload: map[string]interface{}{
			"conversationId": conv.ID,
			"viewerType":     req.ViewerType,
			"timestamp":      realtime.NowStamp(),
		},
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"conversationId": conv.ID,
		"viewerType":     req.ViewerType,
	})
}

func (s *Server) handleSetMute(w http.ResponseWriter, r *http.Request) {
	conversationID := mux.Vars(r)["conversationId"]
	var req muteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, common.InvalidArgument("invalid request body"))
		return
	}

	conv, err := s.conversations.SetMute(r.Context(), conversationID, req.ActorType, req.Muted)
	if err != nil {
		writeError(w, err)
		return
	}

	msgs, err := s.messages.History(r.Context(), conv.ID, 50, 0)
	if err != nil {
		writeError(w, err)
		return
	}

	s.invalidator.InvalidateConversation(r.Context(), conv.ID, conv.ManagerID, conv.CustomerID)
	serialized := serializeConversation(conv, msgs)
	s.publishToConversationRooms(conv, realtime.Event{
		Name:    realtime.EventConversationMuted,
		Payload: serialized,
	})

	writeJSON(w, http.StatusOK, conversationResponse{Conversation: serialized})
}

// publishToConversationRooms fans an acknowledgement out to the
// conversation room and to both participants' own rooms, so list views
// that never joined the conversation still see the state change.
func (s *Server) publishToConversationRooms(conv *dbmysql.Conversation, event realtime.Event) {
	s.hub.Publish(realtime.ConversationRoom(conv.ID), event)
	s.hub.Publish(realtime.ManagerRoom(conv.ManagerID), event)
	s.hub.Publish(realtime.CustomerRoom(conv.CustomerID), event)
}

func (s *Server) handleDisableAutoChat(w http.ResponseWriter, r *http.Request) {
	conversationID := mux.Vars(r)["conversationId"]

	conv, err := s.conversations.Get(r.Context(), conversationID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.engine.Disable(r.Context(), conversationID); err != nil {
		writeError(w, err)
		return
	}
	conv.AutoChatEnabled = false

	msgs, err := s.messages.History(r.Context(), conv.ID, 50, 0)
	if err != nil {
		writeError(w, err)
		return
	}

	s.invalidator.InvalidateConversation(r.Context(), conv.ID, conv.ManagerID, conv.CustomerID)
	serialized := serializeConversation(conv, msgs)
	s.hub.Publish(realtime.ConversationRoom(conv.ID), realtime.Event{
		Name:    realtime.EventConversationUpdated,
		Payload: serialized,
	})

	writeJSON(w, http.StatusOK, conversationResponse{Conversation: serialized})
}

// publishConversationUpdate pushes the fresh conversation snapshot to
// both participant rooms.
func (s *Server) publishConversationUpdate(ctx context.Context, conversationID string) {
	conv, err := s.conversations.Get(ctx, conversationID)
	if err != nil {
		log.Printf("failed to load conversation %s for update broadcast: %v", conversationID, err)
		return
	}
	serialized := serializeConversation(conv, nil)
	event := realtime.Event{Name: realtime.EventConversationUpdated, Payload: serialized}
	s.hub.Publish(realtime.ManagerRoom(conv.ManagerID), event)
	s.hub.Publish(realtime.CustomerRoom(conv.CustomerID), event)
}
