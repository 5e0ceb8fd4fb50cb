package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"chatdesk/internal/autochat"
	"chatdesk/internal/cache"
	"chatdesk/internal/common"
	"chatdesk/internal/config"
	"chatdesk/internal/conversation"
	"chatdesk/internal/dbmongo"
	"chatdesk/internal/message"
	"chatdesk/internal/realtime"
)

// Server wires the services to their HTTP and websocket surface.
type Server struct {
	router *mux.Router

	conversations conversation.Service
	messages      message.Service
	engine        *autochat.Engine
	configs       *autochat.ConfigStore
	hub           *realtime.Hub
	cache         cache.Cache
	invalidator   *cache.Invalidator
	storage       *dbmongo.AttachmentStorage
	cfg           *config.Config
}

func NewServer(
	conversations conversation.Service,
	messages message.Service,
	engine *autochat.Engine,
	configs *autochat.ConfigStore,
	hub *realtime.Hub,
	c cache.Cache,
	invalidator *cache.Invalidator,
	storage *dbmongo.AttachmentStorage,
	cfg *config.Config,
) *Server {
	s := &Server{
		conversations: conversations,
		messages:      messages,
		engine:        engine,
		configs:       configs,
		hub:           hub,
		cache:         c,
		invalidator:   invalidator,
		storage:       storage,
		cfg:           cfg,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router = mux.NewRouter()
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/attachments/{storageRef}", s.handleDownloadAttachment).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(common.AuthMiddleware)

	api.HandleFunc("/conversations/ensure", s.handleEnsureConversation).Methods(http.MethodPost)
	api.HandleFunc("/conversations/manager/{managerId}", s.handleManagerConversations).Methods(http.MethodGet)
	api.HandleFunc("/conversations/customer/{customerId}", s.handleCustomerConversation).Methods(http.MethodGet)
	api.HandleFunc("/conversations/{id}", s.handleGetConversation).Methods(http.MethodGet)
	api.HandleFunc("/conversations/{conversationId}/delivered", s.handleMarkDelivered).Methods(http.MethodPost)
	api.HandleFunc("/conversations/{conversationId}/read", s.handleMarkRead).Methods(http.MethodPost)
	api.HandleFunc("/conversations/{conversationId}/mute", s.handleSetMute).Methods(http.MethodPost)
	api.HandleFunc("/conversations/{conversationId}/auto-chat/disable", s.handleDisableAutoChat).Methods(http.MethodPost)

	api.HandleFunc("/messages", s.handleSendMessage).Methods(http.MethodPost)
	api.HandleFunc("/messages/{messageId}", s.handleEditMessage).Methods(http.MethodPatch)
	api.HandleFunc("/messages/{messageId}", s.handleDeleteMessage).Methods(http.MethodDelete)
	api.HandleFunc("/messages/{messageId}/reactions", s.handleToggleReaction).Methods(http.MethodPost)

	api.HandleFunc("/auto-reply/{managerId}", s.handleGetAutoReply).Methods(http.MethodGet)
	api.HandleFunc("/auto-reply/{managerId}", s.handleUpsertAutoReply).Methods(http.MethodPut)

	ws := s.router.PathPrefix("/ws").Subrouter()
	ws.Use(common.AuthMiddleware)
	ws.HandleFunc("", s.handleWebsocket).Methods(http.MethodGet)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	realtime.ServeWS(s.hub, w, r)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

type errorBody struct {
	Error struct {
		Code    common.ErrorCode `json:"code"`
		Message string           `json:"message"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	var body errorBody
	body.Error.Code = common.CodeOf(err)
	body.Error.Message = err.Error()
	if body.Error.Code == common.CodeInternal {
		log.Printf("internal error: %v", err)
		body.Error.Message = "internal error"
	}
	writeJSON(w, common.HTTPStatus(err), body)
}

// pageParams clamps limit and skip from the query string.
func pageParams(r *http.Request, defaultLimit, maxLimit int) (limit, skip int) {
	limit = queryInt(r, "limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	skip = queryInt(r, "skip", 0)
	if skip < 0 {
		skip = 0
	}
	return limit, skip
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
