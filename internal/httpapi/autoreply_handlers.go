package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"chatdesk/internal/autochat"
	"chatdesk/internal/common"
	"chatdesk/internal/dbmysql"
)

type upsertAutoReplyRequest struct {
	WelcomeMessage *dbmysql.ResponseTemplate           `json:"welcomeMessage"`
	Services       []dbmysql.ServiceItem               `json:"services"`
	TimeSlots      []dbmysql.TimeSlot                  `json:"timeSlots"`
	Responses      map[string]dbmysql.ResponseTemplate `json:"responses"`
	IsActive       *bool                               `json:"isActive"`
}

type autoReplyResponse struct {
	AutoReply AutoReplyConfigDTO `json:"autoReply"`
}

func (s *Server) handleGetAutoReply(w http.ResponseWriter, r *http.Request) {
	managerID := mux.Vars(r)["managerId"]

	config, err := s.configs.Find(r.Context(), managerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, autoReplyResponse{AutoReply: serializeAutoReplyConfig(config)})
}

func (s *Server) handleUpsertAutoReply(w http.ResponseWriter, r *http.Request) {
	managerID := mux.Vars(r)["managerId"]

	var req upsertAutoReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, common.InvalidArgument("invalid request body"))
		return
	}

	config, err := s.configs.Upsert(r.Context(), managerID, autochat.UpsertInput{
		Welcome:   req.WelcomeMessage,
		Services:  req.Services,
		TimeSlots: req.TimeSlots,
		Responses: req.Responses,
		IsActive:  req.IsActive,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, autoReplyResponse{AutoReply: serializeAutoReplyConfig(config)})
}
