package realtime

// Event names form the wire contract for live clients.
const (
	EventMessageNew      = "message:new"
	EventMessageUpdated  = "message:updated"
	EventMessageDeleted  = "message:deleted"
	EventMessageReaction = "message:reaction"

	EventConversationUpdated   = "conversation:updated"
	EventConversationDelivered = "conversation:delivered"
	EventConversationRead      = "conversation:read"
	EventConversationMuted     = "conversation:muted"

	// Ephemeral, never persisted.
	EventConversationTyping = "conversation:typing"
	EventPresenceUpdate     = "presence:update"
)

// Event is one frame pushed to subscribers.
type Event struct {
	Name    string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Room name builders. Every socket subscribes to zero or more of these.

func ManagerRoom(managerID string) string {
	return "manager:" + managerID
}

func CustomerRoom(customerID string) string {
	return "customer:" + customerID
}

func ConversationRoom(conversationID string) string {
	return "conversation:" + conversationID
}

// TypingPayload relays a typing indicator to the conversation room.
type TypingPayload struct {
	ConversationID string `json:"conversationId"`
	ActorType      string `json:"actorType"`
	ActorID        string `json:"actorId"`
	IsTyping       bool   `json:"isTyping"`
	Timestamp      string `json:"timestamp"`
}

// PresencePayload announces a participant edge transition (0->1 or
// 1->0 live connections), never per-socket churn.
type PresencePayload struct {
	ParticipantID string `json:"participantId"`
	Role          string `json:"role"`
	IsOnline      bool   `json:"isOnline"`
	Timestamp     string `json:"timestamp"`
}
