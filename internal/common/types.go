package common

// Role identifies who authored a message or performs an action.
// "system" is synthetic and only authors structural messages.
type Role string

const (
	RoleManager  Role = "manager"
	RoleCustomer Role = "customer"
	RoleSystem   Role = "system"
)

func (r Role) String() string {
	return string(r)
}

// IsParticipant reports whether the role is one of the two real
// conversation participants.
func (r Role) IsParticipant() bool {
	return r == RoleManager || r == RoleCustomer
}

// Other returns the opposite participant.
func (r Role) Other() Role {
	if r == RoleManager {
		return RoleCustomer
	}
	return RoleManager
}

// DeliveryStatus is the per-participant progression on a message.
type DeliveryStatus string

const (
	StatusSent      DeliveryStatus = "sent"
	StatusDelivered DeliveryStatus = "delivered"
	StatusRead      DeliveryStatus = "read"
)

var statusRank = map[DeliveryStatus]int{
	StatusSent:      0,
	StatusDelivered: 1,
	StatusRead:      2,
}

func (s DeliveryStatus) IsValid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanAdvanceTo reports whether moving to next respects the monotonic
// sent -> delivered -> read progression. Skipping delivered on a bulk
// read is allowed; regressing is not.
func (s DeliveryStatus) CanAdvanceTo(next DeliveryStatus) bool {
	return statusRank[next] > statusRank[s]
}

// ConversationStatus is the lifecycle state of a conversation.
type ConversationStatus string

const (
	ConversationOpen     ConversationStatus = "open"
	ConversationPending  ConversationStatus = "pending"
	ConversationResolved ConversationStatus = "resolved"
	ConversationArchived ConversationStatus = "archived"
)

// QuickReply is one tappable option attached to a bot message.
type QuickReply struct {
	Text   string `json:"text"`
	Action string `json:"action"`
}
