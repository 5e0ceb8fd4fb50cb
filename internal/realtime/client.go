package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"chatdesk/internal/common"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Cross-origin policy is enforced upstream.
		return true
	},
}

// Client is one websocket connection bound to an authenticated
// participant. It subscribes to its own participant room on connect
// and to conversation rooms on demand.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// mu orders Send against closeSend: the hub snapshots room members
	// outside its lock, so a publisher can still hold this client after
	// the read pump has torn it down.
	mu     sync.Mutex
	closed bool
	send   chan Event

	connID        string
	participantID string
	role          common.Role
}

// inboundFrame is what clients send upstream: room joins and typing
// indicators. Everything stateful goes through the HTTP API.
type inboundFrame struct {
	Event   string `json:"event"`
	Payload struct {
		ConversationID string `json:"conversationId"`
		IsTyping       *bool  `json:"isTyping"`
	} `json:"payload"`
}

// ServeWS upgrades the request and starts the client pumps.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request) {
	participantID, role, ok := common.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:           hub,
		conn:          conn,
		send:          make(chan Event, sendBufferSize),
		connID:        common.NewID(),
		participantID: participantID,
		role:          role,
	}

	participantRoom := ManagerRoom(participantID)
	if role == common.RoleCustomer {
		participantRoom = CustomerRoom(participantID)
	}
	hub.Join(participantRoom, client)

	if hub.ConnectPresence(participantRoom, client.connID) {
		hub.Broadcast(Event{Name: EventPresenceUpdate, Payload: PresencePayload{
			ParticipantID: participantID,
			Role:          role.String(),
			IsOnline:      true,
			Timestamp:     NowStamp(),
		}})
	}

	go client.writePump()
	go client.readPump(participantRoom)
}

// Send implements Subscriber with a drop-if-full strategy so one slow
// client never stalls the hub. After disconnect it is a no-op.
func (c *Client) Send(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- event:
	default:
	}
}

// closeSend closes the outbound channel exactly once, fencing off any
// publisher that grabbed the client before it left its rooms.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) readPump(participantRoom string) {
	defer func() {
		c.hub.LeaveAll(c)
		if c.hub.DisconnectPresence(participantRoom, c.connID) {
			c.hub.Broadcast(Event{Name: EventPresenceUpdate, Payload: PresencePayload{
				ParticipantID: c.participantID,
				Role:          c.role.String(),
				IsOnline:      false,
				Timestamp:     NowStamp(),
			}})
		}
		c.conn.Close()
		c.closeSend()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		c.handleFrame(frame)
	}
}

func (c *Client) handleFrame(frame inboundFrame) {
	switch frame.Event {
	case "conversation:join":
		if frame.Payload.ConversationID != "" {
			c.hub.Join(ConversationRoom(frame.Payload.ConversationID), c)
		}
	case "conversation:leave":
		if frame.Payload.ConversationID != "" {
			c.hub.Leave(ConversationRoom(frame.Payload.ConversationID), c)
		}
	case EventConversationTyping:
		if frame.Payload.ConversationID == "" {
			return
		}
		isTyping := true
		if frame.Payload.IsTyping != nil {
			isTyping = *frame.Payload.IsTyping
		}
		c.hub.PublishExcept(ConversationRoom(frame.Payload.ConversationID), Event{
			Name: EventConversationTyping,
			Payload: TypingPayload{
				ConversationID: frame.Payload.ConversationID,
				ActorType:      c.role.String(),
				ActorID:        c.participantID,
				IsTyping:       isTyping,
				Timestamp:      NowStamp(),
			},
		}, c)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
