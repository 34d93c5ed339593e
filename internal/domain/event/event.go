package event

// Kind classifies events flowing through the hub.
type Kind int16

const (
	Connected Kind = iota + 1
	Disconnected
	OnlineUsers
	MessageSent
	MessageReceived
	MessageRead
	MessageReadByReceiver
	UserTyping
	UserStopTyping
	Error
	Announcement
)

// Priority drives mailbox eviction under backpressure. Ephemeral signals
// (typing, presence) are droppable; message delivery is not.
type Priority int32

const (
	PriorityLow    Priority = 10
	PriorityNormal Priority = 20
	PriorityHigh   Priority = 30
)

// Wire names as emitted to clients.
const (
	NameConnected             = "connected"
	NameDisconnected          = "disconnected"
	NameOnlineUsers           = "online_users"
	NameMessageSent           = "message_sent"
	NameReceiveMessage        = "receive_message"
	NameMessageRead           = "message_read"
	NameMessageReadByReceiver = "message_read_by_receiver"
	NameUserTyping            = "user_typing"
	NameUserStopTyping        = "user_stop_typing"
	NameError                 = "error"
)

// Eventer is the contract for all packets routed through the hub.
// UserID is the physical delivery target; zero means broadcast.
type Eventer interface {
	GetID() string
	GetName() string
	GetKind() Kind
	GetUserID() int64
	GetPriority() Priority
	GetOccurredAt() int64
	GetPayload() any
}
