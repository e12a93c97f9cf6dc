package bus

import "time"

// Event kinds. Subscribers filter by prefix, so "chat." matches every chat event.
const (
	KindStateChanged   = "state.changed"
	KindDaemonStatus   = "daemon.status_changed"
	KindMessageSent    = "message.sent"
	KindMessageStatus  = "message.status_changed"
	KindMessageArrived = "message.received"
	KindTypingStarted  = "typing.started"
	KindTypingStopped  = "typing.stopped"
	KindCallStarted    = "call.started"
	KindCallConnected  = "call.connected"
	KindCallEnded      = "call.ended"
	KindNotice         = "notice.user"
)

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
