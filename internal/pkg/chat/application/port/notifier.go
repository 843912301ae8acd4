package port

// Event names delivered over the realtime channel.
const (
	// EventMessage carries a raw chat message to a recipient whose
	// conversation view is open.
	EventMessage = "message"

	// EventConversation carries a refreshed conversation summary to a
	// recipient watching their conversation list.
	EventConversation = "conversation"
)

// Notifier delivers a named event to a specific connection handle.
// Delivery is best effort: an error means the realtime notification was
// missed, never that the message was lost.
type Notifier interface {
	Deliver(handleID, event string, payload []byte) error
}
