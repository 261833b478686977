package net

// GalileoMessage carries payload bytes plus the transport-level
// identity of the connection they arrived on, enough to send a reply
// over the same socket without looking the destination up.
type GalileoMessage struct {
	Payload []byte

	origin *Connection
}

func NewGalileoMessage(payload []byte) *GalileoMessage {
	return &GalileoMessage{Payload: payload}
}

// Origin is the connection the message arrived on, or nil for locally
// constructed messages.
func (m *GalileoMessage) Origin() *Connection {
	return m.origin
}

// MessageListener receives fully assembled frames and connection
// lifecycle notifications. OnMessage runs on the connection's read
// task and must not block; anything beyond a trivial handoff belongs
// on the event reactor's queue.
type MessageListener interface {
	OnMessage(message *GalileoMessage)
	OnConnect(destination NetworkDestination)
	OnDisconnect(destination NetworkDestination)
}
