package net

import (
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/types"
)

// DualMessageRouter acts as both a server and a client. It is composed
// of separate ServerMessageRouter and ClientMessageRouter instances,
// so incoming and outgoing traffic are serviced by independent tasks.
type DualMessageRouter struct {
	server *ServerMessageRouter
	client *ClientMessageRouter
}

func NewDualMessageRouter(logger types.Logger, port int) *DualMessageRouter {
	return NewDualMessageRouterSized(logger, port, DefaultReadBufferSize, DefaultMaxWriteQueueSize)
}

func NewDualMessageRouterSized(logger types.Logger, port, readBufferSize, maxWriteQueueSize int) *DualMessageRouter {
	return &DualMessageRouter{
		server: NewServerMessageRouterSized(logger, port, readBufferSize, maxWriteQueueSize),
		client: NewClientMessageRouterSized(logger, readBufferSize, maxWriteQueueSize),
	}
}

func (d *DualMessageRouter) Listen() error {
	return d.server.Listen()
}

func (d *DualMessageRouter) Port() int {
	return d.server.Port()
}

func (d *DualMessageRouter) SendMessage(destination NetworkDestination, message *GalileoMessage) error {
	return d.client.SendMessage(destination, message)
}

func (d *DualMessageRouter) Broadcast(destinations []NetworkDestination, message *GalileoMessage) error {
	return d.client.Broadcast(destinations, message)
}

// AddListener registers the listener on both sides, so frames are
// observed no matter which router they arrive through.
func (d *DualMessageRouter) AddListener(l MessageListener) {
	d.server.AddListener(l)
	d.client.AddListener(l)
}

func (d *DualMessageRouter) Shutdown() error {
	if err := d.server.Shutdown(); err != nil {
		return err
	}
	return d.client.Shutdown()
}

func (d *DualMessageRouter) ForceShutdown() error {
	if err := d.server.ForceShutdown(); err != nil {
		return err
	}
	return d.client.ForceShutdown()
}
