package net

import (
	gonet "net"
	"sync"
	"time"

	"github.com/amilaSuriarachchi/galileo/pkg/galileo/types"
)

const dialTimeout = 10 * time.Second

// ClientMessageRouter initiates outbound connections. Connections are
// established lazily during the first send to a destination and reused
// for every send after that; at most one connection per destination is
// ever held.
type ClientMessageRouter struct {
	*MessageRouter

	destinationToConnection map[NetworkDestination]*Connection
	connMutex               sync.Mutex

	shutdown     bool
	shutdownLock sync.Mutex
}

func NewClientMessageRouter(logger types.Logger) *ClientMessageRouter {
	return NewClientMessageRouterSized(logger, DefaultReadBufferSize, DefaultMaxWriteQueueSize)
}

func NewClientMessageRouterSized(logger types.Logger, readBufferSize, maxWriteQueueSize int) *ClientMessageRouter {
	c := &ClientMessageRouter{
		MessageRouter:           newMessageRouter(logger, readBufferSize, maxWriteQueueSize),
		destinationToConnection: make(map[NetworkDestination]*Connection),
	}
	c.onDisconnect = c.removeConnection
	return c
}

// ensureConnected returns the connection for a destination, dialing a
// new one when none is held. The dial happens outside the map lock;
// when two senders race, the loser's socket is closed and the winner's
// connection is shared.
func (c *ClientMessageRouter) ensureConnected(destination NetworkDestination) (*Connection, error) {
	c.shutdownLock.Lock()
	down := c.shutdown
	c.shutdownLock.Unlock()
	if down {
		return nil, ErrRouterShutdown
	}

	c.connMutex.Lock()
	if conn, ok := c.destinationToConnection[destination]; ok {
		c.connMutex.Unlock()
		return conn, nil
	}
	c.connMutex.Unlock()

	socket, err := gonet.DialTimeout("tcp", destination.String(), dialTimeout)
	if err != nil {
		return nil, err
	}

	c.connMutex.Lock()
	if conn, ok := c.destinationToConnection[destination]; ok {
		c.connMutex.Unlock()
		socket.Close()
		return conn, nil
	}
	conn := c.startConnection(socket, destination)
	c.destinationToConnection[destination] = conn
	c.connMutex.Unlock()
	return conn, nil
}

func (c *ClientMessageRouter) removeConnection(conn *Connection) {
	c.connMutex.Lock()
	defer c.connMutex.Unlock()
	if current, ok := c.destinationToConnection[conn.dest]; ok && current == conn {
		delete(c.destinationToConnection, conn.dest)
	}
}

// SendMessage queues a message for the given destination, connecting
// first if necessary. A full write queue blocks the caller.
func (c *ClientMessageRouter) SendMessage(destination NetworkDestination, message *GalileoMessage) error {
	conn, err := c.ensureConnected(destination)
	if err != nil {
		return err
	}
	return conn.Send(message.Payload)
}

// Broadcast sends a message to multiple network destinations.
func (c *ClientMessageRouter) Broadcast(destinations []NetworkDestination, message *GalileoMessage) error {
	for _, destination := range destinations {
		if err := c.SendMessage(destination, message); err != nil {
			return err
		}
	}
	return nil
}

// Connection returns the live connection for a destination, if any.
func (c *ClientMessageRouter) Connection(destination NetworkDestination) (*Connection, bool) {
	c.connMutex.Lock()
	defer c.connMutex.Unlock()
	conn, ok := c.destinationToConnection[destination]
	return conn, ok
}

// Disconnect tears down the connection to a destination. A subsequent
// send re-establishes it lazily.
func (c *ClientMessageRouter) Disconnect(destination NetworkDestination) {
	if conn, ok := c.Connection(destination); ok {
		conn.disconnect()
	}
}

// Shutdown disconnects from every server, blocking until each write
// queue has drained.
func (c *ClientMessageRouter) Shutdown() error {
	return c.close(false)
}

// ForceShutdown disconnects immediately; queued messages are
// discarded and blocked senders released.
func (c *ClientMessageRouter) ForceShutdown() error {
	return c.close(true)
}

func (c *ClientMessageRouter) close(forcible bool) error {
	c.shutdownLock.Lock()
	defer c.shutdownLock.Unlock()
	if c.shutdown {
		return nil
	}
	c.shutdown = true

	if forcible {
		c.forceShutdown()
	}

	c.connMutex.Lock()
	conns := make([]*Connection, 0, len(c.destinationToConnection))
	for _, conn := range c.destinationToConnection {
		conns = append(conns, conn)
	}
	c.connMutex.Unlock()

	for _, conn := range conns {
		if !forcible {
			conn.drainPendingWrites()
		}
		conn.disconnect()
	}

	c.invoker.Stop()
	return nil
}
