package net

import (
	"errors"
	"io"
	gonet "net"
	"sync"
	"time"

	"github.com/amilaSuriarachchi/galileo/pkg/galileo/helper"
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/types"
)

const (
	DefaultReadBufferSize    = 64 * 1024
	DefaultMaxWriteQueueSize = 100

	// Graceful shutdown polls each write queue with escalating waits.
	shutdownInitialWait = 1 * time.Second
	shutdownLongestWait = 5 * time.Second
)

var (
	ErrRouterShutdown   = errors.New("message router shutdown")
	ErrConnectionClosed = errors.New("connection closed")
)

// MessageRouter is the engine shared by the server, client and dual
// router shapes: it owns the read buffer and write queue sizing, the
// listener set, and the per-connection reader and writer tasks.
type MessageRouter struct {
	logger  types.Logger
	invoker *helper.Invoker

	readBufferSize    int
	maxWriteQueueSize int

	listeners      []MessageListener
	listenersMutex sync.RWMutex

	// Closed by ForceShutdown; unblocks senders stuck on a full
	// write queue and discards whatever is pending.
	force     chan struct{}
	forceOnce sync.Once

	// Invoked after a connection is torn down, before listeners are
	// notified. The client router uses it to drop its destination
	// mappings so a later send reconnects lazily.
	onDisconnect func(c *Connection)
}

func newMessageRouter(logger types.Logger, readBufferSize, maxWriteQueueSize int) *MessageRouter {
	if readBufferSize <= 0 {
		readBufferSize = DefaultReadBufferSize
	}
	if maxWriteQueueSize <= 0 {
		maxWriteQueueSize = DefaultMaxWriteQueueSize
	}
	return &MessageRouter{
		logger:            logger,
		invoker:           helper.NewInvoker(),
		readBufferSize:    readBufferSize,
		maxWriteQueueSize: maxWriteQueueSize,
		force:             make(chan struct{}),
	}
}

// AddListener registers a listener for assembled frames and
// connection lifecycle notifications.
func (m *MessageRouter) AddListener(l MessageListener) {
	m.listenersMutex.Lock()
	defer m.listenersMutex.Unlock()
	m.listeners = append(m.listeners, l)
}

func (m *MessageRouter) dispatch(message *GalileoMessage) {
	m.listenersMutex.RLock()
	defer m.listenersMutex.RUnlock()
	for _, l := range m.listeners {
		l.OnMessage(message)
	}
}

func (m *MessageRouter) notifyConnect(destination NetworkDestination) {
	m.listenersMutex.RLock()
	defer m.listenersMutex.RUnlock()
	for _, l := range m.listeners {
		l.OnConnect(destination)
	}
}

func (m *MessageRouter) notifyDisconnect(destination NetworkDestination) {
	m.listenersMutex.RLock()
	defer m.listenersMutex.RUnlock()
	for _, l := range m.listeners {
		l.OnDisconnect(destination)
	}
}

// Connection binds a socket to its transmission tracker and to the
// reader and writer tasks servicing it. It doubles as the opaque
// transport-level identity a reply can be routed over.
type Connection struct {
	router  *MessageRouter
	conn    gonet.Conn
	dest    NetworkDestination
	tracker *TransmissionTracker

	closed    chan struct{}
	closeOnce sync.Once
}

// startConnection wires a freshly accepted or dialed socket into the
// router: one reader task and one writer task per connection. The
// single writer draining a FIFO queue is what preserves per-connection
// send order.
func (m *MessageRouter) startConnection(conn gonet.Conn, dest NetworkDestination) *Connection {
	c := &Connection{
		router:  m,
		conn:    conn,
		dest:    dest,
		tracker: NewTransmissionTracker(m.maxWriteQueueSize),
		closed:  make(chan struct{}),
	}
	m.invoker.Spawn(c.readLoop)
	m.invoker.Spawn(c.writeLoop)
	m.notifyConnect(dest)
	return c
}

// Destination is the remote endpoint of this connection.
func (c *Connection) Destination() NetworkDestination {
	return c.dest
}

// Tracker exposes the transmission state, letting callers observe
// write queue occupancy.
func (c *Connection) Tracker() *TransmissionTracker {
	return c.tracker
}

// Send frames the payload and enqueues it for transmission. A full
// write queue blocks the caller until space is available, the
// connection drops, or the router is forcibly shut down.
func (c *Connection) Send(payload []byte) error {
	frame := prefixFrame(payload)
	select {
	case c.tracker.pendingWrites <- frame:
		return nil
	case <-c.closed:
		return ErrConnectionClosed
	case <-c.router.force:
		return ErrRouterShutdown
	}
}

func (c *Connection) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *Connection) readLoop() {
	buf := make([]byte, c.router.readBufferSize)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			frames, ferr := c.tracker.assembler.Feed(buf[:n])
			for _, payload := range frames {
				c.router.dispatch(&GalileoMessage{Payload: payload, origin: c})
			}
			if ferr != nil {
				c.router.logger.Errorf("dropping %s: %v", c.dest, ferr)
				c.disconnect()
				return
			}
		}
		if err != nil {
			if err != io.EOF && !c.isClosed() {
				c.router.logger.Debugf("read from %s failed: %v", c.dest, err)
			}
			c.disconnect()
			return
		}
	}
}

func (c *Connection) writeLoop() {
	for {
		select {
		case frame := <-c.tracker.pendingWrites:
			if _, err := c.conn.Write(frame); err != nil {
				if !c.isClosed() {
					c.router.logger.Debugf("write to %s failed: %v", c.dest, err)
				}
				c.disconnect()
				return
			}
		case <-c.closed:
			return
		case <-c.router.force:
			c.disconnect()
			return
		}
	}
}

// disconnect tears the connection down exactly once and notifies
// listeners with the peer identity, so callers can observe the loss of
// whatever was still queued.
func (c *Connection) disconnect() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.conn.Close()
		if c.router.onDisconnect != nil {
			c.router.onDisconnect(c)
		}
		c.router.notifyDisconnect(c.dest)
	})
}

// drainPendingWrites polls the connection's write queue with
// escalating waits until it empties or the connection drops.
func (c *Connection) drainPendingWrites() {
	wait := shutdownInitialWait
	size := c.tracker.Pending()
	for c.tracker.Pending() > 0 {
		time.Sleep(wait)

		pending := c.tracker.Pending()
		if pending == 0 {
			return
		}
		c.router.logger.Infof("waiting to shut down; %d items remaining in write queue", pending)

		// If the queue did not get any smaller, increase the amount
		// of time to wait before polling again.
		if pending >= size && wait < shutdownLongestWait {
			wait += shutdownInitialWait
		}
		size = pending

		if c.isClosed() {
			c.router.logger.Error("connection terminated while emptying send buffer")
			return
		}
	}
}

func (m *MessageRouter) forceShutdown() {
	m.forceOnce.Do(func() {
		close(m.force)
	})
}
