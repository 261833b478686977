package net

import (
	"fmt"
	gonet "net"
	"sync"
	"time"

	"github.com/amilaSuriarachchi/galileo/pkg/galileo/types"
)

// ServerMessageRouter accepts inbound connections and routes their
// assembled frames to registered listeners.
type ServerMessageRouter struct {
	*MessageRouter

	port     int
	listener gonet.Listener

	connections map[*Connection]struct{}
	connMutex   sync.Mutex

	shutdown     bool
	shutdownCh   chan struct{}
	shutdownLock sync.Mutex
}

func NewServerMessageRouter(logger types.Logger, port int) *ServerMessageRouter {
	return NewServerMessageRouterSized(logger, port, DefaultReadBufferSize, DefaultMaxWriteQueueSize)
}

func NewServerMessageRouterSized(logger types.Logger, port, readBufferSize, maxWriteQueueSize int) *ServerMessageRouter {
	s := &ServerMessageRouter{
		MessageRouter: newMessageRouter(logger, readBufferSize, maxWriteQueueSize),
		port:          port,
		connections:   make(map[*Connection]struct{}),
		shutdownCh:    make(chan struct{}),
	}
	s.onDisconnect = s.removeConnection
	return s
}

// Listen binds the listen socket and starts accepting connections. A
// bind failure is returned immediately so the caller can fail fast.
func (s *ServerMessageRouter) Listen() error {
	lis, err := gonet.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("could not bind to port %d: %w", s.port, err)
	}
	s.listener = lis
	s.invoker.Spawn(s.acceptLoop)
	return nil
}

// Port reports the actual listen port, which differs from the
// requested one when port 0 was asked for.
func (s *ServerMessageRouter) Port() int {
	if s.listener == nil {
		return s.port
	}
	return s.listener.Addr().(*gonet.TCPAddr).Port
}

func (s *ServerMessageRouter) acceptLoop() {
	const baseDelay = 5 * time.Millisecond
	const maxDelay = 1 * time.Second

	var loopDelay time.Duration
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.IsShutdown() {
				return
			}
			if loopDelay == 0 {
				loopDelay = baseDelay
			} else {
				loopDelay *= 2
			}
			if loopDelay > maxDelay {
				loopDelay = maxDelay
			}
			s.logger.Errorf("failed to accept connection: %v", err)

			select {
			case <-s.shutdownCh:
				return
			case <-time.After(loopDelay):
				continue
			}
		}

		loopDelay = 0
		dest := destinationOf(conn.RemoteAddr())
		s.logger.Debugf("accepted connection from %s", dest)
		c := s.startConnection(conn, dest)
		s.connMutex.Lock()
		s.connections[c] = struct{}{}
		s.connMutex.Unlock()
	}
}

func (s *ServerMessageRouter) removeConnection(c *Connection) {
	s.connMutex.Lock()
	defer s.connMutex.Unlock()
	delete(s.connections, c)
}

func (s *ServerMessageRouter) IsShutdown() bool {
	select {
	case <-s.shutdownCh:
		return true
	default:
		return false
	}
}

// Shutdown stops accepting, drains every connection's write queue and
// closes the sockets. Blocks until all router tasks have exited.
func (s *ServerMessageRouter) Shutdown() error {
	return s.close(false)
}

// ForceShutdown is immediate: pending writes are discarded and blocked
// senders are released.
func (s *ServerMessageRouter) ForceShutdown() error {
	return s.close(true)
}

func (s *ServerMessageRouter) close(forcible bool) error {
	s.shutdownLock.Lock()
	defer s.shutdownLock.Unlock()
	if s.shutdown {
		return nil
	}
	s.shutdown = true
	close(s.shutdownCh)

	if forcible {
		s.forceShutdown()
	}

	if s.listener != nil {
		s.listener.Close()
	}

	s.connMutex.Lock()
	conns := make([]*Connection, 0, len(s.connections))
	for c := range s.connections {
		conns = append(conns, c)
	}
	s.connMutex.Unlock()

	for _, c := range conns {
		if !forcible {
			c.drainPendingWrites()
		}
		c.disconnect()
	}

	s.invoker.Stop()
	return nil
}

func destinationOf(addr gonet.Addr) NetworkDestination {
	if tcp, ok := addr.(*gonet.TCPAddr); ok {
		return NetworkDestination{Hostname: tcp.IP.String(), Port: tcp.Port}
	}
	dest, err := ParseNetworkDestination(addr.String())
	if err != nil {
		return NetworkDestination{Hostname: addr.String()}
	}
	return dest
}
