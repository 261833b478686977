package event

import (
	"errors"
	"fmt"

	"github.com/amilaSuriarachchi/galileo/pkg/galileo/net"
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/serialization"
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/types"
)

var ErrReactorStopped = errors.New("event reactor stopped")

// HandlerContext is what a handler receives: the deserialized event
// plus the originating message, whose connection identity is used for
// reply routing.
type HandlerContext struct {
	Event   Event
	Message *net.GalileoMessage
}

// Handler runs on a reactor worker. With more than one worker, handlers
// must be safe under concurrent invocation.
type Handler func(ctx *HandlerContext)

// Reactor consumes framed payloads from the message router,
// deserializes each into a typed event and dispatches it to the
// handler registered for its tag. In single-threaded mode the caller
// owns the processing loop via ProcessNextEvent.
type Reactor struct {
	logger   types.Logger
	eventMap *Map
	handlers map[Type]Handler
	queue    *messageQueue
}

func NewReactor(logger types.Logger, eventMap *Map) *Reactor {
	return &Reactor{
		logger:   logger,
		eventMap: eventMap,
		handlers: make(map[Type]Handler),
		queue:    newMessageQueue(),
	}
}

// RegisterHandler binds a tag to its handler. Exactly one handler per
// tag; a second registration replaces the first.
func (e *Reactor) RegisterHandler(t Type, h Handler) {
	e.handlers[t] = h
}

// Pending reports how many payloads are waiting in the queue.
func (e *Reactor) Pending() int {
	return e.queue.size()
}

// OnMessage implements net.MessageListener; it defers all work to the
// reactor's queue so the router's read task never blocks on a handler.
func (e *Reactor) OnMessage(message *net.GalileoMessage) {
	e.queue.push(message)
}

// OnConnect implements net.MessageListener.
func (e *Reactor) OnConnect(destination net.NetworkDestination) {
	e.logger.Debugf("connected to %s", destination)
}

// OnDisconnect implements net.MessageListener.
func (e *Reactor) OnDisconnect(destination net.NetworkDestination) {
	e.logger.Debugf("disconnected from %s", destination)
}

// Stop closes the queue; blocked ProcessNextEvent calls return
// ErrReactorStopped. In-flight handlers finish their current event.
func (e *Reactor) Stop() {
	e.queue.close()
}

// ProcessNextEvent blocks for the next framed payload and runs its
// handler. Serialization problems and unknown tags are logged and
// dropped; only reactor shutdown is reported to the caller.
func (e *Reactor) ProcessNextEvent() error {
	message, ok := e.queue.take()
	if !ok {
		return ErrReactorStopped
	}
	if err := e.processMessage(message); err != nil {
		e.logger.Warnf("failed to process incoming message: %v", err)
	}
	return nil
}

func (e *Reactor) processMessage(message *net.GalileoMessage) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	container, err := DeserializeContainer(serialization.NewReader(message.Payload))
	if err != nil {
		return fmt.Errorf("malformed event container: %w", err)
	}

	deserializer, ok := e.eventMap.lookup(container.Type)
	if !ok {
		e.logger.Warnf("no deserializer found for event type %d", int32(container.Type))
		return nil
	}
	handler, ok := e.handlers[container.Type]
	if !ok {
		e.logger.Warnf("no handler found for event type %d", int32(container.Type))
		return nil
	}

	evt, err := deserializer(serialization.NewReader(container.Body))
	if err != nil {
		return fmt.Errorf("failed to deserialize %s event: %w", container.Type, err)
	}

	handler(&HandlerContext{Event: evt, Message: message})
	return nil
}
