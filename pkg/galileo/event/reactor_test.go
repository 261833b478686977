package event

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/amilaSuriarachchi/galileo/pkg/galileo/net"
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/serialization"
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/types"
)

// warnCounter records warnings so tests can assert on drop behavior.
type warnCounter struct {
	types.NopLogger
	mutex sync.Mutex
	warns []string
}

func (l *warnCounter) Warnf(format string, v ...interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.warns = append(l.warns, fmt.Sprintf(format, v...))
}

func (l *warnCounter) count() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return len(l.warns)
}

// textEvent is a minimal event for reactor tests.
type textEvent struct {
	tag  Type
	text string
}

func (e *textEvent) EventType() Type {
	return e.tag
}

func (e *textEvent) Serialize(w *serialization.Writer) error {
	return w.WriteString(e.text)
}

func textDeserializer(tag Type) Deserializer {
	return func(r *serialization.Reader) (Event, error) {
		text, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		return &textEvent{tag: tag, text: text}, nil
	}
}

func wireMessage(t *testing.T, e Event) *net.GalileoMessage {
	t.Helper()
	payload, err := Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return net.NewGalileoMessage(payload)
}

func Test_DispatchToRegisteredHandler(t *testing.T) {
	m := NewMap()
	m.Register(Query, textDeserializer(Query))

	reactor := NewReactor(types.NewNopLogger(), m)
	var handled []string
	reactor.RegisterHandler(Query, func(ctx *HandlerContext) {
		handled = append(handled, ctx.Event.(*textEvent).text)
	})

	reactor.OnMessage(wireMessage(t, &textEvent{tag: Query, text: "one"}))
	reactor.OnMessage(wireMessage(t, &textEvent{tag: Query, text: "two"}))

	for i := 0; i < 2; i++ {
		if err := reactor.ProcessNextEvent(); err != nil {
			t.Fatalf("process: %v", err)
		}
	}

	if len(handled) != 2 || handled[0] != "one" || handled[1] != "two" {
		t.Errorf("unexpected handling order: %v", handled)
	}
}

func Test_UnknownTagDropped(t *testing.T) {
	logger := &warnCounter{}
	reactor := NewReactor(logger, NewMap())
	reactor.OnMessage(wireMessage(t, &textEvent{tag: Type(99), text: "mystery"}))

	if err := reactor.ProcessNextEvent(); err != nil {
		t.Fatalf("unknown tags must not be fatal: %v", err)
	}
	if logger.count() != 1 {
		t.Errorf("expected one warning, got %d", logger.count())
	}
}

func Test_MalformedBodyDropped(t *testing.T) {
	logger := &warnCounter{}
	m := NewMap()
	m.Register(Query, textDeserializer(Query))
	reactor := NewReactor(logger, m)
	reactor.RegisterHandler(Query, func(ctx *HandlerContext) {
		t.Error("a malformed body must not reach the handler")
	})

	container := &Container{Type: Query, Body: []byte{0, 0, 0, 42}}
	payload, err := serialization.Serialize(container)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	reactor.OnMessage(net.NewGalileoMessage(payload))

	if err := reactor.ProcessNextEvent(); err != nil {
		t.Fatalf("malformed bodies must not be fatal: %v", err)
	}
	if logger.count() != 1 {
		t.Errorf("expected one warning, got %d", logger.count())
	}
}

func Test_HandlerPanicContained(t *testing.T) {
	logger := &warnCounter{}
	m := NewMap()
	m.Register(Query, textDeserializer(Query))
	reactor := NewReactor(logger, m)
	reactor.RegisterHandler(Query, func(ctx *HandlerContext) {
		panic("handler exploded")
	})

	reactor.OnMessage(wireMessage(t, &textEvent{tag: Query, text: "boom"}))
	if err := reactor.ProcessNextEvent(); err != nil {
		t.Fatalf("handler panic must not kill the loop: %v", err)
	}
	if logger.count() != 1 {
		t.Errorf("expected one warning, got %d", logger.count())
	}
}

func Test_StopUnblocksProcessing(t *testing.T) {
	reactor := NewReactor(types.NewNopLogger(), NewMap())
	done := make(chan error, 1)
	go func() { done <- reactor.ProcessNextEvent() }()

	time.Sleep(50 * time.Millisecond)
	reactor.Stop()

	select {
	case err := <-done:
		if !errors.Is(err, ErrReactorStopped) {
			t.Errorf("expected ErrReactorStopped, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ProcessNextEvent did not return after Stop")
	}
}

func Test_ConcurrentReactorProcessesAll(t *testing.T) {
	m := NewMap()
	m.Register(Storage, textDeserializer(Storage))

	reactor := NewConcurrentReactor(types.NewNopLogger(), m, 4)
	const count = 500
	var group sync.WaitGroup
	group.Add(count)
	var mutex sync.Mutex
	seen := make(map[string]bool)
	reactor.RegisterHandler(Storage, func(ctx *HandlerContext) {
		defer group.Done()
		mutex.Lock()
		seen[ctx.Event.(*textEvent).text] = true
		mutex.Unlock()
	})

	reactor.Start()
	for i := 0; i < count; i++ {
		reactor.OnMessage(wireMessage(t, &textEvent{tag: Storage, text: fmt.Sprintf("evt-%d", i)}))
	}

	waitDone := make(chan struct{})
	go func() { group.Wait(); close(waitDone) }()
	select {
	case <-waitDone:
	case <-time.After(10 * time.Second):
		t.Fatal("workers did not process every event")
	}

	if len(seen) != count {
		t.Errorf("expected %d distinct events, saw %d", count, len(seen))
	}
	reactor.Stop()
}
