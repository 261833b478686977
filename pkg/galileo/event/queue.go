package event

import (
	"sync"

	"github.com/amilaSuriarachchi/galileo/pkg/galileo/net"
)

// messageQueue is the unbounded FIFO between the message router and
// the reactor workers. Push never blocks; take blocks until an item
// arrives or the queue is closed.
type messageQueue struct {
	mutex  sync.Mutex
	ready  *sync.Cond
	items  []*net.GalileoMessage
	closed bool
}

func newMessageQueue() *messageQueue {
	q := &messageQueue{}
	q.ready = sync.NewCond(&q.mutex)
	return q
}

func (q *messageQueue) push(m *net.GalileoMessage) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	if q.closed {
		return
	}
	q.items = append(q.items, m)
	q.ready.Signal()
}

func (q *messageQueue) take() (*net.GalileoMessage, bool) {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.ready.Wait()
	}
	if len(q.items) == 0 {
		return nil, false
	}
	m := q.items[0]
	q.items = q.items[1:]
	return m, true
}

func (q *messageQueue) size() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	return len(q.items)
}

func (q *messageQueue) close() {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	q.closed = true
	q.ready.Broadcast()
}
