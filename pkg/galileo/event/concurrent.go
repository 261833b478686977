package event

import (
	"errors"
	"sync"

	"github.com/amilaSuriarachchi/galileo/pkg/galileo/helper"
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/types"
)

// ConcurrentReactor runs a fixed pool of workers over the shared event
// queue, so handlers for events from different peers may execute in
// parallel. Take order from the queue stays FIFO; completion order
// across workers is unspecified. The handler set must tolerate
// concurrent invocation.
type ConcurrentReactor struct {
	*Reactor

	poolSize int
	invoker  *helper.Invoker

	mutex   sync.Mutex
	running bool
}

func NewConcurrentReactor(logger types.Logger, eventMap *Map, poolSize int) *ConcurrentReactor {
	return &ConcurrentReactor{
		Reactor:  NewReactor(logger, eventMap),
		poolSize: poolSize,
		invoker:  helper.NewInvoker(),
	}
}

// Start launches the worker pool. Each worker loops on
// ProcessNextEvent until the reactor stops.
func (c *ConcurrentReactor) Start() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.running {
		return
	}
	c.running = true

	for i := 0; i < c.poolSize; i++ {
		c.logger.Debugf("starting worker %d", i)
		c.invoker.Spawn(c.work)
	}
}

func (c *ConcurrentReactor) work() {
	for {
		if err := c.ProcessNextEvent(); err != nil {
			if !errors.Is(err, ErrReactorStopped) {
				c.logger.Warnf("error processing event: %v", err)
			}
			return
		}
	}
}

// Stop closes the queue and waits for every worker to exit. Workers
// finish the event they are handling.
func (c *ConcurrentReactor) Stop() {
	c.mutex.Lock()
	if !c.running {
		c.mutex.Unlock()
		c.Reactor.Stop()
		return
	}
	c.running = false
	c.mutex.Unlock()

	c.Reactor.Stop()
	c.invoker.Stop()
}
