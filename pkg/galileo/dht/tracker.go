package dht

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ReneKroon/ttlcache"

	"github.com/amilaSuriarachchi/galileo/pkg/galileo/net"
	"github.com/amilaSuriarachchi/galileo/pkg/galileo/types"
)

// DefaultQueryDeadline bounds how long a tracker waits for peers that
// never answer.
const DefaultQueryDeadline = 30 * time.Second

// QueryTracker correlates one in-flight fan-out query with the peers
// it was forwarded to and the client connection waiting on it.
type QueryTracker struct {
	id     string
	origin *net.Connection

	expected  map[string]types.NodeInfo
	responded map[string]int
	responses [][]byte

	deadline time.Time
	mutex    sync.Mutex
}

// Origin is the connection the originating client used; replies are
// routed over it rather than through a destination lookup.
func (t *QueryTracker) Origin() *net.Connection {
	return t.origin
}

func (t *QueryTracker) Id() string {
	return t.id
}

// Responses returns the accumulated opaque response bodies.
func (t *QueryTracker) Responses() [][]byte {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	out := make([][]byte, len(t.responses))
	copy(out, t.responses)
	return out
}

// record marks a peer as responded and reports whether every expected
// peer has now answered.
func (t *QueryTracker) record(peer string, response []byte) bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.responded[peer]++
	t.responses = append(t.responses, response)

	for key := range t.expected {
		if t.responded[key] == 0 {
			return false
		}
	}
	return true
}

// QueryTrackerTable is the per-node table of outstanding queries. Ids
// are "sessionId:counter"; the session id derives from the listen port
// so ids are globally unique without coordination, and the counter is
// a single atomic.
type QueryTrackerTable struct {
	logger    types.Logger
	sessionId string
	counter   uint64
	deadline  time.Duration

	mutex    sync.Mutex
	trackers map[string]*QueryTracker

	// Ids of completed or expired queries, kept briefly so a late
	// response can be told apart from a bogus one.
	closed *ttlcache.Cache

	stop     chan struct{}
	stopOnce sync.Once
}

func NewQueryTrackerTable(logger types.Logger, sessionId string, deadline time.Duration) *QueryTrackerTable {
	if deadline <= 0 {
		deadline = DefaultQueryDeadline
	}
	closed := ttlcache.NewCache()
	closed.SetTTL(2 * deadline)

	table := &QueryTrackerTable{
		logger:    logger,
		sessionId: sessionId,
		deadline:  deadline,
		trackers:  make(map[string]*QueryTracker),
		closed:    closed,
		stop:      make(chan struct{}),
	}
	go table.sweep()
	return table
}

// Open atomically allocates the next query id and inserts a tracker
// bound to the originating connection and the expected peer set.
func (t *QueryTrackerTable) Open(origin *net.Connection, peers []types.NodeInfo) string {
	id := fmt.Sprintf("%s:%d", t.sessionId, atomic.AddUint64(&t.counter, 1)-1)

	tracker := &QueryTracker{
		id:        id,
		origin:    origin,
		expected:  make(map[string]types.NodeInfo, len(peers)),
		responded: make(map[string]int),
		deadline:  time.Now().Add(t.deadline),
	}
	for _, peer := range peers {
		tracker.expected[peer.String()] = peer
	}

	t.mutex.Lock()
	t.trackers[id] = tracker
	t.mutex.Unlock()
	return tracker.id
}

// Record appends a peer response. The returned tracker is nil when the
// id is unknown; that is a warning condition, not an error, since late
// responses after the deadline are expected.
func (t *QueryTrackerTable) Record(id, peer string, response []byte) (bool, *QueryTracker) {
	t.mutex.Lock()
	tracker, ok := t.trackers[id]
	t.mutex.Unlock()
	if !ok {
		if _, late := t.closed.Get(id); late {
			t.logger.Warnf("late response from %s for closed query %s", peer, id)
		} else {
			t.logger.Warnf("unknown query response received: %s", id)
		}
		return false, nil
	}
	return tracker.record(peer, response), tracker
}

// Close removes and returns the tracker, remembering its id so late
// responses are recognized.
func (t *QueryTrackerTable) Close(id string) *QueryTracker {
	t.mutex.Lock()
	tracker, ok := t.trackers[id]
	if ok {
		delete(t.trackers, id)
	}
	t.mutex.Unlock()
	if !ok {
		return nil
	}
	t.closed.Set(id, true)
	return tracker
}

// Expire returns the ids whose deadline passed before now.
func (t *QueryTrackerTable) Expire(now time.Time) []string {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	var expired []string
	for id, tracker := range t.trackers {
		if tracker.deadline.Before(now) {
			expired = append(expired, id)
		}
	}
	return expired
}

// Outstanding reports how many queries are still being tracked.
func (t *QueryTrackerTable) Outstanding() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return len(t.trackers)
}

func (t *QueryTrackerTable) sweep() {
	interval := t.deadline / 10
	if interval > time.Second {
		interval = time.Second
	}
	for {
		select {
		case <-t.stop:
			return
		case <-time.After(interval):
			for _, id := range t.Expire(time.Now()) {
				t.Close(id)
				t.logger.Warnf("query %s expired before all peers responded", id)
			}
		}
	}
}

// Stop ends the deadline sweeper and releases the table's resources.
func (t *QueryTrackerTable) Stop() {
	t.stopOnce.Do(func() {
		close(t.stop)
		t.closed.Close()
	})
}
