package dht

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/amilaSuriarachchi/galileo/pkg/galileo/types"
)

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

func (l *warnCounter) warned(substring string) bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	for _, w := range l.warns {
		if strings.Contains(w, substring) {
			return true
		}
	}
	return false
}

func testPeers(n int) []types.NodeInfo {
	var peers []types.NodeInfo
	for i := 0; i < n; i++ {
		peers = append(peers, types.NodeInfo{Hostname: "127.0.0.1", Port: 6000 + i, Group: "test"})
	}
	return peers
}

func Test_QueryIdUniqueness(t *testing.T) {
	table := NewQueryTrackerTable(types.NewNopLogger(), "host-5555", time.Minute)
	defer table.Stop()

	const opens = 100
	ids := make(chan string, opens)
	var group sync.WaitGroup
	group.Add(opens)
	for i := 0; i < opens; i++ {
		go func() {
			defer group.Done()
			ids <- table.Open(nil, testPeers(1))
		}()
	}
	group.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate query id %s", id)
		}
		seen[id] = true
		if !strings.HasPrefix(id, "host-5555:") {
			t.Errorf("id %s does not carry the session prefix", id)
		}
	}
}

func Test_FirstIdUsesCounterZero(t *testing.T) {
	table := NewQueryTrackerTable(types.NewNopLogger(), "host-5555", time.Minute)
	defer table.Stop()

	if id := table.Open(nil, testPeers(1)); id != "host-5555:0" {
		t.Errorf("expected host-5555:0, got %s", id)
	}
}

func Test_TrackerCompleteness(t *testing.T) {
	table := NewQueryTrackerTable(types.NewNopLogger(), "host-5555", time.Minute)
	defer table.Stop()

	peers := testPeers(3)
	id := table.Open(nil, peers)

	for i, peer := range peers {
		done, tracker := table.Record(id, peer.String(), []byte(fmt.Sprintf("body-%d", i)))
		if tracker == nil {
			t.Fatalf("tracker disappeared after %d responses", i)
		}
		if expectDone := i == len(peers)-1; done != expectDone {
			t.Fatalf("after %d responses done=%v", i+1, done)
		}
	}

	tracker := table.Close(id)
	if tracker == nil {
		t.Fatal("completed tracker was not present at close")
	}
	if len(tracker.Responses()) != 3 {
		t.Errorf("expected 3 accumulated responses, got %d", len(tracker.Responses()))
	}
	if table.Outstanding() != 0 {
		t.Errorf("table should be empty, %d outstanding", table.Outstanding())
	}
}

func Test_DuplicateResponsesDoNotComplete(t *testing.T) {
	table := NewQueryTrackerTable(types.NewNopLogger(), "host-5555", time.Minute)
	defer table.Stop()

	peers := testPeers(2)
	id := table.Open(nil, peers)

	if done, _ := table.Record(id, peers[0].String(), []byte("a")); done {
		t.Fatal("one of two peers should not complete the tracker")
	}
	if done, _ := table.Record(id, peers[0].String(), []byte("a-again")); done {
		t.Fatal("a duplicate response should not complete the tracker")
	}
	if done, _ := table.Record(id, peers[1].String(), []byte("b")); !done {
		t.Fatal("all peers responded, tracker should be complete")
	}
}

func Test_UnknownIdIsWarningOnly(t *testing.T) {
	logger := &warnCounter{}
	table := NewQueryTrackerTable(logger, "host-5555", time.Minute)
	defer table.Stop()

	done, tracker := table.Record("host-9999:7", "peer", []byte("stray"))
	if done || tracker != nil {
		t.Error("unknown ids must not produce a tracker")
	}
	if !logger.warned("unknown query response") {
		t.Error("expected an unknown-response warning")
	}
}

func Test_LateResponseAfterClose(t *testing.T) {
	logger := &warnCounter{}
	table := NewQueryTrackerTable(logger, "host-5555", time.Minute)
	defer table.Stop()

	id := table.Open(nil, testPeers(1))
	table.Close(id)

	done, tracker := table.Record(id, "peer", []byte("late"))
	if done || tracker != nil {
		t.Error("late responses must be dropped")
	}
	if !logger.warned("late response") {
		t.Error("expected a late-response warning")
	}
}

func Test_DeadlineExpiry(t *testing.T) {
	logger := &warnCounter{}
	table := NewQueryTrackerTable(logger, "host-5555", 100*time.Millisecond)
	defer table.Stop()

	id := table.Open(nil, testPeers(2))

	deadline := time.After(5 * time.Second)
	for table.Outstanding() > 0 {
		select {
		case <-deadline:
			t.Fatal("tracker was not expired")
		case <-time.After(20 * time.Millisecond):
		}
	}
	if !logger.warned("expired") {
		t.Error("expected an expiry warning")
	}

	// A response after expiry is late, not unknown.
	if done, tracker := table.Record(id, "peer", []byte("late")); done || tracker != nil {
		t.Error("responses after expiry must be dropped")
	}
	if !logger.warned("late response") {
		t.Error("expected a late-response warning")
	}
}

func Test_ExpireReportsOnlyPastDeadline(t *testing.T) {
	table := NewQueryTrackerTable(types.NewNopLogger(), "host-5555", time.Minute)
	defer table.Stop()

	id := table.Open(nil, testPeers(1))
	if expired := table.Expire(time.Now()); len(expired) != 0 {
		t.Errorf("nothing should be expired yet: %v", expired)
	}
	expired := table.Expire(time.Now().Add(2 * time.Minute))
	if len(expired) != 1 || expired[0] != id {
		t.Errorf("expected [%s], got %v", id, expired)
	}
}
