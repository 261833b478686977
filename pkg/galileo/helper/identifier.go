package helper

import (
	"fmt"
	"os"
)

// SessionID derives a stable identifier for a node from its hostname
// and listen port. Query ids are formed as "sessionID:counter", so this
// must be deterministic and unique across the cluster without any
// coordination; one listening process per host and port guarantees
// that.
func SessionID(port int) string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	return fmt.Sprintf("%s-%d", hostname, port)
}
