package net

// TransmissionTracker holds the per-connection transmission state: the
// bounded FIFO of outbound frames and the partial read-assembly buffer.
// It is owned by the connection's reader and writer tasks while the
// connection is live; enqueueing onto the write queue is the only
// cross-task access and relies on the channel's own synchronization.
type TransmissionTracker struct {
	pendingWrites chan []byte
	assembler     *FrameAssembler
}

func NewTransmissionTracker(maxWriteQueueSize int) *TransmissionTracker {
	return &TransmissionTracker{
		pendingWrites: make(chan []byte, maxWriteQueueSize),
		assembler:     NewFrameAssembler(),
	}
}

// Pending reports the occupancy of the write queue. Callers wanting
// non-blocking send semantics check this before enqueueing.
func (t *TransmissionTracker) Pending() int {
	return len(t.pendingWrites)
}
