package net

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Every payload on the wire is preceded by a 4-byte big-endian unsigned
// length giving the byte count that follows.
const framePrefixSize = 4

// Frames larger than this are treated as a protocol violation and the
// connection is dropped.
const maxFrameSize = 256 << 20

var ErrFrameTooLarge = errors.New("frame exceeds maximum size")

// prefixFrame prepends the length prefix to a payload, exactly once,
// at enqueue time.
func prefixFrame(payload []byte) []byte {
	frame := make([]byte, framePrefixSize+len(payload))
	binary.BigEndian.PutUint32(frame, uint32(len(payload)))
	copy(frame[framePrefixSize:], payload)
	return frame
}

// FrameAssembler accumulates bytes from a connection and emits whole
// frames. It accepts arbitrary chunk boundaries: callers feed whatever
// the socket produced and collect zero or more completed payloads.
type FrameAssembler struct {
	header   []byte
	payload  []byte
	expected int
}

func NewFrameAssembler() *FrameAssembler {
	return &FrameAssembler{expected: -1}
}

// Feed consumes a chunk of bytes and returns the payloads of every
// frame completed by it.
func (a *FrameAssembler) Feed(chunk []byte) ([][]byte, error) {
	var frames [][]byte
	for len(chunk) > 0 {
		if a.expected < 0 {
			need := framePrefixSize - len(a.header)
			if need > len(chunk) {
				need = len(chunk)
			}
			a.header = append(a.header, chunk[:need]...)
			chunk = chunk[need:]
			if len(a.header) < framePrefixSize {
				break
			}
			size := binary.BigEndian.Uint32(a.header)
			if size > maxFrameSize {
				return frames, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
			}
			a.expected = int(size)
			a.payload = make([]byte, 0, a.expected)
		}

		need := a.expected - len(a.payload)
		if need > len(chunk) {
			need = len(chunk)
		}
		a.payload = append(a.payload, chunk[:need]...)
		chunk = chunk[need:]

		if len(a.payload) == a.expected {
			frames = append(frames, a.payload)
			a.header = a.header[:0]
			a.payload = nil
			a.expected = -1
		}
	}
	return frames, nil
}
