// Package camtest provides a scripted transport for exercising the
// camera protocol without a peripheral.
package camtest

import "time"

// Transport implements camera.Transport against a scripted reply
// stream. Writes are recorded per call; reads drain the reply stream
// and come up short once it runs dry, which is exactly how a silent
// peripheral looks to the protocol layer.
type Transport struct {
	// Writes collects every frame written, one entry per Write call.
	Writes [][]byte
	// ShortWrite, when set, makes writes report one byte fewer than
	// requested.
	ShortWrite bool

	pending []byte
}

// Reply appends bytes to the scripted reply stream.
func (t *Transport) Reply(b ...byte) *Transport {
	t.pending = append(t.pending, b...)
	return t
}

// Read implements camera.Transport.
func (t *Transport) Read(p []byte) int {
	return t.ReadWithTimeout(p, 0)
}

// ReadWithTimeout implements camera.Transport.
func (t *Transport) ReadWithTimeout(p []byte, _ time.Duration) int {
	n := copy(p, t.pending)
	t.pending = t.pending[n:]
	return n
}

// Write implements camera.Transport.
func (t *Transport) Write(p []byte) int {
	return t.WriteWithTimeout(p, 0)
}

// WriteWithTimeout implements camera.Transport.
func (t *Transport) WriteWithTimeout(p []byte, _ time.Duration) int {
	frame := append([]byte(nil), p...)
	t.Writes = append(t.Writes, frame)
	if t.ShortWrite {
		return len(p) - 1
	}
	return len(p)
}

// Flush implements camera.Transport.
func (t *Transport) Flush() {}

// Pending returns the unconsumed remainder of the reply stream.
func (t *Transport) Pending() []byte {
	return t.pending
}
