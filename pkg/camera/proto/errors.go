package proto

import (
	"errors"
	"fmt"
)

var (
	// ErrShortWrite indicates the command frame was not fully written
	// within the baud-derived timeout.
	ErrShortWrite = errors.New("short write")
	// ErrShortRead indicates a reply or data block arrived with fewer
	// bytes than declared before the timeout elapsed.
	ErrShortRead = errors.New("short read")
)

// AckError reports a reply whose header fields disagree with the
// command they should acknowledge.
type AckError struct {
	Cmd   byte
	Reply []byte
}

// Error implements error.
func (e *AckError) Error() string {
	return fmt.Sprintf("bad ack for command %02x: % x", e.Cmd, e.Reply)
}
