package proto

import (
	"encoding/binary"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/softserial.go/pkg/camera"
)

// Default frame header ids used by the supported camera families.
const (
	DefaultSenderID byte = 0x56
	DefaultReplyID  byte = 0x76
)

// DefaultReaction is the allowance added to read timeouts for the
// peripheral to start answering.
const DefaultReaction = 50 * time.Millisecond

// settleDelay is the pause between the data-phase ACK and the data
// block itself.
const settleDelay = 10 * time.Millisecond

// Transfers are budgeted at 12 bits per byte rather than the nominal
// 10 to absorb framing overhead and clock slack.
const bitsPerByteBudget = 12

// Tracer receives byte-level protocol diagnostics. It is injectable so
// tests can assert on the dumped traffic; when unset, traffic goes to
// glog at verbosity 4.
type Tracer interface {
	Trace(op string, data []byte)
}

// TraceFunc is the func form of Tracer.
type TraceFunc func(op string, data []byte)

// Trace implements Tracer.
func (f TraceFunc) Trace(op string, data []byte) {
	f(op, data)
}

// Link frames commands over one transport. It performs no locking:
// like the transports underneath, a Link is single-threaded and one
// operation must finish before the next starts.
type Link struct {
	Transport camera.Transport

	// SenderID stamps outgoing frames; ReplyID is expected back.
	SenderID byte
	ReplyID  byte
	// Serial is the sequence id echoed by the peer.
	Serial byte
	// Baud is the transport's line rate, used for timeout budgets.
	Baud int
	// Reaction is added to reply timeouts. Zero means DefaultReaction.
	Reaction time.Duration
	// Tracer, when set, receives all framed traffic.
	Tracer Tracer
	// Sleep is the settling-delay hook. Zero value means time.Sleep.
	Sleep func(time.Duration)
}

// New creates a Link with the conventional ids for camera modules.
func New(t camera.Transport, baud int) *Link {
	return &Link{
		Transport: t,
		SenderID:  DefaultSenderID,
		ReplyID:   DefaultReplyID,
		Baud:      baud,
	}
}

// TransferTimeout budgets moving n bytes at the configured baud rate:
// 12 bits per byte, in milliseconds rounded up to the next multiple
// of 10.
func (l *Link) TransferTimeout(n int) time.Duration {
	baud := l.Baud
	if baud <= 0 {
		baud = 9600
	}
	ms := n * bitsPerByteBudget * 1000 / baud
	return time.Duration(ms/10+1) * 10 * time.Millisecond
}

func (l *Link) reaction() time.Duration {
	if l.Reaction > 0 {
		return l.Reaction
	}
	return DefaultReaction
}

func (l *Link) sleep(d time.Duration) {
	if l.Sleep != nil {
		l.Sleep(d)
		return
	}
	time.Sleep(d)
}

func (l *Link) trace(op string, data []byte) {
	if l.Tracer != nil {
		l.Tracer.Trace(op, data)
		return
	}
	if glog.V(4) {
		glog.Infof("proto %s % x", op, data)
	}
}

// Send writes one command frame. A command without payload still
// carries its zero length byte. It fails unless the full frame is
// written within the transfer budget.
func (l *Link) Send(cmd byte, payload []byte) error {
	frame := make([]byte, 0, 4+len(payload))
	frame = append(frame, l.SenderID, l.Serial, cmd, byte(len(payload)))
	frame = append(frame, payload...)
	l.trace("send", frame)
	if n := l.Transport.WriteWithTimeout(frame, l.TransferTimeout(len(frame))); n != len(frame) {
		return ErrShortWrite
	}
	return nil
}

// Ack consumes the plain 5-byte acknowledgement for cmd using the
// link's reaction allowance.
func (l *Link) Ack(cmd byte) error {
	return l.AckWithin(cmd, l.reaction())
}

// AckWithin consumes the plain 5-byte acknowledgement for cmd, giving
// the peripheral the supplied reaction allowance on top of the
// transfer budget.
func (l *Link) AckWithin(cmd byte, reaction time.Duration) error {
	buf := make([]byte, 5)
	n := l.Transport.ReadWithTimeout(buf, l.TransferTimeout(len(buf))+reaction)
	l.trace("ack", buf[:n])
	if n != len(buf) {
		return ErrShortRead
	}
	if err := l.checkHeader(cmd, buf); err != nil {
		return err
	}
	if buf[4] != 0 {
		return &AckError{Cmd: cmd, Reply: buf}
	}
	return nil
}

// AckUint32 consumes a 9-byte acknowledgement carrying one big-endian
// 32-bit value. A declared data length other than 4 rejects the reply.
func (l *Link) AckUint32(cmd byte) (uint32, error) {
	buf := make([]byte, 9)
	n := l.Transport.ReadWithTimeout(buf, l.TransferTimeout(len(buf))+l.reaction())
	l.trace("ack", buf[:n])
	if n != len(buf) {
		return 0, ErrShortRead
	}
	if err := l.checkHeader(cmd, buf); err != nil {
		return 0, err
	}
	if buf[4] != 4 {
		return 0, &AckError{Cmd: cmd, Reply: buf}
	}
	return binary.BigEndian.Uint32(buf[5:9]), nil
}

// AckString consumes an acknowledgement whose length byte announces a
// string, then reads exactly that many bytes in a second timed read.
func (l *Link) AckString(cmd byte) (string, error) {
	head := make([]byte, 5)
	n := l.Transport.ReadWithTimeout(head, l.TransferTimeout(len(head))+l.reaction())
	l.trace("ack", head[:n])
	if n != len(head) {
		return "", ErrShortRead
	}
	if err := l.checkHeader(cmd, head); err != nil {
		return "", err
	}
	if head[4] == 0 {
		return "", &AckError{Cmd: cmd, Reply: head}
	}
	str := make([]byte, int(head[4]))
	if n := l.Transport.ReadWithTimeout(str, l.TransferTimeout(len(str))+l.reaction()); n != len(str) {
		return "", ErrShortRead
	}
	l.trace("str", str)
	return string(str), nil
}

// ReadText reads unframed text, up to max bytes or until the timeout
// elapses. Camera modules greet with such a banner once after reset.
func (l *Link) ReadText(max int, timeout time.Duration) string {
	buf := make([]byte, max)
	n := l.Transport.ReadWithTimeout(buf, timeout)
	l.trace("text", buf[:n])
	return string(buf[:n])
}

// ReadData runs the data phase of picture retrieval: command, ACK,
// settling delay, an exact read of size bytes, and the trailing ACK
// the peripheral sends after the block. A short data read discards
// the partially filled buffer and fails; ownership transfers to the
// caller only on success.
func (l *Link) ReadData(cmd byte, payload []byte, size int) ([]byte, error) {
	if err := l.Send(cmd, payload); err != nil {
		return nil, err
	}
	if err := l.Ack(cmd); err != nil {
		return nil, err
	}
	l.sleep(settleDelay)
	buf := make([]byte, size)
	if n := l.Transport.ReadWithTimeout(buf, l.reaction()+l.TransferTimeout(size)); n != size {
		return nil, ErrShortRead
	}
	if err := l.Ack(cmd); err != nil {
		return nil, err
	}
	return buf, nil
}

func (l *Link) checkHeader(cmd byte, reply []byte) error {
	if reply[0] != l.ReplyID || reply[1] != l.Serial || reply[2] != cmd || reply[3] != 0 {
		return &AckError{Cmd: cmd, Reply: reply}
	}
	return nil
}
