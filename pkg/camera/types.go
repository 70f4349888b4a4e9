package camera

import "time"

// Transport moves raw bytes to and from the peripheral. Results are
// byte counts, never errors: a count lower than requested means the
// operation is incomplete and the caller decides what that implies.
type Transport interface {
	// Read fills p within the transport's default timeout.
	Read(p []byte) int
	// Write sends p.
	Write(p []byte) int
	// ReadWithTimeout fills p, bounding the whole call by timeout.
	// Zero selects the transport's default.
	ReadWithTimeout(p []byte, timeout time.Duration) int
	// WriteWithTimeout sends p within timeout where the transport can
	// honor it.
	WriteWithTimeout(p []byte, timeout time.Duration) int
	// Flush discards any buffered state.
	Flush()
}

// Camera is the operation set shared by all supported peripherals.
type Camera interface {
	// Reset reboots the peripheral and consumes its boot banner.
	Reset() error
	// SetImageSize selects the capture resolution. Unsupported pairs
	// are rejected locally before any bytes are sent.
	SetImageSize(w, h int) error
	// TakeSnapshot freezes the current frame into the peripheral's
	// buffer for retrieval.
	TakeSnapshot() error
	// PictureSize returns the byte length of the buffered picture.
	PictureSize() (int, error)
	// Picture retrieves the buffered picture. The returned buffer is
	// owned by the caller; on any failure no buffer is returned.
	Picture() ([]byte, error)
}
