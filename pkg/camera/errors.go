package camera

import "errors"

var (
	// ErrUnsupportedSize indicates a resolution absent from the
	// peripheral's lookup table. Nothing was sent.
	ErrUnsupportedSize = errors.New("unsupported image size")
	// ErrUnsupportedBaud indicates a baud rate absent from the
	// peripheral's lookup table. Nothing was sent.
	ErrUnsupportedBaud = errors.New("unsupported baud rate")
)
