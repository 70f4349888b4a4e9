// Package camera defines the contracts between serial camera drivers
// and their callers.
package camera

// A camera driver owns exactly one transport and inherits its
// single-threaded blocking model: one call completes or times out
// before the next is issued, with no pipelining of commands. The
// transport may be a hardware serial port wrapper or a bit-banged
// UART; the drivers cannot tell the difference.
//
// Producer: pkg/camera/lsy201, pkg/camera/vc0706
// Consumer: cmd/camerad, cmd/camsh
