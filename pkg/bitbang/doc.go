// Package bitbang emulates SPI and UART peripherals in software by
// toggling GPIO lines and pacing edges against a tick source.
package bitbang

// Both engines are strictly single-threaded and blocking: every
// transfer busy-waits on the calling goroutine until it completes or
// its receive timeout elapses. Pins are exclusively owned by the
// engine driving them; there is no internal locking and no support for
// concurrent use of one engine.
//
// Bus-level conditions (stuck lines, noise) are not observable as
// errors. The only failure signal is a returned byte count lower than
// requested, which callers treat as "operation incomplete".
