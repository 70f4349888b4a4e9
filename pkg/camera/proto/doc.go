// Package proto implements the framed command/acknowledgement
// protocol spoken by byte-oriented serial camera modules.
package proto

// A command frame is [sender, serial, command, length, payload...].
// Replies echo the peer's id, the serial number and the command, carry
// a status byte and a declared data length, and are validated
// byte-for-byte with exact-length reads: any shortfall or field
// mismatch fails the call outright, there is no partial
// interpretation and no retrying. Callers own retry policy.
//
// Producer: camera peripherals over a Transport
// Consumer: pkg/camera/lsy201, pkg/camera/vc0706
