// Package hw defines the narrow hardware contracts consumed by the
// software serial engines.
package hw

// The engines in pkg/bitbang drive raw GPIO lines and pace themselves
// against a monotonic tick counter. Both capabilities are provided by
// the platform, not by this repository: pkg/hw/periphio binds real
// pins through periph.io, pkg/hw/clk binds the system clock, and
// pkg/hw/sim provides an in-memory board for tests.
//
// Producer: platform bindings (periphio, clk, sim)
// Consumer: bitbang engines and anything pacing pin-level I/O
