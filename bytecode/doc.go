// Package bytecode defines the IonVM instruction and value object model and
// its binary wire codec.
//
// Instructions are immutable records addressed by index; relative jump
// offsets are instruction-count deltas, never byte deltas, and are measured
// from the jump instruction's own index (target = index + offset). The wire
// format is a one-byte operation tag followed by fixed-width little-endian
// operand fields: u32 registers and counts, i32 jump offsets, f64 numbers,
// and u32-length-prefixed UTF-8 strings.
package bytecode
