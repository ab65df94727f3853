// Package controlflow lowers structured control constructs into flat
// register-machine instruction sequences addressed by relative jumps.
//
// Two builders are provided. ChainBuilder lowers if / else-if / else chains
// with short-circuit condition evaluation: a condition built with
// FromInstructions contributes its evaluation code only on the control path
// that reaches its branch. LoopBuilder lowers while loops with break and
// continue, a then arm taken on normal exit, and an else arm taken on break
// exit.
//
// Both builders work in two passes over a length-preserving layout: an
// emission pass produces the sequence with placeholder jumps, and a patch
// pass rewrites each placeholder with a concrete offset once every address
// is known. Offsets are instruction-count deltas measured from the jump's
// own index, matching the interpreter's program-counter update order.
//
// Builders are synchronous, single-use, and not safe for concurrent use;
// each instance models exactly one compile-time construct. Discarding a
// builder without calling Build has no effects to undo.
package controlflow
