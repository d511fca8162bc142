// Package highlight maps analysis findings onto a linear rendering of the
// analysed text.
//
// Grammar spans and repeated words are indexed independently and may
// overlap. Build turns them into an ordered list of disjoint segments whose
// texts, concatenated, give back the input exactly. Offsets are Unicode
// code points, as produced by the backend.
//
// Overlaps are clipped: a range that starts inside an earlier one keeps
// only its uncovered tail, and a range that is fully covered is dropped.
// Ranges with the same start keep their input order, grammar first.
package highlight
