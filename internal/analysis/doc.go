// Package analysis calls the text-analysis endpoints of the backend.
//
// The analysis engine itself is remote; this package validates input,
// sends it, and maps failures onto domain errors.
package analysis
