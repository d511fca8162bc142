// Package buildinfo exposes the version of the noteguard-cli binary.
//
// Values are injected via ldflags at release time; local builds fall back
// to the module information embedded by the Go toolchain.
package buildinfo
