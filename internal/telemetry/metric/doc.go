// Package metric provides Prometheus metrics for the NoteGuard client.
//
// The CLI has no scrape endpoint; metrics are kept in a private registry,
// fed by an instrumented HTTP transport, and printed on demand by
// "system metrics" or the REPL.
package metric
