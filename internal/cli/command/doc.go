// Package command defines the noteguard-cli commands on urfave/cli/v2.
//
//   - root.go: application, global flags, error formatting
//   - env.go: per-run wiring of config, transport, session and services
//   - auth.go: login, logout, registration and account commands
//   - analyze.go, render.go: text analysis and result rendering
//   - history.go: stored analyses
//   - system.go: health, version and metrics
//   - config.go: local configuration
//   - repl.go: interactive mode
//
// Every command runs against an Env built once per process (or once per
// REPL) in the application's Before hook.
package command
