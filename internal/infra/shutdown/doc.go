// Package shutdown turns termination signals into context cancellation.
//
// The first SIGINT or SIGTERM cancels the returned context so that an
// in-flight request or the REPL loop can return cleanly. A second signal
// forces the process to exit.
//
// Usage:
//
//	ctx, stop := shutdown.WithSignals(context.Background())
//	defer stop()
//	err := app.RunContext(ctx, os.Args)
package shutdown
