package shutdown

import (
	"context"
	"syscall"
	"testing"
	"time"
)

func TestWithSignals_CancelsOnSignal(t *testing.T) {
	ctx, stop := WithSignals(context.Background(), WithSignalSet(syscall.SIGUSR1))
	defer stop()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGUSR1); err != nil {
		t.Fatalf("kill: %v", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled after signal")
	}
}

func TestWithSignals_SecondSignalForces(t *testing.T) {
	forced := make(chan struct{})
	ctx, stop := WithSignals(context.Background(),
		WithSignalSet(syscall.SIGUSR2),
		WithForce(func() { close(forced) }),
	)
	defer stop()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGUSR2); err != nil {
		t.Fatalf("kill: %v", err)
	}
	<-ctx.Done()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGUSR2); err != nil {
		t.Fatalf("kill: %v", err)
	}
	select {
	case <-forced:
	case <-time.After(2 * time.Second):
		t.Fatal("second signal did not force")
	}
}

func TestWithSignals_Stop(t *testing.T) {
	ctx, stop := WithSignals(context.Background(), WithForce(func() {
		t.Error("force called without a signal")
	}))

	stop()
	stop()

	select {
	case <-ctx.Done():
	default:
		t.Fatal("stop did not cancel the context")
	}
}

func TestWithSignals_ParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := WithSignals(parent)
	defer stop()

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("parent cancellation not propagated")
	}
}
