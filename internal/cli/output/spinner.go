package output

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner draws an animation on one line while a request is in flight.
// It is safe to stop from any goroutine; only the first stop has effect.
type Spinner struct {
	w        io.Writer
	interval time.Duration
	ok, fail lipgloss.Style

	mu      sync.Mutex
	message string
	started bool
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewSpinner creates a spinner writing to w.
func NewSpinner(w io.Writer, message string) *Spinner {
	r := lipgloss.NewRenderer(w)
	return &Spinner{
		w:        w,
		interval: 100 * time.Millisecond,
		ok:       r.NewStyle().Foreground(lipgloss.Color("#43A047")),
		fail:     r.NewStyle().Foreground(lipgloss.Color("#E53935")),
		message:  message,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// SetMessage replaces the text shown next to the animation.
func (s *Spinner) SetMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Start starts the animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for i := 0; ; i++ {
			s.mu.Lock()
			fmt.Fprintf(s.w, "\r%s %s", spinnerFrames[i%len(spinnerFrames)], s.message)
			s.mu.Unlock()

			select {
			case <-s.stop:
				return
			case <-ticker.C:
			}
		}
	}()
}

// Stop stops the animation and clears the line.
func (s *Spinner) Stop() {
	s.finish("\r\033[K")
}

// Success stops the animation with a success line.
func (s *Spinner) Success(message string) {
	s.finish(fmt.Sprintf("\r\033[K%s %s\n", s.ok.Render("✓"), message))
}

// Fail stops the animation with a failure line.
func (s *Spinner) Fail(message string) {
	s.finish(fmt.Sprintf("\r\033[K%s %s\n", s.fail.Render("✗"), message))
}

func (s *Spinner) finish(final string) {
	s.once.Do(func() {
		close(s.stop)
		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if started {
			<-s.done
		}
		s.mu.Lock()
		fmt.Fprint(s.w, final)
		s.mu.Unlock()
	})
}
