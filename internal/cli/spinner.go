package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// spinnerFrames is the braille animation cycle shown while rendering.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner is a terminal progress indicator for slow pipeline stages. It
// animates on stderr so command output on stdout stays clean, and winds
// down on its own when the parent context is cancelled.
type Spinner struct {
	message string
	parent  context.Context
	quit    chan struct{}
	wound   chan struct{}
	once    sync.Once
	mu      sync.Mutex
}

// newSpinner creates a spinner that only stops explicitly.
func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext creates a spinner that also stops when ctx is
// cancelled.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	return &Spinner{
		message: message,
		parent:  ctx,
		quit:    make(chan struct{}),
		wound:   make(chan struct{}),
	}
}

// Start begins the animation. Every started spinner must be stopped with
// one of the Stop methods before the process prints anything else to
// stderr.
func (s *Spinner) Start() {
	go func() {
		defer close(s.wound)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.parent.Done():
				s.clearLine()
				return
			case <-s.quit:
				return
			case <-ticker.C:
				frame := spinnerFrames[i%len(spinnerFrames)]
				s.mu.Lock()
				fmt.Fprintf(os.Stderr, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
				s.mu.Unlock()
			}
		}
	}()
}

// Stop halts the animation and clears the line. Safe to call more than
// once.
func (s *Spinner) Stop() {
	s.once.Do(func() { close(s.quit) })
	<-s.wound
	s.clearLine()
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
}

// StopWithSuccess stops the spinner and prints a success message.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and prints an error message.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the parent context was cancelled. A plain
// Stop does not count as cancellation.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}
