// Package speech reads revealed text aloud through an external command.
package speech

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// ErrUnavailable is returned when the speech command cannot be found.
var ErrUnavailable = errors.New("speech command unavailable")

// DefaultCommand is used when no command is configured.
const DefaultCommand = "espeak"

// Speaker runs one utterance at a time. Starting a new utterance kills the
// previous one.
type Speaker struct {
	path string
	args []string

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New resolves command (program plus optional arguments) on PATH. The text is
// appended as the final argument of every invocation.
func New(command string) (*Speaker, error) {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		parts = []string{DefaultCommand}
	}
	path, err := exec.LookPath(parts[0])
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUnavailable, parts[0])
		}
		return nil, fmt.Errorf("failed to locate speech command: %w", err)
	}
	return &Speaker{path: path, args: parts[1:]}, nil
}

// Say starts speaking text without waiting for it to finish.
func (s *Speaker) Say(text string) error {
	if s == nil {
		return nil
	}
	text = strings.TrimSpace(text)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	if text == "" {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	args := append(append([]string{}, s.args...), text)
	cmd := exec.CommandContext(ctx, s.path, args...)
	if err := cmd.Start(); err != nil {
		cancel()
		return fmt.Errorf("failed to start speech: %w", err)
	}
	done := make(chan struct{})
	go func() {
		// Exit status is irrelevant, including the kill from a later Say.
		_ = cmd.Wait()
		close(done)
	}()
	s.cancel = cancel
	s.done = done
	return nil
}

// Stop kills the current utterance, if any, and waits for it to exit.
func (s *Speaker) Stop() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Speaker) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
}
