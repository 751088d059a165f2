package tui

import tea "github.com/charmbracelet/bubbletea"

// storeChangedMsg wakes the update loop after the session manager or the
// notification store mutates state outside of it, e.g. a toast expiry
// timer or a token rotation on a background request.
type storeChangedMsg struct{}

// ChangeSignal coalesces state-change callbacks into a single wakeup
// channel the Bubble Tea loop can wait on. Multiple changes between
// waits collapse into one message.
type ChangeSignal struct {
	ch chan struct{}
}

// NewChangeSignal constructs a signal for async state delivery.
func NewChangeSignal() *ChangeSignal {
	return &ChangeSignal{ch: make(chan struct{}, 1)}
}

// Notify emits a non-blocking wakeup. Safe to call from any goroutine.
func (s *ChangeSignal) Notify() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// Wait blocks until a change is pending, then delivers one message.
// The caller must re-issue Wait after handling the message.
func (s *ChangeSignal) Wait() tea.Cmd {
	return func() tea.Msg {
		<-s.ch
		return storeChangedMsg{}
	}
}
