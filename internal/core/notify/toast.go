package notify

import (
	"time"

	"github.com/javiercm/gymdesk/pkg/randid"
)

// toastTTL is how long a toast stays on screen before auto-dismissal.
const toastTTL = 5 * time.Second

// Toast is an ephemeral projection of a notification for on-screen
// display. Its DisplayID is generated at display time and is distinct
// from the notification's ID; toasts are never persisted.
type Toast struct {
	DisplayID    string
	Notification Notification
	DisplayedAt  time.Time
}

// ShowToast projects a notification into the toast stack and schedules
// its removal after the TTL.
func (s *Store) ShowToast(n Notification) Toast {
	t := Toast{
		DisplayID:    randid.Generate(8),
		Notification: n,
		DisplayedAt:  time.Now(),
	}

	s.mu.Lock()
	s.toasts = append(s.toasts, t)
	after := s.after
	s.mu.Unlock()

	after(toastTTL, func() {
		s.RemoveToast(t.DisplayID)
	})

	s.publish()
	return t
}

// RemoveToast removes a toast by display id. Called by the expiry timer
// or by explicit dismissal; removing an already-removed id is a no-op.
func (s *Store) RemoveToast(displayID string) {
	s.mu.Lock()
	kept := s.toasts[:0]
	removed := false
	for _, t := range s.toasts {
		if t.DisplayID == displayID {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	s.toasts = kept
	s.mu.Unlock()

	if removed {
		s.publish()
	}
}

// Toasts returns a copy of the active toast stack, oldest first.
func (s *Store) Toasts() []Toast {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Toast, len(s.toasts))
	copy(out, s.toasts)
	return out
}
