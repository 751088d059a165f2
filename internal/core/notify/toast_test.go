package notify

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowToast_assigns_fresh_display_id(t *testing.T) {
	s := newTestStore(&fakeBackend{})

	a := s.ShowToast(Notification{ID: 9, Title: "a"})
	b := s.ShowToast(Notification{ID: 9, Title: "a"})

	assert.NotEmpty(t, a.DisplayID)
	assert.NotEqual(t, a.DisplayID, b.DisplayID, "same notification gets distinct display ids")
	assert.Len(t, s.Toasts(), 2)
	assert.False(t, a.DisplayedAt.IsZero())
}

func TestShowToast_auto_expires_after_ttl(t *testing.T) {
	s := NewStore(&fakeBackend{}, zerolog.Nop())

	var (
		gotDelay time.Duration
		expire   func()
	)
	s.after = func(d time.Duration, fn func()) *time.Timer {
		gotDelay = d
		expire = fn
		return time.NewTimer(time.Hour)
	}

	s.ShowToast(Notification{Title: "bye"})

	require.Len(t, s.Toasts(), 1)
	assert.Equal(t, 5*time.Second, gotDelay)

	expire()
	assert.Empty(t, s.Toasts())
}

func TestRemoveToast_is_idempotent(t *testing.T) {
	s := newTestStore(&fakeBackend{})

	toast := s.ShowToast(Notification{Title: "x"})

	s.RemoveToast(toast.DisplayID)
	assert.Empty(t, s.Toasts())

	// Removing again (as the expiry timer will) is a no-op.
	s.RemoveToast(toast.DisplayID)
	assert.Empty(t, s.Toasts())
}

func TestRemoveToast_unknown_id_is_noop(t *testing.T) {
	s := newTestStore(&fakeBackend{})
	s.ShowToast(Notification{Title: "keep"})

	s.RemoveToast("does-not-exist")

	assert.Len(t, s.Toasts(), 1)
}

func TestManual_removal_beats_timer(t *testing.T) {
	s := NewStore(&fakeBackend{}, zerolog.Nop())

	var expire func()
	s.after = func(d time.Duration, fn func()) *time.Timer {
		expire = fn
		return time.NewTimer(time.Hour)
	}

	toast := s.ShowToast(Notification{Title: "x"})
	s.RemoveToast(toast.DisplayID)

	// Timer fires later; the toast is already gone and nothing breaks.
	expire()
	assert.Empty(t, s.Toasts())
}
