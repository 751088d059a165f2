package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Backend is the slice of the REST API the store consumes.
// Implemented by the api client.
type Backend interface {
	ListNotifications(ctx context.Context, f Filter) ([]Notification, error)
	UnreadCount(ctx context.Context) (int, error)
	CreateNotification(ctx context.Context, n Notification) (Notification, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id int64) error
	Settings(ctx context.Context) (Settings, error)
	UpdateSettings(ctx context.Context, s Settings) error
}

// Store holds the in-memory notification collection, the derived unread
// count, the user's settings, and the active toast stack. It is the sole
// writer for all of these; UI regions observe it through Subscribe.
//
// Error policy follows the backend split: read-path failures degrade
// gracefully (fallback data, local recompute) and mark-read failures are
// logged but still applied locally, while delete and settings failures
// propagate so the UI can show feedback.
type Store struct {
	mu      sync.Mutex
	backend Backend
	log     zerolog.Logger

	notifications []Notification
	unread        int
	settings      Settings
	toasts        []Toast

	subs []func()

	// after schedules toast expiry; overridable in tests.
	after func(d time.Duration, fn func()) *time.Timer
}

// NewStore creates a store bound to the given backend.
func NewStore(backend Backend, log zerolog.Logger) *Store {
	return &Store{
		backend:  backend,
		log:      log,
		settings: DefaultSettings(),
		after:    time.AfterFunc,
	}
}

// Subscribe registers a callback invoked after every state change.
// Callbacks run outside the store lock.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *Store) publish() {
	s.mu.Lock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// Initialize performs the startup loads: collection, settings, and the
// server unread count. Failures degrade per-operation; Initialize itself
// never fails.
func (s *Store) Initialize(ctx context.Context) {
	s.Load(ctx, Filter{})
	s.LoadSettings(ctx)
	s.LoadUnreadCount(ctx)
}

// welcomeNotification is the fallback record shown when the initial
// fetch fails, so the feed is never silently empty.
func welcomeNotification() Notification {
	return Notification{
		ID:        1,
		Type:      TypeInfo,
		Title:     "Welcome",
		Message:   "Notification feed initialized",
		Timestamp: time.Now(),
		Read:      false,
		Category:  CategorySystem,
		Priority:  PriorityMedium,
	}
}

// Load fetches the collection and replaces the local one. On fetch
// failure the collection is replaced with a single welcome notification
// instead of being left empty.
func (s *Store) Load(ctx context.Context, f Filter) {
	fetched, err := s.backend.ListNotifications(ctx, f)
	if err != nil {
		s.log.Warn().Err(err).Msg("load notifications failed, using fallback")
		fetched = []Notification{welcomeNotification()}
	}

	s.mu.Lock()
	s.notifications = fetched
	s.unread = countUnread(fetched)
	s.mu.Unlock()

	s.publish()
}

// LoadUnreadCount fetches the server-computed unread count. On failure
// it recomputes the count from the in-memory collection.
func (s *Store) LoadUnreadCount(ctx context.Context) {
	count, err := s.backend.UnreadCount(ctx)

	s.mu.Lock()
	if err != nil {
		s.log.Warn().Err(err).Msg("load unread count failed, recomputing locally")
		count = countUnread(s.notifications)
	}
	s.unread = count
	s.mu.Unlock()

	s.publish()
}

// LoadSettings fetches the user's settings. On failure the current
// (default) settings are kept.
func (s *Store) LoadSettings(ctx context.Context) {
	settings, err := s.backend.Settings(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("load notification settings failed, keeping defaults")
		return
	}

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()

	s.publish()
}

// Add persists a notification to the backend first, then prepends the
// server-returned record to the collection. If the record's category and
// priority are both enabled in settings, a toast is also shown.
func (s *Store) Add(ctx context.Context, n Notification) (Notification, error) {
	created, err := s.backend.CreateNotification(ctx, n)
	if err != nil {
		return Notification{}, fmt.Errorf("create notification: %w", err)
	}

	s.mu.Lock()
	s.notifications = append([]Notification{created}, s.notifications...)
	if !created.Read {
		s.unread++
	}
	enabled := s.settings.ToastEnabled(created)
	s.mu.Unlock()

	if enabled {
		s.ShowToast(created)
	}

	s.publish()
	return created, nil
}

// MarkRead marks a notification as read. The local state change is
// applied regardless of backend outcome; a backend failure is logged,
// not surfaced.
func (s *Store) MarkRead(ctx context.Context, id int64) {
	if err := s.backend.MarkRead(ctx, id); err != nil {
		s.log.Warn().Err(err).Int64("id", id).Msg("mark read failed on backend, applying locally")
	}

	s.mu.Lock()
	for i := range s.notifications {
		if s.notifications[i].ID == id && !s.notifications[i].Read {
			s.notifications[i].Read = true
			if s.unread > 0 {
				s.unread--
			}
			break
		}
	}
	s.mu.Unlock()

	s.publish()
}

// MarkAllRead marks every notification as read. Like MarkRead, the local
// update happens even when the backend call fails.
func (s *Store) MarkAllRead(ctx context.Context) {
	if err := s.backend.MarkAllRead(ctx); err != nil {
		s.log.Warn().Err(err).Msg("mark all read failed on backend, applying locally")
	}

	s.mu.Lock()
	for i := range s.notifications {
		s.notifications[i].Read = true
	}
	s.unread = 0
	s.mu.Unlock()

	s.publish()
}

// Delete removes a notification. The local record is removed only after
// the backend confirms; failures propagate to the caller.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if err := s.backend.DeleteNotification(ctx, id); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}

	s.mu.Lock()
	kept := s.notifications[:0]
	for _, n := range s.notifications {
		if n.ID == id {
			if !n.Read && s.unread > 0 {
				s.unread--
			}
			continue
		}
		kept = append(kept, n)
	}
	s.notifications = kept
	s.mu.Unlock()

	s.publish()
	return nil
}

// ClearAll empties the collection and zeroes the unread count. This is a
// local-only reset; the backend is not called.
func (s *Store) ClearAll() {
	s.mu.Lock()
	s.notifications = nil
	s.unread = 0
	s.mu.Unlock()

	s.publish()
}

// UpdateSettings persists new settings and replaces the local ones only
// after the backend confirms. Failures propagate; local settings stay
// untouched in that case.
func (s *Store) UpdateSettings(ctx context.Context, settings Settings) error {
	if err := s.backend.UpdateSettings(ctx, settings); err != nil {
		return fmt.Errorf("update notification settings: %w", err)
	}

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()

	s.publish()
	return nil
}

// Notifications returns a copy of the current collection in order.
func (s *Store) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// Filtered returns the notifications matching every set dimension of the
// filter. An empty filter returns the full collection unchanged in order.
func (s *Store) Filtered(f Filter) []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if f.Matches(n) {
			out = append(out, n)
		}
	}
	return out
}

// UnreadCount returns the derived unread count.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unread
}

// Settings returns a copy of the current settings.
func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Clone()
}

// Stats aggregates the current collection.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{
		Total:      len(s.notifications),
		Unread:     countUnread(s.notifications),
		ByCategory: make(map[Category]int),
		ByPriority: make(map[Priority]int),
	}
	for _, n := range s.notifications {
		stats.ByCategory[n.Category]++
		stats.ByPriority[n.Priority]++
	}
	return stats
}

func countUnread(ns []Notification) int {
	count := 0
	for _, n := range ns {
		if !n.Read {
			count++
		}
	}
	return count
}
