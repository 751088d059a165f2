package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend implements Backend with canned data and per-call failures.
type fakeBackend struct {
	listResult  []Notification
	listErr     error
	countResult int
	countErr    error
	createErr   error
	markErr     error
	markAllErr  error
	deleteErr   error
	settings    Settings
	settingsErr error
	updateErr   error

	nextID      int64
	deleteCalls []int64
	markCalls   []int64
	updated     *Settings
}

func (f *fakeBackend) ListNotifications(ctx context.Context, _ Filter) ([]Notification, error) {
	return f.listResult, f.listErr
}

func (f *fakeBackend) UnreadCount(ctx context.Context) (int, error) {
	return f.countResult, f.countErr
}

func (f *fakeBackend) CreateNotification(ctx context.Context, n Notification) (Notification, error) {
	if f.createErr != nil {
		return Notification{}, f.createErr
	}
	f.nextID++
	n.ID = f.nextID
	n.Read = false
	n.Timestamp = time.Now()
	return n, nil
}

func (f *fakeBackend) MarkRead(ctx context.Context, id int64) error {
	f.markCalls = append(f.markCalls, id)
	return f.markErr
}

func (f *fakeBackend) MarkAllRead(ctx context.Context) error {
	return f.markAllErr
}

func (f *fakeBackend) DeleteNotification(ctx context.Context, id int64) error {
	f.deleteCalls = append(f.deleteCalls, id)
	return f.deleteErr
}

func (f *fakeBackend) Settings(ctx context.Context) (Settings, error) {
	return f.settings, f.settingsErr
}

func (f *fakeBackend) UpdateSettings(ctx context.Context, s Settings) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = &s
	return nil
}

func newTestStore(backend *fakeBackend) *Store {
	s := NewStore(backend, zerolog.Nop())
	// Run expiry callbacks inline so tests control timing explicitly.
	s.after = func(d time.Duration, fn func()) *time.Timer {
		return time.AfterFunc(time.Hour, fn)
	}
	return s
}

func seed(read ...bool) []Notification {
	out := make([]Notification, 0, len(read))
	for i, r := range read {
		out = append(out, Notification{
			ID:       int64(i + 1),
			Type:     TypeInfo,
			Title:    "t",
			Category: CategorySystem,
			Priority: PriorityMedium,
			Read:     r,
		})
	}
	return out
}

func TestStore_Load_replaces_collection(t *testing.T) {
	backend := &fakeBackend{listResult: seed(false, true, false)}
	s := newTestStore(backend)

	s.Load(context.Background(), Filter{})

	assert.Len(t, s.Notifications(), 3)
	assert.Equal(t, 2, s.UnreadCount())
}

func TestStore_Load_failure_falls_back_to_welcome(t *testing.T) {
	backend := &fakeBackend{listErr: errors.New("boom")}
	s := newTestStore(backend)

	s.Load(context.Background(), Filter{})

	ns := s.Notifications()
	require.Len(t, ns, 1)
	assert.Equal(t, "Welcome", ns[0].Title)
	assert.Equal(t, CategorySystem, ns[0].Category)
	assert.False(t, ns[0].Read)
	assert.Equal(t, 1, s.UnreadCount())
}

func TestStore_LoadUnreadCount_prefers_server_value(t *testing.T) {
	backend := &fakeBackend{listResult: seed(false), countResult: 7}
	s := newTestStore(backend)
	s.Load(context.Background(), Filter{})

	s.LoadUnreadCount(context.Background())

	assert.Equal(t, 7, s.UnreadCount())
}

func TestStore_LoadUnreadCount_failure_recomputes_locally(t *testing.T) {
	backend := &fakeBackend{listResult: seed(false, false, true), countErr: errors.New("boom")}
	s := newTestStore(backend)
	s.Load(context.Background(), Filter{})

	s.LoadUnreadCount(context.Background())

	assert.Equal(t, 2, s.UnreadCount())
}

func TestStore_Add_prepends_and_bumps_unread(t *testing.T) {
	backend := &fakeBackend{listResult: seed(true)}
	s := newTestStore(backend)
	s.Load(context.Background(), Filter{})

	created, err := s.Add(context.Background(), Notification{
		Title:    "Payment received",
		Category: CategoryPayments,
		Priority: PriorityHigh,
	})
	require.NoError(t, err)

	ns := s.Notifications()
	require.Len(t, ns, 2)
	assert.Equal(t, created.ID, ns[0].ID, "new record is prepended")
	assert.Equal(t, 1, s.UnreadCount())
}

func TestStore_Add_backend_failure_propagates(t *testing.T) {
	backend := &fakeBackend{createErr: errors.New("boom")}
	s := newTestStore(backend)

	_, err := s.Add(context.Background(), Notification{Title: "x"})

	require.Error(t, err)
	assert.Empty(t, s.Notifications())
	assert.Zero(t, s.UnreadCount())
}

func TestStore_Add_shows_toast_when_enabled(t *testing.T) {
	backend := &fakeBackend{}
	s := newTestStore(backend)

	_, err := s.Add(context.Background(), Notification{
		Title:    "x",
		Category: CategoryPayments,
		Priority: PriorityHigh,
	})
	require.NoError(t, err)

	assert.Len(t, s.Toasts(), 1)
}

func TestStore_Add_suppresses_toast_for_disabled_priority(t *testing.T) {
	backend := &fakeBackend{}
	s := newTestStore(backend)

	// Low priority is disabled in the default settings.
	_, err := s.Add(context.Background(), Notification{
		Title:    "x",
		Category: CategoryPayments,
		Priority: PriorityLow,
	})
	require.NoError(t, err)

	assert.Empty(t, s.Toasts())
}

func TestStore_MarkRead_applies_locally_even_on_backend_failure(t *testing.T) {
	backend := &fakeBackend{listResult: seed(false, false), markErr: errors.New("boom")}
	s := newTestStore(backend)
	s.Load(context.Background(), Filter{})

	s.MarkRead(context.Background(), 1)

	ns := s.Notifications()
	assert.True(t, ns[0].Read)
	assert.False(t, ns[1].Read)
	assert.Equal(t, 1, s.UnreadCount())
}

func TestStore_MarkRead_is_idempotent_per_record(t *testing.T) {
	backend := &fakeBackend{listResult: seed(false, false)}
	s := newTestStore(backend)
	s.Load(context.Background(), Filter{})

	s.MarkRead(context.Background(), 1)
	s.MarkRead(context.Background(), 1)

	assert.Equal(t, 1, s.UnreadCount())
}

func TestStore_MarkAllRead(t *testing.T) {
	// Scenario: 3 notifications, 2 unread.
	backend := &fakeBackend{listResult: seed(false, true, false)}
	s := newTestStore(backend)
	s.Load(context.Background(), Filter{})

	s.MarkAllRead(context.Background())

	assert.Equal(t, 0, s.UnreadCount())
	for _, n := range s.Notifications() {
		assert.True(t, n.Read)
	}
}

func TestStore_Delete_removes_after_backend_success(t *testing.T) {
	backend := &fakeBackend{listResult: seed(false, true)}
	s := newTestStore(backend)
	s.Load(context.Background(), Filter{})

	err := s.Delete(context.Background(), 1)
	require.NoError(t, err)

	assert.Len(t, s.Notifications(), 1)
	assert.Equal(t, 0, s.UnreadCount(), "deleting an unread record adjusts the count")
	assert.Equal(t, []int64{1}, backend.deleteCalls)
}

func TestStore_Delete_backend_failure_keeps_local_state(t *testing.T) {
	backend := &fakeBackend{listResult: seed(false), deleteErr: errors.New("boom")}
	s := newTestStore(backend)
	s.Load(context.Background(), Filter{})

	err := s.Delete(context.Background(), 1)

	require.Error(t, err)
	assert.Len(t, s.Notifications(), 1)
	assert.Equal(t, 1, s.UnreadCount())
}

func TestStore_ClearAll_is_local_only(t *testing.T) {
	backend := &fakeBackend{listResult: seed(false, false)}
	s := newTestStore(backend)
	s.Load(context.Background(), Filter{})

	s.ClearAll()

	assert.Empty(t, s.Notifications())
	assert.Zero(t, s.UnreadCount())
	assert.Empty(t, backend.deleteCalls, "no backend calls for clear-all")
}

// Unread invariant: unread == count(read=false) after every mutation.
func TestStore_unread_invariant_across_mutations(t *testing.T) {
	backend := &fakeBackend{listResult: seed(false, false, true)}
	s := newTestStore(backend)
	ctx := context.Background()

	check := func(step string) {
		t.Helper()
		want := 0
		for _, n := range s.Notifications() {
			if !n.Read {
				want++
			}
		}
		assert.Equal(t, want, s.UnreadCount(), "after %s", step)
	}

	s.Load(ctx, Filter{})
	check("load")

	_, err := s.Add(ctx, Notification{Title: "a", Category: CategorySystem, Priority: PriorityMedium})
	require.NoError(t, err)
	check("add")

	s.MarkRead(ctx, 1)
	check("mark read")

	require.NoError(t, s.Delete(ctx, 2))
	check("delete unread")

	s.MarkAllRead(ctx)
	check("mark all read")

	s.ClearAll()
	check("clear all")
}

func TestStore_Filtered(t *testing.T) {
	unread := false
	backend := &fakeBackend{listResult: []Notification{
		{ID: 1, Type: TypeInfo, Category: CategoryPayments, Priority: PriorityHigh, Read: false},
		{ID: 2, Type: TypeError, Category: CategoryPayments, Priority: PriorityLow, Read: true},
		{ID: 3, Type: TypeInfo, Category: CategoryClasses, Priority: PriorityHigh, Read: false},
	}}
	s := newTestStore(backend)
	s.Load(context.Background(), Filter{})

	tests := []struct {
		name    string
		filter  Filter
		wantIDs []int64
	}{
		{
			name:    "empty filter returns all in order",
			filter:  Filter{},
			wantIDs: []int64{1, 2, 3},
		},
		{
			name:    "category and read compose with AND",
			filter:  Filter{Category: CategoryPayments, Read: &unread},
			wantIDs: []int64{1},
		},
		{
			name:    "priority only",
			filter:  Filter{Priority: PriorityHigh},
			wantIDs: []int64{1, 3},
		},
		{
			name:    "type only",
			filter:  Filter{Type: TypeError},
			wantIDs: []int64{2},
		},
		{
			name:    "no match",
			filter:  Filter{Category: CategoryEquipment},
			wantIDs: []int64{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Filtered(tt.filter)
			ids := make([]int64, 0, len(got))
			for _, n := range got {
				ids = append(ids, n.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestStore_Stats(t *testing.T) {
	backend := &fakeBackend{listResult: []Notification{
		{ID: 1, Category: CategoryPayments, Priority: PriorityHigh, Read: false},
		{ID: 2, Category: CategoryPayments, Priority: PriorityLow, Read: true},
		{ID: 3, Category: CategoryClasses, Priority: PriorityHigh, Read: false},
	}}
	s := newTestStore(backend)
	s.Load(context.Background(), Filter{})

	stats := s.Stats()

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Unread)
	assert.Equal(t, 2, stats.ByCategory[CategoryPayments])
	assert.Equal(t, 1, stats.ByCategory[CategoryClasses])
	assert.Equal(t, 2, stats.ByPriority[PriorityHigh])
	assert.Equal(t, 1, stats.ByPriority[PriorityLow])
}

func TestStore_UpdateSettings_applies_only_after_backend_success(t *testing.T) {
	backend := &fakeBackend{}
	s := newTestStore(backend)

	draft := s.Settings()
	draft.Priorities[PriorityLow] = true

	require.NoError(t, s.UpdateSettings(context.Background(), draft))
	assert.True(t, s.Settings().Priorities[PriorityLow])
	require.NotNil(t, backend.updated)
}

func TestStore_UpdateSettings_failure_keeps_local_settings(t *testing.T) {
	backend := &fakeBackend{updateErr: errors.New("boom")}
	s := newTestStore(backend)

	draft := s.Settings()
	draft.Channels.SMS = true

	err := s.UpdateSettings(context.Background(), draft)

	require.Error(t, err)
	assert.False(t, s.Settings().Channels.SMS)
}

func TestStore_LoadSettings_failure_keeps_defaults(t *testing.T) {
	backend := &fakeBackend{settingsErr: errors.New("boom")}
	s := newTestStore(backend)

	s.LoadSettings(context.Background())

	assert.Equal(t, DefaultSettings(), s.Settings())
}
