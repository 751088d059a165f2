// Package notify owns the client-side notification collection: the
// persisted notification records, the user's delivery settings, and the
// ephemeral toast projections shown by the UI.
package notify

import "time"

// Type is the display severity of a notification.
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
)

// Category classifies what part of the gym a notification concerns.
type Category string

const (
	CategoryMemberships Category = "memberships"
	CategoryPayments    Category = "payments"
	CategoryClasses     Category = "classes"
	CategoryEquipment   Category = "equipment"
	CategoryReminders   Category = "reminders"
	CategorySystem      Category = "system"
)

// Categories lists all known categories in display order.
func Categories() []Category {
	return []Category{
		CategoryMemberships,
		CategoryPayments,
		CategoryClasses,
		CategoryEquipment,
		CategoryReminders,
		CategorySystem,
	}
}

// Priority is the urgency level of a notification.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists all known priorities in display order.
func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// Notification is a single persisted notification record.
type Notification struct {
	ID          int64
	Type        Type
	Title       string
	Message     string
	Timestamp   time.Time
	Read        bool
	Category    Category
	Priority    Priority
	MemberID    int64  // related gym member, 0 when not member-scoped
	ReferenceID string // opaque reference to another backend object
}

// Filter selects a subset of the collection. Zero-valued dimensions
// match everything; set dimensions compose with AND semantics.
type Filter struct {
	Category Category
	Priority Priority
	Read     *bool
	Type     Type
}

// Matches reports whether n passes every set dimension of the filter.
func (f Filter) Matches(n Notification) bool {
	if f.Category != "" && n.Category != f.Category {
		return false
	}
	if f.Priority != "" && n.Priority != f.Priority {
		return false
	}
	if f.Read != nil && n.Read != *f.Read {
		return false
	}
	if f.Type != "" && n.Type != f.Type {
		return false
	}
	return true
}

// Stats is a pure aggregation over the current collection.
type Stats struct {
	Total      int              `json:"total"`
	Unread     int              `json:"unread"`
	ByCategory map[Category]int `json:"by_category"`
	ByPriority map[Priority]int `json:"by_priority"`
}
