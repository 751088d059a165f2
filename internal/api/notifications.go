package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/javiercm/gymdesk/internal/core/notify"
)

var _ notify.Backend = (*Client)(nil)

// wireNotification is the backend representation of a notification.
type wireNotification struct {
	NotificationID int64     `json:"notification_id"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	Type           string    `json:"notification_type"`
	Category       string    `json:"category"`
	Priority       string    `json:"priority"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"created_at"`
	Member         int64     `json:"socio,omitempty"`
	ReferenceID    string    `json:"reference_id,omitempty"`
}

func (w wireNotification) toDomain() notify.Notification {
	return notify.Notification{
		ID:          w.NotificationID,
		Type:        notify.Type(w.Type),
		Title:       w.Title,
		Message:     w.Message,
		Timestamp:   w.CreatedAt,
		Read:        w.Read,
		Category:    notify.Category(w.Category),
		Priority:    notify.Priority(w.Priority),
		MemberID:    w.Member,
		ReferenceID: w.ReferenceID,
	}
}

// ListNotifications fetches the user's notifications with optional
// server-side filters.
func (c *Client) ListNotifications(ctx context.Context, f notify.Filter) ([]notify.Notification, error) {
	query := url.Values{}
	if f.Category != "" {
		query.Set("category", string(f.Category))
	}
	if f.Priority != "" {
		query.Set("priority", string(f.Priority))
	}
	if f.Read != nil {
		query.Set("read", strconv.FormatBool(*f.Read))
	}
	if f.Type != "" {
		query.Set("notification_type", string(f.Type))
	}

	var page struct {
		Results []wireNotification `json:"results"`
	}
	if err := c.get(ctx, c.resource("notifications"), query, &page); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	out := make([]notify.Notification, 0, len(page.Results))
	for _, w := range page.Results {
		out = append(out, w.toDomain())
	}
	return out, nil
}

// UnreadCount fetches the server-computed unread count.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		UnreadCount int `json:"unread_count"`
	}
	if err := c.get(ctx, c.resource("notifications")+"unread_count/", nil, &out); err != nil {
		return 0, fmt.Errorf("unread count: %w", err)
	}
	return out.UnreadCount, nil
}

// CreateNotification persists a notification and returns the
// server-assigned record.
func (c *Client) CreateNotification(ctx context.Context, n notify.Notification) (notify.Notification, error) {
	body := struct {
		Title       string `json:"title"`
		Message     string `json:"message"`
		Type        string `json:"notification_type"`
		Category    string `json:"category"`
		Priority    string `json:"priority"`
		Member      int64  `json:"socio,omitempty"`
		ReferenceID string `json:"reference_id,omitempty"`
	}{
		Title:       n.Title,
		Message:     n.Message,
		Type:        string(defaultType(n.Type)),
		Category:    string(defaultCategory(n.Category)),
		Priority:    string(defaultPriority(n.Priority)),
		Member:      n.MemberID,
		ReferenceID: n.ReferenceID,
	}

	var created wireNotification
	if err := c.post(ctx, c.resource("notifications"), body, &created); err != nil {
		return notify.Notification{}, fmt.Errorf("create notification: %w", err)
	}
	return created.toDomain(), nil
}

// MarkRead marks one notification as read.
func (c *Client) MarkRead(ctx context.Context, id int64) error {
	path := fmt.Sprintf("%s%d/mark_read/", c.resource("notifications"), id)
	if err := c.post(ctx, path, nil, nil); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return nil
}

// MarkAllRead marks every notification as read.
func (c *Client) MarkAllRead(ctx context.Context) error {
	if err := c.post(ctx, c.resource("notifications")+"mark_all_read/", nil, nil); err != nil {
		return fmt.Errorf("mark all read: %w", err)
	}
	return nil
}

// DeleteNotification removes a notification.
func (c *Client) DeleteNotification(ctx context.Context, id int64) error {
	path := fmt.Sprintf("%s%d/", c.resource("notifications"), id)
	if err := c.del(ctx, path); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

// RemoteStats fetches the server-side notification aggregation.
func (c *Client) RemoteStats(ctx context.Context) (notify.Stats, error) {
	var out struct {
		Total      int                     `json:"total_notifications"`
		Unread     int                     `json:"unread_notifications"`
		ByCategory map[notify.Category]int `json:"notifications_by_category"`
		ByPriority map[notify.Priority]int `json:"notifications_by_priority"`
	}
	if err := c.get(ctx, c.resource("notifications")+"stats/", nil, &out); err != nil {
		return notify.Stats{}, fmt.Errorf("notification stats: %w", err)
	}

	return notify.Stats{
		Total:      out.Total,
		Unread:     out.Unread,
		ByCategory: out.ByCategory,
		ByPriority: out.ByPriority,
	}, nil
}

// wireSettings is the backend representation of notification settings.
type wireSettings struct {
	EmailNotifications    bool `json:"email_notifications"`
	PushNotifications     bool `json:"push_notifications"`
	SMSNotifications      bool `json:"sms_notifications"`
	MembershipsEnabled    bool `json:"memberships_enabled"`
	PaymentsEnabled       bool `json:"payments_enabled"`
	ClassesEnabled        bool `json:"classes_enabled"`
	EquipmentEnabled      bool `json:"equipment_enabled"`
	RemindersEnabled      bool `json:"reminders_enabled"`
	SystemEnabled         bool `json:"system_enabled"`
	HighPriorityEnabled   bool `json:"high_priority_enabled"`
	MediumPriorityEnabled bool `json:"medium_priority_enabled"`
	LowPriorityEnabled    bool `json:"low_priority_enabled"`
}

func (w wireSettings) toDomain() notify.Settings {
	return notify.Settings{
		Channels: notify.Channels{
			Email: w.EmailNotifications,
			Push:  w.PushNotifications,
			SMS:   w.SMSNotifications,
		},
		Categories: map[notify.Category]bool{
			notify.CategoryMemberships: w.MembershipsEnabled,
			notify.CategoryPayments:    w.PaymentsEnabled,
			notify.CategoryClasses:     w.ClassesEnabled,
			notify.CategoryEquipment:   w.EquipmentEnabled,
			notify.CategoryReminders:   w.RemindersEnabled,
			notify.CategorySystem:      w.SystemEnabled,
		},
		Priorities: map[notify.Priority]bool{
			notify.PriorityHigh:   w.HighPriorityEnabled,
			notify.PriorityMedium: w.MediumPriorityEnabled,
			notify.PriorityLow:    w.LowPriorityEnabled,
		},
	}
}

func fromDomainSettings(s notify.Settings) wireSettings {
	return wireSettings{
		EmailNotifications:    s.Channels.Email,
		PushNotifications:     s.Channels.Push,
		SMSNotifications:      s.Channels.SMS,
		MembershipsEnabled:    s.Categories[notify.CategoryMemberships],
		PaymentsEnabled:       s.Categories[notify.CategoryPayments],
		ClassesEnabled:        s.Categories[notify.CategoryClasses],
		EquipmentEnabled:      s.Categories[notify.CategoryEquipment],
		RemindersEnabled:      s.Categories[notify.CategoryReminders],
		SystemEnabled:         s.Categories[notify.CategorySystem],
		HighPriorityEnabled:   s.Priorities[notify.PriorityHigh],
		MediumPriorityEnabled: s.Priorities[notify.PriorityMedium],
		LowPriorityEnabled:    s.Priorities[notify.PriorityLow],
	}
}

// Settings fetches the user's notification settings.
func (c *Client) Settings(ctx context.Context) (notify.Settings, error) {
	var w wireSettings
	if err := c.get(ctx, c.resource("settings")+"my_settings/", nil, &w); err != nil {
		return notify.Settings{}, fmt.Errorf("fetch settings: %w", err)
	}
	return w.toDomain(), nil
}

// UpdateSettings persists new notification settings.
func (c *Client) UpdateSettings(ctx context.Context, s notify.Settings) error {
	if err := c.patch(ctx, c.resource("settings")+"my_settings/", fromDomainSettings(s), nil); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

func defaultType(t notify.Type) notify.Type {
	if t == "" {
		return notify.TypeInfo
	}
	return t
}

func defaultCategory(c notify.Category) notify.Category {
	if c == "" {
		return notify.CategorySystem
	}
	return c
}

func defaultPriority(p notify.Priority) notify.Priority {
	if p == "" {
		return notify.PriorityMedium
	}
	return p
}
