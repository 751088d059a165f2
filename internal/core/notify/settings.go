package notify

// Channels are the delivery channels the backend can use.
type Channels struct {
	Email bool `json:"email"`
	Push  bool `json:"push"`
	SMS   bool `json:"sms"`
}

// Settings is the user's notification configuration. Categories and
// priorities gate which notifications surface as toasts.
type Settings struct {
	Channels   Channels          `json:"channels"`
	Categories map[Category]bool `json:"categories"`
	Priorities map[Priority]bool `json:"priorities"`
}

// DefaultSettings mirrors the backend defaults: everything enabled
// except SMS delivery and low-priority toasts.
func DefaultSettings() Settings {
	return Settings{
		Channels: Channels{
			Email: true,
			Push:  true,
			SMS:   false,
		},
		Categories: map[Category]bool{
			CategoryMemberships: true,
			CategoryPayments:    true,
			CategoryClasses:     true,
			CategoryEquipment:   true,
			CategoryReminders:   true,
			CategorySystem:      true,
		},
		Priorities: map[Priority]bool{
			PriorityHigh:   true,
			PriorityMedium: true,
			PriorityLow:    false,
		},
	}
}

// ToastEnabled reports whether a notification's category and priority
// are both enabled for toast display.
func (s Settings) ToastEnabled(n Notification) bool {
	return s.Categories[n.Category] && s.Priorities[n.Priority]
}

// Clone returns a deep copy so callers can mutate a draft without
// touching the store's settings.
func (s Settings) Clone() Settings {
	out := Settings{
		Channels:   s.Channels,
		Categories: make(map[Category]bool, len(s.Categories)),
		Priorities: make(map[Priority]bool, len(s.Priorities)),
	}
	for k, v := range s.Categories {
		out.Categories[k] = v
	}
	for k, v := range s.Priorities {
		out.Priorities[k] = v
	}
	return out
}
