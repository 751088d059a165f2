package styles

// Notification icons.
var (
	IconNotifyInfo    = "●"
	IconNotifySuccess = "✓"
	IconNotifyWarning = "▲"
	IconNotifyError   = "✗"
	IconUnread        = "●"
	IconRead          = "○"
	IconBell          = "🔔"
)
