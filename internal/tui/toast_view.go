package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiercm/gymdesk/internal/core/notify"
	"github.com/javiercm/gymdesk/internal/core/styles"
)

const toastWidth = 50

// renderToasts renders the toast stack, oldest at top, right-aligned
// when the terminal width is known.
func renderToasts(toasts []notify.Toast, width int) string {
	if len(toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		rendered = append(rendered, renderToast(t))
	}

	stack := strings.Join(rendered, "\n")
	if width > toastWidth {
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, stack)
	}
	return stack
}

func renderToast(t notify.Toast) string {
	var icon string
	var style lipgloss.Style

	switch t.Notification.Type {
	case notify.TypeError:
		icon = styles.IconNotifyError
		style = styles.ToastErrorStyle
	case notify.TypeWarning:
		icon = styles.IconNotifyWarning
		style = styles.ToastWarningStyle
	case notify.TypeSuccess:
		icon = styles.IconNotifySuccess
		style = styles.ToastSuccessStyle
	default:
		icon = styles.IconNotifyInfo
		style = styles.ToastInfoStyle
	}

	content := icon + " " + t.Notification.Title
	if t.Notification.Message != "" {
		content += "\n" + styles.MutedStyle.Render(t.Notification.Message)
	}
	return style.Width(toastWidth).Render(content)
}
