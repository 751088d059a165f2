package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/javiercm/gymdesk/internal/core/notify"
	"github.com/javiercm/gymdesk/internal/core/styles"
)

const feedPageSize = 15

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch m.state {
	case stateInitializing:
		body = fmt.Sprintf("\n  %s restoring session...\n", m.spinner.View())
	case stateLogin:
		body = m.loginView()
	case stateFeed:
		body = m.feedView()
	case stateSettings:
		body = m.settingsView()
	}

	out := body
	if m.state == stateFeed || m.state == stateSettings {
		out = lipgloss.JoinVertical(lipgloss.Left, body, m.statusBar())
	}

	if toasts := renderToasts(m.store.Toasts(), m.width); toasts != "" {
		out = lipgloss.JoinVertical(lipgloss.Left, out, toasts)
	}
	return out
}

func (m Model) loginView() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("gymdesk"))
	b.WriteString("\n\n")
	b.WriteString("  " + m.email.View() + "\n")
	b.WriteString("  " + m.password.View() + "\n\n")

	switch {
	case m.busy:
		b.WriteString("  " + m.spinner.View() + " signing in...\n")
	case m.loginErr != "":
		b.WriteString("  " + styles.FormErrorStyle.Render(m.loginErr) + "\n")
	}

	b.WriteString("\n" + styles.FormHelpStyle.Render("  tab: switch field • enter: sign in • esc: quit"))
	return b.String()
}

func (m Model) feedView() string {
	feed := m.feed()

	var b strings.Builder
	title := "Notifications"
	if m.unreadOnly {
		title += " (unread)"
	}
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n")

	if m.busy {
		b.WriteString("  " + m.spinner.View() + " loading...\n")
		return b.String()
	}

	if len(feed) == 0 {
		b.WriteString(styles.MutedStyle.Render("  nothing here\n"))
		return b.String()
	}

	start, end := pageBounds(m.cursor, len(feed), feedPageSize)
	for i := start; i < end; i++ {
		b.WriteString(m.renderFeedLine(feed[i], i == m.cursor))
		b.WriteString("\n")
	}

	if len(feed) > feedPageSize {
		b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("  %d-%d of %d\n", start+1, end, len(feed))))
	}

	b.WriteString(styles.FormHelpStyle.Render("  enter: read • a: read all • d: delete • u: unread • s: settings • q: quit"))
	return b.String()
}

func (m Model) renderFeedLine(n notify.Notification, selected bool) string {
	marker := styles.IconRead
	if !n.Read {
		marker = styles.IconUnread
	}

	line := fmt.Sprintf("%s %s %s  %s",
		cursorMark(selected),
		marker,
		n.Timestamp.Format("Jan 02 15:04"),
		n.Title,
	)

	switch {
	case selected:
		return styles.ListSelectedStyle.Render(line)
	case n.Read:
		return styles.ListReadStyle.Render(line)
	default:
		return styles.ListNormalStyle.Render(line)
	}
}

func cursorMark(selected bool) string {
	if selected {
		return ">"
	}
	return " "
}

// pageBounds keeps the cursor visible inside a fixed-size window.
func pageBounds(cursor, total, size int) (int, int) {
	if total <= size {
		return 0, total
	}
	start := cursor - size/2
	if start < 0 {
		start = 0
	}
	if start+size > total {
		start = total - size
	}
	return start, start + size
}

// settingsRow is one toggleable line of the settings screen.
type settingsRow struct {
	label  string
	value  bool
	toggle func(*notify.Settings)
}

// settingsRows flattens the settings into a stable display order:
// channels, then categories, then priorities.
func settingsRows(s notify.Settings) []settingsRow {
	rows := []settingsRow{
		{"Email channel", s.Channels.Email, func(d *notify.Settings) { d.Channels.Email = !d.Channels.Email }},
		{"Push channel", s.Channels.Push, func(d *notify.Settings) { d.Channels.Push = !d.Channels.Push }},
		{"SMS channel", s.Channels.SMS, func(d *notify.Settings) { d.Channels.SMS = !d.Channels.SMS }},
	}

	for _, c := range notify.Categories() {
		c := c
		rows = append(rows, settingsRow{
			label:  "Category: " + string(c),
			value:  s.Categories[c],
			toggle: func(d *notify.Settings) { d.Categories[c] = !d.Categories[c] },
		})
	}

	for _, p := range notify.Priorities() {
		p := p
		rows = append(rows, settingsRow{
			label:  "Priority: " + string(p),
			value:  s.Priorities[p],
			toggle: func(d *notify.Settings) { d.Priorities[p] = !d.Priorities[p] },
		})
	}

	return rows
}

func (m Model) settingsView() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Notification settings"))
	b.WriteString("\n")

	for i, row := range settingsRows(m.settingsDraft) {
		mark := "off"
		if row.value {
			mark = "on "
		}
		line := fmt.Sprintf("%s [%s] %s", cursorMark(i == m.settingsCursor), mark, row.label)
		if i == m.settingsCursor {
			b.WriteString(styles.ListSelectedStyle.Render(line))
		} else {
			b.WriteString(styles.ListNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if m.busy {
		b.WriteString("  " + m.spinner.View() + " saving...\n")
	} else if m.settingsErr != "" {
		b.WriteString("  " + styles.FormErrorStyle.Render(m.settingsErr) + "\n")
	}

	b.WriteString(styles.FormHelpStyle.Render("  space: toggle • enter: save • esc: back"))
	return b.String()
}

func (m Model) statusBar() string {
	user := ""
	if u := m.session.CurrentUser(); u != nil {
		user = u.FullName()
	}

	left := styles.StatusBarStyle.Render("gymdesk • " + user)
	badge := ""
	if unread := m.store.UnreadCount(); unread > 0 {
		badge = styles.BadgeStyle.Render(fmt.Sprintf("%d unread", unread))
	}

	if badge == "" {
		return left
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", badge)
}
