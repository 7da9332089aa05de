package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/kvnav/kvnav/internal/app"
	"github.com/kvnav/kvnav/internal/format"
	"github.com/kvnav/kvnav/internal/protect"
	"github.com/kvnav/kvnav/internal/tree"
)

// treePaneWidthPct and infoBarHeight implement the layout fractions of
// spec §4.8: a 1-line status row, a 30%/70% horizontal split above it, and
// a 3-line info bar at the bottom of the right column.
const (
	treePaneWidthPct = 0.30
	infoBarHeight    = 3
	statusBarHeight  = 1
)

// View renders the full frame for m. It is a pure function of m's
// exported state — the UI layer owns no state of its own.
func View(m *app.Model) string {
	width, height := m.Width, m.Height
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}

	body := height - statusBarHeight
	treeWidth := int(float64(width) * treePaneWidthPct)
	valueWidth := width - treeWidth

	tree := treePaneStyle.Width(treeWidth - 2).Height(body - 2).Render(renderTreePane(m, treeWidth-4, body-2))

	valueHeight := body - infoBarHeight
	value := valuePaneStyle.Width(valueWidth - 2).Height(valueHeight - 2).Render(renderValuePane(m, valueWidth-4, valueHeight-2))
	info := infoBarStyle.Width(valueWidth - 2).Height(infoBarHeight - 2).Render(renderInfoBar(m))

	right := lipgloss.JoinVertical(lipgloss.Left, value, info)
	main := lipgloss.JoinHorizontal(lipgloss.Top, tree, right)

	status := statusBarStyle.Width(width).Render(m.Status)

	frame := lipgloss.JoinVertical(lipgloss.Left, main, status)

	if m.Dialog.Kind != app.DialogNone {
		return overlayDialog(frame, m, width, height)
	}
	return frame
}

func renderTreePane(m *app.Model, width, height int) string {
	var b strings.Builder
	for i, row := range m.Rows {
		line := renderTreeRow(row)
		if i == m.SelectedRow && m.ActivePane == app.PaneTree {
			line = selectedRowStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func renderTreeRow(row tree.Row) string {
	indent := strings.Repeat("  ", row.Depth)
	var prefix string
	switch {
	case !row.IsFolder:
		prefix = "    "
	case row.Expanded:
		prefix = "[-] "
	case row.ChildCount > 0:
		prefix = "[+] "
	default:
		prefix = "[ ] "
	}
	name := row.Name
	if row.IsFolder {
		name = fmt.Sprintf("%s (%d)", name, row.ChildCount)
	}
	return indent + prefix + name
}

// renderValuePane projects Selected.Lines through a bubbles/viewport so the
// value pane gets the same windowing/scrollbar-ready behavior as the rest
// of the pack's Bubble Tea TUIs. AppState.ValueScroll remains the single
// source of truth for scroll position (set by dispatchValueKey); this
// function only ever reads it into a fresh viewport for this frame.
func renderValuePane(m *app.Model, width, height int) string {
	if !m.Selected.HasValue {
		return "(no value selected)"
	}

	vp := viewport.New(width, height)
	vp.SetContent(joinValueLines(m.Selected.Lines))
	vp.SetYOffset(m.ValueScroll)
	return vp.View()
}

func joinValueLines(lines []format.Line) string {
	rendered := make([]string, len(lines))
	for i, l := range lines {
		if l.Styled != "" {
			rendered[i] = l.Styled
		} else {
			rendered[i] = l.Plain
		}
	}
	return strings.Join(rendered, "\n")
}

func renderInfoBar(m *app.Model) string {
	if !m.Selected.HasValue {
		return "key: -\ntype: -\nttl: -"
	}
	return fmt.Sprintf("key: %s\ntype: %s  format: %s\nttl: %s",
		m.Selected.Key, m.Selected.Type, m.Selected.Label, FormatTTL(m.Selected.TTL, Dark))
}

// FormatTTL renders a TTL value per spec §4.8's color/unit thresholds:
// negative means no expiry; under a minute is shown in seconds (critical);
// under an hour in minutes (warning); otherwise in hours (normal).
func FormatTTL(ttl int64, theme Theme) string {
	style := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	switch {
	case ttl < 0:
		return style(theme.Normal).Render("no expiry")
	case ttl < 60:
		return style(theme.Critical).Render(fmt.Sprintf("%ds", ttl))
	case ttl < 3600:
		return style(theme.Warning).Render(fmt.Sprintf("%dm", ttl/60))
	default:
		return style(theme.Normal).Render(fmt.Sprintf("%dh", ttl/3600))
	}
}

func overlayDialog(frame string, m *app.Model, width, height int) string {
	content := dialogContent(m)
	dw := int(float64(width) * 0.6)
	dh := int(float64(height) * 0.5)
	box := dialogStyle.Width(dw - 4).Height(dh - 2).Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars(" "))
}

func dialogContent(m *app.Model) string {
	switch m.Dialog.Kind {
	case app.DialogHelp:
		return helpText
	case app.DialogProtection:
		hint := "[Enter] proceed   [Esc] cancel"
		if m.Dialog.ProtectionLevel == protect.Block {
			hint = "[Esc] close"
		}
		return fmt.Sprintf("Protection level: %v\nKey: %s\n\n%s",
			m.Dialog.ProtectionLevel, m.Dialog.ProtectionKey, hint)
	case app.DialogConfirm:
		return fmt.Sprintf("%s\n\n%s\n\n[Enter] confirm   [Esc] cancel",
			m.Dialog.ConfirmPrompt, m.ConfirmInput.View())
	case app.DialogDiffPreview:
		var b strings.Builder
		b.WriteString("Diff for " + m.Dialog.DiffKey + "\n\n")
		for _, l := range m.Dialog.DiffLines {
			b.WriteString(diffLinePrefix(l.Op) + l.Text + "\n")
		}
		b.WriteString("\n[Enter] write   [Esc] discard")
		return b.String()
	default:
		return ""
	}
}

func diffLinePrefix(op app.DiffOp) string {
	switch op {
	case app.DiffRemoved:
		return "- "
	case app.DiffAdded:
		return "+ "
	default:
		return "  "
	}
}

const helpText = `kvnav — key help

  up/down, j/k   move selection
  left/right     collapse/expand
  enter          activate (expand or select)
  tab            switch pane
  r / R          refresh current / refresh all
  e              edit value
  d              delete key
  q, esc         quit
  ?              toggle this help

[Esc] close`
