package app

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kvnav/kvnav/internal/bus"
	"github.com/kvnav/kvnav/internal/editor"
	"github.com/kvnav/kvnav/internal/format"
	"github.com/kvnav/kvnav/internal/protect"
	"github.com/kvnav/kvnav/internal/store"
	"github.com/kvnav/kvnav/internal/tree"
)

// Model is the Bubble Tea model wrapping AppState; it is the UI task side
// of the two-task concurrency model in spec §5. Update implements the
// per-frame "drain events, apply, dispatch commands" loop of spec §4.7;
// rendering is delegated to internal/ui, which reads the *Model's exported
// state (a stateless projection, per component H).
type Model struct {
	*AppState

	Bus    *bus.Bus
	Editor *editor.Bridge

	Width, Height int

	pendingEditSession *editor.Session

	// ConfirmInput backs the DialogConfirm "type 'yes' to delete" text
	// field. It is exported so internal/ui can render it without
	// internal/app taking a dependency on internal/ui.
	ConfirmInput textinput.Model
}

// New constructs a Model around a fresh AppState and the given Bus and
// editor Bridge.
func New(delimiters string, readonly bool, rules []protect.Namespace, theme format.Theme, b *bus.Bus, ed *editor.Bridge) *Model {
	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 20
	return &Model{
		AppState:     NewState(delimiters, readonly, rules, theme),
		Bus:          b,
		Editor:       ed,
		ConfirmInput: ti,
	}
}

// eventMsg wraps a bus.Event as a tea.Msg.
type eventMsg struct{ ev bus.Event }

// editResultMsg carries the outcome of an external-editor round trip back
// into Update.
type editResultMsg struct {
	key     string
	oldBody []byte
	newBody []byte
	err     error
}

// Init starts the initial full enumeration and begins listening for
// worker events.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(sendCommand(m.Bus, bus.Enumerate{Pattern: "*"}), waitForEvent(m.Bus))
}

func waitForEvent(b *bus.Bus) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-b.Events
		if !ok {
			return nil
		}
		return eventMsg{ev}
	}
}

// sendCommand enqueues cmd, blocking if the channel is momentarily full.
// Used only for commands the spec treats as important enough to not drop:
// the initial full Enumerate in Init, WriteString, and Delete. Refresh
// commands are non-critical (spec §4.6: "G drops non-critical refresh
// commands and reports a status") and must go through Bus.TrySend instead
// — see refreshAll and the post-Delete refresh in applyEvent.
func sendCommand(b *bus.Bus, cmd bus.Command) tea.Cmd {
	return func() tea.Msg {
		b.Commands <- cmd
		return nil
	}
}

// Update implements the App State Machine's message handling (spec §4.7).
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		return m, nil

	case eventMsg:
		cmd := m.applyEvent(msg.ev)
		return m, tea.Batch(cmd, waitForEvent(m.Bus))

	case editResultMsg:
		return m, m.finishEdit(msg)

	case tea.KeyMsg:
		return m, m.dispatchKey(msg)
	}
	return m, nil
}

// applyEvent folds one worker reply into AppState, per the handler list in
// spec §4.7.
func (m *Model) applyEvent(ev bus.Event) tea.Cmd {
	switch e := ev.(type) {
	case bus.KeysLoaded:
		// A fresh enumeration supersedes the expand/collapse state of the
		// previous tree projection; v1 has no persistence across refreshes.
		m.Tree = tree.Build(e.Keys, m.Delimiters)
		m.RebuildRows()
		m.Status = "ready"

	case bus.ValueLoaded:
		if m.IsFetchStale(e.Key.String()) {
			m.Status = "loaded stale reply for " + e.Key.String() + " (ignored)"
			return nil
		}
		lines, label := format.Render(e.Value, m.Theme)
		m.Selected = Selected{
			Key:      e.Key.String(),
			HasValue: true,
			Value:    e.Value,
			TTL:      e.TTL,
			Type:     e.Type,
			Lines:    lines,
			Label:    label,
		}
		m.ValueScroll = 0
		m.Status = "loaded " + e.Key.String()

	case bus.WriteOk:
		m.Status = "wrote " + e.Key.String()

	case bus.DeleteOk:
		m.Status = "deleted " + e.Key.String()
		if !m.Bus.TrySend(bus.Enumerate{Pattern: "*"}) {
			m.Status = "deleted " + e.Key.String() + "; degraded: refresh queue full"
		}

	case bus.Failure:
		m.Status = "error: " + e.Message
	}
	return nil
}

func (m *Model) dispatchKey(msg tea.KeyMsg) tea.Cmd {
	if m.Dialog.Kind != DialogNone {
		return m.dispatchDialogKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "esc":
		return tea.Quit
	case "?":
		m.Dialog = Dialog{Kind: DialogHelp}
		return nil
	case "tab":
		m.togglePane()
		return nil
	}

	if m.ActivePane == PaneTree {
		return m.dispatchTreeKey(msg)
	}
	return m.dispatchValueKey(msg)
}

func (m *Model) togglePane() {
	if m.ActivePane == PaneTree {
		m.ActivePane = PaneValue
	} else {
		m.ActivePane = PaneTree
	}
}

func (m *Model) dispatchTreeKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		return m.moveSelection(-1)
	case "down", "j":
		return m.moveSelection(1)
	case "g", "home":
		m.SelectedRow = 0
		return m.fetchIfLeaf()
	case "G", "end":
		m.SelectedRow = len(m.Rows) - 1
		return m.fetchIfLeaf()
	case "left":
		if n := m.CurrentNode(); n != nil && n.Expanded {
			tree.Toggle(n)
			m.RebuildRows()
		}
		return nil
	case "right", "enter":
		return m.activate()
	case "r":
		return m.refreshCurrent()
	case "R":
		return m.refreshAll()
	case "e":
		return m.beginEdit()
	case "d":
		return m.beginDelete()
	}
	return nil
}

func (m *Model) moveSelection(delta int) tea.Cmd {
	next := m.SelectedRow + delta
	if next < 0 || next >= len(m.Rows) {
		return nil
	}
	m.SelectedRow = next
	return m.fetchIfLeaf()
}

// fetchIfLeaf issues a Fetch for the newly selected row if it is a leaf,
// per spec §4.7's selection-change semantics. It uses a non-blocking
// try-send: navigation must never stall on a full command channel (spec
// §4.6).
func (m *Model) fetchIfLeaf() tea.Cmd {
	row := m.currentRow()
	if row == nil || !row.HasFullKey {
		return nil
	}
	m.MarkFetchPending(row.FullKey)
	if !m.Bus.TrySend(bus.Fetch{Key: store.Key(row.FullKey)}) {
		m.Status = "degraded: fetch queue full, navigation continues"
	}
	return nil
}

func (m *Model) currentRow() *tree.Row {
	if m.SelectedRow < 0 || m.SelectedRow >= len(m.Rows) {
		return nil
	}
	return &m.Rows[m.SelectedRow]
}

func (m *Model) activate() tea.Cmd {
	n := m.CurrentNode()
	if n == nil {
		return nil
	}
	if n.HasChildren() && !n.Expanded {
		tree.Toggle(n)
		m.RebuildRows()
	}
	return m.fetchIfLeaf()
}

func (m *Model) refreshCurrent() tea.Cmd {
	return m.fetchIfLeaf()
}

func (m *Model) refreshAll() tea.Cmd {
	if !m.Bus.TrySend(bus.Enumerate{Pattern: "*"}) {
		m.Status = "degraded: refresh queue full, try again shortly"
		return nil
	}
	m.Status = "refreshing..."
	return nil
}

func (m *Model) dispatchValueKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		m.scrollValue(-1)
	case "down", "j":
		m.scrollValue(1)
	case "pgup":
		m.scrollValue(-m.halfPage())
	case "pgdown":
		m.scrollValue(m.halfPage())
	case "g", "home":
		m.ValueScroll = 0
	case "G", "end":
		m.ValueScroll = maxInt(0, len(m.Selected.Lines)-1)
	}
	return nil
}

func (m *Model) halfPage() int {
	if m.Height <= 0 {
		return 10
	}
	return maxInt(1, m.Height/2)
}

func (m *Model) scrollValue(delta int) {
	m.ValueScroll = clamp(m.ValueScroll+delta, 0, maxInt(0, len(m.Selected.Lines)-1))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (m *Model) dispatchDialogKey(msg tea.KeyMsg) tea.Cmd {
	switch m.Dialog.Kind {
	case DialogHelp:
		if msg.String() == "esc" || msg.String() == "?" {
			m.Dialog = Dialog{}
		}
		return nil

	case DialogProtection:
		switch msg.String() {
		case "esc":
			m.Dialog = Dialog{}
		case "enter":
			// Block is never dismissed by confirmation (spec §4.5/S5):
			// Enter on a Block dialog does nothing but leave it showing.
			if m.Dialog.ProtectionLevel == protect.Block {
				return nil
			}
			key := m.Dialog.ProtectionKey
			action := m.Dialog.Action
			m.Dialog = Dialog{}
			if action == ActionDelete {
				return m.openDeleteConfirm(key)
			}
			return m.proceedEdit(key)
		}
		return nil

	case DialogConfirm:
		switch msg.String() {
		case "esc":
			m.Dialog = Dialog{}
			m.ConfirmInput.Blur()
		case "enter":
			if m.ConfirmInput.Value() == m.Dialog.ConfirmWord {
				key := m.Dialog.ProtectionKey
				m.Dialog = Dialog{}
				m.ConfirmInput.Blur()
				return sendCommand(m.Bus, bus.Delete{Key: store.Key(key)})
			}
			m.Status = "type '" + m.Dialog.ConfirmWord + "' to confirm"
		default:
			var cmd tea.Cmd
			m.ConfirmInput, cmd = m.ConfirmInput.Update(msg)
			return cmd
		}
		return nil

	case DialogDiffPreview:
		switch msg.String() {
		case "esc":
			m.Dialog = Dialog{}
		case "enter":
			d := m.Dialog
			m.Dialog = Dialog{}
			return sendCommand(m.Bus, bus.WriteString{Key: store.Key(d.DiffKey), Value: d.DiffNewBytes})
		}
		return nil
	}
	return nil
}

// beginEdit implements the Edit flow of spec §4.7.
func (m *Model) beginEdit() tea.Cmd {
	if m.Readonly {
		m.Status = "read-only: edit denied"
		return nil
	}
	row := m.currentRow()
	if row == nil || !row.HasFullKey {
		m.Status = "select a key to edit"
		return nil
	}
	level := m.Protection.Classify(row.FullKey)
	switch level {
	case protect.Block:
		m.Dialog = Dialog{Kind: DialogProtection, ProtectionLevel: protect.Block, ProtectionKey: row.FullKey, Action: ActionEdit}
		return nil
	case protect.Warn, protect.Confirm:
		m.Dialog = Dialog{Kind: DialogProtection, ProtectionLevel: level, ProtectionKey: row.FullKey, Action: ActionEdit}
		return nil
	}
	return m.proceedEdit(row.FullKey)
}

func (m *Model) proceedEdit(key string) tea.Cmd {
	if !m.Selected.HasValue || m.Selected.Key != key || m.Selected.Type != store.TypeString {
		m.Status = "only string values can be edited"
		return nil
	}
	ext := editor.ExtensionFor(m.Selected.Label)
	cmd, session, err := m.Editor.Prepare(context.Background(), key, m.Selected.Value.Str, ext)
	if err != nil {
		m.Status = "error: " + err.Error()
		return nil
	}
	m.pendingEditSession = session
	old := m.Selected.Value.Str
	return tea.ExecProcess(cmd, func(runErr error) tea.Msg {
		body, err := session.Finalize(runErr)
		return editResultMsg{key: key, oldBody: old, newBody: body, err: err}
	})
}

func (m *Model) finishEdit(msg editResultMsg) tea.Cmd {
	m.pendingEditSession = nil
	if msg.err != nil {
		m.Status = "editor aborted: " + msg.err.Error()
		return nil
	}
	if msg.newBody == nil {
		m.Status = "no changes"
		return nil
	}
	m.Dialog = Dialog{
		Kind:         DialogDiffPreview,
		DiffKey:      msg.key,
		DiffOldBytes: msg.oldBody,
		DiffNewBytes: msg.newBody,
		DiffLines:    Diff(msg.oldBody, msg.newBody),
	}
	return nil
}

// beginDelete implements the Delete flow of spec §4.7.
func (m *Model) beginDelete() tea.Cmd {
	if m.Readonly {
		m.Status = "read-only: delete denied"
		return nil
	}
	row := m.currentRow()
	if row == nil || !row.HasFullKey {
		m.Status = "select a key to delete"
		return nil
	}
	level := m.Protection.Classify(row.FullKey)
	if level == protect.Block {
		m.Dialog = Dialog{Kind: DialogProtection, ProtectionLevel: protect.Block, ProtectionKey: row.FullKey, Action: ActionDelete}
		return nil
	}
	return m.openDeleteConfirm(row.FullKey)
}

// openDeleteConfirm opens the "type 'yes'" Confirm dialog for key. It is
// the continuation beginDelete reaches directly for Warn/Confirm/Allow
// levels, and the one a DialogProtection dialog opened with Action ==
// ActionDelete resumes into after a non-Block confirmation.
func (m *Model) openDeleteConfirm(key string) tea.Cmd {
	m.Dialog = Dialog{
		Kind:          DialogConfirm,
		ConfirmPrompt: "type 'yes' to delete " + key,
		ConfirmWord:   "yes",
		ProtectionKey: key,
	}
	m.ConfirmInput.SetValue("")
	m.ConfirmInput.Focus()
	return nil
}
