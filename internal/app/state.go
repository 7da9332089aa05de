// Package app owns the App State Machine (spec §4.7, component G): the
// single mutable state of the program, the Intent → state-mutation
// dispatch, and the commands it emits to the worker task.
package app

import (
	"github.com/kvnav/kvnav/internal/format"
	"github.com/kvnav/kvnav/internal/protect"
	"github.com/kvnav/kvnav/internal/store"
	"github.com/kvnav/kvnav/internal/tree"
)

// Pane tags which half of the screen currently has keyboard focus.
type Pane int

const (
	PaneTree Pane = iota
	PaneValue
)

// Selected describes the currently displayed value, owned exclusively by
// AppState and overwritten on every new selection (spec §3 AppState
// lifecycle — no long-lived cache across selections).
type Selected struct {
	Key      string
	HasValue bool
	Value    store.Value
	TTL      int64
	Type     store.DataType
	Lines    []format.Line
	Label    string
}

// AppState is the single owner of all mutable program state (spec §3).
type AppState struct {
	Tree        *tree.Tree
	Rows        []tree.Row
	SelectedRow int
	ActivePane  Pane
	Selected    Selected
	ValueScroll int
	Dialog      Dialog
	Status      string
	Delimiters  string
	Readonly    bool
	Protection  *protect.Policy
	Theme       format.Theme

	// pendingFetchKey is the key of the most recent Fetch issued in
	// response to navigation; used to discard stale ValueLoaded replies
	// that no longer match the current selection (spec P12 in §8).
	pendingFetchKey string
	pendingFetchOK  bool
}

// NewState constructs an empty AppState ready to receive the first
// KeysLoaded event.
func NewState(delimiters string, readonly bool, rules []protect.Namespace, theme format.Theme) *AppState {
	return &AppState{
		Tree:       &tree.Tree{Delimiters: delimiters},
		Delimiters: delimiters,
		Readonly:   readonly,
		Protection: protect.New(rules),
		Theme:      theme,
		Status:     "loading...",
	}
}

// RebuildRows recomputes the flattened row cache from the current tree and
// clamps SelectedRow into bounds (spec §3 FlatRow: "rebuilt whenever
// expansion state or tree content changes").
func (s *AppState) RebuildRows() {
	s.Rows = tree.Flatten(s.Tree)
	if s.SelectedRow >= len(s.Rows) {
		s.SelectedRow = len(s.Rows) - 1
	}
	if s.SelectedRow < 0 {
		s.SelectedRow = 0
	}
}

// CurrentNode resolves the node backing the currently selected row, or nil
// if there are no rows.
func (s *AppState) CurrentNode() *tree.Node {
	if s.SelectedRow < 0 || s.SelectedRow >= len(s.Rows) {
		return nil
	}
	return tree.NodeAt(s.Tree, s.Rows[s.SelectedRow].Path)
}

// MarkFetchPending records that a Fetch for key is in flight, so a later
// ValueLoaded for a different key can be recognized as stale.
func (s *AppState) MarkFetchPending(key string) {
	s.pendingFetchKey = key
	s.pendingFetchOK = true
}

// IsFetchStale reports whether a ValueLoaded reply for key should be
// discarded because the selection has since moved on (spec P12).
func (s *AppState) IsFetchStale(key string) bool {
	return !s.pendingFetchOK || s.pendingFetchKey != key
}
