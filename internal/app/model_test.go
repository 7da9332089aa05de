package app

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kvnav/kvnav/internal/bus"
	"github.com/kvnav/kvnav/internal/format"
	"github.com/kvnav/kvnav/internal/protect"
	"github.com/kvnav/kvnav/internal/store"
	"github.com/kvnav/kvnav/internal/tree"
)

func newTestModel(readonly bool, rules []protect.Namespace) *Model {
	m := New("/", readonly, rules, format.Theme{}, bus.New(8), nil)
	m.Tree = tree.Build([]store.KeyType{
		{Key: store.Key("users/alice"), Type: store.TypeString},
		{Key: store.Key("users/bob"), Type: store.TypeString},
	}, "/")
	// Expand the "users" folder so rows are [users, alice, bob] and row 1
	// is a real key.
	m.Tree.Roots[0].Expanded = true
	m.RebuildRows()
	return m
}

// TestBeginEdit_P10_ReadonlyBlocksWithoutDialog checks that in readonly
// mode, beginEdit never opens a dialog and never enqueues a command, per
// spec P10: readonly must be inviolable regardless of intent.
func TestBeginEdit_P10_ReadonlyBlocksWithoutDialog(t *testing.T) {
	m := newTestModel(true, nil)
	m.SelectedRow = 1

	cmd := m.beginEdit()
	if cmd != nil {
		t.Errorf("beginEdit in readonly mode returned non-nil cmd")
	}
	if m.Dialog.Kind != DialogNone {
		t.Errorf("beginEdit in readonly mode opened dialog %v", m.Dialog.Kind)
	}
	select {
	case c := <-m.Bus.Commands:
		t.Errorf("readonly beginEdit enqueued command %#v", c)
	default:
	}
}

func TestBeginDelete_P10_ReadonlyBlocksWithoutDialog(t *testing.T) {
	m := newTestModel(true, nil)
	m.SelectedRow = 1

	cmd := m.beginDelete()
	if cmd != nil {
		t.Errorf("beginDelete in readonly mode returned non-nil cmd")
	}
	if m.Dialog.Kind != DialogNone {
		t.Errorf("beginDelete in readonly mode opened dialog %v", m.Dialog.Kind)
	}
}

// TestDispatchDialogKey_P10_ConfirmWrongWordNeverDeletes checks that typing
// anything but the exact confirm word never sends a Delete command.
func TestDispatchDialogKey_P10_ConfirmWrongWordNeverDeletes(t *testing.T) {
	m := newTestModel(false, nil)
	m.Dialog = Dialog{Kind: DialogConfirm, ConfirmWord: "yes"}
	m.ConfirmInput.SetValue("no")

	cmd := m.dispatchDialogKey(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Errorf("wrong confirm word produced a command: %v", cmd)
	}
	select {
	case c := <-m.Bus.Commands:
		t.Errorf("wrong confirm word enqueued command %#v", c)
	default:
	}
}

// TestApplyEvent_P12_StaleValueLoadedIsDiscarded checks that a ValueLoaded
// reply for a key other than the most recently requested one never
// overwrites Selected.
func TestApplyEvent_P12_StaleValueLoadedIsDiscarded(t *testing.T) {
	m := newTestModel(false, nil)
	m.MarkFetchPending("users/bob")

	m.applyEvent(bus.ValueLoaded{
		Key:   store.Key("users/alice"),
		Value: store.Value{Type: store.TypeString, Str: []byte("stale")},
		TTL:   -1,
		Type:  store.TypeString,
	})

	if m.Selected.HasValue {
		t.Errorf("stale ValueLoaded for users/alice was applied while users/bob was pending")
	}
}

func TestApplyEvent_P12_MatchingValueLoadedIsApplied(t *testing.T) {
	m := newTestModel(false, nil)
	m.MarkFetchPending("users/bob")

	m.applyEvent(bus.ValueLoaded{
		Key:   store.Key("users/bob"),
		Value: store.Value{Type: store.TypeString, Str: []byte("fresh")},
		TTL:   -1,
		Type:  store.TypeString,
	})

	if !m.Selected.HasValue || m.Selected.Key != "users/bob" {
		t.Errorf("matching ValueLoaded for pending key was not applied: %#v", m.Selected)
	}
}

// TestBeginEdit_BlockedNamespaceOpensProtectionDialog checks the Block
// level denies the edit outright via a dialog rather than proceeding.
func TestBeginEdit_BlockedNamespaceOpensProtectionDialog(t *testing.T) {
	m := newTestModel(false, []protect.Namespace{{Prefix: "users/", Level: protect.Block}})
	m.SelectedRow = 1

	m.beginEdit()
	if m.Dialog.Kind != DialogProtection || m.Dialog.ProtectionLevel != protect.Block {
		t.Errorf("blocked namespace did not open a Block protection dialog: %#v", m.Dialog)
	}
}
