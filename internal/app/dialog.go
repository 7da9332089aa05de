package app

import "github.com/kvnav/kvnav/internal/protect"

// DialogKind tags which of the four dialog variants is active. Exactly
// one dialog is active at a time; None means no dialog (spec §4.7, "State
// machine for Dialog").
type DialogKind int

const (
	DialogNone DialogKind = iota
	DialogHelp
	DialogProtection
	DialogConfirm
	DialogDiffPreview
)

// PendingAction tags which intent a DialogProtection dialog was opened
// for, so confirming it (Enter, when the level isn't Block) resumes the
// flow it actually interrupted instead of always assuming Edit.
type PendingAction int

const (
	ActionNone PendingAction = iota
	ActionEdit
	ActionDelete
)

// Dialog is the tagged variant of the single active dialog, if any.
type Dialog struct {
	Kind DialogKind

	// Protection dialog payload.
	ProtectionLevel protect.Level
	ProtectionKey   string
	Action          PendingAction

	// Confirm dialog payload: a free-form prompt and the acknowledgement
	// text required to proceed ("yes" for delete). The text actually
	// typed so far lives in Model.ConfirmInput (a bubbles/textinput.Model),
	// not here — Dialog only carries what the confirmation demands.
	ConfirmPrompt string
	ConfirmWord   string

	// DiffPreview dialog payload.
	DiffKey      string
	DiffOldBytes []byte
	DiffNewBytes []byte
	DiffLines    []DiffLine
}
