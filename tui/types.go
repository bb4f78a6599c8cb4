package tui

import "github.com/yllada/kde-theme-backup/actions"

// inputMode is what the keyboard currently drives.
type inputMode int

const (
	modeBrowse inputMode = iota
	modeName
	modeImport
)

// dispatchMsg carries a runner callback into the event loop.
type dispatchMsg struct {
	fn func()
}

// refreshMsg asks for a rescan of the backup folder.
type refreshMsg struct{}

// question is a pending confirmation.
type question struct {
	title   string
	message string
	answer  func(yes bool)
}

// notice is a pending warning, error or information message.
type notice struct {
	kind    noticeKind
	title   string
	message string
}

type noticeKind int

const (
	noticeInfo noticeKind = iota
	noticeWarn
	noticeError
)

// Compile-time interface checks.
var (
	_ actions.Prompter = (*model)(nil)
	_ actions.View     = (*model)(nil)
)
