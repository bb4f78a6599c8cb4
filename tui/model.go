package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yllada/kde-theme-backup/actions"
	"github.com/yllada/kde-theme-backup/common"
)

// historyLines is the number of operations "h" prints into the log.
const historyLines = 10

// model is the terminal front-end. It is the controller's Prompter and
// View; every call into it happens inside Update, on the event loop.
type model struct {
	ctl  *actions.Controller
	root string

	backups []string
	cursor  int

	logLines []string
	logView  viewport.Model
	input    textinput.Model
	spin     spinner.Model

	mode     inputMode
	busy     bool
	status   string
	question *question
	notices  []notice

	width, height int
	quitting      bool

	// quitAfterNotices defers Quit until the queued notices are dismissed.
	quitAfterNotices bool
}

func newModel(root string) *model {
	input := textinput.New()
	input.CharLimit = 128

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = progressStyle

	return &model{
		root:    root,
		logView: viewport.New(0, 0),
		input:   input,
		spin:    spin,
		status:  "Ready",
	}
}

// Init starts the spinner and triggers the initial scan.
func (m *model) Init() tea.Cmd {
	return tea.Batch(
		m.spin.Tick,
		func() tea.Msg { return refreshMsg{} },
	)
}

// Update handles messages and updates the model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case dispatchMsg:
		msg.fn()

	case refreshMsg:
		m.do(func() error {
			_, err := m.ctl.Refresh()
			return err
		})

	case spinner.TickMsg:
		m.spin, cmd = m.spin.Update(msg)

	case tea.KeyMsg:
		cmd = m.handleKey(msg)

	case tea.MouseMsg:
		m.logView, cmd = m.logView.Update(msg)
	}

	if m.quitting {
		return m, tea.Quit
	}
	return m, cmd
}

// handleKey routes a key press to the topmost modal, the input line or
// the backup list, in that order.
func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return nil
	}

	switch {
	case m.question != nil:
		m.handleQuestionKey(msg)
		return nil
	case len(m.notices) > 0:
		switch msg.String() {
		case "enter", "esc", " ", "q":
			m.notices = m.notices[1:]
			if len(m.notices) == 0 && m.quitAfterNotices {
				m.quitting = true
			}
		}
		return nil
	case m.mode != modeBrowse:
		return m.handleInputKey(msg)
	default:
		return m.handleBrowseKey(msg)
	}
}

// handleQuestionKey answers the pending question. Anything but an explicit
// yes declines, matching the dialogs' default of No.
func (m *model) handleQuestionKey(msg tea.KeyMsg) {
	q := m.question
	switch msg.String() {
	case "y", "Y":
		m.question = nil
		q.answer(true)
	case "n", "N", "esc", "enter", "q":
		m.question = nil
		q.answer(false)
	}
}

func (m *model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.closeInput()
		if mode == modeName {
			m.do(func() error { return m.ctl.CreateBackup(value) })
		} else {
			m.do(func() error { return m.ctl.Import(common.ExpandHome(value)) })
		}
		return nil
	case tea.KeyEsc:
		m.closeInput()
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *model) handleBrowseKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.backups)-1 {
			m.cursor++
		}
	case "home":
		m.cursor = 0
	case "end":
		if len(m.backups) > 0 {
			m.cursor = len(m.backups) - 1
		}
	case "n":
		return m.openInput(modeName, "backup name, e.g. win11-dark")
	case "i":
		return m.openInput(modeImport, "path to a .tar.gz archive")
	case "r", "enter":
		m.do(func() error { return m.ctl.RestoreTheme(m.selected()) })
	case "l":
		m.do(func() error { return m.ctl.RestoreLayout(m.selected()) })
	case "a":
		m.do(func() error { return m.ctl.RestoreAll(m.selected()) })
	case "d", "delete":
		m.do(func() error { return m.ctl.Delete(m.selected()) })
	case "u":
		m.do(m.ctl.Uninstall)
	case "h":
		m.showHistory()
	case "f5", "ctrl+r":
		m.do(func() error {
			_, err := m.ctl.Refresh()
			return err
		})
	case "q":
		m.quitting = true
	default:
		var cmd tea.Cmd
		m.logView, cmd = m.logView.Update(msg)
		return cmd
	}
	return nil
}

// do runs a controller operation. Failures were already shown through the
// Prompter, so they are only logged here.
func (m *model) do(op func() error) {
	if err := op(); err != nil {
		common.LogDebug("TUI: operation ended with: %v", err)
	}
}

func (m *model) openInput(mode inputMode, placeholder string) tea.Cmd {
	m.mode = mode
	m.input.Reset()
	m.input.Placeholder = placeholder
	return m.input.Focus()
}

func (m *model) closeInput() {
	m.mode = modeBrowse
	m.input.Blur()
	m.input.Reset()
}

// selected returns the highlighted backup, or "" if the list is empty.
func (m *model) selected() string {
	if m.cursor < 0 || m.cursor >= len(m.backups) {
		return ""
	}
	return m.backups[m.cursor]
}

// showHistory prints the latest operations into the log.
func (m *model) showHistory() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries, err := m.ctl.History(ctx, historyLines)
	switch {
	case err != nil:
		m.AppendLog("Could not read history: " + err.Error())
		return
	case entries == nil:
		m.AppendLog("History is not available.")
		return
	case len(entries) == 0:
		m.AppendLog("No operations recorded yet.")
		return
	}

	m.AppendLog("── Recent operations ──")
	for _, e := range entries {
		mark := "✅"
		if !e.Succeeded() {
			mark = "❌"
		}
		line := fmt.Sprintf("%s %s  %s %s", mark, e.Finished.Local().Format("2006-01-02 15:04"), e.Action, e.Backup)
		if !e.Succeeded() {
			line += fmt.Sprintf(" (status %d)", e.ExitCode)
		}
		m.AppendLog(strings.TrimRight(line, " "))
	}
}

func (m *model) resize(width, height int) {
	m.width = width
	m.height = height

	m.logView.Width = max(width-4, 20)
	m.logView.Height = max(height-m.listHeight()-11, 3)
	m.input.Width = max(width-8, 20)
	m.logView.GotoBottom()
}

// listHeight is the number of backup rows shown at once.
func (m *model) listHeight() int {
	if m.height == 0 {
		return 8
	}
	return max(m.height/3, 3)
}

// SetBackups replaces the list, keeping the highlighted name when it still
// exists.
func (m *model) SetBackups(names []string) {
	current := m.selected()
	m.backups = names
	m.cursor = 0
	for i, name := range names {
		if name == current {
			m.cursor = i
			break
		}
	}
}

// AppendLog adds text to the log and scrolls to the end.
func (m *model) AppendLog(text string) {
	m.logLines = append(m.logLines, strings.TrimRight(text, "\n"))
	m.logView.SetContent(strings.Join(m.logLines, "\n"))
	m.logView.GotoBottom()
}

// SetBusy updates the status line.
func (m *model) SetBusy(busy bool, message string) {
	m.busy = busy
	if busy && message != "" {
		m.status = message
	} else {
		m.status = "Ready"
	}
}

// Quit ends the program after the current update, or once the pending
// notices have been read.
func (m *model) Quit() {
	if len(m.notices) > 0 {
		m.quitAfterNotices = true
		return
	}
	m.quitting = true
}

// Confirm shows a yes/no question; answer runs when a key is pressed.
func (m *model) Confirm(title, message string, answer func(yes bool)) {
	if m.question != nil {
		// One question at a time; a second one is declined.
		answer(false)
		return
	}
	m.question = &question{title: title, message: message, answer: answer}
}

// Warn queues a warning.
func (m *model) Warn(title, message string) {
	m.notices = append(m.notices, notice{kind: noticeWarn, title: title, message: message})
}

// Error queues an error.
func (m *model) Error(title, message string) {
	m.notices = append(m.notices, notice{kind: noticeError, title: title, message: message})
}

// Info queues an information message.
func (m *model) Info(title, message string) {
	m.notices = append(m.notices, notice{kind: noticeInfo, title: title, message: message})
}
