package tui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yllada/kde-theme-backup/actions"
	"github.com/yllada/kde-theme-backup/catalog"
	"github.com/yllada/kde-theme-backup/runner"
)

func newTestModel(t *testing.T, backups ...string) (*model, string) {
	t.Helper()

	root := t.TempDir()
	for _, name := range backups {
		require.NoError(t, os.MkdirAll(filepath.Join(root, name), 0o755))
	}

	m := newModel(root)
	m.ctl = actions.New(actions.Options{
		Catalog:    catalog.New(root),
		Prompter:   m,
		View:       m,
		Dispatcher: &runner.Serial{},
		Settings:   actions.Settings{KDEThemeCommand: "kde-theme-not-installed"},
	})
	m.Update(refreshMsg{})
	return m, root
}

func press(m *model, keys ...string) {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

func TestRefreshOnStart(t *testing.T) {
	m, _ := newTestModel(t, "gamma", "alpha", "Beta")

	assert.Equal(t, []string{"alpha", "Beta", "gamma"}, m.backups)
	assert.Contains(t, m.logLines, actions.LineRefreshed)
	assert.Equal(t, "alpha", m.selected())
}

func TestSetBackups_KeepsSelection(t *testing.T) {
	m, _ := newTestModel(t, "a", "b", "c")
	press(m, "down", "down")
	require.Equal(t, "c", m.selected())

	m.SetBackups([]string{"0", "a", "c"})
	assert.Equal(t, "c", m.selected())

	m.SetBackups([]string{"x"})
	assert.Equal(t, "x", m.selected())

	m.SetBackups(nil)
	assert.Equal(t, "", m.selected())
}

func TestDelete_AsksFirst(t *testing.T) {
	m, root := newTestModel(t, "foo")

	press(m, "d")
	require.NotNil(t, m.question)
	assert.Equal(t, "Delete backup?", m.question.title)

	press(m, "n")
	assert.Nil(t, m.question)
	assert.DirExists(t, filepath.Join(root, "foo"))

	// Enter declines like the dialogs' default button.
	press(m, "d", "enter")
	assert.DirExists(t, filepath.Join(root, "foo"))

	press(m, "d", "y")
	assert.Nil(t, m.question)
	assert.NoDirExists(t, filepath.Join(root, "foo"))
	assert.Contains(t, m.logLines, actions.DeletedLine("foo"))
	assert.Empty(t, m.backups)
}

func TestRestore_NoSelection(t *testing.T) {
	m, _ := newTestModel(t)

	press(m, "r")
	require.Len(t, m.notices, 1)
	assert.Equal(t, noticeWarn, m.notices[0].kind)
	assert.Equal(t, "No backup selected", m.notices[0].title)

	// Keys other than dismissals leave the notice up.
	press(m, "d")
	require.Len(t, m.notices, 1)

	press(m, "enter")
	assert.Empty(t, m.notices)
}

func TestRestore_CommandMissing(t *testing.T) {
	m, _ := newTestModel(t, "foo")

	press(m, "r")
	require.Len(t, m.notices, 1)
	assert.Equal(t, noticeError, m.notices[0].kind)
	assert.False(t, m.busy)
}

func TestCreateBackup_InvalidName(t *testing.T) {
	m, root := newTestModel(t)

	press(m, "n")
	require.Equal(t, modeName, m.mode)

	press(m, "my backup", "enter")
	assert.Equal(t, modeBrowse, m.mode)
	require.Len(t, m.notices, 1)
	assert.Equal(t, "Invalid name", m.notices[0].title)
	assert.NoDirExists(t, filepath.Join(root, "my backup"))
}

func TestImport_EscCancels(t *testing.T) {
	m, _ := newTestModel(t)

	press(m, "i", "/tmp/theme.tar.gz", "esc")
	assert.Equal(t, modeBrowse, m.mode)
	assert.Empty(t, m.input.Value())
	assert.Nil(t, m.question)
	assert.Empty(t, m.notices)
}

func TestConfirm_OneAtATime(t *testing.T) {
	m, _ := newTestModel(t)

	var first, second []bool
	m.Confirm("One", "first", func(yes bool) { first = append(first, yes) })
	m.Confirm("Two", "second", func(yes bool) { second = append(second, yes) })

	assert.Equal(t, []bool{false}, second)
	assert.Empty(t, first)

	press(m, "y")
	assert.Equal(t, []bool{true}, first)
}

func TestDispatchMsgRunsCallback(t *testing.T) {
	m, _ := newTestModel(t)

	ran := false
	m.Update(dispatchMsg{fn: func() { ran = true }})
	assert.True(t, ran)
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Empty(t, m.View())
}

func TestQuit_WaitsForNotices(t *testing.T) {
	m, _ := newTestModel(t)

	m.Info("Done", "Uninstalled.")
	m.Warn("Note", "second")
	m.Quit()
	assert.False(t, m.quitting)
	assert.Contains(t, m.View(), "Uninstalled.")

	press(m, "enter")
	assert.False(t, m.quitting)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestDelete_ListedNameWithSpace(t *testing.T) {
	m, root := newTestModel(t, "my backup")
	require.Equal(t, "my backup", m.selected())

	press(m, "d", "y")
	assert.Empty(t, m.notices)
	assert.NoDirExists(t, filepath.Join(root, "my backup"))
	assert.Empty(t, m.backups)
}

func TestSetBusy(t *testing.T) {
	m, _ := newTestModel(t)

	m.SetBusy(true, "Backing up…")
	assert.True(t, m.busy)
	assert.Contains(t, m.renderStatus(), "Backing up…")

	m.SetBusy(false, "")
	assert.Equal(t, "Ready", m.status)
}
