package runner

import (
	"errors"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yllada/kde-theme-backup/common"
)

// recorder is an Observer that keeps every event in order.
type recorder struct {
	mu       sync.Mutex
	lines    []string
	busy     []bool
	failures []int
}

func (r *recorder) AppendLog(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, text)
}

func (r *recorder) SetBusy(busy bool, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.busy = append(r.busy, busy)
}

func (r *recorder) CommandFailed(_ Job, code int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, code)
}

func (r *recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

func (r *recorder) Failures() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.failures...)
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func newTestRunner(obs Observer) *Runner {
	return New(Options{Observer: obs, StartTimeout: 5 * time.Second})
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateIdle, "Idle"},
		{StateStarting, "Starting"},
		{StateRunning, "Running"},
		{StateFinishing, "Finishing"},
		{State(99), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
		})
	}
}

func TestStart_Success(t *testing.T) {
	requireShell(t)
	rec := &recorder{}
	r := newTestRunner(rec)

	var codes []int
	err := r.Start(Job{
		Args:       []string{"sh", "-c", "echo hello"},
		OnFinished: func(code int) { codes = append(codes, code) },
	})
	require.NoError(t, err)
	r.Wait()

	assert.Equal(t, []int{0}, codes)
	assert.Equal(t, []string{"$ sh -c echo hello", "hello", LineDone}, rec.Lines())
	assert.Empty(t, rec.Failures())
	assert.Equal(t, []bool{true, false}, rec.busy)
	assert.Equal(t, StateIdle, r.State())

	code, ok := r.LastExitCode()
	assert.True(t, ok)
	assert.Equal(t, 0, code)
}

func TestStart_FailureExitCode(t *testing.T) {
	requireShell(t)
	rec := &recorder{}
	r := newTestRunner(rec)

	got := -1
	err := r.Start(Job{
		Args:       []string{"sh", "-c", "echo partial output; exit 2"},
		OnFinished: func(code int) { got = code },
	})
	require.NoError(t, err)
	r.Wait()

	assert.Equal(t, 2, got)
	assert.Equal(t, []int{2}, rec.Failures())

	lines := rec.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "partial output", lines[1])
	assert.Equal(t, FailureLine(2), lines[2])
	assert.Contains(t, lines[2], "2")
}

func TestStart_StderrIsLogged(t *testing.T) {
	requireShell(t)
	rec := &recorder{}
	r := newTestRunner(rec)

	require.NoError(t, r.Start(Job{Args: []string{"sh", "-c", "echo oops >&2; exit 1"}}))
	r.Wait()

	assert.Contains(t, rec.Lines(), "oops")
	assert.Equal(t, []int{1}, rec.Failures())
}

func TestStart_RejectsWhileBusy(t *testing.T) {
	requireShell(t)
	rec := &recorder{}
	r := newTestRunner(rec)

	var mu sync.Mutex
	var first, second int
	require.NoError(t, r.Start(Job{
		ID:   "first",
		Args: []string{"sh", "-c", "sleep 0.3; exit 3"},
		OnFinished: func(code int) {
			mu.Lock()
			defer mu.Unlock()
			first++
			assert.Equal(t, 3, code)
		},
	}))
	assert.True(t, r.Busy())

	err := r.Start(Job{
		ID:         "second",
		Args:       []string{"sh", "-c", "exit 0"},
		OnFinished: func(int) { second++ },
	})
	assert.ErrorIs(t, err, common.ErrBusy)

	current, ok := r.Current()
	require.True(t, ok)
	assert.Equal(t, "first", current.ID)

	r.Wait()
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, first)
	assert.Equal(t, 0, second)

	_, ok = r.Current()
	assert.False(t, ok)
}

func TestStart_LaunchFailure(t *testing.T) {
	rec := &recorder{}
	r := newTestRunner(rec)

	called := false
	err := r.Start(Job{
		Args:       []string{"/nonexistent/kde-theme", "backup", "x"},
		OnFinished: func(int) { called = true },
	})
	require.Error(t, err)

	var launchErr *LaunchError
	assert.True(t, errors.As(err, &launchErr))
	assert.ErrorIs(t, err, common.ErrLaunchFailed)
	assert.False(t, called)
	assert.Equal(t, StateIdle, r.State())
	assert.Contains(t, rec.Lines(), LineLaunchFailed)

	_, ran := r.LastExitCode()
	assert.False(t, ran)
}

func TestStart_LaunchTimeout(t *testing.T) {
	rec := &recorder{}
	r := New(Options{Observer: rec, StartTimeout: 50 * time.Millisecond})

	release := make(chan struct{})
	r.startProcess = func(*exec.Cmd) error {
		<-release
		return errors.New("gave up")
	}
	defer close(release)

	called := false
	err := r.Start(Job{Args: []string{"kde-theme", "restore", "x"}, OnFinished: func(int) { called = true }})

	assert.ErrorIs(t, err, common.ErrLaunchFailed)
	assert.ErrorIs(t, err, common.ErrTimeout)
	assert.False(t, called)
	assert.False(t, r.Busy())
}

func TestStart_EmptyArgs(t *testing.T) {
	r := newTestRunner(nil)
	assert.ErrorIs(t, r.Start(Job{}), common.ErrNoCommand)
	assert.Equal(t, StateIdle, r.State())
}

func TestStart_FeedNewline(t *testing.T) {
	requireShell(t)
	script := "if read line; then echo read-ok; else echo eof; fi"

	rec := &recorder{}
	r := newTestRunner(rec)
	require.NoError(t, r.Start(Job{Args: []string{"sh", "-c", script}, FeedNewline: true}))
	r.Wait()
	assert.Contains(t, rec.Lines(), "read-ok")

	rec = &recorder{}
	r = newTestRunner(rec)
	require.NoError(t, r.Start(Job{Args: []string{"sh", "-c", script}}))
	r.Wait()
	assert.Contains(t, rec.Lines(), "eof")
}

func TestStart_InvalidUTF8IsReplaced(t *testing.T) {
	requireShell(t)
	rec := &recorder{}
	r := newTestRunner(rec)

	require.NoError(t, r.Start(Job{Args: []string{"sh", "-c", `printf '\377abc\n'`}}))
	r.Wait()

	assert.Contains(t, rec.Lines(), "\uFFFDabc")
}

func TestStart_SignalExitCode(t *testing.T) {
	requireShell(t)
	rec := &recorder{}
	r := newTestRunner(rec)

	got := 0
	require.NoError(t, r.Start(Job{
		Args:       []string{"sh", "-c", "kill -TERM $$"},
		OnFinished: func(code int) { got = code },
	}))
	r.Wait()

	assert.Equal(t, 128+15, got)
}

func TestStart_ContinuationPanicIsContained(t *testing.T) {
	requireShell(t)
	rec := &recorder{}
	r := newTestRunner(rec)

	require.NoError(t, r.Start(Job{
		Args:       []string{"sh", "-c", "exit 0"},
		OnFinished: func(int) { panic("boom") },
	}))
	r.Wait()
	assert.Equal(t, StateIdle, r.State())

	found := false
	for _, line := range rec.Lines() {
		if strings.Contains(line, "boom") {
			found = true
		}
	}
	assert.True(t, found, "panic should be reported in the log")

	// The runner is usable again.
	require.NoError(t, r.Start(Job{Args: []string{"sh", "-c", "exit 0"}}))
	r.Wait()
}

func TestStart_OutputPrecedesCompletion(t *testing.T) {
	requireShell(t)
	rec := &recorder{}
	r := newTestRunner(rec)

	var linesAtFinish []string
	require.NoError(t, r.Start(Job{
		Args: []string{"sh", "-c", "for i in 1 2 3 4 5; do echo line$i; echo err$i >&2; done"},
		OnFinished: func(int) {
			linesAtFinish = rec.Lines()
		},
	}))
	r.Wait()

	joined := strings.Join(linesAtFinish, "\n")
	for i := 1; i <= 5; i++ {
		assert.Contains(t, joined, "line"+string(rune('0'+i)))
		assert.Contains(t, joined, "err"+string(rune('0'+i)))
	}
	assert.Equal(t, LineDone, linesAtFinish[len(linesAtFinish)-1])
}

func TestStart_OnCompleteReceivesResult(t *testing.T) {
	requireShell(t)
	var results []Result
	r := New(Options{OnComplete: func(res Result) { results = append(results, res) }})

	require.NoError(t, r.Start(Job{ID: "job-1", Args: []string{"sh", "-c", "exit 4"}}))
	r.Wait()

	require.Len(t, results, 1)
	assert.Equal(t, "job-1", results[0].Job.ID)
	assert.Equal(t, 4, results[0].ExitCode)
	assert.False(t, results[0].Finished.Before(results[0].Started))
}

func TestStart_GeneratesJobID(t *testing.T) {
	requireShell(t)
	var id string
	r := New(Options{OnComplete: func(res Result) { id = res.Job.ID }})

	require.NoError(t, r.Start(Job{Args: []string{"sh", "-c", "exit 0"}}))
	r.Wait()

	assert.Len(t, id, 36)
}

func TestDispatcherFunc(t *testing.T) {
	var ran bool
	d := DispatcherFunc(func(fn func()) { fn() })
	d.Dispatch(func() { ran = true })
	assert.True(t, ran)
}
