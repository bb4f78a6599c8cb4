package runner

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/yllada/kde-theme-backup/common"
)

// Log lines synthesized by the runner.
const (
	LineLaunchFailed = "❌ Failed to start process."
	LineDone         = "✅ Done."
)

// FailureLine returns the log line written when a command exits with code.
func FailureLine(code int) string {
	return fmt.Sprintf("❌ Command exited with status %d", code)
}

// State is the runner's position in its lifecycle.
type State int

const (
	// StateIdle means no command is outstanding.
	StateIdle State = iota
	// StateStarting means a launch has been requested.
	StateStarting
	// StateRunning means the process is executing.
	StateRunning
	// StateFinishing means the process exited and completion is being delivered.
	StateFinishing
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateFinishing:
		return "Finishing"
	default:
		return "Unknown"
	}
}

// Job describes one external command.
type Job struct {
	// ID identifies the job in logs and history. Generated when empty.
	ID string
	// Args is the argv vector; Args[0] is the program.
	Args []string
	// Status is shown while the command runs. Defaults to "Running: <argv>".
	Status string
	// FeedNewline writes "\n" to the process and closes its stdin right after
	// launch, so tools that prompt do not block forever.
	FeedNewline bool
	// OnFinished is invoked once with the exit code after the process exits.
	OnFinished func(exitCode int)
}

// CommandLine returns the argv joined with spaces.
func (j *Job) CommandLine() string {
	return strings.Join(j.Args, " ")
}

// Result describes a finished job.
type Result struct {
	Job      Job
	ExitCode int
	Started  time.Time
	Finished time.Time
}

// Observer receives the runner's UI-facing events. Every call is made on the
// dispatcher's thread, except the ones made synchronously from Start.
type Observer interface {
	// AppendLog adds one entry to the log view.
	AppendLog(text string)
	// SetBusy toggles the busy indicator.
	SetBusy(busy bool, message string)
	// CommandFailed is called once when a command exits with a nonzero code,
	// before its continuation.
	CommandFailed(job Job, exitCode int)
}

// Options configures a Runner.
type Options struct {
	// Dispatcher marshals callbacks onto the UI thread. Defaults to a Serial dispatcher.
	Dispatcher Dispatcher
	// Observer receives log lines and busy state. May be nil.
	Observer Observer
	// StartTimeout bounds process launch. Defaults to common.StartTimeout.
	StartTimeout time.Duration
	// OnComplete is called after the continuation of every job that ran.
	OnComplete func(Result)
}

// LaunchError is returned by Start when the process could not be launched.
type LaunchError struct {
	Args []string
	Err  error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to start %q: %v", strings.Join(e.Args, " "), e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// Is matches common.ErrLaunchFailed.
func (e *LaunchError) Is(target error) bool {
	return target == common.ErrLaunchFailed
}

// Runner runs at most one external command at a time.
type Runner struct {
	dispatcher   Dispatcher
	observer     Observer
	startTimeout time.Duration
	onComplete   func(Result)

	// startProcess launches cmd; replaced in tests.
	startProcess func(cmd *exec.Cmd) error

	mu       sync.Mutex
	idle     *sync.Cond
	state    State
	current  *Job
	lastExit int
	ran      bool
}

// New creates an idle Runner.
func New(opts Options) *Runner {
	r := &Runner{
		dispatcher:   opts.Dispatcher,
		observer:     opts.Observer,
		startTimeout: opts.StartTimeout,
		onComplete:   opts.OnComplete,
		startProcess: func(cmd *exec.Cmd) error { return cmd.Start() },
	}
	if r.dispatcher == nil {
		r.dispatcher = &Serial{}
	}
	if r.observer == nil {
		r.observer = nopObserver{}
	}
	if r.startTimeout <= 0 {
		r.startTimeout = common.StartTimeout
	}
	r.idle = sync.NewCond(&r.mu)
	return r
}

// State returns the current lifecycle state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Busy reports whether a command is outstanding.
func (r *Runner) Busy() bool {
	return r.State() != StateIdle
}

// Current returns a copy of the outstanding job, if any.
func (r *Runner) Current() (Job, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return Job{}, false
	}
	return *r.current, true
}

// LastExitCode returns the exit code of the most recently finished job.
func (r *Runner) LastExitCode() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastExit, r.ran
}

// Wait blocks until the runner is idle. It must not be called from the
// dispatcher's thread, which delivers the completion Wait is waiting for.
func (r *Runner) Wait() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for r.state != StateIdle {
		r.idle.Wait()
	}
}

// Start launches job without waiting for it to finish.
//
// It returns common.ErrBusy if another job is outstanding, and a *LaunchError
// if the process could not be started within the start timeout. In both
// cases the continuation is never invoked. Otherwise the continuation fires
// exactly once, after all output has been delivered.
func (r *Runner) Start(job Job) error {
	if len(job.Args) == 0 {
		return common.ErrNoCommand
	}

	r.mu.Lock()
	if r.state != StateIdle {
		r.mu.Unlock()
		return common.ErrBusy
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	j := &job
	r.state = StateStarting
	r.current = j
	r.mu.Unlock()

	status := job.Status
	if status == "" {
		status = "Running: " + job.CommandLine()
	}
	r.observer.SetBusy(true, status)
	r.observer.AppendLog("$ " + job.CommandLine())
	common.LogInfo("Runner: starting job %s: %s", job.ID, job.CommandLine())

	cmd := exec.Command(job.Args[0], job.Args[1:]...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return r.failLaunch(j, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return r.failLaunch(j, err)
	}
	var stdin io.WriteCloser
	if job.FeedNewline {
		if stdin, err = cmd.StdinPipe(); err != nil {
			return r.failLaunch(j, err)
		}
	}

	if err := r.launch(cmd); err != nil {
		return r.failLaunch(j, err)
	}
	started := time.Now()
	common.LogDebug("Runner: job %s running with PID %d", job.ID, cmd.Process.Pid)

	r.mu.Lock()
	r.state = StateRunning
	r.mu.Unlock()

	if stdin != nil {
		// Best effort: the process may already have exited or closed stdin.
		_, _ = stdin.Write([]byte("\n"))
		_ = stdin.Close()
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go r.pump(stdout, &wg)
	go r.pump(stderr, &wg)

	go func() {
		// Pipes must be drained before Wait closes them.
		wg.Wait()
		code := exitCode(cmd.Wait())
		r.dispatcher.Dispatch(func() {
			r.finish(j, code, started)
		})
	}()

	return nil
}

// launch starts cmd, giving up after the start timeout. A process that
// starts after the timeout has elapsed is killed and reaped.
func (r *Runner) launch(cmd *exec.Cmd) error {
	done := make(chan error, 1)
	go func() {
		done <- r.startProcess(cmd)
	}()

	timer := time.NewTimer(r.startTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		go func() {
			if err := <-done; err == nil && cmd.Process != nil {
				_ = cmd.Process.Kill()
				_ = cmd.Wait()
			}
		}()
		return fmt.Errorf("%w: process did not start within %v", common.ErrTimeout, r.startTimeout)
	}
}

func (r *Runner) failLaunch(j *Job, err error) error {
	common.LogError("Runner: could not start job %s: %v", j.ID, err)
	r.observer.AppendLog(LineLaunchFailed)
	r.observer.SetBusy(false, "")

	r.mu.Lock()
	r.state = StateIdle
	r.current = nil
	r.idle.Broadcast()
	r.mu.Unlock()

	return &LaunchError{Args: j.Args, Err: err}
}

// pump forwards every chunk read from rd to the log. Chunks are decoded as
// they arrive; invalid UTF-8 is replaced, never rejected.
func (r *Runner) pump(rd io.Reader, wg *sync.WaitGroup) {
	defer wg.Done()

	buf := make([]byte, 32*1024)
	for {
		n, err := rd.Read(buf)
		if n > 0 {
			text := strings.TrimSpace(strings.ToValidUTF8(string(buf[:n]), "\uFFFD"))
			if text != "" {
				r.dispatcher.Dispatch(func() {
					r.observer.AppendLog(text)
				})
			}
		}
		if err != nil {
			return
		}
	}
}

// finish runs on the dispatcher after the process has exited.
func (r *Runner) finish(j *Job, code int, started time.Time) {
	r.mu.Lock()
	r.state = StateFinishing
	r.mu.Unlock()

	if code == 0 {
		common.LogInfo("Runner: job %s finished", j.ID)
		r.observer.AppendLog(LineDone)
	} else {
		common.LogWarn("Runner: job %s exited with status %d", j.ID, code)
		r.observer.AppendLog(FailureLine(code))
		r.observer.CommandFailed(*j, code)
	}
	r.observer.SetBusy(false, "")

	if j.OnFinished != nil {
		r.safely(j, "continuation", func() { j.OnFinished(code) })
	}
	if r.onComplete != nil {
		result := Result{Job: *j, ExitCode: code, Started: started, Finished: time.Now()}
		r.safely(j, "completion hook", func() { r.onComplete(result) })
	}

	r.mu.Lock()
	r.state = StateIdle
	r.current = nil
	r.lastExit = code
	r.ran = true
	r.idle.Broadcast()
	r.mu.Unlock()
}

// safely calls fn, logging a panic instead of letting it escape.
func (r *Runner) safely(j *Job, what string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			common.LogError("Runner: %s of job %s panicked: %v", what, j.ID, rec)
			r.observer.AppendLog(fmt.Sprintf("❌ Error after command finished: %v", rec))
		}
	}()
	fn()
}

// exitCode maps the result of cmd.Wait to a shell-style exit status.
// Processes killed by a signal report 128+signal.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			return 128 + int(ws.Signal())
		}
		return exitErr.ExitCode()
	}
	return 1
}

type nopObserver struct{}

func (nopObserver) AppendLog(string) {}

func (nopObserver) SetBusy(bool, string) {}

func (nopObserver) CommandFailed(Job, int) {}
