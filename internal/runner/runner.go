// Package runner executes scripts in an interpreter subprocess and reports
// output and completion through callbacks.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stlalpha/pocketscene/internal/logging"
)

var (
	// ErrBusy is returned when a run is requested while one is active.
	ErrBusy = errors.New("runner: a script is already running")
	// ErrUnknownLanguage is returned for a language with no interpreter.
	ErrUnknownLanguage = errors.New("runner: no interpreter for language")
	// ErrNotRunning is returned when input is sent with no active run.
	ErrNotRunning = errors.New("runner: no script is running")
)

// Callbacks receives the results of a run. The methods are called from the
// runner's goroutines, never from the caller of RunCodeString. OnError or
// OnSuccess is the last call of a run: output read after it is dropped.
type Callbacks interface {
	OnOutput(text string)
	OnError(traceback string)
	OnSuccess()
}

// outputGate orders a run's output before its completion callback.
type outputGate struct {
	mu     sync.Mutex
	closed bool
}

// emit runs fn unless the gate is closed and reports whether it ran.
func (g *outputGate) emit(fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return false
	}
	fn()
	return true
}

func (g *outputGate) close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
}

// flag is a boolean with its own lock.
type flag struct {
	mu sync.Mutex
	v  bool
}

func (f *flag) set(v bool) {
	f.mu.Lock()
	f.v = v
	f.mu.Unlock()
}

func (f *flag) get() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.v
}

// Options configures a Runner.
type Options struct {
	// Interpreters maps a language to a command line; the script path is
	// appended as the last argument.
	Interpreters map[string]string
	// Timeout bounds a run. 0 means no timeout.
	Timeout time.Duration
	// Cols and Rows size the interpreter's terminal.
	Cols, Rows uint16
}

// process is a started interpreter.
type process interface {
	io.ReadWriteCloser
	Wait() error
	Kill() error
}

// Runner runs one script at a time.
type Runner struct {
	opts Options
	cb   Callbacks

	// Each signal is guarded on its own.
	running       flag
	waitingInput  flag
	waitingOutput flag

	mu     sync.Mutex
	proc   process
	cancel context.CancelFunc
	id     uuid.UUID
	done   chan struct{}
}

// New creates a runner reporting to cb.
func New(opts Options, cb Callbacks) *Runner {
	if opts.Cols == 0 {
		opts.Cols = 37
	}
	if opts.Rows == 0 {
		opts.Rows = 9
	}
	return &Runner{opts: opts, cb: cb}
}

// SetOptions replaces the options used by later runs.
func (r *Runner) SetOptions(opts Options) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if opts.Cols == 0 {
		opts.Cols = r.opts.Cols
	}
	if opts.Rows == 0 {
		opts.Rows = r.opts.Rows
	}
	r.opts = opts
}

// Running reports whether a script is executing.
func (r *Runner) Running() bool { return r.running.get() }

// WaitingInput reports whether the script appears to wait for a line of
// input: it is running and its last output did not end a line.
func (r *Runner) WaitingInput() bool { return r.waitingInput.get() }

// WaitingOutput reports whether the script's output stream is still open.
func (r *Runner) WaitingOutput() bool { return r.waitingOutput.get() }

// Done returns a channel closed when the current run ends, or nil.
func (r *Runner) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// RunCodeString starts code in the interpreter for language and returns
// the run id. Output and completion are reported through the callbacks.
func (r *Runner) RunCodeString(ctx context.Context, code, language string) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running.get() {
		return uuid.Nil, ErrBusy
	}
	cmdline := strings.Fields(r.opts.Interpreters[language])
	if len(cmdline) == 0 {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, language)
	}

	script, err := writeScript(code, language)
	if err != nil {
		return uuid.Nil, err
	}

	var runCtx context.Context
	var cancel context.CancelFunc
	if r.opts.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}

	proc, err := start(append(cmdline, script), r.opts.Cols, r.opts.Rows)
	if err != nil {
		cancel()
		os.Remove(script)
		return uuid.Nil, fmt.Errorf("start %s: %w", cmdline[0], err)
	}

	r.id = uuid.New()
	r.proc = proc
	r.cancel = cancel
	r.done = make(chan struct{})
	r.running.set(true)
	r.waitingOutput.set(true)
	r.waitingInput.set(false)
	logging.Info("Run %s started: %s (%d bytes)", r.id, language, len(code))

	go r.supervise(runCtx, r.id, proc, script, r.done, r.opts.Timeout)
	return r.id, nil
}

// Send writes input to the running script.
func (r *Runner) Send(input string) error {
	r.mu.Lock()
	proc := r.proc
	r.mu.Unlock()
	if proc == nil || !r.running.get() {
		return ErrNotRunning
	}
	r.waitingInput.set(false)
	if _, err := io.WriteString(proc, input); err != nil {
		return fmt.Errorf("send input: %w", err)
	}
	return nil
}

// Cancel stops the running script. It is a no-op when nothing runs.
func (r *Runner) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *Runner) supervise(ctx context.Context, id uuid.UUID, proc process, script string, done chan struct{}, timeout time.Duration) {
	defer close(done)
	defer os.Remove(script)

	tail := &tailBuffer{max: 2048}
	gate := &outputGate{}
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		r.pump(proc, tail, gate)
	}()

	waitErr := make(chan error, 1)
	go func() { waitErr <- proc.Wait() }()

	var err, cause error
	select {
	case err = <-waitErr:
	case <-ctx.Done():
		cause = ctx.Err()
		if kerr := proc.Kill(); kerr != nil {
			logging.Warn("Run %s: kill failed: %v", id, kerr)
		}
		err = <-waitErr
	}

	// Let the reader drain what the process wrote before it exited. A
	// background child may hold the terminal open; don't wait on it.
	select {
	case <-readDone:
	case <-time.After(250 * time.Millisecond):
	}
	proc.Close()

	r.mu.Lock()
	r.proc = nil
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()
	r.waitingInput.set(false)
	r.waitingOutput.set(false)
	r.running.set(false)
	gate.close()

	switch {
	case errors.Is(cause, context.DeadlineExceeded):
		logging.Warn("Run %s timed out", id)
		r.cb.OnError(fmt.Sprintf("timed out after %s", timeout))
	case errors.Is(cause, context.Canceled):
		logging.Info("Run %s cancelled", id)
		r.cb.OnError("cancelled")
	case err != nil:
		logging.Info("Run %s failed: %v", id, err)
		tb := strings.TrimSpace(tail.String())
		if tb == "" {
			tb = err.Error()
		}
		r.cb.OnError(tb)
	default:
		logging.Info("Run %s finished", id)
		r.cb.OnSuccess()
	}
}

// pump forwards interpreter output to the callbacks until the stream ends.
func (r *Runner) pump(proc io.Reader, tail *tailBuffer, gate *outputGate) {
	buf := make([]byte, 1024)
	for {
		n, err := proc.Read(buf)
		if n > 0 {
			text := strings.ReplaceAll(string(buf[:n]), "\r", "")
			tail.Write(text)
			r.waitingInput.set(!strings.HasSuffix(text, "\n"))
			if text != "" && !gate.emit(func() { r.cb.OnOutput(text) }) {
				logging.Debug("runner: dropped %d bytes read after the run ended", len(text))
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				// A pty reports EIO once the child side is gone.
				logging.Debug("runner output closed: %v", err)
			}
			r.waitingOutput.set(false)
			return
		}
	}
}

func writeScript(code, language string) (string, error) {
	f, err := os.CreateTemp("", "pocketscene-"+language+"-*")
	if err != nil {
		return "", fmt.Errorf("create script file: %w", err)
	}
	if _, err := f.WriteString(code); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write script file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write script file: %w", err)
	}
	return f.Name(), nil
}

// tailBuffer keeps the last max bytes written to it, used as the traceback
// of a failed run.
type tailBuffer struct {
	mu  sync.Mutex
	max int
	b   []byte
}

func (t *tailBuffer) Write(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.b = append(t.b, s...)
	if over := len(t.b) - t.max; over > 0 {
		t.b = t.b[over:]
	}
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.b)
}
