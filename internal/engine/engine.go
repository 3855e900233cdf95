// Package engine owns the active scene and feeds it input events one at a
// time, running work posted from other goroutines between events.
package engine

import (
	"sync"

	"github.com/stlalpha/pocketscene/internal/keyboard"
	"github.com/stlalpha/pocketscene/internal/logging"
	"github.com/stlalpha/pocketscene/internal/scene"
)

// Factory builds a scene of the given kind.
type Factory func(kind scene.Kind, env *scene.Env, arg string) scene.Scene

// Engine is the input dispatch loop. Dispatch, Drain and Switch must be
// called from the UI goroutine; Post and the runner callbacks may be called
// from anywhere.
type Engine struct {
	env     *scene.Env
	factory Factory

	current scene.Scene
	kind    scene.Kind

	// pending holds a switch requested while an event is being handled.
	dispatching bool
	pending     *switchRequest

	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

type switchRequest struct {
	kind scene.Kind
	arg  string
}

// New creates an engine over env. env.Switcher and env.Wake are set to the
// engine.
func New(env *scene.Env, factory Factory) *Engine {
	if factory == nil {
		factory = scene.New
	}
	e := &Engine{
		env:     env,
		factory: factory,
		wake:    make(chan struct{}, 1),
	}
	env.Switcher = e
	env.Wake = e.notify
	return e
}

// Scene returns the active scene.
func (e *Engine) Scene() scene.Scene { return e.current }

// Kind returns the kind of the active scene.
func (e *Engine) Kind() scene.Kind { return e.kind }

// Wake returns a channel that receives a value whenever work is waiting
// for Drain.
func (e *Engine) Wake() <-chan struct{} { return e.wake }

func (e *Engine) notify() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Start shows the scene of the given kind.
func (e *Engine) Start(kind scene.Kind, arg string) {
	e.Switch(kind, arg)
}

// Switch replaces the active scene. A switch requested by a scene while it
// handles an event takes effect once the handler returns.
func (e *Engine) Switch(kind scene.Kind, arg string) {
	if e.dispatching {
		e.pending = &switchRequest{kind: kind, arg: arg}
		return
	}
	if c, ok := e.current.(scene.Closer); ok {
		c.Close()
	}
	logging.Debug("engine: switching to %s %q", kind, arg)
	e.kind = kind
	e.current = e.factory(kind, e.env, arg)
	e.current.Init()
	e.current.RenderAll()
}

// Close releases the active scene.
func (e *Engine) Close() {
	if c, ok := e.current.(scene.Closer); ok {
		c.Close()
	}
}

// Dispatch delivers one event to the active scene and processes it to
// completion, including any scene switch and posted work it caused.
func (e *Engine) Dispatch(ev keyboard.Event) {
	if e.current == nil {
		return
	}
	logging.Debug("engine: %s", ev)

	e.dispatching = true
	switch ev.Kind {
	case keyboard.Arrow:
		e.current.Arrow(ev.Dir)
	case keyboard.Enter:
		e.current.Enter()
	case keyboard.Escape:
		e.current.Escape()
	case keyboard.Delete:
		e.current.Delete()
	case keyboard.Character:
		e.current.Value(ev.Char)
	}
	e.dispatching = false

	if p := e.pending; p != nil {
		e.pending = nil
		e.Switch(p.kind, p.arg)
	}
	e.Drain()
}

// Post queues fn to run on the UI goroutine. Safe for concurrent use.
func (e *Engine) Post(fn func()) {
	e.mu.Lock()
	e.queue = append(e.queue, fn)
	e.mu.Unlock()
	e.notify()
}

// Drain runs posted work and lets the active scene apply queued results.
func (e *Engine) Drain() {
	for {
		e.mu.Lock()
		queue := e.queue
		e.queue = nil
		e.mu.Unlock()
		if len(queue) == 0 {
			break
		}
		e.dispatching = true
		for _, fn := range queue {
			fn()
		}
		e.dispatching = false
		if p := e.pending; p != nil {
			e.pending = nil
			e.Switch(p.kind, p.arg)
		}
	}
	if d, ok := e.current.(scene.Drainer); ok {
		d.Drain()
	}
}

// Autosave saves the active scene if it holds unsaved work. Safe for
// concurrent use: the save runs on the UI goroutine.
func (e *Engine) Autosave() {
	e.Post(func() {
		if s, ok := e.current.(scene.Saver); ok {
			s.Autosave()
		}
	})
}

// The runner callbacks forward results to the active scene. A scene
// switched away from while its script runs no longer receives them.

func (e *Engine) OnOutput(text string) {
	e.Post(func() {
		if s, ok := e.current.(scene.CodeSink); ok {
			s.SendCodeOutput(text)
		}
	})
}

func (e *Engine) OnError(traceback string) {
	e.Post(func() {
		if s, ok := e.current.(scene.CodeSink); ok {
			s.SendCodeError(traceback)
		} else {
			logging.Warn("Script failed: %s", traceback)
		}
	})
}

func (e *Engine) OnSuccess() {
	e.Post(func() {
		if s, ok := e.current.(scene.CodeSink); ok {
			s.SendCodeSuccess()
		}
	})
}
