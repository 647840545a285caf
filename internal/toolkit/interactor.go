package toolkit

import (
	"bufio"
	"io"
	"strings"
	"sync"
	"sync/atomic"
)

// Event is a message delivered to an interactor's event loop.
type Event string

// Events understood by EventLoop.
const (
	EventRender Event = "render"
	EventExit   Event = "exit"
)

// Interactor is the event-loop entry point attached to a render window.
type Interactor interface {
	// Initialize prepares the interactor; Start calls it if needed.
	Initialize() error

	// Start runs the event loop. It blocks until the loop is terminated.
	Start()

	// Render re-renders the attached window.
	Render() error

	// PostEvent queues an event for the loop.
	PostEvent(ev Event)

	// TerminateApp asks a running loop to return.
	TerminateApp()

	// RenderWindow returns the attached window.
	RenderWindow() *RenderWindow
}

// InteractorFactory constructs the interactor for a window.
type InteractorFactory func(win *RenderWindow) Interactor

// eventQueueSize bounds the events that can be posted before Start drains them.
const eventQueueSize = 64

// EventLoop is the interactive Interactor. Start processes posted events
// and, when an input reader is attached, one command per input line:
// "r" renders, "q" quits. End of input also quits.
type EventLoop struct {
	win    *RenderWindow
	in     io.Reader
	events chan Event

	initialized bool
	inputOnce   sync.Once
	inputDone   atomic.Bool
	renders     int
}

// NewEventLoop attaches an event loop to win. in may be nil, in which case
// the loop only returns once EventExit is posted.
func NewEventLoop(win *RenderWindow, in io.Reader) *EventLoop {
	return &EventLoop{
		win:    win,
		in:     in,
		events: make(chan Event, eventQueueSize),
	}
}

// NewEventLoopFactory returns a factory producing event loops that read
// commands from in.
func NewEventLoopFactory(in io.Reader) InteractorFactory {
	return func(win *RenderWindow) Interactor {
		return NewEventLoop(win, in)
	}
}

// Initialize marks the loop ready. It is idempotent.
func (l *EventLoop) Initialize() error {
	l.initialized = true
	return nil
}

// Start blocks, dispatching events until EventExit arrives. Once the input
// reader is exhausted, Start returns immediately.
func (l *EventLoop) Start() {
	if !l.initialized {
		_ = l.Initialize()
	}
	if l.inputDone.Load() {
		return
	}
	if l.in != nil {
		l.inputOnce.Do(func() { go l.readInput() })
	}

	for ev := range l.events {
		switch ev {
		case EventExit:
			return
		case EventRender:
			_ = l.Render()
		}
	}
}

// readInput translates input lines into events. It runs at most once per
// loop, on its own goroutine, because reads block.
func (l *EventLoop) readInput() {
	sc := bufio.NewScanner(l.in)
	for sc.Scan() {
		switch strings.TrimSpace(sc.Text()) {
		case "r":
			l.events <- EventRender
		case "q":
			l.inputDone.Store(true)
			l.events <- EventExit
			return
		}
	}
	l.inputDone.Store(true)
	l.events <- EventExit
}

// Render re-renders the attached window.
func (l *EventLoop) Render() error {
	l.renders++
	return l.win.Render()
}

// PostEvent queues ev. Events posted to a full queue are dropped.
func (l *EventLoop) PostEvent(ev Event) {
	select {
	case l.events <- ev:
	default:
	}
}

// TerminateApp posts EventExit.
func (l *EventLoop) TerminateApp() {
	l.PostEvent(EventExit)
}

// RenderWindow returns the attached window.
func (l *EventLoop) RenderWindow() *RenderWindow {
	return l.win
}
