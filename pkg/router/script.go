package router

import (
	"errors"
	"sync/atomic"
)

// DefaultQueueCapacity is the number of script updates that may be in
// flight before Submit reports ErrQueueFull.
const DefaultQueueCapacity = 4

// ErrQueueFull is returned by Submit when the audio thread has not yet
// drained earlier updates.
var ErrQueueFull = errors.New("script queue full")

// ScriptUpdate carries a new program from the control side to the audio
// thread.
type ScriptUpdate struct {
	Text string
}

// ScriptStatus reports the outcome of one update back to the control side.
// Err is nil when the engine accepted the program.
type ScriptStatus struct {
	Text string
	Err  error
}

// Accepted reports whether the update became the active program.
func (s ScriptStatus) Accepted() bool { return s.Err == nil }

// ScriptQueue is the lossy hand-off between a control goroutine and the
// audio thread. Neither side ever blocks.
type ScriptQueue struct {
	updates   chan ScriptUpdate
	status    chan ScriptStatus
	persisted atomic.Pointer[string]
	dropped   atomic.Uint64
}

// NewScriptQueue creates a queue holding capacity updates and as many
// status notices.
func NewScriptQueue(capacity int) *ScriptQueue {
	capacity = max(capacity, 1)
	return &ScriptQueue{
		updates: make(chan ScriptUpdate, capacity),
		status:  make(chan ScriptStatus, capacity),
	}
}

// Submit offers text to the audio thread without blocking.
func (q *ScriptQueue) Submit(text string) error {
	select {
	case q.updates <- ScriptUpdate{Text: text}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Status delivers accept/reject notices. Notices are dropped while the
// channel is full.
func (q *ScriptQueue) Status() <-chan ScriptStatus {
	return q.status
}

// Pending returns the number of updates not yet taken by the audio thread.
func (q *ScriptQueue) Pending() int {
	return len(q.updates)
}

// DroppedStatus returns how many notices were lost to a full channel.
func (q *ScriptQueue) DroppedStatus() uint64 {
	return q.dropped.Load()
}

// PersistedScript returns the last accepted program, for session saves.
func (q *ScriptQueue) PersistedScript() string {
	if p := q.persisted.Load(); p != nil {
		return *p
	}
	return ""
}

func (q *ScriptQueue) persist(text string) {
	q.persisted.Store(&text)
}

func (q *ScriptQueue) receive() (ScriptUpdate, bool) {
	select {
	case u := <-q.updates:
		return u, true
	default:
		return ScriptUpdate{}, false
	}
}

func (q *ScriptQueue) report(s ScriptStatus) {
	select {
	case q.status <- s:
	default:
		q.dropped.Add(1)
	}
}
