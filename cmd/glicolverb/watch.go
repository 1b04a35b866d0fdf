package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vmunix/glicol-verb/pkg/router"
)

// scriptWatcher resubmits a script file whenever its modification time or
// size changes.
type scriptWatcher struct {
	path    string
	queue   *router.ScriptQueue
	out     io.Writer
	modTime time.Time
	size    int64
}

// newScriptWatcher records the file's current state so only later edits are
// submitted.
func newScriptWatcher(path string, queue *router.ScriptQueue, out io.Writer) *scriptWatcher {
	w := &scriptWatcher{path: path, queue: queue, out: out}
	if info, err := os.Stat(path); err == nil {
		w.modTime, w.size = info.ModTime(), info.Size()
	}
	return w
}

// poll submits the script if it changed. A full queue is reported and the
// edit retried on the next poll.
func (w *scriptWatcher) poll() error {
	info, err := os.Stat(w.path)
	if err != nil {
		return fmt.Errorf("stat script: %w", err)
	}
	if info.ModTime().Equal(w.modTime) && info.Size() == w.size {
		return nil
	}

	text, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	if err := w.queue.Submit(string(text)); err != nil {
		if errors.Is(err, router.ErrQueueFull) {
			fmt.Fprintf(w.out, "script update dropped, retrying: %v\n", err)
			return nil
		}
		return err
	}

	w.modTime, w.size = info.ModTime(), info.Size()
	fmt.Fprintf(w.out, "script submitted (%d bytes)\n", len(text))
	return nil
}

// printStatus reports what the audio thread did with a submitted script.
func printStatus(out io.Writer, st router.ScriptStatus) {
	if st.Accepted() {
		fmt.Fprintf(out, "script accepted\n")
		return
	}
	fmt.Fprintf(out, "script rejected, previous program still running: %v\n", st.Err)
}
