package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// statusLine redraws a single line in place on a terminal. On anything else
// it writes nothing, so piped output stays clean.
type statusLine struct {
	w     io.Writer
	live  bool
	shown bool
}

func newStatusLine(w io.Writer) *statusLine {
	return &statusLine{w: w, live: isTerminal(w)}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (s *statusLine) show(text string) {
	if !s.live {
		return
	}
	if width, _, err := term.GetSize(int(s.w.(*os.File).Fd())); err == nil && width > 1 && len(text) >= width {
		text = text[:width-1]
	}
	fmt.Fprintf(s.w, "\r%s\x1b[K", text)
	s.shown = true
}

// clear erases the line so regular output can follow.
func (s *statusLine) clear() {
	if s.shown {
		fmt.Fprint(s.w, "\r\x1b[K")
		s.shown = false
	}
}
