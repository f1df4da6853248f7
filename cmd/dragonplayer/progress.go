package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

const progressBarWidth = 30

// consoleProgress draws a single redrawn bar on a terminal, or a line per
// tenth of the work otherwise. It reports canceled once done is closed.
type consoleProgress struct {
	mu          sync.Mutex
	out         io.Writer
	interactive bool
	done        <-chan struct{}
	max         int
	lastTenth   int
	drawn       bool
}

var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newConsoleProgress(out io.Writer, done <-chan struct{}) *consoleProgress {
	return &consoleProgress{out: out, interactive: isTerminal(out), done: done, lastTenth: -1}
}

func (p *consoleProgress) SetMaximum(max int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.max = max
}

func (p *consoleProgress) SetValue(v int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.max <= 0 {
		return
	}

	if v > p.max {
		v = p.max
	}
	if p.interactive {
		filled := v * progressBarWidth / p.max
		fmt.Fprintf(p.out, "\r[%s%s] %d/%d", strings.Repeat("#", filled), strings.Repeat(" ", progressBarWidth-filled), v, p.max)
		p.drawn = true
		return
	}

	if tenth := v * 10 / p.max; tenth > p.lastTenth {
		p.lastTenth = tenth
		fmt.Fprintf(p.out, "%d/%d\n", v, p.max)
	}
}

func (p *consoleProgress) WasCanceled() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Finish moves a drawn bar off its line.
func (p *consoleProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.drawn {
		fmt.Fprintln(p.out)
		p.drawn = false
	}
}
