// Package cli provides terminal output helpers for labctl: status lines,
// tables and a spinner shown while an operation is in flight.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/tabwriter"
	"time"
)

// Color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorBold   = "\033[1m"
)

// Printer writes status lines and tables, colored only on a terminal.
type Printer struct {
	w     io.Writer
	color bool
}

// NewPrinter returns a Printer for w. Color is enabled when w is a terminal.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, color: isTerminal(w)}
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer { return p.w }

// Colorize wraps text in color when the printer is colored.
func (p *Printer) Colorize(text, color string) string {
	if !p.color {
		return text
	}
	return color + text + ColorReset
}

func (p *Printer) line(symbol, color, format string, args ...interface{}) {
	fmt.Fprintf(p.w, "%s %s\n", p.Colorize(symbol, color), fmt.Sprintf(format, args...))
}

// Success prints a success message.
func (p *Printer) Success(format string, args ...interface{}) {
	p.line("✓", ColorGreen, format, args...)
}

// Error prints an error message.
func (p *Printer) Error(format string, args ...interface{}) {
	p.line("✗", ColorRed, format, args...)
}

// Warning prints a warning message.
func (p *Printer) Warning(format string, args ...interface{}) {
	p.line("⚠", ColorYellow, format, args...)
}

// Info prints an info message.
func (p *Printer) Info(format string, args ...interface{}) {
	p.line("ℹ", ColorBlue, format, args...)
}

// Table prints rows under a bold header, aligned in columns.
func (p *Printer) Table(header []string, rows [][]string) {
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, p.Colorize(strings.Join(header, "\t"), ColorBold))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
}

// Spinner animates a status line until stopped. On a non-terminal writer it
// prints the status once per change instead.
type Spinner struct {
	p      *Printer
	mu     sync.Mutex
	status string
	frame  int
	active bool
	stopCh chan struct{}
	done   chan struct{}
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner creates a stopped spinner bound to p.
func (p *Printer) Spinner() *Spinner {
	return &Spinner{p: p}
}

// Update sets the status text, starting the spinner if needed.
func (s *Spinner) Update(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == status && s.active {
		return
	}
	s.status = status
	if !s.p.color {
		fmt.Fprintf(s.p.w, "... %s\n", status)
		s.active = true
		return
	}
	if s.active {
		return
	}
	s.active = true
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(s.stopCh, s.done)
}

func (s *Spinner) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		s.render()
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

func (s *Spinner) render() {
	s.mu.Lock()
	defer s.mu.Unlock()
	frame := spinnerFrames[s.frame%len(spinnerFrames)]
	s.frame++
	fmt.Fprintf(s.p.w, "\r%s %s\033[K", s.p.Colorize(frame, ColorBlue), s.status)
}

// Stop halts the spinner and clears its line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	stop, done := s.stopCh, s.done
	s.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
		fmt.Fprint(s.p.w, "\r\033[K")
	}
	s.mu.Lock()
	s.stopCh, s.done = nil, nil
	s.mu.Unlock()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return "< 1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
