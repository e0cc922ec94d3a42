// Package progress shows what a long-running publish is doing.
//
// On a terminal a bubbletea spinner carries the current step and finished
// steps scroll above it. Anywhere else each step is a plain line, so logs
// and CI output stay readable.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/colorprofile"
	"github.com/mattn/go-isatty"

	"github.com/deepesdl/deep-code/internal/ui/styles"
)

// Reporter receives progress updates.
type Reporter interface {
	// Update replaces the current activity.
	Update(message string)
	// Done records a finished activity.
	Done(message string)
	// Stop ends reporting.
	Stop()
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// New returns a spinner when w is a terminal and a line reporter otherwise.
func New(w io.Writer, message string) Reporter {
	if IsTerminal(w) {
		s := NewSpinner(w, message)
		s.Start()
		return s
	}
	return NewLines(w, message)
}

// messageUpdate is sent to update the spinner message
type messageUpdate string

// Spinner wraps a Bubbletea spinner for simple non-interactive use
type Spinner struct {
	out       io.Writer
	program   *tea.Program
	msgChan   chan string
	done      chan struct{}
	mu        sync.Mutex
	isRunning bool
	lastMsg   string
}

// spinnerModel is the internal Bubbletea model
type spinnerModel struct {
	spinner spinner.Model
	message string
	msgChan chan string
	quit    bool
}

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForMessage())
}

func (m spinnerModel) waitForMessage() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.msgChan
		if !ok {
			return tea.Quit()
		}
		return messageUpdate(msg)
	}
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.quit {
		return m, tea.Quit
	}

	switch msg := msg.(type) {
	case messageUpdate:
		m.message = string(msg)
		return m, m.waitForMessage()
	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m spinnerModel) View() tea.View {
	if m.quit || m.message == "" {
		return tea.NewView("")
	}
	return tea.NewView(fmt.Sprintf("%s %s", m.spinner.View(), m.message))
}

// NewSpinner creates a spinner rendering to w with the given message
func NewSpinner(w io.Writer, message string) *Spinner {
	return &Spinner{
		out:     w,
		msgChan: make(chan string, 10),
		done:    make(chan struct{}),
		lastMsg: message,
	}
}

// Start begins the spinner animation
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.PrimaryStyle

	model := spinnerModel{
		spinner: sp,
		message: s.lastMsg,
		msgChan: s.msgChan,
	}

	// Detect color profile for the output (handles piped output, NO_COLOR, etc.)
	profile := colorprofile.Detect(s.out, os.Environ())
	s.program = tea.NewProgram(model,
		tea.WithoutSignalHandler(),
		tea.WithOutput(s.out),
		tea.WithColorProfile(profile),
	)
	s.isRunning = true

	go func() {
		_, _ = s.program.Run()
		close(s.done)
	}()
}

// Update changes the spinner message
func (s *Spinner) Update(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		s.lastMsg = message
		return
	}

	// Non-blocking send: a full channel drops the update rather than
	// stalling the publish.
	select {
	case s.msgChan <- message:
	default:
	}
}

// Done prints a finished step above the spinner
func (s *Spinner) Done(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line := styles.SuccessStyle.Render(styles.CheckMark) + " " + message
	if !s.isRunning {
		fmt.Fprintln(s.out, line)
		return
	}
	s.program.Println(line)
}

// Stop stops the spinner and clears the line
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	// Close channel inside mutex to prevent race with Update
	close(s.msgChan)
	s.mu.Unlock()

	if s.program != nil {
		s.program.Quit()
	}

	// Wait for program to finish with timeout
	select {
	case <-s.done:
	case <-time.After(500 * time.Millisecond):
	}

	fmt.Fprint(s.out, "\r\033[K")
}

// Lines reports progress as one line per finished step.
type Lines struct {
	mu  sync.Mutex
	out io.Writer
}

// NewLines creates a line reporter. A non-empty message is printed first.
func NewLines(w io.Writer, message string) *Lines {
	l := &Lines{out: w}
	if message != "" {
		fmt.Fprintf(w, "%s %s\n", styles.Arrow, message)
	}
	return l
}

// Update is a no-op; only finished steps are printed.
func (l *Lines) Update(string) {}

// Done prints a finished step.
func (l *Lines) Done(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s %s\n", styles.CheckMark, message)
}

// Stop is a no-op.
func (l *Lines) Stop() {}
