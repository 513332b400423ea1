// Package editor implements the interactive terminal note editor: a markdown
// buffer on the left, its summary on the right and a status bar below.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/starford/marknote/internal/summarizer"
)

// Status bar and pane texts.
const (
	StatusReady       = "Ready"
	StatusSummarizing = "Summarizing..."
	StatusSummarized  = "Summary generated successfully"
	StatusEmptyNotes  = "Please enter some notes to summarize."

	SummaryPlaceholder = "Summary will appear here..."
)

const defaultTimeout = 2 * time.Minute

// MaxLines is the longest file the notes buffer can hold.
const MaxLines = 10000

// Config configures the editor.
type Config struct {
	// Summarizer produces summaries. When nil and NewSummarizer is set, the
	// editor asks for an API key first and builds one with NewSummarizer.
	Summarizer    summarizer.Summarizer
	NewSummarizer func(apiKey string) (summarizer.Summarizer, error)

	MaxSentences int
	// Path is opened at startup when set.
	Path    string
	Timeout time.Duration
	Logger  *slog.Logger
}

type focusArea int

const (
	focusNotes focusArea = iota
	focusSummary
)

type promptKind int

const (
	promptNone promptKind = iota
	promptSave
	promptOpen
	promptAPIKey
)

type summaryMsg struct {
	text string
	err  error
}

type fileChangedMsg struct{ path string }

// Model is the bubbletea model of the editor.
type Model struct {
	cfg Config
	sum summarizer.Summarizer

	notes    textarea.Model
	summary  viewport.Model
	input    textinput.Model
	renderer *glamour.TermRenderer
	watcher  *fileWatcher

	summaryText string
	status      string
	prompt      promptKind
	focus       focusArea
	showAbout   bool
	busy        bool

	// path is the absolute path of the open file; saved is the buffer as last
	// written to or read from it and disk the exact bytes behind it.
	path  string
	saved string
	disk  string
	crlf  bool

	width, height int
}

// New creates an editor model without a file watcher.
func New(cfg Config) Model {
	return newModel(cfg, nil)
}

func newModel(cfg Config, w *fileWatcher) Model {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxSentences <= 0 {
		cfg.MaxSentences = summarizer.DefaultMaxSentences
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	ta := textarea.New()
	ta.Placeholder = "Write your markdown notes here..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.Focus()

	m := Model{
		cfg:     cfg,
		sum:     cfg.Summarizer,
		notes:   ta,
		summary: viewport.New(40, 20),
		input:   textinput.New(),
		watcher: w,
		status:  StatusReady,
	}
	m.renderer = newRenderer(40)
	m.clearSummary()

	if cfg.Path != "" {
		m.open(cfg.Path)
	}
	if m.sum == nil && cfg.NewSummarizer != nil {
		m.startPrompt(promptAPIKey, "")
	}
	return m
}

func newRenderer(width int) *glamour.TermRenderer {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

// Run starts the editor full screen and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	w, err := newFileWatcher(logger)
	if err != nil {
		return fmt.Errorf("editor: start watcher: %w", err)
	}
	defer w.Close()

	p := tea.NewProgram(newModel(cfg, w), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
	return nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.waitForChange())
}

func (m Model) waitForChange() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	ch := m.watcher.Changes()
	return func() tea.Msg {
		path, ok := <-ch
		if !ok {
			return nil
		}
		return fileChangedMsg{path: path}
	}
}

// Dirty reports whether the buffer differs from the open file.
func (m Model) Dirty() bool { return m.notes.Value() != m.saved }

// Status returns the status bar text.
func (m Model) Status() string { return m.status }

// Summary returns the last generated summary, or "" when the pane is clear.
func (m Model) Summary() string { return m.summaryText }

// Notes returns the editor buffer.
func (m Model) Notes() string { return m.notes.Value() }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case summaryMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error generating summary: " + msg.err.Error()
			return m, nil
		}
		m.setSummary(msg.text)
		m.status = StatusSummarized
		return m, nil

	case fileChangedMsg:
		m.reloadExternal(msg.path)
		return m, m.waitForChange()

	case tea.KeyMsg:
		if m.prompt != promptNone {
			return m.updatePrompt(msg)
		}
		if m.showAbout {
			m.showAbout = false
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "ctrl+q":
			return m, tea.Quit
		case "ctrl+r":
			return m.summarize()
		case "ctrl+l":
			m.notes.Reset()
			return m, nil
		case "ctrl+k":
			m.clearSummary()
			return m, nil
		case "ctrl+n":
			m.notes.Reset()
			m.clearSummary()
			m.path, m.saved, m.disk, m.crlf = "", "", "", false
			m.status = StatusReady
			return m, nil
		case "ctrl+s":
			m.startPrompt(promptSave, m.path)
			return m, textinput.Blink
		case "ctrl+o":
			m.startPrompt(promptOpen, "")
			return m, textinput.Blink
		case "f1":
			m.showAbout = true
			return m, nil
		case "tab":
			m.toggleFocus()
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.focus == focusNotes {
		m.notes, cmd = m.notes.Update(msg)
	} else {
		m.summary, cmd = m.summary.Update(msg)
	}
	return m, cmd
}

func (m *Model) toggleFocus() {
	if m.focus == focusNotes {
		m.focus = focusSummary
		m.notes.Blur()
		return
	}
	m.focus = focusNotes
	m.notes.Focus()
}

func (m Model) summarize() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.notes.Value())
	if text == "" {
		m.status = StatusEmptyNotes
		return m, nil
	}
	if m.sum == nil {
		m.status = "Error generating summary: no API key configured"
		return m, nil
	}
	if m.busy {
		return m, nil
	}
	m.busy = true
	m.status = StatusSummarizing
	return m, summarizeCmd(m.sum, text, m.cfg.MaxSentences, m.cfg.Timeout)
}

func summarizeCmd(sum summarizer.Summarizer, text string, maxSentences int, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var (
			out string
			err error
		)
		if b, ok := sum.(summarizer.BudgetSummarizer); ok {
			out, err = b.SummarizeN(ctx, text, maxSentences)
		} else {
			out, err = sum.Summarize(ctx, text)
		}
		return summaryMsg{text: out, err: err}
	}
}

func (m *Model) setSummary(text string) {
	m.summaryText = text
	rendered := text
	if m.renderer != nil {
		if out, err := m.renderer.Render(text); err == nil {
			rendered = out
		}
	}
	m.summary.SetContent(rendered)
	m.summary.GotoTop()
}

func (m *Model) clearSummary() {
	m.summaryText = ""
	m.summary.SetContent(placeholderStyle.Render(SummaryPlaceholder))
	m.summary.GotoTop()
}

func (m *Model) startPrompt(kind promptKind, value string) {
	in := textinput.New()
	switch kind {
	case promptSave:
		in.Prompt = "Save as: "
		in.Placeholder = "notes" + DefaultExtension
	case promptOpen:
		in.Prompt = "Open: "
		in.Placeholder = "path/to/notes" + DefaultExtension
	case promptAPIKey:
		in.Prompt = "Enter your API key: "
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '*'
	}
	in.SetValue(value)
	in.CursorEnd()
	in.Focus()

	m.input = in
	m.prompt = kind
	m.notes.Blur()
}

func (m *Model) endPrompt() {
	m.prompt = promptNone
	m.input.Blur()
	if m.focus == focusNotes {
		m.notes.Focus()
	}
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.prompt == promptAPIKey {
			m.status = "No API key provided; summarization is unavailable"
		} else {
			m.status = StatusReady
		}
		m.endPrompt()
		return m, nil
	case "enter":
		return m.confirmPrompt()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) confirmPrompt() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())

	switch m.prompt {
	case promptAPIKey:
		if value == "" {
			m.status = "API key required"
			return m, nil
		}
		sum, err := m.cfg.NewSummarizer(value)
		if err != nil {
			m.status = "Error configuring summarizer: " + err.Error()
			return m, nil
		}
		m.sum = sum
		m.status = StatusReady

	case promptSave:
		if value == "" {
			return m, nil
		}
		m.save(value)

	case promptOpen:
		if value == "" {
			return m, nil
		}
		m.open(value)
	}

	m.endPrompt()
	return m, nil
}

func (m *Model) save(path string) {
	abs, err := normalizePath(path)
	if err != nil {
		m.status = "Error saving file: " + err.Error()
		return
	}
	content := m.notes.Value()
	out := content
	switch {
	case content == m.saved:
		out = m.disk
	case m.crlf:
		out = strings.ReplaceAll(content, "\n", "\r\n")
	}
	if err := saveFile(abs, out); err != nil {
		m.status = "Error saving file: " + err.Error()
		return
	}
	m.path, m.saved, m.disk = abs, content, out
	m.watch(abs)
	m.status = "Saved to " + abs
}

func (m *Model) open(path string) {
	abs, err := normalizePath(path)
	if err != nil {
		m.status = "Error loading file: " + err.Error()
		return
	}
	content, err := loadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			m.path, m.saved, m.disk, m.crlf = abs, "", "", false
			m.notes.Reset()
			m.watch(abs)
			m.status = "New file " + abs
			return
		}
		m.status = "Error loading file: " + err.Error()
		return
	}
	if err := m.load(content); err != nil {
		m.status = "Error loading file: " + err.Error()
		return
	}
	m.path = abs
	m.watch(abs)
	m.status = "Loaded from " + abs
}

// load replaces the buffer with file content. Line endings are normalised to
// LF; saved records the buffer as the textarea holds it, since the textarea
// rewrites tabs and control characters.
func (m *Model) load(content string) error {
	text := strings.ReplaceAll(content, "\r\n", "\n")
	if n := strings.Count(text, "\n") + 1; n > MaxLines {
		return fmt.Errorf("%d lines, the editor holds at most %d", n, MaxLines)
	}
	m.notes.SetValue(text)
	m.saved = m.notes.Value()
	m.disk = content
	m.crlf = text != content
	return nil
}

func (m *Model) watch(abs string) {
	if m.watcher == nil {
		return
	}
	if err := m.watcher.Watch(abs); err != nil {
		m.cfg.Logger.Warn("watcher: watch failed", slog.String("path", abs), slog.String("error", err.Error()))
	}
}

// reloadExternal handles a write to the open file by another program.
func (m *Model) reloadExternal(path string) {
	if path != m.path {
		return
	}
	content, err := loadFile(path)
	if err != nil {
		m.status = "Error reloading file: " + err.Error()
		return
	}
	if content == m.disk {
		return
	}
	if m.Dirty() {
		m.status = "Warning: " + path + " changed on disk; unsaved edits kept"
		return
	}
	if err := m.load(content); err != nil {
		m.status = "Error reloading file: " + err.Error()
		return
	}
	m.status = "Reloaded " + path
}

func (m *Model) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	m.width, m.height = width, height

	left := width / 2
	right := width - left
	paneHeight := height - 5
	if paneHeight < 3 {
		paneHeight = 3
	}

	m.notes.SetWidth(max(left-2, 10))
	m.notes.SetHeight(paneHeight)
	m.summary.Width = max(right-2, 10)
	m.summary.Height = paneHeight

	m.renderer = newRenderer(m.summary.Width - 2)
	if m.summaryText != "" {
		m.setSummary(m.summaryText)
	}
}
