package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kart-io/logger"

	"github.com/Chanu-03/Study-Mate/internal/domain"
	"github.com/Chanu-03/Study-Mate/internal/service"
)

// SessionPort is the TUI-facing subset of the study session.
type SessionPort interface {
	IngestPaths(ctx context.Context, paths []string) service.BatchReport
	Ask(ctx context.Context, question string, topK int) (*service.Answer, error)
	Reset()
	Documents() []domain.DocumentRecord
	Size() int
	MaxTopK() int
}

const (
	processingText = "Processing uploaded files..."
	searchingText  = "Searching relevant passages..."
)

// Options configures a new Model.
type Options struct {
	TopK          int
	PreviewLength int
	// Paths are ingested as soon as the program starts.
	Paths []string
}

type ingestDoneMsg struct {
	report service.BatchReport
}

type answerMsg struct {
	answer *service.Answer
	err    error
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	ctx     context.Context
	session SessionPort

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	docs     table.Model

	topK       int
	previewLen int
	pending    []string

	busy     string
	showDocs bool
	status   string
	summary  string
	notices  []string
	answer   *service.Answer
	cursor   int
	ready    bool

	// counts cached between pipelines so rendering never waits on the session lock
	documents int
	passages  int
}

// New creates a new TUI model instance.
func New(ctx context.Context, session SessionPort, opts Options) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question, or :add <files>, :k <n>, :docs, :reset"
	ti.Focus()
	ti.CharLimit = 0

	if opts.TopK < 1 {
		opts.TopK = 4
	}
	if maxK := session.MaxTopK(); opts.TopK > maxK {
		opts.TopK = maxK
	}
	m := Model{
		ctx:        ctx,
		session:    session,
		input:      ti,
		viewport:   viewport.New(0, 0),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(spinnerStyle)),
		docs:       newDocumentsTable(),
		topK:       opts.TopK,
		previewLen: opts.PreviewLength,
		pending:    opts.Paths,
		status:     "Ready.",
		documents:  len(session.Documents()),
		passages:   session.Size(),
	}
	if len(m.pending) > 0 {
		m.busy = processingText
	}
	return m
}

// Init starts cursor blinking and ingests the paths given on the command line.
func (m Model) Init() tea.Cmd {
	if len(m.pending) == 0 {
		return textinput.Blink
	}
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.ingest(m.pending))
}

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.resize(msg.Width, msg.Height)
		m.refresh()
		return m, nil
	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case ingestDoneMsg:
		m.busy = ""
		m.pending = nil
		m.applyReport(msg.report)
		m.refresh()
		return m, nil
	case answerMsg:
		m.busy = ""
		m.applyAnswer(msg.answer, msg.err)
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			if m.busy != "" {
				return m, nil
			}
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				return m, nil
			}
			m.input.SetValue("")
			return m.handleLine(line)
		case "tab":
			m.showDocs = !m.showDocs
			m.refresh()
			return m, nil
		case "down":
			if m.answer != nil && len(m.answer.Hits) > 0 {
				m.cursor = (m.cursor + 1) % len(m.answer.Hits)
				m.refresh()
				return m, nil
			}
		case "up":
			if m.answer != nil && len(m.answer.Hits) > 0 {
				m.cursor = (m.cursor - 1 + len(m.answer.Hits)) % len(m.answer.Hits)
				m.refresh()
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleLine(line string) (tea.Model, tea.Cmd) {
	if !strings.HasPrefix(line, ":") {
		m.busy = searchingText
		return m, tea.Batch(m.spinner.Tick, m.ask(line))
	}
	fields := strings.Fields(line)
	switch fields[0] {
	case ":add":
		if len(fields) < 2 {
			m.status = "Usage: :add <path...>"
			return m, nil
		}
		m.busy = processingText
		return m, tea.Batch(m.spinner.Tick, m.ingest(fields[1:]))
	case ":reset":
		m.session.Reset()
		m.documents, m.passages = 0, 0
		m.docs.SetRows(nil)
		m.answer = nil
		m.cursor = 0
		m.summary = ""
		m.notices = nil
		m.status = "All data cleared."
	case ":k":
		maxK := m.session.MaxTopK()
		if len(fields) != 2 {
			m.status = fmt.Sprintf("Usage: :k <1-%d>", maxK)
			return m, nil
		}
		k, err := strconv.Atoi(fields[1])
		if err != nil || k < 1 || k > maxK {
			m.status = fmt.Sprintf("top_k must be between 1 and %d", maxK)
			return m, nil
		}
		m.topK = k
		m.status = fmt.Sprintf("top_k set to %d", k)
	case ":docs":
		m.showDocs = !m.showDocs
	case ":q", ":quit":
		return m, tea.Quit
	default:
		m.status = fmt.Sprintf("Unknown command %s", fields[0])
		return m, nil
	}
	m.refresh()
	return m, nil
}

func (m Model) ingest(paths []string) tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		return ingestDoneMsg{report: session.IngestPaths(ctx, paths)}
	}
}

func (m Model) ask(question string) tea.Cmd {
	ctx, session, k := m.ctx, m.session, m.topK
	return func() tea.Msg {
		ans, err := session.Ask(ctx, question, k)
		return answerMsg{answer: ans, err: err}
	}
}

func (m *Model) applyReport(r service.BatchReport) {
	m.notices = m.notices[:0]
	for _, res := range r.Results {
		switch {
		case res.OK():
		case res.Warning():
			m.notices = append(m.notices, warningStyle.Render(fmt.Sprintf("Warning: no text found in %s", res.Name)))
		default:
			m.notices = append(m.notices, errorStyle.Render(fmt.Sprintf("Error processing %s: %v", res.Name, res.Err)))
		}
	}
	if r.Summary != "" {
		m.summary = r.Summary
	}
	m.status = fmt.Sprintf("Processed %d/%d files", r.Processed, r.Total)
	docs := m.session.Documents()
	m.documents, m.passages = len(docs), m.session.Size()
	m.docs.SetRows(documentRows(docs))
}

func (m *Model) applyAnswer(ans *service.Answer, err error) {
	m.cursor = 0
	if err != nil {
		logger.Warnw("question failed", "error", err)
		m.answer = nil
		m.status = "Error: " + err.Error()
		return
	}
	m.answer = ans
	m.showDocs = false
	switch {
	case ans.Err != nil:
		m.status = "Error: " + ans.Err.Error()
	case ans.NotFound:
		m.status = "No relevant passages found."
	default:
		m.status = fmt.Sprintf("Answered from %d passages", len(ans.Hits))
	}
}

func (m *Model) resize(width, height int) {
	_, bh := bodyBoxStyle.GetFrameSize()
	_, ih := inputBoxStyle.GetFrameSize()
	reserved := 2 + 1 + ih + 1 // header lines, status, input box, spacer
	vh := height - reserved - bh
	if vh < 3 {
		vh = 3
	}
	if width < 20 {
		width = 20
	}
	m.viewport.Width = width
	m.viewport.Height = vh
	m.input.Width = width - 6
	m.docs.SetWidth(width - 4)
	m.docs.SetHeight(vh)
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderBody())
	m.viewport.GotoTop()
}
