package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/Chanu-03/Study-Mate/internal/domain"
	"github.com/Chanu-03/Study-Mate/internal/textutil"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	spinnerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	bodyBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

const helpText = `No documents processed yet.

Add study material with  :add <path...>  (pdf, docx, pptx, txt; globs allowed)
then type a question and press Enter.

  :k <n>     number of passages to retrieve
  :docs      show processed documents (or Tab)
  :reset     clear all data
  Up/Down    browse the sources of the last answer
  Ctrl+C     quit`

// View renders the TUI layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := titleStyle.Render("StudyMate") + "  " +
		dimStyle.Render(fmt.Sprintf("%d documents · %d passages · top_k %d", m.documents, m.passages, m.topK))
	var body string
	if m.showDocs {
		body = bodyBoxStyle.Render(m.docs.View())
	} else {
		body = bodyBoxStyle.Render(m.viewport.View())
	}
	status := statusStyle.Render(m.status)
	if m.busy != "" {
		status = m.spinner.View() + " " + m.busy
	}
	return header + "\n\n" + body + "\n" + inputBoxStyle.Render(m.input.View()) + "\n" + status
}

func (m Model) renderBody() string {
	var b strings.Builder
	for _, n := range m.notices {
		b.WriteString(n + "\n")
	}
	if len(m.notices) > 0 {
		b.WriteString("\n")
	}
	if m.answer == nil {
		if m.passages == 0 {
			b.WriteString(helpText)
			return b.String()
		}
		if m.summary != "" {
			b.WriteString(titleStyle.Render("Summary") + "\n" + m.summary + "\n\n")
		}
		b.WriteString(dimStyle.Render("Type a question and press Enter."))
		return b.String()
	}

	b.WriteString(titleStyle.Render("Q: "+m.answer.Question) + "\n\n")
	b.WriteString(m.answer.Text + "\n")
	if len(m.answer.Hits) == 0 {
		return b.String()
	}
	b.WriteString("\n" + m.renderSource())
	return b.String()
}

func (m Model) renderSource() string {
	hits := m.answer.Hits
	h := hits[m.cursor]
	title := fmt.Sprintf("Source %d: %s — score %.3f", m.cursor+1, h.Metadata.Document, h.Score)
	nav := dimStyle.Render(fmt.Sprintf("(%d/%d, Up/Down to browse)", m.cursor+1, len(hits)))
	preview := domain.Preview(h.Metadata.Text, m.previewLen)
	return titleStyle.Render(title) + " " + nav + "\n" + highlightBestSentence(preview, m.answer.Question)
}

// highlightBestSentence renders the sentence sharing the most terms with
// query in the highlight style.
func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := textutil.Sentences(text)
	qTerms := textutil.TermSet(query)
	if len(qTerms) == 0 || len(sentences) == 0 {
		return text
	}
	bestIdx, bestScore := -1, 0
	for i, s := range sentences {
		if score := textutil.Overlap(qTerms, s); score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	if bestIdx < 0 {
		return strings.Join(sentences, " ")
	}
	sentences[bestIdx] = highlightStyle.Render(sentences[bestIdx])
	return strings.Join(sentences, " ")
}

func newDocumentsTable() table.Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Name", Width: 32},
			{Title: "Type", Width: 6},
			{Title: "Characters", Width: 12},
			{Title: "Chunks", Width: 8},
			{Title: "Uploaded", Width: 16},
		}),
		table.WithHeight(8),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).Bold(true)
	s.Selected = s.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(s)
	return t
}

func documentRows(docs []domain.DocumentRecord) []table.Row {
	rows := make([]table.Row, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, table.Row{
			d.Name,
			d.Type,
			humanize.Comma(int64(d.Length)),
			fmt.Sprint(d.Chunks),
			humanize.Time(d.UploadedAt),
		})
	}
	return rows
}
