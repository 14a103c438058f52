package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docqa/internal/domain"
	"docqa/internal/service"
	"docqa/internal/textutil"
)

// ChatPort is the TUI-facing subset of the answer service.
type ChatPort interface {
	Respond(ctx context.Context, query string, history []domain.Message, segments []string) service.Reply
}

type exchange struct {
	question string
	reply    service.Reply
}

type replyMsg struct {
	question string
	reply    service.Reply
}

// Model is the Bubble Tea model for the chat client. It owns the session's
// segments and sends them with every question.
type Model struct {
	ctx       context.Context
	service   ChatPort
	document  string
	segments  []string
	summary   string
	input     textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	exchanges []exchange
	cursor    int
	busy      bool
	status    string
	ready     bool
}

// New creates a chat model over the segments of one document.
func New(ctx context.Context, svc ChatPort, document string, segments []string, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	return Model{
		ctx:      ctx,
		service:  svc,
		document: document,
		segments: segments,
		summary:  summary,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		status:   fmt.Sprintf("Loaded %d segments. Ask a question.", len(segments)),
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and reply events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header+summary, status, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.viewport.SetContent(m.renderCurrent())
		return m, nil

	case replyMsg:
		m.busy = false
		m.exchanges = append(m.exchanges, exchange{question: msg.question, reply: msg.reply})
		m.cursor = len(m.exchanges) - 1
		m.status = replyStatus(msg.reply)
		m.viewport.SetContent(m.renderCurrent())
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.busy {
				return m, nil
			}
			m.busy = true
			m.input.SetValue("")
			m.status = fmt.Sprintf("Thinking about %q", q)
			return m, tea.Batch(m.ask(q), m.spinner.Tick)
		case "up":
			if len(m.exchanges) > 0 {
				m.cursor = (m.cursor - 1 + len(m.exchanges)) % len(m.exchanges)
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		case "down":
			if len(m.exchanges) > 0 {
				m.cursor = (m.cursor + 1) % len(m.exchanges)
				m.viewport.SetContent(m.renderCurrent())
				return m, nil
			}
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// ask answers q off the update loop. History is not carried between questions.
func (m Model) ask(q string) tea.Cmd {
	ctx, svc, segments := m.ctx, m.service, m.segments
	return func() tea.Msg {
		return replyMsg{question: q, reply: svc.Respond(ctx, q, nil, segments)}
	}
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("docqa · " + m.document)
	summary := summaryStyle.Render(m.summary)
	results := resultBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	if m.busy {
		status = m.spinner.View() + " " + status
	}
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrent() string {
	if len(m.exchanges) == 0 {
		return "No questions yet."
	}
	ex := m.exchanges[m.cursor]
	var b strings.Builder
	fmt.Fprintf(&b, "Q%d/%d: %s\n\n", m.cursor+1, len(m.exchanges), ex.question)
	b.WriteString(answerStyle.Render(ex.reply.Text))
	sel := ex.reply.Selection
	if sel.Found() {
		fmt.Fprintf(&b, "\n\n%s\n", sourceStyle.Render(fmt.Sprintf("Source: segment %d  score=%.3f", sel.Index+1, sel.Score)))
		b.WriteString(highlightBestSentence(sel.Segment, ex.question))
	}
	return b.String()
}

func replyStatus(r service.Reply) string {
	sel := r.Selection
	switch {
	case sel.Found() && r.Fallback:
		return "Completion failed."
	case sel.Found():
		return fmt.Sprintf("Answered from segment %d (score %.3f).", sel.Index+1, sel.Score)
	default:
		return "No answer: " + sel.Reason.String()
	}
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	summaryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	answerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	sourceStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// highlightBestSentence marks the sentence of text sharing the most content
// words with query.
func highlightBestSentence(text, query string) string {
	sentences := textutil.Sentences(text)
	if len(sentences) == 0 {
		return text
	}
	idx := bestSentence(sentences, query)
	if idx < 0 {
		return strings.Join(sentences, " ")
	}
	sentences[idx] = highlightStyle.Render(sentences[idx])
	return strings.Join(sentences, " ")
}

// bestSentence returns the index of the sentence with the largest overlap,
// the first one on ties, or -1 when query has no content words.
func bestSentence(sentences []string, query string) int {
	q := map[string]struct{}{}
	for _, w := range textutil.ContentWords(query) {
		q[w] = struct{}{}
	}
	if len(q) == 0 {
		return -1
	}
	best, bestScore := 0, -1
	for i, s := range sentences {
		score := 0
		for w := range textutil.WordSet(s) {
			if _, ok := q[w]; ok {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}
