package tui

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"thai-legal-rag/internal/domain"
	"thai-legal-rag/internal/generation"
	"thai-legal-rag/internal/thaitoken"
)

// LawPort is the TUI-facing subset of the query service.
type LawPort interface {
	Ask(ctx context.Context, question string) (generation.Answer, []domain.SearchResult, error)
}

// answerMsg carries the result of an Ask issued from Update.
type answerMsg struct {
	query   string
	answer  generation.Answer
	results []domain.SearchResult
	err     error
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	ctx       context.Context
	service   LawPort
	input     textinput.Model
	viewport  viewport.Model
	answer    generation.Answer
	results   []domain.SearchResult
	summary   string
	status    string
	cursor    int
	ready     bool
	busy      bool
	lastQuery string
}

// New creates a new TUI model instance. summary is shown under the title.
func New(ctx context.Context, service LawPort, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "พิมพ์คำถามแล้วกด Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{ctx: ctx, service: service, input: ti, viewport: vp, summary: summary, status: "พร้อมใช้งาน", cursor: -1}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) ask(q string) tea.Cmd {
	return func() tea.Msg {
		ans, res, err := m.service.Ask(m.ctx, q)
		return answerMsg{query: q, answer: ans, results: res, err: err}
	}
}

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header+summary, status, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.render())
		return m, nil
	case answerMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			m.results = nil
			m.answer = generation.Answer{}
		} else {
			m.status = fmt.Sprintf("ผลลัพธ์สำหรับ %q (%d ชิ้น)", msg.query, len(msg.results))
			m.answer = msg.answer
			m.results = msg.results
			m.cursor = -1
			m.lastQuery = msg.query
		}
		m.viewport.SetContent(m.render())
		m.viewport.GotoTop()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.busy {
				m.busy = true
				m.status = "กำลังค้นหา..."
				return m, m.ask(q)
			}
		case "down", "tab":
			// cursor -1 is the answer page; 0..n-1 are the retrieved chunks.
			if len(m.results) > 0 {
				m.cursor++
				if m.cursor >= len(m.results) {
					m.cursor = -1
				}
				m.viewport.SetContent(m.render())
				return m, nil
			}
		case "up", "shift+tab":
			if len(m.results) > 0 {
				m.cursor--
				if m.cursor < -1 {
					m.cursor = len(m.results) - 1
				}
				m.viewport.SetContent(m.render())
				return m, nil
			}
		case "pgdown", "pgup":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and current page.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Thai Law Search")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) render() string {
	if len(m.results) == 0 && m.answer.Text == "" {
		return "ยังไม่มีผลลัพธ์"
	}
	if m.cursor < 0 {
		return renderAnswer(m.answer, m.viewport.Width)
	}
	r := m.results[m.cursor]
	title := fmt.Sprintf("Chunk %d/%d  score=%.3f  source=%s", m.cursor+1, len(m.results), r.Score, r.Source)
	cite := citeStyle.Render(citation(r.Chunk))
	return title + "\n" + cite + "\n\n" + highlightBestSentence(r.Chunk.Text, m.lastQuery)
}

func renderAnswer(a generation.Answer, width int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Width(max(20, width-4)).Render(a.Text))
	if len(a.Sources) > 0 {
		b.WriteString("\n\n")
		b.WriteString(citeStyle.Render("แหล่งอ้างอิง"))
		for i, s := range a.Sources {
			fmt.Fprintf(&b, "\n[%d] %s", i+1, s.Name)
			if s.URL != "" {
				b.WriteString("  " + s.URL)
			}
		}
	}
	if a.Model != "" {
		b.WriteString("\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("model: "+a.Model))
	}
	return b.String()
}

// citation names the law and section a chunk came from.
func citation(c domain.Chunk) string {
	md := c.Metadata
	name := md.LawShortName
	if name == "" {
		name = md.LawName
	}
	if name == "" {
		name = md.SourceName
	}
	switch {
	case md.Section != "":
		return fmt.Sprintf("%s มาตรา/ข้อ %s วรรค %d/%d", name, md.Section, md.Paragraph, md.TotalParagraphs)
	case md.FirstSection != "" && md.FirstSection != md.LastSection:
		return fmt.Sprintf("%s มาตรา/ข้อ %s-%s", name, md.FirstSection, md.LastSection)
	case md.FirstSection != "":
		return fmt.Sprintf("%s มาตรา/ข้อ %s", name, md.FirstSection)
	case md.Heading != "":
		return name + " | " + md.Heading
	}
	return name
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	citeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	lineSplit      = regexp.MustCompile(`\n+`)
)

// highlightBestSentence marks the line sharing most terms with the query.
func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	lines := lineSplit.Split(strings.TrimSpace(text), -1)
	qTerms := thaitoken.TermSet(query)
	if len(qTerms) == 0 {
		return strings.Join(lines, "\n")
	}
	bestIdx, bestScore := 0, -1
	for i, l := range lines {
		if score := termOverlap(qTerms, l); score > bestScore {
			bestScore, bestIdx = score, i
		}
	}
	lines[bestIdx] = highlightStyle.Render(lines[bestIdx])
	return strings.Join(lines, "\n")
}

func termOverlap(query map[string]struct{}, line string) int {
	score := 0
	for t := range thaitoken.TermSet(line) {
		if _, ok := query[t]; ok {
			score++
		}
	}
	return score
}
