package tui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lexrag/internal/chunker"
	"lexrag/internal/domain"
	"lexrag/internal/similarity"
)

// RAGPort is the TUI-facing subset of the RAG service.
type RAGPort interface {
	IngestDocuments(paths []string) (string, error)
	Query(query string, topK int) ([]domain.ScoredDocument, error)
}

// AlgorithmSetter is implemented by services whose ranking algorithm can be
// switched at runtime.
type AlgorithmSetter interface {
	SetAlgorithm(a similarity.Algorithm) error
}

// ResultLimit is the number of results requested per query.
const ResultLimit = 10

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	service   RAGPort
	input     textinput.Model
	viewport  viewport.Model
	results   []domain.ScoredDocument
	algorithm int
	summary   string
	status    string
	cursor    int
	ready     bool
	lastQuery string
}

// New creates a new TUI model instance. algorithm is the one the service is
// currently ranking with.
func New(service RAGPort, summary string, algorithm similarity.Algorithm) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type query and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	idx := 0
	for i, a := range similarity.Algorithms {
		if a == algorithm {
			idx = i
		}
	}
	return Model{service: service, input: ti, viewport: vp, summary: summary, algorithm: idx, status: "Loaded. Type to search."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around result and query boxes
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		totalHeaderLines := 2                                    // header + summary
		totalFooterLines := 1                                    // status
		reserved := totalHeaderLines + totalFooterLines + qh + 1 // 1 spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCurrentResult())
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				res, err := m.service.Query(q, ResultLimit)
				if err != nil {
					m.status = "Error: " + err.Error()
					m.results = nil
				} else {
					m.status = fmt.Sprintf("Results for %q", q)
					m.results = res
					m.cursor = 0
					m.lastQuery = q
				}
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "tab":
			setter, ok := m.service.(AlgorithmSetter)
			if !ok {
				break
			}
			next := (m.algorithm + 1) % len(similarity.Algorithms)
			if err := setter.SetAlgorithm(similarity.Algorithms[next]); err != nil {
				m.status = "Error: " + err.Error()
				return m, nil
			}
			m.algorithm = next
			m.status = fmt.Sprintf("Algorithm: %s", similarity.Algorithms[next])
			if m.lastQuery != "" {
				m.rerun()
			}
			return m, nil
		case "down":
			if len(m.results) > 0 {
				m.cursor = (m.cursor + 1) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		case "up":
			if len(m.results) > 0 {
				m.cursor = (m.cursor - 1 + len(m.results)) % len(m.results)
				m.viewport.SetContent(m.renderCurrentResult())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("lexrag search") +
		lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(fmt.Sprintf("  [%s, tab to switch]", similarity.Algorithms[m.algorithm]))
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderCurrentResult() string {
	if len(m.results) == 0 {
		return "No results yet."
	}
	r := m.results[m.cursor]
	title := fmt.Sprintf("Result %d/%d  score=%.3f", m.cursor+1, len(m.results), r.Score)
	if src := r.Document.Metadata[domain.MetadataSource]; src != "" {
		title += "  " + src
		if idx, ok := r.Document.Metadata[domain.MetadataChunkIndex]; ok {
			title += fmt.Sprintf(" #%s/%s", idx, r.Document.Metadata[domain.MetadataTotalChunks])
		}
	}
	body := highlightBestSentence(r.Document.Content, m.lastQuery)
	return title + "\n\n" + body
}

// rerun repeats the last query, e.g. after the algorithm changed.
func (m *Model) rerun() {
	res, err := m.service.Query(m.lastQuery, ResultLimit)
	if err != nil {
		m.status = "Error: " + err.Error()
		m.results = nil
	} else {
		m.results = res
		m.cursor = 0
	}
	m.viewport.SetContent(m.renderCurrentResult())
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	wordRe         = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
)

// highlightBestSentence renders text sentence by sentence and emphasises
// the one sharing the most words with query.
func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := chunker.Sentences(text)
	words := wordSet(query)
	if len(words) == 0 {
		return strings.Join(sentences, " ")
	}
	best, bestShared := 0, -1
	for i, sent := range sentences {
		shared := 0
		for w := range wordSet(sent) {
			if _, ok := words[w]; ok {
				shared++
			}
		}
		if shared > bestShared {
			best, bestShared = i, shared
		}
	}
	out := make([]string, len(sentences))
	copy(out, sentences)
	out[best] = highlightStyle.Render(out[best])
	return strings.Join(out, " ")
}

// wordSet lower-cases s and collects its words, ignoring punctuation.
func wordSet(s string) map[string]struct{} {
	words := wordRe.FindAllString(strings.ToLower(s), -1)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
