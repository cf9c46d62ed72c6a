// Package tui is the respondent's terminal form for the active
// evaluation. It renders a services.SubmissionFlow and routes every input
// through the flow's Intercept boundary, so once the evaluation is
// submitted nothing but closing the program has an effect.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/AchilleasB/evaluation-client/internal/core/domain"
	"github.com/AchilleasB/evaluation-client/internal/core/services"
)

// LeaveWarning is shown on the first quit request while answers would be
// lost.
const LeaveWarning = "Your answers have not been submitted. Press ctrl+c again to leave."

type loadedMsg struct{ err error }

type submittedMsg struct{ err error }

// Model is the bubbletea model of the evaluation form. Field focus runs
// name, category, one row per prompt, feedback kind, feedback text.
type Model struct {
	ctx    context.Context
	flow   *services.SubmissionFlow
	keys   KeyMap
	styles styles
	help   help.Model
	logger *zap.Logger

	view     services.SubmissionView
	focus    int
	name     textinput.Model
	feedback textarea.Model

	leaveArmed bool
	notice     string
}

func NewModel(ctx context.Context, flow *services.SubmissionFlow, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	name := textinput.New()
	name.Placeholder = "Name (optional)"
	name.CharLimit = 120

	feedback := textarea.New()
	feedback.Placeholder = "Tell us about your experience"
	feedback.ShowLineNumbers = false
	feedback.SetHeight(4)
	feedback.SetWidth(60)

	return Model{
		ctx:      ctx,
		flow:     flow,
		keys:     DefaultKeyMap,
		styles:   newStyles(DefaultTheme),
		help:     help.New(),
		logger:   logger,
		view:     flow.Snapshot(),
		name:     name,
		feedback: feedback,
	}
}

func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) load() tea.Cmd {
	ctx, flow := m.ctx, m.flow
	return func() tea.Msg {
		return loadedMsg{err: flow.Load(ctx)}
	}
}

func (m Model) send(attempt *services.SubmitAttempt) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return submittedMsg{err: attempt.Send(ctx)}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.feedback.SetWidth(min(max(msg.Width-8, 20), 80))
		return m, nil

	case loadedMsg:
		m.view = m.flow.Snapshot()
		if msg.err != nil {
			m.logger.Debug("evaluation load failed", zap.Error(msg.err))
		}
		if m.view.State == services.StateReady {
			m.focus = 0
			cmd := m.focusField()
			return m, cmd
		}
		return m, nil

	case submittedMsg:
		m.view = m.flow.Snapshot()
		if m.view.State == services.StateLocked {
			m.name.Blur()
			m.feedback.Blur()
		}
		return m, nil

	case tea.MouseMsg:
		// Pointer input has no targets on this form; it is only consumed.
		m.flow.Intercept(services.Input{Kind: services.InputPointer, Name: msg.String()})
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m.requestQuit()
	}

	kind := services.InputKey
	if key.Matches(msg, m.keys.Back) {
		kind = services.InputNavigate
	}
	if m.flow.Intercept(services.Input{Kind: kind, Name: msg.String()}) {
		return m, nil
	}
	m.leaveArmed = false
	m.notice = ""

	if kind == services.InputNavigate {
		return m.requestQuit()
	}

	switch m.view.State {
	case services.StateError:
		if key.Matches(msg, m.keys.Retry) {
			m.view.State = services.StateLoading
			return m, m.load()
		}
		return m, nil
	case services.StateReady:
		return m.handleFormKey(msg)
	}
	return m, nil
}

// requestQuit leaves at once unless unsent answers would be lost, in which
// case the first request only warns.
func (m Model) requestQuit() (tea.Model, tea.Cmd) {
	if m.leaveArmed || !m.hasUnsentAnswers() {
		return m, tea.Quit
	}
	m.leaveArmed = true
	m.notice = LeaveWarning
	return m, nil
}

func (m Model) hasUnsentAnswers() bool {
	view := m.flow.Snapshot()
	if view.State == services.StateSubmitting {
		return true
	}
	if view.State != services.StateReady {
		return false
	}
	draft := view.Draft
	if draft.Category != "" || draft.FeedbackKind != "" || strings.TrimSpace(draft.FeedbackText) != "" || strings.TrimSpace(draft.Name) != "" {
		return true
	}
	for _, rating := range draft.Ratings {
		if rating != 0 {
			return true
		}
	}
	return false
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		attempt, err := m.flow.Prepare()
		m.view = m.flow.Snapshot()
		if err != nil {
			m.focusError(err)
			return m, nil
		}
		return m, m.send(attempt)

	case key.Matches(msg, m.keys.Next):
		return m.moveFocus(1)

	case key.Matches(msg, m.keys.Prev):
		return m.moveFocus(-1)
	}

	var cmd tea.Cmd
	switch field, prompt := m.field(); field {
	case fieldName:
		m.name, cmd = m.name.Update(msg)
		_ = m.flow.SetName(m.name.Value())
	case fieldFeedbackText:
		m.feedback, cmd = m.feedback.Update(msg)
		_ = m.flow.SetFeedbackText(m.feedback.Value())
	case fieldCategory:
		if next, ok := m.cycle(msg, domain.ClientCategories, m.view.Draft.Category); ok {
			_ = m.flow.SetCategory(next)
		}
	case fieldFeedbackKind:
		if next, ok := m.cycle(msg, domain.FeedbackKinds, m.view.Draft.FeedbackKind); ok {
			_ = m.flow.SetFeedbackKind(next)
		}
	case fieldRating:
		m.rate(msg, prompt)
	}
	m.view = m.flow.Snapshot()
	return m, cmd
}

func (m Model) rate(msg tea.KeyMsg, prompt int) {
	current := m.view.Highlight[prompt]
	switch {
	case key.Matches(msg, m.keys.Right):
		_ = m.flow.Hover(prompt, min(current+1, domain.MaxRating))
	case key.Matches(msg, m.keys.Left):
		if current <= domain.MinRating {
			_ = m.flow.Unhover(prompt)
			return
		}
		_ = m.flow.Hover(prompt, current-1)
	case key.Matches(msg, m.keys.Commit):
		if current >= domain.MinRating {
			_ = m.flow.Rate(prompt, current)
		}
	default:
		if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '0'+domain.MaxRating {
			_ = m.flow.Rate(prompt, int(s[0]-'0'))
		}
	}
}

func (m Model) cycle(msg tea.KeyMsg, options []string, current string) (string, bool) {
	index := -1
	for i, option := range options {
		if option == current {
			index = i
		}
	}
	switch {
	case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Commit):
		return options[(index+1)%len(options)], true
	case key.Matches(msg, m.keys.Left):
		if index <= 0 {
			return options[len(options)-1], true
		}
		return options[index-1], true
	}
	return "", false
}

type fieldKind int

const (
	fieldName fieldKind = iota
	fieldCategory
	fieldRating
	fieldFeedbackKind
	fieldFeedbackText
)

func (m Model) fieldCount() int {
	return len(m.view.Prompts) + 4
}

// field maps the focus index to a field and, for rating rows, the prompt.
func (m Model) field() (fieldKind, int) {
	prompts := len(m.view.Prompts)
	switch {
	case m.focus == 0:
		return fieldName, 0
	case m.focus == 1:
		return fieldCategory, 0
	case m.focus < 2+prompts:
		return fieldRating, m.focus - 2
	case m.focus == 2+prompts:
		return fieldFeedbackKind, 0
	}
	return fieldFeedbackText, 0
}

func (m Model) moveFocus(delta int) (tea.Model, tea.Cmd) {
	if field, prompt := m.field(); field == fieldRating {
		_ = m.flow.Unhover(prompt)
	}
	count := m.fieldCount()
	m.focus = ((m.focus+delta)%count + count) % count
	m.view = m.flow.Snapshot()
	cmd := m.focusField()
	return m, cmd
}

func (m *Model) focusField() tea.Cmd {
	m.name.Blur()
	m.feedback.Blur()
	switch field, _ := m.field(); field {
	case fieldName:
		return m.name.Focus()
	case fieldFeedbackText:
		return m.feedback.Focus()
	}
	return nil
}

// focusError moves focus to the field a validation error names.
func (m *Model) focusError(err error) {
	var validationErr *domain.ValidationError
	if !errors.As(err, &validationErr) {
		return
	}
	prompts := len(m.view.Prompts)
	switch validationErr.Field {
	case "client_category":
		m.focus = 1
	case "ratings":
		m.focus = 2
		for i, rating := range m.view.Draft.Ratings {
			if rating == 0 {
				m.focus = 2 + i
				break
			}
		}
	case "feedback_type":
		m.focus = 2 + prompts
	case "feedback_message":
		m.focus = 3 + prompts
	}
	m.focusField()
}

func (m Model) View() string {
	var b strings.Builder

	switch m.view.State {
	case services.StateLoading:
		b.WriteString(m.styles.faint.Render("Loading evaluation..."))
	case services.StateNoActive:
		b.WriteString(m.styles.label.Render(m.view.Message))
	case services.StateError:
		b.WriteString(m.styles.err.Render(m.view.Message))
		b.WriteString("\n")
		b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.Retry, m.keys.Quit}))
	case services.StateLocked:
		b.WriteString(m.styles.success.Render(m.view.Message))
	default:
		m.renderForm(&b)
	}

	if m.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(m.styles.err.Render(m.notice))
	}
	return m.styles.panel.Render(b.String()) + "\n"
}

func (m Model) renderForm(b *strings.Builder) {
	b.WriteString(m.styles.title.Render(m.view.ServiceName))
	b.WriteString("\n\n")

	b.WriteString(m.row(0, "Name", m.name.View()))
	b.WriteString(m.row(1, "Client category", m.choices(domain.ClientCategories, m.view.Draft.Category)))

	for i, prompt := range m.view.Prompts {
		b.WriteString(m.row(2+i, fmt.Sprintf("%d. %s", i+1, prompt), m.stars(m.view.Highlight[i])))
	}

	prompts := len(m.view.Prompts)
	b.WriteString(m.row(2+prompts, "Feedback type", m.choices(domain.FeedbackKinds, m.view.Draft.FeedbackKind)))
	b.WriteString(m.row(3+prompts, "Feedback", "\n"+m.feedback.View()))

	if m.view.FieldError != nil {
		b.WriteString("\n")
		b.WriteString(m.styles.err.Render(m.view.FieldError.Message))
	} else if m.view.Message != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.err.Render(m.view.Message))
	}
	if m.view.State == services.StateSubmitting {
		b.WriteString("\n")
		b.WriteString(m.styles.faint.Render("Submitting..."))
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(m.keys.formHelp()))
}

func (m Model) row(index int, label, value string) string {
	marker, style := "  ", m.styles.label
	if index == m.focus {
		marker, style = "> ", m.styles.focused
	}
	return marker + style.Render(label) + "  " + value + "\n"
}

func (m Model) choices(options []string, selected string) string {
	parts := make([]string, 0, len(options))
	for _, option := range options {
		if option == selected {
			parts = append(parts, m.styles.selected.Render(option))
			continue
		}
		parts = append(parts, m.styles.faint.Render(option))
	}
	return strings.Join(parts, "  ")
}

func (m Model) stars(n int) string {
	return m.styles.star.Render(strings.Repeat("★", n)) +
		m.styles.faint.Render(strings.Repeat("☆", domain.MaxRating-n))
}

// Run shows the form until the respondent quits.
func Run(ctx context.Context, flow *services.SubmissionFlow, logger *zap.Logger) error {
	program := tea.NewProgram(NewModel(ctx, flow, logger),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := program.Run()
	return err
}
