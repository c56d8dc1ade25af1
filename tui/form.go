// Package tui is the terminal rendition of the health form.
package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"healthpredict/form"
	"healthpredict/ml"
	"healthpredict/monitoring"
)

// predictionMsg carries a finished prediction back into Update.
type predictionMsg struct {
	vector     ml.FeatureVector
	prediction ml.Prediction
	err        error
}

// Model is the bubbletea model of the form: one text input per field,
// a Predict action on enter, and the result below.
type Model struct {
	ctx        context.Context
	dispatcher *ml.Dispatcher
	status     monitoring.ModelStatus

	inputs []textinput.Model
	focus  int

	result  *ml.Prediction
	message string
	err     string
	busy    bool

	styles Styles
}

func New(ctx context.Context, dispatcher *ml.Dispatcher, status monitoring.ModelStatus) Model {
	defaults := form.Values(form.Defaults())
	inputs := make([]textinput.Model, len(form.Fields))
	for i, field := range form.Fields {
		ti := textinput.New()
		ti.Placeholder = defaults[field.Name]
		ti.SetValue(defaults[field.Name])
		ti.CharLimit = 16
		ti.Width = 16
		inputs[i] = ti
	}
	inputs[0].Focus()

	return Model{
		ctx:        ctx,
		dispatcher: dispatcher,
		status:     status,
		inputs:     inputs,
		styles:     DefaultStyles(),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyTab, tea.KeyDown:
			return m, m.setFocus(m.focus + 1)
		case tea.KeyShiftTab, tea.KeyUp:
			return m, m.setFocus(m.focus - 1)
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			m.busy = true
			return m, m.predict(m.Vector())
		}

	case predictionMsg:
		m.busy = false
		m.applyClamped(msg.vector)
		m.result, m.message, m.err = nil, "", ""
		switch {
		case errors.Is(msg.err, ml.ErrArtifactsUnavailable):
			m.err = form.MsgUnavailable
		case msg.err != nil:
			m.err = "❌ Prediction failed: " + msg.err.Error()
		default:
			prediction := msg.prediction
			m.result = &prediction
			m.message = form.MsgCompleted
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// setFocus moves focus to index i, wrapping around the field list.
func (m *Model) setFocus(i int) tea.Cmd {
	n := len(m.inputs)
	m.focus = ((i % n) + n) % n
	var cmd tea.Cmd
	for j := range m.inputs {
		if j == m.focus {
			cmd = m.inputs[j].Focus()
			continue
		}
		m.inputs[j].Blur()
	}
	return cmd
}

// Vector reads the inputs through the normalizer and the field constraints.
func (m Model) Vector() ml.FeatureVector {
	raw := make(ml.RawInput, len(m.inputs))
	for i, field := range form.Fields {
		raw[field.Name] = m.inputs[i].Value()
	}
	return form.Clamp(ml.Normalize(raw))
}

func (m *Model) applyClamped(vector ml.FeatureVector) {
	values := form.Values(vector)
	for i, field := range form.Fields {
		m.inputs[i].SetValue(values[field.Name])
	}
}

func (m Model) predict(vector ml.FeatureVector) tea.Cmd {
	return func() tea.Msg {
		prediction, err := m.dispatcher.PredictAll(m.ctx, vector)
		return predictionMsg{vector: vector, prediction: prediction, err: err}
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(form.Title))
	b.WriteString("\n")
	b.WriteString(m.styles.Intro.Render(form.Intro))
	b.WriteString("\n")

	for i, field := range form.Fields {
		label := m.styles.Label
		if i == m.focus {
			label = m.styles.Focused
		}
		b.WriteString(label.Render(field.Label))
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.result != nil {
		b.WriteString(m.styles.RenderResult(
			form.SleepLabel, m.result.Sleep.String(),
			form.StressLabel, m.result.Stress.String(),
		))
		b.WriteString("\n")
	}
	if m.message != "" {
		b.WriteString(m.styles.Success.Render(m.message))
		b.WriteString("\n")
	}
	if m.err != "" {
		b.WriteString(m.styles.Error.Render(m.err))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Muted.Render("tab/shift+tab: move • enter: predict • esc: quit"))

	return lipgloss.JoinHorizontal(lipgloss.Top, b.String(), m.sidebar())
}

func (m Model) sidebar() string {
	status := m.styles.Success
	if !m.status.Loaded {
		status = m.styles.Error
	}
	lines := []string{status.Render(m.status.Message), ""}
	lines = append(lines, form.About...)
	return m.styles.Sidebar.Render(strings.Join(lines, "\n"))
}
