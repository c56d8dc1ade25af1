package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthpredict/form"
	"healthpredict/ml"
	"healthpredict/monitoring"
)

func fixedArtifact(label ml.Label) ml.Artifact {
	return ml.ArtifactFunc(func(context.Context, []ml.FeatureVector) ([]ml.Label, error) {
		return []ml.Label{label}, nil
	})
}

func newModel(t *testing.T, artifacts *ml.Artifacts, loadErr error) Model {
	t.Helper()
	dispatcher, err := ml.NewDispatcher(artifacts, 0)
	require.NoError(t, err)
	return New(context.Background(), dispatcher, monitoring.NewModelStatus("dt1.json", "dt2.json", loadErr))
}

// submit presses enter and feeds the resulting prediction back in.
func submit(t *testing.T, m Model) Model {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	next, _ = next.Update(cmd())
	return next.(Model)
}

func TestDefaultsAreFieldMinimums(t *testing.T) {
	m := newModel(t, nil, ml.ErrArtifactLoad)
	assert.Equal(t, form.Defaults(), m.Vector())
	assert.Equal(t, "0", m.inputs[0].Value())
	assert.Equal(t, "0.00", m.inputs[2].Value())
}

func TestFocusWraps(t *testing.T) {
	m := newModel(t, nil, nil)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = next.(Model)
	assert.Equal(t, len(form.Fields)-1, m.focus)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	assert.Equal(t, 0, m.focus)
	assert.True(t, m.inputs[0].Focused())
	assert.False(t, m.inputs[len(form.Fields)-1].Focused())
}

func TestSubmitShowsPrediction(t *testing.T) {
	var seen ml.FeatureVector
	sleep := ml.ArtifactFunc(func(_ context.Context, rows []ml.FeatureVector) ([]ml.Label, error) {
		seen = rows[0]
		return []ml.Label{"Good"}, nil
	})
	m := newModel(t, &ml.Artifacts{Sleep: sleep, Stress: fixedArtifact("Low")}, nil)
	m.inputs[0].SetValue("130")
	m.inputs[3].SetValue("22.46")
	m.inputs[4].SetValue("abc")

	m = submit(t, m)

	assert.Equal(t, ml.FeatureVector{120, 0, 0, 22.46, 0, 0}, seen)
	require.NotNil(t, m.result)
	assert.Equal(t, ml.Prediction{Sleep: "Good", Stress: "Low"}, *m.result)
	assert.Equal(t, "120", m.inputs[0].Value())

	view := m.View()
	assert.Contains(t, view, "Good")
	assert.Contains(t, view, "Low")
	assert.Contains(t, view, form.MsgCompleted)
	assert.Contains(t, view, form.MsgModelsLoaded)
}

func TestSubmitUnavailable(t *testing.T) {
	m := newModel(t, nil, ml.ErrArtifactLoad)

	for i := 0; i < 2; i++ {
		m = submit(t, m)
		assert.Nil(t, m.result)
		assert.Equal(t, form.MsgUnavailable, m.err)
	}
	assert.Contains(t, m.View(), form.MsgLoadFailed)
}

func TestSubmitArtifactError(t *testing.T) {
	failing := ml.ArtifactFunc(func(context.Context, []ml.FeatureVector) ([]ml.Label, error) {
		return nil, errors.New("bad input")
	})
	m := newModel(t, &ml.Artifacts{Sleep: failing, Stress: fixedArtifact("Low")}, nil)

	m = submit(t, m)
	assert.Contains(t, m.err, "sleep quality: bad input")
	assert.Empty(t, m.message)
}

func TestEscQuits(t *testing.T) {
	m := newModel(t, nil, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
