package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthpredict/form"
	"healthpredict/ml"
)

const sleepTree = `{
  "classes": ["Poor", "Good"],
  "nodes": [
    {"feature_idx": 2, "threshold": 6, "left_child": 1, "right_child": 2, "class_label": 0, "is_leaf": false},
    {"feature_idx": -1, "threshold": 0, "left_child": -1, "right_child": -1, "class_label": 0, "is_leaf": true},
    {"feature_idx": -1, "threshold": 0, "left_child": -1, "right_child": -1, "class_label": 1, "is_leaf": true}
  ]
}`

const stressTree = `[
  {"feature_idx": 1, "threshold": 300, "left_child": 1, "right_child": 2, "class_label": 0, "is_leaf": false},
  {"feature_idx": -1, "threshold": 0, "left_child": -1, "right_child": -1, "class_label": 0, "is_leaf": true},
  {"feature_idx": -1, "threshold": 0, "left_child": -1, "right_child": -1, "class_label": 2, "is_leaf": true}
]`

// writeWorkspace lays out two artifacts and a config pointing at them.
// An empty payload leaves that artifact missing.
func writeWorkspace(t *testing.T, sleep, stress string) string {
	t.Helper()
	dir := t.TempDir()
	sleepPath := filepath.Join(dir, "dt1.json")
	stressPath := filepath.Join(dir, "dt2.json")
	if sleep != "" {
		require.NoError(t, os.WriteFile(sleepPath, []byte(sleep), 0o600))
	}
	if stress != "" {
		require.NoError(t, os.WriteFile(stressPath, []byte(stress), 0o600))
	}

	configPath := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`log:
  level: error
models:
  sleep:
    path: %q
  stress:
    path: %q
`, sleepPath, stressPath)
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))
	return configPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestFlagName(t *testing.T) {
	names := make([]string, 0, len(form.Fields))
	for _, field := range form.Fields {
		names = append(names, flagName(field))
	}
	assert.Equal(t, []string{"age", "caffeine-mg", "sleep-hours", "bmi", "heart-rate", "physical-activity-hours"}, names)
}

func TestPredictCommand(t *testing.T) {
	configPath := writeWorkspace(t, sleepTree, stressTree)

	out, err := execute(t, "--config", configPath, "predict", "--age", "150", "--sleep-hours", "8", "--caffeine-mg", "400")
	require.NoError(t, err, out)
	assert.Contains(t, out, form.MsgModelsLoaded)
	assert.Contains(t, out, "Good")
	assert.Contains(t, out, "2")
	assert.Contains(t, out, "120")
	assert.Contains(t, out, form.MsgCompleted)
}

func TestPredictCommandDegraded(t *testing.T) {
	configPath := writeWorkspace(t, sleepTree, "")

	out, err := execute(t, "--config", configPath, "predict", "--sleep-hours", "8")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ml.ErrArtifactsUnavailable))
	assert.Contains(t, out, form.MsgLoadFailed)
	assert.Contains(t, out, form.MsgUnavailable)
}

func TestValidateCommand(t *testing.T) {
	configPath := writeWorkspace(t, sleepTree, stressTree)

	out, err := execute(t, "--config", configPath, "validate")
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ sleep quality")
	assert.Contains(t, out, "✓ stress level")
}

func TestValidateCommandReportsEachFailure(t *testing.T) {
	configPath := writeWorkspace(t, `{"nodes": []}`, stressTree)

	out, err := execute(t, "--config", configPath, "validate")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ml.ErrArtifactLoad))
	assert.Contains(t, out, "✗ sleep quality")
	assert.Contains(t, out, "✓ stress level")
}
