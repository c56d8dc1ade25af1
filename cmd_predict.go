package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"healthpredict/form"
	"healthpredict/ml"
	"healthpredict/tui"
)

var predictValues = make(map[string]*float64, len(form.Fields))

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Run one prediction from command-line flags",
	Long: `Runs a single prediction and prints both results.

Unset flags take the field minimum, like a fresh form.

Example:
  healthpredict predict --age 37 --caffeine-mg 200 --sleep-hours 6.5 --bmi 24.1 --heart-rate 72 --physical-activity-hours 3`,
	Args: cobra.NoArgs,
	RunE: runPredict,
}

func init() {
	for _, field := range form.Fields {
		predictValues[field.Name] = predictCmd.Flags().Float64(flagName(field), field.Min, field.Label)
	}
}

// flagName turns a feature name into its flag, e.g. Caffeine_mg to caffeine-mg.
func flagName(field form.Field) string {
	name := []byte(field.Name)
	for i, c := range name {
		switch {
		case c == '_':
			name[i] = '-'
		case c >= 'A' && c <= 'Z':
			name[i] = c + ('a' - 'A')
		}
	}
	return string(name)
}

func runPredict(cmd *cobra.Command, args []string) error {
	raw := make(ml.RawInput, len(form.Fields))
	for _, field := range form.Fields {
		raw[field.Name] = *predictValues[field.Name]
	}
	vector := form.Clamp(ml.Normalize(raw))

	dispatcher, status, err := loadModels(cfg.Models)
	if err != nil {
		return err
	}
	defer dispatcher.Close()

	prediction, err := dispatcher.PredictAll(cmd.Context(), vector)
	return printPrediction(cmd.OutOrStdout(), status.Message, vector, prediction, err)
}

func printPrediction(w io.Writer, statusMessage string, vector ml.FeatureVector, prediction ml.Prediction, err error) error {
	styles := tui.DefaultStyles()
	fmt.Fprintln(w, styles.Muted.Render(statusMessage))

	values := form.Values(vector)
	rows := make([]string, 0, len(form.Fields))
	for _, field := range form.Fields {
		rows = append(rows, styles.Label.Render(field.Label)+values[field.Name])
	}
	fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, rows...))

	if errors.Is(err, ml.ErrArtifactsUnavailable) {
		fmt.Fprintln(w, styles.Error.Render(form.MsgUnavailable))
		return err
	}
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}

	fmt.Fprintln(w, styles.RenderResult(
		form.SleepLabel, prediction.Sleep.String(),
		form.StressLabel, prediction.Stress.String(),
	))
	fmt.Fprintln(w, styles.Success.Render(form.MsgCompleted))
	return nil
}
