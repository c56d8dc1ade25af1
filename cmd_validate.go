package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"healthpredict/config"
	"healthpredict/ml"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that both configured model artifacts load",
	Long: `Loads each configured artifact on its own and reports the result.
Exits non-zero if either artifact fails, since serve would then run in
degraded mode.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return validateArtifacts(cmd, cfg.Models)
	},
}

type describer interface {
	Describe() string
}

func validateArtifacts(cmd *cobra.Command, models config.ModelsConfig) error {
	out := cmd.OutOrStdout()
	failed := 0
	for _, entry := range []struct {
		name string
		spec ml.ArtifactSpec
	}{
		{"sleep quality", models.SleepSpec()},
		{"stress level", models.StressSpec()},
	} {
		artifact, err := ml.LoadArtifact(entry.spec.Kind, entry.spec.Path)
		if err != nil {
			failed++
			fmt.Fprintf(out, "✗ %s (%s): %v\n", entry.name, entry.spec.Path, err)
			continue
		}
		detail := entry.spec.Kind
		if d, ok := artifact.(describer); ok {
			detail = d.Describe()
		}
		fmt.Fprintf(out, "✓ %s (%s): %s\n", entry.name, entry.spec.Path, detail)
		if closer, ok := artifact.(io.Closer); ok {
			closer.Close()
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of 2 artifacts failed to load", ml.ErrArtifactLoad, failed)
	}
	return nil
}
