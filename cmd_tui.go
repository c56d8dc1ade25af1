package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"healthpredict/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Fill in the health form in the terminal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// stderr logging would tear the alternate screen.
		logger = zap.NewNop()

		dispatcher, status, err := loadModels(cfg.Models)
		if err != nil {
			return err
		}
		defer dispatcher.Close()

		model := tui.New(cmd.Context(), dispatcher, status)
		_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
		return err
	},
}
