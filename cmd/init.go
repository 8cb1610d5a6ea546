package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fwselect/fwselect-cli/internal/config"
)

var initOutput string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file template",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(initOutput); err == nil {
			return fmt.Errorf("%s already exists", initOutput)
		}
		if err := config.SaveTemplate(initOutput); err != nil {
			return fmt.Errorf("failed to write config template: %w", err)
		}
		fmt.Printf("Wrote %s\n", initOutput)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVarP(&initOutput, "output", "o", "fwselect.yaml", "output path")
	rootCmd.AddCommand(initCmd)
}
