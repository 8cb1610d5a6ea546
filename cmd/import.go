package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fwselect/fwselect-cli/internal/i18n"
	"github.com/fwselect/fwselect-cli/pkg/profile"
)

var (
	importFormat string
	importUse    bool
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a build profile document",
	Long: `Import parses a shared profile document (JSON or YAML), validates its
structure, and saves it. Validation reports every problem at once; a schema
version mismatch is only a warning.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}

		result, err := profile.Import(content, importFormat)
		if err != nil {
			return err
		}
		for _, warning := range result.Warnings {
			fmt.Println(i18n.T("import_warning", map[string]interface{}{"Message": warning}))
		}

		store := profileStore()
		if err := store.Save(result.Profile); err != nil {
			return err
		}
		if importUse {
			if err := store.SetLastUsed(result.Profile.ID); err != nil {
				return err
			}
		}

		fmt.Println(i18n.T("import_done", map[string]interface{}{"Name": result.Profile.Name}))
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importFormat, "format", "", "force input format (json, yaml)")
	importCmd.Flags().BoolVar(&importUse, "use", false, "select the imported profile")
	rootCmd.AddCommand(importCmd)
}
