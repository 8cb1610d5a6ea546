package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fwselect/fwselect-cli/internal/i18n"
	"github.com/fwselect/fwselect-cli/pkg/profile"
)

var (
	exportOutput      string
	exportFormat      string
	exportNoModules   bool
	exportNoPackages  bool
	exportNoUCIScript bool
)

var exportCmd = &cobra.Command{
	Use:   "export [name]",
	Short: "Export a build profile document",
	Long: `Export serializes a saved profile to JSON or YAML for sharing. Sections
can be stripped selectively so a share does not carry the module sources,
the package lists, or the first-boot script.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := profileStore()

		p, err := currentProfile(store)
		if len(args) > 0 {
			p, err = store.Find(args[0])
		}
		if err != nil {
			return err
		}

		data, err := profile.Export(p, profile.ExportOptions{
			Format:           exportFormat,
			StripModules:     exportNoModules,
			StripPackages:    exportNoPackages,
			StripUCIDefaults: exportNoUCIScript,
		})
		if err != nil {
			return err
		}

		if exportOutput == "" || exportOutput == "-" {
			fmt.Println(string(data))
			return nil
		}
		if err := os.WriteFile(exportOutput, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", exportOutput, err)
		}
		fmt.Println(i18n.T("export_done", map[string]interface{}{
			"Name": p.Name,
			"Path": exportOutput,
		}))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format (json, yaml)")
	exportCmd.Flags().BoolVar(&exportNoModules, "no-modules", false, "strip module sources and selections")
	exportCmd.Flags().BoolVar(&exportNoPackages, "no-packages", false, "strip the package lists")
	exportCmd.Flags().BoolVar(&exportNoUCIScript, "no-defaults", false, "strip the first-boot script")
	rootCmd.AddCommand(exportCmd)
}
