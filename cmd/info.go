package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var infoFormat string

var infoCmd = &cobra.Command{
	Use:   "info <package>",
	Short: "Show details of one package",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, _, err := loadCatalog()
		if err != nil {
			return err
		}

		pkg, ok := cat.Get(args[0])
		if !ok {
			return fmt.Errorf("package %q not found in catalog", args[0])
		}

		if infoFormat == "json" {
			data, err := json.MarshalIndent(pkg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("Package:        %s\n", pkg.Name)
		fmt.Printf("Version:        %s\n", pkg.Version)
		fmt.Printf("Architecture:   %s\n", pkg.Architecture)
		fmt.Printf("Section:        %s\n", pkg.Section)
		fmt.Printf("Source:         %s\n", pkg.Source)
		fmt.Printf("Size:           %d\n", pkg.Size)
		fmt.Printf("Installed-Size: %d\n", pkg.InstalledSize)
		fmt.Printf("Filename:       %s\n", pkg.Filename)
		if pkg.License != "" {
			fmt.Printf("License:        %s\n", pkg.License)
		}
		if pkg.URL != "" {
			fmt.Printf("URL:            %s\n", pkg.URL)
		}
		if len(pkg.Depends) > 0 {
			fmt.Printf("Depends:        %s\n", strings.Join(pkg.Depends, ", "))
		}
		if pkg.Description != "" {
			fmt.Printf("Description:    %s\n", pkg.Description)
		}
		return nil
	},
}

func init() {
	infoCmd.Flags().StringVar(&infoFormat, "format", "text", "output format (text, json)")
	rootCmd.AddCommand(infoCmd)
}
