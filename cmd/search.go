package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fwselect/fwselect-cli/internal/i18n"
	"github.com/fwselect/fwselect-cli/pkg/catalog"
)

var (
	searchSection string
	searchSource  string
	searchArch    string
	searchLimit   int
	searchFormat  string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the package catalog",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) > 0 {
			query = args[0]
		}

		cat, _, err := loadCatalog()
		if err != nil {
			return err
		}

		results := cat.Search(catalog.Filter{
			Query:        query,
			Section:      searchSection,
			Architecture: searchArch,
			Source:       searchSource,
		})
		if searchLimit > 0 && len(results) > searchLimit {
			results = results[:searchLimit]
		}

		if len(results) == 0 {
			fmt.Println(i18n.T("search_no_results", map[string]interface{}{"Query": query}))
			return nil
		}

		if searchFormat == "json" {
			data, err := json.MarshalIndent(results, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tVERSION\tSECTION\tSOURCE\tDESCRIPTION")
		for _, pkg := range results {
			desc := pkg.Description
			if len(desc) > 60 {
				desc = desc[:57] + "..."
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", pkg.Name, pkg.Version, pkg.Section, pkg.Source, desc)
		}
		return w.Flush()
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchSection, "section", "", "filter by section")
	searchCmd.Flags().StringVar(&searchSource, "source", "", "filter by feed source")
	searchCmd.Flags().StringVar(&searchArch, "arch", "", "filter by architecture")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "limit number of results")
	searchCmd.Flags().StringVar(&searchFormat, "format", "table", "output format (table, json)")
	rootCmd.AddCommand(searchCmd)
}
