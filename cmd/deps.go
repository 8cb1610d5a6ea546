package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var depsReverse bool

var depsCmd = &cobra.Command{
	Use:   "deps <package>",
	Short: "Show the dependency closure of a package",
	Long: `Deps prints the transitive dependency closure of a package in discovery
order. With --reverse it instead lists the packages that depend on it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, _, err := loadCatalog()
		if err != nil {
			return err
		}
		name := args[0]

		if depsReverse {
			dependents := cat.Dependents(name)
			if len(dependents) == 0 {
				fmt.Printf("Nothing in the catalog depends on %s\n", name)
				return nil
			}
			for _, dep := range dependents {
				fmt.Println(dep)
			}
			return nil
		}

		closure := cat.DependencyClosure(name)
		// First entry is the package itself.
		for _, dep := range closure[1:] {
			fmt.Println(dep)
		}
		return nil
	},
}

func init() {
	depsCmd.Flags().BoolVar(&depsReverse, "reverse", false, "list dependent packages instead")
	rootCmd.AddCommand(depsCmd)
}
