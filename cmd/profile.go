package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fwselect/fwselect-cli/internal/i18n"
	"github.com/fwselect/fwselect-cli/pkg/models"
)

var (
	profileName        string
	profileModel       string
	profileTarget      string
	profileDevice      string
	profileVersion     string
	profileDescription string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage saved build profiles",
}

var profileNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a build profile for a device",
	RunE: func(cmd *cobra.Command, args []string) error {
		if profileName == "" || profileModel == "" || profileTarget == "" {
			return fmt.Errorf("--name, --model and --target are required")
		}

		p := &models.BuildProfile{
			Name:        profileName,
			Description: profileDescription,
			Device: models.Device{
				Model:   profileModel,
				Target:  profileTarget,
				Profile: profileDevice,
				Version: pick(profileVersion, settings.Defaults.Version),
			},
			CustomBuild: models.CustomBuild{
				PackageConfiguration: models.PackageConfiguration{
					AddedPackages:   []string{},
					RemovedPackages: []string{},
				},
				Repositories:   []models.Repository{},
				RepositoryKeys: []string{},
			},
		}

		store := profileStore()
		if err := store.Save(p); err != nil {
			return err
		}
		if err := store.SetLastUsed(p.ID); err != nil {
			return err
		}
		fmt.Println(i18n.T("profile_saved", map[string]interface{}{"Name": p.Name}))
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved build profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := profileStore()
		profiles, err := store.List()
		if err != nil {
			return err
		}
		last, _ := store.LastUsed()

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintln(w, " \tNAME\tMODEL\tTARGET\tVERSION\tUPDATED")
		for _, p := range profiles {
			marker := " "
			if p.ID == last {
				marker = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				marker, p.Name, p.Device.Model, p.Device.Target, p.Device.Version,
				p.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Select the profile the other commands operate on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := profileStore()
		p, err := store.Find(args[0])
		if err != nil {
			return err
		}
		if err := store.SetLastUsed(p.ID); err != nil {
			return err
		}
		fmt.Println(i18n.T("profile_selected", map[string]interface{}{"Name": p.Name}))
		return nil
	},
}

var profileDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := profileStore()
		p, err := store.Find(args[0])
		if err != nil {
			return err
		}
		return store.Delete(p.ID)
	},
}

var profileAddCmd = &cobra.Command{
	Use:   "add <package>...",
	Short: "Add packages to the current profile",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateSelection(func(rec selectionMutator) {
			for _, name := range args {
				rec.Add(name)
			}
		})
	},
}

var profileRemoveCmd = &cobra.Command{
	Use:   "remove <package>...",
	Short: "Remove or exclude packages in the current profile",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateSelection(func(rec selectionMutator) {
			for _, name := range args {
				rec.Remove(name)
			}
		})
	},
}

var profileRestoreCmd = &cobra.Command{
	Use:   "restore <package>...",
	Short: "Return packages to their default standing",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutateSelection(func(rec selectionMutator) {
			for _, name := range args {
				rec.Restore(name)
			}
		})
	},
}

var profileStatusCmd = &cobra.Command{
	Use:   "status <package>...",
	Short: "Show the selection status of packages",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := profileStore()
		p, err := currentProfile(store)
		if err != nil {
			return err
		}
		rec := reconcilerFor(p)
		for _, name := range args {
			fmt.Printf("%s\t%s\n", name, rec.Status(name))
		}
		return nil
	},
}

var profilePackagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "Print the package argument list of the current profile",
	Long: `Packages prints the literal package arguments sent with a build request:
bare names are additions, "-"-prefixed names exclude device defaults. The
device default list itself is implied by the build server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := profileStore()
		p, err := currentProfile(store)
		if err != nil {
			return err
		}
		for _, arg := range reconcilerFor(p).BuildPackages() {
			fmt.Println(arg)
		}
		return nil
	},
}

// selectionMutator is the slice of the reconciler the profile subcommands
// drive.
type selectionMutator interface {
	Add(name string)
	Remove(name string)
	Restore(name string)
}

func mutateSelection(mutate func(rec selectionMutator)) error {
	store := profileStore()
	p, err := currentProfile(store)
	if err != nil {
		return err
	}

	rec := reconcilerFor(p)
	mutate(rec)
	storeSelection(p, rec)

	if err := store.Save(p); err != nil {
		return err
	}
	fmt.Println(i18n.T("profile_saved", map[string]interface{}{"Name": p.Name}))
	return nil
}

func init() {
	profileNewCmd.Flags().StringVar(&profileName, "name", "", "profile name")
	profileNewCmd.Flags().StringVar(&profileModel, "model", "", "device model")
	profileNewCmd.Flags().StringVar(&profileTarget, "target", "", "device target, e.g. ath79/generic")
	profileNewCmd.Flags().StringVar(&profileDevice, "profile", "", "device profile id (re-derived from target+model when empty)")
	profileNewCmd.Flags().StringVar(&profileVersion, "version", "", "firmware version")
	profileNewCmd.Flags().StringVar(&profileDescription, "description", "", "profile description")

	profileCmd.AddCommand(profileNewCmd, profileListCmd, profileUseCmd, profileDeleteCmd,
		profileAddCmd, profileRemoveCmd, profileRestoreCmd, profileStatusCmd, profilePackagesCmd)
	rootCmd.AddCommand(profileCmd)
}
