package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fwselect/fwselect-cli/internal/config"
	"github.com/fwselect/fwselect-cli/internal/i18n"
	"github.com/fwselect/fwselect-cli/internal/version"
	"github.com/fwselect/fwselect-cli/pkg/catalog"
	"github.com/fwselect/fwselect-cli/pkg/models"
	"github.com/fwselect/fwselect-cli/pkg/profile"
	"github.com/fwselect/fwselect-cli/pkg/selection"
)

var (
	cfgFile      string
	langOverride string
	logLevelFlag string

	settings *config.Settings
	log      = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "fwselect",
	Short: "fwselect - build custom OpenWrt firmware images",
	Long: `fwselect is a command-line configurator for custom OpenWrt firmware images.
It loads package feeds, tracks package selections against a device's defaults,
and submits build requests to a remote image-building service.`,
	Version:       version.Short(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := i18n.Init(langOverride); err != nil {
			return err
		}

		s, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		settings = s

		level := logLevelFlag
		if level == "" {
			level = settings.Client.LogLevel
		}
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			lvl = logrus.InfoLevel
		}
		log.SetLevel(lvl)
		log.SetOutput(os.Stderr)

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&langOverride, "lang", "", "UI language (en, zh)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level (debug, info, warn, error)")
}

// loadCatalog reads the catalog snapshot written by the update command.
func loadCatalog() (*catalog.Catalog, string, error) {
	cat := catalog.New(catalog.WithLogger(log))
	ver, err := cat.LoadFrom(settings.CatalogCachePath())
	if err != nil {
		return nil, "", fmt.Errorf("no package catalog loaded, run 'fwselect update' first: %w", err)
	}
	return cat, ver, nil
}

// loadProfilesIndex reads the profiles.json snapshot written by the update
// command, if any.
func loadProfilesIndex() (*models.ProfilesIndex, error) {
	data, err := os.ReadFile(settings.ProfilesCachePath())
	if err != nil {
		return nil, err
	}
	var idx models.ProfilesIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse cached profiles: %w", err)
	}
	return &idx, nil
}

// profileStore opens the saved-profile store.
func profileStore() *profile.Store {
	return profile.NewStore(profile.NewFileKV(settings.Client.DataDir))
}

// currentProfile resolves the last-used profile document.
func currentProfile(store *profile.Store) (*models.BuildProfile, error) {
	id, err := store.LastUsed()
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("no profile selected, run 'fwselect profile use <name>' first")
	}
	return store.Find(id)
}

// reconcilerFor rebuilds the selection state of a profile document. Device
// defaults come from the cached profiles index when it matches the
// profile's target; otherwise the stored removal markers are trusted as
// defaults, since they could only have been recorded against one.
func reconcilerFor(p *models.BuildProfile) *selection.Reconciler {
	var defaults []string
	if idx, err := loadProfilesIndex(); err == nil && idx.Target == p.Device.Target {
		defaults = idx.DefaultsFor(p.Device.Profile)
	} else {
		defaults = p.CustomBuild.PackageConfiguration.RemovedPackages
	}

	rec := selection.New(defaults)
	for _, name := range p.CustomBuild.PackageConfiguration.AddedPackages {
		rec.Add(name)
	}
	for _, name := range p.CustomBuild.PackageConfiguration.RemovedPackages {
		rec.Remove(name)
	}
	return rec
}

// storeSelection writes the reconciler state back into a profile document.
func storeSelection(p *models.BuildProfile, rec *selection.Reconciler) {
	p.CustomBuild.PackageConfiguration = models.PackageConfiguration{
		AddedPackages:   rec.Added(),
		RemovedPackages: rec.Removed(),
	}
}
