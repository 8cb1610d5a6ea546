package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fwselect/fwselect-cli/internal/i18n"
	"github.com/fwselect/fwselect-cli/pkg/catalog"
	"github.com/fwselect/fwselect-cli/pkg/models"
)

var (
	updateVersion string
	updateTarget  string
	updateArch    string
	updateAPK     bool
	updateRepos   []string
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Load package feeds into the local catalog",
	Long: `Update fetches the architecture feeds, the target feed, the kernel-module
feed when the kernel triple is known, and any custom repositories, then
snapshots the merged catalog locally for the search/info/deps commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fwVersion := pick(updateVersion, settings.Defaults.Version)
		target := pick(updateTarget, settings.Defaults.Target)
		arch := pick(updateArch, settings.Defaults.Arch)
		useAPK := updateAPK || settings.Defaults.UseAPK
		if arch == "" {
			return fmt.Errorf("package architecture is required (--arch or defaults.arch)")
		}

		ctx := cmd.Context()
		fetcher := catalog.NewFetcher(nil, log)

		fmt.Println(i18n.T("update_loading", map[string]interface{}{
			"Version": fwVersion,
			"Arch":    arch,
		}))

		// The kernel triple for the kmods feed comes from profiles.json.
		var kernel *models.KernelInfo
		if target != "" {
			idx, err := fetcher.FetchProfiles(ctx, settings.Server.DownloadURL, fwVersion, target)
			if err != nil {
				log.Warnf("failed to fetch device profiles: %v", err)
			} else {
				kernel = idx.LinuxKernel
				if err := saveProfilesIndex(idx); err != nil {
					log.Warnf("failed to cache device profiles: %v", err)
				}
			}
		}

		feeds := catalog.ArchFeeds(settings.Server.DownloadURL, fwVersion, arch, useAPK)
		if target != "" {
			feeds = append(feeds, catalog.TargetFeeds(settings.Server.DownloadURL, fwVersion, target, kernel, useAPK)...)
		}
		repos, err := parseRepoFlags(updateRepos)
		if err != nil {
			return err
		}
		feeds = append(feeds, catalog.CustomFeeds(repos, useAPK)...)

		cat := catalog.New(catalog.WithFetcher(fetcher), catalog.WithLogger(log))
		loaded := 0
		for _, result := range cat.LoadFeeds(ctx, feeds) {
			if result.Err != nil {
				fmt.Println(i18n.T("update_feed_failed", map[string]interface{}{
					"Source": result.Feed.Source,
					"Error":  result.Err.Error(),
				}))
				continue
			}
			loaded++
		}

		if err := cat.SaveTo(settings.CatalogCachePath(), fwVersion, target); err != nil {
			return err
		}

		fmt.Println(i18n.T("update_done", map[string]interface{}{
			"Count": cat.Len(),
			"Feeds": loaded,
		}))
		return nil
	},
}

func init() {
	updateCmd.Flags().StringVar(&updateVersion, "version", "", "firmware version (SNAPSHOT for snapshots)")
	updateCmd.Flags().StringVar(&updateTarget, "target", "", "device target, e.g. ath79/generic")
	updateCmd.Flags().StringVar(&updateArch, "arch", "", "package architecture, e.g. mips_24kc")
	updateCmd.Flags().BoolVar(&updateAPK, "apk", false, "fetch binary packages.adb indices")
	updateCmd.Flags().StringArrayVar(&updateRepos, "repo", nil, "custom repository as name=url (repeatable)")
	rootCmd.AddCommand(updateCmd)
}

func pick(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}

func parseRepoFlags(flags []string) ([]models.Repository, error) {
	repos := make([]models.Repository, 0, len(flags))
	for _, f := range flags {
		name, url, found := strings.Cut(f, "=")
		if !found || name == "" || url == "" {
			return nil, fmt.Errorf("invalid --repo %q, expected name=url", f)
		}
		repos = append(repos, models.Repository{Name: name, URL: url})
	}
	return repos, nil
}

func saveProfilesIndex(idx *models.ProfilesIndex) error {
	path := settings.ProfilesCachePath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.Marshal(idx)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
