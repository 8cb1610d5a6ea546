package catalog

import (
	"fmt"
	"strings"

	"github.com/fwselect/fwselect-cli/pkg/models"
)

// archFeedNames are the four feed categories published for every
// architecture.
var archFeedNames = []string{"base", "luci", "packages", "telephony"}

// BaseURL builds the version root on the download server: snapshot builds
// live under /snapshots, release builds under /releases/{version}.
func BaseURL(serverURL, version string) string {
	serverURL = strings.TrimRight(serverURL, "/")
	if IsSnapshot(version) {
		return serverURL + "/snapshots"
	}
	return serverURL + "/releases/" + version
}

// IsSnapshot reports whether a firmware version refers to a snapshot build.
func IsSnapshot(version string) bool {
	return version == "" || strings.Contains(strings.ToUpper(version), "SNAPSHOT")
}

// indexFile returns the index filename for the feed format in use.
func indexFile(apk bool) string {
	if apk {
		return "packages.adb"
	}
	return "Packages"
}

// ArchFeeds lists the four fixed architecture feeds for a version.
func ArchFeeds(serverURL, version, arch string, apk bool) []models.Feed {
	base := BaseURL(serverURL, version)
	feeds := make([]models.Feed, 0, len(archFeedNames))
	for _, name := range archFeedNames {
		feeds = append(feeds, models.Feed{
			URL:    fmt.Sprintf("%s/packages/%s/%s/%s", base, arch, name, indexFile(apk)),
			Source: name,
		})
	}
	return feeds
}

// TargetFeeds lists the target's own package feed and, when the kernel
// triple is known, the kernel-module feed keyed by it.
func TargetFeeds(serverURL, version, target string, kernel *models.KernelInfo, apk bool) []models.Feed {
	base := BaseURL(serverURL, version)
	feeds := []models.Feed{
		{
			URL:    fmt.Sprintf("%s/targets/%s/packages/%s", base, target, indexFile(apk)),
			Source: "target",
		},
	}
	if kernel != nil {
		feeds = append(feeds, models.Feed{
			URL: fmt.Sprintf("%s/targets/%s/kmods/%s-%s-%s/%s",
				base, target, kernel.Version, kernel.Release, kernel.Vermagic, indexFile(apk)),
			Source: "kmods",
		})
	}
	return feeds
}

// CustomFeeds maps user-configured repositories to feeds, one per
// repository, keeping the repository name as the source tag.
func CustomFeeds(repos []models.Repository, apk bool) []models.Feed {
	feeds := make([]models.Feed, 0, len(repos))
	for _, repo := range repos {
		if repo.URL == "" {
			continue
		}
		feeds = append(feeds, models.Feed{
			URL:    strings.TrimRight(repo.URL, "/") + "/" + indexFile(apk),
			Source: repo.Name,
		})
	}
	return feeds
}

// ProfilesURL points at the profiles.json document of a target.
func ProfilesURL(serverURL, version, target string) string {
	return fmt.Sprintf("%s/targets/%s/profiles.json", BaseURL(serverURL, version), target)
}
