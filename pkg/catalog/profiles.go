package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fwselect/fwselect-cli/pkg/models"
)

// FetchProfiles downloads and parses the profiles.json document for a
// target, which carries the device list, the target default packages, and
// the kernel triple the kmods feed is keyed by.
func (f *Fetcher) FetchProfiles(ctx context.Context, serverURL, version, target string) (*models.ProfilesIndex, error) {
	url := ProfilesURL(serverURL, version, target)
	data, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	var idx models.ProfilesIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, err)
	}
	for id, p := range idx.Profiles {
		p.ID = id
		if p.Target == "" {
			p.Target = idx.Target
		}
		idx.Profiles[id] = p
	}
	return &idx, nil
}
