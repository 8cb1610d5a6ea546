package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwselect/fwselect-cli/pkg/models"
)

// cacheFile is the on-disk snapshot of a loaded catalog, so commands that
// only read (search, info, deps) do not refetch every feed.
type cacheFile struct {
	UpdatedAt time.Time        `json:"updated_at"`
	Version   string           `json:"version"`
	Target    string           `json:"target,omitempty"`
	Packages  []models.Package `json:"packages"`
}

// SaveTo writes the catalog snapshot to path, creating parent directories
// as needed.
func (c *Catalog) SaveTo(path, version, target string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.Marshal(cacheFile{
		UpdatedAt: time.Now(),
		Version:   version,
		Target:    target,
		Packages:  c.All(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode catalog cache: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog cache: %w", err)
	}
	return nil
}

// LoadFrom merges a previously saved snapshot into the catalog and returns
// the firmware version it was built for.
func (c *Catalog) LoadFrom(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read catalog cache: %w", err)
	}

	var cache cacheFile
	if err := json.Unmarshal(data, &cache); err != nil {
		return "", fmt.Errorf("failed to parse catalog cache: %w", err)
	}

	c.Merge(cache.Packages)
	return cache.Version, nil
}
