package models

import "strings"

// Package is the unified package record produced by both feed parser paths.
type Package struct {
	Name          string   `json:"name"`
	Version       string   `json:"version"`
	Architecture  string   `json:"architecture"`
	Depends       []string `json:"depends"`
	License       string   `json:"license,omitempty"`
	Section       string   `json:"section"`
	URL           string   `json:"url,omitempty"`
	Size          int64    `json:"size"`           // download size in bytes
	InstalledSize int64    `json:"installed_size"` // unpacked size in bytes
	Filename      string   `json:"filename"`
	Hash          string   `json:"hash"` // hex SHA-256 for text feeds, hex of the hash blob for ADB feeds
	Description   string   `json:"description"`
	CPEID         string   `json:"cpe_id,omitempty"`
	Source        string   `json:"source"` // feed tag that produced this record
}

// FeedFormat identifies the on-the-wire index format of a feed.
type FeedFormat int

const (
	FormatPackages FeedFormat = iota // Debian-style Packages text index
	FormatADB                        // APK v3 binary packages.adb index
)

// Feed describes one remote package index.
type Feed struct {
	URL    string `json:"url"`
	Source string `json:"source"` // human label, recorded on every parsed record
}

// Format derives the feed format from the URL filename by convention:
// a file named packages.adb (possibly with a compression suffix) is binary,
// anything else is the Packages text format.
func (f Feed) Format() FeedFormat {
	name := f.URL
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	for _, ext := range []string{".gz", ".xz", ".zst"} {
		name = strings.TrimSuffix(name, ext)
	}
	if name == "packages.adb" {
		return FormatADB
	}
	return FormatPackages
}
