package index

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fwselect/fwselect-cli/pkg/models"
)

// Parser turns raw feed payloads into unified package records. The logger is
// injected so the parser stays usable without any ambient global state.
type Parser struct {
	log logrus.FieldLogger
}

// NewParser creates a parser. A nil logger falls back to the logrus standard
// logger.
func NewParser(log logrus.FieldLogger) *Parser {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Parser{log: log}
}

// Parse decodes a feed payload into package records, choosing the decoder
// path by the feed's filename convention. Text feeds never fail outright;
// binary feeds fail as a whole on structural corruption.
func (p *Parser) Parse(feed models.Feed, payload []byte) ([]models.Package, error) {
	switch feed.Format() {
	case models.FormatADB:
		entries, err := DecodeIndex(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", feed.URL, err)
		}
		pkgs := make([]models.Package, 0, len(entries))
		for _, entry := range entries {
			if pkg, ok := p.mapADBEntry(entry, feed.Source); ok {
				pkgs = append(pkgs, pkg)
			}
		}
		return pkgs, nil
	default:
		return p.parseText(string(payload), feed.Source), nil
	}
}

// mapADBEntry converts one raw ADB index entry into a package record.
// Entries missing name, version, or arch are dropped. Section has no binary
// equivalent and stays empty; the filename is synthesized. Note this path is
// deliberately looser than the text parser, which also requires a Filename
// field.
func (p *Parser) mapADBEntry(entry map[string]interface{}, source string) (models.Package, bool) {
	name, _ := entry["name"].(string)
	version, _ := entry["version"].(string)
	arch, _ := entry["arch"].(string)
	if name == "" || version == "" || arch == "" {
		return models.Package{}, false
	}

	pkg := models.Package{
		Name:          name,
		Version:       version,
		Architecture:  arch,
		Depends:       []string{},
		Filename:      fmt.Sprintf("%s_%s_%s.apk", name, version, arch),
		Size:          intField(entry, "file-size"),
		InstalledSize: intField(entry, "installed-size"),
		Source:        source,
	}
	pkg.Description, _ = entry["description"].(string)
	pkg.License, _ = entry["license"].(string)
	pkg.URL, _ = entry["url"].(string)
	pkg.Hash, _ = entry["hashes"].(string)

	if deps, ok := entry["depends"].([]string); ok {
		for _, dep := range deps {
			name := CleanBinaryDependency(dep)
			if name == "" || name == "libc" {
				continue
			}
			pkg.Depends = append(pkg.Depends, name)
		}
	}
	return pkg, true
}

// CleanBinaryDependency strips the leading negation marker and truncates at
// the first version operator or whitespace to recover the bare package name.
func CleanBinaryDependency(dep string) string {
	dep = strings.TrimPrefix(dep, "!")
	if i := strings.IndexAny(dep, "<>=~ \t"); i >= 0 {
		dep = dep[:i]
	}
	return strings.TrimSpace(dep)
}

func intField(entry map[string]interface{}, key string) int64 {
	if n, ok := entry[key].(int64); ok {
		return n
	}
	return 0
}
