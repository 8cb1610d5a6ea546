package index

import (
	"strconv"
	"strings"

	"github.com/fwselect/fwselect-cli/pkg/models"
)

// parseText parses the full content of a Packages-style text feed. Blocks
// are separated by blank lines; within a block each line is split on the
// first colon. Unknown field keys are ignored for forward compatibility.
// Parsing is per-block tolerant and never fails as a whole.
func (p *Parser) parseText(content, source string) []models.Package {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var pkgs []models.Package
	for _, block := range strings.Split(content, "\n\n") {
		if strings.TrimSpace(block) == "" {
			continue
		}
		pkg, ok := p.parseBlock(block, source)
		if !ok {
			continue
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs
}

// parseBlock parses a single index block. Records missing name, version,
// architecture, or filename are dropped without an error so a partially
// corrupt feed still yields its valid entries.
func (p *Parser) parseBlock(block, source string) (pkg models.Package, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.log.WithField("source", source).Warnf("skipping malformed index block: %v", r)
			pkg, ok = models.Package{}, false
		}
	}()

	pkg = models.Package{Depends: []string{}, Source: source}
	for _, line := range strings.Split(block, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)

		switch key {
		case "Package":
			pkg.Name = value
		case "Version":
			pkg.Version = value
		case "Architecture":
			pkg.Architecture = value
		case "Depends":
			pkg.Depends = ParseDependencies(value)
		case "License":
			pkg.License = value
		case "Section":
			pkg.Section = value
		case "URL":
			pkg.URL = value
		case "Installed-Size":
			pkg.InstalledSize = parseSize(value)
		case "Size":
			pkg.Size = parseSize(value)
		case "Filename":
			pkg.Filename = value
		case "SHA256sum":
			pkg.Hash = value
		case "Description":
			pkg.Description = value
		case "CPE-ID":
			pkg.CPEID = value
		}
	}

	if pkg.Name == "" || pkg.Version == "" || pkg.Architecture == "" || pkg.Filename == "" {
		return models.Package{}, false
	}
	return pkg, true
}

// ParseDependencies splits a Depends value on commas, strips any
// parenthesized version constraint, and filters out libc, which is always
// satisfied on target.
func ParseDependencies(value string) []string {
	deps := []string{}
	for _, tok := range strings.Split(value, ",") {
		dep := strings.TrimSpace(tok)
		if i := strings.Index(dep, "("); i >= 0 {
			dep = strings.TrimSpace(dep[:i])
		}
		if dep == "" || dep == "libc" {
			continue
		}
		deps = append(deps, dep)
	}
	return deps
}

func parseSize(value string) int64 {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
