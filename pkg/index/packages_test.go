package index

import (
	"reflect"
	"testing"

	"github.com/fwselect/fwselect-cli/pkg/models"
)

const sampleBlock = "Package: luci\nVersion: 23.05\nArchitecture: mips_24kc\nFilename: luci_23.05_mips_24kc.ipk\n"

func TestParseTextSingleBlock(t *testing.T) {
	p := NewParser(nil)

	pkgs := p.parseText(sampleBlock, "luci")
	if len(pkgs) != 1 {
		t.Fatalf("expected 1 package, got %d", len(pkgs))
	}

	pkg := pkgs[0]
	if pkg.Name != "luci" || pkg.Version != "23.05" || pkg.Architecture != "mips_24kc" {
		t.Errorf("unexpected record: %+v", pkg)
	}
	if pkg.Filename != "luci_23.05_mips_24kc.ipk" {
		t.Errorf("unexpected filename %q", pkg.Filename)
	}
	if len(pkg.Depends) != 0 {
		t.Errorf("expected no dependencies, got %v", pkg.Depends)
	}
	if pkg.Source != "luci" {
		t.Errorf("expected source tag to be recorded, got %q", pkg.Source)
	}
}

func TestParseTextFullBlock(t *testing.T) {
	content := `Package: dropbear
Version: 2022.82-6
Depends: libc, zlib (>= 1.2.13)
License: MIT
Section: net
URL: https://matt.ucc.asn.au/dropbear/
Architecture: mips_24kc
Installed-Size: 110664
Filename: dropbear_2022.82-6_mips_24kc.ipk
Size: 111543
SHA256sum: deadbeef
Description: A small SSH server/client
X-Unknown-Field: ignored
`
	p := NewParser(nil)
	pkgs := p.parseText(content, "base")
	if len(pkgs) != 1 {
		t.Fatalf("expected 1 package, got %d", len(pkgs))
	}

	pkg := pkgs[0]
	if !reflect.DeepEqual(pkg.Depends, []string{"zlib"}) {
		t.Errorf("expected depends [zlib], got %v", pkg.Depends)
	}
	if pkg.InstalledSize != 110664 || pkg.Size != 111543 {
		t.Errorf("unexpected sizes: %d / %d", pkg.Size, pkg.InstalledSize)
	}
	if pkg.Hash != "deadbeef" {
		t.Errorf("unexpected hash %q", pkg.Hash)
	}
	if pkg.Section != "net" || pkg.License != "MIT" {
		t.Errorf("unexpected section/license: %q / %q", pkg.Section, pkg.License)
	}
}

func TestParseTextIdempotent(t *testing.T) {
	content := sampleBlock + "\n" + "Package: vim\nVersion: 9.0\nArchitecture: mips_24kc\nFilename: vim_9.0_mips_24kc.ipk\n"
	p := NewParser(nil)

	first := p.parseText(content, "packages")
	second := p.parseText(content, "packages")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("parsing is not idempotent:\n%v\n%v", first, second)
	}
	if len(first) != 2 {
		t.Errorf("expected 2 packages, got %d", len(first))
	}
}

func TestParseTextDropsIncompleteBlocks(t *testing.T) {
	tests := []struct {
		name  string
		block string
	}{
		{"missing name", "Version: 1.0\nArchitecture: all\nFilename: a.ipk\n"},
		{"missing version", "Package: a\nArchitecture: all\nFilename: a.ipk\n"},
		{"missing arch", "Package: a\nVersion: 1.0\nFilename: a.ipk\n"},
		{"missing filename", "Package: a\nVersion: 1.0\nArchitecture: all\n"},
	}

	p := NewParser(nil)
	for _, tt := range tests {
		content := tt.block + "\n" + sampleBlock
		pkgs := p.parseText(content, "test")
		if len(pkgs) != 1 || pkgs[0].Name != "luci" {
			t.Errorf("%s: expected only the valid block to survive, got %v", tt.name, pkgs)
		}
	}
}

func TestParseTextBadSizeDefaultsToZero(t *testing.T) {
	content := sampleBlock + "Size: not-a-number\nInstalled-Size: \n"
	p := NewParser(nil)
	pkgs := p.parseText(content, "test")
	if len(pkgs) != 1 {
		t.Fatalf("expected 1 package, got %d", len(pkgs))
	}
	if pkgs[0].Size != 0 || pkgs[0].InstalledSize != 0 {
		t.Errorf("expected sizes to default to 0, got %d / %d", pkgs[0].Size, pkgs[0].InstalledSize)
	}
}

func TestParseDependencies(t *testing.T) {
	tests := []struct {
		value string
		want  []string
	}{
		{"libfoo (>= 1.2.0), libc", []string{"libfoo"}},
		{"libc", []string{}},
		{"a, b, c", []string{"a", "b", "c"}},
		{"", []string{}},
		{"libubus (= 2023), libubox20220927 (>= 1)", []string{"libubus", "libubox20220927"}},
	}

	for _, tt := range tests {
		got := ParseDependencies(tt.value)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseDependencies(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestParseFeedDispatch(t *testing.T) {
	p := NewParser(nil)

	feed := models.Feed{URL: "https://example.org/packages/mips_24kc/base/Packages", Source: "base"}
	pkgs, err := p.Parse(feed, []byte(sampleBlock))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(pkgs) != 1 {
		t.Errorf("expected 1 package, got %d", len(pkgs))
	}

	if feed.Format() != models.FormatPackages {
		t.Errorf("expected text format for Packages URL")
	}
	adbFeed := models.Feed{URL: "https://example.org/packages/mips_24kc/base/packages.adb", Source: "base"}
	if adbFeed.Format() != models.FormatADB {
		t.Errorf("expected ADB format for packages.adb URL")
	}
}
