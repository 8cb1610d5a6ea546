package index

import (
	"encoding/binary"
	"reflect"
	"testing"

	"github.com/fwselect/fwselect-cli/pkg/models"
)

// adbBuilder constructs synthetic packages.adb payloads for the decoder
// tests, using the same value/block layout the decoder reads.
type adbBuilder struct {
	db []byte
}

func newADBBuilder() *adbBuilder {
	// First 4 bytes of the database image hold the root value.
	return &adbBuilder{db: make([]byte, 4)}
}

func (b *adbBuilder) blob(s string) uint32 {
	off := len(b.db)
	b.db = append(b.db, byte(len(s)))
	b.db = append(b.db, s...)
	return adbTypeBlob8<<28 | uint32(off)
}

func (b *adbBuilder) num(n int) uint32 {
	return adbTypeInt<<28 | uint32(n)
}

func (b *adbBuilder) compound(typ uint32, slots []uint32) uint32 {
	off := len(b.db)
	count := len(slots) + 1
	buf := make([]byte, 4*count)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(count))
	for i, v := range slots {
		binary.LittleEndian.PutUint32(buf[4+4*i:], v)
	}
	b.db = append(b.db, buf...)
	return typ<<28 | uint32(off)
}

func (b *adbBuilder) array(slots []uint32) uint32 {
	return b.compound(adbTypeArray, slots)
}

func (b *adbBuilder) object(slots []uint32) uint32 {
	return b.compound(adbTypeObject, slots)
}

func (b *adbBuilder) container(root uint32) []byte {
	binary.LittleEndian.PutUint32(b.db[0:4], root)

	out := make([]byte, 8)
	binary.LittleEndian.PutUint32(out[0:4], adbFormatMagic)
	binary.LittleEndian.PutUint32(out[4:8], adbSchemaIndex)

	hdr := make([]byte, 4)
	binary.LittleEndian.PutUint32(hdr, uint32(4+len(b.db))) // block type 0 = ADB
	out = append(out, hdr...)
	out = append(out, b.db...)
	for len(out)%4 != 0 {
		out = append(out, 0)
	}
	return out
}

// pkgSlots lays out a pkginfo object with the given core fields and
// optional depends entries.
func pkgSlots(b *adbBuilder, name, version, arch string, deps []string) []uint32 {
	slots := make([]uint32, 15)
	if name != "" {
		slots[0] = b.blob(name) // slot 1: name
	}
	if version != "" {
		slots[1] = b.blob(version) // slot 2: version
	}
	slots[2] = b.blob("\x01\x02\x03") // slot 3: hashes
	slots[3] = b.blob("a test package")
	if arch != "" {
		slots[4] = b.blob(arch) // slot 5: arch
	}
	slots[5] = b.blob("GPL-2.0")
	slots[8] = b.blob("https://example.org")
	slots[11] = b.num(2048) // installed-size
	slots[12] = b.num(1024) // file-size
	if deps != nil {
		depVals := make([]uint32, len(deps))
		for i, d := range deps {
			depVals[i] = b.blob(d)
		}
		slots[14] = b.array(depVals) // slot 15: depends
	}
	return slots
}

func TestDecodeIndex(t *testing.T) {
	b := newADBBuilder()
	pkg := b.object(pkgSlots(b, "dropbear", "2022.82-6", "mips_24kc", []string{"!bar", "baz>=2.0"}))
	root := b.object([]uint32{b.blob("test index"), b.array([]uint32{pkg})})
	raw := b.container(root)

	entries, err := DecodeIndex(raw)
	if err != nil {
		t.Fatalf("DecodeIndex failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	entry := entries[0]
	if entry["name"] != "dropbear" || entry["version"] != "2022.82-6" || entry["arch"] != "mips_24kc" {
		t.Errorf("unexpected core fields: %v", entry)
	}
	if entry["hashes"] != "010203" {
		t.Errorf("expected hex hash blob, got %v", entry["hashes"])
	}
	if entry["file-size"] != int64(1024) || entry["installed-size"] != int64(2048) {
		t.Errorf("unexpected sizes: %v / %v", entry["file-size"], entry["installed-size"])
	}
	deps, ok := entry["depends"].([]string)
	if !ok || !reflect.DeepEqual(deps, []string{"!bar", "baz>=2.0"}) {
		t.Errorf("unexpected raw depends: %v", entry["depends"])
	}
}

func TestDecodeIndexRejectsCorruptContainers(t *testing.T) {
	b := newADBBuilder()
	root := b.object([]uint32{b.blob("x"), b.array(nil)})
	valid := b.container(root)

	tests := []struct {
		name   string
		mangle func([]byte) []byte
	}{
		{"truncated", func(raw []byte) []byte { return raw[:4] }},
		{"bad magic", func(raw []byte) []byte {
			out := append([]byte(nil), raw...)
			out[0] = 'X'
			return out
		}},
		{"wrong schema", func(raw []byte) []byte {
			out := append([]byte(nil), raw...)
			binary.LittleEndian.PutUint32(out[4:8], 0x12345678)
			return out
		}},
		{"block overrun", func(raw []byte) []byte {
			out := append([]byte(nil), raw...)
			binary.LittleEndian.PutUint32(out[8:12], 0x3fffffff)
			return out
		}},
		{"dangling offset", func(raw []byte) []byte {
			out := append([]byte(nil), raw...)
			// Point the root at an offset past the database image.
			binary.LittleEndian.PutUint32(out[12:16], adbTypeObject<<28|0x0ffffff)
			return out
		}},
	}

	for _, tt := range tests {
		if _, err := DecodeIndex(tt.mangle(valid)); err == nil {
			t.Errorf("%s: expected an error", tt.name)
		}
	}
}

func TestParseADBFeed(t *testing.T) {
	b := newADBBuilder()
	pkg := b.object(pkgSlots(b, "kmod-usb2", "5.15.134-1", "aarch64_cortex-a53", []string{"!fuse", "kmod-usb-core=5.15.134-1", "libc"}))
	incomplete := b.object(pkgSlots(b, "no-arch", "1.0", "", nil))
	root := b.object([]uint32{b.blob("test index"), b.array([]uint32{pkg, incomplete})})
	raw := b.container(root)

	p := NewParser(nil)
	feed := models.Feed{URL: "https://example.org/packages/aarch64_cortex-a53/base/packages.adb", Source: "base"}
	pkgs, err := p.Parse(feed, raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(pkgs) != 1 {
		t.Fatalf("expected the entry without arch to be dropped, got %d records", len(pkgs))
	}

	rec := pkgs[0]
	if rec.Filename != "kmod-usb2_5.15.134-1_aarch64_cortex-a53.apk" {
		t.Errorf("unexpected synthesized filename %q", rec.Filename)
	}
	if rec.Section != "" {
		t.Errorf("expected empty section for binary records, got %q", rec.Section)
	}
	if !reflect.DeepEqual(rec.Depends, []string{"fuse", "kmod-usb-core"}) {
		t.Errorf("unexpected cleaned depends: %v", rec.Depends)
	}
	if rec.Size != 1024 || rec.InstalledSize != 2048 {
		t.Errorf("unexpected sizes: %d / %d", rec.Size, rec.InstalledSize)
	}
}

func TestCleanBinaryDependency(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"!bar", "bar"},
		{"baz>=2.0", "baz"},
		{"foo~1.2", "foo"},
		{"qux<3", "qux"},
		{"plain", "plain"},
		{"spaced 1.0", "spaced"},
	}
	for _, tt := range tests {
		if got := CleanBinaryDependency(tt.in); got != tt.want {
			t.Errorf("CleanBinaryDependency(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
