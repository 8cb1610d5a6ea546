package index

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Decoder for the APK v3 "ADB" binary container used by packages.adb
// indices: a schema-described tree of 32-bit tagged values stored inside
// size-typed blocks. Layout:
//
//	uint32 magic "ADB."
//	uint32 schema id ("indx" for a package index)
//	blocks: uint32 header, type in bits 30-31, total size (header included)
//	        in bits 0-29, blocks padded to 4-byte alignment
//
// The first ADB block is the database image. Its leading uint32 is the root
// value; all offsets inside values are relative to the start of the image.
// A value word carries its type in the high 4 bits and a 28-bit immediate or
// offset in the rest.
//
// Any structural inconsistency aborts the decode: the format is cursor
// based, so a corrupt block would poison every following record anyway.

const (
	adbFormatMagic = 0x2e424441 // "ADB."
	adbSchemaIndex = 0x78646e69 // "indx"
)

const (
	adbBlockAdb = 0
	adbBlockSig = 1
)

const (
	adbTypeSpecial = 0x0
	adbTypeInt     = 0x1
	adbTypeInt32   = 0x2
	adbTypeInt64   = 0x3
	adbTypeBlob8   = 0x8
	adbTypeBlob16  = 0x9
	adbTypeBlob32  = 0xa
	adbTypeArray   = 0xd
	adbTypeObject  = 0xe
)

const (
	adbMaxSlots = 1 << 24
	adbMaxDepth = 32
)

// pkginfoFields names the slots of a package object in the index schema.
// Slot 0 is the object's slot count.
var pkginfoFields = []string{
	"", "name", "version", "hashes", "description", "arch", "license",
	"origin", "maintainer", "url", "repo-commit", "build-time",
	"installed-size", "file-size", "provider-priority", "depends",
	"provides", "replaces", "install-if", "recommends", "layer", "tags",
}

// Slots of the index schema's root object.
const (
	ndxSlotDescription = 1
	ndxSlotPackages    = 2
)

// DecodeIndex decodes a packages.adb payload into raw entry mappings keyed
// by the pkginfo schema field names. String-valued fields arrive as string,
// numeric fields as int64, dependency-style lists as []string, and the hash
// digest as a hex string.
func DecodeIndex(raw []byte) ([]map[string]interface{}, error) {
	d, err := newADBDecoder(raw)
	if err != nil {
		return nil, err
	}

	root, err := d.value(d.root, 0)
	if err != nil {
		return nil, err
	}
	rootObj, ok := root.([]interface{})
	if !ok {
		return nil, fmt.Errorf("adb: root value is not an object")
	}
	if len(rootObj) <= ndxSlotPackages {
		// An index with no package array is valid, just empty.
		return nil, nil
	}
	pkgList, ok := rootObj[ndxSlotPackages].([]interface{})
	if !ok {
		if rootObj[ndxSlotPackages] == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("adb: package list slot is not an array")
	}

	var entries []map[string]interface{}
	for i, slot := range pkgList {
		if i == 0 || slot == nil {
			continue
		}
		obj, ok := slot.([]interface{})
		if !ok {
			return nil, fmt.Errorf("adb: package entry %d is not an object", i)
		}
		entry, err := mapPkginfo(obj)
		if err != nil {
			return nil, fmt.Errorf("adb: package entry %d: %w", i, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// mapPkginfo converts a slot-indexed package object into a named field map.
func mapPkginfo(slots []interface{}) (map[string]interface{}, error) {
	entry := make(map[string]interface{}, len(slots))
	for i := 1; i < len(slots) && i < len(pkginfoFields); i++ {
		v := slots[i]
		if v == nil {
			continue
		}
		field := pkginfoFields[i]
		switch field {
		case "depends", "provides", "replaces", "install-if", "recommends", "tags":
			list, err := stringList(v)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", field, err)
			}
			entry[field] = list
		case "hashes":
			b, ok := v.([]byte)
			if !ok {
				return nil, fmt.Errorf("field %s: not a blob", field)
			}
			entry[field] = hex.EncodeToString(b)
		default:
			switch tv := v.(type) {
			case []byte:
				entry[field] = string(tv)
			case int64:
				entry[field] = tv
			case bool:
				entry[field] = tv
			default:
				return nil, fmt.Errorf("field %s: unexpected value", field)
			}
		}
	}
	return entry, nil
}

func stringList(v interface{}) ([]string, error) {
	arr, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("not an array")
	}
	var out []string
	for i := 1; i < len(arr); i++ {
		if arr[i] == nil {
			continue
		}
		b, ok := arr[i].([]byte)
		if !ok {
			return nil, fmt.Errorf("element %d is not a blob", i)
		}
		out = append(out, string(b))
	}
	return out, nil
}

type adbDecoder struct {
	db   []byte // database image: first ADB block's payload
	root uint32
}

func newADBDecoder(raw []byte) (*adbDecoder, error) {
	if len(raw) < 8 {
		return nil, fmt.Errorf("adb: truncated header")
	}
	if binary.LittleEndian.Uint32(raw[0:4]) != adbFormatMagic {
		return nil, fmt.Errorf("adb: bad format magic")
	}
	if binary.LittleEndian.Uint32(raw[4:8]) != adbSchemaIndex {
		return nil, fmt.Errorf("adb: not a package index schema")
	}

	var db []byte
	off := 8
	for off+4 <= len(raw) {
		hdr := binary.LittleEndian.Uint32(raw[off : off+4])
		typ := hdr >> 30
		size := int(hdr & 0x3fffffff)
		if size < 4 || off+size > len(raw) {
			return nil, fmt.Errorf("adb: block at %d overruns container", off)
		}
		if typ == adbBlockAdb && db == nil {
			db = raw[off+4 : off+size]
		}
		off += (size + 3) &^ 3
	}
	if db == nil {
		return nil, fmt.Errorf("adb: no database block")
	}
	if len(db) < 4 {
		return nil, fmt.Errorf("adb: database image too small")
	}

	return &adbDecoder{db: db, root: binary.LittleEndian.Uint32(db[0:4])}, nil
}

// value decodes a single tagged value word.
func (d *adbDecoder) value(v uint32, depth int) (interface{}, error) {
	if depth > adbMaxDepth {
		return nil, fmt.Errorf("adb: value nesting too deep")
	}
	typ := v >> 28
	val := int(v & 0x0fffffff)

	switch typ {
	case adbTypeSpecial:
		switch val {
		case 0:
			return nil, nil
		case 1:
			return true, nil
		case 2:
			return false, nil
		}
		return nil, fmt.Errorf("adb: unknown special value %d", val)
	case adbTypeInt:
		return int64(val), nil
	case adbTypeInt32:
		b, err := d.slice(val, 4)
		if err != nil {
			return nil, err
		}
		return int64(binary.LittleEndian.Uint32(b)), nil
	case adbTypeInt64:
		b, err := d.slice(val, 8)
		if err != nil {
			return nil, err
		}
		return int64(binary.LittleEndian.Uint64(b)), nil
	case adbTypeBlob8:
		return d.blob(val, 1)
	case adbTypeBlob16:
		return d.blob(val, 2)
	case adbTypeBlob32:
		return d.blob(val, 4)
	case adbTypeArray, adbTypeObject:
		return d.compound(val, depth)
	}
	return nil, fmt.Errorf("adb: unsupported value type %#x", typ)
}

// compound decodes an array or object: a uint32 slot count (counting itself
// as slot 0) followed by the remaining slot values.
func (d *adbDecoder) compound(off, depth int) ([]interface{}, error) {
	b, err := d.slice(off, 4)
	if err != nil {
		return nil, err
	}
	count := int(binary.LittleEndian.Uint32(b))
	if count < 1 || count > adbMaxSlots {
		return nil, fmt.Errorf("adb: implausible slot count %d", count)
	}
	if _, err := d.slice(off, 4*count); err != nil {
		return nil, err
	}

	slots := make([]interface{}, count)
	for i := 1; i < count; i++ {
		word := binary.LittleEndian.Uint32(d.db[off+4*i : off+4*i+4])
		slots[i], err = d.value(word, depth+1)
		if err != nil {
			return nil, err
		}
	}
	return slots, nil
}

// blob reads a length-prefixed byte string; lenSize is the width of the
// little-endian length prefix.
func (d *adbDecoder) blob(off, lenSize int) ([]byte, error) {
	b, err := d.slice(off, lenSize)
	if err != nil {
		return nil, err
	}
	var n int
	switch lenSize {
	case 1:
		n = int(b[0])
	case 2:
		n = int(binary.LittleEndian.Uint16(b))
	default:
		n = int(binary.LittleEndian.Uint32(b))
	}
	data, err := d.slice(off+lenSize, n)
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (d *adbDecoder) slice(off, n int) ([]byte, error) {
	if off < 0 || n < 0 || off+n > len(d.db) {
		return nil, fmt.Errorf("adb: offset %d+%d outside database image", off, n)
	}
	return d.db[off : off+n], nil
}
