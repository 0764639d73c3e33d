package fat32

import (
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
)

// Info is one decoded directory entry.
type Info struct {
	Name       string
	Attribute  byte
	IsDir      bool
	IsVolumeID bool

	CreateTimeTenth byte
	CreateTime      time.Time
	WriteTime       time.Time
	AccessTime      time.Time

	Size uint32
}

// lfnOffsets are the fixed byte offsets, within a 32-byte LFN entry, of
// its 13 UCS-2 code units.
var lfnOffsets = [13]int{1, 3, 5, 7, 9, 14, 16, 18, 20, 22, 24, 28, 30}

type entryKind int

const (
	entryKindFree entryKind = iota
	entryKindDeleted
	entryKindLFN
	entryKindSFN
)

// classifyEntry inspects a raw 32-byte directory entry and reports which
// of the four entry kinds (free, deleted, LFN fragment, SFN) it is.
func classifyEntry(raw []byte) entryKind {
	switch raw[0] {
	case entryFree:
		return entryKindFree
	case entryDeleted, entryDeletedEscaped:
		return entryKindDeleted
	}
	if raw[11] == attrLFN {
		return entryKindLFN
	}
	return entryKindSFN
}

// lfnChecksum computes the checksum that a legitimate LFN chain's anchor
// SFN must carry at byte offset 13.
func lfnChecksum(sfn []byte) byte {
	var crc byte
	for i := 0; i < 11; i++ {
		crc = ((crc & 1) << 7) + (crc >> 1) + sfn[i]
	}
	return crc
}

// lfnFragment holds one decoded LFN entry.
type lfnFragment struct {
	sequence int // 1-based index into the assembled name
	last     bool
	checksum byte
	units    [13]uint16
}

func decodeLFNFragment(raw []byte) lfnFragment {
	f := lfnFragment{
		sequence: int(raw[0] & lfnSeqMask),
		last:     raw[0]&lfnLastBit != 0,
		checksum: raw[13],
	}
	for i, off := range lfnOffsets {
		f.units[i] = loadU16(raw, off)
	}
	return f
}

var utf16Decoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()

// ucs2ToString decodes a slice of UCS-2 code units, stopping at the first
// 0x0000 terminator or 0xFFFF padding slot, the LFN unused-slot convention.
func ucs2ToString(units []uint16) string {
	trimmed := make([]byte, 0, len(units)*2)
	for _, u := range units {
		if u == 0x0000 || u == 0xFFFF {
			break
		}
		trimmed = append(trimmed, byte(u), byte(u>>8))
	}
	out, err := utf16Decoder.Bytes(trimmed)
	if err != nil {
		return string(trimmed)
	}
	return string(out)
}

// sfnDisplayName renders an 11-byte 8.3 SFN as "NAME.EXT", trimming
// trailing space padding and omitting the dot when there is no extension.
func sfnDisplayName(name [11]byte) string {
	base := strings.TrimRight(string(name[0:8]), " ")
	ext := strings.TrimRight(string(name[8:11]), " ")
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// lfnFragmentMatches compares one LFN fragment against name at the
// fragment's computed offset, stopping at the first terminator or padding
// slot in the fragment.
func lfnFragmentMatches(f lfnFragment, name []byte) bool {
	base := 13 * (f.sequence - 1)
	for i, u := range f.units {
		if u == 0x0000 || u == 0xFFFF {
			break
		}
		pos := base + i
		if pos >= len(name) || rune(u) != rune(name[pos]) {
			return false
		}
	}
	return true
}

// sfnCompare uppercases ASCII a..z in name and compares up to 8 bytes
// against sfn's first 8 bytes, space-padded.
func sfnCompare(sfn [11]byte, name []byte) bool {
	var query [8]byte
	for i := range query {
		query[i] = ' '
	}
	n := len(name)
	if n > 8 {
		n = 8
	}
	for i := 0; i < n; i++ {
		c := name[i]
		if c >= 'a' && c <= 'z' {
			c -= 0x20
		}
		query[i] = c
	}
	return query == [8]byte(sfn[:8])
}

// decodeEntryHeader parses the fixed SFN fields out of a raw 32-byte
// directory entry.
func decodeEntryHeader(raw []byte) entryHeader {
	var h entryHeader
	copy(h.Name[:], raw[0:11])
	h.Attribute = raw[11]
	h.NTReserved = raw[12]
	h.CreateTimeTenth = raw[13]
	h.CreateTime = loadU16(raw, 14)
	h.CreateDate = loadU16(raw, 16)
	h.LastAccessDate = loadU16(raw, 18)
	h.FirstClusterHI = loadU16(raw, 20)
	h.WriteTime = loadU16(raw, 22)
	h.WriteDate = loadU16(raw, 24)
	h.FirstClusterLO = loadU16(raw, 26)
	h.FileSize = loadU32(raw, 28)
	return h
}

// firstCluster combines an SFN entry's high/low first-cluster halves.
func (h entryHeader) firstCluster() uint32 {
	return uint32(h.FirstClusterHI)<<16 | uint32(h.FirstClusterLO)
}

// infoFromHeader builds a public Info record from a decoded SFN header and
// (if one preceded it) the assembled LFN name.
func infoFromHeader(h entryHeader, lfnName string) Info {
	name := lfnName
	if name == "" {
		name = sfnDisplayName(h.Name)
	}

	return Info{
		Name:            name,
		Attribute:       h.Attribute,
		IsDir:           h.Attribute&attrDir != 0,
		IsVolumeID:      h.Attribute&attrVolumeID != 0 && h.Attribute&attrLFN != attrLFN,
		CreateTimeTenth: h.CreateTimeTenth,
		CreateTime:      combineDateTime(h.CreateDate, h.CreateTime),
		WriteTime:       combineDateTime(h.WriteDate, h.WriteTime),
		AccessTime:      combineDateTime(h.LastAccessDate, 0),
		Size:            h.FileSize,
	}
}

func combineDateTime(date, clock uint16) time.Time {
	d := ParseDate(date)
	if d.IsZero() {
		return time.Time{}
	}
	t := ParseTime(clock)
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
