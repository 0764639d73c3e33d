package fat32

import (
	"io"

	"github.com/embeddedgo/fat32/checkpoint"
)

// DirHandle is a cursor into a directory's cluster chain.
type DirHandle struct {
	vol         *Volume
	startSector uint32
	cluster     uint32
	sector      uint32
	offset      uint32
}

// DirOpen resolves path to a directory and returns a cursor positioned at
// its first entry.
func DirOpen(path string) (*DirHandle, error) {
	vol, entry, err := resolvePath(path)
	if err != nil {
		return nil, err
	}
	if !entry.isDir {
		return nil, checkpoint.From(ErrPathError)
	}

	startSector := vol.clusterToSector(entry.cluster)
	return &DirHandle{
		vol:         vol,
		startSector: startSector,
		cluster:     entry.cluster,
		sector:      startSector,
	}, nil
}

func (d *DirHandle) cursor() *cursor {
	return &cursor{vol: d.vol, cluster: d.cluster, sector: d.sector, offset: d.offset}
}

func (d *DirHandle) syncFrom(c *cursor) {
	d.cluster = c.cluster
	d.sector = c.sector
	d.offset = c.offset
}

// Read decodes one logical directory entry: an LFN chain is accumulated
// across entries and stitched to its anchor SFN. It returns io.EOF at the
// 0x00 terminator, and ErrChecksumMismatch if an LFN chain's checksum
// does not match its anchor (a strict policy, unlike the forgiving one
// dirSearch uses for lookup).
func (d *DirHandle) Read(info *Info) error {
	c := d.cursor()
	defer d.syncFrom(c)

	var lfnCRC byte
	var lfnUnits [20][13]uint16 // 20 fragments covers the full 255-UCS-2-unit LFN name
	var lfnFragments int

	for {
		if err := d.vol.cache.ensure(c.sector); err != nil {
			return checkpoint.Wrap(err, ErrPathError)
		}
		raw := d.vol.cache.buffer[c.offset : c.offset+32]

		switch classifyEntry(raw) {
		case entryKindFree:
			return io.EOF

		case entryKindDeleted:
			lfnCRC = 0
			lfnFragments = 0

		case entryKindLFN:
			frag := decodeLFNFragment(raw)
			if frag.sequence >= 1 && frag.sequence <= len(lfnUnits) {
				lfnUnits[frag.sequence-1] = frag.units
				if frag.sequence > lfnFragments {
					lfnFragments = frag.sequence
				}
			}
			lfnCRC = frag.checksum

		case entryKindSFN:
			if lfnCRC != 0 {
				if lfnCRC != lfnChecksum(raw[0:11]) {
					return checkpoint.From(ErrChecksumMismatch)
				}
			}

			h := decodeEntryHeader(raw)
			var name string
			if lfnCRC != 0 {
				name = assembleLFNName(lfnUnits[:lfnFragments])
			}
			*info = infoFromHeader(h, name)

			if err := c.advanceDirEntry(); err != nil {
				// The entry itself was fully valid; running off the end
				// of the chain only matters for the *next* Read call.
			}
			return nil
		}

		if err := c.advanceDirEntry(); err != nil {
			return io.EOF
		}
	}
}

// assembleLFNName concatenates decoded LFN fragments (indexed 0-based by
// sequence-1, highest sequence first on disk but assembled low-to-high
// here since fragments carries them in name order) into the full name.
func assembleLFNName(fragments [][13]uint16) string {
	units := make([]uint16, 0, len(fragments)*13)
	for _, f := range fragments {
		units = append(units, f[:]...)
	}
	return ucs2ToString(units)
}

// Close flushes the owning volume's cache.
func (d *DirHandle) Close() error {
	return d.vol.cache.flush()
}
