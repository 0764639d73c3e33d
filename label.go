package fat32

import (
	"errors"

	"github.com/embeddedgo/fat32/checkpoint"
)

// errNoLabelEntry means the root directory has no ATTR_VOLUME_ID entry.
// Mount treats this as "unlabeled", not a failure.
var errNoLabelEntry = errors.New("fat32: no volume label entry in root")

func (v *Volume) rootCursor() *cursor {
	return &cursor{vol: v, cluster: v.rootCluster, sector: v.rootLBA}
}

// readLabelFromRoot scans the root directory for its ATTR_VOLUME_ID entry
// and stores the 11-byte label. An entry with attribute ATTR_LFN (0x0F)
// also carries the ATTR_VOLUME_ID bit and must be excluded, since a
// genuine LFN fragment is not a label.
func (v *Volume) readLabelFromRoot() error {
	c := v.rootCursor()

	for {
		if err := v.cache.ensure(c.sector); err != nil {
			return checkpoint.Wrap(err, errors.New("fat32: could not read root directory"))
		}
		raw := v.cache.buffer[c.offset : c.offset+32]

		if raw[0] == entryFree {
			return checkpoint.From(errNoLabelEntry)
		}

		attribute := raw[11]
		if attribute&attrVolumeID != 0 && attribute != attrLFN {
			copy(v.label[:], raw[0:11])
			return nil
		}

		if err := c.advanceDirEntry(); err != nil {
			return checkpoint.From(errNoLabelEntry)
		}
	}
}

// SetLabel writes label (truncated/space-padded to 11 bytes) into the
// root directory's ATTR_VOLUME_ID entry, if one exists, and updates the
// in-memory label regardless so Label() reflects the change immediately.
func (v *Volume) SetLabel(label string) error {
	var padded [11]byte
	for i := range padded {
		padded[i] = ' '
	}
	copy(padded[:], label)

	c := v.rootCursor()
	for {
		if err := v.cache.ensure(c.sector); err != nil {
			return checkpoint.Wrap(err, errors.New("fat32: could not read root directory"))
		}
		raw := v.cache.buffer[c.offset : c.offset+32]

		if raw[0] == entryFree {
			break
		}

		attribute := raw[11]
		if attribute&attrVolumeID != 0 && attribute != attrLFN {
			copy(raw[0:11], padded[:])
			v.cache.markDirty()
			if err := v.cache.flush(); err != nil {
				return err
			}
			v.label = padded
			return nil
		}

		if err := c.advanceDirEntry(); err != nil {
			break
		}
	}

	v.label = padded
	return nil
}
