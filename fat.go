package fat32

import "github.com/embeddedgo/fat32/checkpoint"

// fatEntry is a raw 32-bit FAT table value. Only the low 28 bits are
// meaningful; the top four bits are reserved and must be preserved on
// write.
type fatEntry uint32

const (
	fatEntryMask     = 0x0FFFFFFF
	fatFreeValue     = 0x00000000
	fatEOCValue      = 0x0FFFFFFF
	fatBadClusterVal = 0x0FFFFFF7
)

// Value returns the meaningful low 28 bits of the entry.
func (e fatEntry) Value() uint32 {
	return uint32(e) & fatEntryMask
}

// IsFree reports whether the entry marks its cluster as unallocated.
func (e fatEntry) IsFree() bool {
	return e.Value() == fatFreeValue
}

// IsReservedTemp reports whether the entry is the always-reserved value 1.
func (e fatEntry) IsReservedTemp() bool {
	return e.Value() == 0x00000001
}

// IsNextCluster reports whether the entry points at another cluster in the
// chain.
func (e fatEntry) IsNextCluster() bool {
	v := e.Value()
	return v >= 0x00000002 && v <= 0x0FFFFFEF
}

// IsReservedSometimes reports whether the entry falls in the
// implementation-defined reserved range just below the bad-cluster marker.
func (e fatEntry) IsReservedSometimes() bool {
	v := e.Value()
	return v >= 0x0FFFFFF0 && v <= 0x0FFFFFF6
}

// IsReserved reports whether the entry is any reserved (non-chain,
// non-free, non-EOC, non-bad) value.
func (e fatEntry) IsReserved() bool {
	return e.IsReservedTemp() || e.IsReservedSometimes()
}

// IsBad reports whether the entry marks its cluster as bad media.
func (e fatEntry) IsBad() bool {
	return e.Value() == fatBadClusterVal
}

// IsEOF reports whether the entry is an end-of-chain marker: its low 28
// bits fall in [0x0FFFFFF8, 0x0FFFFFFF].
func (e fatEntry) IsEOF() bool {
	v := e.Value()
	return v >= 0x0FFFFFF8 && v <= 0x0FFFFFFF
}

// ReadAsNextCluster returns (cluster, true) if the entry is a chain
// pointer, or (0, false) otherwise.
func (e fatEntry) ReadAsNextCluster() (uint32, bool) {
	if !e.IsNextCluster() {
		return 0, false
	}
	return e.Value(), true
}

// ReadAsEOF reports whether the entry terminates a chain.
func (e fatEntry) ReadAsEOF() bool {
	return e.IsEOF()
}

// fatSectorFor returns the LBA and byte offset of the 32-bit entry for
// cluster, within the first FAT copy (entries-per-sector = sectorSize/4).
func (v *Volume) fatSectorFor(cluster uint32) (lba uint32, offset int) {
	entriesPerSector := uint32(v.sectorSize) / 4
	return v.fatLBA + cluster/entriesPerSector, int(cluster%entriesPerSector) * 4
}

// fatGet loads the FAT entry for cluster.
func (v *Volume) fatGet(cluster uint32) (fatEntry, error) {
	lba, offset := v.fatSectorFor(cluster)
	if err := v.cache.ensure(lba); err != nil {
		return 0, checkpoint.Wrap(err, ErrCorruptChain)
	}
	return fatEntry(loadU32(v.cache.buffer, offset)), nil
}

// fatSet overwrites the FAT entry for cluster in the first FAT copy only,
// preserving the reserved top four bits of whatever was previously stored
// there, then flushes. Callers that mutate cluster-chain links should go
// through fatSetMirrored instead, so every FAT copy stays in sync.
func (v *Volume) fatSet(cluster uint32, value uint32) error {
	lba, offset := v.fatSectorFor(cluster)
	if err := v.cache.ensure(lba); err != nil {
		return checkpoint.Wrap(err, ErrCorruptChain)
	}

	prior := loadU32(v.cache.buffer, offset)
	merged := (value & fatEntryMask) | (prior &^ fatEntryMask)
	storeU32(v.cache.buffer, offset, merged)
	v.cache.markDirty()

	return v.cache.flush()
}

// fatSetMirrored writes value into cluster's entry in every FAT copy, so a
// dismount or fsck reading the second copy sees the same chain state as
// the first. It is what allocateCluster and any other link-editing code
// should call instead of fatSet directly.
func (v *Volume) fatSetMirrored(cluster uint32, value uint32) error {
	if v.numFATs == 0 || v.fatSize == 0 {
		return v.fatSet(cluster, value)
	}

	entriesPerSector := uint32(v.sectorSize) / 4
	relSector := cluster / entriesPerSector
	offset := int(cluster%entriesPerSector) * 4

	for i := uint8(0); i < v.numFATs; i++ {
		lba := v.fatLBA + uint32(i)*v.fatSize + relSector
		if lba >= v.dataLBA {
			break
		}
		if err := v.cache.ensure(lba); err != nil {
			return checkpoint.Wrap(err, ErrCorruptChain)
		}
		prior := loadU32(v.cache.buffer, offset)
		merged := (value & fatEntryMask) | (prior &^ fatEntryMask)
		storeU32(v.cache.buffer, offset, merged)
		v.cache.markDirty()
		if err := v.cache.flush(); err != nil {
			return err
		}
	}
	return nil
}
