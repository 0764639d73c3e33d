package fat32

import "github.com/embeddedgo/fat32/checkpoint"

// allocateCluster scans the FAT for a free cluster, starting from the
// FSInfo next-free hint: it scans strictly forward and returns on the
// very first free entry it finds, wraps once past the end of the FAT
// region, and reports ErrDiskFull if a full wrap finds nothing.
func (v *Volume) allocateCluster() (uint32, error) {
	if err := v.cache.ensure(v.infoLBA); err != nil {
		return 0, checkpoint.Wrap(err, ErrDiskFull)
	}
	info := decodeFSInfo(v.cache.buffer)

	entriesPerSector := uint32(v.sectorSize) / 4
	totalEntries := v.fatSize * entriesPerSector

	start := info.NextFree
	if start < 2 || start >= totalEntries {
		start = 2
	}

	cluster, found, err := v.scanFATForFree(start, totalEntries)
	if err != nil {
		return 0, err
	}
	if !found && start != 2 {
		// Wrap once: scan from the beginning of the data region up to
		// where we started.
		cluster, found, err = v.scanFATForFree(2, start)
		if err != nil {
			return 0, err
		}
	}
	if !found {
		return 0, checkpoint.From(ErrDiskFull)
	}

	if err := v.fatSetMirrored(cluster, fatEOCValue); err != nil {
		return 0, err
	}

	nextHint := cluster + 1
	if nextHint >= totalEntries {
		nextHint = 2
	}

	if err := v.cache.ensure(v.infoLBA); err != nil {
		return 0, checkpoint.Wrap(err, ErrDiskFull)
	}
	info.NextFree = nextHint
	if info.FreeCount != 0xFFFFFFFF && info.FreeCount > 0 {
		info.FreeCount--
	}
	encodeFSInfo(v.cache.buffer, info)
	v.cache.markDirty()
	if err := v.cache.flush(); err != nil {
		return 0, err
	}

	v.log.WithField("cluster", cluster).Debug("allocated cluster")
	return cluster, nil
}

// scanFATForFree scans cluster entries in [from, to) for the first entry
// whose low 7 bits are zero, a conservative free test that also matches a
// truly-free 0x00000000 entry.
func (v *Volume) scanFATForFree(from, to uint32) (uint32, bool, error) {
	for cluster := from; cluster < to; cluster++ {
		entry, err := v.fatGet(cluster)
		if err != nil {
			return 0, false, err
		}
		if uint32(entry)&0x7F == 0 {
			return cluster, true, nil
		}
	}
	return 0, false, nil
}
