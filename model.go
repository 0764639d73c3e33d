// File model contains the structs which match the direct on-disk structures
// of the FAT32 file system: the MBR partition table, the BPB/FSInfo sectors,
// and the 32-byte directory entry formats.
package fat32

// mbrPartition is one of the four 16-byte partition records starting at
// byte 446 of the MBR.
type mbrPartition struct {
	Status byte
	_      [3]byte
	Type   byte
	_      [3]byte
	LBA    uint32
	Size   uint32
}

// bpb mirrors the BIOS Parameter Block shared by FAT16 and FAT32, followed
// by the FAT32-specific extension. Field order and sizes follow the on-disk
// layout exactly; no struct tags are needed because decoding goes through
// the endian codec, not encoding/binary.Read, so the struct never needs to
// be alignment-compatible with the wire format.
type bpb struct {
	BSJumpBoot          [3]byte
	BSOEMName           [8]byte
	BytesPerSector      uint16
	SectorsPerCluster   byte
	ReservedSectorCount uint16
	NumFATs             byte
	RootEntryCount      uint16
	TotalSectors16      uint16
	Media               byte
	FATSize16           uint16
	SectorsPerTrack     uint16
	NumberOfHeads       uint16
	HiddenSectors       uint32
	TotalSectors32      uint32

	FAT32 fat32SpecificData
}

// fat32SpecificData is the part of the BPB that only exists for FAT32
// volumes, starting at offset 36.
type fat32SpecificData struct {
	FATSize32        uint32
	ExtFlags         uint16
	FSVersion        uint16
	RootCluster      uint32
	FSInfoSector     uint16
	BkBootSector     uint16
	Reserved         [12]byte
	BSDriveNumber    byte
	BSReserved1      byte
	BSBootSignature  byte
	BSVolumeID       uint32
	BSVolumeLabel    [11]byte
	BSFileSystemType [8]byte
}

// entryHeader is the 32-byte short-name (SFN) directory entry.
type entryHeader struct {
	Name            [11]byte
	Attribute       byte
	NTReserved      byte
	CreateTimeTenth byte
	CreateTime      uint16
	CreateDate      uint16
	LastAccessDate  uint16
	FirstClusterHI  uint16
	WriteTime       uint16
	WriteDate       uint16
	FirstClusterLO  uint16
	FileSize        uint32
}

// longFilenameEntry is the 32-byte long-name (LFN) directory entry. It
// carries 13 UCS-2 code units at fixed offsets, split by gaps where the
// attribute, checksum, and reserved bytes sit; the three named slices
// below line up with those offsets without needing to spell them out
// again at the call site.
type longFilenameEntry struct {
	Sequence  byte
	First     [5]uint16 // offsets 1,3,5,7,9
	Attribute byte
	EntryType byte
	Checksum  byte
	Second    [6]uint16 // offsets 14,16,18,20,22,24
	Zero      [2]byte
	Third     [2]uint16 // offsets 28,30
}

// fsInfoSector mirrors the reserved-region FSInfo sector used by the
// free-cluster allocator.
type fsInfoSector struct {
	LeadSignature  uint32
	_              [480]byte
	InnerSignature uint32
	FreeCount      uint32
	NextFree       uint32
	_              [12]byte
	TrailSignature uint32
}

// ExtendedEntryHeader is one fully decoded directory entry: the raw SFN
// header plus, if an LFN chain preceded it, the reconstructed long name.
type ExtendedEntryHeader struct {
	entryHeader
	ExtendedName string
}

// decodeMBRPartition decodes one 16-byte partition record from the MBR at
// the given byte offset (446, 462, 478, or 494).
func decodeMBRPartition(b []byte, off int) mbrPartition {
	return mbrPartition{
		Status: b[off],
		Type:   b[off+4],
		LBA:    loadU32(b, off+8),
		Size:   loadU32(b, off+12),
	}
}

// decodeBPB decodes the BIOS Parameter Block (and its FAT32 extension) from
// a raw boot sector.
func decodeBPB(b []byte) bpb {
	return bpb{
		BytesPerSector:      loadU16(b, 11),
		SectorsPerCluster:   b[13],
		ReservedSectorCount: loadU16(b, 14),
		NumFATs:             b[16],
		RootEntryCount:      loadU16(b, 17),
		TotalSectors16:      loadU16(b, 19),
		Media:               b[21],
		FATSize16:           loadU16(b, 22),
		SectorsPerTrack:     loadU16(b, 24),
		NumberOfHeads:       loadU16(b, 26),
		HiddenSectors:       loadU32(b, 28),
		TotalSectors32:      loadU32(b, 32),

		FAT32: fat32SpecificData{
			FATSize32:       loadU32(b, 36),
			ExtFlags:        loadU16(b, 40),
			FSVersion:       loadU16(b, 42),
			RootCluster:     loadU32(b, 44),
			FSInfoSector:    loadU16(b, 48),
			BkBootSector:    loadU16(b, 50),
			BSDriveNumber:   b[64],
			BSBootSignature: b[66],
			BSVolumeID:      loadU32(b, 67),
			BSVolumeLabel:   [11]byte(b[71:82]),
		},
	}
}

// totalSectors returns whichever of the 16-bit/32-bit total-sector fields
// is populated; the 16-bit field is always zero on a FAT32 volume, but the
// heuristic in recognizeFAT32 also runs against FAT16 boot sectors.
func (b bpb) totalSectors() uint32 {
	if b.TotalSectors16 != 0 {
		return uint32(b.TotalSectors16)
	}
	return b.TotalSectors32
}

// fatSizeSectors returns whichever of the 16-bit/32-bit FAT-size fields is
// populated.
func (b bpb) fatSizeSectors() uint32 {
	if b.FATSize16 != 0 {
		return uint32(b.FATSize16)
	}
	return b.FAT32.FATSize32
}

// decodeFSInfo decodes the FSInfo sector's three signatures and the two
// fields the allocator consults: the free-cluster count and the next-free
// hint.
func decodeFSInfo(b []byte) fsInfoSector {
	return fsInfoSector{
		LeadSignature:  loadU32(b, 0),
		InnerSignature: loadU32(b, 484),
		FreeCount:      loadU32(b, 488),
		NextFree:       loadU32(b, 492),
		TrailSignature: loadU32(b, 508),
	}
}

// encodeFSInfo writes the allocator-mutable fields of an fsInfoSector back
// into a raw sector buffer, leaving the rest of the sector untouched.
func encodeFSInfo(b []byte, info fsInfoSector) {
	storeU32(b, 488, info.FreeCount)
	storeU32(b, 492, info.NextFree)
}

const (
	attrReadOnly = 0x01
	attrHidden   = 0x02
	attrSystem   = 0x04
	attrVolumeID = 0x08
	attrDir      = 0x10
	attrArchive  = 0x20
	attrLFN      = 0x0F

	entryFree    = 0x00
	entryDeleted = 0xE5
	// entryDeletedEscaped encodes a deleted entry whose real first byte
	// is 0xE5 (which would otherwise be confused with a Kanji lead byte).
	entryDeletedEscaped = 0x05

	lfnSeqMask = 0x1F
	lfnLastBit = 0x40
)
