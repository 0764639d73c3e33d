package fat32

import (
	"encoding/binary"
	"fmt"
)

// fakeDevice is an in-memory BlockDevice backed by a flat byte slice, used
// throughout this package's tests in place of a real disk.
type fakeDevice struct {
	buf              []byte
	statusErr        error
	failReadAtLBA    uint32
	initializeCalled bool
}

func newFakeDevice(sectorCount uint32) *fakeDevice {
	return &fakeDevice{buf: make([]byte, sectorCount*512)}
}

func (d *fakeDevice) Read(buf []byte, lba uint32, count uint32) error {
	if d.failReadAtLBA != 0 && lba == d.failReadAtLBA {
		return fmt.Errorf("fake device: simulated read failure at lba %d", lba)
	}
	off := int(lba) * 512
	n := int(count) * 512
	copy(buf[:n], d.buf[off:off+n])
	return nil
}

func (d *fakeDevice) Write(buf []byte, lba uint32, count uint32) error {
	off := int(lba) * 512
	n := int(count) * 512
	copy(d.buf[off:off+n], buf[:n])
	return nil
}

func (d *fakeDevice) Status() error {
	return d.statusErr
}

func (d *fakeDevice) Initialize() error {
	d.initializeCalled = true
	return nil
}

func putU16(b []byte, off int, v uint16) { binary.LittleEndian.PutUint16(b[off:], v) }
func putU32(b []byte, off int, v uint32) { binary.LittleEndian.PutUint32(b[off:], v) }

// testImageLayout names the geometry of the synthetic single-partition
// FAT32 image buildTestImage assembles, so tests can compute expected LBAs
// without re-deriving the arithmetic that newVolumeFromBPB also performs.
type testImageLayout struct {
	partitionLBA uint32
	fatLBA       uint32
	dataLBA      uint32
	fatSize      uint32
	rootCluster  uint32
	fileCluster  uint32
	subdirCluster uint32
}

// buildTestImage assembles a minimal but fully addressable FAT32 volume in
// memory: MBR, BPB, FSInfo, two mirrored FAT copies, a root directory
// containing one subdirectory ("SUBDIR") and one LFN-named file
// ("hello.txt", contents "hi\n"), and the subdirectory containing one
// short-named file ("NOTENOTE.TXT", contents "a").
func buildTestImage() (*fakeDevice, testImageLayout) {
	const (
		sectorSize      = 512
		sectorsPerClust = 1
		reservedSectors = 32
		numFATs         = 2
		totalClusters   = 65536
		partitionLBA    = 1
		rootCluster     = 2
		fileCluster     = 3
		subdirCluster   = 4
		subfileCluster  = 5
	)

	entries := uint32(totalClusters) + 2
	fatSize := (entries*4 + sectorSize - 1) / sectorSize
	fatLBA := uint32(partitionLBA + reservedSectors)
	dataLBA := fatLBA + fatSize*numFATs
	dataSectors := uint32(totalClusters) * sectorsPerClust
	partitionSectors := reservedSectors + fatSize*numFATs + dataSectors

	dev := newFakeDevice(uint32(partitionLBA) + partitionSectors)

	// MBR
	mbr := make([]byte, sectorSize)
	off := 446
	mbr[off] = 0x80
	mbr[off+4] = 0x0C
	putU32(mbr, off+8, partitionLBA)
	putU32(mbr, off+12, partitionSectors)
	putU16(mbr, 510, 0xAA55)
	dev.Write(mbr, 0, 1)

	// BPB
	bpb := make([]byte, sectorSize)
	bpb[0], bpb[1], bpb[2] = 0xEB, 0x58, 0x90
	copy(bpb[3:11], []byte("TESTFAT "))
	putU16(bpb, 11, sectorSize)
	bpb[13] = sectorsPerClust
	putU16(bpb, 14, reservedSectors)
	bpb[16] = numFATs
	putU16(bpb, 17, 0)
	putU16(bpb, 19, 0)
	bpb[21] = 0xF8
	putU16(bpb, 22, 0)
	putU32(bpb, 32, partitionSectors)
	putU32(bpb, 36, fatSize)
	putU32(bpb, 44, rootCluster)
	putU16(bpb, 48, 1)
	copy(bpb[71:82], []byte("NO NAME    "))
	copy(bpb[82:90], []byte("FAT32   "))
	putU16(bpb, 510, 0xAA55)
	dev.Write(bpb, partitionLBA, 1)

	// FSInfo
	fsInfo := make([]byte, sectorSize)
	putU32(fsInfo, 0, 0x41615252)
	putU32(fsInfo, 484, 0x61417272)
	putU32(fsInfo, 488, uint32(totalClusters)-4)
	putU32(fsInfo, 492, subfileCluster+1)
	putU32(fsInfo, 508, 0xAA550000)
	dev.Write(fsInfo, partitionLBA+1, 1)

	markEOC := func(cluster uint32) {
		for copyIdx := uint32(0); copyIdx < numFATs; copyIdx++ {
			sector := make([]byte, sectorSize)
			dev.Read(sector, fatLBA+copyIdx*fatSize, 1)
			putU32(sector, int(cluster)*4, 0x0FFFFFFF)
			dev.Write(sector, fatLBA+copyIdx*fatSize, 1)
		}
	}
	for copyIdx := uint32(0); copyIdx < numFATs; copyIdx++ {
		sector := make([]byte, sectorSize)
		putU32(sector, 0, 0x0FFFFFF8)
		putU32(sector, 4, 0x0FFFFFFF)
		dev.Write(sector, fatLBA+copyIdx*fatSize, 1)
	}
	markEOC(rootCluster)
	markEOC(fileCluster)
	markEOC(subdirCluster)
	markEOC(subfileCluster)

	sectorFor := func(cluster uint32) uint32 { return dataLBA + (cluster-2)*sectorsPerClust }

	// Root directory: a volume label, one LFN-named file, one subdirectory.
	root := make([]byte, sectorSize)
	writeVolumeLabel(root[0:32], "TESTVOL")
	writeLFNFile(root[32:96], "hello.txt", fileCluster, []byte("hi\n"))
	writeShortDir(root[96:128], "SUBDIR", subdirCluster)
	dev.Write(root, sectorFor(rootCluster), 1)

	// File data.
	fileSector := make([]byte, sectorSize)
	copy(fileSector, "hi\n")
	dev.Write(fileSector, sectorFor(fileCluster), 1)

	// Subdirectory: one file whose 8.3 base is exactly 8 characters, so
	// its dot-inclusive fragment string still matches the plain SFN
	// compare (only the first 8 raw query bytes are ever compared, so a
	// shorter base with an embedded dot never lines up against the
	// space-padded SFN bytes).
	subdir := make([]byte, sectorSize)
	writeShortFile(subdir[0:32], "NOTENOTE.TXT", subfileCluster, []byte("a"))
	dev.Write(subdir, sectorFor(subdirCluster), 1)

	subfileSector := make([]byte, sectorSize)
	copy(subfileSector, "a")
	dev.Write(subfileSector, sectorFor(subfileCluster), 1)

	return dev, testImageLayout{
		partitionLBA:  partitionLBA,
		fatLBA:        fatLBA,
		dataLBA:       dataLBA,
		fatSize:       fatSize,
		rootCluster:   rootCluster,
		fileCluster:   fileCluster,
		subdirCluster: subdirCluster,
	}
}

// writeLFNFile writes a one-fragment LFN entry plus its anchor SFN into a
// 64-byte span (two 32-byte slots).
func writeLFNFile(span []byte, name string, cluster uint32, content []byte) {
	sfn := shortNameFor(name)

	lfnOffsets := [13]int{1, 3, 5, 7, 9, 14, 16, 18, 20, 22, 24, 28, 30}
	lfn := span[0:32]
	lfn[0] = 0x01 | 0x40
	for i, o := range lfnOffsets {
		switch {
		case i < len(name):
			putU16(lfn, o, uint16(name[i]))
		case i == len(name):
			putU16(lfn, o, 0x0000)
		default:
			putU16(lfn, o, 0xFFFF)
		}
	}
	lfn[11] = 0x0F
	lfn[13] = sfnChecksumFor(sfn)

	entry := span[32:64]
	writeSFNEntry(entry, sfn, 0x20, cluster, uint32(len(content)))
}

func writeShortFile(span []byte, name string, cluster uint32, content []byte) {
	writeSFNEntry(span, shortNameFor(name), 0x20, cluster, uint32(len(content)))
}

// writeVolumeLabel writes an ATTR_VOLUME_ID entry carrying an 11-byte
// space-padded label into a 32-byte span.
func writeVolumeLabel(span []byte, label string) {
	sfn := shortNameFor(label)
	copy(span[0:11], sfn[:])
	span[11] = 0x08
}

func writeShortDir(span []byte, name string, cluster uint32) {
	writeSFNEntry(span, shortNameFor(name), 0x10, cluster, 0)
}

func writeSFNEntry(span []byte, sfn [11]byte, attr byte, cluster, size uint32) {
	copy(span[0:11], sfn[:])
	span[11] = attr
	putU16(span, 20, uint16(cluster>>16))
	putU16(span, 26, uint16(cluster&0xFFFF))
	putU32(span, 28, size)
}

// shortNameFor builds an 11-byte space-padded 8.3 name from "BASE.EXT" or a
// bare "BASE", uppercased.
func shortNameFor(name string) [11]byte {
	var out [11]byte
	for i := range out {
		out[i] = ' '
	}
	base, ext := name, ""
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			base, ext = name[:i], name[i+1:]
			break
		}
	}
	upper := func(s string) string {
		b := []byte(s)
		for i, c := range b {
			if c >= 'a' && c <= 'z' {
				b[i] = c - 0x20
			}
		}
		return string(b)
	}
	copy(out[0:8], upper(base))
	copy(out[8:11], upper(ext))
	return out
}

func sfnChecksumFor(sfn [11]byte) byte {
	var crc byte
	for _, c := range sfn {
		crc = ((crc & 1) << 7) + (crc >> 1) + c
	}
	return crc
}
