// Command generate builds a minimal synthetic FAT32 disk image under
// testdata/, for use by cmd/example and by hand during development. Run it
// from the project root with 'go run ./cmd/generate'; there is no upstream
// fixture to extract, so this replaces one from scratch.
package main

import (
	"encoding/binary"
	"os"
)

const (
	sectorSize      = 512
	sectorsPerClust = 1
	reservedSectors = 32
	numFATs         = 2
	totalClusters   = 65536 // clears the FAT32 65525-cluster floor
	partitionLBA    = 1
	rootCluster     = 2
	fileCluster     = 3
)

func putU16(b []byte, off int, v uint16) { binary.LittleEndian.PutUint16(b[off:], v) }
func putU32(b []byte, off int, v uint32) { binary.LittleEndian.PutUint32(b[off:], v) }

func fatSizeSectors() uint32 {
	entries := uint32(totalClusters) + 2
	return (entries*4 + sectorSize - 1) / sectorSize
}

func main() {
	if err := os.MkdirAll("testdata", 0o755); err != nil {
		panic(err)
	}

	fatSize := fatSizeSectors()
	fatLBA := uint32(partitionLBA + reservedSectors)
	dataLBA := fatLBA + fatSize*numFATs
	dataSectors := uint32(totalClusters) * sectorsPerClust
	partitionSectors := reservedSectors + fatSize*numFATs + dataSectors

	f, err := os.Create("testdata/fat32.img")
	if err != nil {
		panic(err)
	}
	defer f.Close()

	imageSectors := int64(partitionLBA) + int64(partitionSectors)
	if err := f.Truncate(imageSectors * sectorSize); err != nil {
		panic(err)
	}

	writeSector(f, 0, mbrSector(partitionSectors))
	writeSector(f, partitionLBA, bpbSector(fatSize, dataSectors+reservedSectors+fatSize*numFATs))

	fsInfo := make([]byte, sectorSize)
	putU32(fsInfo, 0, 0x41615252)
	putU32(fsInfo, 484, 0x61417272)
	putU32(fsInfo, 488, uint32(totalClusters)-2) // free count, excluding root+file
	putU32(fsInfo, 492, fileCluster+1)           // next-free hint
	putU32(fsInfo, 508, 0xAA550000)
	writeSector(f, partitionLBA+1, fsInfo)

	// FAT: mark root and the one file cluster as end-of-chain, in both
	// copies. Everything else stays zero (free) via the sparse truncate.
	for copyIdx := uint32(0); copyIdx < numFATs; copyIdx++ {
		fat := make([]byte, sectorSize)
		putU32(fat, 0, 0x0FFFFFF8) // cluster 0 media descriptor + reserved bits
		putU32(fat, 4, 0x0FFFFFFF) // cluster 1 reserved
		putU32(fat, int(rootCluster)*4, 0x0FFFFFFF)
		putU32(fat, int(fileCluster)*4, 0x0FFFFFFF)
		writeSector(f, fatLBA+copyIdx*fatSize, fat)
	}

	rootSector := make([]byte, sectorSize)
	writeReadmeEntry(rootSector)
	writeSector(f, dataLBA+(rootCluster-2)*sectorsPerClust, rootSector)

	content := []byte("hello from a generated FAT32 volume\n")
	fileSector := make([]byte, sectorSize)
	copy(fileSector, content)
	writeSector(f, dataLBA+(fileCluster-2)*sectorsPerClust, fileSector)
}

func writeSector(f *os.File, lba uint32, buf []byte) {
	if _, err := f.WriteAt(buf, int64(lba)*sectorSize); err != nil {
		panic(err)
	}
}

func mbrSector(partitionSectors uint32) []byte {
	b := make([]byte, sectorSize)
	off := 446
	b[off] = 0x80 // bootable
	b[off+4] = 0x0C // FAT32 LBA partition type
	putU32(b, off+8, partitionLBA)
	putU32(b, off+12, partitionSectors)
	putU16(b, 510, 0xAA55)
	return b
}

func bpbSector(fatSize, totalSectors uint32) []byte {
	b := make([]byte, sectorSize)
	b[0] = 0xEB
	b[1] = 0x58
	b[2] = 0x90
	copy(b[3:11], []byte("GOFAT32 "))
	putU16(b, 11, sectorSize)
	b[13] = sectorsPerClust
	putU16(b, 14, reservedSectors)
	b[16] = numFATs
	putU16(b, 17, 0) // FAT32 root entry count is always 0
	putU16(b, 19, 0) // total sectors lives in the 32-bit field
	b[21] = 0xF8
	putU16(b, 22, 0) // FAT size lives in the 32-bit field
	putU16(b, 24, 63)
	putU16(b, 26, 255)
	putU32(b, 28, 0)
	putU32(b, 32, totalSectors)

	putU32(b, 36, fatSize)
	putU16(b, 40, 0)
	putU16(b, 42, 0)
	putU32(b, 44, rootCluster)
	putU16(b, 48, 1) // FSInfo sector, relative to partition start
	putU16(b, 50, 6) // backup boot sector
	b[64] = 0x80
	b[66] = 0x29
	putU32(b, 67, 0x12345678)
	copy(b[71:82], []byte("NO NAME    "))
	copy(b[82:90], []byte("FAT32   "))

	putU16(b, 510, 0xAA55)
	return b
}

// writeReadmeEntry writes an LFN fragment plus its anchor SFN naming
// "README.md", exercised by cmd/example. The SFN alone would only ever be
// compared against its first 8 raw bytes, so the exact mixed-case, dotted
// name is only reachable through the LFN chain.
func writeReadmeEntry(sector []byte) {
	name := "README.md"
	sfn := [11]byte{'R', 'E', 'A', 'D', 'M', 'E', ' ', ' ', 'M', 'D', ' '}

	lfnOffsets := [13]int{1, 3, 5, 7, 9, 14, 16, 18, 20, 22, 24, 28, 30}
	lfn := make([]byte, 32)
	lfn[0] = 0x01 | 0x40 // sequence 1, last fragment
	for i, off := range lfnOffsets {
		if i < len(name) {
			putU16(lfn, off, uint16(name[i]))
		} else if i == len(name) {
			putU16(lfn, off, 0x0000)
		} else {
			putU16(lfn, off, 0xFFFF)
		}
	}
	lfn[11] = 0x0F // ATTR_LFN
	lfn[13] = sfnChecksum(sfn)
	copy(sector[0:32], lfn)

	entry := sector[32:64]
	copy(entry[0:11], sfn[:])
	entry[11] = 0x20 // ATTR_ARCHIVE
	putU32(entry, 28, uint32(len("hello from a generated FAT32 volume\n")))
	putU16(entry, 20, fileCluster>>16)
	putU16(entry, 26, fileCluster&0xFFFF)
}

func sfnChecksum(sfn [11]byte) byte {
	var crc byte
	for _, c := range sfn {
		crc = ((crc & 1) << 7) + (crc >> 1) + c
	}
	return crc
}
