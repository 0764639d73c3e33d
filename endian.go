package fat32

import "encoding/binary"

// loadU16 and loadU32 read little-endian integers out of an on-disk byte
// buffer. storeU16 and storeU32 do the reverse. No alignment is assumed;
// on-disk layout never depends on host endianness.
func loadU16(b []byte, offset int) uint16 {
	return binary.LittleEndian.Uint16(b[offset : offset+2])
}

func loadU32(b []byte, offset int) uint32 {
	return binary.LittleEndian.Uint32(b[offset : offset+4])
}

func storeU16(b []byte, offset int, v uint16) {
	binary.LittleEndian.PutUint16(b[offset:offset+2], v)
}

func storeU32(b []byte, offset int, v uint32) {
	binary.LittleEndian.PutUint32(b[offset:offset+4], v)
}
