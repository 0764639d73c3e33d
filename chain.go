package fat32

import "github.com/embeddedgo/fat32/checkpoint"

// cursor is the (cluster, sector, byte-offset) triple shared by directory
// and file handles.
type cursor struct {
	vol     *Volume
	cluster uint32
	sector  uint32
	offset  uint32 // byte offset within sector
}

// errEndOfChain signals that advancing the cursor walked off the end of
// its cluster chain. It is an internal sentinel, not part of the public
// error taxonomy: directory code turns it into io.EOF, file code turns it
// into ErrCorruptChain (seeking or reading past a chain that should still
// have data left).
var errEndOfChain = checkpoint.From(ErrCorruptChain)

// advance moves the cursor forward by n bytes, crossing sector and
// cluster boundaries via the FAT as needed. It is the single stepping
// primitive behind both advanceDirEntry (n == 32) and file reads (n == 1
// per byte, or a caller-requested jump).
func (c *cursor) advance(n uint32) error {
	c.offset += n
	for c.offset >= uint32(c.vol.sectorSize) {
		c.offset -= uint32(c.vol.sectorSize)
		c.sector++

		clusterEnd := c.vol.clusterToSector(c.cluster) + c.vol.clusterSize
		if c.sector >= clusterEnd {
			entry, err := c.vol.fatGet(c.cluster)
			if err != nil {
				return err
			}
			if entry.IsEOF() {
				return errEndOfChain
			}
			next, ok := entry.ReadAsNextCluster()
			if !ok {
				return checkpoint.From(ErrCorruptChain)
			}
			c.cluster = next
			c.sector = c.vol.clusterToSector(next)
		}
	}
	return nil
}

// advanceDirEntry moves the cursor past one 32-byte directory entry.
func (c *cursor) advanceDirEntry() error {
	return c.advance(32)
}

// readByte returns the byte at the cursor's current position without
// advancing, reading through the sector cache.
func (c *cursor) readByte() (byte, error) {
	if err := c.vol.cache.ensure(c.sector); err != nil {
		return 0, err
	}
	return c.vol.cache.buffer[c.offset], nil
}
