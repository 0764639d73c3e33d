package fat32

import "github.com/sirupsen/logrus"

// sectorCache holds exactly one sector of a volume in memory: its raw
// bytes, the LBA it mirrors, and whether it has been written since the
// last flush. All higher-level code must call ensure before touching
// buffer, and must call markDirty after writing into buffer if it
// intends to dirty it, so the dirty flag never lies.
type sectorCache struct {
	dev    BlockDevice
	log    logrus.FieldLogger
	buffer []byte
	lba    uint32
	valid  bool
	dirty  bool
}

func newSectorCache(dev BlockDevice, sectorSize uint16, log logrus.FieldLogger) *sectorCache {
	return &sectorCache{
		dev:    dev,
		log:    log,
		buffer: make([]byte, sectorSize),
	}
}

// ensure makes the cache mirror lba, flushing a dirty sector first if the
// LBA is changing. After ensure returns without error, c.buffer holds
// exactly the bytes of sector lba.
func (c *sectorCache) ensure(lba uint32) error {
	if c.valid && c.lba == lba {
		return nil
	}

	if err := c.flush(); err != nil {
		return err
	}

	if err := c.dev.Read(c.buffer, lba, 1); err != nil {
		// Leave the cache marked invalid so the next ensure retries the
		// fetch instead of trusting stale bytes.
		c.valid = false
		return err
	}

	c.lba = lba
	c.valid = true
	c.log.WithField("lba", lba).Debug("sector cache fetch")
	return nil
}

// flush writes the buffer back if it is dirty and clears the flag.
func (c *sectorCache) flush() error {
	if !c.dirty {
		return nil
	}

	if err := c.dev.Write(c.buffer, c.lba, 1); err != nil {
		return err
	}

	c.dirty = false
	c.log.WithField("lba", c.lba).Debug("sector cache flush")
	return nil
}

// markDirty flags the currently cached sector as modified. Callers must
// have already written their change into c.buffer.
func (c *sectorCache) markDirty() {
	c.dirty = true
}
