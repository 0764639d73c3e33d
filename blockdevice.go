package fat32

// BlockDevice is the narrow, synchronous collaborator this driver mounts
// on top of. It is intentionally the only external polymorphism in the
// package: no caching, retry, or concurrency policy lives behind it, that
// is the sector cache's job.
//
// Generated mock using mockgen:
//
//	mockgen -source=blockdevice.go -destination=mocks/blockdevice_mock.go -package mocks
type BlockDevice interface {
	// Read transfers count sectors starting at lba into buf.
	// len(buf) must be >= count*sectorSize.
	Read(buf []byte, lba uint32, count uint32) error

	// Write transfers count sectors starting at lba from buf.
	Write(buf []byte, lba uint32, count uint32) error

	// Status reports whether the device is present and ready.
	Status() error

	// Initialize prepares the device for use. Mount calls it once, only
	// if Status reports the device is not yet ready.
	Initialize() error
}
