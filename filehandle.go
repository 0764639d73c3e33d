package fat32

import (
	"io"

	"github.com/embeddedgo/fat32/checkpoint"
)

// FileHandle is a cursor into a file's cluster chain.
type FileHandle struct {
	vol          *Volume
	startCluster uint32
	cluster      uint32
	sector       uint32
	offset       uint32
	globOffset   int64
	size         int64
}

// FileOpen resolves path to a file entry and returns a handle positioned
// at its first byte.
func FileOpen(path string) (*FileHandle, error) {
	vol, entry, err := resolvePath(path)
	if err != nil {
		return nil, err
	}
	if entry.isDir {
		return nil, checkpoint.From(ErrPathError)
	}

	startSector := vol.clusterToSector(entry.cluster)
	return &FileHandle{
		vol:          vol,
		startCluster: entry.cluster,
		cluster:      entry.cluster,
		sector:       startSector,
		size:         int64(entry.size),
	}, nil
}

func (f *FileHandle) cursor() *cursor {
	return &cursor{vol: f.vol, cluster: f.cluster, sector: f.sector, offset: f.offset}
}

func (f *FileHandle) syncFrom(c *cursor) {
	f.cluster = c.cluster
	f.sector = c.sector
	f.offset = c.offset
}

// Size returns the file's size in bytes, from its directory entry.
func (f *FileHandle) Size() int64 { return f.size }

// Read copies up to len(buf) bytes starting at the current offset,
// walking sector/cluster boundaries via the FAT, and stops at EOF. It
// returns io.EOF once globOffset has reached size.
func (f *FileHandle) Read(buf []byte) (int, error) {
	if f.globOffset >= f.size {
		return 0, io.EOF
	}

	c := f.cursor()
	n := 0
	for n < len(buf) && f.globOffset < f.size {
		if err := f.vol.cache.ensure(c.sector); err != nil {
			f.syncFrom(c)
			return n, checkpoint.Wrap(err, ErrCorruptChain)
		}
		buf[n] = f.vol.cache.buffer[c.offset]
		n++
		f.globOffset++

		if f.globOffset >= f.size {
			break
		}
		if err := c.advance(1); err != nil {
			f.syncFrom(c)
			return n, checkpoint.Wrap(err, ErrCorruptChain)
		}
	}

	f.syncFrom(c)
	return n, nil
}

// Seek jumps to offset bytes from the start of the file. It re-walks the
// FAT chain from the first cluster rather than stepping incrementally, so
// seeking backward is no more expensive than forward.
func (f *FileHandle) Seek(offset int64) error {
	if offset < 0 || offset > f.size {
		return checkpoint.From(ErrPathError)
	}

	sectorSize := int64(f.vol.sectorSize)
	clusterSize := int64(f.vol.clusterSize)
	bytesPerCluster := sectorSize * clusterSize

	clusterHops := offset / bytesPerCluster
	withinCluster := offset % bytesPerCluster
	sectorOffset := withinCluster / sectorSize
	byteOffset := withinCluster % sectorSize

	cluster := f.startCluster
	for i := int64(0); i < clusterHops; i++ {
		entry, err := f.vol.fatGet(cluster)
		if err != nil {
			return err
		}
		next, ok := entry.ReadAsNextCluster()
		if !ok {
			return checkpoint.From(ErrCorruptChain)
		}
		cluster = next
	}

	f.cluster = cluster
	f.sector = f.vol.clusterToSector(cluster) + uint32(sectorOffset)
	f.offset = uint32(byteOffset)
	f.globOffset = offset
	return nil
}

// Close flushes the owning volume's cache.
func (f *FileHandle) Close() error {
	return f.vol.cache.flush()
}
