package fat32

import (
	"errors"
	"sync"

	"github.com/embeddedgo/fat32/checkpoint"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNoVolume is returned when a path names a drive letter with no
	// mounted volume.
	ErrNoVolume = errors.New("fat32: no such volume")
	// ErrPathError is returned for a malformed path or a fragment that
	// cannot be resolved to a directory or file entry.
	ErrPathError = errors.New("fat32: malformed path")
	// ErrNotFAT32 is returned by Mount when a partition's BPB does not
	// validate as a FAT32 volume.
	ErrNotFAT32 = errors.New("fat32: partition is not FAT32")
	// ErrChecksumMismatch is returned when an LFN chain's checksum does not
	// match its anchor SFN.
	ErrChecksumMismatch = errors.New("fat32: lfn checksum mismatch")
	// ErrCorruptChain is returned when a cluster chain walk hits an
	// end-of-chain marker somewhere it should not.
	ErrCorruptChain = errors.New("fat32: corrupt cluster chain")
	// ErrDiskFull is returned by the allocator when no free cluster
	// remains in the FAT.
	ErrDiskFull = errors.New("fat32: no free clusters")
	// ErrNoVolumeSlot is returned by Mount when 32 volumes are already
	// live.
	ErrNoVolumeSlot = errors.New("fat32: no free drive letter")
)

// Volume is one mounted FAT32 partition.
type Volume struct {
	Letter byte
	dev    BlockDevice
	log    logrus.FieldLogger

	sectorSize   uint16
	clusterSize  uint32 // sectors per cluster
	totalSectors uint32

	infoLBA uint32
	fatLBA  uint32
	dataLBA uint32
	rootLBA uint32
	numFATs uint8
	fatSize uint32

	rootCluster uint32
	label       [11]byte

	cache *sectorCache
}

// MountOptions configures Mount.
type MountOptions struct {
	// SkipChecks disables the FAT32 recognition heuristics beyond the MBR
	// and BPB boot signatures. Use with caution: it may mount a volume
	// that later reads garbage.
	SkipChecks bool
	// Logger receives structured diagnostics for every mounted volume. If
	// nil, a discard logger is used.
	Logger logrus.FieldLogger
}

// MountOption mutates a MountOptions.
type MountOption func(*MountOptions)

// WithSkipChecks disables the FAT32-recognition heuristics beyond the MBR
// and BPB boot signatures.
func WithSkipChecks() MountOption {
	return func(o *MountOptions) { o.SkipChecks = true }
}

// WithLogger attaches a structured logger to every volume mounted by this
// call.
func WithLogger(log logrus.FieldLogger) MountOption {
	return func(o *MountOptions) { o.Logger = log }
}

// manager is the process-wide volume list and letter bitmask. Mount is
// its only writer besides Eject.
type manager struct {
	mu      sync.Mutex
	volumes []*Volume
	letters uint32 // bit i set means letter 'C'+i is in use
}

var globalManager = &manager{}

const maxVolumes = 32

func (m *manager) add(vol *Volume) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := 0; i < maxVolumes; i++ {
		if m.letters&(1<<uint(i)) == 0 {
			m.letters |= 1 << uint(i)
			vol.Letter = 'C' + byte(i)
			m.volumes = append(m.volumes, vol)
			return nil
		}
	}
	return ErrNoVolumeSlot
}

func (m *manager) remove(vol *Volume) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, v := range m.volumes {
		if v == vol {
			m.volumes = append(m.volumes[:i], m.volumes[i+1:]...)
			m.letters &^= 1 << uint(vol.Letter-'C')
			return true
		}
	}
	return false
}

func (m *manager) byLetter(letter byte) *Volume {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, v := range m.volumes {
		if v.Letter == letter {
			return v
		}
	}
	return nil
}

func (m *manager) list() []*Volume {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Volume, len(m.volumes))
	copy(out, m.volumes)
	return out
}

// Volumes returns every currently mounted volume.
func Volumes() []*Volume {
	return globalManager.list()
}

// VolumeByLetter returns the mounted volume for letter, or ErrNoVolume.
func VolumeByLetter(letter byte) (*Volume, error) {
	vol := globalManager.byLetter(letter)
	if vol == nil {
		return nil, checkpoint.From(ErrNoVolume)
	}
	return vol, nil
}

// Mount reads the MBR at LBA 0 of dev, validates each of the four
// partition slots as a FAT32 volume, and mounts every one that qualifies.
// It returns every volume it mounted, in partition-table order.
func Mount(dev BlockDevice, opts ...MountOption) ([]*Volume, error) {
	options := MountOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	log := options.Logger
	if log == nil {
		log = discardLogger()
	}

	if err := dev.Status(); err != nil {
		if err := dev.Initialize(); err != nil {
			return nil, checkpoint.Wrap(err, errors.New("fat32: device initialize failed"))
		}
	}

	mbrBuf := make([]byte, 512)
	if err := dev.Read(mbrBuf, 0, 1); err != nil {
		return nil, checkpoint.Wrap(err, errors.New("fat32: could not read MBR"))
	}
	if loadU16(mbrBuf, 510) != 0xAA55 {
		return nil, checkpoint.From(errors.New("fat32: invalid MBR boot signature"))
	}

	var partitions [4]mbrPartition
	for i := 0; i < 4; i++ {
		partitions[i] = decodeMBRPartition(mbrBuf, 446+i*16)
	}

	var mounted []*Volume
	bpbBuf := make([]byte, 512)
	for _, part := range partitions {
		if part.LBA == 0 {
			continue
		}

		if err := dev.Read(bpbBuf, part.LBA, 1); err != nil {
			return mounted, checkpoint.Wrap(err, errors.New("fat32: could not read BPB"))
		}

		if !recognizeFAT32(bpbBuf, options.SkipChecks) {
			continue
		}

		vol := newVolumeFromBPB(dev, part.LBA, bpbBuf, log)
		if err := globalManager.add(vol); err != nil {
			return mounted, err
		}

		if err := vol.readLabelFromRoot(); err != nil && !errors.Is(err, errNoLabelEntry) {
			globalManager.remove(vol)
			return mounted, checkpoint.Wrap(err, errors.New("fat32: could not read volume label"))
		}

		log.WithFields(logrus.Fields{
			"letter": string(vol.Letter),
			"label":  vol.Label(),
		}).Info("mounted FAT32 volume")

		mounted = append(mounted, vol)
	}

	return mounted, nil
}

// recognizeFAT32 checks the BPB boot signature, the "FAT" filesystem-type
// marker, and the FAT32 cluster-count threshold. It intentionally computes
// root-directory sectors as a proper ceiling division by sectorSize, not a
// division by sectorSize-1.
func recognizeFAT32(b []byte, skipChecks bool) bool {
	if loadU16(b, 510) != 0xAA55 {
		return false
	}

	if skipChecks {
		return true
	}

	fat32Type := b[82:90]
	fat16Type := b[54:62]
	if !hasFATMarker(fat32Type) && !hasFATMarker(fat16Type) {
		return false
	}

	parsed := decodeBPB(b)
	sectorSize := parsed.BytesPerSector
	if sectorSize == 0 {
		return false
	}
	rootSectors := (uint32(parsed.RootEntryCount)*32 + uint32(sectorSize) - 1) / uint32(sectorSize)

	fatSize := parsed.fatSizeSectors()
	totSect := parsed.totalSectors()

	numFATs := uint32(parsed.NumFATs)
	reserved := uint32(parsed.ReservedSectorCount)
	dataSectors := totSect - (reserved + numFATs*fatSize + rootSectors)

	clusterSize := uint32(parsed.SectorsPerCluster)
	if clusterSize == 0 {
		return false
	}
	dataClusters := dataSectors / clusterSize

	return dataClusters >= 65525
}

func hasFATMarker(field []byte) bool {
	return len(field) >= 3 && field[0] == 'F' && field[1] == 'A' && field[2] == 'T'
}

func newVolumeFromBPB(dev BlockDevice, partitionLBA uint32, b []byte, log logrus.FieldLogger) *Volume {
	parsed := decodeBPB(b)
	sectorSize := parsed.BytesPerSector
	clusterSize := uint32(parsed.SectorsPerCluster)
	reserved := uint32(parsed.ReservedSectorCount)
	numFATs := parsed.NumFATs
	fatSize := parsed.fatSizeSectors()
	rootCluster := parsed.FAT32.RootCluster
	fsInfoSec := parsed.FAT32.FSInfoSector

	vol := &Volume{
		dev:          dev,
		log:          log,
		sectorSize:   sectorSize,
		clusterSize:  clusterSize,
		totalSectors: parsed.totalSectors(),
		numFATs:      numFATs,
		fatSize:      fatSize,
		rootCluster:  rootCluster,
	}
	vol.infoLBA = partitionLBA + uint32(fsInfoSec)
	vol.fatLBA = partitionLBA + reserved
	vol.dataLBA = vol.fatLBA + fatSize*uint32(numFATs)
	vol.rootLBA = vol.clusterToSector(rootCluster)
	vol.cache = newSectorCache(dev, sectorSize, log)

	return vol
}

// Eject flushes vol's cache and removes it from the live-volume list. The
// Volume must not be used afterward.
func Eject(vol *Volume) error {
	if err := vol.cache.flush(); err != nil {
		return checkpoint.Wrap(err, errors.New("fat32: eject flush failed"))
	}
	if !globalManager.remove(vol) {
		return checkpoint.From(ErrNoVolume)
	}
	return nil
}

// Label returns the volume label, an 11-byte space-padded field, trimmed
// of trailing spaces.
func (v *Volume) Label() string {
	n := len(v.label)
	for n > 0 && v.label[n-1] == ' ' {
		n--
	}
	return string(v.label[:n])
}

// SectorSize returns the volume's sector size in bytes.
func (v *Volume) SectorSize() uint16 { return v.sectorSize }

// ClusterSize returns sectors per cluster.
func (v *Volume) ClusterSize() uint32 { return v.clusterSize }
