package fat32

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateCluster_PicksFirstFree(t *testing.T) {
	dev, layout := buildTestImage()
	vol := newVolumeFromMountedImage(t, dev)

	cluster, err := vol.allocateCluster()
	require.NoError(t, err)

	assert.NotEqual(t, layout.rootCluster, cluster)
	assert.NotEqual(t, layout.fileCluster, cluster)
	assert.NotEqual(t, layout.subdirCluster, cluster)

	entry, err := vol.fatGet(cluster)
	require.NoError(t, err)
	assert.True(t, entry.IsEOF(), "allocated cluster should be terminated with an EOC marker")
}

func TestAllocateCluster_AdvancesHintAndSkipsUsed(t *testing.T) {
	dev, _ := buildTestImage()
	vol := newVolumeFromMountedImage(t, dev)

	first, err := vol.allocateCluster()
	require.NoError(t, err)
	second, err := vol.allocateCluster()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestAllocateCluster_DiskFullWhenNothingFree(t *testing.T) {
	dev, layout := buildTestImage()
	vol := newVolumeFromMountedImage(t, dev)

	entriesPerSector := uint32(vol.sectorSize) / 4
	totalEntries := layout.fatSize * entriesPerSector
	for cluster := uint32(2); cluster < totalEntries; cluster++ {
		require.NoError(t, vol.fatSet(cluster, fatEOCValue))
	}

	_, err := vol.allocateCluster()
	assert.Error(t, err)
}
