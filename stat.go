package fat32

import (
	"os"
	"time"
)

// infoFileInfo adapts an Info to os.FileInfo for the afero and io/fs
// adapters.
type infoFileInfo struct {
	info Info
}

func (i infoFileInfo) Name() string { return i.info.Name }

func (i infoFileInfo) Size() int64 { return int64(i.info.Size) }

func (i infoFileInfo) Mode() os.FileMode {
	if i.info.IsDir {
		return os.ModeDir
	}
	return 0
}

func (i infoFileInfo) ModTime() time.Time { return i.info.WriteTime }

func (i infoFileInfo) IsDir() bool { return i.info.IsDir }

func (i infoFileInfo) Sys() interface{} { return i.info }
