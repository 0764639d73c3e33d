package fat32

import (
	"os"
	"strings"
	"time"

	"github.com/embeddedgo/fat32/checkpoint"
	"github.com/spf13/afero"
)

// Fs adapts a mounted Volume to afero.Fs. Paths passed to it use the
// afero convention (leading "/", no drive letter); Fs rewrites them to
// this package's "C:/..." form before resolving.
type Fs struct {
	vol *Volume
}

// New mounts dev and wraps its first recognized FAT32 partition as an
// afero.Fs.
func New(dev BlockDevice, opts ...MountOption) (afero.Fs, error) {
	vols, err := Mount(dev, opts...)
	if err != nil {
		return nil, err
	}
	if len(vols) == 0 {
		return nil, checkpoint.From(ErrNotFAT32)
	}
	return &Fs{vol: vols[0]}, nil
}

// NewVolumeFs wraps an already-mounted Volume as an afero.Fs.
func NewVolumeFs(vol *Volume) afero.Fs {
	return &Fs{vol: vol}
}

func (fs *Fs) toDriverPath(name string) string {
	name = strings.TrimPrefix(name, "/")
	return string(fs.vol.Letter) + ":/" + name
}

func (fs *Fs) Open(name string) (afero.File, error) {
	return openFile(fs.toDriverPath(name))
}

func (fs *Fs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE|os.O_APPEND|os.O_TRUNC) != 0 {
		panic("implement me")
	}
	return fs.Open(name)
}

func (fs *Fs) Stat(name string) (os.FileInfo, error) {
	_, entry, err := resolvePath(fs.toDriverPath(name))
	if err != nil {
		return nil, err
	}
	return infoFileInfo{infoForResolved(entry, name)}, nil
}

func (fs *Fs) Name() string {
	return "fat32"
}

func (fs *Fs) Create(name string) (afero.File, error) {
	panic("implement me")
}

func (fs *Fs) Mkdir(name string, perm os.FileMode) error {
	panic("implement me")
}

func (fs *Fs) MkdirAll(path string, perm os.FileMode) error {
	panic("implement me")
}

func (fs *Fs) Remove(name string) error {
	panic("implement me")
}

func (fs *Fs) RemoveAll(path string) error {
	panic("implement me")
}

func (fs *Fs) Rename(oldname, newname string) error {
	panic("implement me")
}

func (fs *Fs) Chmod(name string, mode os.FileMode) error {
	panic("implement me")
}

func (fs *Fs) Chown(name string, uid, gid int) error {
	panic("implement me")
}

func (fs *Fs) Chtimes(name string, atime time.Time, mtime time.Time) error {
	panic("implement me")
}
