package fat32

import (
	"errors"
	"io/fs"
	"os"
)

// GoDirEntry adapts an os.FileInfo to fs.DirEntry.
type GoDirEntry struct {
	os.FileInfo
}

func (g GoDirEntry) Type() fs.FileMode { return g.FileInfo.Mode().Type() }

func (g GoDirEntry) Info() (fs.FileInfo, error) { return g.FileInfo, nil }

// GoFile adapts a File to fs.File and fs.ReadDirFile.
type GoFile struct {
	*File
}

func (g GoFile) Stat() (fs.FileInfo, error) {
	return g.File.Stat()
}

func (g GoFile) ReadDir(n int) ([]fs.DirEntry, error) {
	entries, err := g.File.Readdir(n)

	out := make([]fs.DirEntry, len(entries))
	for i, e := range entries {
		out[i] = GoDirEntry{e}
	}
	return out, err
}

// GoFs wraps Fs to be compatible with fs.FS.
type GoFs struct {
	*Fs
}

// NewGoFS mounts dev and returns it as an fs.FS-compatible filesystem.
func NewGoFS(dev BlockDevice, opts ...MountOption) (*GoFs, error) {
	f, err := New(dev, opts...)
	if err != nil {
		return nil, err
	}

	impl, ok := f.(*Fs)
	if !ok {
		return nil, errors.New("fat32: invalid Fs implementation")
	}
	return &GoFs{impl}, nil
}

func (g *GoFs) Open(name string) (fs.File, error) {
	file, err := g.Fs.Open(name)
	if err != nil {
		return nil, err
	}

	f, ok := file.(*File)
	if !ok {
		return nil, errors.New("fat32: invalid File implementation")
	}
	return GoFile{f}, nil
}
