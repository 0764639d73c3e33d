package fat32

import (
	"errors"
	"io"
	"os"
	"syscall"

	"github.com/embeddedgo/fat32/checkpoint"
	"github.com/spf13/afero"
)

// These errors may occur while processing a file through the afero adapter.
var (
	ErrReadFile = errors.New("fat32: could not read file completely")
	ErrSeekFile = errors.New("fat32: could not seek inside of the file")
	ErrReadDir  = errors.New("fat32: could not read the directory")
)

// File adapts a FileHandle or DirHandle to afero.File. Exactly one of file
// or dir is set, depending on what path resolved to.
type File struct {
	path string
	info Info

	file *FileHandle
	dir  *DirHandle
}

// openFile resolves path and opens the matching handle.
func openFile(path string) (*File, error) {
	_, entry, err := resolvePath(path)
	if err != nil {
		return nil, err
	}

	f := &File{path: path, info: infoForResolved(entry, path)}
	if entry.isDir {
		d, err := DirOpen(path)
		if err != nil {
			return nil, err
		}
		f.dir = d
	} else {
		fh, err := FileOpen(path)
		if err != nil {
			return nil, err
		}
		f.file = fh
	}
	return f, nil
}

func (f *File) Close() error {
	if f.dir != nil {
		return f.dir.Close()
	}
	return f.file.Close()
}

func (f *File) Read(p []byte) (int, error) {
	if f.file == nil {
		return 0, checkpoint.Wrap(syscall.EISDIR, ErrReadFile)
	}
	n, err := f.file.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, checkpoint.Wrap(err, ErrReadFile)
	}
	return n, err
}

func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if f.file == nil {
		return 0, checkpoint.Wrap(syscall.EISDIR, ErrReadFile)
	}

	saved := f.file.globOffset
	if err := f.file.Seek(off); err != nil {
		return 0, checkpoint.Wrap(err, ErrReadFile)
	}
	n, err := f.file.Read(p)
	if seekErr := f.file.Seek(saved); seekErr != nil && err == nil {
		err = checkpoint.Wrap(seekErr, ErrSeekFile)
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return n, checkpoint.Wrap(err, ErrReadFile)
	}
	return n, err
}

// Seek jumps to a specific offset in the file. This affects all Read
// operations except ReadAt.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if f.file == nil {
		return 0, checkpoint.Wrap(syscall.EISDIR, ErrSeekFile)
	}

	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset = f.file.globOffset + offset
	case io.SeekEnd:
		offset = f.file.size + offset
	default:
		return 0, checkpoint.Wrap(syscall.EINVAL, ErrSeekFile)
	}

	if offset < 0 || offset > f.file.size {
		return 0, checkpoint.Wrap(afero.ErrOutOfRange, ErrSeekFile)
	}

	if err := f.file.Seek(offset); err != nil {
		return 0, checkpoint.Wrap(err, ErrSeekFile)
	}
	return offset, nil
}

func (f *File) Write(p []byte) (int, error) {
	panic("implement me")
}

func (f *File) WriteAt(p []byte, off int64) (int, error) {
	panic("implement me")
}

func (f *File) Name() string {
	return f.info.Name
}

// Readdir reads up to count entries of a directory. count <= 0 reads every
// remaining entry.
func (f *File) Readdir(count int) ([]os.FileInfo, error) {
	if f.dir == nil {
		return nil, checkpoint.Wrap(syscall.ENOTDIR, ErrReadDir)
	}

	var result []os.FileInfo
	for count <= 0 || len(result) < count {
		var info Info
		err := f.dir.Read(&info)
		if err != nil {
			if errors.Is(err, io.EOF) {
				if count > 0 && len(result) == 0 {
					return nil, io.EOF
				}
				return result, nil
			}
			return result, checkpoint.Wrap(err, ErrReadDir)
		}
		result = append(result, infoFileInfo{info})
	}
	return result, nil
}

func (f *File) Readdirnames(count int) ([]string, error) {
	entries, err := f.Readdir(count)
	if err != nil && len(entries) == 0 {
		return nil, err
	}

	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.Name()
	}
	return names, err
}

func (f *File) Stat() (os.FileInfo, error) {
	return infoFileInfo{f.info}, nil
}

func (f *File) Sync() error {
	panic("implement me")
}

func (f *File) Truncate(size int64) error {
	panic("implement me")
}

func (f *File) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}
