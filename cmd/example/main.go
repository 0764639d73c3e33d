package main

import (
	"fmt"
	"io"
	"os"

	"github.com/embeddedgo/fat32"
	"github.com/spf13/afero"
)

// fileBlockDevice adapts an *os.File to fat32.BlockDevice, treating it as
// a flat array of 512-byte sectors.
type fileBlockDevice struct {
	f *os.File
}

const sectorSize = 512

func (d *fileBlockDevice) Read(buf []byte, lba uint32, count uint32) error {
	_, err := d.f.ReadAt(buf[:count*sectorSize], int64(lba)*sectorSize)
	return err
}

func (d *fileBlockDevice) Write(buf []byte, lba uint32, count uint32) error {
	_, err := d.f.WriteAt(buf[:count*sectorSize], int64(lba)*sectorSize)
	return err
}

func (d *fileBlockDevice) Status() error     { return nil }
func (d *fileBlockDevice) Initialize() error { return nil }

// main is just an example to play with the package.
func main() {
	argsWithoutProg := os.Args[1:]
	if len(argsWithoutProg) <= 0 {
		fmt.Println("Please provide a filename.")
		os.Exit(1)
	}

	fsFile, err := os.OpenFile(argsWithoutProg[0], os.O_RDWR, 0)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer fsFile.Close()

	dev := &fileBlockDevice{f: fsFile}
	fs, err := fat32.New(dev)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	afero.Walk(fs, "/", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			fmt.Println(err)
			return err
		}
		fmt.Println(path, info.IsDir(), info.ModTime())
		return nil
	})

	file, err := fs.Open("/README.md")
	if err != nil {
		fmt.Println("could not open the root file", err)
		os.Exit(1)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		fmt.Println("could not stat the file", err)
		os.Exit(1)
	}
	buffer := make([]byte, stat.Size())
	n, err := file.Read(buffer)
	if err != nil {
		fmt.Println("could not read the file", err)
		os.Exit(1)
	}
	fmt.Println(stat.Size(), n)
	fmt.Println("\n\nContent of " + stat.Name() + ":\n\n" + string(buffer))

	buffer = make([]byte, 52)
	offset, err := file.Seek(9, io.SeekStart)
	if err != nil {
		fmt.Println("could not seek", err)
		os.Exit(1)
	}
	fmt.Println(offset, err)

	offset, err = file.Seek(0, io.SeekCurrent)
	if err != nil {
		fmt.Println("could not seek", err)
		os.Exit(1)
	}
	fmt.Println(offset, err)

	n, err = file.Read(buffer)
	if err != nil {
		fmt.Println("could not read the file", err)
		os.Exit(1)
	}
	fmt.Println(stat.Size(), n)
	fmt.Println("\n\nContent of " + stat.Name() + " using an offset and small buffer:\n\n" + string(buffer))
}
