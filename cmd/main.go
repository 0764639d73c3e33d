package main

import (
	"fmt"
	"os"

	"github.com/embeddedgo/fat32"
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

func main() {
	argsWithoutProg := os.Args[1:]
	if len(argsWithoutProg) <= 0 {
		fmt.Println("Please provide a filename.")
		os.Exit(1)
	}

	file, err := os.OpenFile(argsWithoutProg[0], os.O_RDWR, 0)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer file.Close()

	dev := &fileBlockDevice{f: file}
	vols, err := fat32.Mount(dev)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	for _, vol := range vols {
		fmt.Printf("%c: label=%q sectorSize=%d clusterSize=%d\n",
			vol.Letter, vol.Label(), vol.SectorSize(), vol.ClusterSize())
	}
}
