package fat32

import (
	"testing"
)

func TestMount(t *testing.T) {
	tests := []struct {
		name      string
		wantErr   bool
		wantCount int
	}{
		{
			name:      "mounts the single FAT32 partition on the image",
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, _ := buildTestImage()

			vols, err := Mount(dev)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Mount() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(vols) != tt.wantCount {
				t.Fatalf("Mount() mounted %d volumes, want %d", len(vols), tt.wantCount)
			}

			vol := vols[0]
			if vol.Letter != 'C' {
				t.Errorf("Letter = %q, want 'C'", vol.Letter)
			}
			if got := vol.SectorSize(); got != 512 {
				t.Errorf("SectorSize() = %d, want 512", got)
			}
			if got := vol.ClusterSize(); got != 1 {
				t.Errorf("ClusterSize() = %d, want 1", got)
			}
			if got, want := vol.Label(), "TESTVOL"; got != want {
				t.Errorf("Label() = %q, want %q", got, want)
			}

			if err := Eject(vol); err != nil {
				t.Errorf("Eject() error = %v", err)
			}
		})
	}
}

func TestVolumeByLetter(t *testing.T) {
	dev, _ := buildTestImage()
	vols, err := Mount(dev)
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	defer Eject(vols[0])

	got, err := VolumeByLetter('C')
	if err != nil {
		t.Fatalf("VolumeByLetter() error = %v", err)
	}
	if got != vols[0] {
		t.Errorf("VolumeByLetter() = %v, want %v", got, vols[0])
	}

	if _, err := VolumeByLetter('Z'); err == nil {
		t.Error("VolumeByLetter('Z') error = nil, want ErrNoVolume")
	}
}

func TestRecognizeFAT32(t *testing.T) {
	dev, _ := buildTestImage()
	bpbBuf := make([]byte, 512)
	if err := dev.Read(bpbBuf, 1, 1); err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if !recognizeFAT32(bpbBuf, false) {
		t.Error("recognizeFAT32() = false, want true for a valid FAT32 BPB")
	}

	corrupt := append([]byte(nil), bpbBuf...)
	putU16(corrupt, 510, 0x0000)
	if recognizeFAT32(corrupt, false) {
		t.Error("recognizeFAT32() = true for a corrupt boot signature, want false")
	}
}
