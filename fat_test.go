package fat32

import "testing"

func Test_fatEntry_Value(t *testing.T) {
	tests := []struct {
		name string
		e    fatEntry
		want uint32
	}{
		{name: "masks off the reserved top nibble", e: fatEntry(0xF0000005), want: 0x00000005},
		{name: "zero stays zero", e: fatEntry(0), want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.e.Value(); got != tt.want {
				t.Errorf("fatEntry.Value() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_fatEntry_IsFree(t *testing.T) {
	tests := []struct {
		name string
		e    fatEntry
		want bool
	}{
		{name: "free", e: fatEntry(0), want: true},
		{name: "allocated", e: fatEntry(5), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.e.IsFree(); got != tt.want {
				t.Errorf("fatEntry.IsFree() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_fatEntry_IsReservedTemp(t *testing.T) {
	tests := []struct {
		name string
		e    fatEntry
		want bool
	}{
		{name: "reserved temp", e: fatEntry(1), want: true},
		{name: "free is not reserved temp", e: fatEntry(0), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.e.IsReservedTemp(); got != tt.want {
				t.Errorf("fatEntry.IsReservedTemp() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_fatEntry_IsNextCluster(t *testing.T) {
	tests := []struct {
		name string
		e    fatEntry
		want bool
	}{
		{name: "lowest valid next cluster", e: fatEntry(2), want: true},
		{name: "highest valid next cluster", e: fatEntry(0x0FFFFFEF), want: true},
		{name: "free is not a next cluster", e: fatEntry(0), want: false},
		{name: "EOC is not a next cluster", e: fatEntry(0x0FFFFFFF), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.e.IsNextCluster(); got != tt.want {
				t.Errorf("fatEntry.IsNextCluster() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_fatEntry_IsBad(t *testing.T) {
	tests := []struct {
		name string
		e    fatEntry
		want bool
	}{
		{name: "bad cluster marker", e: fatEntry(0x0FFFFFF7), want: true},
		{name: "free is not bad", e: fatEntry(0), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.e.IsBad(); got != tt.want {
				t.Errorf("fatEntry.IsBad() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_fatEntry_IsEOF(t *testing.T) {
	tests := []struct {
		name string
		e    fatEntry
		want bool
	}{
		{name: "lowest EOC value", e: fatEntry(0x0FFFFFF8), want: true},
		{name: "highest EOC value", e: fatEntry(0x0FFFFFFF), want: true},
		{name: "next cluster is not EOC", e: fatEntry(5), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.e.IsEOF(); got != tt.want {
				t.Errorf("fatEntry.IsEOF() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_fatEntry_ReadAsNextCluster(t *testing.T) {
	tests := []struct {
		name       string
		e          fatEntry
		wantValue  uint32
		wantOk     bool
	}{
		{name: "valid next cluster", e: fatEntry(42), wantValue: 42, wantOk: true},
		{name: "EOC is not readable as next cluster", e: fatEntry(0x0FFFFFFF), wantOk: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.e.ReadAsNextCluster()
			if ok != tt.wantOk {
				t.Fatalf("fatEntry.ReadAsNextCluster() ok = %v, want %v", ok, tt.wantOk)
			}
			if ok && got != tt.wantValue {
				t.Errorf("fatEntry.ReadAsNextCluster() = %v, want %v", got, tt.wantValue)
			}
		})
	}
}

func Test_fatEntry_ReadAsEOF(t *testing.T) {
	tests := []struct {
		name string
		e    fatEntry
		want bool
	}{
		{name: "EOC value", e: fatEntry(0x0FFFFFF8), want: true},
		{name: "next cluster is not EOF", e: fatEntry(5), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.e.ReadAsEOF(); got != tt.want {
				t.Errorf("fatEntry.ReadAsEOF() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVolume_fatGetSet(t *testing.T) {
	dev, layout := buildTestImage()
	vol := newVolumeFromMountedImage(t, dev)

	entry, err := vol.fatGet(layout.rootCluster)
	if err != nil {
		t.Fatalf("fatGet() error = %v", err)
	}
	if !entry.IsEOF() {
		t.Errorf("fatGet(rootCluster) = %#x, want an EOC marker", entry.Value())
	}

	if err := vol.fatSet(layout.rootCluster, 99); err != nil {
		t.Fatalf("fatSet() error = %v", err)
	}
	entry, err = vol.fatGet(layout.rootCluster)
	if err != nil {
		t.Fatalf("fatGet() error = %v", err)
	}
	if entry.Value() != 99 {
		t.Errorf("fatGet() after fatSet(99) = %v, want 99", entry.Value())
	}
}

func newVolumeFromMountedImage(t *testing.T, dev *fakeDevice) *Volume {
	t.Helper()
	vols, err := Mount(dev)
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	t.Cleanup(func() { Eject(vols[0]) })
	return vols[0]
}
