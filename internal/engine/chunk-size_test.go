package engine

import "testing"

func TestSelectChunkSize(t *testing.T) {
	tests := []struct {
		name     string
		total    int64
		explicit int64
		want     int64
	}{
		{"unknown size", -1, 0, 16 * KiB},
		{"empty", 0, 0, 16 * KiB},
		{"just under 10MiB", 10*MiB - 1, 0, 16 * KiB},
		{"exactly 10MiB", 10 * MiB, 0, 64 * KiB},
		{"just under 100MiB", 100*MiB - 1, 0, 64 * KiB},
		{"exactly 100MiB", 100 * MiB, 0, 256 * KiB},
		{"just under 500MiB", 500*MiB - 1, 0, 256 * KiB},
		{"exactly 500MiB", 500 * MiB, 0, 1 * MiB},
		{"huge", 40 * 1024 * MiB, 0, 1 * MiB},
		{"explicit wins for small", 1024, 4096, 4096},
		{"explicit wins for large", 900 * MiB, 8 * KiB, 8 * KiB},
		{"explicit equal to a tier value", 1024, 64 * KiB, 64 * KiB},
		{"explicit odd value", 10 * MiB, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectChunkSize(tt.total, tt.explicit); got != tt.want {
				t.Errorf("SelectChunkSize(%d, %d) = %d, want %d", tt.total, tt.explicit, got, tt.want)
			}
		})
	}
}
