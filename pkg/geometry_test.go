package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaneOfBoundaries(t *testing.T) {
	geom := NewGeometry()

	tests := []struct {
		name    string
		channel uint32
		plane   int
	}{
		{"first channel", 0, 0},
		{"end of first induction block", 2239, 0},
		{"start of first middle block", 2240, 1},
		{"end of first middle block", 8063, 1},
		{"start of first collection block", 8064, 2},
		{"end of first collection block", 13823, 2},
		{"second TPC induction start", 13824, 0},
		{"second TPC induction end", 16063, 0},
		{"second TPC middle start", 16128, 1},
		{"second TPC middle end", 21087, 1},
		{"second TPC collection start", 21888, 2},
		{"third TPC induction start", 27648, 0},
		{"fourth TPC induction start", 41472, 0},
		{"fourth TPC middle end", 49535, 1},
		{"last channel", 55295, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.plane, geom.PlaneOf(tt.channel))
		})
	}
}

func TestPlaneOfUnmappedChannels(t *testing.T) {
	geom := NewGeometry()

	// Gaps between blocks and anything past the last block resolve to
	// no plane at all.
	unmapped := []uint32{16064, 16127, 21088, 21887, 29888, 29951, 43712, 43775, 55296, 999999}
	for _, channel := range unmapped {
		assert.Equal(t, PlaneInvalid, geom.PlaneOf(channel), "channel %d", channel)
	}
}

func TestGeometryFromUnsortedRanges(t *testing.T) {
	geom := newGeometryFromRanges([]planeRange{
		{100, 199, 2},
		{0, 99, 1},
	})
	assert.Equal(t, 1, geom.PlaneOf(50))
	assert.Equal(t, 2, geom.PlaneOf(150))
	assert.Equal(t, PlaneInvalid, geom.PlaneOf(200))
}
