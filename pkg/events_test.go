package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubDetectorFromLabel(t *testing.T) {
	assert.Equal(t, SubDetectorWW, SubDetectorFromLabel("WW"))
	assert.Equal(t, SubDetectorWE, SubDetectorFromLabel("WE"))
	assert.Equal(t, SubDetectorEW, SubDetectorFromLabel("EW"))
	assert.Equal(t, SubDetectorEE, SubDetectorFromLabel("EE"))
	assert.Equal(t, SubDetectorEE, SubDetectorFromLabel("bogus"))
}

func TestParticleLookup(t *testing.T) {
	event := EventRecord{
		Particles: []TruthParticle{
			{TrackID: 1, PDGCode: 11},
			{TrackID: 7, PDGCode: 13},
		},
	}

	lookup := event.ParticleLookup()
	assert.Len(t, lookup, 2)
	assert.Equal(t, int32(13), lookup[7].PDGCode)

	_, ok := lookup[42]
	assert.False(t, ok)
}
