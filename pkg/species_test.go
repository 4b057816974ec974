package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySpecies(t *testing.T) {
	tests := []struct {
		pdg      int32
		expected Species
	}{
		{11, SpeciesElectron},
		{-11, SpeciesElectron},
		{22, SpeciesPhoton},
		{13, SpeciesMuon},
		{-13, SpeciesMuon},
		{2212, SpeciesProton},
		{211, SpeciesPion},
		{-211, SpeciesPion},
		{111, SpeciesPion},
		{2112, SpeciesOther},
		{321, SpeciesOther},
		{1000180400, SpeciesOther},
		{0, SpeciesOther},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifySpecies(tt.pdg), "pdg %d", tt.pdg)
	}
}

func TestCountBucket(t *testing.T) {
	assert.Equal(t, 0.0, countBucket(SpeciesElectron))
	assert.Equal(t, 1.0, countBucket(SpeciesPhoton))
	assert.Equal(t, 2.0, countBucket(SpeciesMuon))
	assert.Equal(t, 3.0, countBucket(SpeciesProton))
	assert.Equal(t, 4.0, countBucket(SpeciesPion))
	assert.Equal(t, 5.0, countBucket(SpeciesOther))
}

func TestSpeciesString(t *testing.T) {
	assert.Equal(t, "All", SpeciesAll.String())
	assert.Equal(t, "Pion", SpeciesPion.String())
	assert.Equal(t, "Other", SpeciesOther.String())
}
