package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParticles(particles ...TruthParticle) map[int32]*TruthParticle {
	lookup := make(map[int32]*TruthParticle, len(particles))
	for i := range particles {
		lookup[particles[i].TrackID] = &particles[i]
	}
	return lookup
}

func TestAccumulateEnergyAttribution(t *testing.T) {
	geom := NewGeometry()
	book := NewHistogramBook()
	attribution := NewTruthAttribution(geom, book)

	// Channels 100 (plane 0) and 2500 (plane 1).
	hits := []Hit{
		{Channel: 100, Integral: 10, SummedADC: 20, GoodnessOfFit: 1, DegreesOfFreedom: 2, Plane: 0},
		{Channel: 2500, Integral: 30, SummedADC: 60, GoodnessOfFit: 2, DegreesOfFreedom: 2, Plane: 1},
	}
	matches := []HitTruthMatch{
		{HitIndex: 0, TrackID: 1, Energy: 100, IDEFraction: 0.8},
		{HitIndex: 1, TrackID: 1, Energy: 50, IDEFraction: 0.4},
	}
	particles := testParticles(TruthParticle{TrackID: 1, PDGCode: 11})

	err := attribution.Accumulate(1, hits, matches, particles)
	require.NoError(t, err)

	assert.InDelta(t, 80.0, attribution.HitEnergy[0], 1e-5)
	assert.InDelta(t, 20.0, attribution.HitEnergy[1], 1e-5)
	assert.Equal(t, 0.0, attribution.HitEnergy[2])
	assert.True(t, attribution.Present[SpeciesElectron])
	assert.True(t, attribution.AnyPresent())
}

func TestAccumulateOwnershipThreshold(t *testing.T) {
	geom := NewGeometry()
	book := NewHistogramBook()
	attribution := NewTruthAttribution(geom, book)

	hits := []Hit{{Channel: 100, Integral: 10, SummedADC: 20, GoodnessOfFit: 1, DegreesOfFreedom: 2, Plane: 0}}
	particles := testParticles(TruthParticle{TrackID: 1, PDGCode: 13})

	// Exactly half is not a majority.
	matches := []HitTruthMatch{{HitIndex: 0, TrackID: 1, Energy: 10, IDEFraction: 0.5}}
	require.NoError(t, attribution.Accumulate(1, hits, matches, particles))
	assert.Equal(t, 0, book.PlaneHist(SpeciesMuon, MetricHitIntegral, 0).Entries)
	assert.Equal(t, 1, book.PlaneHist(SpeciesAll, MetricHitIntegral, 0).Entries)

	matches[0].IDEFraction = 0.50001
	require.NoError(t, attribution.Accumulate(1, hits, matches, particles))
	assert.Equal(t, 1, book.PlaneHist(SpeciesMuon, MetricHitIntegral, 0).Entries)
	assert.Equal(t, 1, book.PlaneHist(SpeciesMuon, MetricHitADC, 0).Entries)
	assert.Equal(t, 1, book.PlaneHist(SpeciesMuon, MetricHitAreaRatio, 0).Entries)
	assert.Equal(t, 1, book.PlaneHist(SpeciesMuon, MetricHitFit, 0).Entries)
}

func TestAccumulatePresenceRequiresEnergy(t *testing.T) {
	geom := NewGeometry()
	book := NewHistogramBook()
	attribution := NewTruthAttribution(geom, book)

	hits := []Hit{{Channel: 100, Integral: 10, SummedADC: 20, GoodnessOfFit: 1, DegreesOfFreedom: 2, Plane: 0}}
	particles := testParticles(
		TruthParticle{TrackID: 1, PDGCode: 2212},
		TruthParticle{TrackID: 2, PDGCode: 321},
	)

	// Zero-energy matches never mark a species as present, whatever the
	// fraction. Unclassified species never do either.
	matches := []HitTruthMatch{
		{HitIndex: 0, TrackID: 1, Energy: 0, IDEFraction: 0.9},
		{HitIndex: 0, TrackID: 2, Energy: 100, IDEFraction: 0.9},
	}
	require.NoError(t, attribution.Accumulate(1, hits, matches, particles))

	assert.False(t, attribution.Present[SpeciesProton])
	assert.False(t, attribution.AnyPresent())
}

func TestAccumulateUnmappedChannel(t *testing.T) {
	geom := NewGeometry()
	book := NewHistogramBook()
	attribution := NewTruthAttribution(geom, book)

	// Channel 16100 sits in a gap of the channel map. The diagnostics keep
	// the hit's own plane, the energy attribution drops it.
	hits := []Hit{{Channel: 16100, Integral: 10, SummedADC: 20, GoodnessOfFit: 1, DegreesOfFreedom: 2, Plane: 1}}
	matches := []HitTruthMatch{{HitIndex: 0, TrackID: 1, Energy: 100, IDEFraction: 0.9}}
	particles := testParticles(TruthParticle{TrackID: 1, PDGCode: 11})

	require.NoError(t, attribution.Accumulate(1, hits, matches, particles))

	for plane := 0; plane < NPlanes; plane++ {
		assert.Equal(t, 0.0, attribution.HitEnergy[plane])
	}
	assert.Equal(t, 1, book.PlaneHist(SpeciesAll, MetricHitIntegral, 1).Entries)
	assert.Equal(t, 1, book.PlaneHist(SpeciesElectron, MetricHitIntegral, 1).Entries)
	assert.True(t, attribution.Present[SpeciesElectron])
}

func TestAccumulateZeroDenominatorDiagnostics(t *testing.T) {
	geom := NewGeometry()
	book := NewHistogramBook()
	attribution := NewTruthAttribution(geom, book)

	// A hit with no ADC and no fit degrees of freedom yields 0/0 for the
	// area ratio and the reduced chi2. Those values land nowhere on the
	// axis but must not abort the run.
	hits := []Hit{{Channel: 100, Integral: 0, SummedADC: 0, GoodnessOfFit: 0, DegreesOfFreedom: 0, Plane: 0}}
	matches := []HitTruthMatch{{HitIndex: 0, TrackID: 1, Energy: 10, IDEFraction: 0.9}}
	particles := testParticles(TruthParticle{TrackID: 1, PDGCode: 11})

	require.NoError(t, attribution.Accumulate(1, hits, matches, particles))

	fit := book.PlaneHist(SpeciesAll, MetricHitFit, 0)
	assert.Equal(t, 1, fit.Entries)
	assert.Equal(t, 1.0, fit.Overflow)

	areaRatio := book.PlaneHist(SpeciesElectron, MetricHitAreaRatio, 0)
	assert.Equal(t, 1, areaRatio.Entries)
	assert.Equal(t, 1.0, areaRatio.Overflow)

	assert.InDelta(t, 9.0, attribution.HitEnergy[0], 1e-5)
}

func TestAccumulateUnknownTrack(t *testing.T) {
	geom := NewGeometry()
	book := NewHistogramBook()
	attribution := NewTruthAttribution(geom, book)

	hits := []Hit{{Channel: 100, Plane: 0}}
	matches := []HitTruthMatch{{HitIndex: 0, TrackID: 7, Energy: 1, IDEFraction: 1}}

	err := attribution.Accumulate(1, hits, matches, testParticles())
	var unknown *ErrUnknownTrack
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, int32(7), unknown.TrackID)
}

func TestAccumulateBadHitIndex(t *testing.T) {
	geom := NewGeometry()
	book := NewHistogramBook()
	attribution := NewTruthAttribution(geom, book)

	matches := []HitTruthMatch{{HitIndex: 3, TrackID: 1, Energy: 1, IDEFraction: 1}}
	particles := testParticles(TruthParticle{TrackID: 1, PDGCode: 11})

	err := attribution.Accumulate(9, nil, matches, particles)
	var bad *ErrBadRecord
	require.ErrorAs(t, err, &bad)
	assert.Equal(t, uint32(9), bad.EventID)
}

func TestAccumulateAfterFinalize(t *testing.T) {
	geom := NewGeometry()
	book := NewHistogramBook()
	attribution := NewTruthAttribution(geom, book)

	assert.Equal(t, AggIdle, attribution.State())
	require.NoError(t, attribution.Accumulate(1, nil, nil, testParticles()))
	assert.Equal(t, AggAccumulating, attribution.State())

	attribution.Finalize()
	assert.Equal(t, AggFinalized, attribution.State())

	err := attribution.Accumulate(1, nil, nil, testParticles())
	var bad *ErrBadRecord
	assert.ErrorAs(t, err, &bad)
}
