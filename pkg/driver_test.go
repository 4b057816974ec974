package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func newTestDriver() (*Driver, *HistogramBook, *RunTotals) {
	book := NewHistogramBook()
	totals := NewRunTotals()
	driver := NewDriver(NewGeometry(), book, totals)
	return driver, book, totals
}

func singleElectronEvent() EventRecord {
	event := EventRecord{
		RunNumber: 1,
		EventID:   10,
		Particles: []TruthParticle{{TrackID: 1, PDGCode: 11, Momentum: r3.Vec{Z: 1}}},
		Matches:   []HitTruthMatch{{HitIndex: 0, TrackID: 1, Energy: 100, IDEFraction: 0.8}},
		Deposits:  []TruthDeposit{{Channel: 100, TDC: 5, TrackID: 1, Energy: 120}},
	}
	event.Hits[SubDetectorEE] = []Hit{{
		Channel:          100,
		PeakAmplitude:    12,
		RMS:              2,
		Integral:         100,
		SummedADC:        200,
		ROISummedADC:     150,
		GoodnessOfFit:    1,
		DegreesOfFreedom: 2,
		WireIndex:        55,
		Plane:            0,
	}}
	return event
}

func TestProcessEventSingleElectron(t *testing.T) {
	driver, book, totals := newTestDriver()
	event := singleElectronEvent()

	require.NoError(t, driver.ProcessEvent(&event))

	assert.Equal(t, 1, totals.Events)
	assert.Equal(t, 1, totals.Folded)

	all := totals.Totals(SpeciesAll)
	assert.InDelta(t, 80.0, all.Hit[0], 1e-5)
	assert.InDelta(t, 120.0, all.Ide[0], 1e-9)
	assert.Equal(t, 0.0, all.Hit[1])

	electron := totals.Totals(SpeciesElectron)
	assert.InDelta(t, 80.0, electron.Hit[0], 1e-5)
	assert.InDelta(t, 120.0, electron.Ide[0], 1e-9)

	assert.Equal(t, 0.0, totals.Totals(SpeciesMuon).Hit[0])

	// Every plane hist receives exactly one event-level fill.
	for plane := 0; plane < NPlanes; plane++ {
		assert.Equal(t, 1, book.PlaneHist(SpeciesAll, MetricHitEnergy, plane).Entries)
		assert.Equal(t, 1, book.PlaneHist(SpeciesElectron, MetricEnergyRatio, plane).Entries)
	}

	// The electron bucket is counted once per plane and once as winner.
	assert.Equal(t, 3.0, book.ParticleCount.Counts[0])
	assert.Equal(t, 1.0, book.MaxEParticleCount.Counts[0])

	// Kinematics go to the species-independent hists and the winner's.
	assert.Equal(t, 1, book.ThetaHist(SpeciesAll).Entries)
	assert.Equal(t, 1, book.ThetaHist(SpeciesElectron).Entries)
	assert.Equal(t, 1, book.PhiHist(SpeciesElectron).Entries)
	assert.Equal(t, 0, book.ThetaHist(SpeciesMuon).Entries)

	// Hit diagnostics land on the partition the hit belongs to.
	assert.Equal(t, 1, book.QualityHist(SubDetectorEE, QualityPeakAmplitude).Entries)
	assert.Equal(t, 1, book.QualityHist(SubDetectorEE, QualityROISummedADC).Entries)
	assert.Equal(t, 0, book.QualityHist(SubDetectorWW, QualityPeakAmplitude).Entries)
}

func TestProcessEventTwoSpeciesFanOut(t *testing.T) {
	driver, book, totals := newTestDriver()

	event := EventRecord{
		RunNumber: 1,
		EventID:   11,
		Particles: []TruthParticle{
			{TrackID: 1, PDGCode: 11, Momentum: r3.Vec{Z: 1}},
			{TrackID: 2, PDGCode: 13, Momentum: r3.Vec{X: 1}},
		},
		Matches: []HitTruthMatch{
			{HitIndex: 0, TrackID: 1, Energy: 60, IDEFraction: 0.5},
			{HitIndex: 0, TrackID: 2, Energy: 40, IDEFraction: 0.5},
		},
		Deposits: []TruthDeposit{
			{Channel: 2500, TDC: 1, TrackID: 1, Energy: 50},
			{Channel: 2500, TDC: 2, TrackID: 2, Energy: 50},
		},
	}
	event.Hits[SubDetectorEE] = []Hit{{
		Channel: 2500, Integral: 10, SummedADC: 20,
		GoodnessOfFit: 1, DegreesOfFreedom: 2, Plane: 1,
	}}

	require.NoError(t, driver.ProcessEvent(&event))

	// Both species receive the same per-plane event totals.
	electron := totals.Totals(SpeciesElectron)
	muon := totals.Totals(SpeciesMuon)
	assert.InDelta(t, 50.0, electron.Hit[1], 1e-9)
	assert.InDelta(t, 50.0, muon.Hit[1], 1e-9)
	assert.InDelta(t, 100.0, electron.Ide[1], 1e-9)
	assert.InDelta(t, 100.0, muon.Ide[1], 1e-9)

	assert.Equal(t, 3.0, book.ParticleCount.Counts[0])
	assert.Equal(t, 3.0, book.ParticleCount.Counts[2])

	// The tie resolves to the first deposit, so only the electron gets
	// the kinematic fills.
	assert.Equal(t, 1.0, book.MaxEParticleCount.Counts[0])
	assert.Equal(t, 1, book.ThetaHist(SpeciesElectron).Entries)
	assert.Equal(t, 0, book.ThetaHist(SpeciesMuon).Entries)
}

func TestProcessEventNoPresenceFoldsNothing(t *testing.T) {
	driver, book, totals := newTestDriver()

	event := EventRecord{
		RunNumber: 1,
		EventID:   12,
		Particles: []TruthParticle{{TrackID: 1, PDGCode: 11}},
		Matches:   []HitTruthMatch{{HitIndex: 0, TrackID: 1, Energy: 0, IDEFraction: 0.9}},
		Deposits:  []TruthDeposit{{Channel: 100, TrackID: 1, Energy: 50}},
	}
	event.Hits[SubDetectorEE] = []Hit{{
		Channel: 100, Integral: 10, SummedADC: 20,
		GoodnessOfFit: 1, DegreesOfFreedom: 2, Plane: 0,
	}}

	require.NoError(t, driver.ProcessEvent(&event))

	assert.Equal(t, 1, totals.Events)
	assert.Equal(t, 0, totals.Folded)
	assert.Equal(t, 0.0, totals.Totals(SpeciesAll).Hit[0])
	assert.Equal(t, 0.0, totals.Totals(SpeciesAll).Ide[0])
	assert.Equal(t, 0, book.PlaneHist(SpeciesAll, MetricHitEnergy, 0).Entries)
	assert.Equal(t, 0, book.ThetaHist(SpeciesAll).Entries)

	// Hit diagnostics still run; the skip only covers the energy folding.
	assert.Equal(t, 1, book.QualityHist(SubDetectorEE, QualityPeakAmplitude).Entries)
	assert.Equal(t, 1, book.PlaneHist(SpeciesAll, MetricHitIntegral, 0).Entries)
}

func TestProcessEventUnknownTrackFails(t *testing.T) {
	driver, _, totals := newTestDriver()

	event := EventRecord{
		RunNumber: 1,
		EventID:   13,
		Matches:   []HitTruthMatch{{HitIndex: 0, TrackID: 42, Energy: 1, IDEFraction: 1}},
	}
	event.Hits[SubDetectorEE] = []Hit{{Channel: 100, Integral: 1, SummedADC: 1, DegreesOfFreedom: 1, Plane: 0}}

	err := driver.ProcessEvent(&event)
	var unknown *ErrUnknownTrack
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, 0, totals.Folded)
}

func TestProcessEventCapturesOverlayOnce(t *testing.T) {
	driver, _, _ := newTestDriver()

	event := singleElectronEvent()
	event.RunNumber = uint32(GetConfiguration().DisplayRun)
	event.EventID = uint32(GetConfiguration().DisplayEvent)
	event.Waveforms = []ChannelWaveform{{
		Channel:   uint32(GetConfiguration().DisplayChannel),
		TickStart: 400,
		ADCScale:  1.0,
		Samples:   []int16{1, 2, 3, 4},
	}}

	require.NoError(t, driver.ProcessEvent(&event))
	require.NotNil(t, driver.Overlay)
	assert.Equal(t, uint32(GetConfiguration().DisplayChannel), driver.Overlay.Channel)
	assert.Equal(t, 400, driver.Overlay.LowTick)
	assert.Len(t, driver.Overlay.Raw, 4)
	assert.Len(t, driver.Overlay.Model, 4)

	first := driver.Overlay
	require.NoError(t, driver.ProcessEvent(&event))
	assert.Same(t, first, driver.Overlay)
}

func TestProcessEventMissingOverlayChannelIsNotFatal(t *testing.T) {
	driver, _, totals := newTestDriver()

	event := singleElectronEvent()
	event.RunNumber = uint32(GetConfiguration().DisplayRun)
	event.EventID = uint32(GetConfiguration().DisplayEvent)

	require.NoError(t, driver.ProcessEvent(&event))
	assert.Nil(t, driver.Overlay)
	assert.Equal(t, 1, totals.Folded)
}
