package reconcile

import "fmt"

// PlaneTotals is the running truth/reco energy state of one species bucket.
type PlaneTotals struct {
	Hit [NPlanes]float64
	Ide [NPlanes]float64
}

// RunTotals is the whole-run aggregation context. It is the only state
// shared across events and is owned by the caller, not the package.
type RunTotals struct {
	perSpecies [NSummarySpecies]PlaneTotals
	Events     int
	Folded     int
}

func NewRunTotals() *RunTotals {
	return &RunTotals{}
}

// Totals returns the running totals of a summary species bucket.
func (t *RunTotals) Totals(sp Species) PlaneTotals {
	return t.perSpecies[sp]
}

func (t *RunTotals) fold(sp Species, plane int, hitEnergy float64, ideEnergy float64) {
	t.perSpecies[sp].Hit[plane] += hitEnergy
	t.perSpecies[sp].Ide[plane] += ideEnergy
}

// WireOverlay is the single diagnostic raw-vs-model rendering of the run.
type WireOverlay struct {
	Channel uint32
	LowTick int
	Raw     []float64
	Model   []float64
}

// Driver reconciles one event at a time: truth attribution and deposit scan
// feed per-event ratios, histogram fills and the running totals. Strictly
// sequential; one event either folds completely or is skipped completely.
type Driver struct {
	geom           *Geometry
	book           *HistogramBook
	totals         *RunTotals
	matchPartition SubDetector

	// Overlay is captured once, for the configured run/event/channel.
	Overlay *WireOverlay
}

func NewDriver(geom *Geometry, book *HistogramBook, totals *RunTotals) *Driver {
	return &Driver{
		geom:           geom,
		book:           book,
		totals:         totals,
		matchPartition: SubDetectorFromLabel(configuration.MatchPartition),
	}
}

// ProcessEvent folds one event into the running aggregates.
func (d *Driver) ProcessEvent(event *EventRecord) error {
	d.totals.Events++

	for sd := SubDetectorWW; sd < NSubDetectors; sd++ {
		d.fillHitQuality(sd, event.Hits[sd])
	}

	particles := event.ParticleLookup()

	if d.Overlay == nil && int(event.RunNumber) == configuration.DisplayRun &&
		int(event.EventID) == configuration.DisplayEvent {
		d.captureOverlay(event)
	}

	attribution := NewTruthAttribution(d.geom, d.book)
	err := attribution.Accumulate(event.EventID, event.Hits[d.matchPartition], event.Matches, particles)
	if err != nil {
		return err
	}
	attribution.Finalize()

	scan := ScanDeposits(d.geom, event.Deposits, particles)

	// Events where no classified species carried attributed energy
	// contribute nothing, including their plane sums and truth totals.
	if !attribution.AnyPresent() {
		return nil
	}

	if scan.Resolved {
		d.book.MaxEParticleCount.Fill(countBucket(scan.MaxSpecies))
	}

	// Event-level diagnostic: per-plane quotients summed independently,
	// not the ratio of sums.
	eventRatio := 0.0
	for plane := 0; plane < NPlanes; plane++ {
		if scan.IdeEnergy[plane] > 0 {
			eventRatio += attribution.HitEnergy[plane] / scan.IdeEnergy[plane]
		}
	}

	d.book.FillTheta(SpeciesAll, scan.Theta, eventRatio)
	d.book.FillPhi(SpeciesAll, scan.Phi, eventRatio)

	for plane := 0; plane < NPlanes; plane++ {
		hitEnergy := attribution.HitEnergy[plane]
		ideEnergy := scan.IdeEnergy[plane]
		ratio := GetFillValue(hitEnergy, ideEnergy)

		d.book.FillPlane(SpeciesAll, MetricHitEnergy, plane, hitEnergy)
		d.book.FillPlane(SpeciesAll, MetricIdeEnergy, plane, ideEnergy)
		d.book.FillPlane(SpeciesAll, MetricEnergyRatio, plane, ratio)
		d.totals.fold(SpeciesAll, plane, hitEnergy, ideEnergy)

		// Fan-out: every present species receives the same event totals.
		for sp := SpeciesElectron; sp <= SpeciesPion; sp++ {
			if !attribution.Present[sp] {
				continue
			}
			d.book.FillPlane(sp, MetricHitEnergy, plane, hitEnergy)
			d.book.FillPlane(sp, MetricIdeEnergy, plane, ideEnergy)
			d.book.FillPlane(sp, MetricEnergyRatio, plane, ratio)
			d.book.ParticleCount.Fill(countBucket(sp))
			d.totals.fold(sp, plane, hitEnergy, ideEnergy)

			// Kinematics are scoped to the winning species on plane 0 only,
			// to avoid triple-counting across planes.
			if plane == 0 && scan.Resolved && scan.MaxSpecies == sp {
				d.book.FillTheta(sp, scan.Theta, eventRatio)
				d.book.FillPhi(sp, scan.Phi, eventRatio)
			}
		}
	}

	d.totals.Folded++
	return nil
}

func (d *Driver) fillHitQuality(sd SubDetector, hits []Hit) {
	nHits := float64(len(hits))
	for i := range hits {
		hit := &hits[i]
		d.book.FillQuality(sd, QualityPeakAmplitude, float64(hit.PeakAmplitude))
		d.book.FillQuality(sd, QualityNHits, nHits)
		d.book.FillQuality(sd, QualityRMS, float64(hit.RMS))
		d.book.FillQuality(sd, QualityIntegral, float64(hit.Integral))
		d.book.FillQuality(sd, QualityGoodnessOfFit, float64(hit.GoodnessOfFit))
		d.book.FillQuality(sd, QualityHitSummedADC, float64(hit.SummedADC))
		d.book.FillQuality(sd, QualityROISummedADC, float64(hit.ROISummedADC))
		d.book.FillQuality(sd, QualityChannel, float64(hit.WireIndex))
	}
}

// captureOverlay renders the diagnostic waveform once. A missing channel is
// fatal only for the diagnostic, never for the event loop.
func (d *Driver) captureOverlay(event *EventRecord) {
	channel := uint32(configuration.DisplayChannel)
	lowTick := configuration.DisplayTickLow
	highTick := configuration.DisplayTickHi
	if highTick <= lowTick {
		wf, err := FindWaveform(channel, event.Waveforms)
		if err != nil {
			logger.Error(fmt.Sprintf("overlay skipped: %v", err))
			return
		}
		lowTick = int(wf.TickStart)
		highTick = lowTick + len(wf.Samples)
	}

	raw, model, err := WireModel(channel, event.Waveforms, event.Hits[d.matchPartition], lowTick, highTick)
	if err != nil {
		logger.Error(fmt.Sprintf("overlay skipped: %v", err))
		return
	}
	d.Overlay = &WireOverlay{Channel: channel, LowTick: lowTick, Raw: raw, Model: model}
	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Captured wire overlay for channel %d, event %d", channel, event.EventID)
		logger.Info(message, "driver")
	}
}
