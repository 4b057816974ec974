package reconcile

// AggregatorState tracks the per-event attribution lifecycle.
type AggregatorState int

const (
	AggIdle AggregatorState = iota
	AggAccumulating
	AggFinalized
)

// ideFractionThreshold is the majority-contribution cut: a species owns a
// hit's diagnostics only when it supplies strictly more than half of the
// attributed deposit.
const ideFractionThreshold = 0.5

// TruthAttribution consumes the hit/truth association records of one event
// and accumulates per-plane attributed energy, species presence flags and
// per-species hit diagnostics. Built fresh each event.
type TruthAttribution struct {
	geom  *Geometry
	book  *HistogramBook
	state AggregatorState

	// HitEnergy is the species-independent per-plane sum of
	// energy*ideFraction over all match records.
	HitEnergy [NPlanes]float64

	// Present marks species with at least one match carrying energy > 0.
	// SpeciesAll and SpeciesOther never get a flag.
	Present [SpeciesOther + 1]bool
}

func NewTruthAttribution(geom *Geometry, book *HistogramBook) *TruthAttribution {
	return &TruthAttribution{geom: geom, book: book, state: AggIdle}
}

func (a *TruthAttribution) State() AggregatorState {
	return a.state
}

// Accumulate folds one event's match records. hits is the match partition's
// hit collection; match HitIndex values reference it. A match pointing at a
// missing hit or particle is a structural fault in the association list and
// fails fast rather than attributing energy to nothing.
func (a *TruthAttribution) Accumulate(eventID uint32, hits []Hit, matches []HitTruthMatch, particles map[int32]*TruthParticle) error {
	if a.state == AggFinalized {
		return &ErrBadRecord{EventID: eventID, Reason: "attribution already finalized"}
	}
	a.state = AggAccumulating

	for i := range matches {
		match := &matches[i]
		if int(match.HitIndex) < 0 || int(match.HitIndex) >= len(hits) {
			return &ErrBadRecord{EventID: eventID, Reason: "match hit index out of range"}
		}
		hit := &hits[match.HitIndex]
		particle, ok := particles[match.TrackID]
		if !ok {
			return &ErrUnknownTrack{TrackID: match.TrackID}
		}

		sp := ClassifySpecies(particle.PDGCode)
		if match.Energy > 0 && sp != SpeciesOther {
			a.Present[sp] = true
		}

		// Diagnostic fills key on the plane the hit itself carries; they are
		// plane-local hit-shape quality, independent of the channel map.
		hitPlane := int(hit.Plane)
		integral := float64(hit.Integral)
		summedADC := float64(hit.SummedADC)
		fit := float64(hit.GoodnessOfFit) / float64(hit.DegreesOfFreedom)

		if float64(match.IDEFraction) > ideFractionThreshold && sp != SpeciesOther {
			a.book.FillPlane(sp, MetricHitIntegral, hitPlane, integral)
			a.book.FillPlane(sp, MetricHitADC, hitPlane, summedADC)
			a.book.FillPlane(sp, MetricHitAreaRatio, hitPlane, integral/summedADC)
			a.book.FillPlane(sp, MetricHitFit, hitPlane, fit)
		}

		a.book.FillPlane(SpeciesAll, MetricHitIntegral, hitPlane, integral)
		a.book.FillPlane(SpeciesAll, MetricHitADC, hitPlane, summedADC)
		a.book.FillPlane(SpeciesAll, MetricHitAreaRatio, hitPlane, integral/summedADC)
		a.book.FillPlane(SpeciesAll, MetricHitFit, hitPlane, fit)

		// Energy attribution keys on the channel map; unmapped channels are
		// dropped from the plane sums.
		plane := a.geom.PlaneOf(hit.Channel)
		if plane == PlaneInvalid {
			continue
		}
		a.HitEnergy[plane] += float64(match.Energy) * float64(match.IDEFraction)
	}
	return nil
}

// Finalize closes the aggregator. Further Accumulate calls fail.
func (a *TruthAttribution) Finalize() {
	a.state = AggFinalized
}

// AnyPresent reports whether at least one classified species carried
// attributed energy in this event.
func (a *TruthAttribution) AnyPresent() bool {
	for sp := SpeciesElectron; sp <= SpeciesPion; sp++ {
		if a.Present[sp] {
			return true
		}
	}
	return false
}
