package reconcile

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// AngleSentinel marks emission angles with no resolved max-energy particle.
const AngleSentinel = -9999.0

// DepositScan is the outcome of walking one event's truth deposits.
type DepositScan struct {
	// IdeEnergy is the per-plane sum of deposited energy. Deposits on
	// channels outside the channel map are excluded.
	IdeEnergy [NPlanes]float64

	// MaxTrackID identifies the particle of the single highest-energy
	// deposit (first maximum encountered wins on ties). -1 when the event
	// has no deposits.
	MaxTrackID int32

	// MaxSpecies classifies the winning particle; valid only when Resolved.
	MaxSpecies Species
	Resolved   bool

	// Theta and Phi are the winning particle's emission angles, or
	// AngleSentinel when unresolved.
	Theta float64
	Phi   float64
}

// ScanDeposits walks the full deposit list of an event. O(total deposits);
// this dominates per-event cost for large simulated events.
func ScanDeposits(geom *Geometry, deposits []TruthDeposit, particles map[int32]*TruthParticle) DepositScan {
	scan := DepositScan{
		MaxTrackID: -1,
		Theta:      AngleSentinel,
		Phi:        AngleSentinel,
	}

	maxEnergy := -1.0
	for i := range deposits {
		dep := &deposits[i]
		plane := geom.PlaneOf(dep.Channel)
		if plane != PlaneInvalid {
			scan.IdeEnergy[plane] += float64(dep.Energy)
		}
		if float64(dep.Energy) > maxEnergy {
			maxEnergy = float64(dep.Energy)
			scan.MaxTrackID = dep.TrackID
			if particle, ok := particles[dep.TrackID]; ok {
				scan.MaxSpecies = ClassifySpecies(particle.PDGCode)
				scan.Resolved = true
			}
		}
	}

	if scan.MaxTrackID != -1 {
		if particle, ok := particles[scan.MaxTrackID]; ok {
			scan.Theta, scan.Phi = emissionAngles(particle.Momentum)
		}
	}
	return scan
}

// emissionAngles returns the polar angle from the beam axis (z) and the
// azimuth in the transverse plane, spherical convention.
func emissionAngles(p r3.Vec) (theta float64, phi float64) {
	theta = math.Atan2(math.Hypot(p.X, p.Y), p.Z)
	phi = math.Atan2(p.Y, p.X)
	return theta, phi
}
