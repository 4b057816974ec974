package reconcile

// Species is the coarse truth-particle classification bucket. The first six
// values index the summary table rows; Other never owns a bucket of its own
// beyond the max-energy particle counter.
type Species int

const (
	SpeciesAll Species = iota
	SpeciesElectron
	SpeciesPhoton
	SpeciesMuon
	SpeciesProton
	SpeciesPion
	SpeciesOther
)

// NSummarySpecies is the number of species rows in the final summary
// (All plus the five classified species; Other is excluded).
const NSummarySpecies = 6

func (s Species) String() string {
	switch s {
	case SpeciesAll:
		return "All"
	case SpeciesElectron:
		return "Electron"
	case SpeciesPhoton:
		return "Photon"
	case SpeciesMuon:
		return "Muon"
	case SpeciesProton:
		return "Proton"
	case SpeciesPion:
		return "Pion"
	default:
		return "Other"
	}
}

// ClassifySpecies maps a PDG code to a species bucket. The mapping is total
// and ignores the sign of the code: 11 electron, 22 photon, 13 muon,
// 211/111 pion, 2212 proton, anything else Other.
func ClassifySpecies(pdg int32) Species {
	if pdg < 0 {
		pdg = -pdg
	}
	switch pdg {
	case 11:
		return SpeciesElectron
	case 22:
		return SpeciesPhoton
	case 13:
		return SpeciesMuon
	case 211, 111:
		return SpeciesPion
	case 2212:
		return SpeciesProton
	default:
		return SpeciesOther
	}
}

// countBucket is the bin index used by the particle-count histograms:
// electron 0, photon 1, muon 2, proton 3, pion 4, other 5.
func countBucket(s Species) float64 {
	switch s {
	case SpeciesElectron:
		return 0
	case SpeciesPhoton:
		return 1
	case SpeciesMuon:
		return 2
	case SpeciesProton:
		return 3
	case SpeciesPion:
		return 4
	default:
		return 5
	}
}
