package reconcile

import "gonum.org/v1/gonum/spatial/r3"

// NPlanes is the number of readout views in the detector.
const NPlanes = 3

// SubDetector identifies one of the four TPC hit partitions.
type SubDetector int

const (
	SubDetectorWW SubDetector = iota
	SubDetectorWE
	SubDetectorEW
	SubDetectorEE
	NSubDetectors
)

func (s SubDetector) String() string {
	switch s {
	case SubDetectorWW:
		return "WW"
	case SubDetectorWE:
		return "WE"
	case SubDetectorEW:
		return "EW"
	case SubDetectorEE:
		return "EE"
	default:
		return "??"
	}
}

// SubDetectorFromLabel parses a partition label ("WW", "WE", "EW", "EE").
// Unknown labels fall back to EE, the partition carrying truth matches.
func SubDetectorFromLabel(label string) SubDetector {
	for sd := SubDetectorWW; sd < NSubDetectors; sd++ {
		if sd.String() == label {
			return sd
		}
	}
	return SubDetectorEE
}

// Hit is one reconstructed Gaussian pulse fit on a channel. Produced by the
// upstream reconstruction stage; read-only here.
type Hit struct {
	Channel          uint32
	PeakTime         float32
	PeakAmplitude    float32
	RMS              float32
	Integral         float32
	SummedADC        float32
	ROISummedADC     float32
	GoodnessOfFit    float32
	DegreesOfFreedom int32
	WireIndex        int32
	Plane            int32
}

// ChannelWaveform holds the raw digitized samples of one channel over a
// contiguous tick range, plus the ADC-to-physical scale factor.
type ChannelWaveform struct {
	Channel   uint32
	TickStart uint32
	ADCScale  float32
	Samples   []int16
}

// TruthParticle is one simulated particle. TrackID is unique within an event.
type TruthParticle struct {
	TrackID  int32
	PDGCode  int32
	Momentum r3.Vec
}

// TruthDeposit is one simulated energy deposit (IDE) on a channel/time bucket.
type TruthDeposit struct {
	Channel uint32
	TDC     uint32
	TrackID int32
	Energy  float32
}

// HitTruthMatch associates a hit of the match partition with a truth
// particle. Energy is the truth energy attributed to the hit, IDEFraction
// the fraction of the deposit attributed to it.
type HitTruthMatch struct {
	HitIndex    int32
	TrackID     int32
	Energy      float32
	IDEFraction float32
}

// EventRecord is one decoded event from the record source.
type EventRecord struct {
	RunNumber uint32
	EventID   uint32
	Timestamp uint64
	Hits      [NSubDetectors][]Hit
	Matches   []HitTruthMatch
	Particles []TruthParticle
	Deposits  []TruthDeposit
	Waveforms []ChannelWaveform
	Error     bool
}

// ParticleLookup builds the per-event track-id index. Built fresh each event
// and discarded with it.
func (e *EventRecord) ParticleLookup() map[int32]*TruthParticle {
	lookup := make(map[int32]*TruthParticle, len(e.Particles))
	for i := range e.Particles {
		lookup[e.Particles[i].TrackID] = &e.Particles[i]
	}
	return lookup
}
