package reconcile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"unsafe"

	"gonum.org/v1/gonum/spatial/r3"
)

// Record types in the event stream. Only physics and calibration records
// carry event content; anything else is framing and is skipped.
const (
	PhysicsRecord     uint32 = 1
	CalibrationRecord uint32 = 2
)

// RecordHeaderStruct is the fixed little-endian header preceding every
// record. RecordSize includes the header itself.
type RecordHeaderStruct struct {
	RecordSize uint32
	RecordType uint32
	EventId    uint32
	RunNumber  uint32
	Timestamp  uint64
	NHits      [NSubDetectors]uint32
	NMatches   uint32
	NParticles uint32
	NDeposits  uint32
	NWaveforms uint32
}

type hitStruct struct {
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

type matchStruct struct {
	HitIndex    int32
	TrackID     int32
	Energy      float32
	IDEFraction float32
}

type particleStruct struct {
	TrackID int32
	PDGCode int32
	Px      float32
	Py      float32
	Pz      float32
}

type depositStruct struct {
	Channel uint32
	TDC     uint32
	TrackID int32
	Energy  float32
}

type waveformHeaderStruct struct {
	Channel   uint32
	TickStart uint32
	NSamples  uint32
	ADCScale  float32
}

type FileReader struct {
	File     *os.File
	EvtCount int
}

func NewFileReader(file *os.File) *FileReader {
	return &FileReader{File: file, EvtCount: -1}
}

// NextRaw returns the next physics/calibration record still encoded,
// honoring the skip and max-events window from the configuration.
func (f *FileReader) NextRaw() (RecordHeaderStruct, []byte, error) {
	for {
		header, payload, err := readRecord(f.File)
		if err != nil {
			return header, nil, err
		}
		if !validRecord(header) {
			continue
		}
		f.EvtCount++
		if f.EvtCount >= configuration.MaxEvents {
			if configuration.Verbosity > 1 {
				logger.Info("Max events reached", "reader")
			}
			return header, nil, io.EOF
		}
		if f.EvtCount < configuration.Skip {
			continue
		}
		return header, payload, nil
	}
}

// NextEvent returns the next record decoded.
func (f *FileReader) NextEvent() (EventRecord, error) {
	header, payload, err := f.NextRaw()
	if err != nil {
		return EventRecord{}, err
	}
	return DecodeRecord(header, payload)
}

func validRecord(header RecordHeaderStruct) bool {
	return header.RecordType == PhysicsRecord || header.RecordType == CalibrationRecord
}

func readRecord(file *os.File) (RecordHeaderStruct, []byte, error) {
	var header RecordHeaderStruct
	headerSize := unsafe.Sizeof(header)
	headerBinary := make([]byte, headerSize)
	if _, err := io.ReadFull(file, headerBinary); err != nil {
		return header, nil, err
	}

	headerReader := bytes.NewReader(headerBinary)
	binary.Read(headerReader, binary.LittleEndian, &header)

	if uint32(headerSize) > header.RecordSize {
		return header, nil, &ErrBadRecord{EventID: header.EventId, Reason: "record smaller than header"}
	}
	payloadSize := header.RecordSize - uint32(headerSize)
	payload := make([]byte, payloadSize)
	if _, err := io.ReadFull(file, payload); err != nil {
		return header, nil, &ErrBadRecord{EventID: header.EventId, Reason: "truncated payload"}
	}
	return header, payload, nil
}

// CountEvents scans the whole file for valid records, returning the count
// and the run number of the first one. The file is rewound afterwards.
func CountEvents(file *os.File) (int, uint32) {
	evtCount := 0
	var runNumber uint32
	for {
		header, _, err := readRecord(file)
		if err != nil {
			break
		}
		if !validRecord(header) {
			continue
		}
		if evtCount == 0 {
			runNumber = header.RunNumber
		}
		evtCount++
	}
	// Go back to the beginning of the file
	file.Seek(0, 0)
	if configuration.Verbosity > 0 && logger != nil {
		logger.Info(fmt.Sprintf("Number of events: %d", evtCount), "reader")
	}
	return evtCount, runNumber
}

// DecodeRecord unpacks a record payload into an EventRecord.
func DecodeRecord(header RecordHeaderStruct, payload []byte) (EventRecord, error) {
	event := EventRecord{
		RunNumber: header.RunNumber,
		EventID:   header.EventId,
		Timestamp: header.Timestamp,
	}
	reader := bytes.NewReader(payload)

	for sd := 0; sd < int(NSubDetectors); sd++ {
		hits := make([]hitStruct, header.NHits[sd])
		if err := binary.Read(reader, binary.LittleEndian, hits); err != nil {
			return event, &ErrBadRecord{EventID: header.EventId, Reason: "short hit section"}
		}
		event.Hits[sd] = make([]Hit, len(hits))
		for i, h := range hits {
			event.Hits[sd][i] = Hit{
				Channel:          h.Channel,
				PeakTime:         h.PeakTime,
				PeakAmplitude:    h.PeakAmplitude,
				RMS:              h.RMS,
				Integral:         h.Integral,
				SummedADC:        h.SummedADC,
				ROISummedADC:     h.ROISummedADC,
				GoodnessOfFit:    h.GoodnessOfFit,
				DegreesOfFreedom: h.DegreesOfFreedom,
				WireIndex:        h.WireIndex,
				Plane:            h.Plane,
			}
		}
	}

	matches := make([]matchStruct, header.NMatches)
	if err := binary.Read(reader, binary.LittleEndian, matches); err != nil {
		return event, &ErrBadRecord{EventID: header.EventId, Reason: "short match section"}
	}
	event.Matches = make([]HitTruthMatch, len(matches))
	for i, m := range matches {
		event.Matches[i] = HitTruthMatch{
			HitIndex:    m.HitIndex,
			TrackID:     m.TrackID,
			Energy:      m.Energy,
			IDEFraction: m.IDEFraction,
		}
	}

	particles := make([]particleStruct, header.NParticles)
	if err := binary.Read(reader, binary.LittleEndian, particles); err != nil {
		return event, &ErrBadRecord{EventID: header.EventId, Reason: "short particle section"}
	}
	event.Particles = make([]TruthParticle, len(particles))
	for i, p := range particles {
		event.Particles[i] = TruthParticle{
			TrackID:  p.TrackID,
			PDGCode:  p.PDGCode,
			Momentum: r3.Vec{X: float64(p.Px), Y: float64(p.Py), Z: float64(p.Pz)},
		}
	}

	deposits := make([]depositStruct, header.NDeposits)
	if err := binary.Read(reader, binary.LittleEndian, deposits); err != nil {
		return event, &ErrBadRecord{EventID: header.EventId, Reason: "short deposit section"}
	}
	event.Deposits = make([]TruthDeposit, len(deposits))
	for i, d := range deposits {
		event.Deposits[i] = TruthDeposit{
			Channel: d.Channel,
			TDC:     d.TDC,
			TrackID: d.TrackID,
			Energy:  d.Energy,
		}
	}

	event.Waveforms = make([]ChannelWaveform, 0, header.NWaveforms)
	for i := uint32(0); i < header.NWaveforms; i++ {
		var wfHeader waveformHeaderStruct
		if err := binary.Read(reader, binary.LittleEndian, &wfHeader); err != nil {
			return event, &ErrBadRecord{EventID: header.EventId, Reason: "short waveform header"}
		}
		samples := make([]int16, wfHeader.NSamples)
		if err := binary.Read(reader, binary.LittleEndian, samples); err != nil {
			return event, &ErrBadRecord{EventID: header.EventId, Reason: "short waveform samples"}
		}
		event.Waveforms = append(event.Waveforms, ChannelWaveform{
			Channel:   wfHeader.Channel,
			TickStart: wfHeader.TickStart,
			ADCScale:  wfHeader.ADCScale,
			Samples:   samples,
		})
	}

	return event, nil
}

// EncodeRecord serializes an event back into the record format. Used to
// produce fixtures and small derived files.
func EncodeRecord(event *EventRecord) ([]byte, error) {
	var header RecordHeaderStruct
	header.RecordType = PhysicsRecord
	header.EventId = event.EventID
	header.RunNumber = event.RunNumber
	header.Timestamp = event.Timestamp

	payload := new(bytes.Buffer)
	for sd := 0; sd < int(NSubDetectors); sd++ {
		header.NHits[sd] = uint32(len(event.Hits[sd]))
		for i := range event.Hits[sd] {
			h := &event.Hits[sd][i]
			packed := hitStruct{
				Channel:          h.Channel,
				PeakTime:         h.PeakTime,
				PeakAmplitude:    h.PeakAmplitude,
				RMS:              h.RMS,
				Integral:         h.Integral,
				SummedADC:        h.SummedADC,
				ROISummedADC:     h.ROISummedADC,
				GoodnessOfFit:    h.GoodnessOfFit,
				DegreesOfFreedom: h.DegreesOfFreedom,
				WireIndex:        h.WireIndex,
				Plane:            h.Plane,
			}
			if err := binary.Write(payload, binary.LittleEndian, packed); err != nil {
				return nil, err
			}
		}
	}

	header.NMatches = uint32(len(event.Matches))
	for _, m := range event.Matches {
		packed := matchStruct{HitIndex: m.HitIndex, TrackID: m.TrackID, Energy: m.Energy, IDEFraction: m.IDEFraction}
		if err := binary.Write(payload, binary.LittleEndian, packed); err != nil {
			return nil, err
		}
	}

	header.NParticles = uint32(len(event.Particles))
	for _, p := range event.Particles {
		packed := particleStruct{
			TrackID: p.TrackID,
			PDGCode: p.PDGCode,
			Px:      float32(p.Momentum.X),
			Py:      float32(p.Momentum.Y),
			Pz:      float32(p.Momentum.Z),
		}
		if err := binary.Write(payload, binary.LittleEndian, packed); err != nil {
			return nil, err
		}
	}

	header.NDeposits = uint32(len(event.Deposits))
	for _, d := range event.Deposits {
		packed := depositStruct{Channel: d.Channel, TDC: d.TDC, TrackID: d.TrackID, Energy: d.Energy}
		if err := binary.Write(payload, binary.LittleEndian, packed); err != nil {
			return nil, err
		}
	}

	header.NWaveforms = uint32(len(event.Waveforms))
	for i := range event.Waveforms {
		wf := &event.Waveforms[i]
		wfHeader := waveformHeaderStruct{
			Channel:   wf.Channel,
			TickStart: wf.TickStart,
			NSamples:  uint32(len(wf.Samples)),
			ADCScale:  wf.ADCScale,
		}
		if err := binary.Write(payload, binary.LittleEndian, wfHeader); err != nil {
			return nil, err
		}
		if err := binary.Write(payload, binary.LittleEndian, wf.Samples); err != nil {
			return nil, err
		}
	}

	headerSize := int(unsafe.Sizeof(header))
	header.RecordSize = uint32(headerSize + payload.Len())

	out := new(bytes.Buffer)
	if err := binary.Write(out, binary.LittleEndian, header); err != nil {
		return nil, err
	}
	if _, err := out.Write(payload.Bytes()); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
