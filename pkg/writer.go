package reconcile

import (
	"sort"

	hdf5 "github.com/jmbenlloch/go-hdf5"
	"golang.org/x/exp/maps"
)

// Writer persists the run artifacts: run/event bookkeeping, the histogram
// book (one group per species bucket plus the per-subdetector hit quality
// groups), the diagnostic wire overlay and the final summary table.
type Writer struct {
	File         *hdf5.File
	RunGroup     *hdf5.Group
	SummaryGroup *hdf5.Group
	CountsGroup  *hdf5.Group
	RunInfoTable *hdf5.Dataset
	EventTable   *hdf5.Dataset
	SummaryTable *hdf5.Dataset

	groups map[string]*hdf5.Group
}

func NewWriter(fname string) (*Writer, error) {
	// Set string size for HDF5
	hdf5.SetStringLength(STRLEN)

	writer := &Writer{groups: make(map[string]*hdf5.Group)}
	var err error
	if writer.File, err = openFile(fname); err != nil {
		return nil, err
	}
	if writer.RunGroup, err = createGroup(writer.File, "Run"); err != nil {
		return nil, err
	}
	if writer.SummaryGroup, err = createGroup(writer.File, "Summary"); err != nil {
		return nil, err
	}
	if writer.CountsGroup, err = createGroup(writer.File, "Counts"); err != nil {
		return nil, err
	}
	if writer.RunInfoTable, err = createTable(writer.RunGroup, "runInfo", RunInfoHDF5{}); err != nil {
		return nil, err
	}
	if writer.EventTable, err = createTable(writer.RunGroup, "events", EventInfoHDF5{}); err != nil {
		return nil, err
	}
	if writer.SummaryTable, err = createTable(writer.SummaryGroup, "ratios", SummaryHDF5{}); err != nil {
		return nil, err
	}
	return writer, nil
}

func (w *Writer) WriteRunInfo(runNumber uint32) error {
	return writeEntryToTable(w.RunInfoTable, RunInfoHDF5{run_number: int32(runNumber)})
}

func (w *Writer) WriteEventInfo(event *EventRecord) error {
	return writeEntryToTable(w.EventTable, EventInfoHDF5{
		evt_number: int32(event.EventID),
		timestamp:  event.Timestamp,
	})
}

// WriteBook persists every aggregate of the book, each histogram as one
// bin-content table inside its group.
func (w *Writer) WriteBook(book *HistogramBook) error {
	for sp := SpeciesAll; sp < NSummarySpecies; sp++ {
		group, err := w.group(speciesGroup(sp))
		if err != nil {
			return err
		}
		oneDim, twoDim := book.SpeciesHists(sp)
		for _, h := range oneDim {
			if err := w.writeH1D(group, h); err != nil {
				return err
			}
		}
		for _, h := range twoDim {
			if err := w.writeH2D(group, h); err != nil {
				return err
			}
		}
	}

	for sd := SubDetectorWW; sd < NSubDetectors; sd++ {
		group, err := w.group("Hits_" + sd.String())
		if err != nil {
			return err
		}
		for _, h := range book.QualityHists(sd) {
			if err := w.writeH1D(group, h); err != nil {
				return err
			}
		}
	}

	if err := w.writeH1D(w.CountsGroup, book.ParticleCount); err != nil {
		return err
	}
	return w.writeH1D(w.CountsGroup, book.MaxEParticleCount)
}

func (w *Writer) writeH1D(group *hdf5.Group, h *H1D) error {
	table, err := createTable(group, h.Name, BinContentHDF5{})
	if err != nil {
		return err
	}
	defer table.Close()

	rows := make([]BinContentHDF5, h.Bins)
	for bin := 0; bin < h.Bins; bin++ {
		rows[bin] = BinContentHDF5{
			bin:     int32(bin),
			center:  float32(h.BinCenter(bin)),
			content: float32(h.Counts[bin]),
		}
	}
	return writeArrayToTable(table, &rows)
}

func (w *Writer) writeH2D(group *hdf5.Group, h *H2D) error {
	table, err := createTable(group, h.Name, Bin2DContentHDF5{})
	if err != nil {
		return err
	}
	defer table.Close()

	rows := make([]Bin2DContentHDF5, 0, h.XBins*h.YBins)
	for xbin := 0; xbin < h.XBins; xbin++ {
		for ybin := 0; ybin < h.YBins; ybin++ {
			rows = append(rows, Bin2DContentHDF5{
				xbin:    int32(xbin),
				ybin:    int32(ybin),
				xcenter: float32(h.XBinCenter(xbin)),
				ycenter: float32(h.YBinCenter(ybin)),
				content: float32(h.Counts[xbin*h.YBins+ybin]),
			})
		}
	}
	return writeArrayToTable(table, &rows)
}

// WriteOverlay persists the diagnostic raw-vs-model samples.
func (w *Writer) WriteOverlay(overlay *WireOverlay) error {
	group, err := w.group("WireOverlay")
	if err != nil {
		return err
	}
	table, err := createTable(group, "samples", OverlaySampleHDF5{})
	if err != nil {
		return err
	}
	defer table.Close()

	rows := make([]OverlaySampleHDF5, len(overlay.Raw))
	for i := range overlay.Raw {
		rows[i] = OverlaySampleHDF5{
			tick:  int32(overlay.LowTick + i),
			raw:   float32(overlay.Raw[i]),
			model: float32(overlay.Model[i]),
		}
	}
	return writeArrayToTable(table, &rows)
}

func (w *Writer) WriteSummary(rows []SummaryRow) error {
	entries := make([]SummaryHDF5, len(rows))
	for i, row := range rows {
		entries[i] = SummaryHDF5{
			species: convertToHdf5String(row.Species.String()),
			overall: float32(row.Overall),
			plane0:  float32(row.Planes[0]),
			plane1:  float32(row.Planes[1]),
			plane2:  float32(row.Planes[2]),
		}
	}
	return writeArrayToTable(w.SummaryTable, &entries)
}

func (w *Writer) group(name string) (*hdf5.Group, error) {
	if g, ok := w.groups[name]; ok {
		return g, nil
	}
	g, err := createGroup(w.File, name)
	if err != nil {
		return nil, err
	}
	w.groups[name] = g
	return g, nil
}

func (w *Writer) Close() {
	w.RunInfoTable.Close()
	w.EventTable.Close()
	w.SummaryTable.Close()

	names := maps.Keys(w.groups)
	sort.Strings(names)
	for _, name := range names {
		w.groups[name].Close()
	}
	w.RunGroup.Close()
	w.SummaryGroup.Close()
	w.CountsGroup.Close()
	w.File.Close()
}
