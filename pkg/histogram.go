package reconcile

import (
	"fmt"
	"math"
)

// H1D is a fixed-binning 1D histogram aggregate.
type H1D struct {
	Name      string
	Bins      int
	Low       float64
	High      float64
	Counts    []float64
	Entries   int
	Underflow float64
	Overflow  float64
}

func NewH1D(name string, bins int, low float64, high float64) *H1D {
	return &H1D{
		Name:   name,
		Bins:   bins,
		Low:    low,
		High:   high,
		Counts: make([]float64, bins),
	}
}

func (h *H1D) Fill(v float64) {
	h.Entries++
	switch {
	// NaN fails every range comparison and would index Counts with a
	// garbage bin; it counts as an entry outside the axis instead.
	case math.IsNaN(v):
		h.Overflow++
	case v < h.Low:
		h.Underflow++
	case v >= h.High:
		h.Overflow++
	default:
		bin := int((v - h.Low) / (h.High - h.Low) * float64(h.Bins))
		h.Counts[bin]++
	}
}

func (h *H1D) BinCenter(bin int) float64 {
	width := (h.High - h.Low) / float64(h.Bins)
	return h.Low + (float64(bin)+0.5)*width
}

// H2D is a fixed-binning 2D histogram aggregate, row-major in x.
type H2D struct {
	Name    string
	XBins   int
	YBins   int
	XLow    float64
	XHigh   float64
	YLow    float64
	YHigh   float64
	Counts  []float64
	Entries int
}

func NewH2D(name string, xbins int, xlow, xhigh float64, ybins int, ylow, yhigh float64) *H2D {
	return &H2D{
		Name:   name,
		XBins:  xbins,
		YBins:  ybins,
		XLow:   xlow,
		XHigh:  xhigh,
		YLow:   ylow,
		YHigh:  yhigh,
		Counts: make([]float64, xbins*ybins),
	}
}

func (h *H2D) Fill(x float64, y float64) {
	h.Entries++
	if math.IsNaN(x) || math.IsNaN(y) {
		return
	}
	if x < h.XLow || x >= h.XHigh || y < h.YLow || y >= h.YHigh {
		return
	}
	xbin := int((x - h.XLow) / (h.XHigh - h.XLow) * float64(h.XBins))
	ybin := int((y - h.YLow) / (h.YHigh - h.YLow) * float64(h.YBins))
	h.Counts[xbin*h.YBins+ybin]++
}

func (h *H2D) XBinCenter(bin int) float64 {
	width := (h.XHigh - h.XLow) / float64(h.XBins)
	return h.XLow + (float64(bin)+0.5)*width
}

func (h *H2D) YBinCenter(bin int) float64 {
	width := (h.YHigh - h.YLow) / float64(h.YBins)
	return h.YLow + (float64(bin)+0.5)*width
}

// Metric is one of the per-plane, per-species distributions.
type Metric int

const (
	MetricHitEnergy Metric = iota
	MetricIdeEnergy
	MetricEnergyRatio
	MetricHitIntegral
	MetricHitADC
	MetricHitAreaRatio
	MetricHitFit
	nMetrics
)

type metricSpec struct {
	name string
	bins int
	low  float64
	high float64
}

var metricSpecs = [nMetrics]metricSpec{
	MetricHitEnergy:    {"hitEnergy", 100, 0, 1e4},
	MetricIdeEnergy:    {"ideEnergy", 100, 0, 1e4},
	MetricEnergyRatio:  {"energyRatio", 256, -2, 1.2},
	MetricHitIntegral:  {"hitIntegral", 100, 0, 5e3},
	MetricHitADC:       {"hitADC", 100, 0, 5e3},
	MetricHitAreaRatio: {"hitAreaRatio", 100, 0, 2},
	MetricHitFit:       {"hitFit", 100, 0, 1},
}

// QualityMetric is one of the per-subdetector hit diagnostics, independent
// of plane resolution and truth matching.
type QualityMetric int

const (
	QualityPeakAmplitude QualityMetric = iota
	QualityNHits
	QualityRMS
	QualityIntegral
	QualityGoodnessOfFit
	QualityHitSummedADC
	QualityROISummedADC
	QualityChannel
	nQualityMetrics
)

var qualitySpecs = [nQualityMetrics]metricSpec{
	QualityPeakAmplitude: {"hPeakAmplitude", 400, 0, 400},
	QualityNHits:         {"hNHits", 250, 0, 1000},
	QualityRMS:           {"hRMS", 100, 0, 20},
	QualityIntegral:      {"hIntegral", 500, 0, 2000},
	QualityGoodnessOfFit: {"hGoodnessOfFit", 50, 0, 10},
	QualityHitSummedADC:  {"hHitSummedADC", 500, 0, 2000},
	QualityROISummedADC:  {"hROISummedADC", 500, 0, 2000},
	QualityChannel:       {"hChannel", 3500, 0, 3500},
}

var speciesSuffix = map[Species]string{
	SpeciesAll:      "",
	SpeciesElectron: "_ele",
	SpeciesPhoton:   "_gamma",
	SpeciesMuon:     "_mu",
	SpeciesProton:   "_p",
	SpeciesPion:     "_pi",
}

type planeHistKey struct {
	Species Species
	Metric  Metric
	Plane   int
}

type qualityHistKey struct {
	SubDetector SubDetector
	Metric      QualityMetric
}

// HistogramBook holds every named aggregate of the run, keyed by
// (species, metric, plane) instead of one variable per combination.
type HistogramBook struct {
	plane             map[planeHistKey]*H1D
	theta             map[Species]*H1D
	phi               map[Species]*H1D
	thetaVsRatio      map[Species]*H2D
	phiVsRatio        map[Species]*H2D
	quality           map[qualityHistKey]*H1D
	ParticleCount     *H1D
	MaxEParticleCount *H1D
}

func NewHistogramBook() *HistogramBook {
	book := &HistogramBook{
		plane:             make(map[planeHistKey]*H1D),
		theta:             make(map[Species]*H1D),
		phi:               make(map[Species]*H1D),
		thetaVsRatio:      make(map[Species]*H2D),
		phiVsRatio:        make(map[Species]*H2D),
		quality:           make(map[qualityHistKey]*H1D),
		ParticleCount:     NewH1D("h_particleCount", 6, 0, 6),
		MaxEParticleCount: NewH1D("h_maxEParticleCount", 6, 0, 6),
	}

	for sp := SpeciesAll; sp <= SpeciesPion; sp++ {
		suffix := speciesSuffix[sp]
		for m := Metric(0); m < nMetrics; m++ {
			spec := metricSpecs[m]
			for plane := 0; plane < NPlanes; plane++ {
				name := fmt.Sprintf("h_%s%s_plane%d", spec.name, suffix, plane)
				book.plane[planeHistKey{sp, m, plane}] = NewH1D(name, spec.bins, spec.low, spec.high)
			}
		}
		book.theta[sp] = NewH1D("h_maxETheta"+suffix, 100, -4, 4)
		book.phi[sp] = NewH1D("h_maxEPhi"+suffix, 100, -4, 4)
		book.thetaVsRatio[sp] = NewH2D("h_maxETheta_vs_E"+suffix, 100, -4, 4, 256, -2, 1.2)
		book.phiVsRatio[sp] = NewH2D("h_maxEPhi_vs_E"+suffix, 100, -4, 4, 256, -2, 1.2)
	}

	for sd := SubDetectorWW; sd < NSubDetectors; sd++ {
		for m := QualityMetric(0); m < nQualityMetrics; m++ {
			spec := qualitySpecs[m]
			name := fmt.Sprintf("%s_%s", spec.name, sd)
			book.quality[qualityHistKey{sd, m}] = NewH1D(name, spec.bins, spec.low, spec.high)
		}
	}

	return book
}

func (b *HistogramBook) FillPlane(sp Species, m Metric, plane int, v float64) {
	if plane < 0 || plane >= NPlanes {
		return
	}
	if h, ok := b.plane[planeHistKey{sp, m, plane}]; ok {
		h.Fill(v)
	}
}

func (b *HistogramBook) PlaneHist(sp Species, m Metric, plane int) *H1D {
	return b.plane[planeHistKey{sp, m, plane}]
}

func (b *HistogramBook) FillTheta(sp Species, theta float64, ratio float64) {
	if h, ok := b.theta[sp]; ok {
		h.Fill(theta)
	}
	if h, ok := b.thetaVsRatio[sp]; ok {
		h.Fill(theta, ratio)
	}
}

func (b *HistogramBook) FillPhi(sp Species, phi float64, ratio float64) {
	if h, ok := b.phi[sp]; ok {
		h.Fill(phi)
	}
	if h, ok := b.phiVsRatio[sp]; ok {
		h.Fill(phi, ratio)
	}
}

func (b *HistogramBook) ThetaHist(sp Species) *H1D        { return b.theta[sp] }
func (b *HistogramBook) PhiHist(sp Species) *H1D          { return b.phi[sp] }
func (b *HistogramBook) ThetaVsRatioHist(sp Species) *H2D { return b.thetaVsRatio[sp] }
func (b *HistogramBook) PhiVsRatioHist(sp Species) *H2D   { return b.phiVsRatio[sp] }

func (b *HistogramBook) FillQuality(sd SubDetector, m QualityMetric, v float64) {
	if h, ok := b.quality[qualityHistKey{sd, m}]; ok {
		h.Fill(v)
	}
}

func (b *HistogramBook) QualityHist(sd SubDetector, m QualityMetric) *H1D {
	return b.quality[qualityHistKey{sd, m}]
}

// speciesGroup is the artifact directory name for a species bucket.
func speciesGroup(sp Species) string {
	switch sp {
	case SpeciesAll:
		return "AllParticles"
	case SpeciesElectron:
		return "Electrons"
	case SpeciesPhoton:
		return "Photons"
	case SpeciesMuon:
		return "Muons"
	case SpeciesProton:
		return "Protons"
	case SpeciesPion:
		return "Pions"
	default:
		return "Other"
	}
}

// SpeciesHists returns the 1D and 2D aggregates of one species bucket in a
// fixed order (metrics by plane, then kinematics).
func (b *HistogramBook) SpeciesHists(sp Species) ([]*H1D, []*H2D) {
	oneDim := make([]*H1D, 0, int(nMetrics)*NPlanes+2)
	for m := Metric(0); m < nMetrics; m++ {
		for plane := 0; plane < NPlanes; plane++ {
			oneDim = append(oneDim, b.plane[planeHistKey{sp, m, plane}])
		}
	}
	oneDim = append(oneDim, b.theta[sp], b.phi[sp])
	twoDim := []*H2D{b.thetaVsRatio[sp], b.phiVsRatio[sp]}
	return oneDim, twoDim
}

// QualityHists returns the per-subdetector hit diagnostics in metric order.
func (b *HistogramBook) QualityHists(sd SubDetector) []*H1D {
	hists := make([]*H1D, 0, nQualityMetrics)
	for m := QualityMetric(0); m < nQualityMetrics; m++ {
		hists = append(hists, b.quality[qualityHistKey{sd, m}])
	}
	return hists
}
