package reconcile

import "math"

// FindWaveform returns the waveform matching a channel id.
func FindWaveform(channel uint32, waveforms []ChannelWaveform) (*ChannelWaveform, error) {
	for i := range waveforms {
		if waveforms[i].Channel == channel {
			return &waveforms[i], nil
		}
	}
	return nil, &ErrChannelNotFound{Channel: channel}
}

// WireModel renders the raw digitized signal of one channel next to the sum
// of the Gaussian pulse models fitted on it, over the tick window
// [lowTick, highTick). No fitting happens here; the hit parameters are
// re-evaluated against the raw trace for comparison.
//
// raw[i] is the sample at tick lowTick+i scaled by the waveform's ADC
// factor (zero outside the recorded range). model[i] is
// sum_hits A*exp(-0.5*((t-mu)/sigma)^2) for hits on the channel; with no
// matching hits it is identically zero.
func WireModel(channel uint32, waveforms []ChannelWaveform, hits []Hit, lowTick int, highTick int) ([]float64, []float64, error) {
	wf, err := FindWaveform(channel, waveforms)
	if err != nil {
		return nil, nil, err
	}
	if highTick < lowTick {
		highTick = lowTick
	}

	n := highTick - lowTick
	raw := make([]float64, n)
	model := make([]float64, n)

	for i := 0; i < n; i++ {
		tick := lowTick + i
		sample := tick - int(wf.TickStart)
		if sample >= 0 && sample < len(wf.Samples) {
			raw[i] = float64(wf.Samples[sample]) * float64(wf.ADCScale)
		}
	}

	for h := range hits {
		hit := &hits[h]
		if hit.Channel != channel {
			continue
		}
		mean := float64(hit.PeakTime)
		amplitude := float64(hit.PeakAmplitude)
		sigma := float64(hit.RMS)
		for i := 0; i < n; i++ {
			t := float64(lowTick + i)
			pull := (t - mean) / sigma
			model[i] += amplitude * math.Exp(-0.5*pull*pull)
		}
	}

	return raw, model, nil
}
