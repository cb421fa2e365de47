package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

// Spectrum is the one-sided magnitude spectrum of a uniformly sampled
// series.
type Spectrum struct {
	Freqs []float64
	Power []float64
}

// PowerSpectrum transforms a series sampled at interval dt. The series
// is Hann-windowed to tame leakage from non-periodic runs.
func PowerSpectrum(series []float64, dt float64) *Spectrum {
	n := len(series)
	if n < 2 || dt <= 0 {
		return &Spectrum{}
	}

	windowed := make([]float64, n)
	for i, v := range series {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
		windowed[i] = v * w
	}

	coeffs := fft.FFTReal(windowed)

	half := n / 2
	spec := &Spectrum{
		Freqs: make([]float64, half),
		Power: make([]float64, half),
	}
	for i := 0; i < half; i++ {
		spec.Freqs[i] = float64(i) / (float64(n) * dt)
		spec.Power[i] = cmplx.Abs(coeffs[i])
	}
	return spec
}

// Dominant returns the strongest frequency, skipping the DC bin.
func (s *Spectrum) Dominant() (freq, power float64) {
	if len(s.Power) < 2 {
		return 0, 0
	}
	i := 1 + floats.MaxIdx(s.Power[1:])
	return s.Freqs[i], s.Power[i]
}
