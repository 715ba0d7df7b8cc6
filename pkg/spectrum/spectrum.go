// Package spectrum holds the sampled spectral representation used by the
// color pipeline and the lighting conditions that map linear RGB into it.
package spectrum

// Spectrum sampling layout: 31 bands from 400nm to 700nm, 10nm apart.
const (
	NumSamples    = 31
	MinWavelength = 400.0
	MaxWavelength = 700.0
	BandWidth     = (MaxWavelength - MinWavelength) / (NumSamples - 1)
)

// Spectrum is a piecewise sampled spectral distribution
type Spectrum [NumSamples]float32

// Flat returns a spectrum with every sample set to v
func Flat(v float32) Spectrum {
	var s Spectrum
	for i := range s {
		s[i] = v
	}
	return s
}

// Wavelength returns the wavelength in nanometers of sample i
func Wavelength(i int) float64 {
	return MinWavelength + float64(i)*BandWidth
}

// Multiply returns the spectrum scaled by a scalar
func (s Spectrum) Multiply(scalar float32) Spectrum {
	for i := range s {
		s[i] *= scalar
	}
	return s
}

// Add returns the sample-wise sum of two spectra
func (s Spectrum) Add(other Spectrum) Spectrum {
	for i := range s {
		s[i] += other[i]
	}
	return s
}

// Dot returns the sum of sample-wise products
func (s Spectrum) Dot(other Spectrum) float64 {
	var sum float64
	for i := range s {
		sum += float64(s[i]) * float64(other[i])
	}
	return sum
}

// Average returns the mean value over all samples
func (s Spectrum) Average() float32 {
	var sum float64
	for _, v := range s {
		sum += float64(v)
	}
	return float32(sum / NumSamples)
}
