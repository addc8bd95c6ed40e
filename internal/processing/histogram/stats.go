// Package histogram computes grey-level histograms, the statistics shown
// next to the image, and a rendered chart of the distribution.
package histogram

import (
	"math"

	"image-workbench/internal/models"
)

// Bins is the number of grey levels in an 8-bit image.
const Bins = 256

// Histogram counts pixels per grey level.
func Histogram(state models.ImageState) [Bins]int {
	var hist [Bins]int
	for _, v := range state.Pixels() {
		hist[v]++
	}
	return hist
}

type Stats struct {
	Width      int
	Height     int
	PixelCount int

	Mean     float64
	Median   float64
	StdDev   float64
	Variance float64
	Min      uint8
	Max      uint8
	Range    int

	Skewness float64
	Kurtosis float64 // excess
	Entropy  float64 // bits
	P25      float64
	P75      float64
	Contrast int
}

// Compute derives Stats from the state's histogram. An empty state yields
// the zero value.
func Compute(state models.ImageState) Stats {
	if state.IsEmpty() {
		return Stats{}
	}
	return FromHistogram(Histogram(state), state.Width(), state.Height())
}

// FromHistogram computes Stats for a width x height image with the given
// grey-level counts. Moments are population moments.
func FromHistogram(hist [Bins]int, width, height int) Stats {
	n := 0
	for _, c := range hist {
		n += c
	}
	stats := Stats{Width: width, Height: height, PixelCount: n}
	if n == 0 {
		return stats
	}

	total := float64(n)
	sum := 0.0
	lo, hi := -1, 0
	for v, c := range hist {
		if c == 0 {
			continue
		}
		if lo < 0 {
			lo = v
		}
		hi = v
		sum += float64(v) * float64(c)
	}
	mean := sum / total

	var m2, m3, m4, entropy float64
	for v, c := range hist {
		if c == 0 {
			continue
		}
		d := float64(v) - mean
		w := float64(c) / total
		m2 += w * d * d
		m3 += w * d * d * d
		m4 += w * d * d * d * d
		entropy -= w * math.Log2(w)
	}

	stats.Mean = mean
	stats.Variance = m2
	stats.StdDev = math.Sqrt(m2)
	stats.Min = uint8(lo)
	stats.Max = uint8(hi)
	stats.Range = hi - lo
	stats.Contrast = hi - lo
	stats.Entropy = entropy
	if m2 > 0 {
		stats.Skewness = m3 / math.Pow(m2, 1.5)
		stats.Kurtosis = m4/(m2*m2) - 3
	}

	stats.Median = percentile(hist, n, 50)
	stats.P25 = percentile(hist, n, 25)
	stats.P75 = percentile(hist, n, 75)
	return stats
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(hist [Bins]int, n int, p float64) float64 {
	pos := p / 100 * float64(n-1)
	lower := int(math.Floor(pos))
	frac := pos - float64(lower)

	a := float64(kth(hist, lower))
	if frac == 0 {
		return a
	}
	b := float64(kth(hist, lower+1))
	return a + frac*(b-a)
}

// kth returns the k-th smallest value, zero-based.
func kth(hist [Bins]int, k int) int {
	seen := 0
	for v, c := range hist {
		seen += c
		if seen > k {
			return v
		}
	}
	return Bins - 1
}
