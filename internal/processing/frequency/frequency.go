// Package frequency implements ideal low/high pass filtering and the
// magnitude spectrum view on top of a 2-D FFT.
package frequency

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"

	"image-workbench/internal/models"

	"github.com/mjibson/go-dsp/fft"
)

// LowPass keeps frequencies within cutoff pixels of the spectrum centre.
func LowPass(ctx context.Context, state models.ImageState, cutoff int) (models.ImageState, error) {
	return filter(ctx, state, cutoff, true)
}

// HighPass removes frequencies within cutoff pixels of the spectrum centre.
func HighPass(ctx context.Context, state models.ImageState, cutoff int) (models.ImageState, error) {
	return filter(ctx, state, cutoff, false)
}

func filter(ctx context.Context, state models.ImageState, cutoff int, keepInside bool) (models.ImageState, error) {
	if cutoff < 1 {
		return models.ImageState{}, models.NewValidationError("cutoff", cutoff, "must be at least 1")
	}

	spectrum, err := shiftedSpectrum(ctx, state)
	if err != nil {
		return models.ImageState{}, err
	}

	rows, cols := len(spectrum), len(spectrum[0])
	crow, ccol := rows/2, cols/2
	r2 := cutoff * cutoff
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			dy, dx := y-crow, x-ccol
			inside := dx*dx+dy*dy <= r2
			if inside != keepInside {
				spectrum[y][x] = 0
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return models.ImageState{}, err
	}

	back := fft.IFFT2(shift(spectrum, -(rows / 2), -(cols / 2)))

	pix := make([]uint8, 0, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			pix = append(pix, clampTruncate(cmplx.Abs(back[y][x])))
		}
	}
	return models.NewImageStateFromPixels(cols, rows, pix)
}

// Spectrum renders log(|F| + 1) of the centred spectrum scaled to 0..255.
func Spectrum(ctx context.Context, state models.ImageState) (models.ImageState, error) {
	spectrum, err := shiftedSpectrum(ctx, state)
	if err != nil {
		return models.ImageState{}, err
	}

	rows, cols := len(spectrum), len(spectrum[0])
	logs := make([]float64, 0, rows*cols)
	peak := 0.0
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := math.Log1p(cmplx.Abs(spectrum[y][x]))
			logs = append(logs, v)
			peak = math.Max(peak, v)
		}
	}

	pix := make([]uint8, len(logs))
	if peak > 0 {
		for i, v := range logs {
			pix[i] = clampTruncate(math.Round(v / peak * 255))
		}
	}
	return models.NewImageStateFromPixels(cols, rows, pix)
}

func shiftedSpectrum(ctx context.Context, state models.ImageState) ([][]complex128, error) {
	if state.IsEmpty() {
		return nil, fmt.Errorf("image state is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, cols := state.Height(), state.Width()
	pix := state.Pixels()
	grid := make([][]float64, rows)
	for y := range grid {
		grid[y] = make([]float64, cols)
		for x := range grid[y] {
			grid[y][x] = float64(pix[y*cols+x])
		}
	}

	transformed := fft.FFT2Real(grid)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return shift(transformed, rows/2, cols/2), nil
}

// shift rolls a matrix by (dy, dx) with wrap-around. Rolling by half the
// size centres the zero frequency; the negative roll undoes it.
func shift(in [][]complex128, dy, dx int) [][]complex128 {
	rows, cols := len(in), len(in[0])
	out := make([][]complex128, rows)
	for y := range out {
		out[y] = make([]complex128, cols)
	}
	for y := 0; y < rows; y++ {
		ny := mod(y+dy, rows)
		for x := 0; x < cols; x++ {
			out[ny][mod(x+dx, cols)] = in[y][x]
		}
	}
	return out
}

func mod(a, n int) int {
	return ((a % n) + n) % n
}

func clampTruncate(v float64) uint8 {
	switch {
	case math.IsNaN(v) || v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}
