package frequency

import (
	"context"
	"testing"

	"image-workbench/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantState(t *testing.T, w, h int, value uint8) models.ImageState {
	t.Helper()
	pix := make([]uint8, w*h)
	for i := range pix {
		pix[i] = value
	}
	state, err := models.NewImageStateFromPixels(w, h, pix)
	require.NoError(t, err)
	return state
}

func gradientState(t *testing.T, w, h int) models.ImageState {
	t.Helper()
	pix := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pix[y*w+x] = uint8((x*37 + y*11) % 256)
		}
	}
	state, err := models.NewImageStateFromPixels(w, h, pix)
	require.NoError(t, err)
	return state
}

func TestLowPassWithWideCutoffKeepsImage(t *testing.T) {
	src := gradientState(t, 8, 6)

	out, err := LowPass(context.Background(), src, 100)
	require.NoError(t, err)
	require.Equal(t, src.Width(), out.Width())
	require.Equal(t, src.Height(), out.Height())

	want, got := src.Pixels(), out.Pixels()
	for i := range want {
		assert.InDelta(t, float64(want[i]), float64(got[i]), 1, "pixel %d", i)
	}
}

func TestHighPassRemovesConstantComponent(t *testing.T) {
	out, err := HighPass(context.Background(), constantState(t, 8, 8, 90), 1)
	require.NoError(t, err)

	for _, v := range out.Pixels() {
		assert.Zero(t, v)
	}
}

func TestLowPassOfConstantImageIsConstant(t *testing.T) {
	out, err := LowPass(context.Background(), constantState(t, 5, 7, 90), 1)
	require.NoError(t, err)

	for _, v := range out.Pixels() {
		assert.InDelta(t, 90, float64(v), 1)
	}
}

func TestHighPassWithWideCutoffIsBlack(t *testing.T) {
	out, err := HighPass(context.Background(), gradientState(t, 6, 6), 100)
	require.NoError(t, err)

	for _, v := range out.Pixels() {
		assert.Zero(t, v)
	}
}

func TestSpectrumOfConstantImageIsCentredDot(t *testing.T) {
	out, err := Spectrum(context.Background(), constantState(t, 4, 4, 10))
	require.NoError(t, err)

	assert.Equal(t, uint8(255), out.At(2, 2))
	assert.Zero(t, out.At(0, 0))
	assert.Zero(t, out.At(3, 1))
}

func TestFrequencyErrors(t *testing.T) {
	ctx := context.Background()

	_, err := LowPass(ctx, models.ImageState{}, 10)
	assert.Error(t, err)

	_, err = HighPass(ctx, constantState(t, 2, 2, 1), 0)
	var ve *models.ValidationError
	assert.ErrorAs(t, err, &ve)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Spectrum(cancelled, constantState(t, 2, 2, 1))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestShiftRoundTrip(t *testing.T) {
	in := [][]complex128{{1, 2, 3}, {4, 5, 6}}
	centred := shift(in, 1, 1)
	assert.Equal(t, complex128(6), centred[0][0])
	assert.Equal(t, in, shift(centred, -1, -1))
}
