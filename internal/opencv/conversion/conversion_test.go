package conversion

import (
	"image"
	"image/color"
	"testing"

	"image-workbench/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestStateMatRoundTrip(t *testing.T) {
	state, err := models.NewImageStateFromPixels(3, 2, []uint8{0, 50, 100, 150, 200, 250})
	require.NoError(t, err)

	mat, err := StateToMat(state)
	require.NoError(t, err)
	defer mat.Close()

	assert.Equal(t, 2, mat.Rows())
	assert.Equal(t, 3, mat.Cols())
	assert.Equal(t, gocv.MatTypeCV8UC1, mat.Type())

	back, err := MatToState(mat)
	require.NoError(t, err)
	assert.True(t, back.Equal(state))
}

func TestImageToGrayMatFromColour(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 0, color.RGBA{R: 0, G: 0, B: 0, A: 255})

	mat, err := ImageToGrayMat(img)
	require.NoError(t, err)
	defer mat.Close()

	state, err := MatToState(mat)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), state.At(0, 0))
	assert.Equal(t, uint8(0), state.At(1, 0))
}

func TestImageToGrayMatFromGray(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	img.Pix = []uint8{1, 2, 3, 4}

	mat, err := ImageToGrayMat(img)
	require.NoError(t, err)
	defer mat.Close()

	data, err := mat.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 2, 3, 4}, data)
}

func TestConversionRejectsInvalidInput(t *testing.T) {
	_, err := ImageToGrayMat(nil)
	assert.Error(t, err)

	_, err = StateToMat(models.ImageState{})
	assert.Error(t, err)

	_, err = MatToState(nil)
	assert.Error(t, err)
}
