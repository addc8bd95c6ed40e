package models

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImageStateCopiesInput(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 3, 2))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 10)
	}

	s, err := NewImageState(src)
	require.NoError(t, err)
	src.Pix[0] = 255

	assert.Equal(t, 3, s.Width())
	assert.Equal(t, 2, s.Height())
	assert.Equal(t, uint8(0), s.At(0, 0))
	assert.Equal(t, uint8(50), s.At(2, 1))
}

func TestNewImageStateSubImage(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = uint8(i)
	}
	sub := src.SubImage(image.Rect(1, 1, 3, 3)).(*image.Gray)

	s, err := NewImageState(sub)
	require.NoError(t, err)

	assert.Equal(t, []uint8{5, 6, 9, 10}, s.Pixels())
	assert.Equal(t, image.Rect(0, 0, 2, 2), s.Image().Bounds())
}

func TestNewImageStateRejectsInvalid(t *testing.T) {
	_, err := NewImageState(nil)
	assert.Error(t, err)

	_, err = NewImageStateFromPixels(0, 3, nil)
	assert.Error(t, err)

	_, err = NewImageStateFromPixels(2, 2, []uint8{1, 2, 3})
	assert.Error(t, err)
}

func TestImageStateEqualAndClone(t *testing.T) {
	a, err := NewImageStateFromPixels(2, 1, []uint8{1, 2})
	require.NoError(t, err)
	b, err := NewImageStateFromPixels(1, 2, []uint8{1, 2})
	require.NoError(t, err)

	assert.True(t, a.Equal(a.Clone()))
	assert.False(t, a.Clone().sharesBuffer(a))
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(ImageState{}))
	assert.True(t, ImageState{}.Equal(ImageState{}))
	assert.Equal(t, uint8(0), a.At(5, 5))
}
