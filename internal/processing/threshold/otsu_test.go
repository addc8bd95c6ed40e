package threshold

import (
	"context"
	"testing"

	"image-workbench/internal/opencv/safe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grayMat(t *testing.T, rows, cols int, pix []uint8) *safe.Mat {
	t.Helper()
	m, err := safe.NewGrayFromBytes(rows, cols, pix, "test")
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func TestOtsuBinarises(t *testing.T) {
	src := grayMat(t, 2, 3, []uint8{10, 12, 11, 240, 245, 250})

	dst, level, err := Otsu(context.Background(), src)
	require.NoError(t, err)
	defer dst.Close()

	assert.GreaterOrEqual(t, level, uint8(12))
	assert.Less(t, level, uint8(240))

	data, err := dst.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 0, 0, 255, 255, 255}, data)
}

func TestOtsuSeparatesTwoClusters(t *testing.T) {
	pix := make([]uint8, 0, 200)
	for i := 0; i < 50; i++ {
		pix = append(pix, 20, 30)
	}
	for i := 0; i < 40; i++ {
		pix = append(pix, 200)
	}
	for i := 0; i < 60; i++ {
		pix = append(pix, 220)
	}
	src := grayMat(t, 10, 20, pix)

	dst, level, err := Otsu(context.Background(), src)
	require.NoError(t, err)
	defer dst.Close()

	assert.GreaterOrEqual(t, level, uint8(30))
	assert.Less(t, level, uint8(200))

	data, err := dst.Bytes()
	require.NoError(t, err)
	for i, v := range pix {
		want := uint8(0)
		if v > level {
			want = 255
		}
		require.Equal(t, want, data[i], "pixel %d", i)
	}
}

func TestOtsuTwoLevelImageReportsLowerLevel(t *testing.T) {
	src := grayMat(t, 2, 2, []uint8{10, 30, 10, 30})

	dst, level, err := Otsu(context.Background(), src)
	require.NoError(t, err)
	defer dst.Close()

	assert.GreaterOrEqual(t, level, uint8(10))
	assert.Less(t, level, uint8(30))

	data, err := dst.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 255, 0, 255}, data)
}

func TestOtsuUniformImage(t *testing.T) {
	src := grayMat(t, 2, 2, []uint8{128, 128, 128, 128})

	dst, level, err := Otsu(context.Background(), src)
	require.NoError(t, err)
	defer dst.Close()

	assert.Equal(t, uint8(0), level)
}

func TestOtsuRejectsNil(t *testing.T) {
	_, _, err := Otsu(context.Background(), nil)
	assert.Error(t, err)
}

func TestOtsuHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := grayMat(t, 1, 2, []uint8{0, 255})
	_, _, err := Otsu(ctx, src)
	assert.ErrorIs(t, err, context.Canceled)
}
