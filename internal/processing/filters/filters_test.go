package filters

import (
	"context"
	"testing"

	"image-workbench/internal/opencv/safe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantMat(t *testing.T, rows, cols int, value uint8) *safe.Mat {
	t.Helper()
	pix := make([]uint8, rows*cols)
	for i := range pix {
		pix[i] = value
	}
	mat, err := safe.NewGrayFromBytes(rows, cols, pix, "test")
	require.NoError(t, err)
	t.Cleanup(mat.Close)
	return mat
}

// spotMat is a 5x5 black image with a single white pixel in the centre.
func spotMat(t *testing.T) *safe.Mat {
	t.Helper()
	mat := constantMat(t, 5, 5, 0)
	require.NoError(t, mat.SetUCharAt(2, 2, 255))
	return mat
}

func pixels(t *testing.T, mat *safe.Mat) []uint8 {
	t.Helper()
	data, err := mat.Bytes()
	require.NoError(t, err)
	return data
}

func at(t *testing.T, mat *safe.Mat, row, col int) uint8 {
	t.Helper()
	v, err := mat.GetUCharAt(row, col)
	require.NoError(t, err)
	return v
}

func TestSmoothingKeepsConstantImage(t *testing.T) {
	ctx := context.Background()
	src := constantMat(t, 8, 8, 120)

	cases := map[string]func() (*safe.Mat, error){
		"mean":     func() (*safe.Mat, error) { return Mean(ctx, src, 3) },
		"median":   func() (*safe.Mat, error) { return Median(ctx, src, 5) },
		"max":      func() (*safe.Mat, error) { return Max(ctx, src, 3) },
		"min":      func() (*safe.Mat, error) { return Min(ctx, src, 3) },
		"gaussian": func() (*safe.Mat, error) { return Gaussian(ctx, src, 1.5) },
		"erosion":  func() (*safe.Mat, error) { return Erode(ctx, src, 3) },
		"dilation": func() (*safe.Mat, error) { return Dilate(ctx, src, 3) },
	}

	for name, run := range cases {
		t.Run(name, func(t *testing.T) {
			dst, err := run()
			require.NoError(t, err)
			defer dst.Close()

			assert.Equal(t, src.Rows(), dst.Rows())
			assert.Equal(t, src.Cols(), dst.Cols())
			for _, v := range pixels(t, dst) {
				assert.Equal(t, uint8(120), v)
			}
		})
	}
}

func TestEdgeFiltersOnConstantImageAreZero(t *testing.T) {
	ctx := context.Background()
	src := constantMat(t, 6, 6, 200)

	for name, run := range map[string]func(context.Context, *safe.Mat) (*safe.Mat, error){
		"laplacian": Laplacian,
		"roberts":   Roberts,
		"prewitt":   Prewitt,
		"sobel":     Sobel,
	} {
		t.Run(name, func(t *testing.T) {
			dst, err := run(ctx, src)
			require.NoError(t, err)
			defer dst.Close()
			for _, v := range pixels(t, dst) {
				assert.Zero(t, v)
			}
		})
	}
}

func TestEdgeFiltersRespondToStep(t *testing.T) {
	ctx := context.Background()
	src := constantMat(t, 6, 6, 0)
	for row := 0; row < 6; row++ {
		for col := 3; col < 6; col++ {
			require.NoError(t, src.SetUCharAt(row, col, 255))
		}
	}

	for name, run := range map[string]func(context.Context, *safe.Mat) (*safe.Mat, error){
		"laplacian": Laplacian,
		"prewitt":   Prewitt,
		"sobel":     Sobel,
	} {
		t.Run(name, func(t *testing.T) {
			dst, err := run(ctx, src)
			require.NoError(t, err)
			defer dst.Close()

			assert.NotZero(t, int(at(t, dst, 2, 2))+int(at(t, dst, 2, 3)))
			assert.Zero(t, at(t, dst, 2, 0))
		})
	}
}

func TestMedianRemovesIsolatedSpot(t *testing.T) {
	dst, err := Median(context.Background(), spotMat(t), 3)
	require.NoError(t, err)
	defer dst.Close()

	for _, v := range pixels(t, dst) {
		assert.Zero(t, v)
	}
}

func TestMaxAndMinUseSquareWindow(t *testing.T) {
	ctx := context.Background()
	src := spotMat(t)

	grown, err := Max(ctx, src, 3)
	require.NoError(t, err)
	defer grown.Close()
	assert.Equal(t, uint8(255), at(t, grown, 1, 1))
	assert.Equal(t, uint8(255), at(t, grown, 3, 3))
	assert.Zero(t, at(t, grown, 0, 0))

	shrunk, err := Min(ctx, src, 3)
	require.NoError(t, err)
	defer shrunk.Close()
	assert.Zero(t, at(t, shrunk, 2, 2))
}

func TestDilationUsesEllipticalElement(t *testing.T) {
	dst, err := Dilate(context.Background(), spotMat(t), 3)
	require.NoError(t, err)
	defer dst.Close()

	assert.Equal(t, uint8(255), at(t, dst, 2, 1))
	assert.Equal(t, uint8(255), at(t, dst, 1, 2))
	assert.Zero(t, at(t, dst, 1, 1), "3x3 ellipse has no corners")
}

func TestEvenKernelIsRoundedUp(t *testing.T) {
	dst, err := Max(context.Background(), spotMat(t), 2)
	require.NoError(t, err)
	defer dst.Close()

	assert.Equal(t, uint8(255), at(t, dst, 1, 1))
	assert.Zero(t, at(t, dst, 0, 0))
}

func TestGaussianKernelSize(t *testing.T) {
	assert.Equal(t, 9, GaussianKernelSize(1))
	assert.Equal(t, 3, GaussianKernelSize(0.1))
	assert.Equal(t, 21, GaussianKernelSize(2.5))
}

func TestFiltersRejectBadInput(t *testing.T) {
	ctx := context.Background()

	_, err := Mean(ctx, nil, 3)
	assert.Error(t, err)

	_, err = Gaussian(ctx, constantMat(t, 2, 2, 0), 0)
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Sobel(cancelled, constantMat(t, 2, 2, 0))
	assert.ErrorIs(t, err, context.Canceled)
}
