package filters

import (
	"context"
	"fmt"
	"image"
	"math"

	"image-workbench/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// Gradient kernels, scaled so a unit step gives a unit response.
var (
	sobelX = [][]float64{
		{1.0 / 4, 0, -1.0 / 4},
		{2.0 / 4, 0, -2.0 / 4},
		{1.0 / 4, 0, -1.0 / 4},
	}
	sobelY = [][]float64{
		{1.0 / 4, 2.0 / 4, 1.0 / 4},
		{0, 0, 0},
		{-1.0 / 4, -2.0 / 4, -1.0 / 4},
	}
	prewittX = [][]float64{
		{1.0 / 3, 0, -1.0 / 3},
		{1.0 / 3, 0, -1.0 / 3},
		{1.0 / 3, 0, -1.0 / 3},
	}
	prewittY = [][]float64{
		{1.0 / 3, 1.0 / 3, 1.0 / 3},
		{0, 0, 0},
		{-1.0 / 3, -1.0 / 3, -1.0 / 3},
	}
	robertsPositive = [][]float64{
		{1, 0},
		{0, -1},
	}
	robertsNegative = [][]float64{
		{0, 1},
		{-1, 0},
	}
)

// Laplacian takes the absolute second derivative, saturated to 8 bits.
func Laplacian(ctx context.Context, src *safe.Mat) (*safe.Mat, error) {
	dst, err := prepare(ctx, src, "laplacian_filter")
	if err != nil {
		return nil, err
	}

	response := gocv.NewMat()
	defer response.Close()

	srcMat := src.GetMat()
	dstMat := dst.GetMat()
	gocv.Laplacian(srcMat, &response, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderReflect101)
	gocv.ConvertScaleAbs(response, &dstMat, 1, 0)

	return dst, nil
}

func Roberts(ctx context.Context, src *safe.Mat) (*safe.Mat, error) {
	return gradientMagnitude(ctx, src, "roberts_filter", robertsPositive, robertsNegative)
}

func Prewitt(ctx context.Context, src *safe.Mat) (*safe.Mat, error) {
	return gradientMagnitude(ctx, src, "prewitt_filter", prewittX, prewittY)
}

func Sobel(ctx context.Context, src *safe.Mat) (*safe.Mat, error) {
	return gradientMagnitude(ctx, src, "sobel_filter", sobelX, sobelY)
}

// gradientMagnitude correlates with both kernels in float64 and stores
// sqrt((gx^2 + gy^2) / 2), saturated to [0, 255].
func gradientMagnitude(ctx context.Context, src *safe.Mat, name string, kx, ky [][]float64) (*safe.Mat, error) {
	dst, err := prepare(ctx, src, name)
	if err != nil {
		return nil, err
	}

	kernelX, err := kernelMat(kx)
	if err != nil {
		dst.Close()
		return nil, err
	}
	defer kernelX.Close()

	kernelY, err := kernelMat(ky)
	if err != nil {
		dst.Close()
		return nil, err
	}
	defer kernelY.Close()

	gx := gocv.NewMat()
	defer gx.Close()
	gy := gocv.NewMat()
	defer gy.Close()
	magnitude := gocv.NewMat()
	defer magnitude.Close()

	anchor := image.Point{X: -1, Y: -1}
	srcMat := src.GetMat()
	gocv.Filter2D(srcMat, &gx, gocv.MatTypeCV64F, kernelX, anchor, 0, gocv.BorderReflect)
	gocv.Filter2D(srcMat, &gy, gocv.MatTypeCV64F, kernelY, anchor, 0, gocv.BorderReflect)

	select {
	case <-ctx.Done():
		dst.Close()
		return nil, ctx.Err()
	default:
	}

	gocv.Magnitude(gx, gy, &magnitude)

	dstMat := dst.GetMat()
	gocv.ConvertScaleAbs(magnitude, &dstMat, 1/math.Sqrt2, 0)

	return dst, nil
}

func kernelMat(values [][]float64) (gocv.Mat, error) {
	rows := len(values)
	if rows == 0 || len(values[0]) == 0 {
		return gocv.Mat{}, fmt.Errorf("empty kernel")
	}
	cols := len(values[0])

	kernel := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV64F)
	for r, row := range values {
		if len(row) != cols {
			kernel.Close()
			return gocv.Mat{}, fmt.Errorf("ragged kernel row %d", r)
		}
		for c, v := range row {
			kernel.SetDoubleAt(r, c, v)
		}
	}
	return kernel, nil
}
