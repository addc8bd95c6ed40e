// Package intensity holds point operations that remap grey levels.
package intensity

import (
	"context"
	"fmt"

	"image-workbench/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// StretchTable maps [low, high] linearly onto [0, 255]. Values outside the
// window are clipped first and fractional results are truncated.
func StretchTable(low, high uint8) ([256]uint8, error) {
	var table [256]uint8
	if low >= high {
		return table, fmt.Errorf("contrast window [%d, %d] is empty", low, high)
	}

	span := float64(high) - float64(low)
	for v := 0; v < 256; v++ {
		clipped := v
		if clipped < int(low) {
			clipped = int(low)
		}
		if clipped > int(high) {
			clipped = int(high)
		}
		table[v] = uint8((float64(clipped) - float64(low)) / span * 255)
	}
	return table, nil
}

// ContrastStretch remaps the image through StretchTable(low, high).
func ContrastStretch(ctx context.Context, src *safe.Mat, low, high uint8) (*safe.Mat, error) {
	table, err := StretchTable(low, high)
	if err != nil {
		return nil, err
	}

	dst, err := prepare(ctx, src, "contrast_stretch")
	if err != nil {
		return nil, err
	}

	lut := gocv.NewMatWithSize(1, 256, gocv.MatTypeCV8UC1)
	defer lut.Close()
	for i, v := range table {
		lut.SetUCharAt(0, i, v)
	}

	srcMat := src.GetMat()
	dstMat := dst.GetMat()
	gocv.LUT(srcMat, lut, &dstMat)

	return dst, nil
}

// Equalize flattens the grey-level histogram.
func Equalize(ctx context.Context, src *safe.Mat) (*safe.Mat, error) {
	dst, err := prepare(ctx, src, "histogram_equalization")
	if err != nil {
		return nil, err
	}

	srcMat := src.GetMat()
	dstMat := dst.GetMat()
	gocv.EqualizeHist(srcMat, &dstMat)

	return dst, nil
}

func prepare(ctx context.Context, src *safe.Mat, operation string) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := safe.ValidateGray(src, operation); err != nil {
		return nil, err
	}
	return safe.NewMat(src.Rows(), src.Cols(), gocv.MatTypeCV8UC1, operation)
}
