package threshold

import (
	"context"

	"image-workbench/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// Otsu binarises src to {0, 255} at the Otsu level and returns that level.
// Pixels strictly above the level become foreground. A uniform image yields
// level 0.
func Otsu(ctx context.Context, src *safe.Mat) (*safe.Mat, uint8, error) {
	select {
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	default:
	}

	if err := safe.ValidateGray(src, "otsu_threshold"); err != nil {
		return nil, 0, err
	}

	dst, err := safe.NewMat(src.Rows(), src.Cols(), gocv.MatTypeCV8UC1, "otsu_threshold")
	if err != nil {
		return nil, 0, err
	}

	srcMat := src.GetMat()
	dstMat := dst.GetMat()
	// The thresh argument is ignored when ThresholdOtsu is set.
	level := gocv.Threshold(srcMat, &dstMat, 0, 255, gocv.ThresholdBinary+gocv.ThresholdOtsu)

	return dst, uint8(level), nil
}
