package filters

import (
	"context"
	"fmt"
	"image"
	"math"

	"image-workbench/internal/models"
	"image-workbench/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// prepare checks cancellation and input shape and allocates a same-sized
// 8-bit destination. Callers own the returned Mat.
func prepare(ctx context.Context, src *safe.Mat, operation string) (*safe.Mat, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if err := safe.ValidateGray(src, operation); err != nil {
		return nil, err
	}

	dst, err := safe.NewMat(src.Rows(), src.Cols(), gocv.MatTypeCV8UC1, operation)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination Mat: %w", err)
	}
	return dst, nil
}

// Mean replaces each pixel with the average of its kernel x kernel window.
func Mean(ctx context.Context, src *safe.Mat, kernelSize int) (*safe.Mat, error) {
	k := models.NormalizeKernelSize(kernelSize)
	dst, err := prepare(ctx, src, "mean_filter")
	if err != nil {
		return nil, err
	}

	srcMat := src.GetMat()
	dstMat := dst.GetMat()
	gocv.Blur(srcMat, &dstMat, image.Point{X: k, Y: k})

	return dst, nil
}

// Median replaces each pixel with the median of its window.
func Median(ctx context.Context, src *safe.Mat, kernelSize int) (*safe.Mat, error) {
	k := models.NormalizeKernelSize(kernelSize)
	dst, err := prepare(ctx, src, "median_filter")
	if err != nil {
		return nil, err
	}

	srcMat := src.GetMat()
	dstMat := dst.GetMat()
	gocv.MedianBlur(srcMat, &dstMat, k)

	return dst, nil
}

// Max is a rectangular grey-level dilation.
func Max(ctx context.Context, src *safe.Mat, kernelSize int) (*safe.Mat, error) {
	return rankFilter(ctx, src, kernelSize, "max_filter", true)
}

// Min is a rectangular grey-level erosion.
func Min(ctx context.Context, src *safe.Mat, kernelSize int) (*safe.Mat, error) {
	return rankFilter(ctx, src, kernelSize, "min_filter", false)
}

func rankFilter(ctx context.Context, src *safe.Mat, kernelSize int, name string, dilate bool) (*safe.Mat, error) {
	k := models.NormalizeKernelSize(kernelSize)
	dst, err := prepare(ctx, src, name)
	if err != nil {
		return nil, err
	}

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Point{X: k, Y: k})
	defer kernel.Close()

	srcMat := src.GetMat()
	dstMat := dst.GetMat()
	if dilate {
		gocv.Dilate(srcMat, &dstMat, kernel)
	} else {
		gocv.Erode(srcMat, &dstMat, kernel)
	}

	return dst, nil
}

// GaussianKernelSize mirrors the usual truncate-at-4-sigma window.
func GaussianKernelSize(sigma float64) int {
	radius := int(math.Round(4 * sigma))
	if radius < 1 {
		radius = 1
	}
	return 2*radius + 1
}

// Gaussian smooths with an isotropic Gaussian of the given sigma.
func Gaussian(ctx context.Context, src *safe.Mat, sigma float64) (*safe.Mat, error) {
	if sigma <= 0 {
		return nil, models.NewValidationError("sigma", sigma, "must be positive")
	}

	dst, err := prepare(ctx, src, "gaussian_filter")
	if err != nil {
		return nil, err
	}

	ks := GaussianKernelSize(sigma)
	srcMat := src.GetMat()
	dstMat := dst.GetMat()
	gocv.GaussianBlur(srcMat, &dstMat, image.Point{X: ks, Y: ks}, sigma, sigma, gocv.BorderReflect)

	return dst, nil
}
