package filters

import (
	"context"
	"image"

	"image-workbench/internal/models"
	"image-workbench/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// Erode applies one iteration of erosion with an elliptical element.
func Erode(ctx context.Context, src *safe.Mat, kernelSize int) (*safe.Mat, error) {
	return morph(ctx, src, kernelSize, "erosion", false)
}

// Dilate applies one iteration of dilation with an elliptical element.
func Dilate(ctx context.Context, src *safe.Mat, kernelSize int) (*safe.Mat, error) {
	return morph(ctx, src, kernelSize, "dilation", true)
}

func morph(ctx context.Context, src *safe.Mat, kernelSize int, name string, dilate bool) (*safe.Mat, error) {
	k := models.NormalizeKernelSize(kernelSize)
	dst, err := prepare(ctx, src, name)
	if err != nil {
		return nil, err
	}

	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: k, Y: k})
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
