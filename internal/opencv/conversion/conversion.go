package conversion

import (
	"fmt"
	"image"

	"image-workbench/internal/models"
	"image-workbench/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// ConvertToGrayscale converts multi-channel images to single-channel grayscale
func ConvertToGrayscale(src *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "grayscale conversion"); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if src.Channels() == 1 {
		return src.Clone()
	}

	dst, err := safe.NewMat(src.Rows(), src.Cols(), gocv.MatTypeCV8UC1, "grayscale")
	if err != nil {
		return nil, fmt.Errorf("destination Mat creation failed: %w", err)
	}

	srcMat := src.GetMat()
	dstMat := dst.GetMat()

	switch src.Channels() {
	case 3:
		gocv.CvtColor(srcMat, &dstMat, gocv.ColorBGRToGray)
	case 4:
		gocv.CvtColor(srcMat, &dstMat, gocv.ColorBGRAToGray)
	default:
		dst.Close()
		return nil, fmt.Errorf("unsupported channel count: %d", src.Channels())
	}

	return dst, nil
}

// ImageToGrayMat converts any decoded image into an 8-bit single-channel Mat.
// Colour inputs go through OpenCV's BGR to gray weighting.
func ImageToGrayMat(img image.Image) (*safe.Mat, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}

	if gray, ok := img.(*image.Gray); ok {
		state, err := models.NewImageState(gray)
		if err != nil {
			return nil, err
		}
		return StateToMat(state)
	}

	bgr, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image to Mat: %w", err)
	}

	colour, err := safe.Adopt(bgr, "decoded_bgr")
	if err != nil {
		return nil, err
	}
	defer colour.Close()

	return ConvertToGrayscale(colour)
}

// StateToMat copies a state into a new CV_8UC1 Mat.
func StateToMat(state models.ImageState) (*safe.Mat, error) {
	if state.IsEmpty() {
		return nil, fmt.Errorf("image state is empty")
	}
	return safe.NewGrayFromBytes(state.Height(), state.Width(), state.Pixels(), "state")
}

// MatToState copies a CV_8UC1 Mat into a new state.
func MatToState(src *safe.Mat) (models.ImageState, error) {
	if err := safe.ValidateGray(src, "Mat to state conversion"); err != nil {
		return models.ImageState{}, err
	}

	pix, err := src.Bytes()
	if err != nil {
		return models.ImageState{}, fmt.Errorf("failed to read Mat data: %w", err)
	}
	return models.NewImageStateFromPixels(src.Cols(), src.Rows(), pix)
}
