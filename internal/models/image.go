package models

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"time"
)

// ImageState is a single grayscale raster. Values are immutable by
// convention: the constructor copies its input and every accessor that
// exposes pixels hands back a copy, so two states never share a buffer.
type ImageState struct {
	gray *image.Gray
}

// NewImageState copies img into a state anchored at the origin.
func NewImageState(img *image.Gray) (ImageState, error) {
	if img == nil {
		return ImageState{}, fmt.Errorf("image is nil")
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return ImageState{}, fmt.Errorf("invalid dimensions: %dx%d", bounds.Dx(), bounds.Dy())
	}

	dst := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return ImageState{gray: dst}, nil
}

// NewImageStateFromPixels builds a state from row-major samples.
func NewImageStateFromPixels(width, height int, pix []uint8) (ImageState, error) {
	if width <= 0 || height <= 0 {
		return ImageState{}, fmt.Errorf("invalid dimensions: %dx%d", width, height)
	}
	if len(pix) != width*height {
		return ImageState{}, fmt.Errorf("pixel buffer has %d samples, want %d", len(pix), width*height)
	}

	dst := image.NewGray(image.Rect(0, 0, width, height))
	copy(dst.Pix, pix)
	return ImageState{gray: dst}, nil
}

func (s ImageState) IsEmpty() bool {
	return s.gray == nil
}

func (s ImageState) Width() int {
	if s.gray == nil {
		return 0
	}
	return s.gray.Rect.Dx()
}

func (s ImageState) Height() int {
	if s.gray == nil {
		return 0
	}
	return s.gray.Rect.Dy()
}

func (s ImageState) PixelCount() int {
	return s.Width() * s.Height()
}

// At returns the sample at column x, row y. Out-of-range reads return 0.
func (s ImageState) At(x, y int) uint8 {
	if s.gray == nil || x < 0 || y < 0 || x >= s.Width() || y >= s.Height() {
		return 0
	}
	return s.gray.Pix[y*s.gray.Stride+x]
}

// Pixels returns a row-major copy of the samples.
func (s ImageState) Pixels() []uint8 {
	if s.gray == nil {
		return nil
	}
	out := make([]uint8, s.PixelCount())
	w := s.Width()
	for y := 0; y < s.Height(); y++ {
		copy(out[y*w:(y+1)*w], s.gray.Pix[y*s.gray.Stride:y*s.gray.Stride+w])
	}
	return out
}

// Image returns a private *image.Gray copy suitable for display or encoding.
func (s ImageState) Image() *image.Gray {
	if s.gray == nil {
		return nil
	}
	dst := image.NewGray(s.gray.Rect)
	copy(dst.Pix, s.gray.Pix)
	return dst
}

// Clone returns a state backed by a fresh buffer.
func (s ImageState) Clone() ImageState {
	if s.gray == nil {
		return ImageState{}
	}
	return ImageState{gray: s.Image()}
}

// Equal reports whether both states have the same size and samples.
func (s ImageState) Equal(other ImageState) bool {
	if s.IsEmpty() || other.IsEmpty() {
		return s.IsEmpty() == other.IsEmpty()
	}
	if s.Width() != other.Width() || s.Height() != other.Height() {
		return false
	}
	return bytes.Equal(s.Pixels(), other.Pixels())
}

// sharesBuffer is used by tests to prove entries are not aliased.
func (s ImageState) sharesBuffer(other ImageState) bool {
	if s.gray == nil || other.gray == nil || len(s.gray.Pix) == 0 || len(other.gray.Pix) == 0 {
		return false
	}
	return &s.gray.Pix[0] == &other.gray.Pix[0]
}

// ImageData describes a decoded file alongside its grayscale state
type ImageData struct {
	State    ImageState
	Name     string
	Format   string
	Channels int
	LoadTime time.Time
	Metadata ImageMetadata
}

// ImageMetadata contains additional information about the source file
type ImageMetadata struct {
	FileSize   int64
	ColorSpace string
	BitDepth   int
}
