package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"image-workbench/internal/logger"
	"image-workbench/internal/models"
	"image-workbench/internal/opencv/conversion"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageService decodes files into grayscale states and encodes states back
// to files.
type ImageService struct {
	jpegQuality   int
	defaultFormat string
	logger        logger.Logger
}

// NewImageService creates a new image service. An unknown defaultFormat
// falls back to PNG.
func NewImageService(jpegQuality int, defaultFormat string, log logger.Logger) *ImageService {
	if jpegQuality < 1 || jpegQuality > 100 {
		jpegQuality = 95
	}
	if _, err := formatFor(defaultFormat); err != nil {
		defaultFormat = "png"
	}
	return &ImageService{
		jpegQuality:   jpegQuality,
		defaultFormat: normalizeFormat(defaultFormat),
		logger:        log,
	}
}

// Load decodes r, applying EXIF orientation, and converts it to grayscale.
// name is only used for format detection and reporting.
func (is *ImageService) Load(ctx context.Context, r io.Reader, name string) (*models.ImageData, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	startTime := time.Now()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	cfg, detectedFormat, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	mat, err := conversion.ImageToGrayMat(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image to grayscale: %w", err)
	}
	defer mat.Close()

	state, err := conversion.MatToState(mat)
	if err != nil {
		return nil, err
	}

	imageData := &models.ImageData{
		State:    state,
		Name:     filepath.Base(name),
		Format:   is.determineFormat(strings.ToLower(filepath.Ext(name)), detectedFormat),
		Channels: channelsOf(cfg.ColorModel),
		LoadTime: time.Now(),
		Metadata: models.ImageMetadata{
			FileSize:   int64(len(data)),
			ColorSpace: colorSpaceOf(img),
			BitDepth:   8,
		},
	}

	is.logger.Debug("ImageService", "image decoded", map[string]interface{}{
		"name":     imageData.Name,
		"format":   imageData.Format,
		"width":    state.Width(),
		"height":   state.Height(),
		"bytes":    len(data),
		"duration": time.Since(startTime).String(),
	})

	return imageData, nil
}

// LoadFile opens and decodes path.
func (is *ImageService) LoadFile(ctx context.Context, path string) (*models.ImageData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	return is.Load(ctx, f, path)
}

// Save encodes state to w. An empty format selects the default format.
func (is *ImageService) Save(ctx context.Context, w io.Writer, state models.ImageState, format string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if state.IsEmpty() {
		return fmt.Errorf("no image data to save")
	}

	if format == "" {
		format = is.defaultFormat
	}
	f, err := formatFor(format)
	if err != nil {
		return err
	}

	if err := imaging.Encode(w, state.Image(), f, imaging.JPEGQuality(is.jpegQuality)); err != nil {
		return fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return nil
}

// SaveFile writes state to path using the format implied by its extension.
// A path without an extension gets the default format's extension. The
// written path is returned.
func (is *ImageService) SaveFile(ctx context.Context, path string, state models.ImageState) (string, error) {
	format := is.FormatForPath(path)
	if filepath.Ext(path) == "" {
		path += "." + format
	}
	if _, err := formatFor(format); err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}

	if err := is.Save(ctx, f, state, format); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close output file: %w", err)
	}
	return path, nil
}

// FormatForPath maps a file name to a save format.
func (is *ImageService) FormatForPath(path string) string {
	return is.determineFormat(strings.ToLower(filepath.Ext(path)), "")
}

// determineFormat determines the appropriate format based on extension and detected format
func (is *ImageService) determineFormat(extension, detectedFormat string) string {
	switch extension {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	case ".bmp":
		return "bmp"
	case ".tiff", ".tif":
		return "tiff"
	case ".gif":
		return "gif"
	case "":
		if detectedFormat != "" {
			return detectedFormat
		}
		return is.defaultFormat
	default:
		if detectedFormat != "" {
			return detectedFormat
		}
		return strings.TrimPrefix(extension, ".")
	}
}

// ValidateImageFormat checks if a format can be written
func (is *ImageService) ValidateImageFormat(format string) bool {
	_, err := formatFor(format)
	return err == nil
}

// GetSupportedFormats returns the extensions accepted by the load dialog
func (is *ImageService) GetSupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".gif", ".webp"}
}

func normalizeFormat(format string) string {
	switch f := strings.ToLower(strings.TrimPrefix(format, ".")); f {
	case "jpg":
		return "jpeg"
	case "tif":
		return "tiff"
	default:
		return f
	}
}

func formatFor(format string) (imaging.Format, error) {
	switch normalizeFormat(format) {
	case "jpeg":
		return imaging.JPEG, nil
	case "png":
		return imaging.PNG, nil
	case "bmp":
		return imaging.BMP, nil
	case "tiff":
		return imaging.TIFF, nil
	case "gif":
		return imaging.GIF, nil
	default:
		return 0, fmt.Errorf("unsupported output format %q", format)
	}
}

func channelsOf(model color.Model) int {
	switch model {
	case color.GrayModel, color.Gray16Model:
		return 1
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model, color.CMYKModel:
		return 4
	default:
		return 3
	}
}

func colorSpaceOf(img image.Image) string {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return "grayscale"
	case *image.Paletted:
		return "paletted"
	case *image.YCbCr:
		return "YCbCr"
	case *image.CMYK:
		return "CMYK"
	default:
		return "RGB"
	}
}
