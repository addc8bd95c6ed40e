package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"image-workbench/internal/logger"
	"image-workbench/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLoadConvertsToGrayscale(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			img.Set(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	img.Set(0, 0, color.NRGBA{A: 255})

	svc := NewImageService(90, "png", logger.NewNop())
	data, err := svc.Load(context.Background(), bytes.NewReader(encodePNG(t, img)), "photos/sample.PNG")
	require.NoError(t, err)

	assert.Equal(t, "sample.PNG", data.Name)
	assert.Equal(t, "png", data.Format)
	assert.Equal(t, 3, data.State.Width())
	assert.Equal(t, 2, data.State.Height())
	assert.Equal(t, uint8(0), data.State.At(0, 0))
	assert.Equal(t, uint8(255), data.State.At(2, 1))
	assert.Positive(t, data.Metadata.FileSize)
}

func TestLoadRejectsGarbage(t *testing.T) {
	svc := NewImageService(90, "png", logger.NewNop())
	_, err := svc.Load(context.Background(), bytes.NewReader([]byte("not an image")), "x.png")
	assert.Error(t, err)

	_, err = svc.LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestSaveFileRoundTrip(t *testing.T) {
	state, err := models.NewImageStateFromPixels(2, 2, []uint8{0, 64, 128, 255})
	require.NoError(t, err)

	svc := NewImageService(90, "png", logger.NewNop())
	ctx := context.Background()

	written, err := svc.SaveFile(ctx, filepath.Join(t.TempDir(), "out"), state)
	require.NoError(t, err)
	assert.Equal(t, ".png", filepath.Ext(written))

	back, err := svc.LoadFile(ctx, written)
	require.NoError(t, err)
	assert.True(t, back.State.Equal(state))
	assert.Equal(t, 1, back.Channels)
}

func TestSaveFileFormats(t *testing.T) {
	state, err := models.NewImageStateFromPixels(4, 4, make([]uint8, 16))
	require.NoError(t, err)

	svc := NewImageService(80, "png", logger.NewNop())
	dir := t.TempDir()

	for _, name := range []string{"a.jpg", "b.bmp", "c.tif", "d.gif"} {
		written, err := svc.SaveFile(context.Background(), filepath.Join(dir, name), state)
		require.NoError(t, err, name)
		info, err := os.Stat(written)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	_, err = svc.SaveFile(context.Background(), filepath.Join(dir, "e.xyz"), state)
	assert.Error(t, err)
	_, err = os.Stat(filepath.Join(dir, "e.xyz"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSaveRejectsEmptyState(t *testing.T) {
	svc := NewImageService(90, "png", logger.NewNop())
	var buf bytes.Buffer
	assert.Error(t, svc.Save(context.Background(), &buf, models.ImageState{}, "png"))
}

func TestFormatForPath(t *testing.T) {
	svc := NewImageService(0, "jpg", logger.NewNop())
	assert.Equal(t, "jpeg", svc.FormatForPath("x.JPG"))
	assert.Equal(t, "tiff", svc.FormatForPath("x.tif"))
	assert.Equal(t, "jpeg", svc.FormatForPath("noext"))
	assert.True(t, svc.ValidateImageFormat("TIF"))
	assert.False(t, svc.ValidateImageFormat("webp"))
}

func TestProcessingServiceAppliesOperations(t *testing.T) {
	pix := make([]uint8, 36)
	for i := range pix {
		if i%6 >= 3 {
			pix[i] = 220
		} else {
			pix[i] = 20
		}
	}
	state, err := models.NewImageStateFromPixels(6, 6, pix)
	require.NoError(t, err)

	ps := NewProcessingService(logger.NewNop())
	ctx := context.Background()

	ops := []models.Operation{
		models.MeanFilter{KernelSize: 3},
		models.MedianFilter{KernelSize: 4},
		models.MaxFilter{KernelSize: 3},
		models.MinFilter{KernelSize: 3},
		models.GaussianFilter{Sigma: 1},
		models.Laplacian{},
		models.Roberts{},
		models.Prewitt{},
		models.Sobel{},
		models.LowPass{Cutoff: 2},
		models.HighPass{Cutoff: 2},
		models.Erosion{KernelSize: 3},
		models.Dilation{KernelSize: 3},
		models.ContrastStretch{Min: 10, Max: 200},
		models.HistogramEqualization{},
		models.OtsuThreshold{},
	}
	for _, op := range ops {
		t.Run(string(op.Kind()), func(t *testing.T) {
			res, err := ps.Apply(ctx, state, op)
			require.NoError(t, err)
			assert.Equal(t, 6, res.State.Width())
			assert.Equal(t, 6, res.State.Height())
		})
	}

	res, err := ps.Apply(ctx, state, models.OtsuThreshold{})
	require.NoError(t, err)
	assert.Equal(t, "threshold 20", res.Detail)
	assert.Equal(t, uint8(0), res.State.At(0, 0))
	assert.Equal(t, uint8(255), res.State.At(5, 0))
	assert.Equal(t, uint8(20), state.At(0, 0), "input untouched")
}

func TestProcessingServiceErrors(t *testing.T) {
	ps := NewProcessingService(logger.NewNop())
	ctx := context.Background()
	state, err := models.NewImageStateFromPixels(2, 2, make([]uint8, 4))
	require.NoError(t, err)

	_, err = ps.Apply(ctx, models.ImageState{}, models.Sobel{})
	assert.Error(t, err)

	_, err = ps.Apply(ctx, state, nil)
	assert.Error(t, err)

	_, err = ps.Apply(ctx, state, models.MeanFilter{KernelSize: 99})
	var ve *models.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = ps.Apply(ctx, state, models.ContrastStretch{Min: 9, Max: 9})
	assert.ErrorAs(t, err, &ve)
}
