package batch

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"image-workbench/internal/logger"
	"image-workbench/internal/models"
	"image-workbench/internal/processing/chain"
	"image-workbench/internal/services"
	"image-workbench/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGray(t *testing.T, path string, pix []uint8, w, h int) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	copy(img.Pix, pix)

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func newFactory() SessionFactory {
	log := logger.NewNop()
	codec := services.NewImageService(95, "png", log)
	proc := services.NewProcessingService(log)
	return func() *session.Session {
		return session.New(models.DefaultHistoryCapacity, proc, codec, log)
	}
}

func TestRunProcessesEveryFile(t *testing.T) {
	inDir, outDir := t.TempDir(), filepath.Join(t.TempDir(), "out")

	var inputs []string
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		path := filepath.Join(inDir, name)
		writeGray(t, path, []uint8{10, 10, 240, 240}, 2, 2)
		inputs = append(inputs, path)
	}

	pc, err := chain.Parse([]string{"median:3", "otsu"}, models.DefaultParameters())
	require.NoError(t, err)

	runner := NewRunner(newFactory(), pc, outDir, 2, logger.NewNop())
	results, err := runner.Run(context.Background(), inputs)
	require.NoError(t, err)
	require.Len(t, results, 3)

	svc := services.NewImageService(95, "png", logger.NewNop())
	for i, res := range results {
		assert.Equal(t, inputs[i], res.Input)
		assert.Equal(t, 2, res.Steps)
		assert.Equal(t, filepath.Join(outDir, filepath.Base(inputs[i])), res.Output)

		data, err := svc.LoadFile(context.Background(), res.Output)
		require.NoError(t, err)
		for _, v := range data.State.Pixels() {
			assert.Contains(t, []uint8{0, 255}, v)
		}
	}
}

func TestRunReportsPerFileFailures(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	writeGray(t, good, []uint8{1, 2, 3, 4}, 2, 2)
	missing := filepath.Join(dir, "missing.png")

	pc, err := chain.Parse([]string{"sobel"}, models.DefaultParameters())
	require.NoError(t, err)

	runner := NewRunner(newFactory(), pc, filepath.Join(dir, "out"), 4, logger.NewNop())
	results, err := runner.Run(context.Background(), []string{good, missing})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.png")

	assert.NoError(t, results[0].Err)
	var opErr *session.OperationError
	assert.ErrorAs(t, results[1].Err, &opErr)
}

func TestRunDistinctOutputsForSameBaseName(t *testing.T) {
	root := t.TempDir()
	outDir := filepath.Join(root, "out")
	for _, sub := range []string{"a", "b"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, sub), 0o755))
	}
	first := filepath.Join(root, "a", "x.png")
	second := filepath.Join(root, "b", "x.png")
	writeGray(t, first, []uint8{10, 10, 10, 10}, 2, 2)
	writeGray(t, second, []uint8{200, 200, 200, 200}, 2, 2)

	pc, err := chain.Parse([]string{"median:3"}, models.DefaultParameters())
	require.NoError(t, err)

	runner := NewRunner(newFactory(), pc, outDir, 2, logger.NewNop())
	results, err := runner.Run(context.Background(), []string{first, second})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, filepath.Join(outDir, "x.png"), results[0].Output)
	assert.Equal(t, filepath.Join(outDir, "x_2.png"), results[1].Output)

	svc := services.NewImageService(95, "png", logger.NewNop())
	for i, want := range []uint8{10, 200} {
		data, err := svc.LoadFile(context.Background(), results[i].Output)
		require.NoError(t, err)
		assert.Equal(t, []uint8{want, want, want, want}, data.State.Pixels(), results[i].Output)
	}
}

func TestOutputPathsAvoidCollisions(t *testing.T) {
	dir := t.TempDir()
	runner := NewRunner(newFactory(), chain.NewProcessingChain(nil), dir, 1, logger.NewNop())

	outputs := runner.OutputPaths([]string{
		"/a/x.png",
		"/b/x.png",
		"/c/x_2.png",
		"/d/x.png",
		filepath.Join(dir, "y.png"),
		"/e/y_edited.png",
	})
	assert.Equal(t, []string{
		filepath.Join(dir, "x.png"),
		filepath.Join(dir, "x_2.png"),
		filepath.Join(dir, "x_2_2.png"),
		filepath.Join(dir, "x_3.png"),
		filepath.Join(dir, "y_edited.png"),
		filepath.Join(dir, "y_edited_2.png"),
	}, outputs)
}

func TestRunWithoutInputs(t *testing.T) {
	runner := NewRunner(newFactory(), chain.NewProcessingChain(nil), t.TempDir(), 1, logger.NewNop())
	_, err := runner.Run(context.Background(), nil)
	assert.Error(t, err)
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	runner := NewRunner(newFactory(), chain.NewProcessingChain(nil), dir, 1, logger.NewNop())

	assert.Equal(t, filepath.Join(dir, "photo.jpg"), runner.OutputPath("/elsewhere/photo.jpg"))
	assert.Equal(t, filepath.Join(dir, "photo_edited.jpg"), runner.OutputPath(filepath.Join(dir, "photo.jpg")))

	runner.Format = "png"
	assert.Equal(t, filepath.Join(dir, "photo.png"), runner.OutputPath("/elsewhere/photo.jpg"))
}
