package controllers

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"image-workbench/internal/logger"
	"image-workbench/internal/models"
	"image-workbench/internal/opencv/memory"
	"image-workbench/internal/processing/histogram"
	"image-workbench/internal/services"
	"image-workbench/internal/session"
	"image-workbench/internal/views"
	"image-workbench/internal/views/components"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
)

// MemoryReporter exposes OpenCV allocation counters for the status bar.
type MemoryReporter interface {
	GetStats() memory.Stats
}

// MainController turns view events into session requests and renders the
// resulting snapshots. Every session call runs off the UI goroutine.
type MainController struct {
	session      *session.Session
	imageService *services.ImageService
	mainView     *views.MainView
	memory       MemoryReporter
	logger       logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewMainController(sess *session.Session, imageService *services.ImageService, mem MemoryReporter, log logger.Logger) *MainController {
	ctx, cancel := context.WithCancel(context.Background())
	return &MainController{
		session:      sess,
		imageService: imageService,
		memory:       mem,
		logger:       log,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// SetMainView wires the view's events to the controller and renders the
// initial empty state.
func (mc *MainController) SetMainView(view *views.MainView) {
	mc.mainView = view

	view.SetLoadImageHandler(mc.LoadImage)
	view.SetSaveImageHandler(mc.SaveImage)
	view.SetUndoHandler(mc.Undo)
	view.SetRedoHandler(mc.Redo)
	view.SetResetHandler(mc.ResetToOriginal)
	view.SetSpectrumHandler(mc.ShowSpectrum)
	view.SetApplyHandler(mc.Apply)
	view.SetInputErrorHandler(func(err error) { mc.handleError("Invalid parameter", err) })

	mc.render(mc.session.Current())
}

func (mc *MainController) LoadImage() {
	mc.mainView.ShowOpenDialog(mc.imageService.GetSupportedFormats(), func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mc.handleError("Failed to open file dialog", err)
			return
		}
		if reader == nil {
			return
		}
		mc.background(func() {
			defer reader.Close()
			mc.mainView.UpdateStatus("Loading " + reader.URI().Name() + "...")

			outcome, err := mc.session.Load(mc.ctx, reader, reader.URI().Name())
			if err != nil {
				mc.handleError("Failed to load image", err)
				return
			}
			mc.mainView.SetWindowTitle("Image Workbench - " + outcome.Snapshot.Source.Name)
			mc.finish(outcome)
		})
	})
}

func (mc *MainController) SaveImage() {
	snap := mc.session.Current()
	if !snap.HasImage {
		mc.handleError("Save failed", session.ErrNoImage)
		return
	}

	mc.mainView.ShowSaveDialog(suggestedName(snap.Source.Name), func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			mc.handleError("Failed to open save dialog", err)
			return
		}
		if writer == nil {
			return
		}
		mc.background(func() {
			uri := writer.URI()
			format := mc.imageService.FormatForPath(uri.Name())
			if !mc.imageService.ValidateImageFormat(format) {
				writer.Close()
				mc.discard(uri)
				mc.handleError("Save failed", models.NewValidationError("format", format, "cannot write this format"))
				return
			}

			err := mc.session.Save(mc.ctx, writer, format)
			if closeErr := writer.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				mc.discard(uri)
				mc.handleError("Save failed", err)
				return
			}

			mc.logger.Info("MainController", "image saved", map[string]interface{}{
				"uri":    uri.String(),
				"format": format,
			})
			mc.mainView.UpdateStatus("Saved " + uri.Name())
		})
	})
}

func (mc *MainController) discard(uri fyne.URI) {
	if err := storage.Delete(uri); err != nil {
		mc.logger.Warning("MainController", "failed to remove partial file", map[string]interface{}{
			"uri":   uri.String(),
			"error": err.Error(),
		})
	}
}

// Apply runs op in the background. The edit controls stay locked until
// it finishes.
func (mc *MainController) Apply(op models.Operation) {
	mc.mainView.SetBusy(true)
	mc.mainView.UpdateStatus("Applying " + op.String() + "...")

	mc.background(func() {
		defer mc.mainView.SetBusy(false)

		outcome, err := mc.session.Apply(mc.ctx, op)
		if err != nil {
			mc.handleError("Operation failed", err)
			return
		}
		mc.finish(outcome)
	})
}

func (mc *MainController) Undo() {
	mc.background(func() {
		outcome, err := mc.session.Undo()
		if err != nil {
			mc.handleError("Undo", err)
			return
		}
		mc.finish(outcome)
	})
}

func (mc *MainController) Redo() {
	mc.background(func() {
		outcome, err := mc.session.Redo()
		if err != nil {
			mc.handleError("Redo", err)
			return
		}
		mc.finish(outcome)
	})
}

func (mc *MainController) ResetToOriginal() {
	mc.background(func() {
		outcome, err := mc.session.ResetToOriginal()
		if err != nil {
			mc.handleError("Revert", err)
			return
		}
		mc.finish(outcome)
	})
}

func (mc *MainController) ShowSpectrum() {
	mc.background(func() {
		spectrum, err := mc.session.Spectrum(mc.ctx)
		if err != nil {
			mc.handleError("Spectrum failed", err)
			return
		}
		mc.mainView.ShowSpectrum(spectrum.Image())
		mc.mainView.UpdateStatus("Showing magnitude spectrum")
	})
}

func (mc *MainController) background(fn func()) {
	mc.wg.Add(1)
	go func() {
		defer mc.wg.Done()
		fn()
	}()
}

func (mc *MainController) finish(outcome session.Outcome) {
	mc.render(outcome.Snapshot)
	mc.mainView.UpdateStatus(outcome.Message)
}

func (mc *MainController) render(snap session.Snapshot) {
	mc.mainView.Render(NewFrame(snap))
	if mc.memory != nil {
		stats := mc.memory.GetStats()
		mc.mainView.SetMemoryInfo(stats.ActiveMats, stats.InUse())
	}
}

// NewFrame computes the image, histogram plot and statistics shown for snap.
func NewFrame(snap session.Snapshot) views.Frame {
	frame := views.Frame{
		HasImage:   snap.HasImage,
		CanUndo:    snap.CanUndo,
		CanRedo:    snap.CanRedo,
		Cursor:     snap.Cursor,
		Depth:      snap.Depth,
		Capacity:   snap.Capacity,
		Generation: snap.Generation,
	}
	if !snap.HasImage {
		return frame
	}

	frame.Image = snap.State.Image()
	frame.Width = snap.State.Width()
	frame.Height = snap.State.Height()
	frame.Format = snap.Source.Format
	frame.FileSize = snap.Source.Metadata.FileSize
	frame.Title = fmt.Sprintf("%s (step %d of %d)", snap.Source.Name, snap.Cursor+1, snap.Depth)

	hist := histogram.Histogram(snap.State)
	frame.Stats = histogram.FromHistogram(hist, frame.Width, frame.Height)
	frame.Plot = histogram.Render(hist, components.HistogramWidth, components.HistogramHeight)
	return frame
}

// StatusFor returns the status line text for errors that only need a note.
// Other errors are shown in a dialog.
func StatusFor(err error) (string, bool) {
	switch {
	case errors.Is(err, models.ErrNoHistory):
		return "Nothing more to step through in the history", true
	case errors.Is(err, models.ErrEmptyHistory), errors.Is(err, session.ErrNoImage):
		return "Load an image first", true
	case errors.Is(err, session.ErrBusy):
		return "Another operation is still running", true
	case errors.Is(err, session.ErrStaleResult):
		return "Result discarded because the image changed", true
	case errors.Is(err, context.Canceled):
		return "Cancelled", true
	default:
		return "", false
	}
}

func (mc *MainController) handleError(title string, err error) {
	if status, ok := StatusFor(err); ok {
		mc.logger.Debug("MainController", status, map[string]interface{}{"error": err.Error()})
		mc.mainView.UpdateStatus(status)
		return
	}

	mc.logger.Error("MainController", err, map[string]interface{}{"context": title})

	var ve *models.ValidationError
	var oe *session.OperationError
	switch {
	case errors.As(err, &ve):
		mc.mainView.UpdateStatus("Invalid " + ve.Parameter)
	case errors.As(err, &oe):
		mc.mainView.UpdateStatus(oe.Operation + " failed")
	default:
		mc.mainView.UpdateStatus(title)
	}
	mc.mainView.ShowError(title, err)
}

// Shutdown cancels running work and waits for background requests.
func (mc *MainController) Shutdown() {
	mc.cancel()
	mc.wg.Wait()
	mc.logger.Debug("MainController", "controller stopped", nil)
}

func suggestedName(source string) string {
	if source == "" {
		return ""
	}
	ext := filepath.Ext(source)
	return strings.TrimSuffix(source, ext) + "_edited" + ext
}
