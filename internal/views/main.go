package views

import (
	"image"

	"image-workbench/internal/models"
	"image-workbench/internal/processing/histogram"
	"image-workbench/internal/views/components"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// Frame is everything the window shows for one session snapshot. The
// controller prepares it off the UI goroutine.
type Frame struct {
	Image    image.Image
	Title    string
	HasImage bool
	CanUndo  bool
	CanRedo  bool

	Cursor   int
	Depth    int
	Capacity int

	Width    int
	Height   int
	Format   string
	FileSize int64

	Plot  image.Image
	Stats histogram.Stats

	// Generation orders frames. Render ignores a frame older than the last
	// one it showed.
	Generation uint64
}

// frameGate admits frames in generation order. It is only touched on the
// UI goroutine.
type frameGate struct {
	newest uint64
}

func (g *frameGate) admit(generation uint64) bool {
	if generation < g.newest {
		return false
	}
	g.newest = generation
	return true
}

// MainView owns the window layout. Its exported methods may be called from
// any goroutine; UI updates are scheduled with fyne.Do.
type MainView struct {
	window        fyne.Window
	mainContainer *fyne.Container
	toolbar       *components.Toolbar
	imageDisplay  *components.ImageDisplay
	operations    *components.OperationsPanel
	histogram     *components.HistogramPanel
	statusBar     *components.StatusBar

	loadHandler     func()
	saveHandler     func()
	undoHandler     func()
	redoHandler     func()
	resetHandler    func()
	spectrumHandler func()
	applyHandler    func(models.Operation)
	errorHandler    func(error)
	quitHandler     func()

	frames frameGate
}

func NewMainView(window fyne.Window, defaults models.Defaults) *MainView {
	view := &MainView{window: window}

	view.initializeComponents(defaults)
	view.buildLayout()
	view.setupEventHandlers()
	view.setupMenus()
	view.setupShortcuts()

	return view
}

func (mv *MainView) initializeComponents(defaults models.Defaults) {
	mv.toolbar = components.NewToolbar()
	mv.imageDisplay = components.NewImageDisplay()
	mv.operations = components.NewOperationsPanel(defaults)
	mv.histogram = components.NewHistogramPanel()
	mv.statusBar = components.NewStatusBar()
	mv.operations.SetEnabled(false)
}

func (mv *MainView) buildLayout() {
	side := container.NewVScroll(container.NewVBox(
		mv.operations.GetContainer(),
		widget.NewSeparator(),
		mv.histogram.GetContainer(),
	))
	side.SetMinSize(fyne.NewSize(components.HistogramWidth+40, 0))

	split := container.NewHSplit(mv.imageDisplay.GetContainer(), side)
	split.SetOffset(0.68)

	mv.mainContainer = container.NewBorder(
		mv.toolbar.GetContainer(),
		mv.statusBar.GetContainer(),
		nil,
		nil,
		split,
	)
	mv.window.SetContent(mv.mainContainer)
}

func (mv *MainView) setupEventHandlers() {
	mv.toolbar.SetLoadHandler(func() { call(mv.loadHandler) })
	mv.toolbar.SetSaveHandler(func() { call(mv.saveHandler) })
	mv.toolbar.SetUndoHandler(func() { call(mv.undoHandler) })
	mv.toolbar.SetRedoHandler(func() { call(mv.redoHandler) })
	mv.toolbar.SetResetHandler(func() { call(mv.resetHandler) })
	mv.toolbar.SetSpectrumHandler(func() { call(mv.spectrumHandler) })

	mv.operations.SetApplyHandler(func(op models.Operation) {
		if mv.applyHandler != nil {
			mv.applyHandler(op)
		}
	})
	mv.operations.SetErrorHandler(func(err error) {
		if mv.errorHandler != nil {
			mv.errorHandler(err)
		}
	})
}

func call(handler func()) {
	if handler != nil {
		handler()
	}
}

func (mv *MainView) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", func() { call(mv.loadHandler) }),
		fyne.NewMenuItem("Save Image...", func() { call(mv.saveHandler) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { call(mv.quitHandler) }),
	)
	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", func() { call(mv.undoHandler) }),
		fyne.NewMenuItem("Redo", func() { call(mv.redoHandler) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Revert to Original", func() { call(mv.resetHandler) }),
	)
	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Magnitude Spectrum", func() { call(mv.spectrumHandler) }),
	)
	mv.window.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, viewMenu))
}

func (mv *MainView) setupShortcuts() {
	c := mv.window.Canvas()
	bind := func(key fyne.KeyName, mod fyne.KeyModifier, handler *func()) {
		c.AddShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: mod}, func(fyne.Shortcut) {
			call(*handler)
		})
	}
	bind(fyne.KeyO, fyne.KeyModifierShortcutDefault, &mv.loadHandler)
	bind(fyne.KeyS, fyne.KeyModifierShortcutDefault, &mv.saveHandler)
	bind(fyne.KeyZ, fyne.KeyModifierShortcutDefault, &mv.undoHandler)
	bind(fyne.KeyY, fyne.KeyModifierShortcutDefault, &mv.redoHandler)
	bind(fyne.KeyZ, fyne.KeyModifierShortcutDefault|fyne.KeyModifierShift, &mv.redoHandler)
}

func (mv *MainView) SetLoadImageHandler(handler func())             { mv.loadHandler = handler }
func (mv *MainView) SetSaveImageHandler(handler func())             { mv.saveHandler = handler }
func (mv *MainView) SetUndoHandler(handler func())                  { mv.undoHandler = handler }
func (mv *MainView) SetRedoHandler(handler func())                  { mv.redoHandler = handler }
func (mv *MainView) SetResetHandler(handler func())                 { mv.resetHandler = handler }
func (mv *MainView) SetSpectrumHandler(handler func())              { mv.spectrumHandler = handler }
func (mv *MainView) SetApplyHandler(handler func(models.Operation)) { mv.applyHandler = handler }
func (mv *MainView) SetInputErrorHandler(handler func(error))       { mv.errorHandler = handler }
func (mv *MainView) SetQuitHandler(handler func())                  { mv.quitHandler = handler }

// Render shows f and re-enables the controls it allows.
func (mv *MainView) Render(f Frame) {
	fyne.Do(func() {
		if !mv.frames.admit(f.Generation) {
			return
		}
		if !f.HasImage {
			mv.imageDisplay.SetImage(nil, "")
			mv.histogram.Clear()
			mv.statusBar.SetHistory(0, 0, f.Capacity)
		} else {
			mv.imageDisplay.SetImage(f.Image, f.Title)
			mv.histogram.Update(f.Plot, f.Stats)
			mv.statusBar.SetImageInfo(f.Width, f.Height, f.Format, f.FileSize)
			mv.statusBar.SetHistory(f.Cursor, f.Depth, f.Capacity)
		}
		mv.toolbar.SetHistoryState(f.HasImage, f.CanUndo, f.CanRedo)
		mv.operations.SetEnabled(f.HasImage)
	})
}

// SetBusy locks the edit controls while an operation runs.
func (mv *MainView) SetBusy(busy bool) {
	fyne.Do(func() {
		mv.toolbar.SetBusy(busy)
		if busy {
			mv.operations.SetEnabled(false)
		} else {
			mv.operations.SetEnabled(mv.imageDisplay.HasImage())
		}
	})
}

func (mv *MainView) UpdateStatus(status string) {
	fyne.Do(func() {
		mv.statusBar.SetStatus(status)
	})
}

func (mv *MainView) SetMemoryInfo(activeMats, bytesInUse int64) {
	fyne.Do(func() {
		mv.statusBar.SetMemoryInfo(activeMats, bytesInUse)
	})
}

func (mv *MainView) ShowError(title string, err error) {
	fyne.Do(func() {
		d := dialog.NewError(err, mv.window)
		d.SetOnClosed(func() { mv.statusBar.SetStatus(title) })
		d.Show()
	})
}

// ShowSpectrum opens the rendered magnitude spectrum in its own window.
func (mv *MainView) ShowSpectrum(img image.Image) {
	fyne.Do(func() {
		w := fyne.CurrentApp().NewWindow("Magnitude Spectrum")
		spectrum := canvas.NewImageFromImage(img)
		spectrum.FillMode = canvas.ImageFillContain
		spectrum.ScaleMode = canvas.ImageScalePixels
		spectrum.SetMinSize(fyne.NewSize(components.ImageAreaWidth/2, components.ImageAreaHeight/2))
		w.SetContent(spectrum)
		w.Resize(fyne.NewSize(components.ImageAreaWidth, components.ImageAreaHeight))
		w.Show()
	})
}

// ShowOpenDialog lets the user pick an image with one of extensions.
func (mv *MainView) ShowOpenDialog(extensions []string, callback func(fyne.URIReadCloser, error)) {
	fyne.Do(func() {
		d := dialog.NewFileOpen(callback, mv.window)
		d.SetFilter(storage.NewExtensionFileFilter(extensions))
		d.Show()
	})
}

func (mv *MainView) ShowSaveDialog(fileName string, callback func(fyne.URIWriteCloser, error)) {
	fyne.Do(func() {
		d := dialog.NewFileSave(callback, mv.window)
		if fileName != "" {
			d.SetFileName(fileName)
		}
		d.Show()
	})
}

func (mv *MainView) SetWindowTitle(title string) {
	fyne.Do(func() {
		mv.window.SetTitle(title)
	})
}

func (mv *MainView) GetWindow() fyne.Window {
	return mv.window
}
