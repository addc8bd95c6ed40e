package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Toolbar holds the file and history actions.
type Toolbar struct {
	container      *fyne.Container
	loadButton     *widget.Button
	saveButton     *widget.Button
	undoButton     *widget.Button
	redoButton     *widget.Button
	resetButton    *widget.Button
	spectrumButton *widget.Button
	activity       *widget.ProgressBarInfinite

	loadHandler     func()
	saveHandler     func()
	undoHandler     func()
	redoHandler     func()
	resetHandler    func()
	spectrumHandler func()

	hasImage bool
	canUndo  bool
	canRedo  bool
	busy     bool
}

func NewToolbar() *Toolbar {
	toolbar := &Toolbar{}
	toolbar.createComponents()
	toolbar.buildLayout()
	toolbar.setupEventHandlers()
	toolbar.applyState()
	return toolbar
}

func (t *Toolbar) createComponents() {
	t.loadButton = widget.NewButtonWithIcon("Load", theme.FolderOpenIcon(), nil)
	t.loadButton.Importance = widget.HighImportance

	t.saveButton = widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), nil)
	t.undoButton = widget.NewButtonWithIcon("Undo", theme.ContentUndoIcon(), nil)
	t.redoButton = widget.NewButtonWithIcon("Redo", theme.ContentRedoIcon(), nil)
	t.resetButton = widget.NewButtonWithIcon("Original", theme.ViewRefreshIcon(), nil)
	t.spectrumButton = widget.NewButtonWithIcon("Spectrum", theme.VisibilityIcon(), nil)

	t.activity = widget.NewProgressBarInfinite()
	t.activity.Stop()
	t.activity.Hide()
}

func (t *Toolbar) buildLayout() {
	t.container = container.NewHBox(
		t.loadButton,
		t.saveButton,
		widget.NewSeparator(),
		t.undoButton,
		t.redoButton,
		t.resetButton,
		widget.NewSeparator(),
		t.spectrumButton,
		t.activity,
	)
}

func (t *Toolbar) setupEventHandlers() {
	t.loadButton.OnTapped = func() { call(t.loadHandler) }
	t.saveButton.OnTapped = func() { call(t.saveHandler) }
	t.undoButton.OnTapped = func() { call(t.undoHandler) }
	t.redoButton.OnTapped = func() { call(t.redoHandler) }
	t.resetButton.OnTapped = func() { call(t.resetHandler) }
	t.spectrumButton.OnTapped = func() { call(t.spectrumHandler) }
}

func call(handler func()) {
	if handler != nil {
		handler()
	}
}

func (t *Toolbar) SetLoadHandler(handler func())     { t.loadHandler = handler }
func (t *Toolbar) SetSaveHandler(handler func())     { t.saveHandler = handler }
func (t *Toolbar) SetUndoHandler(handler func())     { t.undoHandler = handler }
func (t *Toolbar) SetRedoHandler(handler func())     { t.redoHandler = handler }
func (t *Toolbar) SetResetHandler(handler func())    { t.resetHandler = handler }
func (t *Toolbar) SetSpectrumHandler(handler func()) { t.spectrumHandler = handler }

// SetHistoryState enables the buttons that the session allows. Must be
// called on the UI goroutine.
func (t *Toolbar) SetHistoryState(hasImage, canUndo, canRedo bool) {
	t.hasImage = hasImage
	t.canUndo = canUndo
	t.canRedo = canRedo
	t.applyState()
}

// SetBusy shows the activity bar and locks every action except Load.
func (t *Toolbar) SetBusy(busy bool) {
	t.busy = busy
	if busy {
		t.activity.Show()
		t.activity.Start()
	} else {
		t.activity.Stop()
		t.activity.Hide()
	}
	t.applyState()
}

func (t *Toolbar) applyState() {
	setEnabled(t.saveButton, t.hasImage && !t.busy)
	setEnabled(t.undoButton, t.canUndo && !t.busy)
	setEnabled(t.redoButton, t.canRedo && !t.busy)
	setEnabled(t.resetButton, t.hasImage && !t.busy)
	setEnabled(t.spectrumButton, t.hasImage && !t.busy)
}

func setEnabled(w fyne.Disableable, enabled bool) {
	if enabled {
		w.Enable()
	} else {
		w.Disable()
	}
}

func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}
