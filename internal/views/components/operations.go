package components

import (
	"strconv"
	"strings"

	"image-workbench/internal/models"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// OperationsPanel groups the operations into tabs and builds a typed
// models.Operation from the parameter widgets when a button is tapped.
type OperationsPanel struct {
	tabs *container.AppTabs

	kernelSelect      *widget.Select
	morphKernelSelect *widget.Select
	sigmaEntry        *widget.Entry
	cutoffEntry       *widget.Entry
	contrastMinEntry  *widget.Entry
	contrastMaxEntry  *widget.Entry

	buttons []*widget.Button

	applyHandler func(models.Operation)
	errorHandler func(error)
}

func NewOperationsPanel(defaults models.Defaults) *OperationsPanel {
	op := &OperationsPanel{}
	op.createComponents(defaults)
	op.buildLayout()
	return op
}

func oddSizes(lo, hi int) []string {
	var out []string
	for k := lo; k <= hi; k += 2 {
		out = append(out, strconv.Itoa(k))
	}
	return out
}

func (op *OperationsPanel) createComponents(d models.Defaults) {
	op.kernelSelect = widget.NewSelect(oddSizes(models.MinKernelSize, models.MaxKernelSize), nil)
	op.kernelSelect.SetSelected(strconv.Itoa(models.NormalizeKernelSize(d.KernelSize)))

	op.morphKernelSelect = widget.NewSelect(oddSizes(models.MinKernelSize, models.MaxMorphKernelSize), nil)
	op.morphKernelSelect.SetSelected(strconv.Itoa(models.NormalizeKernelSize(d.MorphKernelSize)))

	op.sigmaEntry = widget.NewEntry()
	op.sigmaEntry.SetText(strconv.FormatFloat(d.Sigma, 'f', -1, 64))

	op.cutoffEntry = widget.NewEntry()
	op.cutoffEntry.SetText(strconv.Itoa(d.Cutoff))

	op.contrastMinEntry = widget.NewEntry()
	op.contrastMinEntry.SetText(strconv.Itoa(int(d.ContrastMin)))

	op.contrastMaxEntry = widget.NewEntry()
	op.contrastMaxEntry.SetText(strconv.Itoa(int(d.ContrastMax)))
}

func (op *OperationsPanel) button(label string, build func() (models.Operation, error)) *widget.Button {
	b := widget.NewButton(label, func() {
		operation, err := build()
		if err != nil {
			if op.errorHandler != nil {
				op.errorHandler(err)
			}
			return
		}
		if op.applyHandler != nil {
			op.applyHandler(operation)
		}
	})
	op.buttons = append(op.buttons, b)
	return b
}

func fixed(o models.Operation) func() (models.Operation, error) {
	return func() (models.Operation, error) { return o, nil }
}

func (op *OperationsPanel) buildLayout() {
	kernel := func(newOp func(int) models.Operation) func() (models.Operation, error) {
		return func() (models.Operation, error) {
			k, err := parseInt("kernel_size", op.kernelSelect.Selected)
			if err != nil {
				return nil, err
			}
			return newOp(k), nil
		}
	}
	morph := func(newOp func(int) models.Operation) func() (models.Operation, error) {
		return func() (models.Operation, error) {
			k, err := parseInt("kernel_size", op.morphKernelSelect.Selected)
			if err != nil {
				return nil, err
			}
			return newOp(k), nil
		}
	}

	filters := container.NewVBox(
		widget.NewForm(
			widget.NewFormItem("Kernel", op.kernelSelect),
			widget.NewFormItem("Sigma", op.sigmaEntry),
		),
		widget.NewLabel("Smoothing"),
		container.NewGridWithColumns(3,
			op.button("Mean", kernel(func(k int) models.Operation { return models.MeanFilter{KernelSize: k} })),
			op.button("Median", kernel(func(k int) models.Operation { return models.MedianFilter{KernelSize: k} })),
			op.button("Gaussian", op.gaussian),
			op.button("Max", kernel(func(k int) models.Operation { return models.MaxFilter{KernelSize: k} })),
			op.button("Min", kernel(func(k int) models.Operation { return models.MinFilter{KernelSize: k} })),
		),
		widget.NewLabel("Edges"),
		container.NewGridWithColumns(2,
			op.button("Laplacian", fixed(models.Laplacian{})),
			op.button("Roberts", fixed(models.Roberts{})),
			op.button("Prewitt", fixed(models.Prewitt{})),
			op.button("Sobel", fixed(models.Sobel{})),
		),
	)

	morphology := container.NewVBox(
		widget.NewForm(widget.NewFormItem("Kernel", op.morphKernelSelect)),
		container.NewGridWithColumns(2,
			op.button("Erosion", morph(func(k int) models.Operation { return models.Erosion{KernelSize: k} })),
			op.button("Dilation", morph(func(k int) models.Operation { return models.Dilation{KernelSize: k} })),
		),
	)

	frequency := container.NewVBox(
		widget.NewForm(widget.NewFormItem("Cutoff radius", op.cutoffEntry)),
		container.NewGridWithColumns(2,
			op.button("Low pass", op.cutoff(func(c int) models.Operation { return models.LowPass{Cutoff: c} })),
			op.button("High pass", op.cutoff(func(c int) models.Operation { return models.HighPass{Cutoff: c} })),
		),
	)

	transforms := container.NewVBox(
		widget.NewForm(
			widget.NewFormItem("Min", op.contrastMinEntry),
			widget.NewFormItem("Max", op.contrastMaxEntry),
		),
		op.button("Contrast stretch", op.contrast),
		widget.NewSeparator(),
		op.button("Histogram equalization", fixed(models.HistogramEqualization{})),
	)

	segmentation := container.NewVBox(
		widget.NewLabel("Binarize with an automatically chosen threshold."),
		op.button("Otsu threshold", fixed(models.OtsuThreshold{})),
	)

	op.tabs = container.NewAppTabs(
		container.NewTabItem("Filters", filters),
		container.NewTabItem("Morphology", morphology),
		container.NewTabItem("Frequency", frequency),
		container.NewTabItem("Transforms", transforms),
		container.NewTabItem("Segmentation", segmentation),
	)
}

func (op *OperationsPanel) gaussian() (models.Operation, error) {
	text := strings.TrimSpace(op.sigmaEntry.Text)
	sigma, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, models.NewValidationError("sigma", text, "must be a number")
	}
	return models.GaussianFilter{Sigma: sigma}, nil
}

func (op *OperationsPanel) cutoff(newOp func(int) models.Operation) func() (models.Operation, error) {
	return func() (models.Operation, error) {
		c, err := parseInt("cutoff", op.cutoffEntry.Text)
		if err != nil {
			return nil, err
		}
		return newOp(c), nil
	}
}

func (op *OperationsPanel) contrast() (models.Operation, error) {
	lo, err := parseLevel("contrast_min", op.contrastMinEntry.Text)
	if err != nil {
		return nil, err
	}
	hi, err := parseLevel("contrast_max", op.contrastMaxEntry.Text)
	if err != nil {
		return nil, err
	}
	return models.ContrastStretch{Min: lo, Max: hi}, nil
}

func parseInt(param, text string) (int, error) {
	text = strings.TrimSpace(text)
	v, err := strconv.Atoi(text)
	if err != nil {
		return 0, models.NewValidationError(param, text, "must be an integer")
	}
	return v, nil
}

func parseLevel(param, text string) (uint8, error) {
	v, err := parseInt(param, text)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 255 {
		return 0, models.NewValidationError(param, v, "must be between 0 and 255")
	}
	return uint8(v), nil
}

func (op *OperationsPanel) SetApplyHandler(handler func(models.Operation)) { op.applyHandler = handler }
func (op *OperationsPanel) SetErrorHandler(handler func(error))            { op.errorHandler = handler }

// SetEnabled toggles every operation button.
func (op *OperationsPanel) SetEnabled(enabled bool) {
	for _, b := range op.buttons {
		setEnabled(b, enabled)
	}
}

func (op *OperationsPanel) GetContainer() fyne.CanvasObject {
	return op.tabs
}
