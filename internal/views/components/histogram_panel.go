package components

import (
	"fmt"
	"image"

	"image-workbench/internal/processing/histogram"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/dustin/go-humanize"
)

const (
	HistogramWidth  = 300
	HistogramHeight = 160
)

type statRow struct {
	name  string
	value *widget.Label
}

// HistogramPanel shows the grey-level histogram and the statistics of the
// current state.
type HistogramPanel struct {
	container *fyne.Container
	plot      *canvas.Image
	rows      []statRow
	blank     image.Image
}

func NewHistogramPanel() *HistogramPanel {
	hp := &HistogramPanel{}
	hp.createComponents()
	hp.buildLayout()
	return hp
}

func (hp *HistogramPanel) createComponents() {
	hp.blank = histogram.Render([histogram.Bins]int{}, HistogramWidth, HistogramHeight)

	hp.plot = canvas.NewImageFromImage(hp.blank)
	hp.plot.FillMode = canvas.ImageFillContain
	hp.plot.SetMinSize(fyne.NewSize(HistogramWidth, HistogramHeight))

	for _, name := range []string{
		"Size", "Pixels", "Mean", "Median", "Std. deviation", "Variance",
		"Min", "Max", "Range", "Q1", "Q3", "Skewness", "Kurtosis",
		"Entropy", "Contrast",
	} {
		hp.rows = append(hp.rows, statRow{name: name, value: widget.NewLabel("--")})
	}
}

func (hp *HistogramPanel) buildLayout() {
	grid := container.NewGridWithColumns(2)
	for _, row := range hp.rows {
		name := widget.NewLabel(row.name)
		name.TextStyle = fyne.TextStyle{Bold: true}
		grid.Add(name)
		grid.Add(row.value)
	}

	hp.container = container.NewVBox(
		widget.NewLabelWithStyle("Histogram", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		hp.plot,
		widget.NewSeparator(),
		grid,
	)
}

// Update renders plot (already drawn by histogram.Render) and fills in stats.
func (hp *HistogramPanel) Update(plot image.Image, stats histogram.Stats) {
	hp.plot.Image = plot
	hp.plot.Refresh()

	values := []string{
		fmt.Sprintf("%d×%d", stats.Width, stats.Height),
		humanize.Comma(int64(stats.PixelCount)),
		fmt.Sprintf("%.2f", stats.Mean),
		fmt.Sprintf("%.1f", stats.Median),
		fmt.Sprintf("%.2f", stats.StdDev),
		fmt.Sprintf("%.2f", stats.Variance),
		fmt.Sprintf("%d", stats.Min),
		fmt.Sprintf("%d", stats.Max),
		fmt.Sprintf("%d", stats.Range),
		fmt.Sprintf("%.1f", stats.P25),
		fmt.Sprintf("%.1f", stats.P75),
		fmt.Sprintf("%.3f", stats.Skewness),
		fmt.Sprintf("%.3f", stats.Kurtosis),
		fmt.Sprintf("%.3f bits", stats.Entropy),
		fmt.Sprintf("%d", stats.Contrast),
	}
	for i, row := range hp.rows {
		row.value.SetText(values[i])
	}
}

func (hp *HistogramPanel) Clear() {
	hp.plot.Image = hp.blank
	hp.plot.Refresh()
	for _, row := range hp.rows {
		row.value.SetText("--")
	}
}

func (hp *HistogramPanel) GetContainer() *fyne.Container {
	return hp.container
}
