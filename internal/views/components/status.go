package components

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/dustin/go-humanize"
)

// StatusBar displays the last outcome, the loaded image and the history
// position.
type StatusBar struct {
	container   *fyne.Container
	statusLabel *widget.Label
	imageInfo   *widget.Label
	historyInfo *widget.Label
	memoryInfo  *widget.Label
}

func NewStatusBar() *StatusBar {
	sb := &StatusBar{}
	sb.createComponents()
	sb.buildLayout()
	return sb
}

func (sb *StatusBar) createComponents() {
	sb.statusLabel = widget.NewLabel("Ready")
	sb.statusLabel.Truncation = fyne.TextTruncateEllipsis
	sb.imageInfo = widget.NewLabel("No image loaded")
	sb.historyInfo = widget.NewLabel("History: --")
	sb.memoryInfo = widget.NewLabel("Mats: --")
}

func (sb *StatusBar) buildLayout() {
	sb.container = container.NewBorder(nil, nil, nil,
		container.NewHBox(
			widget.NewSeparator(),
			sb.imageInfo,
			widget.NewSeparator(),
			sb.historyInfo,
			widget.NewSeparator(),
			sb.memoryInfo,
		),
		sb.statusLabel,
	)
}

func (sb *StatusBar) SetStatus(status string) {
	sb.statusLabel.SetText(status)
}

func (sb *StatusBar) GetStatus() string {
	return sb.statusLabel.Text
}

// SetImageInfo shows dimensions, format and file size of the loaded file.
func (sb *StatusBar) SetImageInfo(width, height int, format string, fileSize int64) {
	parts := []string{fmt.Sprintf("%d×%d", width, height)}
	if format != "" {
		parts = append(parts, strings.ToUpper(format))
	}
	if fileSize > 0 {
		parts = append(parts, humanize.Bytes(uint64(fileSize)))
	}
	sb.imageInfo.SetText(strings.Join(parts, " · "))
}

// SetHistory shows the 1-based cursor within depth/capacity.
func (sb *StatusBar) SetHistory(cursor, depth, capacity int) {
	if depth == 0 {
		sb.historyInfo.SetText("History: --")
		return
	}
	sb.historyInfo.SetText(fmt.Sprintf("History: %d/%d (max %d)", cursor+1, depth, capacity))
}

// SetMemoryInfo shows live OpenCV matrices and the bytes they hold.
func (sb *StatusBar) SetMemoryInfo(activeMats, bytesInUse int64) {
	sb.memoryInfo.SetText(fmt.Sprintf("Mats: %s (%s)",
		humanize.Comma(activeMats), humanize.Bytes(uint64(max(bytesInUse, 0)))))
}

func (sb *StatusBar) Reset() {
	sb.statusLabel.SetText("Ready")
	sb.imageInfo.SetText("No image loaded")
	sb.historyInfo.SetText("History: --")
	sb.memoryInfo.SetText("Mats: --")
}

func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}
