package components

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const (
	ImageAreaWidth  = 720
	ImageAreaHeight = 540
)

// ImageDisplay shows the current state of the edited image.
type ImageDisplay struct {
	container   *fyne.Container
	image       *canvas.Image
	title       *widget.Label
	placeholder image.Image
	hasImage    bool
}

func NewImageDisplay() *ImageDisplay {
	display := &ImageDisplay{}
	display.createComponents()
	display.setupLayout()
	return display
}

func (id *ImageDisplay) createComponents() {
	id.placeholder = placeholderImage(ImageAreaWidth, ImageAreaHeight)

	id.image = canvas.NewImageFromImage(id.placeholder)
	id.image.FillMode = canvas.ImageFillContain
	id.image.ScaleMode = canvas.ImageScalePixels
	id.image.SetMinSize(fyne.NewSize(ImageAreaWidth, ImageAreaHeight))

	id.title = widget.NewLabel("Load an image to begin")
	id.title.TextStyle = fyne.TextStyle{Bold: true}
}

// placeholderImage draws an empty frame.
func placeholderImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fill := color.RGBA{R: 36, G: 36, B: 36, A: 255}
	border := color.RGBA{R: 76, G: 76, B: 76, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				img.SetRGBA(x, y, border)
			} else {
				img.SetRGBA(x, y, fill)
			}
		}
	}
	return img
}

func (id *ImageDisplay) setupLayout() {
	background := canvas.NewRectangle(color.RGBA{R: 24, G: 24, B: 24, A: 255})
	id.container = container.NewBorder(
		id.title, nil, nil, nil,
		container.NewStack(background, id.image),
	)
}

// SetImage replaces the displayed image; nil restores the placeholder.
func (id *ImageDisplay) SetImage(img image.Image, title string) {
	if img == nil {
		id.image.Image = id.placeholder
		id.hasImage = false
		id.title.SetText("Load an image to begin")
	} else {
		id.image.Image = img
		id.hasImage = true
		id.title.SetText(title)
	}
	id.image.Refresh()
}

func (id *ImageDisplay) HasImage() bool {
	return id.hasImage
}

func (id *ImageDisplay) GetContainer() *fyne.Container {
	return id.container
}
