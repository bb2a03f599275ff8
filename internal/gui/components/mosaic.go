package components

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"github.com/disintegration/imaging"
)

// MosaicDisplay shows the 2×2 stage grid, downscaled to fit the view.
type MosaicDisplay struct {
	image         *canvas.Image
	width, height int
}

func NewMosaicDisplay(width, height int) *MosaicDisplay {
	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillContain
	img.ScaleMode = canvas.ImageScaleSmooth
	img.SetMinSize(fyne.NewSize(float32(width), float32(height)))

	return &MosaicDisplay{image: img, width: width, height: height}
}

func (md *MosaicDisplay) GetContainer() fyne.CanvasObject {
	return md.image
}

func (md *MosaicDisplay) SetImage(img image.Image) {
	if img != nil {
		img = FitImage(img, md.width, md.height)
	}
	md.image.Image = img
	md.image.Refresh()
}

// FitImage scales img down to fit within width×height, keeping its aspect
// ratio. Smaller images are returned unchanged.
func FitImage(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if b.Dx() <= width && b.Dy() <= height {
		return img
	}
	return imaging.Fit(img, width, height, imaging.Lanczos)
}
