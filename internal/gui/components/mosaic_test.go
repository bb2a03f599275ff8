package components

import (
	"image"
	"testing"
)

func TestFitImage(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		maxW, maxH   int
		wantW, wantH int
	}{
		{"fits already", 640, 480, 1280, 960, 640, 480},
		{"wide", 1280, 960, 640, 640, 640, 480},
		{"tall limit", 1280, 960, 1280, 480, 640, 480},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewRGBA(image.Rect(0, 0, tt.w, tt.h))
			b := FitImage(img, tt.maxW, tt.maxH).Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("FitImage() = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}
