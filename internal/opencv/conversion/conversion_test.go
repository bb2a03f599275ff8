//go:build withcv

package conversion

import (
	"testing"

	"ellipse-detector/internal/opencv/safe"

	"gocv.io/x/gocv"
)

func TestScaleRoundsLikeOpenCV(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		factor        float64
		wantW, wantH  int
	}{
		{"half of odd size", 759, 577, 0.5, 380, 288},
		{"half of even size", 800, 600, 0.5, 400, 300},
		{"double", 33, 21, 2, 66, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := safe.NewMat(tt.height, tt.width, gocv.MatTypeCV8UC3, nil, "src")
			if err != nil {
				t.Fatal(err)
			}
			defer src.Close()

			dst, err := Scale(src, tt.factor, nil, "scaled")
			if err != nil {
				t.Fatalf("Scale() error = %v", err)
			}
			defer dst.Close()

			if dst.Cols() != tt.wantW || dst.Rows() != tt.wantH {
				t.Errorf("Scale(%v) = %dx%d, want %dx%d", tt.factor, dst.Cols(), dst.Rows(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestScaleRejectsBadFactor(t *testing.T) {
	src, err := safe.NewMat(10, 10, gocv.MatTypeCV8UC1, nil, "src")
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	for _, f := range []float64{0, -1} {
		if _, err := Scale(src, f, nil, "scaled"); err == nil {
			t.Errorf("Scale(%v) accepted", f)
		}
	}
}

func TestGrayAndBGRRoundTrip(t *testing.T) {
	src, err := safe.NewMat(12, 16, gocv.MatTypeCV8UC3, nil, "src")
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	gray, err := ConvertToGrayscale(src, nil, "gray")
	if err != nil {
		t.Fatal(err)
	}
	defer gray.Close()
	if gray.Channels() != 1 {
		t.Errorf("gray channels = %d", gray.Channels())
	}

	bgr, err := ConvertToBGR(gray, nil, "bgr")
	if err != nil {
		t.Fatal(err)
	}
	defer bgr.Close()
	if bgr.Channels() != 3 || bgr.Cols() != 16 || bgr.Rows() != 12 {
		t.Errorf("bgr %dx%dx%d", bgr.Cols(), bgr.Rows(), bgr.Channels())
	}
}
