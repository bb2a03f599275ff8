//go:build withcv

package safe

import (
	"testing"

	"gocv.io/x/gocv"
)

type countingTracker struct {
	allocated map[uint64]int64
	released  int
}

func (c *countingTracker) TrackAllocation(id uint64, size int64, tag string) {
	c.allocated[id] = size
}

func (c *countingTracker) TrackDeallocation(id uint64, tag string) {
	c.released++
}

func TestNewMatTracksAllocation(t *testing.T) {
	tr := &countingTracker{allocated: map[uint64]int64{}}

	m, err := NewMat(48, 64, gocv.MatTypeCV8UC3, tr, "test")
	if err != nil {
		t.Fatalf("NewMat() error = %v", err)
	}
	if got := tr.allocated[m.ID()]; got != 48*64*3 {
		t.Errorf("tracked size = %d, want %d", got, 48*64*3)
	}

	m.Close()
	m.Close()
	if tr.released != 1 {
		t.Errorf("released %d times, want 1", tr.released)
	}
	if !m.Empty() || m.Rows() != 0 {
		t.Error("closed Mat should report empty")
	}
}

func TestAdoptRejectsEmpty(t *testing.T) {
	if _, err := Adopt(gocv.NewMat(), nil, "empty"); err == nil {
		t.Fatal("expected error adopting an empty Mat")
	}
}

func TestValidators(t *testing.T) {
	if err := ValidateMatForOperation(nil, "op"); err == nil {
		t.Error("nil Mat accepted")
	}
	if err := ValidateKernelSize(4, "blur"); err == nil {
		t.Error("even kernel accepted")
	}
	if err := ValidateKernelSize(5, "blur"); err != nil {
		t.Errorf("odd kernel rejected: %v", err)
	}
	if err := ValidateDimensions(0, 10, "resize"); err == nil {
		t.Error("zero width accepted")
	}

	color, err := NewMat(4, 4, gocv.MatTypeCV8UC3, nil, "color")
	if err != nil {
		t.Fatal(err)
	}
	defer color.Close()
	if err := ValidateSingleChannel(color, "threshold"); err == nil {
		t.Error("colour Mat accepted for single channel operation")
	}
}
