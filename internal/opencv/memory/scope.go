package memory

import (
	"sync"

	"ellipse-detector/internal/opencv/safe"
)

// Scope collects the intermediate Mats of one processing pass so they can be
// released together. Kept Mats survive Release.
type Scope struct {
	mats []*safe.Mat
	kept map[uint64]bool
	mu   sync.Mutex
}

func NewScope() *Scope {
	return &Scope{kept: make(map[uint64]bool)}
}

// Track registers mat and returns it.
func (s *Scope) Track(mat *safe.Mat) *safe.Mat {
	if mat == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.mats = append(s.mats, mat)
	return mat
}

// Keep excludes mat from Release.
func (s *Scope) Keep(mat *safe.Mat) {
	if mat == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.kept[mat.ID()] = true
}

func (s *Scope) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.mats)
}

// Release closes every tracked Mat not marked with Keep and returns the count.
func (s *Scope) Release() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, mat := range s.mats {
		if s.kept[mat.ID()] {
			continue
		}
		mat.Close()
		count++
	}
	s.mats = s.mats[:0]
	s.kept = make(map[uint64]bool)
	return count
}
