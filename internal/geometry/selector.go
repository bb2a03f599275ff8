package geometry

// Policy decides which accepted candidate wins.
type Policy int

const (
	// FirstMatch stops at the first accepted candidate.
	FirstMatch Policy = iota
	// LargestArea keeps the accepted candidate with the largest area.
	LargestArea
)

func (p Policy) String() string {
	switch p {
	case FirstMatch:
		return "first"
	case LargestArea:
		return "largest"
	default:
		return "unknown"
	}
}

// Selector tracks the winning measurement under a policy.
type Selector struct {
	policy Policy
	best   *Measurement
}

// NewSelector returns an empty selector.
func NewSelector(policy Policy) *Selector {
	return &Selector{policy: policy}
}

// Offer considers m and reports whether the scan can stop.
func (s *Selector) Offer(m Measurement) bool {
	if !m.Accepted() {
		return false
	}

	switch s.policy {
	case FirstMatch:
		if s.best == nil {
			s.best = &m
		}
		return true
	default:
		if s.best == nil || m.Area > s.best.Area {
			s.best = &m
		}
		return false
	}
}

// Best returns the winning measurement, if any.
func (s *Selector) Best() (Measurement, bool) {
	if s.best == nil {
		return Measurement{}, false
	}
	return *s.best, true
}
