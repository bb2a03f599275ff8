package timing

import (
	"context"
	"sort"
	"sync"
	"time"
)

type timingKey struct{}

type TimingInfo struct {
	Operation string
	StartTime time.Time
}

// Tracker accumulates durations per operation. A tracker with a parent also
// records every completed timing into the parent.
type Tracker struct {
	timings map[string][]time.Duration
	order   []string
	mu      sync.RWMutex
	parent  *Tracker
	enabled bool
	now     func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		timings: make(map[string][]time.Duration),
		enabled: true,
		now:     time.Now,
	}
}

// Child returns a tracker whose timings are also recorded here.
func (tt *Tracker) Child() *Tracker {
	child := NewTracker()
	child.parent = tt
	child.now = tt.now
	return child
}

func (tt *Tracker) StartTiming(operation string) context.Context {
	if !tt.isEnabled() {
		return context.Background()
	}

	return context.WithValue(context.Background(), timingKey{}, TimingInfo{
		Operation: operation,
		StartTime: tt.now(),
	})
}

func (tt *Tracker) EndTiming(ctx context.Context) {
	if !tt.isEnabled() {
		return
	}

	info, ok := ctx.Value(timingKey{}).(TimingInfo)
	if !ok {
		return
	}

	tt.Record(info.Operation, tt.now().Sub(info.StartTime))
}

// Record adds a measured duration directly.
func (tt *Tracker) Record(operation string, d time.Duration) {
	tt.mu.Lock()
	if _, seen := tt.timings[operation]; !seen {
		tt.order = append(tt.order, operation)
	}
	tt.timings[operation] = append(tt.timings[operation], d)
	tt.mu.Unlock()

	if tt.parent != nil {
		tt.parent.Record(operation, d)
	}
}

// Time runs fn and records its duration under operation.
func (tt *Tracker) Time(operation string, fn func() error) error {
	ctx := tt.StartTiming(operation)
	defer tt.EndTiming(ctx)
	return fn()
}

func (tt *Tracker) GetTimings(operation string) []time.Duration {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	timings := tt.timings[operation]
	if timings == nil {
		return nil
	}

	result := make([]time.Duration, len(timings))
	copy(result, timings)
	return result
}

func (tt *Tracker) GetAverageTime(operation string) time.Duration {
	timings := tt.GetTimings(operation)
	if len(timings) == 0 {
		return 0
	}

	var total time.Duration
	for _, d := range timings {
		total += d
	}

	return total / time.Duration(len(timings))
}

// Operations lists recorded operations in first-seen order.
func (tt *Tracker) Operations() []string {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	ops := make([]string, len(tt.order))
	copy(ops, tt.order)
	return ops
}

// Latest returns the most recent duration of every operation.
func (tt *Tracker) Latest() map[string]time.Duration {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	result := make(map[string]time.Duration, len(tt.timings))
	for op, timings := range tt.timings {
		if len(timings) > 0 {
			result[op] = timings[len(timings)-1]
		}
	}
	return result
}

// Averages returns the mean duration per operation, sorted by name.
func (tt *Tracker) Averages() map[string]time.Duration {
	ops := tt.Operations()
	sort.Strings(ops)

	result := make(map[string]time.Duration, len(ops))
	for _, op := range ops {
		result[op] = tt.GetAverageTime(op)
	}
	return result
}

func (tt *Tracker) SetEnabled(enabled bool) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	tt.enabled = enabled
}

func (tt *Tracker) isEnabled() bool {
	tt.mu.RLock()
	defer tt.mu.RUnlock()
	return tt.enabled
}

func (tt *Tracker) Reset(operation string) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	if operation == "" {
		tt.timings = make(map[string][]time.Duration)
		tt.order = nil
		return
	}

	delete(tt.timings, operation)
	for i, op := range tt.order {
		if op == operation {
			tt.order = append(tt.order[:i], tt.order[i+1:]...)
			break
		}
	}
}
