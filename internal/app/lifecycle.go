package app

import (
	"context"

	"ellipse-detector/internal/debug/timing"
	"ellipse-detector/internal/logger"
	"ellipse-detector/internal/opencv/memory"
	"ellipse-detector/internal/shutdown"
)

const componentLifecycle = "Lifecycle"

// Lifecycle owns process shutdown. Components registered later shut down
// earlier; the timing summary is logged before anything is released.
type Lifecycle struct {
	shutdown *shutdown.Manager
	log      logger.Logger
	timer    *timing.Tracker
	memory   *memory.Manager
}

func NewLifecycle(log logger.Logger, timer *timing.Tracker, mem *memory.Manager) *Lifecycle {
	return &Lifecycle{
		shutdown: shutdown.NewManager(log),
		log:      log,
		timer:    timer,
		memory:   mem,
	}
}

func (l *Lifecycle) Register(name string, c shutdown.Shutdownable) {
	l.shutdown.Register(name, c)
}

// Listen routes SIGINT and SIGTERM into Shutdown. onSignal stops the active
// run mode.
func (l *Lifecycle) Listen(onSignal func()) {
	l.shutdown.Listen(onSignal)
}

// Context is cancelled once shutdown begins.
func (l *Lifecycle) Context() context.Context {
	return l.shutdown.Context()
}

func (l *Lifecycle) Shutdown() {
	select {
	case <-l.shutdown.Done():
		return
	default:
	}

	averages := l.timer.Averages()
	fields := make(map[string]interface{}, len(averages)+2)
	for op, d := range averages {
		fields[op] = d.String()
	}
	stats := l.memory.GetStats()
	fields["mats_peak"] = stats.PeakActive
	fields["mats_active"] = stats.ActiveMats
	l.log.Info(componentLifecycle, "session summary", fields)

	l.shutdown.Shutdown()
}
