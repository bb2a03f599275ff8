// Package sync runs processing work off the UI thread. Rerun requests
// coalesce: any number of requests made while a pass is pending yield one
// pass, which reads the parameters current at the time it starts.
package sync

type Coordinator struct {
	tasks   chan func()
	rerun   chan struct{}
	done    chan struct{}
	stopped chan struct{}
	process func()
}

func NewCoordinator(process func()) *Coordinator {
	return &Coordinator{
		tasks:   make(chan func(), 16),
		rerun:   make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		process: process,
	}
}

// RequestRerun schedules a processing pass unless one is already pending.
func (c *Coordinator) RequestRerun() {
	select {
	case c.rerun <- struct{}{}:
	default:
	}
}

// Submit queues a task that must not be dropped, such as a save. It returns
// false once the coordinator is stopped.
func (c *Coordinator) Submit(task func()) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.tasks <- task:
		return true
	case <-c.done:
		return false
	}
}

// Run executes work until Stop. Tasks run in submission order; a pending
// rerun runs after the tasks queued before it was picked up.
func (c *Coordinator) Run() {
	defer close(c.stopped)
	for {
		select {
		case <-c.done:
			return
		case task := <-c.tasks:
			task()
		case <-c.rerun:
			c.drainTasks()
			c.process()
		}
	}
}

func (c *Coordinator) drainTasks() {
	for {
		select {
		case task := <-c.tasks:
			task()
		default:
			return
		}
	}
}

// Stop ends Run after the current unit of work and waits for it.
func (c *Coordinator) Stop() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	<-c.stopped
}
