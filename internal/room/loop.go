package room

// Run drives the room's mailbox: every inbound action, join/leave event,
// and fired timer is a closure enqueued here, so all mutation of Room
// state happens on this single goroutine (spec §5). Run returns when
// Close is called.
func (r *Room) Run() {
	for {
		select {
		case fn := <-r.mailbox:
			fn(r)
		case <-r.done:
			return
		}
	}
}

// Close stops the room's goroutine. Outstanding timers are not cancelled;
// when one fires afterwards, Submit sees done closed and drops its job.
func (r *Room) Close() {
	close(r.done)
}

// Submit enqueues fn to run on the room's own goroutine. Safe to call from
// any goroutine (session readers, timer callbacks).
func (r *Room) Submit(fn func(*Room)) {
	select {
	case r.mailbox <- fn:
	case <-r.done:
	}
}

// scheduleAfter asks the host environment (internal/process, via onTimer)
// to invoke fn after d seconds, wall-clock. fn is wrapped so that it
// no-ops if the room's phase has moved on since scheduling — this is the
// sole defense against leaked timers across phase transitions (spec
// §4.5).
func (r *Room) scheduleAfter(d float64, fn func(*Room)) {
	gen := r.phaseGen
	if r.onTimer == nil {
		return
	}
	r.onTimer(d, func() {
		r.Submit(func(r *Room) {
			if r.phaseGen != gen {
				return // stale: a transition already happened
			}
			fn(r)
		})
	})
}

// bumpGeneration invalidates every timer scheduled before this call.
func (r *Room) bumpGeneration() {
	r.phaseGen++
}
