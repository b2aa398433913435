package core

import "sync"

// Timer is a scheduled event on the monotonic timebase.
type Timer struct {
	WakeNS  uint64
	Handler func(*Timer) uint8
	Next    *Timer
}

// Handler return codes
const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

// TimerList is a sorted list of pending timers, dispatched by a periodic
// caller (the daemon's tick loop, or a timer interrupt on real hardware).
type TimerList struct {
	mu   sync.Mutex
	head *Timer
}

// NewTimerList creates an empty timer list.
func NewTimerList() *TimerList {
	return &TimerList{}
}

// Schedule adds a timer to the list.
func (l *TimerList) Schedule(t *Timer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.insert(t)
}

// insert places t in wake-time order. Caller holds l.mu.
func (l *TimerList) insert(t *Timer) {
	if l.head == nil || t.WakeNS < l.head.WakeNS {
		t.Next = l.head
		l.head = t
		return
	}

	cur := l.head
	for cur.Next != nil && cur.Next.WakeNS < t.WakeNS {
		cur = cur.Next
	}
	t.Next = cur.Next
	cur.Next = t
}

// Dispatch runs every timer whose wake time has passed. Handlers that
// return SF_RESCHEDULE are reinserted with whatever WakeNS they set.
func (l *TimerList) Dispatch(nowNS uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for l.head != nil && l.head.WakeNS <= nowNS {
		timer := l.head
		l.head = timer.Next
		timer.Next = nil

		if timer.Handler(timer) == SF_RESCHEDULE {
			l.insert(timer)
		}
	}
}

// Pending returns the number of scheduled timers.
func (l *TimerList) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for t := l.head; t != nil; t = t.Next {
		n++
	}
	return n
}

// defaultResyncNS is the resync cadence used while no source is active.
const defaultResyncNS = NSPerSec

// NewResyncTimer returns a self-rearming timer that advances the wall
// clock at half the active source's fixup period, so the counter is
// always read well inside its wrap window even when no query occurs.
func (s *Subsystem) NewResyncTimer(nowNS uint64) *Timer {
	t := &Timer{WakeNS: nowNS + s.resyncPeriod()}
	t.Handler = func(t *Timer) uint8 {
		if err := s.Advance(); err != nil {
			// No source yet; keep polling so resync picks up once
			// selection has run.
			t.WakeNS += defaultResyncNS
			return SF_RESCHEDULE
		}
		t.WakeNS += s.resyncPeriod()
		return SF_RESCHEDULE
	}
	return t
}

func (s *Subsystem) resyncPeriod() uint64 {
	if a := s.Active(); a != nil {
		if p := a.FixupPeriodNS() / 2; p > 0 {
			return p
		}
	}
	return defaultResyncNS
}
