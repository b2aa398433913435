package core

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNoActiveSource is returned by time queries made before a source has
// been selected, or after every source has been removed.
var ErrNoActiveSource = errors.New("no active clock source")

// RTCReader reads the battery-backed real-time clock once at boot to seed
// the wall clock. Implementations live under the rtc package.
type RTCReader interface {
	ReadTime() (time.Time, error)
}

// Subsystem bundles the source registry, the active source, and the wall
// clock it maintains.
//
// All wall-clock advancement goes through a single mutex: the lazy path
// (inside every query) and the periodic resync path run the same
// sample-delta-accumulate sequence, and interleaving their read-modify-write
// of the last sample would lose updates or produce garbled deltas. The same
// mutex covers the active-source handoff, so no advance can observe a
// half-switched source.
type Subsystem struct {
	registry *SourceRegistry
	fallback ClockSource
	log      *zap.Logger

	mu          sync.Mutex
	active      ClockSource
	lastRead    Cycles
	sampleValid bool
	wall        Timespec
	bootNS      uint64
}

// NewSubsystem creates a timekeeping subsystem. The fallback source is the
// baseline selection candidate (normally the PM timer) and is registered
// immediately; it may be nil on hosts with no baseline counter, in which
// case selection yields whatever the registry holds.
func NewSubsystem(fallback ClockSource, log *zap.Logger) *Subsystem {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Subsystem{
		registry: NewSourceRegistry(log),
		fallback: fallback,
		log:      log,
	}
	if fallback != nil {
		s.registry.Register(fallback)
	}
	return s
}

// Registry returns the subsystem's source registry.
func (s *Subsystem) Registry() *SourceRegistry {
	return s.registry
}

// Register adds a clock source and starts it.
func (s *Subsystem) Register(src ClockSource) {
	s.registry.Register(src)
}

// Unregister removes a clock source. If it is the active source it stays
// active until the next SelectActive; callers hot-unplugging the active
// counter are expected to re-run selection.
func (s *Subsystem) Unregister(src ClockSource) {
	s.registry.Unregister(src)
}

// SelectActive picks the most precise registered source and makes it the
// one the wall clock advances from. The previous active source is stopped
// first, the winner is started, and the last-read sample is reseeded from
// the winner in the same critical section as the handoff, so the first
// delta after a switch is never computed against the old counter. Safe to
// re-run at any time; returns the new active source.
func (s *Subsystem) SelectActive() ClockSource {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		if err := disableSource(s.active); err != nil {
			s.log.Warn("clock source disable failed",
				zap.String("source", s.active.Name()), zap.Error(err))
		}
	}

	winner := s.registry.best(s.fallback)
	if winner == nil {
		s.active = nil
		s.sampleValid = false
		return nil
	}

	if err := enableSource(winner); err != nil {
		s.log.Warn("clock source enable failed",
			zap.String("source", winner.Name()), zap.Error(err))
	}

	// Registration starts every source counting; after a selection pass
	// exactly one may stay running.
	for _, src := range s.registry.Snapshot() {
		if src != winner {
			if err := disableSource(src); err != nil {
				s.log.Warn("clock source disable failed",
					zap.String("source", src.Name()), zap.Error(err))
			}
		}
	}

	sample, err := winner.Read()
	if err != nil {
		// Seed on the first successful advance instead.
		s.log.Warn("clock source seed read failed",
			zap.String("source", winner.Name()), zap.Error(err))
	}
	s.active = winner
	s.lastRead = sample
	s.sampleValid = err == nil

	s.log.Info("active clock source selected",
		zap.String("source", winner.Name()),
		zap.Uint64("resolution_ns", winner.ResolutionNS()),
		zap.Uint64("frequency_hz", winner.FrequencyHz()))
	return winner
}

// Active returns the current active source, or nil before selection.
func (s *Subsystem) Active() ClockSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// InitWallClock seeds the wall clock from the real-time clock, at second
// granularity. Called once during boot, before queries are served.
func (s *Subsystem) InitWallClock(r RTCReader) error {
	t, err := r.ReadTime()
	if err != nil {
		return fmt.Errorf("rtc read: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.wall = Timespec{Sec: t.Unix()}
	s.bootNS = s.wall.NS()
	return nil
}

// advanceLocked runs one sample-delta-accumulate step. A failed hardware
// read contributes zero nanoseconds and keeps the previous sample, so a
// flaky counter can never move the wall clock backwards or jump it ahead.
// Callers hold s.mu.
func (s *Subsystem) advanceLocked() error {
	if s.active == nil {
		return ErrNoActiveSource
	}

	fresh, err := s.active.Read()
	if err != nil {
		s.log.Warn("clock source read failed",
			zap.String("source", s.active.Name()), zap.Error(err))
		return nil
	}
	if !s.sampleValid {
		s.lastRead = fresh
		s.sampleValid = true
		return nil
	}

	last := s.lastRead
	s.lastRead = fresh
	s.wall.addNanoseconds(s.active.Elapsed(last, fresh))
	return nil
}

// Advance resamples the active source and folds the elapsed time into the
// wall clock. This is the periodic resync entry point; it must run at
// least once per fixup period of the active source so the counter never
// wraps twice unread.
func (s *Subsystem) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advanceLocked()
}

// NowNS returns the current wall-clock time at nanosecond resolution,
// advancing the clock from the active source first.
func (s *Subsystem) NowNS() (Timespec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.advanceLocked(); err != nil {
		return Timespec{}, err
	}
	return s.wall, nil
}

// Now returns the current wall-clock time at microsecond resolution.
func (s *Subsystem) Now() (Timeval, error) {
	ts, err := s.NowNS()
	if err != nil {
		return Timeval{}, err
	}
	return ts.Timeval(), nil
}

// MonotonicNS returns the wall clock as a single nanosecond count since
// the epoch.
func (s *Subsystem) MonotonicNS() (uint64, error) {
	ts, err := s.NowNS()
	if err != nil {
		return 0, err
	}
	return ts.NS(), nil
}

// UptimeNS returns the nanoseconds accumulated since the wall clock was
// seeded.
func (s *Subsystem) UptimeNS() (uint64, error) {
	ts, err := s.NowNS()
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	boot := s.bootNS
	s.mu.Unlock()
	return ts.NS() - boot, nil
}

// Global subsystem instance, set up once by the boot sequence.
var globalSubsystem *Subsystem

// InitSubsystem creates the process-wide subsystem instance.
func InitSubsystem(fallback ClockSource, log *zap.Logger) *Subsystem {
	globalSubsystem = NewSubsystem(fallback, log)
	return globalSubsystem
}

// GetSubsystem returns the process-wide subsystem instance, or nil before
// InitSubsystem.
func GetSubsystem() *Subsystem {
	return globalSubsystem
}
