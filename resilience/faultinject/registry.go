package faultinject

import (
	"context"
	"sync"

	"github.com/LerianStudio/lib-uncommons/v2/uncommons/log"

	"github.com/LerianStudio/lib-resilience/resilience"
)

// slot holds the active fault for one category. Each slot has its own lock
// so categories never contend with each other.
type slot struct {
	mu    sync.RWMutex
	fault *Fault
}

// Registry holds at most one active synthetic fault per category.
//
// A Registry is created once per test or process scope and reset explicitly
// between scenarios; it is never a hidden singleton.
type Registry struct {
	slots  [categoryCount]slot
	logger log.Logger
}

// ActiveFault pairs a category with its currently injected fault.
type ActiveFault struct {
	Category Category
	Fault    Fault
}

// NewRegistry creates an empty fault registry. A nil logger is replaced with
// a no-op logger.
func NewRegistry(logger log.Logger) *Registry {
	if logger == nil {
		logger = log.NewNop()
	}

	return &Registry{logger: logger}
}

// SetFault replaces the category's slot with the given fault, or clears the
// slot when fault is nil. A prior fault is overwritten, never merged.
func (r *Registry) SetFault(category Category, fault *Fault) error {
	if category >= categoryCount {
		return ErrUnknownCategory
	}

	if fault != nil {
		f := *fault
		f.Category = category

		if err := f.Validate(); err != nil {
			return err
		}

		fault = &f
	}

	s := &r.slots[category]

	s.mu.Lock()
	s.fault = fault
	s.mu.Unlock()

	if fault == nil {
		r.logger.Log(context.Background(), log.LevelInfo, "fault cleared",
			log.String("category", category.String()))
	} else {
		r.logger.Log(context.Background(), log.LevelInfo, "fault injected",
			log.String("category", category.String()),
			log.String("kind", string(fault.Kind)))
	}

	return nil
}

// Fault returns a copy of the category's active fault, or nil when the slot
// is empty or the category is unknown.
func (r *Registry) Fault(category Category) *Fault {
	if category >= categoryCount {
		return nil
	}

	s := &r.slots[category]

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.fault == nil {
		return nil
	}

	f := *s.fault

	return &f
}

// ShouldFail reports whether the category currently has an injected fault.
func (r *Registry) ShouldFail(category Category) bool {
	if category >= categoryCount {
		return false
	}

	s := &r.slots[category]

	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.fault != nil
}

// HasAnyFault reports whether any category has an injected fault.
func (r *Registry) HasAnyFault() bool {
	for c := Category(0); c < categoryCount; c++ {
		if r.ShouldFail(c) {
			return true
		}
	}

	return false
}

// ActiveFaults returns a snapshot of all non-empty slots in stable category
// order, one entry per category.
func (r *Registry) ActiveFaults() []ActiveFault {
	active := make([]ActiveFault, 0, categoryCount)

	for c := Category(0); c < categoryCount; c++ {
		if f := r.Fault(c); f != nil {
			active = append(active, ActiveFault{Category: c, Fault: *f})
		}
	}

	return active
}

// Err materializes the category's active fault as a structured error, so that
// injected faults are indistinguishable from real failures to the caller.
// It returns nil when no fault is injected.
func (r *Registry) Err(ctx context.Context, category Category) error {
	f := r.Fault(category)
	if f == nil {
		return nil
	}

	return newFaultError(*f, resilience.CorrelationIDFromContext(ctx))
}

// Reset clears every category slot.
func (r *Registry) Reset() {
	for c := Category(0); c < categoryCount; c++ {
		s := &r.slots[c]

		s.mu.Lock()
		s.fault = nil
		s.mu.Unlock()
	}

	r.logger.Log(context.Background(), log.LevelInfo, "fault registry reset")
}
