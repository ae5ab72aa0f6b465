package ir

import "irbackend/report"

// ClassRegistry records every class created through a factory while tracking
// is active.  Passes inside the tracking window iterate the registry to find
// every class introduced so far.  A pass may add classes to the registry while
// iterating it: loops must bound the iteration by the length observed when
// the loop started.
type ClassRegistry struct {
	classes []*Class
	active  bool
}

// NewClassRegistry creates a new inactive registry.
func NewClassRegistry() *ClassRegistry {
	return &ClassRegistry{}
}

// Start activates tracking.
func (cr *ClassRegistry) Start() {
	if cr.active {
		report.Fault("class tracking is already active")
	}

	cr.active = true
}

// Stop deactivates tracking and clears the registry.
func (cr *ClassRegistry) Stop() {
	if !cr.active {
		report.Fault("class tracking is not active")
	}

	cr.active = false
	cr.classes = nil
}

// IsActive returns whether tracking is active.
func (cr *ClassRegistry) IsActive() bool {
	return cr.active
}

// Add records a class if tracking is active.
func (cr *ClassRegistry) Add(cls *Class) {
	if cr.active {
		cr.classes = append(cr.classes, cls)
	}
}

// Len returns the number of classes recorded so far.
func (cr *ClassRegistry) Len() int {
	return len(cr.classes)
}

// At returns the i'th recorded class.
func (cr *ClassRegistry) At(i int) *Class {
	return cr.classes[i]
}

// Each calls fn on every class recorded before the call.  Classes recorded by
// fn itself are not visited.
func (cr *ClassRegistry) Each(fn func(*Class)) {
	size := len(cr.classes)
	for i := 0; i < size; i++ {
		fn(cr.classes[i])
	}
}

// CollectClasses records every class declared in elem.  Nested and local
// classes are recorded before the class enclosing them.
func (cr *ClassRegistry) CollectClasses(elem Element) {
	elem.WalkChildren(func(child Element) {
		cr.CollectClasses(child)
	})

	if cls, ok := elem.(*Class); ok {
		cr.Add(cls)
	}
}
