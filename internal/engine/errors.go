package engine

import "errors"

var (
	// ErrNoItemsSelected is returned before any state transition when
	// Assemble is called with an empty item list.
	ErrNoItemsSelected = errors.New("no items selected for claim package")

	// ErrAssemblyInProgress is returned when a second Assemble call
	// arrives while a run is still active on the same engine.
	ErrAssemblyInProgress = errors.New("assembly already in progress")
)
