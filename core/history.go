package core

// History is the ordered conversation log shared by all requests. Insertion
// order is chronological order and is the order turns are sent to the model.
//
// Implementations must be safe for concurrent use. Append must reject a turn
// whose ID is already present; Snapshot returns a copy the caller may keep.
type History interface {
	Append(turn Turn) error
	Snapshot() []Turn
	Len() int
}
