// Package events carries registry notifications from the fixed simulation
// step to bookkeeping consumers.
package events

import "github.com/mlange-42/ark/ecs"

// Kind identifies a registry notification.
type Kind uint8

const (
	CellSpawned Kind = iota
	CellDespawned
	LocomotorSpawned
	EyeSpawned
	FoodSpawned
	FoodDespawned
)

var kindNames = [...]string{
	CellSpawned:      "cell_spawned",
	CellDespawned:    "cell_despawned",
	LocomotorSpawned: "locomotor_spawned",
	EyeSpawned:       "eye_spawned",
	FoodSpawned:      "food_spawned",
	FoodDespawned:    "food_despawned",
}

// String returns the snake_case kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Cause records why an entity was created or removed.
type Cause uint8

const (
	CauseNone     Cause = iota
	CauseSeed           // initial world
	CauseTrickle        // periodic food spawn
	CauseDivision       // mitosis: parent removed or child created
	CauseStarved        // energy fell below the floor
	CauseEaten          // food consumed by a cell
	CauseCleanup        // removed at shutdown or by a caller
)

var causeNames = [...]string{
	CauseNone:     "none",
	CauseSeed:     "seed",
	CauseTrickle:  "trickle",
	CauseDivision: "division",
	CauseStarved:  "starved",
	CauseEaten:    "eaten",
	CauseCleanup:  "cleanup",
}

// String returns the snake_case cause name.
func (c Cause) String() string {
	if int(c) < len(causeNames) {
		return causeNames[c]
	}
	return "unknown"
}

// Event is a single registry notification.
type Event struct {
	Kind   Kind
	Tick   int32
	Entity ecs.Entity
	Parent ecs.Entity // owning cell for organs; eater for food; parent for children
	Cause  Cause
}

// Queue is an ordered buffer written by the fixed step and drained by the
// bookkeeping step. It is not safe for concurrent use.
type Queue struct {
	pending []Event
	spare   []Event
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{pending: make([]Event, 0, 256)}
}

// Emit appends an event.
func (q *Queue) Emit(e Event) {
	q.pending = append(q.pending, e)
}

// Len returns the number of undrained events.
func (q *Queue) Len() int { return len(q.pending) }

// Drain returns every pending event in emission order and empties the
// queue. The returned slice is valid until the next Drain.
func (q *Queue) Drain() []Event {
	out := q.pending
	q.pending = q.spare[:0]
	q.spare = out
	return out
}
