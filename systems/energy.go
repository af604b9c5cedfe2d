package systems

// Fate is the lifecycle outcome of a cell in one tick.
type Fate uint8

const (
	FateLive Fate = iota
	FateStarve
	FateDivide
)

// String returns the fate name.
func (f Fate) String() string {
	switch f {
	case FateStarve:
		return "starve"
	case FateDivide:
		return "divide"
	default:
		return "live"
	}
}

// EnergyRules holds the thresholds of the energy economy.
type EnergyRules struct {
	Floor   float32 // below this after decay a cell starves
	Ceiling float32 // at or above this a cell divides
	PerFood float32 // credit per consumed food item
	Birth   float32 // energy of each child
}

// Settle classifies a cell on its energy at stage entry. Dividing cells keep
// their energy; every other cell decays by dt and starves below the floor.
// It returns the fate and the energy after decay.
func (r EnergyRules) Settle(energy, dt float32) (Fate, float32) {
	if energy >= r.Ceiling {
		return FateDivide, energy
	}
	energy -= dt
	if energy < r.Floor {
		return FateStarve, energy
	}
	return FateLive, energy
}
