package systems

import "testing"

func testRules() EnergyRules {
	return EnergyRules{Floor: 70, Ceiling: 200, PerFood: 10, Birth: 100}
}

// ---------- Settle ----------

func TestSettle(t *testing.T) {
	dt := float32(1.0 / 60.0)

	tests := []struct {
		name       string
		energy     float32
		wantFate   Fate
		wantEnergy float32
	}{
		{"live decays", 100, FateLive, 100 - dt},
		{"at ceiling divides without decay", 200, FateDivide, 200},
		{"above ceiling divides", 250, FateDivide, 250},
		{"just under ceiling decays", 199.99, FateLive, 199.99 - dt},
		{"crosses floor", 70, FateStarve, 70 - dt},
		{"already below floor", 10, FateStarve, 10 - dt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fate, energy := testRules().Settle(tt.energy, dt)
			if fate != tt.wantFate {
				t.Errorf("fate = %v, want %v", fate, tt.wantFate)
			}
			if energy != tt.wantEnergy {
				t.Errorf("energy = %v, want %v", energy, tt.wantEnergy)
			}
		})
	}
}

func TestSettleDecayIsExact(t *testing.T) {
	dt := float32(1.0 / 60.0)
	rules := testRules()
	energy := float32(150)

	for i := 0; i < 100; i++ {
		want := energy - dt
		_, energy = rules.Settle(energy, dt)
		if energy != want {
			t.Fatalf("tick %d: energy = %v, want %v", i, energy, want)
		}
	}
}

func TestFateString(t *testing.T) {
	if FateDivide.String() != "divide" || FateStarve.String() != "starve" || FateLive.String() != "live" {
		t.Error("unexpected fate names")
	}
}
