package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseSensing)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseDecision)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}
	if _, ok := stats.PhaseAvg[PhaseSensing]; !ok {
		t.Error("expected sensing phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[PhaseDecision]; !ok {
		t.Error("expected decision phase to be tracked")
	}
	if _, ok := stats.PhaseAvg[PhaseFeeding]; ok {
		t.Error("feeding phase never started but was tracked")
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseLifecycle)
		time.Sleep(10 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration after window filled")
	}
	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
	if stats.MinTickDuration > stats.MaxTickDuration {
		t.Errorf("min %v > max %v", stats.MinTickDuration, stats.MaxTickDuration)
	}
}

func TestPerfCollector_PhasePercentages(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseFeeding)
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase(PhaseSensing)
		time.Sleep(2 * time.Millisecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	fast := stats.PhasePct[PhaseFeeding]
	slow := stats.PhasePct[PhaseSensing]
	if slow <= fast {
		t.Errorf("expected sensing (%v%%) > feeding (%v%%)", slow, fast)
	}

	row := stats.ToCSV(120)
	if row.WindowEnd != 120 {
		t.Errorf("WindowEnd = %d, want 120", row.WindowEnd)
	}
	if row.SensingPct != slow || row.FeedingPct != fast {
		t.Errorf("csv row does not carry phase percentages: %+v", row)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)

	stats := pc.Stats()
	if stats.AvgTickDuration != 0 {
		t.Error("expected zero avg tick duration for empty collector")
	}
	if stats.PhaseAvg == nil || stats.PhasePct == nil {
		t.Error("expected non-nil phase maps")
	}
	if stats.FPS != 0 {
		t.Errorf("FPS = %v before any update, want 0", stats.FPS)
	}
}

func TestPerfCollector_UpdateTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.RecordUpdate(1)
	time.Sleep(16 * time.Millisecond)
	pc.RecordUpdate(2)

	stats := pc.Stats()
	if stats.UpdateDuration < 15*time.Millisecond {
		t.Errorf("expected update duration >= 15ms, got %v", stats.UpdateDuration)
	}
	if stats.FPS <= 0 || stats.FPS > 70 {
		t.Errorf("expected FPS in (0, 70] with 16ms updates, got %v", stats.FPS)
	}
	if stats.StepsPerUpdate != 2 {
		t.Errorf("StepsPerUpdate = %d, want 2", stats.StepsPerUpdate)
	}
}
