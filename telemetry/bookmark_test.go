package telemetry

import "testing"

func hasBookmark(bms []Bookmark, typ BookmarkType) bool {
	for _, bm := range bms {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_FeedingBreakthrough(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 600), Cells: 20, FoodEaten: 10})
	}

	// 2.5 food per cell against an average of 0.5
	bookmarks := bd.Check(WindowStats{WindowEndTick: 3000, Cells: 20, FoodEaten: 50})
	if !hasBookmark(bookmarks, BookmarkFeedingBreakthrough) {
		t.Error("expected feeding_breakthrough bookmark")
	}
}

func TestBookmarkDetector_PopulationCrash(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 600), Cells: 100})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 3000, Cells: 50})
	if !hasBookmark(bookmarks, BookmarkPopulationCrash) {
		t.Error("expected population_crash bookmark")
	}
}

func TestBookmarkDetector_PopulationRecovery(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 3; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 600), Cells: 2})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 2400, Cells: 10})
	if !hasBookmark(bookmarks, BookmarkPopulationRecovery) {
		t.Error("expected population_recovery bookmark")
	}
}

func TestBookmarkDetector_ExtinctionOnce(t *testing.T) {
	bd := NewBookmarkDetector(10)
	bd.Check(WindowStats{WindowEndTick: 600, Cells: 5})

	first := bd.Check(WindowStats{WindowEndTick: 1200, Cells: 0, Starvations: 5})
	if !hasBookmark(first, BookmarkExtinction) {
		t.Fatal("expected extinction bookmark")
	}

	second := bd.Check(WindowStats{WindowEndTick: 1800, Cells: 0})
	if hasBookmark(second, BookmarkExtinction) {
		t.Error("extinction should be reported once")
	}
}

func TestBookmarkDetector_StablePopulation(t *testing.T) {
	bd := NewBookmarkDetector(10)

	triggered := 0
	for i := 0; i < 10; i++ {
		bookmarks := bd.Check(WindowStats{WindowEndTick: int32(i * 600), Cells: 100})
		if hasBookmark(bookmarks, BookmarkStablePopulation) {
			triggered++
		}
	}
	if triggered != 1 {
		t.Errorf("stable_population triggered %d times, want 1", triggered)
	}
}
