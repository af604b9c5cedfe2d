package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFeedingBreakthrough BookmarkType = "feeding_breakthrough"
	BookmarkPopulationRecovery  BookmarkType = "population_recovery"
	BookmarkPopulationCrash     BookmarkType = "population_crash"
	BookmarkExtinction          BookmarkType = "extinction"
	BookmarkStablePopulation    BookmarkType = "stable_population"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentCellMin      int  // minimum cell count since the last recovery
	recentCellPeak     int  // peak cell count since the last crash
	extinct            bool // extinction already reported
	stableWindowsCount int  // consecutive windows with stable population
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable population detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkExtinction(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkFeedingBreakthrough(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkPopulationRecovery(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkPopulationCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkStablePopulation(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)

	if stats.Cells < bd.recentCellMin || bd.recentCellMin == 0 {
		bd.recentCellMin = stats.Cells
	}
	if stats.Cells > bd.recentCellPeak {
		bd.recentCellPeak = stats.Cells
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkExtinction(stats WindowStats) *Bookmark {
	if stats.Cells > 0 {
		bd.extinct = false
		return nil
	}
	if bd.extinct {
		return nil
	}
	bd.extinct = true
	return &Bookmark{
		Type:        BookmarkExtinction,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("No cells left after %d starvations this window", stats.Starvations),
	}
}

// feedingRate is food eaten per live cell in a window.
func feedingRate(s WindowStats) float64 {
	if s.Cells == 0 {
		return 0
	}
	return float64(s.FoodEaten) / float64(s.Cells)
}

func (bd *BookmarkDetector) checkFeedingBreakthrough(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += feedingRate(h)
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	current := feedingRate(stats)
	if current > avg*2.0 && stats.FoodEaten >= 10 {
		return &Bookmark{
			Type:        BookmarkFeedingBreakthrough,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Food per cell %.2f is %.1fx average (%.2f)", current, current/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkPopulationRecovery(stats WindowStats) *Bookmark {
	if bd.recentCellMin == 0 || bd.recentCellMin > 3 {
		return nil
	}

	if stats.Cells >= bd.recentCellMin*3 && stats.Cells >= 6 {
		oldMin := bd.recentCellMin
		bd.recentCellMin = stats.Cells

		return &Bookmark{
			Type:        BookmarkPopulationRecovery,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Population recovered from %d to %d", oldMin, stats.Cells),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkPopulationCrash(stats WindowStats) *Bookmark {
	if bd.recentCellPeak == 0 {
		return nil
	}

	dropPercent := 1.0 - float64(stats.Cells)/float64(bd.recentCellPeak)
	if dropPercent > 0.30 && stats.Cells < bd.recentCellPeak-10 {
		oldPeak := bd.recentCellPeak
		bd.recentCellPeak = stats.Cells

		return &Bookmark{
			Type:        BookmarkPopulationCrash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Population crashed %.0f%% from peak %d to %d", dropPercent*100, oldPeak, stats.Cells),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkStablePopulation(stats WindowStats) *Bookmark {
	if stats.Cells < 10 {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	recent := history[len(history)-4:]
	var sum float64
	for _, h := range recent {
		sum += float64(h.Cells)
	}
	mean := sum / 4

	var variance float64
	for _, h := range recent {
		d := float64(h.Cells) - mean
		variance += d * d
	}
	variance /= 4

	// CV^2 < 0.04 means CV < 0.2
	if mean > 0 && variance/(mean*mean) < 0.04 {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkStablePopulation,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Stable population of %d cells over 5+ windows", stats.Cells),
		}
	}
	return nil
}
