package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkNonFinite       BookmarkType = "non_finite"
	BookmarkDivergenceSpike BookmarkType = "divergence_spike"
	BookmarkSolverStall     BookmarkType = "solver_stall"
	BookmarkSettled         BookmarkType = "settled"
)

// Bookmark marks a window worth inspecting or snapshotting.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int32        `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector watches window stats for solver trouble and steady states.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	spikeMultiplier float64
	settleSpeed     float64
	settleWindows   int

	settledCount  int
	nonFiniteSeen bool
}

// NewBookmarkDetector creates a detector.
// spikeMultiplier: residual divergence above this multiple of the recent mean is a spike
// settleSpeed: mean particle speed below which a window counts as settled
// settleWindows: consecutive settled windows before the settled bookmark fires
func NewBookmarkDetector(historySize int, spikeMultiplier, settleSpeed float64, settleWindows int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	if spikeMultiplier <= 1 {
		spikeMultiplier = 3
	}
	if settleWindows < 1 {
		settleWindows = 1
	}
	return &BookmarkDetector{
		history:         make([]WindowStats, historySize),
		historySize:     historySize,
		spikeMultiplier: spikeMultiplier,
		settleSpeed:     settleSpeed,
		settleWindows:   settleWindows,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark
	for _, check := range []func(WindowStats) *Bookmark{
		bd.checkNonFinite,
		bd.checkDivergenceSpike,
		bd.checkSolverStall,
		bd.checkSettled,
	} {
		if b := check(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}
	bd.addToHistory(stats)
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

// checkNonFinite fires once, the first time any particle goes NaN or Inf.
func (bd *BookmarkDetector) checkNonFinite(stats WindowStats) *Bookmark {
	if stats.NonFinite == 0 || bd.nonFiniteSeen {
		return nil
	}
	bd.nonFiniteSeen = true
	return &Bookmark{
		Type:        BookmarkNonFinite,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("%d of %d particles have non-finite state", stats.NonFinite, stats.Particles),
	}
}

func (bd *BookmarkDetector) checkDivergenceSpike(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.DivAfterMean
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.DivAfterMean > avg*bd.spikeMultiplier {
		return &Bookmark{
			Type:        BookmarkDivergenceSpike,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Residual divergence %.3g is %.1fx average (%.3g)", stats.DivAfterMean, stats.DivAfterMean/avg, avg),
		}
	}
	return nil
}

// checkSolverStall fires when projection made divergence worse on average.
func (bd *BookmarkDetector) checkSolverStall(stats WindowStats) *Bookmark {
	if stats.DivBeforeMean == 0 || stats.Reduction >= 0 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkSolverStall,
		Tick:        stats.WindowEndTick,
		Description: fmt.Sprintf("Projection raised divergence by %.1f%%", -stats.Reduction*100),
	}
}

func (bd *BookmarkDetector) checkSettled(stats WindowStats) *Bookmark {
	if stats.Particles == 0 || stats.SpeedMean >= bd.settleSpeed {
		bd.settledCount = 0
		return nil
	}
	bd.settledCount++
	if bd.settledCount == bd.settleWindows { // trigger exactly once per settled run
		return &Bookmark{
			Type:        BookmarkSettled,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Mean speed %.3g below %.3g for %d windows", stats.SpeedMean, bd.settleSpeed, bd.settleWindows),
		}
	}
	return nil
}
