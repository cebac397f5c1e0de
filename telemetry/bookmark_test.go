package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_DivergenceSpike(t *testing.T) {
	bd := NewBookmarkDetector(10, 3, 0.05, 3)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{
			WindowEndTick: int32(i * 100),
			Particles:     100,
			SpeedMean:     1,
			DivBeforeMean: 10,
			DivAfterMean:  0.5,
			Reduction:     0.95,
		})
	}

	bookmarks := bd.Check(WindowStats{
		WindowEndTick: 500,
		Particles:     100,
		SpeedMean:     1,
		DivBeforeMean: 10,
		DivAfterMean:  2.5, // 5x the 0.5 average
		Reduction:     0.75,
	})
	if !hasBookmark(bookmarks, BookmarkDivergenceSpike) {
		t.Errorf("expected divergence_spike bookmark, got %v", bookmarks)
	}
}

func TestBookmarkDetector_NoSpikeWithoutHistory(t *testing.T) {
	bd := NewBookmarkDetector(10, 3, 0.05, 3)
	bookmarks := bd.Check(WindowStats{DivAfterMean: 100, Particles: 1, SpeedMean: 1})
	if hasBookmark(bookmarks, BookmarkDivergenceSpike) {
		t.Error("spike reported with no history")
	}
}

func TestBookmarkDetector_NonFiniteOnce(t *testing.T) {
	bd := NewBookmarkDetector(5, 3, 0.05, 3)
	stats := WindowStats{WindowEndTick: 10, Particles: 50, NonFinite: 2, SpeedMean: 1}

	if !hasBookmark(bd.Check(stats), BookmarkNonFinite) {
		t.Fatal("expected non_finite bookmark")
	}
	if hasBookmark(bd.Check(stats), BookmarkNonFinite) {
		t.Error("non_finite bookmark fired twice")
	}
}

func TestBookmarkDetector_SolverStall(t *testing.T) {
	bd := NewBookmarkDetector(5, 3, 0.05, 3)
	bookmarks := bd.Check(WindowStats{Particles: 1, SpeedMean: 1, DivBeforeMean: 1, DivAfterMean: 1.2, Reduction: -0.2})
	if !hasBookmark(bookmarks, BookmarkSolverStall) {
		t.Error("expected solver_stall bookmark")
	}
}

func TestBookmarkDetector_Settled(t *testing.T) {
	bd := NewBookmarkDetector(10, 3, 0.05, 3)

	var fired []int
	for i := 0; i < 6; i++ {
		bookmarks := bd.Check(WindowStats{WindowEndTick: int32(i), Particles: 100, SpeedMean: 0.01})
		if hasBookmark(bookmarks, BookmarkSettled) {
			fired = append(fired, i)
		}
	}
	if len(fired) != 1 || fired[0] != 2 {
		t.Errorf("settled fired at windows %v, want [2]", fired)
	}

	// A fast window resets the run.
	bd.Check(WindowStats{Particles: 100, SpeedMean: 1})
	for i := 0; i < 3; i++ {
		if b := bd.Check(WindowStats{Particles: 100, SpeedMean: 0.01}); hasBookmark(b, BookmarkSettled) && i != 2 {
			t.Errorf("settled fired early at window %d", i)
		}
	}
}
