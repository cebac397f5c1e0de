package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/slosh/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v, want nil, nil", om, err)
	}
	// A nil manager accepts every call.
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteBookmark(Bookmark{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" {
		t.Error("nil manager has a dir")
	}
}

func TestOutputManagerWritesHeaderOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for i := 1; i <= 3; i++ {
		if err := om.WriteTelemetry(WindowStats{WindowEndTick: int32(i * 100), DivAfterMean: 0.5}); err != nil {
			t.Fatalf("WriteTelemetry: %v", err)
		}
	}
	stats := PerfStats{AvgTickDuration: time.Millisecond, PhasePct: map[string]float64{PhaseTelemetry: 2}}
	if err := om.WritePerf(stats, 100); err != nil {
		t.Fatalf("WritePerf: %v", err)
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkSettled, Tick: 300, Description: "calm"}); err != nil {
		t.Fatalf("WriteBookmark: %v", err)
	}
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	lines := readLines(t, filepath.Join(dir, "telemetry.csv"))
	if len(lines) != 4 {
		t.Fatalf("telemetry.csv has %d lines, want header + 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "window_end,sim_time,particles") {
		t.Errorf("telemetry header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[3], "300,") {
		t.Errorf("last row = %q", lines[3])
	}

	perf := readLines(t, filepath.Join(dir, "perf.csv"))
	if len(perf) != 2 || !strings.Contains(perf[0], "project_pct") {
		t.Errorf("perf.csv = %v", perf)
	}

	bm := readLines(t, filepath.Join(dir, "bookmarks.csv"))
	if len(bm) != 2 || bm[0] != "type,tick,description" || bm[1] != "settled,300,calm" {
		t.Errorf("bookmarks.csv = %v", bm)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml not written: %v", err)
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}
