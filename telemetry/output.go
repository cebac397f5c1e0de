package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/slosh/config"
)

// csvLog is one append-only CSV file whose header is written with the first record.
type csvLog struct {
	name          string
	file          *os.File
	headerWritten bool
}

func (l *csvLog) write(records any) error {
	var err error
	if l.headerWritten {
		err = gocsv.MarshalWithoutHeaders(records, l.file)
	} else {
		err = gocsv.Marshal(records, l.file)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", l.name, err)
	}
	l.headerWritten = true
	return nil
}

// OutputManager writes per-window stats, perf and bookmarks as CSV files
// in one run directory. A nil *OutputManager discards everything.
type OutputManager struct {
	dir       string
	telemetry csvLog
	perf      csvLog
	bookmarks csvLog
}

// NewOutputManager creates the output directory and its CSV files.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{
		dir:       dir,
		telemetry: csvLog{name: "telemetry.csv"},
		perf:      csvLog{name: "perf.csv"},
		bookmarks: csvLog{name: "bookmarks.csv"},
	}
	for _, l := range om.logs() {
		f, err := os.Create(filepath.Join(dir, l.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", l.name, err)
		}
		l.file = f
	}
	return om, nil
}

func (om *OutputManager) logs() []*csvLog {
	return []*csvLog{&om.telemetry, &om.perf, &om.bookmarks}
}

// WriteConfig saves the configuration in effect as config.yaml.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry appends a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return om.telemetry.write([]WindowStats{stats})
}

// WritePerf appends a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	return om.perf.write([]PerfStatsCSV{stats.ToCSV(windowEnd)})
}

// WriteBookmark appends a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return om.bookmarks.write([]Bookmark{b})
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes all output files, returning the first error.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var firstErr error
	for _, l := range om.logs() {
		if l.file == nil {
			continue
		}
		if err := l.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		l.file = nil
	}
	return firstErr
}
