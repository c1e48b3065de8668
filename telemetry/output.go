package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/pthm-cable/biosim/config"
	"github.com/pthm-cable/biosim/island"
)

// csvFile appends records of one type to a CSV file, writing the header
// with the first batch.
type csvFile[T any] struct {
	name          string
	f             *os.File
	headerWritten bool
}

func createCSV[T any](dir, name string) (*csvFile[T], error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvFile[T]{name: name, f: f}, nil
}

func (c *csvFile[T]) write(records []T) error {
	if c == nil || len(records) == 0 {
		return nil
	}
	var err error
	if !c.headerWritten {
		err = gocsv.Marshal(records, c.f)
		c.headerWritten = true
	} else {
		err = gocsv.MarshalWithoutHeaders(records, c.f)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", c.name, err)
	}
	return nil
}

func (c *csvFile[T]) close() error {
	if c == nil {
		return nil
	}
	return c.f.Close()
}

// OutputManager writes simulation results to a run directory.
type OutputManager struct {
	dir          string
	population   *csvFile[YearStats]
	distribution *csvFile[island.CellCount]
	perf         *csvFile[PerfStatsCSV]
	bookmarks    *csvFile[Bookmark]
}

// NewOutputManager creates the output directory and its CSV files.
// Returns nil if dir is empty (output disabled). distribution.csv is only
// created when withDistribution is set.
func NewOutputManager(dir string, withDistribution bool) (_ *OutputManager, err error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	defer func() {
		if err != nil {
			om.Close()
		}
	}()

	if om.population, err = createCSV[YearStats](dir, "population.csv"); err != nil {
		return nil, err
	}
	if om.perf, err = createCSV[PerfStatsCSV](dir, "perf.csv"); err != nil {
		return nil, err
	}
	if om.bookmarks, err = createCSV[Bookmark](dir, "bookmarks.csv"); err != nil {
		return nil, err
	}
	if withDistribution {
		if om.distribution, err = createCSV[island.CellCount](dir, "distribution.csv"); err != nil {
			return nil, err
		}
	}
	return om, nil
}

// WriteConfig saves the run configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteYear writes a year summary to population.csv.
func (om *OutputManager) WriteYear(stats YearStats) error {
	if om == nil {
		return nil
	}
	return om.population.write([]YearStats{stats})
}

// WriteDistribution writes per-cell counts to distribution.csv.
func (om *OutputManager) WriteDistribution(counts []island.CellCount) error {
	if om == nil {
		return nil
	}
	return om.distribution.write(counts)
}

// WritePerf writes the performance window ending at year to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, year int) error {
	if om == nil {
		return nil
	}
	return om.perf.write([]PerfStatsCSV{stats.ToCSV(year)})
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return om.bookmarks.write([]Bookmark{b})
}

// WriteHallOfFame saves the hall of fame as JSON.
func (om *OutputManager) WriteHallOfFame(hof *HallOfFame) error {
	if om == nil || hof == nil {
		return nil
	}

	data, err := hof.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling hall of fame: %w", err)
	}
	if err := os.WriteFile(filepath.Join(om.dir, "hall_of_fame.json"), data, 0644); err != nil {
		return fmt.Errorf("writing hall_of_fame.json: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	return errors.Join(
		om.population.close(),
		om.distribution.close(),
		om.perf.close(),
		om.bookmarks.close(),
	)
}
