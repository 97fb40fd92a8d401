// Package telemetry handles structured experiment output: CSV episode and
// generation logs, config snapshots, and value table persistence.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/muncher/config"
	"github.com/pthm-cable/muncher/policy"
)

// OutputManager handles structured experiment output with CSV logging.
// A nil manager is valid and discards everything, so callers never need to
// guard on whether output is enabled.
type OutputManager struct {
	dir             string
	episodesFile    *os.File
	generationsFile *os.File

	episodesHeaderWritten    bool
	generationsHeaderWritten bool
}

// NewOutputManager creates an output manager rooted at dir.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, "episodes.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating episodes.csv: %w", err)
	}
	om.episodesFile = f

	f, err = os.Create(filepath.Join(dir, "generations.csv"))
	if err != nil {
		om.episodesFile.Close()
		return nil, fmt.Errorf("creating generations.csv: %w", err)
	}
	om.generationsFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteEpisode appends a record to episodes.csv.
func (om *OutputManager) WriteEpisode(rec EpisodeRecord) error {
	if om == nil {
		return nil
	}

	records := []EpisodeRecord{rec}
	if !om.episodesHeaderWritten {
		if err := gocsv.Marshal(records, om.episodesFile); err != nil {
			return fmt.Errorf("writing episode: %w", err)
		}
		om.episodesHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.episodesFile); err != nil {
			return fmt.Errorf("writing episode: %w", err)
		}
	}
	return nil
}

// WriteGeneration appends a record to generations.csv.
func (om *OutputManager) WriteGeneration(rec GenerationRecord) error {
	if om == nil {
		return nil
	}

	records := []GenerationRecord{rec}
	if !om.generationsHeaderWritten {
		if err := gocsv.Marshal(records, om.generationsFile); err != nil {
			return fmt.Errorf("writing generation: %w", err)
		}
		om.generationsHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.generationsFile); err != nil {
			return fmt.Errorf("writing generation: %w", err)
		}
	}
	return nil
}

// WriteTable saves the value table as qtable.json.
func (om *OutputManager) WriteTable(t *policy.Table) error {
	if om == nil || t == nil {
		return nil
	}
	f, err := os.Create(filepath.Join(om.dir, "qtable.json"))
	if err != nil {
		return fmt.Errorf("creating qtable.json: %w", err)
	}
	defer f.Close()
	if err := t.Save(f); err != nil {
		return fmt.Errorf("writing qtable.json: %w", err)
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

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	if om.episodesFile != nil {
		if err := om.episodesFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if om.generationsFile != nil {
		if err := om.generationsFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
