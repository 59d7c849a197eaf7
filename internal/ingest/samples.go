package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joseph-ayodele/deepread-extract/constants"
)

// Sample is one input file found under <root>/<process type>/.
type Sample struct {
	Path        string
	ProcessType constants.ProcessType
}

type DirStats struct {
	Scanned uint32
	Matched uint32
	Skipped uint32
}

// ScanSamples lists the regular, non-hidden files directly inside <root>/<pt>
// for every pt in allowed, in process type then file name order. A missing
// process type directory is not an error; an unreadable root is.
func ScanSamples(root string, allowed []constants.ProcessType) ([]Sample, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("samples root is required")
	}
	if _, err := os.Stat(root); err != nil {
		return nil, DirStats{}, fmt.Errorf("read samples dir: %w", err)
	}

	pts := append([]constants.ProcessType(nil), allowed...)
	sort.Slice(pts, func(i, j int) bool { return pts[i] < pts[j] })

	var samples []Sample
	var stats DirStats

	for _, pt := range pts {
		dir := filepath.Join(root, pt.String())
		entries, err := os.ReadDir(dir) // sorted by name
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return samples, stats, fmt.Errorf("read %s: %w", dir, err)
		}
		for _, e := range entries {
			stats.Scanned++
			if IsHidden(e.Name()) || !e.Type().IsRegular() {
				stats.Skipped++
				continue
			}
			stats.Matched++
			samples = append(samples, Sample{Path: filepath.Join(dir, e.Name()), ProcessType: pt})
		}
	}
	return samples, stats, nil
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
