package batch

import (
	"fmt"
	"path/filepath"

	"letterbox/internal/fsx"
	"letterbox/internal/metadata"
)

const videoExt = ".mp4"

// SourcePath returns the raw video for a stem.
func SourcePath(rawDir, stem string) string {
	return filepath.Join(rawDir, stem+videoExt)
}

// DestinationPath returns the cropped output for a stem.
func DestinationPath(cropDir, stem string) string {
	return filepath.Join(cropDir, stem+videoExt)
}

// plan holds the work items of a pass plus the rows resolved without
// dispatch, both in table order.
type plan struct {
	items    []WorkItem
	resolved []ItemResult
}

func (p *plan) skip(row metadata.Row, format string, args ...any) {
	p.resolved = append(p.resolved, ItemResult{
		ClipID:  row.ClipID,
		Status:  StatusSkipped,
		Message: fmt.Sprintf(format, args...),
		Crop:    row.CropSize,
	})
}

func (p *plan) fail(row metadata.Row, err error) {
	p.resolved = append(p.resolved, ItemResult{
		ClipID:  row.ClipID,
		Status:  StatusFailed,
		Message: err.Error(),
		Err:     err,
	})
}

func planDetect(table *metadata.Table, rawDir string) plan {
	var p plan
	for _, row := range table.Rows() {
		if row.CropSize != "" {
			p.skip(row, "crop size already recorded")
			continue
		}
		stem := row.Stem()
		src := SourcePath(rawDir, stem)
		ok, err := fsx.Exists(src)
		if err != nil {
			p.fail(row, fmt.Errorf("check source: %w", err))
			continue
		}
		if !ok {
			p.skip(row, "source missing: %s", src)
			continue
		}
		p.items = append(p.items, WorkItem{
			Index:  row.Index,
			ClipID: row.ClipID,
			Stem:   stem,
			Source: src,
		})
	}
	return p
}

// claimants maps each stem to the row that owns its destination file: the
// first row of the stem with a recorded crop size, or the stem's first row
// when none has one.
func claimants(rows []metadata.Row) map[string]metadata.Row {
	owners := make(map[string]metadata.Row)
	for _, row := range rows {
		stem := row.Stem()
		current, seen := owners[stem]
		if !seen || (current.CropSize == "" && row.CropSize != "") {
			owners[stem] = row
		}
	}
	return owners
}

func planCrop(table *metadata.Table, rawDir, cropDir string) plan {
	var p plan
	rows := table.Rows()
	owners := claimants(rows)
	for _, row := range rows {
		stem := row.Stem()
		src := SourcePath(rawDir, stem)
		dst := DestinationPath(cropDir, stem)

		ok, err := fsx.Exists(src)
		if err != nil {
			p.fail(row, fmt.Errorf("check source: %w", err))
			continue
		}
		if !ok {
			p.skip(row, "source missing: %s", src)
			continue
		}
		if ok, err = fsx.Exists(dst); err != nil {
			p.fail(row, fmt.Errorf("check destination: %w", err))
			continue
		} else if ok {
			p.skip(row, "destination exists: %s", dst)
			continue
		}
		if owner := owners[stem]; owner.ClipID != row.ClipID {
			p.skip(row, "destination claimed by %s", owner.ClipID)
			continue
		}
		p.items = append(p.items, WorkItem{
			Index:       row.Index,
			ClipID:      row.ClipID,
			Stem:        stem,
			Source:      src,
			Destination: dst,
			CropSize:    row.CropSize,
		})
	}
	return p
}
