package pruning

import (
	"github.com/RoaringBitmap/roaring/v2"

	"parquetscan/common"
	"parquetscan/metadata"
)

// SelectRowGroups evaluates the predicate against every row group of a
// parsed file and returns the bitmap of row-group ordinals that must
// still be read. Ordinals absent from the bitmap are proven to contain
// no matching row.
func SelectRowGroups(file *metadata.FileMetadata, predicate *EffectivePredicate, fileID string, strict bool) (*roaring.Bitmap, error) {
	selected := roaring.New()
	for i := range file.RowGroups {
		match, err := predicate.MayMatchRowGroup(&file.RowGroups[i], fileID, strict)
		if err != nil {
			return nil, err
		}
		if match {
			selected.Add(uint32(i))
		}
	}
	common.GetTracer().Debug(common.TraceComponentPruning, "Row group selection complete", common.TraceContext(
		"file", fileID,
		"total", len(file.RowGroups),
		"selected", selected.GetCardinality(),
	))
	return selected, nil
}
