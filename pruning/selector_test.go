package pruning

import (
	"errors"
	"testing"

	"parquetscan/metadata"
)

func idRowGroup(numRows, min, max int64) metadata.RowGroupMetadata {
	return metadata.RowGroupMetadata{
		NumRows: numRows,
		Columns: []metadata.ColumnChunkMetadata{{
			Path:       metadata.NewColumnPath("id"),
			Node:       &metadata.SchemaNode{Kind: metadata.KindInt64, Logical: metadata.LogicalInt64},
			Statistics: int64Stats(min, max, 0),
		}},
	}
}

func TestSelectRowGroups(t *testing.T) {
	file := &metadata.FileMetadata{
		RowGroups: []metadata.RowGroupMetadata{
			idRowGroup(100, 10, 20),
			idRowGroup(100, 30, 40),
			idRowGroup(0, 50, 60),
		},
	}
	predicate := NewPredicate(map[metadata.ColumnPath]*Domain{
		metadata.NewColumnPath("id"): SingleValue(Int64Value(35), false),
	})

	selected, err := SelectRowGroups(file, predicate, "f", false)
	if err != nil {
		t.Fatalf("SelectRowGroups failed: %v", err)
	}
	if selected.GetCardinality() != 1 {
		t.Fatalf("Expected 1 selected row group, got %d", selected.GetCardinality())
	}
	if !selected.Contains(1) {
		t.Error("Row group 1 holds [30,40] and must be selected for id = 35")
	}
	if selected.Contains(0) {
		t.Error("Row group 0 holds [10,20] and must be pruned")
	}
	if selected.Contains(2) {
		t.Error("An empty row group must always be pruned")
	}
}

func TestSelectRowGroupsUnconstrained(t *testing.T) {
	file := &metadata.FileMetadata{
		RowGroups: []metadata.RowGroupMetadata{
			idRowGroup(100, 10, 20),
			idRowGroup(100, 30, 40),
		},
	}
	selected, err := SelectRowGroups(file, AllPredicate(), "f", false)
	if err != nil {
		t.Fatalf("SelectRowGroups failed: %v", err)
	}
	if selected.GetCardinality() != 2 {
		t.Errorf("An unconstrained predicate must keep every non-empty group, got %d", selected.GetCardinality())
	}
}

func TestSelectRowGroupsStrictError(t *testing.T) {
	file := &metadata.FileMetadata{
		RowGroups: []metadata.RowGroupMetadata{idRowGroup(100, 20, 10)},
	}
	predicate := NewPredicate(map[metadata.ColumnPath]*Domain{
		metadata.NewColumnPath("id"): SingleValue(Int64Value(5), false),
	})
	if _, err := SelectRowGroups(file, predicate, "f", true); !errors.Is(err, ErrCorruptedStatistics) {
		t.Errorf("Expected ErrCorruptedStatistics, got %v", err)
	}
}
