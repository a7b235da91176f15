package pruning

import (
	"errors"
	"testing"

	"parquetscan/metadata"
)

func TestNewPredicateCollapsesOnNone(t *testing.T) {
	predicate := NewPredicate(map[metadata.ColumnPath]*Domain{
		metadata.NewColumnPath("a"): ClosedRange(Int64Value(1), Int64Value(5), false),
		metadata.NewColumnPath("b"): None(),
	})
	if !predicate.IsNone() {
		t.Error("One unsatisfiable column must make the whole predicate none")
	}
}

func TestPredicateColumnDomain(t *testing.T) {
	path := metadata.NewColumnPath("meta", "Region")
	predicate := NewPredicate(map[metadata.ColumnPath]*Domain{
		path: SingleValue(StringValue("emea"), false),
	})
	if predicate.ColumnDomain(path) == nil {
		t.Error("Constrained column should report its domain")
	}
	if predicate.ColumnDomain(metadata.NewColumnPath("other")) != nil {
		t.Error("Unconstrained column should report nil")
	}
}

func TestPredicateMayMatch(t *testing.T) {
	path := metadata.NewColumnPath("id")
	between := func(lo, hi int64) *EffectivePredicate {
		return NewPredicate(map[metadata.ColumnPath]*Domain{
			path: ClosedRange(Int64Value(lo), Int64Value(hi), false),
		})
	}
	statsColumn := func(min, max int64) []ColumnStatistics {
		return []ColumnStatistics{{
			Path:       path,
			Logical:    metadata.LogicalInt64,
			Statistics: int64Stats(min, max, 0),
		}}
	}

	t.Run("EmptyRowGroup", func(t *testing.T) {
		match, err := AllPredicate().MayMatch(0, nil, "f", false)
		if err != nil {
			t.Fatalf("MayMatch failed: %v", err)
		}
		if match {
			t.Error("A row group with zero rows can never match")
		}
	})

	t.Run("NonePredicate", func(t *testing.T) {
		match, err := NonePredicate().MayMatch(100, statsColumn(10, 20), "f", false)
		if err != nil {
			t.Fatalf("MayMatch failed: %v", err)
		}
		if match {
			t.Error("An unsatisfiable predicate can never match")
		}
	})

	t.Run("DisjointExcludes", func(t *testing.T) {
		match, err := between(21, 30).MayMatch(100, statsColumn(10, 20), "f", false)
		if err != nil {
			t.Fatalf("MayMatch failed: %v", err)
		}
		if match {
			t.Error("[21,30] against stats [10,20] must exclude the group")
		}
	})

	t.Run("OverlapAdmits", func(t *testing.T) {
		match, err := between(15, 25).MayMatch(100, statsColumn(10, 20), "f", false)
		if err != nil {
			t.Fatalf("MayMatch failed: %v", err)
		}
		if !match {
			t.Error("[15,25] against stats [10,20] cannot exclude the group")
		}
	})

	t.Run("MissingStatisticsAdmit", func(t *testing.T) {
		columns := []ColumnStatistics{{Path: path, Logical: metadata.LogicalInt64}}
		match, err := between(21, 30).MayMatch(100, columns, "f", false)
		if err != nil {
			t.Fatalf("MayMatch failed: %v", err)
		}
		if !match {
			t.Error("Without statistics the column cannot prove anything")
		}
	})

	t.Run("UnconstrainedColumnIgnored", func(t *testing.T) {
		other := []ColumnStatistics{{
			Path:       metadata.NewColumnPath("other"),
			Logical:    metadata.LogicalInt64,
			Statistics: int64Stats(1, 2, 0),
		}}
		match, err := between(21, 30).MayMatch(100, other, "f", false)
		if err != nil {
			t.Fatalf("MayMatch failed: %v", err)
		}
		if !match {
			t.Error("Statistics for an unconstrained column carry no constraint")
		}
	})

	t.Run("NullPredicateAgainstNullFreeGroup", func(t *testing.T) {
		nullOnly := NewPredicate(map[metadata.ColumnPath]*Domain{path: OnlyNull()})
		match, err := nullOnly.MayMatch(100, statsColumn(10, 20), "f", false)
		if err != nil {
			t.Fatalf("MayMatch failed: %v", err)
		}
		if match {
			t.Error("nullCount 0 proves IS NULL cannot match")
		}
	})

	t.Run("StrictErrorPropagates", func(t *testing.T) {
		columns := []ColumnStatistics{{
			Path:       path,
			Logical:    metadata.LogicalInt64,
			Statistics: int64Stats(20, 10, 0),
		}}
		_, err := between(1, 100).MayMatch(100, columns, "f", true)
		if !errors.Is(err, ErrCorruptedStatistics) {
			t.Errorf("Expected ErrCorruptedStatistics, got %v", err)
		}
	})

	t.Run("LenientCorruptionAdmits", func(t *testing.T) {
		columns := []ColumnStatistics{{
			Path:       path,
			Logical:    metadata.LogicalInt64,
			Statistics: int64Stats(20, 10, 0),
		}}
		match, err := between(1, 100).MayMatch(100, columns, "f", false)
		if err != nil {
			t.Fatalf("MayMatch failed: %v", err)
		}
		if !match {
			t.Error("Corrupted statistics must not exclude anything in lenient mode")
		}
	})
}

func TestPredicateMayMatchRowGroup(t *testing.T) {
	path := metadata.NewColumnPath("id")
	rowGroup := &metadata.RowGroupMetadata{
		NumRows: 50,
		Columns: []metadata.ColumnChunkMetadata{{
			Path:       path,
			Node:       &metadata.SchemaNode{Kind: metadata.KindInt64, Logical: metadata.LogicalInt64},
			Statistics: int64Stats(10, 20, 0),
		}},
	}

	predicate := NewPredicate(map[metadata.ColumnPath]*Domain{
		path: SingleValue(Int64Value(35), false),
	})
	match, err := predicate.MayMatchRowGroup(rowGroup, "f", false)
	if err != nil {
		t.Fatalf("MayMatchRowGroup failed: %v", err)
	}
	if match {
		t.Error("id = 35 against stats [10,20] must exclude the group")
	}
}

func TestPredicateMayMatchDictionary(t *testing.T) {
	path := metadata.NewColumnPath("id")
	descriptor := &DictionaryDescriptor{
		Path:    path,
		Kind:    metadata.KindInt64,
		Logical: metadata.LogicalInt64,
		Codec:   metadata.CompressionUncompressed,
		Page:    buildDictionaryPage(t, metadata.CompressionUncompressed, plainInt64s(1, 2, 3), 3),
	}

	t.Run("EntryMatches", func(t *testing.T) {
		predicate := NewPredicate(map[metadata.ColumnPath]*Domain{path: SingleValue(Int64Value(2), false)})
		if !predicate.MayMatchDictionary(descriptor) {
			t.Error("id = 2 is in the dictionary and must match")
		}
	})

	t.Run("AbsentValueExcluded", func(t *testing.T) {
		predicate := NewPredicate(map[metadata.ColumnPath]*Domain{path: SingleValue(Int64Value(9), false)})
		if predicate.MayMatchDictionary(descriptor) {
			t.Error("id = 9 is not in the dictionary and must be excluded")
		}
	})

	t.Run("UnconstrainedColumn", func(t *testing.T) {
		predicate := NewPredicate(map[metadata.ColumnPath]*Domain{
			metadata.NewColumnPath("other"): SingleValue(Int64Value(9), false),
		})
		if !predicate.MayMatchDictionary(descriptor) {
			t.Error("A dictionary for an unconstrained column decides nothing")
		}
	})

	t.Run("NonePredicate", func(t *testing.T) {
		if NonePredicate().MayMatchDictionary(descriptor) {
			t.Error("An unsatisfiable predicate can never match")
		}
	})
}
