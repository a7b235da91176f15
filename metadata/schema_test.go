package metadata

import (
	"errors"
	"testing"

	"github.com/parquet-go/parquet-go/deprecated"
	"github.com/parquet-go/parquet-go/format"
)

func TestBuildSchemaTreeNested(t *testing.T) {
	// root { Meta { Region UTF8, Zone INT32 }, Value DOUBLE }
	elements := []format.SchemaElement{
		{Name: "root", NumChildren: 2},
		{Name: "Meta", NumChildren: 2, RepetitionType: repetitionPtr(format.Optional)},
		{Name: "Region", Type: typePtr(format.ByteArray), RepetitionType: repetitionPtr(format.Optional), ConvertedType: convertedPtr(deprecated.UTF8)},
		{Name: "Zone", Type: typePtr(format.Int32), RepetitionType: repetitionPtr(format.Required)},
		{Name: "Value", Type: typePtr(format.Double), RepetitionType: repetitionPtr(format.Required)},
	}

	root, err := buildSchemaTree(elements)
	if err != nil {
		t.Fatalf("buildSchemaTree failed: %v", err)
	}
	if len(root.Children) != 2 {
		t.Fatalf("Root children: expected 2, got %d", len(root.Children))
	}

	t.Run("GroupStructure", func(t *testing.T) {
		meta := root.Children[0]
		if meta.Leaf() {
			t.Fatal("meta should be a group")
		}
		if meta.Repetition != RepetitionOptional {
			t.Errorf("meta repetition: expected OPTIONAL, got %v", meta.Repetition)
		}
		if len(meta.Children) != 2 {
			t.Fatalf("meta children: expected 2, got %d", len(meta.Children))
		}
	})

	t.Run("CaseInsensitiveLookup", func(t *testing.T) {
		// Lookups are case-insensitive because every name was lowered on
		// ingestion, not because comparison ignores case.
		leaf := root.Lookup(NewColumnPath("META", "Region"))
		if leaf == nil {
			t.Fatal("Lookup(meta.region) returned nil")
		}
		if leaf.Logical != LogicalString {
			t.Errorf("meta.region logical type: expected STRING, got %v", leaf.Logical)
		}
	})

	t.Run("LookupRejectsGroups", func(t *testing.T) {
		if node := root.Lookup(NewColumnPath("meta")); node != nil {
			t.Errorf("Lookup of a group should return nil, got %+v", node)
		}
	})

	t.Run("Leaves", func(t *testing.T) {
		leaves := root.Leaves()
		expected := []string{"meta.region", "meta.zone", "value"}
		if len(leaves) != len(expected) {
			t.Fatalf("Leaves: expected %d, got %d", len(expected), len(leaves))
		}
		for i, leaf := range leaves {
			if leaf.Path.String() != expected[i] {
				t.Errorf("Leaf %d: expected %q, got %q", i, expected[i], leaf.Path.String())
			}
		}
	})
}

func TestBuildSchemaTreeExactConsumption(t *testing.T) {
	t.Run("TooFewElements", func(t *testing.T) {
		elements := []format.SchemaElement{
			{Name: "root", NumChildren: 2},
			{Name: "a", Type: typePtr(format.Int32)},
		}
		if _, err := buildSchemaTree(elements); !errors.Is(err, ErrMalformedFooter) {
			t.Errorf("Expected ErrMalformedFooter, got %v", err)
		}
	})

	t.Run("TooManyElements", func(t *testing.T) {
		elements := []format.SchemaElement{
			{Name: "root", NumChildren: 1},
			{Name: "a", Type: typePtr(format.Int32)},
			{Name: "orphan", Type: typePtr(format.Int32)},
		}
		if _, err := buildSchemaTree(elements); !errors.Is(err, ErrMalformedFooter) {
			t.Errorf("Expected ErrMalformedFooter, got %v", err)
		}
	})

	t.Run("LeafRoot", func(t *testing.T) {
		elements := []format.SchemaElement{
			{Name: "root", Type: typePtr(format.Int32)},
		}
		if _, err := buildSchemaTree(elements); !errors.Is(err, ErrMalformedFooter) {
			t.Errorf("Expected ErrMalformedFooter, got %v", err)
		}
	})
}

func TestResolveLogicalTypeDefaults(t *testing.T) {
	cases := []struct {
		kind     format.Type
		expected LogicalType
	}{
		{format.Boolean, LogicalBoolean},
		{format.Int32, LogicalInt32},
		{format.Int64, LogicalInt64},
		{format.Float, LogicalFloat},
		{format.Double, LogicalDouble},
		{format.ByteArray, LogicalBinary},
	}
	for _, tc := range cases {
		node, err := newSchemaNode(&format.SchemaElement{Name: "c", Type: typePtr(tc.kind)})
		if err != nil {
			t.Fatalf("newSchemaNode(%v) failed: %v", tc.kind, err)
		}
		if node.Logical != tc.expected {
			t.Errorf("Default logical type for %v: expected %v, got %v", tc.kind, tc.expected, node.Logical)
		}
	}
}

func TestResolveLogicalTypeModernAnnotation(t *testing.T) {
	element := &format.SchemaElement{
		Name: "amount",
		Type: typePtr(format.Int32),
		LogicalType: &format.LogicalType{
			Integer: &format.IntType{BitWidth: 16, IsSigned: true},
		},
	}
	node, err := newSchemaNode(element)
	if err != nil {
		t.Fatalf("newSchemaNode failed: %v", err)
	}
	if node.Logical != LogicalInt16 {
		t.Errorf("Logical type: expected INT16, got %v", node.Logical)
	}
}
