package metadata

import (
	"bytes"
	"testing"

	"github.com/parquet-go/parquet-go/format"
)

func TestDecodeStatisticsLegacyBinaryBounds(t *testing.T) {
	// Legacy min/max on byte-array columns were ordered by signed byte
	// comparison and cannot serve as byte-lexicographic bounds.
	t.Run("BoundsOnly", func(t *testing.T) {
		raw := &format.Statistics{Min: []byte("a"), Max: []byte("b")}
		if stats := decodeStatistics(raw, KindByteArray); stats != nil {
			t.Errorf("Legacy binary bounds must be discarded, got min=%q max=%q", stats.Min, stats.Max)
		}
	})

	t.Run("NullCountSurvives", func(t *testing.T) {
		raw := &format.Statistics{Min: []byte("a"), Max: []byte("b"), NullCount: 5}
		stats := decodeStatistics(raw, KindByteArray)
		if stats == nil {
			t.Fatal("The null count of a legacy binary record is still usable")
		}
		if stats.Min != nil || stats.Max != nil {
			t.Errorf("Legacy binary bounds must be discarded, got min=%q max=%q", stats.Min, stats.Max)
		}
		if stats.NullCount != 5 {
			t.Errorf("NullCount: expected 5, got %d", stats.NullCount)
		}
	})

	t.Run("FixedLenByteArray", func(t *testing.T) {
		raw := &format.Statistics{Min: []byte("aa"), Max: []byte("bb")}
		if stats := decodeStatistics(raw, KindFixedLenByteArray); stats != nil {
			t.Error("Legacy bounds on fixed-length binary must be discarded too")
		}
	})

	t.Run("OrderedPairKept", func(t *testing.T) {
		raw := &format.Statistics{MinValue: []byte("a"), MaxValue: []byte("b"), NullCount: 0}
		stats := decodeStatistics(raw, KindByteArray)
		if stats == nil {
			t.Fatal("Ordered min_value/max_value are valid byte-lexicographic bounds")
		}
		if !bytes.Equal(stats.Min, []byte("a")) || !bytes.Equal(stats.Max, []byte("b")) {
			t.Errorf("Bounds: expected a/b, got %q/%q", stats.Min, stats.Max)
		}
	})
}

func TestDecodeStatisticsLegacyNumericBounds(t *testing.T) {
	raw := &format.Statistics{Min: le64(10), Max: le64(20)}
	stats := decodeStatistics(raw, KindInt64)
	if stats == nil {
		t.Fatal("Legacy numeric bounds are order-correct and must be kept")
	}
	if !bytes.Equal(stats.Min, le64(10)) || !bytes.Equal(stats.Max, le64(20)) {
		t.Errorf("Bounds: expected 10/20, got %x/%x", stats.Min, stats.Max)
	}
	if stats.NullCount != -1 {
		t.Errorf("A zero null count on a legacy record is unreliable, expected -1, got %d", stats.NullCount)
	}
}

func TestDecodeStatisticsNullCountHandling(t *testing.T) {
	t.Run("OrderedZeroTrusted", func(t *testing.T) {
		raw := &format.Statistics{MinValue: le64(1), MaxValue: le64(2), NullCount: 0}
		stats := decodeStatistics(raw, KindInt64)
		if stats == nil {
			t.Fatal("Expected a statistics record")
		}
		if stats.NullCount != 0 {
			t.Errorf("NullCount: expected 0, got %d", stats.NullCount)
		}
	})

	t.Run("NegativeIsUnknown", func(t *testing.T) {
		raw := &format.Statistics{MinValue: le64(1), MaxValue: le64(2), NullCount: -7}
		stats := decodeStatistics(raw, KindInt64)
		if stats == nil {
			t.Fatal("Expected a statistics record")
		}
		if stats.NullCount != -1 {
			t.Errorf("NullCount: expected -1, got %d", stats.NullCount)
		}
	})

	t.Run("EmptyRecordIsAbsent", func(t *testing.T) {
		if stats := decodeStatistics(&format.Statistics{}, KindInt64); stats != nil {
			t.Errorf("A record with no bounds and no null count carries nothing, got %+v", stats)
		}
	})
}

func TestDecodeStatisticsBoundLengths(t *testing.T) {
	raw := &format.Statistics{MinValue: []byte{1, 2}, MaxValue: le64(9), NullCount: 1}
	if stats := decodeStatistics(raw, KindInt64); stats != nil {
		t.Error("A bound of the wrong width marks the whole record undecodable")
	}
}
