package metadata

import (
	"github.com/parquet-go/parquet-go/format"
)

// Statistics carries a column chunk's decoded min/max/null-count summary.
// The bounds stay in their raw plain-encoded form, tagged with the
// physical kind; interpreting them against a logical type is the
// pruning layer's job. A nil bound means that bound is absent.
type Statistics struct {
	Kind      Kind
	Min       []byte
	Max       []byte
	NullCount int64 // -1 when the file does not record it
}

// ColumnChunkMetadata describes the contiguous storage of one column
// within one row group
type ColumnChunkMetadata struct {
	Path                  ColumnPath
	Node                  *SchemaNode
	Codec                 CompressionCodec
	Encodings             []Encoding
	Statistics            *Statistics // nil when absent or undecodable
	DataPageOffset        int64
	DictionaryPageOffset  int64 // 0 when the chunk has no dictionary page
	NumValues             int64
	TotalCompressedSize   int64
	TotalUncompressedSize int64
}

// HasDictionaryPage reports whether the chunk records a dictionary page
func (c *ColumnChunkMetadata) HasDictionaryPage() bool {
	return c.DictionaryPageOffset > 0 && c.DictionaryPageOffset < c.DataPageOffset
}

// RowGroupMetadata describes one horizontal partition of the file
type RowGroupMetadata struct {
	NumRows       int64
	TotalByteSize int64
	FilePath      string // shared by every chunk in the group; empty when inline
	Columns       []ColumnChunkMetadata
}

// Column returns the chunk for the given path, or nil when the row group
// has no such column
func (rg *RowGroupMetadata) Column(path ColumnPath) *ColumnChunkMetadata {
	key := path.String()
	for i := range rg.Columns {
		if rg.Columns[i].Path.String() == key {
			return &rg.Columns[i]
		}
	}
	return nil
}

// decodeStatistics converts the footer's raw statistics record into the
// internal carrier. Writers populated either the ordered min_value/
// max_value pair or the legacy min/max pair; the ordered pair wins when
// present. A bound whose byte length does not match the physical kind
// marks the whole record undecodable, which degrades to "no statistics
// for this column" rather than failing the file.
func decodeStatistics(raw *format.Statistics, kind Kind) *Statistics {
	min, max := raw.MinValue, raw.MaxValue
	legacy := min == nil && max == nil
	if legacy {
		min, max = raw.Min, raw.Max
	}

	// Writers predating the ordered min_value/max_value pair compared
	// binary values as signed bytes, so their legacy bounds for
	// byte-array columns are not bounds under the unsigned
	// byte-lexicographic order the pruning layer uses. Only the null
	// count of such a record can be kept.
	if legacy && (kind == KindByteArray || kind == KindFixedLenByteArray) {
		min, max = nil, nil
	}

	// The wire format cannot distinguish an unset null count from a
	// recorded zero. A recorded zero on a legacy record is therefore
	// treated as unknown, and a record with no bounds and a non-positive
	// null count carries no usable information at all, which keeps the
	// null flag conservative downstream.
	nullCount := raw.NullCount
	if nullCount < 0 || (legacy && nullCount == 0) {
		nullCount = -1
	}
	if min == nil && max == nil && nullCount <= 0 {
		return nil
	}
	if !validBound(min, kind) || !validBound(max, kind) {
		return nil
	}
	return &Statistics{Kind: kind, Min: min, Max: max, NullCount: nullCount}
}

func validBound(bound []byte, kind Kind) bool {
	if bound == nil {
		return true
	}
	switch kind {
	case KindBoolean:
		return len(bound) == 1
	case KindInt32, KindFloat:
		return len(bound) == 4
	case KindInt64, KindDouble:
		return len(bound) == 8
	case KindInt96:
		return len(bound) == 12
	default:
		return true
	}
}
