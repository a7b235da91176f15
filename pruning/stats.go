package pruning

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"parquetscan/common"
	"parquetscan/metadata"
)

// ErrCorruptedStatistics marks statistics whose bounds contradict each
// other. It is recoverable: by default the affected column just loses
// its pruning opportunity, and only strict callers see the error.
var ErrCorruptedStatistics = errors.New("corrupted statistics")

// ErrStatisticsInvariant marks decoded statistics that violate an
// invariant the upstream decoder is supposed to guarantee. Unlike a
// corrupt file, this points at a decoder bug and always surfaces.
var ErrStatisticsInvariant = errors.New("statistics invariant violation")

// CorruptedStatisticsError carries the identity of the offending column
// and the raw bounds for diagnostics
type CorruptedStatisticsError struct {
	FileID string
	Column string
	Min    []byte
	Max    []byte
}

// Error implements the error interface
func (e *CorruptedStatisticsError) Error() string {
	return fmt.Sprintf("corrupted statistics for column %q in %s: min %x > max %x",
		e.Column, e.FileID, e.Min, e.Max)
}

// Unwrap ties the error to ErrCorruptedStatistics for errors.Is checks
func (e *CorruptedStatisticsError) Unwrap() error {
	return ErrCorruptedStatistics
}

// DomainFromStatistics turns a column chunk's min/max/null-count summary
// into a conservative domain for the given logical type. With strict
// false the call never fails: anything suspicious widens to the
// unconstrained domain, because pruning must never discard a row group
// that could contain a matching row. With strict true a min greater than
// max is reported as a CorruptedStatisticsError instead.
func DomainFromStatistics(logical metadata.LogicalType, rowCount int64, stats *metadata.Statistics, fileID, column string, strict bool) (*Domain, error) {
	if stats == nil {
		return All(), nil
	}
	if stats.NullCount >= 0 && stats.NullCount == rowCount && rowCount > 0 {
		return OnlyNull(), nil
	}

	// An unknown null count must be assumed to hide nulls.
	hasNulls := stats.NullCount != 0
	if stats.Min == nil || stats.Max == nil {
		return AllValues(hasNulls), nil
	}

	corrupted := func() (*Domain, error) {
		if strict {
			return nil, &CorruptedStatisticsError{FileID: fileID, Column: column, Min: stats.Min, Max: stats.Max}
		}
		common.GetTracer().Warn(common.TraceComponentPruning, "Ignoring corrupted statistics", common.TraceContext(
			"file", fileID,
			"column", column,
		))
		return AllValues(hasNulls), nil
	}

	switch logical {
	case metadata.LogicalBoolean:
		return booleanDomain(stats, hasNulls, fileID, column)

	case metadata.LogicalInt8, metadata.LogicalInt16, metadata.LogicalInt32, metadata.LogicalInt64, metadata.LogicalDate:
		bounds, ok := decodeIntegerBounds(stats)
		if !ok {
			return AllValues(hasNulls), nil
		}
		if bounds.Min > bounds.Max {
			return corrupted()
		}
		if overflowsLogicalType(bounds, logical) {
			// A range narrower than the true value range must never be
			// produced, so an overflowing bound disables pruning.
			return AllValues(hasNulls), nil
		}
		return ClosedRange(Int64Value(bounds.Min), Int64Value(bounds.Max), hasNulls), nil

	case metadata.LogicalFloat:
		if stats.Kind != metadata.KindFloat {
			return AllValues(hasNulls), nil
		}
		min := math.Float32frombits(binary.LittleEndian.Uint32(stats.Min))
		max := math.Float32frombits(binary.LittleEndian.Uint32(stats.Max))
		if !(min <= max) {
			return corrupted()
		}
		return ClosedRange(Float32Value(min), Float32Value(max), hasNulls), nil

	case metadata.LogicalDouble:
		if stats.Kind != metadata.KindDouble {
			return AllValues(hasNulls), nil
		}
		bounds := DoubleRange{
			Min: math.Float64frombits(binary.LittleEndian.Uint64(stats.Min)),
			Max: math.Float64frombits(binary.LittleEndian.Uint64(stats.Max)),
		}
		if !(bounds.Min <= bounds.Max) {
			return corrupted()
		}
		return ClosedRange(Float64Value(bounds.Min), Float64Value(bounds.Max), hasNulls), nil

	case metadata.LogicalString, metadata.LogicalEnum, metadata.LogicalJSON, metadata.LogicalBSON, metadata.LogicalBinary:
		if stats.Kind != metadata.KindByteArray && stats.Kind != metadata.KindFixedLenByteArray {
			return AllValues(hasNulls), nil
		}
		bounds := BytesRange{Min: stats.Min, Max: stats.Max}
		if bytes.Compare(bounds.Min, bounds.Max) > 0 {
			return corrupted()
		}
		return ClosedRange(BytesValue(bounds.Min), BytesValue(bounds.Max), hasNulls), nil

	default:
		// Unhandled logical types cannot be pruned on.
		return AllValues(hasNulls), nil
	}
}

// booleanDomain derives which of true/false the chunk holds from its
// bounds. With the all-null case already excluded, at least one of the
// two must be present; anything else is an upstream decoder bug, not a
// property of the file.
func booleanDomain(stats *metadata.Statistics, hasNulls bool, fileID, column string) (*Domain, error) {
	if stats.Kind != metadata.KindBoolean {
		return AllValues(hasNulls), nil
	}
	min := stats.Min[0] != 0
	max := stats.Max[0] != 0

	hasTrue := min || max
	hasFalse := !min || !max
	switch {
	case hasTrue && hasFalse:
		return AllValues(hasNulls), nil
	case hasTrue:
		return SingleValue(BoolValue(true), hasNulls), nil
	case hasFalse:
		return SingleValue(BoolValue(false), hasNulls), nil
	default:
		return nil, fmt.Errorf("%w: boolean column %q in %s has neither true nor false",
			ErrStatisticsInvariant, column, fileID)
	}
}

// decodeIntegerBounds widens the raw bounds of an integer-family column
// onto the int64 axis
func decodeIntegerBounds(stats *metadata.Statistics) (IntegerRange, bool) {
	switch stats.Kind {
	case metadata.KindInt32:
		return IntegerRange{
			Min: int64(int32(binary.LittleEndian.Uint32(stats.Min))),
			Max: int64(int32(binary.LittleEndian.Uint32(stats.Max))),
		}, true
	case metadata.KindInt64:
		return IntegerRange{
			Min: int64(binary.LittleEndian.Uint64(stats.Min)),
			Max: int64(binary.LittleEndian.Uint64(stats.Max)),
		}, true
	default:
		return IntegerRange{}, false
	}
}

// overflowsLogicalType reports whether either bound falls outside the
// logical type's representable range
func overflowsLogicalType(bounds IntegerRange, logical metadata.LogicalType) bool {
	var lo, hi int64
	switch logical {
	case metadata.LogicalInt8:
		lo, hi = math.MinInt8, math.MaxInt8
	case metadata.LogicalInt16:
		lo, hi = math.MinInt16, math.MaxInt16
	case metadata.LogicalInt32, metadata.LogicalDate:
		lo, hi = math.MinInt32, math.MaxInt32
	default:
		return false
	}
	return bounds.Min < lo || bounds.Min > hi || bounds.Max < lo || bounds.Max > hi
}
