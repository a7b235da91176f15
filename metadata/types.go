package metadata

import (
	"fmt"

	"github.com/parquet-go/parquet-go/deprecated"
	"github.com/parquet-go/parquet-go/format"
)

// Kind identifies the physical encoding of a column's values on disk
type Kind int

const (
	KindBoolean Kind = iota
	KindInt32
	KindInt64
	KindInt96
	KindFloat
	KindDouble
	KindByteArray
	KindFixedLenByteArray
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "BOOLEAN"
	case KindInt32:
		return "INT32"
	case KindInt64:
		return "INT64"
	case KindInt96:
		return "INT96"
	case KindFloat:
		return "FLOAT"
	case KindDouble:
		return "DOUBLE"
	case KindByteArray:
		return "BYTE_ARRAY"
	case KindFixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(k))
	}
}

func kindOf(t format.Type) (Kind, bool) {
	switch t {
	case format.Boolean:
		return KindBoolean, true
	case format.Int32:
		return KindInt32, true
	case format.Int64:
		return KindInt64, true
	case format.Int96:
		return KindInt96, true
	case format.Float:
		return KindFloat, true
	case format.Double:
		return KindDouble, true
	case format.ByteArray:
		return KindByteArray, true
	case format.FixedLenByteArray:
		return KindFixedLenByteArray, true
	default:
		return 0, false
	}
}

// LogicalType is the logical interpretation of a primitive column,
// derived from the file's type annotations
type LogicalType int

const (
	LogicalNone LogicalType = iota // unannotated; interpreted by physical kind
	LogicalBoolean
	LogicalInt8
	LogicalInt16
	LogicalInt32
	LogicalInt64
	LogicalUint8
	LogicalUint16
	LogicalUint32
	LogicalUint64
	LogicalFloat
	LogicalDouble
	LogicalDate
	LogicalString
	LogicalEnum
	LogicalJSON
	LogicalBSON
	LogicalBinary
	LogicalDecimal
	LogicalTimeMillis
	LogicalTimeMicros
	LogicalTimestampMillis
	LogicalTimestampMicros
	LogicalInterval
	LogicalMap
	LogicalMapKeyValue
	LogicalList
)

// String returns the string representation of LogicalType
func (lt LogicalType) String() string {
	names := map[LogicalType]string{
		LogicalNone:            "NONE",
		LogicalBoolean:         "BOOLEAN",
		LogicalInt8:            "INT8",
		LogicalInt16:           "INT16",
		LogicalInt32:           "INT32",
		LogicalInt64:           "INT64",
		LogicalUint8:           "UINT8",
		LogicalUint16:          "UINT16",
		LogicalUint32:          "UINT32",
		LogicalUint64:          "UINT64",
		LogicalFloat:           "FLOAT",
		LogicalDouble:          "DOUBLE",
		LogicalDate:            "DATE",
		LogicalString:          "STRING",
		LogicalEnum:            "ENUM",
		LogicalJSON:            "JSON",
		LogicalBSON:            "BSON",
		LogicalBinary:          "BINARY",
		LogicalDecimal:         "DECIMAL",
		LogicalTimeMillis:      "TIME_MILLIS",
		LogicalTimeMicros:      "TIME_MICROS",
		LogicalTimestampMillis: "TIMESTAMP_MILLIS",
		LogicalTimestampMicros: "TIMESTAMP_MICROS",
		LogicalInterval:        "INTERVAL",
		LogicalMap:             "MAP",
		LogicalMapKeyValue:     "MAP_KEY_VALUE",
		LogicalList:            "LIST",
	}
	if name, ok := names[lt]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(lt))
}

// convertedTypeMapping is the total mapping from the wire-level converted
// type enumeration to the internal logical types. A wire value outside
// this table is rejected rather than guessed at.
var convertedTypeMapping = map[deprecated.ConvertedType]LogicalType{
	deprecated.UTF8:            LogicalString,
	deprecated.Map:             LogicalMap,
	deprecated.MapKeyValue:     LogicalMapKeyValue,
	deprecated.List:            LogicalList,
	deprecated.Enum:            LogicalEnum,
	deprecated.Decimal:         LogicalDecimal,
	deprecated.Date:            LogicalDate,
	deprecated.TimeMillis:      LogicalTimeMillis,
	deprecated.TimeMicros:      LogicalTimeMicros,
	deprecated.TimestampMillis: LogicalTimestampMillis,
	deprecated.TimestampMicros: LogicalTimestampMicros,
	deprecated.Uint8:           LogicalUint8,
	deprecated.Uint16:          LogicalUint16,
	deprecated.Uint32:          LogicalUint32,
	deprecated.Uint64:          LogicalUint64,
	deprecated.Int8:            LogicalInt8,
	deprecated.Int16:           LogicalInt16,
	deprecated.Int32:           LogicalInt32,
	deprecated.Int64:           LogicalInt64,
	deprecated.Json:            LogicalJSON,
	deprecated.Bson:            LogicalBSON,
	deprecated.Interval:        LogicalInterval,
}

// defaultLogicalType maps an unannotated primitive to the logical type
// implied by its physical kind
func defaultLogicalType(kind Kind) LogicalType {
	switch kind {
	case KindBoolean:
		return LogicalBoolean
	case KindInt32:
		return LogicalInt32
	case KindInt64:
		return LogicalInt64
	case KindFloat:
		return LogicalFloat
	case KindDouble:
		return LogicalDouble
	case KindByteArray, KindFixedLenByteArray:
		return LogicalBinary
	default:
		return LogicalNone
	}
}

// CompressionCodec identifies the compression applied to a column chunk
type CompressionCodec int

const (
	CompressionUncompressed CompressionCodec = iota
	CompressionSnappy
	CompressionGzip
	CompressionLZO
	CompressionBrotli
	CompressionLZ4
	CompressionZstd
	CompressionLZ4Raw
)

// String returns the string representation of CompressionCodec
func (c CompressionCodec) String() string {
	switch c {
	case CompressionUncompressed:
		return "UNCOMPRESSED"
	case CompressionSnappy:
		return "SNAPPY"
	case CompressionGzip:
		return "GZIP"
	case CompressionLZO:
		return "LZO"
	case CompressionBrotli:
		return "BROTLI"
	case CompressionLZ4:
		return "LZ4"
	case CompressionZstd:
		return "ZSTD"
	case CompressionLZ4Raw:
		return "LZ4_RAW"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(c))
	}
}

func codecOf(c format.CompressionCodec) (CompressionCodec, bool) {
	switch c {
	case format.Uncompressed:
		return CompressionUncompressed, true
	case format.Snappy:
		return CompressionSnappy, true
	case format.Gzip:
		return CompressionGzip, true
	case format.LZO:
		return CompressionLZO, true
	case format.Brotli:
		return CompressionBrotli, true
	case format.Lz4:
		return CompressionLZ4, true
	case format.Zstd:
		return CompressionZstd, true
	case format.Lz4Raw:
		return CompressionLZ4Raw, true
	default:
		return 0, false
	}
}

// Encoding identifies how values within a page are encoded
type Encoding int

const (
	EncodingPlain Encoding = iota
	EncodingPlainDictionary
	EncodingRLE
	EncodingBitPacked
	EncodingDeltaBinaryPacked
	EncodingDeltaLengthByteArray
	EncodingDeltaByteArray
	EncodingRLEDictionary
	EncodingByteStreamSplit
)

// String returns the string representation of Encoding
func (e Encoding) String() string {
	switch e {
	case EncodingPlain:
		return "PLAIN"
	case EncodingPlainDictionary:
		return "PLAIN_DICTIONARY"
	case EncodingRLE:
		return "RLE"
	case EncodingBitPacked:
		return "BIT_PACKED"
	case EncodingDeltaBinaryPacked:
		return "DELTA_BINARY_PACKED"
	case EncodingDeltaLengthByteArray:
		return "DELTA_LENGTH_BYTE_ARRAY"
	case EncodingDeltaByteArray:
		return "DELTA_BYTE_ARRAY"
	case EncodingRLEDictionary:
		return "RLE_DICTIONARY"
	case EncodingByteStreamSplit:
		return "BYTE_STREAM_SPLIT"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(e))
	}
}

func encodingOf(e format.Encoding) (Encoding, bool) {
	switch e {
	case format.Plain:
		return EncodingPlain, true
	case format.PlainDictionary:
		return EncodingPlainDictionary, true
	case format.RLE:
		return EncodingRLE, true
	case format.BitPacked:
		return EncodingBitPacked, true
	case format.DeltaBinaryPacked:
		return EncodingDeltaBinaryPacked, true
	case format.DeltaLengthByteArray:
		return EncodingDeltaLengthByteArray, true
	case format.DeltaByteArray:
		return EncodingDeltaByteArray, true
	case format.RLEDictionary:
		return EncodingRLEDictionary, true
	case format.ByteStreamSplit:
		return EncodingByteStreamSplit, true
	default:
		return 0, false
	}
}
