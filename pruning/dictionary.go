package pruning

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/parquet-go/parquet-go/encoding/plain"
	"github.com/parquet-go/parquet-go/encoding/thrift"
	"github.com/parquet-go/parquet-go/format"

	"parquetscan/common"
	"parquetscan/metadata"
)

// DictionaryDescriptor pairs a column's raw dictionary page bytes with
// the column identity needed to decode them. A nil Page means the column
// has no usable dictionary; the page is decoded lazily, on the first
// pruning decision that needs it.
type DictionaryDescriptor struct {
	Path    metadata.ColumnPath
	Kind    metadata.Kind
	Logical metadata.LogicalType
	Codec   metadata.CompressionCodec
	Page    []byte
}

var dictionaryThriftProtocol = new(thrift.CompactProtocol)

// ReadDictionaryPage reads a column chunk's dictionary page from the
// byte source. The returned descriptor has a nil Page when the chunk has
// no dictionary, or when its pages are not guaranteed to be fully
// dictionary-encoded; in that case an exact value set cannot be
// derived, so the dictionary must not be used for pruning. Only a
// transport failure is reported as an error.
func ReadDictionaryPage(src metadata.ByteSource, chunk *metadata.ColumnChunkMetadata) (*DictionaryDescriptor, error) {
	descriptor := &DictionaryDescriptor{
		Path:    chunk.Path,
		Kind:    chunk.Node.Kind,
		Logical: chunk.Node.Logical,
		Codec:   chunk.Codec,
	}
	if !chunk.HasDictionaryPage() || !OnlyDictionaryEncoded(chunk) {
		return descriptor, nil
	}

	length := chunk.DataPageOffset - chunk.DictionaryPageOffset
	page := make([]byte, length)
	if _, err := src.ReadAt(page, chunk.DictionaryPageOffset); err != nil {
		return nil, fmt.Errorf("failed to read dictionary page for column %q: %w", chunk.Path, err)
	}
	descriptor.Page = page
	return descriptor, nil
}

// OnlyDictionaryEncoded reports whether every data page of the chunk is
// guaranteed to be dictionary-encoded. Repetition and definition levels
// use RLE or bit-packing regardless, so those encodings do not count
// against the guarantee.
func OnlyDictionaryEncoded(chunk *metadata.ColumnChunkMetadata) bool {
	hasDictionary := false
	for _, e := range chunk.Encodings {
		switch e {
		case metadata.EncodingPlainDictionary, metadata.EncodingRLEDictionary:
			hasDictionary = true
		case metadata.EncodingRLE, metadata.EncodingBitPacked:
			// levels only
		default:
			return false
		}
	}
	return hasDictionary
}

// DomainFromDictionary decodes a dictionary page into the exact, finite
// domain of values its column can take: every entry plus null. Any
// decode problem degrades to the unconstrained domain, since a failure
// to read the dictionary must never be mistaken for "no values
// possible".
func DomainFromDictionary(descriptor *DictionaryDescriptor) *Domain {
	if descriptor == nil || descriptor.Page == nil {
		return All()
	}

	values, ok := decodeDictionaryValues(descriptor)
	if !ok {
		common.GetTracer().Debug(common.TraceComponentDictionary, "Dictionary page undecodable, not pruning", common.TraceContext(
			"column", descriptor.Path.String(),
		))
		return All()
	}
	// Dictionary encoding guarantees every stored value is one of the
	// entries or a null, so the union below is exact, not conservative.
	return UnionValues(values, true)
}

func decodeDictionaryValues(descriptor *DictionaryDescriptor) ([]Value, bool) {
	reader := bytes.NewReader(descriptor.Page)
	decoder := thrift.NewDecoder(dictionaryThriftProtocol.NewReader(reader))

	header := new(format.PageHeader)
	if err := decoder.Decode(header); err != nil {
		return nil, false
	}
	if header.Type != format.DictionaryPage || header.DictionaryPageHeader == nil {
		return nil, false
	}
	dictHeader := header.DictionaryPageHeader
	if dictHeader.Encoding != format.Plain && dictHeader.Encoding != format.PlainDictionary {
		return nil, false
	}
	numValues := int(dictHeader.NumValues)
	if numValues < 0 || header.CompressedPageSize < 0 {
		return nil, false
	}

	compressed := make([]byte, header.CompressedPageSize)
	if _, err := io.ReadFull(reader, compressed); err != nil {
		return nil, false
	}
	data, ok := decompressPage(compressed, descriptor.Codec)
	if !ok || len(data) != int(header.UncompressedPageSize) {
		return nil, false
	}
	return decodePlainValues(data, numValues, descriptor)
}

func decompressPage(compressed []byte, codec metadata.CompressionCodec) ([]byte, bool) {
	switch codec {
	case metadata.CompressionUncompressed:
		return compressed, true
	case metadata.CompressionSnappy:
		data, err := snappy.Decode(nil, compressed)
		if err != nil {
			return nil, false
		}
		return data, true
	case metadata.CompressionGzip:
		r, err := gzip.NewReader(bytes.NewReader(compressed))
		if err != nil {
			return nil, false
		}
		defer r.Close()
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, false
		}
		return data, true
	case metadata.CompressionZstd:
		r, err := zstd.NewReader(nil)
		if err != nil {
			return nil, false
		}
		defer r.Close()
		data, err := r.DecodeAll(compressed, nil)
		if err != nil {
			return nil, false
		}
		return data, true
	default:
		return nil, false
	}
}

// decodePlainValues decodes the dictionary's plain-encoded entries to
// the logical type's native representation, applying the same widening
// rules the statistics converter uses: 32-bit integers widen onto the
// int64 axis, and 32-bit floats widen to double when the logical type is
// double.
func decodePlainValues(data []byte, numValues int, descriptor *DictionaryDescriptor) ([]Value, bool) {
	values := make([]Value, 0, numValues)

	switch descriptor.Kind {
	case metadata.KindInt32:
		if !integerFamily(descriptor.Logical) {
			return nil, false
		}
		if len(data) != 4*numValues {
			return nil, false
		}
		for i := 0; i < numValues; i++ {
			v := int32(binary.LittleEndian.Uint32(data[4*i:]))
			values = append(values, Int64Value(int64(v)))
		}

	case metadata.KindInt64:
		if !integerFamily(descriptor.Logical) {
			return nil, false
		}
		if len(data) != 8*numValues {
			return nil, false
		}
		for i := 0; i < numValues; i++ {
			v := int64(binary.LittleEndian.Uint64(data[8*i:]))
			values = append(values, Int64Value(v))
		}

	case metadata.KindFloat:
		if len(data) != 4*numValues {
			return nil, false
		}
		for i := 0; i < numValues; i++ {
			v := math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
			switch descriptor.Logical {
			case metadata.LogicalFloat:
				values = append(values, Float32Value(v))
			case metadata.LogicalDouble:
				values = append(values, Float64Value(float64(v)))
			default:
				return nil, false
			}
		}

	case metadata.KindDouble:
		if descriptor.Logical != metadata.LogicalDouble {
			return nil, false
		}
		if len(data) != 8*numValues {
			return nil, false
		}
		for i := 0; i < numValues; i++ {
			v := math.Float64frombits(binary.LittleEndian.Uint64(data[8*i:]))
			values = append(values, Float64Value(v))
		}

	case metadata.KindByteArray:
		if !bytesFamily(descriptor.Logical) {
			return nil, false
		}
		err := plain.RangeByteArray(data, func(v []byte) error {
			values = append(values, BytesValue(v))
			return nil
		})
		if err != nil || len(values) != numValues {
			return nil, false
		}

	case metadata.KindFixedLenByteArray:
		if !bytesFamily(descriptor.Logical) {
			return nil, false
		}
		if numValues > 0 && (len(data)%numValues != 0) {
			return nil, false
		}
		width := 0
		if numValues > 0 {
			width = len(data) / numValues
		}
		for i := 0; i < numValues; i++ {
			values = append(values, BytesValue(data[i*width:(i+1)*width]))
		}

	default:
		return nil, false
	}

	return values, true
}

func integerFamily(logical metadata.LogicalType) bool {
	switch logical {
	case metadata.LogicalInt8, metadata.LogicalInt16, metadata.LogicalInt32, metadata.LogicalInt64, metadata.LogicalDate:
		return true
	default:
		return false
	}
}

func bytesFamily(logical metadata.LogicalType) bool {
	switch logical {
	case metadata.LogicalString, metadata.LogicalEnum, metadata.LogicalJSON, metadata.LogicalBSON, metadata.LogicalBinary:
		return true
	default:
		return false
	}
}
