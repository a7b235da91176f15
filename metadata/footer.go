package metadata

import (
	"errors"
	"fmt"

	"github.com/parquet-go/parquet-go/encoding/thrift"
	"github.com/parquet-go/parquet-go/format"

	"parquetscan/common"
)

// Structural failure classes. Any of these means the file cannot be
// interpreted safely; none of them is retried at this layer.
var (
	ErrMalformedFooter        = errors.New("malformed parquet footer")
	ErrCorruptFooter          = errors.New("corrupt parquet footer")
	ErrEmptySchema            = errors.New("parquet file has an empty schema")
	ErrInconsistentRowGroup   = errors.New("inconsistent row group")
	ErrUnsupportedEncoding    = errors.New("unsupported encoding")
	ErrUnsupportedLogicalType = errors.New("unsupported logical type")
)

const (
	magicToken  = "PAR1"
	magicLength = len(magicToken)
	trailerSize = 4 + magicLength // length field + trailing magic
)

var thriftProtocol = new(thrift.CompactProtocol)

// FileMetadata is everything the footer says about a file: the schema
// tree, the row-group records, and the file-level annotations. It is
// built once per file and never mutated, so it is safe to share across
// concurrently evaluated queries.
type FileMetadata struct {
	Schema           *SchemaNode
	RowGroups        []RowGroupMetadata
	KeyValueMetadata map[string]string
	CreatedBy        string
	NumRows          int64
}

// ParseFooter validates the file trailer, decodes the metadata block and
// reconstructs the schema tree and row-group records.
//
// The trailer layout is fixed: a 4-byte magic token at both ends of the
// file, and immediately before the trailing magic a 4-byte little-endian
// length of the serialized metadata block, which occupies the bytes just
// before the length field.
func ParseFooter(src ByteSource) (*FileMetadata, error) {
	tracer := common.GetTracer()
	size := src.Size()

	if size < int64(2*magicLength+4) {
		return nil, fmt.Errorf("%w: file is %d bytes, shorter than the fixed overhead", ErrMalformedFooter, size)
	}

	trailer := make([]byte, trailerSize)
	if _, err := src.ReadAt(trailer, size-int64(trailerSize)); err != nil {
		return nil, fmt.Errorf("%w: reading trailer: %v", ErrMalformedFooter, err)
	}
	if string(trailer[4:]) != magicToken {
		return nil, fmt.Errorf("%w: trailing magic %q", ErrMalformedFooter, trailer[4:])
	}

	metadataLength := int64(uint32(trailer[0]) | uint32(trailer[1])<<8 | uint32(trailer[2])<<16 | uint32(trailer[3])<<24)
	metadataStart := size - int64(trailerSize) - metadataLength
	if metadataStart < int64(magicLength) || metadataStart >= size-int64(trailerSize) {
		return nil, fmt.Errorf("%w: metadata length %d inconsistent with file size %d",
			ErrCorruptFooter, metadataLength, size)
	}

	tracer.Debug(common.TraceComponentFooter, "Reading metadata block", common.TraceContext(
		"offset", metadataStart,
		"length", metadataLength,
	))

	block := make([]byte, metadataLength)
	if _, err := src.ReadAt(block, metadataStart); err != nil {
		return nil, fmt.Errorf("%w: reading metadata block: %v", ErrCorruptFooter, err)
	}

	var raw format.FileMetaData
	if err := thrift.Unmarshal(thriftProtocol, block, &raw); err != nil {
		return nil, fmt.Errorf("%w: decoding metadata block: %v", ErrCorruptFooter, err)
	}
	if len(raw.Schema) == 0 {
		return nil, ErrEmptySchema
	}

	schema, err := buildSchemaTree(raw.Schema)
	if err != nil {
		return nil, err
	}

	rowGroups := make([]RowGroupMetadata, 0, len(raw.RowGroups))
	for i := range raw.RowGroups {
		rowGroup, err := convertRowGroup(&raw.RowGroups[i], schema)
		if err != nil {
			return nil, fmt.Errorf("row group %d: %w", i, err)
		}
		rowGroups = append(rowGroups, *rowGroup)
	}

	keyValue := make(map[string]string, len(raw.KeyValueMetadata))
	for _, kv := range raw.KeyValueMetadata {
		keyValue[kv.Key] = kv.Value
	}

	tracer.Debug(common.TraceComponentFooter, "Footer parsed", common.TraceContext(
		"rowGroups", len(rowGroups),
		"numRows", raw.NumRows,
		"createdBy", raw.CreatedBy,
	))

	return &FileMetadata{
		Schema:           schema,
		RowGroups:        rowGroups,
		KeyValueMetadata: keyValue,
		CreatedBy:        raw.CreatedBy,
		NumRows:          raw.NumRows,
	}, nil
}

func convertRowGroup(raw *format.RowGroup, schema *SchemaNode) (*RowGroupMetadata, error) {
	if len(raw.Columns) == 0 {
		return nil, fmt.Errorf("%w: no column chunks", ErrCorruptFooter)
	}

	rowGroup := &RowGroupMetadata{
		NumRows:       raw.NumRows,
		TotalByteSize: raw.TotalByteSize,
		Columns:       make([]ColumnChunkMetadata, 0, len(raw.Columns)),
	}

	for i := range raw.Columns {
		rawChunk := &raw.Columns[i]

		// Every chunk in one row group must live in the same file.
		if i == 0 {
			rowGroup.FilePath = rawChunk.FilePath
		} else if rawChunk.FilePath != rowGroup.FilePath {
			return nil, fmt.Errorf("%w: column %d file path %q differs from %q",
				ErrInconsistentRowGroup, i, rawChunk.FilePath, rowGroup.FilePath)
		}

		chunk, err := convertColumnChunk(rawChunk, schema)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i, err)
		}
		rowGroup.Columns = append(rowGroup.Columns, *chunk)
	}
	return rowGroup, nil
}

func convertColumnChunk(raw *format.ColumnChunk, schema *SchemaNode) (*ColumnChunkMetadata, error) {
	meta := &raw.MetaData
	path := NewColumnPath(meta.PathInSchema...)

	node := schema.Lookup(path)
	if node == nil {
		return nil, fmt.Errorf("%w: column %q not found in schema", ErrCorruptFooter, path)
	}

	kind, ok := kindOf(meta.Type)
	if !ok {
		return nil, fmt.Errorf("%w: physical type %d for column %q", ErrUnsupportedEncoding, meta.Type, path)
	}
	if kind != node.Kind {
		return nil, fmt.Errorf("%w: column %q is %s in the chunk but %s in the schema",
			ErrCorruptFooter, path, kind, node.Kind)
	}

	// Silently accepting an unknown codec or encoding risks
	// misinterpreting bytes later in the pipeline, so neither is ever
	// downgraded to a warning.
	codec, ok := codecOf(meta.Codec)
	if !ok {
		return nil, fmt.Errorf("%w: compression codec %d for column %q", ErrUnsupportedEncoding, meta.Codec, path)
	}
	encodings := make([]Encoding, 0, len(meta.Encoding))
	for _, rawEncoding := range meta.Encoding {
		encoding, ok := encodingOf(rawEncoding)
		if !ok {
			return nil, fmt.Errorf("%w: encoding %d for column %q", ErrUnsupportedEncoding, rawEncoding, path)
		}
		encodings = append(encodings, encoding)
	}

	return &ColumnChunkMetadata{
		Path:                  path,
		Node:                  node,
		Codec:                 codec,
		Encodings:             encodings,
		Statistics:            decodeStatistics(&meta.Statistics, kind),
		DataPageOffset:        meta.DataPageOffset,
		DictionaryPageOffset:  meta.DictionaryPageOffset,
		NumValues:             meta.NumValues,
		TotalCompressedSize:   meta.TotalCompressedSize,
		TotalUncompressedSize: meta.TotalUncompressedSize,
	}, nil
}
