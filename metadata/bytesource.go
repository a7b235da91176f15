package metadata

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"os"

	"howett.net/ranger"
)

// ByteSource is a random-access readable range with a known total
// length. The footer parser issues exactly two reads against it: the
// fixed-size trailer and the variable-length metadata block.
type ByteSource interface {
	io.ReaderAt
	Size() int64
}

// LocalFileSource is a ByteSource over a file on disk
type LocalFileSource struct {
	file *os.File
	size int64
	name string
}

// OpenLocalFile opens a file on disk as a ByteSource
func OpenLocalFile(path string) (*LocalFileSource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to get file stats: %w", err)
	}
	return &LocalFileSource{file: file, size: info.Size(), name: path}, nil
}

// ReadAt implements io.ReaderAt
func (s *LocalFileSource) ReadAt(p []byte, off int64) (int, error) {
	return s.file.ReadAt(p, off)
}

// Size returns the total file length
func (s *LocalFileSource) Size() int64 {
	return s.size
}

// Name returns the path the source was opened with
func (s *LocalFileSource) Name() string {
	return s.name
}

// Close releases the underlying file
func (s *LocalFileSource) Close() error {
	return s.file.Close()
}

// HTTPSource is a ByteSource over a remote file served with HTTP range
// request support
type HTTPSource struct {
	reader *ranger.Reader
	size   int64
	url    string
}

// OpenHTTP opens a remote file as a ByteSource using HTTP range requests
func OpenHTTP(urlStr string) (*HTTPSource, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	httpRanger := &ranger.HTTPRanger{URL: parsedURL}
	reader, err := ranger.NewReader(httpRanger)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP reader: %w", err)
	}
	length, err := reader.Length()
	if err != nil {
		return nil, fmt.Errorf("failed to get HTTP content length: %w", err)
	}
	return &HTTPSource{reader: reader, size: length, url: urlStr}, nil
}

// ReadAt implements io.ReaderAt
func (s *HTTPSource) ReadAt(p []byte, off int64) (int, error) {
	return s.reader.ReadAt(p, off)
}

// Size returns the remote content length
func (s *HTTPSource) Size() int64 {
	return s.size
}

// URL returns the URL the source was opened with
func (s *HTTPSource) URL() string {
	return s.url
}

// BytesSource is an in-memory ByteSource, mainly useful in tests
type BytesSource struct {
	reader *bytes.Reader
}

// NewBytesSource wraps a byte slice as a ByteSource
func NewBytesSource(data []byte) *BytesSource {
	return &BytesSource{reader: bytes.NewReader(data)}
}

// ReadAt implements io.ReaderAt
func (s *BytesSource) ReadAt(p []byte, off int64) (int, error) {
	return s.reader.ReadAt(p, off)
}

// Size returns the buffer length
func (s *BytesSource) Size() int64 {
	return s.reader.Size()
}
