// Package tape reads and validates delimited tape files as delivered
// by sellers and servicers: loan tapes at acquisition, monthly
// servicing extracts afterward. Files are UTF-8 CSV with a header row;
// a leading BOM is tolerated because several servicer platforms export
// one.
package tape

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const bomCheckBytes = 3

// Reader parses a tape file row by row, mapping each record to its
// header columns. Header names are normalized to lower case so files
// survive the usual SELLER_LOAN_NUMBER / Seller_Loan_Number drift.
type Reader struct {
	csv        *csv.Reader
	buf        *bufio.Reader
	headers    []string
	headerIdx  map[string]int
	currentRow int
	dataRows   int
}

// ReaderOption configures a Reader
type ReaderOption func(*Reader)

// WithDelimiter overrides the comma delimiter. Some servicers still
// ship pipe-delimited extracts.
func WithDelimiter(d rune) ReaderOption {
	return func(r *Reader) {
		r.csv.Comma = d
	}
}

// NewReader wraps an uploaded tape file. The file must be UTF-8; a
// UTF-8 BOM is stripped if present.
func NewReader(src io.Reader, opts ...ReaderOption) (*Reader, error) {
	buf := bufio.NewReader(src)

	head, err := buf.Peek(bomCheckBytes)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read tape file: %w", err)
	}
	if len(head) == bomCheckBytes && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		_, _ = buf.Discard(bomCheckBytes)
	}

	if err := checkUTF8(buf); err != nil {
		return nil, err
	}

	c := csv.NewReader(buf)
	c.LazyQuotes = true
	c.TrimLeadingSpace = true
	c.FieldsPerRecord = -1 // sellers pad or truncate trailing columns freely

	r := &Reader{
		csv:       c,
		buf:       buf,
		headerIdx: make(map[string]int),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func checkUTF8(buf *bufio.Reader) error {
	const probe = 4096
	head, err := buf.Peek(probe)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to probe tape encoding: %w", err)
	}
	if len(head) == 0 {
		return ErrEmptyFile
	}
	if !utf8.Valid(head) {
		return ErrNotUTF8
	}
	return nil
}

// ParseHeader reads the header row and builds the column index
func (r *Reader) ParseHeader() error {
	record, err := r.csv.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read tape header: %w", err)
	}

	r.headers = make([]string, len(record))
	for i, h := range record {
		name := strings.ToLower(strings.TrimSpace(h))
		r.headers[i] = name
		r.headerIdx[name] = i
	}
	if len(r.headers) == 0 {
		return ErrMissingHeader
	}

	r.currentRow = 1
	return nil
}

// Headers returns the normalized header names in file order
func (r *Reader) Headers() []string {
	return r.headers
}

// HasHeader reports whether a column is present
func (r *Reader) HasHeader(name string) bool {
	_, ok := r.headerIdx[name]
	return ok
}

// ValidateHeaders returns the required columns missing from the file
func (r *Reader) ValidateHeaders(required []string) []string {
	var missing []string
	for _, name := range required {
		if !r.HasHeader(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Row is one parsed tape row keyed by normalized header name.
// LineNumber is the 1-indexed physical line, header included.
type Row struct {
	LineNumber int
	Data       map[string]string
}

// Get returns the trimmed value of a column, or "" when absent
func (row *Row) Get(column string) string {
	return row.Data[column]
}

// IsEmpty reports whether every column of the row is blank
func (row *Row) IsEmpty() bool {
	for _, v := range row.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow reads the next data row. Returns io.EOF at end of file.
func (r *Reader) ReadRow() (*Row, error) {
	record, err := r.csv.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	r.currentRow++
	if err != nil {
		return nil, fmt.Errorf("bad record at line %d: %w", r.currentRow, err)
	}
	r.dataRows++

	row := &Row{
		LineNumber: r.currentRow,
		Data:       make(map[string]string, len(r.headers)),
	}
	for i, name := range r.headers {
		if i < len(record) {
			row.Data[name] = strings.TrimSpace(record[i])
		} else {
			row.Data[name] = ""
		}
	}
	return row, nil
}

// CurrentRow returns the physical line number of the last record read
func (r *Reader) CurrentRow() int {
	return r.currentRow
}

// DataRows returns the count of data records read so far
func (r *Reader) DataRows() int {
	return r.dataRows
}
