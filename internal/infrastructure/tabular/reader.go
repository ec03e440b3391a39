// Package tabular reads uploaded CSV rosters.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/orris-inc/licensing/internal/domain/licensing"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row is one data record keyed by lower-cased header name.
type Row struct {
	Line   int
	values map[string]string
}

// Get returns the trimmed value of column, or "" when absent.
func (r Row) Get(column string) string {
	return r.values[column]
}

// Extra returns the non-empty values of columns not listed in known.
func (r Row) Extra(known []string) map[string]string {
	skip := make(map[string]struct{}, len(known))
	for _, k := range known {
		skip[k] = struct{}{}
	}
	var out map[string]string
	for k, v := range r.values {
		if _, ok := skip[k]; ok || v == "" {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[k] = v
	}
	return out
}

// Reader yields roster rows one at a time.
type Reader struct {
	csv     *csv.Reader
	columns []string
}

// NewReader parses the header and checks that every required column exists.
// Header names are trimmed and lower-cased.
func NewReader(content []byte, required []string) (*Reader, error) {
	content = bytes.TrimPrefix(content, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(content))
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &licensing.CSVError{Reason: "missing header row"}
	}
	if err != nil {
		return nil, toCSVError(err)
	}

	columns := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if name == "" {
			return nil, &licensing.CSVError{Line: 1, Reason: fmt.Sprintf("column %d has no name", i+1)}
		}
		if _, dup := seen[name]; dup {
			return nil, &licensing.CSVError{Line: 1, Reason: fmt.Sprintf("duplicate column %q", name)}
		}
		seen[name] = struct{}{}
		columns[i] = name
	}

	var missing []string
	for _, req := range required {
		if _, ok := seen[req]; !ok {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &licensing.CSVError{Line: 1, Reason: "missing required columns: " + strings.Join(missing, ", ")}
	}

	return &Reader{csv: cr, columns: columns}, nil
}

// Columns returns the normalized header.
func (r *Reader) Columns() []string {
	return r.columns
}

// Next returns the next non-blank row, or io.EOF when the file is exhausted.
func (r *Reader) Next() (Row, error) {
	for {
		record, err := r.csv.Read()
		if errors.Is(err, io.EOF) {
			return Row{}, io.EOF
		}
		if err != nil {
			return Row{}, toCSVError(err)
		}
		line, _ := r.csv.FieldPos(0)

		values := make(map[string]string, len(record))
		blank := true
		for i, v := range record {
			v = strings.TrimSpace(v)
			if v != "" {
				blank = false
			}
			values[r.columns[i]] = v
		}
		if blank {
			continue
		}
		return Row{Line: line, values: values}, nil
	}
}

func toCSVError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &licensing.CSVError{Line: pe.Line, Reason: pe.Err.Error()}
	}
	return &licensing.CSVError{Reason: err.Error()}
}
