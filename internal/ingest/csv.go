// Package ingest loads tabular transcript data into evaluation datasets.
// The only format currently supported is CSV with a header row; the column
// mapping comes from the dataset section of the configuration.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/werbench/werbench/pkg/eval"
)

// Columns maps CSV header names to their roles.
type Columns struct {
	// Ref and Hyp are the reference and hypothesis column names.
	Ref string
	Hyp string

	// Keywords lists columns whose cells hold ';'-separated keyword lists.
	Keywords []string
}

// Row is one ingested reference/hypothesis pair.
type Row struct {
	Ref      string
	Hyp      string
	Keywords []string
}

// ReadCSV parses rows from r. The first record is the header; ref and hyp
// columns must be present, keyword columns are looked up when listed.
// Records may omit trailing fields.
func ReadCSV(r io.Reader, cols Columns) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("ingest: read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	refIdx, ok := index[cols.Ref]
	if !ok {
		return nil, fmt.Errorf("ingest: reference column %q not in header %v", cols.Ref, header)
	}
	hypIdx, ok := index[cols.Hyp]
	if !ok {
		return nil, fmt.Errorf("ingest: hypothesis column %q not in header %v", cols.Hyp, header)
	}
	kwIdxs := make([]int, 0, len(cols.Keywords))
	for _, name := range cols.Keywords {
		idx, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("ingest: keyword column %q not in header %v", name, header)
		}
		kwIdxs = append(kwIdxs, idx)
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: line %d: %w", line, err)
		}

		row := Row{Ref: field(record, refIdx), Hyp: field(record, hypIdx)}
		for _, idx := range kwIdxs {
			row.Keywords = append(row.Keywords, splitKeywords(field(record, idx))...)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadCSV reads the file at path and parses it with [ReadCSV].
func LoadCSV(path string, cols Columns) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open %q: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f, cols)
}

// Populate appends every row to ds and returns the number added.
func Populate(ds *eval.Dataset, rows []Row) int {
	for _, row := range rows {
		ds.Add(row.Ref, row.Hyp, row.Keywords...)
	}
	return len(rows)
}

func field(record []string, idx int) string {
	if idx >= len(record) {
		return ""
	}
	return record[idx]
}

// splitKeywords splits a ';'-separated cell into trimmed, non-empty terms.
func splitKeywords(cell string) []string {
	if strings.TrimSpace(cell) == "" {
		return nil
	}
	parts := strings.Split(cell, ";")
	keywords := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keywords = append(keywords, p)
		}
	}
	return keywords
}
