// Package export turns filtered collections and invoice payloads into downloadable
// artifacts and stores them.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// Column describes one CSV column.
type Column[T any] struct {
	Label string
	Key   string
	Value func(T) string
}

// WriteCSV writes a header row of column labels followed by one row per record.
func WriteCSV[T any](w io.Writer, columns []Column[T], rows []T) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Label
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	record := make([]string, len(columns))
	for _, r := range rows {
		for i, c := range columns {
			record[i] = c.Value(r)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// CSVArtifact renders rows into an in-memory CSV artifact.
func CSVArtifact[T any](name string, columns []Column[T], rows []T) (*Artifact, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, columns, rows); err != nil {
		return nil, err
	}
	return &Artifact{
		Name:        name,
		ContentType: ContentTypeCSV,
		Body:        buf.Bytes(),
	}, nil
}
