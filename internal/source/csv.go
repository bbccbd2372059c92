package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

func loadCSVFile(origin string) (*Dataset, error) {
	f, err := os.Open(origin)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer f.Close()
	return parseCSV(origin, f)
}

// parseCSV reads a header row plus data rows. Values that parse as numbers
// become float64 so downstream operations can aggregate without casts.
// csv.Reader enforces a uniform column count, so a ragged row surfaces as
// a schema mismatch rather than a parse failure.
func parseCSV(origin string, r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading csv header: %v", ErrUnavailable, err)
	}

	var records []RawRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			if _, ok := err.(*csv.ParseError); ok {
				return nil, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
			}
			return nil, fmt.Errorf("%w: reading csv row: %v", ErrUnavailable, err)
		}
		rec := make(RawRecord, len(header))
		for i, field := range header {
			if n, err := strconv.ParseFloat(row[i], 64); err == nil {
				rec[field] = n
			} else {
				rec[field] = row[i]
			}
		}
		records = append(records, rec)
	}

	return newDataset(origin, header, records)
}
