package source

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

func loadJSONFile(origin string) (*Dataset, error) {
	f, err := os.Open(origin)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer f.Close()
	return parseJSON(origin, f)
}

// parseJSON reads an array of flat objects. The field set is taken from
// the first object (sorted for a stable order); every later object must
// carry exactly the same keys.
func parseJSON(origin string, r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading json: %v", ErrUnavailable, err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parsing json: %v", ErrUnavailable, err)
	}

	var fields []string
	records := make([]RawRecord, 0, len(raw))
	for i, obj := range raw {
		if fields == nil {
			for k := range obj {
				fields = append(fields, k)
			}
			sort.Strings(fields)
		}
		rec := make(RawRecord, len(fields))
		for _, f := range fields {
			v, ok := obj[f]
			if !ok {
				return nil, fmt.Errorf("%w: record %d missing field %q", ErrSchemaMismatch, i, f)
			}
			rec[f] = v
		}
		if len(obj) != len(fields) {
			return nil, fmt.Errorf("%w: record %d has extra fields", ErrSchemaMismatch, i)
		}
		records = append(records, rec)
	}

	return newDataset(origin, fields, records)
}
