package datautil

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
)

// ReadCSV reads a CSV file into records keyed by the header row.
// Short rows leave the remaining columns empty.
func ReadCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse CSV %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	header := rows[0]
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			} else {
				rec[col] = ""
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// WriteCSV writes records to path as CSV. The header is taken from
// columns when given, otherwise from the first record's keys in
// sorted order. Missing fields are written empty.
func WriteCSV(path string, records []map[string]string, columns ...string) error {
	if len(columns) == 0 {
		if len(records) == 0 {
			return fmt.Errorf("write CSV %s: no records and no columns", path)
		}
		for col := range records[0] {
			columns = append(columns, col)
		}
		sort.Strings(columns)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		f.Close()
		return fmt.Errorf("write CSV header: %w", err)
	}
	row := make([]string, len(columns))
	for _, rec := range records {
		for i, col := range columns {
			row[i] = rec[col]
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush CSV: %w", err)
	}
	return f.Close()
}
