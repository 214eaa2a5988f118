package datautil

import (
	"fmt"
	"sort"
	"strings"
)

// CleanOptions controls CleanRecords behavior.
type CleanOptions struct {
	// TrimStrings strips leading and trailing whitespace from string
	// values.
	TrimStrings bool
	// DropEmpty removes keys whose value is nil or an empty string
	// after trimming.
	DropEmpty bool
}

// DefaultCleanOptions trims strings and drops empty values.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{TrimStrings: true, DropEmpty: true}
}

// CleanRecords normalizes a slice of records in a single pass. The
// input records are not modified.
func CleanRecords(records []map[string]any, opts CleanOptions) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		cleaned := make(map[string]any, len(rec))
		for k, v := range rec {
			if s, ok := v.(string); ok && opts.TrimStrings {
				v = strings.TrimSpace(s)
			}
			if opts.DropEmpty {
				if v == nil {
					continue
				}
				if s, ok := v.(string); ok && s == "" {
					continue
				}
			}
			cleaned[k] = v
		}
		out = append(out, cleaned)
	}
	return out
}

// GroupBy buckets records by the string form of the value under key.
// Records missing the key are grouped under the empty string.
func GroupBy(records []map[string]any, key string) map[string][]map[string]any {
	out := make(map[string][]map[string]any)
	for _, rec := range records {
		group := ""
		if v, ok := rec[key]; ok && v != nil {
			group = fmt.Sprint(v)
		}
		out[group] = append(out[group], rec)
	}
	return out
}

// SortBy returns records ordered by the value under key. Numeric
// values sort numerically, everything else by string form. Records
// missing the key sort first. The input slice is not modified.
func SortBy(records []map[string]any, key string, descending bool) []map[string]any {
	out := make([]map[string]any, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		less := compareValues(out[i][key], out[j][key]) < 0
		if descending {
			return !less && compareValues(out[i][key], out[j][key]) != 0
		}
		return less
	})
	return out
}

func compareValues(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// UniqueByKey returns records deduplicated on the string form of the
// value under key, keeping the first occurrence. Records missing the
// key are always kept.
func UniqueByKey(records []map[string]any, key string) []map[string]any {
	seen := make(map[string]struct{}, len(records))
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		v, ok := rec[key]
		if !ok {
			out = append(out, rec)
			continue
		}
		id := fmt.Sprint(v)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, rec)
	}
	return out
}

// Page holds one page of items plus pagination metadata.
type Page[T any] struct {
	Items      []T `json:"items"`
	PageNumber int `json:"page_number"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// Paginate slices items into the requested page. Page numbers start
// at 1; out-of-range pages return an empty item list with metadata
// intact. A non-positive pageSize yields a single page with all
// items.
func Paginate[T any](items []T, pageNumber, pageSize int) Page[T] {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize < 1 {
		pageSize = len(items)
		if pageSize < 1 {
			pageSize = 1
		}
	}
	totalPages := (len(items) + pageSize - 1) / pageSize
	page := Page[T]{
		Items:      []T{},
		PageNumber: pageNumber,
		PageSize:   pageSize,
		TotalItems: len(items),
		TotalPages: totalPages,
	}
	start := (pageNumber - 1) * pageSize
	if start >= len(items) {
		return page
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	page.Items = items[start:end]
	return page
}
