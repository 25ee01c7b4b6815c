package metrics

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"strconv"
)

// Kind distinguishes the three extraction outcomes. The HTTP surface
// serializes Empty and Failed identically (an empty object), but callers
// and tests can tell them apart.
type Kind int

const (
	OK Kind = iota
	Empty
	Failed
)

// SeriesResult is a paired-series extraction outcome
type SeriesResult struct {
	Kind Kind
	X    []float64
	Y    []float64
	Err  error
}

// RowResult is a wide-row extraction outcome
type RowResult struct {
	Kind   Kind
	Values map[string]interface{}
	Err    error
}

// Fetcher fetches one object's raw bytes
type Fetcher interface {
	FetchObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// Extractor loads small CSV artifacts into chartable structures
type Extractor struct {
	store Fetcher
}

// NewExtractor creates a new extractor
func NewExtractor(store Fetcher) *Extractor {
	return &Extractor{store: store}
}

// PairedSeries reads a CSV with "x" and "y" columns into two parallel
// numeric sequences, original row order preserved. A missing column or
// an empty table is Empty, not an error.
func (e *Extractor) PairedSeries(ctx context.Context, bucket, key string) SeriesResult {
	rows, res := e.loadCSV(ctx, bucket, key)
	if res != nil {
		return SeriesResult{Kind: res.Kind, Err: res.Err}
	}

	header := rows[0]
	xCol, yCol := -1, -1
	for i, name := range header {
		switch name {
		case "x":
			xCol = i
		case "y":
			yCol = i
		}
	}
	if xCol < 0 || yCol < 0 || len(rows) < 2 {
		log.Printf("CSV %s/%s has no x/y series data", bucket, key)
		return SeriesResult{Kind: Empty}
	}

	result := SeriesResult{Kind: OK}
	for _, row := range rows[1:] {
		x, err := strconv.ParseFloat(row[xCol], 64)
		if err != nil {
			log.Printf("Failed to parse CSV %s/%s: %v", bucket, key, err)
			return SeriesResult{Kind: Failed, Err: err}
		}
		y, err := strconv.ParseFloat(row[yCol], 64)
		if err != nil {
			log.Printf("Failed to parse CSV %s/%s: %v", bucket, key, err)
			return SeriesResult{Kind: Failed, Err: err}
		}
		result.X = append(result.X, x)
		result.Y = append(result.Y, y)
	}
	return result
}

// WideRow flattens the columns of a (typically single-row) CSV into one
// key/value map. With more than one row, later rows overwrite earlier
// ones under the same key.
func (e *Extractor) WideRow(ctx context.Context, bucket, key string) RowResult {
	rows, res := e.loadCSV(ctx, bucket, key)
	if res != nil {
		return RowResult{Kind: res.Kind, Err: res.Err}
	}

	header := rows[0]
	if len(rows) < 2 {
		log.Printf("CSV %s/%s has no data rows", bucket, key)
		return RowResult{Kind: Empty}
	}

	values := make(map[string]interface{}, len(header))
	for _, row := range rows[1:] {
		for i, name := range header {
			if i >= len(row) {
				continue
			}
			values[name] = coerce(row[i])
		}
	}
	return RowResult{Kind: OK, Values: values}
}

type loadFailure struct {
	Kind Kind
	Err  error
}

// loadCSV fetches and parses one artifact, mapping fetch/parse failures
// and fully empty files to their result kinds
func (e *Extractor) loadCSV(ctx context.Context, bucket, key string) ([][]string, *loadFailure) {
	data, err := e.store.FetchObject(ctx, bucket, key)
	if err != nil {
		log.Printf("Failed to fetch CSV %s/%s: %v", bucket, key, err)
		return nil, &loadFailure{Kind: Failed, Err: err}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		err = fmt.Errorf("failed to parse CSV %s/%s: %w", bucket, key, err)
		log.Print(err)
		return nil, &loadFailure{Kind: Failed, Err: err}
	}
	if len(rows) == 0 {
		log.Printf("CSV %s/%s is empty", bucket, key)
		return nil, &loadFailure{Kind: Empty}
	}
	return rows, nil
}

// coerce keeps numeric cells numeric in the JSON response
func coerce(value string) interface{} {
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return value
}
