package metrics

import (
	"context"
	"errors"
	"testing"
)

type fakeFetcher struct {
	objects map[string][]byte
	err     error
}

func (f *fakeFetcher) FetchObject(ctx context.Context, bucket, key string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, ok := f.objects[bucket+"/"+key]
	if !ok {
		return nil, errors.New("no such object")
	}
	return data, nil
}

func TestPairedSeries(t *testing.T) {
	e := NewExtractor(&fakeFetcher{objects: map[string][]byte{
		"b/exp_1/rmsd.csv": []byte("x,y\n1,2\n3,4\n"),
	}})

	result := e.PairedSeries(context.Background(), "b", "exp_1/rmsd.csv")
	if result.Kind != OK {
		t.Fatalf("Expected OK, got kind %v (err %v)", result.Kind, result.Err)
	}
	if len(result.X) != 2 || result.X[0] != 1 || result.X[1] != 3 {
		t.Errorf("Expected x=[1 3], got %v", result.X)
	}
	if len(result.Y) != 2 || result.Y[0] != 2 || result.Y[1] != 4 {
		t.Errorf("Expected y=[2 4], got %v", result.Y)
	}
}

func TestPairedSeriesPreservesRowOrder(t *testing.T) {
	e := NewExtractor(&fakeFetcher{objects: map[string][]byte{
		"b/k": []byte("y,x\n9,0.3\n7,0.1\n8,0.2\n"),
	}})

	result := e.PairedSeries(context.Background(), "b", "k")
	if result.Kind != OK {
		t.Fatalf("Expected OK, got kind %v", result.Kind)
	}
	if result.X[0] != 0.3 || result.X[1] != 0.1 || result.X[2] != 0.2 {
		t.Errorf("Row order not preserved: %v", result.X)
	}
	if result.Y[0] != 9 || result.Y[1] != 7 || result.Y[2] != 8 {
		t.Errorf("Row order not preserved: %v", result.Y)
	}
}

func TestPairedSeriesMissingColumn(t *testing.T) {
	e := NewExtractor(&fakeFetcher{objects: map[string][]byte{
		"b/k": []byte("x,z\n1,2\n"),
	}})

	result := e.PairedSeries(context.Background(), "b", "k")
	if result.Kind != Empty {
		t.Errorf("Missing y column should be Empty, got kind %v", result.Kind)
	}
}

func TestPairedSeriesNoDataRows(t *testing.T) {
	e := NewExtractor(&fakeFetcher{objects: map[string][]byte{
		"b/k": []byte("x,y\n"),
	}})

	result := e.PairedSeries(context.Background(), "b", "k")
	if result.Kind != Empty {
		t.Errorf("Header-only table should be Empty, got kind %v", result.Kind)
	}
}

func TestPairedSeriesEmptyFile(t *testing.T) {
	e := NewExtractor(&fakeFetcher{objects: map[string][]byte{
		"b/k": []byte(""),
	}})

	result := e.PairedSeries(context.Background(), "b", "k")
	if result.Kind != Empty {
		t.Errorf("Empty file should be Empty, got kind %v", result.Kind)
	}
}

func TestPairedSeriesFetchError(t *testing.T) {
	e := NewExtractor(&fakeFetcher{err: errors.New("access denied")})

	result := e.PairedSeries(context.Background(), "b", "k")
	if result.Kind != Failed {
		t.Errorf("Fetch error should be Failed, got kind %v", result.Kind)
	}
	if result.Err == nil {
		t.Error("Failed result should carry the cause")
	}
}

func TestPairedSeriesNonNumeric(t *testing.T) {
	e := NewExtractor(&fakeFetcher{objects: map[string][]byte{
		"b/k": []byte("x,y\n1,two\n"),
	}})

	result := e.PairedSeries(context.Background(), "b", "k")
	if result.Kind != Failed {
		t.Errorf("Non-numeric cell should be Failed, got kind %v", result.Kind)
	}
}

func TestWideRow(t *testing.T) {
	e := NewExtractor(&fakeFetcher{objects: map[string][]byte{
		"b/k": []byte("a,b\n1,2\n"),
	}})

	result := e.WideRow(context.Background(), "b", "k")
	if result.Kind != OK {
		t.Fatalf("Expected OK, got kind %v", result.Kind)
	}
	if result.Values["a"] != float64(1) || result.Values["b"] != float64(2) {
		t.Errorf("Expected {a:1 b:2}, got %v", result.Values)
	}
}

func TestWideRowLaterRowsOverwrite(t *testing.T) {
	e := NewExtractor(&fakeFetcher{objects: map[string][]byte{
		"b/k": []byte("a,b\n1,first\n2,second\n"),
	}})

	result := e.WideRow(context.Background(), "b", "k")
	if result.Kind != OK {
		t.Fatalf("Expected OK, got kind %v", result.Kind)
	}
	if result.Values["a"] != float64(2) || result.Values["b"] != "second" {
		t.Errorf("Later rows should overwrite: got %v", result.Values)
	}
}

func TestWideRowEmpty(t *testing.T) {
	e := NewExtractor(&fakeFetcher{objects: map[string][]byte{
		"b/empty":  []byte(""),
		"b/header": []byte("a,b\n"),
	}})

	if result := e.WideRow(context.Background(), "b", "empty"); result.Kind != Empty {
		t.Errorf("Empty file should be Empty, got kind %v", result.Kind)
	}
	if result := e.WideRow(context.Background(), "b", "header"); result.Kind != Empty {
		t.Errorf("Header-only table should be Empty, got kind %v", result.Kind)
	}
}

func TestWideRowFetchError(t *testing.T) {
	e := NewExtractor(&fakeFetcher{err: errors.New("timeout")})

	result := e.WideRow(context.Background(), "b", "k")
	if result.Kind != Failed {
		t.Errorf("Fetch error should be Failed, got kind %v", result.Kind)
	}
}
