package dataset

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// writeZarr writes a consolidated Zarr group below dir. arrays maps an
// array name to its .zarray and .zattrs documents.
func writeZarr(t *testing.T, dir string, attrs map[string]any, arrays map[string][2]map[string]any, chunks map[string][]byte) {
	t.Helper()

	metadata := map[string]any{
		".zgroup": map[string]any{"zarr_format": 2},
		".zattrs": attrs,
	}
	for name, docs := range arrays {
		metadata[name+"/.zarray"] = docs[0]
		metadata[name+"/.zattrs"] = docs[1]
	}
	data, err := json.Marshal(map[string]any{
		"zarr_consolidated_format": 1,
		"metadata":                 metadata,
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ConsolidatedKey), data, 0o644); err != nil {
		t.Fatal(err)
	}
	for key, chunk := range chunks {
		path := filepath.Join(dir, filepath.FromSlash(key))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, chunk, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func zarray(dtype string, shape, chunks []int, compressor string) map[string]any {
	m := map[string]any{
		"zarr_format": 2,
		"shape":       shape,
		"chunks":      chunks,
		"dtype":       dtype,
		"order":       "C",
		"fill_value":  "NaN",
		"filters":     nil,
		"compressor":  nil,
	}
	if compressor != "" {
		m["compressor"] = map[string]any{"id": compressor}
	}
	return m
}

func zattrs(dims []string, extra map[string]any) map[string]any {
	m := map[string]any{"_ARRAY_DIMENSIONS": dims}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

func encode(t *testing.T, order binary.ByteOrder, values any) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := binary.Write(&buf, order, values); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func compress(t *testing.T, codec string, raw []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	switch codec {
	case "zlib":
		w := zlib.NewWriter(&buf)
		w.Write(raw)
		w.Close()
	case "gzip":
		w := gzip.NewWriter(&buf)
		w.Write(raw)
		w.Close()
	case "zstd":
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			t.Fatal(err)
		}
		defer enc.Close()
		return enc.EncodeAll(raw, nil)
	default:
		return raw
	}
	return buf.Bytes()
}

func TestOpenZarr(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	le := binary.LittleEndian
	writeZarr(t, dir,
		map[string]any{"title": "Hydrology cube", "description": "Soil moisture and runoff"},
		map[string][2]map[string]any{
			"lon":  {zarray("<f8", []int{4}, []int{3}, ""), zattrs([]string{"lon"}, nil)},
			"lat":  {zarray("<f4", []int{2}, []int{2}, "zlib"), zattrs([]string{"lat"}, nil)},
			"time": {zarray("<i8", []int{2}, []int{2}, ""), zattrs([]string{"time"}, map[string]any{"units": "days since 2023-01-01"})},
			"sm": {
				zarray("<f4", []int{2, 2, 4}, []int{1, 2, 4}, "zlib"),
				zattrs([]string{"time", "lat", "lon"}, map[string]any{"long_name": "Soil Moisture"}),
			},
		},
		map[string][]byte{
			// Edge chunk of lon is stored full size; its padding must be dropped.
			"lon/0":  encode(t, le, []float64{-180, -60, 60}),
			"lon/1":  encode(t, le, []float64{180, 999, 999}),
			"lat/0":  compress(t, "zlib", encode(t, le, []float32{-90, 90})),
			"time/0": encode(t, le, []int64{0, 1}),
		},
	)

	ds, err := OpenZarr(context.Background(), NewLocalStore(dir))
	if err != nil {
		t.Fatalf("OpenZarr() error = %v", err)
	}

	if got := ds.Attr("title"); got != "Hydrology cube" {
		t.Errorf("Attr(title) = %q, want %q", got, "Hydrology cube")
	}

	want := map[string][]float64{
		"lon":  {-180, -60, 60, 180},
		"lat":  {-90, 90},
		"time": {0, 1},
	}
	for name, values := range want {
		c, ok := ds.Coord(name)
		if !ok {
			t.Fatalf("Coord(%q) missing", name)
		}
		if diff := cmp.Diff(values, c.Values); diff != "" {
			t.Errorf("Coord(%q).Values mismatch (-want +got):\n%s", name, diff)
		}
	}
	if got := ds.Coords["time"].Attr("units"); got != "days since 2023-01-01" {
		t.Errorf("time units = %q", got)
	}

	if diff := cmp.Diff([]string{"sm"}, ds.DataVarNames()); diff != "" {
		t.Errorf("DataVarNames() mismatch (-want +got):\n%s", diff)
	}
	sm := ds.DataVars["sm"]
	if got := sm.Attr("long_name"); got != "Soil Moisture" {
		t.Errorf("sm long_name = %q", got)
	}
	if diff := cmp.Diff([]string{"time", "lat", "lon"}, sm.Dims); diff != "" {
		t.Errorf("sm dims mismatch (-want +got):\n%s", diff)
	}
	if _, ok := sm.Attrs["_ARRAY_DIMENSIONS"]; ok {
		t.Error("_ARRAY_DIMENSIONS should not be exposed as an attribute")
	}
}

func TestOpenZarr_Codecs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		dtype string
		codec string
		raw   func(t *testing.T) []byte
		want  []float64
	}{
		{
			name:  "big endian float64",
			dtype: ">f8",
			raw:   func(t *testing.T) []byte { return encode(t, binary.BigEndian, []float64{1.5, -2.5}) },
			want:  []float64{1.5, -2.5},
		},
		{
			name:  "int16 gzip",
			dtype: "<i2",
			codec: "gzip",
			raw:   func(t *testing.T) []byte { return encode(t, binary.LittleEndian, []int16{-3, 7}) },
			want:  []float64{-3, 7},
		},
		{
			name:  "uint8 zstd",
			dtype: "|u1",
			codec: "zstd",
			raw:   func(t *testing.T) []byte { return []byte{4, 250} },
			want:  []float64{4, 250},
		},
		{
			name:  "uint32 zlib",
			dtype: "<u4",
			codec: "zlib",
			raw:   func(t *testing.T) []byte { return encode(t, binary.LittleEndian, []uint32{10, 4000000000}) },
			want:  []float64{10, 4000000000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeZarr(t, dir, nil,
				map[string][2]map[string]any{
					"x": {zarray(tt.dtype, []int{2}, []int{2}, tt.codec), zattrs([]string{"x"}, nil)},
				},
				map[string][]byte{"x/0": compress(t, tt.codec, tt.raw(t))},
			)

			ds, err := OpenZarr(context.Background(), NewLocalStore(dir))
			if err != nil {
				t.Fatalf("OpenZarr() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, ds.Coords["x"].Values); diff != "" {
				t.Errorf("values mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOpenZarr_MissingChunkUsesFillValue(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeZarr(t, dir, nil,
		map[string][2]map[string]any{
			"y": {zarray("<f8", []int{4}, []int{2}, ""), zattrs([]string{"y"}, nil)},
		},
		map[string][]byte{"y/1": encode(t, binary.LittleEndian, []float64{3, 4})},
	)

	ds, err := OpenZarr(context.Background(), NewLocalStore(dir))
	if err != nil {
		t.Fatalf("OpenZarr() error = %v", err)
	}
	got := ds.Coords["y"].Values
	want := []float64{math.NaN(), math.NaN(), 3, 4}
	if diff := cmp.Diff(want, got, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenZarr_AuxiliaryCoordinates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	le := binary.LittleEndian
	a := zarray("<f8", []int{3, 2}, []int{2, 2}, "")
	writeZarr(t, dir, nil,
		map[string][2]map[string]any{
			"lon": {a, zattrs([]string{"y", "x"}, nil)},
			"v":   {zarray("<f8", []int{3, 2}, []int{3, 2}, ""), zattrs([]string{"y", "x"}, map[string]any{"coordinates": "lon"})},
		},
		map[string][]byte{
			"lon/0.0": encode(t, le, []float64{1, 2, 3, 4}),
			"lon/1.0": encode(t, le, []float64{5, 6, -1, -1}),
		},
	)

	ds, err := OpenZarr(context.Background(), NewLocalStore(dir))
	if err != nil {
		t.Fatalf("OpenZarr() error = %v", err)
	}
	c, ok := ds.Coord("lon")
	if !ok {
		t.Fatal("lon should be a coordinate")
	}
	if diff := cmp.Diff([]float64{1, 2, 3, 4, 5, 6}, c.Values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	if _, ok := ds.DataVars["lon"]; ok {
		t.Error("lon should not be a data variable")
	}
}

func TestOpenZarr_ScaleAndOffset(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeZarr(t, dir, nil,
		map[string][2]map[string]any{
			"lat": {zarray("<i2", []int{2}, []int{2}, ""), zattrs([]string{"lat"}, map[string]any{"scale_factor": 0.5, "add_offset": 10.0})},
		},
		map[string][]byte{"lat/0": encode(t, binary.LittleEndian, []int16{0, 4})},
	)

	ds, err := OpenZarr(context.Background(), NewLocalStore(dir))
	if err != nil {
		t.Fatalf("OpenZarr() error = %v", err)
	}
	if diff := cmp.Diff([]float64{10, 12}, ds.Coords["lat"].Values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenZarr_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(t *testing.T, dir string)
		wantErr string
	}{
		{
			name:    "no consolidated metadata",
			setup:   func(t *testing.T, dir string) {},
			wantErr: "read consolidated metadata",
		},
		{
			name: "unsupported compressor",
			setup: func(t *testing.T, dir string) {
				writeZarr(t, dir, nil,
					map[string][2]map[string]any{"x": {zarray("<f8", []int{1}, []int{1}, "blosc"), zattrs([]string{"x"}, nil)}},
					map[string][]byte{"x/0": {1, 2, 3}},
				)
			},
			wantErr: `unsupported compressor "blosc"`,
		},
		{
			name: "unsupported dtype",
			setup: func(t *testing.T, dir string) {
				writeZarr(t, dir, nil,
					map[string][2]map[string]any{"x": {zarray("|b1", []int{1}, []int{1}, ""), zattrs([]string{"x"}, nil)}},
					nil,
				)
			},
			wantErr: `unsupported dtype "|b1"`,
		},
		{
			name: "short chunk",
			setup: func(t *testing.T, dir string) {
				writeZarr(t, dir, nil,
					map[string][2]map[string]any{"x": {zarray("<f8", []int{2}, []int{2}, ""), zattrs([]string{"x"}, nil)}},
					map[string][]byte{"x/0": {1, 2, 3}},
				)
			},
			wantErr: "got 3 bytes, want 16",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			tt.setup(t, dir)
			_, err := OpenZarr(context.Background(), NewLocalStore(dir))
			if err == nil {
				t.Fatal("OpenZarr() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("OpenZarr() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
