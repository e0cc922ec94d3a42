package dataset

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// ConsolidatedKey is the key of the consolidated metadata document.
const ConsolidatedKey = ".zmetadata"

// Variable is an array of the dataset with its dimensions and attributes.
type Variable struct {
	Name  string
	Dims  []string
	Shape []int
	Attrs map[string]any
}

// Attr returns the string attribute key, or "" when it is absent or not a string.
func (v *Variable) Attr(key string) string {
	s, _ := v.Attrs[key].(string)
	return s
}

// Coord is a coordinate variable with its decoded values in C order.
// Missing values are NaN.
type Coord struct {
	Variable
	Values []float64
}

// Dataset is the metadata view of an opened Zarr group.
type Dataset struct {
	Attrs    map[string]any
	Coords   map[string]*Coord
	DataVars map[string]*Variable
}

// Coord returns the coordinate called name.
func (d *Dataset) Coord(name string) (*Coord, bool) {
	c, ok := d.Coords[name]
	return c, ok
}

// Attr returns the string dataset attribute key, or "".
func (d *Dataset) Attr(key string) string {
	s, _ := d.Attrs[key].(string)
	return s
}

// DataVarNames returns the data variable names in sorted order.
func (d *Dataset) DataVarNames() []string {
	names := make([]string, 0, len(d.DataVars))
	for name := range d.DataVars {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

type consolidated struct {
	Format   int                        `json:"zarr_consolidated_format"`
	Metadata map[string]json.RawMessage `json:"metadata"`
}

type arrayMeta struct {
	Shape      []int           `json:"shape"`
	Chunks     []int           `json:"chunks"`
	DType      string          `json:"dtype"`
	Compressor *codecMeta      `json:"compressor"`
	FillValue  json.RawMessage `json:"fill_value"`
	Order      string          `json:"order"`
	Filters    []codecMeta     `json:"filters"`
	Separator  string          `json:"dimension_separator"`
}

type codecMeta struct {
	ID string `json:"id"`
}

// OpenZarr reads the consolidated metadata of the Zarr group in store and
// decodes every coordinate array. An array is a coordinate when its only
// dimension has its own name, or when a data variable lists it in its
// "coordinates" attribute.
func OpenZarr(ctx context.Context, store ObjectStore) (*Dataset, error) {
	raw, err := store.Get(ctx, ConsolidatedKey)
	if err != nil {
		return nil, fmt.Errorf("read consolidated metadata: %w", err)
	}
	var meta consolidated
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ConsolidatedKey, err)
	}
	if meta.Format != 1 {
		return nil, fmt.Errorf("unsupported consolidated metadata format %d", meta.Format)
	}

	ds := &Dataset{
		Attrs:    map[string]any{},
		Coords:   map[string]*Coord{},
		DataVars: map[string]*Variable{},
	}
	if err := unmarshalAttrs(meta.Metadata[".zattrs"], &ds.Attrs); err != nil {
		return nil, fmt.Errorf("parse group attributes: %w", err)
	}

	arrays := map[string]arrayMeta{}
	vars := map[string]*Variable{}
	for key, value := range meta.Metadata {
		name, ok := strings.CutSuffix(key, "/.zarray")
		if !ok || strings.Contains(name, "/") {
			continue // nested groups are not part of the dataset
		}
		var am arrayMeta
		if err := json.Unmarshal(value, &am); err != nil {
			return nil, fmt.Errorf("parse %s: %w", key, err)
		}
		v := &Variable{Name: name, Shape: am.Shape, Attrs: map[string]any{}}
		if err := unmarshalAttrs(meta.Metadata[name+"/.zattrs"], &v.Attrs); err != nil {
			return nil, fmt.Errorf("parse %s/.zattrs: %w", name, err)
		}
		v.Dims = dims(v.Attrs)
		delete(v.Attrs, "_ARRAY_DIMENSIONS")
		arrays[name] = am
		vars[name] = v
	}

	isCoord := map[string]bool{}
	for name, v := range vars {
		if len(v.Dims) == 1 && v.Dims[0] == name {
			isCoord[name] = true
		}
		for _, c := range strings.Fields(v.Attr("coordinates")) {
			if _, ok := vars[c]; ok {
				isCoord[c] = true
			}
		}
	}

	for name, v := range vars {
		if !isCoord[name] {
			ds.DataVars[name] = v
			continue
		}
		values, err := readArray(ctx, store, name, arrays[name])
		if err != nil {
			return nil, fmt.Errorf("read coordinate %s: %w", name, err)
		}
		applyScale(values, v.Attrs)
		ds.Coords[name] = &Coord{Variable: *v, Values: values}
	}
	return ds, nil
}

func unmarshalAttrs(raw json.RawMessage, into *map[string]any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, into)
}

func dims(attrs map[string]any) []string {
	list, _ := attrs["_ARRAY_DIMENSIONS"].([]any)
	out := make([]string, 0, len(list))
	for _, d := range list {
		if s, ok := d.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// applyScale applies CF packing attributes in place.
func applyScale(values []float64, attrs map[string]any) {
	scale, hasScale := attrs["scale_factor"].(float64)
	offset, hasOffset := attrs["add_offset"].(float64)
	if !hasScale && !hasOffset {
		return
	}
	if !hasScale {
		scale = 1
	}
	for i, v := range values {
		values[i] = v*scale + offset
	}
}

// readArray decodes a whole array into float64 values in C order.
func readArray(ctx context.Context, store ObjectStore, name string, am arrayMeta) ([]float64, error) {
	dt, err := parseDType(am.DType)
	if err != nil {
		return nil, err
	}
	if am.Order != "" && am.Order != "C" && len(am.Shape) > 1 {
		return nil, fmt.Errorf("unsupported array order %q", am.Order)
	}
	if len(am.Filters) > 0 {
		return nil, fmt.Errorf("unsupported filter %q", am.Filters[0].ID)
	}
	if len(am.Chunks) != len(am.Shape) {
		return nil, fmt.Errorf("chunks %v do not match shape %v", am.Chunks, am.Shape)
	}
	fill, err := parseFill(am.FillValue)
	if err != nil {
		return nil, err
	}
	sep := am.Separator
	if sep == "" {
		sep = "."
	}

	total := product(am.Shape)
	out := make([]float64, total)
	if total == 0 {
		return out, nil
	}

	grid := make([]int, len(am.Shape))
	for i := range am.Shape {
		if am.Chunks[i] <= 0 {
			return nil, fmt.Errorf("invalid chunk size %d", am.Chunks[i])
		}
		grid[i] = (am.Shape[i] + am.Chunks[i] - 1) / am.Chunks[i]
	}
	chunkLen := product(am.Chunks)

	for chunk := range indices(grid) {
		key := name + "/" + chunkKey(chunk, sep)
		values, err := readChunk(ctx, store, key, am.Compressor, dt, chunkLen, fill)
		if err != nil {
			return nil, err
		}
		scatter(out, values, chunk, am.Chunks, am.Shape)
	}
	return out, nil
}

func readChunk(ctx context.Context, store ObjectStore, key string, codec *codecMeta, dt dtype, n int, fill float64) ([]float64, error) {
	raw, err := store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		values := make([]float64, n)
		for i := range values {
			values[i] = fill
		}
		return values, nil
	}
	if err != nil {
		return nil, err
	}
	raw, err = decompress(codec, raw)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", key, err)
	}
	if len(raw) != n*dt.size {
		return nil, fmt.Errorf("chunk %s: got %d bytes, want %d", key, len(raw), n*dt.size)
	}
	values := make([]float64, n)
	for i := range values {
		values[i] = dt.decode(raw[i*dt.size:])
	}
	return values, nil
}

// scatter copies the in-bounds elements of a chunk to their place in out.
// Edge chunks are stored full size; their padding is dropped.
func scatter(out, values []float64, chunk, chunkShape, shape []int) {
	global := make([]int, len(shape))
	local := 0
	for pos := range indices(chunkShape) {
		inside := true
		for d := range pos {
			global[d] = chunk[d]*chunkShape[d] + pos[d]
			if global[d] >= shape[d] {
				inside = false
			}
		}
		if inside {
			out[flatIndex(global, shape)] = values[local]
		}
		local++
	}
}

// indices yields every index tuple of an array with the given shape in C
// order. A zero-dimensional shape yields one empty tuple.
func indices(shape []int) func(yield func([]int) bool) {
	return func(yield func([]int) bool) {
		idx := make([]int, len(shape))
		for {
			if !yield(idx) {
				return
			}
			d := len(shape) - 1
			for ; d >= 0; d-- {
				idx[d]++
				if idx[d] < shape[d] {
					break
				}
				idx[d] = 0
			}
			if d < 0 {
				return
			}
		}
	}
}

func flatIndex(idx, shape []int) int {
	flat := 0
	for d := range idx {
		flat = flat*shape[d] + idx[d]
	}
	return flat
}

func chunkKey(chunk []int, sep string) string {
	if len(chunk) == 0 {
		return "0"
	}
	parts := make([]string, len(chunk))
	for i, c := range chunk {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, sep)
}

func product(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

func decompress(codec *codecMeta, raw []byte) ([]byte, error) {
	if codec == nil {
		return raw, nil
	}
	switch codec.ID {
	case "zlib":
		r, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case "gzip":
		r, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return io.ReadAll(r)
	case "zstd":
		d, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer d.Close()
		return d.DecodeAll(raw, nil)
	default:
		return nil, fmt.Errorf("unsupported compressor %q", codec.ID)
	}
}

type dtype struct {
	size   int
	decode func([]byte) float64
}

// parseDType understands the numeric NumPy type strings Zarr v2 writes,
// e.g. "<f8", ">i4", "|u1".
func parseDType(s string) (dtype, error) {
	if len(s) != 3 {
		return dtype{}, fmt.Errorf("unsupported dtype %q", s)
	}
	var order binary.ByteOrder
	switch s[0] {
	case '<', '|':
		order = binary.LittleEndian
	case '>':
		order = binary.BigEndian
	default:
		return dtype{}, fmt.Errorf("unsupported dtype %q", s)
	}

	switch s[1:] {
	case "f4":
		return dtype{4, func(b []byte) float64 { return float64(math.Float32frombits(order.Uint32(b))) }}, nil
	case "f8":
		return dtype{8, func(b []byte) float64 { return math.Float64frombits(order.Uint64(b)) }}, nil
	case "i1":
		return dtype{1, func(b []byte) float64 { return float64(int8(b[0])) }}, nil
	case "u1":
		return dtype{1, func(b []byte) float64 { return float64(b[0]) }}, nil
	case "i2":
		return dtype{2, func(b []byte) float64 { return float64(int16(order.Uint16(b))) }}, nil
	case "u2":
		return dtype{2, func(b []byte) float64 { return float64(order.Uint16(b)) }}, nil
	case "i4":
		return dtype{4, func(b []byte) float64 { return float64(int32(order.Uint32(b))) }}, nil
	case "u4":
		return dtype{4, func(b []byte) float64 { return float64(order.Uint32(b)) }}, nil
	case "i8":
		return dtype{8, func(b []byte) float64 { return float64(int64(order.Uint64(b))) }}, nil
	case "u8":
		return dtype{8, func(b []byte) float64 { return float64(order.Uint64(b)) }}, nil
	}
	return dtype{}, fmt.Errorf("unsupported dtype %q", s)
}

// parseFill decodes a fill_value. null means missing, and the special
// float values arrive as strings.
func parseFill(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return math.NaN(), nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("parse fill_value: %w", err)
	}
	switch v := v.(type) {
	case float64:
		return v, nil
	case string:
		switch v {
		case "NaN":
			return math.NaN(), nil
		case "Infinity":
			return math.Inf(1), nil
		case "-Infinity":
			return math.Inf(-1), nil
		}
	}
	return 0, fmt.Errorf("unsupported fill_value %s", raw)
}
