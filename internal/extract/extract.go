// Package extract derives catalog metadata from an opened dataset.
package extract

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/deepesdl/deep-code/internal/dataset"
	"github.com/deepesdl/deep-code/internal/log"
)

// DefaultDescription is used when the dataset has no description attribute.
const DefaultDescription = "No description available."

// Kind classifies an extraction failure.
type Kind int

const (
	MissingCoordinates Kind = iota + 1
	MissingTimeCoordinate
	TimeParseFailure
)

func (k Kind) String() string {
	switch k {
	case MissingCoordinates:
		return "missing spatial coordinates"
	case MissingTimeCoordinate:
		return "missing time coordinate"
	case TimeParseFailure:
		return "time parse failure"
	}
	return "unknown"
}

// ExtractionError reports a dataset whose coordinates cannot describe its
// extent. It is raised before any remote state is touched.
type ExtractionError struct {
	Kind Kind
	Err  error
}

func (e *ExtractionError) Error() string {
	if e.Err == nil {
		return "metadata extraction failed: " + e.Kind.String()
	}
	return fmt.Sprintf("metadata extraction failed: %s: %v", e.Kind, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Is matches another *ExtractionError of the same kind, so callers can test
// errors.Is(err, &ExtractionError{Kind: MissingCoordinates}).
func (e *ExtractionError) Is(target error) bool {
	t, ok := target.(*ExtractionError)
	return ok && t.Kind == e.Kind
}

// TemporalExtent is a closed or open time interval. End may be nil.
type TemporalExtent struct {
	Start *time.Time
	End   *time.Time
}

// Variable is one data variable as it appears in the catalog.
type Variable struct {
	ID           string // normalized, e.g. "soil-moisture"
	Name         string // key in the dataset
	Title        string
	Description  string
	StandardName string // CF standard name, if declared
}

// Metadata is everything the record builder needs from a dataset.
type Metadata struct {
	SpatialExtent  [4]float64 // min lon, min lat, max lon, max lat
	TemporalExtent TemporalExtent
	Variables      []Variable
	Title          string
	Description    string
}

// VariableIDs returns the variable ids in order.
func (m *Metadata) VariableIDs() []string {
	ids := make([]string, len(m.Variables))
	for i, v := range m.Variables {
		ids[i] = v.ID
	}
	return ids
}

// Extractor reads metadata out of datasets.
type Extractor struct {
	logger *log.Logger
}

// New creates an extractor that reports missing attributes to logger.
func New(logger *log.Logger) *Extractor {
	if logger == nil {
		logger = log.Discard()
	}
	return &Extractor{logger: logger}
}

// Extract computes the spatial and temporal extent, variables and
// descriptive fields of ds. It does no I/O.
func (e *Extractor) Extract(ds *dataset.Dataset) (*Metadata, error) {
	bbox, err := SpatialExtent(ds)
	if err != nil {
		return nil, err
	}
	temporal, err := Temporal(ds)
	if err != nil {
		return nil, err
	}

	description := ds.Attr("description")
	if description == "" {
		description = DefaultDescription
	}
	return &Metadata{
		SpatialExtent:  bbox,
		TemporalExtent: temporal,
		Variables:      e.Variables(ds),
		Title:          ds.Attr("title"),
		Description:    description,
	}, nil
}

// spatialPairs are the accepted coordinate names, in priority order.
var spatialPairs = [][2]string{
	{"lon", "lat"},
	{"longitude", "latitude"},
	{"x", "y"},
}

// SpatialExtent returns the bounding box of the first complete coordinate
// pair. NaN values are ignored.
func SpatialExtent(ds *dataset.Dataset) ([4]float64, error) {
	for _, pair := range spatialPairs {
		xc, okX := ds.Coord(pair[0])
		yc, okY := ds.Coord(pair[1])
		if !okX || !okY {
			continue
		}
		minX, maxX, okX := bounds(xc.Values)
		minY, maxY, okY := bounds(yc.Values)
		if !okX || !okY {
			return [4]float64{}, &ExtractionError{
				Kind: MissingCoordinates,
				Err:  fmt.Errorf("coordinates %q/%q hold no values", pair[0], pair[1]),
			}
		}
		return [4]float64{minX, minY, maxX, maxY}, nil
	}
	return [4]float64{}, &ExtractionError{
		Kind: MissingCoordinates,
		Err:  errors.New("dataset does not have recognized spatial coordinates ('lon', 'lat', 'longitude', 'latitude' or 'x', 'y')"),
	}
}

// Temporal returns the time range of the "time" coordinate in UTC.
func Temporal(ds *dataset.Dataset) (TemporalExtent, error) {
	tc, ok := ds.Coord("time")
	if !ok {
		return TemporalExtent{}, &ExtractionError{
			Kind: MissingTimeCoordinate,
			Err:  errors.New("dataset does not have a 'time' coordinate"),
		}
	}
	lo, hi, ok := bounds(tc.Values)
	if !ok {
		return TemporalExtent{}, &ExtractionError{
			Kind: TimeParseFailure,
			Err:  errors.New("time coordinate holds no values"),
		}
	}
	units, err := ParseTimeUnits(tc.Attr("units"))
	if err != nil {
		return TemporalExtent{}, &ExtractionError{Kind: TimeParseFailure, Err: err}
	}
	start, err := units.Time(lo)
	if err != nil {
		return TemporalExtent{}, &ExtractionError{Kind: TimeParseFailure, Err: err}
	}
	end, err := units.Time(hi)
	if err != nil {
		return TemporalExtent{}, &ExtractionError{Kind: TimeParseFailure, Err: err}
	}
	return TemporalExtent{Start: &start, End: &end}, nil
}

// Variables lists the data variables sorted by name. The id is derived
// from long_name, then standard_name, then the key.
func (e *Extractor) Variables(ds *dataset.Dataset) []Variable {
	vars := make([]Variable, 0, len(ds.DataVars))
	for _, name := range ds.DataVarNames() {
		v := ds.DataVars[name]
		longName := strings.TrimSpace(v.Attr("long_name"))
		standardName := strings.TrimSpace(v.Attr("standard_name"))
		title := longName
		if title == "" {
			title = standardName
		}
		if title == "" {
			e.logger.Warn("metadata missing for variable: no long_name or standard_name attribute", "variable", name)
			title = name
		}

		id := NormalizeID(title)
		description := v.Attr("description")
		if description == "" {
			description = longName
		}
		if description == "" {
			description = id
		}
		vars = append(vars, Variable{
			ID:           id,
			Name:         name,
			Title:        title,
			Description:  description,
			StandardName: standardName,
		})
	}
	return vars
}

// NormalizeID lower-cases name and replaces spaces and path separators
// with hyphens.
func NormalizeID(name string) string {
	return idReplacer.Replace(strings.ToLower(strings.TrimSpace(name)))
}

// idReplacer keeps a normalized id to one path segment.
var idReplacer = strings.NewReplacer(" ", "-", "/", "-", `\`, "-")

// bounds returns the min and max of values, skipping NaN. ok is false when
// no finite value exists.
func bounds(values []float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = min(lo, v)
		hi = max(hi, v)
		ok = true
	}
	return lo, hi, ok
}
