package stac

// Schema and vocabulary URIs stamped into generated documents.
const (
	Version          = "1.0.0"
	OSCSchemaURI     = "https://stac-extensions.github.io/osc/v1.0.0-rc.3/schema.json"
	CFSchemaURI      = "https://stac-extensions.github.io/cf/v0.2.0/schema.json"
	ThemesSchemaURI  = "https://stac-extensions.github.io/themes/v1.0.0/schema.json"
	ThemeSchemeURI   = "https://gcmd.earthdata.nasa.gov/kms/concepts/concept_scheme/sciencekeywords"
	RecordCoreSpec   = "http://www.opengis.net/spec/ogcapi-records-1/1.0/req/record-core"
	OSCTypeProduct   = "product"
	DefaultLicense   = "proprietary"
	TypeCollection   = "Collection"
	TypeCatalog      = "Catalog"
	TypeFeature      = "Feature"
	RecordWorkflow   = "workflow"
	RecordExperiment = "experiment"
)

// Collection is a dataset collection document (products/<id>/collection.json).
type Collection struct {
	Type           string        `json:"type"`
	ID             string        `json:"id"`
	StacVersion    string        `json:"stac_version"`
	StacExtensions []string      `json:"stac_extensions"`
	Title          string        `json:"title,omitempty"`
	Description    string        `json:"description"`
	License        string        `json:"license"`
	Keywords       []string      `json:"keywords,omitempty"`
	Extent         Extent        `json:"extent"`
	Project        string        `json:"osc:project"`
	OSCType        string        `json:"osc:type"`
	Status         string        `json:"osc:status"`
	Region         string        `json:"osc:region"`
	Themes         []string      `json:"osc:themes"`
	Variables      []string      `json:"osc:variables"`
	Missions       []string      `json:"osc:missions"`
	CFParameters   []CFParameter `json:"cf:parameter"`
	Created        string        `json:"created"`
	Updated        string        `json:"updated"`
	Links          Links         `json:"links"`
}

// Extent is the spatio-temporal extent of a collection.
type Extent struct {
	Spatial  SpatialExtent  `json:"spatial"`
	Temporal TemporalExtent `json:"temporal"`
}

// SpatialExtent holds bounding boxes as [minX, minY, maxX, maxY].
type SpatialExtent struct {
	BBox [][]float64 `json:"bbox"`
}

// TemporalExtent holds [start, end] intervals; a nil end is open.
type TemporalExtent struct {
	Interval [][]*string `json:"interval"`
}

// CFParameter names a Climate and Forecast convention parameter.
type CFParameter struct {
	Name  string `json:"name"`
	Units string `json:"units,omitempty"`
}

// Catalog is a catalog document, used for variable catalogs.
type Catalog struct {
	Type           string   `json:"type"`
	ID             string   `json:"id"`
	StacVersion    string   `json:"stac_version"`
	StacExtensions []string `json:"stac_extensions,omitempty"`
	Title          string   `json:"title,omitempty"`
	Description    string   `json:"description"`
	Themes         []Theme  `json:"themes,omitempty"`
	Updated        string   `json:"updated,omitempty"`
	Links          Links    `json:"links"`
}

// Record is an OGC API record, used for workflows and experiments.
type Record struct {
	ID            string           `json:"id"`
	Type          string           `json:"type"`
	ConformsTo    []string         `json:"conformsTo"`
	Time          RecordTime       `json:"time"`
	Geometry      any              `json:"geometry"`
	Properties    RecordProperties `json:"properties"`
	LinkTemplates []any            `json:"linkTemplates"`
	Links         Links            `json:"links"`
}

// RecordTime is the temporal coverage of a record. Empty for workflows.
type RecordTime struct {
	Interval []*string `json:"interval,omitempty"`
}

// RecordProperties are the descriptive properties of an OGC record.
type RecordProperties struct {
	Created           string             `json:"created"`
	Updated           string             `json:"updated"`
	Type              string             `json:"type"`
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	Keywords          []string           `json:"keywords"`
	Contacts          []Contact          `json:"contacts"`
	Themes            []Theme            `json:"themes,omitempty"`
	Formats           []Format           `json:"formats"`
	License           string             `json:"license,omitempty"`
	JupyterKernelInfo *JupyterKernelInfo `json:"jupyter_kernel_info,omitempty"`
}

// Contact is a person or organisation responsible for a record.
type Contact struct {
	Name                string           `json:"name"`
	Organization        string           `json:"organization,omitempty"`
	Position            string           `json:"position,omitempty"`
	Links               []map[string]any `json:"links,omitempty"`
	ContactInstructions string           `json:"contactInstructions,omitempty"`
	Roles               []string         `json:"roles"`
}

// Theme binds concepts to a controlled vocabulary scheme.
type Theme struct {
	Concepts []ThemeConcept `json:"concepts"`
	Scheme   string         `json:"scheme"`
}

// ThemeConcept is one term of a theme scheme.
type ThemeConcept struct {
	ID string `json:"id"`
}

// Format names a data format produced or consumed by a workflow.
type Format struct {
	Name string `json:"name"`
}

// JupyterKernelInfo describes the execution environment of a notebook.
type JupyterKernelInfo struct {
	Name          string  `json:"name"`
	PythonVersion float64 `json:"python_version"`
	EnvFile       string  `json:"env_file"`
}

// NewTheme builds a single theme from tags in the given scheme.
func NewTheme(scheme string, tags []string) Theme {
	concepts := make([]ThemeConcept, 0, len(tags))
	for _, t := range tags {
		concepts = append(concepts, ThemeConcept{ID: t})
	}
	return Theme{Concepts: concepts, Scheme: scheme}
}

// Linked is implemented by every catalog document type.
type Linked interface {
	LinkSet() *Links
}

func (c *Collection) LinkSet() *Links { return &c.Links }
func (c *Catalog) LinkSet() *Links    { return &c.Links }
func (r *Record) LinkSet() *Links     { return &r.Links }

// LinkSet exposes a loaded document's links for rewriting.
func (d *Document) LinkSet() *Links { return &d.Links }
