// Package record builds the catalog documents published for datasets and
// workflows: product collections, variable catalogs and OGC records.
//
// Building is pure. The only input besides the arguments is the [Builder]
// clock, so tests can pin timestamps.
package record

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/deepesdl/deep-code/internal/config"
	"github.com/deepesdl/deep-code/internal/extract"
	"github.com/deepesdl/deep-code/internal/stac"
)

// Titles of the section indexes, used on parent links.
const (
	ProductsTitle    = "Products"
	VariablesTitle   = "Variables"
	WorkflowsTitle   = "Workflows"
	ExperimentsTitle = "Experiments"
)

// PublicBucket is the bucket behind the default access link.
const PublicBucket = "deep-esdl-public"

// standardNameVocab resolves CF standard names.
const standardNameVocab = "https://vocab.nerc.ac.uk/standard_name/"

// Builder turns extracted metadata and user configuration into records.
type Builder struct {
	Clock     func() time.Time
	BaseURL   string // prefix of self links
	ProjectID string
}

// NewBuilder creates a builder using the wall clock.
func NewBuilder(baseURL, projectID string) *Builder {
	return &Builder{Clock: time.Now, BaseURL: baseURL, ProjectID: projectID}
}

// Time returns the builder's current instant in UTC.
func (b *Builder) Time() time.Time {
	if b.Clock == nil {
		return time.Now().UTC()
	}
	return b.Clock().UTC()
}

// Now returns the builder's current instant formatted as RFC 3339 UTC.
func (b *Builder) Now() string {
	return b.Time().Format(time.RFC3339)
}

// DatasetInput is everything a product collection is built from.
type DatasetInput struct {
	DatasetID         string
	CollectionID      string
	Metadata          *extract.Metadata
	Status            string
	Region            string
	Themes            []string
	Missions          []string
	CFParameters      []config.CFParameter
	AccessLink        string
	DocumentationLink string
}

// DatasetInputFromConfig combines a dataset config with extracted metadata.
func DatasetInputFromConfig(cfg config.DatasetConfig, md *extract.Metadata) DatasetInput {
	return DatasetInput{
		DatasetID:         cfg.DatasetID,
		CollectionID:      cfg.CollectionID,
		Metadata:          md,
		Status:            cfg.Status,
		Region:            cfg.Region,
		Themes:            cfg.Themes,
		Missions:          cfg.Missions,
		CFParameters:      cfg.CFParameters,
		AccessLink:        cfg.AccessLink,
		DocumentationLink: cfg.DocumentationLink,
	}
}

// BuildCollection builds the product collection for a dataset. created and
// updated carry the same instant.
func (b *Builder) BuildCollection(in DatasetInput) (*stac.Collection, error) {
	if err := CheckIdentifiers(in.DatasetID, in.CollectionID); err != nil {
		return nil, err
	}
	if in.Metadata == nil {
		return nil, fmt.Errorf("build collection %s: no metadata", in.CollectionID)
	}
	md := in.Metadata
	now := b.Now()

	params := make([]stac.CFParameter, 0, len(in.CFParameters))
	for _, p := range in.CFParameters {
		params = append(params, stac.CFParameter{Name: p.Name, Units: p.Units})
	}
	if len(params) == 0 {
		params = []stac.CFParameter{{Name: in.CollectionID}}
	}

	access := in.AccessLink
	if access == "" {
		access = "s3://" + PublicBucket + "/" + in.DatasetID
	}

	title := md.Title
	if title == "" {
		title = in.CollectionID
	}

	variables := uniqueVariables(md.Variables)
	bbox := md.SpatialExtent
	c := &stac.Collection{
		Type:           stac.TypeCollection,
		ID:             in.CollectionID,
		StacVersion:    stac.Version,
		StacExtensions: []string{stac.OSCSchemaURI, stac.CFSchemaURI},
		Title:          title,
		Description:    md.Description,
		License:        stac.DefaultLicense,
		Extent: stac.Extent{
			Spatial: stac.SpatialExtent{BBox: [][]float64{bbox[:]}},
			Temporal: stac.TemporalExtent{Interval: [][]*string{{
				formatTime(md.TemporalExtent.Start),
				formatTime(md.TemporalExtent.End),
			}}},
		},
		Project:      b.ProjectID,
		OSCType:      stac.OSCTypeProduct,
		Status:       in.Status,
		Region:       in.Region,
		Themes:       nonNil(in.Themes),
		Variables:    variableIDs(variables),
		Missions:     nonNil(in.Missions),
		CFParameters: params,
		Created:      now,
		Updated:      now,
	}

	c.Links = stac.Links{stac.RootLink()}
	c.Links.Add(stac.Link{Rel: stac.RelVia, Href: access, Title: "Access"})
	if in.DocumentationLink != "" {
		c.Links.Add(stac.Link{Rel: stac.RelVia, Href: in.DocumentationLink, Title: "Documentation"})
	}
	c.Links.Add(stac.ParentLink(ProductsTitle))
	c.Links.Add(stac.Link{
		Rel:   stac.RelRelated,
		Href:  stac.FromDocument(stac.SectionProjects, b.ProjectID, stac.FileCollection),
		Type:  stac.MediaTypeJSON,
		Title: "Project: " + b.ProjectID,
	})
	for _, v := range variables {
		c.Links.Add(stac.Link{
			Rel:   stac.RelRelated,
			Href:  stac.FromDocument(stac.SectionVariables, v.ID, stac.FileCatalog),
			Type:  stac.MediaTypeJSON,
			Title: "Variable: " + v.Title,
		})
	}
	c.Links.Add(stac.SelfLink(stac.SelfHref(b.BaseURL, stac.SectionProducts, c.ID, stac.FileCollection)))

	if err := ValidateCollection(c); err != nil {
		return nil, err
	}
	return c, nil
}

// BuildVariableCatalog builds a fresh variable catalog whose only child is
// the given collection.
func (b *Builder) BuildVariableCatalog(v extract.Variable, collectionID, collectionTitle string, themes []string) *stac.Catalog {
	cat := &stac.Catalog{
		Type:        stac.TypeCatalog,
		ID:          v.ID,
		StacVersion: stac.Version,
		Title:       v.Title,
		Description: v.Description,
		Updated:     b.Now(),
	}
	if len(themes) > 0 {
		cat.StacExtensions = []string{stac.ThemesSchemaURI}
		cat.Themes = []stac.Theme{stac.NewTheme(stac.ThemeSchemeURI, themes)}
	}

	cat.Links = stac.Links{stac.RootLink()}
	cat.Links.Add(stac.ParentLink(VariablesTitle))
	cat.Links.Add(ProductLink(collectionID, collectionTitle))
	if v.StandardName != "" {
		cat.Links.Add(stac.Link{
			Rel:   stac.RelVia,
			Href:  standardNameVocab + url.PathEscape(v.StandardName) + "/",
			Type:  "text/html",
			Title: "Description",
		})
	}
	cat.Links.Add(stac.SelfLink(stac.SelfHref(b.BaseURL, stac.SectionVariables, v.ID, stac.FileCatalog)))
	return cat
}

// BuildVariableCatalogs builds one fresh catalog per distinct variable id of
// the collection.
func (b *Builder) BuildVariableCatalogs(c *stac.Collection, md *extract.Metadata) []*stac.Catalog {
	vars := uniqueVariables(md.Variables)
	out := make([]*stac.Catalog, 0, len(vars))
	for _, v := range vars {
		out = append(out, b.BuildVariableCatalog(v, c.ID, c.Title, c.Themes))
	}
	return out
}

// ProductLink is the child link from another document two levels deep to
// a product collection.
func ProductLink(collectionID, title string) stac.Link {
	if title == "" {
		title = collectionID
	}
	return stac.Link{
		Rel:   stac.RelChild,
		Href:  stac.FromDocument(stac.SectionProducts, collectionID, stac.FileCollection),
		Type:  stac.MediaTypeJSON,
		Title: title,
	}
}

// uniqueVariables drops variables whose id was already seen, keeping order.
func uniqueVariables(vars []extract.Variable) []extract.Variable {
	seen := make(map[string]bool, len(vars))
	out := make([]extract.Variable, 0, len(vars))
	for _, v := range vars {
		if seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		out = append(out, v)
	}
	return out
}

func variableIDs(vars []extract.Variable) []string {
	ids := make([]string, len(vars))
	for i, v := range vars {
		ids[i] = v.ID
	}
	return ids
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// normalizeID turns a user supplied id into its catalog form.
func normalizeID(id string) string {
	return extract.NormalizeID(strings.TrimSpace(id))
}
