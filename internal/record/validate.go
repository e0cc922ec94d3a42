package record

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/deepesdl/deep-code/internal/config"
	"github.com/deepesdl/deep-code/internal/stac"
)

// ValidateCollection checks a product collection against the rules of the
// OSC and CF extensions. All problems are reported together.
func ValidateCollection(c *stac.Collection) error {
	var issues []string
	add := func(format string, args ...any) {
		issues = append(issues, fmt.Sprintf(format, args...))
	}

	if c.ID == "" {
		add("id is required")
	}
	if c.Type != stac.TypeCollection {
		add("type must be %q", stac.TypeCollection)
	}
	if c.StacVersion != stac.Version {
		add("stac_version must be %q", stac.Version)
	}
	for _, ext := range []string{stac.OSCSchemaURI, stac.CFSchemaURI} {
		if !slices.Contains(c.StacExtensions, ext) {
			add("stac_extensions must include %s", ext)
		}
	}
	if c.Description == "" {
		add("description is required")
	}
	if c.Project == "" {
		add("osc:project is required")
	}
	if c.OSCType != stac.OSCTypeProduct {
		add("osc:type must be %q", stac.OSCTypeProduct)
	}
	if err := config.ValidateStatus(c.Status); err != nil || c.Status == "" {
		add("osc:status must be one of %s", strings.Join(config.ValidDatasetStatuses, ", "))
	}
	if dup := firstDuplicate(c.Variables); dup != "" {
		add("osc:variables contains %q twice", dup)
	}
	for i, p := range c.CFParameters {
		if p.Name == "" {
			add("cf:parameter[%d].name is required", i)
		}
	}

	if len(c.Extent.Spatial.BBox) == 0 {
		add("extent.spatial.bbox is required")
	}
	for i, box := range c.Extent.Spatial.BBox {
		if len(box) != 4 {
			add("extent.spatial.bbox[%d] must have 4 values", i)
			continue
		}
		if box[0] > box[2] || box[1] > box[3] {
			add("extent.spatial.bbox[%d] has min greater than max", i)
		}
	}
	for i, interval := range c.Extent.Temporal.Interval {
		issues = append(issues, checkInterval(i, interval)...)
	}

	for _, field := range []struct{ name, value string }{{"created", c.Created}, {"updated", c.Updated}} {
		if _, err := time.Parse(time.RFC3339, field.value); err != nil {
			add("%s must be an RFC 3339 timestamp", field.name)
		}
	}
	issues = append(issues, checkLinks(c.Links)...)

	if len(issues) > 0 {
		return &ValidationError{Code: InvalidRecord, Record: c.ID, Issues: issues}
	}
	return nil
}

// ValidateRecord checks a workflow or experiment record.
func ValidateRecord(r *stac.Record) error {
	var issues []string
	add := func(format string, args ...any) {
		issues = append(issues, fmt.Sprintf(format, args...))
	}

	if r.ID == "" {
		add("id is required")
	}
	if r.Type != stac.TypeFeature {
		add("type must be %q", stac.TypeFeature)
	}
	if !slices.Contains(r.ConformsTo, stac.RecordCoreSpec) {
		add("conformsTo must include %s", stac.RecordCoreSpec)
	}
	p := r.Properties
	if p.Title == "" {
		add("properties.title is required")
	}
	if !slices.Contains(config.ValidRecordTypes, p.Type) {
		add("properties.type must be one of %s", strings.Join(config.ValidRecordTypes, ", "))
	}
	for _, field := range []struct{ name, value string }{{"created", p.Created}, {"updated", p.Updated}} {
		if _, err := time.Parse(time.RFC3339, field.value); err != nil {
			add("properties.%s must be an RFC 3339 timestamp", field.name)
		}
	}
	for i, c := range p.Contacts {
		if c.Name == "" {
			add("properties.contacts[%d].name is required", i)
		}
	}
	for i, theme := range p.Themes {
		if theme.Scheme == "" || len(theme.Concepts) == 0 {
			add("properties.themes[%d] needs a scheme and at least one concept", i)
		}
	}
	issues = append(issues, checkLinks(r.Links)...)

	if len(issues) > 0 {
		return &ValidationError{Code: InvalidRecord, Record: r.ID, Issues: issues}
	}
	return nil
}

func checkInterval(i int, interval []*string) []string {
	if len(interval) != 2 {
		return []string{fmt.Sprintf("extent.temporal.interval[%d] must have 2 values", i)}
	}
	var bounds [2]time.Time
	for j, v := range interval {
		if v == nil {
			continue
		}
		t, err := time.Parse(time.RFC3339, *v)
		if err != nil {
			return []string{fmt.Sprintf("extent.temporal.interval[%d][%d] must be an RFC 3339 timestamp", i, j)}
		}
		bounds[j] = t
	}
	if interval[0] != nil && interval[1] != nil && bounds[1].Before(bounds[0]) {
		return []string{fmt.Sprintf("extent.temporal.interval[%d] ends before it starts", i)}
	}
	return nil
}

// checkLinks requires one root, one parent and one absolute self link.
func checkLinks(links stac.Links) []string {
	var issues []string
	for _, rel := range []string{stac.RelRoot, stac.RelParent, stac.RelSelf} {
		if n := len(links.FindAll(rel)); n != 1 {
			issues = append(issues, fmt.Sprintf("expected exactly one %q link, found %d", rel, n))
		}
	}
	if self, ok := links.Find(stac.RelSelf); ok && !strings.Contains(self.Href, "://") {
		issues = append(issues, fmt.Sprintf("self link %q must be absolute", self.Href))
	}
	for i, l := range links {
		if l.Href == "" {
			issues = append(issues, fmt.Sprintf("links[%d] (%s) has no href", i, l.Rel))
		}
	}
	return issues
}

func firstDuplicate(values []string) string {
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if seen[v] {
			return v
		}
		seen[v] = true
	}
	return ""
}
