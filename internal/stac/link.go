package stac

import (
	"path"
	"strings"
)

// Link relation types used in the catalog.
const (
	RelRoot            = "root"
	RelParent          = "parent"
	RelChild           = "child"
	RelSelf            = "self"
	RelRelated         = "related"
	RelVia             = "via"
	RelJupyterNotebook = "jupyter-notebook"
	RelEnvironment     = "environment"
)

// MediaTypeJSON is the media type of every catalog document.
const MediaTypeJSON = "application/json"

// Catalog sections, i.e. the top-level directories of the catalog tree.
const (
	SectionProducts    = "products"
	SectionVariables   = "variables"
	SectionProjects    = "projects"
	SectionWorkflows   = "workflow"
	SectionExperiments = "experiments"
)

// File names of the documents inside a section directory.
const (
	FileCollection = "collection.json"
	FileCatalog    = "catalog.json"
	FileRecord     = "record.json"
)

// RootTitle is the title of the catalog root.
const RootTitle = "Open Science Catalog"

// Link is a typed edge between two catalog documents.
type Link struct {
	Rel   string `json:"rel"`
	Href  string `json:"href"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
}

// Links is the ordered link list of a document.
type Links []Link

// Find returns the first link with the given relation.
func (ls Links) Find(rel string) (Link, bool) {
	for _, l := range ls {
		if l.Rel == rel {
			return l, true
		}
	}
	return Link{}, false
}

// FindAll returns all links with the given relation.
func (ls Links) FindAll(rel string) []Link {
	var out []Link
	for _, l := range ls {
		if l.Rel == rel {
			out = append(out, l)
		}
	}
	return out
}

// Add appends l unless a link with the same relation and href exists.
// An existing link gets the new title and type instead.
// Reports whether the link was appended.
func (ls *Links) Add(l Link) bool {
	for i, existing := range *ls {
		if existing.Rel == l.Rel && existing.Href == l.Href {
			if l.Title != "" {
				(*ls)[i].Title = l.Title
			}
			if l.Type != "" {
				(*ls)[i].Type = l.Type
			}
			return false
		}
	}
	*ls = append(*ls, l)
	return true
}

// Set replaces every link with l's relation by l, keeping the position of
// the first one.
func (ls *Links) Set(l Link) {
	out := make(Links, 0, len(*ls)+1)
	placed := false
	for _, existing := range *ls {
		if existing.Rel != l.Rel {
			out = append(out, existing)
			continue
		}
		if !placed {
			out = append(out, l)
			placed = true
		}
	}
	if !placed {
		out = append(out, l)
	}
	*ls = out
}

// DocumentPath returns the repository-relative path of a document,
// e.g. "variables/runoff/catalog.json".
func DocumentPath(section, id, file string) string {
	return path.Join(section, id, file)
}

// IndexPath returns the path of a section's base index catalog.
func IndexPath(section string) string {
	return path.Join(section, FileCatalog)
}

// SelfHref returns the absolute canonical URL of a document.
func SelfHref(baseURL, section, id, file string) string {
	return strings.TrimRight(baseURL, "/") + "/" + DocumentPath(section, id, file)
}

// FromDocument returns the href of another section's document as seen from
// a document two levels deep.
func FromDocument(section, id, file string) string {
	return "../../" + DocumentPath(section, id, file)
}

// FromIndex returns the href of a document as seen from its section index.
func FromIndex(id, file string) string {
	return "./" + path.Join(id, file)
}

// Resolve resolves href relative to the document at docPath and returns a
// repository-relative path. Absolute URLs are returned unchanged with ok=false.
func Resolve(docPath, href string) (string, bool) {
	if strings.Contains(href, "://") {
		return href, false
	}
	return path.Join(path.Dir(docPath), href), true
}

// RootLink returns the link to the catalog root.
func RootLink() Link {
	return Link{Rel: RelRoot, Href: "../../catalog.json", Type: MediaTypeJSON, Title: RootTitle}
}

// ParentLink returns the link to the section index a document lives in.
func ParentLink(title string) Link {
	return Link{Rel: RelParent, Href: "../catalog.json", Type: MediaTypeJSON, Title: title}
}

// SelfLink returns a self link for href.
func SelfLink(href string) Link {
	return Link{Rel: RelSelf, Href: href, Type: MediaTypeJSON}
}
