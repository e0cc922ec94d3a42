// Package linker computes which catalog documents must be written so the
// link graph stays consistent after a publish.
//
// The functions here are pure. The caller loads the existing documents
// named by [DatasetPaths] or [WorkflowPaths] from the working copy, passes
// them in, and writes back the returned [Files]. Loaded documents are
// mutated in place and must not be shared between publishes.
package linker

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/deepesdl/deep-code/internal/record"
	"github.com/deepesdl/deep-code/internal/stac"
)

// Documents maps repository-relative paths to documents that exist in the
// working copy. Paths absent from the map do not exist.
type Documents map[string]*stac.Document

// Files maps repository-relative paths to the content to write. Values
// are catalog documents that encode to JSON.
type Files map[string]stac.Linked

// Paths returns the file paths in sorted order.
func (f Files) Paths() []string {
	return slices.Sorted(maps.Keys(f))
}

// DatasetChange is a freshly built product collection and a fresh catalog
// for each of its variables.
type DatasetChange struct {
	Collection       *stac.Collection
	VariableCatalogs []*stac.Catalog
	ProjectID        string
}

// WorkflowChange is a workflow record and its paired experiment record.
type WorkflowChange struct {
	Workflow   *stac.Record
	Experiment *stac.Record
}

// DatasetPaths lists the documents LinkDataset reads if they exist.
func DatasetPaths(change DatasetChange) []string {
	paths := make([]string, 0, len(change.VariableCatalogs)+3)
	for _, cat := range change.VariableCatalogs {
		paths = append(paths, stac.DocumentPath(stac.SectionVariables, cat.ID, stac.FileCatalog))
	}
	return append(paths,
		stac.IndexPath(stac.SectionVariables),
		stac.IndexPath(stac.SectionProducts),
		stac.DocumentPath(stac.SectionProjects, change.ProjectID, stac.FileCollection),
	)
}

// WorkflowPaths lists the documents LinkWorkflow reads if they exist.
func WorkflowPaths(WorkflowChange) []string {
	return []string{
		stac.IndexPath(stac.SectionWorkflows),
		stac.IndexPath(stac.SectionExperiments),
	}
}

// LinkDataset returns every document to write for a new or republished
// product collection:
//
//   - the collection itself
//   - per variable, the fresh catalog, or the existing one with a child
//     link to the collection, a new updated time and a rewritten self link
//   - the variables index, the products index and the project collection,
//     each with a child link to its new member, when they exist
//
// Child links are keyed by href, so publishing the same dataset again
// refreshes link titles instead of adding duplicates.
func LinkDataset(change DatasetChange, existing Documents) (Files, error) {
	c := change.Collection
	if c == nil || c.ID == "" {
		return nil, errors.New("link dataset: collection without id")
	}
	if change.ProjectID == "" {
		return nil, errors.New("link dataset: project id is required")
	}

	title := c.Title
	if title == "" {
		title = c.ID
	}
	title = stac.FoldASCII(title)

	files := Files{
		stac.DocumentPath(stac.SectionProducts, c.ID, stac.FileCollection): c,
	}

	for _, fresh := range change.VariableCatalogs {
		if fresh == nil || fresh.ID == "" {
			return nil, fmt.Errorf("link dataset %s: variable catalog without id", c.ID)
		}
		path := stac.DocumentPath(stac.SectionVariables, fresh.ID, stac.FileCatalog)
		doc, ok := existing[path]
		if !ok {
			files[path] = fresh
			continue
		}
		doc.Links.Add(record.ProductLink(c.ID, title))
		if err := doc.Set("updated", c.Updated); err != nil {
			return nil, fmt.Errorf("update %s: %w", path, err)
		}
		if self, ok := fresh.Links.Find(stac.RelSelf); ok {
			doc.SetSelf(self.Href)
		}
		files[path] = doc
	}

	if idx, ok := existing[stac.IndexPath(stac.SectionVariables)]; ok {
		children := make([]stac.Link, 0, len(change.VariableCatalogs))
		for _, fresh := range change.VariableCatalogs {
			children = append(children, indexChild(fresh.ID, stac.FileCatalog, fresh.Title))
		}
		addChildren(files, stac.IndexPath(stac.SectionVariables), idx, children...)
	}
	if idx, ok := existing[stac.IndexPath(stac.SectionProducts)]; ok {
		addChildren(files, stac.IndexPath(stac.SectionProducts), idx,
			indexChild(c.ID, stac.FileCollection, title))
	}
	projectPath := stac.DocumentPath(stac.SectionProjects, change.ProjectID, stac.FileCollection)
	if project, ok := existing[projectPath]; ok {
		addChildren(files, projectPath, project, record.ProductLink(c.ID, title))
	}

	foldReachable(files, existing, stac.IndexPath(stac.SectionProducts), stac.IndexPath(stac.SectionVariables))
	for _, cat := range change.VariableCatalogs {
		cat.Links.FoldTitles()
	}
	return files, nil
}

// LinkWorkflow returns the workflow and experiment records plus the
// workflow and experiments indexes, when they exist, with a child link to
// the new records.
func LinkWorkflow(change WorkflowChange, existing Documents) (Files, error) {
	wf, exp := change.Workflow, change.Experiment
	if wf == nil || exp == nil {
		return nil, errors.New("link workflow: workflow and experiment records are published together")
	}
	if wf.ID == "" || wf.ID != exp.ID {
		return nil, fmt.Errorf("link workflow: record ids %q and %q must match", wf.ID, exp.ID)
	}

	files := Files{
		stac.DocumentPath(stac.SectionWorkflows, wf.ID, stac.FileRecord):   wf,
		stac.DocumentPath(stac.SectionExperiments, exp.ID, stac.FileRecord): exp,
	}

	for _, section := range []struct {
		name string
		rec  *stac.Record
	}{
		{stac.SectionWorkflows, wf},
		{stac.SectionExperiments, exp},
	} {
		path := stac.IndexPath(section.name)
		if idx, ok := existing[path]; ok {
			title := section.rec.Properties.Title
			if title == "" {
				title = section.rec.ID
			}
			addChildren(files, path, idx, indexChild(section.rec.ID, stac.FileRecord, title))
		}
	}

	foldReachable(files, existing, stac.IndexPath(stac.SectionWorkflows), stac.IndexPath(stac.SectionExperiments))
	return files, nil
}

// indexChild is the child link from a section index to one of its members.
func indexChild(id, file, title string) stac.Link {
	return stac.Link{
		Rel:   stac.RelChild,
		Href:  stac.FromIndex(id, file),
		Type:  stac.MediaTypeJSON,
		Title: stac.FoldASCII(title),
	}
}

// addChildren adds child links to doc and schedules it for writing when
// its links changed.
func addChildren(files Files, path string, doc *stac.Document, children ...stac.Link) {
	before := slices.Clone(doc.Links)
	for _, l := range children {
		doc.Links.Add(l)
	}
	if !slices.Equal(before, doc.Links) {
		files[path] = doc
	}
}

// foldReachable ASCII-folds the link titles of every document reachable
// from roots by child links, looking documents up first among the files to
// write and then among the existing ones. Existing documents whose titles
// changed are added to files.
func foldReachable(files Files, existing Documents, roots ...string) {
	seen := map[string]bool{}
	queue := slices.Clone(roots)
	for len(queue) > 0 {
		path := queue[0]
		queue = queue[1:]
		if seen[path] {
			continue
		}
		seen[path] = true

		var doc stac.Linked
		if f, ok := files[path]; ok {
			doc = f
		} else if e, ok := existing[path]; ok {
			doc = e
		} else {
			continue
		}

		links := doc.LinkSet()
		if links.FoldTitles() {
			if _, scheduled := files[path]; !scheduled {
				files[path] = doc
			}
		}
		for _, l := range links.FindAll(stac.RelChild) {
			if next, ok := stac.Resolve(path, l.Href); ok && !seen[next] {
				queue = append(queue, next)
			}
		}
	}
}
