package record

import (
	"fmt"

	"github.com/deepesdl/deep-code/internal/config"
	"github.com/deepesdl/deep-code/internal/stac"
)

// DefaultContactRole is assigned to contacts that declare no roles.
const DefaultContactRole = "principal investigator"

// Media type of the notebook link on workflow records.
const mediaTypeNotebook = "application/x-ipynb+json"

// BuildRecordProperties merges configured properties with contacts. Theme
// tags become a single theme in the science keywords scheme. The record
// type defaults to workflow.
func (b *Builder) BuildRecordProperties(fields config.Properties, contacts []config.Contact) (*stac.RecordProperties, error) {
	now := b.Now()
	p := &stac.RecordProperties{
		Created:     now,
		Updated:     now,
		Type:        fields.Type,
		Title:       fields.Title,
		Description: fields.Description,
		Keywords:    nonNil(fields.Keywords),
		Contacts:    make([]stac.Contact, 0, len(contacts)),
		Formats:     make([]stac.Format, 0, len(fields.Formats)),
		License:     fields.License,
	}
	if p.Type == "" {
		p.Type = stac.RecordWorkflow
	}
	if len(fields.Themes) > 0 {
		p.Themes = []stac.Theme{stac.NewTheme(stac.ThemeSchemeURI, fields.Themes)}
	}
	for _, f := range fields.Formats {
		p.Formats = append(p.Formats, stac.Format{Name: f.Name})
	}
	if k := fields.JupyterKernelInfo; k != nil {
		p.JupyterKernelInfo = &stac.JupyterKernelInfo{
			Name:          k.Name,
			PythonVersion: k.PythonVersion,
			EnvFile:       k.EnvFile,
		}
	}

	var issues []string
	for i, c := range contacts {
		if c.Name == "" {
			issues = append(issues, fmt.Sprintf("contact[%d].name is required", i))
			continue
		}
		roles := c.Roles
		if len(roles) == 0 {
			roles = []string{DefaultContactRole}
		}
		p.Contacts = append(p.Contacts, stac.Contact{
			Name:                c.Name,
			Organization:        c.Organization,
			Position:            c.Position,
			Links:               c.Links,
			ContactInstructions: c.ContactInstructions,
			Roles:               roles,
		})
	}
	if len(issues) > 0 {
		return nil, &ValidationError{Code: InvalidRecord, Issues: issues}
	}
	return p, nil
}

// WorkflowID returns the normalized id shared by a workflow's records.
func WorkflowID(cfg config.WorkflowConfig) string {
	return normalizeID(cfg.WorkflowID)
}

// BuildWorkflowRecord builds workflow/<id>/record.json.
func (b *Builder) BuildWorkflowRecord(cfg config.WorkflowConfig) (*stac.Record, error) {
	if err := CheckWorkflowID(cfg.WorkflowID); err != nil {
		return nil, err
	}
	props, err := b.BuildRecordProperties(cfg.Properties, cfg.Contacts)
	if err != nil {
		return nil, err
	}
	id := WorkflowID(cfg)
	r := newRecord(id, *props)

	r.Links = stac.Links{stac.RootLink(), stac.ParentLink(WorkflowsTitle)}
	r.Links.Add(stac.Link{
		Rel:   stac.RelRelated,
		Href:  stac.FromDocument(stac.SectionExperiments, id, stac.FileRecord),
		Type:  stac.MediaTypeJSON,
		Title: "Experiment: " + props.Title,
	})
	b.addCommonLinks(r, cfg)
	r.Links.Add(stac.SelfLink(stac.SelfHref(b.BaseURL, stac.SectionWorkflows, id, stac.FileRecord)))

	if err := ValidateRecord(r); err != nil {
		return nil, err
	}
	return r, nil
}

// BuildExperimentRecord builds experiments/<id>/record.json, the
// counterpart of the workflow record with the same id.
func (b *Builder) BuildExperimentRecord(cfg config.WorkflowConfig) (*stac.Record, error) {
	if err := CheckWorkflowID(cfg.WorkflowID); err != nil {
		return nil, err
	}
	props, err := b.BuildRecordProperties(cfg.Properties, cfg.Contacts)
	if err != nil {
		return nil, err
	}
	props.Type = stac.RecordExperiment
	id := WorkflowID(cfg)
	r := newRecord(id, *props)

	r.Links = stac.Links{stac.RootLink(), stac.ParentLink(ExperimentsTitle)}
	r.Links.Add(stac.Link{
		Rel:   stac.RelRelated,
		Href:  stac.FromDocument(stac.SectionWorkflows, id, stac.FileRecord),
		Type:  stac.MediaTypeJSON,
		Title: "Workflow: " + props.Title,
	})
	b.addCommonLinks(r, cfg)
	r.Links.Add(stac.SelfLink(stac.SelfHref(b.BaseURL, stac.SectionExperiments, id, stac.FileRecord)))

	if err := ValidateRecord(r); err != nil {
		return nil, err
	}
	return r, nil
}

func newRecord(id string, props stac.RecordProperties) *stac.Record {
	return &stac.Record{
		ID:            id,
		Type:          stac.TypeFeature,
		ConformsTo:    []string{stac.RecordCoreSpec},
		Properties:    props,
		LinkTemplates: []any{},
	}
}

// addCommonLinks adds the project, notebook, environment and user links.
func (b *Builder) addCommonLinks(r *stac.Record, cfg config.WorkflowConfig) {
	r.Links.Add(stac.Link{
		Rel:   stac.RelRelated,
		Href:  stac.FromDocument(stac.SectionProjects, b.ProjectID, stac.FileCollection),
		Type:  stac.MediaTypeJSON,
		Title: "Project: " + b.ProjectID,
	})
	if cfg.JupyterNotebookURL != "" {
		r.Links.Add(stac.Link{
			Rel:   stac.RelJupyterNotebook,
			Href:  cfg.JupyterNotebookURL,
			Type:  mediaTypeNotebook,
			Title: "Jupyter Notebook",
		})
	}
	if k := cfg.Properties.JupyterKernelInfo; k != nil && k.EnvFile != "" {
		r.Links.Add(stac.Link{
			Rel:   stac.RelEnvironment,
			Href:  k.EnvFile,
			Title: "Execution environment",
		})
	}
	for _, l := range cfg.Links {
		// Generated structural links win over configured ones.
		if l.Rel == stac.RelRoot || l.Rel == stac.RelParent || l.Rel == stac.RelSelf {
			continue
		}
		r.Links.Add(stac.Link{Rel: l.Rel, Href: l.Href, Type: l.Type, Title: l.Title})
	}
}
