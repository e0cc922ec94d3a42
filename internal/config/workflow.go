package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

var workflowKeys = []string{"workflow_id", "properties", "contact", "links", "jupyter_notebook_url"}

var propertyKeys = []string{
	"title",
	"description",
	"keywords",
	"themes",
	"license",
	"jupyter_kernel_info",
	"formats",
	"type",
}

var (
	kernelInfoKeys = []string{"name", "python_version", "env_file"}
	formatKeys     = []string{"name"}
	contactKeys    = []string{"name", "organization", "position", "links", "contactInstructions", "roles"}
	linkKeys       = []string{"rel", "href", "type", "title"}
)

// WorkflowConfig describes one workflow to publish as a workflow/experiment
// record pair.
type WorkflowConfig struct {
	WorkflowID         string
	Properties         Properties
	Contacts           []Contact
	Links              []Link
	JupyterNotebookURL string
}

// Properties are the free-form record properties of a workflow. In YAML they
// are written as a list of single-key mappings which are merged in order.
type Properties struct {
	Title             string
	Description       string
	Keywords          []string
	Themes            []string
	License           string
	Type              string
	Formats           []Format
	JupyterKernelInfo *JupyterKernelInfo
}

type Format struct {
	Name string
}

// JupyterKernelInfo names the kernel and environment a notebook runs in.
type JupyterKernelInfo struct {
	Name          string
	PythonVersion float64
	EnvFile       string
}

// Contact is a person or organization responsible for the workflow.
type Contact struct {
	Name                string
	Organization        string
	Position            string
	Links               []map[string]any
	ContactInstructions string
	Roles               []string
}

// Link is an extra link copied onto the workflow record as given.
type Link struct {
	Rel   string
	Href  string
	Type  string
	Title string
}

// LoadWorkflow reads a workflow config file.
func LoadWorkflow(path string) (WorkflowConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return WorkflowConfig{}, &Error{Source: path, Err: err}
	}
	return ParseWorkflow(data, path)
}

// ParseWorkflow decodes workflow config YAML. A missing workflow_id is not an
// error here; the publisher rejects it before any remote call.
func ParseWorkflow(data []byte, source string) (WorkflowConfig, error) {
	errs := &Error{Source: source}
	root := parseDocument(data, errs)
	if root == nil {
		return WorkflowConfig{}, errs
	}

	f := fields(root, "", workflowKeys, errs)
	var cfg WorkflowConfig
	decode(f["workflow_id"], "workflow_id", &cfg.WorkflowID, errs)
	decode(f["jupyter_notebook_url"], "jupyter_notebook_url", &cfg.JupyterNotebookURL, errs)
	cfg.Properties = parseProperties(f["properties"], errs)
	cfg.Contacts = parseContacts(f["contact"], errs)
	cfg.Links = parseLinks(f["links"], "links", errs)

	if err := errs.orNil(); err != nil {
		return WorkflowConfig{}, err
	}
	return cfg, nil
}

// parseProperties merges a list of single-key mappings. A plain mapping is
// accepted too.
func parseProperties(value *yaml.Node, errs *Error) Properties {
	var merged []*yaml.Node // alternating key/value nodes
	switch {
	case value == nil || isNull(value):
		return Properties{}
	case value.Kind == yaml.MappingNode:
		merged = value.Content
	case value.Kind == yaml.SequenceNode:
		for i, item := range value.Content {
			if !mapping(item, index("properties", i), errs) {
				continue
			}
			merged = append(merged, item.Content...)
		}
	default:
		errs.addf("properties", "expected a list of mappings (line %d)", value.Line)
		return Properties{}
	}

	f := fields(&yaml.Node{Kind: yaml.MappingNode, Content: merged}, "properties", propertyKeys, errs)
	var p Properties
	decode(f["title"], "properties.title", &p.Title, errs)
	decode(f["description"], "properties.description", &p.Description, errs)
	decode(f["keywords"], "properties.keywords", &p.Keywords, errs)
	decode(f["themes"], "properties.themes", &p.Themes, errs)
	decode(f["license"], "properties.license", &p.License, errs)
	if decode(f["type"], "properties.type", &p.Type, errs) {
		if err := validateEnum(p.Type, "type", ValidRecordTypes); err != nil {
			errs.addf("properties.type", "%v", err)
		}
	}
	for i, item := range sequence(f["formats"], "properties.formats", errs) {
		field := index("properties.formats", i)
		if !mapping(item, field, errs) {
			continue
		}
		ff := fields(item, field, formatKeys, errs)
		var format Format
		decode(ff["name"], join(field, "name"), &format.Name, errs)
		p.Formats = append(p.Formats, format)
	}
	if v := f["jupyter_kernel_info"]; v != nil && !isNull(v) {
		p.JupyterKernelInfo = parseKernelInfo(v, errs)
	}
	return p
}

func parseKernelInfo(value *yaml.Node, errs *Error) *JupyterKernelInfo {
	const field = "properties.jupyter_kernel_info"
	if !mapping(value, field, errs) {
		return nil
	}
	f := fields(value, field, kernelInfoKeys, errs)
	var k JupyterKernelInfo
	decode(f["name"], join(field, "name"), &k.Name, errs)
	decode(f["python_version"], join(field, "python_version"), &k.PythonVersion, errs)
	decode(f["env_file"], join(field, "env_file"), &k.EnvFile, errs)
	return &k
}

func parseContacts(value *yaml.Node, errs *Error) []Contact {
	var contacts []Contact
	for i, item := range sequence(value, "contact", errs) {
		field := index("contact", i)
		if !mapping(item, field, errs) {
			continue
		}
		f := fields(item, field, contactKeys, errs)
		var c Contact
		decode(f["name"], join(field, "name"), &c.Name, errs)
		decode(f["organization"], join(field, "organization"), &c.Organization, errs)
		decode(f["position"], join(field, "position"), &c.Position, errs)
		decode(f["links"], join(field, "links"), &c.Links, errs)
		decode(f["contactInstructions"], join(field, "contactInstructions"), &c.ContactInstructions, errs)
		decode(f["roles"], join(field, "roles"), &c.Roles, errs)
		if c.Name == "" {
			errs.addf(join(field, "name"), "required")
		}
		contacts = append(contacts, c)
	}
	return contacts
}

func parseLinks(value *yaml.Node, path string, errs *Error) []Link {
	var links []Link
	for i, item := range sequence(value, path, errs) {
		field := index(path, i)
		if !mapping(item, field, errs) {
			continue
		}
		f := fields(item, field, linkKeys, errs)
		var l Link
		decode(f["rel"], join(field, "rel"), &l.Rel, errs)
		decode(f["href"], join(field, "href"), &l.Href, errs)
		decode(f["type"], join(field, "type"), &l.Type, errs)
		decode(f["title"], join(field, "title"), &l.Title, errs)
		if l.Rel == "" || l.Href == "" {
			errs.addf(field, "rel and href are required")
			continue
		}
		links = append(links, l)
	}
	return links
}
