package config

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const workflowYAML = `
workflow_id: "ESA CCI Land Cover"
properties:
  - title: "Land Cover Classification"
  - description: "Classifies land cover from ESA CCI data"
  - keywords: [land, cover]
  - themes: [land]
  - license: MIT
  - jupyter_kernel_info:
      name: deepesdl-xcube-1.7.1
      python_version: 3.11
      env_file: https://github.com/deepesdl/cube-gen/blob/main/environment.yml
jupyter_notebook_url: https://github.com/deepesdl/cube-gen/blob/main/landcover.ipynb
contact:
  - name: Jane Doe
    organization: Brockmann Consult GmbH
    links:
      - rel: about
        href: https://www.brockmann-consult.de
links:
  - rel: documentation
    href: https://deepesdl.readthedocs.io
    title: Documentation
`

func TestParseWorkflow(t *testing.T) {
	t.Parallel()

	got, err := ParseWorkflow([]byte(workflowYAML), "workflow-config.yaml")
	if err != nil {
		t.Fatalf("ParseWorkflow() error = %v", err)
	}

	want := WorkflowConfig{
		WorkflowID: "ESA CCI Land Cover",
		Properties: Properties{
			Title:       "Land Cover Classification",
			Description: "Classifies land cover from ESA CCI data",
			Keywords:    []string{"land", "cover"},
			Themes:      []string{"land"},
			License:     "MIT",
			JupyterKernelInfo: &JupyterKernelInfo{
				Name:          "deepesdl-xcube-1.7.1",
				PythonVersion: 3.11,
				EnvFile:       "https://github.com/deepesdl/cube-gen/blob/main/environment.yml",
			},
		},
		JupyterNotebookURL: "https://github.com/deepesdl/cube-gen/blob/main/landcover.ipynb",
		Contacts: []Contact{{
			Name:         "Jane Doe",
			Organization: "Brockmann Consult GmbH",
			Links: []map[string]any{
				{"rel": "about", "href": "https://www.brockmann-consult.de"},
			},
		}},
		Links: []Link{{Rel: "documentation", Href: "https://deepesdl.readthedocs.io", Title: "Documentation"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseWorkflow() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseWorkflow_PropertiesAsMapping(t *testing.T) {
	t.Parallel()

	input := "workflow_id: wf\nproperties:\n  title: T\n  type: experiment\n"
	got, err := ParseWorkflow([]byte(input), "x.yaml")
	if err != nil {
		t.Fatalf("ParseWorkflow() error = %v", err)
	}
	if got.Properties.Title != "T" || got.Properties.Type != "experiment" {
		t.Errorf("Properties = %+v, want title T and type experiment", got.Properties)
	}
}

func TestParseWorkflow_MissingIDIsNotAnError(t *testing.T) {
	t.Parallel()

	got, err := ParseWorkflow([]byte("properties:\n  - title: T\n"), "x.yaml")
	if err != nil {
		t.Fatalf("ParseWorkflow() error = %v", err)
	}
	if got.WorkflowID != "" {
		t.Errorf("WorkflowID = %q, want empty", got.WorkflowID)
	}
}

func TestParseWorkflow_Issues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		wantField string
	}{
		{
			name:      "unknown property",
			input:     "properties:\n  - titel: T\n",
			wantField: "properties.titel",
		},
		{
			name:      "duplicate property across list items",
			input:     "properties:\n  - title: A\n  - title: B\n",
			wantField: "properties.title",
		},
		{
			name:      "contact without name",
			input:     "contact:\n  - organization: BC\n",
			wantField: "contact[0].name",
		},
		{
			name:      "link without href",
			input:     "links:\n  - rel: about\n",
			wantField: "links[0]",
		},
		{
			name:      "bad record type",
			input:     "properties:\n  - type: notebook\n",
			wantField: "properties.type",
		},
		{
			name:      "unknown kernel key",
			input:     "properties:\n  - jupyter_kernel_info:\n      nam: k\n",
			wantField: "properties.jupyter_kernel_info.nam",
		},
		{
			name:      "properties scalar",
			input:     "properties: nope\n",
			wantField: "properties",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseWorkflow([]byte(tt.input), "x.yaml")
			var cfgErr *Error
			if !errors.As(err, &cfgErr) {
				t.Fatalf("ParseWorkflow() error = %v, want *Error", err)
			}
			for _, issue := range cfgErr.Issues {
				if issue.Field == tt.wantField {
					return
				}
			}
			t.Errorf("issues = %v, want one for field %q", cfgErr.Issues, tt.wantField)
		})
	}
}
