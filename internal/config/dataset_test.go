package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseDataset(t *testing.T) {
	t.Parallel()

	input := `
dataset_id: hydrology-1D-0.009deg-100x60x60-3.0.2.zarr
collection_id: hydrology
documentation_link: https://deepesdl.readthedocs.io/en/latest/datasets/hydrology/
dataset_status: completed
osc_region: Mediterranean region
osc_themes: [land, hydrology]
cf_parameter:
  - name: soil_moisture
    units: kg m-2
`
	got, err := ParseDataset([]byte(input), "dataset-config.yaml")
	if err != nil {
		t.Fatalf("ParseDataset() error = %v", err)
	}

	want := DatasetConfig{
		DatasetID:         "hydrology-1D-0.009deg-100x60x60-3.0.2.zarr",
		CollectionID:      "hydrology",
		DocumentationLink: "https://deepesdl.readthedocs.io/en/latest/datasets/hydrology/",
		Status:            "completed",
		Region:            "Mediterranean region",
		Themes:            []string{"land", "hydrology"},
		CFParameters:      []CFParameter{{Name: "soil_moisture", Units: "kg m-2"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseDataset() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDataset_Defaults(t *testing.T) {
	t.Parallel()

	got, err := ParseDataset([]byte("collection_id: c\n"), "x.yaml")
	if err != nil {
		t.Fatalf("ParseDataset() error = %v", err)
	}
	if got.Status != DefaultDatasetStatus {
		t.Errorf("Status = %q, want %q", got.Status, DefaultDatasetStatus)
	}
	if got.Region != DefaultRegion {
		t.Errorf("Region = %q, want %q", got.Region, DefaultRegion)
	}
	if got.DatasetID != "" {
		t.Errorf("DatasetID = %q, want empty (checked later by the publisher)", got.DatasetID)
	}
}

func TestParseDataset_CollectsAllIssues(t *testing.T) {
	t.Parallel()

	input := `
dataset_id: d
colection_id: c
dataset_status: finished
osc_themes: land
cf_parameter:
  - units: K
`
	_, err := ParseDataset([]byte(input), "dataset-config.yaml")
	var cfgErr *Error
	if !errors.As(err, &cfgErr) {
		t.Fatalf("ParseDataset() error = %v, want *Error", err)
	}

	fields := make(map[string]string)
	for _, issue := range cfgErr.Issues {
		fields[issue.Field] = issue.Message
	}

	if msg, ok := fields["colection_id"]; !ok || !strings.Contains(msg, `did you mean "collection_id"`) {
		t.Errorf("colection_id issue = %q, want a suggestion for collection_id", msg)
	}
	if _, ok := fields["dataset_status"]; !ok {
		t.Error("expected an issue for dataset_status")
	}
	if _, ok := fields["osc_themes"]; !ok {
		t.Error("expected a type issue for osc_themes")
	}
	if _, ok := fields["cf_parameter[0].name"]; !ok {
		t.Error("expected an issue for cf_parameter[0].name")
	}
}

func TestParseDataset_NotAMapping(t *testing.T) {
	t.Parallel()

	_, err := ParseDataset([]byte("- a\n- b\n"), "x.yaml")
	var cfgErr *Error
	if !errors.As(err, &cfgErr) {
		t.Fatalf("ParseDataset() error = %v, want *Error", err)
	}
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want string
	}{
		{"colection_id", "collection_id"},
		{"datasett_id", "dataset_id"},
		{"zzz", ""},
	}
	for _, tt := range tests {
		if got := suggest(tt.key, datasetKeys); got != tt.want {
			t.Errorf("suggest(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
