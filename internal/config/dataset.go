package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Dataset config defaults applied when the keys are absent.
const (
	DefaultDatasetStatus = "ongoing"
	DefaultRegion        = "Global"
)

var datasetKeys = []string{
	"dataset_id",
	"collection_id",
	"documentation_link",
	"access_link",
	"dataset_status",
	"osc_region",
	"osc_themes",
	"osc_missions",
	"cf_parameter",
}

var cfParameterKeys = []string{"name", "units"}

// CFParameter names a CF standard parameter the dataset provides.
type CFParameter struct {
	Name  string
	Units string
}

// DatasetConfig describes one dataset to publish as a product collection.
// Identifier presence is not checked here; the publisher reports missing
// identifiers before it touches the dataset.
type DatasetConfig struct {
	DatasetID         string
	CollectionID      string
	DocumentationLink string
	AccessLink        string
	Status            string
	Region            string
	Themes            []string
	Missions          []string
	CFParameters      []CFParameter
}

// LoadDataset reads a dataset config file.
func LoadDataset(path string) (DatasetConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DatasetConfig{}, &Error{Source: path, Err: err}
	}
	return ParseDataset(data, path)
}

// ParseDataset decodes dataset config YAML. Unknown keys, wrong types and an
// unsupported status are all collected into one *Error.
func ParseDataset(data []byte, source string) (DatasetConfig, error) {
	errs := &Error{Source: source}
	root := parseDocument(data, errs)
	if root == nil {
		return DatasetConfig{}, errs
	}

	f := fields(root, "", datasetKeys, errs)
	cfg := DatasetConfig{
		Status: DefaultDatasetStatus,
		Region: DefaultRegion,
	}
	decode(f["dataset_id"], "dataset_id", &cfg.DatasetID, errs)
	decode(f["collection_id"], "collection_id", &cfg.CollectionID, errs)
	decode(f["documentation_link"], "documentation_link", &cfg.DocumentationLink, errs)
	decode(f["access_link"], "access_link", &cfg.AccessLink, errs)
	decode(f["dataset_status"], "dataset_status", &cfg.Status, errs)
	decode(f["osc_region"], "osc_region", &cfg.Region, errs)
	decode(f["osc_themes"], "osc_themes", &cfg.Themes, errs)
	decode(f["osc_missions"], "osc_missions", &cfg.Missions, errs)
	cfg.CFParameters = parseCFParameters(f["cf_parameter"], errs)

	if err := ValidateStatus(cfg.Status); err != nil {
		errs.addf("dataset_status", "%v", err)
	}

	if err := errs.orNil(); err != nil {
		return DatasetConfig{}, err
	}
	return cfg, nil
}

func parseCFParameters(value *yaml.Node, errs *Error) []CFParameter {
	var params []CFParameter
	for i, item := range sequence(value, "cf_parameter", errs) {
		field := index("cf_parameter", i)
		if !mapping(item, field, errs) {
			continue
		}
		f := fields(item, field, cfParameterKeys, errs)
		var p CFParameter
		decode(f["name"], join(field, "name"), &p.Name, errs)
		decode(f["units"], join(field, "units"), &p.Units, errs)
		if p.Name == "" {
			errs.addf(join(field, "name"), "required")
			continue
		}
		params = append(params, p)
	}
	return params
}
