package config

import (
	"fmt"
	"slices"

	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"
)

// parseDocument unmarshals data into a node tree and returns the top-level
// mapping. An empty document yields an empty mapping.
func parseDocument(data []byte, errs *Error) *yaml.Node {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		errs.Err = err
		return nil
	}
	if len(doc.Content) == 0 {
		return &yaml.Node{Kind: yaml.MappingNode}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		errs.addf("", "expected a mapping at the top level (line %d)", root.Line)
		return nil
	}
	return root
}

// fields returns the values of a mapping node keyed by name. Keys not in
// allowed are reported with a suggestion of the closest allowed key.
func fields(node *yaml.Node, path string, allowed []string, errs *Error) map[string]*yaml.Node {
	out := make(map[string]*yaml.Node, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]
		field := join(path, key)
		if !slices.Contains(allowed, key) {
			if s := suggest(key, allowed); s != "" {
				errs.addf(field, "unknown key (line %d), did you mean %q?", node.Content[i].Line, s)
			} else {
				errs.addf(field, "unknown key (line %d)", node.Content[i].Line)
			}
			continue
		}
		if _, dup := out[key]; dup {
			errs.addf(field, "duplicate key (line %d)", node.Content[i].Line)
			continue
		}
		out[key] = value
	}
	return out
}

// suggest returns the allowed key that best matches an unknown key. Both
// directions are tried so that typos with a missing or an extra letter
// still find a candidate.
func suggest(key string, allowed []string) string {
	if matches := fuzzy.Find(key, allowed); len(matches) > 0 {
		return matches[0].Str
	}
	best, bestScore := "", 0
	for _, candidate := range allowed {
		matches := fuzzy.Find(candidate, []string{key})
		if len(matches) > 0 && (best == "" || matches[0].Score > bestScore) {
			best, bestScore = candidate, matches[0].Score
		}
	}
	return best
}

// decode decodes value into out, recording a type error under field.
func decode(value *yaml.Node, field string, out any, errs *Error) bool {
	if value == nil {
		return false
	}
	if err := value.Decode(out); err != nil {
		errs.addf(field, "%s", typeError(err))
		return false
	}
	return true
}

func typeError(err error) string {
	if te, ok := err.(*yaml.TypeError); ok && len(te.Errors) > 0 {
		return te.Errors[0]
	}
	return err.Error()
}

// sequence returns the items of a sequence node. A scalar or mapping is
// reported as a type error.
func sequence(value *yaml.Node, field string, errs *Error) []*yaml.Node {
	if value == nil || isNull(value) {
		return nil
	}
	if value.Kind != yaml.SequenceNode {
		errs.addf(field, "expected a list (line %d)", value.Line)
		return nil
	}
	return value.Content
}

func mapping(value *yaml.Node, field string, errs *Error) bool {
	if value.Kind != yaml.MappingNode {
		errs.addf(field, "expected a mapping (line %d)", value.Line)
		return false
	}
	return true
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func index(path string, i int) string {
	return fmt.Sprintf("%s[%d]", path, i)
}
