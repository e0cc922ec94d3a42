package stac

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Document is a catalog document loaded from the repository.
//
// Fields other than "links" are kept as raw JSON in their original order.
// Links are decoded so they can be edited; they are written back in place.
type Document struct {
	keys   []string
	fields map[string]json.RawMessage
	Links  Links
}

const linksKey = "links"

// ParseDocument decodes a catalog document.
func ParseDocument(data []byte) (*Document, error) {
	d := &Document{}
	if err := json.Unmarshal(data, d); err != nil {
		return nil, err
	}
	return d, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("catalog document must be a JSON object")
	}

	d.keys = nil
	d.fields = make(map[string]json.RawMessage)
	d.Links = nil

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		if _, dup := d.fields[key]; !dup {
			d.keys = append(d.keys, key)
		}
		if key == linksKey {
			if err := json.Unmarshal(raw, &d.Links); err != nil {
				return fmt.Errorf("field %q: %w", key, err)
			}
			d.fields[key] = nil
			continue
		}
		d.fields[key] = raw
	}
	_, err = dec.Token()
	return err
}

// MarshalJSON implements json.Marshaler, preserving the original field order.
func (d *Document) MarshalJSON() ([]byte, error) {
	keys := d.keys
	if _, ok := d.fields[linksKey]; !ok {
		keys = append(append([]string(nil), keys...), linksKey)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')

		var v []byte
		if key == linksKey {
			links := d.Links
			if links == nil {
				links = Links{}
			}
			v, err = marshalNoEscape(links)
			if err != nil {
				return nil, err
			}
		} else {
			v = d.fields[key]
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// String returns a string field, or "" if it is absent or not a string.
func (d *Document) String(key string) string {
	raw, ok := d.fields[key]
	if !ok || raw == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// ID returns the document id.
func (d *Document) ID() string { return d.String("id") }

// Title returns the document title.
func (d *Document) Title() string { return d.String("title") }

// Has reports whether the document has the given field.
func (d *Document) Has(key string) bool {
	_, ok := d.fields[key]
	return ok
}

// Set stores v under key. New keys are appended after existing ones.
func (d *Document) Set(key string, v any) error {
	if key == linksKey {
		links, ok := v.(Links)
		if !ok {
			return fmt.Errorf("links must be of type Links, got %T", v)
		}
		d.Links = links
		d.ensureKey(key)
		d.fields[key] = nil
		return nil
	}
	raw, err := marshalNoEscape(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	d.ensureKey(key)
	d.fields[key] = raw
	return nil
}

// SetSelf replaces the self link.
func (d *Document) SetSelf(href string) {
	d.Links.Set(SelfLink(href))
}

func (d *Document) ensureKey(key string) {
	if d.fields == nil {
		d.fields = make(map[string]json.RawMessage)
	}
	if _, ok := d.fields[key]; !ok {
		d.keys = append(d.keys, key)
	}
}

// marshalNoEscape encodes v without HTML escaping so query strings in
// hrefs stay readable.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

