package patent

import "fmt"

// Record is a patent document (immutable value object).
// Title, abstract and claims are guaranteed non-empty by the loader;
// classification and metadata are optional.
type Record struct {
	id             string
	title          string
	abstract       string
	claims         string
	classification string
	meta           map[string]string
}

// New validates and creates a Record.
// ID, title, abstract and claims are required — a record missing any of
// them is not searchable and must be excluded upstream.
func New(id, title, abstract, claims, classification string, meta map[string]string) (Record, error) {
	if id == "" {
		return Record{}, fmt.Errorf("patent id is required")
	}
	if title == "" {
		return Record{}, fmt.Errorf("patent %s: title is required", id)
	}
	if abstract == "" {
		return Record{}, fmt.Errorf("patent %s: abstract is required", id)
	}
	if claims == "" {
		return Record{}, fmt.Errorf("patent %s: claims text is required", id)
	}

	return Record{
		id:             id,
		title:          title,
		abstract:       abstract,
		claims:         claims,
		classification: classification,
		meta:           cloneStringMap(meta),
	}, nil
}

// Reconstruct creates a Record without validation (loader hydration).
func Reconstruct(id, title, abstract, claims, classification string, meta map[string]string) Record {
	return Record{
		id: id, title: title, abstract: abstract, claims: claims,
		classification: classification, meta: meta,
	}
}

// ID returns the patent document number.
func (r Record) ID() string { return r.id }

// Title returns the patent title.
func (r Record) Title() string { return r.title }

// Abstract returns the patent abstract.
func (r Record) Abstract() string { return r.abstract }

// Claims returns the claims text, the primary searchable field.
func (r Record) Claims() string { return r.claims }

// Classification returns the hierarchical classification code (e.g. "B60B").
// Empty when the source record carried none.
func (r Record) Classification() string { return r.classification }

// Meta returns optional metadata fields (bibtex, detailed description, ...).
func (r Record) Meta() map[string]string { return r.meta }

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
