package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"content-sync/core/record"
)

// File points a record at a binary blob that must exist at the destination.
type File struct {
	URI  string `json:"uri"`
	Blob string `json:"blob"`
}

// Document is the on-disk form of one record.
type Document struct {
	UUID       string          `json:"uuid"`
	Changed    *int64          `json:"changed,omitempty"`
	Owner      string          `json:"owner,omitempty"`
	References []string        `json:"references,omitempty"`
	Fields     json.RawMessage `json:"fields,omitempty"`
	File       *File           `json:"file,omitempty"`
}

// JSONDecoder decodes record documents read from a Source.
type JSONDecoder struct {
	src Source
}

// NewJSONDecoder creates a decoder reading payloads from src.
func NewJSONDecoder(src Source) *JSONDecoder {
	return &JSONDecoder{src: src}
}

// Document reads and parses the full document behind loc.
func (d *JSONDecoder) Document(ctx context.Context, loc record.Location) (*Document, error) {
	raw, err := d.src.Read(ctx, loc)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("invalid record json: %w", err)
	}
	return &doc, nil
}

// Decode implements record.Decoder.
func (d *JSONDecoder) Decode(ctx context.Context, loc record.Location) (record.Fields, error) {
	doc, err := d.Document(ctx, loc)
	if err != nil {
		return record.Fields{}, err
	}
	if doc.UUID == "" {
		return record.Fields{}, errors.New("missing uuid")
	}

	refs := doc.References
	if doc.Owner != "" {
		refs = append(append([]string(nil), refs...), doc.Owner)
	}
	return record.Fields{
		Identity:     doc.UUID,
		LastModified: doc.Changed,
		Owner:        doc.Owner,
		References:   refs,
	}, nil
}
