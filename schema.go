package rsz

import (
	"fmt"

	"github.com/wippyai/rsz/version"
)

// Schema is a declarative type layout. Its TypeInfo decodes a *Record with
// one member per named field, in declaration order.
type Schema struct {
	Symbol    string
	Hash      uint32
	Revisions version.Table
	Fields    []Field
}

// TypeInfo returns the registry entry for s.
func (s *Schema) TypeInfo() TypeInfo {
	return TypeInfo{
		Hash:      s.Hash,
		Symbol:    s.Symbol,
		Revisions: s.Revisions,
		Schema:    s,
		Decode:    s.decode,
	}
}

// Validate checks the fields of s, including flattened schemas.
func (s *Schema) Validate() error {
	if s.Symbol == "" {
		return fmt.Errorf("schema: empty symbol")
	}
	if s.Hash == 0 {
		return fmt.Errorf("schema %s: zero structural hash", s.Symbol)
	}
	if err := s.Revisions.Validate(); err != nil {
		return fmt.Errorf("schema %s: %w", s.Symbol, err)
	}
	return s.validateFields(map[*Schema]bool{s: true})
}

func (s *Schema) validateFields(seen map[*Schema]bool) error {
	for i := range s.Fields {
		if err := s.Fields[i].validate(seen); err != nil {
			return fmt.Errorf("schema %s: %w", s.Symbol, err)
		}
	}
	return nil
}

func (s *Schema) decode(d *Decoder) (Node, error) {
	rec := &Record{Symbol: s.Symbol, Fields: make([]Member, 0, len(s.Fields))}
	if err := d.Fields(rec, s.Fields...); err != nil {
		return nil, err
	}
	return rec, nil
}
