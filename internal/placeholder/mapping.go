// SPDX-License-Identifier: Apache-2.0

package placeholder

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/docvars/docvars/internal/extraction"
)

//go:embed mapping.cue
var mappingSchema string

// NormalizedMapping is a reviewed proposal ready for placeholderization.
type NormalizedMapping struct {
	RawValue        string `json:"rawValue" yaml:"rawValue"`
	NormalizedValue string `json:"normalizedValue,omitempty" yaml:"normalizedValue,omitempty"`
	SchemaField     string `json:"schemaField" yaml:"schemaField"`
	Placeholder     string `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Deleted         bool   `json:"deleted,omitempty" yaml:"deleted,omitempty"`
}

// ValidateMappings checks mappings against the mapping schema: every entry
// needs a schema field, and entries that are not deleted need a raw value.
func ValidateMappings(mappings []NormalizedMapping) error {
	if len(mappings) == 0 {
		return nil
	}
	ctx := cuecontext.New()
	schema := ctx.CompileString(mappingSchema)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile mapping schema: %w", err)
	}
	list := schema.LookupPath(cue.ParsePath("#Mappings"))
	if err := list.Unify(ctx.Encode(mappings)).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidMapping, err)
	}
	for i, m := range mappings {
		if !m.Deleted && strings.TrimSpace(m.RawValue) == "" {
			return fmt.Errorf("%w: mapping %d (%s) has no rawValue", ErrInvalidMapping, i, m.SchemaField)
		}
	}
	return nil
}

// MappingsFromProposals confirms every schema-bound proposal as is.
func MappingsFromProposals(proposals []extraction.Proposal) []NormalizedMapping {
	var out []NormalizedMapping
	for _, p := range proposals {
		if p.Ambiguous() {
			continue
		}
		out = append(out, NormalizedMapping{
			RawValue:        p.RawValue,
			NormalizedValue: p.NormalizedValue,
			SchemaField:     p.SchemaField,
			Placeholder:     p.Placeholder,
		})
	}
	return out
}

// MergeMappings reconciles reviewed mappings with the stored proposals.
// Deleted fields drop every stored proposal of that field. Active mappings
// override the stored proposal of the same field, or an ambiguous proposal
// with the same raw value. Mappings with no stored counterpart are appended
// and borrow the position of any stored proposal of their field.
func MergeMappings(mappings []NormalizedMapping, stored []extraction.Proposal) []extraction.Proposal {
	deleted := make(map[string]bool)
	byField := make(map[string]NormalizedMapping)
	var active []NormalizedMapping
	for _, m := range mappings {
		if m.Deleted {
			deleted[m.SchemaField] = true
			continue
		}
		active = append(active, m)
		byField[m.SchemaField] = m
	}

	merged := make([]extraction.Proposal, 0, len(stored)+len(active))
	for _, p := range stored {
		if deleted[p.SchemaField] {
			continue
		}
		var (
			m  NormalizedMapping
			ok bool
		)
		if p.Ambiguous() {
			for _, a := range active {
				if a.RawValue == p.RawValue {
					m, ok = a, true
					break
				}
			}
		} else {
			m, ok = byField[p.SchemaField]
		}
		if ok {
			p.SchemaField = m.SchemaField
			p.CandidateFields = []string{m.SchemaField}
			if m.Placeholder != "" {
				p.Placeholder = m.Placeholder
			}
			if m.NormalizedValue != "" {
				p.NormalizedValue = m.NormalizedValue
			}
			if m.RawValue != "" {
				p.RawValue = m.RawValue
			}
		}
		merged = append(merged, p)
	}

	for _, m := range active {
		if hasField(merged, m.SchemaField) {
			continue
		}
		p := extraction.Proposal{
			RawValue:        m.RawValue,
			SchemaField:     m.SchemaField,
			CandidateFields: []string{m.SchemaField},
			NormalizedValue: m.NormalizedValue,
			Placeholder:     m.Placeholder,
		}
		for _, s := range stored {
			if s.SchemaField == m.SchemaField {
				p.Page, p.Position, p.RoleHint = s.Page, s.Position, s.RoleHint
				break
			}
		}
		merged = append(merged, p)
	}
	return merged
}

func hasField(ps []extraction.Proposal, field string) bool {
	for _, p := range ps {
		if p.SchemaField == field {
			return true
		}
	}
	return false
}
