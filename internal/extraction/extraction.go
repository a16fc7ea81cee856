// SPDX-License-Identifier: Apache-2.0

// Package extraction turns a raw read result of a contract into a sorted,
// deduplicated list of field proposals.
package extraction

import (
	"errors"
	"slices"
	"strings"

	"github.com/docvars/docvars/internal/vocab"
)

// ErrMalformedReadResult is returned when a read result cannot be decoded
// into any of the accepted shapes.
var ErrMalformedReadResult = errors.New("malformed read result")

// Anchor is a positioned unit of extracted text. RoleHint carries the text of
// the nearest preceding heading.
type Anchor struct {
	Text       string `json:"text" yaml:"text"`
	Page       int    `json:"page" yaml:"page"`
	Y          int    `json:"y" yaml:"y"`
	RoleHint   string `json:"roleHint,omitempty" yaml:"roleHint,omitempty"`
	WasHeading bool   `json:"wasHeading,omitempty" yaml:"wasHeading,omitempty"`
}

// Proposal is one inferred value for one schema field. An empty SchemaField
// marks an ambiguous proposal whose options are listed in CandidateFields.
type Proposal struct {
	RawValue        string   `json:"rawValue" yaml:"rawValue"`
	SchemaField     string   `json:"schemaField,omitempty" yaml:"schemaField,omitempty"`
	CandidateFields []string `json:"candidateFields,omitempty" yaml:"candidateFields,omitempty"`
	NormalizedValue string   `json:"normalizedValue,omitempty" yaml:"normalizedValue,omitempty"`
	DisplayValue    string   `json:"displayValue,omitempty" yaml:"displayValue,omitempty"`
	RoleHint        string   `json:"roleHint,omitempty" yaml:"roleHint,omitempty"`
	Page            *int     `json:"page,omitempty" yaml:"page,omitempty"`
	Position        *int     `json:"verticalPosition,omitempty" yaml:"verticalPosition,omitempty"`
	DiscoveryIndex  *int     `json:"discoveryIndex,omitempty" yaml:"discoveryIndex,omitempty"`
	SourceText      string   `json:"sourceText,omitempty" yaml:"sourceText,omitempty"`
	IsExpandable    bool     `json:"isExpandable,omitempty" yaml:"isExpandable,omitempty"`
	Placeholder     string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// Ambiguous reports whether the proposal has no resolved schema field.
func (p Proposal) Ambiguous() bool {
	return p.SchemaField == ""
}

// ProposalAt builds a proposal whose provenance and role hint come from a.
func ProposalAt(a Anchor, field, raw string) Proposal {
	p := Proposal{
		RawValue:    raw,
		SchemaField: field,
		RoleHint:    a.RoleHint,
		Page:        Ptr(a.Page),
		Position:    Ptr(a.Y),
	}
	if field != "" {
		p.CandidateFields = []string{field}
	}
	return p
}

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T {
	return &v
}

// PartyContext carries the names discovered by the parties extractor to the
// extractors that resolve filing parties and assignees.
type PartyContext struct {
	InventorNames []string
	PartyA        string
	PartyB        string
}

// DerivePartyContext collects inventor names and party names from proposals.
// Ambiguous two-party proposals fill PartyA and PartyB in discovery order when
// no labeled party is present.
func DerivePartyContext(proposals []Proposal) PartyContext {
	var pc PartyContext
	var ambiguous []string
	for _, p := range proposals {
		base, _ := vocab.SplitFieldSuffix(p.SchemaField)
		switch {
		case strings.EqualFold(base, "inventor") && p.RawValue != "":
			pc.InventorNames = append(pc.InventorNames, p.RawValue)
		case strings.EqualFold(p.SchemaField, "partyA") && pc.PartyA == "":
			pc.PartyA = p.RawValue
		case strings.EqualFold(p.SchemaField, "partyB") && pc.PartyB == "":
			pc.PartyB = p.RawValue
		case p.Ambiguous() && slices.Contains(p.CandidateFields, "partyA"):
			ambiguous = append(ambiguous, p.RawValue)
		}
	}
	if pc.PartyA == "" && len(ambiguous) > 0 {
		pc.PartyA = ambiguous[0]
	}
	if pc.PartyB == "" && len(ambiguous) > 1 {
		pc.PartyB = ambiguous[1]
	}
	return pc
}
