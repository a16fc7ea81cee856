// SPDX-License-Identifier: Apache-2.0

package extractors_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docvars/docvars/internal/extraction"
	"github.com/docvars/docvars/internal/extraction/extractors"
	"github.com/docvars/docvars/internal/vocab"
)

func document(t *testing.T, paragraphs ...string) *extraction.Document {
	t.Helper()
	v := vocab.MustDefault()
	rr := extraction.ReadResult{}
	for _, p := range paragraphs {
		rr.Paragraphs = append(rr.Paragraphs, extraction.Paragraph{Content: p})
	}
	anchors := extraction.Anchorize(v, rr)
	require.NotEmpty(t, anchors)
	return &extraction.Document{Anchors: anchors, Vocab: v}
}

func fields(ps []extraction.Proposal) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.SchemaField
	}
	return out
}

// ---------------------------------------------------------------------------
// Parties
// ---------------------------------------------------------------------------

func TestParties_LabeledRoundTrip(t *testing.T) {
	doc := document(t,
		"Parties",
		`This Agreement is made between Acme Corp (the "Client") and Jane Doe (the "Provider").`,
	)

	got := extractors.Parties{}.Extract(doc, extraction.PartyContext{})
	require.Len(t, got, 2)

	assert.Equal(t, "partyA", got[0].SchemaField)
	assert.Equal(t, "Client", got[0].RoleHint)
	assert.Equal(t, "Acme Corp", got[0].RawValue)

	assert.Equal(t, "partyB", got[1].SchemaField)
	assert.Equal(t, "Provider", got[1].RoleHint)
	assert.Equal(t, "Jane Doe", got[1].RawValue)
}

func TestParties_UnlabeledAreAmbiguous(t *testing.T) {
	doc := document(t,
		"Services Agreement",
		"Parties",
		"This Agreement is made between Acme Corp and Beta LLC, effective as of January 1, 2025.",
	)

	got := extractors.Parties{}.Extract(doc, extraction.PartyContext{})
	require.Len(t, got, 2)
	for i, want := range []string{"Acme Corp", "Beta LLC"} {
		assert.Equal(t, want, got[i].RawValue)
		assert.True(t, got[i].Ambiguous())
		assert.Equal(t, []string{"partyA", "partyB"}, got[i].CandidateFields)
		assert.Equal(t, "Parties", got[i].RoleHint)
	}
}

func TestParties_Inventors(t *testing.T) {
	doc := document(t,
		"Patent Assignment",
		"Inventors",
		"The invention was conceived by Ann Lee, Bo Chan and ANN LEE dated March 3, 2024.",
	)

	got := extractors.Parties{}.Extract(doc, extraction.PartyContext{})
	require.Len(t, got, 2)
	assert.Equal(t, []string{"inventor1", "inventor2"}, fields(got))
	assert.Equal(t, "Ann Lee", got[0].RawValue)
	assert.Equal(t, "Bo Chan", got[1].RawValue)
	assert.Equal(t, "inventor", got[0].RoleHint)

	single := document(t, "Patent Assignment", "Inventors", "the Inventor")
	got = extractors.Parties{}.Extract(single, extraction.PartyContext{})
	require.Len(t, got, 1)
	assert.Equal(t, "inventor", got[0].SchemaField)
	assert.Equal(t, "the Inventor", got[0].RawValue)
}

// ---------------------------------------------------------------------------
// Amounts and fee structure
// ---------------------------------------------------------------------------

func TestAmounts_RetainerCue(t *testing.T) {
	doc := document(t,
		"Engagement Letter",
		"Fee Structure & Retainer",
		"An initial retainer of $1,500 is due upon execution.",
	)

	got := extractors.Amounts{}.Extract(doc, extraction.PartyContext{})
	require.Len(t, got, 1)
	assert.Equal(t, "$1,500", got[0].RawValue)
	assert.Equal(t, "retainerAmount", got[0].SchemaField)
	assert.Equal(t, "Fee Structure & Retainer", got[0].RoleHint)
}

func TestAmounts_MixedCuesStayAmbiguous(t *testing.T) {
	doc := document(t,
		"Engagement Letter",
		"Fees",
		"The hourly fee is $300.",
		"A retainer of $1,000 applies.",
	)

	got := extractors.Amounts{}.Extract(doc, extraction.PartyContext{})
	require.Len(t, got, 2)
	for _, p := range got {
		assert.True(t, p.Ambiguous())
		assert.Equal(t, []string{"feeAmount", "retainerAmount"}, p.CandidateFields)
	}
}

func TestAmounts_NoFeesSection(t *testing.T) {
	doc := document(t, "Engagement Letter", "Scope", "We charge $500 for the work.")
	assert.Empty(t, extractors.Amounts{}.Extract(doc, extraction.PartyContext{}))
}

func TestFeeStructure(t *testing.T) {
	doc := document(t,
		"Engagement Letter",
		"Fees",
		"Work is billed hourly at $300.",
	)

	got := extractors.FeeStructure{}.Extract(doc, extraction.PartyContext{})
	require.Len(t, got, 1)
	assert.Equal(t, "hourly", got[0].RawValue)
	assert.Equal(t, "Hourly", got[0].NormalizedValue)
	assert.Equal(t, "feeStructure", got[0].SchemaField)
}

// ---------------------------------------------------------------------------
// Dates, signatories and filing parties
// ---------------------------------------------------------------------------

func TestDates_BareDateIsAmbiguous(t *testing.T) {
	doc := document(t,
		"Service Agreement",
		"Background",
		"The parties met on January 5, 2025 to review the work.",
	)

	got := extractors.Dates{}.Extract(doc, extraction.PartyContext{})
	require.Len(t, got, 1)
	assert.Equal(t, "January 5, 2025", got[0].RawValue)
	assert.True(t, got[0].Ambiguous())
	assert.Equal(t, []string{"effectiveDate", "expirationDate"}, got[0].CandidateFields)
}

func TestDates_ClassifiedAndSignatureBlock(t *testing.T) {
	doc := document(t,
		"Consulting Agreement",
		"Term",
		"This Agreement is effective as of January 5, 2025.",
		"It will terminate on Dec. 31, 2025.",
		"It will terminate on Dec. 31, 2025.",
		"Signatures",
		"Executed on February 1, 2025.",
		"Jane Doe",
		"Chief Executive Officer",
		"______",
	)

	got := extractors.Dates{}.Extract(doc, extraction.PartyContext{InventorNames: []string{"Jane Doe", "Max Roe"}})

	assert.Equal(t, []string{
		"effectiveDate", "expirationDate", "executionDate",
		"filingParty", "signatory1", "signatory2",
	}, fields(got))

	assert.Equal(t, "2025-01-05", got[0].NormalizedValue)
	assert.Equal(t, "Jan 5, 2025", got[0].DisplayValue)
	assert.Equal(t, "2025-12-31", got[1].NormalizedValue)
	assert.Equal(t, "Signatures", got[2].RoleHint)
	assert.Equal(t, "Jane Doe", got[3].RawValue)
	assert.Nil(t, got[3].Page, "filing party carries no position")
	assert.Equal(t, "Jane Doe", got[4].RawValue)
	assert.Equal(t, "Chief Executive Officer", got[5].RawValue)
	assert.Equal(t, "Signatory", got[5].RoleHint)
	assert.Equal(t, "Executed on February 1, 2025. Jane Doe Chief Executive Officer ______", got[4].SourceText,
		"signatories are scoped to the whole block")
}

func TestDates_PageModeSignatureBlock(t *testing.T) {
	v := vocab.MustDefault()
	rr := extraction.ReadResult{Pages: []extraction.Page{{PageNumber: 2, Lines: []extraction.Line{
		{Content: "Signatures"},
		{Content: "Acme Corp"},
		{Content: "Jane Doe"},
		{Content: "Date: March 3, 2025"},
	}}}}
	doc := &extraction.Document{Anchors: extraction.Anchorize(v, rr), Vocab: v}

	got := extractors.Dates{}.Extract(doc, extraction.PartyContext{InventorNames: []string{"Jane Doe"}})

	byField := make(map[string]extraction.Proposal)
	for _, p := range got {
		byField[p.SchemaField] = p
	}
	require.Contains(t, byField, "signatory1")
	require.Contains(t, byField, "signatory2")
	assert.Equal(t, "Acme Corp", byField["signatory1"].RawValue)
	assert.Equal(t, "Jane Doe", byField["signatory2"].RawValue)
	assert.Equal(t, "Acme Corp Jane Doe Date: March 3, 2025", byField["signatory2"].SourceText)
	require.Contains(t, byField, "filingParty")
	assert.Equal(t, "Jane Doe", byField["filingParty"].RawValue)
}

func TestDates_FilingPartyNeedsInventors(t *testing.T) {
	doc := document(t, "Consulting Agreement", "Signatures", "Jane Doe")

	got := extractors.Dates{}.Extract(doc, extraction.PartyContext{PartyA: "Jane Doe"})
	assert.Equal(t, []string{"signatory"}, fields(got))
}

// ---------------------------------------------------------------------------
// Governing law and scope
// ---------------------------------------------------------------------------

func TestGoverningLaw(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"state cue", "This Agreement is governed by the laws of the State of New York, without regard to conflicts.", "New York"},
		{"commonwealth cue", "The laws of the Commonwealth of Massachusetts apply.", "Massachusetts"},
		{"plain cue", "It is construed under the laws of Delaware and federal law.", "Delaware"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := document(t, "Master Agreement", "Governing Law", tt.text)
			got := extractors.GoverningLaw{}.Extract(doc, extraction.PartyContext{})
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].RawValue)
			assert.Equal(t, "governingLaw", got[0].SchemaField)
		})
	}
}

func TestScope(t *testing.T) {
	doc := document(t,
		"Engagement Letter",
		"Scope of Representation",
		"The Firm will represent the Client in the matter. This includes filings.",
		"Fees",
		"The fee is $500.",
	)

	got := extractors.Scope{}.Extract(doc, extraction.PartyContext{})
	require.Len(t, got, 1)
	p := got[0]
	assert.Equal(t, "scope", p.SchemaField)
	assert.Equal(t, "The Firm will represent the Client in the matter.", p.RawValue)
	assert.Equal(t, "The Firm will represent the Client in the matter. This includes filings.", p.SourceText)
	assert.Equal(t, "The Firm will represent the Client in the matter.", p.DisplayValue)
	assert.True(t, p.IsExpandable)

	short := document(t, "Engagement Letter", "Scope", "Trademark filings only.")
	got = extractors.Scope{}.Extract(short, extraction.PartyContext{})
	require.Len(t, got, 1)
	assert.False(t, got[0].IsExpandable)
}

// ---------------------------------------------------------------------------
// IP terms
// ---------------------------------------------------------------------------

func TestIPTypeAndLicenseScope(t *testing.T) {
	doc := document(t,
		"License Agreement",
		"IP Validity",
		"The patents remain valid.",
		"License Terms",
		"A worldwide, non-exclusive license is granted.",
	)

	ip := extractors.IPType{}.Extract(doc, extraction.PartyContext{})
	require.Len(t, ip, 1)
	assert.Equal(t, "patents", ip[0].RawValue)
	assert.Equal(t, "Patent", ip[0].NormalizedValue)

	ls := extractors.LicenseScope{}.Extract(doc, extraction.PartyContext{})
	require.Len(t, ls, 1)
	assert.Equal(t, "worldwide", ls[0].RawValue)
	assert.Equal(t, "Worldwide", ls[0].NormalizedValue)
}

func TestInventionAssignment_Tiers(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		pc     extraction.PartyContext
		fields []string
		raws   []string
	}{
		{
			name:   "known party name",
			text:   "The Inventor hereby assigns all rights to Acme Corp.",
			pc:     extraction.PartyContext{PartyA: "Acme Corp"},
			fields: []string{"inventionAssignment"},
			raws:   []string{"Acme Corp"},
		},
		{
			name:   "role label maps to party",
			text:   "The Inventor assigns all inventions to the Company.",
			pc:     extraction.PartyContext{PartyA: "Acme Corp"},
			fields: []string{"inventionAssignment"},
			raws:   []string{"Acme Corp"},
		},
		{
			name:   "assignment cue",
			text:   "All rights hereby assigns to Acme Corp.",
			fields: []string{"inventionAssignment"},
			raws:   []string{"Acme Corp."},
		},
		{
			name:   "assignment cue with several assignees",
			text:   "All rights hereby assigns to Acme Corp and Beta LLC.",
			fields: []string{"inventionAssignment1", "inventionAssignment2"},
			raws:   []string{"Acme Corp", "Beta LLC."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := document(t, "Patent Agreement", "Invention Assignment", tt.text)
			got := extractors.InventionAssignment{}.Extract(doc, tt.pc)
			assert.Equal(t, tt.fields, fields(got))
			raws := make([]string, len(got))
			for i, p := range got {
				raws[i] = p.RawValue
			}
			assert.Equal(t, tt.raws, raws)
		})
	}
}

// ---------------------------------------------------------------------------
// Full pipeline
// ---------------------------------------------------------------------------

func TestDefaultPipeline(t *testing.T) {
	v := vocab.MustDefault()
	p := extraction.NewPipeline(v, extractors.Default()...)
	assert.Equal(t, []string{
		"parties", "amounts", "feeStructure", "dates", "governingLaw",
		"scope", "ipType", "licenseScope", "inventionAssignment",
	}, p.RegisteredExtractors())

	rr := extraction.ReadResult{}
	for _, text := range []string{
		"Consulting Agreement",
		"Parties",
		`This Agreement is made between Acme Corp (the "Client") and Jane Doe (the "Provider"), effective as of January 5, 2025.`,
		"Fees",
		"The Client shall pay a flat fee of $5,000.",
		"Governing Law",
		"This Agreement is governed by the laws of the State of Texas.",
		"Signatures",
		"Jane Doe",
	} {
		rr.Paragraphs = append(rr.Paragraphs, extraction.Paragraph{Content: text})
	}

	res, err := p.Run(context.Background(), rr)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"partyA", "partyB", "effectiveDate", "feeAmount", "feeStructure", "governingLaw", "signatory",
	}, fields(res.Proposals))

	byField := map[string]extraction.Proposal{}
	for _, prop := range res.Proposals {
		byField[prop.SchemaField] = prop
	}
	assert.Equal(t, "$5,000", byField["feeAmount"].RawValue)
	assert.Equal(t, "Flat Fee", byField["feeStructure"].NormalizedValue)
	assert.Equal(t, "Texas", byField["governingLaw"].RawValue)
	assert.Equal(t, "2025-01-05", byField["effectiveDate"].NormalizedValue)
}
