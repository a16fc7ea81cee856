// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"regexp"
	"slices"
	"strings"

	"github.com/docvars/docvars/internal/extraction"
	"github.com/docvars/docvars/internal/vocab"
)

var (
	monthDate     = regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+\d{1,2},\s+\d{4}\b`)
	underscoreRow = regexp.MustCompile(`^[_\s]+$`)
)

// maxSignatoryWords bounds how long a signature-block line may be and still
// be read as a signer's name or title.
const maxSignatoryWords = 8

// Dates classifies month-name dates as effective, expiration or execution
// dates and reads the signature block for the execution date, signatories
// and filing parties.
type Dates struct{}

func (Dates) Name() string { return "dates" }

func (Dates) Extract(doc *extraction.Document, pc extraction.PartyContext) []extraction.Proposal {
	d := dateScan{
		doc:        doc,
		effective:  cuePattern(doc.Vocab.Dates.Effective),
		expiration: cuePattern(doc.Vocab.Dates.Expiration),
		execution:  cuePattern(doc.Vocab.Dates.Execution),
		emitted:    make(map[string]struct{}),
	}
	d.inline()
	signatories := d.signatureBlock()
	d.filingParties(signatories, pc)
	for i, s := range signatories {
		field := numbered("signatory", len(signatories), i)
		s.SchemaField = field
		s.CandidateFields = []string{field}
		d.out = append(d.out, s)
	}
	return d.out
}

type dateScan struct {
	doc        *extraction.Document
	effective  *regexp.Regexp
	expiration *regexp.Regexp
	execution  *regexp.Regexp
	emitted    map[string]struct{}
	out        []extraction.Proposal
}

// inline scans every anchor outside the signatures section.
func (d *dateScan) inline() {
	for _, a := range d.doc.Anchors {
		if a.WasHeading || d.doc.InFamily(a, vocab.FamilySignatures) {
			continue
		}
		for _, raw := range monthDate.FindAllString(a.Text, -1) {
			switch {
			case d.effective.MatchString(a.Text):
				d.emitDate(a, "effectiveDate", raw, "")
			case d.expiration.MatchString(a.Text):
				d.emitDate(a, "expirationDate", raw, "")
			case d.execution.MatchString(a.Text):
				d.emitDate(a, "executionDate", raw, "")
			default:
				p := extraction.ProposalAt(a, "", raw)
				p.CandidateFields = []string{"effectiveDate", "expirationDate"}
				p.SourceText = a.Text
				d.out = append(d.out, p)
			}
		}
	}
}

func (d *dateScan) emitDate(a extraction.Anchor, field, raw, roleHint string) {
	key := field + "::" + raw
	if _, dup := d.emitted[key]; dup {
		return
	}
	d.emitted[key] = struct{}{}

	p := extraction.ProposalAt(a, field, raw)
	if roleHint != "" {
		p.RoleHint = roleHint
	}
	p.DisplayValue = raw
	if iso, display, ok := extraction.NormalizeDate(raw); ok {
		p.NormalizedValue = iso
		p.DisplayValue = display
	}
	p.SourceText = a.Text
	d.out = append(d.out, p)
}

// signatureBlock emits execution dates found in the signature block and
// returns the unnumbered signatory proposals, each scoped to the whole block.
func (d *dateScan) signatureBlock() []extraction.Proposal {
	ignore := make([]string, 0, len(d.doc.Vocab.Signatures.Ignore))
	for _, s := range d.doc.Vocab.Signatures.Ignore {
		ignore = append(ignore, vocab.NormalizeHeading(s))
	}

	block := d.doc.SignatureBlock()
	lines := make([]string, 0, len(block))
	for _, a := range block {
		if !a.WasHeading {
			lines = append(lines, strings.TrimSpace(a.Text))
		}
	}
	blockText := strings.Join(lines, " ")

	var signatories []extraction.Proposal
	for _, a := range block {
		text := strings.TrimSpace(a.Text)
		if text == "" || a.WasHeading {
			continue
		}
		if d.execution.MatchString(text) {
			if raw := monthDate.FindString(text); raw != "" {
				d.emitDate(a, "executionDate", raw, "Signatures")
			}
			continue
		}
		if monthDate.MatchString(text) ||
			slices.Contains(ignore, vocab.NormalizeHeading(text)) ||
			underscoreRow.MatchString(text) ||
			strings.HasSuffix(text, ".") ||
			len(strings.Fields(text)) > maxSignatoryWords {
			continue
		}
		p := extraction.ProposalAt(a, "", text)
		p.RoleHint = "Signatory"
		p.SourceText = blockText
		signatories = append(signatories, p)
	}
	return signatories
}

// filingParties reports each known inventor named in the signatory lines.
// Without known inventor names the filing party stays unresolved.
func (d *dateScan) filingParties(signatories []extraction.Proposal, pc extraction.PartyContext) {
	if len(pc.InventorNames) == 0 || len(signatories) == 0 {
		return
	}
	lines := make([]string, len(signatories))
	for i, s := range signatories {
		lines[i] = s.RawValue
	}
	sigText := strings.ToLower(strings.Join(lines, " "))

	var matched []string
	for _, name := range pc.InventorNames {
		if strings.Contains(sigText, strings.ToLower(name)) {
			matched = append(matched, name)
		}
	}
	for i, name := range matched {
		field := numbered("filingParty", len(matched), i)
		d.out = append(d.out, extraction.Proposal{
			RawValue:        name,
			SchemaField:     field,
			CandidateFields: []string{field},
			RoleHint:        "Filing Party",
		})
	}
}
