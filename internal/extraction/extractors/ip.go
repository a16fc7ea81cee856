// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"strings"

	"github.com/docvars/docvars/internal/extraction"
	"github.com/docvars/docvars/internal/vocab"
)

// IPType reports the kind of intellectual property (patent, trademark, ...)
// named in the IP validity section, one proposal per line that names one.
type IPType struct{}

func (IPType) Name() string { return "ipType" }

func (IPType) Extract(doc *extraction.Document, _ extraction.PartyContext) []extraction.Proposal {
	sec, ok := doc.Section(vocab.FamilyIPValidity)
	if !ok {
		return nil
	}
	var out []extraction.Proposal
	for _, a := range sec.Body {
		cue, raw, ok := firstCue(doc.Vocab, a.Text, doc.Vocab.IP.TypeCues)
		if !ok {
			continue
		}
		p := extraction.ProposalAt(a, "ipType", raw)
		p.NormalizedValue = titleCaser.String(cue)
		p.SourceText = a.Text
		out = append(out, p)
	}
	return out
}

// LicenseScope reports the license scope (worldwide, exclusive, ...) named
// in the license terms section.
type LicenseScope struct{}

func (LicenseScope) Name() string { return "licenseScope" }

func (LicenseScope) Extract(doc *extraction.Document, _ extraction.PartyContext) []extraction.Proposal {
	sec, ok := doc.Section(vocab.FamilyLicenseTerms)
	if !ok {
		return nil
	}
	options := doc.Vocab.EnumOptions["licenseScope"]
	var out []extraction.Proposal
	for _, a := range sec.Body {
		cue, raw, ok := firstCue(doc.Vocab, a.Text, doc.Vocab.IP.LicenseScopeCues)
		if !ok {
			continue
		}
		p := extraction.ProposalAt(a, "licenseScope", raw)
		p.NormalizedValue = titleCaser.String(cue)
		for _, opt := range options {
			if strings.EqualFold(opt, cue) {
				p.NormalizedValue = opt
				break
			}
		}
		p.SourceText = a.Text
		out = append(out, p)
	}
	return out
}
