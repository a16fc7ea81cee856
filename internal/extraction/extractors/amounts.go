// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"regexp"
	"strings"

	"github.com/docvars/docvars/internal/extraction"
	"github.com/docvars/docvars/internal/vocab"
)

var currencyAmount = regexp.MustCompile(`\$\s?\d[\d,]*(?:\.\d{2})?`)

// Amounts extracts currency amounts from the fees section and tells fees from
// retainers by the cues on the surrounding lines.
type Amounts struct{}

func (Amounts) Name() string { return "amounts" }

func (Amounts) Extract(doc *extraction.Document, _ extraction.PartyContext) []extraction.Proposal {
	sec, ok := doc.Section(vocab.FamilyFees)
	if !ok {
		return nil
	}
	feeCue := cuePattern(doc.Vocab.Amounts.Fee)
	retainerCue := cuePattern(doc.Vocab.Amounts.Retainer)

	var out []extraction.Proposal
	for i, a := range sec.Body {
		amounts := currencyAmount.FindAllString(a.Text, -1)
		if len(amounts) == 0 {
			continue
		}
		window := windowText(sec.Body, i)
		hasFee := feeCue.MatchString(window)
		hasRetainer := retainerCue.MatchString(window)

		for _, raw := range amounts {
			var p extraction.Proposal
			switch {
			case hasFee && !hasRetainer:
				p = extraction.ProposalAt(a, "feeAmount", raw)
			case hasRetainer && !hasFee:
				p = extraction.ProposalAt(a, "retainerAmount", raw)
			default:
				p = extraction.ProposalAt(a, "", raw)
				p.CandidateFields = []string{"feeAmount", "retainerAmount"}
			}
			p.NormalizedValue = strings.TrimSpace(raw)
			p.SourceText = a.Text
			out = append(out, p)
		}
	}
	return out
}

// windowText joins the anchor at i with its neighbours.
func windowText(body []extraction.Anchor, i int) string {
	parts := []string{body[i].Text}
	if i > 0 {
		parts = append([]string{body[i-1].Text}, parts...)
	}
	if i+1 < len(body) {
		parts = append(parts, body[i+1].Text)
	}
	return strings.Join(parts, "\n")
}
