// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"regexp"
	"strings"

	"github.com/docvars/docvars/internal/extraction"
	"github.com/docvars/docvars/internal/vocab"
)

// FeeStructure names the billing model (flat, hourly, monthly, contingency)
// described in the fees section. Only the first matching model is reported.
type FeeStructure struct{}

func (FeeStructure) Name() string { return "feeStructure" }

func (FeeStructure) Extract(doc *extraction.Document, _ extraction.PartyContext) []extraction.Proposal {
	sec, ok := doc.Section(vocab.FamilyFees)
	if !ok {
		return nil
	}
	for _, rule := range doc.Vocab.Amounts.FeeStructure {
		quoted := make([]string, len(rule.Keywords))
		for i, k := range rule.Keywords {
			quoted[i] = regexp.QuoteMeta(strings.TrimSpace(k))
		}
		re := regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\w*`)
		for _, a := range sec.Body {
			raw := re.FindString(a.Text)
			if raw == "" {
				continue
			}
			p := extraction.ProposalAt(a, "feeStructure", raw)
			p.NormalizedValue = rule.Name
			p.DisplayValue = rule.Name
			p.SourceText = a.Text
			return []extraction.Proposal{p}
		}
	}
	return nil
}
