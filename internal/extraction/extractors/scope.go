// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"regexp"
	"strings"

	"github.com/docvars/docvars/internal/extraction"
	"github.com/docvars/docvars/internal/vocab"
)

var leadSentence = regexp.MustCompile(`[^.?!]+[.?!]`)

// Scope emits the scope clause as a single expandable proposal. RawValue is
// the first anchor of the section, which is what the placeholderizer matches
// on; SourceText is the whole section.
type Scope struct{}

func (Scope) Name() string { return "scope" }

func (Scope) Extract(doc *extraction.Document, _ extraction.PartyContext) []extraction.Proposal {
	sec, ok := doc.Section(vocab.FamilyScope)
	if !ok || len(sec.Body) == 0 {
		return nil
	}
	full := strings.Join(strings.Fields(sec.Text()), " ")
	if full == "" {
		return nil
	}
	preview := firstSentence(full)

	p := extraction.ProposalAt(sec.Body[0], "scope", sec.Body[0].Text)
	p.SourceText = full
	p.DisplayValue = preview
	p.IsExpandable = len(full) > len(preview)
	return []extraction.Proposal{p}
}

func firstSentence(text string) string {
	if m := leadSentence.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	return text
}
