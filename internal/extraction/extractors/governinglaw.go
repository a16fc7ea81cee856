// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"regexp"
	"strings"

	"github.com/docvars/docvars/internal/extraction"
	"github.com/docvars/docvars/internal/vocab"
)

var (
	jurisdictionStop = regexp.MustCompile(`(?i)\s+(?:without|and|applicable|apply|applies|excluding|shall|will|governs?)\b.*$`)
	leadingThe       = regexp.MustCompile(`(?i)^the\s+`)
)

// GoverningLaw extracts the jurisdiction named after a "laws of" or
// "governed by" cue. The governing law section is searched when present,
// otherwise the whole document.
type GoverningLaw struct{}

func (GoverningLaw) Name() string { return "governingLaw" }

func (GoverningLaw) Extract(doc *extraction.Document, _ extraction.PartyContext) []extraction.Proposal {
	anchors := doc.Anchors
	if sec, ok := doc.Section(vocab.FamilyGoverningLaw); ok {
		anchors = sec.Body
	}

	for _, cue := range doc.Vocab.GoverningLaw.Cues {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(cue) + `\s+([A-Za-z][A-Za-z ]*)`)
		for _, a := range anchors {
			if a.WasHeading {
				continue
			}
			m := re.FindStringSubmatch(a.Text)
			if m == nil {
				continue
			}
			raw := jurisdictionStop.ReplaceAllString(m[1], "")
			raw = strings.TrimSpace(leadingThe.ReplaceAllString(strings.TrimSpace(raw), ""))
			if raw == "" {
				continue
			}
			p := extraction.ProposalAt(a, "governingLaw", raw)
			p.SourceText = a.Text
			return []extraction.Proposal{p}
		}
	}
	return nil
}
