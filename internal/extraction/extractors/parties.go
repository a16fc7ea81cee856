// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"regexp"
	"strings"

	"github.com/docvars/docvars/internal/extraction"
	"github.com/docvars/docvars/internal/vocab"
)

var (
	betweenParties = regexp.MustCompile(`(?i)between\s+(.+?)\s+and\s+([^.,]+)(?:[.,]|$)`)
	roleLabel      = regexp.MustCompile(`(?i)\(the\s+["“]?([A-Za-z]+)["”]?\)`)
	effectiveAsOf  = regexp.MustCompile(`(?i)\s*,?\s*effective as of.*$`)
	datedClause    = regexp.MustCompile(`(?i)\s*,?\s*dated.*$`)
	theInventor    = regexp.MustCompile(`(?i)^the\s+inventor$`)
)

// Parties extracts the two contracting parties from the first
// "between A and B" clause, and inventors named in the parties section.
type Parties struct{}

func (Parties) Name() string { return "parties" }

func (Parties) Extract(doc *extraction.Document, _ extraction.PartyContext) []extraction.Proposal {
	out := extractParties(doc)
	return append(out, extractInventors(doc)...)
}

func extractParties(doc *extraction.Document) []extraction.Proposal {
	// anchors under a parties heading are tried first
	ordered := make([]extraction.Anchor, 0, len(doc.Anchors))
	var rest []extraction.Anchor
	for _, a := range doc.Anchors {
		if doc.InFamily(a, vocab.FamilyParties) {
			ordered = append(ordered, a)
		} else {
			rest = append(rest, a)
		}
	}
	ordered = append(ordered, rest...)

	for _, a := range ordered {
		m := betweenParties.FindStringSubmatch(a.Text)
		if m == nil {
			continue
		}
		partyA, labelA := splitLabel(cleanParty(m[1]))
		partyB, labelB := splitLabel(cleanParty(m[2]))
		if partyA == "" || partyB == "" {
			continue
		}

		base := a.RoleHint
		if base == "" {
			base = "Parties"
		}
		if labelA != "" || labelB != "" {
			pa := extraction.ProposalAt(a, "partyA", partyA)
			pa.RoleHint = firstNonEmpty(labelA, base)
			pa.SourceText = a.Text
			pb := extraction.ProposalAt(a, "partyB", partyB)
			pb.RoleHint = firstNonEmpty(labelB, base)
			pb.SourceText = a.Text
			return []extraction.Proposal{pa, pb}
		}

		out := make([]extraction.Proposal, 0, 2)
		for _, name := range []string{partyA, partyB} {
			p := extraction.ProposalAt(a, "", name)
			p.CandidateFields = []string{"partyA", "partyB"}
			p.RoleHint = base
			p.SourceText = a.Text
			out = append(out, p)
		}
		return out
	}
	return nil
}

func cleanParty(s string) string {
	s = effectiveAsOf.ReplaceAllString(s, "")
	s = datedClause.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// splitLabel removes a parenthesised role label such as (the "Client").
func splitLabel(s string) (name, label string) {
	if m := roleLabel.FindStringSubmatch(s); m != nil {
		label = m[1]
	}
	return strings.TrimSpace(roleLabel.ReplaceAllString(s, "")), label
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type inventorHit struct {
	name   string
	anchor extraction.Anchor
}

func extractInventors(doc *extraction.Document) []extraction.Proposal {
	verbs := doc.Vocab.Parties.InventorVerbs
	if len(verbs) == 0 {
		return nil
	}
	quoted := make([]string, len(verbs))
	for i, v := range verbs {
		quoted[i] = regexp.QuoteMeta(v)
	}
	byVerb := regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\s+(.+)`)
	qualifier := qualifierPattern(doc.Vocab.Qualifiers)

	var hits []inventorHit
	for _, a := range doc.Anchors {
		if a.WasHeading || !doc.InFamily(a, vocab.FamilyParties) {
			continue
		}
		text := strings.TrimSpace(a.Text)
		if m := byVerb.FindStringSubmatch(text); m != nil {
			for _, part := range splitNames(m[1]) {
				name := strings.TrimRight(strings.TrimSpace(qualifier.ReplaceAllString(part, "")), ".;")
				if isLikelyName(name) {
					hits = append(hits, inventorHit{name: name, anchor: a})
				}
			}
			continue
		}
		if theInventor.MatchString(text) {
			hits = append(hits, inventorHit{name: "the Inventor", anchor: a})
		}
	}

	hits = dedupeFold(hits, func(h inventorHit) string { return h.name })
	out := make([]extraction.Proposal, 0, len(hits))
	for i, h := range hits {
		p := extraction.ProposalAt(h.anchor, numbered("inventor", len(hits), i), h.name)
		p.RoleHint = "inventor"
		p.SourceText = h.anchor.Text
		out = append(out, p)
	}
	return out
}

// isLikelyName accepts capitalised names of one to four words.
func isLikelyName(s string) bool {
	if s == "" || s[0] < 'A' || s[0] > 'Z' {
		return false
	}
	n := len(strings.Fields(s))
	return n >= 1 && n <= 4
}
