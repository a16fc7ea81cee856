// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"regexp"
	"strings"

	"github.com/docvars/docvars/internal/extraction"
	"github.com/docvars/docvars/internal/vocab"
)

var assignedTo = regexp.MustCompile(`\bto\s+([A-Z][A-Za-z0-9&.,\-()'\s]+)`)

// InventionAssignment finds the assignee of an invention assignment clause.
// Three strategies are tried in order and a later one only runs when the
// earlier ones found nothing: known party and inventor names, role labels,
// and "assigns ... to X" cues.
type InventionAssignment struct{}

func (InventionAssignment) Name() string { return "inventionAssignment" }

type assignment struct {
	assignee string
	anchor   extraction.Anchor
}

func (InventionAssignment) Extract(doc *extraction.Document, pc extraction.PartyContext) []extraction.Proposal {
	sec, ok := doc.Section(vocab.FamilyInventionAssignment)
	if !ok {
		return nil
	}

	hits := assigneesByName(sec.Body, pc)
	if len(hits) == 0 {
		hits = assigneesByRole(doc.Vocab, sec.Body, pc)
	}
	if len(hits) == 0 {
		hits = assigneesByCue(doc.Vocab, sec.Body)
	}

	hits = dedupeFold(hits, func(h assignment) string { return h.assignee })
	out := make([]extraction.Proposal, 0, len(hits))
	for i, h := range hits {
		p := extraction.ProposalAt(h.anchor, numbered("inventionAssignment", len(hits), i), h.assignee)
		p.SourceText = h.anchor.Text
		out = append(out, p)
	}
	return out
}

func assigneesByName(body []extraction.Anchor, pc extraction.PartyContext) []assignment {
	names := append([]string{pc.PartyA, pc.PartyB}, pc.InventorNames...)
	var hits []assignment
	for _, a := range body {
		lower := strings.ToLower(a.Text)
		for _, n := range names {
			if n != "" && strings.Contains(lower, strings.ToLower(n)) {
				hits = append(hits, assignment{assignee: n, anchor: a})
			}
		}
	}
	return hits
}

func assigneesByRole(v *vocab.Vocabulary, body []extraction.Anchor, pc extraction.PartyContext) []assignment {
	var hits []assignment
	for _, a := range body {
		lower := strings.ToLower(a.Text)
		var found []string
		for _, label := range v.Parties.RoleLabels {
			if v.StemCue(label).MatchString(lower) {
				found = append(found, label)
			}
		}
		if len(found) == 0 {
			continue
		}

		chosen := found[0]
		if i := strings.Index(lower, "to "); i >= 0 {
			for _, label := range found {
				if v.StemCue(label).MatchString(lower[i:]) {
					chosen = label
					break
				}
			}
		}

		assignee := a.Text
		switch {
		case (chosen == "client" || chosen == "company") && pc.PartyA != "":
			assignee = pc.PartyA
		case (chosen == "provider" || chosen == "consultant" || chosen == "firm") && pc.PartyB != "":
			assignee = pc.PartyB
		default:
			if m := v.RolePhrase(chosen).FindString(a.Text); m != "" {
				assignee = m
			}
		}
		hits = append(hits, assignment{assignee: assignee, anchor: a})
	}
	return hits
}

func assigneesByCue(v *vocab.Vocabulary, body []extraction.Anchor) []assignment {
	cue := cuePattern(v.IP.InventionAssignmentCues)
	qualifier := qualifierPattern(v.Qualifiers)
	var hits []assignment
	for _, a := range body {
		if !cue.MatchString(a.Text) {
			continue
		}
		m := assignedTo.FindStringSubmatch(a.Text)
		if m == nil {
			continue
		}
		raw := strings.TrimSpace(qualifier.ReplaceAllString(m[1], ""))
		for _, target := range splitNames(raw) {
			hits = append(hits, assignment{assignee: target, anchor: a})
		}
	}
	return hits
}
