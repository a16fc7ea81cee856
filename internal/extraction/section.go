// SPDX-License-Identifier: Apache-2.0

package extraction

import (
	"strings"

	"github.com/docvars/docvars/internal/vocab"
)

// Section is a located heading and the anchors that follow it up to the next
// heading.
type Section struct {
	Heading Anchor
	Body    []Anchor
}

// Text joins the body anchors with single spaces.
func (s Section) Text() string {
	parts := make([]string, 0, len(s.Body))
	for _, a := range s.Body {
		parts = append(parts, a.Text)
	}
	return strings.Join(parts, " ")
}

// LocateSection finds the first heading whose normalized text contains any of
// keywords and returns it with its body. The document title (page 1,
// position 0) is never a section heading. ok is false when no heading
// matches; that is not an error.
func LocateSection(anchors []Anchor, keywords []string) (sec Section, ok bool) {
	for i, a := range anchors {
		if !a.WasHeading || isTitle(a) {
			continue
		}
		if !containsAny(vocab.NormalizeHeading(a.Text), keywords) {
			continue
		}
		sec.Heading = a
		for _, b := range anchors[i+1:] {
			if b.WasHeading && after(b, a) {
				break
			}
			sec.Body = append(sec.Body, b)
		}
		return sec, true
	}
	return Section{}, false
}

func isTitle(a Anchor) bool {
	return a.Page == 1 && a.Y == 0
}

func after(b, a Anchor) bool {
	if b.Page != a.Page {
		return b.Page > a.Page
	}
	return b.Y > a.Y
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// Document is the read-only input handed to every extractor.
type Document struct {
	Anchors []Anchor
	Vocab   *vocab.Vocabulary
}

// Section locates the section of a heading family.
func (d *Document) Section(family string) (Section, bool) {
	return LocateSection(d.Anchors, d.Vocab.HeadingVariants(family))
}

// InFamily reports whether an anchor sits under a heading of family.
func (d *Document) InFamily(a Anchor, family string) bool {
	return a.RoleHint != "" && d.Vocab.HeadingMatches(a.RoleHint, family)
}

// SignatureBlock returns the body of the signatures section, or the last
// anchors of the document when there is no such heading.
func (d *Document) SignatureBlock() []Anchor {
	if sec, ok := d.Section(vocab.FamilySignatures); ok {
		return sec.Body
	}
	n := d.Vocab.Signatures.TailAnchors
	if n <= 0 || n > len(d.Anchors) {
		n = len(d.Anchors)
	}
	return d.Anchors[len(d.Anchors)-n:]
}
