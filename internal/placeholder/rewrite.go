// SPDX-License-Identifier: Apache-2.0

package placeholder

import (
	"regexp"
	"sort"
	"strings"
)

var (
	textRun    = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>`)
	textBreak  = regexp.MustCompile(`</w:p>|<w:tab\b|<w:br\b|<w:cr\b`)
	whitespace = regexp.MustCompile(spaceRun)
)

// spaceRun matches whitespace as Word stores it, including no-break and
// other Unicode spaces in raw or character-reference form.
const spaceRun = `(?:[\s\p{Zs}]|&#160;|&#xA0;|&#xa0;)+`

// target is one substitution to apply to the main document part.
type target struct {
	field string
	token string
	match string
	scope string
	once  bool
}

// textIndex maps the visible text of a document part back to its markup.
// Word splits a sentence across runs freely, so matching happens on the
// concatenated text of every <w:t> element and edits are projected back onto
// the elements that own the matched bytes.
type textIndex struct {
	plain []byte
	owner []int // <w:t> element per plain byte, -1 for inserted separators
	at    []int // markup offset per plain byte
}

func indexText(xml string) textIndex {
	var ti textIndex
	prevEnd := -1
	for seg, m := range textRun.FindAllStringSubmatchIndex(xml, -1) {
		if prevEnd >= 0 && textBreak.MatchString(xml[prevEnd:m[0]]) {
			ti.plain = append(ti.plain, ' ')
			ti.owner = append(ti.owner, -1)
			ti.at = append(ti.at, -1)
		}
		for i := m[2]; i < m[3]; i++ {
			ti.plain = append(ti.plain, xml[i])
			ti.owner = append(ti.owner, seg)
			ti.at = append(ti.at, i)
		}
		prevEnd = m[1]
	}
	return ti
}

type edit struct {
	start, end int
	text       string
}

// edits turns one span of plain text into markup edits. The token lands in
// the first element the span touches and the rest of the span is emptied.
func (ti textIndex) edits(sp []int, token string) []edit {
	var out []edit
	first := true
	for i := sp[0]; i < sp[1]; {
		seg := ti.owner[i]
		if seg < 0 {
			i++
			continue
		}
		j := i
		for j < sp[1] && ti.owner[j] == seg {
			j++
		}
		e := edit{start: ti.at[i], end: ti.at[j-1] + 1}
		if first {
			e.text = token
			first = false
		}
		out = append(out, e)
		i = j
	}
	return out
}

// matchPattern builds a pattern that finds text as it appears inside <w:t>
// elements: whitespace runs are flexible and markup escapes are honored.
// Ends that are letters or digits must sit on a word boundary.
func matchPattern(text string) *regexp.Regexp {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = escapeWord(w)
	}
	pat := strings.Join(parts, spaceRun)
	if wordByte(words[0][0]) {
		pat = `\b` + pat
	}
	last := words[len(words)-1]
	if wordByte(last[len(last)-1]) {
		pat += `\b`
	}
	return regexp.MustCompile(pat)
}

func wordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func escapeWord(w string) string {
	var b strings.Builder
	for _, r := range w {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString(`(?:"|&quot;|&#34;)`)
		case '\'':
			b.WriteString(`(?:'|&apos;|&#39;)`)
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	return b.String()
}

// rewriteAll applies every target to a document part and reports how many
// occurrences each one replaced. Scopes and matches are resolved against the
// untouched text, so an earlier substitution never moves a later target's
// scope block. A span claimed by an earlier target is not replaced again.
func rewriteAll(xml string, targets []target) (string, []int) {
	ti := indexText(xml)
	plain := string(ti.plain)
	counts := make([]int, len(targets))

	var (
		claimed [][]int
		edits   []edit
	)
	free := func(sp []int) bool {
		for _, c := range claimed {
			if sp[0] < c[1] && c[0] < sp[1] {
				return false
			}
		}
		return true
	}

	for i, t := range targets {
		re := matchPattern(t.match)
		if re == nil {
			continue
		}
		lo, hi := 0, len(plain)
		if sp := matchPattern(t.scope); sp != nil {
			if loc := sp.FindStringIndex(plain); loc != nil {
				lo, hi = loc[0], loc[1]
			}
		}
		for _, sp := range re.FindAllStringIndex(plain[lo:hi], -1) {
			sp[0] += lo
			sp[1] += lo
			if !free(sp) {
				continue
			}
			claimed = append(claimed, sp)
			edits = append(edits, ti.edits(sp, t.token)...)
			counts[i]++
			if t.once {
				break
			}
		}
	}

	sort.Slice(edits, func(a, b int) bool { return edits[a].start > edits[b].start })
	for _, e := range edits {
		xml = xml[:e.start] + e.text + xml[e.end:]
	}
	return xml, counts
}

func collapseSpace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
