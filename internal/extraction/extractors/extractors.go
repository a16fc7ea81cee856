// SPDX-License-Identifier: Apache-2.0

// Package extractors holds the field extractors run by the extraction
// pipeline. Every extractor reads its keyword tables from the document's
// vocabulary and reports absence by returning no proposals.
package extractors

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/docvars/docvars/internal/extraction"
	"github.com/docvars/docvars/internal/vocab"
)

// Default returns the standard extractors in run order.
func Default() []extraction.Extractor {
	return []extraction.Extractor{
		Parties{},
		Amounts{},
		FeeStructure{},
		Dates{},
		GoverningLaw{},
		Scope{},
		IPType{},
		LicenseScope{},
		InventionAssignment{},
	}
}

var (
	listSeparator = regexp.MustCompile(`(?i),|\s+and\s+`)
	titleCaser    = cases.Title(language.English)
)

// cuePattern matches any of cues starting at a word boundary. Cues are
// stems, so "expire" also matches "expires".
func cuePattern(cues []string) *regexp.Regexp {
	quoted := make([]string, 0, len(cues))
	for _, c := range cues {
		if c = strings.TrimSpace(c); c != "" {
			quoted = append(quoted, regexp.QuoteMeta(c))
		}
	}
	if len(quoted) == 0 {
		return regexp.MustCompile(`$^`)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)`)
}

// firstCue returns the first cue in list order that occurs in text as a
// whole word (plurals included), and the span of text it matched.
func firstCue(v *vocab.Vocabulary, text string, cues []string) (cue, matched string, ok bool) {
	for _, c := range cues {
		if m := v.WordCue(c).FindString(text); m != "" {
			return c, m, true
		}
	}
	return "", "", false
}

// qualifierPattern strips a trailing qualifier clause ("dated ...",
// "effective ...") from a captured name.
func qualifierPattern(qualifiers []string) *regexp.Regexp {
	if len(qualifiers) == 0 {
		return regexp.MustCompile(`$^`)
	}
	quoted := make([]string, len(qualifiers))
	for i, q := range qualifiers {
		quoted[i] = regexp.QuoteMeta(q)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b.*$`)
}

// splitNames splits "A, B and C" into its non-empty parts.
func splitNames(s string) []string {
	var out []string
	for _, part := range listSeparator.Split(s, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// dedupeFold drops case-insensitive duplicates, keeping first occurrences.
func dedupeFold[T any](items []T, key func(T) string) []T {
	seen := make(map[string]struct{}, len(items))
	out := items[:0:0]
	for _, it := range items {
		k := strings.ToLower(key(it))
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}

// numbered returns field for a single result and field1..fieldN otherwise.
func numbered(field string, total, i int) string {
	if total == 1 {
		return field
	}
	return field + strconv.Itoa(i+1)
}
