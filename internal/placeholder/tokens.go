// SPDX-License-Identifier: Apache-2.0

package placeholder

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/docvars/docvars/internal/vocab"
)

var existingPlaceholder = regexp.MustCompile(`\[\[[^\[\]]+\]\]|\{\{[^{}]+\}\}`)

// ResolveToken returns the placeholder name for a schema field, keeping any
// numeric suffix: partyA becomes PartyA and inventor2 becomes Inventor2.
// Fields missing from the vocabulary get their first letter upper-cased.
func ResolveToken(v *vocab.Vocabulary, field string) string {
	base, suffix := vocab.SplitFieldSuffix(field)
	if name, ok := v.Placeholders[strings.ToLower(base)]; ok {
		return name + suffix
	}
	return upperFirst(base) + suffix
}

// Token wraps a placeholder name in the marker written into documents.
func Token(name string) string {
	return "[[" + name + "]]"
}

// tokenName strips placeholder markers from a mapping-supplied placeholder.
func tokenName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "[["), "]]")
	s = strings.TrimSuffix(strings.TrimPrefix(s, "{{"), "}}")
	return strings.TrimSpace(s)
}

// HasPlaceholder reports whether text already contains a [[name]] or
// {{name}} marker.
func HasPlaceholder(text string) bool {
	return existingPlaceholder.MatchString(text)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
