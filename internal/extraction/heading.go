// SPDX-License-Identifier: Apache-2.0

package extraction

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/docvars/docvars/internal/vocab"
)

// HeadingReason names the rule that decided a heading verdict.
type HeadingReason string

const (
	ReasonEmpty          HeadingReason = "empty"
	ReasonKeyword        HeadingReason = "keyword"
	ReasonSentencePunct  HeadingReason = "sentencePunct"
	ReasonSentenceLike   HeadingReason = "sentenceLike"
	ReasonAllCapsShort   HeadingReason = "fallbackAllCapsShort"
	ReasonTitleCaseShort HeadingReason = "fallbackTitleCaseShort"
	ReasonDefaultBody    HeadingReason = "defaultBody"
)

// HeadingVerdict is the outcome of ClassifyHeading.
type HeadingVerdict struct {
	IsHeading bool
	Reason    HeadingReason
}

const (
	maxSentenceWords = 12
	maxSentenceChars = 80
	maxFallbackWords = 4
)

var (
	trailingColon = regexp.MustCompile(`[:\-–]\s*$`)
	sentenceEnd   = regexp.MustCompile(`[.?!]$`)
	verbCue       = regexp.MustCompile(`(?i)\b(is|are|was|were|shall|will|includes?|pertains?|constitutes|agrees?|licensed?|executed)\b`)
	currencyCue   = regexp.MustCompile(`[$]\s*\d|USD|\b\d{4}\b`)
	allCaps       = regexp.MustCompile(`^[A-Z\s&]+$`)
	titleCase     = regexp.MustCompile(`^[A-Z][A-Za-z0-9\s&:–-]+$`)
)

// ClassifyHeading decides whether a line or paragraph is a section heading.
// Rules are applied in order and the first that fires wins:
//
//  1. exact match against a known heading variant
//  2. trailing sentence punctuation vetoes
//  3. a verb cue, a currency or year, or sentence length vetoes
//  4. a short ALL-CAPS or Title-Case line is a heading
//  5. anything else is body text
func ClassifyHeading(v *vocab.Vocabulary, raw string) HeadingVerdict {
	text := strings.TrimSpace(trailingColon.ReplaceAllString(normalizeText(raw), ""))
	if text == "" {
		return HeadingVerdict{Reason: ReasonEmpty}
	}
	if v.IsKnownHeading(text) {
		return HeadingVerdict{IsHeading: true, Reason: ReasonKeyword}
	}
	if sentenceEnd.MatchString(text) {
		return HeadingVerdict{Reason: ReasonSentencePunct}
	}
	words := strings.Fields(text)
	if verbCue.MatchString(text) || currencyCue.MatchString(text) ||
		len(words) > maxSentenceWords || utf8.RuneCountInString(text) > maxSentenceChars {
		return HeadingVerdict{Reason: ReasonSentenceLike}
	}
	if len(words) <= maxFallbackWords {
		if allCaps.MatchString(text) {
			return HeadingVerdict{IsHeading: true, Reason: ReasonAllCapsShort}
		}
		if titleCase.MatchString(text) {
			return HeadingVerdict{IsHeading: true, Reason: ReasonTitleCaseShort}
		}
	}
	return HeadingVerdict{Reason: ReasonDefaultBody}
}
