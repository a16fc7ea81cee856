// SPDX-License-Identifier: Apache-2.0

package extraction

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/docvars/docvars/internal/vocab"
)

// paragraphStride spaces paragraph positions so the sentences split from one
// paragraph keep distinct positions below the next paragraph.
const paragraphStride = 100

var lineBreak = regexp.MustCompile(`\r?\n`)

// Anchorize converts a read result into an ordered anchor sequence. Page/line
// data is preferred, then paragraph data, then flat content. An empty read
// result yields no anchors.
func Anchorize(v *vocab.Vocabulary, rr ReadResult) []Anchor {
	return newAnchorizer(v, zap.NewNop(), false).run(rr)
}

type anchorizer struct {
	vocab   *vocab.Vocabulary
	logger  *zap.Logger
	trace   bool
	anchors []Anchor
	heading string
}

func newAnchorizer(v *vocab.Vocabulary, logger *zap.Logger, trace bool) *anchorizer {
	return &anchorizer{vocab: v, logger: logger, trace: trace}
}

func (a *anchorizer) run(rr ReadResult) []Anchor {
	var mode string
	switch {
	case rr.hasLines():
		mode = "pages"
		a.fromPages(rr.Pages)
	case len(rr.Paragraphs) > 0:
		mode = "paragraphs"
		a.fromParagraphs(rr.Paragraphs)
	case strings.TrimSpace(rr.Content) != "":
		mode = "content"
		a.fromContent(rr.Content)
	default:
		mode = "empty"
	}
	a.logger.Debug("anchorized read result", zap.String("mode", mode), zap.Int("anchors", len(a.anchors)))
	return a.anchors
}

func (a *anchorizer) fromPages(pages []Page) {
	for i, page := range pages {
		pageNum := page.PageNumber
		if pageNum <= 0 {
			pageNum = i + 1
		}

		var buf []string
		startY := 0
		flush := func() {
			if len(buf) == 0 {
				return
			}
			a.emitBody(pageNum, startY, strings.Join(buf, " "))
			buf = buf[:0]
		}

		for idx, line := range page.Lines {
			content := normalizeText(line.Content)
			if content == "" {
				continue
			}
			switch a.classify(content) {
			case lineHeading:
				flush()
				a.emitHeading(pageNum, idx, content)
				continue
			case lineSigner:
				flush()
				a.emitBody(pageNum, idx, content)
				continue
			}
			if len(buf) == 0 {
				startY = idx
			}
			buf = append(buf, content)
			if sentenceEnd.MatchString(content) {
				flush()
			}
		}
		flush()
	}
}

func (a *anchorizer) fromParagraphs(paragraphs []Paragraph) {
	for idx, p := range paragraphs {
		text := normalizeText(p.Content)
		if text == "" {
			continue
		}
		pageNum := 1
		if len(p.BoundingRegions) > 0 && p.BoundingRegions[0].PageNumber > 0 {
			pageNum = p.BoundingRegions[0].PageNumber
		}
		y := idx * paragraphStride
		switch a.classify(text) {
		case lineHeading:
			a.emitHeading(pageNum, y, text)
			continue
		case lineSigner:
			a.emitBody(pageNum, y, text)
			continue
		}
		for j, s := range splitSentences(text) {
			a.emitBody(pageNum, y+j, s)
		}
	}
}

func (a *anchorizer) fromContent(content string) {
	idx := 0
	for _, raw := range lineBreak.Split(content, -1) {
		line := normalizeText(raw)
		if line == "" {
			continue
		}
		if a.classify(line) == lineHeading {
			a.emitHeading(1, idx, line)
		} else {
			a.emitBody(1, idx, line)
		}
		idx++
	}
}

type lineKind int

const (
	lineBody lineKind = iota
	lineHeading
	// lineSigner is a Title-Case line inside a signatures section. It is a
	// signer's name rather than a new section and stands as its own anchor.
	lineSigner
)

// classify applies ClassifyHeading, except that inside a signatures section
// a Title-Case line is a signer.
func (a *anchorizer) classify(text string) lineKind {
	verdict := ClassifyHeading(a.vocab, text)
	kind := lineBody
	if verdict.IsHeading {
		kind = lineHeading
		if verdict.Reason == ReasonTitleCaseShort &&
			a.heading != "" && a.vocab.HeadingMatches(a.heading, vocab.FamilySignatures) {
			kind = lineSigner
		}
	}
	if a.trace {
		a.logger.Debug("heading verdict",
			zap.String("text", text),
			zap.Bool("heading", kind == lineHeading),
			zap.Bool("signer", kind == lineSigner),
			zap.String("reason", string(verdict.Reason)),
			zap.String("currentHeading", a.heading))
	}
	return kind
}

func (a *anchorizer) emitHeading(page, y int, text string) {
	a.heading = text
	a.anchors = append(a.anchors, Anchor{Text: text, Page: page, Y: y, RoleHint: text, WasHeading: true})
	if a.trace {
		a.logger.Debug("emit heading", zap.Int("page", page), zap.Int("y", y), zap.String("text", text))
	}
}

func (a *anchorizer) emitBody(page, y int, text string) {
	a.anchors = append(a.anchors, Anchor{Text: text, Page: page, Y: y, RoleHint: a.heading})
	if a.trace {
		a.logger.Debug("emit body", zap.Int("page", page), zap.Int("y", y),
			zap.String("roleHint", a.heading), zap.String("text", text))
	}
}

// normalizeText applies NFC and collapses every run of whitespace, including
// non-breaking spaces, to a single space.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// splitSentences splits text after '.', '?' or '!' when the next word starts
// with an upper-case letter. Text must already be whitespace-normalized.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i+2 < len(text); i++ {
		switch text[i] {
		case '.', '?', '!':
		default:
			continue
		}
		if text[i+1] != ' ' || text[i+2] < 'A' || text[i+2] > 'Z' {
			continue
		}
		if s := strings.TrimSpace(text[start : i+1]); s != "" {
			out = append(out, s)
		}
		start = i + 2
		i++
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}
