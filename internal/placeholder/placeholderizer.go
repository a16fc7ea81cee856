// SPDX-License-Identifier: Apache-2.0

package placeholder

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docvars/docvars/internal/extraction"
	"github.com/docvars/docvars/internal/vocab"
)

// Document formats.
const (
	FormatDocx = "docx"
	FormatPDF  = "pdf"
)

// Stages reported in StageError.
const (
	StageDetect   = "detect"
	StageValidate = "validate"
	StageConvert  = "convert"
	StageRewrite  = "rewrite"
)

// Request is one placeholderization job. When Mappings is empty every
// schema-bound proposal is taken as confirmed.
type Request struct {
	DocumentID string
	Format     string
	Document   []byte
	Mappings   []NormalizedMapping
	Proposals  []extraction.Proposal
}

// Substitution records what happened to one field.
type Substitution struct {
	Field   string `json:"field" yaml:"field"`
	Token   string `json:"token" yaml:"token"`
	Count   int    `json:"count" yaml:"count"`
	Skipped string `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Result is the rewritten DOCX plus the enriched proposals.
type Result struct {
	DocumentID string                `json:"documentId" yaml:"documentId"`
	Document   []byte                `json:"-" yaml:"-"`
	Proposals  []extraction.Proposal `json:"proposals" yaml:"proposals"`
	Fields     []FieldDescriptor     `json:"fields" yaml:"fields"`
	Applied    []Substitution        `json:"applied" yaml:"applied"`
}

// Placeholderizer replaces confirmed field values in a contract with
// placeholder tokens.
type Placeholderizer struct {
	vocab     *vocab.Vocabulary
	converter *Converter
	logger    *zap.Logger
}

// New returns a Placeholderizer. conv may be nil, in which case PDF input is
// rejected.
func New(v *vocab.Vocabulary, conv *Converter) *Placeholderizer {
	return &Placeholderizer{vocab: v, converter: conv, logger: zap.NewNop()}
}

// WithLogger sets the logger used for substitution events.
func (p *Placeholderizer) WithLogger(l *zap.Logger) *Placeholderizer {
	if l != nil {
		p.logger = l
	}
	return p
}

// Placeholderize validates the mappings, converts PDF input, and rewrites the
// main document part. Any failure aborts the request without a partial
// document.
func (p *Placeholderizer) Placeholderize(ctx context.Context, req Request) (*Result, error) {
	id := req.DocumentID
	if id == "" {
		id = uuid.NewString()
	}
	log := p.logger.With(zap.String("documentId", id))
	fail := func(stage string, err error) (*Result, error) {
		log.Error("placeholderize failed", zap.String("stage", stage), zap.Error(err))
		return nil, &StageError{DocumentID: id, Stage: stage, Err: err}
	}

	format, err := DetectFormat(req.Format, req.Document)
	if err != nil {
		return fail(StageDetect, err)
	}

	mappings := req.Mappings
	if len(mappings) == 0 {
		mappings = MappingsFromProposals(req.Proposals)
	}
	if err := ValidateMappings(mappings); err != nil {
		return fail(StageValidate, err)
	}
	proposals := MergeMappings(mappings, req.Proposals)

	doc := req.Document
	if format == FormatPDF {
		if p.converter == nil {
			return fail(StageConvert, fmt.Errorf("%w: no converter configured", ErrUnsupportedFormat))
		}
		doc, err = p.converter.Convert(ctx, doc)
		if err != nil {
			return fail(StageConvert, err)
		}
	}
	if err := ctx.Err(); err != nil {
		return fail(StageRewrite, err)
	}

	targets, skipped := p.plan(mappings, proposals)
	applied := make([]Substitution, len(targets), len(targets)+len(skipped))
	out, err := rewriteDocx(doc, func(xml string) (string, error) {
		xml, counts := rewriteAll(xml, targets)
		for i, t := range targets {
			applied[i] = Substitution{Field: t.field, Token: t.token, Count: counts[i]}
			log.Debug("placeholder substitution",
				zap.String("field", t.field), zap.String("token", t.token), zap.Int("count", counts[i]))
		}
		return xml, nil
	})
	if err != nil {
		return fail(StageRewrite, err)
	}
	applied = append(applied, skipped...)

	fields := make([]FieldDescriptor, 0, len(proposals))
	for _, pr := range proposals {
		if pr.Placeholder != "" {
			fields = append(fields, Describe(p.vocab, pr))
		}
	}
	log.Info("placeholderize complete",
		zap.String("format", format), zap.Int("fields", len(fields)), zap.Int("targets", len(targets)))
	return &Result{DocumentID: id, Document: out, Proposals: proposals, Fields: fields, Applied: applied}, nil
}

// plan resolves a token for every active proposal and writes it back onto
// the proposal. Proposals whose match text already holds a placeholder are
// returned as skipped substitutions.
func (p *Placeholderizer) plan(mappings []NormalizedMapping, proposals []extraction.Proposal) ([]target, []Substitution) {
	active := make(map[string]bool)
	for _, m := range mappings {
		if !m.Deleted {
			active[m.SchemaField] = true
		}
	}

	var (
		targets []target
		skipped []Substitution
	)
	for i := range proposals {
		pr := &proposals[i]
		if pr.Ambiguous() || !active[pr.SchemaField] {
			continue
		}
		name := tokenName(pr.Placeholder)
		if name == "" {
			name = ResolveToken(p.vocab, pr.SchemaField)
		}
		token := Token(name)
		pr.Placeholder = token

		match := pr.RawValue
		if pr.IsExpandable && pr.SourceText != "" {
			match = pr.SourceText
		}
		match = collapseSpace(match)
		if HasPlaceholder(match) {
			skipped = append(skipped, Substitution{Field: pr.SchemaField, Token: token, Skipped: "already placeholderized"})
			p.logger.Debug("placeholder skipped", zap.String("field", pr.SchemaField))
			continue
		}
		scope := ""
		if !pr.IsExpandable {
			scope = pr.SourceText
		}
		targets = append(targets, target{
			field: pr.SchemaField,
			token: token,
			match: match,
			scope: scope,
			once:  p.partiesScoped(*pr),
		})
	}
	return targets, skipped
}

// partiesScoped reports whether a proposal names a contracting party, which
// is replaced once rather than everywhere.
func (p *Placeholderizer) partiesScoped(pr extraction.Proposal) bool {
	if pr.RoleHint != "" {
		if p.vocab.HeadingMatches(pr.RoleHint, vocab.FamilyParties) || p.vocab.IsRoleLabel(pr.RoleHint) {
			return true
		}
	}
	return p.vocab.FamilyForField(pr.SchemaField) == vocab.FamilyParties
}

// DetectFormat resolves the document format from an explicit name or, when
// name is empty, from the leading bytes.
func DetectFormat(name string, doc []byte) (string, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")) {
	case FormatDocx:
		return FormatDocx, nil
	case FormatPDF:
		return FormatPDF, nil
	case "":
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
	switch {
	case bytes.HasPrefix(doc, []byte("%PDF-")):
		return FormatPDF, nil
	case bytes.HasPrefix(doc, []byte("PK\x03\x04")):
		return FormatDocx, nil
	}
	return "", ErrUnsupportedFormat
}
