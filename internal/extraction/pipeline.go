// SPDX-License-Identifier: Apache-2.0

package extraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/docvars/docvars/internal/vocab"
)

// Extractor proposes values for one family of fields. Extractors report
// absence by returning no proposals and must not modify the document.
type Extractor interface {
	Name() string
	Extract(doc *Document, pc PartyContext) []Proposal
}

type Pipeline struct {
	vocab      *vocab.Vocabulary
	extractors []Extractor
	logger     *zap.Logger
	trace      bool
}

// NewPipeline creates a Pipeline that runs extractors in the given order.
func NewPipeline(v *vocab.Vocabulary, extractors ...Extractor) *Pipeline {
	return &Pipeline{
		vocab:      v,
		extractors: extractors,
		logger:     zap.NewNop(),
	}
}

// WithLogger sets the logger used for run diagnostics.
func (p *Pipeline) WithLogger(l *zap.Logger) *Pipeline {
	if l != nil {
		p.logger = l
	}
	return p
}

// WithTrace enables per-anchor and per-heading debug logging.
func (p *Pipeline) WithTrace(trace bool) *Pipeline {
	p.trace = trace
	return p
}

// Vocabulary returns the vocabulary the pipeline was built with.
func (p *Pipeline) Vocabulary() *vocab.Vocabulary {
	return p.vocab
}

// RunResult is the output of a pipeline run.
type RunResult struct {
	RunID       string     `json:"runId" yaml:"runId"`
	Proposals   []Proposal `json:"proposals" yaml:"proposals"`
	Anchors     []Anchor   `json:"-" yaml:"-"`
	AnchorCount int        `json:"anchorCount" yaml:"anchorCount"`
	RawCount    int        `json:"rawCount" yaml:"rawCount"`
	Extractors  []string   `json:"extractors" yaml:"extractors"`
}

// Run anchorizes rr, runs every extractor, merges the raw proposals and sorts
// them by document order. A read result with no text produces an empty
// result, not an error.
func (p *Pipeline) Run(ctx context.Context, rr ReadResult) (RunResult, error) {
	result := RunResult{
		RunID:      uuid.NewString(),
		Proposals:  []Proposal{},
		Extractors: p.RegisteredExtractors(),
	}
	logger := p.logger.With(zap.String("runId", result.RunID))

	if err := ctx.Err(); err != nil {
		return RunResult{}, err
	}

	anchors := newAnchorizer(p.vocab, logger, p.trace).run(rr)
	result.Anchors = anchors
	result.AnchorCount = len(anchors)
	if len(anchors) == 0 {
		logger.Info("no text to extract from")
		return result, nil
	}

	doc := &Document{Anchors: anchors, Vocab: p.vocab}
	var raw []Proposal
	for _, e := range p.extractors {
		if err := ctx.Err(); err != nil {
			return RunResult{}, fmt.Errorf("extractor %q: %w", e.Name(), err)
		}
		pc := DerivePartyContext(raw)
		found := e.Extract(doc, pc)
		for _, prop := range found {
			if !prop.Ambiguous() && strings.TrimSpace(prop.RawValue) == "" {
				logger.Debug("dropping proposal without raw value",
					zap.String("extractor", e.Name()), zap.String("field", prop.SchemaField))
				continue
			}
			prop.DiscoveryIndex = Ptr(len(raw))
			raw = append(raw, prop)
		}
		logger.Debug("extractor finished", zap.String("extractor", e.Name()), zap.Int("proposals", len(found)))
	}

	result.RawCount = len(raw)
	mergeLogger := zap.NewNop()
	if p.trace {
		mergeLogger = logger
	}
	result.Proposals = SortByDocumentOrder(Merge(p.vocab, raw, mergeLogger))
	logger.Info("extraction finished",
		zap.Int("anchors", len(anchors)),
		zap.Int("raw", len(raw)),
		zap.Int("proposals", len(result.Proposals)))
	return result, nil
}

// RegisteredExtractors returns the names of the registered extractors in run
// order.
func (p *Pipeline) RegisteredExtractors() []string {
	names := make([]string, len(p.extractors))
	for i, e := range p.extractors {
		names[i] = e.Name()
	}
	return names
}
