// SPDX-License-Identifier: Apache-2.0

package extraction

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-yaml"
)

// ReadResult is the payload produced by the OCR or paragraph-extraction
// collaborator. Exactly one of Pages, Paragraphs or Content is expected to
// carry text; callers need not say which.
type ReadResult struct {
	Pages      []Page      `json:"pages,omitempty" yaml:"pages,omitempty"`
	Paragraphs []Paragraph `json:"paragraphs,omitempty" yaml:"paragraphs,omitempty"`
	Content    string      `json:"content,omitempty" yaml:"content,omitempty"`
}

type Page struct {
	PageNumber int    `json:"pageNumber" yaml:"pageNumber"`
	Lines      []Line `json:"lines,omitempty" yaml:"lines,omitempty"`
}

type Line struct {
	Content     string    `json:"content" yaml:"content"`
	BoundingBox []float64 `json:"boundingBox,omitempty" yaml:"boundingBox,omitempty"`
}

type Paragraph struct {
	Content         string           `json:"content" yaml:"content"`
	BoundingRegions []BoundingRegion `json:"boundingRegions,omitempty" yaml:"boundingRegions,omitempty"`
}

type BoundingRegion struct {
	PageNumber int `json:"pageNumber" yaml:"pageNumber"`
}

// DecodeReadResult decodes a JSON or YAML read result. Empty input decodes to
// an empty result, which anchorizes to no anchors.
func DecodeReadResult(data []byte) (ReadResult, error) {
	var rr ReadResult
	if len(bytes.TrimSpace(data)) == 0 {
		return rr, nil
	}
	if err := yaml.Unmarshal(data, &rr); err != nil {
		return ReadResult{}, fmt.Errorf("%w: %v", ErrMalformedReadResult, err)
	}
	return rr, nil
}

func (rr ReadResult) hasLines() bool {
	for _, p := range rr.Pages {
		if len(p.Lines) > 0 {
			return true
		}
	}
	return false
}
