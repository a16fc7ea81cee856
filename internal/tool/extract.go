// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/docvars/docvars/internal/extraction"
)

// MetadataExtractContractFields describes the extract_contract_fields tool.
var MetadataExtractContractFields = &mcp.Tool{
	Name: "extract_contract_fields",
	Description: "Extract proposed values for canonical contract fields (parties, dates, fees, " +
		"governing law, scope, IP terms) from the OCR read result of an uploaded contract. " +
		"Each proposal carries the exact source text, its page and vertical position, and the " +
		"heading it was found under. Proposals without a schemaField are ambiguous: their " +
		"candidateFields list the plausible fields and a human reviewer must pick one.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"read_result": map[string]interface{}{
				"type": "string",
				"description": "JSON or YAML read result with either pages[].lines[], " +
					"paragraphs[] with boundingRegions, or a plain content string.",
			},
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Plain contract text. Used when read_result is omitted.",
			},
			"source_id": map[string]interface{}{
				"type":        "string",
				"description": "Optional identifier for the document, echoed in the output.",
			},
		},
	},
}

// InputExtractContractFields is the input for the ExtractContractFields tool.
type InputExtractContractFields struct {
	ReadResult string `json:"read_result"`
	Content    string `json:"content"`
	SourceID   string `json:"source_id"`
}

// OutputExtractContractFields is the output for the ExtractContractFields tool.
type OutputExtractContractFields struct {
	RunID    string `json:"run_id"`
	SourceID string `json:"source_id"`
	// Proposals are deduplicated and sorted by page, then vertical position.
	Proposals   []extraction.Proposal `json:"proposals"`
	AnchorCount int                   `json:"anchor_count"`
	Extractors  []string              `json:"extractors"`
}

// ExtractContractFields runs the extraction pipeline over a read result.
func (t *Tools) ExtractContractFields(ctx context.Context, _ *mcp.CallToolRequest, input InputExtractContractFields) (*mcp.CallToolResult, OutputExtractContractFields, error) {
	var rr extraction.ReadResult
	switch {
	case strings.TrimSpace(input.ReadResult) != "":
		decoded, err := extraction.DecodeReadResult([]byte(input.ReadResult))
		if err != nil {
			return nil, OutputExtractContractFields{}, err
		}
		rr = decoded
	case strings.TrimSpace(input.Content) != "":
		rr = extraction.ReadResult{Content: input.Content}
	default:
		return nil, OutputExtractContractFields{}, fmt.Errorf("%w: read_result or content is required", ErrInvalidInput)
	}

	sourceID := input.SourceID
	if sourceID == "" {
		sourceID = "unknown"
	}

	result, err := t.pipeline.Run(ctx, rr)
	if err != nil {
		return nil, OutputExtractContractFields{}, fmt.Errorf("extract %s: %w", sourceID, err)
	}

	return nil, OutputExtractContractFields{
		RunID:       result.RunID,
		SourceID:    sourceID,
		Proposals:   result.Proposals,
		AnchorCount: result.AnchorCount,
		Extractors:  result.Extractors,
	}, nil
}
