// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/docvars/docvars/internal/extraction"
	"github.com/docvars/docvars/internal/placeholder"
)

// MetadataPlaceholderizeContract describes the placeholderize_contract tool.
var MetadataPlaceholderizeContract = &mcp.Tool{
	Name: "placeholderize_contract",
	Description: "Replace reviewed field values in a DOCX or PDF contract with [[Placeholder]] " +
		"tokens and return the rewritten DOCX. PDF input is converted to DOCX first. " +
		"Mappings marked deleted are not rewritten; when no mappings are given every " +
		"schema-bound proposal is applied. Parties are replaced once, inside their source " +
		"sentence; other fields are replaced everywhere. Text that already holds a placeholder " +
		"is left alone.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"document"},
		"properties": map[string]interface{}{
			"document": map[string]interface{}{
				"type":        "string",
				"description": "Base64-encoded DOCX or PDF document.",
			},
			"format": map[string]interface{}{
				"type":        "string",
				"description": "Document format. Detected from the content when omitted.",
				"enum":        []string{placeholder.FormatDocx, placeholder.FormatPDF},
			},
			"document_id": map[string]interface{}{
				"type":        "string",
				"description": "Optional identifier reported with failures.",
			},
			"mappings": map[string]interface{}{
				"type":        "array",
				"description": "Reviewed mappings: rawValue, schemaField, optional normalizedValue, placeholder and deleted.",
				"items": map[string]interface{}{
					"type":     "object",
					"required": []string{"schemaField"},
					"properties": map[string]interface{}{
						"rawValue":        map[string]interface{}{"type": "string"},
						"normalizedValue": map[string]interface{}{"type": "string"},
						"schemaField":     map[string]interface{}{"type": "string"},
						"placeholder":     map[string]interface{}{"type": "string"},
						"deleted":         map[string]interface{}{"type": "boolean"},
					},
				},
			},
			"proposals": map[string]interface{}{
				"type":        "array",
				"description": "Proposals returned by extract_contract_fields for this document.",
				"items":       map[string]interface{}{"type": "object"},
			},
		},
	},
}

// InputPlaceholderizeContract is the input for the PlaceholderizeContract tool.
type InputPlaceholderizeContract struct {
	Document   string                          `json:"document"`
	Format     string                          `json:"format"`
	DocumentID string                          `json:"document_id"`
	Mappings   []placeholder.NormalizedMapping `json:"mappings"`
	Proposals  []extraction.Proposal           `json:"proposals"`
}

// OutputPlaceholderizeContract is the output for the PlaceholderizeContract tool.
type OutputPlaceholderizeContract struct {
	DocumentID string `json:"document_id"`
	// Document is the base64-encoded rewritten DOCX.
	Document  string                        `json:"document"`
	Proposals []extraction.Proposal         `json:"proposals"`
	Fields    []placeholder.FieldDescriptor `json:"fields"`
	Applied   []placeholder.Substitution    `json:"applied"`
}

// PlaceholderizeContract rewrites a contract with placeholder tokens.
func (t *Tools) PlaceholderizeContract(ctx context.Context, _ *mcp.CallToolRequest, input InputPlaceholderizeContract) (*mcp.CallToolResult, OutputPlaceholderizeContract, error) {
	if input.Document == "" {
		return nil, OutputPlaceholderizeContract{}, fmt.Errorf("%w: document is required", ErrInvalidInput)
	}
	doc, err := base64.StdEncoding.DecodeString(input.Document)
	if err != nil {
		return nil, OutputPlaceholderizeContract{}, fmt.Errorf("%w: document is not valid base64: %v", ErrInvalidInput, err)
	}

	res, err := t.placeholderizer.Placeholderize(ctx, placeholder.Request{
		DocumentID: input.DocumentID,
		Format:     input.Format,
		Document:   doc,
		Mappings:   input.Mappings,
		Proposals:  input.Proposals,
	})
	if err != nil {
		return nil, OutputPlaceholderizeContract{}, err
	}

	return nil, OutputPlaceholderizeContract{
		DocumentID: res.DocumentID,
		Document:   base64.StdEncoding.EncodeToString(res.Document),
		Proposals:  res.Proposals,
		Fields:     res.Fields,
		Applied:    res.Applied,
	}, nil
}
