// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/docvars/docvars/internal/extraction"
	"github.com/docvars/docvars/internal/extraction/extractors"
	"github.com/docvars/docvars/internal/placeholder"
	"github.com/docvars/docvars/internal/vocab"
)

// ErrInvalidInput is returned for tool calls missing a required argument or
// carrying an undecodable one.
var ErrInvalidInput = errors.New("invalid input")

// Tools holds what the MCP tool handlers share across calls.
type Tools struct {
	pipeline        *extraction.Pipeline
	placeholderizer *placeholder.Placeholderizer
}

// New returns Tools backed by pipeline and placeholderizer.
func New(pipeline *extraction.Pipeline, placeholderizer *placeholder.Placeholderizer) *Tools {
	return &Tools{pipeline: pipeline, placeholderizer: placeholderizer}
}

// DefaultPipeline builds a Pipeline with every extractor registered.
// Extractor order matters: the parties extractor runs first so that later
// extractors see the inventor names and party letters it found.
func DefaultPipeline(v *vocab.Vocabulary) *extraction.Pipeline {
	return extraction.NewPipeline(v, extractors.Default()...)
}

// Register adds the docvars tools to server.
func (t *Tools) Register(server *mcp.Server) {
	mcp.AddTool(server, MetadataExtractContractFields, t.ExtractContractFields)
	mcp.AddTool(server, MetadataPlaceholderizeContract, t.PlaceholderizeContract)
}

// NewServer returns an MCP server exposing the docvars tools.
func NewServer(t *Tools, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "docvars",
		Version: version,
	}, nil)
	t.Register(server)
	return server
}
