// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docvars/docvars/internal/extraction"
	"github.com/docvars/docvars/internal/placeholder"
	"github.com/docvars/docvars/internal/vocab"
)

const consultingAgreement = `{"paragraphs": [
  {"content": "Consulting Agreement", "boundingRegions": [{"pageNumber": 1}]},
  {"content": "Parties", "boundingRegions": [{"pageNumber": 1}]},
  {"content": "This Agreement is made between Acme Corp (the \"Client\") and Jane Doe (the \"Provider\"), effective as of January 5, 2025.", "boundingRegions": [{"pageNumber": 1}]},
  {"content": "Fees", "boundingRegions": [{"pageNumber": 1}]},
  {"content": "The Client shall pay a flat fee of $5,000.", "boundingRegions": [{"pageNumber": 1}]},
  {"content": "Governing Law", "boundingRegions": [{"pageNumber": 2}]},
  {"content": "This Agreement is governed by the laws of the State of Texas.", "boundingRegions": [{"pageNumber": 2}]}
]}`

func newTestTools() *Tools {
	v := vocab.MustDefault()
	return New(DefaultPipeline(v), placeholder.New(v, nil))
}

func TestExtractContractFields(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	tests := []struct {
		name           string
		input          InputExtractContractFields
		wantErr        bool
		errContains    string
		validateOutput func(t *testing.T, output OutputExtractContractFields)
	}{
		{
			name:        "empty input returns error",
			input:       InputExtractContractFields{},
			wantErr:     true,
			errContains: "read_result or content is required",
		},
		{
			name: "paragraph read result produces proposals",
			input: InputExtractContractFields{
				ReadResult: consultingAgreement,
				SourceID:   "consulting.pdf",
			},
			validateOutput: func(t *testing.T, output OutputExtractContractFields) {
				assert.Equal(t, "consulting.pdf", output.SourceID)
				assert.NotEmpty(t, output.RunID)
				assert.Greater(t, output.AnchorCount, 0)
				var fields []string
				for _, p := range output.Proposals {
					fields = append(fields, p.SchemaField)
				}
				assert.Equal(t, []string{"partyA", "partyB", "effectiveDate", "feeAmount", "feeStructure", "governingLaw"}, fields)
				assert.Equal(t, 2, *output.Proposals[len(output.Proposals)-1].Page)
			},
		},
		{
			name: "plain content is accepted and source_id defaults",
			input: InputExtractContractFields{
				Content: "Governing Law\nThis Agreement is governed by the laws of the State of Ohio.",
			},
			validateOutput: func(t *testing.T, output OutputExtractContractFields) {
				assert.Equal(t, "unknown", output.SourceID)
				require.Len(t, output.Proposals, 1)
				assert.Equal(t, "Ohio", output.Proposals[0].RawValue)
			},
		},
		{
			name: "read result without text yields no proposals",
			input: InputExtractContractFields{
				ReadResult: `{"pages": []}`,
			},
			validateOutput: func(t *testing.T, output OutputExtractContractFields) {
				assert.Empty(t, output.Proposals)
				assert.Equal(t, 0, output.AnchorCount)
			},
		},
		{
			name: "malformed read result returns error",
			input: InputExtractContractFields{
				ReadResult: `{"pages": "not a list"}`,
			},
			wantErr:     true,
			errContains: "malformed read result",
		},
	}

	tools := newTestTools()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := tools.ExtractContractFields(ctx, req, tt.input)

			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}

func buildDocx(t *testing.T, body string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(placeholder.MainPart)
	require.NoError(t, err)
	_, err = io.WriteString(w, `<w:document><w:body><w:p><w:r><w:t>`+body+`</w:t></w:r></w:p></w:body></w:document>`)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestPlaceholderizeContract(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	tests := []struct {
		name           string
		input          func(t *testing.T) InputPlaceholderizeContract
		wantErr        bool
		errContains    string
		validateOutput func(t *testing.T, output OutputPlaceholderizeContract)
	}{
		{
			name:        "missing document returns error",
			input:       func(*testing.T) InputPlaceholderizeContract { return InputPlaceholderizeContract{} },
			wantErr:     true,
			errContains: "document is required",
		},
		{
			name: "invalid base64 returns error",
			input: func(*testing.T) InputPlaceholderizeContract {
				return InputPlaceholderizeContract{Document: "%%%"}
			},
			wantErr:     true,
			errContains: "not valid base64",
		},
		{
			name: "mappings are applied",
			input: func(t *testing.T) InputPlaceholderizeContract {
				return InputPlaceholderizeContract{
					Document:   buildDocx(t, "Governed by the laws of Texas."),
					DocumentID: "contract-7",
					Mappings:   []placeholder.NormalizedMapping{{RawValue: "Texas", SchemaField: "governingLaw"}},
				}
			},
			validateOutput: func(t *testing.T, output OutputPlaceholderizeContract) {
				assert.Equal(t, "contract-7", output.DocumentID)
				require.Len(t, output.Proposals, 1)
				assert.Equal(t, "[[GoverningLaw]]", output.Proposals[0].Placeholder)
				require.Len(t, output.Applied, 1)
				assert.Equal(t, 1, output.Applied[0].Count)

				doc, err := base64.StdEncoding.DecodeString(output.Document)
				require.NoError(t, err)
				zr, err := zip.NewReader(bytes.NewReader(doc), int64(len(doc)))
				require.NoError(t, err)
				rc, err := zr.File[0].Open()
				require.NoError(t, err)
				defer rc.Close()
				body, err := io.ReadAll(rc)
				require.NoError(t, err)
				assert.Contains(t, string(body), "laws of [[GoverningLaw]].")
			},
		},
		{
			name: "proposals stand in for missing mappings",
			input: func(t *testing.T) InputPlaceholderizeContract {
				return InputPlaceholderizeContract{
					Document:  buildDocx(t, "A flat fee of $5,000 applies."),
					Proposals: []extraction.Proposal{{RawValue: "$5,000", SchemaField: "feeAmount", CandidateFields: []string{"feeAmount"}}},
				}
			},
			validateOutput: func(t *testing.T, output OutputPlaceholderizeContract) {
				assert.NotEmpty(t, output.DocumentID)
				require.Len(t, output.Fields, 1)
				assert.Equal(t, placeholder.InputCurrency, output.Fields[0].InputType)
			},
		},
		{
			name: "non-document input is rejected",
			input: func(*testing.T) InputPlaceholderizeContract {
				return InputPlaceholderizeContract{Document: base64.StdEncoding.EncodeToString([]byte("hello"))}
			},
			wantErr:     true,
			errContains: "unsupported document format",
		},
	}

	tools := newTestTools()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := tools.PlaceholderizeContract(ctx, req, tt.input(t))

			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}

func TestNewServerRegistersTools(t *testing.T) {
	ctx := context.Background()
	server := NewServer(newTestTools(), "test")

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	res, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tl := range res.Tools {
		names = append(names, tl.Name)
	}
	assert.ElementsMatch(t, []string{"extract_contract_fields", "placeholderize_contract"}, names)
}
