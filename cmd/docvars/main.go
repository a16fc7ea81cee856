// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/docvars/docvars/internal/extraction"
	"github.com/docvars/docvars/internal/httpapi"
	"github.com/docvars/docvars/internal/placeholder"
	"github.com/docvars/docvars/internal/tool"
)

var version = "0.1.0"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "docvars",
		Short: "Contract variable extraction and placeholderization",
		Long: `docvars reads the OCR output of an uploaded contract and proposes values
for canonical contract fields: parties, dates, fees, governing law, scope
and IP terms. After review, it rewrites the original DOCX (or a PDF
converted to DOCX) with [[Placeholder]] tokens in place of those values.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a docvars YAML config file")

	rootCmd.AddCommand(extractCmd(&configPath))
	rootCmd.AddCommand(placeholderizeCmd(&configPath))
	rootCmd.AddCommand(serveCmd(&configPath))
	rootCmd.AddCommand(httpCmd(&configPath))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func extractCmd(configPath *string) *cobra.Command {
	var (
		input    string
		sourceID string
		output   string
	)
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Propose contract field values from an OCR read result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			data, err := readInput(input)
			if err != nil {
				return err
			}
			_, out, err := a.tools.ExtractContractFields(cmd.Context(), nil, tool.InputExtractContractFields{
				ReadResult: string(data),
				SourceID:   sourceID,
			})
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, out)
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "-", "read result file (JSON or YAML), - for stdin")
	cmd.Flags().StringVar(&sourceID, "source-id", "", "identifier echoed in the output")
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format: json or yaml")
	return cmd
}

func placeholderizeCmd(configPath *string) *cobra.Command {
	var (
		document   string
		format     string
		documentID string
		mappings   string
		proposals  string
		out        string
		report     string
	)
	cmd := &cobra.Command{
		Use:   "placeholderize",
		Short: "Replace reviewed field values in a DOCX or PDF with placeholder tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			doc, err := os.ReadFile(document)
			if err != nil {
				return fmt.Errorf("read document: %w", err)
			}
			req := placeholder.Request{
				DocumentID: documentID,
				Format:     format,
				Document:   doc,
			}
			if documentID == "" {
				req.DocumentID = filepath.Base(document)
			}
			if mappings != "" {
				if err := decodeFile(mappings, &req.Mappings); err != nil {
					return err
				}
			}
			if proposals != "" {
				var run struct {
					Proposals []extraction.Proposal `json:"proposals" yaml:"proposals"`
				}
				if err := decodeFile(proposals, &run); err != nil {
					return err
				}
				req.Proposals = run.Proposals
			}

			res, err := a.placeholderizer.Placeholderize(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, res.Document, 0o644); err != nil {
				return fmt.Errorf("write document: %w", err)
			}
			a.logger.Info("wrote placeholderized document", zap.String("path", out), zap.Int("fields", len(res.Fields)))

			if report == "" {
				return nil
			}
			f, err := os.Create(report)
			if err != nil {
				return fmt.Errorf("create report: %w", err)
			}
			defer f.Close()
			return writeOutput(f, "json", res)
		},
	}
	cmd.Flags().StringVarP(&document, "document", "d", "", "DOCX or PDF contract")
	cmd.Flags().StringVar(&format, "format", "", "document format (docx or pdf); detected when empty")
	cmd.Flags().StringVar(&documentID, "document-id", "", "identifier reported with failures (default: file name)")
	cmd.Flags().StringVarP(&mappings, "mappings", "m", "", "reviewed mappings file (JSON or YAML list)")
	cmd.Flags().StringVarP(&proposals, "proposals", "p", "", "output of docvars extract for this document")
	cmd.Flags().StringVar(&out, "out", "placeholderized.docx", "rewritten DOCX path")
	cmd.Flags().StringVar(&report, "report", "", "optional path for a JSON report of substitutions and fields")
	_ = cmd.MarkFlagRequired("document")
	return cmd
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the docvars MCP tools over stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			a.logger.Info("serving MCP over stdio", zap.String("version", version))
			return tool.NewServer(a.tools, version).Run(cmd.Context(), &mcp.StdioTransport{})
		},
	}
}

func httpCmd(configPath *string) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "http",
		Short: "Serve the docvars HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			if addr == "" {
				addr = a.cfg.HTTP.Addr
			}
			srv := &http.Server{
				Addr:              addr,
				Handler:           httpapi.New(a.tools, a.logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("http server listening", zap.String("addr", addr))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-cmd.Context().Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				a.logger.Info("shutting down http server")
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config http.addr)")
	return cmd
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

// decodeFile reads a JSON or YAML file into v.
func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
