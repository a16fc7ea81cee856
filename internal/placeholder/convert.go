// SPDX-License-Identifier: Apache-2.0

package placeholder

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultConvertTimeout = 2 * time.Minute
	defaultMaxDiagnostics = 8 << 10
	pipeDrainDelay        = 2 * time.Second
)

// Converter turns a PDF into a DOCX by running an external command as
// "<Command> <Args...> convert <input> <output>". The command succeeds when it
// exits 0 and the output file exists.
type Converter struct {
	Command        string
	Args           []string
	Timeout        time.Duration
	WorkDir        string
	MaxDiagnostics int
	Logger         *zap.Logger
}

// NewConverter returns a Converter running command with the default timeout.
func NewConverter(command string, args ...string) *Converter {
	return &Converter{Command: command, Args: args, Timeout: DefaultConvertTimeout}
}

// Convert runs one conversion. The subprocess lives only for this call and is
// killed when ctx is done or the timeout expires.
func (c *Converter) Convert(ctx context.Context, pdf []byte) ([]byte, error) {
	log := c.logger()

	pages, err := preflight(pdf)
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable pdf: %v", ErrConversionFailed, err)
	}
	log.Debug("pdf preflight", zap.Int("pages", pages), zap.Int("bytes", len(pdf)))

	dir, err := os.MkdirTemp(c.WorkDir, "docvars-convert-*")
	if err != nil {
		return nil, fmt.Errorf("%w: create work dir: %v", ErrConversionFailed, err)
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "input.pdf")
	out := filepath.Join(dir, "output.docx")
	if err := os.WriteFile(in, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("%w: write input: %v", ErrConversionFailed, err)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultConvertTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(slices.Clone(c.Args), "convert", in, out)
	cmd := exec.CommandContext(ctx, c.Command, args...)
	cmd.Dir = dir
	cmd.WaitDelay = pipeDrainDelay

	stdoutR, stdoutW := io.Pipe()
	stderrR, stderrW := io.Pipe()
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	diag := &diagnostics{limit: c.MaxDiagnostics}
	if diag.limit <= 0 {
		diag.limit = defaultMaxDiagnostics
	}

	var g errgroup.Group
	g.Go(func() error { return streamLines(stdoutR, "stdout", log, diag) })
	g.Go(func() error { return streamLines(stderrR, "stderr", log, diag) })

	log.Info("starting converter", zap.String("command", c.Command), zap.Strings("args", args))
	runErr := cmd.Run()
	stdoutW.Close()
	stderrW.Close()
	if err := g.Wait(); err != nil {
		log.Warn("converter output truncated", zap.Error(err))
	}

	if runErr != nil {
		cerr := &ConversionError{ExitCode: -1, Diagnostics: diag.String(), Err: runErr}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			cerr.ExitCode = exitErr.ExitCode()
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			cerr.Err = fmt.Errorf("%w: %v", ctxErr, runErr)
		}
		log.Error("converter failed", zap.Int("exitCode", cerr.ExitCode), zap.Error(runErr))
		return nil, cerr
	}

	docx, err := os.ReadFile(out)
	if err != nil {
		return nil, &ConversionError{
			ExitCode:    0,
			Diagnostics: diag.String(),
			Err:         fmt.Errorf("converter produced no output: %w", err),
		}
	}
	log.Info("converter finished", zap.Int("bytes", len(docx)))
	return docx, nil
}

func (c *Converter) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

// preflight reads the page count of pdf with relaxed validation so that
// garbage input fails before a subprocess is spawned.
func preflight(pdf []byte) (int, error) {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	return api.PageCount(bytes.NewReader(pdf), cfg)
}

func streamLines(r io.Reader, stream string, log *zap.Logger, diag *diagnostics) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		log.Debug("converter output", zap.String("stream", stream), zap.String("line", line))
		diag.add(stream + ": " + line)
	}
	if err := sc.Err(); err != nil {
		// Keep the writer side unblocked.
		_, _ = io.Copy(io.Discard, r)
		return fmt.Errorf("%s: %w", stream, err)
	}
	return nil
}

// diagnostics collects subprocess output up to a byte limit.
type diagnostics struct {
	mu        sync.Mutex
	limit     int
	lines     []string
	size      int
	truncated bool
}

func (d *diagnostics) add(line string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.size+len(line) > d.limit {
		d.truncated = true
		return
	}
	d.lines = append(d.lines, line)
	d.size += len(line) + 1
}

func (d *diagnostics) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := strings.Join(d.lines, "\n")
	if d.truncated {
		s += "\n[output truncated]"
	}
	return s
}
