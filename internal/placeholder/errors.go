// SPDX-License-Identifier: Apache-2.0

package placeholder

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingMainPart is returned when a document is not a readable DOCX
	// archive or has no word/document.xml. Nothing is rewritten.
	ErrMissingMainPart = errors.New("document has no readable main part")
	// ErrConversionFailed is matched by every PDF conversion failure.
	ErrConversionFailed = errors.New("pdf conversion failed")
	// ErrInvalidMapping is returned when the reviewed mappings are malformed.
	ErrInvalidMapping = errors.New("invalid mapping")
	// ErrUnsupportedFormat is returned for documents that are neither DOCX
	// nor PDF.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// StageError reports which stage of a placeholderization request failed and
// for which document, so the caller can retry.
type StageError struct {
	DocumentID string
	Stage      string
	Err        error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("placeholderize %s: %s: %v", e.DocumentID, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// ConversionError carries the exit code and captured output of a failed
// conversion subprocess. ExitCode is -1 when the process did not exit
// normally.
type ConversionError struct {
	ExitCode    int
	Diagnostics string
	Err         error
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("pdf conversion failed (exit code %d)", e.ExitCode)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Diagnostics != "" {
		msg += "\n" + e.Diagnostics
	}
	return msg
}

func (e *ConversionError) Unwrap() error { return e.Err }

func (e *ConversionError) Is(target error) bool { return target == ErrConversionFailed }
