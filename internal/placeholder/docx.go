// SPDX-License-Identifier: Apache-2.0

package placeholder

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
)

// MainPart is the archive entry holding the document body.
const MainPart = "word/document.xml"

// rewriteDocx rewrites the main part of a DOCX archive with fn and copies
// every other entry unchanged. A document without a main part is rejected
// before anything is written.
func rewriteDocx(doc []byte, fn func(string) (string, error)) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(doc), int64(len(doc)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingMainPart, err)
	}

	var main *zip.File
	for _, f := range zr.File {
		if f.Name == MainPart {
			main = f
			break
		}
	}
	if main == nil {
		return nil, fmt.Errorf("%w: %s not found", ErrMissingMainPart, MainPart)
	}

	rc, err := main.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrMissingMainPart, MainPart, err)
	}
	body, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrMissingMainPart, MainPart, err)
	}

	rewritten, err := fn(string(body))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		if f != main {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}
		hdr := main.FileHeader
		hdr.CRC32, hdr.CompressedSize64, hdr.UncompressedSize64 = 0, 0, 0
		hdr.CompressedSize, hdr.UncompressedSize = 0, 0
		w, err := zw.CreateHeader(&hdr)
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", MainPart, err)
		}
		if _, err := io.WriteString(w, rewritten); err != nil {
			return nil, fmt.Errorf("write %s: %w", MainPart, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}
