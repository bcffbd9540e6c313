package fakebackend

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/kalambet/taxdesk/internal/taxapi"
)

const msgUnsupportedType = "Only PDF and TXT files are supported"

var errUnsupportedType = errors.New("unsupported file type")

func documentType(filename string) (taxapi.DocumentType, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "pdf":
		return taxapi.DocumentPDF, nil
	case "txt":
		return taxapi.DocumentTXT, nil
	}
	return "", errUnsupportedType
}

// extractText returns the plain text of an uploaded file.
func extractText(typ taxapi.DocumentType, data []byte) (string, error) {
	switch typ {
	case taxapi.DocumentTXT:
		if !utf8.Valid(data) {
			return "", errors.New("text file is not valid UTF-8")
		}
		return string(data), nil
	case taxapi.DocumentPDF:
		return pdfText(data)
	}
	return "", errUnsupportedType
}

func pdfText(data []byte) (text string, err error) {
	// The PDF parser panics on some malformed input.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("reading pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}
	return string(b), nil
}
