package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// Request describes one backend call. At most one of JSON, Form and
// Multipart should be set.
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	JSON      any
	Form      url.Values
	Multipart *Multipart
}

// Multipart is a multipart/form-data body with ordered text fields and a
// single file part.
type Multipart struct {
	Fields    []Field
	FileField string
	FileName  string
	File      io.Reader
}

// Field is one text part of a multipart body.
type Field struct {
	Name  string
	Value string
}

// Fingerprint derives the loading-tracker key for req from its method,
// path, serialized query and serialized body. Only JSON bodies are
// serialized; form and multipart bodies contribute "{}".
func Fingerprint(req Request) string {
	query := "{}"
	if len(req.Query) > 0 {
		query = req.Query.Encode()
	}
	body := "{}"
	if req.JSON != nil {
		if b, err := json.Marshal(req.JSON); err == nil {
			body = string(b)
		}
	}
	return fmt.Sprintf("%s-%s-%s-%s", req.Method, req.Path, query, body)
}

func (p *Pipeline) build(ctx context.Context, req Request) (*http.Request, error) {
	target := p.baseURL + req.Path
	if len(req.Query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.JSON != nil:
		data, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, fmt.Errorf("marshalling request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	case req.Form != nil:
		body = strings.NewReader(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.Multipart != nil:
		buf, ct, err := encodeMultipart(req.Multipart)
		if err != nil {
			return nil, fmt.Errorf("encoding multipart body: %w", err)
		}
		body = buf
		contentType = ct
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	return httpReq, nil
}

func encodeMultipart(m *Multipart) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range m.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", err
		}
	}

	if m.File != nil {
		field := m.FileField
		if field == "" {
			field = "file"
		}
		part, err := w.CreateFormFile(field, m.FileName)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, m.File); err != nil {
			return nil, "", fmt.Errorf("copying file %s: %w", m.FileName, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
