// Package transport is the single choke point for backend calls. Every
// request passes through an ordered list of interceptors that attach the
// credential, track loading state and react to expired sessions.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxErrorBodySize = 1 << 20 // 1MB

// Call is the per-request state shared by interceptors.
type Call struct {
	Request  Request
	HTTP     *http.Request
	Metadata map[string]string
	Started  time.Time
}

// Interceptor is an (outbound, inbound-success, inbound-failure) triple.
// Any of the hooks may be nil.
//
// OnFailure receives the failure produced so far and returns the failure
// to hand to the next interceptor; it may replace it.
type Interceptor struct {
	Name      string
	Outbound  func(c *Call) error
	OnSuccess func(c *Call, resp *http.Response)
	OnFailure func(c *Call, err error) error
}

// Pipeline issues requests against a base URL through its interceptors.
type Pipeline struct {
	baseURL      string
	httpClient   *http.Client
	interceptors []Interceptor
}

// New creates a Pipeline. A nil httpClient uses a client with a 30s timeout.
func New(baseURL string, httpClient *http.Client, interceptors ...Interceptor) *Pipeline {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Pipeline{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   httpClient,
		interceptors: interceptors,
	}
}

// Use appends interceptors to the chain.
func (p *Pipeline) Use(interceptors ...Interceptor) {
	p.interceptors = append(p.interceptors, interceptors...)
}

// BaseURL returns the backend base URL without a trailing slash.
func (p *Pipeline) BaseURL() string { return p.baseURL }

// Do sends req and decodes a successful JSON response into out (which may
// be nil). Failures are returned after every interceptor's OnFailure hook
// has seen them.
func (p *Pipeline) Do(ctx context.Context, req Request, out any) error {
	httpReq, err := p.build(ctx, req)
	if err != nil {
		return err
	}

	call := &Call{
		Request:  req,
		HTTP:     httpReq,
		Metadata: make(map[string]string),
		Started:  time.Now(),
	}

	for i, ic := range p.interceptors {
		if ic.Outbound == nil {
			continue
		}
		if err := ic.Outbound(call); err != nil {
			// Only interceptors whose outbound hook already ran get to
			// unwind.
			return p.fail(call, p.interceptors[:i], fmt.Errorf("interceptor %s: %w", ic.Name, err))
		}
	}

	resp, err := p.httpClient.Do(call.HTTP)
	if err != nil {
		return p.fail(call, p.interceptors, &APIError{
			Method: req.Method,
			Path:   req.Path,
			Err:    err,
		})
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return p.fail(call, p.interceptors, &APIError{
			Method: req.Method,
			Path:   req.Path,
			Status: resp.StatusCode,
			Detail: parseDetail(body),
		})
	}

	for _, ic := range p.interceptors {
		if ic.OnSuccess != nil {
			ic.OnSuccess(call, resp)
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decoding %s %s response: %w", req.Method, req.Path, err)
	}
	return nil
}

func (p *Pipeline) fail(call *Call, chain []Interceptor, err error) error {
	for _, ic := range chain {
		if ic.OnFailure != nil {
			err = ic.OnFailure(call, err)
		}
	}
	return err
}
