// Package client holds the typed OpenStack control-plane clients. One client
// per domain (compute, block storage, network, image, identity), all sharing
// the same request base: non-2xx responses become a *client.Error carrying
// the remote status and the folded error items, except 401 which is mapped
// straight to the credential-rejected condition.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/plumstack/ostack-console/apperror"
)

const TokenHeader = "X-Auth-Token"

// Response is the normalized remote answer: status, headers and the parsed
// JSON body (nil when the response carried none).
type Response struct {
	Status int
	Header http.Header
	Body   map[string]json.RawMessage
}

// ErrorItem is one folded sub-error from an OpenStack error body, for
// example {"itemNotFound": {"message": ..., "code": 404}}.
type ErrorItem struct {
	Type    string `json:"error_type"`
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

// Error is a non-2xx remote response.
type Error struct {
	StatusCode int
	Items      []ErrorItem
}

func (e *Error) Error() string {
	if len(e.Items) > 0 {
		return fmt.Sprintf("openstack returned %d: %s", e.StatusCode, e.Items[0].Message)
	}
	return fmt.Sprintf("openstack returned %d", e.StatusCode)
}

// IsNotFound reports whether err is a remote 404.
func IsNotFound(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.StatusCode == http.StatusNotFound
}

// IsClientError reports whether err came from the remote control plane.
func IsClientError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

type BaseClient struct {
	rootURL    string
	httpClient *http.Client
	tracer     trace.Tracer
}

func NewBaseClient(rootURL string) *BaseClient {
	return &BaseClient{
		rootURL:    strings.TrimRight(rootURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tracer:     otel.Tracer("openstack-client"),
	}
}

// do performs one control-plane request. body, when non-nil, is marshaled as
// JSON. A 401 is surfaced as the credential-rejected condition since the
// token was structurally present but refused remotely.
func (c *BaseClient) do(ctx context.Context, method, path, token string, headers map[string]string, body any) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, fmt.Sprintf("openstack %s %s", method, path),
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.rootURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(TokenHeader, token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	parsed := &Response{Status: resp.StatusCode, Header: resp.Header}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &parsed.Body); err != nil {
				return nil, fmt.Errorf("failed to decode response body: %w", err)
			}
		}
	}

	if parsed.Status < 200 || parsed.Status >= 300 {
		if parsed.Status == http.StatusUnauthorized {
			return nil, apperror.AuthInvalid()
		}
		return nil, &Error{StatusCode: parsed.Status, Items: foldErrorItems(parsed.Body)}
	}
	return parsed, nil
}

// foldErrorItems flattens an OpenStack error body, which keys each sub-error
// by its symbolic name.
func foldErrorItems(body map[string]json.RawMessage) []ErrorItem {
	items := make([]ErrorItem, 0, len(body))
	for name, raw := range body {
		var content struct {
			Message string `json:"message"`
			Detail  string `json:"detail"`
		}
		if err := json.Unmarshal(raw, &content); err != nil {
			continue
		}
		items = append(items, ErrorItem{Type: name, Message: content.Message, Detail: content.Detail})
	}
	return items
}

// decode unmarshals one named section of a response body.
func decode(resp *Response, key string, out any) error {
	raw, ok := resp.Body[key]
	if !ok {
		return fmt.Errorf("response has no %q section", key)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode %q section: %w", key, err)
	}
	return nil
}

// decodeWhole unmarshals the entire response body into out, for endpoints
// that return the object unwrapped (Glance does this).
func decodeWhole(resp *Response, out any) error {
	raw, err := json.Marshal(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to re-encode response body: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

var osTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// parseOSTime handles the control plane's mixed timestamp formats: Nova
// reports RFC3339, Cinder omits the zone.
func parseOSTime(value string) (time.Time, error) {
	for _, layout := range osTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
