package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plumstack/ostack-console/apperror"
)

func TestDoSendsTokenAndDecodes(t *testing.T) {
	var gotToken, gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get(TokenHeader)
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"server": {"id": "abc", "status": "ACTIVE"}}`))
	}))
	defer srv.Close()

	base := NewBaseClient(srv.URL + "/")
	resp, err := base.do(context.Background(), http.MethodGet, "/servers/abc", "secret", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "secret", gotToken)
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "/servers/abc", gotPath)

	var server struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, decode(resp, "server", &server))
	assert.Equal(t, "abc", server.ID)
	assert.Equal(t, "ACTIVE", server.Status)
}

func TestDoMapsUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewBaseClient(srv.URL).do(context.Background(), http.MethodGet, "/servers", "stale", nil, nil)
	require.Error(t, err)
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.Status)
	assert.Equal(t, apperror.ReasonTokenInvalid, appErr.Reason)
}

func TestDoFoldsErrorItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"itemNotFound": {"message": "Instance could not be found.", "code": 404}}`))
	}))
	defer srv.Close()

	_, err := NewBaseClient(srv.URL).do(context.Background(), http.MethodGet, "/servers/missing", "secret", nil, nil)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.True(t, IsClientError(err))

	var clientErr *Error
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, http.StatusNotFound, clientErr.StatusCode)
	require.Len(t, clientErr.Items, 1)
	assert.Equal(t, "itemNotFound", clientErr.Items[0].Type)
	assert.Equal(t, "Instance could not be found.", clientErr.Items[0].Message)
	assert.Contains(t, clientErr.Error(), "Instance could not be found.")
}

func TestDoMarshalsRequestBody(t *testing.T) {
	var gotBody map[string]any
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	_, err := NewBaseClient(srv.URL).do(context.Background(), http.MethodPost, "/action", "secret", nil,
		map[string]any{"os-start": nil})
	require.NoError(t, err)
	assert.Equal(t, "application/json", gotContentType)
	assert.Contains(t, gotBody, "os-start")
}

func TestDoToleratesEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	resp, err := NewBaseClient(srv.URL).do(context.Background(), http.MethodDelete, "/servers/abc", "secret", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.Status)
	assert.Nil(t, resp.Body)
}

func TestParseOSTime(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Time
	}{
		{"rfc3339", "2026-08-01T12:30:00Z", time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)},
		{"zoneless with micros", "2026-08-01T12:30:00.123456", time.Date(2026, 8, 1, 12, 30, 0, 123456000, time.UTC)},
		{"zoneless", "2026-08-01T12:30:00", time.Date(2026, 8, 1, 12, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseOSTime(tt.value)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
		})
	}

	_, err := parseOSTime("yesterday")
	require.Error(t, err)
}

func TestDecodeWhole(t *testing.T) {
	resp := &Response{Body: map[string]json.RawMessage{
		"id":   json.RawMessage(`"abc"`),
		"name": json.RawMessage(`"cirros"`),
	}}
	var image struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, decodeWhole(resp, &image))
	assert.Equal(t, "abc", image.ID)
	assert.Equal(t, "cirros", image.Name)

	var missing struct{}
	require.Error(t, decode(resp, "image", &missing))
}
