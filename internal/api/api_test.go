package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SachiraChin/workflowmanager-showcase-sub003/internal/config"
	"github.com/SachiraChin/workflowmanager-showcase-sub003/internal/engine"
)

func newServer(t *testing.T, options ...Option) *httptest.Server {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	e, err := engine.New(cfg, nil)
	require.NoError(t, err)
	srv := httptest.NewServer(NewHandler(e, options...).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestHealthz(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(HeaderRequestID))
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv := newServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set(HeaderRequestID, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "abc-123", resp.Header.Get(HeaderRequestID))
}

func TestResolve(t *testing.T) {
	srv := newServer(t)

	resp, out := post(t, srv, "/v1/resolve", `{
		"schema": {"type":"object","properties":{"title":{"type":"string"},"hero":{"type":"string","_ux":{"render_as":"tab.media"}}}},
		"data": {"title":"Hello","hero":"https://example.com/hero.png"}
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	node := out["node"].(map[string]any)
	assert.Equal(t, "object", node["kind"])
	fields := node["fields"].([]any)
	require.Len(t, fields, 2)

	hero := fields[1].(map[string]any)["node"].(map[string]any)
	assert.Equal(t, "tab", hero["kind"])
	children := hero["children"].([]any)
	require.Len(t, children, 1)
	assert.Equal(t, "special", children[0].(map[string]any)["kind"])
}

func TestResolveErrorNodeIsNotAnHTTPError(t *testing.T) {
	srv := newServer(t)

	resp, out := post(t, srv, "/v1/resolve", `{"schema":{"type":"string","_ux":{"render_as":"tab..media"}},"data":"x"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	node := out["node"].(map[string]any)
	assert.Equal(t, "error", node["kind"])
	assert.Equal(t, "directive_syntax", node["code"])
}

func TestResolveBadRequests(t *testing.T) {
	srv := newServer(t)

	tests := []struct {
		name string
		body string
		code string
	}{
		{name: "malformed", body: `{`, code: "INVALID_JSON"},
		{name: "missing schema", body: `{"data":1}`, code: "MISSING_SCHEMA"},
		{name: "bad path", body: `{"schema":{"type":"string"},"data":"x","path":"a[zz"}`, code: "INVALID_REQUEST"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, out := post(t, srv, "/v1/resolve", tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, tc.code, out["code"])
		})
	}
}

func TestBodyLimit(t *testing.T) {
	srv := newServer(t, WithMaxBodyBytes(16))

	resp, out := post(t, srv, "/v1/resolve", `{"schema":{"type":"string"},"data":"a long enough value"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "BODY_TOO_LARGE", out["code"])
}

func TestColumns(t *testing.T) {
	srv := newServer(t)

	resp, out := post(t, srv, "/v1/columns", `{"schema":{"type":"array","items":{"type":"object","properties":{
		"name":{"type":"string","_ux":{"render_as":"column","display_order":2}},
		"id":{"type":"string","_ux":{"render_as":"column","display_order":1}},
		"secret":{"type":"string","_ux":{"render_as":"column","display":"hidden"}},
		"plain":{"type":"string"}
	}}}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cols := out["columns"].([]any)
	require.Len(t, cols, 2)
	assert.Equal(t, "id", cols[0].(map[string]any)["label"])
	assert.Equal(t, "name", cols[1].(map[string]any)["label"])

	headers := out["headers"].([]any)
	require.Len(t, headers, 1)
	assert.EqualValues(t, 2, headers[0].(map[string]any)["colSpan"])
}

func TestColumnsNoColumns(t *testing.T) {
	srv := newServer(t)

	resp, out := post(t, srv, "/v1/columns", `{"schema":{"type":"object","properties":{"a":{"type":"string","_ux":{"render_as":"column","display":false}}}}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "no columns found", out["error"])
}

func TestExtract(t *testing.T) {
	srv := newServer(t)

	resp, out := post(t, srv, "/v1/ux/extract", `{"schema":{"type":"string","_ux":{"render_as":"tab"},"_ux.display":"hidden"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	tree := out["ux"].(map[string]any)
	assert.Equal(t, "tab", tree["render_as"])
	assert.Equal(t, "hidden", tree["display"])
}

func TestNormalizeDisplay(t *testing.T) {
	srv := newServer(t)

	tests := map[string]string{
		`{"display":false}`:           "hidden",
		`{"display":"passthrough"}`:   "passthrough",
		`{"display":"anything else"}`: "visible",
		`{}`:                          "visible",
	}
	for body, want := range tests {
		resp, out := post(t, srv, "/v1/display/normalize", body)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, want, out["mode"], body)
	}
}

func TestLiveIsMountedWhenConfigured(t *testing.T) {
	live := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	srv := newServer(t, WithLive(live))

	resp, err := http.Get(srv.URL + "/v1/live")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)

	bare := newServer(t)
	resp, err = http.Get(bare.URL + "/v1/live")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
