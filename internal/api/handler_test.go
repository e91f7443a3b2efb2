package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/wordgraph/internal/api"
	"github.com/gyaneshwarpardhi/wordgraph/internal/codec"
	"github.com/gyaneshwarpardhi/wordgraph/internal/config"
	"github.com/gyaneshwarpardhi/wordgraph/internal/graph"
	"github.com/gyaneshwarpardhi/wordgraph/internal/ingest"
)

type fixture struct {
	srv      *httptest.Server
	store    *graph.Store
	snapPath string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	snapPath := filepath.Join(dir, "graph.json")
	cfgPath := filepath.Join(dir, "wordgraph.yaml")
	body := fmt.Sprintf("version: v1\nstore: {cache_capacity: 16}\nsnapshot: {path: %q}\n", snapPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o644))

	loader, err := config.NewLoader(cfgPath)
	require.NoError(t, err)
	store, err := graph.NewStore(loader.Config().Store.CacheCapacity)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	eng := ingest.New(ctx, store, loader.Config().Ingest)
	srv := httptest.NewServer(api.New(store, eng, loader, codec.Default()))
	t.Cleanup(func() {
		srv.Close()
		eng.Shutdown()
		cancel()
	})
	return &fixture{srv: srv, store: store, snapPath: snapPath}
}

func (f *fixture) do(t *testing.T, method, path, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, rd)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

func (f *fixture) seed(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, f.store.AddNode(id, id))
	}
}

func stringList(v interface{}) []string {
	items, _ := v.([]interface{})
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, fmt.Sprint(it))
	}
	return out
}

func TestNodeLifecycle(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, "POST", "/v1/nodes", `{"id":"cat","payload":"feline","tag":"Noun"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := f.do(t, "GET", "/v1/nodes/cat", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "feline", body["payload"])
	assert.Equal(t, "Noun", body["tag"])

	resp, _ = f.do(t, "PUT", "/v1/nodes/cat/tag", `{"tag":"Animal"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	n, err := f.store.GetNode("cat")
	require.NoError(t, err)
	assert.Equal(t, "Animal", n.Tag())

	resp, _ = f.do(t, "DELETE", "/v1/nodes/cat", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = f.do(t, "GET", "/v1/nodes/cat", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body["error"], "not found")

	resp, body = f.do(t, "POST", "/v1/nodes", `{"id":"cat","payload":"again"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body["error"], "removed")
}

func TestNodeListDegreeMatchesDescribe(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "P", "X", "Y")
	require.NoError(t, f.store.AddEdge("P", "X", 1))
	require.NoError(t, f.store.AddEdge("P", "Y", 1))
	require.NoError(t, f.store.RemoveNode("X"))

	_, body := f.do(t, "GET", "/v1/nodes", "")
	nodes := body["nodes"].([]interface{})
	require.NotEmpty(t, nodes)
	p := nodes[0].(map[string]interface{})
	require.Equal(t, "P", p["id"])
	assert.Equal(t, float64(1), p["out_degree"])

	_, body = f.do(t, "GET", "/v1/nodes/P", "")
	assert.Equal(t, float64(1), body["out_degree"])
}

func TestBadRequests(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "A", "B")

	cases := []struct {
		method, path, body string
		status             int
	}{
		{"POST", "/v1/nodes", `{"id":""}`, http.StatusBadRequest},
		{"POST", "/v1/nodes", `{bad json`, http.StatusBadRequest},
		{"POST", "/v1/edges", `{"source":"A","target":"B","strength":-1}`, http.StatusBadRequest},
		{"POST", "/v1/edges", `{"source":"A","target":"Z"}`, http.StatusNotFound},
		{"PUT", "/v1/edges", `{"source":"A","target":"B"}`, http.StatusBadRequest},
		{"DELETE", "/v1/edges?source=Z&target=A", "", http.StatusNotFound},
		{"GET", "/v1/top?limit=0", "", http.StatusBadRequest},
		{"GET", "/v1/top?limit=x", "", http.StatusBadRequest},
		{"GET", "/v1/traverse/Z", "", http.StatusNotFound},
		{"GET", "/v1/path?from=A", "", http.StatusBadRequest},
		{"GET", "/v1/nodes?filter=colour==1", "", http.StatusBadRequest},
		{"GET", "/v1/nodes/A/neighbors?direction=sideways", "", http.StatusBadRequest},
		{"GET", "/v1/nodes/A/neighbors?direction=next&limit=0", "", http.StatusBadRequest},
		{"GET", "/v1/export?format=yaml", "", http.StatusBadRequest},
		{"POST", "/v1/documents", `{"text":""}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			resp, body := f.do(t, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestEdgesAndAlgorithms(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "A", "B", "C")

	for _, e := range []string{
		`{"source":"A","target":"B","strength":1}`,
		`{"source":"B","target":"C","strength":1}`,
		`{"source":"A","target":"C","strength":5}`,
	} {
		resp, _ := f.do(t, "POST", "/v1/edges", e)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	_, body := f.do(t, "GET", "/v1/edges", "")
	assert.Equal(t, float64(3), body["total"])

	_, body = f.do(t, "GET", "/v1/path?from=A&to=C", "")
	assert.Equal(t, []string{"A", "B", "C"}, stringList(body["path"]))
	assert.Equal(t, 2.0, body["cost"])

	_, body = f.do(t, "GET", "/v1/path?from=C&to=A", "")
	assert.Equal(t, false, body["reachable"])
	assert.Empty(t, stringList(body["path"]))

	_, body = f.do(t, "GET", "/v1/traverse/A", "")
	assert.Equal(t, []string{"A", "B", "C"}, stringList(body["order"]))

	_, body = f.do(t, "GET", "/v1/components", "")
	assert.Equal(t, float64(1), body["count"])

	resp, body := f.do(t, "PUT", "/v1/edges", `{"source":"A","target":"C","strength":10}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["updated"])

	_, body = f.do(t, "POST", "/v1/normalize", "")
	assert.Equal(t, 10.0, body["previous_max_strength"])
	assert.Equal(t, 1.0, body["max_strength"])

	resp, _ = f.do(t, "DELETE", "/v1/edges?source=A&target=C", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ok, err := f.store.EdgeExists("A", "C")
	require.NoError(t, err)
	assert.False(t, ok)

	_, body = f.do(t, "GET", "/v1/top?limit=1", "")
	nodes := body["nodes"].([]interface{})
	require.Len(t, nodes, 1)
	assert.Equal(t, "A", nodes[0].(map[string]interface{})["id"])

	_, body = f.do(t, "GET", "/v1/stats", "")
	assert.Equal(t, float64(3), body["nodes"])
	assert.Equal(t, float64(2), body["edges"])
}

func TestListNodesWithFilter(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "the", "then", "cat")

	_, body := f.do(t, "GET", `/v1/nodes?filter=`+url.QueryEscape(`id matches "^th"`)+`&limit=1`, "")
	assert.Equal(t, float64(2), body["total"])
	nodes := body["nodes"].([]interface{})
	require.Len(t, nodes, 1)
	assert.Equal(t, "the", nodes[0].(map[string]interface{})["id"])
}

func TestNeighbors(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "A", "B", "C")
	require.NoError(t, f.store.AddEdge("A", "B", 1))
	require.NoError(t, f.store.AddEdge("A", "C", 2))

	_, body := f.do(t, "GET", "/v1/nodes/A/neighbors", "")
	nbs := body["neighbors"].([]interface{})
	require.Len(t, nbs, 2)
	assert.Equal(t, "C", nbs[0].(map[string]interface{})["id"])

	_, body = f.do(t, "GET", "/v1/nodes/A/neighbors?limit=1", "")
	assert.Len(t, body["neighbors"], 1)

	_, body = f.do(t, "GET", "/v1/nodes/A/neighbors?direction=previous", "")
	assert.NotNil(t, body["neighbors"])
}

func TestDocuments(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, "POST", "/v1/documents", `{"id":"d1","text":"the cat sat."}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "d1", body["document_id"])
	assert.Equal(t, float64(4), body["tokens"])
	assert.True(t, f.store.Has("cat"))

	resp, body = f.do(t, "POST", "/v1/documents/batch", `[{"text":"a b"},{"text":"c d"}]`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, float64(2), body["total"])
	assert.NotEmpty(t, body["job_id"])

	docs := make([]string, 101)
	for i := range docs {
		docs[i] = `{"text":"x"}`
	}
	resp, _ = f.do(t, "POST", "/v1/documents/batch", "["+strings.Join(docs, ",")+"]")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, "POST", "/v1/documents/batch", `[]`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSnapshotAndExport(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "A", "B")
	require.NoError(t, f.store.AddEdge("A", "B", 0.5))

	resp, body := f.do(t, "POST", "/v1/snapshot", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "json", body["format"])
	loaded, err := codec.LoadStore(codec.JSON{}, f.snapPath, 4)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.TotalNodes())

	req, err := http.NewRequest("GET", f.srv.URL+"/v1/export?format=dot", nil)
	require.NoError(t, err)
	r, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer r.Body.Close()
	raw, _ := io.ReadAll(r.Body)
	assert.Equal(t, "text/vnd.graphviz", r.Header.Get("Content-Type"))
	assert.Contains(t, string(raw), `"A" -> "B"`)
}

func TestProbesAndMetrics(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, "GET", "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp, body = f.do(t, "GET", "/readyz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", body["status"])

	_, _ = f.do(t, "GET", "/v1/stats", "")
	r, err := http.Get(f.srv.URL + "/metrics")
	require.NoError(t, err)
	defer r.Body.Close()
	raw, _ := io.ReadAll(r.Body)
	assert.Contains(t, string(raw), "wordgraph_live_nodes")
}

func TestRequestIDIsEchoed(t *testing.T) {
	f := newFixture(t)
	req, err := http.NewRequest("GET", f.srv.URL+"/healthz", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}
