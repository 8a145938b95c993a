package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	config "github.com/JadonKrys/file-catalog/internal/config/server"
	"github.com/JadonKrys/file-catalog/pkg/catalog"
	"github.com/JadonKrys/file-catalog/pkg/db/models"
	"github.com/JadonKrys/file-catalog/pkg/db/store"
	"github.com/JadonKrys/file-catalog/pkg/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	defaults := config.GetServerDefault()
	return Options{
		HTTP:     defaults.HTTP,
		Catalog:  defaults.Catalog,
		Metrics:  defaults.Metrics,
		Registry: prometheus.NewRegistry(),
	}
}

func newTestServer(t *testing.T, opts Options, s store.RecordStore) *Server {
	t.Helper()

	if s == nil {
		s = store.NewMemoryStore()
	}
	c := catalog.New(s, catalog.NewValidator(catalog.PolicyFromConfig(opts.Catalog)), log.Discard())
	return NewServer(opts, c, log.Discard())
}

func do(t *testing.T, srv *Server, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func filePayload(uid, location string) string {
	return `{"uid":"` + uid + `","checksum":"` + strings.Repeat("a", 128) + `","locations":["` + location + `"]}`
}

func fileID(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	href, ok := decode(t, rec)["file"].(string)
	require.True(t, ok)
	return href[strings.LastIndex(href, "/")+1:]
}

func TestRoot(t *testing.T) {
	srv := newTestServer(t, testOptions(), nil)

	rec := do(t, srv, http.MethodGet, "/api", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentType, rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"_links":{"self":{"href":"/api"}},"files":{"href":"/api/files"}}`, rec.Body.String())
}

func TestRoot_SlashBaseURL(t *testing.T) {
	opts := testOptions()
	opts.HTTP.BaseURL = "/"
	srv := newTestServer(t, opts, nil)

	rec := do(t, srv, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"_links":{"self":{"href":"/"}},"files":{"href":"/files"}}`, rec.Body.String())

	rec = do(t, srv, http.MethodGet, "/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodGet, "/files", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoot_UnknownPathIsNotFound(t *testing.T) {
	srv := newTestServer(t, testOptions(), nil)

	rec := do(t, srv, http.MethodGet, "/api/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateMergeConflictScenario(t *testing.T) {
	srv := newTestServer(t, testOptions(), nil)

	rec := do(t, srv, http.MethodPost, "/api/files", filePayload("f1", "loc1"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := fileID(t, rec)

	rec = do(t, srv, http.MethodPost, "/api/files", filePayload("f1", "loc2"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, id, fileID(t, rec))

	rec = do(t, srv, http.MethodGet, "/api/files/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, []any{"loc1", "loc2"}, body["locations"])
	assert.Equal(t, id, body["id"])

	rec = do(t, srv, http.MethodPost, "/api/files", filePayload("f1", "loc1"))
	require.Equal(t, http.StatusConflict, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, "replica has already been added", body["message"])
	assert.Equal(t, "/api/files/"+id, body["file"])
}

func TestCreate_ChecksumConflict(t *testing.T) {
	srv := newTestServer(t, testOptions(), nil)

	rec := do(t, srv, http.MethodPost, "/api/files", filePayload("f1", "loc1"))
	require.Equal(t, http.StatusCreated, rec.Code)

	other := `{"uid":"f1","checksum":"` + strings.Repeat("b", 128) + `","locations":["loc2"]}`
	rec = do(t, srv, http.MethodPost, "/api/files", other)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict with existing file (uid already exists)", decode(t, rec)["message"])
}

func TestCreate_BadPayloads(t *testing.T) {
	srv := newTestServer(t, testOptions(), nil)

	tests := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"array", "[]"},
		{"forbidden field", `{"_id":"x","uid":"f1","checksum":"` + strings.Repeat("a", 128) + `","locations":["l"]}`},
		{"short checksum", `{"uid":"f1","checksum":"abc","locations":["l"]}`},
		{"missing locations", `{"uid":"f1","checksum":"` + strings.Repeat("a", 128) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/api/files", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode(t, rec)["message"])
		})
	}
}

func TestGetFile_NotFoundAndMalformed(t *testing.T) {
	srv := newTestServer(t, testOptions(), nil)
	id, err := store.NewID()
	require.NoError(t, err)

	rec := do(t, srv, http.MethodGet, "/api/files/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", decode(t, rec)["message"])

	rec = do(t, srv, http.MethodGet, "/api/files/not-an-id", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetFile_LinksAndETag(t *testing.T) {
	srv := newTestServer(t, testOptions(), nil)
	id := fileID(t, do(t, srv, http.MethodPost, "/api/files", filePayload("f1", "loc1")))

	rec := do(t, srv, http.MethodGet, "/api/files/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("ETag"))

	links := decode(t, rec)["_links"].(map[string]any)
	assert.Equal(t, map[string]any{"href": "/api/files/" + id}, links["self"])
	assert.Equal(t, map[string]any{"href": "/api/files"}, links["parent"])

	again := do(t, srv, http.MethodGet, "/api/files/"+id, "")
	assert.Equal(t, rec.Header().Get("ETag"), again.Header().Get("ETag"))
	assert.Equal(t, rec.Body.String(), again.Body.String())
}

func TestPatchFile_TagProtocol(t *testing.T) {
	srv := newTestServer(t, testOptions(), nil)
	id := fileID(t, do(t, srv, http.MethodPost, "/api/files", filePayload("f1", "loc1")))
	etag := do(t, srv, http.MethodGet, "/api/files/"+id, "").Header().Get("ETag")

	rec := do(t, srv, http.MethodPatch, "/api/files/"+id, `{"owner":"ops"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict (version mismatch)", decode(t, rec)["message"])

	rec = do(t, srv, http.MethodPatch, "/api/files/"+id, `{"owner":"ops"}`, "If-Match", `"stale"`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, decode(t, rec), "_links")

	rec = do(t, srv, http.MethodPatch, "/api/files/"+id, `{"owner":"ops"}`, "If-Match", etag)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	newTag := rec.Header().Get("ETag")
	assert.NotEqual(t, etag, newTag)
	assert.Equal(t, "ops", decode(t, rec)["owner"])

	// The stale tag no longer works; the legacy header carries the new one.
	rec = do(t, srv, http.MethodPatch, "/api/files/"+id, `{"owner":"dev"}`, "If-Match", etag)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, srv, http.MethodPatch, "/api/files/"+id, `{"owner":"dev"}`, "If-None-Match", newTag)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPatchFile_ForbiddenAndInvalid(t *testing.T) {
	srv := newTestServer(t, testOptions(), nil)
	id := fileID(t, do(t, srv, http.MethodPost, "/api/files", filePayload("f1", "loc1")))
	etag := do(t, srv, http.MethodGet, "/api/files/"+id, "").Header().Get("ETag")

	rec := do(t, srv, http.MethodPatch, "/api/files/"+id, `{"uid":"f2"}`, "If-Match", etag)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "forbidden attributes", decode(t, rec)["message"])

	rec = do(t, srv, http.MethodPatch, "/api/files/"+id, `{"locations":[]}`, "If-Match", etag)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPutFile_KeepsUID(t *testing.T) {
	srv := newTestServer(t, testOptions(), nil)
	id := fileID(t, do(t, srv, http.MethodPost, "/api/files", filePayload("f1", "loc1")))
	etag := do(t, srv, http.MethodGet, "/api/files/"+id, "").Header().Get("ETag")

	body := `{"checksum":"` + strings.Repeat("c", 128) + `","locations":["loc7"],"_links":{"self":{"href":"x"}}}`
	rec := do(t, srv, http.MethodPut, "/api/files/"+id, body, "If-Match", etag)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode(t, rec)
	assert.Equal(t, "f1", got["uid"])
	assert.Equal(t, []any{"loc7"}, got["locations"])
}

func TestDeleteFile(t *testing.T) {
	srv := newTestServer(t, testOptions(), nil)
	id := fileID(t, do(t, srv, http.MethodPost, "/api/files", filePayload("f1", "loc1")))

	rec := do(t, srv, http.MethodDelete, "/api/files/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/api/files/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodDelete, "/api/files/zzz", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListFiles(t *testing.T) {
	srv := newTestServer(t, testOptions(), nil)
	var ids []string
	for _, uid := range []string{"a", "b", "c"} {
		ids = append(ids, fileID(t, do(t, srv, http.MethodPost, "/api/files", filePayload(uid, "loc"))))
	}

	rec := do(t, srv, http.MethodGet, "/api/files?limit=2&start=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, []any{"/api/files/" + ids[1], "/api/files/" + ids[2]}, body["files"])

	embedded := body["_embedded"].(map[string]any)["files"].([]any)
	require.Len(t, embedded, 2)
	assert.Equal(t, map[string]any{"id": ids[1], "uid": "b"}, embedded[0])

	query := url.QueryEscape(`{"_id":"` + ids[0] + `"}`)
	rec = do(t, srv, http.MethodGet, "/api/files?query="+query, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"/api/files/" + ids[0]}, decode(t, rec)["files"])

	rec = do(t, srv, http.MethodGet, "/api/files?query="+url.QueryEscape(`{"uid":"none"}`), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, decode(t, rec)["files"])
}

func TestListFiles_InvalidParams(t *testing.T) {
	srv := newTestServer(t, testOptions(), nil)

	for _, target := range []string{
		"/api/files?limit=0",
		"/api/files?limit=abc",
		"/api/files?start=-1",
		"/api/files?query=" + url.QueryEscape("{"),
		"/api/files?query=" + url.QueryEscape(`{"id":"x","_id":"x"}`),
		"/api/files?query=" + url.QueryEscape(`{"id":"x"}`),
	} {
		rec := do(t, srv, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestListFiles_LimitCappedAtMax(t *testing.T) {
	opts := testOptions()
	opts.Catalog.MaxFiles = 2
	srv := newTestServer(t, opts, nil)
	for _, uid := range []string{"a", "b", "c"} {
		do(t, srv, http.MethodPost, "/api/files", filePayload(uid, "loc"))
	}

	rec := do(t, srv, http.MethodGet, "/api/files?limit=50", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["files"], 2)

	rec = do(t, srv, http.MethodGet, "/api/files", "")
	assert.Len(t, decode(t, rec)["files"], 2)
}

// blockingStore parks Get calls until release is closed.
type blockingStore struct {
	store.RecordStore
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStore) Get(ctx context.Context, id string) (models.Metadata, error) {
	b.entered <- struct{}{}
	<-b.release
	return b.RecordStore.Get(ctx, id)
}

func TestAdmission_RejectsOverLimit(t *testing.T) {
	opts := testOptions()
	opts.Catalog.RateLimit = 1
	blocking := &blockingStore{
		RecordStore: store.NewMemoryStore(),
		entered:     make(chan struct{}, 1),
		release:     make(chan struct{}),
	}
	srv := newTestServer(t, opts, blocking)
	id, err := store.NewID()
	require.NoError(t, err)

	done := make(chan int, 1)
	go func() {
		done <- do(t, srv, http.MethodGet, "/api/files/"+id, "").Code
	}()
	<-blocking.entered

	rec := do(t, srv, http.MethodGet, "/api", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate limit exceeded for IP address", decode(t, rec)["message"])

	close(blocking.release)
	assert.Equal(t, http.StatusNotFound, <-done)

	rec = do(t, srv, http.MethodGet, "/api", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInternalErrorHidesDetailUnlessDebug(t *testing.T) {
	for _, debug := range []bool{false, true} {
		opts := testOptions()
		opts.HTTP.Debug = debug
		srv := newTestServer(t, opts, nil)

		handler := srv.handle("TestHandler", func(w http.ResponseWriter, r *http.Request) error {
			panic("boom")
		})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "Internal error in TestHandler", body["message"])
		if debug {
			assert.Contains(t, body["exception"], "boom")
		} else {
			assert.NotContains(t, body, "exception")
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, testOptions(), nil)
	do(t, srv, http.MethodPost, "/api/files", filePayload("f1", "loc1"))
	do(t, srv, http.MethodPost, "/api/files", filePayload("f1", "loc1"))

	rec := do(t, srv, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `filecatalog_records_registered_total{result="created"} 1`)
	assert.Contains(t, rec.Body.String(), `filecatalog_conflicts_total{kind="replica_exists"} 1`)
}

func TestMetricsDisabled(t *testing.T) {
	opts := testOptions()
	opts.Metrics.Enabled = false
	srv := newTestServer(t, opts, nil)

	rec := do(t, srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreate_PreservesLargeIntegers(t *testing.T) {
	srv := newTestServer(t, testOptions(), nil)

	payload := `{"uid":"f1","checksum":"` + strings.Repeat("a", 128) + `","locations":["loc1"],"size":9007199254740993}`
	rec := do(t, srv, http.MethodPost, "/api/files", payload)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := fileID(t, rec)

	rec = do(t, srv, http.MethodGet, "/api/files/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"size":9007199254740993`)

	query := url.QueryEscape(`{"size":9007199254740993}`)
	rec = do(t, srv, http.MethodGet, "/api/files?query="+query, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/files/"+id)

	query = url.QueryEscape(`{"size":9007199254740992}`)
	rec = do(t, srv, http.MethodGet, "/api/files?query="+query, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "/api/files/"+id)
}
