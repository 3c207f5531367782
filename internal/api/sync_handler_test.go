package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"AwardSync/internal/config"
	"AwardSync/internal/model"
	"AwardSync/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSyncer struct {
	report *service.SyncReport
	err    error
	ctxErr error
}

func (s *stubSyncer) Run(ctx context.Context) (*service.SyncReport, error) {
	s.ctxErr = ctx.Err()
	return s.report, s.err
}

type stubPublisher struct {
	report *service.PublishReport
	err    error
}

func (s *stubPublisher) Run(ctx context.Context) (*service.PublishReport, error) {
	return s.report, s.err
}

type stubRuns struct {
	runs  []*model.SyncRun
	dups  []*model.DuplicateLink
	kind  string
	limit int
	all   bool
}

func (s *stubRuns) CreateRun(ctx context.Context, run *model.SyncRun) error { return nil }
func (s *stubRuns) FinishRun(ctx context.Context, run *model.SyncRun) error { return nil }
func (s *stubRuns) ListRuns(ctx context.Context, kind string, limit int) ([]*model.SyncRun, error) {
	s.kind, s.limit = kind, limit
	return s.runs, nil
}
func (s *stubRuns) UpsertDuplicates(ctx context.Context, links []*model.DuplicateLink) error {
	return nil
}
func (s *stubRuns) ListDuplicates(ctx context.Context, includeResolved bool) ([]*model.DuplicateLink, error) {
	s.all = includeResolved
	return s.dups, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(syncer SyncRunner, publisher PublishRunner, runs *stubRuns) *gin.Engine {
	logger, _ := test.NewNullLogger()
	var h *SyncHandler
	if runs == nil {
		h = NewSyncHandler(syncer, publisher, nil, logger)
	} else {
		h = NewSyncHandler(syncer, publisher, runs, logger)
	}
	return NewRouter(&config.ServerConfig{AllowedOrigins: []string{"https://example.webflow.io"}}, h)
}

func perform(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestIndexAndHealth(t *testing.T) {
	r := newTestRouter(&stubSyncer{}, &stubPublisher{}, nil)

	w := perform(r, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Server is running and ready to accept requests.", w.Body.String())

	w = perform(r, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"status": "running", "history": false}, decode(t, w))
}

func TestRunSyncStatusCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, http.StatusOK},
		{"busy", service.ErrCycleInProgress, http.StatusConflict},
		{"partial", &service.PartialApplyError{Failures: []service.ApplyFailure{{Op: "create", RecordID: "A1", Error: "boom"}}}, http.StatusMultiStatus},
		{"aborted", &service.EmptySnapshotError{Side: "source", Cause: errors.New("timeout")}, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			syncer := &stubSyncer{report: &service.SyncReport{RunUUID: "u1", Created: 2}, err: tc.err}
			r := newTestRouter(syncer, &stubPublisher{}, nil)

			w := perform(r, http.MethodPost, "/sync/run")
			assert.Equal(t, tc.want, w.Code)
			body := decode(t, w)
			if tc.err == nil {
				report := body["report"].(map[string]any)
				assert.Equal(t, "u1", report["run_uuid"])
				assert.Equal(t, float64(2), report["created"])
			} else {
				assert.NotEmpty(t, body["error"])
			}
			assert.NoError(t, syncer.ctxErr)
		})
	}
}

func TestRunPublish(t *testing.T) {
	publisher := &stubPublisher{report: &service.PublishReport{RunUUID: "p1", Published: 3}}
	r := newTestRouter(&stubSyncer{}, publisher, nil)

	w := perform(r, http.MethodPost, "/sync/publish")
	require.Equal(t, http.StatusOK, w.Code)
	report := decode(t, w)["report"].(map[string]any)
	assert.Equal(t, float64(3), report["published"])
}

func TestHistoryEndpointsWithoutDatabase(t *testing.T) {
	r := newTestRouter(&stubSyncer{}, &stubPublisher{}, nil)

	assert.Equal(t, http.StatusServiceUnavailable, perform(r, http.MethodGet, "/sync/runs").Code)
	assert.Equal(t, http.StatusServiceUnavailable, perform(r, http.MethodGet, "/sync/duplicates").Code)
}

func TestHistoryEndpoints(t *testing.T) {
	runs := &stubRuns{
		runs: []*model.SyncRun{{ID: 1, Kind: model.RunKindSync, Status: model.RunStatusSuccess}},
		dups: []*model.DuplicateLink{{AirtableID: "A1", KeptItemID: "T1", DuplicateItemID: "T2"}},
	}
	r := newTestRouter(&stubSyncer{}, &stubPublisher{}, runs)

	w := perform(r, http.MethodGet, "/sync/runs?kind=publish&limit=5")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "publish", runs.kind)
	assert.Equal(t, 5, runs.limit)
	assert.Len(t, decode(t, w)["runs"], 1)

	w = perform(r, http.MethodGet, "/sync/duplicates?all=true")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, runs.all)
	assert.Len(t, decode(t, w)["duplicates"], 1)

	w = perform(r, http.MethodGet, "/healthz")
	assert.Equal(t, true, decode(t, w)["history"])
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(&stubSyncer{}, &stubPublisher{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/sync/run", nil)
	req.Header.Set("Origin", "https://example.webflow.io")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	r.ServeHTTP(w, req)

	assert.Equal(t, "https://example.webflow.io", w.Header().Get("Access-Control-Allow-Origin"))
}
