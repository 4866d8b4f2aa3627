package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/piwi3910/CratePack/internal/config"
	"github.com/piwi3910/CratePack/internal/model"
)

func testConfig() *config.Config {
	cfg := &config.Config{Environment: "test"}
	cfg.HTTP.RequestTimeout = 10 * time.Second
	cfg.Optimizer.Strategy = string(model.StrategyBestFitEMS)
	cfg.Optimizer.Rotations = "xyz"
	cfg.Optimizer.Population = 6
	cfg.Optimizer.Elite = 2
	cfg.Optimizer.Generations = 3
	cfg.Optimizer.Workers = 2
	cfg.Optimizer.Threaded = true
	cfg.Optimizer.EvalTimeout = time.Minute
	cfg.Optimizer.MaxJobs = 1
	return cfg
}

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	srv, err := New(testConfig(), zap.NewNop(), model.DefaultInventory())
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	return srv, srv.Router()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// cubes builds a request body with n cubes of the given edge.
func cubes(n int, edge float64, extra string) string {
	boxes := make([]string, n)
	for i := range boxes {
		boxes[i] = fmt.Sprintf(`{"id":%d,"size":{"x":%g,"y":%g,"z":%g}}`, i+1, edge, edge, edge)
	}
	return fmt.Sprintf(`{"boxes":[%s],"container":{"label":"Crate","width":100,"height":100,"depth":50}%s}`,
		strings.Join(boxes, ","), extra)
}

func waitForStatus(t *testing.T, h http.Handler, id string, want JobStatus) Job {
	t.Helper()
	var job Job
	require.Eventually(t, func() bool {
		rec := do(t, h, http.MethodGet, "/api/v1/jobs/"+id, "")
		if rec.Code != http.StatusOK {
			return false
		}
		job = decode[Job](t, rec)
		return job.Status == want
	}, 30*time.Second, 10*time.Millisecond)
	return job
}

func TestNew_InvalidDefaults(t *testing.T) {
	cfg := testConfig()
	cfg.Optimizer.Strategy = "fastest"
	_, err := New(cfg, nil, model.DefaultInventory())
	assert.Error(t, err)
}

func TestHealthz(t *testing.T) {
	_, h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetrics(t *testing.T) {
	_, h := newTestServer(t)
	do(t, h, http.MethodPost, "/api/v1/pack", cubes(2, 50, ""))

	rec := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "cratepack_solves_total")
}

func TestStrategies(t *testing.T) {
	_, h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/api/v1/strategies", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[struct {
		Strategies []string `json:"strategies"`
		Default    string   `json:"default"`
	}](t, rec)
	assert.Equal(t, []string{"firstfit", "firstfit-flat", "bestfit", "bestfit-ems"}, body.Strategies)
	assert.Equal(t, "bestfit-ems", body.Default)
}

func TestContainers(t *testing.T) {
	_, h := newTestServer(t)
	rec := do(t, h, http.MethodGet, "/api/v1/containers", "")
	require.Equal(t, http.StatusOK, rec.Code)

	presets := decode[[]model.ContainerPreset](t, rec)
	assert.Len(t, presets, len(model.DefaultInventory().Containers))
}

func TestPack(t *testing.T) {
	_, h := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/api/v1/pack", cubes(4, 50, ""))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[PackResponse](t, rec)
	require.Len(t, resp.Result.Bins, 1)
	assert.Len(t, resp.Result.Bins[0].Placements, 4)
	assert.Empty(t, resp.Result.Unplaced)
	assert.Equal(t, "density", resp.Objective)
	assert.Equal(t, 1, resp.Estimate.BinsMin)
	assert.NotNil(t, resp.Voids)
}

func TestPack_ItemsAndSettings(t *testing.T) {
	_, h := newTestServer(t)
	body := `{
		"boxes": [{"id": 7, "size": {"x": 10, "y": 10, "z": 10}}],
		"items": [{"label": "Tote", "width": 20, "height": 10, "depth": 10, "quantity": 3}],
		"container": {"width": 100, "height": 0, "depth": 50},
		"settings": {"strategy": "firstfit", "growing": true, "grow_axis": "y", "rotations": "none"}
	}`
	rec := do(t, h, http.MethodPost, "/api/v1/pack", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[PackResponse](t, rec)
	assert.Equal(t, "extent", resp.Objective)
	require.Len(t, resp.Result.Bins, 1)

	ids := map[int]bool{}
	for _, p := range resp.Result.Bins[0].Placements {
		ids[p.BoxID] = true
		if p.Label == "Tote" {
			assert.Equal(t, model.Vec3{X: 20, Y: 10, Z: 10}, p.Size, "rotations are disabled")
		}
	}
	assert.Equal(t, map[int]bool{7: true, 8: true, 9: true, 10: true}, ids)
}

func TestPack_Preset(t *testing.T) {
	_, h := newTestServer(t)
	body := `{"boxes":[{"id":1,"size":{"x":60,"y":40,"z":40},"weight":20}],"preset":"EUR pallet 120x80 (h 180)"}`
	rec := do(t, h, http.MethodPost, "/api/v1/pack", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[PackResponse](t, rec)
	require.Len(t, resp.Result.Bins, 1)
	assert.Equal(t, 1500.0, resp.Result.Bins[0].MaxWeight)
}

func TestPack_Errors(t *testing.T) {
	_, h := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"boxes":`, http.StatusBadRequest},
		{"unknown field", `{"crates":[]}`, http.StatusBadRequest},
		{"no boxes", `{"container":{"width":10,"height":10,"depth":10}}`, http.StatusBadRequest},
		{"no container", `{"boxes":[{"id":1,"size":{"x":1,"y":1,"z":1}}]}`, http.StatusBadRequest},
		{"unknown preset", `{"boxes":[{"id":1,"size":{"x":1,"y":1,"z":1}}],"preset":"Van"}`, http.StatusBadRequest},
		{"unknown strategy", cubes(1, 10, `,"settings":{"strategy":"random"}`), http.StatusBadRequest},
		{"bad rotations", cubes(1, 10, `,"settings":{"rotations":"q"}`), http.StatusBadRequest},
		{"zero extent", `{"boxes":[{"id":1,"size":{"x":0,"y":1,"z":1}}],"container":{"width":10,"height":10,"depth":10}}`, http.StatusBadRequest},
		{"negative bin", `{"boxes":[{"id":1,"size":{"x":1,"y":1,"z":1}}],"container":{"width":-10,"height":10,"depth":10}}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/v1/pack", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode[errorResponse](t, rec).Error)
		})
	}
}

func TestOptimize_Completes(t *testing.T) {
	_, h := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/api/v1/optimize", cubes(6, 40, ""))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	started := decode[Job](t, rec)
	assert.NotEmpty(t, started.ID)
	assert.Equal(t, "/api/v1/jobs/"+started.ID, rec.Header().Get("Location"))
	assert.Equal(t, 3, started.Generations)
	assert.Equal(t, 6, started.Boxes)

	job := waitForStatus(t, h, started.ID, JobCompleted)
	assert.Equal(t, 3, job.Generation)
	assert.Len(t, job.History, 3)
	require.NotNil(t, job.Best)
	assert.Equal(t, 6, job.Best.Result.PlacedCount())
	assert.NotNil(t, job.FinishedAt)

	for i := 1; i < len(job.History); i++ {
		assert.GreaterOrEqual(t, job.History[i].Best, job.History[i-1].Best, "elitism keeps the best ordering")
	}

	list := decode[[]Job](t, do(t, h, http.MethodGet, "/api/v1/jobs", ""))
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Best)

	rec = do(t, h, http.MethodDelete, "/api/v1/jobs/"+started.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/v1/jobs/"+started.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOptimize_CancelAndLimit(t *testing.T) {
	_, h := newTestServer(t)
	long := cubes(30, 20, `,"settings":{"generations":1000000}`)

	rec := do(t, h, http.MethodPost, "/api/v1/optimize", long)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	id := decode[Job](t, rec).ID

	// MaxJobs is 1 in the test config
	rec = do(t, h, http.MethodPost, "/api/v1/optimize", long)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/v1/jobs/"+id, "")
	assert.Equal(t, http.StatusAccepted, rec.Code)

	job := waitForStatus(t, h, id, JobCancelled)
	assert.Less(t, job.Generation, 1000000)

	// A slot frees up once the job is cancelled
	rec = do(t, h, http.MethodPost, "/api/v1/optimize", cubes(2, 20, ""))
	assert.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
}

func TestOptimize_Errors(t *testing.T) {
	_, h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/optimize", cubes(2, 10, `,"settings":{"elite_count":0}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/optimize", cubes(2, 10, `,"settings":{"generations":0}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/optimize", `{"container":{"width":10,"height":10,"depth":10}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJobs_NotFound(t *testing.T) {
	_, h := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/v1/jobs/nope", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/api/v1/jobs/nope", "").Code)
}

func TestClose_CancelsJobs(t *testing.T) {
	srv, h := newTestServer(t)
	rec := do(t, h, http.MethodPost, "/api/v1/optimize", cubes(30, 20, `,"settings":{"generations":1000000}`))
	require.Equal(t, http.StatusAccepted, rec.Code)
	id := decode[Job](t, rec).ID

	srv.Close()
	waitForStatus(t, h, id, JobCancelled)
}
