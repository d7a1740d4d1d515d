package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunkgray/eqrm/internal/config"
	"github.com/dunkgray/eqrm/internal/engine"
)

const baseYAML = `
version: "1"
seed: 3
event_control:
  - event_type: background
    branches:
      - { model: Toro_1997_midcontinent, weight: 1 }
zones:
  - name: box
    event_type: background
    boundary: [[-38, 146], [-38, 147], [-39, 147], [-39, 146]]
    dip: 35
    depth_bottom_seismogenic: 15
    recurrence:
      generation_min_mag: 4.5
      number_of_events: 12
      models:
        - { recurrence_min_mag: 3.5, recurrence_max_mag: 6.5, a_min: 2, b: 1 }
`

func newServer(t *testing.T) (http.Handler, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eqrm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(baseYAML), 0o644))
	loader, err := config.NewLoader(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	eng := engine.New(ctx, loader.Config())
	t.Cleanup(func() {
		cancel()
		eng.Shutdown()
	})
	return New(eng, loader), path
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRunEndpoint(t *testing.T) {
	h, _ := newServer(t)

	rec := do(t, h, http.MethodPost, "/v1/runs", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res engine.RunResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, engine.ModeSynthetic, res.Mode)
	assert.Equal(t, 12, res.Events)
	assert.Nil(t, res.EventRates)

	rec = do(t, h, http.MethodPost, "/v1/runs", `{"seed": 99, "include_rates": true, "include_catalog": true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body["event_rates"], 12)
	assert.Len(t, body["catalog"], 12)
}

func TestRunEndpointBadJSON(t *testing.T) {
	h, _ := newServer(t)
	rec := do(t, h, http.MethodPost, "/v1/runs", `{"seed":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid JSON")
}

func TestScenarioEndpoint(t *testing.T) {
	h, _ := newServer(t)

	rec := do(t, h, http.MethodPost, "/v1/scenarios", `{
		"scenario": {
			"event_type": "background",
			"number_of_events": 2,
			"ruptures": [{"lat": -32.95, "lon": 151.61, "azimuth": 340, "dip": 35, "mw": 5.6, "depth": 11.5}]
		},
		"include_rates": true
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res engine.RunResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, engine.ModeScenario, res.Mode)
	assert.Equal(t, 2, res.Events)
	assert.Equal(t, []float64{1, 1}, res.EventRates)

	rec = do(t, h, http.MethodPost, "/v1/scenarios", `{"scenario": {"ruptures": []}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/scenarios", `{"scenario": {"ruptures": [{"dip": 35, "depth": 5}]}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "one of mw or ml is required")
}

func TestConfigEndpoints(t *testing.T) {
	h, path := newServer(t)

	rec := do(t, h, http.MethodGet, "/v1/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cfg config.RunConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, uint64(3), cfg.Seed)

	require.NoError(t, os.WriteFile(path, []byte(strings.Replace(baseYAML, "seed: 3", "seed: 4", 1)), 0o644))
	rec = do(t, h, http.MethodPost, "/v1/config/reload", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"reloaded":true`)

	rec = do(t, h, http.MethodGet, "/v1/config", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, uint64(4), cfg.Seed)

	require.NoError(t, os.WriteFile(path, []byte("version: \"1\"\n"), 0o644))
	rec = do(t, h, http.MethodPost, "/v1/config/reload", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	rec = do(t, h, http.MethodGet, "/v1/config", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, uint64(4), cfg.Seed, "invalid reload keeps the running config")

	require.NoError(t, os.WriteFile(path, []byte("zones: [unterminated"), 0o644))
	rec = do(t, h, http.MethodPost, "/v1/config/reload", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	h, _ := newServer(t)

	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ready"`)

	do(t, h, http.MethodPost, "/v1/runs", "")
	rec = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "eqrm_runs_total")

	rec = do(t, h, http.MethodGet, "/v1/runs", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
