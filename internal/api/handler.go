package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dunkgray/eqrm/internal/config"
	"github.com/dunkgray/eqrm/internal/engine"
	"github.com/dunkgray/eqrm/internal/metrics"
)

const maxBodyBytes = 1 << 20

// Handler holds all HTTP handler dependencies.
type Handler struct {
	eng    *engine.Engine
	loader *config.Loader
	mux    *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(eng *engine.Engine, loader *config.Loader) http.Handler {
	h := &Handler{eng: eng, loader: loader, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /v1/runs", h.run)
	h.mux.HandleFunc("POST /v1/scenarios", h.runScenario)
	h.mux.HandleFunc("GET /v1/config", h.getConfig)
	h.mux.HandleFunc("POST /v1/config/reload", h.reloadConfig)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(h.mux)
}

// runRequest overrides parts of the current config for one run.
type runRequest struct {
	Seed           *uint64 `json:"seed"`
	IncludeCatalog bool    `json:"include_catalog"`
	IncludeRates   bool    `json:"include_rates"`
}

// scenarioRequest runs fixed ruptures against the current event control.
type scenarioRequest struct {
	Scenario       config.Scenario `json:"scenario"`
	IncludeCatalog bool            `json:"include_catalog"`
	IncludeRates   bool            `json:"include_rates"`
}

// decode reads an optional JSON body into v.
func decode(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// POST /v1/runs: synchronous run of the current config.
func (h *Handler) run(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	cfg := *h.eng.Config()
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	}
	h.submit(w, r, engine.Request{
		Config:  &cfg,
		Options: engine.RunOptions{IncludeCatalog: req.IncludeCatalog, IncludeRates: req.IncludeRates},
	})
}

// POST /v1/scenarios: synchronous scenario run.
func (h *Handler) runScenario(w http.ResponseWriter, r *http.Request) {
	var req scenarioRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return
	}
	if len(req.Scenario.Ruptures) == 0 {
		writeError(w, http.StatusBadRequest, "scenario needs at least one rupture")
		return
	}
	cfg := *h.eng.Config()
	sc := req.Scenario
	if sc.NumberOfEvents == 0 {
		sc.NumberOfEvents = 1
	}
	cfg.Scenario = &sc
	h.submit(w, r, engine.Request{
		Config:  &cfg,
		Options: engine.RunOptions{IncludeCatalog: req.IncludeCatalog, IncludeRates: req.IncludeRates},
	})
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, req engine.Request) {
	res, err := h.eng.RunSync(r.Context(), req)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, engine.ErrQueueFull):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, engine.ErrTimeout):
		writeError(w, http.StatusGatewayTimeout, err.Error())
	case errors.Is(err, engine.ErrInvalidConfig):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// GET /v1/config: the config runs default to.
func (h *Handler) getConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.eng.Config())
}

// POST /v1/config/reload: hot-reload the config from disk.
func (h *Handler) reloadConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.loader.Reload()
	if errors.Is(err, config.ErrInvalid) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.eng.SwapConfig(cfg)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reloaded": true,
		"zones":    len(cfg.Zones),
		"faults":   len(cfg.Faults),
		"scenario": cfg.Scenario != nil,
	})
}

// GET /healthz: always 200 (liveness).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz: 503 if the run queue is >80% full.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	util := h.eng.QueueUtilization()
	metrics.QueueUtilization.Set(util)
	body := map[string]interface{}{
		"queue_utilization": util,
		"in_flight":         h.eng.InFlight(),
	}
	if util > 0.8 {
		body["status"] = "overloaded"
		writeJSON(w, http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "ready"
	writeJSON(w, http.StatusOK, body)
}
