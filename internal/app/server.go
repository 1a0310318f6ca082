package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/specialistvlad/regioncache/internal/region"
	"github.com/specialistvlad/regioncache/internal/registry"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}

type regionResponse struct {
	Region string `json:"region"`
	Values []any  `json:"values"`
}

type lastResponse struct {
	Region string `json:"region"`
	Value  any    `json:"value"`
}

type createRequest struct {
	Name string `json:"name"`
}

// Handler returns the HTTP API, including any mounted socket.io hubs.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", a.healthHandler)
	mux.HandleFunc("GET /regions", a.listRegions)
	mux.HandleFunc("POST /regions", a.createRegion)
	mux.HandleFunc("GET /regions/{name}", a.getRegion)
	mux.HandleFunc("GET /regions/{name}/last", a.getLast)
	mux.HandleFunc("PUT /regions/{name}/{key}", a.putEntry)
	for _, h := range a.hubs {
		mux.Handle(h.path, h.hub.Handler())
	}
	return mux
}

// healthHandler answers liveness probes.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	a.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (a *App) listRegions(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string][]string{"regions": a.registry.Names()})
}

func (a *App) createRegion(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if err := a.registry.Create(req.Name); err != nil {
		a.writeRegistryError(w, err)
		return
	}
	a.logger.Info("Region created over HTTP.", "region", req.Name)
	a.writeJSON(w, http.StatusCreated, regionResponse{Region: req.Name, Values: []any{}})
}

func (a *App) getRegion(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	values, err := a.registry.All(name)
	if err != nil {
		a.writeRegistryError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, regionResponse{Region: name, Values: values})
}

func (a *App) getLast(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	value, err := a.registry.Last(name)
	if errors.Is(err, registry.ErrEmptyRegion) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		a.writeRegistryError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, lastResponse{Region: name, Value: value})
}

// putEntry stores the JSON request body under the path key. Keys arriving
// over HTTP are always strings.
func (a *App) putEntry(w http.ResponseWriter, r *http.Request) {
	name, key := r.PathValue("name"), r.PathValue("key")

	var value any
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&value); err != nil {
		a.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	if err := a.registry.Put(r.Context(), name, key, value); err != nil {
		if errors.Is(err, registry.ErrRegionNotFound) || errors.Is(err, region.ErrInvalidKey) {
			a.writeRegistryError(w, err)
			return
		}
		// The write itself was applied; only the announcement failed.
		a.writeError(w, http.StatusBadGateway, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) writeRegistryError(w http.ResponseWriter, err error) {
	var nf *registry.NotFoundError
	switch {
	case errors.As(err, &nf):
		a.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Suggestion: nf.Suggestion})
	case errors.Is(err, registry.ErrRegionAlreadyExists):
		a.writeError(w, http.StatusConflict, err)
	case errors.Is(err, registry.ErrInvalidName), errors.Is(err, region.ErrInvalidKey):
		a.writeError(w, http.StatusBadRequest, err)
	default:
		a.writeError(w, http.StatusInternalServerError, err)
	}
}

func (a *App) writeError(w http.ResponseWriter, status int, err error) {
	a.logger.Debug("Request failed.", "status", status, "error", err)
	a.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (a *App) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.logger.Error("Failed to write response.", "error", err)
	}
}
