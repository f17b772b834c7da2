// Package server exposes a built species-collectors network over HTTP.
//
// The server wraps one network (built once at startup from a records file)
// and serves vector queries and projections. Projections run through the
// shared pipeline runner, so results are cached under the same keys the CLI
// uses.
package server

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/herblab/specnet/pkg/bipartite"
	"github.com/herblab/specnet/pkg/errors"
	specio "github.com/herblab/specnet/pkg/io"
	"github.com/herblab/specnet/pkg/pipeline"
)

// Server serves queries against one built network.
type Server struct {
	network    *bipartite.Network
	networkKey string
	runner     *pipeline.Runner
	logger     *log.Logger
}

// New creates a server around a built network. networkKey is the cache key
// of the network as produced by the pipeline; projections derive their
// cache keys from it.
func New(network *bipartite.Network, networkKey string, runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	// Warm the biadjacency cache up front; request handling then only
	// reads the network and stays safe for concurrent use.
	network.Matrix()
	return &Server{
		network:    network,
		networkKey: networkKey,
		runner:     runner,
		logger:     logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/collectors", s.handleCollectors)
	r.Get("/species", s.handleSpecies)
	r.Get("/collectors/{id}/bag", s.handleSpeciesBag)
	r.Get("/species/{id}/interest", s.handleInterestVector)
	r.Post("/project", s.handleProject)

	return r
}

type nodeInfo struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

type vectorResponse struct {
	ID     string    `json:"id"`
	IDs    []string  `json:"ids"`
	Vector []float64 `json:"vector"`
}

type projectRequest struct {
	Partition string   `json:"partition"`
	Rule      string   `json:"rule"`
	Threshold *float64 `json:"threshold,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCollectors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nodeList(s.network.CollectorsNodes()))
}

func (s *Server) handleSpecies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nodeList(s.network.SpeciesNodes()))
}

func (s *Server) handleSpeciesBag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ids, vector, err := s.network.SpeciesBag(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vectorResponse{ID: id, IDs: ids, Vector: vector})
}

func (s *Server) handleInterestVector(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ids, vector, err := s.network.InterestVector(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vectorResponse{ID: id, IDs: ids, Vector: vector})
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decoding request"))
		return
	}

	opts := pipeline.Options{
		Partition: req.Partition,
		Rule:      req.Rule,
		Logger:    s.logger,
	}
	if opts.Partition == "" {
		opts.Partition = pipeline.DefaultPartition
	}
	if opts.Rule == "" {
		opts.Rule = pipeline.DefaultRule
	}
	if req.Threshold != nil {
		opts.Threshold = *req.Threshold
		opts.HasThresh = true
	}

	g, cached, err := s.runner.ProjectWithCacheInfo(r.Context(), s.network, s.networkKey, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Debug("served projection",
		"partition", opts.Partition,
		"rule", opts.Rule,
		"cached", cached)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := specio.WriteGraphJSON(g, w); err != nil {
		s.logger.Error("writing projection response", "err", err)
	}
}

// writeError maps structured error codes to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsValidation(err):
		status = http.StatusBadRequest
	case errors.IsNotFound(err):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{Error: errorBody{
		Code:    string(errors.GetCode(err)),
		Message: errors.UserMessage(err),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func nodeList(nodes []bipartite.Node) []nodeInfo {
	out := make([]nodeInfo, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, nodeInfo{ID: n.ID, Count: n.Count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
