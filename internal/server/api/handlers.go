// Package api exposes chunk storage over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/voxelforge/anvil/pkg/anvil"
	"github.com/voxelforge/anvil/pkg/region"
)

// Server holds the HTTP handler dependencies
type Server struct {
	chunks *anvil.ProviderCache
	logger *slog.Logger
}

// New creates a new API server over a caching chunk provider
func New(chunks *anvil.ProviderCache, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{chunks: chunks, logger: logger}
}

// Register mounts the API routes on the given router
func (s *Server) Register(r chi.Router) {
	r.Get("/api/chunks/{x}/{z}", s.GetChunk)
	r.Put("/api/chunks/{x}/{z}", s.PutChunk)
	r.Get("/api/regions/{x}/{z}", s.GetRegion)
}

// RegionResponse is the response body for a region summary
type RegionResponse struct {
	RegionX      int32  `json:"regionX"`
	RegionZ      int32  `json:"regionZ"`
	Chunks       int    `json:"chunks"`
	TotalSectors uint32 `json:"totalSectors"`
	UsedSectors  uint32 `json:"usedSectors"`
}

// GetChunk handles GET /api/chunks/{x}/{z}
func (s *Server) GetChunk(w http.ResponseWriter, r *http.Request) {
	x, z, err := chunkCoords(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var tag map[string]any
	if err := s.chunks.LoadChunk(x, z, &tag); err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(tag); err != nil {
		s.logger.Error("encoding chunk response", "error", err)
	}
}

// PutChunk handles PUT /api/chunks/{x}/{z}
func (s *Server) PutChunk(w http.ResponseWriter, r *http.Request) {
	x, z, err := chunkCoords(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var tag map[string]any
	if err := json.NewDecoder(r.Body).Decode(&tag); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.chunks.SaveChunk(x, z, tag); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetRegion handles GET /api/regions/{x}/{z}
func (s *Server) GetRegion(w http.ResponseWriter, r *http.Request) {
	x, z, err := chunkCoords(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	stats, err := s.chunks.RegionStat(x, z)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := RegionResponse{
		RegionX:      x,
		RegionZ:      z,
		Chunks:       stats.Chunks,
		TotalSectors: stats.TotalSectors,
		UsedSectors:  stats.UsedSectors,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("encoding region response", "error", err)
	}
}

// writeError maps storage errors to HTTP statuses
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var regionNotFound *anvil.RegionNotFoundError
	var chunkNotFound *region.ChunkNotFoundError

	switch {
	case errors.As(err, &regionNotFound), errors.As(err, &chunkNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		s.logger.Error("chunk request failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// chunkCoords parses the {x} and {z} URL parameters
func chunkCoords(r *http.Request) (int32, int32, error) {
	x, err := strconv.ParseInt(chi.URLParam(r, "x"), 10, 32)
	if err != nil {
		return 0, 0, err
	}
	z, err := strconv.ParseInt(chi.URLParam(r, "z"), 10, 32)
	if err != nil {
		return 0, 0, err
	}
	return int32(x), int32(z), nil
}
