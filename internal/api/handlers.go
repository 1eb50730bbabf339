package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openbandi/grantdocs/internal/observability"
	"github.com/openbandi/grantdocs/internal/store"
)

func (s *Server) handleListGrants(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r, 20)

	grants, err := s.store.ListGrants(r.Context(), limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch grants: "+err.Error())
		return
	}
	// Return empty list if nil to be JSON friendly
	if grants == nil {
		grants = []store.Grant{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"items":  grants,
		"limit":  limit,
		"offset": offset,
	})
}

func (s *Server) handleGetDocumentation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "Grant ID is required")
		return
	}

	grant, err := s.store.GetGrant(r.Context(), id)
	if errors.Is(err, store.ErrGrantNotFound) {
		respondError(w, http.StatusNotFound, "Grant not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch grant: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":                        grant.ID,
		"documentazione_necessaria": grant.Documentation,
		"updated_at":                grant.UpdatedAt,
	})
}

// handleRefreshGrant recrawls a single grant synchronously and stores the
// fresh summary. Slow by nature; meant for manual use.
func (s *Server) handleRefreshGrant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "Grant ID is required")
		return
	}

	grant, err := s.store.GetGrant(r.Context(), id)
	if errors.Is(err, store.ErrGrantNotFound) {
		respondError(w, http.StatusNotFound, "Grant not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch grant: "+err.Error())
		return
	}

	doc, err := s.pipeline.ProcessGrant(r.Context(), grant)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to process grant: "+err.Error())
		return
	}

	if err := s.store.UpdateDocumentation(r.Context(), grant.ID, doc); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to store documentation: "+err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":        grant.ID,
		"refreshed": true,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, observability.Snapshot())
}

func parsePagination(r *http.Request, defaultLimit int) (int, int) {
	q := r.URL.Query()
	limit := defaultLimit
	offset := 0

	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	if v := q.Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
