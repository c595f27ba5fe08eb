package api

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

// noticeParam returns the noticeID path parameter. Notice IDs contain
// spaces ("MAS Notice 758"), so the segment arrives percent-encoded.
func noticeParam(r *http.Request) string {
	raw := chi.URLParam(r, "noticeID")
	if dec, err := url.PathUnescape(raw); err == nil {
		return dec
	}
	return raw
}

func (s *Server) handleListNotices(w http.ResponseWriter, r *http.Request) {
	notices, err := s.orchestrator.Store().ListNotices(r.Context())
	if err != nil {
		s.log.Error("list notices failed", "error", err)
		jsonError(w, "failed to list notices", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"notices": notices})
}

func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	noticeID := noticeParam(r)
	nodes, err := s.orchestrator.Store().ListNodes(r.Context(), noticeID)
	if err != nil {
		s.log.Error("list nodes failed", "notice_id", noticeID, "error", err)
		jsonError(w, "failed to list nodes", http.StatusInternalServerError)
		return
	}
	if len(nodes) == 0 {
		jsonError(w, "notice not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"notice_id": noticeID,
		"nodes":     nodes,
	})
}

func (s *Server) handleDeleteNotice(w http.ResponseWriter, r *http.Request) {
	noticeID := noticeParam(r)
	deleted, err := s.orchestrator.Store().DeleteNotice(r.Context(), noticeID)
	if err != nil {
		s.log.Error("delete notice failed", "notice_id", noticeID, "error", err)
		jsonError(w, "failed to delete notice", http.StatusInternalServerError)
		return
	}
	if deleted == 0 {
		jsonError(w, "notice not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"notice_id":     noticeID,
		"nodes_deleted": deleted,
	})
}
