package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"masrag/internal/retrieve"
)

type queryRequest struct {
	Question string `json:"question"`
	NoticeID string `json:"notice_id,omitempty"`
	TopK     int    `json:"top_k,omitempty"`
	TopN     int    `json:"top_n,omitempty"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		jsonError(w, "question is required", http.StatusBadRequest)
		return
	}

	opts := retrieve.Options{
		NoticeID: req.NoticeID,
		TopK:     s.cfg.SearchTopK,
		TopN:     s.cfg.RerankTopN,
	}
	if req.TopK > 0 {
		opts.TopK = req.TopK
	}
	if req.TopN > 0 {
		opts.TopN = req.TopN
	}

	answer, err := s.retriever.AnswerQuestion(r.Context(), req.Question, opts)
	if err != nil {
		s.log.Error("query failed", "error", err)
		jsonError(w, "query failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(answer)
}
