// Package retrieve answers questions against the stored notice corpus:
// vector search, parent-context expansion, LLM reranking, and cited answer
// synthesis.
package retrieve

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"masrag/internal/enrich"
	"masrag/internal/vecstore"
)

// Embedder embeds text for search.
type Embedder interface {
	EmbedContent(ctx context.Context, text, taskType string) ([]float64, error)
}

// Generator produces text from a prompt.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// NodeStore is the slice of the vector store retrieval needs.
type NodeStore interface {
	Search(ctx context.Context, embedding []float64, noticeID string, limit int) ([]vecstore.StoredNode, error)
	GetByIDs(ctx context.Context, ids []string) ([]vecstore.StoredNode, error)
}

// Options tune one retrieval run. Zero values take the defaults.
type Options struct {
	NoticeID string // restrict search to one notice
	TopK     int    // initial vector search size
	TopN     int    // candidates kept after reranking
}

const (
	defaultTopK = 10
	defaultTopN = 3
)

// Source is one node the answer drew on.
type Source struct {
	NodeID   string `json:"node_id"`
	NoticeID string `json:"notice_id"`
	NodeType string `json:"node_type"`
	Text     string `json:"text"`
	Score    int    `json:"score"`
}

// Answer is the synthesized response plus the nodes behind it.
type Answer struct {
	Text    string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// Retriever runs the full retrieval pipeline.
type Retriever struct {
	store NodeStore
	emb   Embedder
	llm   Generator
	log   *slog.Logger
}

func New(store NodeStore, emb Embedder, llm Generator, log *slog.Logger) *Retriever {
	return &Retriever{store: store, emb: emb, llm: llm, log: log}
}

// AnswerQuestion runs search, expansion, rerank, and synthesis for one
// question.
func (r *Retriever) AnswerQuestion(ctx context.Context, question string, opts Options) (*Answer, error) {
	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}
	if opts.TopN <= 0 {
		opts.TopN = defaultTopN
	}

	embedding, err := r.emb.EmbedContent(ctx, question, enrich.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.store.Search(ctx, embedding, opts.NoticeID, opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	if len(hits) == 0 {
		return &Answer{Text: "Could not find any relevant documents.", Sources: []Source{}}, nil
	}

	candidates, err := r.expandContext(ctx, hits)
	if err != nil {
		// Parent expansion enriches context but its failure should not
		// sink the query.
		r.log.Warn("parent expansion failed", "error", err)
		candidates = hits
	}

	ranked := r.rerank(ctx, question, candidates, opts.TopN)

	sections := make([]enrich.ContextSection, len(ranked))
	sources := make([]Source, len(ranked))
	for i, c := range ranked {
		sections[i] = enrich.ContextSection{
			NodeID:   c.node.NodeID,
			NoticeID: c.node.NoticeID,
			NodeType: c.node.NodeType,
			Text:     c.node.Text,
		}
		sources[i] = Source{
			NodeID:   c.node.NodeID,
			NoticeID: c.node.NoticeID,
			NodeType: c.node.NodeType,
			Text:     c.node.Text,
			Score:    c.score,
		}
	}

	text, err := r.llm.GenerateContent(ctx, enrich.BuildSynthesisPrompt(question, sections))
	if err != nil {
		return nil, fmt.Errorf("synthesize answer: %w", err)
	}

	return &Answer{Text: text, Sources: sources}, nil
}

// expandContext adds the parents of hit nodes so the synthesis prompt sees
// the enclosing paragraph of each matched sub-paragraph.
func (r *Retriever) expandContext(ctx context.Context, hits []vecstore.StoredNode) ([]vecstore.StoredNode, error) {
	present := make(map[string]bool, len(hits))
	for _, h := range hits {
		present[h.NodeID] = true
	}

	var parentIDs []string
	for _, h := range hits {
		if h.ParentID != "" && !present[h.ParentID] {
			present[h.ParentID] = true
			parentIDs = append(parentIDs, h.ParentID)
		}
	}
	if len(parentIDs) == 0 {
		return hits, nil
	}

	parents, err := r.store.GetByIDs(ctx, parentIDs)
	if err != nil {
		return nil, err
	}
	return append(hits, parents...), nil
}

type rankedNode struct {
	node  vecstore.StoredNode
	score int
}

// rerank scores each candidate against the question and keeps the best
// topN. Scoring failures demote the candidate instead of failing the query.
func (r *Retriever) rerank(ctx context.Context, question string, candidates []vecstore.StoredNode, topN int) []rankedNode {
	ranked := make([]rankedNode, 0, len(candidates))
	for _, c := range candidates {
		prompt := enrich.BuildRerankPrompt(question, c.NoticeID, c.NodeType, c.Text)
		resp, err := r.llm.GenerateContent(ctx, prompt)
		if err != nil {
			r.log.Warn("rerank scoring failed", "node_id", c.NodeID, "error", err)
			ranked = append(ranked, rankedNode{node: c, score: 0})
			continue
		}
		ranked = append(ranked, rankedNode{node: c, score: enrich.ParseScore(resp)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
