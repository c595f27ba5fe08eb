// Package vecstore persists enriched notice nodes in Postgres with
// pgvector embeddings and serves similarity search for retrieval.
package vecstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"masrag/internal/enrich"
)

// StoredNode is one notice node row: identity and hierarchy fields the
// parser guarantees, plus the enrichment artifacts.
type StoredNode struct {
	NodeID          string   `json:"node_id"`
	NoticeID        string   `json:"notice_id"`
	NodeType        string   `json:"node_type"`
	ParentID        string   `json:"parent_id,omitempty"`
	NumberingPath   []string `json:"numbering_path"`
	Text            string   `json:"text"`
	Summary         string   `json:"summary,omitempty"`
	Question        string   `json:"question,omitempty"`
	PublicationDate string   `json:"publication_date"`
	EffectiveDate   string   `json:"effective_date,omitempty"`
	Embedding       []float64 `json:"-"`
	Distance        float64   `json:"distance,omitempty"` // set on search results
}

// NoticeInfo summarizes one stored notice.
type NoticeInfo struct {
	NoticeID        string `json:"notice_id"`
	PublicationDate string `json:"publication_date"`
	EffectiveDate   string `json:"effective_date,omitempty"`
	NodeCount       int    `json:"node_count"`
}

// Store wraps the pgx connection pool.
type Store struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: pool}, nil
}

func (s *Store) Close() {
	s.db.Close()
}

// EnsureSchema creates the pgvector extension, node table, and indexes.
func (s *Store) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS notice_nodes (
			node_id          TEXT PRIMARY KEY,
			notice_id        TEXT NOT NULL,
			node_type        TEXT NOT NULL,
			parent_id        TEXT,
			numbering_path   TEXT[] NOT NULL DEFAULT '{}',
			text             TEXT NOT NULL,
			summary          TEXT,
			question         TEXT,
			publication_date TEXT NOT NULL,
			effective_date   TEXT,
			embedding        vector(%d)
		)`, enrich.EmbeddingDim),
		`CREATE INDEX IF NOT EXISTS idx_notice_nodes_notice_id ON notice_nodes (notice_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notice_nodes_parent_id ON notice_nodes (parent_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// formatVector formats an embedding vector as a pgvector literal.
func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = fmt.Sprintf("%.6f", v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Upsert stores or replaces one node row.
func (s *Store) Upsert(ctx context.Context, n StoredNode) error {
	if len(n.Embedding) != enrich.EmbeddingDim {
		return fmt.Errorf("embedding must be %d dimensions, got %d", enrich.EmbeddingDim, len(n.Embedding))
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO notice_nodes
			(node_id, notice_id, node_type, parent_id, numbering_path, text,
			 summary, question, publication_date, effective_date, embedding)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, NULLIF($10, ''), $11::vector)
		ON CONFLICT (node_id) DO UPDATE SET
			notice_id = EXCLUDED.notice_id,
			node_type = EXCLUDED.node_type,
			parent_id = EXCLUDED.parent_id,
			numbering_path = EXCLUDED.numbering_path,
			text = EXCLUDED.text,
			summary = EXCLUDED.summary,
			question = EXCLUDED.question,
			publication_date = EXCLUDED.publication_date,
			effective_date = EXCLUDED.effective_date,
			embedding = EXCLUDED.embedding`,
		n.NodeID, n.NoticeID, n.NodeType, n.ParentID, n.NumberingPath, n.Text,
		n.Summary, n.Question, n.PublicationDate, n.EffectiveDate, formatVector(n.Embedding))
	if err != nil {
		return fmt.Errorf("upsert node %s: %w", n.NodeID, err)
	}
	return nil
}

const nodeColumns = `node_id, notice_id, node_type, COALESCE(parent_id, ''),
	numbering_path, text, COALESCE(summary, ''), COALESCE(question, ''),
	publication_date, COALESCE(effective_date, '')`

// Search returns the nodes nearest to the query embedding by cosine
// distance, optionally filtered to one notice.
func (s *Store) Search(ctx context.Context, embedding []float64, noticeID string, limit int) ([]StoredNode, error) {
	if len(embedding) != enrich.EmbeddingDim {
		return nil, fmt.Errorf("embedding must be %d dimensions, got %d", enrich.EmbeddingDim, len(embedding))
	}
	vectorStr := formatVector(embedding)

	query := fmt.Sprintf(`
		SELECT %s, embedding <=> $1::vector AS distance
		FROM notice_nodes
		WHERE embedding IS NOT NULL`, nodeColumns)
	args := []any{vectorStr}
	if noticeID != "" {
		query += ` AND notice_id = $2`
		args = append(args, noticeID)
	}
	query += fmt.Sprintf(` ORDER BY embedding <=> $1::vector LIMIT %d`, limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search nodes: %w", err)
	}
	defer rows.Close()

	var nodes []StoredNode
	for rows.Next() {
		var n StoredNode
		if err := rows.Scan(&n.NodeID, &n.NoticeID, &n.NodeType, &n.ParentID,
			&n.NumberingPath, &n.Text, &n.Summary, &n.Question,
			&n.PublicationDate, &n.EffectiveDate, &n.Distance); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}
	return nodes, nil
}

// GetByIDs fetches nodes by ID, preserving the requested order.
func (s *Store) GetByIDs(ctx context.Context, ids []string) ([]StoredNode, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM notice_nodes WHERE node_id = ANY($1)`, nodeColumns)
	rows, err := s.db.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("get nodes: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]StoredNode, len(ids))
	for rows.Next() {
		var n StoredNode
		if err := rows.Scan(&n.NodeID, &n.NoticeID, &n.NodeType, &n.ParentID,
			&n.NumberingPath, &n.Text, &n.Summary, &n.Question,
			&n.PublicationDate, &n.EffectiveDate); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		byID[n.NodeID] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}

	out := make([]StoredNode, 0, len(byID))
	for _, id := range ids {
		if n, ok := byID[id]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}

// ListNotices returns each stored notice with its node count.
func (s *Store) ListNotices(ctx context.Context) ([]NoticeInfo, error) {
	rows, err := s.db.Query(ctx, `
		SELECT notice_id, MIN(publication_date), COALESCE(MIN(effective_date), ''), COUNT(*)
		FROM notice_nodes
		GROUP BY notice_id
		ORDER BY notice_id`)
	if err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	defer rows.Close()

	var notices []NoticeInfo
	for rows.Next() {
		var info NoticeInfo
		if err := rows.Scan(&info.NoticeID, &info.PublicationDate, &info.EffectiveDate, &info.NodeCount); err != nil {
			return nil, fmt.Errorf("scan notice: %w", err)
		}
		notices = append(notices, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notices: %w", err)
	}
	return notices, nil
}

// ListNodes returns every node of one notice in node_id order.
func (s *Store) ListNodes(ctx context.Context, noticeID string) ([]StoredNode, error) {
	query := fmt.Sprintf(`SELECT %s FROM notice_nodes WHERE notice_id = $1 ORDER BY node_id`, nodeColumns)
	rows, err := s.db.Query(ctx, query, noticeID)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	defer rows.Close()

	var nodes []StoredNode
	for rows.Next() {
		var n StoredNode
		if err := rows.Scan(&n.NodeID, &n.NoticeID, &n.NodeType, &n.ParentID,
			&n.NumberingPath, &n.Text, &n.Summary, &n.Question,
			&n.PublicationDate, &n.EffectiveDate); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}
	return nodes, nil
}

// DeleteNotice removes all nodes of one notice and reports how many rows
// were deleted.
func (s *Store) DeleteNotice(ctx context.Context, noticeID string) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM notice_nodes WHERE notice_id = $1`, noticeID)
	if err != nil {
		return 0, fmt.Errorf("delete notice %s: %w", noticeID, err)
	}
	return tag.RowsAffected(), nil
}
