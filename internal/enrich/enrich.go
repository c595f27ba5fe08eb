// Package enrich generates retrieval aids for parsed notice nodes via the
// Gemini API: a summary, a hypothetical question, and a content embedding.
package enrich

import "context"

// NodeEnrichment holds the generated aids for one node.
type NodeEnrichment struct {
	Summary   string
	Question  string
	Embedding []float64
}

// EnrichNode generates all aids for one node's text. The three calls run
// sequentially; callers parallelize across nodes, not within one.
func (c *GeminiClient) EnrichNode(ctx context.Context, text string) (*NodeEnrichment, error) {
	summary, err := c.GenerateContent(ctx, BuildSummaryPrompt(text))
	if err != nil {
		return nil, err
	}
	question, err := c.GenerateContent(ctx, BuildQuestionPrompt(text))
	if err != nil {
		return nil, err
	}
	embedding, err := c.EmbedContent(ctx, text, TaskRetrievalDocument)
	if err != nil {
		return nil, err
	}
	return &NodeEnrichment{
		Summary:   summary,
		Question:  question,
		Embedding: embedding,
	}, nil
}
